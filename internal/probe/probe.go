// Package probe enumerates the registry of each endpoint in turn.
package probe

import (
	"errors"
	"time"

	"github.com/danmuck/compcheck/internal/compare"
	"github.com/danmuck/compcheck/internal/discovery"
	"github.com/danmuck/compcheck/internal/observability"
	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/protocol/session"
	"github.com/danmuck/compcheck/internal/registry"
	"github.com/rs/zerolog/log"
)

// EndpointResult is the outcome of enumerating one endpoint. Interfaces may
// be partially filled when Err is set.
type EndpointResult struct {
	Label      string
	Path       string
	PeerName   string
	Interfaces registry.InterfaceSet
	State      registry.State
	Err        error
}

func (r EndpointResult) OK() bool {
	return r.Err == nil
}

// Run probes sockets sequentially. A failing endpoint never stops the
// remaining ones; results keep the input order.
func Run(sockets []discovery.Socket, cfg session.Config) []EndpointResult {
	out := make([]EndpointResult, 0, len(sockets))
	for _, sock := range sockets {
		out = append(out, Probe(sock, cfg))
	}
	return out
}

// Probe connects to one socket, runs the registry handshake and closes.
func Probe(sock discovery.Socket, cfg session.Config) EndpointResult {
	start := time.Now()
	res := EndpointResult{
		Label:    sock.Label,
		Path:     sock.Path,
		PeerName: protocol.UnknownPeer,
		State:    registry.StateStart,
	}
	conn, err := session.Open(sock.Path, cfg)
	if err != nil {
		log.Error().Str("endpoint", sock.Label).Err(err).Msg("connect failed")
		res.Err = err
		res.State = registry.StateErrored
		observability.RecordProbe(observability.ProbeRecord{
			Endpoint: sock.Label,
			Outcome:  observability.OutcomeFailed,
			Duration: time.Since(start),
		})
		return res
	}
	res.PeerName = conn.PeerName()

	c := registry.New(conn)
	res.Interfaces, res.Err = c.Collect()
	res.State = c.State()
	stats := c.Stats()

	outcome := observability.OutcomeDone
	switch {
	case res.Err == nil:
		log.Debug().
			Str("endpoint", sock.Label).
			Str("peer", res.PeerName).
			Int("interfaces", len(res.Interfaces)).
			Msg("registry enumerated")
	case errors.Is(res.Err, protocol.ErrIncompleteHandshake):
		outcome = observability.OutcomeIncomplete
		log.Error().
			Str("endpoint", sock.Label).
			Str("peer", res.PeerName).
			Int("partial_interfaces", len(res.Interfaces)).
			Err(res.Err).
			Msgf("error in wayland communication with %s @ %s", res.PeerName, sock.Label)
	default:
		outcome = observability.OutcomeFailed
		log.Error().
			Str("endpoint", sock.Label).
			Str("peer", res.PeerName).
			Err(res.Err).
			Msg("registry enumeration failed")
	}
	observability.RecordProbe(observability.ProbeRecord{
		Endpoint:     sock.Label,
		Outcome:      outcome,
		Messages:     stats.Messages,
		Globals:      stats.Globals,
		Unrecognized: stats.Unrecognized,
		Interfaces:   len(res.Interfaces),
		Duration:     time.Since(start),
	})
	return res
}

// Comparable returns the successful results as differ input, along with
// their indexes into results.
func Comparable(results []EndpointResult) ([]compare.Endpoint, []int) {
	var eps []compare.Endpoint
	var idx []int
	for i, r := range results {
		if !r.OK() {
			continue
		}
		eps = append(eps, compare.Endpoint{Label: r.Label, Interfaces: r.Interfaces})
		idx = append(idx, i)
	}
	return eps, idx
}
