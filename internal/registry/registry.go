// Package registry drives the wl_display get_registry + sync handshake and
// accumulates the advertised globals of one endpoint.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/protocol/args"
	"github.com/danmuck/compcheck/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

var ErrAlreadyCollected = errors.New("registry: collector already ran")

// InterfaceSet maps an interface name to the version last advertised for it.
type InterfaceSet map[string]uint32

// Names returns the interface names in sorted order.
func (s InterfaceSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type State int

const (
	StateStart State = iota
	StateAwaitingGlobals
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAwaitingGlobals:
		return "awaiting_globals"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transport is the connection surface the collector needs.
type Transport interface {
	Send(b []byte) error
	ReceiveNextMessage() (wire.Message, error)
	Close() error
}

// Stats counts what one run received.
type Stats struct {
	Messages     int
	Globals      int
	Unrecognized int
}

// Collector runs one registry enumeration over a Transport.
type Collector struct {
	transport  Transport
	state      State
	interfaces InterfaceSet
	stats      Stats

	// OnGlobal, when set, observes every decoded global.
	OnGlobal func(args.Global)
	// OnUnrecognized, when set, observes messages no handler claims.
	OnUnrecognized func(wire.Message)
}

func New(t Transport) *Collector {
	return &Collector{
		transport:  t,
		state:      StateStart,
		interfaces: make(InterfaceSet),
	}
}

func (c *Collector) State() State {
	return c.state
}

func (c *Collector) Stats() Stats {
	return c.stats
}

// Collect sends the handshake and consumes events until the sync callback
// fires. On failure the interfaces gathered so far are returned alongside
// the error. The transport is closed before Collect returns.
func (c *Collector) Collect() (InterfaceSet, error) {
	if c.state != StateStart {
		return nil, ErrAlreadyCollected
	}
	defer c.transport.Close()

	if err := c.sendHandshake(); err != nil {
		return c.fail(err)
	}
	c.state = StateAwaitingGlobals

	for {
		msg, err := c.transport.ReceiveNextMessage()
		if err != nil {
			return c.fail(fmt.Errorf("%w: %w", protocol.ErrIncompleteHandshake, err))
		}
		c.stats.Messages++

		switch {
		case msg.ObjectID == protocol.DisplayObject:
			// error and delete_id carry nothing about the registry.
		case msg.ObjectID == protocol.CallbackObject:
			c.state = StateDone
			return c.interfaces, nil
		case msg.ObjectID == protocol.RegistryObject && msg.Opcode == protocol.RegistryGlobal:
			g, err := args.DecodeGlobal(msg.Payload)
			if err != nil {
				return c.fail(fmt.Errorf("registry: global event: %w", err))
			}
			c.interfaces[g.Interface] = g.Version
			c.stats.Globals++
			if c.OnGlobal != nil {
				c.OnGlobal(g)
			}
		default:
			c.stats.Unrecognized++
			log.Warn().
				Uint32("object_id", msg.ObjectID).
				Uint16("opcode", msg.Opcode).
				Msg("unknown message received")
			if c.OnUnrecognized != nil {
				c.OnUnrecognized(msg)
			}
		}
	}
}

func (c *Collector) sendHandshake() error {
	getRegistry := wire.EncodeRequest(protocol.DisplayObject, protocol.DisplayGetRegistry, args.EncodeUint32(protocol.RegistryObject))
	if err := c.transport.Send(getRegistry); err != nil {
		return err
	}
	sync := wire.EncodeRequest(protocol.DisplayObject, protocol.DisplaySync, args.EncodeUint32(protocol.CallbackObject))
	return c.transport.Send(sync)
}

func (c *Collector) fail(err error) (InterfaceSet, error) {
	c.state = StateErrored
	return c.interfaces, err
}
