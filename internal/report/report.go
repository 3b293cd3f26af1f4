// Package report renders enumeration results as a text table or YAML.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/danmuck/compcheck/internal/compare"
	"github.com/danmuck/compcheck/internal/probe"
	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/registry"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("report: unknown format")

// Report is the rendered view of one run. Missing is indexed like Results
// and stays nil for endpoints that were not compared.
type Report struct {
	Results []probe.EndpointResult
	Missing [][]compare.Missing
}

// Build diffs the successful endpoints when more than one was probed.
func Build(results []probe.EndpointResult) Report {
	rep := Report{Results: results, Missing: make([][]compare.Missing, len(results))}
	if len(results) < 2 {
		return rep
	}
	eps, idx := probe.Comparable(results)
	for i, m := range compare.Diff(eps) {
		rep.Missing[idx[i]] = m
	}
	return rep
}

// Failed reports whether any endpoint did not complete its handshake.
func (r Report) Failed() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return true
		}
	}
	return false
}

func Write(w io.Writer, format string, rep Report) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return WriteText(w, rep)
	case FormatYAML:
		return WriteYAML(w, rep)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteText prints the interface table for a single endpoint, or the
// per-endpoint missing sections when several were probed.
func WriteText(w io.Writer, rep Report) error {
	tw := &textWriter{w: w, bold: lipgloss.NewRenderer(w).NewStyle().Bold(true)}
	if len(rep.Results) == 1 {
		res := rep.Results[0]
		if !res.OK() {
			tw.failure(res)
		}
		if res.Interfaces != nil {
			tw.table(res.Interfaces)
		}
		return tw.err
	}

	for _, res := range rep.Results {
		if !res.OK() {
			tw.failure(res)
		}
	}
	for i, res := range rep.Results {
		if res.OK() {
			tw.missing(res, rep.missingAt(i))
		}
	}
	tw.line("")
	return tw.err
}

func (r Report) missingAt(i int) []compare.Missing {
	if i < len(r.Missing) {
		return r.Missing[i]
	}
	return nil
}

// WriteConnecting prints the single-endpoint banner shown before a probe.
func WriteConnecting(w io.Writer, path string) error {
	_, err := fmt.Fprintf(w, "\n  Connecting to %s\n", path)
	return err
}

// WriteConnected prints the resolved peer after a single-endpoint probe.
func WriteConnected(w io.Writer, peer string) error {
	_, err := fmt.Fprintf(w, "  Connected to %s\n\n", peer)
	return err
}

type textWriter struct {
	w    io.Writer
	bold lipgloss.Style
	err  error
}

func (t *textWriter) line(format string, a ...any) {
	if t.err != nil {
		return
	}
	s := strings.TrimRight(fmt.Sprintf(format, a...), " ")
	_, t.err = fmt.Fprintln(t.w, s)
}

func (t *textWriter) table(set registry.InterfaceSet) {
	t.line("  %-45s  %2s", "Interface", "Version")
	for _, name := range set.Names() {
		t.line("  %-45s  %2d", name, set[name])
	}
	t.line("")
}

func (t *textWriter) missing(res probe.EndpointResult, missing []compare.Missing) {
	if len(missing) == 0 {
		return
	}
	t.line("")
	t.line("%s", t.bold.Render(fmt.Sprintf("  Protocols missing from %s @ %s", res.PeerName, res.Label)))
	for _, m := range missing {
		own := ""
		if m.HasOwned && m.Owned != 0 {
			own = fmt.Sprintf("(has version %d)", m.Owned)
		}
		t.line("  %-45s  %2d  %s", m.Name, m.Required, own)
	}
}

func (t *textWriter) failure(res probe.EndpointResult) {
	switch {
	case errors.Is(res.Err, protocol.ErrConnect):
		t.line("  failed to connect to %s: %v", res.Label, res.Err)
	case errors.Is(res.Err, protocol.ErrIncompleteHandshake):
		t.line("  error in wayland communication with %s @ %s", res.PeerName, res.Label)
	default:
		t.line("  failed to enumerate %s @ %s: %v", res.PeerName, res.Label, res.Err)
	}
	t.line("")
}
