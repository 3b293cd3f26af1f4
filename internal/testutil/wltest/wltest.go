// Package wltest provides a scripted fake compositor and frame builders for
// exercising the registry handshake over real unix sockets.
package wltest

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/protocol/args"
	"github.com/danmuck/compcheck/internal/protocol/wire"
)

// HandshakeLen is the byte length of the get_registry + sync request pair.
const HandshakeLen = 2 * (wire.HeaderLen + 4)

// GlobalFrame builds a wl_registry.global event.
func GlobalFrame(name uint32, iface string, version uint32) []byte {
	payload := append(args.EncodeUint32(name), args.EncodeString(iface)...)
	payload = append(payload, args.EncodeUint32(version)...)
	return wire.EncodeRequest(protocol.RegistryObject, protocol.RegistryGlobal, payload)
}

// DoneFrame builds a wl_callback.done event on the sync callback object.
func DoneFrame(serial uint32) []byte {
	return wire.EncodeRequest(protocol.CallbackObject, 0, args.EncodeUint32(serial))
}

// DeleteIDFrame builds a wl_display.delete_id event.
func DeleteIDFrame(id uint32) []byte {
	return wire.EncodeRequest(protocol.DisplayObject, 1, args.EncodeUint32(id))
}

// Concat joins frames into one stream.
func Concat(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

// Script drives one accepted client connection.
type Script struct {
	// Events is written after the handshake requests have been read.
	Events []byte
	// Chunk splits the event stream into writes of this size when > 0.
	Chunk int
}

// Compositor is a fake display server that serves one client.
type Compositor struct {
	Path     string
	ln       net.Listener
	requests chan []byte
	finished chan struct{}
}

// ShortTempDir returns a temp dir short enough for unix socket paths.
func ShortTempDir(t testing.TB) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "wl")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// StartCompositor listens on dir/name and serves script to the first client.
func StartCompositor(t testing.TB, dir, name string, script Script) *Compositor {
	t.Helper()
	path := filepath.Join(dir, name)
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen %s: %v", path, err)
	}
	c := &Compositor{
		Path:     path,
		ln:       ln,
		requests: make(chan []byte, 1),
		finished: make(chan struct{}),
	}
	t.Cleanup(func() { _ = ln.Close() })
	go c.serve(script)
	return c
}

// Requests returns the handshake bytes the client sent.
func (c *Compositor) Requests(t testing.TB) []byte {
	t.Helper()
	select {
	case b := <-c.requests:
		return b
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for handshake on %s", c.Path)
	}
	return nil
}

// Wait blocks until the served connection has been torn down.
func (c *Compositor) Wait(t testing.TB) {
	t.Helper()
	select {
	case <-c.finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for compositor %s to finish", c.Path)
	}
}

func (c *Compositor) serve(script Script) {
	defer close(c.finished)
	conn, err := c.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	req := make([]byte, HandshakeLen)
	if _, err := io.ReadFull(conn, req); err != nil {
		return
	}
	c.requests <- req

	events := script.Events
	chunk := script.Chunk
	if chunk <= 0 {
		chunk = len(events)
	}
	for len(events) > 0 {
		n := min(chunk, len(events))
		if _, err := conn.Write(events[:n]); err != nil {
			return
		}
		events = events[n:]
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
	_, _ = io.Copy(io.Discard, conn)
}
