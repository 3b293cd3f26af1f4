package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/testutil/testlog"
	"github.com/danmuck/compcheck/internal/testutil/wltest"
)

func TestCommForPID(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	prev := procRoot
	procRoot = root
	t.Cleanup(func() { procRoot = prev })

	if err := os.MkdirAll(filepath.Join(root, "4242"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "4242", "comm"), []byte("labwc\n"), 0o644); err != nil {
		t.Fatalf("write comm: %v", err)
	}
	name, err := commForPID(4242)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if name != "labwc" {
		t.Fatalf("unexpected name: %q", name)
	}

	if _, err := commForPID(4243); !errors.Is(err, protocol.ErrPeerLookup) {
		t.Fatalf("expected ErrPeerLookup for missing pid, got %v", err)
	}
	if _, err := commForPID(0); !errors.Is(err, protocol.ErrPeerLookup) {
		t.Fatalf("expected ErrPeerLookup for pid 0, got %v", err)
	}
}

func TestOpenFallsBackToUnknownPeer(t *testing.T) {
	testlog.Start(t)
	prev := procRoot
	procRoot = t.TempDir()
	t.Cleanup(func() { procRoot = prev })

	dir := wltest.ShortTempDir(t)
	comp := wltest.StartCompositor(t, dir, "wayland-0", wltest.Script{})

	c, err := Open(comp.Path, DefaultConfig())
	if err != nil {
		t.Fatalf("open with failing peer lookup: %v", err)
	}
	if c.PeerName() != protocol.UnknownPeer {
		t.Fatalf("expected %q, got %q", protocol.UnknownPeer, c.PeerName())
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	comp.Wait(t)
}
