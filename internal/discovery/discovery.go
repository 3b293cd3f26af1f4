// Package discovery locates compositor sockets under the runtime directory.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvRuntimeDir = "XDG_RUNTIME_DIR"
	SocketPrefix  = "wayland-"
)

var ErrNoRuntimeDir = errors.New("discovery: XDG_RUNTIME_DIR not set")

// Socket is one candidate endpoint.
type Socket struct {
	Label string
	Path  string
}

func RuntimeDir() (string, error) {
	dir := strings.TrimSpace(os.Getenv(EnvRuntimeDir))
	if dir == "" {
		return "", ErrNoRuntimeDir
	}
	return dir, nil
}

// FindSockets probes wayland-0, wayland-1, ... in dir and stops at the
// first index that does not exist.
func FindSockets(dir string) ([]Socket, error) {
	var out []Socket
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s%d", SocketPrefix, i)
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return out, nil
			}
			return out, fmt.Errorf("discovery: stat %s: %w", path, err)
		}
		out = append(out, Socket{Label: name, Path: path})
	}
}

// Resolve maps user supplied socket names onto dir. Absolute paths are kept
// and labelled by their base name.
func Resolve(dir string, names []string) []Socket {
	out := make([]Socket, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if filepath.IsAbs(name) {
			out = append(out, Socket{Label: filepath.Base(name), Path: name})
			continue
		}
		out = append(out, Socket{Label: name, Path: filepath.Join(dir, name)})
	}
	return out
}
