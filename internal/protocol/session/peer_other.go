//go:build !linux

package session

import (
	"fmt"
	"net"
	"runtime"

	"github.com/danmuck/compcheck/internal/protocol"
)

// LookupPeerName is only implemented on Linux.
func LookupPeerName(conn *net.UnixConn) (string, error) {
	return "", fmt.Errorf("%w: unsupported on %s", protocol.ErrPeerLookup, runtime.GOOS)
}
