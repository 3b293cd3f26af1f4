package session

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danmuck/compcheck/internal/protocol"
	"golang.org/x/sys/unix"
)

var procRoot = "/proc"

// LookupPeerName resolves the command name of the process on the other end
// of conn from its SO_PEERCRED pid.
func LookupPeerName(conn *net.UnixConn) (string, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return "", fmt.Errorf("%w: %w", protocol.ErrPeerLookup, err)
	}
	var cred *unix.Ucred
	var credErr error
	if err := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return "", fmt.Errorf("%w: %w", protocol.ErrPeerLookup, err)
	}
	if credErr != nil {
		return "", fmt.Errorf("%w: SO_PEERCRED: %w", protocol.ErrPeerLookup, credErr)
	}
	return commForPID(cred.Pid)
}

func commForPID(pid int32) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("%w: invalid pid %d", protocol.ErrPeerLookup, pid)
	}
	b, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(int(pid)), "comm"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", protocol.ErrPeerLookup, err)
	}
	name := strings.TrimSpace(string(b))
	if name == "" {
		return "", fmt.Errorf("%w: empty comm for pid %d", protocol.ErrPeerLookup, pid)
	}
	return name, nil
}
