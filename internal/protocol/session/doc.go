// Package session owns one client connection to a display server socket.
//
// Ownership boundary:
// - unix socket dial, write and shutdown
// - buffered frame receive via wire.Reader
// - best-effort peer process lookup
// - connect retry/backoff primitives
//
// A Conn is used for a single registry enumeration and then closed.
package session
