package args

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/danmuck/compcheck/internal/protocol"
)

const wordLen = 4

// Global is one wl_registry.global announcement.
type Global struct {
	ID        uint32
	Interface string
	Version   uint32
}

func EncodeUint32(v uint32) []byte {
	buf := make([]byte, wordLen)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func DecodeUint32(b []byte) (uint32, error) {
	if len(b) < wordLen {
		return 0, fmt.Errorf("%w: uint32 needs %d bytes, have %d", protocol.ErrMalformedArgument, wordLen, len(b))
	}
	return binary.LittleEndian.Uint32(b[:wordLen]), nil
}

// EncodeString writes s as a NUL-terminated, length-prefixed string padded
// to a word boundary.
func EncodeString(s string) []byte {
	n := len(s) + 1
	buf := make([]byte, wordLen+n+padding(n))
	binary.LittleEndian.PutUint32(buf[0:wordLen], uint32(n))
	copy(buf[wordLen:], s)
	return buf
}

// DecodeString returns the string at the start of b and the bytes it
// occupies, padding included. Padding missing at the very end of b is
// tolerated; the count is then clamped to len(b). The last byte of the
// announced length must be the terminating NUL and the body may hold no other.
func DecodeString(b []byte) (string, int, error) {
	n, err := DecodeUint32(b)
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		return "", wordLen, nil
	}
	end := uint64(wordLen) + uint64(n)
	if uint64(len(b)) < end {
		return "", 0, fmt.Errorf("%w: string length %d exceeds %d available bytes", protocol.ErrMalformedArgument, n, len(b)-wordLen)
	}
	body := b[wordLen : end-1]
	if b[end-1] != 0 {
		return "", 0, fmt.Errorf("%w: string of length %d is not NUL-terminated", protocol.ErrMalformedArgument, n)
	}
	if bytes.IndexByte(body, 0) >= 0 {
		return "", 0, fmt.Errorf("%w: string of length %d has an embedded NUL", protocol.ErrMalformedArgument, n)
	}
	s := string(body)
	consumed := int(end) + padding(int(n))
	if consumed > len(b) {
		consumed = len(b)
	}
	return s, consumed, nil
}

// DecodeGlobal decodes the name, interface and version arguments of a
// wl_registry.global event.
func DecodeGlobal(payload []byte) (Global, error) {
	id, err := DecodeUint32(payload)
	if err != nil {
		return Global{}, fmt.Errorf("global name: %w", err)
	}
	rest := payload[wordLen:]
	iface, consumed, err := DecodeString(rest)
	if err != nil {
		return Global{}, fmt.Errorf("global interface: %w", err)
	}
	if iface == "" {
		return Global{}, fmt.Errorf("%w: global %d has empty interface", protocol.ErrMalformedArgument, id)
	}
	version, err := DecodeUint32(rest[consumed:])
	if err != nil {
		return Global{}, fmt.Errorf("global version: %w", err)
	}
	return Global{ID: id, Interface: iface, Version: version}, nil
}

func padding(n int) int {
	return (wordLen - n%wordLen) % wordLen
}
