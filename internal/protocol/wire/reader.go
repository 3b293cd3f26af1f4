package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/danmuck/compcheck/internal/protocol"
)

// ChunkSize bounds a single read from the underlying stream.
const ChunkSize = 4096

// Reader splits a byte stream into frames. Bytes past the last complete
// frame are kept for the next call.
type Reader struct {
	src   io.Reader
	chunk []byte
	buf   []byte
	off   int
	err   error
}

func NewReader(src io.Reader) *Reader {
	return &Reader{src: src, chunk: make([]byte, ChunkSize)}
}

// Next returns the next complete frame, reading from the stream only when
// the buffered bytes do not hold one. Once the stream ends every further
// call reports the same error, wrapping protocol.ErrClosed for a peer close.
func (r *Reader) Next() (Message, error) {
	for {
		msg, n, err := TryDecodeMessage(r.buf[r.off:])
		if err == nil {
			r.off += n
			return msg, nil
		}
		if !errors.Is(err, ErrIncomplete) {
			return Message{}, err
		}
		if r.err != nil {
			return Message{}, r.err
		}
		r.compact()
		n, err = r.src.Read(r.chunk)
		if n > 0 {
			r.buf = append(r.buf, r.chunk[:n]...)
		}
		if err != nil {
			r.err = classifyReadError(err)
		}
	}
}

// Buffered reports how many undelivered bytes are held.
func (r *Reader) Buffered() int {
	return len(r.buf) - r.off
}

func (r *Reader) compact() {
	if r.off == 0 {
		return
	}
	rest := copy(r.buf, r.buf[r.off:])
	r.buf = r.buf[:rest]
	r.off = 0
}

// classifyReadError maps the ways a peer can hang up onto protocol.ErrClosed.
func classifyReadError(err error) error {
	var errno syscall.Errno
	closed := errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		(errors.As(err, &errno) && (errno == syscall.EPIPE || errno == syscall.ECONNRESET))
	if closed {
		return fmt.Errorf("%w: %w", protocol.ErrClosed, err)
	}
	return fmt.Errorf("wire: read: %w", err)
}
