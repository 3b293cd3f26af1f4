package wire

import (
	"bytes"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"
	"testing/iotest"

	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/testutil/testlog"
)

func TestReaderServesSeveralFramesFromOneRead(t *testing.T) {
	testlog.Start(t)
	stream := append(EncodeRequest(2, 0, []byte("1234")), EncodeRequest(3, 0, []byte("5678"))...)
	r := NewReader(bytes.NewReader(stream))

	first, err := r.Next()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.ObjectID != 2 {
		t.Fatalf("unexpected first frame: %+v", first)
	}
	if r.Buffered() != 12 {
		t.Fatalf("expected second frame buffered, have %d bytes", r.Buffered())
	}
	second, err := r.Next()
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.ObjectID != 3 || string(second.Payload) != "5678" {
		t.Fatalf("unexpected second frame: %+v", second)
	}
}

func TestReaderReassemblesSplitFrames(t *testing.T) {
	testlog.Start(t)
	stream := append(EncodeRequest(2, 0, bytes.Repeat([]byte{9}, 40)), EncodeRequest(3, 1, nil)...)
	r := NewReader(iotest.OneByteReader(bytes.NewReader(stream)))

	msg, err := r.Next()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if len(msg.Payload) != 40 {
		t.Fatalf("payload len %d", len(msg.Payload))
	}
	msg, err = r.Next()
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if msg.ObjectID != 3 || msg.Opcode != 1 || len(msg.Payload) != 0 {
		t.Fatalf("unexpected second frame: %+v", msg)
	}
}

func TestReaderReportsClosedOnEOF(t *testing.T) {
	testlog.Start(t)
	stream := EncodeRequest(2, 0, []byte("abcd"))
	r := NewReader(bytes.NewReader(append(stream, 1, 2, 3)))
	if _, err := r.Next(); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := r.Next()
	if !errors.Is(err, protocol.ErrClosed) || !errors.Is(err, io.EOF) {
		t.Fatalf("expected closed/EOF, got %v", err)
	}
	if r.Buffered() != 3 {
		t.Fatalf("partial frame should stay buffered, have %d", r.Buffered())
	}
	if _, again := r.Next(); !errors.Is(again, protocol.ErrClosed) {
		t.Fatalf("expected sticky closed error, got %v", again)
	}
}

func TestReaderSurfacesReadErrors(t *testing.T) {
	testlog.Start(t)
	boom := errors.New("boom")
	r := NewReader(iotest.ErrReader(boom))
	_, err := r.Next()
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if errors.Is(err, protocol.ErrClosed) {
		t.Fatalf("read error must not be reported as a clean close")
	}
}

func TestReaderTreatsResetAsClosed(t *testing.T) {
	testlog.Start(t)
	reset := &os.SyscallError{Syscall: "read", Err: syscall.ECONNRESET}
	_, err := NewReader(iotest.ErrReader(reset)).Next()
	if !errors.Is(err, protocol.ErrClosed) || !errors.Is(err, syscall.ECONNRESET) {
		t.Fatalf("expected closed wrapping ECONNRESET, got %v", err)
	}
}

func TestReaderDataWithEOF(t *testing.T) {
	testlog.Start(t)
	frame := EncodeRequest(3, 0, []byte("done"))
	r := NewReader(iotest.DataErrReader(bytes.NewReader(frame)))
	msg, err := r.Next()
	if err != nil {
		t.Fatalf("frame delivered with EOF should decode: %v", err)
	}
	if msg.ObjectID != 3 {
		t.Fatalf("unexpected frame: %+v", msg)
	}
}
