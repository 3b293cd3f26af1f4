package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	HeaderLen  = 8
	MaxSize    = 0xffff
	MaxArgsLen = MaxSize - HeaderLen
)

var (
	ErrIncomplete  = errors.New("wire: incomplete frame")
	ErrInvalidSize = errors.New("wire: frame size smaller than header")
)

// Message is one decoded frame: header fields plus the raw argument payload.
type Message struct {
	ObjectID uint32
	Opcode   uint16
	Size     uint16
	Payload  []byte
}

// EncodeRequest frames args for object objectID. Args longer than MaxArgsLen
// cannot be expressed in the 16-bit size field and panic.
func EncodeRequest(objectID uint32, opcode uint16, args []byte) []byte {
	if len(args) > MaxArgsLen {
		panic(fmt.Sprintf("wire: request arguments too large: %d bytes", len(args)))
	}
	size := uint32(HeaderLen + len(args))
	buf := make([]byte, HeaderLen+len(args))
	binary.LittleEndian.PutUint32(buf[0:4], objectID)
	binary.LittleEndian.PutUint32(buf[4:8], size<<16|uint32(opcode))
	copy(buf[HeaderLen:], args)
	return buf
}

// TryDecodeMessage decodes the first frame in buf. It consumes nothing and
// returns ErrIncomplete until the whole frame is buffered.
func TryDecodeMessage(buf []byte) (Message, int, error) {
	if len(buf) < HeaderLen {
		return Message{}, 0, ErrIncomplete
	}
	objectID := binary.LittleEndian.Uint32(buf[0:4])
	sizeOp := binary.LittleEndian.Uint32(buf[4:8])
	size := uint16(sizeOp >> 16)
	if size < HeaderLen {
		return Message{}, 0, fmt.Errorf("%w: object %d size %d", ErrInvalidSize, objectID, size)
	}
	if len(buf) < int(size) {
		return Message{}, 0, ErrIncomplete
	}
	payload := make([]byte, int(size)-HeaderLen)
	copy(payload, buf[HeaderLen:size])
	return Message{
		ObjectID: objectID,
		Opcode:   uint16(sizeOp & 0xffff),
		Size:     size,
		Payload:  payload,
	}, int(size), nil
}
