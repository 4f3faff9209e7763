// Package wire implements the Wayland wire protocol: the binary framing
// used by every message exchanged between a compositor and a client.
//
// Every message is a multiple of 4 bytes. The 8-byte header packs the
// target/source object id followed by a 16-bit message size (including
// the header) and a 16-bit opcode. Arguments are encoded as a sequence
// of 32-bit little-endian words; strings and byte arrays are length
// prefixed and padded to a 4-byte boundary. File descriptors never
// appear inline — they travel out-of-band via SCM_RIGHTS and are
// threaded through the Decoder/Encoder in argument order.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ObjectID is a Wayland object identifier, scoped to one Endpoint.
type ObjectID uint32

// Opcode is a Wayland request or event opcode.
type Opcode uint16

// Fixed is a Wayland 24.8 signed fixed-point number.
type Fixed int32

// FixedFromFloat converts a float64 to Fixed (24.8 format).
func FixedFromFloat(f float64) Fixed {
	return Fixed(f * 256.0)
}

// Float returns the Fixed value as a float64.
func (f Fixed) Float() float64 {
	return float64(f) / 256.0
}

// FixedFromInt converts an integer to Fixed.
func FixedFromInt(i int32) Fixed {
	return Fixed(i << 8)
}

// Int returns the integer part of the Fixed value.
func (f Fixed) Int() int32 {
	return int32(f) >> 8
}

// FloatToFixed converts a float64 to Fixed, clamping to the valid range.
func FloatToFixed(f float64) Fixed {
	const maxVal = float64(math.MaxInt32) / 256.0
	const minVal = float64(math.MinInt32) / 256.0
	if f > maxVal {
		f = maxVal
	} else if f < minVal {
		f = minVal
	}
	return Fixed(f * 256.0)
}

// HeaderSize is the size in bytes of a Wayland message header.
const HeaderSize = 8

// MaxMessageSize is the largest message the wire format allows (64KiB).
const MaxMessageSize = 64 * 1024

// Decode/encode errors. These map directly onto spec §4.1's contract
// and spec §7's wire-level error class; a caller that sees one of these
// must treat the originating endpoint as unreliable and close it.
var (
	ErrWrongMessageSize    = errors.New("wire: wrong message size")
	ErrTrailingBytes       = errors.New("wire: trailing bytes after message")
	ErrMissingArgument     = errors.New("wire: missing argument")
	ErrMissingFd           = errors.New("wire: missing file descriptor")
	ErrMalformedString     = errors.New("wire: malformed string")
	ErrMessageTooLarge     = errors.New("wire: message exceeds maximum size")
	ErrBufferTooSmall      = errors.New("wire: buffer too small for message")
	ErrStringNotTerminated = errors.New("wire: string not null-terminated")
)

// Message is a single decoded Wayland wire message: a header plus its
// still-encoded argument words and any file descriptors it carried.
type Message struct {
	ObjectID ObjectID
	Opcode   Opcode
	Args     []byte
	Fds      []int
}

// Size returns the total wire size of the message in bytes.
func (m *Message) Size() int {
	return HeaderSize + len(m.Args)
}

func paddingFor(length int) int {
	return (4 - (length % 4)) % 4
}
