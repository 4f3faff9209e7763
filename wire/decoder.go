package wire

import "encoding/binary"

// Decoder parses Wayland message arguments from the wire format. A
// Decoder can be reused across messages via Reset; the protocols
// package builds a fresh one per message.
type Decoder struct {
	buf    []byte
	offset int
	fds    []int
	fdIdx  int
}

// NewDecoder creates a Decoder over buf, with no fds attached yet.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// NewDecoderFds creates a Decoder over buf with fds already attached,
// for messages whose argument list includes fd-typed arguments.
func NewDecoderFds(buf []byte, fds []int) *Decoder {
	return &Decoder{buf: buf, fds: fds}
}

// Reset repositions the decoder over a new buffer and fd queue.
func (d *Decoder) Reset(buf []byte, fds []int) {
	d.buf = buf
	d.offset = 0
	d.fds = fds
	d.fdIdx = 0
}

// Remaining returns the number of unread argument bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.offset
}

// HasMore reports whether unread argument bytes remain.
func (d *Decoder) HasMore() bool {
	return d.offset < len(d.buf)
}

// RemainingFds returns the number of fds not yet consumed by Fd().
func (d *Decoder) RemainingFds() int {
	return len(d.fds) - d.fdIdx
}

// Int32 reads a signed 32-bit integer.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// Uint32 reads an unsigned 32-bit integer.
func (d *Decoder) Uint32() (uint32, error) {
	if d.offset+4 > len(d.buf) {
		return 0, ErrMissingArgument
	}
	v := binary.LittleEndian.Uint32(d.buf[d.offset:])
	d.offset += 4
	return v, nil
}

// Fixed reads a 24.8 fixed-point number.
func (d *Decoder) Fixed() (Fixed, error) {
	v, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	return Fixed(v), nil
}

// Object reads an object id argument.
func (d *Decoder) Object() (ObjectID, error) {
	v, err := d.Uint32()
	return ObjectID(v), err
}

// NewID reads a statically-typed new_id argument.
func (d *Decoder) NewID() (ObjectID, error) {
	return d.Object()
}

// NewIDFull reads a dynamically-typed new_id argument: interface name,
// version, and the client-allocated id, as used by wl_registry.bind.
func (d *Decoder) NewIDFull() (iface string, version uint32, id ObjectID, err error) {
	iface, err = d.String(false)
	if err != nil {
		return "", 0, 0, err
	}
	version, err = d.Uint32()
	if err != nil {
		return "", 0, 0, err
	}
	rawID, err := d.Uint32()
	if err != nil {
		return "", 0, 0, err
	}
	return iface, version, ObjectID(rawID), nil
}

// String reads a length-prefixed, null-terminated, 4-byte padded
// string. When nullable is true, a zero-length-prefix encodes an
// absent string and "" is returned with no error; when nullable is
// false, the same encoding is a protocol error.
func (d *Decoder) String(nullable bool) (string, error) {
	length, err := d.Uint32()
	if err != nil {
		return "", err
	}
	if length == 0 {
		if nullable {
			return "", nil
		}
		return "", ErrMalformedString
	}
	if length > MaxMessageSize {
		return "", ErrMalformedString
	}
	padded := int(length) + paddingFor(int(length))
	if d.offset+padded > len(d.buf) {
		return "", ErrMissingArgument
	}
	if d.buf[d.offset+int(length)-1] != 0 {
		return "", ErrStringNotTerminated
	}
	data := d.buf[d.offset : d.offset+int(length)-1]
	d.offset += padded
	return string(data), nil
}

// Array reads a length-prefixed, 4-byte padded byte array.
func (d *Decoder) Array() ([]byte, error) {
	length, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	if length > MaxMessageSize {
		return nil, ErrMalformedString
	}
	padded := int(length) + paddingFor(int(length))
	if d.offset+padded > len(d.buf) {
		return nil, ErrMissingArgument
	}
	data := make([]byte, length)
	copy(data, d.buf[d.offset:d.offset+int(length)])
	d.offset += padded
	return data, nil
}

// Fd consumes the next file descriptor from the inbound fd queue, in
// submission order.
func (d *Decoder) Fd() (int, error) {
	if d.fdIdx >= len(d.fds) {
		return -1, ErrMissingFd
	}
	fd := d.fds[d.fdIdx]
	d.fdIdx++
	return fd, nil
}

// DecodeHeader decodes a message header from the start of buf,
// returning the object id, opcode, and total message size in bytes.
func DecodeHeader(buf []byte) (id ObjectID, opcode Opcode, size int, err error) {
	if len(buf) < HeaderSize {
		return 0, 0, 0, ErrWrongMessageSize
	}
	rawID := binary.LittleEndian.Uint32(buf[0:4])
	sizeAndOpcode := binary.LittleEndian.Uint32(buf[4:8])
	size = int(sizeAndOpcode >> 16)
	opcode = Opcode(sizeAndOpcode & 0xffff)
	if size < HeaderSize {
		return 0, 0, 0, ErrWrongMessageSize
	}
	if size > MaxMessageSize {
		return 0, 0, 0, ErrMessageTooLarge
	}
	return ObjectID(rawID), opcode, size, nil
}

// DecodeMessage decodes one complete message starting at buf[0]. buf
// must contain at least the bytes DecodeHeader reports as the message
// size; a caller that has fewer bytes should wait for more data rather
// than call this. Fds are not attached here — callers supply them via
// msg.Fds after determining how many this opcode consumes, or via a
// Decoder seeded with the endpoint's pending fd queue.
func DecodeMessage(buf []byte) (*Message, int, error) {
	id, opcode, size, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < size {
		return nil, 0, ErrBufferTooSmall
	}
	args := make([]byte, size-HeaderSize)
	copy(args, buf[HeaderSize:size])
	return &Message{ObjectID: id, Opcode: opcode, Args: args}, size, nil
}
