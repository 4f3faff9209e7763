package wire

import "encoding/binary"

// Encoder serializes Wayland message arguments to the wire format.
// An Encoder can be reused across messages via Reset; the protocols
// package builds a fresh one per message.
type Encoder struct {
	buf []byte
	fds []int
}

// NewEncoder creates an Encoder with the given initial buffer capacity.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Reset clears the encoder for reuse.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.fds = e.fds[:0]
}

// Bytes returns the encoded argument bytes accumulated so far.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Fds returns the file descriptors queued so far, in argument order.
func (e *Encoder) Fds() []int {
	return e.fds
}

// PutInt32 appends a signed 32-bit integer.
func (e *Encoder) PutInt32(v int32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
}

// PutUint32 appends an unsigned 32-bit integer.
func (e *Encoder) PutUint32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// PutFixed appends a 24.8 fixed-point number.
func (e *Encoder) PutFixed(v Fixed) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
}

// PutObject appends an object id argument. A nil-permitting reference
// is represented by id == 0.
func (e *Encoder) PutObject(id ObjectID) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(id))
}

// PutNewID appends a new_id argument for a statically-known interface
// (just the allocated object id).
func (e *Encoder) PutNewID(id ObjectID) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(id))
}

// PutNewIDFull appends a dynamically-typed new_id argument: interface
// name, version, then the allocated id. Used for wl_registry.bind.
func (e *Encoder) PutNewIDFull(iface string, version uint32, id ObjectID) {
	e.PutString(iface)
	e.PutUint32(version)
	e.PutUint32(uint32(id))
}

// PutString appends a length-prefixed, null-terminated, 4-byte padded
// string. A zero-length present string ("") is distinct from an absent
// (null) string; use PutNullString for the latter.
func (e *Encoder) PutString(s string) {
	length := uint32(len(s) + 1)
	e.buf = binary.LittleEndian.AppendUint32(e.buf, length)
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	for i := 0; i < paddingFor(int(length)); i++ {
		e.buf = append(e.buf, 0)
	}
}

// PutNullString appends an absent (null) string argument, encoded as a
// zero length with no body and no padding.
func (e *Encoder) PutNullString() {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, 0)
}

// PutArray appends a length-prefixed, 4-byte padded byte array.
func (e *Encoder) PutArray(data []byte) {
	length := uint32(len(data))
	e.buf = binary.LittleEndian.AppendUint32(e.buf, length)
	e.buf = append(e.buf, data...)
	for i := 0; i < paddingFor(int(length)); i++ {
		e.buf = append(e.buf, 0)
	}
}

// PutFd queues a file descriptor to travel out-of-band with this
// message, in argument order.
func (e *Encoder) PutFd(fd int) {
	e.fds = append(e.fds, fd)
}

// EncodeMessage packs a complete message (header + already-built
// argument bytes) ready to be written to a socket. Fds are not encoded
// here; they are carried separately via SCM_RIGHTS.
func EncodeMessage(objectID ObjectID, opcode Opcode, args []byte) ([]byte, error) {
	total := HeaderSize + len(args)
	if total > MaxMessageSize {
		return nil, ErrMessageTooLarge
	}
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(objectID))
	sizeAndOpcode := uint32(total)<<16 | uint32(opcode)
	binary.LittleEndian.PutUint32(buf[4:8], sizeAndOpcode)
	copy(buf[8:], args)
	return buf, nil
}
