package proxyobj

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/gogpu/wlproxy/wire"
)

// Role identifies which side of the wire protocol an Endpoint plays.
type Role int

const (
	// RoleUpstream is the single connection to the real compositor.
	// The proxy is the wayland *client* on this connection.
	RoleUpstream Role = iota
	// RoleDownstream is one connection to a wayland client. The proxy
	// is the wayland *server* on this connection.
	RoleDownstream
)

var (
	ErrEndpointClosed  = errors.New("proxyobj: endpoint closed")
	ErrNoMessage       = errors.New("proxyobj: no message available")
	ErrConnectionHungUp = errors.New("proxyobj: peer hung up")
)

// outMessage is one not-yet-flushed outbound message: header bytes,
// already-encoded argument bytes, and its fds.
type outMessage struct {
	data []byte
	fds  []int
}

// Endpoint is one Wayland socket: the upstream compositor connection,
// or exactly one downstream client connection. It owns the socket, the
// inbound read buffer, the outbound message queue, and the id table
// for whichever side of the wire this endpoint represents (spec.md
// §3's Endpoint / §4.2).
type Endpoint struct {
	ID   uint64
	Role Role

	conn *net.UnixConn
	file *os.File

	Table *ObjectTable

	readBuf    []byte
	readLen    int
	pendingFds []int

	outgoing     []outMessage
	flushQueued  bool

	closed bool

	// Client is set iff Role == RoleDownstream; it is the Client
	// value that owns this Endpoint.
	Client *Client
}

// NewEndpoint wraps conn as a fresh Endpoint with an empty id table.
func NewEndpoint(id uint64, role Role, conn *net.UnixConn) (*Endpoint, error) {
	file, err := conn.File()
	if err != nil {
		return nil, fmt.Errorf("proxyobj: get socket file: %w", err)
	}
	return &Endpoint{
		ID:      id,
		Role:    role,
		conn:    conn,
		file:    file,
		Table:   NewObjectTable(),
		readBuf: make([]byte, 0, wire.MaxMessageSize*2),
	}, nil
}

// Fd returns the underlying socket file descriptor, for epoll
// registration.
func (e *Endpoint) Fd() int {
	return int(e.file.Fd())
}

// Close tears down the socket. Safe to call more than once.
func (e *Endpoint) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	_ = e.file.Close()
	return e.conn.Close()
}

// Closed reports whether Close has already run.
func (e *Endpoint) Closed() bool {
	return e.closed
}

// Enqueue appends a fully-encoded message (and its fds) to the
// outbound queue, in the order send_* calls make, and reports whether
// this is the first pending write this tick (the caller uses that to
// decide whether to call State.AddFlushable).
func (e *Endpoint) Enqueue(data []byte, fds []int) (firstThisTick bool) {
	e.outgoing = append(e.outgoing, outMessage{data: data, fds: fds})
	first := !e.flushQueued
	e.flushQueued = true
	return first
}

// HasPendingWrites reports whether Flush has more to do.
func (e *Endpoint) HasPendingWrites() bool {
	return len(e.outgoing) > 0
}

// Flush writes as much of the outbound queue as the socket currently
// accepts. A short write is not expected for SOCK_STREAM datagrams
// this small in practice, but Flush still only drops a queued message
// once it (and its fds) have gone out in full, matching spec.md §4.2's
// write policy.
func (e *Endpoint) Flush() error {
	for len(e.outgoing) > 0 {
		msg := e.outgoing[0]
		var n int
		var err error
		if len(msg.fds) > 0 {
			oob := wire.BuildRights(msg.fds)
			err = unix.Sendmsg(e.Fd(), msg.data, oob, nil, 0)
			if err == nil {
				n = len(msg.data)
			}
		} else {
			n, err = e.conn.Write(msg.data)
		}
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				return nil
			}
			return fmt.Errorf("proxyobj: flush: %w", err)
		}
		if n < len(msg.data) {
			// Partial write: keep the unsent tail queued.
			e.outgoing[0] = outMessage{data: msg.data[n:], fds: nil}
			return nil
		}
		e.outgoing = e.outgoing[1:]
	}
	e.flushQueued = false
	return nil
}

// ReadMore drains whatever the socket currently has available into the
// inbound buffer and the pending fd queue. It never blocks: the caller
// is expected to have seen this fd become readable via epoll.
func (e *Endpoint) ReadMore() error {
	buf := make([]byte, wire.MaxMessageSize)
	oob := make([]byte, 512)
	n, oobn, _, _, err := unix.Recvmsg(e.Fd(), buf, oob, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return nil
		}
		return fmt.Errorf("proxyobj: recvmsg: %w", err)
	}
	if n == 0 {
		return ErrConnectionHungUp
	}
	fds, err := wire.ParseFds(oob[:oobn])
	if err != nil {
		return err
	}
	e.readBuf = append(e.readBuf, buf[:n]...)
	e.pendingFds = append(e.pendingFds, fds...)
	return nil
}

// NextMessage cuts the next complete message off the front of the
// inbound buffer, or reports ErrNoMessage if only a partial tail
// remains (spec.md §4.2's read policy: "parse messages greedily; keep
// the partial tail").
func (e *Endpoint) NextMessage() (*wire.Message, error) {
	if len(e.readBuf) < wire.HeaderSize {
		return nil, ErrNoMessage
	}
	msg, size, err := wire.DecodeMessage(e.readBuf)
	if err != nil {
		if errors.Is(err, wire.ErrBufferTooSmall) {
			return nil, ErrNoMessage
		}
		return nil, err
	}
	e.readBuf = e.readBuf[size:]
	return msg, nil
}

// TakeFds consumes exactly n fds from the front of the pending fd
// queue, in submission order, for a message that declared n fd-typed
// arguments. It returns wire.ErrMissingFd if fewer than n are
// available.
func (e *Endpoint) TakeFds(n int) ([]int, error) {
	if n == 0 {
		return nil, nil
	}
	if len(e.pendingFds) < n {
		return nil, wire.ErrMissingFd
	}
	fds := e.pendingFds[:n]
	e.pendingFds = e.pendingFds[n:]
	return fds, nil
}
