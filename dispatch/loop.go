// Package dispatch drives the proxy's single-threaded event loop: an
// epoll set over the one upstream connection and every downstream
// client connection, reading whichever fds become ready and routing
// each decoded message to the proxy Object it is addressed to.
//
// The teacher's own Display.Dispatch/DispatchOne (gogpu-gogpu's
// internal/platform/wayland/display.go) poll a single fd synchronously
// with no multiplexing of its own, since a Wayland client only ever
// has one connection to watch; this package generalizes that same
// read-decode-dispatch shape to N fds via epoll, since a proxy must
// watch the upstream connection and every downstream client at once.
package dispatch

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/gogpu/wlproxy/protocols"
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/proxystate"
	"github.com/gogpu/wlproxy/wire"
)

// maxEpollEvents bounds how many ready fds Run collects per EpollWait
// call; any remainder is simply picked up on the next iteration.
const maxEpollEvents = 64

// Loop owns the epoll instance and the fd->connection bookkeeping the
// teacher's Display never needed, since it only ever watched itself.
type Loop struct {
	state *proxystate.State
	epfd  int

	// upstreamDisplay is the one wl_display incarnation bound to the
	// single shared upstream connection, registered at the well-known
	// id 1 in state.Upstream.Table so upstream-addressed display
	// events (error, delete_id) route through the ordinary table
	// lookup like any other object, with no special case in Run.
	upstreamDisplay *protocols.WlDisplay

	clientsByFd map[int]*proxyobj.Client

	listener ClientListener

	// shutdownFd is an eventfd folded into the same epoll set as every
	// connection. unix.EpollWait(-1) would otherwise never notice
	// state.Destroy() being called from outside the loop goroutine (a
	// child-process watcher, say) until the next unrelated fd woke it
	// up; writing to shutdownFd via Shutdown is the documented safe
	// way to wake an epoll_wait from another goroutine.
	shutdownFd int
}

// ClientListener accepts newly connected downstream peers. It is
// defined here, not in harness, so dispatch never imports harness;
// harness.Listener satisfies it structurally. Folding the listening
// socket into the same epoll set as every connection it accepts keeps
// the whole proxy single-threaded — no goroutine or lock guards
// Loop's state.
type ClientListener interface {
	Fd() int
	Accept() (*proxyobj.Client, error)
}

// NewLoop creates the epoll instance and registers the already-dialed
// upstream connection. Callers add downstream clients as they are
// accepted via AddClient.
func NewLoop(state *proxystate.State) (*Loop, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("dispatch: epoll_create1: %w", err)
	}
	l := &Loop{
		state:       state,
		epfd:        epfd,
		clientsByFd: make(map[int]*proxyobj.Client),
	}
	l.upstreamDisplay = protocols.NewWlDisplay(state, state.Upstream)
	if err := state.Upstream.Table.Set(1, l.upstreamDisplay); err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("dispatch: reserve upstream display id: %w", err)
	}
	if err := l.registerFd(state.Upstream.Fd()); err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}

	shutdownFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("dispatch: eventfd: %w", err)
	}
	l.shutdownFd = shutdownFd
	if err := l.registerFd(shutdownFd); err != nil {
		_ = unix.Close(epfd)
		_ = unix.Close(shutdownFd)
		return nil, err
	}
	return l, nil
}

// Shutdown asks Run to stop at the next opportunity. Safe to call from
// any goroutine, including one watching a spawned child process exit —
// the whole dispatch loop otherwise runs single-threaded.
func (l *Loop) Shutdown() {
	l.state.Destroy()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, _ = unix.Write(l.shutdownFd, buf[:])
}

// AddClient registers a newly accepted downstream connection with both
// proxystate.State (for flush bookkeeping) and this loop's epoll set,
// and seeds its object table with a WlDisplay at the well-known id 1.
func (l *Loop) AddClient(client *proxyobj.Client) error {
	display := protocols.NewWlDisplay(l.state, l.state.Upstream)
	display.BindClient(client)
	if err := client.Endpoint.Table.Set(1, display); err != nil {
		return fmt.Errorf("dispatch: reserve client display id: %w", err)
	}
	l.state.AddClient(client)
	l.clientsByFd[client.Endpoint.Fd()] = client
	return l.registerFd(client.Endpoint.Fd())
}

// Close releases the epoll instance and the shutdown eventfd. Call
// after Run returns.
func (l *Loop) Close() error {
	_ = unix.Close(l.shutdownFd)
	return unix.Close(l.epfd)
}

// AddListener folds the proxy's downstream-facing listening socket
// into the same epoll set as every connection it accepts, so a new
// client arrives through the identical ready-fd path as any other
// message instead of a separate accept goroutine.
func (l *Loop) AddListener(ln ClientListener) error {
	l.listener = ln
	return l.registerFd(ln.Fd())
}

// RemoveClient unregisters a downstream connection that has hung up or
// been closed due to a protocol violation.
func (l *Loop) RemoveClient(client *proxyobj.Client) {
	fd := client.Endpoint.Fd()
	delete(l.clientsByFd, fd)
	_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	l.state.RemoveClient(client)
	_ = client.Endpoint.Close()
}

func (l *Loop) registerFd(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("dispatch: epoll_ctl add %d: %w", fd, err)
	}
	return nil
}

// Run blocks, servicing ready fds, until proxystate.State reports
// itself destroyed or an unrecoverable error occurs (spec.md §4.6
// steps 1-4: wait, read, decode+dispatch, flush).
func (l *Loop) Run() error {
	events := make([]unix.EpollEvent, maxEpollEvents)
	for !l.state.Destroyed() {
		n, err := unix.EpollWait(l.epfd, events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("dispatch: epoll_wait: %w", err)
		}
		for _, ev := range events[:n] {
			if err := l.handleReady(int(ev.Fd)); err != nil {
				l.state.Warnf("dispatch: %v", err)
			}
		}
		l.flushAll()
	}
	return nil
}

// handleReady drains and dispatches every complete message currently
// readable on fd, routing by direction: upstream fd messages are
// events decoded against the shared upstream table, every other fd's
// messages are requests decoded against that client's own table.
func (l *Loop) handleReady(fd int) error {
	if fd == l.shutdownFd {
		// Destroyed was already set by Shutdown; draining the counter
		// just keeps epoll from reporting it ready forever.
		var buf [8]byte
		_, _ = unix.Read(l.shutdownFd, buf[:])
		return nil
	}
	if fd == l.state.Upstream.Fd() {
		return l.readAndDispatchUpstream()
	}
	if l.listener != nil && fd == l.listener.Fd() {
		return l.acceptNewClient()
	}
	client, ok := l.clientsByFd[fd]
	if !ok {
		// Stale epoll notification for an fd already removed this tick.
		return nil
	}
	return l.readAndDispatchClient(client)
}

func (l *Loop) acceptNewClient() error {
	client, err := l.listener.Accept()
	if err != nil {
		return fmt.Errorf("dispatch: accept: %w", err)
	}
	return l.AddClient(client)
}

// isFatalEndpointError reports whether err belongs to spec.md §7's
// wire-level parse class (WrongMessageSize, TrailingBytes,
// MissingArgument, MissingFd, MalformedString) or semantic class
// (UnknownMessageID, WrongObjectType, NoClientObject) — both of which
// spec.md §7 calls "fatal for the originating endpoint: the proxy
// closes that endpoint", as opposed to the locally-recovered class
// Warnf already logs and moves past.
func isFatalEndpointError(err error) bool {
	return errors.Is(err, wire.ErrWrongMessageSize) ||
		errors.Is(err, wire.ErrTrailingBytes) ||
		errors.Is(err, wire.ErrMissingArgument) ||
		errors.Is(err, wire.ErrMissingFd) ||
		errors.Is(err, wire.ErrMalformedString) ||
		errors.Is(err, proxyobj.ErrUnknownMessageID) ||
		errors.Is(err, proxyobj.ErrWrongObjectType) ||
		errors.Is(err, proxyobj.ErrNoClientObject)
}

func (l *Loop) readAndDispatchUpstream() error {
	ep := l.state.Upstream
	if err := ep.ReadMore(); err != nil {
		if errors.Is(err, proxyobj.ErrConnectionHungUp) {
			_ = l.state.Fatal(fmt.Errorf("dispatch: upstream connection closed"))
			l.state.Destroy()
			return nil
		}
		return err
	}
	for {
		msg, err := ep.NextMessage()
		if err != nil {
			if errors.Is(err, proxyobj.ErrNoMessage) {
				return nil
			}
			if isFatalEndpointError(err) {
				_ = l.state.Fatal(fmt.Errorf("dispatch: upstream wire error: %w", err))
				l.state.Destroy()
				return nil
			}
			return err
		}
		obj, ok := ep.Table.Lookup(uint32(msg.ObjectID))
		if !ok {
			l.state.Warnf("dispatch: event for unknown upstream id %d (opcode %d), dropping", msg.ObjectID, msg.Opcode)
			continue
		}
		if err := obj.HandleEvent(msg); err != nil {
			if isFatalEndpointError(err) {
				_ = l.state.Fatal(fmt.Errorf("dispatch: upstream event dispatch: %w", err))
				l.state.Destroy()
				return nil
			}
			l.state.Warnf("dispatch: upstream event dispatch: %v", err)
		}
	}
}

func (l *Loop) readAndDispatchClient(client *proxyobj.Client) error {
	ep := client.Endpoint
	if err := ep.ReadMore(); err != nil {
		if errors.Is(err, proxyobj.ErrConnectionHungUp) {
			l.RemoveClient(client)
			return nil
		}
		return err
	}
	for {
		msg, err := ep.NextMessage()
		if err != nil {
			if errors.Is(err, proxyobj.ErrNoMessage) {
				return nil
			}
			if isFatalEndpointError(err) {
				l.state.Warnf("dispatch: client wire error, closing connection: %v", err)
				l.RemoveClient(client)
				return nil
			}
			return err
		}
		obj, ok := ep.Table.Lookup(uint32(msg.ObjectID))
		if !ok {
			l.state.Warnf("dispatch: request for unknown client id %d (opcode %d), dropping client", msg.ObjectID, msg.Opcode)
			l.RemoveClient(client)
			return nil
		}
		if err := obj.HandleRequest(client, msg); err != nil {
			if isFatalEndpointError(err) {
				l.state.Warnf("dispatch: client request error, closing connection: %v", err)
				l.RemoveClient(client)
				return nil
			}
			l.state.Warnf("dispatch: client request dispatch: %v", err)
		}
	}
}

// flushAll writes out every endpoint queued by AddFlushable this tick,
// draining the queue proxystate.State accumulated via the
// proxyobj.Dispatcher calls ObjectCore.SendTo{Server,Client} made.
func (l *Loop) flushAll() {
	for _, ep := range l.state.DrainFlushable() {
		if err := ep.Flush(); err != nil {
			l.state.Warnf("dispatch: flush: %v", err)
		}
	}
}
