package protocols

import (
	"net"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/gogpu/wlproxy/proxyobj"
)

// recordingDispatcher is a minimal proxyobj.Dispatcher that records
// what it was asked to do, for assertions without a live dispatch loop.
type recordingDispatcher struct {
	flushed []*proxyobj.Endpoint
	warns   []string
}

func (d *recordingDispatcher) AddFlushable(e *proxyobj.Endpoint) { d.flushed = append(d.flushed, e) }
func (d *recordingDispatcher) TraceEnabled() bool                { return false }
func (d *recordingDispatcher) Trace(string)                      {}
func (d *recordingDispatcher) Warnf(format string, args ...any) {
	d.warns = append(d.warns, format)
}

// newLoopbackEndpoint wraps one side of a fresh unix socketpair as an
// Endpoint, mirroring proxyobj's own test helper (unexported there, so
// duplicated here for this package's tests). It returns the raw fd of
// the other half, left open for the test to read/write directly.
func newLoopbackEndpoint(t *testing.T, id uint64, role proxyobj.Role) (*proxyobj.Endpoint, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	peerFd := fds[1]
	t.Cleanup(func() { _ = unix.Close(peerFd) })

	file := os.NewFile(uintptr(fds[0]), "endpoint")
	conn, err := net.FileConn(file)
	_ = file.Close()
	if err != nil {
		t.Fatalf("FileConn: %v", err)
	}
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		t.Fatalf("not a UnixConn")
	}
	ep, err := proxyobj.NewEndpoint(id, role, unixConn)
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}
	t.Cleanup(func() { _ = ep.Close() })
	return ep, peerFd
}

// flushAndReadRaw flushes sender's queued writes, then reads whatever
// bytes arrived on the raw peer fd (the other half of the socketpair
// newLoopbackEndpoint built sender from).
func flushAndReadRaw(t *testing.T, sender *proxyobj.Endpoint, peerFd int) []byte {
	t.Helper()
	if err := sender.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	buf := make([]byte, 4096)
	n, err := unix.Read(peerFd, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return buf[:n]
}
