package dispatch

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/proxystate"
	"github.com/gogpu/wlproxy/protocols"
	"github.com/gogpu/wlproxy/wire"
)

// newLoopbackEndpoint wraps one side of a fresh unix socketpair as an
// Endpoint, mirroring the identical helper protocols_test.go and
// proxyobj's own endpoint_test.go each keep privately — there is no
// exported seam to fake fd/message delivery, so every package that
// needs a live connection to test against builds one the same way.
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

func newTestLoop(t *testing.T) (*Loop, int, int) {
	t.Helper()
	upstream, upstreamPeerFd := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	baseline := proxystate.BaselineV1Unstable()
	mapper := proxystate.NewMapper(baseline, nil, nil)
	state := proxystate.New(baseline, mapper, zerolog.Nop(), false)
	state.Upstream = upstream

	loop, err := NewLoop(state)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	t.Cleanup(func() { _ = loop.Close() })
	return loop, upstreamPeerFd, upstream.Fd()
}

func addTestClient(t *testing.T, loop *Loop) (*proxyobj.Client, int) {
	t.Helper()
	downstream, clientPeerFd := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)
	if err := loop.AddClient(client); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	return client, clientPeerFd
}

func sendRaw(t *testing.T, fd int, data []byte) {
	t.Helper()
	if _, err := unix.Write(fd, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readRaw(t *testing.T, fd int) []byte {
	t.Helper()
	buf := make([]byte, 4096)
	n, err := unix.Read(fd, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return buf[:n]
}

// TestLoopForwardsSyncAndDeliversDoneEvent drives a full
// wl_display.sync round trip through the loop's fd-routing rather than
// through one protocols.Object in isolation: a downstream request
// arrives on the client's own table, is forwarded upstream, and the
// resulting wl_callback.done event arrives on the upstream fd and is
// routed back through the shared upstream table to the right client.
func TestLoopForwardsSyncAndDeliversDoneEvent(t *testing.T) {
	loop, upstreamPeerFd, upstreamFd := newTestLoop(t)
	client, clientPeerFd := addTestClient(t, loop)
	clientFd := client.Endpoint.Fd()

	const clientCallbackID = 5
	enc := wire.NewEncoder(4)
	enc.PutUint32(clientCallbackID)
	data, err := wire.EncodeMessage(1, 0 /* wl_display.sync */, enc.Bytes())
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	sendRaw(t, clientPeerFd, data)

	if err := loop.handleReady(clientFd); err != nil {
		t.Fatalf("handleReady(client): %v", err)
	}
	loop.flushAll()

	forwarded := readRaw(t, upstreamPeerFd)
	got, _, err := wire.DecodeMessage(forwarded)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Opcode != 0 {
		t.Fatalf("forwarded opcode = %v, want wl_display.sync (0)", got.Opcode)
	}
	dec := wire.NewDecoder(got.Args)
	serverCallbackID, err := dec.Object()
	if err != nil {
		t.Fatalf("decode forwarded callback id: %v", err)
	}

	doneEnc := wire.NewEncoder(4)
	doneEnc.PutUint32(42) // arbitrary callback_data
	doneData, err := wire.EncodeMessage(serverCallbackID, 0 /* wl_callback.done */, doneEnc.Bytes())
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	sendRaw(t, upstreamPeerFd, doneData)

	if err := loop.handleReady(upstreamFd); err != nil {
		t.Fatalf("handleReady(upstream): %v", err)
	}
	loop.flushAll()

	delivered := readRaw(t, clientPeerFd)
	doneMsg, _, err := wire.DecodeMessage(delivered)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if doneMsg.ObjectID != wire.ObjectID(clientCallbackID) || doneMsg.Opcode != 0 {
		t.Fatalf("delivered done event = %+v, want object %d opcode 0", doneMsg, clientCallbackID)
	}
}

// TestLoopRemovesClientOnUnknownObjectID exercises the generic,
// codec-level malformed-client handling: a request addressed to an id
// the client never bound is a fatal error for that endpoint, which
// costs that one client its connection, not the whole proxy process.
func TestLoopRemovesClientOnUnknownObjectID(t *testing.T) {
	loop, _, _ := newTestLoop(t)
	client, clientPeerFd := addTestClient(t, loop)
	clientFd := client.Endpoint.Fd()

	data, err := wire.EncodeMessage(999, 0, nil)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	sendRaw(t, clientPeerFd, data)

	if err := loop.handleReady(clientFd); err != nil {
		t.Fatalf("handleReady: %v", err)
	}

	if _, ok := loop.clientsByFd[clientFd]; ok {
		t.Error("client addressing an unknown object id should have been removed")
	}
}

// TestLoopClosesClientOnTruncatedMessage covers spec.md §7's
// wire-level fatal class: a wl_display#1.sync with no new_id argument
// (header only, no args) fails dec.NewID() with ErrMissingArgument,
// which is fatal for the originating endpoint, not a warn-and-continue
// condition. Regression test for a truncated message being logged and
// re-delivered forever instead of closing the connection.
func TestLoopClosesClientOnTruncatedMessage(t *testing.T) {
	loop, _, _ := newTestLoop(t)
	client, clientPeerFd := addTestClient(t, loop)
	clientFd := client.Endpoint.Fd()

	data, err := wire.EncodeMessage(1, 0 /* wl_display.sync */, nil)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	sendRaw(t, clientPeerFd, data)

	if err := loop.handleReady(clientFd); err != nil {
		t.Fatalf("handleReady: %v", err)
	}

	if _, ok := loop.clientsByFd[clientFd]; ok {
		t.Error("a truncated message should have closed the client connection")
	}
	if !client.Endpoint.Closed() {
		t.Error("the client's endpoint should be closed, not left open to re-read the same bytes")
	}
}

// TestLoopHandlesSurfaceDoubleDestroyWithoutDoubleDeleteID covers the
// release race spec.md calls out for wl_surface: a client destroy
// request and the upstream's own delete_id for the same object can
// arrive in either order, but the proxy must forward exactly one
// wl_display.delete_id downstream no matter which side completes the
// handshake last.
func TestLoopHandlesSurfaceDoubleDestroyWithoutDoubleDeleteID(t *testing.T) {
	loop, upstreamPeerFd, upstreamFd := newTestLoop(t)
	client, clientPeerFd := addTestClient(t, loop)
	clientFd := client.Endpoint.Fd()

	surface := protocols.NewWlSurface(loop.state, loop.state.Upstream, 1)
	srvID, err := loop.state.Upstream.Table.Generate(surface)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	surface.Core().ServerObjID = &srvID
	const clientSurfaceID = 10
	if err := client.Endpoint.Table.Set(clientSurfaceID, surface); err != nil {
		t.Fatalf("Table.Set: %v", err)
	}
	surface.Core().Client = client
	cid := uint32(clientSurfaceID)
	surface.Core().ClientObjID = &cid

	destroyData, err := wire.EncodeMessage(clientSurfaceID, 0 /* wl_surface.destroy */, nil)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	sendRaw(t, clientPeerFd, destroyData)
	if err := loop.handleReady(clientFd); err != nil {
		t.Fatalf("handleReady(client destroy): %v", err)
	}
	loop.flushAll()
	// The destroy itself, forwarded upstream; drained so it doesn't
	// interfere with reading the delete_id reply below.
	_ = readRaw(t, upstreamPeerFd)

	enc := wire.NewEncoder(4)
	enc.PutUint32(srvID)
	deleteIDData, err := wire.EncodeMessage(1 /* wl_display */, 1 /* delete_id */, enc.Bytes())
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	sendRaw(t, upstreamPeerFd, deleteIDData)
	if err := loop.handleReady(upstreamFd); err != nil {
		t.Fatalf("handleReady(upstream delete_id): %v", err)
	}
	loop.flushAll()

	delivered := readRaw(t, clientPeerFd)
	got, _, err := wire.DecodeMessage(delivered)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.ObjectID != 1 || got.Opcode != 1 {
		t.Fatalf("delivered event = %+v, want wl_display.delete_id", got)
	}
	if _, ok := client.Endpoint.Table.Lookup(clientSurfaceID); ok {
		t.Error("surface should have been released from the client's table")
	}
	if !surface.Core().ForwardedDeleteID {
		t.Error("surface should record that delete_id was forwarded exactly once")
	}
}

// TestLoopShutdownUnblocksRun confirms Shutdown wakes an epoll_wait
// blocked indefinitely, the mechanism cmd/run.go relies on to let a
// child-process watcher goroutine end the loop once the wrapped
// application exits.
func TestLoopShutdownUnblocksRun(t *testing.T) {
	loop, _, _ := newTestLoop(t)

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	loop.Shutdown()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned an error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}
