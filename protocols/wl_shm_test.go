package protocols

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

func TestWlShmCreatePoolConsumesFdAndBindsPool(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, upstreamPeerFd := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, downstreamPeerFd := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	shm := NewWlShm(disp, upstream, 1)
	srvID, err := upstream.Table.Generate(shm)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	shm.Core().ServerObjID = &srvID

	memfd, err := unix.MemfdCreate("wl_shm_pool", 0)
	if err != nil {
		t.Fatalf("MemfdCreate: %v", err)
	}
	defer unix.Close(memfd)

	enc := wire.NewEncoder(8)
	enc.PutUint32(42) // client-chosen new_id for the pool
	enc.PutInt32(4096)
	data, err := wire.EncodeMessage(3, opWlShmCreatePool, enc.Bytes())
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	// Send the request with its fd attached via SCM_RIGHTS on the raw
	// peer fd, exactly as a real client's create_pool call would — this
	// exercises the real ReadMore/TakeFds path rather than a fake.
	if err := unix.Sendmsg(downstreamPeerFd, data, wire.BuildRights([]int{memfd}), nil, 0); err != nil {
		t.Fatalf("Sendmsg: %v", err)
	}
	if err := downstream.ReadMore(); err != nil {
		t.Fatalf("ReadMore: %v", err)
	}
	msg, err := downstream.NextMessage()
	if err != nil {
		t.Fatalf("NextMessage: %v", err)
	}

	if err := shm.HandleRequest(client, msg); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	if _, err := downstream.TakeFds(1); err == nil {
		t.Error("a pending fd remained after create_pool consumed its one fd")
	}

	obj, ok := downstream.Table.Lookup(42)
	if !ok {
		t.Fatal("pool not registered under client id 42")
	}
	pool, ok := obj.(*WlShmPool)
	if !ok {
		t.Fatalf("registered object is %T, want *WlShmPool", obj)
	}
	if pool.Core().ServerObjID == nil {
		t.Error("pool has no server-side id after create_pool forwarded")
	}

	if err := upstream.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	buf := make([]byte, 4096)
	oob := make([]byte, 512)
	n, oobn, _, _, err := unix.Recvmsg(upstreamPeerFd, buf, oob, 0)
	if err != nil {
		t.Fatalf("Recvmsg: %v", err)
	}
	fds, err := wire.ParseFds(oob[:oobn])
	if err != nil {
		t.Fatalf("ParseFds: %v", err)
	}
	defer func() {
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
	}()
	got, _, err := wire.DecodeMessage(buf[:n])
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Opcode != opWlShmCreatePool {
		t.Fatalf("forwarded opcode = %v, want create_pool", got.Opcode)
	}
	if len(fds) != 1 {
		t.Fatalf("forwarded message carried %d fds, want 1", len(fds))
	}
	dec := wire.NewDecoder(got.Args)
	forwardedID, err := dec.Uint32()
	if err != nil {
		t.Fatalf("decode forwarded pool id: %v", err)
	}
	if forwardedID != *pool.Core().ServerObjID {
		t.Errorf("forwarded pool id = %d, want %d", forwardedID, *pool.Core().ServerObjID)
	}
	size, err := dec.Int32()
	if err != nil {
		t.Fatalf("decode forwarded size: %v", err)
	}
	if size != 4096 {
		t.Errorf("forwarded size = %d, want 4096", size)
	}
}

func TestWlBufferReleaseEventRoundTrip(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, clientPeerFd := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	buffer := NewWlBuffer(disp, upstream)
	buffer.Core().Client = client
	clientID := uint32(9)
	buffer.Core().ClientObjID = &clientID

	msg := &wire.Message{ObjectID: 0, Opcode: opWlBufferRelease}
	if err := buffer.HandleEvent(msg); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	raw := flushAndReadRaw(t, downstream, clientPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.ObjectID != wire.ObjectID(clientID) || got.Opcode != opWlBufferRelease {
		t.Fatalf("forwarded release = %+v", got)
	}
}
