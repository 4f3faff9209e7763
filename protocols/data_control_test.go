package protocols

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

func TestExtDataControlManagerCreateDataSourceBindsSource(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, upstreamPeerFd := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	manager := NewExtDataControlManagerV1(disp, upstream, 1)
	srvManagerID, err := upstream.Table.Generate(manager)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	manager.Core().ServerObjID = &srvManagerID

	enc := wire.NewEncoder(4)
	enc.PutUint32(77) // client-chosen new_id for the source
	msg := &wire.Message{ObjectID: wire.ObjectID(srvManagerID), Opcode: opExtDataControlManagerCreateDataSource, Args: enc.Bytes()}

	if err := manager.HandleRequest(client, msg); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	obj, ok := downstream.Table.Lookup(77)
	if !ok {
		t.Fatal("data source not registered under client id 77")
	}
	source, ok := obj.(*ExtDataControlSourceV1)
	if !ok {
		t.Fatalf("registered object is %T, want *ExtDataControlSourceV1", obj)
	}
	if source.Core().ServerObjID == nil {
		t.Error("data source has no server-side id after create_data_source forwarded")
	}

	raw := flushAndReadRaw(t, upstream, upstreamPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Opcode != opExtDataControlManagerCreateDataSource {
		t.Fatalf("forwarded opcode = %v, want create_data_source", got.Opcode)
	}
	dec := wire.NewDecoder(got.Args)
	forwardedID, err := dec.Uint32()
	if err != nil {
		t.Fatalf("decode forwarded source id: %v", err)
	}
	if forwardedID != *source.Core().ServerObjID {
		t.Errorf("forwarded source id = %d, want %d", forwardedID, *source.Core().ServerObjID)
	}
}

func TestExtDataControlManagerGetDataDeviceTranslatesSeat(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, upstreamPeerFd := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	manager := NewExtDataControlManagerV1(disp, upstream, 1)
	srvManagerID, err := upstream.Table.Generate(manager)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	manager.Core().ServerObjID = &srvManagerID

	seat := NewWlSeat(disp, upstream, 1)
	srvSeatID, err := upstream.Table.Generate(seat)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	seat.Core().ServerObjID = &srvSeatID
	clientSeatID := uint32(3)
	if err := registerClientChild(client, clientSeatID, seat); err != nil {
		t.Fatalf("registerClientChild: %v", err)
	}

	enc := wire.NewEncoder(8)
	enc.PutUint32(88) // client-chosen new_id for the device
	enc.PutObject(wire.ObjectID(clientSeatID))
	msg := &wire.Message{ObjectID: wire.ObjectID(srvManagerID), Opcode: opExtDataControlManagerGetDataDevice, Args: enc.Bytes()}

	if err := manager.HandleRequest(client, msg); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	obj, ok := downstream.Table.Lookup(88)
	if !ok {
		t.Fatal("data device not registered under client id 88")
	}
	device, ok := obj.(*ExtDataControlDeviceV1)
	if !ok {
		t.Fatalf("registered object is %T, want *ExtDataControlDeviceV1", obj)
	}
	if device.Core().ServerObjID == nil {
		t.Error("data device has no server-side id after get_data_device forwarded")
	}

	raw := flushAndReadRaw(t, upstream, upstreamPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Opcode != opExtDataControlManagerGetDataDevice {
		t.Fatalf("forwarded opcode = %v, want get_data_device", got.Opcode)
	}
	dec := wire.NewDecoder(got.Args)
	if _, err := dec.Uint32(); err != nil { // forwarded device id, not under test here
		t.Fatalf("decode forwarded device id: %v", err)
	}
	forwardedSeatID, err := dec.Object()
	if err != nil {
		t.Fatalf("decode forwarded seat id: %v", err)
	}
	if uint32(forwardedSeatID) != srvSeatID {
		t.Errorf("forwarded seat id = %d, want the seat's server id %d (not its client id %d)", forwardedSeatID, srvSeatID, clientSeatID)
	}
}

// TestExtDataControlSourceSendEventCarriesFd exercises the clipboard
// analogue of wl_shm.create_pool's fd plumbing, but in the opposite
// direction: a compositor-initiated event carrying an fd for the
// client to write into. Plain read() would silently drop the
// SCM_RIGHTS ancillary data, so the peer side uses recvmsg directly.
func TestExtDataControlSourceSendEventCarriesFd(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, clientPeerFd := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	source := NewExtDataControlSourceV1(disp, upstream, 1)
	source.Core().Client = client
	clientID := uint32(77)
	source.Core().ClientObjID = &clientID

	memfd, err := unix.MemfdCreate("clipboard-send", 0)
	if err != nil {
		t.Fatalf("MemfdCreate: %v", err)
	}
	defer unix.Close(memfd)

	if err := source.TryEventSend("text/plain", memfd); err != nil {
		t.Fatalf("TryEventSend: %v", err)
	}
	if err := downstream.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	buf := make([]byte, 4096)
	oob := make([]byte, 512)
	n, oobn, _, _, err := unix.Recvmsg(clientPeerFd, buf, oob, 0)
	if err != nil {
		t.Fatalf("Recvmsg: %v", err)
	}
	fds, err := wire.ParseFds(oob[:oobn])
	if err != nil {
		t.Fatalf("ParseFds: %v", err)
	}
	if len(fds) != 1 {
		t.Fatalf("received %d fds, want 1", len(fds))
	}
	defer unix.Close(fds[0])

	got, _, err := wire.DecodeMessage(buf[:n])
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.ObjectID != wire.ObjectID(clientID) || got.Opcode != opExtDataControlSourceSend {
		t.Fatalf("forwarded send = %+v", got)
	}
	dec := wire.NewDecoder(got.Args)
	mimeType, err := dec.String(false)
	if err != nil {
		t.Fatalf("decode mime type: %v", err)
	}
	if mimeType != "text/plain" {
		t.Errorf("forwarded mime type = %q, want text/plain", mimeType)
	}
}

func TestExtDataControlDeviceDataOfferBindsServerChosenID(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	device := NewExtDataControlDeviceV1(disp, upstream, 1)
	device.Core().Client = client
	clientDeviceID := uint32(5)
	device.Core().ClientObjID = &clientDeviceID

	const compositorChosenID = 0x1234
	enc := wire.NewEncoder(4)
	enc.PutUint32(compositorChosenID)
	msg := &wire.Message{ObjectID: 0, Opcode: opExtDataControlDeviceDataOffer, Args: enc.Bytes()}

	if err := device.HandleEvent(msg); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	obj, ok := upstream.Table.Lookup(compositorChosenID)
	if !ok {
		t.Fatal("offer not registered under the compositor-chosen id")
	}
	offer, ok := obj.(*ExtDataControlSourceV1)
	if !ok {
		t.Fatalf("registered object is %T, want *ExtDataControlSourceV1", obj)
	}
	if offer.Core().ServerObjID == nil || *offer.Core().ServerObjID != compositorChosenID {
		t.Error("offer server id mismatch")
	}
}

// TestExtDataControlDeviceDataOfferAcceptsServerRangeID covers the
// common case for a standards-following compositor: it mints
// data_offer's new_id from the same 0xFF000000+ range this proxy
// reserves for its own server-side ids, which must still bind
// successfully rather than being rejected as out of range.
func TestExtDataControlDeviceDataOfferAcceptsServerRangeID(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	device := NewExtDataControlDeviceV1(disp, upstream, 1)
	device.Core().Client = client
	clientDeviceID := uint32(5)
	device.Core().ClientObjID = &clientDeviceID

	const compositorChosenID = proxyobj.ServerIDBase + 7
	enc := wire.NewEncoder(4)
	enc.PutUint32(compositorChosenID)
	msg := &wire.Message{ObjectID: 0, Opcode: opExtDataControlDeviceDataOffer, Args: enc.Bytes()}

	if err := device.HandleEvent(msg); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if _, ok := upstream.Table.Lookup(compositorChosenID); !ok {
		t.Fatal("offer not registered under the compositor's server-range id")
	}
}
