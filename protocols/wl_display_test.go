package protocols

import (
	"testing"

	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

func TestWlDisplayHandleRequestSyncBindsCallback(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	display := NewWlDisplay(disp, upstream)
	display.BindClient(client)

	enc := wire.NewEncoder(4)
	enc.PutUint32(5) // client-chosen new_id for the callback
	msg := &wire.Message{ObjectID: 1, Opcode: opWlDisplaySync, Args: enc.Bytes()}

	if err := display.HandleRequest(client, msg); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	obj, ok := downstream.Table.Lookup(5)
	if !ok {
		t.Fatal("callback not registered under client id 5")
	}
	callback, ok := obj.(*WlCallback)
	if !ok {
		t.Fatalf("registered object is %T, want *WlCallback", obj)
	}
	if callback.Core().ServerObjID == nil {
		t.Error("callback has no server-side id after sync forwarded")
	}
	if callback.Core().ClientObjID == nil || *callback.Core().ClientObjID != 5 {
		t.Error("callback client id mismatch")
	}
}

func TestWlDisplayHandleRequestUnknownOpcode(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	display := NewWlDisplay(disp, upstream)
	display.BindClient(client)

	msg := &wire.Message{ObjectID: 1, Opcode: 99}
	if err := display.HandleRequest(client, msg); err == nil {
		t.Fatal("HandleRequest with unknown opcode succeeded, want error")
	}
}

func TestWlDisplayHandleEventDeleteIDForwardsWhenBothSidesDestroyed(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, clientPeerFd := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	display := NewWlDisplay(disp, upstream)
	display.BindClient(client)

	callback := NewWlCallback(disp, upstream)
	srvID, err := upstream.Table.Generate(callback)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	callback.Core().ServerObjID = &srvID
	clientID := uint32(7)
	if err := downstream.Table.Set(clientID, callback); err != nil {
		t.Fatalf("Table.Set: %v", err)
	}
	callback.Core().ClientObjID = &clientID
	callback.Core().Client = client
	callback.Core().MarkClientDestroyed()

	enc := wire.NewEncoder(4)
	enc.PutUint32(srvID)
	msg := &wire.Message{ObjectID: 1, Opcode: opWlDisplayDeleteID, Args: enc.Bytes()}
	if err := display.HandleEvent(msg); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if _, ok := upstream.Table.Lookup(srvID); ok {
		t.Error("server-side id still bound after delete_id")
	}

	raw := flushAndReadRaw(t, downstream, clientPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.ObjectID != wire.ObjectID(wlDisplayWellKnownID) || got.Opcode != opWlDisplayDeleteID {
		t.Fatalf("forwarded delete_id = %+v", got)
	}
	dec := wire.NewDecoder(got.Args)
	forwardedID, err := dec.Uint32()
	if err != nil {
		t.Fatalf("decode forwarded id: %v", err)
	}
	if forwardedID != clientID {
		t.Errorf("forwarded delete_id id = %d, want %d", forwardedID, clientID)
	}
}
