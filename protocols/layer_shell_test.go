package protocols

import (
	"testing"

	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

func TestZwlrLayerShellGetLayerSurfaceBindsChildAndTranslatesSurface(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, upstreamPeerFd := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	shell := NewZwlrLayerShellV1(disp, upstream, 1)

	surface := NewWlSurface(disp, upstream, 1)
	srvSurfaceID, err := upstream.Table.Generate(surface)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	surface.Core().ServerObjID = &srvSurfaceID
	clientSurfaceID := uint32(10)
	if err := registerClientChild(client, clientSurfaceID, surface); err != nil {
		t.Fatalf("registerClientChild: %v", err)
	}

	namespace := "panel"
	enc := wire.NewEncoder(20 + len(namespace))
	enc.PutUint32(50) // client-chosen new_id for the layer surface
	enc.PutObject(wire.ObjectID(clientSurfaceID))
	enc.PutObject(0) // null output: let the compositor choose
	enc.PutUint32(LayerTop)
	enc.PutString(namespace)
	msg := &wire.Message{ObjectID: 4, Opcode: opZwlrLayerShellGetLayerSurface, Args: enc.Bytes()}

	if err := shell.HandleRequest(client, msg); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	obj, ok := downstream.Table.Lookup(50)
	if !ok {
		t.Fatal("layer surface not registered under client id 50")
	}
	layerSurface, ok := obj.(*ZwlrLayerSurfaceV1)
	if !ok {
		t.Fatalf("registered object is %T, want *ZwlrLayerSurfaceV1", obj)
	}
	if layerSurface.Core().ServerObjID == nil {
		t.Error("layer surface has no server-side id after get_layer_surface forwarded")
	}
	if layerSurface.Surface() != surface {
		t.Error("layer surface wraps the wrong *WlSurface")
	}

	raw := flushAndReadRaw(t, upstream, upstreamPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Opcode != opZwlrLayerShellGetLayerSurface {
		t.Fatalf("forwarded opcode = %v, want get_layer_surface", got.Opcode)
	}
	dec := wire.NewDecoder(got.Args)
	forwardedLayerSurfaceID, err := dec.Object()
	if err != nil {
		t.Fatalf("decode forwarded layer surface id: %v", err)
	}
	if uint32(forwardedLayerSurfaceID) != *layerSurface.Core().ServerObjID {
		t.Errorf("forwarded layer surface id = %d, want %d", forwardedLayerSurfaceID, *layerSurface.Core().ServerObjID)
	}
	forwardedSurfaceID, err := dec.Object()
	if err != nil {
		t.Fatalf("decode forwarded surface id: %v", err)
	}
	if uint32(forwardedSurfaceID) != srvSurfaceID {
		t.Errorf("forwarded surface id = %d, want the surface's server id %d", forwardedSurfaceID, srvSurfaceID)
	}
}

// TestZwlrLayerSurfaceGetPopupTranslatesExistingObject guards against a
// regression where popup's client-chosen id was forwarded raw instead
// of being translated through the popup's already-bound server id, as
// happens for any other existing-object argument.
func TestZwlrLayerSurfaceGetPopupTranslatesExistingObject(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, upstreamPeerFd := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	surface := NewWlSurface(disp, upstream, 1)
	layerSurface := NewZwlrLayerSurfaceV1(disp, upstream, 1, surface)
	srvLayerSurfaceID, err := upstream.Table.Generate(layerSurface)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	layerSurface.Core().ServerObjID = &srvLayerSurfaceID

	// popup stands in for an xdg_popup minted earlier via
	// xdg_surface.get_popup: an unmanagedObject with its own
	// client/server id pair, looked up rather than decoded.
	popup := &unmanagedObject{}
	srvPopupID, err := bindNewID(upstream, popup)
	if err != nil {
		t.Fatalf("bindNewID: %v", err)
	}
	clientPopupID := uint32(77)
	if err := registerClientChild(client, clientPopupID, popup); err != nil {
		t.Fatalf("registerClientChild: %v", err)
	}

	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(clientPopupID))
	msg := &wire.Message{ObjectID: 50, Opcode: opZwlrLayerSurfaceGetPopup, Args: enc.Bytes()}

	if err := layerSurface.HandleRequest(client, msg); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	raw := flushAndReadRaw(t, upstream, upstreamPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Opcode != opZwlrLayerSurfaceGetPopup {
		t.Fatalf("forwarded opcode = %v, want get_popup", got.Opcode)
	}
	dec := wire.NewDecoder(got.Args)
	forwardedPopupID, err := dec.Object()
	if err != nil {
		t.Fatalf("decode forwarded popup id: %v", err)
	}
	if uint32(forwardedPopupID) != srvPopupID {
		t.Errorf("forwarded popup id = %d, want the popup's server id %d (not its client id %d)", forwardedPopupID, srvPopupID, clientPopupID)
	}
}

func TestZwlrLayerSurfaceSetSizeForwardsArguments(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, upstreamPeerFd := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	surface := NewWlSurface(disp, upstream, 1)
	layerSurface := NewZwlrLayerSurfaceV1(disp, upstream, 1, surface)
	srvID, err := upstream.Table.Generate(layerSurface)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	layerSurface.Core().ServerObjID = &srvID

	downstream, _ := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	enc := wire.NewEncoder(8)
	enc.PutUint32(640)
	enc.PutUint32(480)
	msg := &wire.Message{ObjectID: 50, Opcode: opZwlrLayerSurfaceSetSize, Args: enc.Bytes()}
	if err := layerSurface.HandleRequest(client, msg); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	raw := flushAndReadRaw(t, upstream, upstreamPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Opcode != opZwlrLayerSurfaceSetSize {
		t.Fatalf("forwarded opcode = %v, want set_size", got.Opcode)
	}
	dec := wire.NewDecoder(got.Args)
	width, err := dec.Uint32()
	if err != nil {
		t.Fatalf("decode width: %v", err)
	}
	height, err := dec.Uint32()
	if err != nil {
		t.Fatalf("decode height: %v", err)
	}
	if width != 640 || height != 480 {
		t.Errorf("forwarded size = %dx%d, want 640x480", width, height)
	}
}

func TestZwlrLayerSurfaceHandleEventConfigureForwardsToClient(t *testing.T) {
	disp := &recordingDispatcher{}
	upstream, _ := newLoopbackEndpoint(t, 1, proxyobj.RoleUpstream)
	downstream, clientPeerFd := newLoopbackEndpoint(t, 2, proxyobj.RoleDownstream)
	client := proxyobj.NewClient(downstream)

	surface := NewWlSurface(disp, upstream, 1)
	layerSurface := NewZwlrLayerSurfaceV1(disp, upstream, 1, surface)
	clientID := uint32(50)
	if err := registerClientChild(client, clientID, layerSurface); err != nil {
		t.Fatalf("registerClientChild: %v", err)
	}

	enc := wire.NewEncoder(12)
	enc.PutUint32(3) // serial
	enc.PutUint32(1024)
	enc.PutUint32(768)
	msg := &wire.Message{ObjectID: 0, Opcode: opZwlrLayerSurfaceConfigure, Args: enc.Bytes()}
	if err := layerSurface.HandleEvent(msg); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	raw := flushAndReadRaw(t, downstream, clientPeerFd)
	got, _, err := wire.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.ObjectID != wire.ObjectID(clientID) || got.Opcode != opZwlrLayerSurfaceConfigure {
		t.Fatalf("forwarded configure = %+v", got)
	}
}
