package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for zwlr_layer_shell_v1.
const (
	opZwlrLayerShellGetLayerSurface wire.Opcode = 0
	opZwlrLayerShellDestroy        wire.Opcode = 1
)

// Layer values accepted by get_layer_surface's layer argument.
const (
	LayerBackground uint32 = 0
	LayerBottom     uint32 = 1
	LayerTop        uint32 = 2
	LayerOverlay    uint32 = 3
)

// ZwlrLayerShellV1 lets a client place a surface in one of the
// compositor's four stacking layers instead of the regular xdg_shell
// window stack — the mechanism bars, docks, and lock screens use. Each
// Baseline caps this interface's version (5 under "v1-unstable", 4
// under "stable"), which this proxy enforces upstream of construction,
// in proxystate.Mapper/Baseline, not here.
type ZwlrLayerShellV1 struct {
	core    proxyobj.ObjectCore
	handler ZwlrLayerShellV1Handler
}

// ZwlrLayerShellV1Handler observes or overrides layer-shell traffic.
type ZwlrLayerShellV1Handler interface {
	HandleGetLayerSurface(obj *ZwlrLayerShellV1, client *proxyobj.Client, surfaceObj *WlSurface, outputID uint32, layer uint32, namespace string, layerSurface *ZwlrLayerSurfaceV1)
	HandleDestroy(obj *ZwlrLayerShellV1)
}

type defaultZwlrLayerShellV1Handler struct{}

func (defaultZwlrLayerShellV1Handler) HandleGetLayerSurface(obj *ZwlrLayerShellV1, _ *proxyobj.Client, surfaceObj *WlSurface, outputID uint32, layer uint32, namespace string, layerSurface *ZwlrLayerSurfaceV1) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestGetLayerSurface(surfaceObj, outputID, layer, namespace, layerSurface)
}

func (defaultZwlrLayerShellV1Handler) HandleDestroy(obj *ZwlrLayerShellV1) {
	_ = forwardDestroy(&obj.core, opZwlrLayerShellDestroy)
}

// NewZwlrLayerShellV1 constructs a layer-shell proxy object.
func NewZwlrLayerShellV1(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *ZwlrLayerShellV1 {
	return &ZwlrLayerShellV1{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceZwlrLayerShellV1, version)}
}

func (o *ZwlrLayerShellV1) Core() *proxyobj.ObjectCore { return &o.core }

func (o *ZwlrLayerShellV1) SetHandler(h ZwlrLayerShellV1Handler) { o.handler = h }
func (o *ZwlrLayerShellV1) UnsetHandler()                        { o.handler = nil }

// TryRequestGetLayerSurface forwards get_layer_surface. outputID is a
// nullable object argument (a null output lets the compositor choose),
// forwarded as a raw id since this proxy does not resolve it to a
// *WlOutput — layer-shell clients treat the output purely as an opaque
// placement hint, never dispatching events through it here.
func (o *ZwlrLayerShellV1) TryRequestGetLayerSurface(surfaceObj *WlSurface, outputID uint32, layer uint32, namespace string, layerSurface *ZwlrLayerSurfaceV1) error {
	id, err := bindNewID(o.core.ServerEndpoint(), layerSurface)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(len(namespace) + 24)
	enc.PutUint32(id)
	enc.PutObject(wire.ObjectID(destIDFor(surfaceObj, true)))
	enc.PutObject(wire.ObjectID(outputID))
	enc.PutUint32(layer)
	enc.PutString(namespace)
	return o.core.SendToServer(opZwlrLayerShellGetLayerSurface, enc.Bytes(), nil)
}

func (o *ZwlrLayerShellV1) RequestGetLayerSurface(surfaceObj *WlSurface, outputID uint32, layer uint32, namespace string, layerSurface *ZwlrLayerSurfaceV1) {
	if err := o.TryRequestGetLayerSurface(surfaceObj, outputID, layer, namespace, layerSurface); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("zwlr_layer_shell_v1.get_layer_surface: %v", err)
	}
}

// HandleRequest decodes one client->server layer-shell request.
func (o *ZwlrLayerShellV1) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opZwlrLayerShellGetLayerSurface:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		surfaceID, err := dec.Object()
		if err != nil {
			return err
		}
		outputID, err := dec.Object()
		if err != nil {
			return err
		}
		layer, err := dec.Uint32()
		if err != nil {
			return err
		}
		namespace, err := dec.String(false)
		if err != nil {
			return err
		}
		obj, err := lookupObjectArg(client.Endpoint.Table, "surface", uint32(surfaceID), proxyobj.InterfaceWlSurface)
		if err != nil {
			return err
		}
		surfaceObj := obj.(*WlSurface)
		layerSurface := NewZwlrLayerSurfaceV1(o.core.Disp, o.core.ServerEndpoint(), o.core.Version, surfaceObj)
		if err := registerClientChild(client, uint32(newID), layerSurface); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleGetLayerSurface(o, client, surfaceObj, uint32(outputID), layer, namespace, layerSurface)
		} else {
			defaultZwlrLayerShellV1Handler{}.HandleGetLayerSurface(o, client, surfaceObj, uint32(outputID), layer, namespace, layerSurface)
		}
		return nil
	case opZwlrLayerShellDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultZwlrLayerShellV1Handler{}.HandleDestroy(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent: zwlr_layer_shell_v1 has no events.
func (o *ZwlrLayerShellV1) HandleEvent(msg *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}

// HandleDeleteID releases this object's server-side slot.
func (o *ZwlrLayerShellV1) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for zwlr_layer_surface_v1.
const (
	opZwlrLayerSurfaceSetSize               wire.Opcode = 0
	opZwlrLayerSurfaceSetAnchor             wire.Opcode = 1
	opZwlrLayerSurfaceSetExclusiveZone      wire.Opcode = 2
	opZwlrLayerSurfaceSetMargin             wire.Opcode = 3
	opZwlrLayerSurfaceSetKeyboardInteractivity wire.Opcode = 4
	opZwlrLayerSurfaceGetPopup              wire.Opcode = 5
	opZwlrLayerSurfaceAckConfigure          wire.Opcode = 6
	opZwlrLayerSurfaceDestroy               wire.Opcode = 7
)

// Event opcodes for zwlr_layer_surface_v1.
const (
	opZwlrLayerSurfaceConfigure wire.Opcode = 0
	opZwlrLayerSurfaceClosed    wire.Opcode = 1
)

// ZwlrLayerSurfaceV1 is the per-surface handle for layer-shell
// placement and sizing.
type ZwlrLayerSurfaceV1 struct {
	core    proxyobj.ObjectCore
	surface *WlSurface
	handler ZwlrLayerSurfaceV1Handler
}

// ZwlrLayerSurfaceV1Handler observes or overrides layer-surface
// traffic.
type ZwlrLayerSurfaceV1Handler interface {
	HandleSetSize(obj *ZwlrLayerSurfaceV1, width, height uint32)
	HandleSetAnchor(obj *ZwlrLayerSurfaceV1, anchor uint32)
	HandleSetExclusiveZone(obj *ZwlrLayerSurfaceV1, zone int32)
	HandleSetMargin(obj *ZwlrLayerSurfaceV1, top, right, bottom, left int32)
	HandleSetKeyboardInteractivity(obj *ZwlrLayerSurfaceV1, interactivity uint32)
	HandleAckConfigure(obj *ZwlrLayerSurfaceV1, serial uint32)
	HandleDestroy(obj *ZwlrLayerSurfaceV1)
	HandleConfigure(obj *ZwlrLayerSurfaceV1, serial, width, height uint32)
	HandleClosed(obj *ZwlrLayerSurfaceV1)
}

type defaultZwlrLayerSurfaceV1Handler struct{}

func (defaultZwlrLayerSurfaceV1Handler) HandleSetSize(obj *ZwlrLayerSurfaceV1, width, height uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(8)
	enc.PutUint32(width)
	enc.PutUint32(height)
	_ = obj.core.SendToServer(opZwlrLayerSurfaceSetSize, enc.Bytes(), nil)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleSetAnchor(obj *ZwlrLayerSurfaceV1, anchor uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(anchor)
	_ = obj.core.SendToServer(opZwlrLayerSurfaceSetAnchor, enc.Bytes(), nil)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleSetExclusiveZone(obj *ZwlrLayerSurfaceV1, zone int32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutInt32(zone)
	_ = obj.core.SendToServer(opZwlrLayerSurfaceSetExclusiveZone, enc.Bytes(), nil)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleSetMargin(obj *ZwlrLayerSurfaceV1, top, right, bottom, left int32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(16)
	enc.PutInt32(top)
	enc.PutInt32(right)
	enc.PutInt32(bottom)
	enc.PutInt32(left)
	_ = obj.core.SendToServer(opZwlrLayerSurfaceSetMargin, enc.Bytes(), nil)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleSetKeyboardInteractivity(obj *ZwlrLayerSurfaceV1, interactivity uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(interactivity)
	_ = obj.core.SendToServer(opZwlrLayerSurfaceSetKeyboardInteractivity, enc.Bytes(), nil)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleAckConfigure(obj *ZwlrLayerSurfaceV1, serial uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(serial)
	_ = obj.core.SendToServer(opZwlrLayerSurfaceAckConfigure, enc.Bytes(), nil)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleDestroy(obj *ZwlrLayerSurfaceV1) {
	_ = forwardDestroy(&obj.core, opZwlrLayerSurfaceDestroy)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleConfigure(obj *ZwlrLayerSurfaceV1, serial, width, height uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventConfigure(serial, width, height)
}

func (defaultZwlrLayerSurfaceV1Handler) HandleClosed(obj *ZwlrLayerSurfaceV1) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventClosed()
}

// NewZwlrLayerSurfaceV1 constructs a layer-surface proxy object
// wrapping surface.
func NewZwlrLayerSurfaceV1(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32, surface *WlSurface) *ZwlrLayerSurfaceV1 {
	return &ZwlrLayerSurfaceV1{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceZwlrLayerSurfaceV1, version), surface: surface}
}

func (o *ZwlrLayerSurfaceV1) Core() *proxyobj.ObjectCore { return &o.core }
func (o *ZwlrLayerSurfaceV1) Surface() *WlSurface         { return o.surface }

func (o *ZwlrLayerSurfaceV1) SetHandler(h ZwlrLayerSurfaceV1Handler) { o.handler = h }
func (o *ZwlrLayerSurfaceV1) UnsetHandler()                         { o.handler = nil }

func (o *ZwlrLayerSurfaceV1) TryEventConfigure(serial, width, height uint32) error {
	enc := wire.NewEncoder(12)
	enc.PutUint32(serial)
	enc.PutUint32(width)
	enc.PutUint32(height)
	return o.core.SendToClient(opZwlrLayerSurfaceConfigure, enc.Bytes(), nil)
}

func (o *ZwlrLayerSurfaceV1) EventConfigure(serial, width, height uint32) {
	if err := o.TryEventConfigure(serial, width, height); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("zwlr_layer_surface_v1.configure: %v", err)
	}
}

func (o *ZwlrLayerSurfaceV1) TryEventClosed() error {
	return o.core.SendToClient(opZwlrLayerSurfaceClosed, nil, nil)
}

func (o *ZwlrLayerSurfaceV1) EventClosed() {
	if err := o.TryEventClosed(); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("zwlr_layer_surface_v1.closed: %v", err)
	}
}

// HandleRequest decodes one client->server layer-surface request.
func (o *ZwlrLayerSurfaceV1) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opZwlrLayerSurfaceSetSize:
		dec := wire.NewDecoder(msg.Args)
		width, err := dec.Uint32()
		if err != nil {
			return err
		}
		height, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetSize(o, width, height)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleSetSize(o, width, height)
		}
		return nil
	case opZwlrLayerSurfaceSetAnchor:
		dec := wire.NewDecoder(msg.Args)
		anchor, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetAnchor(o, anchor)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleSetAnchor(o, anchor)
		}
		return nil
	case opZwlrLayerSurfaceSetExclusiveZone:
		dec := wire.NewDecoder(msg.Args)
		zone, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetExclusiveZone(o, zone)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleSetExclusiveZone(o, zone)
		}
		return nil
	case opZwlrLayerSurfaceSetMargin:
		dec := wire.NewDecoder(msg.Args)
		top, err := dec.Int32()
		if err != nil {
			return err
		}
		right, err := dec.Int32()
		if err != nil {
			return err
		}
		bottom, err := dec.Int32()
		if err != nil {
			return err
		}
		left, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetMargin(o, top, right, bottom, left)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleSetMargin(o, top, right, bottom, left)
		}
		return nil
	case opZwlrLayerSurfaceSetKeyboardInteractivity:
		dec := wire.NewDecoder(msg.Args)
		interactivity, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetKeyboardInteractivity(o, interactivity)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleSetKeyboardInteractivity(o, interactivity)
		}
		return nil
	case opZwlrLayerSurfaceGetPopup:
		// popup names an xdg_popup created earlier via
		// xdg_surface.get_popup — an existing object, not a new_id —
		// so its id must go through the same client->server
		// translation as any other object argument, even though
		// xdg_popup itself is unmanaged (see xdg_surface.get_popup).
		dec := wire.NewDecoder(msg.Args)
		popupID, err := dec.Object()
		if err != nil {
			return err
		}
		obj, err := lookupObjectArg(client.Endpoint.Table, "popup", uint32(popupID), proxyobj.InterfaceUnknown)
		if err != nil {
			return err
		}
		enc := wire.NewEncoder(4)
		enc.PutObject(wire.ObjectID(destIDFor(obj, true)))
		if o.core.ForwardToServer {
			return o.core.SendToServer(opZwlrLayerSurfaceGetPopup, enc.Bytes(), nil)
		}
		return nil
	case opZwlrLayerSurfaceAckConfigure:
		dec := wire.NewDecoder(msg.Args)
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleAckConfigure(o, serial)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleAckConfigure(o, serial)
		}
		return nil
	case opZwlrLayerSurfaceDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleDestroy(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client layer-surface event.
func (o *ZwlrLayerSurfaceV1) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opZwlrLayerSurfaceConfigure:
		dec := wire.NewDecoder(msg.Args)
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		width, err := dec.Uint32()
		if err != nil {
			return err
		}
		height, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleConfigure(o, serial, width, height)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleConfigure(o, serial, width, height)
		}
		return nil
	case opZwlrLayerSurfaceClosed:
		if o.handler != nil {
			o.handler.HandleClosed(o)
		} else {
			defaultZwlrLayerSurfaceV1Handler{}.HandleClosed(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *ZwlrLayerSurfaceV1) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
