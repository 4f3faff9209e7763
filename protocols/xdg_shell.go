package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for xdg_wm_base.
const (
	opXdgWmBaseDestroy          wire.Opcode = 0
	opXdgWmBaseCreatePositioner wire.Opcode = 1
	opXdgWmBaseGetXdgSurface    wire.Opcode = 2
	opXdgWmBasePong             wire.Opcode = 3
)

// Event opcodes for xdg_wm_base.
const (
	opXdgWmBasePing wire.Opcode = 0
)

// XdgWmBase is the entry point for the desktop-shell extension:
// clients wrap a wl_surface in an xdg_surface through it, and must
// answer its ping with a pong to prove liveness. create_positioner's
// new_id is forwarded unmanaged, same as wl_seat's input devices —
// positioners carry no events and this proxy never needs to inspect
// their accumulated state, only pass it through.
type XdgWmBase struct {
	core    proxyobj.ObjectCore
	handler XdgWmBaseHandler
}

// XdgWmBaseHandler observes or overrides xdg_wm_base traffic.
type XdgWmBaseHandler interface {
	HandleDestroy(obj *XdgWmBase)
	HandleCreatePositioner(obj *XdgWmBase, client *proxyobj.Client, serverID uint32)
	HandleGetXdgSurface(obj *XdgWmBase, client *proxyobj.Client, surfaceObj *WlSurface, xdgSurface *XdgSurface)
	HandlePong(obj *XdgWmBase, serial uint32)
	HandlePing(obj *XdgWmBase, serial uint32)
}

type defaultXdgWmBaseHandler struct{}

func (defaultXdgWmBaseHandler) HandleDestroy(obj *XdgWmBase) {
	_ = forwardDestroy(&obj.core, opXdgWmBaseDestroy)
}

func (defaultXdgWmBaseHandler) HandleCreatePositioner(obj *XdgWmBase, _ *proxyobj.Client, serverID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(serverID)
	if err := obj.core.SendToServer(opXdgWmBaseCreatePositioner, enc.Bytes(), nil); err != nil && obj.core.Disp != nil {
		obj.core.Disp.Warnf("xdg_wm_base.create_positioner: %v", err)
	}
}

func (defaultXdgWmBaseHandler) HandleGetXdgSurface(obj *XdgWmBase, _ *proxyobj.Client, surfaceObj *WlSurface, xdgSurface *XdgSurface) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestGetXdgSurface(surfaceObj, xdgSurface)
}

func (defaultXdgWmBaseHandler) HandlePong(obj *XdgWmBase, serial uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestPong(serial)
}

func (defaultXdgWmBaseHandler) HandlePing(obj *XdgWmBase, serial uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventPing(serial)
}

// NewXdgWmBase constructs an xdg_wm_base proxy object.
func NewXdgWmBase(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *XdgWmBase {
	return &XdgWmBase{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceXdgWmBase, version)}
}

func (o *XdgWmBase) Core() *proxyobj.ObjectCore { return &o.core }

func (o *XdgWmBase) SetHandler(h XdgWmBaseHandler) { o.handler = h }
func (o *XdgWmBase) UnsetHandler()                 { o.handler = nil }

func (o *XdgWmBase) TryRequestGetXdgSurface(surfaceObj *WlSurface, xdgSurface *XdgSurface) error {
	id, err := bindNewID(o.core.ServerEndpoint(), xdgSurface)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(8)
	enc.PutUint32(id)
	enc.PutObject(wire.ObjectID(destIDFor(surfaceObj, true)))
	return o.core.SendToServer(opXdgWmBaseGetXdgSurface, enc.Bytes(), nil)
}

func (o *XdgWmBase) RequestGetXdgSurface(surfaceObj *WlSurface, xdgSurface *XdgSurface) {
	if err := o.TryRequestGetXdgSurface(surfaceObj, xdgSurface); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_wm_base.get_xdg_surface: %v", err)
	}
}

func (o *XdgWmBase) TryRequestPong(serial uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(serial)
	return o.core.SendToServer(opXdgWmBasePong, enc.Bytes(), nil)
}

func (o *XdgWmBase) RequestPong(serial uint32) {
	if err := o.TryRequestPong(serial); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_wm_base.pong: %v", err)
	}
}

func (o *XdgWmBase) TryEventPing(serial uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(serial)
	return o.core.SendToClient(opXdgWmBasePing, enc.Bytes(), nil)
}

func (o *XdgWmBase) EventPing(serial uint32) {
	if err := o.TryEventPing(serial); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_wm_base.ping: %v", err)
	}
}

// HandleRequest decodes one client->server xdg_wm_base request.
func (o *XdgWmBase) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opXdgWmBaseDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultXdgWmBaseHandler{}.HandleDestroy(o)
		}
		return nil
	case opXdgWmBaseCreatePositioner:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		positioner := &unmanagedObject{}
		serverID, err := bindNewID(o.core.ServerEndpoint(), positioner)
		if err != nil {
			return err
		}
		if err := registerClientChild(client, uint32(newID), positioner); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleCreatePositioner(o, client, serverID)
		} else {
			defaultXdgWmBaseHandler{}.HandleCreatePositioner(o, client, serverID)
		}
		return nil
	case opXdgWmBaseGetXdgSurface:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		surfaceID, err := dec.Object()
		if err != nil {
			return err
		}
		obj, err := lookupObjectArg(client.Endpoint.Table, "surface", uint32(surfaceID), proxyobj.InterfaceWlSurface)
		if err != nil {
			return err
		}
		surfaceObj := obj.(*WlSurface)
		xdgSurface := NewXdgSurface(o.core.Disp, o.core.ServerEndpoint(), o.core.Version, surfaceObj)
		if err := registerClientChild(client, uint32(newID), xdgSurface); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleGetXdgSurface(o, client, surfaceObj, xdgSurface)
		} else {
			defaultXdgWmBaseHandler{}.HandleGetXdgSurface(o, client, surfaceObj, xdgSurface)
		}
		return nil
	case opXdgWmBasePong:
		dec := wire.NewDecoder(msg.Args)
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandlePong(o, serial)
		} else {
			defaultXdgWmBaseHandler{}.HandlePong(o, serial)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client xdg_wm_base event.
func (o *XdgWmBase) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opXdgWmBasePing:
		dec := wire.NewDecoder(msg.Args)
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandlePing(o, serial)
		} else {
			defaultXdgWmBaseHandler{}.HandlePing(o, serial)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *XdgWmBase) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for xdg_surface.
const (
	opXdgSurfaceDestroy           wire.Opcode = 0
	opXdgSurfaceGetToplevel       wire.Opcode = 1
	opXdgSurfaceGetPopup          wire.Opcode = 2
	opXdgSurfaceSetWindowGeometry wire.Opcode = 3
	opXdgSurfaceAckConfigure      wire.Opcode = 4
)

// Event opcodes for xdg_surface.
const (
	opXdgSurfaceConfigure wire.Opcode = 0
)

// XdgSurface wraps a wl_surface with the desktop-shell lifecycle:
// every content change must be followed by ack_configure in response
// to the compositor's configure, before the next commit takes effect.
// This proxy has no reason to enforce that itself (spec.md's Non-goal
// on protocol-level policy enforcement) — it only forwards the
// handshake. get_popup's positioner argument is forwarded as a raw id
// since xdg_positioner objects are unmanaged (see XdgWmBaseHandler).
type XdgSurface struct {
	core    proxyobj.ObjectCore
	surface *WlSurface
	handler XdgSurfaceHandler
}

// XdgSurfaceHandler observes or overrides xdg_surface traffic.
type XdgSurfaceHandler interface {
	HandleDestroy(obj *XdgSurface)
	HandleGetToplevel(obj *XdgSurface, client *proxyobj.Client, toplevel *XdgToplevel)
	HandleGetPopup(obj *XdgSurface, client *proxyobj.Client, parentID, positionerID, popupServerID uint32)
	HandleSetWindowGeometry(obj *XdgSurface, x, y, width, height int32)
	HandleAckConfigure(obj *XdgSurface, serial uint32)
	HandleConfigure(obj *XdgSurface, serial uint32)
}

type defaultXdgSurfaceHandler struct{}

func (defaultXdgSurfaceHandler) HandleDestroy(obj *XdgSurface) {
	_ = forwardDestroy(&obj.core, opXdgSurfaceDestroy)
}

func (defaultXdgSurfaceHandler) HandleGetToplevel(obj *XdgSurface, _ *proxyobj.Client, toplevel *XdgToplevel) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestGetToplevel(toplevel)
}

func (defaultXdgSurfaceHandler) HandleGetPopup(obj *XdgSurface, _ *proxyobj.Client, parentID, positionerID, popupServerID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestGetPopup(parentID, positionerID, popupServerID)
}

func (defaultXdgSurfaceHandler) HandleSetWindowGeometry(obj *XdgSurface, x, y, width, height int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetWindowGeometry(x, y, width, height)
}

func (defaultXdgSurfaceHandler) HandleAckConfigure(obj *XdgSurface, serial uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestAckConfigure(serial)
}

func (defaultXdgSurfaceHandler) HandleConfigure(obj *XdgSurface, serial uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventConfigure(serial)
}

// NewXdgSurface constructs an xdg_surface proxy object wrapping surface.
func NewXdgSurface(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32, surface *WlSurface) *XdgSurface {
	return &XdgSurface{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceXdgSurface, version), surface: surface}
}

func (o *XdgSurface) Core() *proxyobj.ObjectCore { return &o.core }
func (o *XdgSurface) Surface() *WlSurface        { return o.surface }

func (o *XdgSurface) SetHandler(h XdgSurfaceHandler) { o.handler = h }
func (o *XdgSurface) UnsetHandler()                  { o.handler = nil }

func (o *XdgSurface) TryRequestGetToplevel(toplevel *XdgToplevel) error {
	id, err := bindNewID(o.core.ServerEndpoint(), toplevel)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	return o.core.SendToServer(opXdgSurfaceGetToplevel, enc.Bytes(), nil)
}

func (o *XdgSurface) RequestGetToplevel(toplevel *XdgToplevel) {
	if err := o.TryRequestGetToplevel(toplevel); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_surface.get_toplevel: %v", err)
	}
}

// TryRequestGetPopup forwards get_popup under popupServerID, already
// minted unmanaged by HandleRequest before the handler ran: this proxy
// does not model popup stacking order or grab semantics (spec.md's
// Non-goal on desktop-shell policy), only the wire bytes.
func (o *XdgSurface) TryRequestGetPopup(parentID, positionerID, popupServerID uint32) error {
	enc := wire.NewEncoder(12)
	enc.PutUint32(popupServerID)
	enc.PutObject(wire.ObjectID(parentID))
	enc.PutObject(wire.ObjectID(positionerID))
	return o.core.SendToServer(opXdgSurfaceGetPopup, enc.Bytes(), nil)
}

func (o *XdgSurface) RequestGetPopup(parentID, positionerID, popupServerID uint32) {
	if err := o.TryRequestGetPopup(parentID, positionerID, popupServerID); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_surface.get_popup: %v", err)
	}
}

func (o *XdgSurface) TryRequestSetWindowGeometry(x, y, width, height int32) error {
	enc := wire.NewEncoder(16)
	enc.PutInt32(x)
	enc.PutInt32(y)
	enc.PutInt32(width)
	enc.PutInt32(height)
	return o.core.SendToServer(opXdgSurfaceSetWindowGeometry, enc.Bytes(), nil)
}

func (o *XdgSurface) RequestSetWindowGeometry(x, y, width, height int32) {
	if err := o.TryRequestSetWindowGeometry(x, y, width, height); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_surface.set_window_geometry: %v", err)
	}
}

func (o *XdgSurface) TryRequestAckConfigure(serial uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(serial)
	return o.core.SendToServer(opXdgSurfaceAckConfigure, enc.Bytes(), nil)
}

func (o *XdgSurface) RequestAckConfigure(serial uint32) {
	if err := o.TryRequestAckConfigure(serial); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_surface.ack_configure: %v", err)
	}
}

func (o *XdgSurface) TryEventConfigure(serial uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(serial)
	return o.core.SendToClient(opXdgSurfaceConfigure, enc.Bytes(), nil)
}

func (o *XdgSurface) EventConfigure(serial uint32) {
	if err := o.TryEventConfigure(serial); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_surface.configure: %v", err)
	}
}

// HandleRequest decodes one client->server xdg_surface request.
func (o *XdgSurface) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opXdgSurfaceDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultXdgSurfaceHandler{}.HandleDestroy(o)
		}
		return nil
	case opXdgSurfaceGetToplevel:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		toplevel := NewXdgToplevel(o.core.Disp, o.core.ServerEndpoint(), o.core.Version, o)
		if err := registerClientChild(client, uint32(newID), toplevel); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleGetToplevel(o, client, toplevel)
		} else {
			defaultXdgSurfaceHandler{}.HandleGetToplevel(o, client, toplevel)
		}
		return nil
	case opXdgSurfaceGetPopup:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		parentID, err := dec.Object()
		if err != nil {
			return err
		}
		positionerID, err := dec.Object()
		if err != nil {
			return err
		}
		popup := &unmanagedObject{}
		popupServerID, err := bindNewID(o.core.ServerEndpoint(), popup)
		if err != nil {
			return err
		}
		if err := registerClientChild(client, uint32(newID), popup); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleGetPopup(o, client, uint32(parentID), uint32(positionerID), popupServerID)
		} else {
			defaultXdgSurfaceHandler{}.HandleGetPopup(o, client, uint32(parentID), uint32(positionerID), popupServerID)
		}
		return nil
	case opXdgSurfaceSetWindowGeometry:
		dec := wire.NewDecoder(msg.Args)
		x, err := dec.Int32()
		if err != nil {
			return err
		}
		y, err := dec.Int32()
		if err != nil {
			return err
		}
		width, err := dec.Int32()
		if err != nil {
			return err
		}
		height, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetWindowGeometry(o, x, y, width, height)
		} else {
			defaultXdgSurfaceHandler{}.HandleSetWindowGeometry(o, x, y, width, height)
		}
		return nil
	case opXdgSurfaceAckConfigure:
		dec := wire.NewDecoder(msg.Args)
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleAckConfigure(o, serial)
		} else {
			defaultXdgSurfaceHandler{}.HandleAckConfigure(o, serial)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client xdg_surface event.
func (o *XdgSurface) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opXdgSurfaceConfigure:
		dec := wire.NewDecoder(msg.Args)
		serial, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleConfigure(o, serial)
		} else {
			defaultXdgSurfaceHandler{}.HandleConfigure(o, serial)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *XdgSurface) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for xdg_toplevel.
const (
	opXdgToplevelDestroy         wire.Opcode = 0
	opXdgToplevelSetParent       wire.Opcode = 1
	opXdgToplevelSetTitle        wire.Opcode = 2
	opXdgToplevelSetAppID        wire.Opcode = 3
	opXdgToplevelShowWindowMenu  wire.Opcode = 4
	opXdgToplevelMove            wire.Opcode = 5
	opXdgToplevelResize          wire.Opcode = 6
	opXdgToplevelSetMaxSize      wire.Opcode = 7
	opXdgToplevelSetMinSize      wire.Opcode = 8
	opXdgToplevelSetMaximized    wire.Opcode = 9
	opXdgToplevelUnsetMaximized  wire.Opcode = 10
	opXdgToplevelSetFullscreen   wire.Opcode = 11
	opXdgToplevelUnsetFullscreen wire.Opcode = 12
	opXdgToplevelSetMinimized    wire.Opcode = 13
)

// Event opcodes for xdg_toplevel.
const (
	opXdgToplevelConfigure wire.Opcode = 0
	opXdgToplevelClose     wire.Opcode = 1
)

// XdgToplevel is a regular, top-level desktop window. Every
// state-change request (set_title, set_maximized, move, resize, ...)
// is forwarded as-is; this proxy does not interpret window placement
// or decoration policy (spec.md's Non-goal on desktop-shell policy).
type XdgToplevel struct {
	core       proxyobj.ObjectCore
	xdgSurface *XdgSurface
	handler    XdgToplevelHandler
}

// XdgToplevelHandler observes or overrides xdg_toplevel traffic.
type XdgToplevelHandler interface {
	HandleDestroy(obj *XdgToplevel)
	HandleSetTitle(obj *XdgToplevel, title string)
	HandleSetAppID(obj *XdgToplevel, appID string)
	HandleSetMaximized(obj *XdgToplevel)
	HandleUnsetMaximized(obj *XdgToplevel)
	HandleSetFullscreen(obj *XdgToplevel, outputID uint32)
	HandleUnsetFullscreen(obj *XdgToplevel)
	HandleSetMinimized(obj *XdgToplevel)
	HandleConfigure(obj *XdgToplevel, width, height int32, states []byte)
	HandleClose(obj *XdgToplevel)
}

type defaultXdgToplevelHandler struct{}

func (defaultXdgToplevelHandler) HandleDestroy(obj *XdgToplevel) {
	_ = forwardDestroy(&obj.core, opXdgToplevelDestroy)
}

func (defaultXdgToplevelHandler) HandleSetTitle(obj *XdgToplevel, title string) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetTitle(title)
}

func (defaultXdgToplevelHandler) HandleSetAppID(obj *XdgToplevel, appID string) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetAppID(appID)
}

func (defaultXdgToplevelHandler) HandleSetMaximized(obj *XdgToplevel) {
	if !obj.core.ForwardToServer {
		return
	}
	_ = obj.core.SendToServer(opXdgToplevelSetMaximized, nil, nil)
}

func (defaultXdgToplevelHandler) HandleUnsetMaximized(obj *XdgToplevel) {
	if !obj.core.ForwardToServer {
		return
	}
	_ = obj.core.SendToServer(opXdgToplevelUnsetMaximized, nil, nil)
}

func (defaultXdgToplevelHandler) HandleSetFullscreen(obj *XdgToplevel, outputID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(outputID))
	_ = obj.core.SendToServer(opXdgToplevelSetFullscreen, enc.Bytes(), nil)
}

func (defaultXdgToplevelHandler) HandleUnsetFullscreen(obj *XdgToplevel) {
	if !obj.core.ForwardToServer {
		return
	}
	_ = obj.core.SendToServer(opXdgToplevelUnsetFullscreen, nil, nil)
}

func (defaultXdgToplevelHandler) HandleSetMinimized(obj *XdgToplevel) {
	if !obj.core.ForwardToServer {
		return
	}
	_ = obj.core.SendToServer(opXdgToplevelSetMinimized, nil, nil)
}

func (defaultXdgToplevelHandler) HandleConfigure(obj *XdgToplevel, width, height int32, states []byte) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventConfigure(width, height, states)
}

func (defaultXdgToplevelHandler) HandleClose(obj *XdgToplevel) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventClose()
}

// NewXdgToplevel constructs an xdg_toplevel proxy object wrapping its
// owning xdg_surface.
func NewXdgToplevel(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32, xdgSurface *XdgSurface) *XdgToplevel {
	return &XdgToplevel{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceXdgToplevel, version), xdgSurface: xdgSurface}
}

func (o *XdgToplevel) Core() *proxyobj.ObjectCore  { return &o.core }
func (o *XdgToplevel) XdgSurface() *XdgSurface      { return o.xdgSurface }

func (o *XdgToplevel) SetHandler(h XdgToplevelHandler) { o.handler = h }
func (o *XdgToplevel) UnsetHandler()                   { o.handler = nil }

func (o *XdgToplevel) TryRequestSetTitle(title string) error {
	enc := wire.NewEncoder(len(title) + 8)
	enc.PutString(title)
	return o.core.SendToServer(opXdgToplevelSetTitle, enc.Bytes(), nil)
}

func (o *XdgToplevel) RequestSetTitle(title string) {
	if err := o.TryRequestSetTitle(title); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_toplevel.set_title: %v", err)
	}
}

func (o *XdgToplevel) TryRequestSetAppID(appID string) error {
	enc := wire.NewEncoder(len(appID) + 8)
	enc.PutString(appID)
	return o.core.SendToServer(opXdgToplevelSetAppID, enc.Bytes(), nil)
}

func (o *XdgToplevel) RequestSetAppID(appID string) {
	if err := o.TryRequestSetAppID(appID); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_toplevel.set_app_id: %v", err)
	}
}

func (o *XdgToplevel) TryEventConfigure(width, height int32, states []byte) error {
	enc := wire.NewEncoder(16 + len(states))
	enc.PutInt32(width)
	enc.PutInt32(height)
	enc.PutArray(states)
	return o.core.SendToClient(opXdgToplevelConfigure, enc.Bytes(), nil)
}

func (o *XdgToplevel) EventConfigure(width, height int32, states []byte) {
	if err := o.TryEventConfigure(width, height, states); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_toplevel.configure: %v", err)
	}
}

func (o *XdgToplevel) TryEventClose() error {
	return o.core.SendToClient(opXdgToplevelClose, nil, nil)
}

func (o *XdgToplevel) EventClose() {
	if err := o.TryEventClose(); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("xdg_toplevel.close: %v", err)
	}
}

// HandleRequest decodes one client->server xdg_toplevel request.
// show_window_menu/move/resize carry a wl_seat object argument this
// proxy forwards by raw id (seats are not resolved to a *WlSeat here
// since nothing needs to dispatch through them for these requests).
func (o *XdgToplevel) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opXdgToplevelDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultXdgToplevelHandler{}.HandleDestroy(o)
		}
		return nil
	case opXdgToplevelSetTitle:
		dec := wire.NewDecoder(msg.Args)
		title, err := dec.String(false)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetTitle(o, title)
		} else {
			defaultXdgToplevelHandler{}.HandleSetTitle(o, title)
		}
		return nil
	case opXdgToplevelSetAppID:
		dec := wire.NewDecoder(msg.Args)
		appID, err := dec.String(false)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetAppID(o, appID)
		} else {
			defaultXdgToplevelHandler{}.HandleSetAppID(o, appID)
		}
		return nil
	case opXdgToplevelSetParent:
		dec := wire.NewDecoder(msg.Args)
		parentID, err := dec.Object()
		if err != nil {
			return err
		}
		enc := wire.NewEncoder(4)
		if parentID == 0 {
			enc.PutObject(0)
		} else {
			obj, err := lookupObjectArg(client.Endpoint.Table, "parent", uint32(parentID), proxyobj.InterfaceXdgToplevel)
			if err != nil {
				return err
			}
			enc.PutObject(wire.ObjectID(destIDFor(obj, true)))
		}
		if o.core.ForwardToServer {
			return o.core.SendToServer(opXdgToplevelSetParent, enc.Bytes(), nil)
		}
		return nil
	case opXdgToplevelShowWindowMenu, opXdgToplevelMove, opXdgToplevelResize:
		dec := wire.NewDecoder(msg.Args)
		seatID, err := dec.Object()
		if err != nil {
			return err
		}
		obj, err := lookupObjectArg(client.Endpoint.Table, "seat", uint32(seatID), proxyobj.InterfaceWlSeat)
		if err != nil {
			return err
		}
		rest := msg.Args[4:]
		enc := wire.NewEncoder(4 + len(rest))
		enc.PutObject(wire.ObjectID(destIDFor(obj, true)))
		if o.core.ForwardToServer {
			data := append(enc.Bytes(), rest...)
			return o.core.SendToServer(msg.Opcode, data, nil)
		}
		return nil
	case opXdgToplevelSetMaxSize, opXdgToplevelSetMinSize:
		if o.core.ForwardToServer {
			return o.core.SendToServer(msg.Opcode, msg.Args, nil)
		}
		return nil
	case opXdgToplevelSetMaximized:
		if o.handler != nil {
			o.handler.HandleSetMaximized(o)
		} else {
			defaultXdgToplevelHandler{}.HandleSetMaximized(o)
		}
		return nil
	case opXdgToplevelUnsetMaximized:
		if o.handler != nil {
			o.handler.HandleUnsetMaximized(o)
		} else {
			defaultXdgToplevelHandler{}.HandleUnsetMaximized(o)
		}
		return nil
	case opXdgToplevelSetFullscreen:
		dec := wire.NewDecoder(msg.Args)
		outputID, err := dec.Object()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetFullscreen(o, uint32(outputID))
		} else {
			defaultXdgToplevelHandler{}.HandleSetFullscreen(o, uint32(outputID))
		}
		return nil
	case opXdgToplevelUnsetFullscreen:
		if o.handler != nil {
			o.handler.HandleUnsetFullscreen(o)
		} else {
			defaultXdgToplevelHandler{}.HandleUnsetFullscreen(o)
		}
		return nil
	case opXdgToplevelSetMinimized:
		if o.handler != nil {
			o.handler.HandleSetMinimized(o)
		} else {
			defaultXdgToplevelHandler{}.HandleSetMinimized(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client xdg_toplevel event.
func (o *XdgToplevel) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opXdgToplevelConfigure:
		dec := wire.NewDecoder(msg.Args)
		width, err := dec.Int32()
		if err != nil {
			return err
		}
		height, err := dec.Int32()
		if err != nil {
			return err
		}
		states, err := dec.Array()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleConfigure(o, width, height, states)
		} else {
			defaultXdgToplevelHandler{}.HandleConfigure(o, width, height, states)
		}
		return nil
	case opXdgToplevelClose:
		if o.handler != nil {
			o.handler.HandleClose(o)
		} else {
			defaultXdgToplevelHandler{}.HandleClose(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *XdgToplevel) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
