package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_compositor.
const (
	opWlCompositorCreateSurface wire.Opcode = 0
	opWlCompositorCreateRegion  wire.Opcode = 1
)

// WlCompositor has no events; it exists purely as a factory for
// surfaces and regions.
type WlCompositor struct {
	core     proxyobj.ObjectCore
	upstream *proxyobj.Endpoint
	handler  WlCompositorHandler
}

// WlCompositorHandler observes or overrides wl_compositor requests.
type WlCompositorHandler interface {
	HandleCreateSurface(obj *WlCompositor, client *proxyobj.Client, surface *WlSurface)
	HandleCreateRegion(obj *WlCompositor, client *proxyobj.Client, region *WlRegion)
}

type defaultWlCompositorHandler struct{}

func (defaultWlCompositorHandler) HandleCreateSurface(obj *WlCompositor, _ *proxyobj.Client, surface *WlSurface) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestCreateSurface(surface)
}

func (defaultWlCompositorHandler) HandleCreateRegion(obj *WlCompositor, _ *proxyobj.Client, region *WlRegion) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestCreateRegion(region)
}

// NewWlCompositor constructs a wl_compositor proxy object.
func NewWlCompositor(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *WlCompositor {
	return &WlCompositor{
		core:     proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlCompositor, version),
		upstream: upstream,
	}
}

func (o *WlCompositor) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlCompositor) SetHandler(h WlCompositorHandler) { o.handler = h }
func (o *WlCompositor) UnsetHandler()                     { o.handler = nil }

// TryRequestCreateSurface mints a server-side id for surface and
// forwards create_surface.
func (o *WlCompositor) TryRequestCreateSurface(surface *WlSurface) error {
	id, err := bindNewID(o.upstream, surface)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	return o.core.SendToServer(opWlCompositorCreateSurface, enc.Bytes(), nil)
}

// RequestCreateSurface is the log-and-discard variant.
func (o *WlCompositor) RequestCreateSurface(surface *WlSurface) {
	if err := o.TryRequestCreateSurface(surface); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_compositor.create_surface: %v", err)
	}
}

// TryRequestCreateRegion mints a server-side id for region and forwards
// create_region.
func (o *WlCompositor) TryRequestCreateRegion(region *WlRegion) error {
	id, err := bindNewID(o.upstream, region)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	return o.core.SendToServer(opWlCompositorCreateRegion, enc.Bytes(), nil)
}

// RequestCreateRegion is the log-and-discard variant.
func (o *WlCompositor) RequestCreateRegion(region *WlRegion) {
	if err := o.TryRequestCreateRegion(region); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_compositor.create_region: %v", err)
	}
}

// HandleRequest decodes one client->server wl_compositor request.
func (o *WlCompositor) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlCompositorCreateSurface:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		surface := NewWlSurface(o.core.Disp, o.upstream, o.core.Version)
		if err := registerClientChild(client, uint32(newID), surface); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleCreateSurface(o, client, surface)
		} else {
			defaultWlCompositorHandler{}.HandleCreateSurface(o, client, surface)
		}
		return nil
	case opWlCompositorCreateRegion:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		region := NewWlRegion(o.core.Disp, o.upstream)
		if err := registerClientChild(client, uint32(newID), region); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleCreateRegion(o, client, region)
		} else {
			defaultWlCompositorHandler{}.HandleCreateRegion(o, client, region)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent: wl_compositor has no events.
func (o *WlCompositor) HandleEvent(msg *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}

// HandleDeleteID releases this object's server-side slot, same as
// every other object.
func (o *WlCompositor) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
