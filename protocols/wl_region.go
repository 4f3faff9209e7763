package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_region.
const (
	opWlRegionDestroy   wire.Opcode = 0
	opWlRegionAdd       wire.Opcode = 1
	opWlRegionSubtract  wire.Opcode = 2
)

// WlRegion accumulates rectangles for wl_surface.set_opaque_region /
// set_input_region. It carries no state of its own worth proxying
// beyond its identity: every request is decoded only far enough to be
// re-encoded and forwarded untouched.
type WlRegion struct {
	core    proxyobj.ObjectCore
	handler WlRegionHandler
}

// WlRegionHandler observes or overrides wl_region requests.
type WlRegionHandler interface {
	HandleDestroy(obj *WlRegion)
	HandleAdd(obj *WlRegion, x, y, width, height int32)
	HandleSubtract(obj *WlRegion, x, y, width, height int32)
}

type defaultWlRegionHandler struct{}

func (defaultWlRegionHandler) HandleDestroy(obj *WlRegion) {
	_ = forwardDestroy(&obj.core, opWlRegionDestroy)
}

func (defaultWlRegionHandler) HandleAdd(obj *WlRegion, x, y, width, height int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestAdd(x, y, width, height)
}

func (defaultWlRegionHandler) HandleSubtract(obj *WlRegion, x, y, width, height int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSubtract(x, y, width, height)
}

// NewWlRegion constructs a wl_region proxy object.
func NewWlRegion(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint) *WlRegion {
	return &WlRegion{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlRegion, 1)}
}

func (o *WlRegion) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlRegion) SetHandler(h WlRegionHandler) { o.handler = h }
func (o *WlRegion) UnsetHandler()                { o.handler = nil }

func (o *WlRegion) TryRequestAdd(x, y, width, height int32) error {
	enc := wire.NewEncoder(16)
	enc.PutInt32(x)
	enc.PutInt32(y)
	enc.PutInt32(width)
	enc.PutInt32(height)
	return o.core.SendToServer(opWlRegionAdd, enc.Bytes(), nil)
}

func (o *WlRegion) RequestAdd(x, y, width, height int32) {
	if err := o.TryRequestAdd(x, y, width, height); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_region.add: %v", err)
	}
}

func (o *WlRegion) TryRequestSubtract(x, y, width, height int32) error {
	enc := wire.NewEncoder(16)
	enc.PutInt32(x)
	enc.PutInt32(y)
	enc.PutInt32(width)
	enc.PutInt32(height)
	return o.core.SendToServer(opWlRegionSubtract, enc.Bytes(), nil)
}

func (o *WlRegion) RequestSubtract(x, y, width, height int32) {
	if err := o.TryRequestSubtract(x, y, width, height); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_region.subtract: %v", err)
	}
}

// HandleRequest decodes one client->server wl_region request.
func (o *WlRegion) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlRegionDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultWlRegionHandler{}.HandleDestroy(o)
		}
		return nil
	case opWlRegionAdd, opWlRegionSubtract:
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
		if msg.Opcode == opWlRegionAdd {
			if o.handler != nil {
				o.handler.HandleAdd(o, x, y, width, height)
			} else {
				defaultWlRegionHandler{}.HandleAdd(o, x, y, width, height)
			}
		} else {
			if o.handler != nil {
				o.handler.HandleSubtract(o, x, y, width, height)
			} else {
				defaultWlRegionHandler{}.HandleSubtract(o, x, y, width, height)
			}
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent: wl_region has no events.
func (o *WlRegion) HandleEvent(msg *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}

// HandleDeleteID releases this object's server-side slot.
func (o *WlRegion) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
