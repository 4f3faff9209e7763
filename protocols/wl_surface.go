package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_surface.
const (
	opWlSurfaceDestroy            wire.Opcode = 0
	opWlSurfaceAttach             wire.Opcode = 1
	opWlSurfaceDamage             wire.Opcode = 2
	opWlSurfaceFrame              wire.Opcode = 3
	opWlSurfaceSetOpaqueRegion    wire.Opcode = 4
	opWlSurfaceSetInputRegion     wire.Opcode = 5
	opWlSurfaceCommit             wire.Opcode = 6
	opWlSurfaceSetBufferTransform wire.Opcode = 7 // since version 2
	opWlSurfaceSetBufferScale     wire.Opcode = 8 // since version 3
	opWlSurfaceDamageBuffer       wire.Opcode = 9 // since version 4
)

// Event opcodes for wl_surface.
const (
	opWlSurfaceEnter wire.Opcode = 0
	opWlSurfaceLeave wire.Opcode = 1
)

// WlSurface is the compositor's unit of displayable content. It is the
// busiest interface in the protocol in practice (attach/damage/commit
// fire every frame), so every request here is forwarded byte-for-byte
// with no extra allocation beyond the Encoder already in flight.
type WlSurface struct {
	core    proxyobj.ObjectCore
	handler WlSurfaceHandler
}

// WlSurfaceHandler observes or overrides wl_surface traffic.
type WlSurfaceHandler interface {
	HandleDestroy(obj *WlSurface)
	HandleAttach(obj *WlSurface, buffer *WlBuffer, x, y int32)
	HandleDamage(obj *WlSurface, x, y, width, height int32)
	HandleFrame(obj *WlSurface, callback *WlCallback)
	HandleSetOpaqueRegion(obj *WlSurface, region *WlRegion)
	HandleSetInputRegion(obj *WlSurface, region *WlRegion)
	HandleCommit(obj *WlSurface)
	HandleSetBufferTransform(obj *WlSurface, transform int32)
	HandleSetBufferScale(obj *WlSurface, scale int32)
	HandleDamageBuffer(obj *WlSurface, x, y, width, height int32)
	HandleEnter(obj *WlSurface, output *WlOutput)
	HandleLeave(obj *WlSurface, output *WlOutput)
}

type defaultWlSurfaceHandler struct{}

func (defaultWlSurfaceHandler) HandleDestroy(obj *WlSurface) {
	_ = forwardDestroy(&obj.core, opWlSurfaceDestroy)
}

func (defaultWlSurfaceHandler) HandleAttach(obj *WlSurface, buffer *WlBuffer, x, y int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestAttach(buffer, x, y)
}

func (defaultWlSurfaceHandler) HandleDamage(obj *WlSurface, x, y, width, height int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestDamage(x, y, width, height)
}

func (defaultWlSurfaceHandler) HandleFrame(obj *WlSurface, callback *WlCallback) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestFrame(callback)
}

func (defaultWlSurfaceHandler) HandleSetOpaqueRegion(obj *WlSurface, region *WlRegion) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetOpaqueRegion(region)
}

func (defaultWlSurfaceHandler) HandleSetInputRegion(obj *WlSurface, region *WlRegion) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetInputRegion(region)
}

func (defaultWlSurfaceHandler) HandleCommit(obj *WlSurface) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestCommit()
}

func (defaultWlSurfaceHandler) HandleSetBufferTransform(obj *WlSurface, transform int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetBufferTransform(transform)
}

func (defaultWlSurfaceHandler) HandleSetBufferScale(obj *WlSurface, scale int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetBufferScale(scale)
}

func (defaultWlSurfaceHandler) HandleDamageBuffer(obj *WlSurface, x, y, width, height int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestDamageBuffer(x, y, width, height)
}

func (defaultWlSurfaceHandler) HandleEnter(obj *WlSurface, output *WlOutput) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventEnter(output)
}

func (defaultWlSurfaceHandler) HandleLeave(obj *WlSurface, output *WlOutput) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventLeave(output)
}

// NewWlSurface constructs a wl_surface proxy object at the given
// negotiated version (inherited from its owning wl_compositor).
func NewWlSurface(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *WlSurface {
	return &WlSurface{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlSurface, version)}
}

func (o *WlSurface) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlSurface) SetHandler(h WlSurfaceHandler) { o.handler = h }
func (o *WlSurface) UnsetHandler()                 { o.handler = nil }

func (o *WlSurface) TryRequestAttach(buffer *WlBuffer, x, y int32) error {
	enc := wire.NewEncoder(12)
	if buffer != nil {
		enc.PutObject(wire.ObjectID(destIDFor(buffer, true)))
	} else {
		enc.PutObject(0)
	}
	enc.PutInt32(x)
	enc.PutInt32(y)
	return o.core.SendToServer(opWlSurfaceAttach, enc.Bytes(), nil)
}

func (o *WlSurface) RequestAttach(buffer *WlBuffer, x, y int32) {
	if err := o.TryRequestAttach(buffer, x, y); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.attach: %v", err)
	}
}

func (o *WlSurface) TryRequestDamage(x, y, width, height int32) error {
	enc := wire.NewEncoder(16)
	enc.PutInt32(x)
	enc.PutInt32(y)
	enc.PutInt32(width)
	enc.PutInt32(height)
	return o.core.SendToServer(opWlSurfaceDamage, enc.Bytes(), nil)
}

func (o *WlSurface) RequestDamage(x, y, width, height int32) {
	if err := o.TryRequestDamage(x, y, width, height); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.damage: %v", err)
	}
}

// TryRequestFrame mints a server-side id for callback on the same
// upstream Endpoint this surface's own requests travel over, then
// forwards the frame request.
func (o *WlSurface) TryRequestFrame(callback *WlCallback) error {
	id, err := bindNewID(o.core.ServerEndpoint(), callback)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	return o.core.SendToServer(opWlSurfaceFrame, enc.Bytes(), nil)
}

func (o *WlSurface) RequestFrame(callback *WlCallback) {
	if err := o.TryRequestFrame(callback); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.frame: %v", err)
	}
}

func (o *WlSurface) TryRequestSetOpaqueRegion(region *WlRegion) error {
	enc := wire.NewEncoder(4)
	if region != nil {
		enc.PutObject(wire.ObjectID(destIDFor(region, true)))
	} else {
		enc.PutObject(0)
	}
	return o.core.SendToServer(opWlSurfaceSetOpaqueRegion, enc.Bytes(), nil)
}

func (o *WlSurface) RequestSetOpaqueRegion(region *WlRegion) {
	if err := o.TryRequestSetOpaqueRegion(region); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.set_opaque_region: %v", err)
	}
}

func (o *WlSurface) TryRequestSetInputRegion(region *WlRegion) error {
	enc := wire.NewEncoder(4)
	if region != nil {
		enc.PutObject(wire.ObjectID(destIDFor(region, true)))
	} else {
		enc.PutObject(0)
	}
	return o.core.SendToServer(opWlSurfaceSetInputRegion, enc.Bytes(), nil)
}

func (o *WlSurface) RequestSetInputRegion(region *WlRegion) {
	if err := o.TryRequestSetInputRegion(region); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.set_input_region: %v", err)
	}
}

func (o *WlSurface) TryRequestCommit() error {
	return o.core.SendToServer(opWlSurfaceCommit, nil, nil)
}

func (o *WlSurface) RequestCommit() {
	if err := o.TryRequestCommit(); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.commit: %v", err)
	}
}

func (o *WlSurface) TryRequestSetBufferTransform(transform int32) error {
	enc := wire.NewEncoder(4)
	enc.PutInt32(transform)
	return o.core.SendToServer(opWlSurfaceSetBufferTransform, enc.Bytes(), nil)
}

func (o *WlSurface) RequestSetBufferTransform(transform int32) {
	if err := o.TryRequestSetBufferTransform(transform); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.set_buffer_transform: %v", err)
	}
}

func (o *WlSurface) TryRequestSetBufferScale(scale int32) error {
	enc := wire.NewEncoder(4)
	enc.PutInt32(scale)
	return o.core.SendToServer(opWlSurfaceSetBufferScale, enc.Bytes(), nil)
}

func (o *WlSurface) RequestSetBufferScale(scale int32) {
	if err := o.TryRequestSetBufferScale(scale); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.set_buffer_scale: %v", err)
	}
}

func (o *WlSurface) TryRequestDamageBuffer(x, y, width, height int32) error {
	enc := wire.NewEncoder(16)
	enc.PutInt32(x)
	enc.PutInt32(y)
	enc.PutInt32(width)
	enc.PutInt32(height)
	return o.core.SendToServer(opWlSurfaceDamageBuffer, enc.Bytes(), nil)
}

func (o *WlSurface) RequestDamageBuffer(x, y, width, height int32) {
	if err := o.TryRequestDamageBuffer(x, y, width, height); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.damage_buffer: %v", err)
	}
}

func (o *WlSurface) TryEventEnter(output *WlOutput) error {
	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(destIDFor(output, false)))
	return o.core.SendToClient(opWlSurfaceEnter, enc.Bytes(), nil)
}

func (o *WlSurface) EventEnter(output *WlOutput) {
	if err := o.TryEventEnter(output); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.enter: %v", err)
	}
}

func (o *WlSurface) TryEventLeave(output *WlOutput) error {
	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(destIDFor(output, false)))
	return o.core.SendToClient(opWlSurfaceLeave, enc.Bytes(), nil)
}

func (o *WlSurface) EventLeave(output *WlOutput) {
	if err := o.TryEventLeave(output); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_surface.leave: %v", err)
	}
}

// HandleRequest decodes one client->server wl_surface request.
func (o *WlSurface) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlSurfaceDestroy:
		o.dispatchDestroy()
		return nil
	case opWlSurfaceAttach:
		dec := wire.NewDecoder(msg.Args)
		bufferID, err := dec.Object()
		if err != nil {
			return err
		}
		x, err := dec.Int32()
		if err != nil {
			return err
		}
		y, err := dec.Int32()
		if err != nil {
			return err
		}
		var buffer *WlBuffer
		if bufferID != 0 {
			obj, err := lookupObjectArg(client.Endpoint.Table, "buffer", uint32(bufferID), proxyobj.InterfaceWlBuffer)
			if err != nil {
				return err
			}
			buffer = obj.(*WlBuffer)
		}
		if o.handler != nil {
			o.handler.HandleAttach(o, buffer, x, y)
		} else {
			defaultWlSurfaceHandler{}.HandleAttach(o, buffer, x, y)
		}
		return nil
	case opWlSurfaceDamage, opWlSurfaceDamageBuffer:
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
		if msg.Opcode == opWlSurfaceDamage {
			if o.handler != nil {
				o.handler.HandleDamage(o, x, y, width, height)
			} else {
				defaultWlSurfaceHandler{}.HandleDamage(o, x, y, width, height)
			}
		} else {
			if o.handler != nil {
				o.handler.HandleDamageBuffer(o, x, y, width, height)
			} else {
				defaultWlSurfaceHandler{}.HandleDamageBuffer(o, x, y, width, height)
			}
		}
		return nil
	case opWlSurfaceFrame:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		callback := NewWlCallback(o.core.Disp, o.core.ServerEndpoint())
		if err := registerClientChild(client, uint32(newID), callback); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleFrame(o, callback)
		} else {
			defaultWlSurfaceHandler{}.HandleFrame(o, callback)
		}
		return nil
	case opWlSurfaceSetOpaqueRegion, opWlSurfaceSetInputRegion:
		dec := wire.NewDecoder(msg.Args)
		regionID, err := dec.Object()
		if err != nil {
			return err
		}
		var region *WlRegion
		if regionID != 0 {
			obj, err := lookupObjectArg(client.Endpoint.Table, "region", uint32(regionID), proxyobj.InterfaceWlRegion)
			if err != nil {
				return err
			}
			region = obj.(*WlRegion)
		}
		if msg.Opcode == opWlSurfaceSetOpaqueRegion {
			if o.handler != nil {
				o.handler.HandleSetOpaqueRegion(o, region)
			} else {
				defaultWlSurfaceHandler{}.HandleSetOpaqueRegion(o, region)
			}
		} else {
			if o.handler != nil {
				o.handler.HandleSetInputRegion(o, region)
			} else {
				defaultWlSurfaceHandler{}.HandleSetInputRegion(o, region)
			}
		}
		return nil
	case opWlSurfaceCommit:
		if o.handler != nil {
			o.handler.HandleCommit(o)
		} else {
			defaultWlSurfaceHandler{}.HandleCommit(o)
		}
		return nil
	case opWlSurfaceSetBufferTransform:
		dec := wire.NewDecoder(msg.Args)
		transform, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetBufferTransform(o, transform)
		} else {
			defaultWlSurfaceHandler{}.HandleSetBufferTransform(o, transform)
		}
		return nil
	case opWlSurfaceSetBufferScale:
		dec := wire.NewDecoder(msg.Args)
		scale, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetBufferScale(o, scale)
		} else {
			defaultWlSurfaceHandler{}.HandleSetBufferScale(o, scale)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

func (o *WlSurface) dispatchDestroy() {
	if o.handler != nil {
		o.handler.HandleDestroy(o)
	} else {
		defaultWlSurfaceHandler{}.HandleDestroy(o)
	}
}

// HandleEvent decodes one server->client wl_surface event.
func (o *WlSurface) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlSurfaceEnter, opWlSurfaceLeave:
		dec := wire.NewDecoder(msg.Args)
		outputID, err := dec.Object()
		if err != nil {
			return err
		}
		obj, err := lookupObjectArg(o.core.ServerEndpoint().Table, "output", uint32(outputID), proxyobj.InterfaceWlOutput)
		if err != nil {
			return err
		}
		output := obj.(*WlOutput)
		if msg.Opcode == opWlSurfaceEnter {
			if o.handler != nil {
				o.handler.HandleEnter(o, output)
			} else {
				defaultWlSurfaceHandler{}.HandleEnter(o, output)
			}
		} else {
			if o.handler != nil {
				o.handler.HandleLeave(o, output)
			} else {
				defaultWlSurfaceHandler{}.HandleLeave(o, output)
			}
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *WlSurface) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
