package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_output.
const (
	opWlOutputRelease wire.Opcode = 0 // since version 3
)

// Event opcodes for wl_output.
const (
	opWlOutputGeometry    wire.Opcode = 0
	opWlOutputMode        wire.Opcode = 1
	opWlOutputDone        wire.Opcode = 2 // since version 2
	opWlOutputScale       wire.Opcode = 3 // since version 2
	opWlOutputName        wire.Opcode = 4 // since version 4
	opWlOutputDescription wire.Opcode = 5 // since version 4
)

// WlOutput announces one physical display. Every event is an
// advisory burst the client is expected to batch until `done`; the
// proxy does not itself batch, it forwards each event the moment the
// upstream compositor sends it, same as every other interface.
type WlOutput struct {
	core    proxyobj.ObjectCore
	handler WlOutputHandler
}

// WlOutputHandler observes or overrides wl_output traffic.
type WlOutputHandler interface {
	HandleRelease(obj *WlOutput)
	HandleGeometry(obj *WlOutput, x, y, physWidth, physHeight, subpixel int32, make, model string, transform int32)
	HandleMode(obj *WlOutput, flags uint32, width, height, refresh int32)
	HandleDone(obj *WlOutput)
	HandleScale(obj *WlOutput, factor int32)
	HandleName(obj *WlOutput, name string)
	HandleDescription(obj *WlOutput, description string)
}

type defaultWlOutputHandler struct{}

func (defaultWlOutputHandler) HandleRelease(obj *WlOutput) {
	_ = forwardDestroy(&obj.core, opWlOutputRelease)
}

func (defaultWlOutputHandler) HandleGeometry(obj *WlOutput, x, y, physWidth, physHeight, subpixel int32, make, model string, transform int32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventGeometry(x, y, physWidth, physHeight, subpixel, make, model, transform)
}

func (defaultWlOutputHandler) HandleMode(obj *WlOutput, flags uint32, width, height, refresh int32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventMode(flags, width, height, refresh)
}

func (defaultWlOutputHandler) HandleDone(obj *WlOutput) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventDone()
}

func (defaultWlOutputHandler) HandleScale(obj *WlOutput, factor int32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventScale(factor)
}

func (defaultWlOutputHandler) HandleName(obj *WlOutput, name string) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventName(name)
}

func (defaultWlOutputHandler) HandleDescription(obj *WlOutput, description string) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventDescription(description)
}

// NewWlOutput constructs a wl_output proxy object at the given
// negotiated version.
func NewWlOutput(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *WlOutput {
	return &WlOutput{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlOutput, version)}
}

func (o *WlOutput) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlOutput) SetHandler(h WlOutputHandler) { o.handler = h }
func (o *WlOutput) UnsetHandler()                { o.handler = nil }

func (o *WlOutput) TryEventGeometry(x, y, physWidth, physHeight, subpixel int32, make, model string, transform int32) error {
	enc := wire.NewEncoder(32 + len(make) + len(model))
	enc.PutInt32(x)
	enc.PutInt32(y)
	enc.PutInt32(physWidth)
	enc.PutInt32(physHeight)
	enc.PutInt32(subpixel)
	enc.PutString(make)
	enc.PutString(model)
	enc.PutInt32(transform)
	return o.core.SendToClient(opWlOutputGeometry, enc.Bytes(), nil)
}

func (o *WlOutput) EventGeometry(x, y, physWidth, physHeight, subpixel int32, make, model string, transform int32) {
	if err := o.TryEventGeometry(x, y, physWidth, physHeight, subpixel, make, model, transform); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_output.geometry: %v", err)
	}
}

func (o *WlOutput) TryEventMode(flags uint32, width, height, refresh int32) error {
	enc := wire.NewEncoder(16)
	enc.PutUint32(flags)
	enc.PutInt32(width)
	enc.PutInt32(height)
	enc.PutInt32(refresh)
	return o.core.SendToClient(opWlOutputMode, enc.Bytes(), nil)
}

func (o *WlOutput) EventMode(flags uint32, width, height, refresh int32) {
	if err := o.TryEventMode(flags, width, height, refresh); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_output.mode: %v", err)
	}
}

func (o *WlOutput) TryEventDone() error {
	return o.core.SendToClient(opWlOutputDone, nil, nil)
}

func (o *WlOutput) EventDone() {
	if err := o.TryEventDone(); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_output.done: %v", err)
	}
}

func (o *WlOutput) TryEventScale(factor int32) error {
	enc := wire.NewEncoder(4)
	enc.PutInt32(factor)
	return o.core.SendToClient(opWlOutputScale, enc.Bytes(), nil)
}

func (o *WlOutput) EventScale(factor int32) {
	if err := o.TryEventScale(factor); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_output.scale: %v", err)
	}
}

func (o *WlOutput) TryEventName(name string) error {
	enc := wire.NewEncoder(len(name) + 8)
	enc.PutString(name)
	return o.core.SendToClient(opWlOutputName, enc.Bytes(), nil)
}

func (o *WlOutput) EventName(name string) {
	if err := o.TryEventName(name); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_output.name: %v", err)
	}
}

func (o *WlOutput) TryEventDescription(description string) error {
	enc := wire.NewEncoder(len(description) + 8)
	enc.PutString(description)
	return o.core.SendToClient(opWlOutputDescription, enc.Bytes(), nil)
}

func (o *WlOutput) EventDescription(description string) {
	if err := o.TryEventDescription(description); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_output.description: %v", err)
	}
}

// HandleRequest decodes one client->server wl_output request.
func (o *WlOutput) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlOutputRelease:
		if o.handler != nil {
			o.handler.HandleRelease(o)
		} else {
			defaultWlOutputHandler{}.HandleRelease(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client wl_output event.
func (o *WlOutput) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlOutputGeometry:
		dec := wire.NewDecoder(msg.Args)
		x, err := dec.Int32()
		if err != nil {
			return err
		}
		y, err := dec.Int32()
		if err != nil {
			return err
		}
		physWidth, err := dec.Int32()
		if err != nil {
			return err
		}
		physHeight, err := dec.Int32()
		if err != nil {
			return err
		}
		subpixel, err := dec.Int32()
		if err != nil {
			return err
		}
		make, err := dec.String(false)
		if err != nil {
			return err
		}
		model, err := dec.String(false)
		if err != nil {
			return err
		}
		transform, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleGeometry(o, x, y, physWidth, physHeight, subpixel, make, model, transform)
		} else {
			defaultWlOutputHandler{}.HandleGeometry(o, x, y, physWidth, physHeight, subpixel, make, model, transform)
		}
		return nil
	case opWlOutputMode:
		dec := wire.NewDecoder(msg.Args)
		flags, err := dec.Uint32()
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
		refresh, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleMode(o, flags, width, height, refresh)
		} else {
			defaultWlOutputHandler{}.HandleMode(o, flags, width, height, refresh)
		}
		return nil
	case opWlOutputDone:
		if o.handler != nil {
			o.handler.HandleDone(o)
		} else {
			defaultWlOutputHandler{}.HandleDone(o)
		}
		return nil
	case opWlOutputScale:
		dec := wire.NewDecoder(msg.Args)
		factor, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleScale(o, factor)
		} else {
			defaultWlOutputHandler{}.HandleScale(o, factor)
		}
		return nil
	case opWlOutputName:
		dec := wire.NewDecoder(msg.Args)
		name, err := dec.String(false)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleName(o, name)
		} else {
			defaultWlOutputHandler{}.HandleName(o, name)
		}
		return nil
	case opWlOutputDescription:
		dec := wire.NewDecoder(msg.Args)
		description, err := dec.String(false)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleDescription(o, description)
		} else {
			defaultWlOutputHandler{}.HandleDescription(o, description)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *WlOutput) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
