package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_seat.
const (
	opWlSeatGetPointer  wire.Opcode = 0
	opWlSeatGetKeyboard wire.Opcode = 1
	opWlSeatGetTouch    wire.Opcode = 2
	opWlSeatRelease     wire.Opcode = 3 // since version 5
)

// Event opcodes for wl_seat.
const (
	opWlSeatCapabilities wire.Opcode = 0
	opWlSeatName         wire.Opcode = 1 // since version 2
)

// WlSeat is the input-device group a client binds pointer, keyboard,
// and touch objects through. This proxy does not need to understand
// pointer/keyboard/touch motion itself (§4.2's Non-goal on input
// remapping), so wl_pointer/wl_keyboard/wl_touch get no dedicated
// Object type: their new_id is registered on the client's table and
// under a generated server id, both bound to an unmanagedObject
// placeholder (see common.go), and forwarded upstream.
type WlSeat struct {
	core    proxyobj.ObjectCore
	handler WlSeatHandler
}

// WlSeatHandler observes or overrides wl_seat traffic. The get_*
// methods receive the freshly generated server-side id rather than a
// typed Object, matching the undispatched nature of pointer/keyboard/
// touch objects.
type WlSeatHandler interface {
	HandleGetPointer(obj *WlSeat, client *proxyobj.Client, serverID uint32)
	HandleGetKeyboard(obj *WlSeat, client *proxyobj.Client, serverID uint32)
	HandleGetTouch(obj *WlSeat, client *proxyobj.Client, serverID uint32)
	HandleRelease(obj *WlSeat)
	HandleCapabilities(obj *WlSeat, capabilities uint32)
	HandleName(obj *WlSeat, name string)
}

type defaultWlSeatHandler struct{}

func (defaultWlSeatHandler) HandleGetPointer(obj *WlSeat, _ *proxyobj.Client, serverID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.requestGetChild(opWlSeatGetPointer, serverID, "get_pointer")
}

func (defaultWlSeatHandler) HandleGetKeyboard(obj *WlSeat, _ *proxyobj.Client, serverID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.requestGetChild(opWlSeatGetKeyboard, serverID, "get_keyboard")
}

func (defaultWlSeatHandler) HandleGetTouch(obj *WlSeat, _ *proxyobj.Client, serverID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.requestGetChild(opWlSeatGetTouch, serverID, "get_touch")
}

func (defaultWlSeatHandler) HandleRelease(obj *WlSeat) {
	_ = forwardDestroy(&obj.core, opWlSeatRelease)
}

func (defaultWlSeatHandler) HandleCapabilities(obj *WlSeat, capabilities uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventCapabilities(capabilities)
}

func (defaultWlSeatHandler) HandleName(obj *WlSeat, name string) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventName(name)
}

// NewWlSeat constructs a wl_seat proxy object at the given negotiated
// version.
func NewWlSeat(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *WlSeat {
	return &WlSeat{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlSeat, version)}
}

func (o *WlSeat) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlSeat) SetHandler(h WlSeatHandler) { o.handler = h }
func (o *WlSeat) UnsetHandler()              { o.handler = nil }

// requestGetChild forwards one of get_pointer/get_keyboard/get_touch
// under the already-generated serverID.
func (o *WlSeat) requestGetChild(opcode wire.Opcode, serverID uint32, name string) {
	enc := wire.NewEncoder(4)
	enc.PutUint32(serverID)
	if err := o.core.SendToServer(opcode, enc.Bytes(), nil); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_seat.%s: %v", name, err)
	}
}

func (o *WlSeat) TryEventCapabilities(capabilities uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(capabilities)
	return o.core.SendToClient(opWlSeatCapabilities, enc.Bytes(), nil)
}

func (o *WlSeat) EventCapabilities(capabilities uint32) {
	if err := o.TryEventCapabilities(capabilities); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_seat.capabilities: %v", err)
	}
}

func (o *WlSeat) TryEventName(name string) error {
	enc := wire.NewEncoder(len(name) + 8)
	enc.PutString(name)
	return o.core.SendToClient(opWlSeatName, enc.Bytes(), nil)
}

func (o *WlSeat) EventName(name string) {
	if err := o.TryEventName(name); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_seat.name: %v", err)
	}
}

// HandleRequest decodes one client->server wl_seat request. The
// get_pointer/get_keyboard/get_touch new_id is given a server-side id
// here (bound to an unmanagedObject, per the type's doc comment) so
// the Handler callback always receives a ready-to-send id.
func (o *WlSeat) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlSeatGetPointer, opWlSeatGetKeyboard, opWlSeatGetTouch:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		child := &unmanagedObject{}
		serverID, err := bindNewID(o.core.ServerEndpoint(), child)
		if err != nil {
			return err
		}
		if err := registerClientChild(client, uint32(newID), child); err != nil {
			return err
		}
		switch msg.Opcode {
		case opWlSeatGetPointer:
			if o.handler != nil {
				o.handler.HandleGetPointer(o, client, serverID)
			} else {
				defaultWlSeatHandler{}.HandleGetPointer(o, client, serverID)
			}
		case opWlSeatGetKeyboard:
			if o.handler != nil {
				o.handler.HandleGetKeyboard(o, client, serverID)
			} else {
				defaultWlSeatHandler{}.HandleGetKeyboard(o, client, serverID)
			}
		case opWlSeatGetTouch:
			if o.handler != nil {
				o.handler.HandleGetTouch(o, client, serverID)
			} else {
				defaultWlSeatHandler{}.HandleGetTouch(o, client, serverID)
			}
		}
		return nil
	case opWlSeatRelease:
		if o.handler != nil {
			o.handler.HandleRelease(o)
		} else {
			defaultWlSeatHandler{}.HandleRelease(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client wl_seat event.
func (o *WlSeat) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlSeatCapabilities:
		dec := wire.NewDecoder(msg.Args)
		capabilities, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleCapabilities(o, capabilities)
		} else {
			defaultWlSeatHandler{}.HandleCapabilities(o, capabilities)
		}
		return nil
	case opWlSeatName:
		dec := wire.NewDecoder(msg.Args)
		name, err := dec.String(false)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleName(o, name)
		} else {
			defaultWlSeatHandler{}.HandleName(o, name)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *WlSeat) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
