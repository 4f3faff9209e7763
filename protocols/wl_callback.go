package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Opcodes for wl_callback.
const (
	opWlCallbackDone wire.Opcode = 0
)

// WlCallbackHandler observes or overrides wl_callback's single event.
// A wl_callback is single-shot, so HandleEvent marks the callback
// server-destroyed as soon as done arrives, before the Handler (or the
// default behavior, which forwards the event downstream) runs. The
// server-side slot itself is released later, when the server's
// delete_id for it reaches HandleDeleteID.
type WlCallbackHandler interface {
	HandleDone(obj *WlCallback, callbackData uint32)
}

type defaultWlCallbackHandler struct{}

func (defaultWlCallbackHandler) HandleDone(obj *WlCallback, callbackData uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventDone(callbackData)
}

// WlCallback is a one-shot confirmation object: the server fires
// exactly one `done` event then the proxy retires it.
type WlCallback struct {
	core    proxyobj.ObjectCore
	handler WlCallbackHandler
}

// NewWlCallback constructs a fresh WlCallback sharing disp/upstream
// with every other object this proxy instance owns.
func NewWlCallback(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint) *WlCallback {
	return &WlCallback{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlCallback, 1)}
}

func (o *WlCallback) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlCallback) SetHandler(h WlCallbackHandler) { o.handler = h }
func (o *WlCallback) UnsetHandler()                  { o.handler = nil }

// TryEventDone sends the done event downstream, carrying the
// compositor's opaque callback_data (e.g. a frame timestamp).
func (o *WlCallback) TryEventDone(callbackData uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(callbackData)
	return o.core.SendToClient(opWlCallbackDone, enc.Bytes(), nil)
}

// EventDone is the log-and-discard variant of TryEventDone.
func (o *WlCallback) EventDone(callbackData uint32) {
	if err := o.TryEventDone(callbackData); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_callback.done: %v", err)
	}
}

// HandleEvent decodes one server->client wl_callback event and routes
// it to the installed Handler, or the default forwarding behavior.
func (o *WlCallback) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlCallbackDone:
		dec := wire.NewDecoder(msg.Args)
		callbackData, err := dec.Uint32()
		if err != nil {
			return err
		}
		o.core.MarkServerDestroyed()
		if o.handler != nil {
			o.handler.HandleDone(o, callbackData)
		} else {
			defaultWlCallbackHandler{}.HandleDone(o, callbackData)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleRequest: wl_callback has no requests.
func (o *WlCallback) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}

// HandleDeleteID releases this object's server-side slot once the
// server's delete_id for it arrives, same as every other object.
func (o *WlCallback) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
