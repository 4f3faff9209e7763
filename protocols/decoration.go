package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for zxdg_decoration_manager_v1.
const (
	opZxdgDecorationManagerDestroy              wire.Opcode = 0
	opZxdgDecorationManagerGetToplevelDecoration wire.Opcode = 1
)

// DecorationMode values exchanged by zxdg_toplevel_decoration_v1.
const (
	DecorationModeClientSide uint32 = 1
	DecorationModeServerSide uint32 = 2
)

// ZxdgDecorationManagerV1 lets a client ask the compositor to draw
// server-side window decorations instead of drawing its own — commonly
// synthesized locally by a proxy whose upstream compositor never
// advertises it (spec.md's registry-filter scenario S2).
type ZxdgDecorationManagerV1 struct {
	core    proxyobj.ObjectCore
	handler ZxdgDecorationManagerV1Handler
}

// ZxdgDecorationManagerV1Handler observes or overrides manager traffic.
type ZxdgDecorationManagerV1Handler interface {
	HandleDestroy(obj *ZxdgDecorationManagerV1)
	HandleGetToplevelDecoration(obj *ZxdgDecorationManagerV1, client *proxyobj.Client, toplevel *XdgToplevel, decoration *ZxdgToplevelDecorationV1)
}

type defaultZxdgDecorationManagerV1Handler struct{}

func (defaultZxdgDecorationManagerV1Handler) HandleDestroy(obj *ZxdgDecorationManagerV1) {
	_ = forwardDestroy(&obj.core, opZxdgDecorationManagerDestroy)
}

func (defaultZxdgDecorationManagerV1Handler) HandleGetToplevelDecoration(obj *ZxdgDecorationManagerV1, _ *proxyobj.Client, toplevel *XdgToplevel, decoration *ZxdgToplevelDecorationV1) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestGetToplevelDecoration(toplevel, decoration)
}

// NewZxdgDecorationManagerV1 constructs a manager proxy object.
func NewZxdgDecorationManagerV1(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *ZxdgDecorationManagerV1 {
	return &ZxdgDecorationManagerV1{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceZxdgDecorationManagerV1, version)}
}

func (o *ZxdgDecorationManagerV1) Core() *proxyobj.ObjectCore { return &o.core }

func (o *ZxdgDecorationManagerV1) SetHandler(h ZxdgDecorationManagerV1Handler) { o.handler = h }
func (o *ZxdgDecorationManagerV1) UnsetHandler()                              { o.handler = nil }

func (o *ZxdgDecorationManagerV1) TryRequestGetToplevelDecoration(toplevel *XdgToplevel, decoration *ZxdgToplevelDecorationV1) error {
	id, err := bindNewID(o.core.ServerEndpoint(), decoration)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(8)
	enc.PutUint32(id)
	enc.PutObject(wire.ObjectID(destIDFor(toplevel, true)))
	return o.core.SendToServer(opZxdgDecorationManagerGetToplevelDecoration, enc.Bytes(), nil)
}

func (o *ZxdgDecorationManagerV1) RequestGetToplevelDecoration(toplevel *XdgToplevel, decoration *ZxdgToplevelDecorationV1) {
	if err := o.TryRequestGetToplevelDecoration(toplevel, decoration); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("zxdg_decoration_manager_v1.get_toplevel_decoration: %v", err)
	}
}

// HandleRequest decodes one client->server manager request.
func (o *ZxdgDecorationManagerV1) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opZxdgDecorationManagerDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultZxdgDecorationManagerV1Handler{}.HandleDestroy(o)
		}
		return nil
	case opZxdgDecorationManagerGetToplevelDecoration:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		toplevelID, err := dec.Object()
		if err != nil {
			return err
		}
		obj, err := lookupObjectArg(client.Endpoint.Table, "toplevel", uint32(toplevelID), proxyobj.InterfaceXdgToplevel)
		if err != nil {
			return err
		}
		toplevel := obj.(*XdgToplevel)
		decoration := NewZxdgToplevelDecorationV1(o.core.Disp, o.core.ServerEndpoint(), o.core.Version, toplevel)
		if err := registerClientChild(client, uint32(newID), decoration); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleGetToplevelDecoration(o, client, toplevel, decoration)
		} else {
			defaultZxdgDecorationManagerV1Handler{}.HandleGetToplevelDecoration(o, client, toplevel, decoration)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent: zxdg_decoration_manager_v1 has no events.
func (o *ZxdgDecorationManagerV1) HandleEvent(msg *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}

// HandleDeleteID releases this object's server-side slot.
func (o *ZxdgDecorationManagerV1) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for zxdg_toplevel_decoration_v1.
const (
	opZxdgToplevelDecorationDestroy     wire.Opcode = 0
	opZxdgToplevelDecorationSetMode     wire.Opcode = 1
	opZxdgToplevelDecorationUnsetMode   wire.Opcode = 2
)

// Event opcodes for zxdg_toplevel_decoration_v1.
const (
	opZxdgToplevelDecorationConfigure wire.Opcode = 0
)

// ZxdgToplevelDecorationV1 negotiates whether one toplevel's window
// chrome is drawn by the client or the compositor.
type ZxdgToplevelDecorationV1 struct {
	core     proxyobj.ObjectCore
	toplevel *XdgToplevel
	handler  ZxdgToplevelDecorationV1Handler
}

// ZxdgToplevelDecorationV1Handler observes or overrides decoration
// traffic.
type ZxdgToplevelDecorationV1Handler interface {
	HandleDestroy(obj *ZxdgToplevelDecorationV1)
	HandleSetMode(obj *ZxdgToplevelDecorationV1, mode uint32)
	HandleUnsetMode(obj *ZxdgToplevelDecorationV1)
	HandleConfigure(obj *ZxdgToplevelDecorationV1, mode uint32)
}

type defaultZxdgToplevelDecorationV1Handler struct{}

func (defaultZxdgToplevelDecorationV1Handler) HandleDestroy(obj *ZxdgToplevelDecorationV1) {
	_ = forwardDestroy(&obj.core, opZxdgToplevelDecorationDestroy)
}

func (defaultZxdgToplevelDecorationV1Handler) HandleSetMode(obj *ZxdgToplevelDecorationV1, mode uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSetMode(mode)
}

func (defaultZxdgToplevelDecorationV1Handler) HandleUnsetMode(obj *ZxdgToplevelDecorationV1) {
	if !obj.core.ForwardToServer {
		return
	}
	_ = obj.core.SendToServer(opZxdgToplevelDecorationUnsetMode, nil, nil)
}

func (defaultZxdgToplevelDecorationV1Handler) HandleConfigure(obj *ZxdgToplevelDecorationV1, mode uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventConfigure(mode)
}

// NewZxdgToplevelDecorationV1 constructs a decoration proxy object
// wrapping toplevel.
func NewZxdgToplevelDecorationV1(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32, toplevel *XdgToplevel) *ZxdgToplevelDecorationV1 {
	return &ZxdgToplevelDecorationV1{
		core:     proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceZxdgToplevelDecorationV1, version),
		toplevel: toplevel,
	}
}

func (o *ZxdgToplevelDecorationV1) Core() *proxyobj.ObjectCore { return &o.core }
func (o *ZxdgToplevelDecorationV1) Toplevel() *XdgToplevel      { return o.toplevel }

func (o *ZxdgToplevelDecorationV1) SetHandler(h ZxdgToplevelDecorationV1Handler) { o.handler = h }
func (o *ZxdgToplevelDecorationV1) UnsetHandler()                               { o.handler = nil }

func (o *ZxdgToplevelDecorationV1) TryRequestSetMode(mode uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(mode)
	return o.core.SendToServer(opZxdgToplevelDecorationSetMode, enc.Bytes(), nil)
}

func (o *ZxdgToplevelDecorationV1) RequestSetMode(mode uint32) {
	if err := o.TryRequestSetMode(mode); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("zxdg_toplevel_decoration_v1.set_mode: %v", err)
	}
}

func (o *ZxdgToplevelDecorationV1) TryEventConfigure(mode uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(mode)
	return o.core.SendToClient(opZxdgToplevelDecorationConfigure, enc.Bytes(), nil)
}

func (o *ZxdgToplevelDecorationV1) EventConfigure(mode uint32) {
	if err := o.TryEventConfigure(mode); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("zxdg_toplevel_decoration_v1.configure: %v", err)
	}
}

// HandleRequest decodes one client->server decoration request.
func (o *ZxdgToplevelDecorationV1) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opZxdgToplevelDecorationDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultZxdgToplevelDecorationV1Handler{}.HandleDestroy(o)
		}
		return nil
	case opZxdgToplevelDecorationSetMode:
		dec := wire.NewDecoder(msg.Args)
		mode, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSetMode(o, mode)
		} else {
			defaultZxdgToplevelDecorationV1Handler{}.HandleSetMode(o, mode)
		}
		return nil
	case opZxdgToplevelDecorationUnsetMode:
		if o.handler != nil {
			o.handler.HandleUnsetMode(o)
		} else {
			defaultZxdgToplevelDecorationV1Handler{}.HandleUnsetMode(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client decoration event.
func (o *ZxdgToplevelDecorationV1) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opZxdgToplevelDecorationConfigure:
		dec := wire.NewDecoder(msg.Args)
		mode, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleConfigure(o, mode)
		} else {
			defaultZxdgToplevelDecorationV1Handler{}.HandleConfigure(o, mode)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *ZxdgToplevelDecorationV1) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
