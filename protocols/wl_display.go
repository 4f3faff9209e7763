package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_display.
const (
	opWlDisplaySync        wire.Opcode = 0
	opWlDisplayGetRegistry wire.Opcode = 1
)

// Event opcodes for wl_display.
const (
	opWlDisplayError    wire.Opcode = 0
	opWlDisplayDeleteID wire.Opcode = 1
)

// wlDisplayWellKnownID is the object id wl_display always occupies on
// every Wayland connection, upstream or downstream, by protocol
// convention — it is never generated or negotiated.
const wlDisplayWellKnownID uint32 = 1

// WlDisplay is the always-present singleton at id 1. One instance
// exists per downstream client (so each client has its own handler
// and client-side bookkeeping), but every instance forwards requests
// to the same well-known id 1 on the single shared upstream
// connection.
type WlDisplay struct {
	core     proxyobj.ObjectCore
	upstream *proxyobj.Endpoint
	handler  WlDisplayHandler
}

// WlDisplayHandler lets an embedder observe display-level traffic;
// the default simply forwards, same as every other interface.
type WlDisplayHandler interface {
	HandleSync(obj *WlDisplay, client *proxyobj.Client, callback *WlCallback)
	HandleGetRegistry(obj *WlDisplay, client *proxyobj.Client, registry *WlRegistry)
	HandleError(obj *WlDisplay, objectID, code uint32, message string)
	HandleDeleteID(obj *WlDisplay, id uint32)
}

type defaultWlDisplayHandler struct{}

func (defaultWlDisplayHandler) HandleSync(obj *WlDisplay, _ *proxyobj.Client, callback *WlCallback) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestSync(callback)
}

func (defaultWlDisplayHandler) HandleGetRegistry(obj *WlDisplay, _ *proxyobj.Client, registry *WlRegistry) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestGetRegistry(registry)
}

func (defaultWlDisplayHandler) HandleError(obj *WlDisplay, objectID, code uint32, message string) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventError(objectID, code, message)
}

func (defaultWlDisplayHandler) HandleDeleteID(obj *WlDisplay, id uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventDeleteID(id)
}

// NewWlDisplay constructs the display object for one downstream
// client's connection (dispatch.NewLoop also builds one for the
// upstream connection). Its server-side and client-side ids are both
// the well-known id 1; only ServerObjID is recorded here, since its
// presence is what SendToServer checks, and BindClient sets
// ClientObjID.
func NewWlDisplay(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint) *WlDisplay {
	core := proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlDisplay, 1)
	serverID := wlDisplayWellKnownID
	core.ServerObjID = &serverID
	return &WlDisplay{core: core, upstream: upstream}
}

// BindClient attaches this display instance to the downstream client
// whose connection it represents, at the well-known client id.
func (o *WlDisplay) BindClient(client *proxyobj.Client) {
	o.core.Client = client
	id := wlDisplayWellKnownID
	o.core.ClientObjID = &id
}

func (o *WlDisplay) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlDisplay) SetHandler(h WlDisplayHandler) { o.handler = h }
func (o *WlDisplay) UnsetHandler()                 { o.handler = nil }

// TryRequestSync asks the server to emit a one-shot wl_callback.done
// once every request queued ahead of it on the upstream connection has
// been processed, then forwards that done event back to this display's
// client.
func (o *WlDisplay) TryRequestSync(callback *WlCallback) error {
	return o.sendRequestWithNewID(opWlDisplaySync, callback)
}

// RequestSync is the log-and-discard variant of TryRequestSync.
func (o *WlDisplay) RequestSync(callback *WlCallback) {
	if err := o.TryRequestSync(callback); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_display.sync: %v", err)
	}
}

// TryRequestGetRegistry asks the server to start the global burst on
// registry.
func (o *WlDisplay) TryRequestGetRegistry(registry *WlRegistry) error {
	return o.sendRequestWithNewID(opWlDisplayGetRegistry, registry)
}

// RequestGetRegistry is the log-and-discard variant.
func (o *WlDisplay) RequestGetRegistry(registry *WlRegistry) {
	if err := o.TryRequestGetRegistry(registry); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_display.get_registry: %v", err)
	}
}

// sendRequestWithNewID is shared by sync and get_registry: both carry
// exactly one new_id argument naming a fresh object the proxy must
// mint a server-side id for, on the shared upstream connection, before
// forwarding the request.
func (o *WlDisplay) sendRequestWithNewID(opcode wire.Opcode, child proxyobj.Object) error {
	id, err := o.upstream.Table.Generate(child)
	if err != nil {
		return proxyobj.NewObjectError(proxyobj.ErrGenerateServerID)
	}
	child.Core().ServerObjID = &id

	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	return o.core.SendToServer(opcode, enc.Bytes(), nil)
}

// TryEventError reports a protocol-level error from the server, naming
// the offending object id, a protocol-defined code, and a
// human-readable message.
func (o *WlDisplay) TryEventError(objectID, code uint32, message string) error {
	enc := wire.NewEncoder(len(message) + 16)
	enc.PutUint32(objectID)
	enc.PutUint32(code)
	enc.PutString(message)
	return o.core.SendToClient(opWlDisplayError, enc.Bytes(), nil)
}

// EventError is the log-and-discard variant.
func (o *WlDisplay) EventError(objectID, code uint32, message string) {
	if err := o.TryEventError(objectID, code, message); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_display.error: %v", err)
	}
}

// TryEventDeleteID forwards the server's confirmation that id (on the
// upstream endpoint) has been retired.
func (o *WlDisplay) TryEventDeleteID(id uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	return o.core.SendToClient(opWlDisplayDeleteID, enc.Bytes(), nil)
}

// EventDeleteID is the log-and-discard variant.
func (o *WlDisplay) EventDeleteID(id uint32) {
	if err := o.TryEventDeleteID(id); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_display.delete_id: %v", err)
	}
}

// HandleRequest decodes one client->server wl_display request.
func (o *WlDisplay) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlDisplaySync:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		callback := NewWlCallback(o.core.Disp, o.upstream)
		if err := client.Endpoint.Table.Set(uint32(newID), callback); err != nil {
			return proxyobj.NewObjectError(proxyobj.ErrSetClientID)
		}
		cid := uint32(newID)
		callback.Core().ClientObjID = &cid
		callback.Core().Client = client
		if o.handler != nil {
			o.handler.HandleSync(o, client, callback)
		} else {
			defaultWlDisplayHandler{}.HandleSync(o, client, callback)
		}
		return nil
	case opWlDisplayGetRegistry:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		registry := NewWlRegistry(o.core.Disp, o.upstream)
		if err := client.Endpoint.Table.Set(uint32(newID), registry); err != nil {
			return proxyobj.NewObjectError(proxyobj.ErrSetClientID)
		}
		cid := uint32(newID)
		registry.Core().ClientObjID = &cid
		registry.Core().Client = client
		if o.handler != nil {
			o.handler.HandleGetRegistry(o, client, registry)
		} else {
			defaultWlDisplayHandler{}.HandleGetRegistry(o, client, registry)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client wl_display event.
func (o *WlDisplay) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlDisplayError:
		dec := wire.NewDecoder(msg.Args)
		objectID, err := dec.Uint32()
		if err != nil {
			return err
		}
		code, err := dec.Uint32()
		if err != nil {
			return err
		}
		message, err := dec.String(false)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleError(o, objectID, code, message)
		} else {
			defaultWlDisplayHandler{}.HandleError(o, objectID, code, message)
		}
		return nil
	case opWlDisplayDeleteID:
		dec := wire.NewDecoder(msg.Args)
		id, err := dec.Uint32()
		if err != nil {
			return err
		}
		if obj, ok := o.upstream.Table.Lookup(id); ok {
			owner := obj.Core().Client
			if err := obj.HandleDeleteID(o.upstream.Table, func(clientID uint32) error {
				if owner == nil {
					return nil
				}
				return sendDeleteIDToClient(o.core.Disp, owner, clientID)
			}); err != nil {
				return err
			}
		}
		if o.handler != nil {
			o.handler.HandleDeleteID(o, id)
		} else {
			defaultWlDisplayHandler{}.HandleDeleteID(o, id)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID: wl_display itself is the one object never subject to
// delete_id — it is never destroyed during the connection's lifetime.
func (o *WlDisplay) HandleDeleteID(*proxyobj.ObjectTable, func(uint32) error) error {
	return nil
}

// sendDeleteIDToClient emits wl_display.delete_id(clientID) on
// client's connection, at the well-known display id, independent of
// which WlDisplay instance happens to be handling the event that
// triggered it — delete_id always targets id 1, never the id of the
// object being deleted.
func sendDeleteIDToClient(disp proxyobj.Dispatcher, client *proxyobj.Client, clientID uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(clientID)
	data, err := wire.EncodeMessage(wire.ObjectID(wlDisplayWellKnownID), opWlDisplayDeleteID, enc.Bytes())
	if err != nil {
		return err
	}
	if first := client.Endpoint.Enqueue(data, nil); first && disp != nil {
		disp.AddFlushable(client.Endpoint)
	}
	return nil
}
