package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/proxystate"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_registry.
const (
	opWlRegistryBind wire.Opcode = 0
)

// Event opcodes for wl_registry.
const (
	opWlRegistryGlobal       wire.Opcode = 0
	opWlRegistryGlobalRemove wire.Opcode = 1
)

// WlRegistry is the per-client global registry. Unlike most objects it
// is filtered through a proxystate.Mapper rather than forwarded
// byte-for-byte: the upstream's wl_registry.global/global_remove
// stream is rewritten, filtered, and supplemented with synthetic
// globals before reaching the client (spec.md §4.5).
type WlRegistry struct {
	core     proxyobj.ObjectCore
	upstream *proxyobj.Endpoint
	handler  WlRegistryHandler

	mapper *proxystate.Mapper
}

// WlRegistryHandler observes or overrides wl_registry traffic.
type WlRegistryHandler interface {
	HandleBind(obj *WlRegistry, client *proxyobj.Client, name uint32, newID proxyobj.Object)
	HandleGlobal(obj *WlRegistry, name uint32, iface string, version uint32)
	HandleGlobalRemove(obj *WlRegistry, name uint32)
}

type defaultWlRegistryHandler struct{}

func (defaultWlRegistryHandler) HandleBind(obj *WlRegistry, client *proxyobj.Client, name uint32, newID proxyobj.Object) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestBind(name, newID)
}

func (defaultWlRegistryHandler) HandleGlobal(obj *WlRegistry, name uint32, iface string, version uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventGlobal(name, iface, version)
}

func (defaultWlRegistryHandler) HandleGlobalRemove(obj *WlRegistry, name uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventGlobalRemove(name)
}

// NewWlRegistry constructs a registry bound to the per-proxy registry
// filter: when disp is a *proxystate.State, its Mapper. Every
// downstream client shares the same Mapper
// instance (the filter policy is process-wide, not per client), but
// each client gets its own WlRegistry object and its own upstream
// global_remove dispatch since the Mapper's internal name bookkeeping
// assumes a single caller driving HandleGlobal/HandleGlobalRemove —
// in practice there is exactly one upstream connection and therefore
// exactly one WlRegistry forwarding real traffic at a time; additional
// per-client WlRegistry objects created via repeated get_registry calls
// all read the same Mapper state.
func NewWlRegistry(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint) *WlRegistry {
	r := &WlRegistry{
		core:     proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlRegistry, 1),
		upstream: upstream,
	}
	if st, ok := disp.(*proxystate.State); ok {
		r.mapper = st.Mapper
	}
	return r
}

// serverEndpoint returns the shared upstream Endpoint new globals bind
// their server-side incarnation toward.
func (o *WlRegistry) serverEndpoint() *proxyobj.Endpoint { return o.upstream }

// SetMapper attaches the registry filter this object consults for
// every global/global_remove/bind, replacing the one NewWlRegistry
// took from its dispatcher.
func (o *WlRegistry) SetMapper(m *proxystate.Mapper) { o.mapper = m }

func (o *WlRegistry) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlRegistry) SetHandler(h WlRegistryHandler) { o.handler = h }
func (o *WlRegistry) UnsetHandler()                  { o.handler = nil }

// TryRequestBind forwards a bind to the upstream server under name,
// after minting a server-side id for newID.
func (o *WlRegistry) TryRequestBind(name uint32, newID proxyobj.Object) error {
	if o.core.ServerObjID == nil {
		return proxyobj.NewObjectError(proxyobj.ErrReceiverNoServerID)
	}
	id, err := o.serverTable().Generate(newID)
	if err != nil {
		return proxyobj.NewObjectError(proxyobj.ErrGenerateServerID)
	}
	newID.Core().ServerObjID = &id

	enc := wire.NewEncoder(32)
	enc.PutUint32(name)
	iface := newID.Core().Interface
	enc.PutString(iface.Name())
	enc.PutUint32(newID.Core().Version)
	enc.PutUint32(id)
	return o.core.SendToServer(opWlRegistryBind, enc.Bytes(), nil)
}

// RequestBind is the log-and-discard variant.
func (o *WlRegistry) RequestBind(name uint32, newID proxyobj.Object) {
	if err := o.TryRequestBind(name, newID); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_registry.bind: %v", err)
	}
}

// TryEventGlobal announces one global to this registry's client.
func (o *WlRegistry) TryEventGlobal(name uint32, iface string, version uint32) error {
	enc := wire.NewEncoder(len(iface) + 16)
	enc.PutUint32(name)
	enc.PutString(iface)
	enc.PutUint32(version)
	return o.core.SendToClient(opWlRegistryGlobal, enc.Bytes(), nil)
}

// EventGlobal is the log-and-discard variant.
func (o *WlRegistry) EventGlobal(name uint32, iface string, version uint32) {
	if err := o.TryEventGlobal(name, iface, version); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_registry.global: %v", err)
	}
}

// TryEventGlobalRemove announces a global's removal.
func (o *WlRegistry) TryEventGlobalRemove(name uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(name)
	return o.core.SendToClient(opWlRegistryGlobalRemove, enc.Bytes(), nil)
}

// EventGlobalRemove is the log-and-discard variant.
func (o *WlRegistry) EventGlobalRemove(name uint32) {
	if err := o.TryEventGlobalRemove(name); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_registry.global_remove: %v", err)
	}
}

// HandleRequest decodes one client->server wl_registry.bind.
func (o *WlRegistry) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlRegistryBind:
		dec := wire.NewDecoder(msg.Args)
		name, err := dec.Uint32()
		if err != nil {
			return err
		}
		ifaceName, version, newID, err := dec.NewIDFull()
		if err != nil {
			return err
		}

		if o.mapper != nil {
			res, ok := o.mapper.ResolveBind(name)
			if !ok {
				return proxyobj.NewObjectError(proxyobj.ErrNoClientObject)
			}
			if res.Synthetic {
				return o.bindSynthetic(client, uint32(newID), res.SyntheticGlobal)
			}
			ifaceName = res.Interface
		}

		ifaceTag, known := proxyobj.InterfaceFromName(ifaceName)
		if !known {
			return proxyobj.NewObjectError(proxyobj.ErrWrongObjectType)
		}
		child, err := NewObjectForInterface(o.core.Disp, o.serverEndpoint(), ifaceTag, version)
		if err != nil {
			return err
		}
		if err := client.Endpoint.Table.Set(uint32(newID), child); err != nil {
			return proxyobj.NewObjectError(proxyobj.ErrSetClientID)
		}
		cid := uint32(newID)
		child.Core().ClientObjID = &cid
		child.Core().Client = client

		if o.handler != nil {
			o.handler.HandleBind(o, client, name, child)
		} else {
			defaultWlRegistryHandler{}.HandleBind(o, client, name, child)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// bindSynthetic satisfies a bind against a Mapper-synthesized global
// entirely locally: a local Object is created and registered on the
// client's table, but nothing is ever sent upstream (spec.md §4.5).
func (o *WlRegistry) bindSynthetic(client *proxyobj.Client, clientID uint32, g proxystate.SyntheticGlobal) error {
	ifaceTag, known := proxyobj.InterfaceFromName(g.Interface)
	if !known {
		return proxyobj.NewObjectError(proxyobj.ErrWrongObjectType)
	}
	child, err := NewObjectForInterface(o.core.Disp, o.serverEndpoint(), ifaceTag, g.Version)
	if err != nil {
		return err
	}
	child.Core().ForwardToServer = false
	if err := client.Endpoint.Table.Set(clientID, child); err != nil {
		return proxyobj.NewObjectError(proxyobj.ErrSetClientID)
	}
	child.Core().ClientObjID = &clientID
	child.Core().Client = client
	return nil
}

// HandleEvent decodes one server->client wl_registry event, running it
// through the Mapper first.
func (o *WlRegistry) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlRegistryGlobal:
		dec := wire.NewDecoder(msg.Args)
		name, err := dec.Uint32()
		if err != nil {
			return err
		}
		iface, err := dec.String(false)
		if err != nil {
			return err
		}
		version, err := dec.Uint32()
		if err != nil {
			return err
		}

		if o.mapper == nil {
			o.dispatchGlobal(name, iface, version)
			return nil
		}
		decision, synthetics := o.mapper.HandleGlobal(name, iface, version)
		for _, s := range synthetics {
			o.dispatchGlobal(s.Name, s.Interface, s.Version)
		}
		if decision.Forward {
			o.dispatchGlobal(name, decision.Interface, decision.Version)
		}
		return nil
	case opWlRegistryGlobalRemove:
		dec := wire.NewDecoder(msg.Args)
		name, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.mapper == nil {
			o.dispatchGlobalRemove(name)
			return nil
		}
		forward, synthMisuse := o.mapper.HandleGlobalRemove(name)
		if synthMisuse && o.core.Disp != nil {
			o.core.Disp.Warnf("wl_registry.global_remove(%d): removal of a synthetic global, dropping", name)
			return nil
		}
		if forward {
			o.dispatchGlobalRemove(name)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

func (o *WlRegistry) dispatchGlobal(name uint32, iface string, version uint32) {
	if o.handler != nil {
		o.handler.HandleGlobal(o, name, iface, version)
	} else {
		defaultWlRegistryHandler{}.HandleGlobal(o, name, iface, version)
	}
}

func (o *WlRegistry) dispatchGlobalRemove(name uint32) {
	if o.handler != nil {
		o.handler.HandleGlobalRemove(o, name)
	} else {
		defaultWlRegistryHandler{}.HandleGlobalRemove(o, name)
	}
}

// HandleDeleteID: the registry is not destroyed for the life of the
// connection in ordinary use, but a misbehaving client could
// nonetheless release it like any other object.
func (o *WlRegistry) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

func (o *WlRegistry) serverTable() *proxyobj.ObjectTable {
	return o.serverEndpoint().Table
}
