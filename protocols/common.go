package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// forwardDestroy implements the request/event pattern every
// client-destroyed object shares: mark this side destroyed, then
// forward the zero-argument destroy request upstream iff forwarding is
// enabled (spec.md §4.3's deletion protocol).
func forwardDestroy(core *proxyobj.ObjectCore, opcode wire.Opcode) error {
	core.MarkClientDestroyed()
	if !core.ForwardToServer {
		return nil
	}
	return core.SendToServer(opcode, nil, nil)
}

// bindNewID mints a server-side id for child on upstream and records
// it, for requests that create a brand-new object
// (wl_compositor.create_surface, wl_surface.frame, ...).
func bindNewID(upstream *proxyobj.Endpoint, child proxyobj.Object) (uint32, error) {
	id, err := upstream.Table.Generate(child)
	if err != nil {
		return 0, proxyobj.NewObjectError(proxyobj.ErrGenerateServerID)
	}
	child.Core().ServerObjID = &id
	return id, nil
}

// registerClientChild binds a freshly constructed object to the
// client-supplied new_id on client's table, completing the other half
// of its two-sided identity.
func registerClientChild(client *proxyobj.Client, clientID uint32, child proxyobj.Object) error {
	if err := client.Endpoint.Table.Set(clientID, child); err != nil {
		return proxyobj.NewObjectError(proxyobj.ErrSetClientID)
	}
	child.Core().ClientObjID = &clientID
	child.Core().Client = client
	return nil
}

// lookupObjectArg resolves an `object` argument read off the wire as a
// raw id on srcTable to the proxied Object it names, verifying its
// interface matches want (spec.md §4.4's argument translation rules).
func lookupObjectArg(srcTable *proxyobj.ObjectTable, field string, rawID uint32, want proxyobj.Interface) (proxyobj.Object, error) {
	obj, ok := srcTable.Lookup(rawID)
	if !ok {
		return nil, proxyobj.NewFieldError(proxyobj.ErrArgNoServerID, field)
	}
	if obj.Core().Interface != want {
		return nil, proxyobj.NewTypeError(field, obj.Core().Interface, want)
	}
	return obj, nil
}

// unmanagedObject backs ids this proxy mints but never dispatches
// against — wl_pointer/wl_keyboard/wl_touch, whose motion/key/touch
// event streams this proxy forwards at the connection level without
// decoding (spec.md's Non-goal on input remapping). It satisfies
// proxyobj.Object only so ObjectTable.Generate has something to bind
// the id to; HandleRequest/HandleEvent are never reached because
// nothing routes messages to an id registered this way.
type unmanagedObject struct {
	core proxyobj.ObjectCore
}

func (u *unmanagedObject) Core() *proxyobj.ObjectCore { return &u.core }
func (u *unmanagedObject) HandleRequest(*proxyobj.Client, *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}
func (u *unmanagedObject) HandleEvent(*wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}
func (u *unmanagedObject) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return u.core.ReleaseServerSide(upstream, sendDeleteID)
}
func (u *unmanagedObject) UnsetHandler() {}

// destIDFor returns the id an object argument should be re-serialized
// under for the destination direction: its ServerObjID when forwarding
// a request upstream, its ClientObjID when forwarding an event
// downstream. 0 if the object has no incarnation on that side yet
// (meaning the argument cannot currently be forwarded).
func destIDFor(obj proxyobj.Object, toServer bool) uint32 {
	core := obj.Core()
	if toServer {
		if core.ServerObjID == nil {
			return 0
		}
		return *core.ServerObjID
	}
	if core.ClientObjID == nil {
		return 0
	}
	return *core.ClientObjID
}
