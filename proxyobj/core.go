package proxyobj

import "github.com/gogpu/wlproxy/wire"

// Object is implemented by every per-interface proxied object
// (protocols.WlDisplay, protocols.WlSurface, ...). Concrete types are
// produced by the generated-style protocols package; proxyobj only
// needs to route wire messages to them and manage their shared
// lifecycle state.
//
// Unlike the original's Rc<dyn Object> plus a stored Weak<Self>,
// nothing here needs a self-reference: a Go method already has its
// receiver, and Go's garbage collector reclaims reference cycles
// without help, so the "hand out a strong ref via a stored weak back
// reference" dance in spec.md §9 has no Go equivalent to build — any
// method can simply pass its own receiver to a handler callback.
type Object interface {
	// Core returns the shared lifecycle state every proxied object
	// carries, regardless of interface.
	Core() *ObjectCore

	// HandleRequest decodes and dispatches one client-to-server
	// message addressed to this object. client is the peer that sent
	// it.
	HandleRequest(client *Client, msg *wire.Message) error

	// HandleEvent decodes and dispatches one server-to-client message
	// addressed to this object, received on the upstream Endpoint.
	HandleEvent(msg *wire.Message) error

	// HandleDeleteID runs this object's reaction to its server-side id
	// being retired by wl_display.delete_id: release the server-side
	// table slot, and — once both sides have released the object —
	// invoke sendDeleteID to tell the owning client to retire its own
	// id too. upstream is the table to release the slot from.
	// ObjectCore.ReleaseServerSide implements the default behavior
	// every object uses unless it overrides delete_id specially.
	HandleDeleteID(upstream *ObjectTable, sendDeleteID func(clientID uint32) error) error

	// UnsetHandler clears any installed handler, reverting to default
	// (forward-if-enabled) behavior.
	UnsetHandler()
}

// ObjectCore is the state every proxied Object carries in common,
// mirroring spec.md §3's field list and the two-sided destruction
// state machine of spec.md §4.4's status table.
type ObjectCore struct {
	Interface Interface
	Version   uint32

	// ServerObjID is this object's id on the upstream Endpoint's
	// table, if it has been transported there yet.
	ServerObjID *uint32

	// Client is the downstream peer that owns this object's
	// client-side identity, if any (objects that exist purely on the
	// upstream side — none in steady state, but possible transiently
	// during construction — have Client == nil).
	Client *Client

	// ClientObjID is this object's id on Client.Endpoint's table.
	ClientObjID *uint32

	// serverEndpoint is the single upstream Endpoint every object in
	// this proxy instance sends requests toward. It is not exported:
	// callers reach it only through SendToServer.
	serverEndpoint *Endpoint

	ForwardToServer bool
	ForwardToClient bool

	ClientDestroyed   bool
	ServerDestroyed   bool
	ForwardedDeleteID bool

	// dispatching guards against reentrant dispatch into this
	// object's handler (spec.md §7's HandlerBorrowed); the core is
	// single-threaded, so a plain bool suffices — no mutex belongs
	// here (spec.md §5).
	dispatching bool

	Disp Dispatcher
}

// NewObjectCore builds the shared state for a freshly constructed
// Object, with ForwardToServer/ForwardToClient both defaulting to true
// (spec.md §4.4: "the default is forward to the opposite side iff the
// flag is set"). Per-interface constructors in protocols call this.
func NewObjectCore(disp Dispatcher, upstream *Endpoint, iface Interface, version uint32) ObjectCore {
	return ObjectCore{
		Interface:       iface,
		Version:         version,
		serverEndpoint:  upstream,
		ForwardToServer: true,
		ForwardToClient: true,
		Disp:            disp,
	}
}

// ServerEndpoint returns the upstream Endpoint this object forwards
// requests toward, or nil if none is attached yet. Objects that mint
// ids for children they create on the server side (wl_surface.frame's
// wl_callback, wl_display's sync/get_registry) need this to call
// Table.Generate directly, since minting a new_id is not itself a
// send and so does not go through SendToServer.
func (c *ObjectCore) ServerEndpoint() *Endpoint {
	return c.serverEndpoint
}

// Enter marks the object as currently dispatching, returning an
// ObjectError if a handler is already running for it (reentrancy).
// Callers must defer Exit() once Enter succeeds.
func (c *ObjectCore) Enter() error {
	if c.dispatching {
		return NewObjectError(ErrHandlerBorrowed)
	}
	c.dispatching = true
	return nil
}

// Exit clears the dispatching flag set by Enter.
func (c *ObjectCore) Exit() {
	c.dispatching = false
}

// Status reports the destruction-state-machine status of spec.md
// §4.4's table, for logging and tests.
type Status int

const (
	StatusLive Status = iota
	StatusAwaitingServerRelease
	StatusAwaitingClientRelease
	StatusFullyReleasedAwaitingDeleteID
	StatusTerminal
)

func (c *ObjectCore) Status() Status {
	switch {
	case c.ForwardedDeleteID:
		return StatusTerminal
	case c.ClientDestroyed && c.ServerDestroyed:
		return StatusFullyReleasedAwaitingDeleteID
	case c.ClientDestroyed:
		return StatusAwaitingServerRelease
	case c.ServerDestroyed:
		return StatusAwaitingClientRelease
	default:
		return StatusLive
	}
}

// SendToServer queues a request-direction message to the upstream
// Endpoint on behalf of this object's server-side incarnation. Every
// generated try_send_* method for a request funnels through here
// after encoding its arguments, so the queueing/flush-scheduling logic
// lives once in proxyobj rather than once per interface.
func (c *ObjectCore) SendToServer(opcode wire.Opcode, args []byte, fds []int) error {
	if c.ServerObjID == nil {
		return NewObjectError(ErrReceiverNoServerID)
	}
	data, err := wire.EncodeMessage(wire.ObjectID(*c.ServerObjID), opcode, args)
	if err != nil {
		return err
	}
	endpoint := c.serverEndpoint
	if endpoint == nil {
		// No upstream attached yet (e.g. during early startup); this is
		// not an error, matching the original's "endpoint is None ->
		// silently accept" behavior for requests issued before the
		// upstream connection exists.
		return nil
	}
	if first := endpoint.Enqueue(data, fds); first && c.Disp != nil {
		c.Disp.AddFlushable(endpoint)
	}
	return nil
}

// SendToClient queues an event-direction message to this object's
// owning downstream Client. Every generated try_send_* method for an
// event funnels through here.
func (c *ObjectCore) SendToClient(opcode wire.Opcode, args []byte, fds []int) error {
	if c.Client == nil {
		return NewObjectError(ErrReceiverNoClient)
	}
	if c.ClientObjID == nil {
		return NewObjectError(ErrReceiverNoClient)
	}
	data, err := wire.EncodeMessage(wire.ObjectID(*c.ClientObjID), opcode, args)
	if err != nil {
		return err
	}
	endpoint := c.Client.Endpoint
	if first := endpoint.Enqueue(data, fds); first && c.Disp != nil {
		c.Disp.AddFlushable(endpoint)
	}
	return nil
}

// MarkClientDestroyed records that the downstream client asked to
// destroy this object (a destroy request was forwarded upstream, or
// there was nothing to forward to).
func (c *ObjectCore) MarkClientDestroyed() {
	c.ClientDestroyed = true
}

// MarkServerDestroyed records that the upstream server ended this
// object's life on its own initiative (a terminal event, e.g.
// wl_callback.done, or a removal the server drove).
func (c *ObjectCore) MarkServerDestroyed() {
	c.ServerDestroyed = true
}

// ReleaseServerSide is the default HandleDeleteID behavior: release
// this object's slot on the upstream table and, if both sides have now
// released it, forward wl_display.delete_id to the owning client and
// drop the object from its table too (spec.md §4.3's deletion
// protocol, §8 property 6).
//
// sendDeleteID is supplied by the caller (protocols.WlDisplay) rather
// than invoked here directly, since emitting wl_display.delete_id is
// itself a generated send_* call that belongs to the WlDisplay object,
// not to ObjectCore.
func (c *ObjectCore) ReleaseServerSide(upstream *ObjectTable, sendDeleteID func(clientID uint32) error) error {
	if c.ServerObjID != nil {
		upstream.Release(*c.ServerObjID)
		c.ServerObjID = nil
	}
	c.ServerDestroyed = true
	if !c.ClientDestroyed {
		// Server-initiated destroy: the terminal event itself (not
		// delete_id) is what tells the client to drop the object;
		// delete_id only confirms release of the id this process
		// reuses internally. Nothing more to do until the client
		// destroys its side.
		return nil
	}
	if c.ForwardedDeleteID || c.ClientObjID == nil || c.Client == nil {
		return nil
	}
	id := *c.ClientObjID
	if err := sendDeleteID(id); err != nil {
		return err
	}
	c.Client.Endpoint.Table.Release(id)
	c.ClientObjID = nil
	c.ForwardedDeleteID = true
	return nil
}
