package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for wl_shm.
const (
	opWlShmCreatePool wire.Opcode = 0
	opWlShmRelease     wire.Opcode = 1 // since version 2
)

// Event opcodes for wl_shm.
const (
	opWlShmFormat wire.Opcode = 0
)

// WlShm is the shared-memory buffer factory. create_pool is the one
// request in this whole proxy that carries a file descriptor argument
// client->server, so it is the canonical example of the fd-accounting
// rule in spec.md §4.2: the fd must be consumed from the client
// Endpoint's pending queue in argument order, before any other
// argument that follows it, and re-queued for send in the same
// position on the way to the upstream Endpoint.
type WlShm struct {
	core    proxyobj.ObjectCore
	handler WlShmHandler
}

// WlShmHandler observes or overrides wl_shm traffic.
type WlShmHandler interface {
	HandleCreatePool(obj *WlShm, client *proxyobj.Client, pool *WlShmPool, fd int, size int32)
	HandleRelease(obj *WlShm)
	HandleFormat(obj *WlShm, format uint32)
}

type defaultWlShmHandler struct{}

func (defaultWlShmHandler) HandleCreatePool(obj *WlShm, _ *proxyobj.Client, pool *WlShmPool, fd int, size int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestCreatePool(pool, fd, size)
}

func (defaultWlShmHandler) HandleRelease(obj *WlShm) {
	_ = forwardDestroy(&obj.core, opWlShmRelease)
}

func (defaultWlShmHandler) HandleFormat(obj *WlShm, format uint32) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventFormat(format)
}

// NewWlShm constructs a wl_shm proxy object at the given negotiated
// version.
func NewWlShm(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *WlShm {
	return &WlShm{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlShm, version)}
}

func (o *WlShm) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlShm) SetHandler(h WlShmHandler) { o.handler = h }
func (o *WlShm) UnsetHandler()             { o.handler = nil }

// TryRequestCreatePool mints a server-side id for pool and forwards
// create_pool, carrying fd out-of-band via SCM_RIGHTS.
func (o *WlShm) TryRequestCreatePool(pool *WlShmPool, fd int, size int32) error {
	id, err := bindNewID(o.core.ServerEndpoint(), pool)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(8)
	enc.PutUint32(id)
	enc.PutInt32(size)
	return o.core.SendToServer(opWlShmCreatePool, enc.Bytes(), []int{fd})
}

func (o *WlShm) RequestCreatePool(pool *WlShmPool, fd int, size int32) {
	if err := o.TryRequestCreatePool(pool, fd, size); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_shm.create_pool: %v", err)
	}
}

func (o *WlShm) TryEventFormat(format uint32) error {
	enc := wire.NewEncoder(4)
	enc.PutUint32(format)
	return o.core.SendToClient(opWlShmFormat, enc.Bytes(), nil)
}

func (o *WlShm) EventFormat(format uint32) {
	if err := o.TryEventFormat(format); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_shm.format: %v", err)
	}
}

// HandleRequest decodes one client->server wl_shm request.
func (o *WlShm) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlShmCreatePool:
		fds, err := client.Endpoint.TakeFds(1)
		if err != nil {
			return err
		}
		dec := wire.NewDecoderFds(msg.Args, fds)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		fd, err := dec.Fd()
		if err != nil {
			return err
		}
		size, err := dec.Int32()
		if err != nil {
			return err
		}
		pool := NewWlShmPool(o.core.Disp, o.core.ServerEndpoint(), o.core.Version)
		if err := registerClientChild(client, uint32(newID), pool); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleCreatePool(o, client, pool, fd, size)
		} else {
			defaultWlShmHandler{}.HandleCreatePool(o, client, pool, fd, size)
		}
		return nil
	case opWlShmRelease:
		if o.handler != nil {
			o.handler.HandleRelease(o)
		} else {
			defaultWlShmHandler{}.HandleRelease(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client wl_shm event.
func (o *WlShm) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlShmFormat:
		dec := wire.NewDecoder(msg.Args)
		format, err := dec.Uint32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleFormat(o, format)
		} else {
			defaultWlShmHandler{}.HandleFormat(o, format)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *WlShm) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for wl_shm_pool.
const (
	opWlShmPoolCreateBuffer wire.Opcode = 0
	opWlShmPoolDestroy      wire.Opcode = 1
	opWlShmPoolResize       wire.Opcode = 2
)

// WlShmPool names a region of the fd wl_shm.create_pool handed over;
// wl_buffer objects are created by slicing rectangles out of it.
type WlShmPool struct {
	core    proxyobj.ObjectCore
	handler WlShmPoolHandler
}

// WlShmPoolHandler observes or overrides wl_shm_pool traffic.
type WlShmPoolHandler interface {
	HandleCreateBuffer(obj *WlShmPool, client *proxyobj.Client, buffer *WlBuffer, offset, width, height, stride int32, format uint32)
	HandleDestroy(obj *WlShmPool)
	HandleResize(obj *WlShmPool, size int32)
}

type defaultWlShmPoolHandler struct{}

func (defaultWlShmPoolHandler) HandleCreateBuffer(obj *WlShmPool, _ *proxyobj.Client, buffer *WlBuffer, offset, width, height, stride int32, format uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestCreateBuffer(buffer, offset, width, height, stride, format)
}

func (defaultWlShmPoolHandler) HandleDestroy(obj *WlShmPool) {
	_ = forwardDestroy(&obj.core, opWlShmPoolDestroy)
}

func (defaultWlShmPoolHandler) HandleResize(obj *WlShmPool, size int32) {
	if !obj.core.ForwardToServer {
		return
	}
	obj.RequestResize(size)
}

// NewWlShmPool constructs a wl_shm_pool proxy object.
func NewWlShmPool(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *WlShmPool {
	return &WlShmPool{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlShmPool, version)}
}

func (o *WlShmPool) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlShmPool) SetHandler(h WlShmPoolHandler) { o.handler = h }
func (o *WlShmPool) UnsetHandler()                 { o.handler = nil }

func (o *WlShmPool) TryRequestCreateBuffer(buffer *WlBuffer, offset, width, height, stride int32, format uint32) error {
	id, err := bindNewID(o.core.ServerEndpoint(), buffer)
	if err != nil {
		return err
	}
	enc := wire.NewEncoder(24)
	enc.PutUint32(id)
	enc.PutInt32(offset)
	enc.PutInt32(width)
	enc.PutInt32(height)
	enc.PutInt32(stride)
	enc.PutUint32(format)
	return o.core.SendToServer(opWlShmPoolCreateBuffer, enc.Bytes(), nil)
}

func (o *WlShmPool) RequestCreateBuffer(buffer *WlBuffer, offset, width, height, stride int32, format uint32) {
	if err := o.TryRequestCreateBuffer(buffer, offset, width, height, stride, format); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_shm_pool.create_buffer: %v", err)
	}
}

func (o *WlShmPool) TryRequestResize(size int32) error {
	enc := wire.NewEncoder(4)
	enc.PutInt32(size)
	return o.core.SendToServer(opWlShmPoolResize, enc.Bytes(), nil)
}

func (o *WlShmPool) RequestResize(size int32) {
	if err := o.TryRequestResize(size); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_shm_pool.resize: %v", err)
	}
}

// HandleRequest decodes one client->server wl_shm_pool request.
func (o *WlShmPool) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlShmPoolCreateBuffer:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		offset, err := dec.Int32()
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
		stride, err := dec.Int32()
		if err != nil {
			return err
		}
		format, err := dec.Uint32()
		if err != nil {
			return err
		}
		buffer := NewWlBuffer(o.core.Disp, o.core.ServerEndpoint())
		if err := registerClientChild(client, uint32(newID), buffer); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleCreateBuffer(o, client, buffer, offset, width, height, stride, format)
		} else {
			defaultWlShmPoolHandler{}.HandleCreateBuffer(o, client, buffer, offset, width, height, stride, format)
		}
		return nil
	case opWlShmPoolDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultWlShmPoolHandler{}.HandleDestroy(o)
		}
		return nil
	case opWlShmPoolResize:
		dec := wire.NewDecoder(msg.Args)
		size, err := dec.Int32()
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleResize(o, size)
		} else {
			defaultWlShmPoolHandler{}.HandleResize(o, size)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent: wl_shm_pool has no events.
func (o *WlShmPool) HandleEvent(msg *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}

// HandleDeleteID releases this object's server-side slot.
func (o *WlShmPool) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for wl_buffer.
const (
	opWlBufferDestroy wire.Opcode = 0
)

// Event opcodes for wl_buffer.
const (
	opWlBufferRelease wire.Opcode = 0
)

// WlBuffer is a committed pixel source. Its sole event, release, tells
// the client the compositor is done reading it and it may be reused or
// destroyed — this proxy forwards it verbatim, same as every other
// event.
type WlBuffer struct {
	core    proxyobj.ObjectCore
	handler WlBufferHandler
}

// WlBufferHandler observes or overrides wl_buffer traffic.
type WlBufferHandler interface {
	HandleDestroy(obj *WlBuffer)
	HandleRelease(obj *WlBuffer)
}

type defaultWlBufferHandler struct{}

func (defaultWlBufferHandler) HandleDestroy(obj *WlBuffer) {
	_ = forwardDestroy(&obj.core, opWlBufferDestroy)
}

func (defaultWlBufferHandler) HandleRelease(obj *WlBuffer) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventRelease()
}

// NewWlBuffer constructs a wl_buffer proxy object.
func NewWlBuffer(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint) *WlBuffer {
	return &WlBuffer{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceWlBuffer, 1)}
}

func (o *WlBuffer) Core() *proxyobj.ObjectCore { return &o.core }

func (o *WlBuffer) SetHandler(h WlBufferHandler) { o.handler = h }
func (o *WlBuffer) UnsetHandler()                { o.handler = nil }

func (o *WlBuffer) TryEventRelease() error {
	return o.core.SendToClient(opWlBufferRelease, nil, nil)
}

func (o *WlBuffer) EventRelease() {
	if err := o.TryEventRelease(); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("wl_buffer.release: %v", err)
	}
}

// HandleRequest decodes one client->server wl_buffer request.
func (o *WlBuffer) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlBufferDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultWlBufferHandler{}.HandleDestroy(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client wl_buffer event.
func (o *WlBuffer) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opWlBufferRelease:
		if o.handler != nil {
			o.handler.HandleRelease(o)
		} else {
			defaultWlBufferHandler{}.HandleRelease(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *WlBuffer) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}
