package protocols

import (
	"github.com/gogpu/wlproxy/proxyobj"
	"github.com/gogpu/wlproxy/wire"
)

// Request opcodes for ext_data_control_manager_v1.
const (
	opExtDataControlManagerCreateDataSource wire.Opcode = 0
	opExtDataControlManagerGetDataDevice    wire.Opcode = 1
)

// ExtDataControlManagerV1 is the entry point clipboard managers bind
// to get a data-control device for a seat — the mechanism a privileged
// client uses to read or set the clipboard without a visible surface.
// This proxy exposes it as a synthetic global injected by
// proxystate.Mapper rather than something the upstream compositor
// necessarily advertises natively (spec.md's clipboard-manager
// scenario).
type ExtDataControlManagerV1 struct {
	core    proxyobj.ObjectCore
	handler ExtDataControlManagerV1Handler
}

// ExtDataControlManagerV1Handler observes or overrides manager
// traffic.
type ExtDataControlManagerV1Handler interface {
	HandleCreateDataSource(obj *ExtDataControlManagerV1, client *proxyobj.Client, source *ExtDataControlSourceV1)
	HandleGetDataDevice(obj *ExtDataControlManagerV1, client *proxyobj.Client, seatID uint32, device *ExtDataControlDeviceV1)
}

type defaultExtDataControlManagerV1Handler struct{}

func (defaultExtDataControlManagerV1Handler) HandleCreateDataSource(obj *ExtDataControlManagerV1, _ *proxyobj.Client, source *ExtDataControlSourceV1) {
	if !obj.core.ForwardToServer {
		return
	}
	id := uint32(0)
	if source.core.ServerObjID != nil {
		id = *source.core.ServerObjID
	}
	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	_ = obj.core.SendToServer(opExtDataControlManagerCreateDataSource, enc.Bytes(), nil)
}

func (defaultExtDataControlManagerV1Handler) HandleGetDataDevice(obj *ExtDataControlManagerV1, _ *proxyobj.Client, seatID uint32, device *ExtDataControlDeviceV1) {
	if !obj.core.ForwardToServer {
		return
	}
	id := uint32(0)
	if device.core.ServerObjID != nil {
		id = *device.core.ServerObjID
	}
	enc := wire.NewEncoder(8)
	enc.PutUint32(id)
	enc.PutObject(wire.ObjectID(seatID))
	_ = obj.core.SendToServer(opExtDataControlManagerGetDataDevice, enc.Bytes(), nil)
}

// NewExtDataControlManagerV1 constructs a data-control manager proxy
// object.
func NewExtDataControlManagerV1(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *ExtDataControlManagerV1 {
	return &ExtDataControlManagerV1{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceExtDataControlManagerV1, version)}
}

func (o *ExtDataControlManagerV1) Core() *proxyobj.ObjectCore { return &o.core }

func (o *ExtDataControlManagerV1) SetHandler(h ExtDataControlManagerV1Handler) { o.handler = h }
func (o *ExtDataControlManagerV1) UnsetHandler()                              { o.handler = nil }

// HandleRequest decodes one client->server manager request.
func (o *ExtDataControlManagerV1) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opExtDataControlManagerCreateDataSource:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		source := NewExtDataControlSourceV1(o.core.Disp, o.core.ServerEndpoint(), o.core.Version)
		if _, err := bindNewID(o.core.ServerEndpoint(), source); err != nil {
			return err
		}
		if err := registerClientChild(client, uint32(newID), source); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleCreateDataSource(o, client, source)
		} else {
			defaultExtDataControlManagerV1Handler{}.HandleCreateDataSource(o, client, source)
		}
		return nil
	case opExtDataControlManagerGetDataDevice:
		dec := wire.NewDecoder(msg.Args)
		newID, err := dec.NewID()
		if err != nil {
			return err
		}
		seatID, err := dec.Object()
		if err != nil {
			return err
		}
		seatObj, err := lookupObjectArg(client.Endpoint.Table, "seat", uint32(seatID), proxyobj.InterfaceWlSeat)
		if err != nil {
			return err
		}
		device := NewExtDataControlDeviceV1(o.core.Disp, o.core.ServerEndpoint(), o.core.Version)
		if _, err := bindNewID(o.core.ServerEndpoint(), device); err != nil {
			return err
		}
		if err := registerClientChild(client, uint32(newID), device); err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleGetDataDevice(o, client, destIDFor(seatObj, true), device)
		} else {
			defaultExtDataControlManagerV1Handler{}.HandleGetDataDevice(o, client, destIDFor(seatObj, true), device)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent: ext_data_control_manager_v1 has no events.
func (o *ExtDataControlManagerV1) HandleEvent(msg *wire.Message) error {
	return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
}

// HandleDeleteID releases this object's server-side slot.
func (o *ExtDataControlManagerV1) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for ext_data_control_device_v1.
const (
	opExtDataControlDeviceSetSelection        wire.Opcode = 0
	opExtDataControlDeviceDestroy             wire.Opcode = 1
	opExtDataControlDeviceSetPrimarySelection wire.Opcode = 2
)

// Event opcodes for ext_data_control_device_v1.
const (
	opExtDataControlDeviceDataOffer        wire.Opcode = 0
	opExtDataControlDeviceSelection        wire.Opcode = 1
	opExtDataControlDeviceFinished         wire.Opcode = 2
	opExtDataControlDevicePrimarySelection wire.Opcode = 3
)

// ExtDataControlDeviceV1 is the per-seat clipboard handle: it offers
// selection-change events and accepts set_selection/set_primary_selection
// requests naming a data source.
type ExtDataControlDeviceV1 struct {
	core    proxyobj.ObjectCore
	handler ExtDataControlDeviceV1Handler
}

// ExtDataControlDeviceV1Handler observes or overrides data-device
// traffic.
type ExtDataControlDeviceV1Handler interface {
	HandleSetSelection(obj *ExtDataControlDeviceV1, sourceID uint32)
	HandleDestroy(obj *ExtDataControlDeviceV1)
	HandleSetPrimarySelection(obj *ExtDataControlDeviceV1, sourceID uint32)
	HandleDataOffer(obj *ExtDataControlDeviceV1, offer *ExtDataControlSourceV1)
	HandleSelection(obj *ExtDataControlDeviceV1, offer *ExtDataControlSourceV1)
	HandleFinished(obj *ExtDataControlDeviceV1)
	HandlePrimarySelection(obj *ExtDataControlDeviceV1, offer *ExtDataControlSourceV1)
}

type defaultExtDataControlDeviceV1Handler struct{}

func (defaultExtDataControlDeviceV1Handler) HandleSetSelection(obj *ExtDataControlDeviceV1, sourceID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(sourceID))
	_ = obj.core.SendToServer(opExtDataControlDeviceSetSelection, enc.Bytes(), nil)
}

func (defaultExtDataControlDeviceV1Handler) HandleDestroy(obj *ExtDataControlDeviceV1) {
	_ = forwardDestroy(&obj.core, opExtDataControlDeviceDestroy)
}

func (defaultExtDataControlDeviceV1Handler) HandleSetPrimarySelection(obj *ExtDataControlDeviceV1, sourceID uint32) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(sourceID))
	_ = obj.core.SendToServer(opExtDataControlDeviceSetPrimarySelection, enc.Bytes(), nil)
}

func (defaultExtDataControlDeviceV1Handler) HandleDataOffer(obj *ExtDataControlDeviceV1, offer *ExtDataControlSourceV1) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventDataOffer(offer)
}

func (defaultExtDataControlDeviceV1Handler) HandleSelection(obj *ExtDataControlDeviceV1, offer *ExtDataControlSourceV1) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventSelection(offer)
}

func (defaultExtDataControlDeviceV1Handler) HandleFinished(obj *ExtDataControlDeviceV1) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventFinished()
}

func (defaultExtDataControlDeviceV1Handler) HandlePrimarySelection(obj *ExtDataControlDeviceV1, offer *ExtDataControlSourceV1) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventPrimarySelection(offer)
}

// NewExtDataControlDeviceV1 constructs a data-control device proxy
// object.
func NewExtDataControlDeviceV1(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *ExtDataControlDeviceV1 {
	return &ExtDataControlDeviceV1{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceExtDataControlDeviceV1, version)}
}

func (o *ExtDataControlDeviceV1) Core() *proxyobj.ObjectCore { return &o.core }

func (o *ExtDataControlDeviceV1) SetHandler(h ExtDataControlDeviceV1Handler) { o.handler = h }
func (o *ExtDataControlDeviceV1) UnsetHandler()                             { o.handler = nil }

// TryEventDataOffer announces a new incoming data source the
// compositor offers, via the well-known new_id pattern (the id is
// minted server-side and must be registered in the client table before
// the event referencing it is sent).
func (o *ExtDataControlDeviceV1) TryEventDataOffer(offer *ExtDataControlSourceV1) error {
	id, err := o.core.Client.Endpoint.Table.Generate(offer)
	if err != nil {
		return proxyobj.NewObjectError(proxyobj.ErrGenerateServerID)
	}
	offer.core.ClientObjID = &id
	offer.core.Client = o.core.Client
	enc := wire.NewEncoder(4)
	enc.PutUint32(id)
	return o.core.SendToClient(opExtDataControlDeviceDataOffer, enc.Bytes(), nil)
}

func (o *ExtDataControlDeviceV1) EventDataOffer(offer *ExtDataControlSourceV1) {
	if err := o.TryEventDataOffer(offer); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("ext_data_control_device_v1.data_offer: %v", err)
	}
}

func (o *ExtDataControlDeviceV1) TryEventSelection(offer *ExtDataControlSourceV1) error {
	var id uint32
	if offer != nil {
		id = destIDFor(offer, false)
	}
	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(id))
	return o.core.SendToClient(opExtDataControlDeviceSelection, enc.Bytes(), nil)
}

func (o *ExtDataControlDeviceV1) EventSelection(offer *ExtDataControlSourceV1) {
	if err := o.TryEventSelection(offer); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("ext_data_control_device_v1.selection: %v", err)
	}
}

func (o *ExtDataControlDeviceV1) TryEventFinished() error {
	return o.core.SendToClient(opExtDataControlDeviceFinished, nil, nil)
}

func (o *ExtDataControlDeviceV1) EventFinished() {
	if err := o.TryEventFinished(); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("ext_data_control_device_v1.finished: %v", err)
	}
}

func (o *ExtDataControlDeviceV1) TryEventPrimarySelection(offer *ExtDataControlSourceV1) error {
	var id uint32
	if offer != nil {
		id = destIDFor(offer, false)
	}
	enc := wire.NewEncoder(4)
	enc.PutObject(wire.ObjectID(id))
	return o.core.SendToClient(opExtDataControlDevicePrimarySelection, enc.Bytes(), nil)
}

func (o *ExtDataControlDeviceV1) EventPrimarySelection(offer *ExtDataControlSourceV1) {
	if err := o.TryEventPrimarySelection(offer); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("ext_data_control_device_v1.primary_selection: %v", err)
	}
}

// HandleRequest decodes one client->server data-device request.
func (o *ExtDataControlDeviceV1) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opExtDataControlDeviceSetSelection:
		dec := wire.NewDecoder(msg.Args)
		sourceID, err := dec.Object()
		if err != nil {
			return err
		}
		var destID uint32
		if sourceID != 0 {
			obj, err := lookupObjectArg(client.Endpoint.Table, "source", uint32(sourceID), proxyobj.InterfaceExtDataControlSourceV1)
			if err != nil {
				return err
			}
			destID = destIDFor(obj, true)
		}
		if o.handler != nil {
			o.handler.HandleSetSelection(o, destID)
		} else {
			defaultExtDataControlDeviceV1Handler{}.HandleSetSelection(o, destID)
		}
		return nil
	case opExtDataControlDeviceSetPrimarySelection:
		dec := wire.NewDecoder(msg.Args)
		sourceID, err := dec.Object()
		if err != nil {
			return err
		}
		var destID uint32
		if sourceID != 0 {
			obj, err := lookupObjectArg(client.Endpoint.Table, "source", uint32(sourceID), proxyobj.InterfaceExtDataControlSourceV1)
			if err != nil {
				return err
			}
			destID = destIDFor(obj, true)
		}
		if o.handler != nil {
			o.handler.HandleSetPrimarySelection(o, destID)
		} else {
			defaultExtDataControlDeviceV1Handler{}.HandleSetPrimarySelection(o, destID)
		}
		return nil
	case opExtDataControlDeviceDestroy:
		if o.handler != nil {
			o.handler.HandleDestroy(o)
		} else {
			defaultExtDataControlDeviceV1Handler{}.HandleDestroy(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client data-device event.
func (o *ExtDataControlDeviceV1) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opExtDataControlDeviceDataOffer:
		// The real compositor, not this proxy, mints this id — it is
		// peer-chosen on the upstream leg even though data_offer is an
		// event rather than a request.
		dec := wire.NewDecoder(msg.Args)
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		offer := NewExtDataControlSourceV1(o.core.Disp, o.core.ServerEndpoint(), o.core.Version)
		offer.core.ServerObjID = uint32Ptr(uint32(id))
		if err := o.core.ServerEndpoint().Table.SetPeerAllocated(uint32(id), offer); err != nil {
			return proxyobj.NewObjectError(proxyobj.ErrSetClientID)
		}
		if o.handler != nil {
			o.handler.HandleDataOffer(o, offer)
		} else {
			defaultExtDataControlDeviceV1Handler{}.HandleDataOffer(o, offer)
		}
		return nil
	case opExtDataControlDeviceSelection:
		dec := wire.NewDecoder(msg.Args)
		offerID, err := dec.Object()
		if err != nil {
			return err
		}
		var offer *ExtDataControlSourceV1
		if offerID != 0 {
			obj, err := lookupObjectArg(o.core.ServerEndpoint().Table, "id", uint32(offerID), proxyobj.InterfaceExtDataControlSourceV1)
			if err != nil {
				return err
			}
			offer = obj.(*ExtDataControlSourceV1)
		}
		if o.handler != nil {
			o.handler.HandleSelection(o, offer)
		} else {
			defaultExtDataControlDeviceV1Handler{}.HandleSelection(o, offer)
		}
		return nil
	case opExtDataControlDeviceFinished:
		if o.handler != nil {
			o.handler.HandleFinished(o)
		} else {
			defaultExtDataControlDeviceV1Handler{}.HandleFinished(o)
		}
		return nil
	case opExtDataControlDevicePrimarySelection:
		dec := wire.NewDecoder(msg.Args)
		offerID, err := dec.Object()
		if err != nil {
			return err
		}
		var offer *ExtDataControlSourceV1
		if offerID != 0 {
			obj, err := lookupObjectArg(o.core.ServerEndpoint().Table, "id", uint32(offerID), proxyobj.InterfaceExtDataControlSourceV1)
			if err != nil {
				return err
			}
			offer = obj.(*ExtDataControlSourceV1)
		}
		if o.handler != nil {
			o.handler.HandlePrimarySelection(o, offer)
		} else {
			defaultExtDataControlDeviceV1Handler{}.HandlePrimarySelection(o, offer)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *ExtDataControlDeviceV1) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

// Request opcodes for ext_data_control_source_v1.
const (
	opExtDataControlSourceOffer wire.Opcode = 0
)

// Event opcodes for ext_data_control_source_v1.
const (
	opExtDataControlSourceSend      wire.Opcode = 0
	opExtDataControlSourceCancelled wire.Opcode = 1
)

// ExtDataControlSourceV1 represents one clipboard content offer,
// either client-authored (create_data_source) or compositor-authored
// (relayed via data_offer and then tracked here as a server-minted
// incarnation).
type ExtDataControlSourceV1 struct {
	core    proxyobj.ObjectCore
	handler ExtDataControlSourceV1Handler
}

// ExtDataControlSourceV1Handler observes or overrides data-source
// traffic.
type ExtDataControlSourceV1Handler interface {
	HandleOffer(obj *ExtDataControlSourceV1, mimeType string)
	HandleSend(obj *ExtDataControlSourceV1, mimeType string, fd int)
	HandleCancelled(obj *ExtDataControlSourceV1)
}

type defaultExtDataControlSourceV1Handler struct{}

func (defaultExtDataControlSourceV1Handler) HandleOffer(obj *ExtDataControlSourceV1, mimeType string) {
	if !obj.core.ForwardToServer {
		return
	}
	enc := wire.NewEncoder(len(mimeType) + 8)
	enc.PutString(mimeType)
	_ = obj.core.SendToServer(opExtDataControlSourceOffer, enc.Bytes(), nil)
}

func (defaultExtDataControlSourceV1Handler) HandleSend(obj *ExtDataControlSourceV1, mimeType string, fd int) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventSend(mimeType, fd)
}

func (defaultExtDataControlSourceV1Handler) HandleCancelled(obj *ExtDataControlSourceV1) {
	if !obj.core.ForwardToClient {
		return
	}
	obj.EventCancelled()
}

// NewExtDataControlSourceV1 constructs a data-source proxy object.
func NewExtDataControlSourceV1(disp proxyobj.Dispatcher, upstream *proxyobj.Endpoint, version uint32) *ExtDataControlSourceV1 {
	return &ExtDataControlSourceV1{core: proxyobj.NewObjectCore(disp, upstream, proxyobj.InterfaceExtDataControlSourceV1, version)}
}

func (o *ExtDataControlSourceV1) Core() *proxyobj.ObjectCore { return &o.core }

func (o *ExtDataControlSourceV1) SetHandler(h ExtDataControlSourceV1Handler) { o.handler = h }
func (o *ExtDataControlSourceV1) UnsetHandler()                             { o.handler = nil }

// TryEventSend forwards the compositor's request for the data-source
// holder to write mimeType's content into fd. The fd travels
// out-of-band via SCM_RIGHTS, same as wl_shm.create_pool's.
func (o *ExtDataControlSourceV1) TryEventSend(mimeType string, fd int) error {
	enc := wire.NewEncoder(len(mimeType) + 8)
	enc.PutString(mimeType)
	return o.core.SendToClient(opExtDataControlSourceSend, enc.Bytes(), []int{fd})
}

func (o *ExtDataControlSourceV1) EventSend(mimeType string, fd int) {
	if err := o.TryEventSend(mimeType, fd); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("ext_data_control_source_v1.send: %v", err)
	}
}

func (o *ExtDataControlSourceV1) TryEventCancelled() error {
	return o.core.SendToClient(opExtDataControlSourceCancelled, nil, nil)
}

func (o *ExtDataControlSourceV1) EventCancelled() {
	if err := o.TryEventCancelled(); err != nil && o.core.Disp != nil {
		o.core.Disp.Warnf("ext_data_control_source_v1.cancelled: %v", err)
	}
}

// HandleRequest decodes one client->server data-source request.
func (o *ExtDataControlSourceV1) HandleRequest(client *proxyobj.Client, msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opExtDataControlSourceOffer:
		dec := wire.NewDecoder(msg.Args)
		mimeType, err := dec.String(false)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleOffer(o, mimeType)
		} else {
			defaultExtDataControlSourceV1Handler{}.HandleOffer(o, mimeType)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleEvent decodes one server->client data-source event.
func (o *ExtDataControlSourceV1) HandleEvent(msg *wire.Message) error {
	if err := o.core.Enter(); err != nil {
		return err
	}
	defer o.core.Exit()

	switch msg.Opcode {
	case opExtDataControlSourceSend:
		dec := wire.NewDecoder(msg.Args)
		mimeType, err := dec.String(false)
		if err != nil {
			return err
		}
		fds, err := o.core.ServerEndpoint().TakeFds(1)
		if err != nil {
			return err
		}
		if o.handler != nil {
			o.handler.HandleSend(o, mimeType, fds[0])
		} else {
			defaultExtDataControlSourceV1Handler{}.HandleSend(o, mimeType, fds[0])
		}
		return nil
	case opExtDataControlSourceCancelled:
		if o.handler != nil {
			o.handler.HandleCancelled(o)
		} else {
			defaultExtDataControlSourceV1Handler{}.HandleCancelled(o)
		}
		return nil
	default:
		return proxyobj.NewObjectError(proxyobj.ErrUnknownMessageID)
	}
}

// HandleDeleteID releases this object's server-side slot.
func (o *ExtDataControlSourceV1) HandleDeleteID(upstream *proxyobj.ObjectTable, sendDeleteID func(uint32) error) error {
	return o.core.ReleaseServerSide(upstream, sendDeleteID)
}

func uint32Ptr(v uint32) *uint32 { return &v }
