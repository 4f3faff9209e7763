package proxyobj

import "fmt"

// ServerIDBase is the first id this proxy ever generates for itself on
// an Endpoint's table (spec.md §3's "[0xFF000000, 0xFFFFFFFF] for ids
// allocated by us when acting as server" — the same range is reused
// for ids the proxy allocates toward the upstream server when
// forwarding a client-originated new_id, since in both cases it is
// this process, not its peer, minting the id).
const ServerIDBase uint32 = 0xFF000000

// ObjectTable is the per-Endpoint table mapping a wire object id to its
// Object, plus the monotonic allocator this process uses whenever it —
// rather than its peer — must mint a fresh id on that Endpoint.
type ObjectTable struct {
	objects map[uint32]Object
	next    uint32
}

// NewObjectTable creates an empty id table.
func NewObjectTable() *ObjectTable {
	return &ObjectTable{
		objects: make(map[uint32]Object),
		next:    ServerIDBase,
	}
}

// Lookup returns the Object bound to id, if any.
func (t *ObjectTable) Lookup(id uint32) (Object, bool) {
	obj, ok := t.objects[id]
	return obj, ok
}

// Generate allocates a fresh id not currently in use, in this table
// owner's reserved range, and binds it to obj. It never reuses an id
// still held by either side (spec.md §3/§8 property 2).
func (t *ObjectTable) Generate(obj Object) (uint32, error) {
	for attempts := uint32(0); attempts < 1<<20; attempts++ {
		id := t.next
		if t.next == 0 {
			// wrapped past 0xFFFFFFFF; restart at the reserved base.
			t.next = ServerIDBase
			id = t.next
		}
		t.next++
		if _, exists := t.objects[id]; exists {
			continue
		}
		t.objects[id] = obj
		return id, nil
	}
	return 0, fmt.Errorf("proxyobj: id space exhausted")
}

// Set binds a client-chosen id — one a downstream client picked for a
// new_id argument of its own request — to obj. The id must fall in
// the client's partition ([1, 0xFEFFFFFF]) and must not already be
// bound; both violations are the caller's fault (a misbehaving
// client), not ours.
func (t *ObjectTable) Set(id uint32, obj Object) error {
	if id == 0 || id >= ServerIDBase {
		return fmt.Errorf("proxyobj: id %#x outside client-allocatable range", id)
	}
	if _, exists := t.objects[id]; exists {
		return fmt.Errorf("proxyobj: id %#x already in use", id)
	}
	t.objects[id] = obj
	return nil
}

// SetPeerAllocated binds an id minted by the other real endpoint on
// this connection via an event's new_id argument — e.g. the upstream
// compositor's own id for a freshly created ext_data_control_source_v1
// in a data_offer event. Unlike a request's new_id, which this proxy
// must confirm falls in the client's partition, a standards-following
// compositor mints event-side ids from its own server range
// ([0xFF000000, 0xFFFFFFFF], the same range ServerIDBase reserves for
// ids this process mints on its own tables) — rejecting that id as
// "outside the peer-allocatable range" would be rejecting the common
// case, not a rare one. Both directions still share one id space per
// table, so a genuine collision with an id this process already holds
// still surfaces as the same "already in use" error Set returns.
func (t *ObjectTable) SetPeerAllocated(id uint32, obj Object) error {
	if id == 0 {
		return fmt.Errorf("proxyobj: id 0 is not a valid object id")
	}
	if _, exists := t.objects[id]; exists {
		return fmt.Errorf("proxyobj: id %#x already in use", id)
	}
	t.objects[id] = obj
	return nil
}

// Release removes id from the table. It is a no-op if the id is not
// present, since both sides of the two-phase destruction protocol may
// race to release the same id.
func (t *ObjectTable) Release(id uint32) {
	delete(t.objects, id)
}

// Len reports how many live ids this table currently holds, used by
// tests asserting on table state after a destruction sequence.
func (t *ObjectTable) Len() int {
	return len(t.objects)
}
