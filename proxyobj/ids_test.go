package proxyobj

import (
	"testing"

	"github.com/gogpu/wlproxy/wire"
)

// stubObject is a minimal Object used only to exercise ObjectTable;
// its own dispatch methods are no-ops. Real per-interface behavior is
// tested in the protocols package.
type stubObject struct {
	core ObjectCore
}

func (s *stubObject) Core() *ObjectCore                          { return &s.core }
func (s *stubObject) HandleRequest(*Client, *wire.Message) error { return nil }
func (s *stubObject) HandleEvent(*wire.Message) error             { return nil }
func (s *stubObject) HandleDeleteID(*ObjectTable, func(uint32) error) error {
	return nil
}
func (s *stubObject) UnsetHandler() {}

func TestObjectTableGenerateStartsAtServerBase(t *testing.T) {
	tbl := NewObjectTable()
	obj := &stubObject{}
	id, err := tbl.Generate(obj)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if id != ServerIDBase {
		t.Errorf("first generated id = %#x, want %#x", id, ServerIDBase)
	}
	got, ok := tbl.Lookup(id)
	if !ok || got != obj {
		t.Errorf("Lookup(%#x) = %v, %v; want obj, true", id, got, ok)
	}
}

func TestObjectTableGenerateMonotonicNoReuse(t *testing.T) {
	tbl := NewObjectTable()
	seen := make(map[uint32]bool)
	for i := 0; i < 1000; i++ {
		id, err := tbl.Generate(&stubObject{})
		if err != nil {
			t.Fatalf("Generate #%d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("id %#x generated twice", id)
		}
		seen[id] = true
		if id < ServerIDBase {
			t.Fatalf("generated id %#x below ServerIDBase", id)
		}
	}
}

func TestObjectTableGenerateSkipsHeldIDs(t *testing.T) {
	tbl := NewObjectTable()
	held, err := tbl.Generate(&stubObject{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tbl.Release(held + 1) // no-op release of an id never set
	next, err := tbl.Generate(&stubObject{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if next == held {
		t.Errorf("Generate reused live id %#x", held)
	}
}

func TestObjectTableSetRejectsServerRange(t *testing.T) {
	tbl := NewObjectTable()
	if err := tbl.Set(ServerIDBase, &stubObject{}); err == nil {
		t.Error("Set accepted an id in the server-reserved range")
	}
	if err := tbl.Set(0, &stubObject{}); err == nil {
		t.Error("Set accepted id 0")
	}
}

func TestObjectTableSetRejectsDuplicate(t *testing.T) {
	tbl := NewObjectTable()
	if err := tbl.Set(5, &stubObject{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tbl.Set(5, &stubObject{}); err == nil {
		t.Error("Set accepted a duplicate id")
	}
}

func TestObjectTableSetPeerAllocatedAcceptsServerRange(t *testing.T) {
	tbl := NewObjectTable()
	obj := &stubObject{}
	if err := tbl.SetPeerAllocated(ServerIDBase+3, obj); err != nil {
		t.Fatalf("SetPeerAllocated: %v", err)
	}
	got, ok := tbl.Lookup(ServerIDBase + 3)
	if !ok || got != obj {
		t.Errorf("Lookup(%#x) = %v, %v; want obj, true", ServerIDBase+3, got, ok)
	}
}

func TestObjectTableSetPeerAllocatedRejectsZeroAndDuplicate(t *testing.T) {
	tbl := NewObjectTable()
	if err := tbl.SetPeerAllocated(0, &stubObject{}); err == nil {
		t.Error("SetPeerAllocated accepted id 0")
	}
	if err := tbl.SetPeerAllocated(9, &stubObject{}); err != nil {
		t.Fatalf("SetPeerAllocated: %v", err)
	}
	if err := tbl.SetPeerAllocated(9, &stubObject{}); err == nil {
		t.Error("SetPeerAllocated accepted a duplicate id")
	}
}

func TestObjectTableReleaseThenLookupMisses(t *testing.T) {
	tbl := NewObjectTable()
	obj := &stubObject{}
	if err := tbl.Set(7, obj); err != nil {
		t.Fatalf("Set: %v", err)
	}
	tbl.Release(7)
	if _, ok := tbl.Lookup(7); ok {
		t.Error("Lookup found an object after Release")
	}
	if got := tbl.Len(); got != 0 {
		t.Errorf("Len() = %d after Release, want 0", got)
	}
}

func TestObjectTableReleaseIsIdempotent(t *testing.T) {
	tbl := NewObjectTable()
	tbl.Release(42) // never set; must not panic
	tbl.Release(42)
}
