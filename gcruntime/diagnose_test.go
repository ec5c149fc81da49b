package gcruntime

import (
	"testing"

	"github.com/haldane-systems/ephemeralgc/gcheap"
)

// TestMarkEphemeralAllMarkAllOldCardsFindsUndirtiedEdge builds an
// old->young edge the ordinary way (through the write barrier, so its
// card is dirtied), then clears that card directly to simulate a
// write-barrier bug. A plain MarkEphemeralAll(false) trusts the
// (now-wrong) remembered set and misses the young object; passing true
// forces a full old-segment scan that finds it anyway.
func TestMarkEphemeralAllMarkAllOldCardsFindsUndirtiedEdge(t *testing.T) {
	rt, err := NewRuntime(smallConfig(1))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	td := registerNodeType(t, rt)
	m := rt.AttachMutator()

	oldObj, err := rt.Alloc(m, td, gcheap.Gen1)
	if err != nil {
		t.Fatalf("Alloc old: %v", err)
	}
	youngObj, err := rt.Alloc(m, td, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc young: %v", err)
	}
	if err := rt.SetRef(oldObj, "Next", youngObj); err != nil {
		t.Fatalf("SetRef: %v", err)
	}

	h := m.Heap(rt)
	h.Gen1().Cards().ClearAll()
	if h.Gen1().Cards().DirtyCount() != 0 {
		t.Fatalf("expected the simulated write-barrier bug to leave no dirty cards")
	}

	n, err := rt.MarkEphemeralAll(false)
	if err != nil {
		t.Fatalf("MarkEphemeralAll(false): %v", err)
	}
	if n != 0 {
		t.Fatalf("MarkEphemeralAll(false) = %d, want 0 (no roots, no dirty cards)", n)
	}

	n, err = rt.MarkEphemeralAll(true)
	if err != nil {
		t.Fatalf("MarkEphemeralAll(true): %v", err)
	}
	if n != 1 {
		t.Errorf("MarkEphemeralAll(true) = %d, want 1 (young object found via full old-segment scan)", n)
	}
}
