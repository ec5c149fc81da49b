package gcruntime

import (
	"testing"

	"github.com/haldane-systems/ephemeralgc/gcheap"
)

// TestCollectEphemeralAllParallelFixesCrossHeapReference builds a
// chain that starts rooted on heap 0 and crosses, via the write
// barrier, into an object allocated on heap 1, then runs the parallel
// minor GC and checks the cross-heap pointer still resolves after
// both heaps have compacted and promoted independently.
func TestCollectEphemeralAllParallelFixesCrossHeapReference(t *testing.T) {
	rt, err := NewRuntime(smallConfig(2))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	td := registerNodeType(t, rt)

	m0 := rt.AttachMutator() // heap 0
	m1 := rt.AttachMutator() // heap 1

	head, err := rt.Alloc(m0, td, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc head: %v", err)
	}
	tail, err := rt.Alloc(m1, td, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc tail: %v", err)
	}
	if err := rt.SetRef(head, "Next", tail); err != nil {
		t.Fatalf("SetRef: %v", err)
	}
	if err := rt.SetRoot(m0, "head", head); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}

	if err := rt.CollectEphemeralAllParallel(); err != nil {
		t.Fatalf("CollectEphemeralAllParallel: %v", err)
	}

	newHead, ok := m0.Heap(rt).Root("head")
	if !ok {
		t.Fatalf("expected root 'head' to survive")
	}
	seg, off, newTd, err := rt.resolveGlobal(newHead)
	if err != nil {
		t.Fatalf("resolveGlobal(newHead): %v", err)
	}
	_ = newTd
	fieldOff, err := gcheap.FieldRefOffset(td, "Next")
	if err != nil {
		t.Fatalf("FieldRefOffset: %v", err)
	}
	newTail := seg.seg.Region().ReadAddr(off + gcheap.HeaderSize + fieldOff)
	if _, _, _, err := rt.resolveGlobal(newTail); err != nil {
		t.Errorf("expected head.Next to still resolve after the parallel GC, got error: %v", err)
	}
}

func TestCollectEphemeralAllSequentialPerHeap(t *testing.T) {
	rt, err := NewRuntime(smallConfig(1))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	td := registerNodeType(t, rt)
	m := rt.AttachMutator()

	head, err := rt.Alloc(m, td, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := rt.SetRoot(m, "head", head); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}

	if err := rt.CollectEphemeralAll(); err != nil {
		t.Fatalf("CollectEphemeralAll: %v", err)
	}
	newHead, ok := m.Heap(rt).Root("head")
	if !ok {
		t.Fatalf("expected root 'head' to survive")
	}
	if _, _, _, err := rt.resolveGlobal(newHead); err != nil {
		t.Errorf("expected the promoted root to resolve, got error: %v", err)
	}
}

func TestMarkEphemeralAllCountsReachableObjects(t *testing.T) {
	rt, err := NewRuntime(smallConfig(1))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	td := registerNodeType(t, rt)
	m := rt.AttachMutator()

	a, err := rt.Alloc(m, td, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc a: %v", err)
	}
	b, err := rt.Alloc(m, td, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc b: %v", err)
	}
	if err := rt.SetRef(a, "Next", b); err != nil {
		t.Fatalf("SetRef: %v", err)
	}
	if err := rt.SetRoot(m, "a", a); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}

	n, err := rt.MarkEphemeralAll(false)
	if err != nil {
		t.Fatalf("MarkEphemeralAll: %v", err)
	}
	if n != 2 {
		t.Errorf("MarkEphemeralAll = %d, want 2 (a and b)", n)
	}
	if h := m.Heap(rt); h.Gen0().AllocatedBytes() == 0 {
		t.Errorf("MarkEphemeralAll should not have touched Gen0 occupancy")
	}
}
