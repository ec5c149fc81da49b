package gcheap

import (
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// EnsureTLH makes sure t has at least needed bytes of slab remaining,
// reserving a fresh slab from Gen0 if not. If Gen0 has no room,
// h.CollectLocal runs once (typically a local minor GC) and the
// reservation is retried exactly once before failing with
// ErrOutOfMemory.
func (h *Heap) EnsureTLH(t *TLH, needed int64) error {
	needed = alignUp(needed, typelayout.PtrSize)
	if t.Bound() && t.slabCursor+needed <= t.slabLimit {
		return nil
	}

	slabSize := h.cfg.TlhSlabBytes
	if aligned := alignUp(needed, typelayout.PtrSize); aligned > slabSize {
		slabSize = aligned
	}

	off, ok := h.gen0.TryAllocate(slabSize)
	if !ok {
		if h.CollectLocal != nil {
			if err := h.CollectLocal(); err != nil {
				return err
			}
			off, ok = h.gen0.TryAllocate(slabSize)
		}
		if !ok {
			return outOfMemoryf("gen0 exhausted reserving a %d-byte TLH slab", slabSize)
		}
	}

	t.segment = h.gen0
	t.slabStart = off
	t.slabCursor = off
	t.slabLimit = off + slabSize
	return nil
}

// AllocateGen0 bump-allocates n bytes from t's slab (reserving a new
// one via EnsureTLH if needed), writes the object header, and returns
// the new object's absolute address.
func (h *Heap) AllocateGen0(t *TLH, n int64, typeId uint64) (rawmem.Address, error) {
	n = alignUp(n, typelayout.PtrSize)
	if err := h.EnsureTLH(t, n); err != nil {
		return 0, err
	}
	off := t.slabCursor
	t.slabCursor += n
	WriteHeader(h.gen0.region, off, typeId)
	return h.gen0.region.OffsetToAbs(off), nil
}

// Alloc allocates an object of type td: only Class kinds allocate on
// the heap. Objects at or above the large-object threshold (or
// forced==Loh) go to the Loh; forced Gen1/Gen2 bump-allocate directly
// there; otherwise the object is allocated via mutatorID's TLH in
// Gen0.
func (h *Heap) Alloc(mutatorID uint64, td *typelayout.TypeDesc, forced Generation) (rawmem.Address, error) {
	if td == nil {
		return 0, badArgumentf("alloc: nil type")
	}
	if td.Class != typelayout.Class {
		return 0, badArgumentf("alloc: only Class kinds allocate on the heap, got %v", td.Class)
	}
	if !td.IsLaidOut() {
		return 0, badArgumentf("alloc: type %q has not been registered/laid out", td.Name)
	}

	total := ObjectTotalSize(td)

	if total >= h.cfg.LargeObjectThreshold || forced == Loh {
		off, ok := h.loh.TryAllocate(total)
		if !ok {
			return 0, outOfMemoryf("loh exhausted allocating %d bytes", total)
		}
		WriteHeader(h.loh.region, off, td.TypeId)
		h.loh.bricks.OnAllocation(off)
		return h.loh.region.OffsetToAbs(off), nil
	}

	switch forced {
	case Gen1:
		off, ok := h.gen1.TryAllocate(total)
		if !ok {
			return 0, outOfMemoryf("gen1 exhausted allocating %d bytes", total)
		}
		WriteHeader(h.gen1.region, off, td.TypeId)
		h.gen1.bricks.OnAllocation(off)
		return h.gen1.region.OffsetToAbs(off), nil
	case Gen2:
		off, ok := h.gen2.TryAllocate(total)
		if !ok {
			return 0, outOfMemoryf("gen2 exhausted allocating %d bytes", total)
		}
		WriteHeader(h.gen2.region, off, td.TypeId)
		h.gen2.bricks.OnAllocation(off)
		return h.gen2.region.OffsetToAbs(off), nil
	default:
		tlh := h.TLHFor(mutatorID)
		return h.AllocateGen0(tlh, total, td.TypeId)
	}
}
