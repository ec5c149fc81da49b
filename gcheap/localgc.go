package gcheap

import (
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// localSeedAndMark performs the seeding and traversal steps of a minor
// GC restricted to this heap's own four segments and its own attached
// arenas: no cross-heap roots, no cross-heap old-segment dirty-card
// scanning, no work stealing.
func (h *Heap) localSeedAndMark() (map[rawmem.Address]bool, error) {
	visited := make(map[rawmem.Address]bool)
	var queue []rawmem.Address

	markIfFirst := func(a rawmem.Address) {
		if a == 0 || visited[a] {
			return
		}
		visited[a] = true
		queue = append(queue, a)
	}

	// Roots.
	for _, ref := range h.roots {
		if ref != 0 && h.isLocalEphemeral(ref) {
			markIfFirst(ref)
		}
	}
	// Region external roots.
	for _, arena := range h.arenas {
		for _, ref := range arena.ExternalRoots() {
			if ref != 0 && h.isLocalEphemeral(ref) {
				markIfFirst(ref)
			}
		}
	}
	// Old segments' dirty-card scans.
	for _, seg := range []*Segment{h.gen1, h.gen2, h.loh} {
		for _, rng := range seg.cards.DirtyRanges() {
			cur := seg.bricks.SnapToObjectStart(rng.Start)
			for cur < rng.End && cur < seg.allocPtr {
				td, size, ok := h.objectAt(seg, cur)
				if !ok {
					break
				}
				ForEachRefField(td, cur+HeaderSize, func(fieldOff int64) {
					child := seg.region.ReadAddr(fieldOff)
					if child != 0 && h.isLocalEphemeral(child) {
						markIfFirst(child)
					}
				})
				cur += size
			}
		}
	}

	// Parallel mark's sequential analogue: drain the queue, tracing
	// only as far as this heap's own ephemeral generations.
	for len(queue) > 0 {
		x := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		seg, ok := h.ContainsAddress(x)
		if !ok {
			continue
		}
		off := seg.region.AbsToOffset(x)
		td, _, ok := h.objectAt(seg, off)
		if !ok {
			continue
		}
		ForEachRefField(td, off+HeaderSize, func(fieldOff int64) {
			child := seg.region.ReadAddr(fieldOff)
			if child == 0 || !h.isLocalEphemeral(child) {
				return
			}
			markIfFirst(child)
		})
	}

	return visited, nil
}

// isLocalEphemeral reports whether a belongs to this heap's own Gen0
// or Gen1.
func (h *Heap) isLocalEphemeral(a rawmem.Address) bool {
	seg, ok := h.ContainsAddress(a)
	return ok && seg.generation.Ephemeral()
}

// objectAt reads the type and total size of the object starting at
// segment-relative offset off in seg.
func (h *Heap) objectAt(seg *Segment, off int64) (td *typelayout.TypeDesc, size int64, ok bool) {
	typeId := ReadTypeID(seg.region, off)
	t, found := h.types[typeId]
	if !found {
		return nil, 0, false
	}
	return t, ObjectTotalSize(t), true
}

// MarkOnly runs the seed+traverse steps without moving anything: a
// diagnostic pass that must not change allocPtr, dirty cards, or Gen0
// occupancy (the mark-only idempotence property).
func (h *Heap) MarkOnly() error {
	_, err := h.localSeedAndMark()
	return err
}

// CollectSequential is the fallback, single-heap minor GC: seed+mark
// as above, then compact Gen0 in place, promote survivors
// into Gen1, and rewrite every stale reference on this heap alone
// (no cross-heap broadcast).
func (h *Heap) CollectSequential() error {
	visited, err := h.localSeedAndMark()
	if err != nil {
		return err
	}

	relocCompaction, err := h.CompactGen0(func(a rawmem.Address) bool { return visited[a] })
	if err != nil {
		return err
	}
	h.rewriteRefs(relocCompaction)

	relocPromotion, err := h.PromoteGen0()
	if err != nil {
		return err
	}
	h.rewriteRefs(relocPromotion)

	h.InvalidateAllTLHs()
	h.ClearOldCards()
	return nil
}

// RewriteReferences rewrites every reference on this heap whose
// current value is a key in reloc. Exported for the cross-heap
// parallel collector, which must apply one globally-merged relocation
// map to every heap's own segments in turn.
func (h *Heap) RewriteReferences(reloc map[rawmem.Address]rawmem.Address) {
	h.rewriteRefs(reloc)
}

// ClearOldCards clears the dirty cards of every non-Gen0 generation,
// e.g. after a minor GC has fixed up every reference they recorded.
func (h *Heap) ClearOldCards() {
	h.gen1.cards.ClearAll()
	h.gen2.cards.ClearAll()
	h.loh.cards.ClearAll()
}

// CompactGen0 copies every object for which live reports true densely
// to the low end of Gen0, returning the old->new relocation map. live
// is supplied by the caller so both the local collector (its own
// seed+mark result) and the parallel collector (the shared global
// visited set) can drive the same compaction code.
func (h *Heap) CompactGen0(live func(rawmem.Address) bool) (map[rawmem.Address]rawmem.Address, error) {
	reloc := make(map[rawmem.Address]rawmem.Address)
	seg := h.gen0
	var dst int64
	cur := int64(0)
	for cur < seg.allocPtr {
		if cur+HeaderSize > seg.allocPtr {
			break
		}
		if ReadTypeID(seg.region, cur) == 0 {
			// Unused space at the end of a TLH slab is zeroed and holds
			// no object header: step over it.
			cur += typelayout.PtrSize
			continue
		}
		td, size, ok := h.objectAt(seg, cur)
		if !ok {
			return nil, invalidReferencef("corrupt gen0 object at offset %d", cur)
		}
		oldAbs := seg.region.OffsetToAbs(cur)
		if live(oldAbs) {
			if dst != cur {
				seg.region.CopyWithin(dst, cur, size)
			}
			reloc[oldAbs] = seg.region.OffsetToAbs(dst)
			dst += size
		}
		_ = td
		cur += size
	}
	if dst < seg.allocPtr {
		seg.region.ZeroRange(dst, seg.allocPtr-dst)
	}
	seg.allocPtr = dst
	return reloc, nil
}

// PromoteGen0 copies every surviving (now densely packed) Gen0 object
// into Gen1, returning the old->new relocation map, then resets Gen0.
func (h *Heap) PromoteGen0() (map[rawmem.Address]rawmem.Address, error) {
	reloc := make(map[rawmem.Address]rawmem.Address)
	gen0 := h.gen0
	cur := int64(0)
	for cur < gen0.allocPtr {
		td, size, ok := h.objectAt(gen0, cur)
		if !ok {
			return nil, invalidReferencef("corrupt gen0 object at offset %d", cur)
		}
		off1, ok := h.gen1.TryAllocate(size)
		if !ok {
			return nil, outOfMemoryf("gen1 exhausted promoting a %d-byte survivor", size)
		}
		h.gen1.region.CopyFrom(off1, gen0.region, cur, size)
		reloc[gen0.region.OffsetToAbs(cur)] = h.gen1.region.OffsetToAbs(off1)
		h.gen1.bricks.OnAllocation(off1)
		_ = td
		cur += size
	}
	gen0.ResetNurseryLayout()
	return reloc, nil
}

// rewriteRefs rewrites every reference on this heap (roots and every
// object/struct ref field in every own segment, including attached
// arenas) whose current value is a key in reloc.
func (h *Heap) rewriteRefs(reloc map[rawmem.Address]rawmem.Address) {
	if len(reloc) == 0 {
		return
	}
	for name, addr := range h.roots {
		if newAddr, ok := reloc[addr]; ok {
			h.roots[name] = newAddr
		}
	}
	for _, seg := range h.ownSegments {
		cur := int64(0)
		for cur < seg.allocPtr {
			td, size, ok := h.objectAt(seg, cur)
			if !ok {
				break
			}
			ForEachRefField(td, cur+HeaderSize, func(fieldOff int64) {
				child := seg.region.ReadAddr(fieldOff)
				if newAddr, ok := reloc[child]; ok {
					seg.region.WriteAddr(fieldOff, newAddr)
				}
			})
			cur += size
		}
	}
}
