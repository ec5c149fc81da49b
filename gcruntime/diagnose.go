package gcruntime

import (
	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
)

// scanOldCards walks h's old generations' dirty card ranges, pushing
// the address of every reference field found inside. When markAll is
// true, every card is treated as dirty regardless of its actual bit,
// forcing a full old-segment scan instead of trusting the remembered
// set.
func scanOldCards(h *gcheap.Heap, markAll bool, push func(rawmem.Address)) {
	for _, seg := range []*gcheap.Segment{h.Gen1(), h.Gen2(), h.Loh()} {
		ranges := seg.Cards().DirtyRanges()
		if markAll {
			ranges = []gcheap.CardRange{{Start: 0, End: seg.AllocatedBytes()}}
		}
		for _, rng := range ranges {
			cur := seg.Bricks().SnapToObjectStart(rng.Start)
			for cur < rng.End && cur < seg.AllocatedBytes() {
				typeId := gcheap.ReadTypeID(seg.Region(), cur)
				td, ok := h.TypeByID(typeId)
				if !ok {
					break
				}
				size := gcheap.ObjectTotalSize(td)
				gcheap.ForEachRefField(td, cur+gcheap.HeaderSize, func(fieldOff int64) {
					push(seg.Region().ReadAddr(fieldOff))
				})
				cur += size
			}
		}
	}
}

// globalMark performs a single-threaded, whole-process seed+trace over
// every heap's roots, every attached arena's external roots, and (when
// ephemeralOnly is true) every old segment's remembered set. When
// ephemeralOnly is true, traversal stops at the first non-ephemeral
// address; when false, it follows every reference regardless of
// generation, visiting the entire live graph. Nothing is ever moved:
// this is the shared core behind the two diagnostic, mark-only entry
// points below.
func (rt *Runtime) globalMark(ephemeralOnly, markAllOldCards bool) (*visited, error) {
	rt.mu.RLock()
	heaps := rt.heaps
	dir := rt.dir
	rt.mu.RUnlock()

	v := &visited{}
	var queue []rawmem.Address

	include := func(a rawmem.Address) bool {
		if !ephemeralOnly {
			return true
		}
		return dir.isEphemeral(a)
	}

	push := func(a rawmem.Address) {
		if a == 0 || !include(a) {
			return
		}
		if v.insertIfAbsent(a) {
			queue = append(queue, a)
		}
	}

	for _, h := range heaps {
		for _, ref := range h.Roots() {
			push(ref)
		}
		for _, a := range h.Arenas() {
			for _, ref := range a.ExternalRoots() {
				push(ref)
			}
		}
		if ephemeralOnly {
			scanOldCards(h, markAllOldCards, push)
		}
	}

	for len(queue) > 0 {
		a := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		e, ok := dir.lookup(a)
		if !ok {
			continue
		}
		off, td, err := gcheap.ResolveInSegment(e.seg, heaps[e.heapIndex].Types(), a)
		if err != nil {
			continue
		}
		gcheap.ForEachRefField(td, off+gcheap.HeaderSize, func(fieldOff int64) {
			child := e.seg.Region().ReadAddr(fieldOff)
			push(child)
		})
	}

	return v, nil
}

// MarkEphemeralAll is the diagnostic, cross-heap analogue of the
// parallel minor GC's mark phase, without any compaction or promotion:
// a snapshot of what the next minor GC would find reachable. It must
// not change any heap's dirty cards or Gen0 occupancy. When
// markAllOldCards is true, every old segment is scanned in full rather
// than trusting the remembered set, which is useful for diagnosing a
// write-barrier bug that might have left a card undirtied.
func (rt *Runtime) MarkEphemeralAll(markAllOldCards bool) (int, error) {
	v, err := rt.globalMark(true, markAllOldCards)
	if err != nil {
		return 0, err
	}
	return v.len(), nil
}

// CollectFullAll performs a mark-only traversal across every
// generation of every heap, including Gen2 and the Loh, reporting
// reachability without reclaiming anything.
func (rt *Runtime) CollectFullAll() (int, error) {
	v, err := rt.globalMark(false, false)
	if err != nil {
		return 0, err
	}
	return v.len(), nil
}
