package gcruntime

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
)

// stealFrom tries to pop an item from every worklist but mine, in
// round-robin order starting just past it, so N workers contending for
// the same few remaining items don't all hammer worklist 0 first.
func stealFrom(lists []*worklist, mine int) (rawmem.Address, bool) {
	n := len(lists)
	for i := 1; i < n; i++ {
		if a, ok := lists[(mine+i)%n].pop(); ok {
			return a, true
		}
	}
	return 0, false
}

// CollectEphemeralAllParallel is the cross-heap-sound minor GC: a
// single stop-the-world pass that seeds from every heap's roots and
// every old segment's dirty cards (cross-heap references included),
// traces with one worker goroutine per heap stealing from its peers'
// LIFO worklists, and only then compacts and promotes, broadcasting
// each heap's relocation map to every other heap so cross-heap
// references get fixed up too.
func (rt *Runtime) CollectEphemeralAllParallel() error {
	rt.mu.RLock()
	heaps := rt.heaps
	dir := rt.dir
	rt.mu.RUnlock()

	n := len(heaps)
	worklists := make([]*worklist, n)
	for i := range worklists {
		worklists[i] = newWorklist()
	}
	v := &visited{}
	var inflight int64

	pushTo := func(hi int, a rawmem.Address) {
		if a == 0 {
			return
		}
		if v.insertIfAbsent(a) {
			atomic.AddInt64(&inflight, 1)
			worklists[hi].push(a)
		}
	}
	pushIfEphemeral := func(a rawmem.Address) {
		if a == 0 || !dir.isEphemeral(a) {
			return
		}
		if owner, ok := dir.lookup(a); ok {
			pushTo(owner.heapIndex, a)
		}
	}

	// Seeding: heap-local roots, region external roots, and a scan of
	// every heap's old-generation dirty cards. All three can discover
	// an address owned by any heap.
	for _, h := range heaps {
		for _, ref := range h.Roots() {
			pushIfEphemeral(ref)
		}
		for _, a := range h.Arenas() {
			for _, ref := range a.ExternalRoots() {
				pushIfEphemeral(ref)
			}
		}
	}
	for _, h := range heaps {
		for _, seg := range []*gcheap.Segment{h.Gen1(), h.Gen2(), h.Loh()} {
			for _, rng := range seg.Cards().DirtyRanges() {
				cur := seg.Bricks().SnapToObjectStart(rng.Start)
				for cur < rng.End && cur < seg.AllocatedBytes() {
					typeId := gcheap.ReadTypeID(seg.Region(), cur)
					td, ok := h.TypeByID(typeId)
					if !ok {
						break
					}
					size := gcheap.ObjectTotalSize(td)
					gcheap.ForEachRefField(td, cur+gcheap.HeaderSize, func(fieldOff int64) {
						pushIfEphemeral(seg.Region().ReadAddr(fieldOff))
					})
					cur += size
				}
			}
		}
	}

	// Parallel trace: one worker per heap, mark-first via the global
	// visited set, work-stealing when a worker's own list runs dry,
	// terminating once inflight reaches zero and no list yields stolen
	// work either.
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(mine int) {
			defer wg.Done()
			for {
				a, ok := worklists[mine].pop()
				if !ok {
					a, ok = stealFrom(worklists, mine)
				}
				if !ok {
					if atomic.LoadInt64(&inflight) == 0 {
						return
					}
					runtime.Gosched()
					continue
				}

				e, found := dir.lookup(a)
				if found {
					off, td, err := gcheap.ResolveInSegment(e.seg, heaps[e.heapIndex].Types(), a)
					if err == nil {
						gcheap.ForEachRefField(td, off+gcheap.HeaderSize, func(fieldOff int64) {
							pushIfEphemeral(e.seg.Region().ReadAddr(fieldOff))
						})
					}
				}
				atomic.AddInt64(&inflight, -1)
			}
		}(i)
	}
	wg.Wait()

	// Compaction: every heap compacts its own Gen0 against the shared
	// global visited set, then every heap rewrites every reference in
	// every one of its own segments against the merged map, so
	// cross-heap pointers into a moved object are fixed up too.
	relocCompaction := make(map[rawmem.Address]rawmem.Address)
	for _, h := range heaps {
		r, err := h.CompactGen0(v.has)
		if err != nil {
			return err
		}
		for k, val := range r {
			relocCompaction[k] = val
		}
	}
	for _, h := range heaps {
		h.RewriteReferences(relocCompaction)
	}

	// Promotion: every heap promotes its own (now densely packed) Gen0
	// survivors into its own Gen1, then the merged relocation map is
	// broadcast the same way.
	relocPromotion := make(map[rawmem.Address]rawmem.Address)
	for _, h := range heaps {
		r, err := h.PromoteGen0()
		if err != nil {
			return err
		}
		for k, val := range r {
			relocPromotion[k] = val
		}
	}
	for _, h := range heaps {
		h.RewriteReferences(relocPromotion)
	}

	for _, h := range heaps {
		h.InvalidateAllTLHs()
		h.ClearOldCards()
	}
	return nil
}
