package gcruntime

import (
	"sort"

	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
)

// directoryEntry names one segment's owner: either a heap (one of its
// four generations) or an arena attached to that heap (generation
// Region). The parallel collector and the write barrier both need to
// answer "which heap (if any) owns this address, and is it a region",
// regardless of which heap's object is holding the reference.
type directoryEntry struct {
	base, end rawmem.Address
	seg       *gcheap.Segment
	heapIndex int
	arena     *gcheap.Arena // non-nil iff seg.Generation() == gcheap.Region
}

// addressDirectory is the single global sorted-by-base directory that
// resolves this runtime's own Open Question: every heap's
// per-segment ownership check is replaced by one binary search across
// every heap's segments and arenas, rebuilt whenever the segment set
// changes (heap creation, arena attach/detach, post-GC resize is a
// no-op since segment bases never move).
type addressDirectory struct {
	entries []directoryEntry
}

func buildDirectory(heaps []*gcheap.Heap) *addressDirectory {
	d := &addressDirectory{}
	for hi, h := range heaps {
		for _, seg := range h.Segments() {
			var arena *gcheap.Arena
			if seg.Generation() == gcheap.Region {
				for _, a := range h.Arenas() {
					if a.Segment() == seg {
						arena = a
						break
					}
				}
			}
			d.entries = append(d.entries, directoryEntry{
				base: seg.Base(), end: seg.End(), seg: seg, heapIndex: hi, arena: arena,
			})
		}
	}
	sort.Slice(d.entries, func(i, j int) bool { return d.entries[i].base < d.entries[j].base })
	return d
}

// lookup returns the directory entry owning address a, if any.
func (d *addressDirectory) lookup(a rawmem.Address) (directoryEntry, bool) {
	entries := d.entries
	i := sort.Search(len(entries), func(i int) bool { return entries[i].base > a })
	if i == 0 {
		return directoryEntry{}, false
	}
	e := entries[i-1]
	if a >= e.base && a < e.end {
		return e, true
	}
	return directoryEntry{}, false
}

// isEphemeral reports whether a belongs to any heap's Gen0 or Gen1,
// globally — the predicate spec's Open Question asked to be unified.
func (d *addressDirectory) isEphemeral(a rawmem.Address) bool {
	e, ok := d.lookup(a)
	return ok && e.seg.Generation().Ephemeral()
}
