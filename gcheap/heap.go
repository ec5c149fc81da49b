package gcheap

import (
	"sort"

	"github.com/haldane-systems/ephemeralgc/internal/rawmem"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// Heap owns one CPU-affine set of generations: Gen0/Gen1/Gen2/Loh
// segments sorted by base address, a root map, a type table, and its
// mutators' TLHs, plus a local (single-heap, sequential) collector.
// The reference write barrier lives in gcruntime.
type Heap struct {
	index int
	cfg   Config

	gen0, gen1, gen2, loh *Segment
	// own, address-sorted for this heap's ContainsAddress (used by the
	// local-only collector, which never needs to look past its own
	// four segments).
	ownSegments []*Segment

	roots  map[string]rawmem.Address
	types  map[uint64]*typelayout.TypeDesc
	arenas []*Arena

	tlhs map[uint64]*TLH

	// CollectLocal, if set, is invoked by EnsureTLH when Gen0 is full
	// and typically runs a minor GC. Left nil, Gen0 exhaustion is a
	// hard OutOfMemory. Populated by gcruntime with the sequential
	// local collector it builds over this heap.
	CollectLocal func() error
}

// NewHeap allocates a fresh heap's four generations.
func NewHeap(index int, cfg Config) (*Heap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g0, err := NewSegment(Gen0, cfg.Gen0Size, cfg.CardSizeBytes, cfg.BrickSizeBytes)
	if err != nil {
		return nil, err
	}
	g1, err := NewSegment(Gen1, cfg.Gen1Size, cfg.CardSizeBytes, cfg.BrickSizeBytes)
	if err != nil {
		return nil, err
	}
	g2, err := NewSegment(Gen2, cfg.Gen2Size, cfg.CardSizeBytes, cfg.BrickSizeBytes)
	if err != nil {
		return nil, err
	}
	loh, err := NewSegment(Loh, cfg.LohSize, cfg.CardSizeBytes, cfg.BrickSizeBytes)
	if err != nil {
		return nil, err
	}
	h := &Heap{
		index: index,
		cfg:   cfg,
		gen0:  g0, gen1: g1, gen2: g2, loh: loh,
		roots: make(map[string]rawmem.Address),
		types: make(map[uint64]*typelayout.TypeDesc),
		tlhs:  make(map[uint64]*TLH),
	}
	h.ownSegments = []*Segment{g0, g1, g2, loh}
	sort.Slice(h.ownSegments, func(i, j int) bool { return h.ownSegments[i].Base() < h.ownSegments[j].Base() })
	return h, nil
}

func (h *Heap) Index() int        { return h.index }
func (h *Heap) Config() Config     { return h.cfg }
func (h *Heap) Gen0() *Segment     { return h.gen0 }
func (h *Heap) Gen1() *Segment     { return h.gen1 }
func (h *Heap) Gen2() *Segment     { return h.gen2 }
func (h *Heap) Loh() *Segment      { return h.loh }

// Segments returns the heap's four generations plus the segments of
// any attached arenas, sorted by base address, e.g. for O(log n)
// ContainsAddress.
func (h *Heap) Segments() []*Segment { return h.ownSegments }

// ContainsAddress finds the segment among this heap's own four
// generations and attached arenas that owns a, via binary search.
func (h *Heap) ContainsAddress(a rawmem.Address) (*Segment, bool) {
	segs := h.ownSegments
	i := sort.Search(len(segs), func(i int) bool { return segs[i].Base() > a })
	if i == 0 {
		return nil, false
	}
	seg := segs[i-1]
	if seg.Contains(a) {
		return seg, true
	}
	return nil, false
}

// AttachArena adds a non-moving arena's segment to this heap's
// address-sorted segment list, so ContainsAddress and the local
// collector's root seeding both see it.
func (h *Heap) AttachArena(a *Arena) {
	h.arenas = append(h.arenas, a)
	h.ownSegments = append(h.ownSegments, a.segment)
	sort.Slice(h.ownSegments, func(i, j int) bool { return h.ownSegments[i].Base() < h.ownSegments[j].Base() })
}

// DetachArena removes a previously attached arena from this heap's
// segment list. It does not destroy the arena's memory; the caller
// owns the arena and destroys it explicitly.
func (h *Heap) DetachArena(a *Arena) {
	for i, existing := range h.arenas {
		if existing == a {
			h.arenas = append(h.arenas[:i], h.arenas[i+1:]...)
			break
		}
	}
	for i, seg := range h.ownSegments {
		if seg == a.segment {
			h.ownSegments = append(h.ownSegments[:i], h.ownSegments[i+1:]...)
			break
		}
	}
}

// Arenas returns every arena currently attached to this heap.
func (h *Heap) Arenas() []*Arena { return h.arenas }

// RegisterType stores td in this heap's type table. Called once per
// heap when the runtime broadcasts a newly registered type.
func (h *Heap) RegisterType(td *typelayout.TypeDesc) error {
	if td == nil || td.TypeId == 0 {
		return badArgumentf("type must have a non-zero TypeId before broadcast")
	}
	h.types[td.TypeId] = td
	return nil
}

// TypeByID looks up a previously registered type.
func (h *Heap) TypeByID(id uint64) (*typelayout.TypeDesc, bool) {
	t, ok := h.types[id]
	return t, ok
}

// Types exposes the heap's local type table, e.g. for cross-heap
// directory resolution.
func (h *Heap) Types() map[uint64]*typelayout.TypeDesc { return h.types }

// SetRoot records a named root reference.
func (h *Heap) SetRoot(name string, ref rawmem.Address) error {
	if name == "" {
		return badArgumentf("root name must not be empty")
	}
	h.roots[name] = ref
	return nil
}

// Root returns a named root's current value.
func (h *Heap) Root(name string) (rawmem.Address, bool) {
	r, ok := h.roots[name]
	return r, ok
}

// Roots returns every root name->address pair currently set.
func (h *Heap) Roots() map[string]rawmem.Address { return h.roots }

// Resolve resolves an address to an object offset and type, within
// this heap's own four segments and attached arenas only.
func (h *Heap) Resolve(a rawmem.Address) (seg *Segment, objOff int64, td *typelayout.TypeDesc, err error) {
	seg, ok := h.ContainsAddress(a)
	if !ok {
		return nil, 0, nil, invalidReferencef("address %v not owned by heap %d", a, h.index)
	}
	off, t, err := ResolveInSegment(seg, h.types, a)
	if err != nil {
		return nil, 0, nil, err
	}
	return seg, off, t, nil
}

// TLHFor returns (creating if needed) the thread-local nursery slab
// for mutator id on this heap.
func (h *Heap) TLHFor(mutatorID uint64) *TLH {
	t, ok := h.tlhs[mutatorID]
	if !ok {
		t = &TLH{}
		h.tlhs[mutatorID] = t
	}
	return t
}

// InvalidateAllTLHs invalidates every mutator's TLH on this heap,
// e.g. after a collection has reclaimed Gen0.
func (h *Heap) InvalidateAllTLHs() {
	for _, t := range h.tlhs {
		t.Invalidate()
	}
}

// Destroy releases the heap's four generation buffers. Attached
// arenas are not owned by the heap and are not destroyed here.
func (h *Heap) Destroy() error {
	var firstErr error
	for _, seg := range []*Segment{h.gen0, h.gen1, h.gen2, h.loh} {
		if err := seg.Free(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
