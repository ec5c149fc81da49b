package gcruntime

import (
	"testing"

	"github.com/haldane-systems/ephemeralgc/gcheap"
)

func smallConfig(heapCount int) gcheap.Config {
	cfg := gcheap.DefaultConfig()
	cfg.Gen0Size = 4096
	cfg.Gen1Size = 4096
	cfg.Gen2Size = 4096
	cfg.LohSize = 4096
	cfg.LargeObjectThreshold = 1 << 20
	cfg.TlhSlabBytes = 256
	cfg.CardSizeBytes = 64
	cfg.BrickSizeBytes = 256
	cfg.HeapCount = heapCount
	return cfg
}

func TestDirectoryLookupFindsEveryHeapsSegments(t *testing.T) {
	rt, err := NewRuntime(smallConfig(2))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	for _, h := range rt.Heaps() {
		for _, seg := range h.Segments() {
			e, ok := rt.dir.lookup(seg.Base())
			if !ok {
				t.Fatalf("directory missed segment at %v", seg.Base())
			}
			if e.seg != seg {
				t.Errorf("directory returned the wrong segment for %v", seg.Base())
			}
		}
	}
}

func TestDirectoryIsEphemeral(t *testing.T) {
	rt, err := NewRuntime(smallConfig(1))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	h := rt.Heaps()[0]
	if !rt.dir.isEphemeral(h.Gen0().Base()) {
		t.Errorf("expected Gen0 base to be ephemeral")
	}
	if rt.dir.isEphemeral(h.Gen2().Base()) {
		t.Errorf("expected Gen2 base not to be ephemeral")
	}
}

func TestAttachArenaIsVisibleInDirectory(t *testing.T) {
	rt, err := NewRuntime(smallConfig(1))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	arena, err := rt.AttachArena(0, 512)
	if err != nil {
		t.Fatalf("AttachArena: %v", err)
	}
	e, ok := rt.dir.lookup(arena.Segment().Base())
	if !ok || e.arena != arena {
		t.Fatalf("expected the directory to resolve the newly attached arena")
	}
}
