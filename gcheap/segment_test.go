package gcheap

import "testing"

func TestSegmentTryAllocateBumpsAndAligns(t *testing.T) {
	seg, err := NewSegment(Gen0, 256, 64, 128)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	defer seg.Free()

	off, ok := seg.TryAllocate(10)
	if !ok || off != 0 {
		t.Fatalf("first alloc = (%d, %v), want (0, true)", off, ok)
	}
	off2, ok := seg.TryAllocate(10)
	if !ok {
		t.Fatalf("second alloc failed")
	}
	if off2 != 16 { // 10 rounded up to pointer size (8) is 16
		t.Errorf("second alloc offset = %d, want 16", off2)
	}
	if seg.AllocatedBytes() != 32 {
		t.Errorf("AllocatedBytes = %d, want 32", seg.AllocatedBytes())
	}
}

func TestSegmentTryAllocateFailsWhenFull(t *testing.T) {
	seg, err := NewSegment(Gen0, 16, 64, 128)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	defer seg.Free()

	if _, ok := seg.TryAllocate(16); !ok {
		t.Fatalf("expected the exact-fit allocation to succeed")
	}
	if _, ok := seg.TryAllocate(8); ok {
		t.Fatalf("expected allocation to fail once the segment is full")
	}
}

func TestSegmentResetNurseryLayout(t *testing.T) {
	seg, err := NewSegment(Gen0, 256, 64, 128)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	defer seg.Free()

	off, _ := seg.TryAllocate(32)
	seg.Region().WriteU32(off, 0xdeadbeef)
	seg.Bricks().OnAllocation(off)
	seg.Cards().MarkDirtyByOffset(0)

	seg.ResetNurseryLayout()

	if seg.AllocatedBytes() != 0 {
		t.Errorf("AllocatedBytes after reset = %d, want 0", seg.AllocatedBytes())
	}
	if seg.Region().ReadU32(off) != 0 {
		t.Errorf("expected memory to be zeroed after reset")
	}
	if seg.Cards().DirtyCount() != 0 {
		t.Errorf("expected cards cleared after reset")
	}
	if got := seg.Bricks().SnapToObjectStart(off); got != 0 {
		t.Errorf("expected bricks cleared after reset, got %d", got)
	}
}

func TestSegmentContainsAndEnd(t *testing.T) {
	seg, err := NewSegment(Gen1, 128, 64, 64)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	defer seg.Free()

	if !seg.Contains(seg.Base()) {
		t.Errorf("segment does not contain its own base")
	}
	if seg.Contains(seg.End()) {
		t.Errorf("segment should not contain its own end (exclusive)")
	}
	if seg.End() != seg.Base().Add(128) {
		t.Errorf("End() = %v, want base+128", seg.End())
	}
}
