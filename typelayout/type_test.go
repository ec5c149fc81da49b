package typelayout

import "testing"

func TestLayoutInt32Int32Long(t *testing.T) {
	td := &TypeDesc{
		Name:  "Point3",
		Class: Struct,
		Fields: []Field{
			{Name: "X", Kind: KindInt32},
			{Name: "Y", Kind: KindInt32},
			{Name: "Z", Kind: KindLong},
		},
	}
	if err := ComputeLayout(td); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if td.Size != 16 {
		t.Errorf("Size = %d, want 16", td.Size)
	}
	if off := td.Field("Z").Offset; off != 8 {
		t.Errorf("Z.Offset = %d, want 8", off)
	}
}

func TestLayoutInt32LongInt32(t *testing.T) {
	td := &TypeDesc{
		Name:  "Mixed",
		Class: Struct,
		Fields: []Field{
			{Name: "X", Kind: KindInt32},
			{Name: "Y", Kind: KindLong},
			{Name: "Z", Kind: KindInt32},
		},
	}
	if err := ComputeLayout(td); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if td.Size != 24 {
		t.Errorf("Size = %d, want 24 (trailing pad to align 8)", td.Size)
	}
	if off := td.Field("Y").Offset; off != 8 {
		t.Errorf("Y.Offset = %d, want 8", off)
	}
	if off := td.Field("Z").Offset; off != 16 {
		t.Errorf("Z.Offset = %d, want 16", off)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	td := &TypeDesc{
		Class:  Struct,
		Fields: []Field{{Name: "A", Kind: KindDecimal}},
	}
	if err := ComputeLayout(td); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	first := *td
	// Recomputing must be a no-op: ComputeLayout only ever runs once per
	// TypeDesc.
	if err := ComputeLayout(td); err != nil {
		t.Fatalf("ComputeLayout (second call): %v", err)
	}
	if td.Size != first.Size || td.Align != first.Align {
		t.Errorf("second ComputeLayout call changed layout: got size=%d align=%d, want size=%d align=%d",
			td.Size, td.Align, first.Size, first.Align)
	}
}

func TestDecimalAlignmentIsFour(t *testing.T) {
	td := &TypeDesc{
		Class:  Struct,
		Fields: []Field{{Name: "A", Kind: KindInt32}, {Name: "D", Kind: KindDecimal}},
	}
	if err := ComputeLayout(td); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	// Decimal has align 4, not 8/16, so it packs right after the Int32.
	if off := td.Field("D").Offset; off != 4 {
		t.Errorf("Decimal offset = %d, want 4 (align 4, not 8/16)", off)
	}
	if td.Size != 20 {
		t.Errorf("Size = %d, want 20", td.Size)
	}
}

func TestEmptyStructSizeOne(t *testing.T) {
	td := &TypeDesc{Class: Struct}
	if err := ComputeLayout(td); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if td.Size != 1 {
		t.Errorf("Size = %d, want 1 for an empty struct", td.Size)
	}
}

func TestClassSizeNotPadded(t *testing.T) {
	td := &TypeDesc{
		Class:  Class,
		Fields: []Field{{Name: "A", Kind: KindInt32}, {Name: "B", Kind: KindLong}},
	}
	if err := ComputeLayout(td); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	// cursor after B is 16 (A at 0..4, pad to 8, B at 8..16); a Class
	// is not padded further to its own alignment.
	if td.Size != 16 {
		t.Errorf("Size = %d, want 16", td.Size)
	}
}

func TestNestedStructArrayAlignment(t *testing.T) {
	inner := &TypeDesc{
		Class:  Struct,
		Fields: []Field{{Name: "X", Kind: KindInt32}, {Name: "Y", Kind: KindLong}},
	}
	outer := &TypeDesc{
		Class: Class,
		Fields: []Field{
			{Name: "Head", Kind: KindInt32},
			{Name: "Inner", Kind: KindStruct, Nested: inner},
		},
	}
	if err := ComputeLayout(outer); err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	// inner: X@0 size4, pad to 8 for Y, Y@8 size8 -> cursor 16, rounds
	// up to its own alignment (8) -> stays 16.
	if inner.Size != 16 {
		t.Errorf("inner.Size = %d, want 16", inner.Size)
	}
	if got := outer.Field("Inner").Offset; got != 8 {
		t.Errorf("Inner field offset = %d, want 8 (aligned to inner's align 8)", got)
	}
}
