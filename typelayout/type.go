package typelayout

import "fmt"

// PtrSize is the pointer width this collector targets. The object
// model is 64-bit only; Long and Ref fields are sized and aligned to
// PtrSize.
const PtrSize = 8

// Field describes one member of a TypeDesc, in declaration order.
// Offset, Size, and Align are filled in by ComputeLayout and are zero
// before that.
type Field struct {
	Name string
	Kind Kind
	// Nested is the field's own TypeDesc when Kind == KindStruct.
	Nested *TypeDesc

	Offset int64
	Size   int64
	Align  int64
}

// TypeDesc is a stable, per-process type identity: a TypeId (assigned
// once, by RegisterType when left zero), a Class/Struct kind, and an
// ordered field list. Authoring descriptor catalogs is out of scope;
// TypeDesc values arrive fully formed and this package only computes
// their layout.
type TypeDesc struct {
	Name  string
	TypeId uint64
	Class TypeClass
	Fields []Field

	// Size and Align are frozen once laidOut is true.
	Size  int64
	Align int64

	laidOut bool
}

// alignUp rounds n up to the next multiple of align.
func alignUp(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// ComputeLayout assigns Offset/Size/Align to every field of t and
// freezes t.Size/t.Align. It is idempotent: a second call on an
// already-laid-out TypeDesc is a no-op, matching the "layout
// determinism" testable property (computeLayout is a pure function of
// the field sequence, and calling it twice changes nothing).
func ComputeLayout(t *TypeDesc) error {
	if t == nil {
		return fmt.Errorf("typelayout: nil TypeDesc")
	}
	if t.laidOut {
		return nil
	}

	var cursor int64
	var maxAlign int64 = 1
	for i := range t.Fields {
		f := &t.Fields[i]
		size, align, err := fieldShape(f)
		if err != nil {
			return fmt.Errorf("typelayout: field %q of %q: %w", f.Name, t.Name, err)
		}
		off := alignUp(cursor, align)
		f.Offset = off
		f.Size = size
		f.Align = align
		cursor = off + size
		if align > maxAlign {
			maxAlign = align
		}
	}

	switch t.Class {
	case Struct:
		if len(t.Fields) == 0 {
			t.Size = 1
			t.Align = 1
		} else {
			t.Size = alignUp(cursor, maxAlign)
			t.Align = maxAlign
		}
	default: // Class
		t.Size = cursor
		t.Align = maxAlign
	}
	t.laidOut = true
	return nil
}

// fieldShape returns the size and alignment of a field, recursing into
// nested struct layouts first so a struct field's size is always known
// before it is used to place the fields that follow it.
func fieldShape(f *Field) (size, align int64, err error) {
	switch f.Kind {
	case KindInt32:
		return 4, 4, nil
	case KindLong:
		return 8, PtrSize, nil
	case KindDecimal:
		return 16, 4, nil
	case KindRef:
		return PtrSize, PtrSize, nil
	case KindStruct:
		if f.Nested == nil {
			return 0, 0, fmt.Errorf("struct field has no nested type")
		}
		if err := ComputeLayout(f.Nested); err != nil {
			return 0, 0, err
		}
		return f.Nested.Size, f.Nested.Align, nil
	default:
		return 0, 0, fmt.Errorf("unknown field kind %v", f.Kind)
	}
}

// IsLaidOut reports whether ComputeLayout has already run on t.
func (t *TypeDesc) IsLaidOut() bool {
	return t.laidOut
}

// Field looks up a field by name, returning nil if absent. Only valid
// after ComputeLayout.
func (t *TypeDesc) Field(name string) *Field {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}
