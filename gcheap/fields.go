package gcheap

import "github.com/haldane-systems/ephemeralgc/typelayout"

// FieldInt32Offset returns the payload-relative byte offset of an
// Int32-kinded field of td, or a BadArgument error if no such field
// exists.
func FieldInt32Offset(td *typelayout.TypeDesc, name string) (int64, error) {
	f := td.Field(name)
	if f == nil {
		return 0, badArgumentf("type %q has no field %q", td.Name, name)
	}
	if f.Kind != typelayout.KindInt32 {
		return 0, badArgumentf("field %q of %q is not Int32", name, td.Name)
	}
	return f.Offset, nil
}

// FieldRefOffset returns the payload-relative byte offset of a
// Ref-kinded top-level field of td.
func FieldRefOffset(td *typelayout.TypeDesc, name string) (int64, error) {
	f := td.Field(name)
	if f == nil {
		return 0, badArgumentf("type %q has no field %q", td.Name, name)
	}
	if f.Kind != typelayout.KindRef {
		return 0, badArgumentf("field %q of %q is not Ref", name, td.Name)
	}
	return f.Offset, nil
}

// FieldStructRefOffset returns the payload-relative byte offset of a
// Ref-kinded field nested inside a Struct-kinded field of td.
func FieldStructRefOffset(td *typelayout.TypeDesc, structField, nestedField string) (int64, error) {
	sf := td.Field(structField)
	if sf == nil {
		return 0, badArgumentf("type %q has no field %q", td.Name, structField)
	}
	if sf.Kind != typelayout.KindStruct {
		return 0, badArgumentf("field %q of %q is not Struct", structField, td.Name)
	}
	nf := sf.Nested.Field(nestedField)
	if nf == nil {
		return 0, badArgumentf("struct field %q has no nested field %q", structField, nestedField)
	}
	if nf.Kind != typelayout.KindRef {
		return 0, badArgumentf("nested field %q.%q is not Ref", structField, nestedField)
	}
	return sf.Offset + nf.Offset, nil
}
