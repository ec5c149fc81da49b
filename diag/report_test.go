package diag

import (
	"testing"

	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/gcruntime"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

func testConfig(heapCount int) gcheap.Config {
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

func pointType() *typelayout.TypeDesc {
	return &typelayout.TypeDesc{
		Name: "Point",
		Fields: []typelayout.Field{
			{Name: "X", Kind: typelayout.KindInt32},
			{Name: "Y", Kind: typelayout.KindInt32},
		},
	}
}

func shapeType() *typelayout.TypeDesc {
	return &typelayout.TypeDesc{
		Name: "Shape",
		Fields: []typelayout.Field{
			{Name: "Origin", Kind: typelayout.KindStruct, Nested: pointType()},
			{Name: "Owner", Kind: typelayout.KindRef},
		},
	}
}

func TestBuildDecodesScalarStructAndRefFields(t *testing.T) {
	rt, err := gcruntime.NewRuntime(testConfig(1))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	shapeTd := shapeType()
	if err := rt.RegisterType(shapeTd); err != nil {
		t.Fatalf("RegisterType(Shape): %v", err)
	}

	nodeTd := &typelayout.TypeDesc{
		Name: "Node",
		Fields: []typelayout.Field{
			{Name: "Value", Kind: typelayout.KindInt32},
		},
	}
	if err := rt.RegisterType(nodeTd); err != nil {
		t.Fatalf("RegisterType(Node): %v", err)
	}

	m := rt.AttachMutator()
	owner, err := rt.Alloc(m, nodeTd, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc owner: %v", err)
	}
	shape, err := rt.Alloc(m, shapeTd, gcheap.Gen0)
	if err != nil {
		t.Fatalf("Alloc shape: %v", err)
	}
	if err := rt.SetRef(shape, "Owner", owner); err != nil {
		t.Fatalf("SetRef: %v", err)
	}
	if err := rt.SetRoot(m, "shape", shape); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}

	report, err := Build(rt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", report.Warnings)
	}
	if len(report.Heaps) != 1 {
		t.Fatalf("expected 1 heap in report, got %d", len(report.Heaps))
	}
	hr := report.Heaps[0]
	if hr.Roots["shape"] != shape.String() {
		t.Errorf("Roots[shape] = %q, want %q", hr.Roots["shape"], shape.String())
	}

	var shapeObj *ObjectSummary
	for _, seg := range hr.Segments {
		if seg.Generation != gcheap.Gen0.String() {
			continue
		}
		for i := range seg.Objects {
			if seg.Objects[i].TypeName == "Shape" {
				shapeObj = &seg.Objects[i]
			}
		}
	}
	if shapeObj == nil {
		t.Fatalf("Shape object not found in report")
	}
	if len(shapeObj.Fields) != 2 {
		t.Fatalf("expected 2 fields on Shape, got %d", len(shapeObj.Fields))
	}
	origin := shapeObj.Fields[0]
	if origin.Name != "Origin" || origin.Kind != "Struct" {
		t.Fatalf("unexpected first field: %+v", origin)
	}
	if len(origin.Nested) != 2 || origin.Nested[0].Name != "X" || origin.Nested[1].Name != "Y" {
		t.Errorf("unexpected nested fields: %+v", origin.Nested)
	}
	ownerField := shapeObj.Fields[1]
	if ownerField.Name != "Owner" || ownerField.Kind != "Ref" {
		t.Fatalf("unexpected second field: %+v", ownerField)
	}
	if ownerField.Value != owner.String() {
		t.Errorf("Owner field = %q, want %q", ownerField.Value, owner.String())
	}
}

func TestBuildWarnsOnUnregisteredTypeID(t *testing.T) {
	rt, err := gcruntime.NewRuntime(testConfig(1))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Destroy()

	h := rt.Heaps()[0]
	seg := h.Gen0()
	off, ok := seg.TryAllocate(32)
	if !ok {
		t.Fatalf("TryAllocate failed")
	}
	gcheap.WriteHeader(seg.Region(), off, 999)

	report, err := Build(rt)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(report.Warnings) == 0 {
		t.Fatalf("expected a warning about the unregistered typeId")
	}
}
