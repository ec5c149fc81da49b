package main

import (
	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/gcruntime"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// buildDemoRuntime seeds a small, self-contained Runtime so `gcinspect`
// has something to show without attaching to a real process: two
// types, a handful of Gen0 allocations, two roots, and two cross-object
// references, exercising Int32, Ref and Struct fields. No Long or
// Decimal field is allocated.
func buildDemoRuntime() (*gcruntime.Runtime, error) {
	cfg := gcheap.DefaultConfig()
	cfg.HeapCount = 2

	rt, err := gcruntime.NewRuntime(cfg)
	if err != nil {
		return nil, err
	}

	nodeType := &typelayout.TypeDesc{
		Name:  "Node",
		Class: typelayout.Class,
		Fields: []typelayout.Field{
			{Name: "Value", Kind: typelayout.KindInt32},
			{Name: "Next", Kind: typelayout.KindRef},
		},
	}
	if err := rt.RegisterType(nodeType); err != nil {
		return nil, err
	}

	pointType := &typelayout.TypeDesc{
		Name:  "Point",
		Class: typelayout.Struct,
		Fields: []typelayout.Field{
			{Name: "X", Kind: typelayout.KindInt32},
			{Name: "Y", Kind: typelayout.KindInt32},
		},
	}
	shapeType := &typelayout.TypeDesc{
		Name:  "Shape",
		Class: typelayout.Class,
		Fields: []typelayout.Field{
			{Name: "Origin", Kind: typelayout.KindStruct, Nested: pointType},
			{Name: "Owner", Kind: typelayout.KindRef},
		},
	}
	if err := rt.RegisterType(shapeType); err != nil {
		return nil, err
	}

	m := rt.AttachMutator()

	head, err := rt.Alloc(m, nodeType, gcheap.Gen0)
	if err != nil {
		return nil, err
	}
	tail, err := rt.Alloc(m, nodeType, gcheap.Gen0)
	if err != nil {
		return nil, err
	}
	if err := rt.SetInt32(head, "Value", 1); err != nil {
		return nil, err
	}
	if err := rt.SetInt32(tail, "Value", 2); err != nil {
		return nil, err
	}
	if err := rt.SetRef(head, "Next", tail); err != nil {
		return nil, err
	}

	shape, err := rt.Alloc(m, shapeType, gcheap.Gen0)
	if err != nil {
		return nil, err
	}
	if err := rt.SetRef(shape, "Owner", head); err != nil {
		return nil, err
	}

	if err := rt.SetRoot(m, "list_head", head); err != nil {
		return nil, err
	}
	if err := rt.SetRoot(m, "shape", shape); err != nil {
		return nil, err
	}

	return rt, nil
}
