package diag

import (
	"fmt"

	"github.com/haldane-systems/ephemeralgc/gcheap"
	"github.com/haldane-systems/ephemeralgc/gcruntime"
	"github.com/haldane-systems/ephemeralgc/typelayout"
)

// FieldValue is one field's decoded value inside an ObjectSummary.
type FieldValue struct {
	Name  string
	Kind  string
	Value string
	// Nested holds the decoded fields of a Struct-kind field, so a
	// report reader never has to re-walk the type table to expand one.
	Nested []FieldValue
}

// ObjectSummary describes one live allocation as it currently sits in
// a segment.
type ObjectSummary struct {
	Index    int
	TypeName string
	Address  string
	Size     int64
	Fields   []FieldValue
}

// SegmentReport describes one generation's segment and its objects.
type SegmentReport struct {
	Generation     string
	Base           string
	Size           int64
	AllocatedBytes int64
	DirtyCardCount int
	Objects        []ObjectSummary
}

// HeapReport describes one heap's roots and segments.
type HeapReport struct {
	Index    int
	Roots    map[string]string
	Segments []SegmentReport
}

// Report is the top-level diagnostic snapshot of a running Runtime,
// matching the shape "getReport()" in the original describes: a
// per-segment object listing with per-heap roots, plus any anomalies
// noticed while building it.
type Report struct {
	Heaps    []HeapReport
	Warnings []string
}

// Build walks every heap's four segments and every attached arena,
// decoding each object's header and reference/scalar fields into a
// Report. It never mutates rt: this is read-only introspection, safe
// to call between mutator operations or mid-debugging-session.
func Build(rt *gcruntime.Runtime) (*Report, error) {
	var warn Warnings
	report := &Report{}

	for _, h := range rt.Heaps() {
		hr := HeapReport{Index: h.Index(), Roots: make(map[string]string)}
		for name, addr := range h.Roots() {
			hr.Roots[name] = addr.String()
		}
		for _, seg := range h.Segments() {
			sr := SegmentReport{
				Generation:     seg.Generation().String(),
				Base:           seg.Base().String(),
				Size:           seg.Size(),
				AllocatedBytes: seg.AllocatedBytes(),
				DirtyCardCount: seg.Cards().DirtyCount(),
			}
			cur := int64(0)
			idx := 0
			for cur < seg.AllocatedBytes() {
				if cur+gcheap.HeaderSize > seg.AllocatedBytes() {
					break
				}
				typeId := gcheap.ReadTypeID(seg.Region(), cur)
				if typeId == 0 {
					// Unused space at the end of a TLH slab is zeroed and
					// holds no object header: step over it.
					cur += typelayout.PtrSize
					continue
				}
				td, ok := h.TypeByID(typeId)
				if !ok {
					warn.Addf("heap %d segment %s: unregistered typeId %d at offset %d, stopping walk",
						h.Index(), sr.Generation, typeId, cur)
					break
				}
				size := gcheap.ObjectTotalSize(td)
				obj := ObjectSummary{
					Index:    idx,
					TypeName: td.Name,
					Address:  seg.Region().OffsetToAbs(cur).String(),
					Size:     size,
				}
				obj.Fields = decodeFields(seg, cur+gcheap.HeaderSize, td.Fields)
				sr.Objects = append(sr.Objects, obj)
				idx++
				cur += size
			}
			hr.Segments = append(hr.Segments, sr)
		}
		report.Heaps = append(report.Heaps, hr)
	}

	report.Warnings = warn.All()
	return report, nil
}

func decodeFields(seg *gcheap.Segment, baseOff int64, fields []typelayout.Field) []FieldValue {
	out := make([]FieldValue, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		off := baseOff + f.Offset
		fv := FieldValue{Name: f.Name, Kind: f.Kind.String()}
		switch f.Kind {
		case typelayout.KindInt32:
			fv.Value = fmt.Sprintf("%d", int32(seg.Region().ReadU32(off)))
		case typelayout.KindLong:
			fv.Value = fmt.Sprintf("%d", int64(seg.Region().ReadU64(off)))
		case typelayout.KindDecimal:
			hi := seg.Region().ReadU64(off)
			lo := seg.Region().ReadU64(off + 8)
			fv.Value = fmt.Sprintf("0x%016x%016x", hi, lo)
		case typelayout.KindRef:
			fv.Value = seg.Region().ReadAddr(off).String()
		case typelayout.KindStruct:
			fv.Nested = decodeFields(seg, off, f.Nested.Fields)
		}
		out = append(out, fv)
	}
	return out
}
