package diag

import "sort"

// Statistic is a node in a byte-size breakdown tree: a leaf carries
// one bucket's total size, a group aggregates its children's sizes on
// demand instead of caching a total that could drift out of sync.
type Statistic interface {
	Name() string
	Size() int64
	Children() []Statistic
}

type leafStat struct {
	name string
	size int64
}

func (s *leafStat) Name() string       { return s.name }
func (s *leafStat) Size() int64        { return s.size }
func (s *leafStat) Children() []Statistic { return nil }

// groupStat buckets leaves by name (e.g. by type name, or by
// generation) and reports children sorted largest-first, matching
// how a human wants to read a "what's using my heap" breakdown.
type groupStat struct {
	name     string
	children map[string]*leafStat
	order    []string
}

func newGroupStat(name string) *groupStat {
	return &groupStat{name: name, children: make(map[string]*leafStat)}
}

func (g *groupStat) Name() string { return g.name }

func (g *groupStat) Size() int64 {
	var total int64
	for _, c := range g.children {
		total += c.size
	}
	return total
}

func (g *groupStat) Children() []Statistic {
	out := make([]Statistic, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.children[name])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size() > out[j].Size() })
	return out
}

func (g *groupStat) add(bucket string, size int64) {
	c, ok := g.children[bucket]
	if !ok {
		c = &leafStat{name: bucket}
		g.children[bucket] = c
		g.order = append(g.order, bucket)
	}
	c.size += size
}

// ByType aggregates a report's live objects into a Statistic tree
// bucketed by registered type name, e.g. for a "which type is eating
// my nursery" diagnostic.
func ByType(r *Report) Statistic {
	g := newGroupStat("by-type")
	for _, h := range r.Heaps {
		for _, seg := range h.Segments {
			for _, obj := range seg.Objects {
				g.add(obj.TypeName, obj.Size)
			}
		}
	}
	return g
}

// ByGeneration aggregates a report's live objects into a Statistic
// tree bucketed by generation name.
func ByGeneration(r *Report) Statistic {
	g := newGroupStat("by-generation")
	for _, h := range r.Heaps {
		for _, seg := range h.Segments {
			var total int64
			for _, obj := range seg.Objects {
				total += obj.Size
			}
			g.add(seg.Generation, total)
		}
	}
	return g
}
