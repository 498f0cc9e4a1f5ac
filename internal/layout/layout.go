// Package layout places knowledge graph nodes on three fixed horizontal tiers:
// groups, processes, then one row per populated leaf type.
//
// The layout is a single pass over the input. Identical input (same nodes in the
// same order) always yields identical positions.
package layout

import (
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// Tier offsets and spacings, in renderer units.
const (
	GroupY    = 0.0
	ProcessY  = 200.0
	LeafY     = 400.0
	RowHeight = 120.0

	GroupSpacing   = 280.0
	ProcessSpacing = 220.0
	LeafSpacing    = 160.0
)

// Point is a 2-D position.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Row describes one populated leaf row.
type Row struct {
	Type  taxonomy.Type `json:"type" yaml:"type"`
	Index int           `json:"index" yaml:"index"`
	Y     float64       `json:"y" yaml:"y"`
	Count int           `json:"count" yaml:"count"`
}

// Result maps node ids to positions.
type Result struct {
	Positions map[string]Point
	Rows      []Row
}

// Position returns the position of id.
func (r Result) Position(id string) (Point, bool) {
	p, ok := r.Positions[id]
	return p, ok
}

// Compute lays out the given (already visible) nodes. Nodes sharing an id are
// placed once, at the first occurrence. Unknown types share a trailing leaf row.
func Compute(nodes []kgraph.Node) Result {
	var (
		groups, processes []string
		leaves            = make(map[taxonomy.Type][]string, len(taxonomy.Leaves))
		others            []string
		seen              = make(map[string]struct{}, len(nodes))
	)

	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}

		switch {
		case n.Type == taxonomy.Group:
			groups = append(groups, n.ID)
		case n.Type == taxonomy.Process:
			processes = append(processes, n.ID)
		case n.Type.IsLeaf():
			leaves[n.Type] = append(leaves[n.Type], n.ID)
		default:
			others = append(others, n.ID)
		}
	}

	res := Result{Positions: make(map[string]Point, len(seen))}
	placeRow(res.Positions, groups, GroupY, GroupSpacing)
	placeRow(res.Positions, processes, ProcessY, ProcessSpacing)

	row := 0
	for _, t := range taxonomy.Leaves {
		ids := leaves[t]
		if len(ids) == 0 {
			continue
		}
		y := LeafY + float64(row)*RowHeight
		placeRow(res.Positions, ids, y, LeafSpacing)
		res.Rows = append(res.Rows, Row{Type: t, Index: row, Y: y, Count: len(ids)})
		row++
	}
	if len(others) > 0 {
		y := LeafY + float64(row)*RowHeight
		placeRow(res.Positions, others, y, LeafSpacing)
		res.Rows = append(res.Rows, Row{Type: taxonomy.Unknown, Index: row, Y: y, Count: len(others)})
	}
	return res
}

// placeRow centers ids around x=0 at height y: the first node sits at
// -(count*spacing)/2 and each next one spacing further right.
func placeRow(dst map[string]Point, ids []string, y, spacing float64) {
	if len(ids) == 0 {
		return
	}
	x := -float64(len(ids)) * spacing / 2
	for _, id := range ids {
		dst[id] = Point{X: x, Y: y}
		x += spacing
	}
}

// Bounds returns the bounding box of all positions. ok is false when empty.
func (r Result) Bounds() (lo, hi Point, ok bool) {
	for _, p := range r.Positions {
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		if p.X < lo.X {
			lo.X = p.X
		}
		if p.Y < lo.Y {
			lo.Y = p.Y
		}
		if p.X > hi.X {
			hi.X = p.X
		}
		if p.Y > hi.Y {
			hi.Y = p.Y
		}
	}
	return lo, hi, ok
}
