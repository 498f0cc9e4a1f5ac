// Package edges filters raw relations against the visible node set and assigns
// their rendering style.
package edges

import (
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// Stroke widths.
const (
	ContainmentWidth = 2.5
	LeafWidth        = 1.5
	DefaultWidth     = 1.0
)

// Style is the rendering emphasis of an edge.
type Style struct {
	Color    taxonomy.Color `json:"color" yaml:"color"`
	Width    float64        `json:"width" yaml:"width"`
	Animated bool           `json:"animated" yaml:"animated"`
	Arrow    bool           `json:"arrow" yaml:"arrow"`
}

// Styled is a kept edge with its style.
type Styled struct {
	kgraph.Edge `yaml:",inline"`
	Style       `yaml:",inline"`
}

// Visible indexes nodes by id. It is the visibleNodeIds argument of Resolve.
func Visible(nodes []kgraph.Node) map[string]taxonomy.Type {
	ids := make(map[string]taxonomy.Type, len(nodes))
	for _, n := range nodes {
		if _, dup := ids[n.ID]; !dup {
			ids[n.ID] = n.Type
		}
	}
	return ids
}

// Resolve keeps the edges whose source and target are both visible, in raw
// order. Endpoint visibility is the only criterion; the relation only decides
// the style. Edges with a missing endpoint are dropped without error.
func Resolve(raw []kgraph.Edge, visible map[string]taxonomy.Type) []Styled {
	out := make([]Styled, 0, len(raw))
	for _, e := range raw {
		if _, ok := visible[e.Source]; !ok {
			continue
		}
		target, ok := visible[e.Target]
		if !ok {
			continue
		}
		out = append(out, Styled{Edge: e, Style: StyleOf(e.Relation, target)})
	}
	return out
}

// StyleOf returns the style for a relation pointing at a node of type target.
func StyleOf(rel kgraph.Relation, target taxonomy.Type) Style {
	if rel == kgraph.Contains {
		color := taxonomy.ColorOf(target)
		if !target.Known() {
			color = taxonomy.ColorOf(taxonomy.Group)
		}
		return Style{Color: color, Width: ContainmentWidth, Animated: true, Arrow: true}
	}
	if leaf, ok := rel.LeafType(); ok {
		return Style{Color: taxonomy.ColorOf(leaf), Width: LeafWidth, Arrow: true}
	}
	return Style{Color: taxonomy.Neutral, Width: DefaultWidth, Arrow: true}
}
