// Package scene is the pure pipeline from a raw snapshot and a visibility set to
// what a renderer draws: snapshot → filter → layout → resolve edges.
package scene

import (
	"encoding/json"

	"github.com/msalah0e/gridmap/internal/edges"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/layout"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"gopkg.in/yaml.v3"
)

// Positioned is a visible node with its layout position.
type Positioned struct {
	kgraph.Node
	X float64
	Y float64
}

// MarshalJSON flattens the node and adds x and y.
func (p Positioned) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(p.Node)
	if err != nil {
		return nil, err
	}
	pos, err := json.Marshal(layout.Point{X: p.X, Y: p.Y})
	if err != nil {
		return nil, err
	}
	// both are objects: drop b's closing brace and pos's opening one
	b = append(b[:len(b)-1], ',')
	return append(b, pos[1:]...), nil
}

// MarshalYAML flattens the node and adds x and y.
func (p Positioned) MarshalYAML() (any, error) {
	var doc yaml.Node
	if err := doc.Encode(p.Node); err != nil {
		return nil, err
	}
	var x, y yaml.Node
	if err := x.Encode(p.X); err != nil {
		return nil, err
	}
	if err := y.Encode(p.Y); err != nil {
		return nil, err
	}
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "x"}, &x,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "y"}, &y,
	)
	return &doc, nil
}

// Stats extends the boundary totals with what survived filtering.
type Stats struct {
	TotalNodes   int `json:"totalNodes" yaml:"totalNodes"`
	TotalEdges   int `json:"totalEdges" yaml:"totalEdges"`
	VisibleNodes int `json:"visibleNodes" yaml:"visibleNodes"`
	VisibleEdges int `json:"visibleEdges" yaml:"visibleEdges"`
}

// Scene is the renderer input.
type Scene struct {
	Visible taxonomy.Set   `json:"visible" yaml:"visible"`
	Nodes   []Positioned   `json:"positionedNodes" yaml:"positionedNodes"`
	Edges   []edges.Styled `json:"styledEdges" yaml:"styledEdges"`
	Rows    []layout.Row   `json:"rows" yaml:"rows"`
	Stats   Stats          `json:"stats" yaml:"stats"`
	index   map[string]int
}

// FilterByTier keeps groups, processes and nodes of unknown type, plus the leaf
// nodes whose type is in visible. Order is preserved.
func FilterByTier(nodes []kgraph.Node, visible taxonomy.Set) []kgraph.Node {
	out := make([]kgraph.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type.IsLeaf() && !visible.Has(n.Type) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Build runs the pipeline. It never fails: dangling edges are dropped and unknown
// types fall back to neutral styling. A nil snapshot yields an empty scene.
func Build(snap *kgraph.Snapshot, visible taxonomy.Set) *Scene {
	sc := &Scene{Visible: visible, index: make(map[string]int)}
	if snap == nil {
		return sc
	}

	nodes := FilterByTier(snap.Nodes, visible)
	res := layout.Compute(nodes)

	sc.Nodes = make([]Positioned, 0, len(res.Positions))
	for _, n := range nodes {
		if _, dup := sc.index[n.ID]; dup {
			continue
		}
		p := res.Positions[n.ID]
		sc.index[n.ID] = len(sc.Nodes)
		sc.Nodes = append(sc.Nodes, Positioned{Node: n, X: p.X, Y: p.Y})
	}
	sc.Edges = edges.Resolve(snap.Edges, edges.Visible(nodes))
	sc.Rows = res.Rows
	sc.Stats = Stats{
		TotalNodes:   snap.Stats.TotalNodes,
		TotalEdges:   snap.Stats.TotalEdges,
		VisibleNodes: len(sc.Nodes),
		VisibleEdges: len(sc.Edges),
	}
	return sc
}

// Node returns the positioned node with the given id.
func (s *Scene) Node(id string) (Positioned, bool) {
	i, ok := s.index[id]
	if !ok {
		return Positioned{}, false
	}
	return s.Nodes[i], true
}

// IDs returns the ids of the positioned nodes in scene order.
func (s *Scene) IDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}
