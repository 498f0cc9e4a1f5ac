// Package kgraph holds the raw knowledge graph model exchanged with the data
// fetch boundary: typed nodes, relations and per-group snapshots.
package kgraph

import (
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// Node is a typed entity of the knowledge graph.
type Node struct {
	ID          string
	Type        taxonomy.Type
	RawType     string // tag as received; differs from Type.String() for unknown types
	Code        string
	Label       string
	Description string
	Attributes  Attributes
}

// TypeName returns the tag to display for the node.
func (n Node) TypeName() string {
	if n.Type == taxonomy.Unknown && n.RawType != "" {
		return n.RawType
	}
	return n.Type.String()
}

// Title returns the label, falling back to the code and then the id.
func (n Node) Title() string {
	switch {
	case n.Label != "":
		return n.Label
	case n.Code != "":
		return n.Code
	default:
		return n.ID
	}
}

// Relation tags an edge.
type Relation string

const (
	Contains       Relation = "contains"
	HasStandard    Relation = "has_standard"
	HasRisk        Relation = "has_risk"
	HasDeliverable Relation = "has_deliverable"
	UsesTool       Relation = "uses_tool"
	RequiresSkill  Relation = "requires_skill"
)

var leafRelations = map[Relation]taxonomy.Type{
	HasStandard:    taxonomy.Standard,
	HasRisk:        taxonomy.Risk,
	HasDeliverable: taxonomy.Deliverable,
	UsesTool:       taxonomy.Tool,
	RequiresSkill:  taxonomy.Skill,
}

// LeafType returns the leaf type a process→leaf relation points at.
func (r Relation) LeafType() (taxonomy.Type, bool) {
	t, ok := leafRelations[r]
	return t, ok
}

// RelationFor returns the process→leaf relation for a leaf type, or "" for
// non-leaf types.
func RelationFor(leaf taxonomy.Type) Relation {
	for r, t := range leafRelations {
		if t == leaf {
			return r
		}
	}
	return ""
}

// Edge is a directed relation between two nodes.
type Edge struct {
	ID       string         `json:"id" yaml:"id"`
	Source   string         `json:"source" yaml:"source"`
	Target   string         `json:"target" yaml:"target"`
	Relation Relation       `json:"relation" yaml:"relation"`
	Payload  map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Stats holds the totals reported by the fetch boundary.
type Stats struct {
	TotalNodes int `json:"totalNodes" yaml:"totalNodes"`
	TotalEdges int `json:"totalEdges" yaml:"totalEdges"`
}

// Snapshot is the raw graph returned by one fetch. It is replaced wholesale on
// every fetch and never patched.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
	Stats Stats  `json:"stats" yaml:"stats"`
}

// Empty reports whether the snapshot carries no nodes.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Nodes) == 0
}

// Node returns the first node with the given id.
func (s *Snapshot) Node(id string) (Node, bool) {
	if s == nil {
		return Node{}, false
	}
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// OfType returns the nodes of type t in snapshot order.
func (s *Snapshot) OfType(t taxonomy.Type) []Node {
	if s == nil {
		return nil
	}
	var out []Node
	for _, n := range s.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Count fills Stats from the node and edge lists when the source left them empty.
func (s *Snapshot) Count() {
	if s.Stats.TotalNodes == 0 {
		s.Stats.TotalNodes = len(s.Nodes)
	}
	if s.Stats.TotalEdges == 0 {
		s.Stats.TotalEdges = len(s.Edges)
	}
}

// Merge combines snapshots into one graph. A node or edge seen twice keeps its
// first occurrence; edges without an id are told apart by endpoints and
// relation. Stats count the merged lists.
func Merge(snaps ...*Snapshot) *Snapshot {
	out := &Snapshot{}
	nodes := make(map[string]struct{})
	edges := make(map[string]struct{})
	for _, s := range snaps {
		if s == nil {
			continue
		}
		for _, n := range s.Nodes {
			if _, dup := nodes[n.ID]; dup {
				continue
			}
			nodes[n.ID] = struct{}{}
			out.Nodes = append(out.Nodes, n)
		}
		for _, e := range s.Edges {
			key := e.ID
			if key == "" {
				key = e.Source + "\x00" + e.Target + "\x00" + string(e.Relation)
			}
			if _, dup := edges[key]; dup {
				continue
			}
			edges[key] = struct{}{}
			out.Edges = append(out.Edges, e)
		}
	}
	out.Count()
	return out
}
