package kgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotJSON = `{
  "nodes": [
    {"id": "g1", "type": "group", "code": "B1", "label": "Development", "attributes": {"processCount": 2}},
    {"id": "p1", "type": "phases", "code": "P1", "attributes": {"groupCode": "B1", "order": 1}},
    {"id": "r1", "type": "risks", "label": "Grid curtailment", "attributes": {"severity": 4, "category": "grid"}},
    {"id": "d1", "type": "deliverable", "attributes": {"mandatory": false}},
    {"id": "x1", "type": "turbine", "attributes": {"rotor": 120}},
    {"id": "s1", "type": "skill"}
  ],
  "edges": [
    {"id": "e1", "source": "g1", "target": "p1", "relation": "contains"},
    {"id": "e2", "source": "p1", "target": "r1", "relation": "has_risk", "payload": {"weight": 2}}
  ]
}`

func TestDecodeJSONVariants(t *testing.T) {
	s, err := Decode([]byte(snapshotJSON), JSON)
	require.NoError(t, err)
	require.Len(t, s.Nodes, 6)

	g := s.Nodes[0]
	assert.Equal(t, taxonomy.Group, g.Type)
	ga, ok := g.Attributes.(*GroupAttributes)
	require.True(t, ok)
	assert.Equal(t, 2, *ga.ProcessCount)

	p := s.Nodes[1]
	assert.Equal(t, taxonomy.Process, p.Type, "plural french alias normalizes")
	assert.Equal(t, "process", p.TypeName())

	r := s.Nodes[2]
	ra, ok := r.Attributes.(*RiskAttributes)
	require.True(t, ok)
	assert.Equal(t, 4, *ra.Severity)
	assert.Equal(t, "grid", *ra.Category)
	assert.Nil(t, ra.Mitigation)

	d := s.Nodes[3].Attributes.(*DeliverableAttributes)
	require.NotNil(t, d.Mandatory)
	assert.False(t, *d.Mandatory)

	x := s.Nodes[4]
	assert.Equal(t, taxonomy.Unknown, x.Type)
	assert.Equal(t, "turbine", x.TypeName())
	assert.Equal(t, RawAttributes{"rotor": float64(120)}, x.Attributes)

	sk, ok := s.Nodes[5].Attributes.(*SkillAttributes)
	require.True(t, ok, "missing attributes still yield the typed variant")
	assert.Nil(t, sk.Pole)

	assert.Equal(t, Stats{TotalNodes: 6, TotalEdges: 2}, s.Stats)
	assert.Equal(t, map[string]any{"weight": float64(2)}, s.Edges[1].Payload)
}

func TestMarshalUsesCanonicalTag(t *testing.T) {
	n := Node{ID: "t1", Type: taxonomy.Tool, RawType: "outils", Attributes: &ToolAttributes{License: Ptr("MIT")}}
	b, err := Encode(n, JSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1","type":"tool","attributes":{"license":"MIT"}}`, string(b))
}

func TestDecodeYAML(t *testing.T) {
	doc := `
nodes:
  - id: st1
    type: normes
    label: IEC 61400
    attributes:
      issuingBody: IEC
      scope: wind turbines
  - id: tl1
    type: tool
edges:
  - id: e1
    source: p1
    target: st1
    relation: has_standard
stats:
  totalNodes: 40
  totalEdges: 12
`
	s, err := Decode([]byte(doc), YAML)
	require.NoError(t, err)
	require.Len(t, s.Nodes, 2)
	assert.Equal(t, taxonomy.Standard, s.Nodes[0].Type)
	sa := s.Nodes[0].Attributes.(*StandardAttributes)
	assert.Equal(t, "IEC", *sa.IssuingBody)
	assert.IsType(t, &ToolAttributes{}, s.Nodes[1].Attributes)
	assert.Equal(t, Stats{TotalNodes: 40, TotalEdges: 12}, s.Stats, "reported stats are kept")
}

func TestDecodeRejectsBadAttributes(t *testing.T) {
	_, err := Decode([]byte(`{"nodes":[{"id":"r","type":"risk","attributes":{"severity":"high"}}]}`), JSON)
	assert.Error(t, err)
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Nodes, 6)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.Equal(t, YAML, FormatOf("x.YML"))
	assert.Equal(t, JSON, FormatOf("x.txt"))
}

func TestRelations(t *testing.T) {
	for _, leaf := range taxonomy.Leaves {
		r := RelationFor(leaf)
		require.NotEmpty(t, r, leaf.String())
		back, ok := r.LeafType()
		require.True(t, ok)
		assert.Equal(t, leaf, back)
	}
	_, ok := Contains.LeafType()
	assert.False(t, ok)
	assert.Empty(t, RelationFor(taxonomy.Group))
}

func TestSnapshotLookups(t *testing.T) {
	s, err := Decode([]byte(snapshotJSON), JSON)
	require.NoError(t, err)

	n, ok := s.Node("r1")
	require.True(t, ok)
	assert.Equal(t, "Grid curtailment", n.Title())

	_, ok = s.Node("nope")
	assert.False(t, ok)

	assert.Len(t, s.OfType(taxonomy.Group), 1)
	assert.Equal(t, "P1", s.Nodes[1].Title())
	assert.Equal(t, "s1", s.Nodes[5].Title())

	var nilSnap *Snapshot
	assert.True(t, nilSnap.Empty())
}

func TestMerge(t *testing.T) {
	a := &Snapshot{
		Nodes: []Node{{ID: "g1", Label: "first"}, {ID: "p1"}},
		Edges: []Edge{{ID: "e1", Source: "g1", Target: "p1", Relation: Contains}},
		Stats: Stats{TotalNodes: 40, TotalEdges: 90},
	}
	b := &Snapshot{
		Nodes: []Node{{ID: "g1", Label: "second"}, {ID: "g2"}},
		Edges: []Edge{
			{ID: "e1", Source: "g1", Target: "p1", Relation: Contains},
			{Source: "g2", Target: "p1", Relation: Contains},
			{Source: "g2", Target: "p1", Relation: Contains},
		},
	}

	m := Merge(a, nil, b)
	require.Len(t, m.Nodes, 3)
	assert.Equal(t, "first", m.Nodes[0].Label)
	assert.Len(t, m.Edges, 2)
	assert.Equal(t, Stats{TotalNodes: 3, TotalEdges: 2}, m.Stats)
}
