package scene

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/layout"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// scenarioA: 1 group, 2 processes, 3 risks, no tools.
func scenarioA() *kgraph.Snapshot {
	s := &kgraph.Snapshot{
		Nodes: []kgraph.Node{
			{ID: "g", Type: taxonomy.Group, Label: "Development"},
			{ID: "p1", Type: taxonomy.Process},
			{ID: "p2", Type: taxonomy.Process},
			{ID: "r1", Type: taxonomy.Risk, Attributes: &kgraph.RiskAttributes{Severity: kgraph.Ptr(3)}},
			{ID: "r2", Type: taxonomy.Risk},
			{ID: "r3", Type: taxonomy.Risk},
		},
		Edges: []kgraph.Edge{
			{ID: "c1", Source: "g", Target: "p1", Relation: kgraph.Contains},
			{ID: "c2", Source: "g", Target: "p2", Relation: kgraph.Contains},
			{ID: "h1", Source: "p1", Target: "r1", Relation: kgraph.HasRisk},
			{ID: "h2", Source: "p2", Target: "r2", Relation: kgraph.HasRisk},
			{ID: "h3", Source: "p2", Target: "r3", Relation: kgraph.HasRisk},
			{ID: "dangling", Source: "p2", Target: "t9", Relation: kgraph.UsesTool},
		},
	}
	s.Count()
	return s
}

func TestBuildScenarioA(t *testing.T) {
	sc := Build(scenarioA(), taxonomy.NewSet(taxonomy.Risk, taxonomy.Tool))

	require.Len(t, sc.Nodes, 6)
	require.Len(t, sc.Rows, 1, "no tool row without tool nodes")
	assert.Equal(t, taxonomy.Risk, sc.Rows[0].Type)

	for _, id := range []string{"r1", "r2", "r3"} {
		n, ok := sc.Node(id)
		require.True(t, ok)
		assert.Equal(t, layout.LeafY, n.Y)
	}
	assert.Len(t, sc.Edges, 5, "the dangling tool edge is dropped")
	assert.Equal(t, Stats{TotalNodes: 6, TotalEdges: 6, VisibleNodes: 6, VisibleEdges: 5}, sc.Stats)
}

func TestBuildHidesLeavesAndTheirEdges(t *testing.T) {
	sc := Build(scenarioA(), 0)

	assert.Equal(t, []string{"g", "p1", "p2"}, sc.IDs())
	for _, e := range sc.Edges {
		assert.Equal(t, kgraph.Contains, e.Relation)
	}
	assert.Empty(t, sc.Rows)
	_, ok := sc.Node("r1")
	assert.False(t, ok)
}

func TestBuildNilSnapshot(t *testing.T) {
	sc := Build(nil, taxonomy.AllLeaves)
	assert.Empty(t, sc.Nodes)
	assert.Empty(t, sc.Edges)
}

func TestFilterByTierKeepsUnknownTypes(t *testing.T) {
	nodes := []kgraph.Node{{ID: "x", RawType: "turbine"}, {ID: "s", Type: taxonomy.Skill}}
	got := FilterByTier(nodes, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ID)
}

func TestPositionedJSON(t *testing.T) {
	p := Positioned{Node: kgraph.Node{ID: "r1", Type: taxonomy.Risk}, X: -80, Y: 400}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"r1","type":"risk","x":-80,"y":400}`, string(b))
}

func TestPositionedYAML(t *testing.T) {
	p := Positioned{Node: kgraph.Node{ID: "r1", Type: taxonomy.Risk}, X: 10, Y: 400}
	b, err := yaml.Marshal(p)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Equal(t, "r1", back["id"])
	assert.Equal(t, "risk", back["type"])
	assert.EqualValues(t, 10, back["x"])
	assert.EqualValues(t, 400, back["y"])
}

func TestSceneJSONShape(t *testing.T) {
	sc := Build(scenarioA(), taxonomy.NewSet(taxonomy.Risk))
	b, err := json.Marshal(sc)
	require.NoError(t, err)

	var doc struct {
		Visible         string           `json:"visible"`
		PositionedNodes []map[string]any `json:"positionedNodes"`
		StyledEdges     []map[string]any `json:"styledEdges"`
		Stats           map[string]int   `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "risks", doc.Visible)
	assert.Len(t, doc.PositionedNodes, 6)
	assert.Equal(t, true, doc.StyledEdges[0]["animated"])
	assert.Equal(t, string(taxonomy.ColorOf(taxonomy.Process)), doc.StyledEdges[0]["color"])
	assert.Equal(t, 5, doc.Stats["visibleEdges"])
}

func TestExportDOT(t *testing.T) {
	dot := Build(scenarioA(), taxonomy.NewSet(taxonomy.Risk)).ExportDOT("B1")
	assert.True(t, strings.HasPrefix(dot, `digraph "B1" {`))
	assert.Contains(t, dot, `"g" [label="Development\n(group)"`)
	assert.Contains(t, dot, `pos="-140,0!"`)
	assert.Contains(t, dot, `"g" -> "p1" [label="contains"`)
	assert.NotContains(t, dot, "dangling")
}

func TestExportDOTWritesUTF8(t *testing.T) {
	snap := &kgraph.Snapshot{Nodes: []kgraph.Node{
		{ID: "g", Type: taxonomy.Group, Label: `Étude "préalable" \ A`},
	}}
	dot := Build(snap, taxonomy.NewSet()).ExportDOT("Bloc é")
	assert.True(t, strings.HasPrefix(dot, `digraph "Bloc é" {`))
	assert.Contains(t, dot, `"g" [label="Étude \"préalable\" \\ A\n(group)"`)
	assert.NotContains(t, dot, `\u00`)
}

func TestExportHTML(t *testing.T) {
	page, err := Build(scenarioA(), taxonomy.NewSet(taxonomy.Risk)).ExportHTML("B1 <dev>", taxonomy.French)
	require.NoError(t, err)
	assert.Contains(t, page, "<title>B1 &lt;dev&gt;</title>")
	assert.Contains(t, page, `"id":"r1"`)
	assert.Contains(t, page, `"label":"Gravité","value":"3/5"`)
	assert.Contains(t, page, "Risque")
	assert.NotContains(t, page, "Outil", "hidden leaf types are left out of the legend")
}

func TestVisibilityRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("toggling a type off and on restores the visible nodes", prop.ForAll(
		func(kinds []int, raw uint8, i int) bool {
			snap := &kgraph.Snapshot{}
			for j, k := range kinds {
				snap.Nodes = append(snap.Nodes, kgraph.Node{ID: fmt.Sprintf("n%d", j), Type: taxonomy.Type(k)})
			}
			visible := taxonomy.Set(raw) & taxonomy.AllLeaves
			leaf := taxonomy.Leaves[i]

			before := Build(snap, visible)
			after := Build(snap, visible.Toggle(leaf).Toggle(leaf))
			return cmp.Equal(before.IDs(), after.IDs()) &&
				cmp.Equal(before.Rows, after.Rows)
		},
		gen.SliceOf(gen.IntRange(0, len(taxonomy.All))),
		gen.UInt8(),
		gen.IntRange(0, len(taxonomy.Leaves)-1),
	))

	properties.TestingRun(t)
}
