package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/msalah0e/gridmap/internal/config"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/metrics"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const sample = "testdata/windfarm.yaml"

func ids(s *kgraph.Snapshot) []string {
	out := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		out[i] = n.ID
	}
	return out
}

func TestRequestKey(t *testing.T) {
	a := Request{GroupID: "b1", Types: taxonomy.NewSet(taxonomy.Tool, taxonomy.Risk)}
	b := Request{GroupID: "b1", Types: taxonomy.NewSet(taxonomy.Risk, taxonomy.Tool)}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "b1?risks,tools", a.Key())
	assert.NotEqual(t, a.Key(), Request{GroupID: "b1"}.Key())
}

func TestDatasetScopesByGroup(t *testing.T) {
	d, err := OpenDataset(sample)
	require.NoError(t, err)

	snap, err := d.Fetch(context.Background(), Request{GroupID: "b1", Types: taxonomy.NewSet(taxonomy.Risk, taxonomy.Tool)})
	require.NoError(t, err)

	assert.Equal(t, []string{"b1", "p1", "p2", "r1", "r2", "t1"}, ids(snap))
	for _, e := range snap.Edges {
		assert.NotEqual(t, "e3", e.ID, "edges of other groups are left out")
	}
	assert.Len(t, snap.Edges, 5)
	assert.Equal(t, kgraph.Stats{TotalNodes: 6, TotalEdges: 5}, snap.Stats)
}

func TestDatasetNormalizesTypeAliases(t *testing.T) {
	d, err := OpenDataset(sample)
	require.NoError(t, err)

	snap, err := d.Fetch(context.Background(), Request{GroupID: "b2", Types: taxonomy.NewSet(taxonomy.Skill)})
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "p3", "k1"}, ids(snap))

	n, ok := snap.Node("b2")
	require.True(t, ok)
	assert.Equal(t, taxonomy.Group, n.Type)
	assert.Equal(t, "bloc", n.RawType)
}

func TestDatasetNoLeafTypes(t *testing.T) {
	d, err := OpenDataset(sample)
	require.NoError(t, err)

	snap, err := d.Fetch(context.Background(), Request{GroupID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "p1", "p2"}, ids(snap))
}

func TestDatasetErrors(t *testing.T) {
	d, err := OpenDataset(sample)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = d.Fetch(ctx, Request{})
	assert.ErrorIs(t, err, ErrNoGroup)

	_, err = d.Fetch(ctx, Request{GroupID: "p1"})
	assert.ErrorIs(t, err, ErrGroupNotFound)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = d.Fetch(canceled, Request{GroupID: "b1"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = OpenDataset("testdata/missing.json")
	assert.Error(t, err)
}

func TestDatasetGroups(t *testing.T) {
	d, err := OpenDataset(sample)
	require.NoError(t, err)

	groups, err := d.Groups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Development", groups[0].Label)
	assert.Equal(t, "Construction", groups[1].Label)
}

func TestHTTPClientFetch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"nodes": [{"id": "b1", "type": "group"}, {"id": "r1", "type": "risks", "attributes": {"severity": 2}}],
			"edges": [{"id": "e1", "source": "b1", "target": "r1", "relation": "has_risk"}],
			"stats": {"totalNodes": 40, "totalEdges": 60}
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", "s3cret", time.Second, zap.NewNop())
	snap, err := c.Fetch(context.Background(), Request{GroupID: "b1", Types: taxonomy.NewSet(taxonomy.Tool, taxonomy.Risk)})
	require.NoError(t, err)

	assert.Equal(t, "/api/knowledge-graph", got.URL.Path)
	assert.Equal(t, "b1", got.URL.Query().Get("group"))
	assert.Equal(t, "risks,tools", got.URL.Query().Get("types"))
	assert.Equal(t, "Bearer s3cret", got.Header.Get("Authorization"))
	_, err = uuid.Parse(got.Header.Get("X-Request-ID"))
	assert.NoError(t, err)

	assert.Equal(t, []string{"b1", "r1"}, ids(snap))
	assert.Equal(t, taxonomy.Risk, snap.Nodes[1].Type)
	assert.Equal(t, &kgraph.RiskAttributes{Severity: kgraph.Ptr(2)}, snap.Nodes[1].Attributes)
	assert.Equal(t, kgraph.Stats{TotalNodes: 40, TotalEdges: 60}, snap.Stats)
}

func TestHTTPClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown group", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second, nil)
	_, err := c.Fetch(context.Background(), Request{GroupID: "nope"})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "unknown group", se.Body)
	assert.Contains(t, err.Error(), "404 Not Found: unknown group")
}

func TestHTTPClientNoGroupMakesNoRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "", time.Second, nil).Fetch(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoGroup)
	assert.Zero(t, calls)
}

func TestHTTPClientGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/knowledge-graph/groups", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "b1", "type": "group", "code": "B1"},
			{"id": "b2", "type": "blocs", "code": "B2"},
		})
	}))
	defer srv.Close()

	groups, err := NewHTTPClient(srv.URL, "", time.Second, nil).Groups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, taxonomy.Group, groups[1].Type)
}

func TestHTTPClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"nodes": [`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "", time.Second, nil).Fetch(context.Background(), Request{GroupID: "b1"})
	assert.ErrorContains(t, err, "graph parse")
}

type stubSource struct {
	snap *kgraph.Snapshot
	err  error
}

func (s stubSource) Fetch(context.Context, Request) (*kgraph.Snapshot, error) { return s.snap, s.err }
func (s stubSource) Groups(context.Context) ([]kgraph.Node, error)            { return nil, s.err }

func TestInstrumented(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reg := metrics.NewRegistry()
	ctx := context.Background()

	full := &kgraph.Snapshot{Nodes: []kgraph.Node{{ID: "b1", Type: taxonomy.Group}}}
	_, err := Instrument(stubSource{snap: full}, "file", zap.New(core), reg).Fetch(ctx, Request{GroupID: "b1"})
	require.NoError(t, err)
	_, err = Instrument(stubSource{snap: &kgraph.Snapshot{}}, "file", zap.New(core), reg).Fetch(ctx, Request{GroupID: "b1"})
	require.NoError(t, err)
	_, err = Instrument(stubSource{err: errors.New("boom")}, "file", zap.New(core), reg).Fetch(ctx, Request{GroupID: "b1"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.FetchTotal.WithLabelValues("file", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.FetchTotal.WithLabelValues("file", StatusEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.FetchTotal.WithLabelValues("file", StatusFailed)))

	failed := logs.FilterMessage("fetch failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "b1", failed[0].ContextMap()["group"])
}

func TestFromConfig(t *testing.T) {
	src, err := FromConfig(config.SourceConfig{Kind: config.SourceFile, Dataset: sample}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Dataset{}, src)

	src, err = FromConfig(config.SourceConfig{Kind: config.SourceHTTP, BaseURL: "http://example.test", Timeout: config.Duration(time.Second)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", src.(*HTTPClient).BaseURL)

	_, err = FromConfig(config.SourceConfig{Kind: "ftp"}, nil)
	assert.Error(t, err)
}
