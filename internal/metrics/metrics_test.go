package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFetch(t *testing.T) {
	r := NewRegistry()
	r.RecordFetch("http", "ok", 20*time.Millisecond)
	r.RecordFetch("http", "ok", 30*time.Millisecond)
	r.RecordFetch("http", "error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.FetchTotal.WithLabelValues("http", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchTotal.WithLabelValues("http", "error")))
}

func TestRecordScene(t *testing.T) {
	r := NewRegistry()
	r.RecordScene(6, 5)
	r.RecordScene(3, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.SceneBuilds))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.SceneVisibleNodes))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.SceneVisibleEdges))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.RecordFetch("file", "ok", time.Second)
		r.RecordSuperseded()
		r.RecordScene(1, 1)
		r.RecordHTTPRequest("GET", "/api/scene", "200", time.Second)
	})
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordSuperseded()
	r.RecordHTTPRequest("GET", "/api/scene", "200", time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "gridmap_fetch_superseded_total 1")
	assert.Contains(t, string(body), `gridmap_http_requests_total{method="GET",path="/api/scene",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
