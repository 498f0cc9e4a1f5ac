// Package api serves scenes, node details and the taxonomy over HTTP for web
// and list-only renderers. Every request builds its scene from a fresh fetch;
// concurrent requests for the same scope share one.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/msalah0e/gridmap/internal/detail"
	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/logging"
	"github.com/msalah0e/gridmap/internal/metrics"
	"github.com/msalah0e/gridmap/internal/scene"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Options configures a Server.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Registry
	// Visible applies when a request has no types parameter.
	Visible taxonomy.Set
	// Locale applies when a request has no locale parameter.
	Locale taxonomy.Locale
}

// Server is the HTTP renderer surface.
type Server struct {
	src     fetch.Source
	logger  *zap.Logger
	metrics *metrics.Registry
	visible taxonomy.Set
	locale  taxonomy.Locale
	started time.Time
	flight  singleflight.Group
}

// New returns a server reading from src.
func New(src fetch.Source, opts Options) *Server {
	return &Server{
		src:     src,
		logger:  logging.OrNop(opts.Logger),
		metrics: opts.Metrics,
		visible: opts.Visible,
		locale:  opts.Locale,
		started: time.Now(),
	}
}

// Handler returns the routed handler wrapped in logging and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/taxonomy", s.handleTaxonomy)
	mux.HandleFunc("GET /api/groups", s.handleGroups)
	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("GET /api/nodes/{id}", s.handleNode)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s.instrument(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()
	s.logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// TaxonomyEntry is one type of the taxonomy as served to list-only clients.
type TaxonomyEntry struct {
	Type   taxonomy.Type  `json:"type"`
	Plural string         `json:"plural"`
	Label  string         `json:"label"`
	Color  taxonomy.Color `json:"color"`
	Icon   string         `json:"icon"`
	Leaf   bool           `json:"leaf"`
}

// Taxonomy lists every known type in tier order.
func Taxonomy(loc taxonomy.Locale) []TaxonomyEntry {
	out := make([]TaxonomyEntry, 0, len(taxonomy.All))
	for _, t := range taxonomy.All {
		out = append(out, TaxonomyEntry{
			Type:   t,
			Plural: t.Plural(),
			Label:  taxonomy.LabelOf(t, loc),
			Color:  taxonomy.ColorOf(t),
			Icon:   taxonomy.IconOf(t).Name,
			Leaf:   t.IsLeaf(),
		})
	}
	return out
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, Taxonomy(s.localeOf(r)))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.src.Groups(r.Context())
	if err != nil {
		s.respondFetchError(w, err)
		return
	}
	if groups == nil {
		groups = []kgraph.Node{}
	}
	s.respondJSON(w, http.StatusOK, groups)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.buildScene(w, r)
	if !ok {
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.respondJSON(w, http.StatusOK, sc)
	case "yaml":
		b, err := kgraph.Encode(sc, kgraph.YAML)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(b)
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(sc.ExportDOT(r.URL.Query().Get("group"))))
	case "html":
		page, err := sc.ExportHTML(r.URL.Query().Get("group"), s.localeOf(r))
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	default:
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.buildScene(w, r)
	if !ok {
		return
	}
	n, found := sc.Node(r.PathValue("id"))
	if !found {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("node %q is not visible in this scene", r.PathValue("id")))
		return
	}
	s.respondJSON(w, http.StatusOK, struct {
		detail.Panel
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}{detail.Build(n.Node, s.localeOf(r)), n.X, n.Y})
}

// buildScene fetches the group and types named by the query. It writes the
// error response itself and reports whether the caller may go on.
func (s *Server) buildScene(w http.ResponseWriter, r *http.Request) (*scene.Scene, bool) {
	q := r.URL.Query()
	group := q.Get("group")
	if group == "" {
		s.respondError(w, http.StatusBadRequest, "group is required")
		return nil, false
	}
	visible := s.visible
	if q.Has("types") {
		var err error
		if visible, err = taxonomy.ParseSet(q.Get("types")); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}

	snap, err := s.fetch(r.Context(), fetch.Request{GroupID: group, Types: visible})
	if err != nil {
		s.respondFetchError(w, err)
		return nil, false
	}
	sc := scene.Build(snap, visible)
	s.metrics.RecordScene(sc.Stats.VisibleNodes, sc.Stats.VisibleEdges)
	return sc, true
}

// fetch joins an identical call already in flight. The shared call does not
// inherit any one client's cancellation; each caller still stops waiting when
// its own context ends.
func (s *Server) fetch(ctx context.Context, req fetch.Request) (*kgraph.Snapshot, error) {
	ch := s.flight.DoChan(req.Key(), func() (any, error) {
		return s.src.Fetch(context.WithoutCancel(ctx), req)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*kgraph.Snapshot), nil
	}
}

func (s *Server) localeOf(r *http.Request) taxonomy.Locale {
	if l := r.URL.Query().Get("locale"); l != "" {
		return taxonomy.ParseLocale(l)
	}
	if l := r.Header.Get("Accept-Language"); l != "" {
		return taxonomy.ParseLocale(l)
	}
	return s.locale
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) respondFetchError(w http.ResponseWriter, err error) {
	var se *fetch.StatusError
	switch {
	case errors.Is(err, fetch.ErrGroupNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.respondError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
