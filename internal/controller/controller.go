// Package controller holds the visibility and selection state of one graph
// view and derives the scene from the last fetched snapshot.
//
// Fields are replaced wholesale under a mutex. Fetches run outside the lock;
// each one carries a generation number and its result is dropped if a newer
// fetch started meanwhile, so a slow early answer never overwrites a later one.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/msalah0e/gridmap/internal/detail"
	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/logging"
	"github.com/msalah0e/gridmap/internal/metrics"
	"github.com/msalah0e/gridmap/internal/scene"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"go.uber.org/zap"
)

// ErrUnknownNode is returned when selecting an id that is not on screen.
var ErrUnknownNode = errors.New("node not in current view")

// Status is the lifecycle of the current view.
type Status int

const (
	NoGroup Status = iota
	Loading
	Ready
	Empty
	Failed
)

var statusNames = [...]string{"no-group", "loading", "ready", "empty", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// State is a consistent copy of the controller fields plus the derived scene.
type State struct {
	Status  Status
	GroupID string
	Visible taxonomy.Set
	// Scene is nil when there is no snapshot to draw.
	Scene *scene.Scene
	// Selected and Detail are nil when nothing is selected.
	Selected *kgraph.Node
	Detail   *detail.Panel
	Err      error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = logging.OrNop(l) }
}

// WithMetrics records superseded fetches and scene sizes.
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithObserver registers fn to run after every state change. fn runs on the
// goroutine that made the change, without the lock held.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// WithLocale sets the locale of the detail panel.
func WithLocale(l taxonomy.Locale) Option {
	return func(c *Controller) { c.locale = l }
}

// WithVisible sets the initial visible leaf types.
func WithVisible(s taxonomy.Set) Option {
	return func(c *Controller) { c.visible = s }
}

// Controller is safe for concurrent use.
type Controller struct {
	fetcher   fetch.Fetcher
	logger    *zap.Logger
	metrics   *metrics.Registry
	observers []func(State)
	locale    taxonomy.Locale

	mu        sync.Mutex
	group     string
	visible   taxonomy.Set
	requested taxonomy.Set
	snapshot  *kgraph.Snapshot
	status    Status
	err       error
	selected  *kgraph.Node
	gen       uint64
}

// New returns a controller with no group selected.
func New(f fetch.Fetcher, opts ...Option) *Controller {
	c := &Controller{fetcher: f, logger: zap.NewNop(), status: NoGroup}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectGroup replaces the scope and fetches it. The previous snapshot is
// dropped at once. An empty id selects nothing: no fetch, no layout. The
// returned error is the fetch error, if the result was not superseded.
func (c *Controller) SelectGroup(ctx context.Context, id string) error {
	c.mu.Lock()
	c.group = id
	c.snapshot = nil
	c.err = nil
	c.gen++
	if id == "" {
		c.status = NoGroup
		c.mu.Unlock()
		c.notify()
		return nil
	}
	gen, req := c.beginLocked()
	c.mu.Unlock()
	c.notify()

	return c.load(ctx, gen, req)
}

// ToggleLeafType flips t in the visible set. It never touches the selection.
// Turning on a type that the last request did not ask for fetches again.
func (c *Controller) ToggleLeafType(ctx context.Context, t taxonomy.Type) error {
	if !t.IsLeaf() {
		return fmt.Errorf("%s is not a leaf type", t)
	}
	c.mu.Lock()
	return c.setVisibleLocked(ctx, c.visible.Toggle(t))
}

// SetVisible replaces the visible set, fetching again if it asks for types
// the last request did not.
func (c *Controller) SetVisible(ctx context.Context, s taxonomy.Set) error {
	c.mu.Lock()
	return c.setVisibleLocked(ctx, s)
}

// setVisibleLocked is entered with c.mu held and releases it.
func (c *Controller) setVisibleLocked(ctx context.Context, s taxonomy.Set) error {
	c.visible = s
	if c.group == "" || c.requested.Contains(s) {
		c.mu.Unlock()
		c.notify()
		return nil
	}
	c.gen++
	gen, req := c.beginLocked()
	c.mu.Unlock()
	c.notify()

	return c.load(ctx, gen, req)
}

// Refresh fetches the current scope again. Without a group it does nothing.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.group == "" {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen, req := c.beginLocked()
	c.mu.Unlock()
	c.notify()

	return c.load(ctx, gen, req)
}

// SelectNode selects a node of the current view and keeps a copy of it.
// Selecting the node that is already selected changes nothing.
func (c *Controller) SelectNode(id string) error {
	c.mu.Lock()
	if c.selected != nil && c.selected.ID == id {
		c.mu.Unlock()
		return nil
	}
	n, ok := c.snapshot.Node(id)
	if !ok || (n.Type.IsLeaf() && !c.visible.Has(n.Type)) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	c.selected = &n
	c.mu.Unlock()
	c.notify()
	return nil
}

// ClearSelection deselects. It is the only way a selection ends.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return
	}
	c.selected = nil
	c.mu.Unlock()
	c.notify()
}

// State returns the current state. The scene is recomputed on every call.
func (c *Controller) State() State {
	c.mu.Lock()
	st := State{
		Status:  c.status,
		GroupID: c.group,
		Visible: c.visible,
		Err:     c.err,
	}
	snap := c.snapshot
	if c.selected != nil {
		sel := *c.selected
		st.Selected = &sel
	}
	c.mu.Unlock()

	if snap != nil {
		st.Scene = scene.Build(snap, st.Visible)
		c.metrics.RecordScene(st.Scene.Stats.VisibleNodes, st.Scene.Stats.VisibleEdges)
	}
	if st.Selected != nil {
		p := detail.Build(*st.Selected, c.locale)
		st.Detail = &p
	}
	return st
}

// beginLocked marks the start of the fetch of generation c.gen.
func (c *Controller) beginLocked() (uint64, fetch.Request) {
	c.status = Loading
	c.requested = c.visible
	return c.gen, fetch.Request{GroupID: c.group, Types: c.visible}
}

// load runs the fetch and applies its result unless a newer fetch began.
// Every generation fetches on its own, with its caller's context; an older
// call for the same key is never joined.
func (c *Controller) load(ctx context.Context, gen uint64, req fetch.Request) error {
	snap, err := c.fetcher.Fetch(ctx, req)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.metrics.RecordSuperseded()
		c.logger.Debug("fetch superseded", zap.String("key", req.Key()), zap.Uint64("gen", gen))
		return nil
	}
	switch {
	case err != nil:
		c.status, c.snapshot, c.err = Failed, nil, err
	case snap.Empty():
		c.status, c.snapshot, c.err = Empty, nil, nil
	default:
		c.status, c.snapshot, c.err = Ready, snap, nil
	}
	status := c.status
	c.mu.Unlock()

	c.logger.Debug("fetch applied",
		zap.String("key", req.Key()),
		zap.Stringer("status", status),
		zap.Uint64("gen", gen),
	)
	c.notify()
	return err
}

func (c *Controller) notify() {
	if len(c.observers) == 0 {
		return
	}
	st := c.State()
	for _, fn := range c.observers {
		fn(st)
	}
}
