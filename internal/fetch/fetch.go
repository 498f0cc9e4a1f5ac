// Package fetch is the data boundary: it turns a (group, leaf types) request
// into a raw knowledge graph snapshot.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/msalah0e/gridmap/internal/config"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"go.uber.org/zap"
)

var (
	// ErrNoGroup is returned for a request without a group. No call is made.
	ErrNoGroup = errors.New("no group selected")
	// ErrGroupNotFound is returned when the group id matches no group node.
	ErrGroupNotFound = errors.New("group not found")
)

// Request scopes a fetch.
type Request struct {
	GroupID string
	Types   taxonomy.Set
}

// Key identifies requests that return the same snapshot.
func (r Request) Key() string {
	return r.GroupID + "?" + r.Types.Plurals()
}

// Fetcher returns the snapshot for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*kgraph.Snapshot, error)
}

// GroupLister lists the selectable groups.
type GroupLister interface {
	Groups(ctx context.Context) ([]kgraph.Node, error)
}

// Source is a Fetcher that also lists groups.
type Source interface {
	Fetcher
	GroupLister
}

// FromConfig builds the source selected by cfg.
func FromConfig(cfg config.SourceConfig, logger *zap.Logger) (Source, error) {
	switch cfg.Kind {
	case config.SourceHTTP:
		return NewHTTPClient(cfg.BaseURL, cfg.Token, cfg.Timeout.Std(), logger), nil
	case config.SourceFile:
		return OpenDataset(cfg.Dataset)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
