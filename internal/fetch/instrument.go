package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/logging"
	"github.com/msalah0e/gridmap/internal/metrics"
	"go.uber.org/zap"
)

// Fetch outcomes as recorded in metrics.
const (
	StatusOK     = "ok"
	StatusEmpty  = "empty"
	StatusFailed = "error"
)

// Instrumented logs and measures every call of the wrapped source.
type Instrumented struct {
	next    Source
	name    string
	logger  *zap.Logger
	metrics *metrics.Registry
}

// Instrument wraps next. name labels the source in logs and metrics.
func Instrument(next Source, name string, logger *zap.Logger, m *metrics.Registry) *Instrumented {
	return &Instrumented{next: next, name: name, logger: logging.OrNop(logger), metrics: m}
}

// Fetch implements Fetcher.
func (f *Instrumented) Fetch(ctx context.Context, req Request) (*kgraph.Snapshot, error) {
	start := time.Now()
	snap, err := f.next.Fetch(ctx, req)
	elapsed := time.Since(start)

	status := StatusOK
	switch {
	case err != nil:
		status = StatusFailed
	case snap.Empty():
		status = StatusEmpty
	}
	f.metrics.RecordFetch(f.name, status, elapsed)

	fields := []zap.Field{
		zap.String("source", f.name),
		zap.String("group", req.GroupID),
		zap.Stringer("types", req.Types),
		zap.String("status", status),
		zap.Duration("elapsed", elapsed),
	}
	switch {
	case errors.Is(err, context.Canceled):
		f.logger.Debug("fetch canceled", fields...)
	case err != nil:
		f.logger.Warn("fetch failed", append(fields, zap.Error(err))...)
	default:
		f.logger.Debug("fetch", append(fields, zap.Int("nodes", len(snap.Nodes)), zap.Int("edges", len(snap.Edges)))...)
	}
	return snap, err
}

// Groups implements GroupLister.
func (f *Instrumented) Groups(ctx context.Context) ([]kgraph.Node, error) {
	groups, err := f.next.Groups(ctx)
	if err != nil {
		f.logger.Warn("list groups failed", zap.String("source", f.name), zap.Error(err))
	}
	return groups, err
}
