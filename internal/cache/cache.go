// Package cache keeps offline copies of a dashboard's knowledge graph as
// dataset files, so that a file source can stand in for an unreachable one.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"golang.org/x/sync/errgroup"
)

// Dir returns the cache directory path.
func Dir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "gridmap")
}

// Path returns the dataset file holding the copy of source.
func Path(source string) string {
	return filepath.Join(Dir(), sanitize(source)+".yaml")
}

// IsCached reports whether a copy of source exists.
func IsCached(source string) bool {
	_, err := os.Stat(Path(source))
	return err == nil
}

// Pull fetches every group of src with all leaf types, at most concurrency at
// a time, and merges the results in group order. The first failure stops it.
func Pull(ctx context.Context, src fetch.Source, concurrency int) (*kgraph.Snapshot, error) {
	groups, err := src.Groups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	snaps := make([]*kgraph.Snapshot, len(groups))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, group := range groups {
		g.Go(func() error {
			snap, err := src.Fetch(gctx, fetch.Request{GroupID: group.ID, Types: taxonomy.AllLeaves})
			if err != nil {
				return fmt.Errorf("group %s: %w", group.ID, err)
			}
			mu.Lock()
			snaps[i] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return kgraph.Merge(snaps...), nil
}

// Save writes snap as the copy of source and returns its path.
func Save(source string, snap *kgraph.Snapshot) (string, error) {
	data, err := kgraph.Encode(snap, kgraph.YAML)
	if err != nil {
		return "", err
	}
	path := Path(source)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	// write then rename so a reader never sees half a file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	return path, os.Rename(tmp, path)
}

func sanitize(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimRight(s, "/")
	r := strings.NewReplacer("/", "_", ":", "_", "@", "_", "?", "_", "\\", "_")
	return r.Replace(s)
}
