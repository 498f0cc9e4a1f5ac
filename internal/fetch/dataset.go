package fetch

import (
	"context"
	"fmt"

	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// Dataset serves requests from a whole knowledge graph held in memory, scoped
// the way the dashboard API scopes them.
type Dataset struct {
	graph *kgraph.Snapshot
}

// OpenDataset loads a JSON or YAML dataset file.
func OpenDataset(path string) (*Dataset, error) {
	snap, err := kgraph.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return NewDataset(snap), nil
}

// NewDataset wraps an already decoded graph.
func NewDataset(graph *kgraph.Snapshot) *Dataset {
	if graph == nil {
		graph = &kgraph.Snapshot{}
	}
	return &Dataset{graph: graph}
}

// Groups implements GroupLister.
func (d *Dataset) Groups(ctx context.Context) ([]kgraph.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.graph.OfType(taxonomy.Group), nil
}

// Fetch implements Fetcher. The result holds the group, the processes it
// contains, the leaves of the requested types attached to those processes, and
// every edge between kept nodes.
func (d *Dataset) Fetch(ctx context.Context, req Request) (*kgraph.Snapshot, error) {
	if req.GroupID == "" {
		return nil, ErrNoGroup
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byID := make(map[string]kgraph.Node, len(d.graph.Nodes))
	for _, n := range d.graph.Nodes {
		if _, dup := byID[n.ID]; !dup {
			byID[n.ID] = n
		}
	}
	if g, ok := byID[req.GroupID]; !ok || g.Type != taxonomy.Group {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, req.GroupID)
	}

	keep := map[string]bool{req.GroupID: true}
	for _, e := range d.graph.Edges {
		if e.Relation == kgraph.Contains && e.Source == req.GroupID && byID[e.Target].Type == taxonomy.Process {
			keep[e.Target] = true
		}
	}
	for _, e := range d.graph.Edges {
		if !keep[e.Source] || byID[e.Source].Type != taxonomy.Process {
			continue
		}
		if t := byID[e.Target].Type; t.IsLeaf() && req.Types.Has(t) {
			keep[e.Target] = true
		}
	}

	out := &kgraph.Snapshot{}
	seen := make(map[string]bool, len(keep))
	for _, n := range d.graph.Nodes {
		if keep[n.ID] && !seen[n.ID] {
			seen[n.ID] = true
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range d.graph.Edges {
		if keep[e.Source] && keep[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	out.Count()
	return out, nil
}
