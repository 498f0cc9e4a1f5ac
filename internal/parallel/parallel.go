// Package parallel runs independent jobs, such as per-group exports, with a
// concurrency limit and reports their progress.
package parallel

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/msalah0e/gridmap/internal/ui"
	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of a parallel task.
type Result struct {
	Name    string
	OK      bool
	Err     error
	Output  string
	Elapsed time.Duration
}

// Task is a function that runs in parallel.
type Task struct {
	Name string
	Fn   func(ctx context.Context) (string, error)
}

// Run executes tasks with the given concurrency limit, printing one progress
// line per event to w (nil for silence). Results come back in submission
// order. A failing task never stops the others; once ctx is done the tasks
// not yet started fail with its error.
func Run(ctx context.Context, w io.Writer, tasks []Task, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 4
	}
	if w == nil {
		w = io.Discard
	}

	results := make([]Result, len(tasks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				mu.Lock()
				results[i] = Result{Name: task.Name, Err: err}
				mu.Unlock()
				return nil
			}

			start := time.Now()
			mu.Lock()
			fmt.Fprintf(w, "  %s %s...\n", ui.Subtle.Sprint("⟳"), task.Name)
			mu.Unlock()

			output, err := task.Fn(gctx)
			elapsed := time.Since(start)

			mu.Lock()
			results[i] = Result{Name: task.Name, OK: err == nil, Err: err, Output: output, Elapsed: elapsed}
			if err != nil {
				fmt.Fprintf(w, "  %s %s %s\n", ui.StatusIcon(false), task.Name, ui.Bad.Sprintf("(%v)", err))
			} else {
				fmt.Fprintf(w, "  %s %s %s %s\n", ui.StatusIcon(true), task.Name, output, ui.Subtle.Sprintf("%.1fs", elapsed.Seconds()))
			}
			mu.Unlock()

			return nil // collect results, never fail the group
		})
	}

	_ = g.Wait()
	return results
}

// Failed counts the results that did not succeed.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}
