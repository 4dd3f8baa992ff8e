// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docgen/internal/placeholder"
	"github.com/pdiddy/docgen/pkg/types"
)

// ErrDuplicateOutput rejects a batch in which two jobs write the same file.
var ErrDuplicateOutput = errors.New("duplicate output path")

// Job is one render request of a batch.
type Job struct {
	Template string              `json:"template" yaml:"template"`
	Values   placeholder.Context `json:"values,omitempty" yaml:"values,omitempty"`
	Output   string              `json:"output" yaml:"output"`
}

// RenderBatch renders independent jobs with at most workers renders in
// flight (GOMAXPROCS when workers <= 0). A failing job does not stop the
// others. Results are returned in job order; the returned error joins the
// errors of the failed jobs.
//
// Jobs are checked up front: two jobs targeting the same output path
// reject the whole batch with ErrDuplicateOutput before anything renders.
func (e *Engine) RenderBatch(ctx context.Context, jobs []Job, workers int) ([]types.RenderResult, error) {
	if err := checkOutputs(jobs); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]types.RenderResult, len(jobs))
	errs := make([]error, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := e.Render(ctx, job.Template, job.Values, job.Output)
			results[i] = *res
			if err != nil {
				errs[i] = fmt.Errorf("job %d (%s): %w", i+1, job.Template, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(e.status, "batch: %d jobs, %d failed\n", len(jobs), countErrors(errs))
	return results, errors.Join(errs...)
}

func checkOutputs(jobs []Job) error {
	seen := make(map[string]int, len(jobs))
	for i, job := range jobs {
		abs, err := filepath.Abs(job.Output)
		if err != nil {
			return fmt.Errorf("job %d output %q: %w", i+1, job.Output, err)
		}
		if j, ok := seen[abs]; ok {
			return fmt.Errorf("%w: jobs %d and %d both write %s", ErrDuplicateOutput, j+1, i+1, abs)
		}
		seen[abs] = i
	}
	return nil
}

func countErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
