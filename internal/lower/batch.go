package lower

import (
	"context"
	"runtime"

	"github.com/weftlang/weft/internal/sourcecode"
	"github.com/weftlang/weft/internal/syntax"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// A Job is a unit to lower with LowerAll.
type Job struct {
	Entry Entry
	Unit  sourcecode.Unit
	Tree  *syntax.Node
}

// LowerAll lowers independent units concurrently, at most opts.Parallelism at a time. Each unit is lowered by its
// own call and gets its own error sink. Results are returned in the order of jobs; in fail-fast mode the result of
// a failed unit holds its error and the returned error combines the errors of all failed units. A non-nil
// error is also returned if ctx is done before all units are lowered, results is nil in this case.
func LowerAll(ctx context.Context, jobs []Job, opts Options) ([]*Result, error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)

	for i, job := range jobs {
		i, job := i, job

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = Lower(job.Entry, job.Unit, job.Tree, opts)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, multierr.Combine(errs...)
}
