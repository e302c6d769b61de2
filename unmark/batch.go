package unmark

import (
	"context"
	"sync"

	"github.com/rothskeller/pdfunmark/observability"
)

// A FileResult is the outcome of processing one file with RunFiles.
type FileResult struct {
	Result
	Err error
}

// RunFiles processes each of the files with File, using opts.Workers
// concurrent workers.  Files share no state, so the results are the same
// however many workers are used; they are returned in the order of paths.
// Cancelling ctx stops files from being started, but a file already being
// processed runs to completion; files never started report ctx.Err().
func RunFiles(ctx context.Context, paths []string, opts Options) []FileResult {
	var (
		results = make([]FileResult, len(paths))
		jobs    = make(chan int)
		wg      sync.WaitGroup
	)
	opts = opts.withDefaults()
	for w := 0; w < opts.Workers && w < len(paths); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fopts := opts
				fopts.Logger = opts.Logger.With(observability.String("file", paths[idx]))
				results[idx].Result, results[idx].Err = File(paths[idx], fopts)
			}
		}()
	}
	next := 0
feed:
	for ; next < len(paths) && ctx.Err() == nil; next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	for ; next < len(paths); next++ {
		results[next] = FileResult{Result: Result{Path: paths[next]}, Err: ctx.Err()}
	}
	return results
}
