package verify

import (
	"context"
	"sync"
)

// runParallel executes jobs on a bounded pool of workers and writes each
// job's result into its original slot, so output order never depends on
// completion order. Each worker owns its result slot exclusively; no other
// state is shared.
//
// A cancelled context stops workers from picking up queued jobs. The
// returned mask records which jobs actually ran.
func runParallel[T any](ctx context.Context, workers int, jobs []func(context.Context) T) ([]T, []bool) {
	if workers < 1 {
		workers = 1
	}
	results := make([]T, len(jobs))
	done := make([]bool, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					continue
				}
				results[i] = jobs[i](ctx)
				done[i] = true
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results, done
}
