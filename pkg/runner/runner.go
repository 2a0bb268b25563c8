package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// ProcessFunc handles one file.
type ProcessFunc[T any] func(ctx context.Context, path string) (T, error)

// Run discovers files and processes them concurrently. Outcomes are returned
// in discovery order regardless of completion order.
func Run[T any](ctx context.Context, opts Options, process ProcessFunc[T]) (*Result[T], error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	return RunFiles(ctx, files, opts.Jobs, process)
}

// RunFiles processes an explicit file list on up to jobs workers.
func RunFiles[T any](ctx context.Context, files []string, jobs int, process ProcessFunc[T]) (*Result[T], error) {
	result := &Result[T]{
		Files: make([]FileOutcome[T], 0, len(files)),
	}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome[T])

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, workCh, outCh, process)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome[T], len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func worker[T any](
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome[T],
	process ProcessFunc[T],
) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := FileOutcome[T]{Path: path}
		outcome.Result, outcome.Error = process(ctx, path)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
