package runner

// FileOutcome is the result of processing one file.
type FileOutcome[T any] struct {
	Path string

	// Result is the zero value when Error is set.
	Result T

	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int
}

// Result is the overall runner result.
type Result[T any] struct {
	// Files holds one outcome per processed file, in discovery order.
	Files []FileOutcome[T]

	Stats Stats
}

// Errors returns the outcomes that failed.
func (r *Result[T]) Errors() []FileOutcome[T] {
	if r == nil {
		return nil
	}
	var failed []FileOutcome[T]
	for _, f := range r.Files {
		if f.Error != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

func (r *Result[T]) accumulate(outcome FileOutcome[T]) {
	r.Files = append(r.Files, outcome)
	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	r.Stats.FilesProcessed++
}
