// Package runner discovers notes in a folder tree and processes them on a
// bounded pool of workers.
package runner

// Options controls discovery and concurrency.
type Options struct {
	// Paths are files or folders to process. Empty means the working directory.
	Paths []string

	// WorkingDir resolves relative Paths and glob matches. Empty means os.Getwd.
	WorkingDir string

	// Extensions lists accepted file extensions, lowercase with a leading dot.
	// Empty selects DefaultExtensions.
	Extensions []string

	// IncludeGlobs restricts discovery when non-empty.
	IncludeGlobs []string

	// ExcludeGlobs skips matching files and folders, e.g. "archive/**".
	ExcludeGlobs []string

	// FollowSymlinks traverses symlinked folders.
	FollowSymlinks bool

	// Jobs bounds concurrent workers. 0 or negative means runtime.NumCPU.
	Jobs int
}

// DefaultExtensions returns the default note extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
