package cli

import (
	"errors"

	"github.com/yaklabco/zkit/pkg/assets"
	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/fsutil"
	"github.com/yaklabco/zkit/pkg/split"
)

// Exit codes for zkit.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitFindings indicates the command ran but found issues, or found
	// nothing to split.
	ExitFindings = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitDataError indicates bad configuration or unreadable note data.
	ExitDataError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// Signal errors. They carry an exit code and are not logged as failures.
var (
	// ErrIssuesFound is returned when check or assets check reports findings.
	ErrIssuesFound = errors.New("issues found")

	// ErrNothingToSplit is returned when no source note had a split point.
	ErrNothingToSplit = errors.New("nothing to split")
)

var (
	// ErrUsage wraps invalid flag or argument combinations.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig wraps configuration load and validation failures.
	ErrConfig = errors.New("invalid configuration")
)

// IsSignal reports whether err only signals an exit code.
func IsSignal(err error) bool {
	return errors.Is(err, ErrIssuesFound) || errors.Is(err, ErrNothingToSplit)
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsSignal(err):
		return ExitFindings
	case errors.Is(err, ErrUsage),
		errors.Is(err, assets.ErrNotAsset),
		errors.Is(err, assets.ErrOutsideVault):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig),
		errors.Is(err, frontmatter.ErrDecode),
		errors.Is(err, split.ErrUnknownKind),
		errors.Is(err, split.ErrUnsupportedAttribute),
		errors.Is(err, split.ErrInvalidAttribute),
		errors.Is(err, split.ErrMissingKeyword),
		errors.Is(err, assets.ErrUnrewritable):
		return ExitDataError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrExists),
		errors.Is(err, fsutil.ErrModified):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
