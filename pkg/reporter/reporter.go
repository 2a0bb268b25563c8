// Package reporter writes audit findings, asset reports and split results
// as styled text, tables or JSON.
package reporter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/zkit/pkg/assets"
	"github.com/yaklabco/zkit/pkg/audit"
	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/notes"
	"github.com/yaklabco/zkit/pkg/runner"
)

// Compile-time interface checks.
var (
	_ Reporter = (*TextReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
)

// Reporter formats and writes command results.
type Reporter interface {
	// ReportAudit writes check findings and returns the number of issues.
	ReportAudit(ctx context.Context, result *runner.Result[*audit.Report]) (int, error)

	// ReportAssets writes an asset report and returns the number of broken
	// references plus unused assets.
	ReportAssets(ctx context.Context, report *assets.Report) (int, error)

	// ReportSplit writes split results and returns the number of notes
	// written or planned.
	ReportSplit(ctx context.Context, report *SplitReport) (int, error)
}

// SplitEntry is the result of splitting one source note.
type SplitEntry struct {
	Source string

	// Plan is nil when the source had no split points.
	Plan *notes.Plan

	// Outcome is nil on a dry run.
	Outcome *notes.Outcome

	// Discarded counts non-empty lines before the first split point.
	Discarded int

	Warnings []string
}

// SplitReport collects a split run.
type SplitReport struct {
	Entries []SplitEntry
	DryRun  bool
}

// NoteCount returns the number of notes in all plans.
func (r *SplitReport) NoteCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, e := range r.Entries {
		if e.Plan != nil {
			n += len(e.Plan.Notes)
		}
	}
	return n
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = config.FormatText
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	switch format {
	case config.FormatJSON:
		return NewJSONReporter(opts), nil
	case config.FormatTable:
		opts.Format = format
		return NewTextReporter(opts), nil
	default:
		opts.Format = config.FormatText
		return NewTextReporter(opts), nil
	}
}

// relPath returns path relative to workDir when it lies inside it.
func relPath(workDir, path string) string {
	if workDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
