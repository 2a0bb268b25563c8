package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/zkit/pkg/audit"
)

const (
	wordNote  = "note"
	wordNotes = "notes"
)

// AuditStats aggregates the findings of a check run.
type AuditStats struct {
	NotesChecked    int
	NotesWithIssues int
	NotesErrored    int
	Total           int
	BySeverity      map[audit.Severity]int
}

// Add counts one report.
func (a *AuditStats) Add(r *audit.Report) {
	if a.BySeverity == nil {
		a.BySeverity = make(map[audit.Severity]int)
	}
	a.NotesChecked++
	if !r.HasIssues() {
		return
	}
	a.NotesWithIssues++
	for _, f := range r.Findings {
		a.Total++
		a.BySeverity[f.Severity]++
	}
}

// FormatAuditSummary formats check statistics as a single line.
// Example: "5 issues (1 error, 3 warnings, 1 info) in 2 notes".
func (s *Styles) FormatAuditSummary(stats AuditStats) string {
	if stats.Total == 0 {
		msg := s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.NotesChecked, plural(stats.NotesChecked, wordNote, wordNotes)))
		if stats.NotesErrored > 0 {
			msg += ", " + s.Failure.Render(fmt.Sprintf("%d unreadable", stats.NotesErrored))
		}
		return msg + "\n"
	}

	var severityParts []string
	if n := stats.BySeverity[audit.SeverityError]; n > 0 {
		severityParts = append(severityParts, s.Error.Render(fmt.Sprintf("%d %s", n, plural(n, "error", "errors"))))
	}
	if n := stats.BySeverity[audit.SeverityWarning]; n > 0 {
		severityParts = append(severityParts, s.Warning.Render(fmt.Sprintf("%d %s", n, plural(n, "warning", "warnings"))))
	}
	if n := stats.BySeverity[audit.SeverityInfo]; n > 0 {
		severityParts = append(severityParts, s.Info.Render(fmt.Sprintf("%d info", n)))
	}

	line := fmt.Sprintf("%d %s (%s) in %d %s",
		stats.Total, plural(stats.Total, "issue", "issues"),
		strings.Join(severityParts, ", "),
		stats.NotesWithIssues, plural(stats.NotesWithIssues, wordNote, wordNotes),
	)
	if stats.NotesErrored > 0 {
		line += ", " + s.Failure.Render(fmt.Sprintf("%d unreadable", stats.NotesErrored))
	}
	return line + "\n"
}

// SplitStats aggregates a split run.
type SplitStats struct {
	Sources int
	Notes   int

	// Unsplit counts sources without split points.
	Unsplit int

	DryRun bool
}

// FormatSplitSummary formats split statistics as a single line.
func (s *Styles) FormatSplitSummary(stats SplitStats) string {
	if stats.Notes == 0 {
		return s.Dim.Render(fmt.Sprintf("Nothing to split in %d %s", stats.Sources, plural(stats.Sources, wordNote, wordNotes))) + "\n"
	}

	verb, style := "Created", s.Success
	if stats.DryRun {
		verb, style = "Would create", s.Planned
	}
	line := style.Render(fmt.Sprintf("%s %d %s", verb, stats.Notes, plural(stats.Notes, wordNote, wordNotes))) +
		fmt.Sprintf(" from %d %s", stats.Sources-stats.Unsplit, plural(stats.Sources-stats.Unsplit, "source", "sources"))
	if stats.Unsplit > 0 {
		line += s.Dim.Render(fmt.Sprintf(", %d without split points", stats.Unsplit))
	}
	return line + "\n"
}

// FormatAssetSummary formats asset check counts as a single line.
func (s *Styles) FormatAssetSummary(notes, assets, broken, unused int) string {
	counts := s.Dim.Render(fmt.Sprintf(" (%d %s, %d assets)", notes, plural(notes, wordNote, wordNotes), assets))
	if broken == 0 && unused == 0 {
		return s.Success.Render("All assets linked") + counts + "\n"
	}

	var parts []string
	if broken > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d broken %s", broken, plural(broken, "reference", "references"))))
	}
	if unused > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d unused %s", unused, plural(unused, "asset", "assets"))))
	}
	return strings.Join(parts, ", ") + counts + "\n"
}
