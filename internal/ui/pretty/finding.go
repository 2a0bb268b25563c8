package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/zkit/pkg/audit"
)

// FormatFinding formats a single audit finding for terminal output.
func (s *Styles) FormatFinding(path string, f *audit.Finding) string {
	var builder strings.Builder

	location := s.FilePath.Render(path)
	if f.Line > 0 {
		location += s.Location.Render(fmt.Sprintf(":%d", f.Line))
	}

	// Main line: location  severity  message  (check)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(f.Severity),
		s.Message.Render(f.Message),
		s.CheckID.Render("("+f.Check+")"),
	))

	if f.Suggestion != "" {
		builder.WriteString("    " + s.Dim.Render("Suggestion:") + " " +
			s.Suggestion.Render(f.Suggestion) + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev audit.Severity) string {
	switch sev {
	case audit.SeverityError:
		return s.Error.Render("error")
	case audit.SeverityWarning:
		return s.Warning.Render("warning")
	case audit.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", issueCount, plural(issueCount, "issue", "issues")))
	}
	return header
}

// FormatPlannedNote formats one note of a split: "name  <- title".
// created distinguishes written notes from a dry run.
func (s *Styles) FormatPlannedNote(name, title string, created bool) string {
	marker := s.Planned.Render("~")
	if created {
		marker = s.Created.Render("+")
	}
	return fmt.Sprintf("  %s %s  %s %s\n",
		marker,
		s.NoteName.Render(name),
		s.Arrow.Render("<-"),
		s.Title.Render(title),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
