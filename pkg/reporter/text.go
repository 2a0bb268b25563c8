package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strconv"

	"github.com/yaklabco/zkit/internal/ui/pretty"
	"github.com/yaklabco/zkit/pkg/assets"
	"github.com/yaklabco/zkit/pkg/audit"
	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/runner"
)

// TextReporter formats results as styled terminal output, either as a
// grouped listing or as tables.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	table  *pretty.TableFormatter
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	width := opts.TermWidth
	if width <= 0 {
		width = pretty.TerminalWidth(opts.Writer)
	}
	styles := pretty.NewStyles(colorEnabled)
	return &TextReporter{
		opts:   opts,
		styles: styles,
		table:  pretty.NewTableFormatter(styles, colorEnabled, width),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

func (r *TextReporter) tables() bool {
	return r.opts.Format == config.FormatTable
}

func (r *TextReporter) flush(err *error) {
	if flushErr := r.bw.Flush(); *err == nil {
		*err = flushErr
	}
}

// ReportAudit implements Reporter.
func (r *TextReporter) ReportAudit(_ context.Context, result *runner.Result[*audit.Report]) (_ int, err error) {
	defer r.flush(&err)

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No notes to check."))
		}
		return 0, nil
	}

	var stats pretty.AuditStats
	var groups [][]pretty.TableRow

	for _, file := range result.Files {
		path := relPath(r.opts.WorkingDir, file.Path)

		if file.Error != nil {
			stats.NotesErrored++
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}
		if file.Result == nil {
			continue
		}
		stats.Add(file.Result)

		findings := file.Result.Findings
		if len(findings) == 0 {
			continue
		}

		if r.tables() {
			rows := make([]pretty.TableRow, 0, len(findings))
			for _, f := range findings {
				line := ""
				if f.Line > 0 {
					line = strconv.Itoa(f.Line)
				}
				rows = append(rows, pretty.TableRow{
					Cells: []string{path, line, f.Message, f.Check},
					Tone:  pretty.ToneFor(f.Severity),
				})
			}
			groups = append(groups, rows)
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, len(findings)))
		for i := range findings {
			fmt.Fprint(r.bw, r.styles.FormatFinding(path, &findings[i]))
		}
		fmt.Fprintln(r.bw)
	}

	if r.tables() && len(groups) > 0 {
		fmt.Fprint(r.bw, r.table.FormatTable([]pretty.Column{
			{Header: "NOTE", Path: true, MinWidth: 20},
			{Header: "LINE"},
			{Header: "MESSAGE", Flexible: true, MinWidth: 30},
			{Header: "CHECK", MinWidth: 8},
		}, groups))
		fmt.Fprint(r.bw, r.table.FormatLegend())
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatAuditSummary(stats))
	}
	return stats.Total, nil
}

// ReportAssets implements Reporter.
func (r *TextReporter) ReportAssets(_ context.Context, report *assets.Report) (_ int, err error) {
	defer r.flush(&err)

	if report == nil {
		return 0, nil
	}

	if len(report.Broken) > 0 {
		if r.tables() {
			rows := make([]pretty.TableRow, 0, len(report.Broken))
			for _, ref := range report.Broken {
				rows = append(rows, pretty.TableRow{
					Cells: []string{relPath(r.opts.WorkingDir, ref.Note), strconv.Itoa(ref.Line), ref.Target, string(ref.Kind)},
					Tone:  pretty.ToneError,
				})
			}
			fmt.Fprint(r.bw, r.table.FormatTable([]pretty.Column{
				{Header: "NOTE", Path: true, MinWidth: 20},
				{Header: "LINE"},
				{Header: "MISSING TARGET", Flexible: true, MinWidth: 20},
				{Header: "KIND"},
			}, [][]pretty.TableRow{rows}))
		} else {
			fmt.Fprintln(r.bw, r.styles.SummaryTitle.Render("Broken references"))
			for _, ref := range report.Broken {
				fmt.Fprintf(r.bw, "  %s%s  %s  %s\n",
					r.styles.FilePath.Render(relPath(r.opts.WorkingDir, ref.Note)),
					r.styles.Location.Render(fmt.Sprintf(":%d", ref.Line)),
					r.styles.Error.Render(ref.Target),
					r.styles.CheckID.Render("("+string(ref.Kind)+")"),
				)
			}
		}
		fmt.Fprintln(r.bw)
	}

	if len(report.Unused) > 0 {
		if r.tables() {
			rows := make([]pretty.TableRow, 0, len(report.Unused))
			for _, path := range report.Unused {
				rows = append(rows, pretty.TableRow{
					Cells: []string{relPath(r.opts.WorkingDir, path)},
					Tone:  pretty.ToneWarning,
				})
			}
			fmt.Fprint(r.bw, r.table.FormatTable([]pretty.Column{
				{Header: "UNUSED ASSET", Path: true, MinWidth: 20},
			}, [][]pretty.TableRow{rows}))
		} else {
			fmt.Fprintln(r.bw, r.styles.SummaryTitle.Render("Unused assets"))
			for _, path := range report.Unused {
				fmt.Fprintf(r.bw, "  %s\n", r.styles.Warning.Render(relPath(r.opts.WorkingDir, path)))
			}
		}
		fmt.Fprintln(r.bw)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatAssetSummary(report.Notes, report.Assets, len(report.Broken), len(report.Unused)))
	}
	return len(report.Broken) + len(report.Unused), nil
}

// ReportSplit implements Reporter.
func (r *TextReporter) ReportSplit(_ context.Context, report *SplitReport) (_ int, err error) {
	defer r.flush(&err)

	if report == nil {
		return 0, nil
	}

	stats := pretty.SplitStats{Sources: len(report.Entries), DryRun: report.DryRun}
	var rows []pretty.TableRow

	for _, entry := range report.Entries {
		source := relPath(r.opts.WorkingDir, entry.Source)
		if entry.Plan == nil || len(entry.Plan.Notes) == 0 {
			stats.Unsplit++
			continue
		}
		stats.Notes += len(entry.Plan.Notes)

		if r.tables() {
			for _, note := range entry.Plan.Notes {
				rows = append(rows, pretty.TableRow{
					Cells: []string{relPath(r.opts.WorkingDir, note.Path), note.Title, source},
				})
			}
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(source, 0))
		for _, note := range entry.Plan.Notes {
			fmt.Fprint(r.bw, r.styles.FormatPlannedNote(relPath(r.opts.WorkingDir, note.Path), note.Title, !report.DryRun))
		}
		r.writeSourceChanges(entry)
		fmt.Fprintln(r.bw)
	}

	if r.tables() && len(rows) > 0 {
		fmt.Fprint(r.bw, r.table.FormatTable([]pretty.Column{
			{Header: "NOTE", Path: true, MinWidth: 20},
			{Header: "TITLE", Flexible: true, MinWidth: 20},
			{Header: "SOURCE", Path: true, MinWidth: 12},
		}, [][]pretty.TableRow{rows}))
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSplitSummary(stats))
	}
	return stats.Notes, nil
}

func (r *TextReporter) writeSourceChanges(entry SplitEntry) {
	if entry.Discarded > 0 {
		fmt.Fprintf(r.bw, "    %s\n", r.styles.Dim.Render(
			fmt.Sprintf("%d %s before the first split point not copied", entry.Discarded, plural(entry.Discarded, "line", "lines"))))
	}
	for _, w := range entry.Warnings {
		fmt.Fprintf(r.bw, "    %s %s\n", r.styles.Warning.Render("warning:"), w)
	}

	switch {
	case entry.Outcome != nil && entry.Outcome.Indexed:
		msg := "source replaced by index"
		if entry.Outcome.Backup != "" {
			msg += ", backup at " + relPath(r.opts.WorkingDir, entry.Outcome.Backup)
		}
		fmt.Fprintf(r.bw, "    %s\n", r.styles.Dim.Render(msg))
	case entry.Outcome == nil && entry.Plan.Index != "":
		fmt.Fprintf(r.bw, "    %s\n", r.styles.Dim.Render("source would be replaced by index"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
