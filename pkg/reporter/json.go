package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/zkit/pkg/assets"
	"github.com/yaklabco/zkit/pkg/audit"
	"github.com/yaklabco/zkit/pkg/runner"
)

// jsonVersion is the schema version of every JSON document.
const jsonVersion = "1.0.0"

// JSONAuditOutput is the top-level JSON structure of "zkit check".
type JSONAuditOutput struct {
	Version string            `json:"version"`
	Notes   []JSONNoteFinding `json:"notes"`
	Summary JSONAuditSummary  `json:"summary"`
}

// JSONNoteFinding represents a single note's findings.
type JSONNoteFinding struct {
	Path     string          `json:"path"`
	Findings []audit.Finding `json:"findings"`
	Error    string          `json:"error,omitempty"`
}

// JSONAuditSummary contains aggregate statistics.
type JSONAuditSummary struct {
	NotesChecked    int            `json:"notesChecked"`
	NotesWithIssues int            `json:"notesWithIssues"`
	NotesErrored    int            `json:"notesErrored"`
	TotalIssues     int            `json:"totalIssues"`
	BySeverity      map[string]int `json:"bySeverity"`
}

// JSONAssetsOutput is the top-level JSON structure of "zkit assets check".
type JSONAssetsOutput struct {
	Version string             `json:"version"`
	Broken  []assets.Reference `json:"broken"`
	Unused  []string           `json:"unused"`
	Summary JSONAssetsSummary  `json:"summary"`
}

// JSONAssetsSummary contains asset counts.
type JSONAssetsSummary struct {
	Notes      int `json:"notes"`
	Assets     int `json:"assets"`
	References int `json:"references"`
	Broken     int `json:"broken"`
	Unused     int `json:"unused"`
}

// JSONSplitOutput is the top-level JSON structure of "zkit split".
type JSONSplitOutput struct {
	Version string            `json:"version"`
	DryRun  bool              `json:"dryRun"`
	Sources []JSONSplitSource `json:"sources"`
	Summary JSONSplitSummary  `json:"summary"`
}

// JSONSplitSource describes one split source note.
type JSONSplitSource struct {
	Path      string          `json:"path"`
	Notes     []JSONSplitNote `json:"notes"`
	Discarded int             `json:"discarded"`
	Indexed   bool            `json:"indexed"`
	Backup    string          `json:"backup,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// JSONSplitNote is one written or planned note.
type JSONSplitNote struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	Path  string `json:"path"`
}

// JSONSplitSummary contains split counts.
type JSONSplitSummary struct {
	Sources int `json:"sources"`
	Notes   int `json:"notes"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

func (r *JSONReporter) encode(v any) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// ReportAudit implements Reporter.
func (r *JSONReporter) ReportAudit(_ context.Context, result *runner.Result[*audit.Report]) (int, error) {
	output := &JSONAuditOutput{
		Version: jsonVersion,
		Notes:   make([]JSONNoteFinding, 0),
		Summary: JSONAuditSummary{BySeverity: make(map[string]int)},
	}

	if result != nil {
		for _, file := range result.Files {
			note := JSONNoteFinding{
				Path:     relPath(r.opts.WorkingDir, file.Path),
				Findings: make([]audit.Finding, 0),
			}
			if file.Error != nil {
				note.Error = file.Error.Error()
				output.Summary.NotesErrored++
			} else if file.Result != nil {
				note.Findings = append(note.Findings, file.Result.Findings...)
			}

			for _, f := range note.Findings {
				output.Summary.TotalIssues++
				output.Summary.BySeverity[string(f.Severity)]++
			}
			if len(note.Findings) > 0 {
				output.Summary.NotesWithIssues++
			}

			output.Notes = append(output.Notes, note)
			output.Summary.NotesChecked++
		}
	}

	if err := r.encode(output); err != nil {
		return 0, err
	}
	return output.Summary.TotalIssues, nil
}

// ReportAssets implements Reporter.
func (r *JSONReporter) ReportAssets(_ context.Context, report *assets.Report) (int, error) {
	output := &JSONAssetsOutput{
		Version: jsonVersion,
		Broken:  make([]assets.Reference, 0),
		Unused:  make([]string, 0),
	}

	if report != nil {
		for _, ref := range report.Broken {
			ref.Note = relPath(r.opts.WorkingDir, ref.Note)
			output.Broken = append(output.Broken, ref)
		}
		for _, path := range report.Unused {
			output.Unused = append(output.Unused, relPath(r.opts.WorkingDir, path))
		}
		output.Summary = JSONAssetsSummary{
			Notes:      report.Notes,
			Assets:     report.Assets,
			References: len(report.References),
			Broken:     len(report.Broken),
			Unused:     len(report.Unused),
		}
	}

	if err := r.encode(output); err != nil {
		return 0, err
	}
	return output.Summary.Broken + output.Summary.Unused, nil
}

// ReportSplit implements Reporter.
func (r *JSONReporter) ReportSplit(_ context.Context, report *SplitReport) (int, error) {
	output := &JSONSplitOutput{
		Version: jsonVersion,
		Sources: make([]JSONSplitSource, 0),
	}

	if report != nil {
		output.DryRun = report.DryRun
		for _, entry := range report.Entries {
			source := JSONSplitSource{
				Path:      relPath(r.opts.WorkingDir, entry.Source),
				Notes:     make([]JSONSplitNote, 0),
				Discarded: entry.Discarded,
				Warnings:  entry.Warnings,
			}
			if entry.Plan != nil {
				for _, note := range entry.Plan.Notes {
					source.Notes = append(source.Notes, JSONSplitNote{
						Title: note.Title,
						Name:  note.Name,
						Path:  relPath(r.opts.WorkingDir, note.Path),
					})
				}
			}
			if entry.Outcome != nil {
				source.Indexed = entry.Outcome.Indexed
				if entry.Outcome.Backup != "" {
					source.Backup = relPath(r.opts.WorkingDir, entry.Outcome.Backup)
				}
			}
			output.Sources = append(output.Sources, source)
			output.Summary.Notes += len(source.Notes)
		}
		output.Summary.Sources = len(report.Entries)
	}

	if err := r.encode(output); err != nil {
		return 0, err
	}
	return output.Summary.Notes, nil
}
