package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/zkit/pkg/assets"
	"github.com/yaklabco/zkit/pkg/audit"
	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/notes"
	"github.com/yaklabco/zkit/pkg/reporter"
	"github.com/yaklabco/zkit/pkg/runner"
)

const vault = "/vault"

func auditResult() *runner.Result[*audit.Report] {
	return &runner.Result[*audit.Report]{
		Files: []runner.FileOutcome[*audit.Report]{
			{Path: filepath.Join(vault, "clean.md"), Result: &audit.Report{Path: filepath.Join(vault, "clean.md")}},
			{Path: filepath.Join(vault, "a.md"), Result: &audit.Report{
				Path: filepath.Join(vault, "a.md"),
				Findings: []audit.Finding{
					{Check: audit.CheckTitle, Message: "note has no title", Severity: audit.SeverityWarning},
					{Check: audit.CheckFence, Message: "code fence is never closed", Severity: audit.SeverityError, Line: 4},
				},
			}},
			{Path: filepath.Join(vault, "broken.md"), Error: errors.New("permission denied")},
		},
	}
}

func assetReport() *assets.Report {
	return &assets.Report{
		Notes:  2,
		Assets: 3,
		References: []assets.Reference{
			{Note: filepath.Join(vault, "a.md"), Target: "img.png", Kind: assets.RefImage, Line: 1},
			{Note: filepath.Join(vault, "a.md"), Target: "gone.pdf", Kind: assets.RefEmbed, Line: 5},
		},
		Broken: []assets.Reference{
			{Note: filepath.Join(vault, "a.md"), Target: "gone.pdf", Kind: assets.RefEmbed, Line: 5},
		},
		Unused: []string{filepath.Join(vault, "assets", "old.png")},
	}
}

func splitReport(dryRun bool) *reporter.SplitReport {
	source := filepath.Join(vault, "Inbox.md")
	plan := &notes.Plan{
		Source: source,
		Dir:    vault,
		Notes: []notes.Note{
			{Title: "First", Name: "First.md", Path: filepath.Join(vault, "First.md")},
			{Title: "Second", Name: "Second.md", Path: filepath.Join(vault, "Second.md")},
		},
		Index: "- [[First]]\n- [[Second]]\n",
	}
	entry := reporter.SplitEntry{Source: source, Plan: plan, Discarded: 2}
	if !dryRun {
		entry.Outcome = &notes.Outcome{
			Written: []string{plan.Notes[0].Path, plan.Notes[1].Path},
			Indexed: true,
			Backup:  source + ".bak",
		}
	}
	return &reporter.SplitReport{
		DryRun: dryRun,
		Entries: []reporter.SplitEntry{
			entry,
			{Source: filepath.Join(vault, "Plain.md")},
		},
	}
}

func newReporter(t *testing.T, format config.OutputFormat, buf *bytes.Buffer) reporter.Reporter {
	t.Helper()

	rep, err := reporter.New(reporter.Options{
		Writer:      buf,
		Format:      format,
		Color:       "never",
		ShowSummary: true,
		TermWidth:   120,
		WorkingDir:  vault,
	})
	require.NoError(t, err)
	return rep
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  config.OutputFormat
		want    any
		wantErr bool
	}{
		{name: "text", format: config.FormatText, want: &reporter.TextReporter{}},
		{name: "table", format: config.FormatTable, want: &reporter.TextReporter{}},
		{name: "json", format: config.FormatJSON, want: &reporter.JSONReporter{}},
		{name: "empty defaults to text", format: "", want: &reporter.TextReporter{}},
		{name: "unknown", format: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: tt.format})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, rep)
		})
	}
}

func TestTextReporter_Audit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := newReporter(t, config.FormatText, &buf).ReportAudit(context.Background(), auditResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "a.md (2 issues)\n")
	assert.Contains(t, out, "  a.md  warning  note has no title  (missing-title)\n")
	assert.Contains(t, out, "  a.md:4  error  code fence is never closed  (unterminated-fence)\n")
	assert.Contains(t, out, "broken.md: error: permission denied\n")
	assert.NotContains(t, out, "clean.md")
	assert.NotContains(t, out, vault+"/")
	assert.True(t, strings.HasSuffix(out, "2 issues (1 error, 1 warning) in 1 note, 1 unreadable\n"))
}

func TestTextReporter_AuditEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := newReporter(t, config.FormatText, &buf).ReportAudit(context.Background(), &runner.Result[*audit.Report]{})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, "No notes to check.\n", buf.String())
}

func TestTableReporter_Audit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := newReporter(t, config.FormatTable, &buf).ReportAudit(context.Background(), auditResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "NOTE")
	assert.Contains(t, out, "MESSAGE")
	assert.Contains(t, out, "code fence is never closed")
	assert.Contains(t, out, "unterminated-fence")
	assert.NotContains(t, out, "Legend")
}

func TestTextReporter_Assets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := newReporter(t, config.FormatText, &buf).ReportAssets(context.Background(), assetReport())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "Broken references\n  a.md:5  gone.pdf  (embed)\n")
	assert.Contains(t, out, "Unused assets\n  assets/old.png\n")
	assert.Contains(t, out, "1 broken reference, 1 unused asset (2 notes, 3 assets)\n")
}

func TestTextReporter_Split(t *testing.T) {
	t.Parallel()

	t.Run("written", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		count, err := newReporter(t, config.FormatText, &buf).ReportSplit(context.Background(), splitReport(false))
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		out := buf.String()
		assert.Contains(t, out, "Inbox.md\n  + First.md  <- First\n  + Second.md  <- Second\n")
		assert.Contains(t, out, "2 lines before the first split point not copied")
		assert.Contains(t, out, "source replaced by index, backup at Inbox.md.bak")
		assert.Contains(t, out, "Created 2 notes from 1 source, 1 without split points\n")
	})

	t.Run("dry run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := newReporter(t, config.FormatText, &buf).ReportSplit(context.Background(), splitReport(true))
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "  ~ First.md  <- First\n")
		assert.Contains(t, out, "source would be replaced by index")
		assert.Contains(t, out, "Would create 2 notes")
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := newReporter(t, config.FormatTable, &buf).ReportSplit(context.Background(), splitReport(true))
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "SOURCE")
		assert.Contains(t, out, "Second.md")
		assert.Contains(t, out, "Inbox.md")
	})
}

func TestJSONReporter_Audit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := newReporter(t, config.FormatJSON, &buf).ReportAudit(context.Background(), auditResult())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var out reporter.JSONAuditOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "1.0.0", out.Version)
	require.Len(t, out.Notes, 3)
	assert.Equal(t, "a.md", out.Notes[1].Path)
	assert.Len(t, out.Notes[1].Findings, 2)
	assert.Equal(t, "permission denied", out.Notes[2].Error)
	assert.Equal(t, reporter.JSONAuditSummary{
		NotesChecked:    3,
		NotesWithIssues: 1,
		NotesErrored:    1,
		TotalIssues:     2,
		BySeverity:      map[string]int{"error": 1, "warning": 1},
	}, out.Summary)
}

func TestJSONReporter_Assets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := newReporter(t, config.FormatJSON, &buf).ReportAssets(context.Background(), assetReport())
	require.NoError(t, err)

	var out reporter.JSONAssetsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Broken, 1)
	assert.Equal(t, "a.md", out.Broken[0].Note)
	assert.Equal(t, []string{filepath.Join("assets", "old.png")}, out.Unused)
	assert.Equal(t, 2, out.Summary.References)
}

func TestJSONReporter_Split(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	count, err := newReporter(t, config.FormatJSON, &buf).ReportSplit(context.Background(), splitReport(false))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var out reporter.JSONSplitOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.False(t, out.DryRun)
	require.Len(t, out.Sources, 2)
	assert.Equal(t, "Inbox.md", out.Sources[0].Path)
	assert.True(t, out.Sources[0].Indexed)
	assert.Equal(t, "Inbox.md.bak", out.Sources[0].Backup)
	assert.Equal(t, []reporter.JSONSplitNote{
		{Title: "First", Name: "First.md", Path: "First.md"},
		{Title: "Second", Name: "Second.md", Path: "Second.md"},
	}, out.Sources[0].Notes)
	assert.Empty(t, out.Sources[1].Notes)
	assert.Equal(t, reporter.JSONSplitSummary{Sources: 2, Notes: 2}, out.Summary)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})
	_, err := rep.ReportAssets(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
