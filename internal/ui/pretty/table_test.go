package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/zkit/internal/ui/pretty"
	"github.com/yaklabco/zkit/pkg/audit"
)

func TestFormatTable(t *testing.T) {
	t.Parallel()

	table := pretty.NewTableFormatter(pretty.NewStyles(false), false, 80)
	columns := []pretty.Column{
		{Header: "NOTE", Path: true},
		{Header: "TITLE", Flexible: true},
	}

	out := table.FormatTable(columns, [][]pretty.TableRow{
		{{Cells: []string{"a.md", "First"}}, {Cells: []string{"b.md", "Second"}}},
		{{Cells: []string{"c.md", "Third"}}},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], " NOTE"))
	assert.Contains(t, lines[0], "TITLE")
	assert.True(t, strings.HasPrefix(lines[1], "="))
	assert.Equal(t, " a.md    First", lines[2])
	assert.True(t, strings.HasPrefix(lines[4], "-"))
	assert.Equal(t, " c.md    Third", lines[5])
	assert.True(t, strings.HasPrefix(lines[6], "="))
}

func TestFormatTable_Truncates(t *testing.T) {
	t.Parallel()

	table := pretty.NewTableFormatter(pretty.NewStyles(false), false, 40)
	columns := []pretty.Column{
		{Header: "NOTE", Path: true, MinWidth: 12},
		{Header: "TITLE", Flexible: true, MinWidth: 10},
	}
	longPath := "very/deeply/nested/folder/structure/note.md"
	longTitle := strings.Repeat("t", 60)

	out := table.FormatTable(columns, [][]pretty.TableRow{{{Cells: []string{longPath, longTitle}}}})

	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 40)
	}
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "note.md")
}

func TestFormatTable_Empty(t *testing.T) {
	t.Parallel()

	table := pretty.NewTableFormatter(pretty.NewStyles(false), false, 0)
	assert.Empty(t, table.FormatTable([]pretty.Column{{Header: "A"}}, nil))
	assert.Empty(t, table.FormatLegend())
}

func TestToneFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pretty.ToneError, pretty.ToneFor(audit.SeverityError))
	assert.Equal(t, pretty.ToneWarning, pretty.ToneFor(audit.SeverityWarning))
	assert.Equal(t, pretty.ToneInfo, pretty.ToneFor(audit.SeverityInfo))
	assert.Equal(t, pretty.ToneNone, pretty.ToneFor(audit.Severity("other")))
}
