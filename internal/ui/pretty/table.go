package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/zkit/pkg/audit"
)

// Table formatting constants.
const (
	tablePadding   = 2
	minColumnWidth = 6
	heavySeparator = "="
	lightSeparator = "-"
)

// Tone selects the row color.
type Tone int

// Row tones.
const (
	ToneNone Tone = iota
	ToneError
	ToneWarning
	ToneInfo
)

// ToneFor maps a finding severity to a row tone.
func ToneFor(sev audit.Severity) Tone {
	switch sev {
	case audit.SeverityError:
		return ToneError
	case audit.SeverityWarning:
		return ToneWarning
	case audit.SeverityInfo:
		return ToneInfo
	default:
		return ToneNone
	}
}

// Column describes one table column.
type Column struct {
	Header string

	// MinWidth is the narrowest the column may shrink to.
	MinWidth int

	// Path truncates from the left, keeping the file name visible.
	Path bool

	// Flexible columns give up width first when the table is too wide.
	Flexible bool
}

// TableRow is a single row of cells, one per column.
type TableRow struct {
	Cells []string
	Tone  Tone
}

// TableFormatter formats rows as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = DefaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable renders groups of rows under a single header. Groups are
// divided by a light separator.
func (t *TableFormatter) FormatTable(columns []Column, groups [][]TableRow) string {
	if len(columns) == 0 || countRows(groups) == 0 {
		return ""
	}

	widths := t.columnWidths(columns, groups)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(columns, widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	isFirstGroup := true
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		if !isFirstGroup {
			builder.WriteString(t.formatSeparator(widths, lightSeparator))
			builder.WriteString("\n")
		}
		isFirstGroup = false

		for _, row := range group {
			builder.WriteString(t.formatRow(columns, row, widths))
			builder.WriteString("\n")
		}
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	return builder.String()
}

// FormatLegend explains row colors. It is empty without color since tones
// are then invisible.
func (t *TableFormatter) FormatLegend() string {
	if !t.colorEnabled {
		return ""
	}

	errorSample := t.styles.TableErrorRow.Render(" error ")
	warnSample := t.styles.TableWarnRow.Render(" warning ")
	infoSample := t.styles.TableInfoRow.Render(" info ")

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s  %s  %s", errorSample, warnSample, infoSample),
	) + "\n"
}

func countRows(groups [][]TableRow) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}

// columnWidths sizes each column to its widest cell, then shrinks flexible
// columns and finally path columns to fit the terminal.
func (t *TableFormatter) columnWidths(columns []Column, groups [][]TableRow) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(len(col.Header), col.MinWidth, minColumnWidth)
	}

	for _, group := range groups {
		for _, row := range group {
			for i := range columns {
				if i < len(row.Cells) && len(row.Cells[i]) > widths[i] {
					widths[i] = len(row.Cells[i])
				}
			}
		}
	}

	shrink := func(match func(Column) bool) {
		for i, col := range columns {
			excess := totalWidth(widths) - t.termWidth
			if excess <= 0 {
				return
			}
			if match(col) {
				floor := max(len(col.Header), col.MinWidth, minColumnWidth)
				widths[i] = max(floor, widths[i]-excess)
			}
		}
	}
	shrink(func(c Column) bool { return c.Flexible })
	shrink(func(c Column) bool { return c.Path })

	return widths
}

func totalWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w + tablePadding
	}
	return total
}

func (t *TableFormatter) formatHeader(columns []Column, widths []int) string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = fmt.Sprintf("%-*s", widths[i], col.Header)
	}
	return t.styles.TableHeader.Render(" " + strings.Join(cells, "  ") + " ")
}

func (t *TableFormatter) formatSeparator(widths []int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, totalWidth(widths)))
}

func (t *TableFormatter) formatRow(columns []Column, row TableRow, widths []int) string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		var cell string
		if i < len(row.Cells) {
			cell = row.Cells[i]
		}
		if col.Path {
			cell = truncateFilePath(cell, widths[i])
		} else {
			cell = truncateString(cell, widths[i])
		}
		cells[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	content := strings.TrimRight(" "+strings.Join(cells, "  "), " ")
	return t.rowStyle(row.Tone).Render(content)
}

func (t *TableFormatter) rowStyle(tone Tone) lipgloss.Style {
	switch tone {
	case ToneError:
		return t.styles.TableErrorRow
	case ToneWarning:
		return t.styles.TableWarnRow
	case ToneInfo:
		return t.styles.TableInfoRow
	default:
		return lipgloss.NewStyle()
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
