package pretty

import (
	"strings"

	"github.com/yaklabco/zkit/pkg/diff"
)

// FormatDiff renders d as a unified diff, coloring added and removed lines.
func (s *Styles) FormatDiff(d *diff.Diff) string {
	if d == nil {
		return ""
	}

	var b strings.Builder
	path := strings.TrimPrefix(d.Path, "/")
	b.WriteString(s.Bold.Render("--- a/"+path) + "\n")
	b.WriteString(s.Bold.Render("+++ b/"+path) + "\n")

	for _, h := range d.Hunks {
		b.WriteString(s.Location.Render(h.Header()) + "\n")
		for _, l := range h.Lines {
			text := l.Op.Prefix() + l.Text
			switch l.Op {
			case diff.Insert:
				text = s.Created.Render(text)
			case diff.Delete:
				text = s.Error.Render(text)
			case diff.Equal:
			}
			b.WriteString(text + "\n")
		}
	}
	return b.String()
}
