package mdast

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Pattern names accepted by Patterns.Override and the "patterns" config section.
const (
	PatternEmptyLine      = "empty_line"
	PatternHeader         = "header"
	PatternHorizontalRule = "horizontal_rule"
	PatternBlockquote     = "blockquote"
	PatternFootnote       = "footnote"
	PatternFrontmatter    = "frontmatter"
	PatternFinishedTask   = "finished_task"
	PatternUnfinishedTask = "unfinished_task"
	PatternUnorderedItem  = "unordered_list_item"
	PatternOrderedItem    = "ordered_list_item"
	PatternTableRow       = "table_row"
	PatternTableDivider   = "table_divider"
	PatternCodeFence      = "code_fence"
	PatternMathFence      = "math_fence"
	PatternTag            = "tag"
)

// Default expressions. Line patterns are matched against a single line
// without its terminator and anchor at the line start.
//
// Capture groups carry attributes: footnote group 1 is the bracketed
// reference, fence group 1 is the info string, tag group 1 is the tag.
//
//nolint:gochecknoglobals // Read-only lookup table.
var defaultExpressions = map[string]string{
	PatternEmptyLine:      `^[ \t]*$`,
	PatternHeader:         `^ {0,3}#{1,6}(?:[ \t]|$)`,
	PatternHorizontalRule: `^ {0,3}(?:(?:\*[ \t]*){3,}|(?:-[ \t]*){3,}|(?:_[ \t]*){3,})$`,
	PatternBlockquote:     `^ {0,3}>`,
	PatternFootnote:       `^(\[\^[^\]\s]+\]):`,
	PatternFrontmatter:    `^---[ \t]*$`,
	PatternFinishedTask:   `^[ \t]*[-*+][ \t]+\[[xX]\](?:[ \t]|$)`,
	PatternUnfinishedTask: `^[ \t]*[-*+][ \t]+\[ \](?:[ \t]|$)`,
	PatternUnorderedItem:  `^[ \t]*[-*+](?:[ \t]|$)`,
	PatternOrderedItem:    `^[ \t]*\d{1,9}[.)](?:[ \t]|$)`,
	PatternTableRow:       `^[ \t]*\|.*\|[ \t]*$`,
	PatternTableDivider:   `^[ \t]*\|(?:[ \t]*:?-+:?[ \t]*\|)+[ \t]*$`,
	PatternCodeFence:      "^[ \\t]*(?:```|~~~)(.*)$",
	PatternMathFence:      `^[ \t]*\$\$[ \t]*([^$]*)$`,
	PatternTag:            `(?:^|\s)(#[\p{L}\p{N}_/-]*[\p{L}_/-][\p{L}\p{N}_/-]*)`,
}

// Patterns is the table of independently compiled matchers used by the lexer,
// the syntax-tree builder and the splitter.
type Patterns struct {
	EmptyLine      *regexp.Regexp
	Header         *regexp.Regexp
	HorizontalRule *regexp.Regexp
	Blockquote     *regexp.Regexp
	Footnote       *regexp.Regexp
	Frontmatter    *regexp.Regexp
	FinishedTask   *regexp.Regexp
	UnfinishedTask *regexp.Regexp
	UnorderedItem  *regexp.Regexp
	OrderedItem    *regexp.Regexp
	TableRow       *regexp.Regexp
	TableDivider   *regexp.Regexp
	CodeFence      *regexp.Regexp
	MathFence      *regexp.Regexp
	Tag            *regexp.Regexp
}

// DefaultPatterns returns a fresh table compiled from the default expressions.
func DefaultPatterns() *Patterns {
	p := &Patterns{}
	for name, expr := range defaultExpressions {
		*p.slot(name) = regexp.MustCompile(expr)
	}
	return p
}

// PatternNames returns the names accepted by Override, sorted.
func PatternNames() []string {
	names := make([]string, 0, len(defaultExpressions))
	for name := range defaultExpressions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultExpression returns the built-in expression for a pattern name.
func DefaultExpression(name string) (string, bool) {
	expr, ok := defaultExpressions[name]
	return expr, ok
}

// Override replaces one matcher. The expression is compiled immediately so
// configuration errors surface before any document is processed.
func (p *Patterns) Override(name, expr string) error {
	slot := p.slot(strings.ToLower(name))
	if slot == nil {
		return fmt.Errorf("unknown pattern %q", name)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", name, err)
	}
	*slot = re
	return nil
}

// Clone returns a shallow copy; compiled expressions are safe to share.
func (p *Patterns) Clone() *Patterns {
	cp := *p
	return &cp
}

// Tags returns every tag found in s, in order, without deduplication.
func (p *Patterns) Tags(s string) []string {
	matches := p.Tag.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 && m[1] != "" {
			tags = append(tags, m[1])
		} else {
			tags = append(tags, strings.TrimSpace(m[0]))
		}
	}
	return tags
}

func (p *Patterns) slot(name string) **regexp.Regexp {
	switch name {
	case PatternEmptyLine:
		return &p.EmptyLine
	case PatternHeader:
		return &p.Header
	case PatternHorizontalRule:
		return &p.HorizontalRule
	case PatternBlockquote:
		return &p.Blockquote
	case PatternFootnote:
		return &p.Footnote
	case PatternFrontmatter:
		return &p.Frontmatter
	case PatternFinishedTask:
		return &p.FinishedTask
	case PatternUnfinishedTask:
		return &p.UnfinishedTask
	case PatternUnorderedItem:
		return &p.UnorderedItem
	case PatternOrderedItem:
		return &p.OrderedItem
	case PatternTableRow:
		return &p.TableRow
	case PatternTableDivider:
		return &p.TableDivider
	case PatternCodeFence:
		return &p.CodeFence
	case PatternMathFence:
		return &p.MathFence
	case PatternTag:
		return &p.Tag
	default:
		return nil
	}
}
