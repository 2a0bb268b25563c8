package audit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/langdetect"
	"github.com/yaklabco/zkit/pkg/mdast"
)

// Check IDs.
const (
	CheckFrontmatter  = "frontmatter"
	CheckFence        = "unterminated-fence"
	CheckID           = "missing-id"
	CheckTitle        = "missing-title"
	CheckTags         = "missing-tags"
	CheckCodeLanguage = "code-language"
)

// frontmatterCheck reports undecodable and unterminated frontmatter.
type frontmatterCheck struct{}

func (frontmatterCheck) ID() string { return CheckFrontmatter }

func (frontmatterCheck) Description() string {
	return "Frontmatter must be closed and hold valid YAML"
}

func (frontmatterCheck) Run(n *Note) []Finding {
	open := firstNonEmpty(n.Tokens)
	if open < 0 || !isFrontmatterFence(n.Tokens[open], n.Patterns) {
		return nil
	}

	if n.DecodeErr != nil {
		line := open + 1
		var decodeErr *frontmatter.DecodeError
		if errors.As(n.DecodeErr, &decodeErr) && decodeErr.Line > 0 {
			line += decodeErr.Line
		}
		return []Finding{{
			Check:    CheckFrontmatter,
			Message:  "frontmatter is not valid YAML: " + rootCause(n.DecodeErr),
			Severity: SeverityError,
			Line:     line,
		}}
	}

	if n.Tree.Frontmatter == nil {
		return []Finding{{
			Check:      CheckFrontmatter,
			Message:    "frontmatter block is never closed",
			Severity:   SeverityError,
			Line:       open + 1,
			Suggestion: "add a closing --- line",
		}}
	}
	return nil
}

// fenceCheck reports code and math fences that run to the end of the note.
type fenceCheck struct{}

func (fenceCheck) ID() string { return CheckFence }

func (fenceCheck) Description() string {
	return "Code and math fences must be closed"
}

func (fenceCheck) Run(n *Note) []Finding {
	var findings []Finding
	for _, block := range fencedBlocks(n) {
		if block.closed {
			continue
		}
		what := "code"
		if block.kind == mdast.KindMathFence {
			what = "math"
		}
		findings = append(findings, Finding{
			Check:    CheckFence,
			Message:  fmt.Sprintf("%s fence is never closed", what),
			Severity: SeverityError,
			Line:     block.line,
		})
	}
	return findings
}

// idCheck requires an id in frontmatter or a file name matching pattern.
type idCheck struct {
	pattern *regexp.Regexp
}

func (idCheck) ID() string { return CheckID }

func (idCheck) Description() string {
	return "Notes need an id in frontmatter or in the file name"
}

func (c idCheck) Run(n *Note) []Finding {
	if fm := n.Tree.Frontmatter; fm != nil {
		if id, ok := fm.String("id"); ok && strings.TrimSpace(id) != "" {
			return nil
		}
	}
	if c.pattern != nil && c.pattern.MatchString(n.Stem()) {
		return nil
	}
	finding := Finding{
		Check:    CheckID,
		Message:  "note has no id",
		Severity: SeverityWarning,
	}
	if c.pattern != nil {
		finding.Suggestion = fmt.Sprintf("add an id: field or rename the file to match %s", c.pattern)
	}
	return []Finding{finding}
}

// titleCheck requires a frontmatter title or a heading.
type titleCheck struct{}

func (titleCheck) ID() string { return CheckTitle }

func (titleCheck) Description() string {
	return "Notes need a title in frontmatter or a heading"
}

func (titleCheck) Run(n *Note) []Finding {
	if fm := n.Tree.Frontmatter; fm != nil {
		if title, ok := fm.String("title"); ok && strings.TrimSpace(title) != "" {
			return nil
		}
	}
	for _, tok := range n.Tree.Content {
		if h, ok := tok.(*mdast.Header); ok && h.Body() != "" {
			return nil
		}
	}
	return []Finding{{
		Check:      CheckTitle,
		Message:    "note has no title",
		Severity:   SeverityWarning,
		Suggestion: "add a title: field or a # heading",
	}}
}

// tagsCheck requires frontmatter tags or an inline tag.
type tagsCheck struct{}

func (tagsCheck) ID() string { return CheckTags }

func (tagsCheck) Description() string {
	return "Notes need at least one tag"
}

func (tagsCheck) Run(n *Note) []Finding {
	if fm := n.Tree.Frontmatter; fm != nil {
		if len(fm.Strings("tags")) > 0 || len(fm.Strings("tag")) > 0 {
			return nil
		}
	}
	for _, tok := range n.Tree.Content {
		if inline, ok := tok.(mdast.Inline); ok && len(n.Patterns.Tags(inline.Content())) > 0 {
			return nil
		}
	}
	return []Finding{{
		Check:    CheckTags,
		Message:  "note has no tags",
		Severity: SeverityInfo,
	}}
}

// codeLanguageCheck reports code fences without a language, suggesting one,
// and fences whose language is not recognized.
type codeLanguageCheck struct{}

func (codeLanguageCheck) ID() string { return CheckCodeLanguage }

func (codeLanguageCheck) Description() string {
	return "Code fences should name a known language"
}

func (codeLanguageCheck) Run(n *Note) []Finding {
	var findings []Finding
	for _, block := range fencedBlocks(n) {
		if block.kind != mdast.KindCodeFence {
			continue
		}

		lang, _, _ := strings.Cut(strings.TrimSpace(block.language), " ")
		lang = strings.Trim(lang, "{}.")

		switch {
		case lang == "":
			finding := Finding{
				Check:    CheckCodeLanguage,
				Message:  "code block has no language",
				Severity: SeverityWarning,
				Line:     block.line,
			}
			if s, ok := langdetect.Suggest([]byte(block.body)); ok {
				finding.Suggestion = fmt.Sprintf("looks like %s (by %s)", s.Language, s.Method)
			}
			findings = append(findings, finding)
		case !langdetect.Known(lang):
			findings = append(findings, Finding{
				Check:    CheckCodeLanguage,
				Message:  fmt.Sprintf("unknown code language %q", lang),
				Severity: SeverityInfo,
				Line:     block.line,
			})
		}
	}
	return findings
}

// fencedBlock is a fenced region of the flat token stream.
type fencedBlock struct {
	kind     mdast.Kind
	language string
	line     int
	body     string
	closed   bool
}

func fencedBlocks(n *Note) []fencedBlock {
	var (
		blocks []fencedBlock
		open   *fencedBlock
		body   strings.Builder
	)
	for i := n.BodyOffset; i < len(n.Tokens); i++ {
		tok := n.Tokens[i]
		kind := tok.Kind()

		if open != nil {
			if kind == open.kind {
				open.body = body.String()
				open.closed = true
				blocks = append(blocks, *open)
				open = nil
				continue
			}
			body.WriteString(tok.String())
			continue
		}

		if kind == mdast.KindCodeFence || kind == mdast.KindMathFence {
			block := fencedBlock{kind: kind, line: i + 1}
			if l, ok := tok.(mdast.Languaged); ok {
				block.language = l.Language()
			}
			open = &block
			body.Reset()
		}
	}
	if open != nil {
		open.body = body.String()
		blocks = append(blocks, *open)
	}
	return blocks
}

func firstNonEmpty(tokens []mdast.Token) int {
	for i, tok := range tokens {
		if tok.Kind() != mdast.KindEmptyLine {
			return i
		}
	}
	return -1
}

func isFrontmatterFence(tok mdast.Token, patterns *mdast.Patterns) bool {
	return patterns.Frontmatter.MatchString(strings.TrimRight(tok.String(), "\r\n"))
}

func rootCause(err error) string {
	var decodeErr *frontmatter.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Err != nil {
		return decodeErr.Err.Error()
	}
	return err.Error()
}
