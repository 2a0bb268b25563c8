// Package audit checks notes for the metadata and structure a zettelkasten
// relies on: an id, a title, tags, closed fences and labelled code blocks.
package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/fsutil"
	"github.com/yaklabco/zkit/pkg/mdast"
	"github.com/yaklabco/zkit/pkg/runner"
)

// Severity indicates the importance of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a single issue in one note.
type Finding struct {
	// Check is the ID of the check that produced the finding.
	Check string `json:"check"`

	Message  string   `json:"message"`
	Severity Severity `json:"severity"`

	// Line is 1-based; 0 means the finding concerns the whole note.
	Line int `json:"line,omitempty"`

	// Suggestion is an optional fix hint.
	Suggestion string `json:"suggestion,omitempty"`
}

// Report holds the findings for one note.
type Report struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings"`
}

// HasIssues reports whether any finding was made.
func (r *Report) HasIssues() bool {
	return r != nil && len(r.Findings) > 0
}

// Count returns the number of findings with severity s.
func (r *Report) Count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Note is the parsed input handed to every check.
type Note struct {
	Path string
	Text string

	// Tokens is the flat token sequence of the whole note.
	Tokens []mdast.Token

	// Tree is built without folding. Its Frontmatter is nil when absent or
	// undecodable.
	Tree *mdast.SyntaxTree

	// BodyOffset is the number of leading tokens consumed by frontmatter.
	BodyOffset int

	// DecodeErr is set when the frontmatter could not be decoded.
	DecodeErr error

	Patterns *mdast.Patterns
}

// Stem returns the file name without folder or extension.
func (n *Note) Stem() string {
	base := filepath.Base(n.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Check inspects one note.
type Check interface {
	// ID returns the identifier used in reports, e.g. "missing-tags".
	ID() string

	// Description explains what the check looks for.
	Description() string

	// Run returns the findings for n.
	Run(n *Note) []Finding
}

// Auditor runs a fixed set of checks.
type Auditor struct {
	checks   []Check
	patterns *mdast.Patterns
}

// New builds an auditor for cfg. Structural checks always run; the
// metadata checks follow the Require* toggles.
func New(cfg config.AuditConfig, patterns *mdast.Patterns) (*Auditor, error) {
	if patterns == nil {
		patterns = mdast.DefaultPatterns()
	}

	checks := []Check{frontmatterCheck{}, fenceCheck{}}

	if cfg.RequireID {
		var idPattern *regexp.Regexp
		if cfg.IDPattern != "" {
			re, err := regexp.Compile(cfg.IDPattern)
			if err != nil {
				return nil, fmt.Errorf("compile id pattern: %w", err)
			}
			idPattern = re
		}
		checks = append(checks, idCheck{pattern: idPattern})
	}
	if cfg.RequireTitle {
		checks = append(checks, titleCheck{})
	}
	if cfg.RequireTags {
		checks = append(checks, tagsCheck{})
	}
	if cfg.CodeLanguage {
		checks = append(checks, codeLanguageCheck{})
	}

	return &Auditor{checks: checks, patterns: patterns}, nil
}

// Checks returns the active checks in run order.
func (a *Auditor) Checks() []Check {
	return a.checks
}

// CheckText audits text as if read from path.
func (a *Auditor) CheckText(path, text string) *Report {
	note := a.parse(path, text)

	report := &Report{Path: path, Findings: []Finding{}}
	for _, check := range a.checks {
		report.Findings = append(report.Findings, check.Run(note)...)
	}
	return report
}

// CheckFile reads and audits one file.
func (a *Auditor) CheckFile(ctx context.Context, path string) (*Report, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return a.CheckText(path, string(content)), nil
}

// Run audits every note selected by opts concurrently. Reports are returned
// in discovery order.
func (a *Auditor) Run(ctx context.Context, opts runner.Options) (*runner.Result[*Report], error) {
	return runner.Run[*Report](ctx, opts, a.CheckFile)
}

func (a *Auditor) parse(path, text string) *Note {
	tokens := mdast.NewLexer(a.patterns).Tokenize(text)
	note := &Note{Path: path, Text: text, Tokens: tokens, Patterns: a.patterns}

	tree, err := mdast.Build(tokens, mdast.BuildOptions{Patterns: a.patterns})
	if err != nil {
		note.DecodeErr = err
		tree = &mdast.SyntaxTree{Content: tokens}
	}
	note.Tree = tree
	note.BodyOffset = len(tree.FrontmatterTokens)
	return note
}
