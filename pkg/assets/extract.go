// Package assets finds the images, PDFs and other attachments that notes
// reference, reports broken references and unused files, and moves assets
// while rewriting the notes that point at them.
package assets

import (
	"bytes"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/zkit/pkg/mdast"
)

// RefKind distinguishes the syntaxes that reference an asset.
type RefKind string

const (
	// RefLink is a Markdown link, [text](file.pdf).
	RefLink RefKind = "link"

	// RefImage is a Markdown image, ![alt](file.png).
	RefImage RefKind = "image"

	// RefEmbed is a wiki embed, ![[file.png]].
	RefEmbed RefKind = "embed"

	// RefWiki is a wiki link, [[file.pdf]].
	RefWiki RefKind = "wiki"
)

// IsWiki reports whether the reference uses [[...]] syntax.
func (k RefKind) IsWiki() bool {
	return k == RefEmbed || k == RefWiki
}

// Reference is one asset reference in a note.
type Reference struct {
	// Note is the referencing note.
	Note string `json:"note"`

	// Target is the destination as written, without fragment or alias.
	Target string `json:"target"`

	Kind RefKind `json:"kind"`

	// Line is 1-based.
	Line int `json:"line"`

	// Resolved is the asset file the target points at, empty when broken.
	Resolved string `json:"resolved,omitempty"`
}

// wikiPattern matches [[target]], [[target|alias]], [[target#part]] and
// their ! embed forms.
//
//nolint:gochecknoglobals // Read-only compiled pattern.
var wikiPattern = regexp.MustCompile(`(!?)\[\[([^\[\]|#]+)(#[^\[\]|]*)?(\|[^\[\]]*)?\]\]`)

// Extractor pulls asset references out of note text.
type Extractor struct {
	md         goldmark.Markdown
	lexer      *mdast.Lexer
	extensions map[string]bool
}

// NewExtractor returns an extractor that reports targets ending in one of
// extensions. Markdown links go through goldmark with GFM enabled; wiki
// links are matched on the inline lines of the core lexer, so fenced code is
// skipped by both.
func NewExtractor(extensions []string, patterns *mdast.Patterns) *Extractor {
	if patterns == nil {
		patterns = mdast.DefaultPatterns()
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Extractor{
		md:         goldmark.New(goldmark.WithExtensions(extension.GFM)),
		lexer:      mdast.NewLexer(patterns),
		extensions: exts,
	}
}

// IsAsset reports whether name has an asset extension.
func (e *Extractor) IsAsset(name string) bool {
	return e.extensions[strings.ToLower(path.Ext(name))]
}

// Extract returns the asset references of one note in document order
// within each syntax: Markdown links first, then wiki links.
func (e *Extractor) Extract(note string, content []byte) []Reference {
	refs := e.markdownRefs(note, content)
	return append(refs, e.wikiRefs(note, string(content))...)
}

func (e *Extractor) markdownRefs(note string, content []byte) []Reference {
	doc := e.md.Parser().Parse(text.NewReader(content), parser.WithContext(parser.NewContext()))

	var refs []Reference
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var (
			dest []byte
			kind RefKind
		)
		switch node := n.(type) {
		case *ast.Link:
			dest, kind = node.Destination, RefLink
		case *ast.Image:
			dest, kind = node.Destination, RefImage
		default:
			return ast.WalkContinue, nil
		}

		target, ok := localTarget(string(dest))
		if ok && e.IsAsset(target) {
			refs = append(refs, Reference{
				Note:   note,
				Target: target,
				Kind:   kind,
				Line:   lineOf(n, content),
			})
		}
		return ast.WalkContinue, nil
	})
	return refs
}

func (e *Extractor) wikiRefs(note, content string) []Reference {
	var refs []Reference
	for i, tok := range e.lexer.Tokenize(content) {
		inline, ok := tok.(mdast.Inline)
		if !ok {
			continue
		}
		for _, m := range wikiPattern.FindAllStringSubmatch(inline.Content(), -1) {
			target := strings.TrimSpace(m[2])
			if !e.IsAsset(target) {
				continue
			}
			kind := RefWiki
			if m[1] == "!" {
				kind = RefEmbed
			}
			refs = append(refs, Reference{Note: note, Target: target, Kind: kind, Line: i + 1})
		}
	}
	return refs
}

// localTarget strips query and fragment from a link destination and
// percent-decodes it. URLs with a scheme are not local.
func localTarget(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return "", false
	}
	if u, err := url.Parse(dest); err == nil && u.Scheme != "" {
		return "", false
	}
	dest, _, _ = strings.Cut(dest, "#")
	dest, _, _ = strings.Cut(dest, "?")
	if decoded, err := url.PathUnescape(dest); err == nil {
		dest = decoded
	}
	return dest, dest != ""
}

// lineOf returns the 1-based line of n. Inline nodes carry no position of
// their own, so the line is counted from the start of the nearest block
// ancestor holding source lines to the inline's first source offset.
func lineOf(n ast.Node, content []byte) int {
	for p := n; p != nil; p = p.Parent() {
		if p.Type() != ast.TypeBlock {
			continue
		}
		lines := p.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		line := 1 + bytes.Count(content[:start], []byte("\n"))
		if seg := inlineStart(n, p, content, start); seg > start {
			line += bytes.Count(content[start:seg], []byte("\n"))
		}
		return line
	}
	return 0
}

// inlineStart finds the source offset of n inside block. It is the first
// text segment of n, or for a node without text such as an image with no
// alt text, its destination after the text preceding it.
func inlineStart(n, block ast.Node, content []byte, blockStart int) int {
	if s := textStart(n); s >= 0 {
		return s
	}

	from := blockStart
	for p := n; p != nil && p != block; p = p.Parent() {
		found := false
		for prev := p.PreviousSibling(); prev != nil; prev = prev.PreviousSibling() {
			if s := textStop(prev); s >= 0 {
				from, found = s, true
				break
			}
		}
		if found {
			break
		}
	}
	if from > len(content) {
		return -1
	}
	var dest []byte
	switch node := n.(type) {
	case *ast.Link:
		dest = node.Destination
	case *ast.Image:
		dest = node.Destination
	}
	for _, lead := range []string{"](", "](<"} {
		if i := bytes.Index(content[from:], append([]byte(lead), dest...)); i >= 0 {
			return from + i
		}
	}
	return -1
}

func textStart(n ast.Node) int {
	start := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			start = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return start
}

func textStop(n ast.Node) int {
	stop := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); entering && ok {
			stop = t.Segment.Stop
		}
		return ast.WalkContinue, nil
	})
	return stop
}
