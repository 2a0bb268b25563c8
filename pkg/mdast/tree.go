package mdast

import (
	"fmt"
	"strings"

	"github.com/yaklabco/zkit/pkg/frontmatter"
)

// BuildOptions controls syntax-tree construction.
type BuildOptions struct {
	// FoldBlocks groups runs of list items, blockquote lines, table rows and
	// fenced regions into nested block tokens.
	FoldBlocks bool

	// Patterns supplies the frontmatter fence matcher. Nil selects DefaultPatterns.
	Patterns *Patterns
}

// SyntaxTree is a parsed document.
type SyntaxTree struct {
	// Frontmatter is the decoded metadata block, or nil when absent.
	Frontmatter *frontmatter.Frontmatter

	// FrontmatterTokens holds the raw lines consumed by the frontmatter block,
	// including fences and the blank lines skipped around it.
	FrontmatterTokens []Token

	// Footnotes lists every footnote definition. They also remain in Content.
	Footnotes []*Footnote

	// Content is the document body, flat or folded.
	Content []Token

	// Warnings describes malformed structure that was tolerated.
	Warnings []string
}

// Build extracts frontmatter and footnotes from a token sequence and
// optionally folds it into nested blocks. It fails only when the frontmatter
// body cannot be decoded; the error wraps frontmatter.ErrDecode.
func Build(tokens []Token, opts BuildOptions) (*SyntaxTree, error) {
	patterns := opts.Patterns
	if patterns == nil {
		patterns = DefaultPatterns()
	}

	tree := &SyntaxTree{}

	body, consumed, ok := extractFrontmatter(tokens, patterns)
	if ok {
		fm, err := frontmatter.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("build syntax tree: %w", err)
		}
		tree.Frontmatter = fm
		tree.FrontmatterTokens = tokens[:consumed]
		tokens = tokens[consumed:]
	}

	for _, tok := range tokens {
		if fn, isFootnote := tok.(*Footnote); isFootnote {
			tree.Footnotes = append(tree.Footnotes, fn)
		}
	}

	if !opts.FoldBlocks {
		tree.Content = tokens
		return tree, nil
	}

	f := &folder{tokens: tokens}
	tree.Content = f.fold()
	tree.Warnings = f.warnings
	return tree, nil
}

// Serialize reproduces the document text, including any frontmatter block.
func (t *SyntaxTree) Serialize() string {
	return Serialize(t.FrontmatterTokens) + Serialize(t.Content)
}

// extractFrontmatter locates a fenced metadata block after optional leading
// blank lines. It returns the body text and the number of tokens consumed,
// including blank lines after the closing fence. An unterminated block is
// treated as absent.
func extractFrontmatter(tokens []Token, patterns *Patterns) (string, int, bool) {
	i := skipEmpty(tokens, 0)
	if i >= len(tokens) || !isFrontmatterFence(tokens[i], patterns) {
		return "", 0, false
	}

	var body strings.Builder
	for j := i + 1; j < len(tokens); j++ {
		if isFrontmatterFence(tokens[j], patterns) {
			return body.String(), skipEmpty(tokens, j+1), true
		}
		body.WriteString(tokens[j].String())
	}
	return "", 0, false
}

func isFrontmatterFence(tok Token, patterns *Patterns) bool {
	return patterns.Frontmatter.MatchString(strings.TrimRight(tok.String(), "\r\n"))
}

func skipEmpty(tokens []Token, i int) int {
	for i < len(tokens) && tokens[i].Kind() == KindEmptyLine {
		i++
	}
	return i
}

// folder groups a flat token sequence using an index cursor.
type folder struct {
	tokens   []Token
	pos      int
	warnings []string
}

func (f *folder) fold() []Token {
	out := make([]Token, 0, len(f.tokens))
	for f.pos < len(f.tokens) {
		tok := f.tokens[f.pos]
		kind := tok.Kind()

		switch {
		case kind.Is(KindListItem):
			out = append(out, f.list())
		case kind == KindBlockquote:
			out = append(out, f.run(KindBlockquoteBlock, func(k Kind) bool { return k == KindBlockquote }))
		case kind == KindTableRow || kind == KindTableDivider:
			out = append(out, f.run(KindTable, func(k Kind) bool { return k == KindTableRow || k == KindTableDivider }))
		case kind == KindCodeFence:
			out = append(out, f.fenced(KindCodeBlock, KindCodeFence))
		case kind == KindMathFence:
			out = append(out, f.fenced(KindMathBlock, KindMathFence))
		default:
			out = append(out, tok)
			f.pos++
		}
	}
	return out
}

// list consumes items at the current item's level, recursing into deeper
// items and returning at the first shallower item or non-item token.
func (f *folder) list() *List {
	first, _ := f.tokens[f.pos].(Leveled)
	level := levelOf(first)

	var children []Token
	for f.pos < len(f.tokens) {
		tok := f.tokens[f.pos]
		if !tok.Kind().Is(KindListItem) {
			break
		}
		itemLevel := levelOf(tok.(Leveled))
		switch {
		case itemLevel == level:
			children = append(children, tok)
			f.pos++
		case itemLevel > level:
			children = append(children, f.list())
		default:
			return NewList(children...)
		}
	}
	return NewList(children...)
}

func levelOf(tok Leveled) int {
	if tok == nil {
		return 0
	}
	return tok.Level()
}

func (f *folder) run(kind Kind, member func(Kind) bool) *Block {
	start := f.pos
	for f.pos < len(f.tokens) && member(f.tokens[f.pos].Kind()) {
		f.pos++
	}
	return NewBlock(kind, f.tokens[start:f.pos:f.pos]...)
}

// fenced consumes the opening fence through the matching closing fence.
// A missing close folds the rest of the document and records a warning.
func (f *folder) fenced(kind, fence Kind) *FencedBlock {
	start := f.pos
	f.pos++
	for f.pos < len(f.tokens) {
		if f.tokens[f.pos].Kind() == fence {
			f.pos++
			return NewFencedBlock(kind, f.tokens[start:f.pos:f.pos]...)
		}
		f.pos++
	}
	f.warnings = append(f.warnings, fmt.Sprintf("unterminated %s opened by %q", kind, strings.TrimRight(f.tokens[start].String(), "\r\n")))
	return NewFencedBlock(kind, f.tokens[start:f.pos:f.pos]...)
}
