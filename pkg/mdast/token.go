// Package mdast provides the line-oriented Markdown token model used by zkit.
// It defines:
// - Patterns: the table of line and inline regular expressions
// - Lexer: raw text to a flat, lossless token sequence
// - Build: frontmatter and footnote extraction plus block folding
//
// Serializing every token of a document in order reproduces the input byte for byte.
package mdast

import "strings"

// Token is a node of a tokenized document.
type Token interface {
	// Kind classifies the token.
	Kind() Kind

	// String returns the serialized form, including line terminators.
	String() string
}

// Inline is implemented by leaf tokens whose content may hold inline elements
// such as tags, keywords or footnote references.
type Inline interface {
	Token
	Content() string
	SetContent(content string)
}

// Leveled is implemented by tokens exposing a nesting level: header depth or
// list indentation width.
type Leveled interface {
	Token
	Level() int
}

// Languaged is implemented by fences and fenced blocks.
type Languaged interface {
	Token
	Language() string
}

// Line is a leaf token wrapping exactly one line of text.
type Line struct {
	kind Kind
	text string
	eol  string
}

// NewLine creates a leaf token. text must not contain a line terminator;
// eol is the terminator that followed it ("\n", "\r\n" or "" at end of input).
func NewLine(kind Kind, text, eol string) *Line {
	return &Line{kind: kind, text: text, eol: eol}
}

// Kind implements Token.
func (l *Line) Kind() Kind { return l.kind }

// String implements Token.
func (l *Line) String() string { return l.text + l.eol }

// Text returns the line without its terminator.
func (l *Line) Text() string { return l.text }

// EOL returns the line terminator.
func (l *Line) EOL() string { return l.eol }

// TextLine is a leaf token with mutable inline content.
type TextLine struct {
	Line
}

// NewTextLine creates an inline-capable leaf token.
func NewTextLine(kind Kind, text, eol string) *TextLine {
	return &TextLine{Line: Line{kind: kind, text: text, eol: eol}}
}

// Content implements Inline.
func (t *TextLine) Content() string { return t.text }

// SetContent implements Inline.
func (t *TextLine) SetContent(content string) { t.text = content }

// Header is an ATX heading line.
type Header struct {
	TextLine
	level int
}

// NewHeader creates a header token, deriving the level from the leading '#' run.
func NewHeader(text, eol string) *Header {
	h := &Header{TextLine: TextLine{Line: Line{kind: KindHeader, text: text, eol: eol}}}
	h.level = countMarkers(text)
	return h
}

// Level returns the number of leading '#' characters.
func (h *Header) Level() int { return h.level }

// Body returns the heading text after the level markers, trimmed.
func (h *Header) Body() string {
	rest := strings.TrimLeft(h.text, " \t")
	return strings.TrimSpace(strings.TrimLeft(rest, "#"))
}

// SetContent implements Inline and re-derives the level.
func (h *Header) SetContent(content string) {
	h.text = content
	h.level = countMarkers(content)
}

// Raise lowers the heading depth by n, stripping n leading '#' characters.
// The level never drops below 1.
func (h *Header) Raise(n int) {
	n = min(n, h.level-1)
	if n <= 0 {
		return
	}
	idx := strings.IndexByte(h.text, '#')
	h.text = h.text[:idx] + h.text[idx+n:]
	h.level -= n
}

func countMarkers(text string) int {
	rest := strings.TrimLeft(text, " \t")
	return len(rest) - len(strings.TrimLeft(rest, "#"))
}

// ListItem is an unordered item, ordered item or task line.
type ListItem struct {
	TextLine
	level int
	done  bool
}

// NewListItem creates a list item token of the given kind.
func NewListItem(kind Kind, text, eol string, done bool) *ListItem {
	return &ListItem{
		TextLine: TextLine{Line: Line{kind: kind, text: text, eol: eol}},
		level:    indentWidth(text),
		done:     done,
	}
}

// Level returns the indentation width in columns, counting a tab as four.
func (li *ListItem) Level() int { return li.level }

// Done reports whether a task checkbox is ticked.
func (li *ListItem) Done() bool { return li.done }

// indentWidth assumes spaces and tabs are not mixed within one line.
func indentWidth(text string) int {
	width := 0
	for _, r := range text {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}

// Footnote is a footnote definition line such as "[^1]: text".
type Footnote struct {
	TextLine
	reference string
}

// NewFootnote creates a footnote token. reference is the bracketed label,
// e.g. "[^1]", used to find citations.
func NewFootnote(text, eol, reference string) *Footnote {
	return &Footnote{
		TextLine:  TextLine{Line: Line{kind: KindFootnote, text: text, eol: eol}},
		reference: reference,
	}
}

// Reference returns the bracketed label.
func (f *Footnote) Reference() string { return f.reference }

// Fence is a code or math fence line.
type Fence struct {
	Line
	language string
}

// NewFence creates a fence token of kind KindCodeFence or KindMathFence.
func NewFence(kind Kind, text, eol, language string) *Fence {
	return &Fence{Line: Line{kind: kind, text: text, eol: eol}, language: strings.TrimSpace(language)}
}

// Language returns the info string after the fence marker.
func (f *Fence) Language() string { return f.language }
