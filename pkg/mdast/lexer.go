package mdast

import "regexp"

// Lexer converts raw text into a flat sequence of line tokens.
type Lexer struct {
	patterns *Patterns
}

// NewLexer creates a lexer over the given pattern table.
// A nil table selects DefaultPatterns.
func NewLexer(patterns *Patterns) *Lexer {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Lexer{patterns: patterns}
}

// Tokenize lexes text with the default pattern table.
func Tokenize(text string) []Token {
	return NewLexer(nil).Tokenize(text)
}

// Patterns returns the lexer's pattern table.
func (l *Lexer) Patterns() *Patterns {
	return l.patterns
}

// Tokenize classifies every line of text, then demotes lines that sit inside
// code or math fences to the fence's inner kind. It never fails: an
// unterminated fence swallows the rest of the document.
func (l *Lexer) Tokenize(text string) []Token {
	lines := BuildLines(text)
	tokens := make([]Token, 0, len(lines))
	for _, line := range lines {
		tokens = append(tokens, l.classify(line.Text(text), line.EOL(text)))
	}
	fixFencedContext(tokens)
	return tokens
}

// classify tests one line against the pattern table in priority order:
// empty line, header, code fence, math fence, footnote, finished task,
// unfinished task, horizontal rule, unordered item, ordered item, table
// divider, table row, blockquote, then text.
func (l *Lexer) classify(text, eol string) Token {
	p := l.patterns

	switch {
	case p.EmptyLine.MatchString(text):
		return NewLine(KindEmptyLine, text, eol)
	case p.Header.MatchString(text):
		return NewHeader(text, eol)
	case p.CodeFence.MatchString(text):
		return NewFence(KindCodeFence, text, eol, submatch(p.CodeFence, text))
	case p.MathFence.MatchString(text):
		return NewFence(KindMathFence, text, eol, submatch(p.MathFence, text))
	case p.Footnote.MatchString(text):
		return NewFootnote(text, eol, submatch(p.Footnote, text))
	case p.FinishedTask.MatchString(text):
		return NewListItem(KindTask, text, eol, true)
	case p.UnfinishedTask.MatchString(text):
		return NewListItem(KindTask, text, eol, false)
	case p.HorizontalRule.MatchString(text):
		return NewLine(KindHorizontalRule, text, eol)
	case p.UnorderedItem.MatchString(text):
		return NewListItem(KindUnorderedListItem, text, eol, false)
	case p.OrderedItem.MatchString(text):
		return NewListItem(KindOrderedListItem, text, eol, false)
	case p.TableDivider.MatchString(text):
		return NewLine(KindTableDivider, text, eol)
	case p.TableRow.MatchString(text):
		return NewTextLine(KindTableRow, text, eol)
	case p.Blockquote.MatchString(text):
		return NewTextLine(KindBlockquote, text, eol)
	default:
		return NewTextLine(KindText, text, eol)
	}
}

// fixFencedContext rewrites, in place, every token between an opening and a
// closing fence of the same kind into that fence's inner kind.
func fixFencedContext(tokens []Token) {
	var open Kind // zero value KindText means "outside any fence"
	for i, tok := range tokens {
		kind := tok.Kind()

		if open != KindText {
			if kind == open {
				open = KindText
				continue
			}
			tokens[i] = demote(tok, innerKind(open))
			continue
		}

		if kind == KindCodeFence || kind == KindMathFence {
			open = kind
		}
	}
}

func innerKind(fence Kind) Kind {
	if fence == KindMathFence {
		return KindMath
	}
	return KindCode
}

func demote(tok Token, kind Kind) Token {
	switch t := tok.(type) {
	case *Line:
		return NewLine(kind, t.text, t.eol)
	case *TextLine:
		return NewLine(kind, t.text, t.eol)
	case *Header:
		return NewLine(kind, t.text, t.eol)
	case *ListItem:
		return NewLine(kind, t.text, t.eol)
	case *Footnote:
		return NewLine(kind, t.text, t.eol)
	case *Fence:
		return NewLine(kind, t.text, t.eol)
	default:
		return NewLine(kind, tok.String(), "")
	}
}

func submatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
