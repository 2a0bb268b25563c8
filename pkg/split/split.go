package split

import (
	"fmt"
	"strings"

	"github.com/yaklabco/zkit/pkg/mdast"
)

// Options configures a split.
type Options struct {
	// Predicate selects split points.
	Predicate Predicate

	// UseKeyword requires a split point to also contain Keyword.
	UseKeyword bool

	// RemoveKeyword strips Keyword from every inline token. Tokens left blank
	// are dropped.
	RemoveKeyword bool

	// Keyword is the marker substring, e.g. "#split".
	Keyword string

	// Patterns supplies the tag matcher. Nil selects mdast.DefaultPatterns.
	Patterns *mdast.Patterns
}

// Result is the outcome of a split.
type Result struct {
	// Sections in document order, flattened across nesting.
	Sections []*mdast.Block

	// GlobalTags found outside every section, in encounter order, with duplicates.
	GlobalTags []string

	// Discarded counts the non-blank lines that fell outside every section.
	Discarded int
}

// Split partitions tokens into sections. A section starts at a token
// accepted by Predicate.Matches and runs until a token accepted by
// Predicate.Bounds. Containers holding a split point are descended into, so
// markers nested inside lists or blockquotes also split.
//
// Tokens are mutated in place when RemoveKeyword is set. An invalid predicate
// fails before any token is touched. Zero sections is not an error.
func Split(tokens []mdast.Token, opts Options) (*Result, error) {
	if err := opts.Predicate.Validate(); err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	if (opts.UseKeyword || opts.RemoveKeyword) && opts.Keyword == "" {
		return nil, fmt.Errorf("split: %w", ErrMissingKeyword)
	}

	s := &splitter{
		opts:     opts,
		patterns: opts.Patterns,
		marked:   make(map[mdast.Token]bool),
		result:   &Result{},
	}
	if s.patterns == nil {
		s.patterns = mdast.DefaultPatterns()
	}

	tokens = s.prepare(tokens)
	s.walk(tokens)
	return s.result, nil
}

type splitter struct {
	opts     Options
	patterns *mdast.Patterns
	marked   map[mdast.Token]bool
	result   *Result
	current  *mdast.Block
}

// prepare records which tokens carry the keyword and, when requested, strips
// it. Containers are marked by their first inline descendant.
func (s *splitter) prepare(toks []mdast.Token) []mdast.Token {
	if !s.opts.UseKeyword && !s.opts.RemoveKeyword {
		return toks
	}

	out := make([]mdast.Token, 0, len(toks))
	for _, tok := range toks {
		if c, ok := tok.(mdast.Container); ok {
			if first := firstInline(c.Children()); first != nil && strings.Contains(first.Content(), s.opts.Keyword) {
				s.marked[tok] = true
			}
			c.SetChildren(s.prepare(c.Children()))
			if c.Len() > 0 {
				out = append(out, tok)
			}
			continue
		}
		if s.prepareLeaf(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func (s *splitter) prepareLeaf(tok mdast.Token) bool {
	in, ok := inline(tok)
	if !ok {
		return true
	}
	content := in.Content()
	if !strings.Contains(content, s.opts.Keyword) {
		return true
	}
	s.marked[tok] = true

	if !s.opts.RemoveKeyword {
		return true
	}
	stripped := removeKeyword(content, s.opts.Keyword)
	if strings.TrimSpace(stripped) == "" {
		return false
	}
	in.SetContent(stripped)
	return true
}

// removeKeyword deletes every keyword occurrence. The whitespace around a
// removed keyword collapses to one space, leading indentation is kept and
// trailing whitespace is dropped.
func removeKeyword(content, keyword string) string {
	parts := strings.Split(content, keyword)
	out := parts[0]
	for _, part := range parts[1:] {
		left := strings.TrimRight(out, " \t")
		right := strings.TrimLeft(part, " \t")
		switch {
		case strings.TrimSpace(out) == "":
			out += right
		case left != out || right != part:
			out = left + " " + right
		default:
			out += part
		}
	}
	return strings.TrimRight(out, " \t")
}

func (s *splitter) opens(tok mdast.Token) bool {
	if s.opts.UseKeyword && !s.marked[tok] {
		return false
	}
	return s.opts.Predicate.Matches(tok)
}

func (s *splitter) bounds(tok mdast.Token) bool {
	if s.opts.UseKeyword && !s.marked[tok] {
		return false
	}
	return s.opts.Predicate.Bounds(tok)
}

func (s *splitter) walk(toks []mdast.Token) {
	for _, tok := range toks {
		if s.current != nil && s.bounds(tok) {
			s.current = nil
		}

		if s.current == nil && s.opens(tok) {
			s.current = mdast.NewSection(tok)
			s.result.Sections = append(s.result.Sections, s.current)
			continue
		}

		if c, ok := tok.(mdast.Container); ok && s.holdsBoundary(c) {
			s.walk(c.Children())
			continue
		}

		if s.current != nil {
			s.current.Append(tok)
			continue
		}

		s.outside(tok)
	}
}

func (s *splitter) holdsBoundary(c mdast.Container) bool {
	return mdast.FindFirst(c.Children(), s.bounds) != nil
}

// outside accounts for a token that belongs to no section.
func (s *splitter) outside(tok mdast.Token) {
	//nolint:errcheck,revive // callback never fails
	mdast.Walk([]mdast.Token{tok}, func(t mdast.Token) error {
		if _, isContainer := t.(mdast.Container); isContainer {
			return nil
		}
		if t.Kind() != mdast.KindEmptyLine {
			s.result.Discarded++
		}
		if in, ok := inline(t); ok {
			s.result.GlobalTags = append(s.result.GlobalTags, s.patterns.Tags(in.Content())...)
		}
		return nil
	})
}

func inline(tok mdast.Token) (mdast.Inline, bool) {
	if !tok.Kind().IsInline() {
		return nil, false
	}
	in, ok := tok.(mdast.Inline)
	return in, ok
}

func firstInline(toks []mdast.Token) mdast.Inline {
	found := mdast.FindFirst(toks, func(t mdast.Token) bool {
		_, ok := inline(t)
		return ok
	})
	if found == nil {
		return nil
	}
	in, _ := inline(found)
	return in
}
