// Package zettel runs the full note-splitting pipeline: tokenize, build the
// syntax tree, split into sections and format each section as a standalone
// document. It performs no I/O.
package zettel

import (
	"fmt"

	"github.com/yaklabco/zkit/pkg/format"
	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/mdast"
	"github.com/yaklabco/zkit/pkg/split"
)

// Options configures the pipeline.
type Options struct {
	// Predicate selects the tokens that start a new note.
	Predicate split.Predicate

	// Keyword handling, see split.Options.
	UseKeyword    bool
	RemoveKeyword bool
	Keyword       string

	// FoldBlocks nests lists, tables, quotes and fenced blocks before splitting.
	FoldBlocks bool

	// Formatting toggles, see format.Options.
	CopyGlobalTags  bool
	CopyFrontmatter bool
	MoveFootnotes   bool

	// Patterns overrides the lexer pattern table. Nil selects the defaults.
	Patterns *mdast.Patterns

	// NewTitle names sections with neither header nor text.
	NewTitle func() string
}

// DefaultOptions splits on level 1 headers with every formatting toggle on.
func DefaultOptions() Options {
	level := 1
	return Options{
		Predicate:       split.Predicate{Kind: mdast.KindHeader, Level: &level},
		RemoveKeyword:   true,
		Keyword:         "#split",
		FoldBlocks:      true,
		CopyGlobalTags:  true,
		CopyFrontmatter: true,
		MoveFootnotes:   true,
	}
}

// Result is the pipeline output.
type Result struct {
	// Documents holds one entry per non-blank section, in source order.
	Documents []format.Document

	// GlobalTags were found outside every section.
	GlobalTags []string

	// Discarded counts non-blank lines preceding or between sections.
	Discarded int

	// Sections is the number of sections found, including blank ones.
	Sections int

	// Frontmatter of the source, or nil.
	Frontmatter *frontmatter.Frontmatter

	// Warnings lists tolerated structural problems.
	Warnings []string
}

// Split cuts text into standalone documents.
//
// Errors are either a configuration error from the predicate or keyword
// settings, or a frontmatter decode failure wrapping frontmatter.ErrDecode.
// A document with no split points returns an empty Result and no error.
func Split(text string, opts Options) (*Result, error) {
	if err := opts.Predicate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid split options: %w", err)
	}

	patterns := opts.Patterns
	if patterns == nil {
		patterns = mdast.DefaultPatterns()
	}

	tokens := mdast.NewLexer(patterns).Tokenize(text)

	tree, err := mdast.Build(tokens, mdast.BuildOptions{
		FoldBlocks: opts.FoldBlocks,
		Patterns:   patterns,
	})
	if err != nil {
		return nil, err
	}

	parts, err := split.Split(tree.Content, split.Options{
		Predicate:     opts.Predicate,
		UseKeyword:    opts.UseKeyword,
		RemoveKeyword: opts.RemoveKeyword,
		Keyword:       opts.Keyword,
		Patterns:      patterns,
	})
	if err != nil {
		return nil, err
	}

	docs, err := format.Format(parts.Sections, format.Options{
		GlobalTags:      parts.GlobalTags,
		CopyGlobalTags:  opts.CopyGlobalTags,
		Frontmatter:     tree.Frontmatter,
		CopyFrontmatter: opts.CopyFrontmatter,
		Footnotes:       tree.Footnotes,
		MoveFootnotes:   opts.MoveFootnotes,
		NewTitle:        opts.NewTitle,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Documents:   docs,
		GlobalTags:  parts.GlobalTags,
		Discarded:   parts.Discarded,
		Sections:    len(parts.Sections),
		Frontmatter: tree.Frontmatter,
		Warnings:    tree.Warnings,
	}, nil
}
