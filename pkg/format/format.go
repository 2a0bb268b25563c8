// Package format turns split sections into standalone documents: headers are
// renumbered, global tags and frontmatter are copied in, and footnotes follow
// their references.
package format

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/mdast"
)

// Options configures Format.
type Options struct {
	// GlobalTags are inserted into every section when CopyGlobalTags is set.
	GlobalTags     []string
	CopyGlobalTags bool

	// Frontmatter is copied, retitled, into every section when CopyFrontmatter is set.
	Frontmatter     *frontmatter.Frontmatter
	CopyFrontmatter bool

	// Footnotes are moved into the sections that cite them when MoveFootnotes is set.
	Footnotes     []*mdast.Footnote
	MoveFootnotes bool

	// NewTitle generates a title for sections with no header or text.
	// Defaults to a random UUID.
	NewTitle func() string
}

// Document is one formatted section.
type Document struct {
	Title   string
	Content string

	// Section is the mutated token tree that produced Content.
	Section *mdast.Block
}

// Format processes each section in order and returns one document per
// section that holds more than whitespace. Sections are mutated in place.
func Format(sections []*mdast.Block, opts Options) ([]Document, error) {
	if opts.NewTitle == nil {
		opts.NewTitle = uuid.NewString
	}

	docs := make([]Document, 0, len(sections))
	for i, section := range sections {
		if strings.TrimSpace(section.String()) == "" {
			continue
		}

		doc, err := formatSection(section, opts)
		if err != nil {
			return nil, fmt.Errorf("format section %d: %w", i+1, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func formatSection(section *mdast.Block, opts Options) (Document, error) {
	eol := lineEnding(section)
	title, titled := normalizeHeaders(section)

	var tagLine mdast.Token
	if opts.CopyGlobalTags && len(opts.GlobalTags) > 0 {
		tagLine = insertTags(section, opts.GlobalTags, eol)
	}

	if !titled {
		title = resolveTitle(section, tagLine, opts.NewTitle)
	}

	if opts.CopyFrontmatter && opts.Frontmatter != nil {
		block, err := frontmatterBlock(opts.Frontmatter.WithTitle(title), eol)
		if err != nil {
			return Document{}, err
		}
		section.Insert(0, block)
	}

	if opts.MoveFootnotes {
		relocateFootnotes(section, opts.Footnotes, eol)
	}

	return Document{Title: title, Content: section.String(), Section: section}, nil
}

// lineEnding returns the first line terminator of the section, "\n" when
// no line is terminated.
func lineEnding(section *mdast.Block) string {
	eol := "\n"
	mdast.FindFirst(section.Children(), func(t mdast.Token) bool {
		line, ok := t.(interface{ EOL() string })
		if ok && line.EOL() != "" {
			eol = line.EOL()
			return true
		}
		return false
	})
	return eol
}

// normalizeHeaders raises every header so that a leading header becomes
// level 1, and returns that header's body as the title. A leading header
// with an empty body gives no title.
func normalizeHeaders(section *mdast.Block) (string, bool) {
	if section.Len() == 0 {
		return "", false
	}
	first, ok := section.At(0).(*mdast.Header)
	if !ok {
		return "", false
	}

	if diff := first.Level() - 1; diff > 0 {
		for _, tok := range mdast.FindByKind(section.Children(), mdast.KindHeader) {
			if h, isHeader := tok.(*mdast.Header); isHeader {
				h.Raise(diff)
			}
		}
	}
	return first.Body(), first.Body() != ""
}

// insertTags places a line of space-joined tags after the first header, or
// at the start of the section.
func insertTags(section *mdast.Block, tags []string, eol string) mdast.Token {
	idx := 0
	for i, tok := range section.Children() {
		if tok.Kind() == mdast.KindHeader {
			idx = i + 1
			break
		}
	}

	line := mdast.NewTextLine(mdast.KindText, strings.Join(tags, " "), eol)
	if idx > 0 && !endsWithNewline(section.At(idx-1)) {
		section.Insert(idx, mdast.NewLine(mdast.KindEmptyLine, "", eol))
		idx++
	}
	section.Insert(idx, line)
	return line
}

func resolveTitle(section *mdast.Block, tagLine mdast.Token, newTitle func() string) string {
	var title string
	mdast.FindFirst(section.Children(), func(t mdast.Token) bool {
		if h, ok := t.(*mdast.Header); ok {
			title = h.Body()
		}
		return title != ""
	})
	if title != "" {
		return title
	}

	//nolint:errcheck,revive // callback never fails
	mdast.WalkInlines(section.Children(), func(in mdast.Inline) error {
		if title != "" || mdast.Token(in) == tagLine {
			return nil
		}
		if _, isHeader := in.(*mdast.Header); isHeader {
			return nil
		}
		title = strings.TrimSpace(in.Content())
		return nil
	})
	if title != "" {
		return title
	}
	return newTitle()
}

func frontmatterBlock(fm *frontmatter.Frontmatter, eol string) (*mdast.Block, error) {
	body, err := fm.Encode()
	if err != nil {
		return nil, fmt.Errorf("copy frontmatter: %w", err)
	}

	block := mdast.NewBlock(mdast.KindFrontmatter, mdast.NewLine(mdast.KindFrontmatterFence, frontmatter.Fence, eol))
	for _, li := range mdast.BuildLines(body) {
		end := li.EOL(body)
		if end != "" {
			end = eol
		}
		block.Append(mdast.NewLine(mdast.KindText, li.Text(body), end))
	}
	block.Append(mdast.NewLine(mdast.KindFrontmatterFence, frontmatter.Fence, eol))
	return block, nil
}

// relocateFootnotes keeps exactly the footnotes whose reference is cited by
// some other inline token of the section.
func relocateFootnotes(section *mdast.Block, footnotes []*mdast.Footnote, eol string) {
	for _, fn := range footnotes {
		present := mdast.ContainsDeep(section.Children(), fn)
		cited := isCited(section, fn)

		switch {
		case cited && !present:
			if section.Len() > 0 && !endsWithNewline(section.At(section.Len()-1)) {
				section.Append(mdast.NewLine(mdast.KindEmptyLine, "", eol))
			}
			section.Append(fn)
		case !cited && present:
			mdast.RemoveDeep(section, fn)
		}
	}
}

func isCited(section *mdast.Block, fn *mdast.Footnote) bool {
	cited := false
	//nolint:errcheck,revive // callback never fails
	mdast.WalkInlines(section.Children(), func(in mdast.Inline) error {
		if mdast.Token(in) != fn && strings.Contains(in.Content(), fn.Reference()) {
			cited = true
		}
		return nil
	})
	return cited
}

func endsWithNewline(tok mdast.Token) bool {
	return strings.HasSuffix(tok.String(), "\n")
}
