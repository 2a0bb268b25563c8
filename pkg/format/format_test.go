package format_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/zkit/pkg/format"
	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/mdast"
	"github.com/yaklabco/zkit/pkg/split"
)

type parsed struct {
	tree   *mdast.SyntaxTree
	result *split.Result
}

func splitByHeader(t *testing.T, input string) parsed {
	t.Helper()

	tree, err := mdast.Build(mdast.Tokenize(input), mdast.BuildOptions{FoldBlocks: true})
	require.NoError(t, err)

	result, err := split.Split(tree.Content, split.Options{
		Predicate: split.Predicate{Kind: mdast.KindHeader},
	})
	require.NoError(t, err)

	return parsed{tree: tree, result: result}
}

func contents(docs []format.Document) []string {
	out := make([]string, len(docs))
	for i, doc := range docs {
		out[i] = doc.Content
	}
	return out
}

func TestFormatNormalizesHeaders(t *testing.T) {
	t.Parallel()

	section := mdast.NewSection(
		mdast.NewHeader("### Third", "\n"),
		mdast.NewTextLine(mdast.KindText, "body", "\n"),
		mdast.NewHeader("#### Fourth", "\n"),
	)

	docs, err := format.Format([]*mdast.Block{section}, format.Options{})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "# Third\nbody\n## Fourth\n", docs[0].Content)
	assert.Equal(t, "Third", docs[0].Title)

	first := section.At(0).(*mdast.Header)
	last := section.At(2).(*mdast.Header)
	assert.Equal(t, 1, first.Level())
	assert.Equal(t, 2, last.Level())
}

func TestFormatInsertsGlobalTags(t *testing.T) {
	t.Parallel()

	p := splitByHeader(t, "#a #b intro\n# One\nbody\n# Two\n")
	require.Equal(t, []string{"#a", "#b"}, p.result.GlobalTags)

	docs, err := format.Format(p.result.Sections, format.Options{
		GlobalTags:     p.result.GlobalTags,
		CopyGlobalTags: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"# One\n#a #b\nbody\n",
		"# Two\n#a #b\n",
	}, contents(docs))
}

func TestFormatTagsWithoutHeaderGoFirst(t *testing.T) {
	t.Parallel()

	section := mdast.NewSection(mdast.NewListItem(mdast.KindTask, "- [ ] do it", "\n", false))

	docs, err := format.Format([]*mdast.Block{section}, format.Options{
		GlobalTags:     []string{"#x"},
		CopyGlobalTags: true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "#x\n- [ ] do it\n", docs[0].Content)
	assert.Equal(t, "- [ ] do it", docs[0].Title)
}

func TestFormatHeaderWithoutNewline(t *testing.T) {
	t.Parallel()

	p := splitByHeader(t, "#t\n# Last")

	docs, err := format.Format(p.result.Sections, format.Options{
		GlobalTags:     p.result.GlobalTags,
		CopyGlobalTags: true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "# Last\n#t\n", docs[0].Content)
}

func TestFormatCopiesRetitledFrontmatter(t *testing.T) {
	t.Parallel()

	p := splitByHeader(t, "---\ntitle: X\nauthor: Y\n---\n# S1\none\n# S2\ntwo\n")
	require.NotNil(t, p.tree.Frontmatter)

	docs, err := format.Format(p.result.Sections, format.Options{
		Frontmatter:     p.tree.Frontmatter,
		CopyFrontmatter: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"---\ntitle: S1\nauthor: Y\n---\n# S1\none\n",
		"---\ntitle: S2\nauthor: Y\n---\n# S2\ntwo\n",
	}, contents(docs))

	title, _ := p.tree.Frontmatter.String("title")
	assert.Equal(t, "X", title)
}

func TestFormatFrontmatterWithoutTitleKey(t *testing.T) {
	t.Parallel()

	fm, err := frontmatter.Decode("tags: []\n")
	require.NoError(t, err)

	section := mdast.NewSection(mdast.NewHeader("# A", "\n"))
	docs, err := format.Format([]*mdast.Block{section}, format.Options{
		Frontmatter:     fm,
		CopyFrontmatter: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "---\ntags: []\n---\n# A\n", docs[0].Content)
}

func TestFormatRelocatesFootnotes(t *testing.T) {
	t.Parallel()

	p := splitByHeader(t, "# A\ntext\n[^1]: note\n# B\nsee[^1]\n")
	require.Len(t, p.tree.Footnotes, 1)

	docs, err := format.Format(p.result.Sections, format.Options{
		Footnotes:     p.tree.Footnotes,
		MoveFootnotes: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"# A\ntext\n",
		"# B\nsee[^1]\n[^1]: note\n",
	}, contents(docs))
}

func TestFormatFootnoteAfterUnterminatedLine(t *testing.T) {
	t.Parallel()

	p := splitByHeader(t, "[^n]: note\n# B\nsee[^n]")

	docs, err := format.Format(p.result.Sections, format.Options{
		Footnotes:     p.tree.Footnotes,
		MoveFootnotes: true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "# B\nsee[^n]\n[^n]: note\n", docs[0].Content)
}

func TestFormatSkipsBlankSections(t *testing.T) {
	t.Parallel()

	blank := mdast.NewSection(
		mdast.NewLine(mdast.KindEmptyLine, "", "\n"),
		mdast.NewLine(mdast.KindEmptyLine, "  ", "\n"),
	)
	full := mdast.NewSection(mdast.NewHeader("# A", "\n"))

	docs, err := format.Format([]*mdast.Block{blank, full, blank}, format.Options{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "A", docs[0].Title)
}

func TestFormatTitleFallbacks(t *testing.T) {
	t.Parallel()

	t.Run("first text", func(t *testing.T) {
		t.Parallel()

		section := mdast.NewSection(
			mdast.NewLine(mdast.KindEmptyLine, "", "\n"),
			mdast.NewTextLine(mdast.KindText, "  hello  ", "\n"),
		)
		docs, err := format.Format([]*mdast.Block{section}, format.Options{
			GlobalTags:     []string{"#g"},
			CopyGlobalTags: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "hello", docs[0].Title)
	})

	t.Run("nested header", func(t *testing.T) {
		t.Parallel()

		section := mdast.NewSection(
			mdast.NewTextLine(mdast.KindText, "intro", "\n"),
			mdast.NewHeader("## Inner", "\n"),
		)
		docs, err := format.Format([]*mdast.Block{section}, format.Options{})
		require.NoError(t, err)
		assert.Equal(t, "Inner", docs[0].Title)
		assert.Equal(t, "intro\n## Inner\n", docs[0].Content)
	})

	t.Run("generated titles are unique", func(t *testing.T) {
		t.Parallel()

		code := func() *mdast.Block {
			return mdast.NewSection(mdast.NewFencedBlock(mdast.KindCodeBlock,
				mdast.NewFence(mdast.KindCodeFence, "```", "\n", ""),
				mdast.NewLine(mdast.KindCode, "x := 1", "\n"),
				mdast.NewFence(mdast.KindCodeFence, "```", "\n", ""),
			))
		}
		docs, err := format.Format([]*mdast.Block{code(), code()}, format.Options{})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.NotEmpty(t, docs[0].Title)
		assert.NotEqual(t, docs[0].Title, docs[1].Title)
	})
}

func TestFormatEmptyHeaderFallsBackToText(t *testing.T) {
	t.Parallel()

	toks := mdast.Tokenize("# #split\nmore text\n")
	result, err := split.Split(toks, split.Options{
		Predicate:     split.Predicate{Kind: mdast.KindHeader},
		RemoveKeyword: true,
		Keyword:       "#split",
	})
	require.NoError(t, err)

	fm, err := frontmatter.Decode("title: Source\n")
	require.NoError(t, err)

	docs, err := format.Format(result.Sections, format.Options{
		GlobalTags:      []string{"#g"},
		CopyGlobalTags:  true,
		Frontmatter:     fm,
		CopyFrontmatter: true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "more text", docs[0].Title)
	assert.Equal(t, "---\ntitle: more text\n---\n#\n#g\nmore text\n", docs[0].Content)
}

func TestFormatEmptyHeadersGetDistinctTitles(t *testing.T) {
	t.Parallel()

	empty := func() *mdast.Block { return mdast.NewSection(mdast.NewHeader("#", "\n")) }
	docs, err := format.Format([]*mdast.Block{empty(), empty()}, format.Options{})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.NotEmpty(t, docs[0].Title)
	assert.NotEqual(t, docs[0].Title, docs[1].Title)
}

func TestFormatKeepsCRLF(t *testing.T) {
	t.Parallel()

	p := splitByHeader(t, "---\r\ntitle: X\r\n---\r\n#g intro\r\n# A\r\ntext[^1]\r\n[^1]: note\r\n")

	docs, err := format.Format(p.result.Sections, format.Options{
		GlobalTags:      p.result.GlobalTags,
		CopyGlobalTags:  true,
		Frontmatter:     p.tree.Frontmatter,
		CopyFrontmatter: true,
		Footnotes:       p.tree.Footnotes,
		MoveFootnotes:   true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "---\r\ntitle: A\r\n---\r\n# A\r\n#g\r\ntext[^1]\r\n[^1]: note\r\n", docs[0].Content)
	assert.NotContains(t, strings.ReplaceAll(docs[0].Content, "\r\n", ""), "\n")
}
