package mdast_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/mdast"
)

func build(t *testing.T, input string, fold bool) *mdast.SyntaxTree {
	t.Helper()

	tree, err := mdast.Build(mdast.Tokenize(input), mdast.BuildOptions{FoldBlocks: fold})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	return tree
}

func kinds(toks []mdast.Token) []mdast.Kind {
	out := make([]mdast.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind()
	}
	return out
}

func assertKinds(t *testing.T, toks []mdast.Token, want ...mdast.Kind) {
	t.Helper()

	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kind[%d] = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestBuildFoldsNestedLists(t *testing.T) {
	t.Parallel()

	input := "- a\n  - b\n  - c\n- d\ntext\n"
	tree := build(t, input, true)

	assertKinds(t, tree.Content, mdast.KindTextList, mdast.KindText)

	outer, ok := tree.Content[0].(*mdast.List)
	if !ok {
		t.Fatalf("content[0] is %T, expected *mdast.List", tree.Content[0])
	}
	assertKinds(t, outer.Children(),
		mdast.KindUnorderedListItem, mdast.KindTextList, mdast.KindUnorderedListItem)

	inner, ok := outer.At(1).(*mdast.List)
	if !ok {
		t.Fatalf("outer[1] is %T, expected *mdast.List", outer.At(1))
	}
	if inner.Level() != 2 {
		t.Errorf("inner level = %d, expected 2", inner.Level())
	}
	if inner.Len() != 2 {
		t.Errorf("inner len = %d, expected 2", inner.Len())
	}
	if got := tree.Serialize(); got != input {
		t.Errorf("Serialize = %q, expected %q", got, input)
	}
}

func TestBuildFoldsRuns(t *testing.T) {
	t.Parallel()

	input := "> a\n> b\n\n| x | y |\n|---|---|\n| 1 | 2 |\nafter\n"
	tree := build(t, input, true)

	assertKinds(t, tree.Content,
		mdast.KindBlockquoteBlock, mdast.KindEmptyLine, mdast.KindTable, mdast.KindText)

	quote := tree.Content[0].(mdast.Container)
	if quote.Len() != 2 {
		t.Errorf("blockquote len = %d, expected 2", quote.Len())
	}
	table := tree.Content[2].(mdast.Container)
	if table.Len() != 3 {
		t.Errorf("table len = %d, expected 3", table.Len())
	}
}

func TestBuildFoldsFencedBlocks(t *testing.T) {
	t.Parallel()

	input := "```go\n# not a header\n```\n$$\nx^2\n$$\n"
	tree := build(t, input, true)

	assertKinds(t, tree.Content, mdast.KindCodeBlock, mdast.KindMathBlock)

	code, ok := tree.Content[0].(*mdast.FencedBlock)
	if !ok {
		t.Fatalf("content[0] is %T, expected *mdast.FencedBlock", tree.Content[0])
	}
	if code.Language() != "go" {
		t.Errorf("language = %q, expected %q", code.Language(), "go")
	}
	if code.Len() != 3 {
		t.Errorf("code block len = %d, expected 3", code.Len())
	}
	if len(tree.Warnings) != 0 {
		t.Errorf("warnings = %v, expected none", tree.Warnings)
	}
}

func TestBuildUnterminatedFence(t *testing.T) {
	t.Parallel()

	input := "intro\n```\ncode\nmore\n"
	tree := build(t, input, true)

	assertKinds(t, tree.Content, mdast.KindText, mdast.KindCodeBlock)
	if len(tree.Warnings) != 1 {
		t.Fatalf("warnings = %v, expected one", tree.Warnings)
	}
	if got := tree.Serialize(); got != input {
		t.Errorf("Serialize = %q, expected %q", got, input)
	}
}

func TestBuildWithoutFolding(t *testing.T) {
	t.Parallel()

	input := "- a\n  - b\n> q\n"
	tree := build(t, input, false)

	assertKinds(t, tree.Content,
		mdast.KindUnorderedListItem, mdast.KindUnorderedListItem, mdast.KindBlockquote)
}

func TestBuildFrontmatter(t *testing.T) {
	t.Parallel()

	input := "\n---\ntitle: X\ntags:\n  - a\n---\n\n# H\nbody\n"
	tree := build(t, input, true)

	if tree.Frontmatter == nil {
		t.Fatal("Frontmatter is nil")
	}
	title, _ := tree.Frontmatter.String("title")
	if title != "X" {
		t.Errorf("title = %q, expected %q", title, "X")
	}
	if len(tree.FrontmatterTokens) != 7 {
		t.Errorf("frontmatter tokens = %d, expected 7", len(tree.FrontmatterTokens))
	}
	assertKinds(t, tree.Content, mdast.KindHeader, mdast.KindText)
	if got := tree.Serialize(); got != input {
		t.Errorf("Serialize = %q, expected %q", got, input)
	}
}

func TestBuildUnterminatedFrontmatterIsAbsent(t *testing.T) {
	t.Parallel()

	tree := build(t, "---\ntitle: X\n", false)

	if tree.Frontmatter != nil {
		t.Error("Frontmatter should be nil")
	}
	if len(tree.Content) != 2 {
		t.Errorf("content len = %d, expected 2", len(tree.Content))
	}
}

func TestBuildFrontmatterDecodeError(t *testing.T) {
	t.Parallel()

	_, err := mdast.Build(mdast.Tokenize("---\ntitle: [oops\n---\n"), mdast.BuildOptions{})
	if !errors.Is(err, frontmatter.ErrDecode) {
		t.Errorf("Build error = %v, expected ErrDecode", err)
	}
}

func TestBuildCollectsFootnotes(t *testing.T) {
	t.Parallel()

	tree := build(t, "text[^1]\n\n[^1]: one\n[^2]: two\n", true)

	if len(tree.Footnotes) != 2 {
		t.Fatalf("footnotes = %d, expected 2", len(tree.Footnotes))
	}
	if tree.Footnotes[1].Reference() != "[^2]" {
		t.Errorf("footnote reference = %q", tree.Footnotes[1].Reference())
	}
	if !mdast.ContainsDeep(tree.Content, tree.Footnotes[0]) {
		t.Error("footnote should remain in content")
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"no newline",
		"\n\n\n",
		"# h1\r\n## h2\r\nbody\r\n",
		"- a\n\t- b\n  - c\n1. x\n- [ ] t\n",
		"```\nunterminated\n# x\n",
		"| a |\n|---|\n> q\n> r\n$$\nm\n$$\n",
	}

	for _, input := range inputs {
		for _, fold := range []bool{false, true} {
			toks := mdast.Tokenize(input)
			if got := mdast.Serialize(toks); got != input {
				t.Errorf("tokenize round trip = %q, expected %q", got, input)
			}
			if got := build(t, input, fold).Serialize(); got != input {
				t.Errorf("build(fold=%v) round trip = %q, expected %q", fold, got, input)
			}
		}
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add("# a\n- b\n  - c\n```\nx\n```\n")
	f.Add("| a |\n|---|\n> q\n")
	f.Add("text\r\n\r\n$$\n")
	f.Add("[^1]: x\n- [x] y\n")

	f.Fuzz(func(t *testing.T, input string) {
		toks := mdast.Tokenize(input)
		if got := mdast.Serialize(toks); got != input {
			t.Fatalf("tokenize round trip = %q, expected %q", got, input)
		}

		for _, fold := range []bool{false, true} {
			tree, err := mdast.Build(mdast.Tokenize(input), mdast.BuildOptions{FoldBlocks: fold})
			if err != nil {
				return
			}
			if got := tree.Serialize(); got != input {
				t.Fatalf("build(fold=%v) round trip = %q, expected %q", fold, got, input)
			}
		}
	})
}
