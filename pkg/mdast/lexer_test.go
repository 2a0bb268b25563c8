package mdast_test

import (
	"testing"

	"github.com/yaklabco/zkit/pkg/mdast"
)

func TestLexerPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want mdast.Kind
	}{
		{"", mdast.KindEmptyLine},
		{"   \t", mdast.KindEmptyLine},
		{"# Title", mdast.KindHeader},
		{"###### Deep", mdast.KindHeader},
		{"#tag at start", mdast.KindText},
		{"```go", mdast.KindCodeFence},
		{"~~~", mdast.KindCodeFence},
		{"$$", mdast.KindMathFence},
		{"$$x$$", mdast.KindText},
		{"[^1]: a note", mdast.KindFootnote},
		{"- [x] done", mdast.KindTask},
		{"- [ ] todo", mdast.KindTask},
		{"---", mdast.KindHorizontalRule},
		{"- - -", mdast.KindHorizontalRule},
		{"* * *", mdast.KindHorizontalRule},
		{"- item", mdast.KindUnorderedListItem},
		{"+ item", mdast.KindUnorderedListItem},
		{"  * nested", mdast.KindUnorderedListItem},
		{"1. first", mdast.KindOrderedListItem},
		{"10) tenth", mdast.KindOrderedListItem},
		{"|---|:---:|", mdast.KindTableDivider},
		{"| a | b |", mdast.KindTableRow},
		{"> quoted", mdast.KindBlockquote},
		{"plain text", mdast.KindText},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			toks := mdast.Tokenize(tt.line + "\n")
			if len(toks) != 1 {
				t.Fatalf("Tokenize(%q) returned %d tokens, expected 1", tt.line, len(toks))
			}
			if got := toks[0].Kind(); got != tt.want {
				t.Errorf("Tokenize(%q) kind = %v, expected %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestLexerAttributes(t *testing.T) {
	t.Parallel()

	toks := mdast.Tokenize("### Deep title \n\t- [x] task\n```python \n```\n[^note]: text\n")
	if len(toks) != 5 {
		t.Fatalf("got %d tokens, expected 5", len(toks))
	}

	header, ok := toks[0].(*mdast.Header)
	if !ok {
		t.Fatalf("token 0 is %T, expected *mdast.Header", toks[0])
	}
	if header.Level() != 3 {
		t.Errorf("header level = %d, expected 3", header.Level())
	}
	if header.Body() != "Deep title" {
		t.Errorf("header body = %q, expected %q", header.Body(), "Deep title")
	}

	task, ok := toks[1].(*mdast.ListItem)
	if !ok {
		t.Fatalf("token 1 is %T, expected *mdast.ListItem", toks[1])
	}
	if task.Level() != 4 {
		t.Errorf("task level = %d, expected 4", task.Level())
	}
	if !task.Done() {
		t.Error("task done = false, expected true")
	}

	fence, ok := toks[2].(*mdast.Fence)
	if !ok {
		t.Fatalf("token 2 is %T, expected *mdast.Fence", toks[2])
	}
	if fence.Language() != "python" {
		t.Errorf("fence language = %q, expected %q", fence.Language(), "python")
	}

	footnote, ok := toks[4].(*mdast.Footnote)
	if !ok {
		t.Fatalf("token 4 is %T, expected *mdast.Footnote", toks[4])
	}
	if footnote.Reference() != "[^note]" {
		t.Errorf("footnote reference = %q, expected %q", footnote.Reference(), "[^note]")
	}
}

func TestLexerFencedContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []mdast.Kind
	}{
		{
			name:  "header inside code is demoted",
			input: "```sh\n# comment\n- not a list\n```\n# real\n",
			want: []mdast.Kind{
				mdast.KindCodeFence, mdast.KindCode, mdast.KindCode, mdast.KindCodeFence, mdast.KindHeader,
			},
		},
		{
			name:  "code fence inside math stays math",
			input: "$$\n```\n$$\ntext\n",
			want: []mdast.Kind{
				mdast.KindMathFence, mdast.KindMath, mdast.KindMathFence, mdast.KindText,
			},
		},
		{
			name:  "unterminated fence runs to end",
			input: "```\n# a\n- b\n",
			want: []mdast.Kind{
				mdast.KindCodeFence, mdast.KindCode, mdast.KindCode,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			toks := mdast.Tokenize(tt.input)
			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens, expected %d", len(toks), len(tt.want))
			}
			for i, kind := range tt.want {
				if toks[i].Kind() != kind {
					t.Errorf("token %d kind = %v, expected %v", i, toks[i].Kind(), kind)
				}
			}
		})
	}
}

func TestLexerCustomPatterns(t *testing.T) {
	t.Parallel()

	patterns := mdast.DefaultPatterns()
	if err := patterns.Override(mdast.PatternBlockquote, `^%%`); err != nil {
		t.Fatalf("Override returned error: %v", err)
	}

	toks := mdast.NewLexer(patterns).Tokenize("%% callout\n> plain\n")
	if toks[0].Kind() != mdast.KindBlockquote {
		t.Errorf("token 0 kind = %v, expected Blockquote", toks[0].Kind())
	}
	if toks[1].Kind() != mdast.KindText {
		t.Errorf("token 1 kind = %v, expected Text", toks[1].Kind())
	}
}

func TestPatternsOverrideErrors(t *testing.T) {
	t.Parallel()

	patterns := mdast.DefaultPatterns()
	if err := patterns.Override("nope", "x"); err == nil {
		t.Error("Override of unknown pattern returned nil error")
	}
	if err := patterns.Override(mdast.PatternHeader, "("); err == nil {
		t.Error("Override with invalid expression returned nil error")
	}
}

func TestPatternsTags(t *testing.T) {
	t.Parallel()

	patterns := mdast.DefaultPatterns()

	tests := []struct {
		input string
		want  []string
	}{
		{"#a text", []string{"#a"}},
		{"text #a and #b/c", []string{"#a", "#b/c"}},
		{"mid#word", nil},
		{"issue #42", nil},
		{"# header", nil},
		{"#a #a", []string{"#a", "#a"}},
	}

	for _, tt := range tests {
		got := patterns.Tags(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("Tags(%q) = %v, expected %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tags(%q)[%d] = %q, expected %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestKindIs(t *testing.T) {
	t.Parallel()

	if !mdast.KindTask.Is(mdast.KindListItem) {
		t.Error("Task should be a ListItem")
	}
	if mdast.KindHeader.Is(mdast.KindListItem) {
		t.Error("Header should not be a ListItem")
	}
	if !mdast.KindMathFence.Is(mdast.KindFence) {
		t.Error("MathFence should be a Fence")
	}
	if !mdast.KindCode.Is(mdast.KindFenced) {
		t.Error("Code should be Fenced")
	}
	if !mdast.KindTable.Is(mdast.KindBlock) {
		t.Error("Table should be a Block")
	}

	kind, ok := mdast.ParseKind("text_list")
	if !ok || kind != mdast.KindTextList {
		t.Errorf("ParseKind(text_list) = %v, %v", kind, ok)
	}
	if _, ok := mdast.ParseKind("paragraph"); ok {
		t.Error("ParseKind(paragraph) should fail")
	}
}
