package zettel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/mdast"
	"github.com/yaklabco/zkit/pkg/split"
	"github.com/yaklabco/zkit/pkg/zettel"
)

func contents(res *zettel.Result) []string {
	out := make([]string, 0, len(res.Documents))
	for _, doc := range res.Documents {
		out = append(out, doc.Content)
	}
	return out
}

func titles(res *zettel.Result) []string {
	out := make([]string, 0, len(res.Documents))
	for _, doc := range res.Documents {
		out = append(out, doc.Title)
	}
	return out
}

func TestSplit(t *testing.T) {
	t.Parallel()

	level2 := 2

	tests := []struct {
		name          string
		input         string
		opts          func(*zettel.Options)
		wantDocs      []string
		wantTitles    []string
		wantTags      []string
		wantDiscarded int
	}{
		{
			name:       "level one headers",
			input:      "# A\nbody a\n# B\nbody b\n",
			wantDocs:   []string{"# A\nbody a\n", "# B\nbody b\n"},
			wantTitles: []string{"A", "B"},
		},
		{
			name:       "deeper headers are normalized",
			input:      "# top\n## h2\n### h3\n## h2b\n",
			opts:       func(o *zettel.Options) { o.Predicate.Level = &level2 },
			wantDocs:   []string{"# h2\n## h3\n", "# h2b\n"},
			wantTitles: []string{"h2", "h2b"},

			wantDiscarded: 1,
		},
		{
			name:          "frontmatter and global tags are copied",
			input:         "---\ntitle: X\nauthor: Y\n---\n#a\n# S1\none\n# S2\ntwo\n",
			wantTags:      []string{"#a"},
			wantDiscarded: 1,
			wantDocs: []string{
				"---\ntitle: S1\nauthor: Y\n---\n# S1\n#a\none\n",
				"---\ntitle: S2\nauthor: Y\n---\n# S2\n#a\ntwo\n",
			},
			wantTitles: []string{"S1", "S2"},
		},
		{
			name:     "toggles off leave sections untouched",
			input:    "---\ntitle: X\n---\n#a\n# S1\none\n",
			wantTags: []string{"#a"},
			opts: func(o *zettel.Options) {
				o.CopyFrontmatter = false
				o.CopyGlobalTags = false
			},
			wantDocs:      []string{"# S1\none\n"},
			wantTitles:    []string{"S1"},
			wantDiscarded: 1,
		},
		{
			name:       "footnote follows its reference",
			input:      "# A\n[^1]: note\n# B\nsee [^1]\n",
			wantDocs:   []string{"# A\n", "# B\nsee [^1]\n[^1]: note\n"},
			wantTitles: []string{"A", "B"},
		},
		{
			name:  "keyword marks the split point",
			input: "# one #split\nbody\n# two\nmore\n",
			opts: func(o *zettel.Options) {
				o.UseKeyword = true
			},
			wantDocs:   []string{"# one\nbody\n# two\nmore\n"},
			wantTitles: []string{"one"},
		},
		{
			name:          "no split points",
			input:         "just text\n",
			wantDocs:      []string{},
			wantTitles:    []string{},
			wantDiscarded: 1,
		},
		{
			name:       "unfolded tokens split the same way",
			input:      "# A\n- item\n  - nested\n# B\n",
			opts:       func(o *zettel.Options) { o.FoldBlocks = false },
			wantDocs:   []string{"# A\n- item\n  - nested\n", "# B\n"},
			wantTitles: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := zettel.DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}

			res, err := zettel.Split(tt.input, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDocs, contents(res))
			assert.Equal(t, tt.wantTitles, titles(res))
			assert.Equal(t, tt.wantTags, res.GlobalTags)
			assert.Equal(t, tt.wantDiscarded, res.Discarded)
		})
	}
}

func TestSplitTaskList(t *testing.T) {
	t.Parallel()

	opts := zettel.DefaultOptions()
	opts.Predicate = split.Predicate{Kind: mdast.KindTask}

	res, err := zettel.Split("- [ ] first\n- [x] second\n", opts)
	require.NoError(t, err)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, "- [ ] first\n", res.Documents[0].Content)
	assert.Equal(t, "- [ ] first", res.Documents[0].Title)
	assert.Equal(t, "- [x] second\n", res.Documents[1].Content)
}

func TestSplitErrors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported attribute", func(t *testing.T) {
		t.Parallel()

		lang := "go"
		opts := zettel.DefaultOptions()
		opts.Predicate = split.Predicate{Kind: mdast.KindHeader, Language: &lang}

		_, err := zettel.Split("# a\n", opts)
		require.ErrorIs(t, err, split.ErrUnsupportedAttribute)
		assert.Contains(t, err.Error(), "language")
	})

	t.Run("frontmatter decode failure", func(t *testing.T) {
		t.Parallel()

		_, err := zettel.Split("---\ntitle: [unclosed\n---\n# A\n", zettel.DefaultOptions())
		require.ErrorIs(t, err, frontmatter.ErrDecode)
	})

	t.Run("unterminated fence is a warning", func(t *testing.T) {
		t.Parallel()

		res, err := zettel.Split("# A\n```go\ncode\n", zettel.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, res.Documents, 1)
		assert.Equal(t, "# A\n```go\ncode\n", res.Documents[0].Content)
		assert.Len(t, res.Warnings, 1)
	})
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := zettel.OptionsFromConfig(config.NewConfig())
		require.NoError(t, err)
		assert.Equal(t, mdast.KindHeader, opts.Predicate.Kind)
		require.NotNil(t, opts.Predicate.Level)
		assert.Equal(t, 1, *opts.Predicate.Level)
		assert.Equal(t, "#split", opts.Keyword)
		assert.True(t, opts.FoldBlocks)
		assert.NotNil(t, opts.Patterns)
	})

	t.Run("unknown split type", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Split.Type = "paragraph"

		_, err := zettel.OptionsFromConfig(cfg)
		require.ErrorIs(t, err, split.ErrUnknownKind)
	})

	t.Run("pattern override", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Split.Type = "blockquote"
		cfg.Split.Attributes = nil
		cfg.Patterns = map[string]string{mdast.PatternBlockquote: `^%%`}

		opts, err := zettel.OptionsFromConfig(cfg)
		require.NoError(t, err)

		res, err := zettel.Split("intro\n%% one\n%% two\n", opts)
		require.NoError(t, err)
		assert.Equal(t, []string{"%% one\n", "%% two\n"}, contents(res))
	})

	t.Run("bad pattern", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Patterns = map[string]string{mdast.PatternHeader: `(`}

		_, err := zettel.OptionsFromConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header")
	})

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		opts, err := zettel.OptionsFromConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, mdast.KindHeader, opts.Predicate.Kind)
	})
}
