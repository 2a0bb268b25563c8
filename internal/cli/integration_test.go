package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/zkit/internal/cli"
	"github.com/yaklabco/zkit/pkg/fsutil"
)

// testConfig keeps generated names free of timestamps.
const testConfig = "naming:\n  template: \"{{.Title}}\"\n"

// vault creates a folder marked as a vault root holding files, and a config
// file outside it.
func vault(t *testing.T, files map[string]string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := filepath.Join(t.TempDir(), "zkit.yml")
	require.NoError(t, os.WriteFile(cfg, []byte(testConfig), 0644))
	return dir, cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--color", "never"))

	err := cmd.Execute()
	return stdout.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestIntegration_Split(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{"Inbox.md": "# Alpha\nfirst\n# Beta\nsecond\n"})
	source := filepath.Join(dir, "Inbox.md")

	out, err := execute(t, "split", "--config", cfg, source)
	require.NoError(t, err)

	assert.Contains(t, out, "Created 2 notes from 1 source")
	alpha := readFile(t, filepath.Join(dir, "Alpha.md"))
	assert.Contains(t, alpha, "first")
	assert.Contains(t, alpha, "[[Inbox]]")
	assert.NotContains(t, alpha, "second")
	assert.Contains(t, readFile(t, filepath.Join(dir, "Beta.md")), "second")
	assert.Equal(t, "# Alpha\nfirst\n# Beta\nsecond\n", readFile(t, source))
}

func TestIntegration_SplitDryRun(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{"Inbox.md": "# Alpha\nfirst\n# Beta\nsecond\n"})

	out, err := execute(t, "split", "--config", cfg, "--dry-run", filepath.Join(dir, "Inbox.md"))
	require.NoError(t, err)

	assert.Contains(t, out, "Would create 2 notes")
	assert.NoFileExists(t, filepath.Join(dir, "Alpha.md"))
	assert.NoFileExists(t, filepath.Join(dir, "Beta.md"))
}

func TestIntegration_SplitLevelAndIndex(t *testing.T) {
	t.Parallel()

	content := "# Topic\n## One\nx\n## Two\ny\n"
	dir, cfg := vault(t, map[string]string{"Topic.md": content})
	source := filepath.Join(dir, "Topic.md")

	_, err := execute(t, "split", "--config", cfg, "--level", "2", "--index-source", "--output", filepath.Join(dir, "out"), source)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "out", "One.md"))
	assert.FileExists(t, filepath.Join(dir, "out", "Two.md"))
	assert.Equal(t, "- [[One]]\n- [[Two]]\n", readFile(t, source))
	assert.Equal(t, content, readFile(t, source+fsutil.BackupSuffix))
}

func TestIntegration_SplitJSON(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{"Inbox.md": "- [ ] open\n- [x] done\n"})

	out, err := execute(t, "split", "--config", cfg, "--type", "task", "--done=false",
		"--dry-run", "--format", "json", filepath.Join(dir, "Inbox.md"))
	require.NoError(t, err)

	var got struct {
		DryRun  bool `json:"dryRun"`
		Summary struct {
			Notes int `json:"notes"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.DryRun)
	assert.Equal(t, 1, got.Summary.Notes)
}

func TestIntegration_SplitNothingToSplit(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{"plain.md": "no headers here\n"})

	out, err := execute(t, "split", "--config", cfg, filepath.Join(dir, "plain.md"))
	require.ErrorIs(t, err, cli.ErrNothingToSplit)
	assert.Equal(t, cli.ExitFindings, cli.ExitCode(err))
	assert.Contains(t, out, "Nothing to split")
}

func TestIntegration_SplitUsageErrors(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{"Inbox.md": "# A\n"})
	source := filepath.Join(dir, "Inbox.md")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "review with json", args: []string{"--review", "--format", "json"}, want: cli.ExitInvalidUsage},
		{name: "review without terminal", args: []string{"--review"}, want: cli.ExitInvalidUsage},
		{name: "unknown type", args: []string{"--type", "paragraph"}, want: cli.ExitDataError},
		{name: "bad format", args: []string{"--format", "xml"}, want: cli.ExitDataError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"split", "--config", cfg}, tt.args...)
			_, err := execute(t, append(args, source)...)
			require.Error(t, err)
			assert.Equal(t, tt.want, cli.ExitCode(err))
		})
	}

	t.Run("missing note", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "split", "--config", cfg, filepath.Join(dir, "missing.md"))
		assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	})
}

func TestIntegration_Check(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{
		"202601011200 Good.md": "---\ntitle: Good\ntags: [zettel]\n---\n# Good\n",
		"bad.md":               "some text\n\n```\nfmt.Println(1)\n```\n",
	})

	out, err := execute(t, "check", "--config", cfg, dir)
	require.ErrorIs(t, err, cli.ErrIssuesFound)

	assert.Contains(t, out, "bad.md")
	assert.Contains(t, out, "missing-id")
	assert.Contains(t, out, "missing-title")
	assert.Contains(t, out, "missing-tags")
	assert.Contains(t, out, "code-language")
	assert.NotContains(t, out, "Good.md")
}

func TestIntegration_CheckToggles(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{"bad.md": "# Title\n"})

	out, err := execute(t, "check", "--config", cfg,
		"--require-id=false", "--require-tags=false", filepath.Join(dir, "bad.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found (1 note checked)")
}

func TestIntegration_CheckJSON(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{"bad.md": "# Title\n"})

	out, err := execute(t, "check", "--config", cfg, "--format", "json", filepath.Join(dir, "bad.md"))
	require.ErrorIs(t, err, cli.ErrIssuesFound)

	var got struct {
		Summary struct {
			NotesChecked int `json:"notesChecked"`
			TotalIssues  int `json:"totalIssues"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.Summary.NotesChecked)
	assert.Equal(t, 2, got.Summary.TotalIssues)
}

func TestIntegration_AssetsCheck(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{
		"note.md":    "![chart](img.png)\n![lost](gone.png)\n",
		"img.png":    "png",
		"unused.pdf": "pdf",
	})

	out, err := execute(t, "assets", "check", "--config", cfg, dir)
	require.ErrorIs(t, err, cli.ErrIssuesFound)

	assert.Contains(t, out, "Broken references")
	assert.Contains(t, out, "gone.png")
	assert.Contains(t, out, "Unused assets")
	assert.Contains(t, out, "unused.pdf")
}

func TestIntegration_AssetsMove(t *testing.T) {
	t.Parallel()

	dir, cfg := vault(t, map[string]string{
		"note.md": "See ![chart](img.png) and [[img.png]].\n",
		"img.png": "png",
	})

	t.Run("dry run", func(t *testing.T) {
		out, err := execute(t, "assets", "move", "--config", cfg, "--root", dir, "--dry-run", "--diff",
			filepath.Join(dir, "img.png"), "media")
		require.NoError(t, err)

		assert.Contains(t, out, "Would move")
		assert.Contains(t, out, "-See ![chart](img.png)")
		assert.Contains(t, out, "+See ![chart](media/img.png)")
		assert.FileExists(t, filepath.Join(dir, "img.png"))
	})

	t.Run("move", func(t *testing.T) {
		out, err := execute(t, "assets", "move", "--config", cfg, "--root", dir,
			filepath.Join(dir, "img.png"), "media")
		require.NoError(t, err)

		assert.Contains(t, out, "Moved")
		assert.FileExists(t, filepath.Join(dir, "media", "img.png"))
		assert.NoFileExists(t, filepath.Join(dir, "img.png"))
		assert.Contains(t, readFile(t, filepath.Join(dir, "note.md")), "media/img.png")
	})

	t.Run("not an asset", func(t *testing.T) {
		_, err := execute(t, "assets", "move", "--config", cfg, "--root", dir,
			filepath.Join(dir, "note.md"), "media")
		assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	})
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".zkit.yml")

	_, err := execute(t, "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, path), "zkit")

	_, err = execute(t, "init", "--output", path)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))

	_, err = execute(t, "init", "--output", path, "--force", "--full")
	require.NoError(t, err)
	assert.Contains(t, readFile(t, path), "split:")
}

func TestIntegration_Env(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "env")
	require.NoError(t, err)

	assert.Contains(t, out, "ZKIT_SPLIT_TYPE")
	assert.Contains(t, out, "ZKIT_FORMAT")
}
