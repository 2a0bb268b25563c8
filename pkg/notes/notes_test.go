package notes_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/format"
	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/fsutil"
	"github.com/yaklabco/zkit/pkg/naming"
	"github.com/yaklabco/zkit/pkg/notes"
)

func newNamer(t *testing.T, template string) *naming.Namer {
	t.Helper()

	n, err := naming.New(
		config.NamingConfig{Template: template, IDFormat: "200601021504", Extension: ".md"},
		naming.WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	return n
}

func writeSource(t *testing.T, dir, content string) (string, *fsutil.FileInfo) {
	t.Helper()

	path := filepath.Join(dir, "Source Note.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, info, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	return path, info
}

func docs(pairs ...string) []format.Document {
	out := make([]format.Document, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, format.Document{Title: pairs[i], Content: pairs[i+1]})
	}
	return out
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPlan(t *testing.T) {
	t.Parallel()

	t.Run("names avoid disk and batch collisions", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "# A\n# A\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "202601020304 A.md"), []byte("x"), 0644))

		store := notes.NewStore(newNamer(t, "{{.ID}} {{.Title}}"), notes.Options{})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\n", "A", "# A\n"))
		require.NoError(t, err)

		require.Len(t, plan.Notes, 2)
		assert.Equal(t, "202601020304 A 2.md", plan.Notes[0].Name)
		assert.Equal(t, "202601020304 A 3.md", plan.Notes[1].Name)
		assert.Equal(t, dir, plan.Dir)
		assert.Empty(t, plan.Index)
	})

	t.Run("backlinks", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "# A\n")

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{Backlinks: true})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\nbody", "B", "# B\n"))
		require.NoError(t, err)

		assert.Equal(t, "# A\nbody\n\n[[Source Note]]\n", plan.Notes[0].Content)
		assert.Equal(t, "# B\n\n[[Source Note]]\n", plan.Notes[1].Content)
	})

	t.Run("backlinks follow CRLF notes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "# A\r\n")

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{Backlinks: true})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\r\nbody"))
		require.NoError(t, err)

		assert.Equal(t, "# A\r\nbody\r\n\r\n[[Source Note]]\r\n", plan.Notes[0].Content)
	})

	t.Run("index keeps source frontmatter", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "---\ntitle: Src\n---\n# A\n")
		fm, err := frontmatter.Decode("title: Src\n")
		require.NoError(t, err)

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{IndexSource: true})
		plan, err := store.Plan(source, info, fm, docs("A", "# A\n", "B", "# B\n"))
		require.NoError(t, err)

		assert.Equal(t, "---\ntitle: Src\n---\n- [[A]]\n- [[B]]\n", plan.Index)
	})

	t.Run("output folder", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "zettels")
		source, info := writeSource(t, dir, "# A\n")

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{Dir: out})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\n"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(out, "A.md"), plan.Notes[0].Path)
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes notes and index with backup", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "# A\n# B\n")

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{
			IndexSource: true,
			Backups:     fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar},
		})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\n", "B", "# B\n"))
		require.NoError(t, err)

		out, err := store.Apply(ctx, plan)
		require.NoError(t, err)

		assert.Len(t, out.Written, 2)
		assert.True(t, out.Indexed)
		assert.Equal(t, source+fsutil.BackupSuffix, out.Backup)
		assert.Equal(t, "# A\n", read(t, filepath.Join(dir, "A.md")))
		assert.Equal(t, "- [[A]]\n- [[B]]\n", read(t, source))
		assert.Equal(t, "# A\n# B\n", read(t, out.Backup))
	})

	t.Run("creates missing output folder", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "# A\n")

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{Dir: filepath.Join(dir, "new", "folder")})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\n"))
		require.NoError(t, err)

		_, err = store.Apply(ctx, plan)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, "new", "folder", "A.md"))
	})

	t.Run("rolls back on collision", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "# A\n# B\n")

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{IndexSource: true})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\n", "B", "# B\n"))
		require.NoError(t, err)

		// Another process takes the second name after planning.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "B.md"), []byte("theirs"), 0644))

		_, err = store.Apply(ctx, plan)
		require.ErrorIs(t, err, fsutil.ErrExists)

		assert.NoFileExists(t, filepath.Join(dir, "A.md"))
		assert.Equal(t, "theirs", read(t, filepath.Join(dir, "B.md")))
		assert.Equal(t, "# A\n# B\n", read(t, source))
	})

	t.Run("refuses to index a modified source", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source, info := writeSource(t, dir, "# A\n")

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{IndexSource: true})
		plan, err := store.Plan(source, info, nil, docs("A", "# A\n"))
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(source, []byte("# A\nedited elsewhere\n"), 0644))

		_, err = store.Apply(ctx, plan)
		require.ErrorIs(t, err, fsutil.ErrModified)
		assert.NoFileExists(t, filepath.Join(dir, "A.md"))
	})

	t.Run("empty plan", func(t *testing.T) {
		t.Parallel()

		store := notes.NewStore(newNamer(t, "{{.Title}}"), notes.Options{})
		out, err := store.Apply(ctx, &notes.Plan{})
		require.NoError(t, err)
		assert.Empty(t, out.Written)
	})
}

func TestWikiLink(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[[Source Note]]", notes.WikiLink("/vault/Source Note.md"))
	assert.Equal(t, "[[a.b]]", notes.WikiLink("a.b.md"))
}
