// Package notes persists split results: every document becomes a new note
// file, optionally linked back to its source, and the source can be replaced
// by an index of the new notes.
//
// Writing happens in two phases. Plan computes every name and content
// without touching the disk; Apply creates the files and removes the ones it
// already wrote if a later write fails.
package notes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/zkit/pkg/format"
	"github.com/yaklabco/zkit/pkg/frontmatter"
	"github.com/yaklabco/zkit/pkg/fsutil"
	"github.com/yaklabco/zkit/pkg/naming"
)

// Options configures a Store.
type Options struct {
	// Dir receives new notes. Empty means the source note's folder.
	Dir string

	// Backlinks appends a wiki link to the source note to every new note.
	Backlinks bool

	// IndexSource replaces the source body with links to the new notes.
	IndexSource bool

	// Backups applies before the source is rewritten.
	Backups fsutil.BackupConfig

	// Mode of new files. 0 means fsutil.DefaultFileMode.
	Mode os.FileMode
}

// Note is one planned file.
type Note struct {
	Title   string
	Name    string
	Path    string
	Content string
}

// Plan is the full set of writes for one source note.
type Plan struct {
	Source     string
	SourceInfo *fsutil.FileInfo
	Dir        string
	Notes      []Note

	// Index is the new source content, empty when the source is kept.
	Index string
}

// Outcome reports what Apply did.
type Outcome struct {
	Written []string
	Indexed bool

	// Backup is the backup path of the source, empty if none was made.
	Backup string
}

// Store plans and writes notes.
type Store struct {
	namer *naming.Namer
	opts  Options
}

// NewStore returns a store that names files with namer.
func NewStore(namer *naming.Namer, opts Options) *Store {
	return &Store{namer: namer, opts: opts}
}

// Plan computes names and contents for docs split from source. fm is the
// source's frontmatter, kept at the top of an index. Names avoid files
// present in the target folder and each other.
func (s *Store) Plan(source string, info *fsutil.FileInfo, fm *frontmatter.Frontmatter, docs []format.Document) (*Plan, error) {
	dir := s.opts.Dir
	if dir == "" {
		dir = filepath.Dir(source)
	}

	plan := &Plan{
		Source:     source,
		SourceInfo: info,
		Dir:        dir,
		Notes:      make([]Note, 0, len(docs)),
	}

	alloc := naming.NewAllocator(s.namer.Extension(), func(name string) bool {
		return fsutil.Exists(filepath.Join(dir, name))
	})
	sourceLink := WikiLink(source)

	for _, doc := range docs {
		base, err := s.namer.Name(doc.Title)
		if err != nil {
			return nil, fmt.Errorf("name note %q: %w", doc.Title, err)
		}
		name := alloc.Allocate(base)

		content := doc.Content
		if s.opts.Backlinks {
			content = appendLine(content, sourceLink)
		}

		plan.Notes = append(plan.Notes, Note{
			Title:   doc.Title,
			Name:    name,
			Path:    filepath.Join(dir, name),
			Content: content,
		})
	}

	if s.opts.IndexSource && len(plan.Notes) > 0 {
		index, err := buildIndex(fm, plan.Notes)
		if err != nil {
			return nil, err
		}
		plan.Index = index
	}
	return plan, nil
}

// Apply performs the plan. New notes are created exclusively, so an
// existing file is never overwritten. If any step fails, notes written so
// far are removed and the source is left as it was.
func (s *Store) Apply(ctx context.Context, plan *Plan) (*Outcome, error) {
	out := &Outcome{}
	if len(plan.Notes) == 0 {
		return out, nil
	}

	if plan.Index != "" && plan.SourceInfo != nil {
		modified, err := fsutil.CheckModified(ctx, plan.SourceInfo)
		if err != nil {
			return nil, fmt.Errorf("check source: %w", err)
		}
		if modified {
			return nil, fmt.Errorf("%w: %s", fsutil.ErrModified, plan.Source)
		}
	}

	if err := os.MkdirAll(plan.Dir, fsutil.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", plan.Dir, err)
	}

	for _, note := range plan.Notes {
		if err := fsutil.CreateExclusive(ctx, note.Path, []byte(note.Content), s.opts.Mode); err != nil {
			return nil, rollback(out.Written, fmt.Errorf("write note %s: %w", note.Name, err))
		}
		out.Written = append(out.Written, note.Path)
	}

	if plan.Index == "" {
		return out, nil
	}

	created, err := fsutil.CreateBackup(ctx, plan.Source, s.opts.Backups)
	if err != nil {
		return nil, rollback(out.Written, fmt.Errorf("back up source: %w", err))
	}
	if created {
		out.Backup = fsutil.BackupPath(plan.Source, s.opts.Backups.Mode)
	}

	var mode os.FileMode
	if plan.SourceInfo != nil {
		mode = plan.SourceInfo.Mode
	}
	if err := fsutil.WriteAtomic(ctx, plan.Source, []byte(plan.Index), mode); err != nil {
		return nil, rollback(out.Written, fmt.Errorf("rewrite source: %w", err))
	}
	out.Indexed = true
	return out, nil
}

func rollback(written []string, cause error) error {
	errs := []error{cause}
	for _, path := range written {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("roll back %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// WikiLink returns "[[name]]" for a note path, without folder or extension.
func WikiLink(path string) string {
	base := filepath.Base(path)
	return "[[" + strings.TrimSuffix(base, filepath.Ext(base)) + "]]"
}

func buildIndex(fm *frontmatter.Frontmatter, notes []Note) (string, error) {
	var b strings.Builder
	if fm != nil && !fm.IsEmpty() {
		block, err := fm.Block()
		if err != nil {
			return "", fmt.Errorf("encode source frontmatter: %w", err)
		}
		b.WriteString(block)
	}
	for _, note := range notes {
		b.WriteString("- ")
		b.WriteString(WikiLink(note.Name))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// appendLine adds line after a blank line, completing an unterminated last
// line first. The terminator follows the content's first line.
func appendLine(content, line string) string {
	eol := "\n"
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		eol = "\r\n"
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += eol
	}
	return content + eol + line + eol
}
