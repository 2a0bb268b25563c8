package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yaklabco/zkit/pkg/fsutil"
)

var (
	// ErrNotAsset indicates a move source that is not a discovered asset.
	ErrNotAsset = errors.New("not an asset in this vault")

	// ErrOutsideVault indicates a move destination outside the vault root.
	ErrOutsideVault = errors.New("destination is outside the vault")

	// ErrUnrewritable indicates a reference whose text could not be found
	// for rewriting. The asset is not moved.
	ErrUnrewritable = errors.New("reference cannot be rewritten")
)

// NoteEdit is the rewrite of one referencing note.
type NoteEdit struct {
	Path     string
	Info     *fsutil.FileInfo
	Original []byte
	Content  []byte

	// Rewrites is the number of references changed.
	Rewrites int
}

// MovePlan describes an asset move and the note rewrites it needs.
type MovePlan struct {
	Asset string
	Dest  string
	Edits []NoteEdit
}

// Rewrites returns the total number of rewritten references.
func (p *MovePlan) Rewrites() int {
	n := 0
	for _, e := range p.Edits {
		n += e.Rewrites
	}
	return n
}

// PlanMove computes the new location of asset inside destDir and the
// rewritten content of every note referencing it. destDir is relative to
// the vault root unless absolute. Nothing is written.
func (v *Vault) PlanMove(ctx context.Context, asset, destDir string) (*MovePlan, error) {
	asset, err := filepath.Abs(asset)
	if err != nil {
		return nil, fmt.Errorf("resolve asset: %w", err)
	}
	if !v.assetSet[asset] {
		return nil, fmt.Errorf("%w: %s", ErrNotAsset, asset)
	}

	if !filepath.IsAbs(destDir) {
		destDir = filepath.Join(v.root, destDir)
	}
	destDir = filepath.Clean(destDir)
	if rel, err := filepath.Rel(v.root, destDir); err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%w: %s", ErrOutsideVault, destDir)
	}

	plan := &MovePlan{Asset: asset, Dest: filepath.Join(destDir, filepath.Base(asset))}
	if plan.Dest == asset {
		return plan, nil
	}
	if fsutil.Exists(plan.Dest) {
		return nil, fmt.Errorf("%w: %s", fsutil.ErrExists, plan.Dest)
	}

	refs, err := v.References(ctx)
	if err != nil {
		return nil, err
	}

	byNote := map[string][]Reference{}
	var order []string
	for _, ref := range refs {
		if ref.Resolved != asset {
			continue
		}
		if _, seen := byNote[ref.Note]; !seen {
			order = append(order, ref.Note)
		}
		byNote[ref.Note] = append(byNote[ref.Note], ref)
	}

	for _, note := range order {
		original, info, err := fsutil.ReadFile(ctx, note)
		if err != nil {
			return nil, err
		}
		content, count, missed := v.rewrite(string(original), byNote[note], plan.Dest)
		if len(missed) > 0 {
			ref := missed[0]
			return nil, fmt.Errorf("%w: %s:%d %s", ErrUnrewritable, note, ref.Line, ref.Target)
		}
		if count == 0 {
			continue
		}
		plan.Edits = append(plan.Edits, NoteEdit{
			Path:     note,
			Info:     info,
			Original: original,
			Content:  []byte(content),
			Rewrites: count,
		})
	}
	return plan, nil
}

// ApplyMove moves the asset and writes the rewritten notes. Notes changed
// on disk since planning abort the move before anything is written. If a
// note write fails, notes already written are restored and the asset is
// moved back.
func (v *Vault) ApplyMove(ctx context.Context, plan *MovePlan) error {
	if plan.Dest == plan.Asset {
		return nil
	}

	for _, edit := range plan.Edits {
		modified, err := fsutil.CheckModified(ctx, edit.Info)
		if err != nil {
			return fmt.Errorf("check %s: %w", edit.Path, err)
		}
		if modified {
			return fmt.Errorf("%w: %s", fsutil.ErrModified, edit.Path)
		}
	}

	if err := fsutil.Move(ctx, plan.Asset, plan.Dest); err != nil {
		return fmt.Errorf("move asset: %w", err)
	}

	for i, edit := range plan.Edits {
		if err := fsutil.WriteAtomic(ctx, edit.Path, edit.Content, edit.Info.Mode); err != nil {
			cause := fmt.Errorf("rewrite %s: %w", edit.Path, err)
			return v.undoMove(plan, plan.Edits[:i], cause)
		}
	}

	v.relocate(plan.Asset, plan.Dest)
	return nil
}

func (v *Vault) undoMove(plan *MovePlan, written []NoteEdit, cause error) error {
	errs := []error{cause}
	ctx := context.Background()
	for _, edit := range written {
		if err := fsutil.WriteAtomic(ctx, edit.Path, edit.Original, edit.Info.Mode); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", edit.Path, err))
		}
	}
	if err := fsutil.Move(ctx, plan.Dest, plan.Asset); err != nil {
		errs = append(errs, fmt.Errorf("move asset back: %w", err))
	}
	return errors.Join(errs...)
}

func (v *Vault) relocate(from, to string) {
	delete(v.assetSet, from)
	v.assetSet[to] = true
	for i, a := range v.assets {
		if a == from {
			v.assets[i] = to
		}
	}
	base := strings.ToLower(filepath.Base(from))
	for i, a := range v.byBase[base] {
		if a == from {
			v.byBase[base][i] = to
		}
	}
}

// rewrite changes the targets of refs in content to point at dest. Only the
// lines holding a reference are touched, plus link reference definitions
// for references whose line has no inline destination. missed lists the
// references that needed a change but matched no text.
func (v *Vault) rewrite(content string, refs []Reference, dest string) (string, int, []Reference) {
	lines := strings.SplitAfter(content, "\n")
	count := 0
	var missed []Reference

	type lineTarget struct {
		line   int
		target string
	}
	done := map[lineTarget]bool{}
	defined := map[string]bool{}

	for _, ref := range refs {
		idx := ref.Line - 1
		key := lineTarget{idx, ref.Target}
		if idx < 0 || idx >= len(lines) {
			missed = append(missed, ref)
			continue
		}

		var n int
		if ref.Kind.IsWiki() {
			next := v.wikiTarget(ref, dest)
			if next == ref.Target {
				continue
			}
			lines[idx], n = rewriteWiki(lines[idx], ref.Target, next)
		} else {
			next := v.markdownTarget(ref, dest)
			lines[idx], n = rewriteDestination(lines[idx], inlineLead, ref.Target, next)
			if n == 0 && !done[key] && !defined[ref.Target] {
				for i := range lines {
					var d int
					lines[i], d = rewriteDestination(lines[i], definitionLead, ref.Target, next)
					n += d
				}
				defined[ref.Target] = n > 0
			}
			if defined[ref.Target] {
				done[key] = true
			}
		}

		count += n
		if n > 0 {
			done[key] = true
		}
		if !done[key] {
			missed = append(missed, ref)
		}
	}
	return strings.Join(lines, ""), count, missed
}

// wikiTarget keeps bare names bare when the name is unchanged; otherwise
// it uses the vault-relative path.
func (v *Vault) wikiTarget(ref Reference, dest string) string {
	if !strings.Contains(ref.Target, "/") && strings.EqualFold(ref.Target, filepath.Base(dest)) {
		return ref.Target
	}
	rel, _ := filepath.Rel(v.root, dest)
	return filepath.ToSlash(rel)
}

func (v *Vault) markdownTarget(ref Reference, dest string) string {
	if strings.HasPrefix(ref.Target, "/") {
		rel, _ := filepath.Rel(v.root, dest)
		return "/" + filepath.ToSlash(rel)
	}
	rel, _ := filepath.Rel(filepath.Dir(ref.Note), dest)
	return filepath.ToSlash(rel)
}

func rewriteWiki(line, old, replacement string) (string, int) {
	if old == replacement {
		return line, 0
	}
	re := regexp.MustCompile(`(!?\[\[[ \t]*)` + regexp.QuoteMeta(old) + `([ \t]*[#|\]])`)
	n := len(re.FindAllStringIndex(line, -1))
	return re.ReplaceAllString(line, "${1}"+escapeReplacement(replacement)+"${2}"), n
}

// Leads are the text that precedes a Markdown destination: the "](" of an
// inline link or image, and the label of a link reference definition.
const (
	inlineLead     = `\]\(`
	definitionLead = `^[ \t]{0,3}\[[^\]]+\]:[ \t]*`
)

// rewriteDestination replaces the destination old after lead, as written
// raw, inside angle brackets or percent-encoded, keeping the form it finds.
func rewriteDestination(line, lead, old, replacement string) (string, int) {
	forms := []struct {
		open   string
		encode bool
	}{
		{"<", false},
		{"", false},
		{"", true},
	}

	count := 0
	for _, form := range forms {
		written := old
		if form.encode {
			written = encodeSpaces(old)
			if written == old {
				continue
			}
		}
		re := regexp.MustCompile(`(` + lead + `)` + regexp.QuoteMeta(form.open+written) + `([)#?> \t\r\n]|$)`)

		next := replacement
		if form.encode || (form.open == "" && strings.ContainsAny(replacement, " \t")) {
			next = encodeSpaces(replacement)
		}

		count += len(re.FindAllStringIndex(line, -1))
		line = re.ReplaceAllString(line, "${1}"+escapeReplacement(form.open+next)+"${2}")
	}
	return line, count
}

func encodeSpaces(s string) string {
	segments := strings.Split(s, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
