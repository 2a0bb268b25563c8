package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/fsutil"
	"github.com/yaklabco/zkit/pkg/mdast"
	"github.com/yaklabco/zkit/pkg/runner"
)

// Options selects the vault to scan.
type Options struct {
	// Root is the vault folder. Absolute link targets resolve against it.
	Root string

	NoteExtensions  []string
	AssetExtensions []string

	// Ignore holds exclude globs relative to Root.
	Ignore []string

	Jobs     int
	Patterns *mdast.Patterns
}

// OptionsFromConfig fills Options for root from cfg.
func OptionsFromConfig(root string, cfg *config.Config) Options {
	return Options{
		Root:            root,
		NoteExtensions:  cfg.Extensions,
		AssetExtensions: cfg.Assets.Extensions,
		Ignore:          cfg.Ignore,
		Jobs:            cfg.Jobs,
	}
}

// Vault is a scanned set of notes and asset files.
type Vault struct {
	root      string
	notes     []string
	assets    []string
	assetSet  map[string]bool
	byBase    map[string][]string
	extractor *Extractor
	jobs      int
}

// Report is the outcome of Check.
type Report struct {
	Notes  int `json:"notes"`
	Assets int `json:"assets"`

	References []Reference `json:"references"`

	// Broken lists references whose target does not exist.
	Broken []Reference `json:"broken"`

	// Unused lists asset files no note references.
	Unused []string `json:"unused"`
}

// HasIssues reports whether anything is broken or unused.
func (r *Report) HasIssues() bool {
	return len(r.Broken) > 0 || len(r.Unused) > 0
}

// Scan discovers notes and assets under opts.Root.
func Scan(ctx context.Context, opts Options) (*Vault, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	if len(opts.AssetExtensions) == 0 {
		return nil, errors.New("no asset extensions configured")
	}

	discover := func(exts []string) ([]string, error) {
		return runner.Discover(ctx, runner.Options{
			Paths:        []string{root},
			WorkingDir:   root,
			Extensions:   exts,
			ExcludeGlobs: opts.Ignore,
		})
	}

	notes, err := discover(opts.NoteExtensions)
	if err != nil {
		return nil, fmt.Errorf("discover notes: %w", err)
	}
	files, err := discover(opts.AssetExtensions)
	if err != nil {
		return nil, fmt.Errorf("discover assets: %w", err)
	}

	v := &Vault{
		root:      root,
		notes:     notes,
		assets:    files,
		assetSet:  make(map[string]bool, len(files)),
		byBase:    make(map[string][]string, len(files)),
		extractor: NewExtractor(opts.AssetExtensions, opts.Patterns),
		jobs:      opts.Jobs,
	}
	for _, file := range files {
		v.assetSet[file] = true
		base := strings.ToLower(filepath.Base(file))
		v.byBase[base] = append(v.byBase[base], file)
	}
	return v, nil
}

// Root returns the absolute vault folder.
func (v *Vault) Root() string { return v.root }

// Notes returns the discovered notes, sorted.
func (v *Vault) Notes() []string { return v.notes }

// Assets returns the discovered asset files, sorted.
func (v *Vault) Assets() []string { return v.assets }

// IsAsset reports whether path is a discovered asset file.
func (v *Vault) IsAsset(path string) bool { return v.assetSet[filepath.Clean(path)] }

// Resolve returns the asset file ref points at, or "" when there is none.
//
// Markdown targets are relative to the note, or to the vault root when they
// start with "/". Wiki targets are vault-relative paths or bare file names.
// A bare name that matches nothing relative to the note falls back to a
// vault-wide name lookup, preferring a file in the note's folder.
func (v *Vault) Resolve(ref Reference) string {
	target := filepath.FromSlash(ref.Target)
	noteDir := filepath.Dir(ref.Note)

	var candidates []string
	switch {
	case strings.HasPrefix(ref.Target, "/"):
		candidates = append(candidates, filepath.Join(v.root, target))
	case ref.Kind.IsWiki():
		candidates = append(candidates, filepath.Join(v.root, target), filepath.Join(noteDir, target))
	default:
		candidates = append(candidates, filepath.Join(noteDir, target))
	}
	for _, c := range candidates {
		if v.assetSet[c] {
			return c
		}
	}

	if strings.Contains(ref.Target, "/") {
		return ""
	}
	matches := v.byBase[strings.ToLower(ref.Target)]
	if len(matches) == 0 {
		return ""
	}
	for _, m := range matches {
		if filepath.Dir(m) == noteDir {
			return m
		}
	}
	return matches[0]
}

// References extracts and resolves the asset references of every note.
// Notes are read concurrently; references come back in note order.
func (v *Vault) References(ctx context.Context) ([]Reference, error) {
	result, err := runner.RunFiles[[]Reference](ctx, v.notes, v.jobs, func(ctx context.Context, path string) ([]Reference, error) {
		content, _, err := fsutil.ReadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		refs := v.extractor.Extract(path, content)
		for i := range refs {
			refs[i].Resolved = v.Resolve(refs[i])
		}
		return refs, nil
	})
	if err != nil {
		return nil, err
	}

	var errs []error
	var refs []Reference
	for _, outcome := range result.Files {
		if outcome.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", outcome.Path, outcome.Error))
			continue
		}
		refs = append(refs, outcome.Result...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return refs, nil
}

// Check reports broken references and unused assets.
func (v *Vault) Check(ctx context.Context) (*Report, error) {
	refs, err := v.References(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Notes:      len(v.notes),
		Assets:     len(v.assets),
		References: refs,
		Broken:     []Reference{},
		Unused:     []string{},
	}

	used := make(map[string]bool, len(v.assets))
	for _, ref := range refs {
		if ref.Resolved == "" {
			report.Broken = append(report.Broken, ref)
			continue
		}
		used[ref.Resolved] = true
	}
	for _, asset := range v.assets {
		if !used[asset] {
			report.Unused = append(report.Unused, asset)
		}
	}
	slices.Sort(report.Unused)
	return report, nil
}
