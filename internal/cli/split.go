package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/zkit/internal/configloader"
	"github.com/yaklabco/zkit/internal/logging"
	"github.com/yaklabco/zkit/internal/tui"
	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/format"
	"github.com/yaklabco/zkit/pkg/fsutil"
	"github.com/yaklabco/zkit/pkg/naming"
	"github.com/yaklabco/zkit/pkg/notes"
	"github.com/yaklabco/zkit/pkg/reporter"
	"github.com/yaklabco/zkit/pkg/runner"
	"github.com/yaklabco/zkit/pkg/zettel"
)

type splitFlags struct {
	splitType string
	level     int
	language  string
	done      bool
	reference string

	keyword         string
	useKeyword      bool
	removeKeyword   bool
	copyGlobalTags  bool
	copyFrontmatter bool
	moveFootnotes   bool
	foldBlocks      bool
	backlinks       bool
	indexSource     bool
	noBackups       bool

	output   string
	template string
	format   string
	dryRun   bool
	review   bool
	compact  bool
}

// reviewFunc shows the review screen; replaced in tests.
type reviewFunc func(sections []tui.Section) ([]int, error)

func newSplitCommand() *cobra.Command {
	flags := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "split <notes...>",
		Short: "Split notes into atomic notes",
		Long:  splitLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args, flags, func(sections []tui.Section) ([]int, error) {
				return tui.Review(sections)
			})
		},
	}

	addSplitFlags(cmd, flags)

	return cmd
}

const splitLongDescription = `Split Markdown notes into one new note per section.

A section starts at every token of the split type (header by default) and
runs until the next one of the same or a higher level. Arguments may be
notes or folders; folders are searched for notes.

Split types: header, blockquote, footnote, task, unordered_list_item,
ordered_list_item, list_item, table_row, code_fence, math_fence, fence,
code_block, math_block, table, text_list, text, empty_line,
horizontal_rule, block.

Examples:
  zkit split Inbox.md                        # One note per level 1 header
  zkit split Inbox.md --level 2              # One note per level 2 header
  zkit split Tasks.md --type task --done=false
  zkit split Inbox.md --use-keyword          # Only headers marked #split
  zkit split Inbox.md --dry-run              # Show planned notes
  zkit split Inbox.md --review               # Pick sections interactively
  zkit split Inbox.md --index-source         # Replace the source by links`

func addSplitFlags(cmd *cobra.Command, flags *splitFlags) {
	cmd.Flags().StringVarP(&flags.splitType, "type", "t", "", "token kind that starts a note (default from config: header)")
	cmd.Flags().IntVarP(&flags.level, "level", "l", 1, "level of headers or list items to split on")
	cmd.Flags().StringVar(&flags.language, "language", "", "only split on code blocks in this language")
	cmd.Flags().BoolVar(&flags.done, "done", false, "only split on finished (true) or open (false) tasks")
	cmd.Flags().StringVar(&flags.reference, "reference", "", "only split on the footnote with this reference")

	cmd.Flags().StringVar(&flags.keyword, "keyword", "#split", "keyword marking split points")
	cmd.Flags().BoolVar(&flags.useKeyword, "use-keyword", false, "split only where the keyword appears")
	cmd.Flags().BoolVar(&flags.removeKeyword, "remove-keyword", true, "strip the keyword from new notes")
	cmd.Flags().BoolVar(&flags.copyGlobalTags, "copy-global-tags", true, "copy tags outside every section into each note")
	cmd.Flags().BoolVar(&flags.copyFrontmatter, "copy-frontmatter", true, "copy the source frontmatter into each note")
	cmd.Flags().BoolVar(&flags.moveFootnotes, "move-footnotes", true, "move footnotes into the notes citing them")
	cmd.Flags().BoolVar(&flags.foldBlocks, "fold-blocks", true, "keep lists, tables, quotes and fenced blocks whole")
	cmd.Flags().BoolVar(&flags.backlinks, "backlinks", true, "link each new note back to its source")
	cmd.Flags().BoolVar(&flags.indexSource, "index-source", false, "replace the source with links to the new notes")
	cmd.Flags().BoolVar(&flags.noBackups, "no-backups", false, "do not back up a source before indexing it")

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "folder for new notes (default: next to the source)")
	cmd.Flags().StringVar(&flags.template, "template", "", "file name template, e.g. '{{.ID}} {{.Title}}'")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show planned notes without writing")
	cmd.Flags().BoolVar(&flags.review, "review", false, "choose sections interactively before writing")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
}

// splitOverrides maps changed split flags to config keys. Attribute flags
// replace the configured attributes as a whole.
func splitOverrides(cmd *cobra.Command, flags *splitFlags) overrides {
	o := overrides{}
	o.set(cmd, "type", "split.type", flags.splitType)

	attrs := map[string]any{}
	if cmd.Flags().Changed("level") {
		attrs["level"] = flags.level
	}
	if cmd.Flags().Changed("language") {
		attrs["language"] = flags.language
	}
	if cmd.Flags().Changed("done") {
		attrs["done"] = flags.done
	}
	if cmd.Flags().Changed("reference") {
		attrs["reference"] = flags.reference
	}
	if len(attrs) > 0 {
		o["split.attributes"] = attrs
	}

	o.set(cmd, "keyword", "split.keyword", flags.keyword)
	o.set(cmd, "use-keyword", "split.use_keyword", flags.useKeyword)
	o.set(cmd, "remove-keyword", "split.remove_keyword", flags.removeKeyword)
	o.set(cmd, "copy-global-tags", "split.copy_global_tags", flags.copyGlobalTags)
	o.set(cmd, "copy-frontmatter", "split.copy_frontmatter", flags.copyFrontmatter)
	o.set(cmd, "move-footnotes", "split.move_footnotes", flags.moveFootnotes)
	o.set(cmd, "fold-blocks", "split.fold_blocks", flags.foldBlocks)
	o.set(cmd, "backlinks", "split.backlinks", flags.backlinks)
	o.set(cmd, "index-source", "split.index_source", flags.indexSource)
	o.set(cmd, "output", "split.output_dir", flags.output)
	o.set(cmd, "template", "naming.template", flags.template)
	o.set(cmd, "format", "format", flags.format)
	o.set(cmd, "dry-run", "dry_run", flags.dryRun)
	if flags.noBackups {
		o["backups.enabled"] = false
	}
	return o
}

// splitter carries everything a split run needs for one source note.
type splitter struct {
	opts   zettel.Options
	store  *notes.Store
	dryRun bool
	review reviewFunc
}

func runSplit(cmd *cobra.Command, args []string, flags *splitFlags, review reviewFunc) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	if flags.review && flags.format == string(config.FormatJSON) {
		return fmt.Errorf("%w: --review cannot be combined with --format json", ErrUsage)
	}
	if flags.review && !configloader.IsInteractive() {
		return fmt.Errorf("%w: --review needs an interactive terminal", ErrUsage)
	}
	if !flags.review {
		review = nil
	}

	cfg, workDir, err := loadConfig(cmd, splitOverrides(cmd, flags))
	if err != nil {
		return err
	}

	s, err := newSplitter(cfg, workDir, review)
	if err != nil {
		return err
	}

	files, err := runner.Discover(ctx, runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   cfg.Extensions,
		ExcludeGlobs: cfg.Ignore,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	logger.Debug("discovered notes", logging.FieldFilesDiscovered, len(files))

	report := &reporter.SplitReport{DryRun: cfg.DryRun}
	var errs []error

	for _, path := range files {
		entry, err := s.splitFile(ctx, path)
		if errors.Is(err, tui.ErrCancelled) {
			logger.Info("review cancelled, remaining notes left unchanged")
			break
		}
		if err != nil {
			logger.Error("split failed", logging.FieldSource, path, logging.FieldError, err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if entry.Plan == nil {
			logger.Info("nothing to split", logging.FieldSource, relOrAbs(workDir, path))
		}
		report.Entries = append(report.Entries, *entry)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      cfg.Format,
		Color:       colorMode(cmd),
		ShowSummary: true,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	count, err := rep.ReportSplit(ctx, report)
	if err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if count == 0 {
		return ErrNothingToSplit
	}
	return nil
}

func newSplitter(cfg *config.Config, workDir string, review reviewFunc) (*splitter, error) {
	opts, err := zettel.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	namer, err := naming.New(cfg.Naming)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	dir := cfg.Split.OutputDir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(workDir, dir)
	}

	store := notes.NewStore(namer, notes.Options{
		Dir:         dir,
		Backlinks:   cfg.Split.Backlinks,
		IndexSource: cfg.Split.IndexSource,
		Backups: fsutil.BackupConfig{
			Enabled: cfg.Backups.Enabled,
			Mode:    fsutil.BackupMode(cfg.Backups.Mode),
		},
	})

	return &splitter{opts: opts, store: store, dryRun: cfg.DryRun, review: review}, nil
}

// splitFile splits one source note and, unless dry-running, writes the
// result. A note without split points yields an entry with a nil plan.
func (s *splitter) splitFile(ctx context.Context, path string) (*reporter.SplitEntry, error) {
	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	result, err := zettel.Split(string(content), s.opts)
	if err != nil {
		return nil, err
	}

	entry := &reporter.SplitEntry{
		Source:    path,
		Discarded: result.Discarded,
		Warnings:  result.Warnings,
	}
	if len(result.Documents) == 0 {
		return entry, nil
	}

	plan, err := s.store.Plan(path, info, result.Frontmatter, result.Documents)
	if err != nil {
		return nil, err
	}

	if s.review != nil {
		plan, err = s.reviewPlan(path, info, result, plan)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return entry, nil
		}
	}
	entry.Plan = plan

	if s.dryRun {
		return entry, nil
	}

	outcome, err := s.store.Apply(ctx, plan)
	if err != nil {
		return nil, err
	}
	entry.Outcome = outcome

	logging.FromContext(ctx).Debug("split note",
		logging.FieldSource, path,
		logging.FieldSections, len(outcome.Written),
		logging.FieldBackup, outcome.Backup,
	)
	return entry, nil
}

// reviewPlan lets the user pick sections and replans with the chosen
// documents, so names and the index only cover written notes. It returns a
// nil plan when nothing was selected.
func (s *splitter) reviewPlan(path string, info *fsutil.FileInfo, result *zettel.Result, plan *notes.Plan) (*notes.Plan, error) {
	sections := make([]tui.Section, len(plan.Notes))
	for i, note := range plan.Notes {
		sections[i] = tui.Section{Title: note.Title, Name: note.Name, Content: note.Content}
	}

	picked, err := s.review(sections)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, nil //nolint:nilnil // An empty selection writes nothing.
	}
	if len(picked) == len(plan.Notes) {
		return plan, nil
	}

	docs := make([]format.Document, 0, len(picked))
	for _, i := range picked {
		docs = append(docs, result.Documents[i])
	}
	return s.store.Plan(path, info, result.Frontmatter, docs)
}

func relOrAbs(workDir, path string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return path
	}
	return rel
}
