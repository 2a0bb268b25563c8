package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/zkit/internal/logging"
	"github.com/yaklabco/zkit/pkg/audit"
	"github.com/yaklabco/zkit/pkg/reporter"
	"github.com/yaklabco/zkit/pkg/runner"
	"github.com/yaklabco/zkit/pkg/zettel"
)

type checkFlags struct {
	format       string
	jobs         int
	compact      bool
	requireID    bool
	requireTitle bool
	requireTags  bool
	codeLanguage bool
	idPattern    string
}

func newCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Find notes with missing metadata or broken structure",
		Long: `Check notes for structural problems.

Reports notes without an id (frontmatter "id" or a file name prefix matching
audit.id_pattern), without a title, or without tags; unterminated code
fences and frontmatter; and code blocks without a language, with a guess at
the language. Exits with status 1 when anything is reported.

Examples:
  zkit check                       # Check the current folder
  zkit check Inbox/ --format table
  zkit check --require-tags=false  # Skip the tag check
  zkit check --format json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.requireID, "require-id", true, "report notes without an id")
	cmd.Flags().BoolVar(&flags.requireTitle, "require-title", true, "report notes without a title")
	cmd.Flags().BoolVar(&flags.requireTags, "require-tags", true, "report notes without tags")
	cmd.Flags().BoolVar(&flags.codeLanguage, "code-language", true, "report code blocks without a language")
	cmd.Flags().StringVar(&flags.idPattern, "id-pattern", "", "regular expression for ids in file names")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, flags *checkFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	o := overrides{}
	o.set(cmd, "format", "format", flags.format)
	o.set(cmd, "jobs", "jobs", flags.jobs)
	o.set(cmd, "require-id", "audit.require_id", flags.requireID)
	o.set(cmd, "require-title", "audit.require_title", flags.requireTitle)
	o.set(cmd, "require-tags", "audit.require_tags", flags.requireTags)
	o.set(cmd, "code-language", "audit.code_language", flags.codeLanguage)
	o.set(cmd, "id-pattern", "audit.id_pattern", flags.idPattern)

	cfg, workDir, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}

	patterns, err := zettel.PatternsFromConfig(cfg.Patterns)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	auditor, err := audit.New(cfg.Audit, patterns)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   cfg.Extensions,
		ExcludeGlobs: cfg.Ignore,
		Jobs:         cfg.Jobs,
	}
	logger.Debug("starting check",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := auditor.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("check run failed"), err)
	}
	logger.Debug("check finished",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
	)

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

	issues, err := rep.ReportAudit(ctx, result)
	if err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	if issues > 0 || len(result.Errors()) > 0 {
		return ErrIssuesFound
	}
	return nil
}
