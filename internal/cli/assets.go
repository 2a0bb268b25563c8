package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/zkit/internal/logging"
	"github.com/yaklabco/zkit/internal/ui/pretty"
	"github.com/yaklabco/zkit/pkg/assets"
	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/diff"
	"github.com/yaklabco/zkit/pkg/reporter"
	"github.com/yaklabco/zkit/pkg/zettel"
)

func newAssetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Check and move note attachments",
		Long: `Work with the attachments of a notes folder: images, PDFs, audio and
other files referenced from notes through Markdown links, images, wiki
links or embeds.`,
	}

	cmd.AddCommand(newAssetsCheckCommand())
	cmd.AddCommand(newAssetsMoveCommand())

	return cmd
}

type assetsCheckFlags struct {
	format  string
	jobs    int
	compact bool
}

func newAssetsCheckCommand() *cobra.Command {
	flags := &assetsCheckFlags{}

	cmd := &cobra.Command{
		Use:   "check [root]",
		Short: "Report broken asset links and unused assets",
		Long: `Scan every note under root (default: the current folder) for references
to asset files. Reports references whose target does not exist and asset
files no note references. Exits with status 1 when anything is reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssetsCheck(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")

	return cmd
}

// scanVault loads configuration and scans the vault at root.
func scanVault(cmd *cobra.Command, root string, o overrides) (*assets.Vault, *config.Config, string, error) {
	cfg, workDir, err := loadConfig(cmd, o)
	if err != nil {
		return nil, nil, "", err
	}

	if root == "" {
		root = workDir
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(workDir, root)
	}

	opts := assets.OptionsFromConfig(root, cfg)
	opts.Patterns, err = zettel.PatternsFromConfig(cfg.Patterns)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: %w", ErrConfig, err)
	}

	vault, err := assets.Scan(cmd.Context(), opts)
	if err != nil {
		return nil, nil, "", fmt.Errorf("scan %s: %w", root, err)
	}

	logging.FromContext(cmd.Context()).Debug("scanned vault",
		logging.FieldPath, vault.Root(),
		"notes", len(vault.Notes()),
		"assets", len(vault.Assets()),
	)
	return vault, cfg, workDir, nil
}

func runAssetsCheck(cmd *cobra.Command, args []string, flags *assetsCheckFlags) error {
	o := overrides{}
	o.set(cmd, "format", "format", flags.format)
	o.set(cmd, "jobs", "jobs", flags.jobs)

	var root string
	if len(args) > 0 {
		root = args[0]
	}

	vault, cfg, workDir, err := scanVault(cmd, root, o)
	if err != nil {
		return err
	}

	report, err := vault.Check(cmd.Context())
	if err != nil {
		return errors.Join(errors.New("asset check failed"), err)
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

	issues, err := rep.ReportAssets(cmd.Context(), report)
	if err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	if issues > 0 {
		return ErrIssuesFound
	}
	return nil
}

type assetsMoveFlags struct {
	root     string
	dryRun   bool
	showDiff bool
}

func newAssetsMoveCommand() *cobra.Command {
	flags := &assetsMoveFlags{}

	cmd := &cobra.Command{
		Use:   "move <asset> [folder]",
		Short: "Move an asset and rewrite the notes linking to it",
		Long: `Move an asset into folder (default: assets.folder from the config,
relative to the vault root) and rewrite every link, image, wiki link and
embed pointing at it. Notes changed on disk while the move is planned abort
the move; a failed note write restores everything already changed.

Examples:
  zkit assets move diagram.png
  zkit assets move img/diagram.png media/diagrams
  zkit assets move diagram.png --dry-run --diff`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssetsMove(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "vault root (default: current folder)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the notes that would change without writing")
	cmd.Flags().BoolVar(&flags.showDiff, "diff", false, "show a diff of every rewritten note")

	return cmd
}

func runAssetsMove(cmd *cobra.Command, args []string, flags *assetsMoveFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	o := overrides{}
	o.set(cmd, "dry-run", "dry_run", flags.dryRun)

	vault, cfg, workDir, err := scanVault(cmd, flags.root, o)
	if err != nil {
		return err
	}

	dest := cfg.Assets.Folder
	if len(args) > 1 {
		dest = args[1]
	}

	asset := args[0]
	if !filepath.IsAbs(asset) {
		asset = filepath.Join(workDir, asset)
	}
	if _, err := os.Stat(asset); err != nil {
		return fmt.Errorf("%w: %s", ErrUsage, err)
	}

	plan, err := vault.PlanMove(ctx, asset, dest)
	if err != nil {
		return err
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.OutOrStdout()))
	out := cmd.OutOrStdout()

	if plan.Dest == plan.Asset {
		fmt.Fprintln(out, styles.Dim.Render(relOrAbs(workDir, plan.Asset)+" is already in place"))
		return nil
	}

	if !cfg.DryRun {
		if err := vault.ApplyMove(ctx, plan); err != nil {
			return err
		}
		logger.Debug("moved asset",
			logging.FieldAsset, plan.Asset,
			logging.FieldDest, plan.Dest,
			logging.FieldEdits, len(plan.Edits),
		)
	}

	verb := "Moved"
	if cfg.DryRun {
		verb = "Would move"
	}
	fmt.Fprintf(out, "%s %s %s %s\n",
		styles.Bold.Render(verb),
		styles.FilePath.Render(relOrAbs(workDir, plan.Asset)),
		styles.Arrow.Render("->"),
		styles.FilePath.Render(relOrAbs(workDir, plan.Dest)),
	)
	for _, edit := range plan.Edits {
		fmt.Fprintf(out, "  %s %s %s\n",
			styles.Created.Render("~"),
			styles.NoteName.Render(relOrAbs(workDir, edit.Path)),
			styles.Dim.Render(fmt.Sprintf("(%d %s)", edit.Rewrites, plural(edit.Rewrites, "link", "links"))),
		)
	}

	if flags.showDiff {
		for _, edit := range plan.Edits {
			fmt.Fprintln(out)
			fmt.Fprint(out, styles.FormatDiff(diff.Compute(relOrAbs(workDir, edit.Path), edit.Original, edit.Content)))
		}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
