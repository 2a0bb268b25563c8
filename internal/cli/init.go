package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/zkit/internal/configloader"
	"github.com/yaklabco/zkit/internal/logging"
	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/fsutil"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a zkit configuration file",
		Long: `Create a .zkit.yml configuration file in the current folder. zkit finds
it from any folder below, up to the vault root (a folder holding .git,
.obsidian or .zettlr).

Examples:
  zkit init                      Create a commented .zkit.yml
  zkit init --full               Write every setting with its default
  zkit init --format json        Create .zkit.json (use it with --config)
  zkit init --output vault.yml   Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "write every setting with its default value")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "file format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: .zkit.yml or .zkit.json)")

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrUsage, flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".zkit.yml"
		if flags.format == "json" {
			outputPath = ".zkit.json"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if flags.force && fsutil.Exists(absPath) {
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}
	if err := configloader.WriteConfig(absPath, content, flags.force); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if flags.format == "json" {
		logger.Info("pass the file with --config; only YAML files are discovered")
	}
	logger.Info("run 'zkit env' to see the environment variables that override it")

	return nil
}
