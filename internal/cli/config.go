package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/zkit/internal/configloader"
	"github.com/yaklabco/zkit/internal/logging"
	"github.com/yaklabco/zkit/pkg/config"
)

// overrides collects config values from flags the user actually set, keyed
// by dotted config name.
type overrides map[string]any

// set records value under key when flag was given on the command line.
func (o overrides) set(cmd *cobra.Command, flag, key string, value any) {
	if cmd.Flags().Changed(flag) {
		o[key] = value
	}
}

// loadConfig resolves configuration for cmd, layering o over files and
// environment. It returns the config and the working directory.
func loadConfig(cmd *cobra.Command, o overrides) (*config.Config, string, error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Overrides:    o,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, result.LoadedFrom)
	}

	cfg := result.Config
	logger.Debug("configuration resolved",
		logging.FieldSplitType, cfg.Split.Type,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldJobs, cfg.Jobs,
	)
	return cfg, workDir, nil
}

// colorMode returns the value of the persistent --color flag.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}
