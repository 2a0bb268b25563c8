// Package configloader resolves zkit configuration. It discovers config
// files, layers them over the defaults, applies ZKIT_* environment variables
// and CLI overrides through viper, and validates the result.
package configloader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/yaklabco/zkit/pkg/config"
)

// configFilePermissions is the file mode for configuration files.
const configFilePermissions = 0644

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is where the project config search starts.
	// Defaults to the current working directory.
	WorkingDir string

	// ExplicitPath is a config file given with --config. It is layered
	// above the discovered files.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// Overrides come from CLI flags and take highest precedence. Keys use
	// dotted config names, e.g. "split.type" or "jobs".
	Overrides map[string]any
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files actually loaded, lowest precedence first.
	LoadedFrom []string

	// Warnings contains non-fatal validation findings.
	Warnings []string
}

// Load resolves the final configuration.
// Precedence (highest to lowest):
//  1. CLI flags (opts.Overrides)
//  2. Environment variables (ZKIT_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.zkit.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/zkit/config.yaml)
//  6. System config (/etc/zkit/config.yaml)
//  7. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = wd
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}

	merged, err := defaultSettings()
	if err != nil {
		return nil, err
	}

	layers := []struct {
		path   string
		skip   bool
		source string
	}{
		{paths.System, opts.IgnoreSystemConfig, "system"},
		{paths.User, opts.IgnoreUserConfig, "user"},
		{paths.Project, opts.IgnoreProjectConfig, "project"},
		{paths.Explicit, false, "explicit"},
	}
	for _, layer := range layers {
		if layer.path == "" || layer.skip {
			continue
		}
		values, err := readLayer(layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.source, err)
		}
		merged = merge(merged, values)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	if !opts.IgnoreEnv {
		env, err := envLayer(merged)
		if err != nil {
			return nil, err
		}
		merged = merge(merged, env)
	}

	merged = merge(merged, expandKeys(opts.Overrides))

	cfg, err := decode(merged)
	if err != nil {
		return nil, err
	}

	validation := Validate(cfg)
	if !validation.Valid() {
		first := validation.Errors[0]
		if len(result.LoadedFrom) > 0 {
			first.FilePath = result.LoadedFrom[len(result.LoadedFrom)-1]
		}
		return nil, &first
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// decode unmarshals settings through the mapstructure tags and reads the
// CLI-only fields as typed values.
func decode(values settings) (*config.Config, error) {
	v := viper.New()
	if err := v.MergeConfigMap(values); err != nil {
		return nil, fmt.Errorf("merge settings: %w", err)
	}

	cfg := &config.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Jobs = v.GetInt("jobs")
	cfg.DryRun = v.GetBool("dry_run")
	format, err := config.ParseOutputFormat(v.GetString("format"))
	if err != nil {
		return nil, &ValidationError{Field: "format", Value: v.GetString("format"), Message: err.Error()}
	}
	cfg.Format = format

	return cfg, nil
}

// expandKeys turns {"split.type": "task"} into {"split": {"type": "task"}}.
func expandKeys(flat map[string]any) settings {
	out := settings{}
	for key, value := range flat {
		parts := strings.Split(strings.ToLower(key), ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(settings)
			if !ok {
				child = settings{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// WriteConfig writes content to path, refusing to replace an existing file
// unless force is set.
func WriteConfig(path string, content []byte, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
