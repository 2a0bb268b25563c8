package configloader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for all zkit environment variables.
const envPrefix = "ZKIT"

// explicitEnv binds keys absent from the default settings: CLI-only options
// and optional fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var explicitEnv = map[string]string{
	"jobs":             "ZKIT_JOBS",
	"format":           "ZKIT_FORMAT",
	"dry_run":          "ZKIT_DRY_RUN",
	"split.output_dir": "ZKIT_SPLIT_OUTPUT_DIR",
}

// bindEnv makes every config key overridable as ZKIT_<KEY>, with dots
// replaced by underscores, e.g. ZKIT_SPLIT_KEYWORD.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range explicitEnv {
		_ = v.BindEnv(key, name)
	}
}

// envLayer returns the settings supplied through ZKIT_* variables for the
// keys of base and the explicitly bound keys. Unset variables are left out,
// so the layer merges like a config file.
func envLayer(base settings) (settings, error) {
	v := viper.New()
	if err := v.MergeConfigMap(base); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	bindEnv(v)

	flat := map[string]any{}
	for _, key := range v.AllKeys() {
		if value, ok := os.LookupEnv(envName(key)); ok && value != "" {
			flat[key] = v.Get(key)
		}
	}
	return expandKeys(flat), nil
}

// envName returns the variable that overrides key.
func envName(key string) string {
	if name, ok := explicitEnv[key]; ok {
		return name
	}
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ListEnvVars returns the supported environment variables with descriptions.
func ListEnvVars() map[string]string {
	return map[string]string{
		"ZKIT_SPLIT_TYPE":             "Token kind that starts a note, e.g. header or task",
		"ZKIT_SPLIT_KEYWORD":          "Split keyword, e.g. #split",
		"ZKIT_SPLIT_USE_KEYWORD":      "Only split where the keyword appears: true or false",
		"ZKIT_SPLIT_REMOVE_KEYWORD":   "Strip the keyword from output: true or false",
		"ZKIT_SPLIT_COPY_GLOBAL_TAGS": "Copy global tags into every note: true or false",
		"ZKIT_SPLIT_COPY_FRONTMATTER": "Copy frontmatter into every note: true or false",
		"ZKIT_SPLIT_MOVE_FOOTNOTES":   "Move footnotes to the notes citing them: true or false",
		"ZKIT_SPLIT_BACKLINKS":        "Link new notes back to the source: true or false",
		"ZKIT_SPLIT_INDEX_SOURCE":     "Replace the source with an index: true or false",
		"ZKIT_SPLIT_OUTPUT_DIR":       "Folder for new notes",
		"ZKIT_NAMING_TEMPLATE":        "File name template",
		"ZKIT_NAMING_ID_FORMAT":       "Go time layout for {{.ID}}",
		"ZKIT_IGNORE":                 "Comma-separated list of ignore patterns",
		"ZKIT_BACKUPS_ENABLED":        "Back up a source before rewriting it: true or false",
		"ZKIT_BACKUPS_MODE":           "Backup mode: sidecar or none",
		"ZKIT_JOBS":                   "Number of parallel workers (0 = auto)",
		"ZKIT_FORMAT":                 "Report format: text, table or json",
		"ZKIT_DRY_RUN":                "Show planned writes only: true or false",
	}
}

// EnvVarNames returns the supported variable names, sorted.
func EnvVarNames() []string {
	vars := ListEnvVars()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
