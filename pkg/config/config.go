// Package config defines core configuration types for zkit.
// These types are pure data structures with no external dependencies on Viper or other config loaders.
package config

// OutputFormat specifies the output format for reports.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

// BackupsConfig controls backup behavior when a source note is rewritten.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"` // "sidecar" or "none"
}

// SplitConfig holds the settings of "zkit split".
type SplitConfig struct {
	// Type is the token kind that starts a section, e.g. "header" or "task".
	Type string `mapstructure:"type" yaml:"type"`

	// Attributes constrain the split type, e.g. {level: 2}.
	Attributes map[string]any `mapstructure:"attributes" yaml:"attributes,omitempty"`

	// Keyword marks split points when UseKeyword is set.
	Keyword       string `mapstructure:"keyword" yaml:"keyword"`
	UseKeyword    bool   `mapstructure:"use_keyword" yaml:"use_keyword"`
	RemoveKeyword bool   `mapstructure:"remove_keyword" yaml:"remove_keyword"`

	// Formatting toggles.
	CopyGlobalTags  bool `mapstructure:"copy_global_tags" yaml:"copy_global_tags"`
	CopyFrontmatter bool `mapstructure:"copy_frontmatter" yaml:"copy_frontmatter"`
	MoveFootnotes   bool `mapstructure:"move_footnotes" yaml:"move_footnotes"`

	// FoldBlocks nests lists, tables, quotes and fenced blocks before splitting.
	FoldBlocks bool `mapstructure:"fold_blocks" yaml:"fold_blocks"`

	// Backlinks appends a link to the source note to every new note.
	Backlinks bool `mapstructure:"backlinks" yaml:"backlinks"`

	// IndexSource replaces the source note body with links to the new notes.
	IndexSource bool `mapstructure:"index_source" yaml:"index_source"`

	// OutputDir receives the new notes. Empty means the source note's folder.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`
}

// NamingConfig controls the file names of new notes.
type NamingConfig struct {
	// Template is a text/template over Year, Month, Day, Hour, Minute,
	// Second, ID, UUID and Title.
	Template string `mapstructure:"template" yaml:"template"`

	// IDFormat is the Go time layout used to render {{.ID}}.
	IDFormat string `mapstructure:"id_format" yaml:"id_format"`

	// Extension is appended to every generated name.
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// AuditConfig selects which checks "zkit check" performs.
type AuditConfig struct {
	RequireID    bool `mapstructure:"require_id" yaml:"require_id"`
	RequireTitle bool `mapstructure:"require_title" yaml:"require_title"`
	RequireTags  bool `mapstructure:"require_tags" yaml:"require_tags"`

	// CodeLanguage reports fenced code blocks without a language.
	CodeLanguage bool `mapstructure:"code_language" yaml:"code_language"`

	// IDPattern recognizes an id prefix in file names, e.g. "^[0-9]{12}".
	IDPattern string `mapstructure:"id_pattern" yaml:"id_pattern"`
}

// AssetsConfig configures asset link checks and moves.
type AssetsConfig struct {
	// Extensions lists the file types treated as assets.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`

	// Folder is the default destination of "zkit assets move".
	Folder string `mapstructure:"folder" yaml:"folder"`
}

// Config is the root configuration structure for zkit.
type Config struct {
	// Extensions lists note file extensions.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`

	// Split configures note splitting.
	Split SplitConfig `mapstructure:"split" yaml:"split"`

	// Naming configures generated file names.
	Naming NamingConfig `mapstructure:"naming" yaml:"naming"`

	// Patterns overrides lexer patterns by name.
	Patterns map[string]string `mapstructure:"patterns" yaml:"patterns,omitempty"`

	// Audit configures note checks.
	Audit AuditConfig `mapstructure:"audit" yaml:"audit"`

	// Assets configures asset handling.
	Assets AssetsConfig `mapstructure:"assets" yaml:"assets"`

	// Backups configures backup behavior when rewriting notes.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// CLI-level options (not persisted to config files).

	// DryRun shows planned writes without performing them.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Format specifies the report format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Extensions: []string{".md", ".markdown"},
		Ignore:     nil,
		Split: SplitConfig{
			Type:            "header",
			Attributes:      map[string]any{"level": 1},
			Keyword:         "#split",
			UseKeyword:      false,
			RemoveKeyword:   true,
			CopyGlobalTags:  true,
			CopyFrontmatter: true,
			MoveFootnotes:   true,
			FoldBlocks:      true,
			Backlinks:       true,
			IndexSource:     false,
		},
		Naming: NamingConfig{
			Template:  "{{.ID}} {{.Title}}",
			IDFormat:  "200601021504",
			Extension: ".md",
		},
		Audit: AuditConfig{
			RequireID:    true,
			RequireTitle: true,
			RequireTags:  true,
			CodeLanguage: true,
			IDPattern:    `^[0-9]{12,14}`,
		},
		Assets: AssetsConfig{
			Extensions: []string{
				".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp",
				".pdf", ".mp3", ".m4a", ".wav", ".ogg", ".mp4", ".html",
			},
			Folder: "assets",
		},
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}
