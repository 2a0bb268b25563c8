package configloader

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/naming"
	"github.com/yaklabco/zkit/pkg/split"
	"github.com/yaklabco/zkit/pkg/zettel"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "split.attributes").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., settings that have no effect).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownBackupModes lists valid backup mode values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	"sidecar": true,
	"none":    true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.addError("format", cfg.Format, fmt.Sprintf("invalid format %q; must be one of: text, table, json", cfg.Format))
	}

	if cfg.Jobs < 0 {
		result.addError("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		result.addError("backups.mode", cfg.Backups.Mode,
			fmt.Sprintf("invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode))
	}

	if len(cfg.Extensions) == 0 {
		result.addError("extensions", cfg.Extensions, "at least one note extension is required")
	}

	validateSplit(cfg, result)
	validateNaming(cfg, result)
	validatePatterns(cfg, result)
	validateAudit(cfg, result)
	validateAssets(cfg, result)
	validateIgnorePatterns(cfg, result)

	return result
}

func (r *ValidationResult) addError(field string, value any, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
}

func (r *ValidationResult) addWarning(field string, value any, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: message})
}

func validateSplit(cfg *config.Config, result *ValidationResult) {
	s := cfg.Split

	if _, err := split.ParsePredicate(s.Type, s.Attributes); err != nil {
		field := "split.attributes"
		if errors.Is(err, split.ErrUnknownKind) {
			field = "split.type"
		}
		result.addError(field, s.Type, err.Error())
	}

	if s.UseKeyword && strings.TrimSpace(s.Keyword) == "" {
		result.addError("split.keyword", s.Keyword, "use_keyword requires a non-empty keyword")
	}
	if s.OutputDir != "" && filepath.IsAbs(s.OutputDir) {
		result.addWarning("split.output_dir", s.OutputDir, "absolute output folder is shared by every source note")
	}
}

func validateNaming(cfg *config.Config, result *ValidationResult) {
	n, err := naming.New(cfg.Naming)
	if err != nil {
		result.addError("naming.template", cfg.Naming.Template, err.Error())
		return
	}
	if _, err := n.Name("Title"); err != nil {
		result.addError("naming.template", cfg.Naming.Template, err.Error())
		return
	}
	if !strings.Contains(cfg.Naming.Template, "{{") {
		result.addWarning("naming.template", cfg.Naming.Template,
			"template has no fields; every note gets the same name with a counter")
	}
}

func validatePatterns(cfg *config.Config, result *ValidationResult) {
	if _, err := zettel.PatternsFromConfig(cfg.Patterns); err != nil {
		result.addError("patterns", cfg.Patterns, err.Error())
	}
}

func validateAudit(cfg *config.Config, result *ValidationResult) {
	if cfg.Audit.IDPattern == "" {
		if cfg.Audit.RequireID {
			result.addWarning("audit.id_pattern", "", "require_id only accepts ids from frontmatter without id_pattern")
		}
		return
	}
	if _, err := regexp.Compile(cfg.Audit.IDPattern); err != nil {
		result.addError("audit.id_pattern", cfg.Audit.IDPattern, fmt.Sprintf("invalid regular expression: %v", err))
	}
}

func validateAssets(cfg *config.Config, result *ValidationResult) {
	for i, ext := range cfg.Assets.Extensions {
		if !strings.HasPrefix(ext, ".") {
			result.addError(fmt.Sprintf("assets.extensions[%d]", i), ext, "extension must start with a dot")
		}
	}
	if filepath.IsAbs(cfg.Assets.Folder) || strings.HasPrefix(filepath.Clean(cfg.Assets.Folder), "..") {
		result.addError("assets.folder", cfg.Assets.Folder, "asset folder must be inside the vault")
	}
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		// filepath.Match returns an error only for malformed patterns
		_, err := filepath.Match(strings.ReplaceAll(pattern, "**", "*"), "")
		if err != nil {
			result.addError(fmt.Sprintf("ignore[%d]", i), pattern, fmt.Sprintf("invalid glob pattern: %v", err))
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	return knownBackupModes[mode]
}
