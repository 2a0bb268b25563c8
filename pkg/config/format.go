package config

import (
	"fmt"
	"strings"
)

// IsValid returns true if the output format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatTable, FormatJSON:
		return true
	default:
		return false
	}
}

// ParseOutputFormat converts a flag or config value to an OutputFormat.
// The empty string selects FormatText.
func ParseOutputFormat(s string) (OutputFormat, error) {
	if s == "" {
		return FormatText, nil
	}
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("unknown output format %q; must be one of: text, table, json", s)
	}
	return f, nil
}
