package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value.
	// If false, generates a minimal commented template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return NewConfig().ToYAMLWithHeader(DefaultTemplateHeader())
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Note file extensions
# extensions: [".md", ".markdown"]

# File patterns to ignore (glob patterns)
# ignore:
#   - "archive/**"
#   - "templates/**"

split:
  # Token kind that starts a new note: header, task, list_item,
  # unordered_list_item, ordered_list_item, text_list, code_block, footnote, ...
  type: header
  attributes:
    level: 1

  # Only split where the keyword appears, and strip it from the output
  # use_keyword: false
  # remove_keyword: true
  # keyword: "#split"

  # copy_global_tags: true
  # copy_frontmatter: true
  # move_footnotes: true
  # backlinks: true
  # index_source: false

naming:
  # Variables: Year Month Day Hour Minute Second ID UUID Title
  template: "{{.ID}} {{.Title}}"
  # Go time layout used for {{.ID}}
  id_format: "200601021504"

# audit:
#   require_id: true
#   require_title: true
#   require_tags: true
#   code_language: true

# assets:
#   folder: assets

# Lexer pattern overrides (Go regular expressions)
# patterns:
#   blockquote: "^ {0,3}>"
`)

	return buf.Bytes()
}

// templateToJSON renders the default configuration as JSON using the YAML
// field names.
func templateToJSON() ([]byte, error) {
	yamlBytes, err := NewConfig().ToYAML()
	if err != nil {
		return nil, err
	}

	var generic map[string]any
	if err := yaml.Unmarshal(yamlBytes, &generic); err != nil {
		return nil, fmt.Errorf("parse generated YAML: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return jsonBytes, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# zkit configuration
# See: https://github.com/yaklabco/zkit`
}
