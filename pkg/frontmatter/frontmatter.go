// Package frontmatter decodes and encodes the YAML metadata block at the top
// of a note. Documents are held as yaml.Node trees so that key order, comments
// and flow styles such as "tags: []" survive a decode/encode round trip.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Fence is the delimiter line above and below a frontmatter block.
const Fence = "---"

// ErrDecode is returned (wrapped in a *DecodeError) when a frontmatter body is
// not valid YAML.
var ErrDecode = errors.New("invalid frontmatter")

// DecodeError reports a YAML syntax error inside a frontmatter body.
type DecodeError struct {
	// Line is the 1-based line within the body, or 0 when unknown.
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", ErrDecode, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

//nolint:gochecknoglobals // Read-only compiled pattern.
var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// Frontmatter is a decoded metadata document.
type Frontmatter struct {
	doc *yaml.Node
}

// Decode parses a frontmatter body (the text between the fences).
// A blank body decodes to an empty document.
func Decode(body string) (*Frontmatter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		derr := &DecodeError{Err: err}
		if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
			derr.Line, _ = strconv.Atoi(m[1])
		}
		return nil, derr
	}
	return &Frontmatter{doc: &doc}, nil
}

// IsEmpty reports whether the document holds no value.
func (f *Frontmatter) IsEmpty() bool {
	return f == nil || f.doc == nil || f.doc.Kind == 0 || len(f.doc.Content) == 0
}

// IsMapping reports whether the document's root is a key/value mapping.
func (f *Frontmatter) IsMapping() bool {
	root := f.root()
	return root != nil && root.Kind == yaml.MappingNode
}

// Keys returns the top-level mapping keys in document order.
func (f *Frontmatter) Keys() []string {
	root := f.root()
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
	}
	return keys
}

// Has reports whether the mapping contains key.
func (f *Frontmatter) Has(key string) bool {
	return f.lookup(key) != nil
}

// String returns the scalar value stored under key.
func (f *Frontmatter) String(key string) (string, bool) {
	node := f.lookup(key)
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", false
	}
	return node.Value, true
}

// Strings returns the values stored under key. A sequence yields its scalar
// items, a scalar yields itself, anything else yields nil.
func (f *Frontmatter) Strings(key string) []string {
	node := f.lookup(key)
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil
		}
		return []string{node.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, item.Value)
			}
		}
		return out
	default:
		return nil
	}
}

// Value decodes the document into plain Go values: map[string]any, []any or a scalar.
func (f *Frontmatter) Value() (any, error) {
	if f.IsEmpty() {
		return nil, nil
	}
	var v any
	if err := f.doc.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode frontmatter value: %w", err)
	}
	return v, nil
}

// WithTitle returns a shallow copy whose "title" value is replaced by title.
// Documents that are not mappings, or have no title key, are copied unchanged.
// The receiver is never modified.
func (f *Frontmatter) WithTitle(title string) *Frontmatter {
	if f.IsEmpty() {
		return f
	}

	doc := *f.doc
	doc.Content = append([]*yaml.Node(nil), f.doc.Content...)

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &Frontmatter{doc: &doc}
	}

	mapping := *root
	mapping.Content = append([]*yaml.Node(nil), root.Content...)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != "title" {
			continue
		}
		old := mapping.Content[i+1]
		mapping.Content[i+1] = &yaml.Node{
			Kind:        yaml.ScalarNode,
			Tag:         "!!str",
			Value:       title,
			LineComment: old.LineComment,
		}
	}
	doc.Content[0] = &mapping
	return &Frontmatter{doc: &doc}
}

// Encode renders the document as YAML without fences. An empty document
// encodes to the empty string.
func (f *Frontmatter) Encode() (string, error) {
	if f.IsEmpty() {
		return "", nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(f.doc); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("close encoder: %w", err)
	}
	return buf.String(), nil
}

// Block renders the document wrapped in fence lines, ready to prepend to a note.
func (f *Frontmatter) Block() (string, error) {
	body, err := f.Encode()
	if err != nil {
		return "", err
	}
	return Fence + "\n" + body + Fence + "\n", nil
}

func (f *Frontmatter) root() *yaml.Node {
	if f.IsEmpty() {
		return nil
	}
	return f.doc.Content[0]
}

func (f *Frontmatter) lookup(key string) *yaml.Node {
	root := f.root()
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			return root.Content[i+1]
		}
	}
	return nil
}
