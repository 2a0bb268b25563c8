// Package naming renders file names for new notes from a text/template and
// keeps them unique within a folder.
package naming

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/yaklabco/zkit/pkg/config"
)

// ErrEmptyName is returned when a template renders to nothing usable.
var ErrEmptyName = errors.New("name template produced an empty name")

// maxBaseLength bounds the rendered name, leaving room for a suffix and
// extension within common 255 byte file name limits.
const maxBaseLength = 200

// Vars are the values available to a name template.
type Vars struct {
	Year   string
	Month  string
	Day    string
	Hour   string
	Minute string
	Second string

	// ID is the timestamp rendered with the configured Go time layout.
	ID string

	// UUID is a random identifier, fresh per name.
	UUID string

	Title string
}

// Namer renders names. A Namer is safe for sequential use only.
type Namer struct {
	tmpl      *template.Template
	idFormat  string
	extension string

	now     func() time.Time
	newUUID func() string
}

// Option configures a Namer.
type Option func(*Namer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(n *Namer) { n.now = now }
}

// WithUUID replaces the random id generator.
func WithUUID(fn func() string) Option {
	return func(n *Namer) { n.newUUID = fn }
}

// New parses the naming configuration.
func New(cfg config.NamingConfig, opts ...Option) (*Namer, error) {
	text := cfg.Template
	if text == "" {
		text = "{{.Title}}"
	}

	tmpl, err := template.New("name").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse name template: %w", err)
	}

	n := &Namer{
		tmpl:      tmpl,
		idFormat:  cfg.IDFormat,
		extension: cfg.Extension,
		now:       time.Now,
		newUUID:   uuid.NewString,
	}
	if n.idFormat == "" {
		n.idFormat = "200601021504"
	}
	if n.extension != "" && !strings.HasPrefix(n.extension, ".") {
		n.extension = "." + n.extension
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Vars returns the template values for title at the namer's current time.
func (n *Namer) Vars(title string) Vars {
	now := n.now()
	return Vars{
		Year:   now.Format("2006"),
		Month:  now.Format("01"),
		Day:    now.Format("02"),
		Hour:   now.Format("15"),
		Minute: now.Format("04"),
		Second: now.Format("05"),
		ID:     now.Format(n.idFormat),
		UUID:   n.newUUID(),
		Title:  title,
	}
}

// Name renders a sanitized base name, without extension, for title.
func (n *Namer) Name(title string) (string, error) {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, n.Vars(title)); err != nil {
		return "", fmt.Errorf("render name: %w", err)
	}

	name := Sanitize(buf.String())
	if name == "" {
		return "", fmt.Errorf("%w: title %q", ErrEmptyName, title)
	}
	return name, nil
}

// Extension returns the extension appended to every file name.
func (n *Namer) Extension() string {
	return n.extension
}

// Sanitize makes s safe as a file name on common file systems: path
// separators and reserved characters are dropped, whitespace runs collapse
// to one space and leading dots are removed.
func Sanitize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}

	out := strings.TrimLeft(b.String(), ".")
	out = strings.TrimSpace(out)
	if len(out) > maxBaseLength {
		out = truncate(out, maxBaseLength)
	}
	return strings.TrimRight(out, " .")
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	cut := 0
	for i := range s {
		if i > limit {
			break
		}
		cut = i
	}
	return s[:cut]
}

// Allocator hands out file names that collide neither with each other nor
// with existing entries.
type Allocator struct {
	extension string
	exists    func(string) bool
	taken     map[string]bool
}

// NewAllocator returns an allocator. exists reports whether a file name,
// extension included, is already present in the target folder.
func NewAllocator(extension string, exists func(string) bool) *Allocator {
	return &Allocator{
		extension: extension,
		exists:    exists,
		taken:     make(map[string]bool),
	}
}

// Allocate returns base plus extension, or base with " 2", " 3" and so on
// appended until the name is free. Names are compared case-insensitively.
func (a *Allocator) Allocate(base string) string {
	for i := 1; ; i++ {
		candidate := base
		if i > 1 {
			candidate = base + " " + strconv.Itoa(i)
		}
		candidate += a.extension

		key := strings.ToLower(candidate)
		if a.taken[key] || (a.exists != nil && a.exists(candidate)) {
			continue
		}
		a.taken[key] = true
		return candidate
	}
}
