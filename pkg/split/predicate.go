// Package split partitions a token tree into sections that each begin at a
// token matching a kind and attribute predicate.
package split

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yaklabco/zkit/pkg/mdast"
)

// Attribute names accepted in split attribute maps.
const (
	AttrLevel     = "level"
	AttrLanguage  = "language"
	AttrDone      = "done"
	AttrReference = "reference"
)

var (
	// ErrUnknownKind indicates a split type that names no splittable token kind.
	ErrUnknownKind = errors.New("unknown split type")

	// ErrUnsupportedAttribute indicates an attribute the chosen kind does not carry.
	ErrUnsupportedAttribute = errors.New("unsupported split attribute")

	// ErrInvalidAttribute indicates an attribute value of the wrong type or range.
	ErrInvalidAttribute = errors.New("invalid split attribute")

	// ErrMissingKeyword indicates keyword splitting was enabled without a keyword.
	ErrMissingKeyword = errors.New("split keyword is empty")
)

// Predicate selects split points: a kind (or kind group) plus optional
// attribute constraints. Nil attributes are unconstrained.
type Predicate struct {
	Kind      mdast.Kind
	Level     *int
	Language  *string
	Done      *bool
	Reference *string
}

type doner interface{ Done() bool }

type referencer interface{ Reference() string }

// ParsePredicate builds a predicate from a kind name and an attribute map as
// found in configuration files. Keys are matched case-insensitively;
// "is_done" is accepted as an alias of "done".
func ParsePredicate(kind string, attrs map[string]any) (Predicate, error) {
	k, ok := mdast.ParseKind(kind)
	if !ok {
		return Predicate{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	pred := Predicate{Kind: k}
	for key, raw := range attrs {
		switch strings.ToLower(key) {
		case AttrLevel:
			level, err := toInt(raw)
			if err != nil {
				return Predicate{}, fmt.Errorf("%w: %s: %w", ErrInvalidAttribute, AttrLevel, err)
			}
			pred.Level = &level
		case AttrLanguage:
			lang := strings.TrimSpace(fmt.Sprint(raw))
			pred.Language = &lang
		case AttrDone, "is_done":
			done, err := toBool(raw)
			if err != nil {
				return Predicate{}, fmt.Errorf("%w: %s: %w", ErrInvalidAttribute, AttrDone, err)
			}
			pred.Done = &done
		case AttrReference:
			ref := fmt.Sprint(raw)
			pred.Reference = &ref
		default:
			return Predicate{}, fmt.Errorf("%w: %q for %s", ErrUnsupportedAttribute, key, k)
		}
	}

	if err := pred.Validate(); err != nil {
		return Predicate{}, err
	}
	return pred, nil
}

// Validate reports whether every constrained attribute is carried by the
// predicate's kind. The error names the first offending attribute.
func (p Predicate) Validate() error {
	if !splittable(p.Kind) {
		return fmt.Errorf("%w: %s", ErrUnknownKind, p.Kind)
	}
	if p.Level != nil {
		if !supportsLevel(p.Kind) {
			return unsupported(AttrLevel, p.Kind)
		}
		if *p.Level < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidAttribute, AttrLevel)
		}
	}
	if p.Language != nil && p.Kind != mdast.KindCodeFence && p.Kind != mdast.KindCodeBlock {
		return unsupported(AttrLanguage, p.Kind)
	}
	if p.Done != nil && p.Kind != mdast.KindTask {
		return unsupported(AttrDone, p.Kind)
	}
	if p.Reference != nil && p.Kind != mdast.KindFootnote {
		return unsupported(AttrReference, p.Kind)
	}
	return nil
}

// Matches reports whether tok opens a section: the kind matches and every
// constrained attribute is equal.
func (p Predicate) Matches(tok mdast.Token) bool {
	return p.match(tok, func(level int) bool { return level == *p.Level })
}

// Bounds reports whether tok closes an open section. It differs from Matches
// only for level: a token nested deeper than the configured level does not
// close the section.
func (p Predicate) Bounds(tok mdast.Token) bool {
	return p.match(tok, func(level int) bool { return level <= *p.Level })
}

func (p Predicate) match(tok mdast.Token, levelOK func(int) bool) bool {
	if !tok.Kind().Is(p.Kind) {
		return false
	}
	if p.Level != nil {
		leveled, ok := tok.(mdast.Leveled)
		if !ok || !levelOK(leveled.Level()) {
			return false
		}
	}
	if p.Language != nil {
		languaged, ok := tok.(mdast.Languaged)
		if !ok || languaged.Language() != *p.Language {
			return false
		}
	}
	if p.Done != nil {
		d, ok := tok.(doner)
		if !ok || d.Done() != *p.Done {
			return false
		}
	}
	if p.Reference != nil {
		r, ok := tok.(referencer)
		if !ok || r.Reference() != *p.Reference {
			return false
		}
	}
	return true
}

// String renders the predicate for logs, e.g. "Header{level=2}".
func (p Predicate) String() string {
	var attrs []string
	if p.Level != nil {
		attrs = append(attrs, AttrLevel+"="+strconv.Itoa(*p.Level))
	}
	if p.Language != nil {
		attrs = append(attrs, AttrLanguage+"="+strconv.Quote(*p.Language))
	}
	if p.Done != nil {
		attrs = append(attrs, AttrDone+"="+strconv.FormatBool(*p.Done))
	}
	if p.Reference != nil {
		attrs = append(attrs, AttrReference+"="+strconv.Quote(*p.Reference))
	}
	if len(attrs) == 0 {
		return p.Kind.String()
	}
	return p.Kind.String() + "{" + strings.Join(attrs, ",") + "}"
}

func unsupported(attr string, kind mdast.Kind) error {
	return fmt.Errorf("%w: %q is not an attribute of %s", ErrUnsupportedAttribute, attr, kind)
}

func splittable(k mdast.Kind) bool {
	switch k {
	case mdast.KindSection, mdast.KindFrontmatter, mdast.KindFrontmatterFence:
		return false
	default:
		return k.Valid()
	}
}

func supportsLevel(k mdast.Kind) bool {
	switch k {
	case mdast.KindHeader, mdast.KindListItem, mdast.KindTask,
		mdast.KindUnorderedListItem, mdast.KindOrderedListItem, mdast.KindTextList:
		return true
	default:
		return false
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("%d out of range", n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", n, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("parse %q: %w", b, err)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("unexpected type %T", v)
	}
}
