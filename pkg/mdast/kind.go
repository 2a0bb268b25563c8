package mdast

import (
	"strconv"
	"strings"
)

// Kind classifies a token. Leaf kinds wrap exactly one line, block kinds wrap
// an ordered sequence of child tokens, and group kinds are never carried by a
// token but name a family of kinds for subtype tests (see Kind.Is).
type Kind uint8

// Leaf kinds.
const (
	KindText Kind = iota
	KindEmptyLine
	KindHeader
	KindHorizontalRule
	KindBlockquote
	KindFootnote
	KindTask
	KindUnorderedListItem
	KindOrderedListItem
	KindTableRow
	KindTableDivider
	KindCodeFence
	KindCode
	KindMathFence
	KindMath
	KindFrontmatterFence

	// Block kinds.
	KindBlockquoteBlock
	KindTextList
	KindTable
	KindCodeBlock
	KindMathBlock
	KindFrontmatter
	KindSection

	// Group kinds.
	KindListItem
	KindFence
	KindFenced
	KindBlock

	kindCount
)

//nolint:gochecknoglobals // Read-only lookup table.
var kindNames = [kindCount]string{
	KindText:              "Text",
	KindEmptyLine:         "EmptyLine",
	KindHeader:            "Header",
	KindHorizontalRule:    "HorizontalRule",
	KindBlockquote:        "Blockquote",
	KindFootnote:          "Footnote",
	KindTask:              "Task",
	KindUnorderedListItem: "UnorderedListItem",
	KindOrderedListItem:   "OrderedListItem",
	KindTableRow:          "TableRow",
	KindTableDivider:      "TableDivider",
	KindCodeFence:         "CodeFence",
	KindCode:              "Code",
	KindMathFence:         "MathFence",
	KindMath:              "Math",
	KindFrontmatterFence:  "FrontmatterFence",
	KindBlockquoteBlock:   "BlockquoteBlock",
	KindTextList:          "TextList",
	KindTable:             "Table",
	KindCodeBlock:         "CodeBlock",
	KindMathBlock:         "MathBlock",
	KindFrontmatter:       "Frontmatter",
	KindSection:           "Section",
	KindListItem:          "ListItem",
	KindFence:             "Fence",
	KindFenced:            "Fenced",
	KindBlock:             "Block",
}

// String returns the kind name, e.g. "Header".
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind resolves a kind name case-insensitively. Underscores and dashes
// are ignored, so "text_list", "text-list" and "TextList" are equivalent.
func ParseKind(name string) (Kind, bool) {
	normalized := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(name))
	for k := range kindCount {
		if strings.ToLower(kindNames[k]) == normalized {
			return k, true
		}
	}
	return 0, false
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool { return k < kindCount }

// IsBlock reports whether tokens of this kind hold children.
func (k Kind) IsBlock() bool {
	return k >= KindBlockquoteBlock && k <= KindSection
}

// IsGroup reports whether k names a family of kinds rather than a concrete kind.
func (k Kind) IsGroup() bool {
	return k >= KindListItem && k < kindCount
}

// IsInline reports whether tokens of this kind carry inline content that may
// hold tags, keywords and footnote references.
func (k Kind) IsInline() bool {
	switch k {
	case KindText, KindHeader, KindBlockquote, KindFootnote, KindTask,
		KindUnorderedListItem, KindOrderedListItem, KindTableRow:
		return true
	default:
		return false
	}
}

// Is reports whether k is target or a member of the target group.
func (k Kind) Is(target Kind) bool {
	if k == target {
		return true
	}
	switch target {
	case KindListItem:
		return k == KindTask || k == KindUnorderedListItem || k == KindOrderedListItem
	case KindFence:
		return k == KindCodeFence || k == KindMathFence
	case KindFenced:
		return k == KindCode || k == KindMath
	case KindBlock:
		return k.IsBlock()
	default:
		return false
	}
}
