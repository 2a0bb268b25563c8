package mdast

import (
	"slices"
	"strings"
)

// Container is implemented by block tokens. Children are exclusively owned
// by one pipeline invocation; callers must not share a block across goroutines.
type Container interface {
	Token
	Len() int
	At(i int) Token
	Set(i int, tok Token)
	Insert(i int, tok Token)
	Append(toks ...Token)
	Delete(i int)
	Remove(tok Token) bool
	Index(tok Token) int
	Contains(tok Token) bool
	Children() []Token
	SetChildren(toks []Token)
}

// Block is a token wrapping an ordered sequence of child tokens.
type Block struct {
	kind     Kind
	children []Token
}

// NewBlock creates a block of the given kind holding children.
func NewBlock(kind Kind, children ...Token) *Block {
	return &Block{kind: kind, children: children}
}

// NewSection creates an empty section block.
func NewSection(children ...Token) *Block {
	return NewBlock(KindSection, children...)
}

// Kind implements Token.
func (b *Block) Kind() Kind { return b.kind }

// String implements Token by concatenating the children.
func (b *Block) String() string {
	var sb strings.Builder
	for _, child := range b.children {
		sb.WriteString(child.String())
	}
	return sb.String()
}

// Len returns the number of direct children.
func (b *Block) Len() int { return len(b.children) }

// At returns the child at index i.
func (b *Block) At(i int) Token { return b.children[i] }

// Set replaces the child at index i.
func (b *Block) Set(i int, tok Token) { b.children[i] = tok }

// Insert places tok before index i. An index equal to Len appends.
func (b *Block) Insert(i int, tok Token) {
	b.children = slices.Insert(b.children, i, tok)
}

// Append adds tokens at the end.
func (b *Block) Append(toks ...Token) {
	b.children = append(b.children, toks...)
}

// Delete removes the child at index i.
func (b *Block) Delete(i int) {
	b.children = slices.Delete(b.children, i, i+1)
}

// Remove deletes the first direct child identical to tok.
func (b *Block) Remove(tok Token) bool {
	idx := b.Index(tok)
	if idx < 0 {
		return false
	}
	b.Delete(idx)
	return true
}

// Index returns the position of tok among the direct children, or -1.
func (b *Block) Index(tok Token) int {
	return slices.Index(b.children, tok)
}

// Contains reports whether tok is a direct child.
func (b *Block) Contains(tok Token) bool {
	return b.Index(tok) >= 0
}

// Children returns the direct children. The slice aliases the block's storage.
func (b *Block) Children() []Token { return b.children }

// SetChildren replaces all direct children. Level and language attributes
// captured at construction are kept.
func (b *Block) SetChildren(toks []Token) { b.children = toks }

// List is a run of list items; deeper indentation nests another List.
type List struct {
	Block
	level int
}

// NewList creates a text list whose level is taken from the first child.
func NewList(children ...Token) *List {
	l := &List{Block: Block{kind: KindTextList, children: children}}
	if len(children) > 0 {
		if leveled, ok := children[0].(Leveled); ok {
			l.level = leveled.Level()
		}
	}
	return l
}

// Level returns the indentation width of the list's own items.
func (l *List) Level() int { return l.level }

// FencedBlock is a code or math block including both fences.
type FencedBlock struct {
	Block
	language string
}

// NewFencedBlock creates a fenced block whose language is taken from the opening fence.
func NewFencedBlock(kind Kind, children ...Token) *FencedBlock {
	fb := &FencedBlock{Block: Block{kind: kind, children: children}}
	if len(children) > 0 {
		if fence, ok := children[0].(Languaged); ok {
			fb.language = fence.Language()
		}
	}
	return fb
}

// Language returns the opening fence's info string.
func (fb *FencedBlock) Language() string { return fb.language }
