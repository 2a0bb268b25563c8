package mdast

// WalkFunc is the function signature for Walk callbacks.
// Return a non-nil error to stop the walk.
type WalkFunc func(tok Token) error

// Walk performs a pre-order traversal over toks, descending into containers.
// If walkFunc returns a non-nil error, the walk stops and returns that error.
func Walk(toks []Token, walkFunc WalkFunc) error {
	for _, tok := range toks {
		if err := walkFunc(tok); err != nil {
			return err
		}
		if c, ok := tok.(Container); ok {
			if err := Walk(c.Children(), walkFunc); err != nil {
				return err
			}
		}
	}
	return nil
}

// WalkWithContext performs a traversal with enter and leave callbacks.
// Leave is only called for containers, after their children.
// Either callback may be nil.
func WalkWithContext(toks []Token, enter, leave WalkFunc) error {
	for _, tok := range toks {
		if enter != nil {
			if err := enter(tok); err != nil {
				return err
			}
		}
		c, ok := tok.(Container)
		if !ok {
			continue
		}
		if err := WalkWithContext(c.Children(), enter, leave); err != nil {
			return err
		}
		if leave != nil {
			if err := leave(tok); err != nil {
				return err
			}
		}
	}
	return nil
}

// WalkInlines walks only tokens carrying inline content.
func WalkInlines(toks []Token, fn func(Inline) error) error {
	return Walk(toks, func(tok Token) error {
		if in, ok := tok.(Inline); ok && tok.Kind().IsInline() {
			return fn(in)
		}
		return nil
	})
}

// FindAll returns all tokens matching the predicate, in document order.
func FindAll(toks []Token, predicate func(Token) bool) []Token {
	var result []Token

	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	Walk(toks, func(tok Token) error {
		if predicate(tok) {
			result = append(result, tok)
		}
		return nil
	})

	return result
}

// FindFirst returns the first token matching the predicate, or nil if none found.
func FindFirst(toks []Token, predicate func(Token) bool) Token {
	var found Token

	//nolint:errcheck,revive // errStopWalk is expected and intentionally ignored
	Walk(toks, func(tok Token) error {
		if predicate(tok) {
			found = tok
			return errStopWalk
		}
		return nil
	})

	return found
}

// FindByKind returns all tokens whose kind is kind or a member of the kind group.
func FindByKind(toks []Token, kind Kind) []Token {
	return FindAll(toks, func(tok Token) bool {
		return tok.Kind().Is(kind)
	})
}

// ContainsDeep reports whether target appears anywhere under toks.
func ContainsDeep(toks []Token, target Token) bool {
	return FindFirst(toks, func(tok Token) bool { return tok == target }) != nil
}

// RemoveDeep deletes the first occurrence of target from c or any nested
// container. It reports whether a token was removed.
func RemoveDeep(c Container, target Token) bool {
	if c.Remove(target) {
		return true
	}
	for _, child := range c.Children() {
		if nested, ok := child.(Container); ok && RemoveDeep(nested, target) {
			return true
		}
	}
	return false
}

// Serialize concatenates the serialized form of every token.
func Serialize(toks []Token) string {
	return NewSection(toks...).String()
}

// errStopWalk is a sentinel error used to stop walking early.
//
//nolint:gochecknoglobals // Sentinel value.
var errStopWalk = &stopWalkError{}

type stopWalkError struct{}

func (e *stopWalkError) Error() string {
	return "stop walk"
}
