// Package diff renders line-based unified diffs of note rewrites, used to
// preview what a command would change before it writes.
package diff

import (
	"fmt"
	"strings"
)

// Op is the kind of a diff line.
type Op int

const (
	// Equal is an unchanged context line.
	Equal Op = iota

	// Insert is a line only in the new content.
	Insert

	// Delete is a line only in the old content.
	Delete
)

// Context is the number of unchanged lines shown around each change.
const Context = 3

// Line is one line of a hunk, without its prefix.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a run of changes with surrounding context. Start fields are
// 1-based line numbers.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Diff is the difference between two versions of one file.
type Diff struct {
	Path    string
	Hunks   []Hunk
	Added   int
	Removed int
}

// Compute diffs before and after line by line. It returns nil when both
// have the same lines.
func Compute(path string, before, after []byte) *Diff {
	oldLines := lines(before)
	newLines := lines(after)

	ops := script(oldLines, newLines)
	hunks := group(ops)
	if len(hunks) == 0 {
		return nil
	}

	d := &Diff{Path: path, Hunks: hunks}
	for _, op := range ops {
		switch op.Op {
		case Insert:
			d.Added++
		case Delete:
			d.Removed++
		case Equal:
		}
	}
	return d
}

// String renders d in unified format with "---" and "+++" headers.
func (d *Diff) String() string {
	if d == nil {
		return ""
	}

	var b strings.Builder
	path := strings.TrimPrefix(d.Path, "/")
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteString(l.Op.Prefix())
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Header returns the "@@ -a,b +c,d @@" line of h.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Prefix returns the unified diff marker of op.
func (o Op) Prefix() string {
	switch o {
	case Insert:
		return "+"
	case Delete:
		return "-"
	default:
		return " "
	}
}

func lines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

// script returns the edit script turning a into b, from a longest common
// subsequence table. Deletions come before insertions within a change.
func script(a, b []string) []Line {
	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]Line, 0, max(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			ops = append(ops, Line{Op: Equal, Text: a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, Line{Op: Delete, Text: a[i]})
			i++
		default:
			ops = append(ops, Line{Op: Insert, Text: b[j]})
			j++
		}
	}
	for ; i < len(a); i++ {
		ops = append(ops, Line{Op: Delete, Text: a[i]})
	}
	for ; j < len(b); j++ {
		ops = append(ops, Line{Op: Insert, Text: b[j]})
	}
	return ops
}

// group cuts an edit script into hunks. Changes separated by at most
// 2*Context unchanged lines share a hunk.
func group(ops []Line) []Hunk {
	var hunks []Hunk
	oldLine, newLine := 1, 1
	var cur *Hunk
	lastChange := -1

	for idx, op := range ops {
		if op.Op != Equal {
			if cur == nil || idx-lastChange > 2*Context {
				if cur != nil {
					hunks = append(hunks, trimTail(*cur, lastChange, ops))
				}
				start := max(0, idx-Context)
				cur = &Hunk{
					OldStart: oldLine - (idx - start),
					NewStart: newLine - (idx - start),
				}
				for _, ctx := range ops[start:idx] {
					cur.add(ctx)
				}
			} else {
				for _, ctx := range ops[lastChange+1 : idx] {
					cur.add(ctx)
				}
			}
			cur.add(op)
			lastChange = idx
		}

		if op.Op != Insert {
			oldLine++
		}
		if op.Op != Delete {
			newLine++
		}
	}
	if cur != nil {
		hunks = append(hunks, trimTail(*cur, lastChange, ops))
	}
	return hunks
}

// trimTail appends up to Context lines following the last change.
func trimTail(h Hunk, lastChange int, ops []Line) Hunk {
	end := min(len(ops), lastChange+1+Context)
	for _, ctx := range ops[lastChange+1 : end] {
		h.add(ctx)
	}
	return h
}

func (h *Hunk) add(l Line) {
	h.Lines = append(h.Lines, l)
	switch l.Op {
	case Equal:
		h.OldCount++
		h.NewCount++
	case Delete:
		h.OldCount++
	case Insert:
		h.NewCount++
	}
}
