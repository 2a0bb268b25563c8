package mdast

// LineInfo holds the offsets of one line in a document.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where the terminator begins.
	// For a final line without terminator this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the terminator (or end of input).
	EndOffset int
}

// BuildLines splits content into lines, handling both LF and CRLF endings.
// A trailing empty segment after the final terminator is not reported, so
// the lines tile content exactly and empty content yields no lines.
func BuildLines(content string) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx := range len(content) {
		if content[idx] != '\n' {
			continue
		}

		newlineStart := idx
		if idx > lineStart && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}

		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	if lineStart < len(content) {
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: len(content),
			EndOffset:    len(content),
		})
	}

	return lines
}

// Text returns the line content without its terminator.
func (li LineInfo) Text(content string) string {
	return content[li.StartOffset:li.NewlineStart]
}

// EOL returns the line terminator, empty for an unterminated final line.
func (li LineInfo) EOL(content string) string {
	return content[li.NewlineStart:li.EndOffset]
}
