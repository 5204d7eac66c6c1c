package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Syntax errors and source-snippet rendering
// ---------------------------------------------------------------------------

// SyntaxError is a lexing or parsing failure. It always carries the source
// position of the offending token and, when known, the token's length.
type SyntaxError struct {
	Msg string
	Pos Position
	Len int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// AsSyntaxError unwraps err to a *SyntaxError if it carries one.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// FormatSnippet renders the offending source line with a caret marker under
// the given position. Length extends the marker under the full token;
// lengths past the end of the line are clamped.
func FormatSnippet(src string, pos Position, length int) string {
	if pos.Line < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if pos.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[pos.Line-1], "\r")

	col := pos.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}
	if length < 1 {
		length = 1
	}
	if col-1+length > len(line) {
		length = len(line) - col + 1
		if length < 1 {
			length = 1
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%4d | %s\n", pos.Line, line)
	b.WriteString("     | ")
	for i := 1; i < col; i++ {
		if i-1 < len(line) && line[i-1] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(strings.Repeat("^", length))
	return b.String()
}
