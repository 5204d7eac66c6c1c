package compiler

import (
	"fmt"
	"testing"
)

func TestSyntaxErrorMessage(t *testing.T) {
	err := &SyntaxError{Msg: "expected IDENTIFIER, got =", Pos: Position{Line: 2, Column: 5}}
	want := "syntax error at line 2, column 5: expected IDENTIFIER, got ="
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAsSyntaxError(t *testing.T) {
	se := &SyntaxError{Msg: "boom", Pos: Position{Line: 1, Column: 1}}
	wrapped := fmt.Errorf("check failed: %w", se)

	got, ok := AsSyntaxError(wrapped)
	if !ok {
		t.Fatal("AsSyntaxError(wrapped) = false, want true")
	}
	if got != se {
		t.Error("AsSyntaxError did not unwrap to the original error")
	}

	if _, ok := AsSyntaxError(fmt.Errorf("plain")); ok {
		t.Error("AsSyntaxError(plain) = true, want false")
	}
}

func TestFormatSnippet(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		pos    Position
		length int
		want   string
	}{
		{
			name:   "caret under single char",
			src:    "let x = @",
			pos:    Position{Line: 1, Column: 9},
			length: 1,
			want:   "   1 | let x = @\n     |         ^",
		},
		{
			name:   "caret spans token length",
			src:    "let counter",
			pos:    Position{Line: 1, Column: 5},
			length: 7,
			want:   "   1 | let counter\n     |     ^^^^^^^",
		},
		{
			name:   "second line",
			src:    "a\nlet = 5\nb",
			pos:    Position{Line: 2, Column: 5},
			length: 1,
			want:   "   2 | let = 5\n     |     ^",
		},
		{
			name:   "column clamped to line end",
			src:    "ab",
			pos:    Position{Line: 1, Column: 10},
			length: 3,
			want:   "   1 | ab\n     |   ^",
		},
		{
			name:   "tabs preserved in marker row",
			src:    "\tx = @",
			pos:    Position{Line: 1, Column: 6},
			length: 1,
			want:   "   1 | \tx = @\n     | \t    ^",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatSnippet(tc.src, tc.pos, tc.length)
			if got != tc.want {
				t.Errorf("FormatSnippet =\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestFormatSnippetOutOfRange(t *testing.T) {
	if got := FormatSnippet("one line", Position{Line: 5, Column: 1}, 1); got != "" {
		t.Errorf("FormatSnippet(line 5 of 1) = %q, want empty", got)
	}
	if got := FormatSnippet("x", Position{Line: 0, Column: 1}, 1); got != "" {
		t.Errorf("FormatSnippet(line 0) = %q, want empty", got)
	}
}
