// Package gen renders a decorated program into the two translation
// targets: a dynamically typed scripting dialect and a statically typed
// C dialect. Both generators run the type decoration pass first, then
// perform one recursive render of the tree, dispatching on node kind
// the same way the grammar is shaped. Capability calls are rewritten to
// each target's dispatch syntax, and the representation conversions the
// interpreter applies at the capability gate appear as rewritten
// expressions in the output instead of runtime checks.
package gen

import (
	"strconv"

	"github.com/glintlang/glint/compiler"
)

// precUnary binds tighter than any binary operator.
const precUnary = 10

// precedence mirrors the parser's binding powers so that rendered
// expressions reparse with the original shape. Higher binds tighter.
func precedence(op compiler.TokenType) int {
	switch op {
	case compiler.TokenOr:
		return 1
	case compiler.TokenAnd:
		return 2
	case compiler.TokenPipe:
		return 3
	case compiler.TokenCaret:
		return 4
	case compiler.TokenAmp:
		return 5
	case compiler.TokenEq, compiler.TokenNotEq:
		return 6
	case compiler.TokenLt, compiler.TokenGt, compiler.TokenLtEq, compiler.TokenGtEq:
		return 7
	case compiler.TokenPlus, compiler.TokenMinus:
		return 8
	case compiler.TokenStar, compiler.TokenSlash, compiler.TokenPercent:
		return 9
	}
	return 0
}

// formatNumber renders a numeric literal without a trailing ".0" on
// integral values.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
