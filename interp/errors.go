package interp

import (
	"errors"
	"fmt"

	"github.com/glintlang/glint/compiler"
)

// RuntimeError is any failure after a successful parse: undefined
// variables, type mismatches, gated capability violations, missing
// converter bindings. It is fatal to the Exec call that produced it.
// Pos is zero when no source node is associated with the failure.
type RuntimeError struct {
	Msg string
	Pos compiler.Position
	Len int
}

func (e *RuntimeError) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("runtime error: %s", e.Msg)
	}
	return fmt.Sprintf("runtime error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// AsRuntimeError extracts a *RuntimeError from err's chain.
func AsRuntimeError(err error) (*RuntimeError, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// errAt builds a RuntimeError anchored at node's source span.
func errAt(node compiler.Node, format string, args ...interface{}) *RuntimeError {
	e := &RuntimeError{Msg: fmt.Sprintf(format, args...)}
	if node != nil {
		sp := node.Span()
		e.Pos = sp.Start
		if l := sp.End.Offset - sp.Start.Offset; l > 0 {
			e.Len = l
		}
	}
	return e
}
