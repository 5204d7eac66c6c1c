package interp

import (
	"strconv"

	"github.com/glintlang/glint/compiler"
)

// Value represents a Glint runtime value as a tagged variant.
//
// cstring and color exist only as declared types: both collapse to a
// plain number at runtime (a handle id for converted strings, a packed
// integer for colors). The distinction is carried by the decorated AST,
// never by the value itself.
type Value struct {
	Kind Kind
	Num  float64   // Number and Handle payload; 0/1 for Bool
	Str  string    // String payload
	Fn   *Callable // Callable payload
}

// Kind tags the runtime representation of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindNumber
	KindBool
	KindString
	KindHandle
	KindCallable
)

// Pre-defined singleton values.
var (
	Undefined = Value{Kind: KindUndefined}
	Null      = Value{Kind: KindNull}
	True      = Value{Kind: KindBool, Num: 1}
	False     = Value{Kind: KindBool, Num: 0}
)

// Callable is the payload of a callable value: either a user-declared
// function (Decl set) or a host binding (Host set). Params and Return
// carry the declared signature when the host side supplied one.
type Callable struct {
	Name   string
	Decl   *compiler.FunctionDecl
	Host   HostFunc
	Params []compiler.Type
	Return compiler.Type
}

// HostFunc is the shape of an externally bound function.
type HostFunc func(args []Value) (Value, error)

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// FromNumber creates a number value.
func FromNumber(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// FromBool creates a boolean value.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// FromString creates a string value.
func FromString(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// FromHandle creates an opaque handle value. The payload is the host's
// numeric id for the external object.
func FromHandle(id float64) Value {
	return Value{Kind: KindHandle, Num: id}
}

// FromCallable wraps a Callable payload.
func FromCallable(fn *Callable) Value {
	return Value{Kind: KindCallable, Fn: fn}
}

// ---------------------------------------------------------------------------
// Predicates and accessors
// ---------------------------------------------------------------------------

// IsNumber returns true for number values.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// IsString returns true for string values.
func (v Value) IsString() bool { return v.Kind == KindString }

// IsHandle returns true for opaque handle values.
func (v Value) IsHandle() bool { return v.Kind == KindHandle }

// IsCallable returns true for callable values.
func (v Value) IsCallable() bool { return v.Kind == KindCallable && v.Fn != nil }

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.Num != 0 }

// Numeric reports whether v carries a numeric payload usable in
// arithmetic: numbers, handles, and booleans (0/1).
func (v Value) Numeric() bool {
	switch v.Kind {
	case KindNumber, KindHandle, KindBool:
		return true
	}
	return false
}

// Truthy applies the conditional coercion rules: 0, "", false, null and
// undefined are falsy, everything else is truthy. A zero handle is the
// host's null object and counts as falsy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindUndefined, KindNull:
		return false
	case KindNumber, KindBool, KindHandle:
		return v.Num != 0
	case KindString:
		return v.Str != ""
	case KindCallable:
		return true
	}
	return false
}

// Equals compares two values. Same-kind values compare by payload,
// null and undefined compare equal to each other, and numeric kinds
// (number, handle, bool) compare across kinds by numeric payload.
func (v Value) Equals(o Value) bool {
	if v.Kind == o.Kind {
		switch v.Kind {
		case KindUndefined, KindNull:
			return true
		case KindString:
			return v.Str == o.Str
		case KindCallable:
			return v.Fn == o.Fn
		default:
			return v.Num == o.Num
		}
	}
	if (v.Kind == KindNull && o.Kind == KindUndefined) || (v.Kind == KindUndefined && o.Kind == KindNull) {
		return true
	}
	if v.Numeric() && o.Numeric() {
		return v.Num == o.Num
	}
	return false
}

// Display renders v the way string concatenation and diagnostics see it.
func (v Value) Display() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindNumber, KindHandle:
		return FormatNumber(v.Num)
	case KindBool:
		if v.Num != 0 {
			return "true"
		}
		return "false"
	case KindString:
		return v.Str
	case KindCallable:
		if v.Fn != nil && v.Fn.Name != "" {
			return "<function " + v.Fn.Name + ">"
		}
		return "<function>"
	}
	return "<invalid>"
}

// KindName returns the runtime kind name for diagnostics.
func (v Value) KindName() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindHandle:
		return "handle"
	case KindCallable:
		return "function"
	}
	return "invalid"
}

// TypeOf maps the runtime representation back into the declared-type
// vocabulary. Handles widen to the generic handle type; null and
// undefined map to "" so type checks skip them.
func (v Value) TypeOf() compiler.Type {
	switch v.Kind {
	case KindNumber:
		return compiler.TypeNumber
	case KindBool:
		return compiler.TypeBool
	case KindString:
		return compiler.TypeString
	case KindHandle:
		return compiler.TypeObj
	case KindCallable:
		return compiler.TypeFunction
	}
	return ""
}

// FormatNumber renders a float the way script output expects: integral
// values print without a fractional part.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
