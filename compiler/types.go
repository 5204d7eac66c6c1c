package compiler

// ---------------------------------------------------------------------------
// Declared-type vocabulary
// ---------------------------------------------------------------------------

// Type is a declared or inferred semantic type. The fixed primitive set is
// number/bool/string/cstring/color/function; every other non-empty name is a
// nominal opaque-handle type (a widget handle such as lv_obj or lv_label).
// The zero value means "unknown".
type Type string

// CapPrefix and ConstPrefix are the reserved identifier namespaces. A
// name starting with CapPrefix is a host capability call; one starting
// with ConstPrefix resolves against the constant table. Scripts cannot
// declare or assign names in either namespace.
const (
	CapPrefix   = "lv_"
	ConstPrefix = "LV_"
)

const (
	TypeNumber   Type = "number"
	TypeBool     Type = "bool"
	TypeString   Type = "string"
	TypeCstring  Type = "cstring"
	TypeColor    Type = "color"
	TypeFunction Type = "function"

	// TypeObj is the widest handle type. Every nominal handle is
	// assignable to it.
	TypeObj Type = "lv_obj"
)

// IsPrimitive reports whether t is one of the six fixed types.
func (t Type) IsPrimitive() bool {
	switch t {
	case TypeNumber, TypeBool, TypeString, TypeCstring, TypeColor, TypeFunction:
		return true
	}
	return false
}

// IsHandle reports whether t names a nominal opaque-handle type.
func (t Type) IsHandle() bool {
	return t != "" && !t.IsPrimitive()
}

// typeForToken maps a type-annotation token to its Type. Identifiers become
// nominal handle types; anything else is not a valid annotation.
func typeForToken(tok Token) (Type, bool) {
	switch tok.Type {
	case TokenNumberType:
		return TypeNumber, true
	case TokenBoolType:
		return TypeBool, true
	case TokenStringType:
		return TypeString, true
	case TokenCstringType:
		return TypeCstring, true
	case TokenColorType:
		return TypeColor, true
	case TokenIdentifier:
		return Type(tok.Literal), true
	}
	return "", false
}

// SignatureSource supplies declared return types for named callables. The
// capability catalog and the global binding table both satisfy it; the
// decoration pass uses it to infer the type of call initializers.
type SignatureSource interface {
	ReturnTypeOf(name string) (Type, bool)
}
