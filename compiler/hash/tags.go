package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the hashing AST serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

// AST node type tags. Each tag uniquely identifies a node kind in the
// serialized byte stream.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Literal values
	TagNumber    byte = 0x01
	TagString    byte = 0x02
	TagBool      byte = 0x03
	TagNull      byte = 0x04
	TagUndefined byte = 0x05

	// Variable references
	TagLocalRef  byte = 0x06
	TagGlobalRef byte = 0x07

	// Reserved 0x08-0x0F

	// Operators
	TagBinary byte = 0x10
	TagUnary  byte = 0x11
	TagUpdate byte = 0x12
	TagAssign byte = 0x13

	// Calls and member access
	TagCall   byte = 0x14
	TagMember byte = 0x15
	TagIndex  byte = 0x16

	// Reserved 0x17-0x1F

	// Statements / structure
	TagVarDecl  byte = 0x20
	TagBlock    byte = 0x21
	TagIf       byte = 0x22
	TagFor      byte = 0x23
	TagWhile    byte = 0x24
	TagReturn   byte = 0x25
	TagExprStmt byte = 0x26
	TagFunction byte = 0x27
	TagProgram  byte = 0x28

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagNumber, TagString, TagBool, TagNull, TagUndefined,
	TagLocalRef, TagGlobalRef,
	TagBinary, TagUnary, TagUpdate, TagAssign,
	TagCall, TagMember, TagIndex,
	TagVarDecl, TagBlock, TagIf, TagFor, TagWhile,
	TagReturn, TagExprStmt, TagFunction, TagProgram,
}
