package hash

import (
	"encoding/binary"
	"math"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of the frozen hashing AST.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Numbers: IEEE 754 big-endian 8B
//   - Counts and indices: big-endian fixed-width (uint16=2B, uint32=4B)
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Booleans: single byte (0/1)
//   - Optional children: presence byte (0/1) + node when present
//   - Child nodes: serialized inline (flat)
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of an HNode tree.
// The returned bytes are suitable for hashing with SHA-256.
func Serialize(node HNode) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(node)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeBool(v bool) {
	if v {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}

func (s *serializer) writeUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeFloat64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

// writeMaybe writes a presence byte, then the node when non-nil.
func (s *serializer) writeMaybe(node HNode) {
	if node == nil {
		s.writeByte(0)
		return
	}
	s.writeByte(1)
	s.serializeNode(node)
}

func (s *serializer) writeNodes(nodes []HNode) {
	s.writeUint32(uint32(len(nodes)))
	for _, n := range nodes {
		s.serializeNode(n)
	}
}

func (s *serializer) serializeNode(node HNode) {
	switch n := node.(type) {
	case *HNumber:
		s.writeByte(TagNumber)
		s.writeFloat64(n.Value)

	case *HString:
		s.writeByte(TagString)
		s.writeString(n.Value)

	case *HBool:
		s.writeByte(TagBool)
		s.writeBool(n.Value)

	case *HNull:
		s.writeByte(TagNull)

	case *HUndefined:
		s.writeByte(TagUndefined)

	case *HLocalRef:
		s.writeByte(TagLocalRef)
		s.writeUint16(n.ScopeDepth)
		s.writeUint16(n.SlotIndex)

	case *HGlobalRef:
		s.writeByte(TagGlobalRef)
		s.writeString(n.Name)

	case *HBinary:
		s.writeByte(TagBinary)
		s.writeString(n.Op)
		s.serializeNode(n.Left)
		s.serializeNode(n.Right)

	case *HUnary:
		s.writeByte(TagUnary)
		s.writeString(n.Op)
		s.serializeNode(n.Operand)

	case *HUpdate:
		s.writeByte(TagUpdate)
		s.writeString(n.Op)
		s.writeBool(n.Prefix)
		s.serializeNode(n.Target)

	case *HAssign:
		s.writeByte(TagAssign)
		s.writeString(n.Op)
		s.serializeNode(n.Target)
		s.serializeNode(n.Value)

	case *HCall:
		s.writeByte(TagCall)
		s.serializeNode(n.Callee)
		s.writeNodes(n.Args)

	case *HMember:
		s.writeByte(TagMember)
		s.writeString(n.Name)
		s.serializeNode(n.Object)

	case *HIndex:
		s.writeByte(TagIndex)
		s.serializeNode(n.Object)
		s.serializeNode(n.Property)

	case *HVarDecl:
		s.writeByte(TagVarDecl)
		s.writeBool(n.Const)
		s.writeString(n.DeclType)
		s.writeMaybe(n.Init)

	case *HBlock:
		s.writeByte(TagBlock)
		s.writeNodes(n.Stmts)

	case *HIf:
		s.writeByte(TagIf)
		s.serializeNode(n.Cond)
		s.serializeNode(n.Then)
		s.writeMaybe(n.Else)

	case *HFor:
		s.writeByte(TagFor)
		s.writeMaybe(n.Init)
		s.writeMaybe(n.Cond)
		s.writeMaybe(n.Update)
		s.serializeNode(n.Body)

	case *HWhile:
		s.writeByte(TagWhile)
		s.serializeNode(n.Cond)
		s.serializeNode(n.Body)

	case *HReturn:
		s.writeByte(TagReturn)
		s.writeMaybe(n.Value)

	case *HExprStmt:
		s.writeByte(TagExprStmt)
		s.serializeNode(n.Expr)

	case *HFunction:
		s.writeByte(TagFunction)
		s.writeString(n.Name)
		s.writeUint32(uint32(len(n.ParamTypes)))
		for _, pt := range n.ParamTypes {
			s.writeString(pt)
		}
		s.writeString(n.ReturnType)
		s.writeNodes(n.Body)

	case *HProgram:
		s.writeByte(TagProgram)
		s.writeNodes(n.Stmts)
	}
}
