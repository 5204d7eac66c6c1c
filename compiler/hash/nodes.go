package hash

// ---------------------------------------------------------------------------
// Frozen hashing AST types.
//
// These are stripped-down parallels of compiler/ast.go with no Span/position
// data and de Bruijn indices instead of local variable names. Two scripts
// with the same semantics (same structure, ignoring local names, comments,
// and whitespace) produce identical hashing ASTs.
// ---------------------------------------------------------------------------

// HNode is the interface implemented by all hashing AST nodes.
type HNode interface {
	hnode() // marker method
}

// ---------------------------------------------------------------------------
// Literal nodes
// ---------------------------------------------------------------------------

type HNumber struct{ Value float64 }
type HString struct{ Value string }
type HBool struct{ Value bool }
type HNull struct{}
type HUndefined struct{}

func (*HNumber) hnode()    {}
func (*HString) hnode()    {}
func (*HBool) hnode()      {}
func (*HNull) hnode()      {}
func (*HUndefined) hnode() {}

// ---------------------------------------------------------------------------
// Variable reference nodes
// ---------------------------------------------------------------------------

// HLocalRef references a declared variable by de Bruijn indices.
// ScopeDepth 0 = current scope, 1 = one enclosing scope up, etc.
// SlotIndex is the declaration's position within that scope.
type HLocalRef struct {
	ScopeDepth uint16
	SlotIndex  uint16
}

// HGlobalRef references a name that does not resolve to a local: a
// capability, a constant, a top-level function, or an external binding.
// Dotted namespace paths are flattened into one name. The name itself is
// semantic and stays in the hash.
type HGlobalRef struct {
	Name string
}

func (*HLocalRef) hnode()  {}
func (*HGlobalRef) hnode() {}

// ---------------------------------------------------------------------------
// Operator nodes
// ---------------------------------------------------------------------------

// Op fields hold the operator's source text, which is frozen; the token
// enumeration is not part of the format.

type HBinary struct {
	Op    string
	Left  HNode
	Right HNode
}

type HUnary struct {
	Op      string
	Operand HNode
}

type HUpdate struct {
	Op     string
	Prefix bool
	Target HNode
}

type HAssign struct {
	Op     string
	Target HNode
	Value  HNode
}

func (*HBinary) hnode() {}
func (*HUnary) hnode()  {}
func (*HUpdate) hnode() {}
func (*HAssign) hnode() {}

// ---------------------------------------------------------------------------
// Call and member access nodes
// ---------------------------------------------------------------------------

type HCall struct {
	Callee HNode
	Args   []HNode
}

// HMember is property access on a locally rooted object. Accesses rooted
// in an unresolved name flatten to HGlobalRef instead.
type HMember struct {
	Object HNode
	Name   string
}

// HIndex is computed access: object[property].
type HIndex struct {
	Object   HNode
	Property HNode
}

func (*HCall) hnode()   {}
func (*HMember) hnode() {}
func (*HIndex) hnode()  {}

// ---------------------------------------------------------------------------
// Statement / structure nodes
// ---------------------------------------------------------------------------

// HVarDecl declares a local. The name is dropped; the declaration's slot
// index is implied by its order in the scope. Type annotations are
// semantic (they drive runtime checks) and stay.
type HVarDecl struct {
	Const    bool
	DeclType string
	Init     HNode // nil when uninitialized
}

type HBlock struct {
	Stmts []HNode
}

type HIf struct {
	Cond HNode
	Then HNode
	Else HNode // nil when absent
}

type HFor struct {
	Init   HNode // nil when absent
	Cond   HNode // nil when absent
	Update HNode // nil when absent
	Body   HNode
}

type HWhile struct {
	Cond HNode
	Body HNode
}

type HReturn struct {
	Value HNode // nil for a bare return
}

type HExprStmt struct {
	Expr HNode
}

func (*HVarDecl) hnode()  {}
func (*HBlock) hnode()    {}
func (*HIf) hnode()       {}
func (*HFor) hnode()      {}
func (*HWhile) hnode()    {}
func (*HReturn) hnode()   {}
func (*HExprStmt) hnode() {}

// ---------------------------------------------------------------------------
// Top-level definition nodes
// ---------------------------------------------------------------------------

// HFunction is a function declaration. Top-level functions keep their
// name (it is the script's callable surface); nested functions drop it
// and are referenced through their declaration slot instead.
type HFunction struct {
	Name       string
	ParamTypes []string // one entry per parameter, "" when unannotated
	ReturnType string
	Body       []HNode
}

// HProgram is the top-level hashing node for a script.
type HProgram struct {
	Stmts []HNode
}

func (*HFunction) hnode() {}
func (*HProgram) hnode()  {}
