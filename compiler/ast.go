package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for Glint
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes. Every expression carries a
// Type slot that the decoration pass fills in exactly once; it is empty
// until then.
type Expr interface {
	Node
	expr() // marker method

	// ResolvedType returns the semantic type recorded by the decoration
	// pass, or "" if the pass has not run or could not infer one.
	ResolvedType() Type

	// SetResolvedType records the decorated type. Write-once per pass;
	// rerunning the pass writes the same value.
	SetResolvedType(Type)
}

// typed is embedded by every expression node to hold the decorated type.
type typed struct {
	Type Type
}

func (t *typed) ResolvedType() Type { return t.Type }

func (t *typed) SetResolvedType(tp Type) { t.Type = tp }

// NumberLit represents a numeric literal. Hex literals are parsed to their
// integer value.
type NumberLit struct {
	typed
	SpanVal Span
	Value   float64
}

func (n *NumberLit) Span() Span { return n.SpanVal }
func (n *NumberLit) node()      {}
func (n *NumberLit) expr()      {}

// StringLit represents a string literal (decoded escapes).
type StringLit struct {
	typed
	SpanVal Span
	Value   string
}

func (n *StringLit) Span() Span { return n.SpanVal }
func (n *StringLit) node()      {}
func (n *StringLit) expr()      {}

// BoolLit represents true or false.
type BoolLit struct {
	typed
	SpanVal Span
	Value   bool
}

func (n *BoolLit) Span() Span { return n.SpanVal }
func (n *BoolLit) node()      {}
func (n *BoolLit) expr()      {}

// NullLit represents the null literal.
type NullLit struct {
	typed
	SpanVal Span
}

func (n *NullLit) Span() Span { return n.SpanVal }
func (n *NullLit) node()      {}
func (n *NullLit) expr()      {}

// UndefinedLit represents the undefined literal.
type UndefinedLit struct {
	typed
	SpanVal Span
}

func (n *UndefinedLit) Span() Span { return n.SpanVal }
func (n *UndefinedLit) node()      {}
func (n *UndefinedLit) expr()      {}

// Ident represents an identifier reference.
type Ident struct {
	typed
	SpanVal Span
	Name    string
}

func (n *Ident) Span() Span { return n.SpanVal }
func (n *Ident) node()      {}
func (n *Ident) expr()      {}

// BinaryExpr represents a binary operation. Op is the operator token kind;
// its String form is the operator's source text.
type BinaryExpr struct {
	typed
	SpanVal Span
	Op      TokenType
	Left    Expr
	Right   Expr
}

func (n *BinaryExpr) Span() Span { return n.SpanVal }
func (n *BinaryExpr) node()      {}
func (n *BinaryExpr) expr()      {}

// UnaryExpr represents a prefix ! or - operation.
type UnaryExpr struct {
	typed
	SpanVal Span
	Op      TokenType
	Operand Expr
}

func (n *UnaryExpr) Span() Span { return n.SpanVal }
func (n *UnaryExpr) node()      {}
func (n *UnaryExpr) expr()      {}

// UpdateExpr represents ++ or --, prefix or postfix.
type UpdateExpr struct {
	typed
	SpanVal Span
	Op      TokenType
	Operand Expr
	Prefix  bool
}

func (n *UpdateExpr) Span() Span { return n.SpanVal }
func (n *UpdateExpr) node()      {}
func (n *UpdateExpr) expr()      {}

// AssignExpr represents plain or compound assignment. Right-associative.
type AssignExpr struct {
	typed
	SpanVal Span
	Op      TokenType // =, +=, -=, *=, /=
	Target  Expr
	Value   Expr
}

func (n *AssignExpr) Span() Span { return n.SpanVal }
func (n *AssignExpr) node()      {}
func (n *AssignExpr) expr()      {}

// CallExpr represents a call.
type CallExpr struct {
	typed
	SpanVal Span
	Callee  Expr
	Args    []Expr
}

func (n *CallExpr) Span() Span { return n.SpanVal }
func (n *CallExpr) node()      {}
func (n *CallExpr) expr()      {}

// MemberExpr represents property access: obj.name, or obj[expr] when
// Computed is set.
type MemberExpr struct {
	typed
	SpanVal  Span
	Object   Expr
	Property Expr
	Computed bool
}

func (n *MemberExpr) Span() Span { return n.SpanVal }
func (n *MemberExpr) node()      {}
func (n *MemberExpr) expr()      {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// Param is a function parameter with an optional type annotation.
type Param struct {
	Name string
	Type Type // "" when unannotated
	Pos  Position
}

// FunctionDecl represents a function declaration.
type FunctionDecl struct {
	SpanVal    Span
	Name       string
	Params     []Param
	ReturnType Type // "" when unannotated
	Body       *BlockStmt
}

func (n *FunctionDecl) Span() Span { return n.SpanVal }
func (n *FunctionDecl) node()      {}
func (n *FunctionDecl) stmt()      {}

// VarDecl represents a let or const declaration.
type VarDecl struct {
	SpanVal  Span
	Name     string
	DeclType Type // "" when unannotated
	Init     Expr // nil when uninitialized
	Const    bool
}

func (n *VarDecl) Span() Span { return n.SpanVal }
func (n *VarDecl) node()      {}
func (n *VarDecl) stmt()      {}

// BlockStmt represents a brace-delimited statement list.
type BlockStmt struct {
	SpanVal Span
	Stmts   []Stmt
}

func (n *BlockStmt) Span() Span { return n.SpanVal }
func (n *BlockStmt) node()      {}
func (n *BlockStmt) stmt()      {}

// IfStmt represents an if statement with an optional else branch.
type IfStmt struct {
	SpanVal Span
	Cond    Expr
	Then    Stmt
	Else    Stmt // nil when absent
}

func (n *IfStmt) Span() Span { return n.SpanVal }
func (n *IfStmt) node()      {}
func (n *IfStmt) stmt()      {}

// ForStmt represents a three-clause for loop. Init may be a VarDecl or
// ExprStmt or nil; Cond and Update may be nil.
type ForStmt struct {
	SpanVal Span
	Init    Stmt
	Cond    Expr
	Update  Expr
	Body    Stmt
}

func (n *ForStmt) Span() Span { return n.SpanVal }
func (n *ForStmt) node()      {}
func (n *ForStmt) stmt()      {}

// WhileStmt represents a while loop.
type WhileStmt struct {
	SpanVal Span
	Cond    Expr
	Body    Stmt
}

func (n *WhileStmt) Span() Span { return n.SpanVal }
func (n *WhileStmt) node()      {}
func (n *WhileStmt) stmt()      {}

// ReturnStmt represents a return statement. Value is nil for a bare return.
type ReturnStmt struct {
	SpanVal Span
	Value   Expr
}

func (n *ReturnStmt) Span() Span { return n.SpanVal }
func (n *ReturnStmt) node()      {}
func (n *ReturnStmt) stmt()      {}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	SpanVal Span
	Expr    Expr
}

func (n *ExprStmt) Span() Span { return n.SpanVal }
func (n *ExprStmt) node()      {}
func (n *ExprStmt) stmt()      {}

// ---------------------------------------------------------------------------
// Top-level structure
// ---------------------------------------------------------------------------

// Program represents a complete script.
type Program struct {
	SpanVal Span
	Stmts   []Stmt
}

func (n *Program) Span() Span { return n.SpanVal }
func (n *Program) node()      {}

// Functions returns the top-level function declarations keyed by name.
func (n *Program) Functions() map[string]*FunctionDecl {
	fns := make(map[string]*FunctionDecl)
	for _, s := range n.Stmts {
		if fn, ok := s.(*FunctionDecl); ok {
			fns[fn.Name] = fn
		}
	}
	return fns
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// MakeSpan creates a span from start and end positions.
func MakeSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}
