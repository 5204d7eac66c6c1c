package hash

import (
	"strings"

	"github.com/glintlang/glint/compiler"
)

// ---------------------------------------------------------------------------
// AST Normalization: compiler AST → frozen hashing AST
//
// Walks the compiler's working AST and produces the frozen hashing AST with
// de Bruijn indices for locals and names for everything that resolves at
// bind time (capabilities, constants, top-level functions, external
// bindings). Scope handling mirrors the interpreter: function bodies run
// in the function scope, for-loop bodies share the loop scope, and every
// other block opens its own scope.
// ---------------------------------------------------------------------------

// scope tracks variables declared at one nesting level.
type scope struct {
	vars map[string]uint16 // variable name → slot index
	next uint16
}

// normalizer holds state for the normalization walk.
type normalizer struct {
	scopes []scope // scope stack: [0]=top level, [1]=first nesting, etc.
}

// NormalizeProgram transforms a parsed script into a frozen HProgram.
func NormalizeProgram(prog *compiler.Program) *HProgram {
	n := &normalizer{scopes: []scope{newScope()}}

	stmts := make([]HNode, len(prog.Stmts))
	for i, s := range prog.Stmts {
		stmts[i] = n.normalizeStmt(s)
	}
	return &HProgram{Stmts: stmts}
}

func newScope() scope {
	return scope{vars: make(map[string]uint16)}
}

func (n *normalizer) push() {
	n.scopes = append(n.scopes, newScope())
}

func (n *normalizer) pop() {
	n.scopes = n.scopes[:len(n.scopes)-1]
}

// declare assigns the next slot in the current scope. Redeclaring a name
// takes a fresh slot; earlier references keep the old one.
func (n *normalizer) declare(name string) {
	s := &n.scopes[len(n.scopes)-1]
	s.vars[name] = s.next
	s.next++
}

// isLocal reports whether name resolves to a declared variable in any
// live scope.
func (n *normalizer) isLocal(name string) bool {
	for i := len(n.scopes) - 1; i >= 0; i-- {
		if _, ok := n.scopes[i].vars[name]; ok {
			return true
		}
	}
	return false
}

// resolveName resolves a name to HLocalRef or HGlobalRef, mirroring the
// runtime's innermost-first lookup.
func (n *normalizer) resolveName(name string) HNode {
	for depth := len(n.scopes) - 1; depth >= 0; depth-- {
		if slot, ok := n.scopes[depth].vars[name]; ok {
			return &HLocalRef{
				ScopeDepth: uint16(len(n.scopes) - 1 - depth),
				SlotIndex:  slot,
			}
		}
	}
	return &HGlobalRef{Name: name}
}

// ---------------------------------------------------------------------------
// Statement normalization
// ---------------------------------------------------------------------------

func (n *normalizer) normalizeStmt(stmt compiler.Stmt) HNode {
	switch s := stmt.(type) {
	case *compiler.FunctionDecl:
		return n.normalizeFunction(s)

	case *compiler.VarDecl:
		var init HNode
		if s.Init != nil {
			init = n.normalizeExpr(s.Init)
		}
		n.declare(s.Name)
		return &HVarDecl{Const: s.Const, DeclType: string(s.DeclType), Init: init}

	case *compiler.BlockStmt:
		n.push()
		block := n.blockInScope(s.Stmts)
		n.pop()
		return block

	case *compiler.IfStmt:
		h := &HIf{
			Cond: n.normalizeExpr(s.Cond),
			Then: n.normalizeStmt(s.Then),
		}
		if s.Else != nil {
			h.Else = n.normalizeStmt(s.Else)
		}
		return h

	case *compiler.ForStmt:
		n.push()
		h := &HFor{}
		if s.Init != nil {
			h.Init = n.normalizeStmt(s.Init)
		}
		if s.Cond != nil {
			h.Cond = n.normalizeExpr(s.Cond)
		}
		if s.Update != nil {
			h.Update = n.normalizeExpr(s.Update)
		}
		// A block body shares the loop scope, like the interpreter's
		// loop execution.
		if body, ok := s.Body.(*compiler.BlockStmt); ok {
			h.Body = n.blockInScope(body.Stmts)
		} else {
			h.Body = n.normalizeStmt(s.Body)
		}
		n.pop()
		return h

	case *compiler.WhileStmt:
		return &HWhile{
			Cond: n.normalizeExpr(s.Cond),
			Body: n.normalizeStmt(s.Body),
		}

	case *compiler.ReturnStmt:
		h := &HReturn{}
		if s.Value != nil {
			h.Value = n.normalizeExpr(s.Value)
		}
		return h

	case *compiler.ExprStmt:
		return &HExprStmt{Expr: n.normalizeExpr(s.Expr)}

	default:
		return &HNull{}
	}
}

// blockInScope normalizes a statement list without opening a new scope.
func (n *normalizer) blockInScope(stmts []compiler.Stmt) *HBlock {
	out := make([]HNode, len(stmts))
	for i, s := range stmts {
		out[i] = n.normalizeStmt(s)
	}
	return &HBlock{Stmts: out}
}

// normalizeFunction handles declarations at any nesting level. Top-level
// functions keep their name; nested ones are declared as locals at their
// statement position and drop it.
func (n *normalizer) normalizeFunction(fn *compiler.FunctionDecl) *HFunction {
	name := fn.Name
	if len(n.scopes) > 1 {
		n.declare(fn.Name)
		name = ""
	}

	n.push()
	paramTypes := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		n.declare(p.Name)
		paramTypes[i] = string(p.Type)
	}

	body := make([]HNode, len(fn.Body.Stmts))
	for i, s := range fn.Body.Stmts {
		body[i] = n.normalizeStmt(s)
	}
	n.pop()

	return &HFunction{
		Name:       name,
		ParamTypes: paramTypes,
		ReturnType: string(fn.ReturnType),
		Body:       body,
	}
}

// ---------------------------------------------------------------------------
// Expression normalization
// ---------------------------------------------------------------------------

func (n *normalizer) normalizeExpr(expr compiler.Expr) HNode {
	switch e := expr.(type) {
	case *compiler.NumberLit:
		return &HNumber{Value: e.Value}
	case *compiler.StringLit:
		return &HString{Value: e.Value}
	case *compiler.BoolLit:
		return &HBool{Value: e.Value}
	case *compiler.NullLit:
		return &HNull{}
	case *compiler.UndefinedLit:
		return &HUndefined{}

	case *compiler.Ident:
		return n.resolveName(e.Name)

	case *compiler.BinaryExpr:
		return &HBinary{
			Op:    e.Op.String(),
			Left:  n.normalizeExpr(e.Left),
			Right: n.normalizeExpr(e.Right),
		}

	case *compiler.UnaryExpr:
		return &HUnary{
			Op:      e.Op.String(),
			Operand: n.normalizeExpr(e.Operand),
		}

	case *compiler.UpdateExpr:
		return &HUpdate{
			Op:     e.Op.String(),
			Prefix: e.Prefix,
			Target: n.normalizeExpr(e.Operand),
		}

	case *compiler.AssignExpr:
		return &HAssign{
			Op:     e.Op.String(),
			Target: n.normalizeExpr(e.Target),
			Value:  n.normalizeExpr(e.Value),
		}

	case *compiler.CallExpr:
		args := make([]HNode, len(e.Args))
		for i, a := range e.Args {
			args[i] = n.normalizeExpr(a)
		}
		return &HCall{Callee: n.normalizeExpr(e.Callee), Args: args}

	case *compiler.MemberExpr:
		return n.normalizeMember(e)

	default:
		return &HNull{}
	}
}

// normalizeMember flattens ident-rooted dotted paths to the single name
// the runtime resolves them by, unless the root is a declared local.
func (n *normalizer) normalizeMember(e *compiler.MemberExpr) HNode {
	if e.Computed {
		return &HIndex{
			Object:   n.normalizeExpr(e.Object),
			Property: n.normalizeExpr(e.Property),
		}
	}

	if path, ok := compiler.CalleeName(e); ok {
		root := path
		if i := strings.IndexByte(path, '.'); i >= 0 {
			root = path[:i]
		}
		if !n.isLocal(root) {
			return &HGlobalRef{Name: path}
		}
	}

	name := ""
	if id, ok := e.Property.(*compiler.Ident); ok {
		name = id.Name
	}
	return &HMember{Object: n.normalizeExpr(e.Object), Name: name}
}
