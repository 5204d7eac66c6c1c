package compiler

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Semantic analyzer: pre-execution static checks
// ---------------------------------------------------------------------------

// Diagnostic is one finding from the analyzer. Warnings flag constructs
// that may still work at runtime (external bindings the analyzer cannot
// see); everything else is a definite error.
type Diagnostic struct {
	Pos     Position
	Msg     string
	Warning bool
}

func (d Diagnostic) String() string {
	if d.Warning {
		return fmt.Sprintf("warning: line %d, column %d: %s", d.Pos.Line, d.Pos.Column, d.Msg)
	}
	return fmt.Sprintf("line %d, column %d: %s", d.Pos.Line, d.Pos.Column, d.Msg)
}

// Analyzer performs static checks on a parsed program: undefined and
// redeclared variables, const misuse, and invalid assignment targets.
// Capability and constant names always pass, since the catalog only
// exists at bind time; other unknown names warn instead of erroring
// because hosts may bind them at runtime.
type Analyzer struct {
	diags        []Diagnostic
	knownGlobals map[string]bool
	frames       []frame
}

// frame tracks the names declared in one lexical scope.
type frame struct {
	names  map[string]bool
	consts map[string]bool
}

// NewAnalyzer creates an analyzer with no known external bindings.
func NewAnalyzer() *Analyzer {
	return &Analyzer{knownGlobals: make(map[string]bool)}
}

// AddKnownGlobal registers an external binding name (dotted names
// included) so references to it stop warning.
func (a *Analyzer) AddKnownGlobal(name string) {
	a.knownGlobals[name] = true
}

// Diagnostics returns the accumulated findings in source order.
func (a *Analyzer) Diagnostics() []Diagnostic {
	return a.diags
}

// Errors returns the findings rendered as strings.
func (a *Analyzer) Errors() []string {
	out := make([]string, len(a.diags))
	for i, d := range a.diags {
		out[i] = d.String()
	}
	return out
}

// HasErrors reports whether any finding is a hard error.
func (a *Analyzer) HasErrors() bool {
	for _, d := range a.diags {
		if !d.Warning {
			return true
		}
	}
	return false
}

// errorAt records an error at node's position.
func (a *Analyzer) errorAt(node Node, format string, args ...interface{}) {
	a.diags = append(a.diags, Diagnostic{
		Pos: node.Span().Start,
		Msg: fmt.Sprintf(format, args...),
	})
}

// warnAt records a warning at node's position.
func (a *Analyzer) warnAt(node Node, format string, args ...interface{}) {
	a.diags = append(a.diags, Diagnostic{
		Pos:     node.Span().Start,
		Msg:     fmt.Sprintf(format, args...),
		Warning: true,
	})
}

// Analyze checks prog. Top-level function names are visible everywhere,
// matching how binding hoists declarations before running statements.
func (a *Analyzer) Analyze(prog *Program) {
	a.frames = []frame{newFrame()}

	for _, stmt := range prog.Stmts {
		if fn, ok := stmt.(*FunctionDecl); ok {
			if a.top().names[fn.Name] {
				a.warnAt(fn, "function '%s' redeclared", fn.Name)
			}
			a.declare(fn.Name, false)
		}
	}

	for _, stmt := range prog.Stmts {
		a.stmt(stmt)
	}
	a.unreachable(prog.Stmts)
}

// AnalyzeProgram runs the checks and returns rendered diagnostics.
func AnalyzeProgram(prog *Program) []string {
	a := NewAnalyzer()
	a.Analyze(prog)
	return a.Errors()
}

func newFrame() frame {
	return frame{names: make(map[string]bool), consts: make(map[string]bool)}
}

func (a *Analyzer) top() *frame {
	return &a.frames[len(a.frames)-1]
}

func (a *Analyzer) push() {
	a.frames = append(a.frames, newFrame())
}

func (a *Analyzer) pop() {
	a.frames = a.frames[:len(a.frames)-1]
}

func (a *Analyzer) declare(name string, isConst bool) {
	f := a.top()
	f.names[name] = true
	if isConst {
		f.consts[name] = true
	}
}

// declared walks the frame stack innermost first.
func (a *Analyzer) declared(name string) bool {
	for i := len(a.frames) - 1; i >= 0; i-- {
		if a.frames[i].names[name] {
			return true
		}
	}
	return false
}

// declaredConst reports whether the innermost declaration of name is
// const.
func (a *Analyzer) declaredConst(name string) bool {
	for i := len(a.frames) - 1; i >= 0; i-- {
		if a.frames[i].names[name] {
			return a.frames[i].consts[name]
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (a *Analyzer) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *FunctionDecl:
		a.function(s)

	case *VarDecl:
		if s.Init != nil {
			a.expr(s.Init)
		}
		if s.Const && s.Init == nil {
			a.errorAt(s, "const '%s' declared without an initializer", s.Name)
		}
		if a.top().names[s.Name] {
			a.warnAt(s, "'%s' redeclared in the same scope", s.Name)
		}
		a.declare(s.Name, s.Const)

	case *BlockStmt:
		a.push()
		for _, inner := range s.Stmts {
			a.stmt(inner)
		}
		a.unreachable(s.Stmts)
		a.pop()

	case *IfStmt:
		a.expr(s.Cond)
		a.stmt(s.Then)
		if s.Else != nil {
			a.stmt(s.Else)
		}

	case *ForStmt:
		a.push()
		if s.Init != nil {
			a.stmt(s.Init)
		}
		if s.Cond != nil {
			a.expr(s.Cond)
		}
		if s.Update != nil {
			a.expr(s.Update)
		}
		a.stmt(s.Body)
		a.pop()

	case *WhileStmt:
		a.expr(s.Cond)
		a.stmt(s.Body)

	case *ReturnStmt:
		if s.Value != nil {
			a.expr(s.Value)
		}

	case *ExprStmt:
		a.expr(s.Expr)
	}
}

// function checks a declaration body in its own scope. The declaration
// name was already hoisted when it is top level; nested declarations
// land in the enclosing scope here.
func (a *Analyzer) function(fn *FunctionDecl) {
	if len(a.frames) > 1 {
		a.declare(fn.Name, false)
	}

	a.push()
	seen := make(map[string]bool)
	for _, p := range fn.Params {
		if seen[p.Name] {
			a.errorAt(fn, "function '%s' repeats parameter '%s'", fn.Name, p.Name)
		}
		seen[p.Name] = true
		a.declare(p.Name, false)
	}
	for _, inner := range fn.Body.Stmts {
		a.stmt(inner)
	}
	a.unreachable(fn.Body.Stmts)
	a.pop()
}

// unreachable warns once about statements following a return in the
// same list.
func (a *Analyzer) unreachable(stmts []Stmt) {
	for i, stmt := range stmts {
		if _, ok := stmt.(*ReturnStmt); ok && i < len(stmts)-1 {
			a.warnAt(stmts[i+1], "unreachable code after return")
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (a *Analyzer) expr(expr Expr) {
	switch e := expr.(type) {
	case *Ident:
		a.checkDefined(e)

	case *BinaryExpr:
		a.expr(e.Left)
		a.expr(e.Right)

	case *UnaryExpr:
		a.expr(e.Operand)

	case *UpdateExpr:
		target, ok := e.Operand.(*Ident)
		if !ok {
			a.errorAt(e, "%s requires a variable target", e.Op)
			return
		}
		a.checkAssignable(e, target.Name)
		a.checkDefined(target)

	case *AssignExpr:
		a.expr(e.Value)
		target, ok := e.Target.(*Ident)
		if !ok {
			a.errorAt(e, "invalid assignment target")
			return
		}
		a.checkAssignable(e, target.Name)
		if !a.declared(target.Name) && !reservedName(target.Name) && !a.knownGlobals[target.Name] {
			a.warnAt(e, "assignment to undeclared variable '%s'", target.Name)
		}

	case *CallExpr:
		if _, ok := CalleeName(e.Callee); !ok {
			a.expr(e.Callee)
		} else if id, isIdent := e.Callee.(*Ident); isIdent {
			a.checkDefined(id)
		}
		for _, arg := range e.Args {
			a.expr(arg)
		}

	case *MemberExpr:
		if e.Computed {
			a.expr(e.Object)
			a.expr(e.Property)
			return
		}
		// Dotted paths reach external namespace bindings that only
		// exist at bind time; nothing to check statically.
		if _, ok := e.Object.(*Ident); !ok {
			a.expr(e.Object)
		}
	}
}

// checkDefined warns about references the analyzer cannot resolve.
// Capability and constant names resolve against the catalog at bind
// time and always pass.
func (a *Analyzer) checkDefined(id *Ident) {
	name := id.Name
	if reservedName(name) {
		return
	}
	if a.declared(name) || a.knownGlobals[name] {
		return
	}
	a.warnAt(id, "variable '%s' may be undefined (assuming external binding)", name)
}

// checkAssignable rejects writes to names the runtime refuses.
func (a *Analyzer) checkAssignable(node Node, name string) {
	if strings.HasPrefix(name, ConstPrefix) {
		a.errorAt(node, "cannot assign to constant '%s'", name)
		return
	}
	if strings.HasPrefix(name, CapPrefix) {
		a.errorAt(node, "cannot assign to capability '%s'", name)
		return
	}
	if a.declaredConst(name) {
		a.errorAt(node, "cannot assign to '%s' declared const", name)
		return
	}
	if a.knownGlobals[name] {
		a.errorAt(node, "cannot assign to external binding '%s'", name)
	}
}

// reservedName reports whether name belongs to a reserved host
// namespace that resolves at bind time.
func reservedName(name string) bool {
	return strings.HasPrefix(name, CapPrefix) || strings.HasPrefix(name, ConstPrefix)
}
