package compiler

// ---------------------------------------------------------------------------
// Type decoration: resolves declared and inferred types onto the AST
// ---------------------------------------------------------------------------

// Decorator walks a parsed program and records the declared or inferred
// type of every variable, parameter, and expression it can resolve. The
// same annotations feed the interpreter's checks and both generators.
//
// The table is keyed "functionName.localName" for names declared inside a
// function and by bare name at the top level. Decoration is idempotent:
// running it twice over one tree yields identical annotations.
type Decorator struct {
	sigs    SignatureSource
	types   map[string]Type
	returns map[string]Type // user function name -> declared return type
}

// NewDecorator creates a decorator. sigs resolves capability return types
// for call-initializer inference and may be nil.
func NewDecorator(sigs SignatureSource) *Decorator {
	return &Decorator{sigs: sigs}
}

// DecorateProgram runs a one-shot decoration pass over prog.
func DecorateProgram(prog *Program, sigs SignatureSource) map[string]Type {
	return NewDecorator(sigs).Decorate(prog)
}

// Decorate annotates prog and returns the completed name-to-type table.
func (d *Decorator) Decorate(prog *Program) map[string]Type {
	d.types = make(map[string]Type)
	d.returns = make(map[string]Type)

	// Function names and return annotations are visible everywhere, so
	// collect them before walking bodies.
	for _, stmt := range prog.Stmts {
		if fn, ok := stmt.(*FunctionDecl); ok {
			d.types[fn.Name] = TypeFunction
			if fn.ReturnType != "" {
				d.returns[fn.Name] = fn.ReturnType
			}
		}
	}

	for _, stmt := range prog.Stmts {
		d.decorateStmt("", stmt)
	}
	return d.types
}

// TypeOf reports the recorded type for name as seen from inside fn,
// falling back to the bare global name. fn may be empty for top level.
func (d *Decorator) TypeOf(fn, name string) Type {
	if fn != "" {
		if t, ok := d.types[fn+"."+name]; ok {
			return t
		}
	}
	return d.types[name]
}

// record stores a resolved type under the function-qualified key.
func (d *Decorator) record(fn, name string, t Type) {
	if t == "" {
		return
	}
	if fn != "" {
		d.types[fn+"."+name] = t
		return
	}
	d.types[name] = t
}

func (d *Decorator) decorateStmt(fn string, stmt Stmt) {
	switch s := stmt.(type) {
	case *FunctionDecl:
		for _, param := range s.Params {
			d.record(s.Name, param.Name, param.Type)
		}
		d.decorateStmt(s.Name, s.Body)

	case *VarDecl:
		t := s.DeclType
		if s.Init != nil {
			inferred := d.decorateExpr(fn, s.Init)
			if t == "" {
				t = inferred
			}
		}
		d.record(fn, s.Name, t)

	case *BlockStmt:
		for _, inner := range s.Stmts {
			d.decorateStmt(fn, inner)
		}

	case *IfStmt:
		d.decorateExpr(fn, s.Cond)
		d.decorateStmt(fn, s.Then)
		if s.Else != nil {
			d.decorateStmt(fn, s.Else)
		}

	case *ForStmt:
		if s.Init != nil {
			d.decorateStmt(fn, s.Init)
		}
		if s.Cond != nil {
			d.decorateExpr(fn, s.Cond)
		}
		if s.Update != nil {
			d.decorateExpr(fn, s.Update)
		}
		d.decorateStmt(fn, s.Body)

	case *WhileStmt:
		d.decorateExpr(fn, s.Cond)
		d.decorateStmt(fn, s.Body)

	case *ReturnStmt:
		if s.Value != nil {
			d.decorateExpr(fn, s.Value)
		}

	case *ExprStmt:
		d.decorateExpr(fn, s.Expr)
	}
}

// decorateExpr resolves and annotates the type of expr, returning it.
// Expressions with no resolvable type stay untyped.
func (d *Decorator) decorateExpr(fn string, expr Expr) Type {
	switch e := expr.(type) {
	case *NumberLit:
		e.SetResolvedType(TypeNumber)
		return TypeNumber

	case *StringLit:
		e.SetResolvedType(TypeString)
		return TypeString

	case *BoolLit:
		e.SetResolvedType(TypeBool)
		return TypeBool

	case *NullLit, *UndefinedLit:
		return ""

	case *Ident:
		t := d.TypeOf(fn, e.Name)
		e.SetResolvedType(t)
		return t

	case *BinaryExpr:
		left := d.decorateExpr(fn, e.Left)
		d.decorateExpr(fn, e.Right)
		t := left
		if isBoolOp(e.Op) {
			t = TypeBool
		}
		e.SetResolvedType(t)
		return t

	case *UnaryExpr:
		t := d.decorateExpr(fn, e.Operand)
		e.SetResolvedType(t)
		return t

	case *UpdateExpr:
		t := d.decorateExpr(fn, e.Operand)
		e.SetResolvedType(t)
		return t

	case *AssignExpr:
		t := d.decorateExpr(fn, e.Target)
		d.decorateExpr(fn, e.Value)
		e.SetResolvedType(t)
		return t

	case *CallExpr:
		for _, arg := range e.Args {
			d.decorateExpr(fn, arg)
		}
		t := d.callReturnType(e)
		e.SetResolvedType(t)
		return t

	case *MemberExpr:
		d.decorateExpr(fn, e.Object)
		if e.Computed {
			d.decorateExpr(fn, e.Property)
		}
		return ""
	}
	return ""
}

// callReturnType resolves the type a call produces: a user function's
// declared return annotation, or a known capability's return type.
func (d *Decorator) callReturnType(call *CallExpr) Type {
	name, ok := CalleeName(call.Callee)
	if !ok {
		return ""
	}
	if t, ok := d.returns[name]; ok {
		return t
	}
	if d.sigs != nil {
		if t, ok := d.sigs.ReturnTypeOf(name); ok {
			return t
		}
	}
	return ""
}

// isBoolOp reports whether op always produces a boolean.
func isBoolOp(op TokenType) bool {
	switch op {
	case TokenEq, TokenNotEq, TokenLt, TokenGt, TokenLtEq, TokenGtEq, TokenAnd, TokenOr:
		return true
	}
	return false
}

// CalleeName flattens an identifier or non-computed member chain into a
// dotted path ("Namespace.member"). Computed access has no static name.
func CalleeName(expr Expr) (string, bool) {
	switch e := expr.(type) {
	case *Ident:
		return e.Name, true
	case *MemberExpr:
		if e.Computed {
			return "", false
		}
		obj, ok := CalleeName(e.Object)
		if !ok {
			return "", false
		}
		prop, ok := e.Property.(*Ident)
		if !ok {
			return "", false
		}
		return obj + "." + prop.Name, true
	}
	return "", false
}
