package interp

import (
	"math"
	"strings"

	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
)

// ctrl signals how a statement finished. Return is the only non-local
// control flow: every block and loop propagates it upward immediately.
type ctrl uint8

const (
	ctrlNormal ctrl = iota
	ctrlReturn
)

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (in *Interp) execStmt(s compiler.Stmt, sc *Scope) (ctrl, Value, error) {
	switch st := s.(type) {
	case *compiler.FunctionDecl:
		in.defineFunction(st)
		return ctrlNormal, Undefined, nil

	case *compiler.VarDecl:
		v := Undefined
		if st.Init != nil {
			val, err := in.evalExpr(st.Init, sc)
			if err != nil {
				return ctrlNormal, Undefined, err
			}
			actual := st.Init.ResolvedType()
			if actual == "" {
				actual = val.TypeOf()
			}
			val, err = in.coerceDeclared("variable "+st.Name, st.DeclType, val, actual, st)
			if err != nil {
				return ctrlNormal, Undefined, err
			}
			v = val
		}
		sc.Define(st.Name, v)
		return ctrlNormal, Undefined, nil

	case *compiler.BlockStmt:
		return in.execBlock(st, NewScope(sc))

	case *compiler.IfStmt:
		cond, err := in.evalExpr(st.Cond, sc)
		if err != nil {
			return ctrlNormal, Undefined, err
		}
		if cond.Truthy() {
			return in.execStmt(st.Then, sc)
		}
		if st.Else != nil {
			return in.execStmt(st.Else, sc)
		}
		return ctrlNormal, Undefined, nil

	case *compiler.ForStmt:
		return in.execFor(st, sc)

	case *compiler.WhileStmt:
		for {
			cond, err := in.evalExpr(st.Cond, sc)
			if err != nil {
				return ctrlNormal, Undefined, err
			}
			if !cond.Truthy() {
				return ctrlNormal, Undefined, nil
			}
			c, v, err := in.execStmt(st.Body, sc)
			if err != nil {
				return ctrlNormal, Undefined, err
			}
			if c == ctrlReturn {
				return c, v, nil
			}
		}

	case *compiler.ReturnStmt:
		v := Undefined
		if st.Value != nil {
			val, err := in.evalExpr(st.Value, sc)
			if err != nil {
				return ctrlNormal, Undefined, err
			}
			v = val
		}
		return ctrlReturn, v, nil

	case *compiler.ExprStmt:
		if _, err := in.evalExpr(st.Expr, sc); err != nil {
			return ctrlNormal, Undefined, err
		}
		return ctrlNormal, Undefined, nil
	}
	return ctrlNormal, Undefined, errAt(s, "unsupported statement node %T", s)
}

// execBlock runs statements directly in sc; callers decide whether sc
// is a fresh child scope.
func (in *Interp) execBlock(b *compiler.BlockStmt, sc *Scope) (ctrl, Value, error) {
	for _, s := range b.Stmts {
		c, v, err := in.execStmt(s, sc)
		if err != nil {
			return ctrlNormal, Undefined, err
		}
		if c == ctrlReturn {
			return c, v, nil
		}
	}
	return ctrlNormal, Undefined, nil
}

// execFor creates the loop scope once and reuses it across iterations
// so loop-declared bindings persist while still shadowing outer names.
func (in *Interp) execFor(st *compiler.ForStmt, sc *Scope) (ctrl, Value, error) {
	loop := NewScope(sc)
	if st.Init != nil {
		c, v, err := in.execStmt(st.Init, loop)
		if err != nil || c == ctrlReturn {
			return c, v, err
		}
	}
	for {
		if st.Cond != nil {
			cond, err := in.evalExpr(st.Cond, loop)
			if err != nil {
				return ctrlNormal, Undefined, err
			}
			if !cond.Truthy() {
				return ctrlNormal, Undefined, nil
			}
		}
		var c ctrl
		var v Value
		var err error
		if body, ok := st.Body.(*compiler.BlockStmt); ok {
			c, v, err = in.execBlock(body, loop)
		} else {
			c, v, err = in.execStmt(st.Body, loop)
		}
		if err != nil {
			return ctrlNormal, Undefined, err
		}
		if c == ctrlReturn {
			return c, v, nil
		}
		if st.Update != nil {
			if _, err := in.evalExpr(st.Update, loop); err != nil {
				return ctrlNormal, Undefined, err
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (in *Interp) evalExpr(e compiler.Expr, sc *Scope) (Value, error) {
	switch ex := e.(type) {
	case *compiler.NumberLit:
		return FromNumber(ex.Value), nil
	case *compiler.StringLit:
		return FromString(ex.Value), nil
	case *compiler.BoolLit:
		return FromBool(ex.Value), nil
	case *compiler.NullLit:
		return Null, nil
	case *compiler.UndefinedLit:
		return Undefined, nil
	case *compiler.Ident:
		return in.resolveIdent(ex, sc)
	case *compiler.BinaryExpr:
		return in.evalBinary(ex, sc)
	case *compiler.UnaryExpr:
		return in.evalUnary(ex, sc)
	case *compiler.UpdateExpr:
		return in.evalUpdate(ex, sc)
	case *compiler.AssignExpr:
		return in.evalAssign(ex, sc)
	case *compiler.CallExpr:
		return in.evalCall(ex, sc)
	case *compiler.MemberExpr:
		return in.evalMember(ex, sc)
	}
	return Undefined, errAt(e, "unsupported expression node %T", e)
}

// resolveIdent applies the resolution order: constant table for the
// reserved prefix (no fallthrough), external globals, then the scope
// chain.
func (in *Interp) resolveIdent(id *compiler.Ident, sc *Scope) (Value, error) {
	name := id.Name
	if catalog.IsConstantName(name) {
		if v, ok := in.constants[name]; ok {
			return FromNumber(float64(v)), nil
		}
		return Undefined, errAt(id, "unknown constant %s", name)
	}
	if v, ok := in.flat[name]; ok {
		return v, nil
	}
	if v, ok := sc.Get(name); ok {
		return v, nil
	}
	return Undefined, errAt(id, "undefined variable %s", name)
}

func (in *Interp) evalBinary(ex *compiler.BinaryExpr, sc *Scope) (Value, error) {
	// Logical operators short-circuit and yield an operand value.
	switch ex.Op {
	case compiler.TokenAnd:
		left, err := in.evalExpr(ex.Left, sc)
		if err != nil {
			return Undefined, err
		}
		if !left.Truthy() {
			return left, nil
		}
		return in.evalExpr(ex.Right, sc)
	case compiler.TokenOr:
		left, err := in.evalExpr(ex.Left, sc)
		if err != nil {
			return Undefined, err
		}
		if left.Truthy() {
			return left, nil
		}
		return in.evalExpr(ex.Right, sc)
	}

	left, err := in.evalExpr(ex.Left, sc)
	if err != nil {
		return Undefined, err
	}
	right, err := in.evalExpr(ex.Right, sc)
	if err != nil {
		return Undefined, err
	}
	return in.applyBinary(ex.Op, left, right, ex)
}

func (in *Interp) applyBinary(op compiler.TokenType, left, right Value, node compiler.Node) (Value, error) {
	switch op {
	case compiler.TokenEq:
		return FromBool(left.Equals(right)), nil
	case compiler.TokenNotEq:
		return FromBool(!left.Equals(right)), nil
	case compiler.TokenPlus:
		if left.IsString() || right.IsString() {
			return FromString(left.Display() + right.Display()), nil
		}
	case compiler.TokenLt, compiler.TokenGt, compiler.TokenLtEq, compiler.TokenGtEq:
		if left.IsString() && right.IsString() {
			return compareResult(op, strings.Compare(left.Str, right.Str)), nil
		}
	}

	l, r, err := in.numericPair(op, left, right, node)
	if err != nil {
		return Undefined, err
	}
	switch op {
	case compiler.TokenPlus:
		return FromNumber(l + r), nil
	case compiler.TokenMinus:
		return FromNumber(l - r), nil
	case compiler.TokenStar:
		return FromNumber(l * r), nil
	case compiler.TokenSlash:
		return FromNumber(l / r), nil
	case compiler.TokenPercent:
		return FromNumber(math.Mod(l, r)), nil
	case compiler.TokenAmp:
		return FromNumber(float64(int64(l) & int64(r))), nil
	case compiler.TokenPipe:
		return FromNumber(float64(int64(l) | int64(r))), nil
	case compiler.TokenCaret:
		return FromNumber(float64(int64(l) ^ int64(r))), nil
	case compiler.TokenLt:
		return FromBool(l < r), nil
	case compiler.TokenGt:
		return FromBool(l > r), nil
	case compiler.TokenLtEq:
		return FromBool(l <= r), nil
	case compiler.TokenGtEq:
		return FromBool(l >= r), nil
	}
	return Undefined, errAt(node, "unsupported operator %s", op)
}

func compareResult(op compiler.TokenType, cmp int) Value {
	switch op {
	case compiler.TokenLt:
		return FromBool(cmp < 0)
	case compiler.TokenGt:
		return FromBool(cmp > 0)
	case compiler.TokenLtEq:
		return FromBool(cmp <= 0)
	}
	return FromBool(cmp >= 0)
}

func (in *Interp) numericPair(op compiler.TokenType, left, right Value, node compiler.Node) (float64, float64, error) {
	if !left.Numeric() || !right.Numeric() {
		return 0, 0, errAt(node, "cannot apply %s to %s and %s", op, left.KindName(), right.KindName())
	}
	return left.Num, right.Num, nil
}

func (in *Interp) evalUnary(ex *compiler.UnaryExpr, sc *Scope) (Value, error) {
	v, err := in.evalExpr(ex.Operand, sc)
	if err != nil {
		return Undefined, err
	}
	switch ex.Op {
	case compiler.TokenNot:
		return FromBool(!v.Truthy()), nil
	case compiler.TokenMinus:
		if !v.Numeric() {
			return Undefined, errAt(ex, "cannot negate %s", v.KindName())
		}
		return FromNumber(-v.Num), nil
	}
	return Undefined, errAt(ex, "unsupported unary operator %s", ex.Op)
}

// evalUpdate handles ++ and --. Prefix and postfix both require an
// identifier target and mutate the owning scope.
func (in *Interp) evalUpdate(ex *compiler.UpdateExpr, sc *Scope) (Value, error) {
	id, ok := ex.Operand.(*compiler.Ident)
	if !ok {
		return Undefined, errAt(ex, "%s requires a variable target", ex.Op)
	}
	cur, found := sc.Get(id.Name)
	if !found {
		return Undefined, errAt(ex, "undefined variable %s", id.Name)
	}
	if cur.Kind != KindNumber {
		return Undefined, errAt(ex, "cannot apply %s to %s", ex.Op, cur.KindName())
	}
	next := cur.Num + 1
	if ex.Op == compiler.TokenMinusMinus {
		next = cur.Num - 1
	}
	sc.Set(id.Name, FromNumber(next))
	if ex.Prefix {
		return FromNumber(next), nil
	}
	return cur, nil
}

func (in *Interp) evalAssign(ex *compiler.AssignExpr, sc *Scope) (Value, error) {
	id, ok := ex.Target.(*compiler.Ident)
	if !ok {
		return Undefined, errAt(ex.Target, "invalid assignment target")
	}

	val, err := in.evalExpr(ex.Value, sc)
	if err != nil {
		return Undefined, err
	}
	if ex.Op != compiler.TokenAssign {
		cur, found := sc.Get(id.Name)
		if !found {
			return Undefined, errAt(ex, "undefined variable %s", id.Name)
		}
		val, err = in.applyBinary(compoundOp(ex.Op), cur, val, ex)
		if err != nil {
			return Undefined, err
		}
	}

	if !sc.Set(id.Name, val) {
		if _, isConst := in.constants[id.Name]; isConst || catalog.IsConstantName(id.Name) {
			return Undefined, errAt(ex, "cannot assign to constant %s", id.Name)
		}
		if _, isGlobal := in.flat[id.Name]; isGlobal {
			return Undefined, errAt(ex, "cannot assign to %s", id.Name)
		}
		return Undefined, errAt(ex, "undefined variable %s", id.Name)
	}
	return val, nil
}

func compoundOp(t compiler.TokenType) compiler.TokenType {
	switch t {
	case compiler.TokenPlusAssign:
		return compiler.TokenPlus
	case compiler.TokenMinusAssign:
		return compiler.TokenMinus
	case compiler.TokenStarAssign:
		return compiler.TokenStar
	case compiler.TokenSlashAssign:
		return compiler.TokenSlash
	}
	return t
}

// evalMember resolves dotted paths against the flattened external
// globals. Runtime values carry no properties of their own, so any
// other member access fails.
func (in *Interp) evalMember(ex *compiler.MemberExpr, sc *Scope) (Value, error) {
	if !ex.Computed {
		if name, ok := compiler.CalleeName(ex); ok {
			if v, ok := in.flat[name]; ok {
				return v, nil
			}
			return Undefined, errAt(ex, "undefined variable %s", name)
		}
	}
	obj, err := in.evalExpr(ex.Object, sc)
	if err != nil {
		return Undefined, err
	}
	return Undefined, errAt(ex, "cannot read property of %s value", obj.KindName())
}
