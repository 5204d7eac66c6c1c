package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/interp"
)

// ---------------------------------------------------------------------------
// Script target: dynamically typed rewrite
// ---------------------------------------------------------------------------

// BindingPrefix is the external-binding namespace the script target
// dispatches capability calls and reserved constants through.
const BindingPrefix = "lv."

// EmitScript renders prog in the dynamic scripting dialect. Block
// structure and let/const survive, type annotations are dropped,
// capability calls dispatch through the binding namespace and reserved
// constants through the same namespace. String arguments headed for
// cstring parameters are wrapped with the interpreter's converter call
// and numeric arguments headed for color parameters with the color
// capability, inline.
func EmitScript(prog *compiler.Program, cat *catalog.Catalog) (string, error) {
	var sigs compiler.SignatureSource
	if cat != nil {
		sigs = cat
	}
	compiler.DecorateProgram(prog, sigs)

	g := &scriptGen{
		buf:  &strings.Builder{},
		gate: catalog.NewGate(cat, nil),
	}
	for i, s := range prog.Stmts {
		if i > 0 {
			if _, ok := s.(*compiler.FunctionDecl); ok {
				g.buf.WriteByte('\n')
			}
		}
		g.stmt(s)
	}
	if len(g.errs) > 0 {
		return "", fmt.Errorf("script emit: %s", strings.Join(g.errs, "; "))
	}
	return g.buf.String(), nil
}

// scriptGen walks the tree and emits the dynamic dialect.
type scriptGen struct {
	buf    *strings.Builder
	gate   *catalog.Gate
	indent int
	errs   []string
}

// errorf records a generation error.
func (g *scriptGen) errorf(format string, args ...interface{}) {
	g.errs = append(g.errs, fmt.Sprintf(format, args...))
}

func (g *scriptGen) write(s string) {
	g.buf.WriteString(s)
}

func (g *scriptGen) writeln(s string) {
	g.buf.WriteString(s)
	g.buf.WriteByte('\n')
}

// writeIndent writes the current indentation prefix (two spaces per
// level).
func (g *scriptGen) writeIndent() {
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("  ")
	}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (g *scriptGen) stmt(stmt compiler.Stmt) {
	switch s := stmt.(type) {
	case *compiler.FunctionDecl:
		g.writeIndent()
		g.write("function " + s.Name + "(")
		for i, p := range s.Params {
			if i > 0 {
				g.write(", ")
			}
			g.write(p.Name)
		}
		g.writeln(") {")
		g.indent++
		g.body(s.Body)
		g.indent--
		g.writeIndent()
		g.writeln("}")

	case *compiler.VarDecl:
		g.writeIndent()
		g.writeln(g.varDecl(s) + ";")

	case *compiler.BlockStmt:
		g.writeIndent()
		g.writeln("{")
		g.indent++
		g.body(s)
		g.indent--
		g.writeIndent()
		g.writeln("}")

	case *compiler.IfStmt:
		g.writeIndent()
		g.ifChain(s)

	case *compiler.ForStmt:
		init := ""
		if s.Init != nil {
			init = g.forInit(s.Init)
		}
		cond := ""
		if s.Cond != nil {
			cond = g.expr(s.Cond, 0)
		}
		update := ""
		if s.Update != nil {
			update = g.expr(s.Update, 0)
		}
		g.writeIndent()
		g.writeln("for (" + init + "; " + cond + "; " + update + ") {")
		g.indent++
		g.body(s.Body)
		g.indent--
		g.writeIndent()
		g.writeln("}")

	case *compiler.WhileStmt:
		g.writeIndent()
		g.writeln("while (" + g.expr(s.Cond, 0) + ") {")
		g.indent++
		g.body(s.Body)
		g.indent--
		g.writeIndent()
		g.writeln("}")

	case *compiler.ReturnStmt:
		g.writeIndent()
		if s.Value == nil {
			g.writeln("return;")
		} else {
			g.writeln("return " + g.expr(s.Value, 0) + ";")
		}

	case *compiler.ExprStmt:
		g.writeIndent()
		g.writeln(g.expr(s.Expr, 0) + ";")

	default:
		g.errorf("unsupported statement node %T", stmt)
	}
}

// body renders the statements of stmt inside already-open braces. A
// non-block statement counts as a single-statement body.
func (g *scriptGen) body(stmt compiler.Stmt) {
	if b, ok := stmt.(*compiler.BlockStmt); ok {
		for _, inner := range b.Stmts {
			g.stmt(inner)
		}
		return
	}
	g.stmt(stmt)
}

// ifChain renders an if statement and any else-if continuations. The
// leading indent for the first line is already written.
func (g *scriptGen) ifChain(s *compiler.IfStmt) {
	g.writeln("if (" + g.expr(s.Cond, 0) + ") {")
	g.indent++
	g.body(s.Then)
	g.indent--
	for s.Else != nil {
		chained, ok := s.Else.(*compiler.IfStmt)
		if !ok {
			g.writeIndent()
			g.writeln("} else {")
			g.indent++
			g.body(s.Else)
			g.indent--
			break
		}
		g.writeIndent()
		g.writeln("} else if (" + g.expr(chained.Cond, 0) + ") {")
		g.indent++
		g.body(chained.Then)
		g.indent--
		s = chained
	}
	g.writeIndent()
	g.writeln("}")
}

// varDecl renders a declaration without the terminator, dropping the
// type annotation.
func (g *scriptGen) varDecl(s *compiler.VarDecl) string {
	kw := "let"
	if s.Const {
		kw = "const"
	}
	out := kw + " " + s.Name
	if s.Init != nil {
		out += " = " + g.expr(s.Init, 0)
	}
	return out
}

// forInit renders a loop initializer without a terminator.
func (g *scriptGen) forInit(init compiler.Stmt) string {
	switch s := init.(type) {
	case *compiler.VarDecl:
		return g.varDecl(s)
	case *compiler.ExprStmt:
		return g.expr(s.Expr, 0)
	}
	g.errorf("unsupported loop initializer %T", init)
	return ""
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// expr renders e for a context of precedence prec, parenthesizing when
// the rendered operator binds looser than the context.
func (g *scriptGen) expr(e compiler.Expr, prec int) string {
	switch x := e.(type) {
	case *compiler.NumberLit:
		return formatNumber(x.Value)

	case *compiler.StringLit:
		return strconv.Quote(x.Value)

	case *compiler.BoolLit:
		if x.Value {
			return "true"
		}
		return "false"

	case *compiler.NullLit:
		return "null"

	case *compiler.UndefinedLit:
		return "undefined"

	case *compiler.Ident:
		return g.ident(x.Name)

	case *compiler.BinaryExpr:
		own := precedence(x.Op)
		out := g.expr(x.Left, own) + " " + x.Op.String() + " " + g.expr(x.Right, own+1)
		if own < prec {
			return "(" + out + ")"
		}
		return out

	case *compiler.UnaryExpr:
		return x.Op.String() + g.expr(x.Operand, precUnary)

	case *compiler.UpdateExpr:
		if x.Prefix {
			return x.Op.String() + g.expr(x.Operand, precUnary)
		}
		return g.expr(x.Operand, precUnary) + x.Op.String()

	case *compiler.AssignExpr:
		out := g.expr(x.Target, precUnary) + " " + x.Op.String() + " " + g.expr(x.Value, 0)
		if prec > 0 {
			return "(" + out + ")"
		}
		return out

	case *compiler.CallExpr:
		return g.call(x)

	case *compiler.MemberExpr:
		obj := g.expr(x.Object, precUnary)
		if x.Computed {
			return obj + "[" + g.expr(x.Property, 0) + "]"
		}
		prop, ok := x.Property.(*compiler.Ident)
		if !ok {
			g.errorf("unsupported member property %T", x.Property)
			return obj
		}
		return obj + "." + prop.Name
	}
	g.errorf("unsupported expression node %T", e)
	return ""
}

// ident renders a bare identifier, routing reserved constants through
// the binding namespace.
func (g *scriptGen) ident(name string) string {
	if catalog.IsConstantName(name) {
		return BindingPrefix + name
	}
	return name
}

// ---------------------------------------------------------------------------
// Calls and argument conversions
// ---------------------------------------------------------------------------

// call renders a call expression. Capability calls dispatch through the
// binding namespace under their runtime symbol and each argument gets
// the conversion the interpreter would perform at the gate.
func (g *scriptGen) call(x *compiler.CallExpr) string {
	name, named := compiler.CalleeName(x.Callee)
	if !named || !catalog.IsCapabilityName(name) {
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = g.expr(a, 0)
		}
		return g.expr(x.Callee, precUnary) + "(" + strings.Join(parts, ", ") + ")"
	}

	plan, err := g.gate.Resolve(name, len(x.Args))
	if err != nil {
		// Arity mismatches surface when the target runtime runs the
		// script; the dispatch rewrite still applies.
		plan = &catalog.CallPlan{Name: name, RuntimeName: name}
	}

	parts := make([]string, len(x.Args))
	for i, a := range x.Args {
		parts[i] = g.arg(a, plan, i)
	}
	return scriptCallName(plan.RuntimeName) + "(" + strings.Join(parts, ", ") + ")"
}

// arg renders one capability argument with its boundary conversion.
func (g *scriptGen) arg(arg compiler.Expr, plan *catalog.CallPlan, i int) string {
	out := g.expr(arg, 0)
	if plan.Params == nil || i >= len(plan.Params) {
		return out
	}
	switch plan.Params[i] {
	case compiler.TypeCstring:
		if isStringArg(arg) {
			return interp.ConverterName + "(" + out + ")"
		}
	case compiler.TypeColor:
		if arg.ResolvedType() == compiler.TypeNumber {
			return scriptCallName(interp.ColorCapability) + "(" + out + ")"
		}
	}
	return out
}

// scriptCallName maps a runtime dispatch symbol onto the binding
// namespace: lv_btn_create becomes lv.btn_create.
func scriptCallName(name string) string {
	return BindingPrefix + strings.TrimPrefix(name, catalog.CapPrefix)
}

// isStringArg reports whether arg is a string literal or an expression
// the decoration pass resolved to string.
func isStringArg(arg compiler.Expr) bool {
	if _, ok := arg.(*compiler.StringLit); ok {
		return true
	}
	return arg.ResolvedType() == compiler.TypeString
}
