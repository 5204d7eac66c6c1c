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
// C target: statically typed rewrite
// ---------------------------------------------------------------------------

// InitFunction is the function the C target collects top-level
// statements into. Hosts call it once after the widget library is up.
const InitFunction = "ui_init"

// concatBufSize is the byte size of the static buffers that hoisted
// string concatenations format into.
const concatBufSize = 64

// EmitC renders prog in the static C dialect. Every declared or
// inferred type maps onto a fixed target primitive, capability calls
// dispatch by their runtime symbol, and top-level statements move into
// an init function so the output is a compilable translation unit.
//
// Two rewrites replace interpreter behavior that C cannot express
// directly: numeric arguments headed for color parameters are encoded
// into a temporary in a statement before the call, and string
// concatenation used as a call argument is flattened into a static
// buffer plus a formatted write before the call. A function with one
// untyped or number-typed parameter that no rendered code calls is
// assumed to be an event handler and keeps the event-callback shape.
func EmitC(prog *compiler.Program, cat *catalog.Catalog) (string, error) {
	var sigs compiler.SignatureSource
	if cat != nil {
		sigs = cat
	}
	compiler.DecorateProgram(prog, sigs)

	g := &cgen{
		buf:       &strings.Builder{},
		gate:      catalog.NewGate(cat, nil),
		callbacks: eventCallbacks(prog),
	}
	g.program(prog)
	if len(g.errs) > 0 {
		return "", fmt.Errorf("c emit: %s", strings.Join(g.errs, "; "))
	}
	return g.buf.String(), nil
}

// cType maps a declared or inferred type onto the target primitive.
// The unknown type renders as the numeric default.
func cType(t compiler.Type) string {
	switch t {
	case compiler.TypeNumber:
		return "int"
	case compiler.TypeBool:
		return "bool"
	case compiler.TypeString, compiler.TypeCstring:
		return "char *"
	case compiler.TypeColor:
		return "lv_color_t"
	case compiler.TypeFunction:
		return "lv_event_cb_t"
	}
	if t.IsHandle() {
		return string(t) + "_t *"
	}
	return "int"
}

// cDecl renders a declarator for name with type t.
func cDecl(t compiler.Type, name string) string {
	return cType(t) + " " + name
}

// eventCallbacks applies the callback heuristic over the whole program:
// a function with exactly one untyped or number-typed parameter that is
// never called from rendered code keeps the lv_event_cb_t shape.
func eventCallbacks(prog *compiler.Program) map[string]bool {
	called := make(map[string]bool)
	var stmt func(compiler.Stmt)
	var expr func(compiler.Expr)

	expr = func(e compiler.Expr) {
		switch x := e.(type) {
		case *compiler.BinaryExpr:
			expr(x.Left)
			expr(x.Right)
		case *compiler.UnaryExpr:
			expr(x.Operand)
		case *compiler.UpdateExpr:
			expr(x.Operand)
		case *compiler.AssignExpr:
			expr(x.Target)
			expr(x.Value)
		case *compiler.CallExpr:
			if callee, ok := x.Callee.(*compiler.Ident); ok {
				called[callee.Name] = true
			} else {
				expr(x.Callee)
			}
			for _, a := range x.Args {
				expr(a)
			}
		case *compiler.MemberExpr:
			expr(x.Object)
			if x.Computed {
				expr(x.Property)
			}
		}
	}
	stmt = func(s compiler.Stmt) {
		switch x := s.(type) {
		case *compiler.FunctionDecl:
			stmt(x.Body)
		case *compiler.VarDecl:
			if x.Init != nil {
				expr(x.Init)
			}
		case *compiler.BlockStmt:
			for _, inner := range x.Stmts {
				stmt(inner)
			}
		case *compiler.IfStmt:
			expr(x.Cond)
			stmt(x.Then)
			if x.Else != nil {
				stmt(x.Else)
			}
		case *compiler.ForStmt:
			if x.Init != nil {
				stmt(x.Init)
			}
			if x.Cond != nil {
				expr(x.Cond)
			}
			if x.Update != nil {
				expr(x.Update)
			}
			stmt(x.Body)
		case *compiler.WhileStmt:
			expr(x.Cond)
			stmt(x.Body)
		case *compiler.ReturnStmt:
			if x.Value != nil {
				expr(x.Value)
			}
		case *compiler.ExprStmt:
			expr(x.Expr)
		}
	}
	for _, s := range prog.Stmts {
		stmt(s)
	}

	cbs := make(map[string]bool)
	for name, fn := range prog.Functions() {
		if called[name] || len(fn.Params) != 1 {
			continue
		}
		if t := fn.Params[0].Type; t == "" || t == compiler.TypeNumber {
			cbs[name] = true
		}
	}
	return cbs
}

// cgen walks the tree and emits the C dialect.
type cgen struct {
	buf       *strings.Builder
	gate      *catalog.Gate
	indent    int
	callbacks map[string]bool
	pre       []string // hoisted statements pending before the current line
	bufN      int      // static format buffer counter
	colorN    int      // color temporary counter
	errs      []string
}

// errorf records a generation error.
func (g *cgen) errorf(format string, args ...interface{}) {
	g.errs = append(g.errs, fmt.Sprintf(format, args...))
}

func (g *cgen) writeln(s string) {
	g.buf.WriteString(s)
	g.buf.WriteByte('\n')
}

// writeIndent writes the current indentation prefix (four spaces per
// level).
func (g *cgen) writeIndent() {
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("    ")
	}
}

// line writes one indented statement line, flushing hoisted statements
// first so conversions land immediately before their call site.
func (g *cgen) line(s string) {
	for _, p := range g.pre {
		g.writeIndent()
		g.writeln(p)
	}
	g.pre = g.pre[:0]
	g.writeIndent()
	g.writeln(s)
}

// ---------------------------------------------------------------------------
// Translation unit layout
// ---------------------------------------------------------------------------

// program renders the whole translation unit: includes, file-scope
// declarations for top-level variables, prototypes, function
// definitions, then the init function carrying top-level statements.
func (g *cgen) program(prog *compiler.Program) {
	g.writeln("#include <stdio.h>")
	g.writeln("#include <stdbool.h>")
	g.writeln(`#include "lvgl.h"`)

	var fns []*compiler.FunctionDecl
	var setup []compiler.Stmt
	var globals []string

	for _, s := range prog.Stmts {
		switch x := s.(type) {
		case *compiler.FunctionDecl:
			fns = append(fns, x)
		case *compiler.VarDecl:
			decl, assign := g.globalDecl(x)
			globals = append(globals, decl)
			if assign != nil {
				setup = append(setup, assign)
			}
		default:
			setup = append(setup, s)
		}
	}

	if len(globals) > 0 {
		g.writeln("")
		for _, decl := range globals {
			g.writeln(decl)
		}
	}

	if len(fns) > 0 {
		g.writeln("")
		for _, fn := range fns {
			g.writeln(g.signature(fn) + ";")
		}
	}

	for _, fn := range fns {
		g.writeln("")
		g.function(fn)
	}

	if len(setup) > 0 {
		g.writeln("")
		g.writeln("void " + InitFunction + "(void) {")
		g.indent++
		for _, s := range setup {
			g.stmt(s)
		}
		g.indent--
		g.writeln("}")
	}
}

// globalDecl renders a top-level declaration at file scope. Literal
// initializers stay on the declaration; anything else defers into the
// init function as a plain assignment, since C file scope only takes
// constant initializers.
func (g *cgen) globalDecl(s *compiler.VarDecl) (string, compiler.Stmt) {
	t := s.DeclType
	if t == "" && s.Init != nil {
		t = s.Init.ResolvedType()
	}
	decl := cDecl(t, s.Name)

	if s.Init == nil {
		return decl + ";", nil
	}
	if lit, ok := literalText(s.Init); ok && t != compiler.TypeColor {
		if s.Const {
			decl = "const " + decl
		}
		return decl + " = " + lit + ";", nil
	}

	value := s.Init
	if t == compiler.TypeColor && s.Init.ResolvedType() == compiler.TypeNumber {
		value = &compiler.CallExpr{
			Callee: &compiler.Ident{Name: interp.ColorCapability},
			Args:   []compiler.Expr{s.Init},
		}
	}
	assign := &compiler.ExprStmt{Expr: &compiler.AssignExpr{
		Op:     compiler.TokenAssign,
		Target: &compiler.Ident{Name: s.Name},
		Value:  value,
	}}
	return decl + ";", assign
}

// literalText renders an initializer C file scope accepts.
func literalText(e compiler.Expr) (string, bool) {
	switch x := e.(type) {
	case *compiler.NumberLit:
		return formatNumber(x.Value), true
	case *compiler.StringLit:
		return strconv.Quote(x.Value), true
	case *compiler.BoolLit:
		if x.Value {
			return "true", true
		}
		return "false", true
	case *compiler.UnaryExpr:
		if x.Op == compiler.TokenMinus {
			if n, ok := x.Operand.(*compiler.NumberLit); ok {
				return "-" + formatNumber(n.Value), true
			}
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func (g *cgen) function(fn *compiler.FunctionDecl) {
	g.writeln(g.signature(fn) + " {")
	g.indent++
	for _, s := range fn.Body.Stmts {
		g.stmt(s)
	}
	g.indent--
	g.writeln("}")
}

// signature renders a function header, applying the event-callback
// shape when the heuristic selected fn.
func (g *cgen) signature(fn *compiler.FunctionDecl) string {
	if g.callbacks[fn.Name] {
		return "void " + fn.Name + "(lv_event_t * " + fn.Params[0].Name + ")"
	}

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = cDecl(p.Type, p.Name)
	}
	list := strings.Join(params, ", ")
	if list == "" {
		list = "void"
	}

	ret := "void"
	if t := returnShape(fn); t != "" {
		ret = cType(t)
	}
	return ret + " " + fn.Name + "(" + list + ")"
}

// returnShape resolves a function's return type: the annotation when
// present, otherwise the decorated type of the first value-carrying
// return in the body. Empty means void.
func returnShape(fn *compiler.FunctionDecl) compiler.Type {
	if fn.ReturnType != "" {
		return fn.ReturnType
	}
	var found compiler.Type
	var walk func(compiler.Stmt)
	walk = func(s compiler.Stmt) {
		if found != "" {
			return
		}
		switch x := s.(type) {
		case *compiler.BlockStmt:
			for _, inner := range x.Stmts {
				walk(inner)
			}
		case *compiler.IfStmt:
			walk(x.Then)
			if x.Else != nil {
				walk(x.Else)
			}
		case *compiler.ForStmt:
			walk(x.Body)
		case *compiler.WhileStmt:
			walk(x.Body)
		case *compiler.ReturnStmt:
			if x.Value != nil {
				found = x.Value.ResolvedType()
				if found == "" {
					found = compiler.TypeNumber
				}
			}
		}
	}
	walk(fn.Body)
	return found
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (g *cgen) stmt(stmt compiler.Stmt) {
	switch s := stmt.(type) {
	case *compiler.FunctionDecl:
		g.errorf("function %s is not at top level", s.Name)

	case *compiler.VarDecl:
		g.line(g.varDecl(s) + ";")

	case *compiler.BlockStmt:
		g.line("{")
		g.indent++
		for _, inner := range s.Stmts {
			g.stmt(inner)
		}
		g.indent--
		g.line("}")

	case *compiler.IfStmt:
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
		g.line("for (" + init + "; " + cond + "; " + update + ") {")
		g.indent++
		g.body(s.Body)
		g.indent--
		g.line("}")

	case *compiler.WhileStmt:
		cond := g.expr(s.Cond, 0)
		g.line("while (" + cond + ") {")
		g.indent++
		g.body(s.Body)
		g.indent--
		g.line("}")

	case *compiler.ReturnStmt:
		if s.Value == nil {
			g.line("return;")
		} else {
			g.line("return " + g.expr(s.Value, 0) + ";")
		}

	case *compiler.ExprStmt:
		g.line(g.expr(s.Expr, 0) + ";")

	default:
		g.errorf("unsupported statement node %T", stmt)
	}
}

// body renders the statements of stmt inside already-open braces.
func (g *cgen) body(stmt compiler.Stmt) {
	if b, ok := stmt.(*compiler.BlockStmt); ok {
		for _, inner := range b.Stmts {
			g.stmt(inner)
		}
		return
	}
	g.stmt(stmt)
}

// ifChain renders an if statement and any else-if continuations.
func (g *cgen) ifChain(s *compiler.IfStmt) {
	cond := g.expr(s.Cond, 0)
	g.line("if (" + cond + ") {")
	g.indent++
	g.body(s.Then)
	g.indent--
	for s.Else != nil {
		chained, ok := s.Else.(*compiler.IfStmt)
		if !ok {
			g.line("} else {")
			g.indent++
			g.body(s.Else)
			g.indent--
			break
		}
		g.line("} else if (" + g.expr(chained.Cond, 0) + ") {")
		g.indent++
		g.body(chained.Then)
		g.indent--
		s = chained
	}
	g.line("}")
}

// varDecl renders a local declaration without the terminator. A color
// declaration initialized with a number encodes inline.
func (g *cgen) varDecl(s *compiler.VarDecl) string {
	t := s.DeclType
	if t == "" && s.Init != nil {
		t = s.Init.ResolvedType()
	}
	out := cDecl(t, s.Name)
	if s.Const {
		out = "const " + out
	}
	if s.Init == nil {
		return out
	}
	init := g.expr(s.Init, 0)
	if t == compiler.TypeColor && s.Init.ResolvedType() == compiler.TypeNumber {
		init = g.colorCall(init)
	}
	return out + " = " + init
}

// forInit renders a loop initializer without a terminator.
func (g *cgen) forInit(init compiler.Stmt) string {
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

// expr renders e for a context of precedence prec.
func (g *cgen) expr(e compiler.Expr, prec int) string {
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

	case *compiler.NullLit, *compiler.UndefinedLit:
		return "NULL"

	case *compiler.Ident:
		return x.Name

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

// ---------------------------------------------------------------------------
// Calls and argument conversions
// ---------------------------------------------------------------------------

// call renders a call expression. Capability calls dispatch by runtime
// symbol; arguments get the hoisted conversions.
func (g *cgen) call(x *compiler.CallExpr) string {
	name, named := compiler.CalleeName(x.Callee)
	if !named || !catalog.IsCapabilityName(name) {
		return g.expr(x.Callee, precUnary) + "(" + g.args(x.Args, nil) + ")"
	}
	plan, err := g.gate.Resolve(name, len(x.Args))
	if err != nil {
		plan = &catalog.CallPlan{Name: name, RuntimeName: name}
	}
	return plan.RuntimeName + "(" + g.args(x.Args, plan.Params) + ")"
}

func (g *cgen) args(list []compiler.Expr, params []compiler.Type) string {
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = g.arg(a, params, i)
	}
	return strings.Join(parts, ", ")
}

// arg renders one argument. String concatenation hoists into a static
// buffer regardless of the parameter type; numeric color arguments
// encode into a temporary before the call. Plain strings pass straight
// through since the target's literals already are character pointers.
func (g *cgen) arg(arg compiler.Expr, params []compiler.Type, i int) string {
	if hoistable(arg) {
		return g.hoistConcat(arg)
	}
	if params != nil && i < len(params) && params[i] == compiler.TypeColor &&
		arg.ResolvedType() == compiler.TypeNumber {
		return g.hoistColor(arg)
	}
	return g.expr(arg, 0)
}

// hoistable reports whether arg is a + chain carrying at least one
// string literal.
func hoistable(arg compiler.Expr) bool {
	b, ok := arg.(*compiler.BinaryExpr)
	if !ok || b.Op != compiler.TokenPlus {
		return false
	}
	return hasStringLit(b)
}

func hasStringLit(e compiler.Expr) bool {
	switch x := e.(type) {
	case *compiler.StringLit:
		return true
	case *compiler.BinaryExpr:
		if x.Op != compiler.TokenPlus {
			return false
		}
		return hasStringLit(x.Left) || hasStringLit(x.Right)
	}
	return false
}

// hoistConcat flattens a string concatenation into a static buffer and
// a formatted write before the enclosing statement, and hands the
// buffer name to the call site. Literal segments join into the format
// string; every other segment becomes a %s or %d placeholder by its
// decorated type.
func (g *cgen) hoistConcat(arg compiler.Expr) string {
	g.bufN++
	buf := fmt.Sprintf("buf_%d", g.bufN)

	var format strings.Builder
	var args []string
	var flatten func(compiler.Expr)
	flatten = func(e compiler.Expr) {
		if b, ok := e.(*compiler.BinaryExpr); ok && b.Op == compiler.TokenPlus {
			flatten(b.Left)
			flatten(b.Right)
			return
		}
		if lit, ok := e.(*compiler.StringLit); ok {
			format.WriteString(strings.ReplaceAll(lit.Value, "%", "%%"))
			return
		}
		switch e.ResolvedType() {
		case compiler.TypeString, compiler.TypeCstring:
			format.WriteString("%s")
		default:
			format.WriteString("%d")
		}
		args = append(args, g.expr(e, 0))
	}
	flatten(arg)

	g.pre = append(g.pre, fmt.Sprintf("static char %s[%d];", buf, concatBufSize))
	write := "snprintf(" + buf + ", sizeof(" + buf + "), " + strconv.Quote(format.String())
	for _, a := range args {
		write += ", " + a
	}
	g.pre = append(g.pre, write+");")
	return buf
}

// hoistColor encodes a numeric argument for a color parameter into a
// temporary in a statement before the call.
func (g *cgen) hoistColor(arg compiler.Expr) string {
	g.colorN++
	name := fmt.Sprintf("color_%d", g.colorN)
	g.pre = append(g.pre, "lv_color_t "+name+" = "+g.colorCall(g.expr(arg, 0))+";")
	return name
}

// colorCall renders the numeric to color encoding through the color
// capability's runtime symbol.
func (g *cgen) colorCall(arg string) string {
	plan, err := g.gate.Resolve(interp.ColorCapability, 1)
	if err != nil {
		return interp.ColorCapability + "(" + arg + ")"
	}
	return plan.RuntimeName + "(" + arg + ")"
}
