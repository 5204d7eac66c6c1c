package compiler

import (
	"reflect"
	"testing"
)

// fakeSigs resolves capability return types from a plain map.
type fakeSigs map[string]Type

func (f fakeSigs) ReturnTypeOf(name string) (Type, bool) {
	t, ok := f[name]
	return t, ok
}

func TestDecorateExplicitAnnotations(t *testing.T) {
	input := `
function setup(parent: lv_obj, count: number) {
	let label: cstring = "hi"
	let c: color = 0xFF0000
}
let total: number = 0
`
	prog := parseProgram(t, input)
	types := DecorateProgram(prog, nil)

	want := map[string]Type{
		"setup.parent": Type("lv_obj"),
		"setup.count":  TypeNumber,
		"setup.label":  TypeCstring,
		"setup.c":      TypeColor,
		"total":        TypeNumber,
		"setup":        TypeFunction,
	}
	for key, typ := range want {
		if types[key] != typ {
			t.Errorf("types[%q] = %q, want %q", key, types[key], typ)
		}
	}
}

func TestDecorateInferFromLiteral(t *testing.T) {
	tests := []struct {
		input string
		key   string
		want  Type
	}{
		{"let x = 5", "x", TypeNumber},
		{"let x = 3.14", "x", TypeNumber},
		{"let s = \"hi\"", "s", TypeString},
		{"let b = true", "b", TypeBool},
		{"function f() { let n = 0xFF }", "f.n", TypeNumber},
	}

	for _, tc := range tests {
		prog := parseProgram(t, tc.input)
		types := DecorateProgram(prog, nil)
		if types[tc.key] != tc.want {
			t.Errorf("Decorate(%q): types[%q] = %q, want %q", tc.input, tc.key, types[tc.key], tc.want)
		}
	}
}

func TestDecorateInferFromCapabilityCall(t *testing.T) {
	sigs := fakeSigs{
		"lv_btn_create":   Type("lv_obj"),
		"lv_label_create": Type("lv_obj"),
		"lv_color_hex":    TypeColor,
	}
	input := `
function setup(parent: lv_obj) {
	let btn = lv_btn_create(parent)
	let c = lv_color_hex(0x00FF00)
}
`
	prog := parseProgram(t, input)
	types := DecorateProgram(prog, sigs)

	if types["setup.btn"] != Type("lv_obj") {
		t.Errorf("types[setup.btn] = %q, want lv_obj", types["setup.btn"])
	}
	if types["setup.c"] != TypeColor {
		t.Errorf("types[setup.c] = %q, want color", types["setup.c"])
	}
}

func TestDecorateInferFromIdentifier(t *testing.T) {
	input := `
let a: number = 1
let b = a
function f(s: string) { let copy = s }
`
	prog := parseProgram(t, input)
	types := DecorateProgram(prog, nil)

	if types["b"] != TypeNumber {
		t.Errorf("types[b] = %q, want number", types["b"])
	}
	if types["f.copy"] != TypeString {
		t.Errorf("types[f.copy] = %q, want string", types["f.copy"])
	}
}

func TestDecorateInferFromUserFunctionReturn(t *testing.T) {
	input := `
function add(a: number, b: number): number { return a + b }
let sum = add(1, 2)
`
	prog := parseProgram(t, input)
	types := DecorateProgram(prog, nil)

	if types["sum"] != TypeNumber {
		t.Errorf("types[sum] = %q, want number", types["sum"])
	}
}

func TestDecorateAnnotationWinsOverInference(t *testing.T) {
	prog := parseProgram(t, `let s: cstring = "text"`)
	types := DecorateProgram(prog, nil)

	if types["s"] != TypeCstring {
		t.Errorf("types[s] = %q, want cstring", types["s"])
	}
	decl := prog.Stmts[0].(*VarDecl)
	if decl.Init.ResolvedType() != TypeString {
		t.Errorf("initializer type = %q, want string", decl.Init.ResolvedType())
	}
}

func TestDecorateBinaryExprTypes(t *testing.T) {
	input := `
let a: number = 1
let sum = a + 2
let cmp = a < 2
let both = true && false
`
	prog := parseProgram(t, input)
	types := DecorateProgram(prog, nil)

	if types["sum"] != TypeNumber {
		t.Errorf("types[sum] = %q, want number", types["sum"])
	}
	if types["cmp"] != TypeBool {
		t.Errorf("types[cmp] = %q, want bool", types["cmp"])
	}
	if types["both"] != TypeBool {
		t.Errorf("types[both] = %q, want bool", types["both"])
	}

	cmp := prog.Stmts[2].(*VarDecl).Init.(*BinaryExpr)
	if cmp.ResolvedType() != TypeBool {
		t.Errorf("comparison node type = %q, want bool", cmp.ResolvedType())
	}
	if cmp.Left.ResolvedType() != TypeNumber {
		t.Errorf("comparison left type = %q, want number", cmp.Left.ResolvedType())
	}
}

func TestDecorateCallArguments(t *testing.T) {
	sigs := fakeSigs{"lv_label_set_text": ""}
	input := `
function setup(label: lv_obj, msg: string) {
	lv_label_set_text(label, msg)
}
`
	prog := parseProgram(t, input)
	DecorateProgram(prog, sigs)

	fn := prog.Stmts[0].(*FunctionDecl)
	call := fn.Body.Stmts[0].(*ExprStmt).Expr.(*CallExpr)
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
	if call.Args[0].ResolvedType() != Type("lv_obj") {
		t.Errorf("arg[0] type = %q, want lv_obj", call.Args[0].ResolvedType())
	}
	if call.Args[1].ResolvedType() != TypeString {
		t.Errorf("arg[1] type = %q, want string", call.Args[1].ResolvedType())
	}
}

func TestDecorateAssignTakesTargetType(t *testing.T) {
	input := `
let x: number = 0
function f() { x = 5 }
`
	prog := parseProgram(t, input)
	DecorateProgram(prog, nil)

	fn := prog.Stmts[1].(*FunctionDecl)
	assign := fn.Body.Stmts[0].(*ExprStmt).Expr.(*AssignExpr)
	if assign.ResolvedType() != TypeNumber {
		t.Errorf("assignment type = %q, want number", assign.ResolvedType())
	}
}

func TestDecorateUnaryAndUpdate(t *testing.T) {
	input := `
let n: number = 1
let neg = -n
let f = !true
function g() { n++ }
`
	prog := parseProgram(t, input)
	DecorateProgram(prog, nil)

	if prog.Stmts[1].(*VarDecl).Init.ResolvedType() != TypeNumber {
		t.Error("negation should carry its operand's type")
	}
	if prog.Stmts[2].(*VarDecl).Init.ResolvedType() != TypeBool {
		t.Error("logical not should carry its operand's type")
	}
	upd := prog.Stmts[3].(*FunctionDecl).Body.Stmts[0].(*ExprStmt).Expr.(*UpdateExpr)
	if upd.ResolvedType() != TypeNumber {
		t.Errorf("update type = %q, want number", upd.ResolvedType())
	}
}

func TestDecorateIdempotent(t *testing.T) {
	sigs := fakeSigs{"lv_btn_create": Type("lv_obj")}
	input := `
function setup(parent: lv_obj) {
	let btn = lv_btn_create(parent)
	let count = 0
	count = count + 1
}
`
	prog := parseProgram(t, input)
	first := DecorateProgram(prog, sigs)
	second := DecorateProgram(prog, sigs)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second pass differs:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestCalleeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"f()", "f", true},
		{"ui.make()", "ui.make", true},
		{"a.b.c()", "a.b.c", true},
		{"table[0]()", "", false},
	}

	for _, tc := range tests {
		call := parseExpr(t, tc.input).(*CallExpr)
		name, ok := CalleeName(call.Callee)
		if ok != tc.ok || name != tc.want {
			t.Errorf("CalleeName(%q) = %q, %t; want %q, %t", tc.input, name, ok, tc.want, tc.ok)
		}
	}
}
