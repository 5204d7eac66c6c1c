package compiler

import (
	"strings"
	"testing"
)

// Integration tests: drive the whole front end (parse -> decorate ->
// analyze) over complete scripts.

func TestFrontEndCounterScript(t *testing.T) {
	source := `let count = 0;
let countLabel;

function onClick(e) {
	count++;
	lv_label_set_text(countLabel, "count: " + count);
}

function setup(parent: lv_obj) {
	countLabel = lv_label_create(parent);
	let btn = lv_btn_create(parent);
	lv_obj_align(btn, LV_ALIGN_CENTER, 0, 0);
	lv_obj_add_event_cb(btn, onClick, LV_EVENT_CLICKED, null);
}`

	prog, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	sigs := fakeSigs{
		"lv_btn_create":   TypeObj,
		"lv_label_create": TypeObj,
	}
	types := DecorateProgram(prog, sigs)

	if types["count"] != TypeNumber {
		t.Errorf("types[count] = %q, want number", types["count"])
	}
	if types["onClick"] != TypeFunction {
		t.Errorf("types[onClick] = %q, want function", types["onClick"])
	}
	if types["setup.parent"] != TypeObj {
		t.Errorf("types[setup.parent] = %q, want lv_obj", types["setup.parent"])
	}
	if types["setup.btn"] != TypeObj {
		t.Errorf("types[setup.btn] = %q, want lv_obj", types["setup.btn"])
	}

	if diags := AnalyzeProgram(prog); len(diags) != 0 {
		t.Errorf("expected clean analysis, got: %v", diags)
	}
}

func TestFrontEndThemeScript(t *testing.T) {
	source := `const accent: color = lv_color_hex(0xFF00FF);
let title: cstring = "Dashboard";

function apply(scr: lv_obj) {
	lv_obj_set_bg_color(scr, accent);
}`

	prog, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	types := DecorateProgram(prog, fakeSigs{"lv_color_hex": TypeColor})

	if types["accent"] != TypeColor {
		t.Errorf("types[accent] = %q, want color", types["accent"])
	}
	if types["title"] != TypeCstring {
		t.Errorf("types[title] = %q, want cstring", types["title"])
	}

	call, ok := prog.Stmts[0].(*VarDecl).Init.(*CallExpr)
	if !ok {
		t.Fatalf("accent initializer is not a call")
	}
	if call.ResolvedType() != TypeColor {
		t.Errorf("lv_color_hex call decorated as %q, want color", call.ResolvedType())
	}

	if diags := AnalyzeProgram(prog); len(diags) != 0 {
		t.Errorf("expected clean analysis, got: %v", diags)
	}
}

func TestFrontEndDiagnostics(t *testing.T) {
	source := `const limit = 3;

function f() {
	limit = 4;
	return 1;
	let dead = 2;
}

let x = mystery;`

	prog, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	a := NewAnalyzer()
	a.Analyze(prog)

	wantLines := map[string]int{
		"cannot assign to 'limit' declared const": 4,
		"unreachable code after return":           6,
		"variable 'mystery' may be undefined":     9,
	}
	for want, line := range wantLines {
		found := false
		for _, d := range a.Diagnostics() {
			if strings.Contains(d.Msg, want) {
				found = true
				if d.Pos.Line != line {
					t.Errorf("%q reported at line %d, want %d", want, d.Pos.Line, line)
				}
				break
			}
		}
		if !found {
			t.Errorf("missing diagnostic %q in %v", want, a.Errors())
		}
	}

	if !a.HasErrors() {
		t.Errorf("const reassignment should count as an error")
	}
}
