package gen

import (
	"strings"
	"testing"
)

func emitC(t *testing.T, src string) string {
	t.Helper()
	out, err := EmitC(mustParse(t, src), genCatalog(t))
	if err != nil {
		t.Fatalf("EmitC failed: %v", err)
	}
	return out
}

func TestEmitCForLoopKeepsNumericShape(t *testing.T) {
	out := emitC(t, "function h() { let t:number = 0; for (let i:number = 0; i < n; i++) { t = t + i; } return t; }")

	for _, want := range []string{
		"int h(void)",
		"int t = 0;",
		"for (int i = 0; i < n; i++) {",
		"t = t + i;",
		"return t;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "i < n") {
		t.Errorf("loop condition text changed:\n%s", out)
	}
}

func TestEmitCTypeMap(t *testing.T) {
	out := emitC(t, "function f(a:number, b:bool, c:string, d:cstring, e:lv_obj, g:color):bool { return b; }")

	want := "bool f(int a, bool b, char * c, char * d, lv_obj_t * e, lv_color_t g)"
	if !strings.Contains(out, want) {
		t.Errorf("signature mismatch, want %q in:\n%s", want, out)
	}
}

func TestEmitCVoidForValuelessFunctions(t *testing.T) {
	out := emitC(t, "function quit(code:number, hard:bool) { lv_obj_del(target); }")

	if !strings.Contains(out, "void quit(int code, bool hard)") {
		t.Errorf("valueless function should render void:\n%s", out)
	}
}

func TestEmitCEventCallbackHeuristic(t *testing.T) {
	src := `let counter = 0;
let btn = lv_btn_create(lv_scr_act());
function onClick(e) {
	counter = counter + 1;
}
function twice(x) {
	return x + x;
}
let y = twice(2);
lv_obj_add_event_cb(btn, onClick, LV_EVENT_CLICKED, null);`

	out := emitC(t, src)

	if !strings.Contains(out, "void onClick(lv_event_t * e) {") {
		t.Errorf("uncalled single-parameter function should render as callback:\n%s", out)
	}
	if !strings.Contains(out, "int twice(int x)") {
		t.Errorf("called single-parameter function should keep its shape:\n%s", out)
	}
	if !strings.Contains(out, "lv_obj_add_event_cb(btn, onClick, LV_EVENT_CLICKED, NULL);") {
		t.Errorf("registration call mismatch:\n%s", out)
	}
}

func TestEmitCTopLevelLayout(t *testing.T) {
	src := `let counter = 0;
let scr = lv_scr_act();
let btn = lv_btn_create(scr);
lv_obj_del(btn);`

	out := emitC(t, src)

	for _, want := range []string{
		`#include "lvgl.h"`,
		"int counter = 0;",
		"lv_obj_t * scr;",
		"lv_obj_t * btn;",
		"void ui_init(void) {",
		"scr = lv_screen_active();",
		"btn = lv_btn_create(scr);",
		"lv_obj_del(btn);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Statements stay in source order inside the init function.
	initAt := strings.Index(out, "void ui_init(void)")
	scrAt := strings.Index(out, "scr = lv_screen_active();")
	btnAt := strings.Index(out, "btn = lv_btn_create(scr);")
	delAt := strings.Index(out, "lv_obj_del(btn);")
	if !(initAt < scrAt && scrAt < btnAt && btnAt < delAt) {
		t.Errorf("init statements out of order:\n%s", out)
	}
}

func TestEmitCConcatHoisting(t *testing.T) {
	src := `let lbl = lv_label_create(lv_scr_act());
let n = 5;
let who:string = "Ada";
lv_label_set_text(lbl, "count: " + n);
lv_label_set_text(lbl, "hi " + who + "!");`

	out := emitC(t, src)

	for _, want := range []string{
		"static char buf_1[64];",
		`snprintf(buf_1, sizeof(buf_1), "count: %d", n);`,
		"lv_label_set_text(lbl, buf_1);",
		"static char buf_2[64];",
		`snprintf(buf_2, sizeof(buf_2), "hi %s!", who);`,
		"lv_label_set_text(lbl, buf_2);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// The write lands between the buffer declaration and the call.
	declAt := strings.Index(out, "static char buf_1[64];")
	writeAt := strings.Index(out, "snprintf(buf_1")
	callAt := strings.Index(out, "lv_label_set_text(lbl, buf_1);")
	if !(declAt < writeAt && writeAt < callAt) {
		t.Errorf("hoisted statements out of order:\n%s", out)
	}
}

func TestEmitCColorPreamble(t *testing.T) {
	src := `let btn = lv_btn_create(lv_scr_act());
let accent:color = 0xFF00FF;
lv_obj_set_bg_color(btn, 0xFF0000);
lv_obj_set_bg_color(btn, accent);`

	out := emitC(t, src)

	for _, want := range []string{
		"lv_color_t accent;",
		"accent = lv_color_hex(16711935);",
		"lv_color_t color_1 = lv_color_hex(16711680);",
		"lv_obj_set_bg_color(btn, color_1);",
		"lv_obj_set_bg_color(btn, accent);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEmitCStringLiteralsPassStraightThrough(t *testing.T) {
	out := emitC(t, "lv_label_set_text(lbl, \"hello\");")

	if !strings.Contains(out, `lv_label_set_text(lbl, "hello");`) {
		t.Errorf("string literal should not be wrapped in the c target:\n%s", out)
	}
	if strings.Contains(out, "host.cstring") {
		t.Errorf("converter call leaked into c output:\n%s", out)
	}
}

func TestEmitCUnknownCapabilityKeepsName(t *testing.T) {
	out := emitC(t, "lv_mystery_fn(1, 2);")

	if !strings.Contains(out, "lv_mystery_fn(1, 2);") {
		t.Errorf("unknown capability should keep its symbol:\n%s", out)
	}
}

func TestEmitCNestedFunctionIsAnError(t *testing.T) {
	_, err := EmitC(mustParse(t, "function outer() { function inner() { } }"), genCatalog(t))
	if err == nil {
		t.Fatal("expected an error for a nested function")
	}
	if !strings.Contains(err.Error(), "inner") {
		t.Errorf("error should name the nested function, got %v", err)
	}
}
