package integration_test

import (
	"context"
	"encoding/hex"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/glintlang/glint/bundle"
	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/gen"
	"github.com/glintlang/glint/interp"
	"github.com/glintlang/glint/server"
)

// ---------------------------------------------------------------------------
// Integration test helpers
// ---------------------------------------------------------------------------

const integrationCatalogJSON = `{
	"functions": {
		"lv_scr_act": {"args": [], "return": "lv_obj_t *", "runtimeName": "lv_screen_active"},
		"lv_btn_create": {"args": ["lv_obj_t *"], "return": "lv_obj_t *"},
		"lv_label_create": {"args": ["lv_obj_t *"], "return": "lv_obj_t *"},
		"lv_label_set_text": {"args": ["lv_obj_t *", "const char *"], "return": "void"},
		"lv_obj_set_bg_color": {"args": ["lv_obj_t *", "lv_color_t"], "return": "void"},
		"lv_color_hex": {"args": ["uint32_t"], "return": "lv_color_t"},
		"lv_obj_add_event_cb": {"args": ["lv_obj_t *", "lv_event_cb_t", "lv_event_code_t", "void *"], "return": "void"},
		"lv_obj_del": {"args": ["lv_obj_t *"], "return": "void"}
	},
	"constants": {
		"LV_EVENT_CLICKED": 7,
		"LV_ALIGN_CENTER": 9
	}
}`

func integrationCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.ParseJSON([]byte(integrationCatalogJSON))
	if err != nil {
		t.Fatalf("catalog fixture failed to parse: %v", err)
	}
	return c
}

// bindScript runs the front half of the pipeline: parse, bind against a
// stub host, execute the top-level statements. The bind error comes back
// to the caller so gate tests can inspect it.
func bindScript(t *testing.T, cat *catalog.Catalog, allow *catalog.AllowList, src string) (*interp.Interp, *interp.StubHost, *interp.EventRecorder, error) {
	t.Helper()
	prog, err := compiler.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	host := interp.NewStubHost()
	rec := &interp.EventRecorder{}
	in := interp.New(prog)
	err = in.Bind(interp.Bindings{
		Globals: host.Globals(),
		Host:    host.Table(cat),
		Catalog: cat,
		Allow:   allow,
		Events:  rec,
	})
	return in, host, rec, err
}

func mustBindScript(t *testing.T, cat *catalog.Catalog, src string) (*interp.Interp, *interp.StubHost, *interp.EventRecorder) {
	t.Helper()
	in, host, rec, err := bindScript(t, cat, nil, src)
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	return in, host, rec
}

func emitPair(cat *catalog.Catalog) bundle.EmitFunc {
	return func(source string) (string, string, error) {
		prog, err := compiler.Parse(source)
		if err != nil {
			return "", "", err
		}
		script, err := gen.EmitScript(prog, cat)
		if err != nil {
			return "", "", err
		}
		c, err := gen.EmitC(prog, cat)
		if err != nil {
			return "", "", err
		}
		return script, c, nil
	}
}

func newStore(t *testing.T) *server.Store {
	t.Helper()
	store, err := server.OpenStore(filepath.Join(t.TempDir(), "scripts.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// ---------------------------------------------------------------------------
// Language pipeline
// ---------------------------------------------------------------------------

func TestPipelineBuildsWidgetTree(t *testing.T) {
	cat := integrationCatalog(t)
	_, host, _ := mustBindScript(t, cat, `
function label(parent, text) {
	let l = lv_label_create(parent);
	lv_label_set_text(l, text);
	return l;
}

let scr = lv_scr_act();
let btn = lv_btn_create(scr);
label(btn, "Save");
`)

	want := []string{
		"lv_screen_active",
		"lv_btn_create",
		"lv_label_create",
		interp.ConverterName,
		"lv_label_set_text",
	}
	got := host.CallNames()
	if len(got) != len(want) {
		t.Fatalf("trace = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	calls := host.Calls()
	conv := calls[3]
	if len(conv.Args) != 1 || conv.Args[0].Display() != "Save" {
		t.Errorf("converter args = %v, want [Save]", conv.Args)
	}
	setText := calls[4]
	if len(setText.Args) != 2 || setText.Args[0].Display() != "3" {
		t.Errorf("lv_label_set_text target = %v, want label handle 3", setText.Args)
	}
}

func TestPipelineEventCallbackMutatesGlobals(t *testing.T) {
	cat := integrationCatalog(t)
	in, _, rec := mustBindScript(t, cat, `
let clicks = 0;

function onClick(e) {
	clicks += 1;
}

function clickCount() { return clicks; }

let btn = lv_btn_create(lv_scr_act());
lv_obj_add_event_cb(btn, onClick, LV_EVENT_CLICKED, null);
`)

	regs := rec.Registrations()
	if len(regs) != 1 {
		t.Fatalf("registrations = %d, want 1", len(regs))
	}
	if regs[0].Code.Display() != "7" {
		t.Errorf("event code = %s, want 7 (LV_EVENT_CLICKED)", regs[0].Code.Display())
	}

	for i := 0; i < 2; i++ {
		if _, err := rec.Fire(in, 0); err != nil {
			t.Fatalf("firing callback: %v", err)
		}
	}
	v, err := in.Exec("clickCount")
	if err != nil {
		t.Fatalf("Exec(clickCount) failed: %v", err)
	}
	if v.Display() != "2" {
		t.Errorf("clickCount() = %s, want 2", v.Display())
	}
}

func TestPipelinePolicyGateBlocks(t *testing.T) {
	cat := integrationCatalog(t)
	p, err := catalog.ParsePolicy(`
[capabilities]
lv_scr_act = true
lv_btn_create = true
lv_obj_del = false
`)
	if err != nil {
		t.Fatalf("policy failed to parse: %v", err)
	}

	_, _, _, err = bindScript(t, cat, p.Allow, `lv_obj_del(lv_btn_create(lv_scr_act()));`)
	if err == nil {
		t.Fatal("expected denied capability to fail the run")
	}
	if !strings.Contains(err.Error(), "lv_obj_del is not allowed") {
		t.Errorf("error = %v, want mention of lv_obj_del being disallowed", err)
	}

	// The allowed subset still runs clean under the same policy.
	_, host, _, err := bindScript(t, cat, p.Allow, `lv_btn_create(lv_scr_act());`)
	if err != nil {
		t.Fatalf("allowed subset failed: %v", err)
	}
	if len(host.Calls()) != 2 {
		t.Errorf("trace length = %d, want 2", len(host.Calls()))
	}
}

func TestPipelineEmitTargetsShareSemantics(t *testing.T) {
	cat := integrationCatalog(t)
	src := `
function twice(x) {
	return x * 2;
}

let scr = lv_scr_act();
let lbl = lv_label_create(scr);
let width = twice(60);
lv_label_set_text(lbl, "hello");
`
	prog, err := compiler.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	script, err := gen.EmitScript(prog, cat)
	if err != nil {
		t.Fatalf("EmitScript failed: %v", err)
	}
	for _, want := range []string{
		"lv.label_create(scr)",
		`lv.label_set_text(lbl, host.cstring("hello"));`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script target missing %q:\n%s", want, script)
		}
	}

	c, err := gen.EmitC(prog, cat)
	if err != nil {
		t.Fatalf("EmitC failed: %v", err)
	}
	for _, want := range []string{
		"int twice(int x)",
		`lv_label_set_text(lbl, "hello");`,
	} {
		if !strings.Contains(c, want) {
			t.Errorf("C target missing %q:\n%s", want, c)
		}
	}
	if strings.Contains(c, "host.cstring") {
		t.Errorf("C target leaked the converter spelling:\n%s", c)
	}
}

func TestPipelineBundleVerifyCatchesTamper(t *testing.T) {
	cat := integrationCatalog(t)
	emit := emitPair(cat)

	src := `let scr = lv_scr_act();
lv_btn_create(scr);
`
	b, err := bundle.Build("tamper-check", src, emit)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := bundle.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := bundle.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if err := bundle.Verify(got, emit); err != nil {
		t.Fatalf("Verify of untouched bundle failed: %v", err)
	}

	got.Source = got.Source + "\nlet extra = 1;"
	err = bundle.Verify(got, emit)
	if err == nil {
		t.Fatal("expected tampered source to fail verification")
	}
	if !strings.Contains(err.Error(), "script hash mismatch") {
		t.Errorf("error = %v, want script hash mismatch", err)
	}
}

// ---------------------------------------------------------------------------
// Connect transport
// ---------------------------------------------------------------------------

func TestTransportCheckAndRun(t *testing.T) {
	cat := integrationCatalog(t)
	srv := server.New(cat)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	checkClient := connect.NewClient[server.CheckRequest, server.CheckResponse](
		ts.Client(), ts.URL+server.ProcedureCheck, server.WithJSONCodec())
	runClient := connect.NewClient[server.RunRequest, server.RunResponse](
		ts.Client(), ts.URL+server.ProcedureRun, server.WithJSONCodec())

	bad, err := checkClient.CallUnary(context.Background(), connect.NewRequest(&server.CheckRequest{
		Source: `let = 5;`,
	}))
	if err != nil {
		t.Fatalf("Check over HTTP failed: %v", err)
	}
	if bad.Msg.Valid {
		t.Error("syntax error reported as valid")
	}
	if len(bad.Msg.Diagnostics) == 0 || bad.Msg.Diagnostics[0].Severity != "error" {
		t.Errorf("diagnostics = %+v, want one error", bad.Msg.Diagnostics)
	}

	run, err := runClient.CallUnary(context.Background(), connect.NewRequest(&server.RunRequest{
		Source: `let scr = lv_scr_act();
function add(a, b) { return a + b; }`,
		Fn:   "add",
		Args: []interface{}{5, 3},
	}))
	if err != nil {
		t.Fatalf("Run over HTTP failed: %v", err)
	}
	if !run.Msg.Success {
		t.Fatalf("run failed: %s", run.Msg.ErrorMessage)
	}
	if run.Msg.Result != "8" {
		t.Errorf("result = %q, want 8", run.Msg.Result)
	}
	if len(run.Msg.Trace) != 1 || run.Msg.Trace[0].Capability != "lv_screen_active" {
		t.Errorf("trace = %+v, want the screen lookup only", run.Msg.Trace)
	}
}

func TestTransportScriptFailureStaysInBody(t *testing.T) {
	cat := integrationCatalog(t)
	srv := server.New(cat)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	runClient := connect.NewClient[server.RunRequest, server.RunResponse](
		ts.Client(), ts.URL+server.ProcedureRun, server.WithJSONCodec())

	resp, err := runClient.CallUnary(context.Background(), connect.NewRequest(&server.RunRequest{
		Source: `function boom() { return missing(); }`,
		Fn:     "boom",
	}))
	if err != nil {
		t.Fatalf("transport error for a script failure: %v", err)
	}
	if resp.Msg.Success {
		t.Error("calling an undefined function reported success")
	}
	if resp.Msg.ErrorMessage == "" {
		t.Error("script failure carried no error message")
	}
}

func TestTransportPushAndGet(t *testing.T) {
	cat := integrationCatalog(t)
	store := newStore(t)
	srv := server.New(cat, server.WithStore(store))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	pushClient := connect.NewClient[server.PushRequest, server.PushResponse](
		ts.Client(), ts.URL+server.ProcedurePush, server.WithJSONCodec())
	getClient := connect.NewClient[server.GetRequest, server.GetResponse](
		ts.Client(), ts.URL+server.ProcedureGet, server.WithJSONCodec())

	src := `let scr = lv_scr_act();
lv_btn_create(scr);
`
	pushed, err := pushClient.CallUnary(context.Background(), connect.NewRequest(&server.PushRequest{
		Name:   "home",
		Source: src,
	}))
	if err != nil {
		t.Fatalf("Push over HTTP failed: %v", err)
	}
	if len(pushed.Msg.Id) != 64 {
		t.Fatalf("id = %q, want 64 hex chars", pushed.Msg.Id)
	}

	got, err := getClient.CallUnary(context.Background(), connect.NewRequest(&server.GetRequest{Name: "home"}))
	if err != nil {
		t.Fatalf("Get over HTTP failed: %v", err)
	}
	if got.Msg.Source != src {
		t.Errorf("source round trip changed the script:\n%q\n%q", src, got.Msg.Source)
	}

	b, err := bundle.Unmarshal(got.Msg.Bundle)
	if err != nil {
		t.Fatalf("returned bundle failed to unmarshal: %v", err)
	}
	if err := bundle.Verify(b, emitPair(cat)); err != nil {
		t.Errorf("returned bundle failed verification: %v", err)
	}
	if hex.EncodeToString(b.ScriptHash[:]) != pushed.Msg.Id {
		t.Errorf("bundle hash %x does not match pushed id %s", b.ScriptHash, pushed.Msg.Id)
	}
}
