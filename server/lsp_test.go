package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/glintlang/glint/compiler"
)

// ---------------------------------------------------------------------------
// LSP text extraction helpers
// ---------------------------------------------------------------------------

func TestExtractPrefix_SimpleWord(t *testing.T) {
	text := "let btn"
	pos := protocol.Position{Line: 0, Character: 7}
	prefix := extractPrefix(text, pos)
	if prefix != "btn" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "btn")
	}
}

func TestExtractPrefix_AtStart(t *testing.T) {
	text := "lv_"
	pos := protocol.Position{Line: 0, Character: 3}
	prefix := extractPrefix(text, pos)
	if prefix != "lv_" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "lv_")
	}
}

func TestExtractPrefix_EmptyLine(t *testing.T) {
	text := ""
	pos := protocol.Position{Line: 0, Character: 0}
	prefix := extractPrefix(text, pos)
	if prefix != "" {
		t.Errorf("extractPrefix = %q, want empty string", prefix)
	}
}

func TestExtractPrefix_MultiLine(t *testing.T) {
	text := "let scr = lv_scr_act();\nlet btn = lv_btn"
	pos := protocol.Position{Line: 1, Character: 16}
	prefix := extractPrefix(text, pos)
	if prefix != "lv_btn" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "lv_btn")
	}
}

func TestExtractPrefix_AfterParen(t *testing.T) {
	text := "lv_label_set_text(lbl"
	pos := protocol.Position{Line: 0, Character: 21}
	prefix := extractPrefix(text, pos)
	if prefix != "lbl" {
		t.Errorf("extractPrefix = %q, want %q", prefix, "lbl")
	}
}

func TestExtractPrefix_CursorAtBeginning(t *testing.T) {
	text := "hello"
	pos := protocol.Position{Line: 0, Character: 0}
	prefix := extractPrefix(text, pos)
	if prefix != "" {
		t.Errorf("extractPrefix at position 0 = %q, want empty string", prefix)
	}
}

func TestExtractPrefix_LineBeyondDocument(t *testing.T) {
	text := "single line"
	pos := protocol.Position{Line: 5, Character: 0}
	prefix := extractPrefix(text, pos)
	if prefix != "" {
		t.Errorf("extractPrefix beyond doc = %q, want empty string", prefix)
	}
}

// ---------------------------------------------------------------------------
// extractWord
// ---------------------------------------------------------------------------

func TestExtractWord_SimpleWord(t *testing.T) {
	text := "hello world"
	pos := protocol.Position{Line: 0, Character: 3}
	word := extractWord(text, pos)
	if word != "hello" {
		t.Errorf("extractWord = %q, want %q", word, "hello")
	}
}

func TestExtractWord_SecondWord(t *testing.T) {
	text := "hello world"
	pos := protocol.Position{Line: 0, Character: 8}
	word := extractWord(text, pos)
	if word != "world" {
		t.Errorf("extractWord = %q, want %q", word, "world")
	}
}

func TestExtractWord_CapabilityName(t *testing.T) {
	text := "let b = lv_btn_create(scr);"
	pos := protocol.Position{Line: 0, Character: 12}
	word := extractWord(text, pos)
	if word != "lv_btn_create" {
		t.Errorf("extractWord = %q, want %q", word, "lv_btn_create")
	}
}

func TestExtractWord_ConstantName(t *testing.T) {
	text := "align(LV_ALIGN_CENTER)"
	pos := protocol.Position{Line: 0, Character: 10}
	word := extractWord(text, pos)
	if word != "LV_ALIGN_CENTER" {
		t.Errorf("extractWord = %q, want %q", word, "LV_ALIGN_CENTER")
	}
}

func TestExtractWord_EmptyLine(t *testing.T) {
	text := ""
	pos := protocol.Position{Line: 0, Character: 0}
	word := extractWord(text, pos)
	if word != "" {
		t.Errorf("extractWord = %q, want empty string", word)
	}
}

func TestExtractWord_LineBeyondDocument(t *testing.T) {
	text := "single line"
	pos := protocol.Position{Line: 5, Character: 0}
	word := extractWord(text, pos)
	if word != "" {
		t.Errorf("extractWord beyond doc = %q, want empty string", word)
	}
}

// ---------------------------------------------------------------------------
// boolPtr
// ---------------------------------------------------------------------------

func TestBoolPtr(t *testing.T) {
	p := boolPtr(true)
	if p == nil {
		t.Fatal("boolPtr should not return nil")
	}
	if *p != true {
		t.Errorf("boolPtr(true) = %v, want true", *p)
	}

	p = boolPtr(false)
	if *p != false {
		t.Errorf("boolPtr(false) = %v, want false", *p)
	}
}

// ---------------------------------------------------------------------------
// Position mapping
// ---------------------------------------------------------------------------

func TestLspPos_OneBasedToZeroBased(t *testing.T) {
	got := lspPos(compiler.Position{Line: 3, Column: 5})
	if got.Line != 2 || got.Character != 4 {
		t.Errorf("lspPos = %d:%d, want 2:4", got.Line, got.Character)
	}
}

func TestLspPos_ClampsZeroValue(t *testing.T) {
	got := lspPos(compiler.Position{})
	if got.Line != 0 || got.Character != 0 {
		t.Errorf("lspPos zero value = %d:%d, want 0:0", got.Line, got.Character)
	}
}

func TestRangeAt_ExtendsByLength(t *testing.T) {
	r := rangeAt(compiler.Position{Line: 1, Column: 4}, 6)
	if r.Start.Line != 0 || r.Start.Character != 3 {
		t.Errorf("range start = %d:%d, want 0:3", r.Start.Line, r.Start.Character)
	}
	if r.End.Line != 0 || r.End.Character != 9 {
		t.Errorf("range end = %d:%d, want 0:9", r.End.Line, r.End.Character)
	}
}

// ---------------------------------------------------------------------------
// Catalog-backed logic (complete, hover, definition)
// These call the internal methods directly.
// ---------------------------------------------------------------------------

func newTestLSP(t *testing.T) *LspServer {
	t.Helper()
	return &LspServer{
		cat:  testCatalog(t),
		docs: make(map[string]string),
	}
}

func TestLSP_Complete_Capability(t *testing.T) {
	lsp := newTestLSP(t)

	items := lsp.complete("", "lv_btn")
	if len(items) == 0 {
		t.Fatal("complete for 'lv_btn' should return at least lv_btn_create")
	}
	found := false
	for _, item := range items {
		if item.Label == "lv_btn_create" {
			found = true
			if item.Kind == nil || *item.Kind != protocol.CompletionItemKindFunction {
				t.Error("capability completion should have Kind=Function")
			}
			if item.Detail == nil || *item.Detail != "lv_btn_create(lv_obj): lv_obj" {
				t.Errorf("detail = %v, want signature", item.Detail)
			}
			break
		}
	}
	if !found {
		t.Error("complete for 'lv_btn' should include 'lv_btn_create'")
	}
}

func TestLSP_Complete_Constant(t *testing.T) {
	lsp := newTestLSP(t)

	items := lsp.complete("", "LV_EV")
	found := false
	for _, item := range items {
		if item.Label == "LV_EVENT_CLICKED" {
			found = true
			if item.Kind == nil || *item.Kind != protocol.CompletionItemKindConstant {
				t.Error("constant completion should have Kind=Constant")
			}
			if item.Detail == nil || !strings.Contains(*item.Detail, "7") {
				t.Errorf("detail = %v, want the constant value", item.Detail)
			}
			break
		}
	}
	if !found {
		t.Error("complete for 'LV_EV' should include 'LV_EVENT_CLICKED'")
	}
}

func TestLSP_Complete_DocumentFunction(t *testing.T) {
	lsp := newTestLSP(t)
	text := "function buildUi(title: string) { }\n"

	items := lsp.complete(text, "build")
	found := false
	for _, item := range items {
		if item.Label == "buildUi" {
			found = true
			if item.Kind == nil || *item.Kind != protocol.CompletionItemKindFunction {
				t.Error("document function completion should have Kind=Function")
			}
			break
		}
	}
	if !found {
		t.Error("complete for 'build' should include the document's buildUi")
	}
}

func TestLSP_Complete_Keyword(t *testing.T) {
	lsp := newTestLSP(t)

	items := lsp.complete("", "fun")
	found := false
	for _, item := range items {
		if item.Label == "function" {
			found = true
			if item.Kind == nil || *item.Kind != protocol.CompletionItemKindKeyword {
				t.Error("keyword completion should have Kind=Keyword")
			}
			break
		}
	}
	if !found {
		t.Error("complete for 'fun' should include 'function'")
	}
}

func TestLSP_Complete_NoMatches(t *testing.T) {
	lsp := newTestLSP(t)

	items := lsp.complete("", "zzzzzz")
	if len(items) != 0 {
		t.Errorf("complete for nonsense prefix returned %d items", len(items))
	}
}

func TestLSP_Hover_Capability(t *testing.T) {
	lsp := newTestLSP(t)

	hover := lsp.hover("", "lv_btn_create")
	if hover == nil {
		t.Fatal("hover for 'lv_btn_create' should return a result")
	}
	mc, ok := hover.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatal("hover contents should be MarkupContent")
	}
	if mc.Kind != protocol.MarkupKindMarkdown {
		t.Errorf("hover markup kind = %q, want %q", mc.Kind, protocol.MarkupKindMarkdown)
	}
	if !strings.Contains(mc.Value, "lv_btn_create(lv_obj): lv_obj") {
		t.Errorf("hover missing signature:\n%s", mc.Value)
	}
}

func TestLSP_Hover_RuntimeNameShown(t *testing.T) {
	lsp := newTestLSP(t)

	hover := lsp.hover("", "lv_scr_act")
	if hover == nil {
		t.Fatal("hover for 'lv_scr_act' should return a result")
	}
	mc := hover.Contents.(protocol.MarkupContent)
	if !strings.Contains(mc.Value, "lv_screen_active") {
		t.Errorf("hover missing runtime dispatch name:\n%s", mc.Value)
	}
}

func TestLSP_Hover_Constant(t *testing.T) {
	lsp := newTestLSP(t)

	hover := lsp.hover("", "LV_ALIGN_CENTER")
	if hover == nil {
		t.Fatal("hover for 'LV_ALIGN_CENTER' should return a result")
	}
	mc := hover.Contents.(protocol.MarkupContent)
	if !strings.Contains(mc.Value, "9") {
		t.Errorf("hover missing constant value:\n%s", mc.Value)
	}
}

func TestLSP_Hover_DocumentFunction(t *testing.T) {
	lsp := newTestLSP(t)
	text := "function setup(n: number): number { return n; }"

	hover := lsp.hover(text, "setup")
	if hover == nil {
		t.Fatal("hover for a document function should return a result")
	}
	mc := hover.Contents.(protocol.MarkupContent)
	if !strings.Contains(mc.Value, "setup(n: number): number") {
		t.Errorf("hover missing function signature:\n%s", mc.Value)
	}
}

func TestLSP_Hover_UnknownWord(t *testing.T) {
	lsp := newTestLSP(t)

	if hover := lsp.hover("let q = 1;", "mystery"); hover != nil {
		t.Error("hover for an unknown word should return nil")
	}
}

func TestLSP_Hover_UnknownCapability(t *testing.T) {
	lsp := newTestLSP(t)

	if hover := lsp.hover("", "lv_no_such_fn"); hover != nil {
		t.Error("hover for an uncataloged capability should return nil")
	}
}

func TestLSP_Definition_DocumentFunction(t *testing.T) {
	lsp := newTestLSP(t)
	text := "let a = 1;\nfunction setup() { }\n"

	locations := lsp.definition("file:///t.glt", text, "setup")
	if len(locations) != 1 {
		t.Fatalf("definition returned %d locations, want 1", len(locations))
	}
	if string(locations[0].URI) != "file:///t.glt" {
		t.Errorf("definition URI = %q, want the document", locations[0].URI)
	}
	if locations[0].Range.Start.Line != 1 {
		t.Errorf("definition line = %d, want 1 (zero-based)", locations[0].Range.Start.Line)
	}
}

func TestLSP_Definition_Capability(t *testing.T) {
	lsp := newTestLSP(t)

	locations := lsp.definition("file:///t.glt", "", "lv_btn_create")
	if len(locations) != 1 {
		t.Fatalf("definition returned %d locations, want 1", len(locations))
	}
	if string(locations[0].URI) != "glint://capability/lv_btn_create" {
		t.Errorf("definition URI = %q, want the capability URI", locations[0].URI)
	}
}

func TestLSP_Definition_UnknownWord(t *testing.T) {
	lsp := newTestLSP(t)

	if locations := lsp.definition("file:///t.glt", "let q = 1;", "mystery"); len(locations) > 0 {
		t.Errorf("definition for an unknown word returned %d locations", len(locations))
	}
}

// ---------------------------------------------------------------------------
// LSP document synchronization state
// ---------------------------------------------------------------------------

func TestLSP_DocumentStore(t *testing.T) {
	lsp := newTestLSP(t)

	lsp.mu.Lock()
	lsp.docs["file:///test.glt"] = "let x = 1;"
	lsp.mu.Unlock()

	lsp.mu.Lock()
	text, ok := lsp.docs["file:///test.glt"]
	lsp.mu.Unlock()
	if !ok {
		t.Error("document should be stored after open")
	}
	if text != "let x = 1;" {
		t.Errorf("document text = %q, want %q", text, "let x = 1;")
	}

	lsp.mu.Lock()
	delete(lsp.docs, "file:///test.glt")
	lsp.mu.Unlock()

	lsp.mu.Lock()
	_, ok = lsp.docs["file:///test.glt"]
	lsp.mu.Unlock()
	if ok {
		t.Error("document should be removed after close")
	}
}
