package server

import (
	"context"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/glintlang/glint/catalog"
)

// ---------------------------------------------------------------------------
// Shared test infrastructure for server package tests.
// ---------------------------------------------------------------------------

// serverCatalogJSON is the capability surface the service tests run
// against. lv_scr_act dispatches under a different runtime name to cover
// the rename path in traces.
const serverCatalogJSON = `{
	"functions": {
		"lv_scr_act": {"args": [], "return": "lv_obj_t *", "runtimeName": "lv_screen_active"},
		"lv_btn_create": {"args": ["lv_obj_t *"], "return": "lv_obj_t *"},
		"lv_label_create": {"args": ["lv_obj_t *"], "return": "lv_obj_t *"},
		"lv_label_set_text": {"args": ["lv_obj_t *", "const char *"], "return": "void"},
		"lv_obj_set_bg_color": {"args": ["lv_obj_t *", "lv_color_t"], "return": "void"},
		"lv_color_hex": {"args": ["uint32_t"], "return": "lv_color_t"},
		"lv_obj_add_event_cb": {"args": ["lv_obj_t *", "lv_event_cb_t", "lv_event_code_t", "void *"], "return": "void"}
	},
	"constants": {
		"LV_EVENT_CLICKED": 7,
		"LV_ALIGN_CENTER": 9
	}
}`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.ParseJSON([]byte(serverCatalogJSON))
	if err != nil {
		t.Fatalf("catalog fixture failed to parse: %v", err)
	}
	return c
}

// newTestService creates a ScriptService with no allow list and no store.
func newTestService(t *testing.T) *ScriptService {
	t.Helper()
	return NewScriptService(testCatalog(t), nil, nil)
}

// newStoredService creates a ScriptService over a store in a temp dir.
func newStoredService(t *testing.T) *ScriptService {
	t.Helper()
	return NewScriptService(testCatalog(t), nil, newTestStore(t))
}

// newTestStore opens a fresh store under the test's temp dir and closes
// it on cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := OpenStore(filepath.Join(t.TempDir(), "scripts.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// ---------------------------------------------------------------------------
// Request builders
// ---------------------------------------------------------------------------

func connectReq[T any](msg *T) *connect.Request[T] {
	return connect.NewRequest(msg)
}

func bg() context.Context {
	return context.Background()
}
