package server

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/glintlang/glint/catalog"
)

// GlintServer serves the ScriptService over Connect (HTTP/JSON).
type GlintServer struct {
	svc   *ScriptService
	store *Store
	mux   *http.ServeMux
}

// Option configures a GlintServer.
type Option func(*serverConfig)

type serverConfig struct {
	allow *catalog.AllowList
	store *Store
}

// WithAllowList sets the capability policy applied to dry runs. Without
// this, every catalog capability is allowed.
func WithAllowList(allow *catalog.AllowList) Option {
	return func(c *serverConfig) { c.allow = allow }
}

// WithStore sets the script store backing Push and Get. Without this,
// both procedures report failed precondition.
func WithStore(st *Store) Option {
	return func(c *serverConfig) { c.store = st }
}

// New creates a GlintServer bound to the given capability catalog.
func New(cat *catalog.Catalog, opts ...Option) *GlintServer {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	svc := NewScriptService(cat, cfg.allow, cfg.store)

	s := &GlintServer{
		svc:   svc,
		store: cfg.store,
		mux:   http.NewServeMux(),
	}

	codec := WithJSONCodec()
	s.mux.Handle(ProcedureCheck, connect.NewUnaryHandler(ProcedureCheck, svc.Check, codec))
	s.mux.Handle(ProcedureRun, connect.NewUnaryHandler(ProcedureRun, svc.Run, codec))
	s.mux.Handle(ProcedureEmit, connect.NewUnaryHandler(ProcedureEmit, svc.Emit, codec))
	s.mux.Handle(ProcedurePush, connect.NewUnaryHandler(ProcedurePush, svc.Push, codec))
	s.mux.Handle(ProcedureGet, connect.NewUnaryHandler(ProcedureGet, svc.Get, codec))

	return s
}

// Handler exposes the assembled mux, mainly for tests and embedding.
func (s *GlintServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *GlintServer) ListenAndServe(addr string) error {
	fmt.Printf("Glint script service listening on %s\n", addr)
	fmt.Printf("  Connect (HTTP/JSON): http://%s%s\n", addr, ProcedureCheck)
	return http.ListenAndServe(addr, s.mux)
}

// Close releases the store, if any.
func (s *GlintServer) Close() {
	if s.store != nil {
		s.store.Close()
	}
}
