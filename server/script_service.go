package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/glintlang/glint/bundle"
	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/gen"
	"github.com/glintlang/glint/interp"
)

// ScriptService implements the glint.v1.ScriptService procedures: validate,
// dry-run, translate, and store scripts. Dry runs execute against the
// recording stub host; nothing a pushed script does reaches a real GUI.
type ScriptService struct {
	cat   *catalog.Catalog
	allow *catalog.AllowList
	store *Store // nil disables Push/Get
}

// NewScriptService creates a ScriptService. allow may be nil (every
// capability permitted); store may be nil (no persistence).
func NewScriptService(cat *catalog.Catalog, allow *catalog.AllowList, store *Store) *ScriptService {
	return &ScriptService{cat: cat, allow: allow, store: store}
}

// Check validates source without executing it: parse first, then the
// static analyzer. Warnings leave the script valid.
func (s *ScriptService) Check(
	ctx context.Context,
	req *connect.Request[CheckRequest],
) (*connect.Response[CheckResponse], error) {
	source := req.Msg.Source
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	res := compiler.Validate(source)
	if !res.Valid {
		return connect.NewResponse(&CheckResponse{
			Valid: false,
			Diagnostics: []Diagnostic{{
				Severity: "error",
				Message:  res.Err.Msg,
				Line:     res.Err.Pos.Line,
				Column:   res.Err.Pos.Column,
			}},
		}), nil
	}

	a := compiler.NewAnalyzer()
	a.Analyze(res.Program)

	var diags []Diagnostic
	for _, d := range a.Diagnostics() {
		sev := "error"
		if d.Warning {
			sev = "warning"
		}
		diags = append(diags, Diagnostic{
			Severity: sev,
			Message:  d.Msg,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
		})
	}

	return connect.NewResponse(&CheckResponse{
		Valid:       !a.HasErrors(),
		Diagnostics: diags,
	}), nil
}

// Run executes source against the stub host and reports the displayed
// result plus the capability trace. Script failures come back in the
// response body, matching how a dry run is expected to fail.
func (s *ScriptService) Run(
	ctx context.Context,
	req *connect.Request[RunRequest],
) (*connect.Response[RunResponse], error) {
	source := req.Msg.Source
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	args := make([]interp.Value, len(req.Msg.Args))
	for i, raw := range req.Msg.Args {
		v, err := valueFromArg(raw)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("arg %d: %w", i, err))
		}
		args[i] = v
	}

	prog, err := compiler.Parse(source)
	if err != nil {
		return connect.NewResponse(&RunResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		}), nil
	}

	host := interp.NewStubHost()
	in := interp.New(prog)
	bindErr := in.Bind(interp.Bindings{
		Globals: host.Globals(),
		Host:    host.Table(s.cat),
		Catalog: s.cat,
		Allow:   s.allow,
		Events:  &interp.EventRecorder{},
	})
	if bindErr != nil {
		return connect.NewResponse(&RunResponse{
			Success:      false,
			ErrorMessage: bindErr.Error(),
			Trace:        traceOf(host),
		}), nil
	}

	result := interp.Undefined
	if req.Msg.Fn != "" {
		result, err = in.Exec(req.Msg.Fn, args...)
		if err != nil {
			return connect.NewResponse(&RunResponse{
				Success:      false,
				ErrorMessage: err.Error(),
				Trace:        traceOf(host),
			}), nil
		}
	}

	return connect.NewResponse(&RunResponse{
		Success: true,
		Result:  result.Display(),
		Trace:   traceOf(host),
	}), nil
}

// Emit translates source to the requested target.
func (s *ScriptService) Emit(
	ctx context.Context,
	req *connect.Request[EmitRequest],
) (*connect.Response[EmitResponse], error) {
	source := req.Msg.Source
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}
	if req.Msg.Target != "script" && req.Msg.Target != "c" {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("target must be %q or %q, got %q", "script", "c", req.Msg.Target))
	}

	prog, err := compiler.Parse(source)
	if err != nil {
		return connect.NewResponse(&EmitResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		}), nil
	}

	var text string
	if req.Msg.Target == "script" {
		text, err = gen.EmitScript(prog, s.cat)
	} else {
		text, err = gen.EmitC(prog, s.cat)
	}
	if err != nil {
		return connect.NewResponse(&EmitResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		}), nil
	}

	return connect.NewResponse(&EmitResponse{Success: true, Text: text}), nil
}

// Push builds a bundle from source and stores it under name. The returned
// id is the hex content hash of the normalized script.
func (s *ScriptService) Push(
	ctx context.Context,
	req *connect.Request[PushRequest],
) (*connect.Response[PushResponse], error) {
	if s.store == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("server has no script store"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}
	if req.Msg.Source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	b, err := bundle.Build(req.Msg.Name, req.Msg.Source, s.emitPair())
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	data, err := bundle.Marshal(b)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if err := s.store.Save(req.Msg.Name, req.Msg.Source, data); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&PushResponse{
		Id: hex.EncodeToString(b.ScriptHash[:]),
	}), nil
}

// Get fetches a stored script and its bundle by name.
func (s *ScriptService) Get(
	ctx context.Context,
	req *connect.Request[GetRequest],
) (*connect.Response[GetResponse], error) {
	if s.store == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("server has no script store"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}

	source, data, err := s.store.Load(req.Msg.Name)
	if err != nil {
		if errors.Is(err, ErrScriptNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("script %q not found", req.Msg.Name))
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&GetResponse{
		Name:   req.Msg.Name,
		Source: source,
		Bundle: data,
	}), nil
}

// emitPair adapts the two generators into the injected emit function the
// bundle package expects.
func (s *ScriptService) emitPair() bundle.EmitFunc {
	return func(source string) (string, string, error) {
		prog, err := compiler.Parse(source)
		if err != nil {
			return "", "", err
		}
		script, err := gen.EmitScript(prog, s.cat)
		if err != nil {
			return "", "", err
		}
		c, err := gen.EmitC(prog, s.cat)
		if err != nil {
			return "", "", err
		}
		return script, c, nil
	}
}

// valueFromArg converts a JSON-decoded scalar to a runtime value.
func valueFromArg(v interface{}) (interp.Value, error) {
	switch x := v.(type) {
	case nil:
		return interp.Null, nil
	case bool:
		return interp.FromBool(x), nil
	case float64:
		return interp.FromNumber(x), nil
	case string:
		return interp.FromString(x), nil
	default:
		return interp.Undefined, fmt.Errorf("unsupported argument type %T", v)
	}
}

// traceOf renders the stub host's recorded calls.
func traceOf(host *interp.StubHost) []TraceEntry {
	calls := host.Calls()
	if len(calls) == 0 {
		return nil
	}
	trace := make([]TraceEntry, len(calls))
	for i, c := range calls {
		entry := TraceEntry{Capability: c.Name, Result: c.Result.Display()}
		if len(c.Args) > 0 {
			entry.Args = make([]string, len(c.Args))
			for j, a := range c.Args {
				entry.Args[j] = a.Display()
			}
		}
		trace[i] = entry
	}
	return trace
}
