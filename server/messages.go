package server

// Procedure paths for the ScriptService. Connect routes one handler per
// procedure, so these double as mux patterns.
const (
	ProcedureCheck = "/glint.v1.ScriptService/Check"
	ProcedureRun   = "/glint.v1.ScriptService/Run"
	ProcedureEmit  = "/glint.v1.ScriptService/Emit"
	ProcedurePush  = "/glint.v1.ScriptService/Push"
	ProcedureGet   = "/glint.v1.ScriptService/Get"
)

// CheckRequest asks for validation of a script without executing it.
type CheckRequest struct {
	Source string `json:"source"`
}

// Diagnostic is one validation finding with a 1-based source position.
type Diagnostic struct {
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// CheckResponse reports validity plus every diagnostic found. Valid means
// the script parses and has no semantic errors; warnings alone leave it
// valid.
type CheckResponse struct {
	Valid       bool         `json:"valid"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// RunRequest executes a script against the recording stub host. Fn names
// the function to call after top-level execution; empty runs top level
// only. Args accept JSON scalars (numbers, strings, booleans, null).
type RunRequest struct {
	Source string        `json:"source"`
	Fn     string        `json:"fn,omitempty"`
	Args   []interface{} `json:"args,omitempty"`
}

// TraceEntry is one recorded capability invocation from a dry run.
type TraceEntry struct {
	Capability string   `json:"capability"`
	Args       []string `json:"args,omitempty"`
	Result     string   `json:"result,omitempty"`
}

// RunResponse carries the displayed result plus the host-call trace.
// Script failures come back with Success false; transport-level errors
// use connect codes instead.
type RunResponse struct {
	Success      bool         `json:"success"`
	Result       string       `json:"result,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	Trace        []TraceEntry `json:"trace,omitempty"`
}

// EmitRequest translates a script to one of the two targets.
type EmitRequest struct {
	Source string `json:"source"`
	Target string `json:"target"` // "script" or "c"
}

// EmitResponse carries the emitted text.
type EmitResponse struct {
	Success      bool   `json:"success"`
	Text         string `json:"text,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// PushRequest stores a named script (and its built bundle) on the server.
type PushRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// PushResponse returns the content identity of the stored script: the
// hex-encoded hash of its normalized form.
type PushResponse struct {
	Id string `json:"id"`
}

// GetRequest fetches a stored script by name.
type GetRequest struct {
	Name string `json:"name"`
}

// GetResponse returns the stored source and the bundle blob (base64 over
// JSON transport).
type GetResponse struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Bundle []byte `json:"bundle,omitempty"`
}
