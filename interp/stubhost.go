package interp

import (
	"fmt"

	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
)

// StubHost fabricates a host surface: every capability invocation is
// recorded as a trace entry and answered with a synthetic handle or a
// zero value matching the descriptor's return type. The CLI and the
// script service use it to dry-run scripts with no real GUI attached.
type StubHost struct {
	nextID float64
	calls  []HostCall
}

// HostCall is one recorded capability invocation.
type HostCall struct {
	Name   string
	Args   []Value
	Result Value
}

// NewStubHost creates a stub host. Handle ids start at 1 so a zero
// handle keeps meaning "null object".
func NewStubHost() *StubHost {
	return &StubHost{nextID: 1}
}

// Table builds a host function table covering every capability in the
// catalog, including distinct runtime entry-point names.
func (h *StubHost) Table(cat *catalog.Catalog) map[string]HostFunc {
	table := make(map[string]HostFunc)
	if cat == nil {
		return table
	}
	for _, name := range cat.Names() {
		ret, _ := cat.ReturnTypeOf(name)
		table[name] = h.capability(name, ret)
		if desc, ok := cat.Capability(name); ok && desc.RuntimeName != "" {
			table[desc.RuntimeName] = h.capability(desc.RuntimeName, ret)
		}
	}
	return table
}

// Globals returns the converter bindings scripts expect under the host
// namespace: the cstring converter and the color scratch pair.
func (h *StubHost) Globals() map[string]interface{} {
	return map[string]interface{}{
		"host": map[string]interface{}{
			"cstring": Global{
				Fn:     h.record(ConverterName, func() Value { return FromHandle(h.allocID()) }),
				Params: []compiler.Type{compiler.TypeString},
				Return: compiler.TypeCstring,
			},
			"allocColor": Global{
				Fn:     h.record(ColorAllocName, func() Value { return FromHandle(h.allocID()) }),
				Return: compiler.TypeColor,
			},
			"setColor": Global{
				Fn: h.record(ColorWriteName, func() Value { return Undefined }),
			},
		},
	}
}

// Calls returns the recorded trace in invocation order.
func (h *StubHost) Calls() []HostCall {
	return h.calls
}

// CallNames returns just the invoked names, in order.
func (h *StubHost) CallNames() []string {
	names := make([]string, len(h.calls))
	for i, c := range h.calls {
		names[i] = c.Name
	}
	return names
}

// Reset drops the trace and restarts handle allocation.
func (h *StubHost) Reset() {
	h.calls = nil
	h.nextID = 1
}

func (h *StubHost) allocID() float64 {
	id := h.nextID
	h.nextID++
	return id
}

func (h *StubHost) capability(name string, ret compiler.Type) HostFunc {
	return func(args []Value) (Value, error) {
		result := Undefined
		switch {
		case ret.IsHandle():
			result = FromHandle(h.allocID())
		case ret == compiler.TypeNumber || ret == compiler.TypeColor || ret == compiler.TypeCstring:
			result = FromNumber(0)
		case ret == compiler.TypeBool:
			result = False
		case ret == compiler.TypeString:
			result = FromString("")
		}
		h.calls = append(h.calls, HostCall{Name: name, Args: args, Result: result})
		return result, nil
	}
}

func (h *StubHost) record(name string, produce func() Value) HostFunc {
	return func(args []Value) (Value, error) {
		result := produce()
		h.calls = append(h.calls, HostCall{Name: name, Args: args, Result: result})
		return result, nil
	}
}

// ---------------------------------------------------------------------------
// Event recording
// ---------------------------------------------------------------------------

// EventRecorder is a minimal dispatcher that retains registrations so
// tests and dry runs can fire callbacks manually.
type EventRecorder struct {
	regs []EventRegistration
}

// EventRegistration is one retained callback registration.
type EventRegistration struct {
	Target   Value
	Code     Value
	Callback Value
	Scope    *Scope
}

func (r *EventRecorder) Register(target, code, callback Value, scope *Scope) error {
	r.regs = append(r.regs, EventRegistration{Target: target, Code: code, Callback: callback, Scope: scope})
	return nil
}

// Registrations returns the retained registrations in order.
func (r *EventRecorder) Registrations() []EventRegistration {
	return r.regs
}

// Fire invokes the i-th registered callback through the interpreter.
func (r *EventRecorder) Fire(in *Interp, i int, args ...Value) (Value, error) {
	if i < 0 || i >= len(r.regs) {
		return Undefined, fmt.Errorf("no event registration %d", i)
	}
	return in.Call(r.regs[i].Callback, args...)
}
