package interp

import (
	"fmt"

	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
)

// Fixed dotted names of the converter globals consulted for automatic
// representation conversions. The code generators emit calls to the
// same names so all three execution modes agree.
const (
	// ConverterName converts a string into a numeric handle wherever a
	// cstring is expected. Required: its absence at the point of need
	// is a RuntimeError.
	ConverterName = "host.cstring"

	// ColorAllocName allocates the reusable color scratch buffer and
	// ColorWriteName encodes a number into it. Both are optional until
	// a color conversion is actually needed.
	ColorAllocName = "host.allocColor"
	ColorWriteName = "host.setColor"
)

// Capability names the interpreter handles itself instead of passing
// through generic host dispatch. The generators special-case the same
// two names.
const (
	EventCapability = "lv_obj_add_event_cb"
	ColorCapability = "lv_color_hex"
)

// EventDispatcher receives callbacks registered through the event
// registration capability. The interpreter never invokes the host for
// that capability; it hands the callback here and returns a no-op
// result. A dispatcher fires a callback later by calling Interp.Call.
type EventDispatcher interface {
	Register(target, eventCode, callback Value, scope *Scope) error
}

// Global declares an external binding with a typed signature so that
// decoration can infer its return type and dispatch can check arity.
type Global struct {
	Fn     HostFunc
	Params []compiler.Type
	Return compiler.Type
}

// Bindings is everything the host supplies before a script executes.
// Globals values may be a Value, a HostFunc, a Global, a Go number,
// string, bool or nil, or a nested map[string]interface{} namespace;
// nesting is flattened into dotted paths.
type Bindings struct {
	Globals   map[string]interface{}
	Host      map[string]HostFunc
	Constants map[string]int64
	Catalog   *catalog.Catalog
	Allow     *catalog.AllowList
	Events    EventDispatcher
}

// Interp executes a parsed program against host bindings. All
// evaluation is synchronous and single-threaded; re-entrant calls (a
// dispatcher firing a registered callback) grow the same call chain.
type Interp struct {
	prog      *compiler.Program
	functions map[string]*compiler.FunctionDecl
	globals   *Scope
	flat      map[string]Value
	host      map[string]HostFunc
	constants map[string]int64
	gate      *catalog.Gate
	events    EventDispatcher

	// Reusable scratch buffer for color conversions, allocated on
	// first use and overwritten by every subsequent conversion.
	colorBuf     Value
	haveColorBuf bool

	bound bool
}

// New wraps a parsed program. Bind must run before Exec.
func New(prog *compiler.Program) *Interp {
	return &Interp{prog: prog}
}

// Bind prepares the program for execution: it flattens the external
// globals, merges constant tables, runs type decoration, registers the
// script's functions, and executes top-level statements in order. A
// second Bind resets all runtime state.
func (in *Interp) Bind(b Bindings) error {
	flat := make(map[string]Value)
	if err := flattenGlobals("", b.Globals, flat); err != nil {
		return err
	}
	in.flat = flat

	in.host = b.Host
	if in.host == nil {
		in.host = make(map[string]HostFunc)
	}

	in.constants = make(map[string]int64)
	if b.Catalog != nil {
		for name, v := range b.Catalog.Constants() {
			in.constants[name] = v
		}
	}
	for name, v := range b.Constants {
		in.constants[name] = v
	}

	in.gate = catalog.NewGate(b.Catalog, b.Allow)
	in.events = b.Events
	in.haveColorBuf = false
	in.colorBuf = Undefined

	compiler.DecorateProgram(in.prog, bindingSigs{in})

	in.globals = NewScope(nil)
	in.functions = make(map[string]*compiler.FunctionDecl)
	for _, fn := range in.prog.Functions() {
		in.defineFunction(fn)
	}
	in.bound = true

	// Top-level statements run once at bind time. A top-level return
	// stops execution early.
	for _, s := range in.prog.Stmts {
		if _, ok := s.(*compiler.FunctionDecl); ok {
			continue
		}
		c, _, err := in.execStmt(s, in.globals)
		if err != nil {
			return err
		}
		if c == ctrlReturn {
			break
		}
	}
	return nil
}

// Exec invokes a declared function by name. Every failure is terminal
// to this call; there is no partial result.
func (in *Interp) Exec(name string, args ...Value) (Value, error) {
	if !in.bound {
		return Undefined, &RuntimeError{Msg: "no bindings: call Bind before Exec"}
	}
	fn, ok := in.functions[name]
	if !ok {
		return Undefined, &RuntimeError{Msg: fmt.Sprintf("function %s is not defined", name)}
	}
	return in.callUser(fn, args, fn)
}

// Call invokes a callable value. Event dispatchers use this to fire
// registered callbacks back into the interpreter.
func (in *Interp) Call(v Value, args ...Value) (Value, error) {
	if !v.IsCallable() {
		return Undefined, &RuntimeError{Msg: fmt.Sprintf("value is not a function, got %s", v.KindName())}
	}
	return in.invokeCallable(v.Fn, args, nil)
}

// Globals returns the root scope holding the script's top-level
// bindings and declared functions.
func (in *Interp) Globals() *Scope {
	return in.globals
}

func (in *Interp) defineFunction(fn *compiler.FunctionDecl) {
	in.functions[fn.Name] = fn
	in.globals.Define(fn.Name, FromCallable(&Callable{Name: fn.Name, Decl: fn}))
}

// bindingSigs feeds decoration with return types from the capability
// catalog and from typed external globals.
type bindingSigs struct {
	in *Interp
}

func (s bindingSigs) ReturnTypeOf(name string) (compiler.Type, bool) {
	if c := s.in.gate.Catalog(); c != nil {
		if t, ok := c.ReturnTypeOf(name); ok {
			return t, true
		}
	}
	if v, ok := s.in.flat[name]; ok && v.IsCallable() && v.Fn.Return != "" {
		return v.Fn.Return, true
	}
	return "", false
}

func flattenGlobals(prefix string, src map[string]interface{}, dst map[string]Value) error {
	for name, raw := range src {
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		switch g := raw.(type) {
		case Value:
			dst[key] = g
		case HostFunc:
			dst[key] = FromCallable(&Callable{Name: key, Host: g})
		case func(args []Value) (Value, error):
			dst[key] = FromCallable(&Callable{Name: key, Host: g})
		case Global:
			dst[key] = FromCallable(&Callable{Name: key, Host: g.Fn, Params: g.Params, Return: g.Return})
		case *Global:
			dst[key] = FromCallable(&Callable{Name: key, Host: g.Fn, Params: g.Params, Return: g.Return})
		case map[string]interface{}:
			if err := flattenGlobals(key, g, dst); err != nil {
				return err
			}
		case float64:
			dst[key] = FromNumber(g)
		case int:
			dst[key] = FromNumber(float64(g))
		case int64:
			dst[key] = FromNumber(float64(g))
		case string:
			dst[key] = FromString(g)
		case bool:
			dst[key] = FromBool(g)
		case nil:
			dst[key] = Null
		default:
			return fmt.Errorf("global %s: unsupported binding type %T", key, raw)
		}
	}
	return nil
}
