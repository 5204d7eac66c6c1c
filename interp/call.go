package interp

import (
	"github.com/glintlang/glint/catalog"
	"github.com/glintlang/glint/compiler"
)

// evalCall dispatches on the callee shape: capability-gated host call,
// user-declared function, or plain callable value.
func (in *Interp) evalCall(call *compiler.CallExpr, sc *Scope) (Value, error) {
	name, named := compiler.CalleeName(call.Callee)
	if named && catalog.IsCapabilityName(name) {
		return in.callCapability(call, name, sc)
	}

	if id, ok := call.Callee.(*compiler.Ident); ok {
		if fn, found := in.functions[id.Name]; found {
			args, err := in.evalArgs(call, sc)
			if err != nil {
				return Undefined, err
			}
			return in.callUser(fn, args, call)
		}
		v, found := in.flat[id.Name]
		if !found {
			v, found = sc.Get(id.Name)
		}
		if !found {
			return Undefined, errAt(call, "function %s is not defined", id.Name)
		}
		if !v.IsCallable() {
			return Undefined, errAt(call, "%s is not a function, got %s", id.Name, v.KindName())
		}
		args, err := in.evalArgs(call, sc)
		if err != nil {
			return Undefined, err
		}
		return in.invokeCallable(v.Fn, args, call)
	}

	callee, err := in.evalExpr(call.Callee, sc)
	if err != nil {
		return Undefined, err
	}
	if !callee.IsCallable() {
		if named {
			return Undefined, errAt(call, "%s is not a function, got %s", name, callee.KindName())
		}
		return Undefined, errAt(call, "value is not a function, got %s", callee.KindName())
	}
	args, err := in.evalArgs(call, sc)
	if err != nil {
		return Undefined, err
	}
	return in.invokeCallable(callee.Fn, args, call)
}

func (in *Interp) evalArgs(call *compiler.CallExpr, sc *Scope) ([]Value, error) {
	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		v, err := in.evalExpr(a, sc)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// ---------------------------------------------------------------------------
// Capability dispatch
// ---------------------------------------------------------------------------

func (in *Interp) callCapability(call *compiler.CallExpr, name string, sc *Scope) (Value, error) {
	plan, err := in.gate.Resolve(name, len(call.Args))
	if err != nil {
		return Undefined, errAt(call, "%s", err)
	}

	switch name {
	case EventCapability:
		return in.registerEventCallback(call, sc)
	case ColorCapability:
		return in.colorStructReturn(call, name, sc)
	}

	args, err := in.evalArgs(call, sc)
	if err != nil {
		return Undefined, err
	}
	if plan.Params != nil {
		for i := range args {
			if i >= len(plan.Params) {
				break
			}
			args[i], err = in.convertArg(args[i], call.Args[i], plan.Params[i], name, i)
			if err != nil {
				return Undefined, err
			}
		}
	}

	fn, ok := in.host[plan.RuntimeName]
	if !ok {
		return Undefined, errAt(call, "unknown capability %s", plan.RuntimeName)
	}
	out, err := fn(args)
	if err != nil {
		if _, ok := AsRuntimeError(err); ok {
			return Undefined, err
		}
		return Undefined, errAt(call, "%s: %s", name, err)
	}
	return out, nil
}

// registerEventCallback hands the callback to the event dispatcher
// instead of invoking the host, and yields a no-op result.
func (in *Interp) registerEventCallback(call *compiler.CallExpr, sc *Scope) (Value, error) {
	if in.events == nil {
		return Undefined, errAt(call, "no event dispatcher bound for %s", EventCapability)
	}
	args, err := in.evalArgs(call, sc)
	if err != nil {
		return Undefined, err
	}
	target, callback, code := Undefined, Undefined, Undefined
	if len(args) > 0 {
		target = args[0]
	}
	if len(args) > 1 {
		callback = args[1]
	}
	if len(args) > 2 {
		code = args[2]
	}
	if !callback.IsCallable() {
		return Undefined, errAt(call, "%s callback must be a function, got %s", EventCapability, callback.KindName())
	}
	if err := in.events.Register(target, code, callback, in.globals); err != nil {
		return Undefined, errAt(call, "%s: %s", EventCapability, err)
	}
	return Undefined, nil
}

// colorStructReturn implements the struct-return convention as a
// top-level call: the argument is encoded into the shared scratch
// buffer and the buffer is the result.
func (in *Interp) colorStructReturn(call *compiler.CallExpr, name string, sc *Scope) (Value, error) {
	args, err := in.evalArgs(call, sc)
	if err != nil {
		return Undefined, err
	}
	num := Undefined
	if len(args) > 0 {
		num = args[0]
	}
	if num.Kind != KindNumber {
		return Undefined, errAt(call, "%s expects a number, got %s", name, num.KindName())
	}
	return in.encodeColor(num, name, call)
}

// ---------------------------------------------------------------------------
// Automatic conversions
// ---------------------------------------------------------------------------

// convertArg applies the two automatic representation conversions and
// otherwise checks type compatibility. The argument's decorated type
// is preferred over the runtime kind so the cstring/color distinction
// survives through variables.
func (in *Interp) convertArg(v Value, argExpr compiler.Expr, expected compiler.Type, capName string, idx int) (Value, error) {
	if expected == compiler.TypeCstring && v.IsString() {
		return in.convertCstring(v, argExpr)
	}
	if expected == compiler.TypeColor && v.Kind == KindNumber {
		return in.encodeColor(v, capName, argExpr)
	}
	actual := argExpr.ResolvedType()
	if actual == "" {
		actual = v.TypeOf()
	}
	if actual == "" || catalog.Compatible(actual, expected) {
		return v, nil
	}
	return Undefined, errAt(argExpr, "%s parameter %d expects %s, got %s", capName, idx+1, expected, actual)
}

// convertCstring invokes the required string→handle converter global.
func (in *Interp) convertCstring(v Value, node compiler.Node) (Value, error) {
	conv, ok := in.flat[ConverterName]
	if !ok || !conv.IsCallable() {
		return Undefined, errAt(node, "string conversion requires the %s binding", ConverterName)
	}
	return in.invokeCallable(conv.Fn, []Value{v}, node)
}

// encodeColor writes num into the reusable color scratch buffer and
// returns the buffer. The buffer is allocated on first use and its
// contents are valid only until the next conversion.
func (in *Interp) encodeColor(num Value, capName string, node compiler.Node) (Value, error) {
	alloc, okAlloc := in.flat[ColorAllocName]
	write, okWrite := in.flat[ColorWriteName]
	if !okAlloc || !okWrite || !alloc.IsCallable() || !write.IsCallable() {
		return Undefined, errAt(node, "%s requires color bindings %s and %s", capName, ColorAllocName, ColorWriteName)
	}
	if !in.haveColorBuf {
		buf, err := in.invokeCallable(alloc.Fn, nil, node)
		if err != nil {
			return Undefined, err
		}
		in.colorBuf = buf
		in.haveColorBuf = true
	}
	if _, err := in.invokeCallable(write.Fn, []Value{in.colorBuf, num}, node); err != nil {
		return Undefined, err
	}
	return in.colorBuf, nil
}

// coerceDeclared applies declaration-style coercion of v to declared
// type t: a runtime string converts through the cstring converter,
// anything else must be type-compatible. Null and undefined pass
// unchecked.
func (in *Interp) coerceDeclared(what string, t compiler.Type, v Value, actual compiler.Type, node compiler.Node) (Value, error) {
	if t == "" || v.Kind == KindUndefined || v.Kind == KindNull {
		return v, nil
	}
	if t == compiler.TypeCstring && v.IsString() {
		return in.convertCstring(v, node)
	}
	if actual == "" || catalog.Compatible(actual, t) {
		return v, nil
	}
	return Undefined, errAt(node, "%s expects %s, got %s", what, t, actual)
}

// ---------------------------------------------------------------------------
// Function invocation
// ---------------------------------------------------------------------------

// callUser runs a declared function in a fresh child-of-global scope.
// Parameters bind positionally with declaration-style coercion; missing
// arguments become undefined and extra arguments are ignored.
func (in *Interp) callUser(fn *compiler.FunctionDecl, args []Value, node compiler.Node) (Value, error) {
	sc := NewScope(in.globals)
	for i, p := range fn.Params {
		v := Undefined
		if i < len(args) {
			v = args[i]
		}
		coerced, err := in.coerceDeclared("parameter "+p.Name, p.Type, v, v.TypeOf(), node)
		if err != nil {
			return Undefined, err
		}
		sc.Define(p.Name, coerced)
	}

	c, ret, err := in.execBlock(fn.Body, sc)
	if err != nil {
		return Undefined, err
	}
	if c != ctrlReturn {
		ret = Undefined
	}

	if fn.ReturnType != "" && ret.Kind != KindUndefined && ret.Kind != KindNull {
		actual := ret.TypeOf()
		if !catalog.Compatible(actual, fn.ReturnType) {
			return Undefined, errAt(node, "function %s must return %s, got %s", fn.Name, fn.ReturnType, actual)
		}
	}
	return ret, nil
}

// invokeCallable dispatches a callable payload: user functions re-enter
// callUser, host bindings are checked against their declared signature
// when one was supplied.
func (in *Interp) invokeCallable(fn *Callable, args []Value, node compiler.Node) (Value, error) {
	if fn.Decl != nil {
		return in.callUser(fn.Decl, args, node)
	}
	if fn.Host == nil {
		return Undefined, errAt(node, "%s is not callable", fn.Name)
	}
	if fn.Params != nil {
		if len(args) != len(fn.Params) {
			return Undefined, errAt(node, "%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
		}
		for i, p := range fn.Params {
			actual := args[i].TypeOf()
			if actual == "" || catalog.Compatible(actual, p) {
				continue
			}
			return Undefined, errAt(node, "%s parameter %d expects %s, got %s", fn.Name, i+1, p, actual)
		}
	}
	out, err := fn.Host(args)
	if err != nil {
		if _, ok := AsRuntimeError(err); ok {
			return Undefined, err
		}
		if fn.Name != "" {
			return Undefined, errAt(node, "%s: %s", fn.Name, err)
		}
		return Undefined, errAt(node, "%s", err)
	}
	return out, nil
}
