package catalog

import (
	"fmt"

	"github.com/glintlang/glint/compiler"
)

// ---------------------------------------------------------------------------
// Capability gate
// ---------------------------------------------------------------------------

// Gate classifies capability calls against the catalog and an allow-list.
type Gate struct {
	catalog *Catalog
	allow   *AllowList
}

// NewGate builds a gate. Either argument may be nil: a nil catalog means
// no signature information, a nil allow-list allows every name.
func NewGate(c *Catalog, allow *AllowList) *Gate {
	return &Gate{catalog: c, allow: allow}
}

// Catalog returns the gated catalog, which may be nil.
func (g *Gate) Catalog() *Catalog {
	return g.catalog
}

// CallPlan is the resolved dispatch decision for one capability call.
type CallPlan struct {
	// Name is the script-visible name the call was written with.
	Name string
	// RuntimeName is the symbol to dispatch to after alias resolution.
	RuntimeName string
	// Params holds the expected parameter types, nil when unknown.
	Params []compiler.Type
	// Return is the declared return type, empty when unknown or void.
	Return compiler.Type
}

// Resolve authorizes a call to name with argc arguments and resolves the
// alias and runtime-name indirection. The allow check always runs against
// the script-visible name; a full-signature rule overrides any catalog
// signature.
func (g *Gate) Resolve(name string, argc int) (*CallPlan, error) {
	if !g.allow.Allows(name) {
		return nil, fmt.Errorf("capability %s is not allowed", name)
	}

	plan := &CallPlan{Name: name, RuntimeName: name}

	if g.catalog != nil {
		if desc, ok := g.catalog.Capability(name); ok {
			if desc.AliasOf != "" {
				plan.RuntimeName = desc.AliasOf
			}
			if desc.RuntimeName != "" {
				plan.RuntimeName = desc.RuntimeName
			}
			target := g.catalog.resolveTarget(desc)
			plan.Params = target.Params
			plan.Return = target.Return
		}
	}

	if rule, ok := g.allow.RuleFor(name); ok {
		if err := checkRuleArity(name, rule, argc); err != nil {
			return nil, err
		}
		if rule.Kind == RuleSignature {
			plan.Params = rule.Params
			plan.Return = rule.Return
		}
		return plan, nil
	}

	if plan.Params != nil && argc != len(plan.Params) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", name, len(plan.Params), argc)
	}
	return plan, nil
}

// checkRuleArity enforces one rule's argument-count requirement.
func checkRuleArity(name string, rule Rule, argc int) error {
	switch rule.Kind {
	case RuleArity:
		if argc != rule.Arity {
			return fmt.Errorf("%s expects %d arguments, got %d", name, rule.Arity, argc)
		}
	case RuleRange:
		if argc < rule.Min || argc > rule.Max {
			return fmt.Errorf("%s expects between %d and %d arguments, got %d",
				name, rule.Min, rule.Max, argc)
		}
	case RuleSignature:
		if argc != len(rule.Params) {
			return fmt.Errorf("%s expects %d arguments, got %d", name, len(rule.Params), argc)
		}
	}
	return nil
}

// Check resolves a call and verifies each argument's declared type
// against the expected parameter types. Arguments with unknown types are
// skipped; convertible pairs (string into cstring, number into color)
// pass because the caller inserts the conversion.
func (g *Gate) Check(name string, args []compiler.Type) (*CallPlan, error) {
	plan, err := g.Resolve(name, len(args))
	if err != nil {
		return nil, err
	}
	if plan.Params == nil {
		return plan, nil
	}
	for i, expected := range plan.Params {
		actual := args[i]
		if actual == "" {
			continue
		}
		if Compatible(actual, expected) || Convertible(actual, expected) {
			continue
		}
		return nil, fmt.Errorf("%s parameter %d expects %s, got %s", name, i+1, expected, actual)
	}
	return plan, nil
}

// Compatible reports whether a value of declared type actual may be
// passed where expected is required, with no conversion. Identical types
// match; any nominal handle matches the widest handle type and number,
// both directions; cstring and color each match number both directions.
// No other pair is compatible.
func Compatible(actual, expected compiler.Type) bool {
	if actual == expected {
		return true
	}
	if actual.IsHandle() && (expected == compiler.TypeObj || expected == compiler.TypeNumber) {
		return true
	}
	if expected.IsHandle() && (actual == compiler.TypeObj || actual == compiler.TypeNumber) {
		return true
	}
	if actual == compiler.TypeCstring && expected == compiler.TypeNumber {
		return true
	}
	if expected == compiler.TypeCstring && actual == compiler.TypeNumber {
		return true
	}
	if actual == compiler.TypeColor && expected == compiler.TypeNumber {
		return true
	}
	if expected == compiler.TypeColor && actual == compiler.TypeNumber {
		return true
	}
	return false
}

// Convertible reports whether an automatic representation conversion
// exists from actual to expected: the string-to-handle converter for
// cstring parameters, the color encoder for color parameters.
func Convertible(actual, expected compiler.Type) bool {
	if expected == compiler.TypeCstring && actual == compiler.TypeString {
		return true
	}
	if expected == compiler.TypeColor && actual == compiler.TypeNumber {
		return true
	}
	return false
}
