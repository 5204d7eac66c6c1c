package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/glintlang/glint/compiler"
)

// ---------------------------------------------------------------------------
// Allow-list policy
// ---------------------------------------------------------------------------

// maxArity is the open upper bound for a range rule with no max.
const maxArity = math.MaxInt32

// RuleKind selects the precision of one allow-list entry.
type RuleKind int

const (
	// RuleArity requires an exact argument count.
	RuleArity RuleKind = iota
	// RuleRange requires an argument count inside an inclusive range.
	RuleRange
	// RuleSignature requires an exact count and per-argument types.
	RuleSignature
)

// Rule is one name's specification inside an allow-list.
type Rule struct {
	Kind   RuleKind
	Arity  int
	Min    int
	Max    int
	Params []compiler.Type
	Return compiler.Type
}

// ArityRule requires exactly n arguments.
func ArityRule(n int) Rule {
	return Rule{Kind: RuleArity, Arity: n}
}

// RangeRule requires between min and max arguments, inclusive.
func RangeRule(min, max int) Rule {
	return Rule{Kind: RuleRange, Min: min, Max: max}
}

// SignatureRule requires the given parameter types and, implicitly,
// exactly len(params) arguments.
func SignatureRule(params []compiler.Type, ret compiler.Type) Rule {
	return Rule{Kind: RuleSignature, Params: params, Return: ret}
}

// AllowList restricts which capability names a script may call. A nil
// *AllowList allows everything.
type AllowList struct {
	names map[string]struct{}
	rules map[string]Rule
}

// AllowNames builds a names-only allow-list.
func AllowNames(names ...string) *AllowList {
	a := &AllowList{names: make(map[string]struct{})}
	for _, name := range names {
		a.names[name] = struct{}{}
	}
	return a
}

// AllowRules builds an allow-list with per-name specifications.
func AllowRules(rules map[string]Rule) *AllowList {
	a := &AllowList{names: make(map[string]struct{}), rules: make(map[string]Rule)}
	for name, rule := range rules {
		a.names[name] = struct{}{}
		a.rules[name] = rule
	}
	return a
}

// Add allows a name without a rule.
func (a *AllowList) Add(name string) {
	if a.names == nil {
		a.names = make(map[string]struct{})
	}
	a.names[name] = struct{}{}
}

// AddRule allows a name with a specification.
func (a *AllowList) AddRule(name string, rule Rule) {
	a.Add(name)
	if a.rules == nil {
		a.rules = make(map[string]Rule)
	}
	a.rules[name] = rule
}

// Allows reports whether name may be called. A nil list allows all names.
func (a *AllowList) Allows(name string) bool {
	if a == nil {
		return true
	}
	_, ok := a.names[name]
	return ok
}

// RuleFor returns the specification recorded for name, if any.
func (a *AllowList) RuleFor(name string) (Rule, bool) {
	if a == nil {
		return Rule{}, false
	}
	rule, ok := a.rules[name]
	return rule, ok
}

// Len reports how many names the list carries.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.names)
}

// ---------------------------------------------------------------------------
// JSON form
// ---------------------------------------------------------------------------

// rawRule covers every allowed JSON specification shape for one name.
type rawRule struct {
	Min    *int      `json:"min"`
	Max    *int      `json:"max"`
	Params *[]string `json:"params"`
	Return string    `json:"returnType"`
}

// UnmarshalJSON accepts either a flat name array or a map from name to a
// specification: a bare integer (exact arity), {min,max} (range), or
// {params,returnType} (full signature).
func (a *AllowList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '[' {
		var names []string
		if err := json.Unmarshal(trimmed, &names); err != nil {
			return fmt.Errorf("allow-list: %w", err)
		}
		*a = *AllowNames(names...)
		return nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return fmt.Errorf("allow-list: %w", err)
	}

	out := AllowList{}
	for name, value := range entries {
		rule, allowed, err := parseJSONRule(name, value)
		if err != nil {
			return err
		}
		if !allowed {
			continue
		}
		if rule != nil {
			out.AddRule(name, *rule)
		} else {
			out.Add(name)
		}
	}
	*a = out
	return nil
}

// parseJSONRule decodes one specification value. A nil rule with
// allowed=true means a bare name entry.
func parseJSONRule(name string, value json.RawMessage) (*Rule, bool, error) {
	var b bool
	if err := json.Unmarshal(value, &b); err == nil {
		return nil, b, nil
	}

	var n int
	if err := json.Unmarshal(value, &n); err == nil {
		rule := ArityRule(n)
		return &rule, true, nil
	}

	var raw rawRule
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil, false, fmt.Errorf("allow-list entry %s: unsupported specification", name)
	}
	rule, err := buildRule(name, raw)
	if err != nil {
		return nil, false, err
	}
	return rule, true, nil
}

// buildRule discriminates the two table-shaped specifications.
func buildRule(name string, raw rawRule) (*Rule, error) {
	if raw.Params != nil {
		params := make([]compiler.Type, len(*raw.Params))
		for i, p := range *raw.Params {
			params[i] = compiler.Type(p)
		}
		rule := SignatureRule(params, compiler.Type(raw.Return))
		return &rule, nil
	}
	if raw.Min != nil || raw.Max != nil {
		min, max := 0, maxArity
		if raw.Min != nil {
			min = *raw.Min
		}
		if raw.Max != nil {
			max = *raw.Max
		}
		rule := RangeRule(min, max)
		return &rule, nil
	}
	return nil, fmt.Errorf("allow-list entry %s: unsupported specification", name)
}
