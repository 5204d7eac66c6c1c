// Package catalog models the capability surface a script may drive: the
// host functions it can call, the named integer constants it can read,
// and the allow-list policy that gates both.
package catalog

import (
	"sort"
	"strings"

	"github.com/glintlang/glint/compiler"
)

// CapPrefix is the naming convention for host capability calls.
const CapPrefix = compiler.CapPrefix

// ConstPrefix marks identifiers resolved against the constant table.
const ConstPrefix = compiler.ConstPrefix

// IsCapabilityName reports whether name follows the host-function naming
// convention.
func IsCapabilityName(name string) bool {
	return strings.HasPrefix(name, CapPrefix)
}

// IsConstantName reports whether name belongs to the constant namespace.
func IsConstantName(name string) bool {
	return strings.HasPrefix(name, ConstPrefix)
}

// Descriptor describes one host-callable capability.
type Descriptor struct {
	Name   string
	Params []compiler.Type // nil when the signature is unknown
	Return compiler.Type

	// AliasOf names the capability this one stands in for; lookups for
	// type checking resolve one level through it.
	AliasOf string

	// RuntimeName is the dispatch symbol when it differs from the
	// script-visible name.
	RuntimeName string
}

// Signature renders the descriptor in annotation style, e.g.
// "lv_btn_create(lv_obj): lv_obj".
func (d *Descriptor) Signature() string {
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(p))
	}
	b.WriteByte(')')
	if d.Return != "" {
		b.WriteString(": ")
		b.WriteString(string(d.Return))
	}
	return b.String()
}

// Catalog holds the capability descriptors and the constant table for one
// run. It is populated once by a loader and read-only afterwards.
type Catalog struct {
	caps      map[string]*Descriptor
	constants map[string]int64
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		caps:      make(map[string]*Descriptor),
		constants: make(map[string]int64),
	}
}

// AddCapability registers a descriptor under its name.
func (c *Catalog) AddCapability(d *Descriptor) {
	c.caps[d.Name] = d
}

// AddConstant registers a named integer constant.
func (c *Catalog) AddConstant(name string, value int64) {
	c.constants[name] = value
}

// Capability looks up a descriptor by script-visible name.
func (c *Catalog) Capability(name string) (*Descriptor, bool) {
	d, ok := c.caps[name]
	return d, ok
}

// Constant looks up a constant value.
func (c *Catalog) Constant(name string) (int64, bool) {
	v, ok := c.constants[name]
	return v, ok
}

// Names returns all capability names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.caps))
	for name := range c.caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConstantNames returns all constant names, sorted.
func (c *Catalog) ConstantNames() []string {
	names := make([]string, 0, len(c.constants))
	for name := range c.constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Constants returns the constant table.
func (c *Catalog) Constants() map[string]int64 {
	return c.constants
}

// resolveTarget follows one level of alias indirection to the descriptor
// used for type checking.
func (c *Catalog) resolveTarget(d *Descriptor) *Descriptor {
	if d.AliasOf == "" {
		return d
	}
	if target, ok := c.caps[d.AliasOf]; ok {
		return target
	}
	return d
}

// ReturnTypeOf reports the declared return type of a capability. It
// implements compiler.SignatureSource for initializer inference.
func (c *Catalog) ReturnTypeOf(name string) (compiler.Type, bool) {
	d, ok := c.caps[name]
	if !ok {
		return "", false
	}
	return c.resolveTarget(d).Return, true
}
