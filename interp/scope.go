package interp

// Scope is one environment record in the lexical chain. Lookup walks
// parent links outward; a name lives in exactly the nearest scope that
// declared it.
type Scope struct {
	parent *Scope
	table  map[string]Value
}

// NewScope creates a scope chained to parent. A nil parent makes a root
// (global) scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, table: make(map[string]Value)}
}

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Define binds name in this scope, shadowing any outer binding of the
// same name. Redeclaring in the same scope overwrites.
func (s *Scope) Define(name string, v Value) {
	s.table[name] = v
}

// Get resolves name by walking the chain outward.
func (s *Scope) Get(name string) (Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.table[name]; ok {
			return v, true
		}
	}
	return Undefined, false
}

// Set mutates name in the nearest scope that declares it and reports
// whether such a scope exists. Names are never created implicitly.
func (s *Scope) Set(name string, v Value) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.table[name]; ok {
			sc.table[name] = v
			return true
		}
	}
	return false
}

// Declared reports whether name is bound in this scope only, ignoring
// the chain.
func (s *Scope) Declared(name string) bool {
	_, ok := s.table[name]
	return ok
}
