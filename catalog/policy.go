package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/glintlang/glint/compiler"
)

// PolicyFile is the project configuration file name.
const PolicyFile = "glint.toml"

// Policy represents a glint.toml project configuration: where the catalog
// lives and which capabilities scripts may call.
type Policy struct {
	Project ProjectConfig
	Catalog CatalogConfig

	// Allow is built from the [capabilities] table. Nil when the file has
	// no such table, meaning every capability is allowed.
	Allow *AllowList

	// Dir is the directory containing the glint.toml file (set at load time).
	Dir string
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// CatalogConfig locates the capability catalog.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// rawPolicy keeps [capabilities] undecoded; entry values have three
// shapes and are resolved one by one.
type rawPolicy struct {
	Project      ProjectConfig             `toml:"project"`
	Catalog      CatalogConfig             `toml:"catalog"`
	Capabilities map[string]toml.Primitive `toml:"capabilities"`
}

// rawTOMLRule covers both table-shaped capability specifications.
type rawTOMLRule struct {
	Min    *int     `toml:"min"`
	Max    *int     `toml:"max"`
	Params []string `toml:"params"`
	Return string   `toml:"returnType"`
}

// Load parses a glint.toml file from the given directory.
func Load(dir string) (*Policy, error) {
	path := filepath.Join(dir, PolicyFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	p, err := ParsePolicy(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	p.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return p, nil
}

// ParsePolicy decodes glint.toml content.
func ParsePolicy(data string) (*Policy, error) {
	var raw rawPolicy
	md, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, err
	}

	p := &Policy{Project: raw.Project, Catalog: raw.Catalog}
	if raw.Capabilities == nil {
		return p, nil
	}

	allow := &AllowList{}
	for name, prim := range raw.Capabilities {
		if err := decodeCapability(md, allow, name, prim); err != nil {
			return nil, err
		}
	}
	p.Allow = allow
	return p, nil
}

// decodeCapability resolves one [capabilities] entry: a bool allows or
// drops the bare name, an integer is an exact arity, an inline table is a
// {min,max} range or a full {params,returnType} signature.
func decodeCapability(md toml.MetaData, allow *AllowList, name string, prim toml.Primitive) error {
	var b bool
	if err := md.PrimitiveDecode(prim, &b); err == nil {
		if b {
			allow.Add(name)
		}
		return nil
	}

	var n int
	if err := md.PrimitiveDecode(prim, &n); err == nil {
		allow.AddRule(name, ArityRule(n))
		return nil
	}

	var raw rawTOMLRule
	if err := md.PrimitiveDecode(prim, &raw); err != nil {
		return fmt.Errorf("capability %s: unsupported specification", name)
	}
	if raw.Params != nil {
		params := make([]compiler.Type, len(raw.Params))
		for i, t := range raw.Params {
			params[i] = compiler.Type(t)
		}
		allow.AddRule(name, SignatureRule(params, compiler.Type(raw.Return)))
		return nil
	}
	if raw.Min != nil || raw.Max != nil {
		min, max := 0, maxArity
		if raw.Min != nil {
			min = *raw.Min
		}
		if raw.Max != nil {
			max = *raw.Max
		}
		allow.AddRule(name, RangeRule(min, max))
		return nil
	}
	return fmt.Errorf("capability %s: unsupported specification", name)
}

// FindAndLoad walks up from startDir to find a glint.toml file, then
// loads and returns the policy. Returns nil if no policy file is found.
func FindAndLoad(startDir string) (*Policy, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, PolicyFile)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// CatalogPath returns the absolute path of the configured catalog file,
// or "" when the policy names none.
func (p *Policy) CatalogPath() string {
	if p.Catalog.Path == "" {
		return ""
	}
	if filepath.IsAbs(p.Catalog.Path) {
		return p.Catalog.Path
	}
	return filepath.Join(p.Dir, p.Catalog.Path)
}

// LoadCatalog loads the catalog the policy points at. Returns nil with no
// error when the policy names none.
func (p *Policy) LoadCatalog() (*Catalog, error) {
	path := p.CatalogPath()
	if path == "" {
		return nil, nil
	}
	return LoadFile(path)
}
