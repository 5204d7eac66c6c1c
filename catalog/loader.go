package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glintlang/glint/compiler"
)

// ---------------------------------------------------------------------------
// JSON catalog loader
// ---------------------------------------------------------------------------

// rawCatalog mirrors the catalog JSON file. Argument and return types use
// the host API's native type spellings; the loader maps them into the
// script type vocabulary.
type rawCatalog struct {
	Functions map[string]rawFunction `json:"functions"`
	Constants map[string]int64       `json:"constants"`
}

type rawFunction struct {
	Args        []string `json:"args"`
	Return      string   `json:"return"`
	AliasOf     string   `json:"aliasOf"`
	RuntimeName string   `json:"runtimeName"`
}

// LoadJSON reads and validates a catalog from JSON.
func LoadJSON(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog: %w", err)
	}
	return ParseJSON(data)
}

// LoadFile reads a catalog JSON file from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseJSON validates data against the catalog schema and builds the
// descriptor table.
func ParseJSON(data []byte) (*Catalog, error) {
	if err := validateCatalogJSON(data); err != nil {
		return nil, err
	}

	var raw rawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cannot decode catalog: %w", err)
	}

	c := New()
	for name, fn := range raw.Functions {
		d := &Descriptor{
			Name:        name,
			Return:      MapNativeType(fn.Return),
			AliasOf:     fn.AliasOf,
			RuntimeName: fn.RuntimeName,
		}
		if fn.Args != nil {
			d.Params = make([]compiler.Type, len(fn.Args))
			for i, arg := range fn.Args {
				d.Params[i] = MapNativeType(arg)
			}
		}
		c.AddCapability(d)
	}
	for name, value := range raw.Constants {
		c.AddConstant(name, value)
	}
	return c, nil
}

// MapNativeType maps a host API native type spelling to the script type
// vocabulary. Unrecognized value types map to number; unrecognized
// pointer types map to a nominal handle named after the base type.
func MapNativeType(native string) compiler.Type {
	s := strings.TrimSpace(native)
	s = strings.TrimPrefix(s, "const ")

	pointer := strings.HasSuffix(s, "*")
	base := strings.TrimSpace(strings.TrimRight(s, "* \t"))

	if base == "" || (base == "void" && !pointer) {
		return ""
	}

	if pointer {
		switch base {
		case "char", "unsigned char":
			return compiler.TypeCstring
		case "void":
			return compiler.TypeObj
		}
		return compiler.Type(strings.TrimSuffix(base, "_t"))
	}

	switch base {
	case "bool":
		return compiler.TypeBool
	case "lv_color_t":
		return compiler.TypeColor
	case "lv_event_cb_t":
		return compiler.TypeFunction
	}
	return compiler.TypeNumber
}
