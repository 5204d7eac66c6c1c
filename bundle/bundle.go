// Package bundle implements the content-addressed artifact envelope for
// emitted scripts. A bundle carries the source text, both emitted targets,
// the content hash of the parsed source, and a digest over the texts,
// encoded as canonical CBOR so equal bundles produce equal bytes.
package bundle

import (
	"fmt"

	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/compiler/hash"
)

// EmitFunc produces both emitted targets for a source text. Injected so
// this package does not depend on the generators.
type EmitFunc func(source string) (script string, c string, err error)

// Bundle is the distributable artifact for one script. ScriptHash is the
// content hash of the parsed source (stable under local renames); Digest
// covers the exact Source, Script and C texts. A receiver re-emits the
// source and checks both.
type Bundle struct {
	Name       string   `cbor:"1,keyasint"`
	Source     string   `cbor:"2,keyasint"`
	Script     string   `cbor:"3,keyasint"` // script target
	C          string   `cbor:"4,keyasint"` // C target
	ScriptHash [32]byte `cbor:"5,keyasint"`
	Digest     [32]byte `cbor:"6,keyasint"`
}

// Build parses and emits source, producing a complete verified-buildable
// bundle.
func Build(name, source string, emit EmitFunc) (*Bundle, error) {
	prog, err := compiler.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("bundle: parse %s: %w", name, err)
	}

	script, c, err := emit(source)
	if err != nil {
		return nil, fmt.Errorf("bundle: emit %s: %w", name, err)
	}

	b := &Bundle{
		Name:       name,
		Source:     source,
		Script:     script,
		C:          c,
		ScriptHash: hash.HashProgram(prog),
	}
	d, err := digestOf(b)
	if err != nil {
		return nil, err
	}
	b.Digest = d
	return b, nil
}
