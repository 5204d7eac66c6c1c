package bundle

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/glintlang/glint/compiler"
	"github.com/glintlang/glint/compiler/hash"
)

// cborEncMode holds CBOR encoding options with canonical mode for
// deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bundle: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a Bundle to canonical CBOR bytes.
func Marshal(b *Bundle) ([]byte, error) {
	data, err := cborEncMode.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("bundle: marshal %s: %w", b.Name, err)
	}
	return data, nil
}

// Unmarshal deserializes a Bundle from CBOR bytes.
func Unmarshal(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bundle: unmarshal: %w", err)
	}
	return &b, nil
}

// digestBody is the canonical digest input: the three texts, nothing else.
// Name and the hashes stay outside so renaming an artifact does not change
// its digest.
type digestBody struct {
	Source string `cbor:"1,keyasint"`
	Script string `cbor:"2,keyasint"`
	C      string `cbor:"3,keyasint"`
}

func digestOf(b *Bundle) ([32]byte, error) {
	data, err := cborEncMode.Marshal(digestBody{Source: b.Source, Script: b.Script, C: b.C})
	if err != nil {
		return [32]byte{}, fmt.Errorf("bundle: digest %s: %w", b.Name, err)
	}
	return sha256.Sum256(data), nil
}

// Verify re-derives everything a bundle claims from its source: the
// content hash by reparsing, the emitted texts by re-emitting, and the
// digest over the results. Any divergence from the declared fields is an
// error.
//
// The emit function is injected to keep this package independent of the
// generators; it must be the same pair the bundle was built with.
func Verify(b *Bundle, emit EmitFunc) error {
	prog, err := compiler.Parse(b.Source)
	if err != nil {
		return fmt.Errorf("bundle: verify %s: source does not parse: %w", b.Name, err)
	}
	if computed := hash.HashProgram(prog); computed != b.ScriptHash {
		return fmt.Errorf("bundle: verify %s: script hash mismatch: declared %x, computed %x",
			b.Name, b.ScriptHash, computed)
	}

	script, c, err := emit(b.Source)
	if err != nil {
		return fmt.Errorf("bundle: verify %s: emit failed: %w", b.Name, err)
	}
	if script != b.Script {
		return fmt.Errorf("bundle: verify %s: script target does not match source", b.Name)
	}
	if c != b.C {
		return fmt.Errorf("bundle: verify %s: C target does not match source", b.Name)
	}

	computed, err := digestOf(b)
	if err != nil {
		return err
	}
	if computed != b.Digest {
		return fmt.Errorf("bundle: verify %s: digest mismatch: declared %x, computed %x",
			b.Name, b.Digest, computed)
	}
	return nil
}
