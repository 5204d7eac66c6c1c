package hash

import (
	"crypto/sha256"

	"github.com/glintlang/glint/compiler"
)

// HashProgram computes the SHA-256 content hash of a parsed script.
//
// The hash is computed over a deterministic serialization of the script's
// normalized AST with de Bruijn variable indexing. Two scripts with the
// same semantics (same structure, ignoring local variable names,
// comments, and whitespace) produce the same hash. Capability names,
// constant names, and top-level function names stay in the hash; they are
// the script's observable surface.
func HashProgram(prog *compiler.Program) [32]byte {
	hp := NormalizeProgram(prog)
	data := Serialize(hp)
	return sha256.Sum256(data)
}
