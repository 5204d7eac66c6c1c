package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// catalogSchema constrains the raw catalog JSON before descriptors are
// built from it. Unknown fields are rejected.
const catalogSchema = `
close({
	functions?: [string]: close({
		args?: [...string]
		return?: string
		aliasOf?: string
		runtimeName?: string
	})
	constants?: [string]: int
})
`

// validateCatalogJSON checks data against catalogSchema.
func validateCatalogJSON(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(catalogSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("catalog schema is invalid: %w", err)
	}

	expr, err := cuejson.Extract("catalog.json", data)
	if err != nil {
		return fmt.Errorf("invalid catalog JSON: %w", err)
	}
	value := ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return fmt.Errorf("invalid catalog JSON: %w", err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("catalog schema violation: %w", err)
	}
	return nil
}
