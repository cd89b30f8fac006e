package cli

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// definitionSchema is a CUE envelope check for constraint definitions:
// every definition must look like one of the three variants before the
// parser sees it. Nested structure is deliberately left open - deep
// validation (operator literals, duration grammar, halt bounds) is the
// parser's job; CUE guards the envelope and yields friendlier errors
// for documents that are not constraints at all.
const definitionSchema = `
#Definition: {
	field!:    string
	operator!: string
	...
} | {
	logic!:       "and" | "or" | "not"
	constraints!: [...]
	...
} | {
	"if"!: {...}
	then!: {...}
	...
}
`

// lintDefinition validates a definition's envelope against the CUE
// schema. Returns nil when the document matches one of the three
// constraint shapes.
func lintDefinition(def map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(definitionSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	data := ctx.Encode(def)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode definition: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Definition")).Unify(data)
	if err := unified.Err(); err != nil {
		return err
	}
	return unified.Validate(cue.Concrete(true))
}
