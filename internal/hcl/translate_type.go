// This file parses the type expressions used in manifest input/output
// declarations (`string`, `list(number)`, `map(string)`) into cty types.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/stepwave/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// primitiveTypes maps manifest type keywords to their cty equivalents.
var primitiveTypes = map[string]cty.Type{
	"string": cty.String,
	"number": cty.Number,
	"bool":   cty.Bool,
	"any":    cty.DynamicPseudoType,
}

// typeExprToCtyType converts a manifest type expression into its cty.Type
// equivalent. A nil expression means the declaration carried no type and
// defaults to any.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("No type expression given, defaulting to any.")
		return cty.DynamicPseudoType, nil
	}

	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		// Collection constructors: list(T), map(T), set(T).
		logger.Debug("Parsing collection type constructor.", "constructor", e.Name)
		if len(e.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(e.Args))
		}

		elementType, err := typeExprToCtyType(ctx, e.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		if elementType == cty.DynamicPseudoType {
			return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
		}

		switch e.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", e.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		// Bare keywords like `string` parse as a variable reference.
		if len(e.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		name := e.Traversal.RootName()
		ty, ok := primitiveTypes[name]
		if !ok {
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", name)
		}
		return ty, nil

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", e)
	}
}
