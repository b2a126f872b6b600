// Package conditionnode implements the built-in "condition" node: it
// evaluates a boolean expression against its already-template-resolved
// params and routes on the result, rather than on a fixed success/failure
// split the way http/shell do.
//
// Grounded on the teacher's executeConditionNode (nodes_control_flow.go),
// which evaluated a small hand-rolled comparison grammar (">100", "==10",
// "true") against a single input value. Template resolution already
// happens upstream of every node (pkg/node's runSingle), so by the time
// this node's Prep sees "expression" any "${...}" references it contained
// have been substituted into literal values — the teacher's bespoke
// comparison parser is replaced here with github.com/expr-lang/expr,
// which can evaluate the resulting expression text directly instead of
// recognizing only a handful of operator prefixes.
//
// Interface:
// - Writes: shared["result"]: bool
// - Params: expression: string
// - Actions: true (expression evaluated truthy), false (otherwise)
package conditionnode

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

const interfaceDoc = `Interface:
- Writes: shared["result"]: bool
- Params: expression: string
- Actions: true (expression evaluated truthy), false (otherwise)
`

// Register adds the "condition" node type to reg.
func Register(reg *registry.Registry) error {
	return reg.Register("condition", interfaceDoc, func() registry.Node {
		return &conditionNode{}
	})
}

type conditionNode struct{}

func (n *conditionNode) Prep(shared *store.Namespace, params map[string]any) (any, error) {
	exprStr, _ := params["expression"].(string)
	if exprStr == "" {
		return nil, errs.New(errs.CategoryValidation, shared.NodeID(), "condition node missing expression")
	}
	return exprStr, nil
}

func (n *conditionNode) Exec(prep any) (any, error) {
	exprStr := prep.(string)

	program, err := expr.Compile(exprStr, expr.AsBool())
	if err != nil {
		return nil, errs.Wrap(errs.CategoryValidation, "", fmt.Errorf("compiling condition expression %q: %w", exprStr, err)).
			WithSuggestion("expression must be a boolean comparison, e.g. \"200 == 200\" or \"true\"")
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryValidation, "", fmt.Errorf("evaluating condition expression %q: %w", exprStr, err))
	}

	result, _ := out.(bool)
	return result, nil
}

func (n *conditionNode) Post(shared *store.Namespace, prep, exec any) (string, error) {
	result := exec.(bool)
	shared.Set("result", result)
	if result {
		return "true", nil
	}
	return "false", nil
}
