package nodes

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/pflowhq/pflow/internal/store"
)

// ConditionExecutor evaluates a boolean expr-lang expression over its input,
// grounded on the smilemakc-mbflow ExprConditionEvaluator but wired to the
// namespaced shared store instead of a flat node-output map.
type ConditionExecutor struct {
	program *vm.Program
	compiled string
}

// NewConditionExecutor returns a ConditionExecutor with no compiled program.
// It keeps only the most recently compiled expression: a repeat of that
// expression reuses it, and a different expression is compiled and replaces it.
func NewConditionExecutor() *ConditionExecutor {
	return &ConditionExecutor{}
}

// Execute evaluates params["expression"] against params["input"], exposed to
// the expression as the "input" variable, and writes the boolean result.
func (c *ConditionExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	expression, _ := params["expression"].(string)
	if expression == "" {
		out.Set("result", true)
		return nil
	}

	env := map[string]any{"input": params["input"]}

	if c.compiled != expression {
		program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
		if err != nil {
			return fmt.Errorf("failed to compile condition expression: %w", err)
		}
		c.program = program
		c.compiled = expression
	}

	result, err := expr.Run(c.program, env)
	if err != nil {
		return fmt.Errorf("failed to evaluate condition expression: %w", err)
	}

	boolResult, ok := result.(bool)
	if !ok {
		return fmt.Errorf("condition expression must return a boolean, got %T", result)
	}

	out.Set("result", boolResult)
	return nil
}
