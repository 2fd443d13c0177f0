package nodes

import (
	"context"
	"fmt"

	"github.com/pflowhq/pflow/internal/store"
)

// varsNamespace is the conventional namespace "variable" nodes share across
// the whole execution, distinct from per-node output namespaces — templates
// address a stored value as ${vars.<name>}, the same way any other node's
// output is addressed.
const varsNamespace = "vars"

// VariableExecutor implements workflow-scoped get/set, ported from the
// teacher's VariableExecutor (which used a central state.Manager) onto the
// namespaced shared store's "vars" namespace.
type VariableExecutor struct{}

func NewVariableExecutor() *VariableExecutor { return &VariableExecutor{} }

func (e *VariableExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	name, ok := params["var_name"].(string)
	if !ok || name == "" {
		return fmt.Errorf("variable node: missing \"var_name\" param")
	}
	op, ok := params["var_op"].(string)
	if !ok || op == "" {
		return fmt.Errorf("variable node: missing \"var_op\" param (\"get\" or \"set\")")
	}

	vars := out.Root().Namespace(varsNamespace)

	switch op {
	case "set":
		value, present := params["value"]
		if !present {
			return fmt.Errorf("variable node: \"set\" requires a \"value\" param")
		}
		vars.Set(name, value)
		out.Set("var_name", name)
		out.Set("operation", "set")
		out.Set("value", value)
		return nil

	case "get":
		value, ok := vars.Get(name)
		if !ok {
			return fmt.Errorf("variable node: %q not found", name)
		}
		out.Set("var_name", name)
		out.Set("operation", "get")
		out.Set("value", value)
		return nil

	default:
		return fmt.Errorf("variable node: unsupported var_op %q (use \"get\" or \"set\")", op)
	}
}
