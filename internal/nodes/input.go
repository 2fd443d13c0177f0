package nodes

import (
	"context"
	"fmt"

	"github.com/pflowhq/pflow/internal/store"
)

// TextInputExecutor emits a fixed or templated string value, ported from the
// teacher's TextInputExecutor.
type TextInputExecutor struct{}

func NewTextInputExecutor() *TextInputExecutor { return &TextInputExecutor{} }

func (e *TextInputExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	value, ok := params["value"].(string)
	if !ok {
		return fmt.Errorf("text_input node: missing or non-string \"value\" param")
	}
	out.Set("value", value)
	return nil
}

// NumberInputExecutor emits a numeric value, ported from the teacher's
// NumberExecutor.
type NumberInputExecutor struct{}

func NewNumberInputExecutor() *NumberInputExecutor { return &NumberInputExecutor{} }

func (e *NumberInputExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	value, present := params["value"]
	if !present {
		return fmt.Errorf("number_input node: missing \"value\" param")
	}
	switch value.(type) {
	case float64, int, int64:
		out.Set("value", value)
		return nil
	default:
		return fmt.Errorf("number_input node: \"value\" must be numeric, got %T", value)
	}
}
