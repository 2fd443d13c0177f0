package nodes

import (
	"context"
	"fmt"

	"github.com/pflowhq/pflow/internal/store"
)

// ExtractExecutor pulls one or more fields out of an object input, ported
// from the teacher's ExtractExecutor.
type ExtractExecutor struct{}

func NewExtractExecutor() *ExtractExecutor { return &ExtractExecutor{} }

func (e *ExtractExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	input, present := params["input"]
	if !present {
		return fmt.Errorf("extract node: missing \"input\" param")
	}
	obj, ok := input.(map[string]any)
	if !ok {
		return fmt.Errorf("extract node: requires object input, got %T", input)
	}

	if field, ok := params["field"].(string); ok && field != "" {
		value, exists := obj[field]
		if !exists {
			return fmt.Errorf("extract node: field %q not found in input object", field)
		}
		out.Set("field", field)
		out.Set("value", value)
		return nil
	}

	if fieldsRaw, ok := params["fields"].([]any); ok && len(fieldsRaw) > 0 {
		result := make(map[string]any, len(fieldsRaw))
		for _, f := range fieldsRaw {
			name, ok := f.(string)
			if !ok {
				return fmt.Errorf("extract node: \"fields\" elements must be strings")
			}
			if value, exists := obj[name]; exists {
				result[name] = value
			}
		}
		out.Set("fields", result)
		return nil
	}

	return fmt.Errorf("extract node: requires \"field\" or \"fields\" param")
}
