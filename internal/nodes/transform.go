package nodes

import (
	"context"
	"fmt"

	"github.com/pflowhq/pflow/internal/store"
)

// TransformExecutor reshapes a value between a handful of common data
// structure forms, ported from the teacher's TransformExecutor but reading
// its input via a resolved "input" param (a ${path} reference) rather than a
// node-input list, since this engine has no distinct wiring surface beyond
// the linear node chain.
type TransformExecutor struct{}

func NewTransformExecutor() *TransformExecutor { return &TransformExecutor{} }

func (e *TransformExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	transformType, ok := params["transform_type"].(string)
	if !ok || transformType == "" {
		return fmt.Errorf("transform node: missing \"transform_type\" param")
	}

	input, present := params["input"]
	if !present {
		return fmt.Errorf("transform node: missing \"input\" param")
	}

	var result any
	var err error
	switch transformType {
	case "to_object":
		result, err = toObject(input)
	case "flatten":
		result, err = flatten(input)
	case "keys":
		result, err = objectKeys(input)
	case "values":
		result, err = objectValues(input)
	default:
		return fmt.Errorf("transform node: unsupported transform_type %q", transformType)
	}
	if err != nil {
		return fmt.Errorf("transform node: %w", err)
	}

	out.Set("result", result)
	return nil
}

func toObject(input any) (map[string]any, error) {
	arr, ok := input.([]any)
	if !ok {
		return nil, fmt.Errorf("to_object requires array input, got %T", input)
	}
	result := make(map[string]any, len(arr)/2)
	for i := 0; i+1 < len(arr); i += 2 {
		key, ok := arr[i].(string)
		if !ok {
			return nil, fmt.Errorf("to_object requires string keys at index %d", i)
		}
		result[key] = arr[i+1]
	}
	return result, nil
}

func flatten(input any) ([]any, error) {
	arr, ok := input.([]any)
	if !ok {
		return nil, fmt.Errorf("flatten requires array input, got %T", input)
	}
	var out []any
	var walk func([]any)
	walk = func(items []any) {
		for _, item := range items {
			if nested, ok := item.([]any); ok {
				walk(nested)
				continue
			}
			out = append(out, item)
		}
	}
	walk(arr)
	return out, nil
}

func objectKeys(input any) ([]any, error) {
	obj, ok := input.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("keys requires object input, got %T", input)
	}
	out := make([]any, 0, len(obj))
	for k := range obj {
		out = append(out, k)
	}
	return out, nil
}

func objectValues(input any) ([]any, error) {
	obj, ok := input.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("values requires object input, got %T", input)
	}
	out := make([]any, 0, len(obj))
	for _, v := range obj {
		out = append(out, v)
	}
	return out, nil
}
