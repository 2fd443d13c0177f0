// Package defaults wires the built-in node catalogue into a ready-to-use
// Registry and Factories pair, grounded on the teacher's
// pkg/engine.DefaultRegistry() (a single constructor populating every
// built-in executor so callers can start from a complete set and layer
// custom types on top) narrowed to this repo's supplemented catalogue
// (shell, http, transform, extract, variable, condition, text_input,
// number_input) instead of the teacher's 40-plus node types.
package defaults

import (
	"github.com/pflowhq/pflow/internal/compiler"
	"github.com/pflowhq/pflow/internal/nodes"
	"github.com/pflowhq/pflow/internal/registry"
)

// NewRegistry returns a Registry with every built-in node type's capability
// descriptor registered. Callers that need custom node types should start
// from this registry and MustRegister additional entries on top, the same
// layering pattern the teacher's DefaultRegistry doc comment recommends.
func NewRegistry() *registry.Registry {
	reg := registry.New()

	reg.MustRegister(registry.Entry{
		Type:        "shell",
		Module:      "internal/nodes",
		ClassName:   "ShellExecutor",
		Description: "runs a subprocess and exposes stdout/stderr/exit_code",
		ParamSchema: map[string]registry.FieldSchema{
			"command": {Type: "string", Required: true},
			"args":    {Type: "array"},
			"dir":     {Type: "string"},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"stdout":    {Type: "string"},
			"stderr":    {Type: "string"},
			"exit_code": {Type: "number"},
		},
	})

	reg.MustRegister(registry.Entry{
		Type:        "http",
		Module:      "internal/nodes",
		ClassName:   "HTTPExecutor",
		Description: "fetches a URL subject to network policy guarding against SSRF",
		ParamSchema: map[string]registry.FieldSchema{
			"url":     {Type: "string", Required: true},
			"method":  {Type: "string"},
			"headers": {Type: "object"},
			"body":    {Type: "string"},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"status_code":  {Type: "number"},
			"body":         {Type: "string"},
			"content_type": {Type: "string"},
		},
	})

	reg.MustRegister(registry.Entry{
		Type:        "text_input",
		Module:      "internal/nodes",
		ClassName:   "TextInputExecutor",
		Description: "emits a declared string value",
		ParamSchema: map[string]registry.FieldSchema{
			"value": {Type: "string", Required: true},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"value": {Type: "string"},
		},
	})

	reg.MustRegister(registry.Entry{
		Type:        "number_input",
		Module:      "internal/nodes",
		ClassName:   "NumberInputExecutor",
		Description: "emits a declared numeric value",
		ParamSchema: map[string]registry.FieldSchema{
			"value": {Type: "number", Required: true},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"value": {Type: "number"},
		},
	})

	reg.MustRegister(registry.Entry{
		Type:        "transform",
		Module:      "internal/nodes",
		ClassName:   "TransformExecutor",
		Description: "reshapes an input value (to_object/flatten/keys/values)",
		ParamSchema: map[string]registry.FieldSchema{
			"input":          {Type: "any", Required: true},
			"transform_type": {Type: "string", Required: true},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"result": {Type: "any"},
		},
	})

	reg.MustRegister(registry.Entry{
		Type:        "extract",
		Module:      "internal/nodes",
		ClassName:   "ExtractExecutor",
		Description: "pulls one or more fields out of an object input",
		ParamSchema: map[string]registry.FieldSchema{
			"input":  {Type: "object", Required: true},
			"field":  {Type: "string"},
			"fields": {Type: "array"},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"field":  {Type: "string"},
			"value":  {Type: "any"},
			"fields": {Type: "object"},
		},
	})

	reg.MustRegister(registry.Entry{
		Type:        "variable",
		Module:      "internal/nodes",
		ClassName:   "VariableExecutor",
		Description: "reads or writes a named value in the shared vars namespace",
		ParamSchema: map[string]registry.FieldSchema{
			"var_name": {Type: "string", Required: true},
			"var_op":   {Type: "string", Required: true},
			"value":    {Type: "any"},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"var_name":  {Type: "string"},
			"operation": {Type: "string"},
			"value":     {Type: "any"},
		},
	})

	reg.MustRegister(registry.Entry{
		Type:        "condition",
		Module:      "internal/nodes",
		ClassName:   "ConditionExecutor",
		Description: "evaluates a boolean expr-lang expression over its input",
		ParamSchema: map[string]registry.FieldSchema{
			"expression": {Type: "string"},
			"input":      {Type: "any"},
		},
		OutputSchema: map[string]registry.FieldSchema{
			"result": {Type: "boolean"},
		},
	})

	return reg
}

// NewFactories returns the Factory for every type NewRegistry registers,
// the compiler's other half of the node-type -> implementation binding.
func NewFactories() compiler.Factories {
	return compiler.Factories{
		"shell":        func() nodes.Executor { return nodes.NewShellExecutor() },
		"http":         func() nodes.Executor { return nodes.NewHTTPExecutor() },
		"text_input":   func() nodes.Executor { return nodes.NewTextInputExecutor() },
		"number_input": func() nodes.Executor { return nodes.NewNumberInputExecutor() },
		"transform":    func() nodes.Executor { return nodes.NewTransformExecutor() },
		"extract":      func() nodes.Executor { return nodes.NewExtractExecutor() },
		"variable":     func() nodes.Executor { return nodes.NewVariableExecutor() },
		"condition":    func() nodes.Executor { return nodes.NewConditionExecutor() },
	}
}
