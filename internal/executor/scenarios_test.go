package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflowhq/pflow/internal/compiler"
	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/nodes"
	"github.com/pflowhq/pflow/internal/registry"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
	"github.com/pflowhq/pflow/internal/store"
)

// literalDictExecutor writes a dict containing a string that merely looks
// like a template reference, the MCP false-positive fixture spec.md §8
// scenario S6 describes: a node's own output data, never itself resolved as
// a template.
type literalDictExecutor struct{}

func (literalDictExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	out.Set("result", map[string]any{"inner": "${OLD_VAR}"})
	return nil
}

func scenarioRegistry() *registry.Registry {
	reg := registry.New()
	reg.MustRegister(registry.Entry{
		Type:        "shell",
		ParamSchema: map[string]registry.FieldSchema{"command": {Type: "string", Required: true}, "args": {Type: "array"}},
		OutputSchema: map[string]registry.FieldSchema{
			"stdout": {Type: "string"}, "stderr": {Type: "string"}, "exit_code": {Type: "number"},
		},
	})
	reg.MustRegister(registry.Entry{
		Type:         "echo",
		ParamSchema:  map[string]registry.FieldSchema{"value": {Type: "any"}},
		OutputSchema: map[string]registry.FieldSchema{"result": {Type: "any"}},
	})
	reg.MustRegister(registry.Entry{
		Type:         "literal",
		OutputSchema: map[string]registry.FieldSchema{"result": {Type: "object"}},
	})
	return reg
}

func scenarioFactories() compiler.Factories {
	return compiler.Factories{
		"shell":   func() nodes.Executor { return nodes.NewShellExecutor() },
		"echo":    func() nodes.Executor { return echoExecutor{} },
		"literal": func() nodes.Executor { return literalDictExecutor{} },
	}
}

// S1 — Basic success.
const s1Workflow = `{
  "ir_version": "1.0",
  "template_resolution_mode": "strict",
  "outputs": {"result": {"source": "${consumer.stdout}"}},
  "nodes": [
    {"id": "producer", "type": "shell", "params": {"command": "echo", "args": ["Hello World"]}},
    {"id": "consumer", "type": "shell", "params": {"command": "echo", "args": ["Got: ${producer.stdout}"]}}
  ]
}`

func TestScenarioS1BasicSuccess(t *testing.T) {
	graph, errs := compiler.Compile([]byte(s1Workflow), scenarioRegistry(), scenarioFactories(), runtimeconfig.Testing(), nil)
	require.Empty(t, errs)

	result := Execute(context.Background(), graph, nil, Options{}, nil, nil)

	require.Equal(t, ir.StatusSuccess, result.Status)
	assert.Equal(t, "Got: Hello World", result.Outputs["result"])
}

// S2 — Strict fails fast.
const s2Workflow = `{
  "ir_version": "1.0",
  "template_resolution_mode": "strict",
  "nodes": [
    {"id": "will-fail", "type": "shell", "params": {"command": "echo", "args": ["Value: ${missing}"]}}
  ]
}`

func TestScenarioS2StrictFailsFast(t *testing.T) {
	graph, errs := compiler.Compile([]byte(s2Workflow), scenarioRegistry(), scenarioFactories(), runtimeconfig.Testing(), nil)
	require.Empty(t, errs)

	result := Execute(context.Background(), graph, nil, Options{}, nil, nil)

	require.Equal(t, ir.StatusFailed, result.Status)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, ir.CategoryTemplateError, result.Errors[0].Category)
	assert.Equal(t, "will-fail", result.Errors[0].NodeID)
	assert.Contains(t, result.Errors[0].Message, "missing")
	assert.Empty(t, result.Errors[0].AvailableFields)
}

// S3 — Permissive degrades.
const s3Workflow = `{
  "ir_version": "1.0",
  "template_resolution_mode": "permissive",
  "outputs": {"stdout": {"source": "${will-fail.stdout}"}},
  "nodes": [
    {"id": "will-fail", "type": "shell", "params": {"command": "echo", "args": ["Value: ${missing}"]}}
  ]
}`

func TestScenarioS3PermissiveDegrades(t *testing.T) {
	graph, errs := compiler.Compile([]byte(s3Workflow), scenarioRegistry(), scenarioFactories(), runtimeconfig.Testing(), nil)
	require.Empty(t, errs)

	result := Execute(context.Background(), graph, nil, Options{}, nil, nil)

	require.Equal(t, ir.StatusDegraded, result.Status)
	assert.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Outputs["stdout"], "Value: ${missing}")
}

// S4 — Partial resolution detected.
const s4Workflow = `{
  "ir_version": "1.0",
  "template_resolution_mode": "strict",
  "nodes": [
    {"id": "name", "type": "shell", "params": {"command": "echo", "args": ["Alice"]}},
    {"id": "builder", "type": "shell", "params": {"command": "echo", "args": ["User ${name.stdout} has ${missing_count} items"]}}
  ]
}`

func TestScenarioS4PartialResolutionDetected(t *testing.T) {
	graph, errs := compiler.Compile([]byte(s4Workflow), scenarioRegistry(), scenarioFactories(), runtimeconfig.Testing(), nil)
	require.Empty(t, errs)

	result := Execute(context.Background(), graph, nil, Options{}, nil, nil)

	require.Equal(t, ir.StatusFailed, result.Status)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "builder", result.Errors[0].NodeID)
	assert.Contains(t, result.Errors[0].Message, "missing_count")
}

// S5 — Mode precedence: the IR's own strict mode wins over a settings-file
// default of permissive.
const s5Workflow = `{
  "ir_version": "1.0",
  "template_resolution_mode": "strict",
  "nodes": [
    {"id": "will-fail", "type": "shell", "params": {"command": "echo", "args": ["Value: ${missing}"]}}
  ]
}`

func TestScenarioS5ModePrecedenceIRWins(t *testing.T) {
	cfg := runtimeconfig.Testing()
	cfg.Runtime.TemplateResolutionMode = ir.ModePermissive

	graph, errs := compiler.Compile([]byte(s5Workflow), scenarioRegistry(), scenarioFactories(), cfg, nil)
	require.Empty(t, errs)
	require.Equal(t, ir.ModeStrict, graph.Mode)

	result := Execute(context.Background(), graph, nil, Options{}, nil, nil)
	assert.Equal(t, ir.StatusFailed, result.Status)
}

// S6 — MCP false-positive protection: a node's own output data containing a
// string that merely looks like a template is never re-resolved.
const s6Workflow = `{
  "ir_version": "1.0",
  "template_resolution_mode": "strict",
  "outputs": {"passthrough": {"source": "${producer.result}"}},
  "nodes": [
    {"id": "producer", "type": "literal", "params": {}},
    {"id": "consumer", "type": "echo", "params": {"value": "${producer.result}"}}
  ]
}`

func TestScenarioS6MCPFalsePositiveProtection(t *testing.T) {
	graph, errs := compiler.Compile([]byte(s6Workflow), scenarioRegistry(), scenarioFactories(), runtimeconfig.Testing(), nil)
	require.Empty(t, errs)

	result := Execute(context.Background(), graph, nil, Options{}, nil, nil)

	require.Equal(t, ir.StatusSuccess, result.Status)
	assert.Equal(t, map[string]any{"inner": "${OLD_VAR}"}, result.Outputs["passthrough"])
}
