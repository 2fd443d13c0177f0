package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflowhq/pflow/internal/registry"
)

func newTestRegistryWithEcho() *registry.Registry {
	reg := registry.New()
	reg.MustRegister(registry.Entry{
		Type:         "echo",
		OutputSchema: map[string]registry.FieldSchema{"result": {Type: "string"}},
	})
	return reg
}

const validTemplateWorkflow = `{
  "ir_version": "1.0",
  "inputs": {"name": {"type": "string", "required": true}},
  "nodes": [{"id": "greet", "type": "echo", "params": {"value": "${name}"}}],
  "outputs": {"out": {"source": "${greet.result}"}}
}`

const unknownNodeTypeWorkflow = `{
  "ir_version": "1.0",
  "nodes": [{"id": "n1", "type": "ecoh"}]
}`

const unresolvableTemplateWorkflow = `{
  "ir_version": "1.0",
  "nodes": [{"id": "n1", "type": "echo", "params": {"value": "${missing}"}}]
}`

const forwardReferenceWorkflow = `{
  "ir_version": "1.0",
  "nodes": [
    {"id": "n1", "type": "echo", "params": {"value": "${n2.result}"}},
    {"id": "n2", "type": "echo"}
  ]
}`

func TestValidateAcceptsWellFormedWorkflow(t *testing.T) {
	reg := newTestRegistryWithEcho()
	errs := Validate([]byte(validTemplateWorkflow), reg, map[string]any{"name": "ada"}, ForDisplay)
	assert.Empty(t, errs)
}

func TestValidateSkipsLayer3WhenParamsNil(t *testing.T) {
	reg := newTestRegistryWithEcho()
	errs := Validate([]byte(unresolvableTemplateWorkflow), reg, nil, ForDisplay)
	assert.Empty(t, errs, "Layer 3 must be skipped entirely when extractedParams is nil")
}

func TestValidateReportsUnknownNodeTypeWithSuggestion(t *testing.T) {
	reg := newTestRegistryWithEcho()
	errs := Validate([]byte(unknownNodeTypeWorkflow), reg, nil, ForDisplay)
	require.NotEmpty(t, errs)
	assert.Equal(t, CategoryUnknownNodeType, errs[0].Category)
	assert.Contains(t, errs[0].Suggestions, "echo")
}

func TestValidateReportsUnresolvableTemplate(t *testing.T) {
	reg := newTestRegistryWithEcho()
	errs := Validate([]byte(unresolvableTemplateWorkflow), reg, map[string]any{}, ForDisplay)
	require.NotEmpty(t, errs)
	assert.Equal(t, CategoryTemplateError, errs[0].Category)
}

func TestValidateRejectsForwardReferenceToLaterNode(t *testing.T) {
	reg := newTestRegistryWithEcho()
	errs := Validate([]byte(forwardReferenceWorkflow), reg, map[string]any{}, ForDisplay)
	require.NotEmpty(t, errs)
	assert.Equal(t, CategoryTemplateError, errs[0].Category)
}

func TestValidateForRepairCapsErrorCount(t *testing.T) {
	reg := newTestRegistryWithEcho()
	raw := []byte(`{
		"ir_version": "1.0",
		"nodes": [
			{"id": "n1", "type": "echo", "params": {"a": "${x}", "b": "${y}", "c": "${z}", "d": "${w}"}}
		]
	}`)
	errs := Validate(raw, reg, map[string]any{}, ForRepair)
	assert.LessOrEqual(t, len(errs), 3)
}

func TestValidateStopsAtFirstBlockingLayer(t *testing.T) {
	reg := newTestRegistryWithEcho()
	errs := Validate([]byte(`{"nodes": "not-an-array"}`), reg, map[string]any{}, ForDisplay)
	require.NotEmpty(t, errs)
	assert.Equal(t, CategorySchema, errs[0].Category)
}
