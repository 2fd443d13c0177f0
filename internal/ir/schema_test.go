package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalValidWorkflow = `{
  "ir_version": "1.0",
  "nodes": [{"id": "n1", "type": "echo"}]
}`

func TestValidateSchemaAcceptsMinimalWorkflow(t *testing.T) {
	assert.Empty(t, ValidateSchema([]byte(minimalValidWorkflow)))
}

func TestValidateSchemaRejectsMissingRequiredField(t *testing.T) {
	errs := ValidateSchema([]byte(`{"nodes": []}`))
	require.NotEmpty(t, errs)
	assert.Equal(t, CategorySchema, errs[0].Category)
}

func TestValidateSchemaRejectsInvalidResolutionMode(t *testing.T) {
	errs := ValidateSchema([]byte(`{
		"ir_version": "1.0",
		"template_resolution_mode": "loose",
		"nodes": []
	}`))
	require.NotEmpty(t, errs)
}

func TestValidateSchemaRejectsMalformedJSON(t *testing.T) {
	errs := ValidateSchema([]byte(`{not json`))
	require.NotEmpty(t, errs)
	assert.False(t, errs[0].Fixable)
}

func TestValidateSchemaRejectsAdditionalProperties(t *testing.T) {
	errs := ValidateSchema([]byte(`{
		"ir_version": "1.0",
		"nodes": [],
		"unexpected_key": true
	}`))
	require.NotEmpty(t, errs)
}

func TestValidateStructuralRejectsDuplicateNodeIDs(t *testing.T) {
	w := &Workflow{Nodes: []NodeSpec{{ID: "a"}, {ID: "a"}}}
	errs := validateStructural(w)
	require.NotEmpty(t, errs)
	assert.Equal(t, "a", errs[0].NodeID)
}

func TestValidateStructuralRejectsOptionalInputWithoutDefault(t *testing.T) {
	w := &Workflow{Inputs: map[string]InputSpec{
		"name": {Required: false, HasDefault: false},
	}}
	errs := validateStructural(w)
	require.NotEmpty(t, errs)
}

func TestValidateStructuralAcceptsRequiredInputWithoutDefault(t *testing.T) {
	w := &Workflow{Inputs: map[string]InputSpec{
		"name": {Required: true, HasDefault: false},
	}}
	assert.Empty(t, validateStructural(w))
}
