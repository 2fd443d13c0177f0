package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchDeclinesWithoutAPIKey(t *testing.T) {
	p := NewAnthropicPlanner("", "")

	_, err := p.Patch(context.Background(), []byte(`{}`), nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeclined))
}

func TestNewAnthropicPlannerDefaultsModel(t *testing.T) {
	p := NewAnthropicPlanner("key", "")
	assert.Equal(t, "claude-sonnet-4-5-20250929", p.model)
}

func TestNewAnthropicPlannerKeepsExplicitModel(t *testing.T) {
	p := NewAnthropicPlanner("key", "claude-opus-4-1")
	assert.Equal(t, "claude-opus-4-1", p.model)
}
