package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflowhq/pflow/internal/store"
)

func TestConditionExecutorEvaluatesBoolean(t *testing.T) {
	c := NewConditionExecutor()
	root := store.NewRoot()
	out := root.Namespace("cond")

	err := c.Execute(context.Background(), map[string]any{
		"expression": "input > 10",
		"input":      15,
	}, out)
	require.NoError(t, err)

	v, ok := out.Get("result")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestConditionExecutorEmptyExpressionDefaultsTrue(t *testing.T) {
	c := NewConditionExecutor()
	root := store.NewRoot()
	out := root.Namespace("cond")

	err := c.Execute(context.Background(), map[string]any{}, out)
	require.NoError(t, err)

	v, ok := out.Get("result")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestConditionExecutorNonBooleanErrors(t *testing.T) {
	c := NewConditionExecutor()
	root := store.NewRoot()
	out := root.Namespace("cond")

	err := c.Execute(context.Background(), map[string]any{
		"expression": "input",
		"input":      42,
	}, out)
	assert.Error(t, err)
}

func TestConditionExecutorReusesCompiledProgram(t *testing.T) {
	c := NewConditionExecutor()
	root := store.NewRoot()
	out := root.Namespace("cond")

	params := map[string]any{"expression": "input == 1", "input": 1}
	require.NoError(t, c.Execute(context.Background(), params, out))
	firstProgram := c.program

	require.NoError(t, c.Execute(context.Background(), params, out))
	assert.Same(t, firstProgram, c.program, "same expression must not recompile")
}
