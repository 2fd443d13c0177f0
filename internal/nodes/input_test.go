package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextInputEmitsStringValue(t *testing.T) {
	e := NewTextInputExecutor()
	out := newOut("t1")
	require.NoError(t, e.Execute(context.Background(), map[string]any{"value": "hello"}, out))

	v, _ := out.Get("value")
	assert.Equal(t, "hello", v)
}

func TestTextInputRejectsNonStringValue(t *testing.T) {
	e := NewTextInputExecutor()
	err := e.Execute(context.Background(), map[string]any{"value": 5}, newOut("t1"))
	assert.Error(t, err)
}

func TestNumberInputAcceptsNumericValue(t *testing.T) {
	e := NewNumberInputExecutor()
	out := newOut("n1")
	require.NoError(t, e.Execute(context.Background(), map[string]any{"value": 3.5}, out))

	v, _ := out.Get("value")
	assert.Equal(t, 3.5, v)
}

func TestNumberInputRejectsNonNumericValue(t *testing.T) {
	e := NewNumberInputExecutor()
	err := e.Execute(context.Background(), map[string]any{"value": "not a number"}, newOut("n1"))
	assert.Error(t, err)
}

func TestNumberInputRequiresValuePresent(t *testing.T) {
	e := NewNumberInputExecutor()
	err := e.Execute(context.Background(), map[string]any{}, newOut("n1"))
	assert.Error(t, err)
}
