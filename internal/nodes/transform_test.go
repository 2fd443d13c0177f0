package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflowhq/pflow/internal/store"
)

func newOut(nodeID string) *store.Namespaced {
	return store.NewRoot().Namespace(nodeID)
}

func TestTransformToObjectPairsUpElements(t *testing.T) {
	e := NewTransformExecutor()
	out := newOut("t1")
	err := e.Execute(context.Background(), map[string]any{
		"transform_type": "to_object",
		"input":          []any{"a", 1, "b", 2},
	}, out)
	require.NoError(t, err)
	v, _ := out.Get("result")
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, v)
}

func TestTransformFlattenFlattensNestedArrays(t *testing.T) {
	e := NewTransformExecutor()
	out := newOut("t1")
	err := e.Execute(context.Background(), map[string]any{
		"transform_type": "flatten",
		"input":          []any{1, []any{2, 3}, []any{[]any{4}}},
	}, out)
	require.NoError(t, err)
	v, _ := out.Get("result")
	assert.Equal(t, []any{1, 2, 3, 4}, v)
}

func TestTransformKeysAndValues(t *testing.T) {
	e := NewTransformExecutor()
	obj := map[string]any{"a": 1}

	out := newOut("t1")
	require.NoError(t, e.Execute(context.Background(), map[string]any{
		"transform_type": "keys", "input": obj,
	}, out))
	v, _ := out.Get("result")
	assert.Equal(t, []any{"a"}, v)

	out2 := newOut("t2")
	require.NoError(t, e.Execute(context.Background(), map[string]any{
		"transform_type": "values", "input": obj,
	}, out2))
	v2, _ := out2.Get("result")
	assert.Equal(t, []any{1}, v2)
}

func TestTransformRejectsUnsupportedType(t *testing.T) {
	e := NewTransformExecutor()
	err := e.Execute(context.Background(), map[string]any{
		"transform_type": "reverse", "input": []any{1},
	}, newOut("t1"))
	assert.Error(t, err)
}

func TestTransformRequiresInputParam(t *testing.T) {
	e := NewTransformExecutor()
	err := e.Execute(context.Background(), map[string]any{"transform_type": "flatten"}, newOut("t1"))
	assert.Error(t, err)
}
