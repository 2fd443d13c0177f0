package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespacedGetSetIsolated(t *testing.T) {
	root := NewRoot()

	a := root.Namespace("node-a")
	a.Set("value", 42)

	b := root.Namespace("node-b")
	_, ok := b.Get("value")
	assert.False(t, ok, "node-b must not see node-a's namespace")

	v, ok := a.Get("value")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestEscapeKeysBypassNamespacing(t *testing.T) {
	root := NewRoot()

	ns := root.Namespace("node-a")
	ns.Set("__warnings__", []string{"w1"})

	raw, ok := root.RootGet("__warnings__")
	require.True(t, ok)
	assert.Equal(t, []string{"w1"}, raw)

	_, okInNamespace := ns.Get("__warnings__")
	assert.True(t, okInNamespace, "escape keys must read back the same way they were written")
}

func TestRootContextLookupNavigatesNodeOutput(t *testing.T) {
	root := NewRoot()
	root.SetInputs(map[string]any{"name": "world"})

	ns := root.Namespace("fetch")
	ns.Set("body", map[string]any{"status": "ok"})

	ctx := root.RootContextFor()

	assert.True(t, ctx.HeadExists("name"))
	assert.True(t, ctx.HeadExists("fetch"))
	assert.False(t, ctx.HeadExists("missing"))
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	root := NewRoot()
	ns := root.Namespace("n1")
	ns.Set("key", "value")

	snap := root.Snapshot()
	require.Contains(t, snap, "n1")

	ns.Set("key", "changed")
	nested := snap["n1"].(map[string]any)
	assert.Equal(t, "value", nested["key"], "snapshot must not reflect later writes")
}
