package tracefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflowhq/pflow/internal/ir"
)

func TestWriteProducesVersionedDocument(t *testing.T) {
	dir := t.TempDir()
	path := DefaultPath(dir, "exec-123")

	written, err := Write(path, Document{
		ExecutionID: "exec-123",
		IRVersion:   "1.0",
		Mode:        ir.ModeStrict,
		Status:      ir.StatusSuccess,
		Nodes: []NodeEvent{
			{NodeID: "n1", NodeType: "echo", DurationMS: 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, Version, decoded["version"])
	assert.Equal(t, "exec-123", decoded["execution_id"])
	assert.Equal(t, "SUCCESS", decoded["status"])

	nodes := decoded["nodes"].([]any)
	require.Len(t, nodes, 1)
	firstNode := nodes[0].(map[string]any)
	assert.Equal(t, float64(5), firstNode["duration_ms"])
}

func TestWriteNeverEmitsNullArrays(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.trace.json")

	_, err := Write(path, Document{ExecutionID: "exec-empty"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, []any{}, decoded["nodes"])
	assert.Equal(t, []any{}, decoded["errors"])
	assert.Equal(t, []any{}, decoded["warnings"])
}

func TestDefaultPathIsConventional(t *testing.T) {
	path := DefaultPath("/tmp/traces", "abc")
	assert.Equal(t, "/tmp/traces/abc.trace.json", path)
}
