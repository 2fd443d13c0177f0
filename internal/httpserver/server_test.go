package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflowhq/pflow/internal/defaults"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
)

const setVariableWorkflow = `{
  "ir_version": "1.0",
  "outputs": {"stored": {"source": "${remember.value}"}},
  "nodes": [
    {"id": "remember", "type": "variable", "params": {"var_name": "greeting", "var_op": "set", "value": "hello"}}
  ]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(DefaultConfig(), defaults.NewRegistry(), defaults.NewFactories(), runtimeconfig.Testing(), nil, nil)
	require.NoError(t, err)
	return srv
}

func (s *Server) testMux() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.middlewareChain(mux)
}

func TestHandleExecuteRunsWorkflowAndReturnsOutputs(t *testing.T) {
	srv := newTestServer(t)

	reqBody, err := json.Marshal(executeRequest{Workflow: json.RawMessage(setVariableWorkflow)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflow/execute", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	srv.testMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp executeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SUCCESS", resp.Status)
	assert.Equal(t, "hello", resp.Outputs["stored"])
}

func TestHandleExecuteRejectsNonPost(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflow/execute", nil)
	rec := httptest.NewRecorder()
	srv.testMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleValidateReportsNoErrorsForValidWorkflow(t *testing.T) {
	srv := newTestServer(t)

	reqBody, err := json.Marshal(validateRequest{Workflow: json.RawMessage(setVariableWorkflow)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflow/validate", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	srv.testMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
}

func TestHandleValidateReportsUnknownNodeType(t *testing.T) {
	srv := newTestServer(t)

	workflow := `{"ir_version": "1.0", "nodes": [{"id": "a", "type": "does_not_exist", "params": {}}]}`
	reqBody, err := json.Marshal(validateRequest{Workflow: json.RawMessage(workflow)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflow/validate", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	srv.testMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.NotEmpty(t, resp.Errors)
}

func TestHandleDescribeReturnsAllRegisteredTypesByDefault(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry", nil)
	rec := httptest.NewRecorder()
	srv.testMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, len(defaults.NewRegistry().Load()))
}

func TestHandleDescribeFiltersByTypeQueryParam(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry?type=variable", nil)
	rec := httptest.NewRecorder()
	srv.testMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "variable", entries[0]["type"])
}

func TestMetricsEndpointIsMounted(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.testMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
