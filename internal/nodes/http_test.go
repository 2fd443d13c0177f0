package nodes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflowhq/pflow/internal/netguard"
)

func TestHTTPExecutorRejectsWhenDisabled(t *testing.T) {
	e := NewHTTPExecutor()
	err := e.Execute(context.Background(), map[string]any{"url": "https://example.com"}, newOut("h1"))
	assert.Error(t, err)
}

func TestHTTPExecutorFetchesAndRecordsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	e := NewHTTPExecutor()
	e.AllowHTTP = true
	e.GuardCfg = netguard.Config{AllowedSchemes: []string{"http"}}

	out := newOut("h1")
	err := e.Execute(context.Background(), map[string]any{"url": srv.URL}, out)
	require.NoError(t, err)

	status, _ := out.Get("status_code")
	body, _ := out.Get("body")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", body)
}

func TestHTTPExecutorSendsMethodHeadersAndBody(t *testing.T) {
	var gotMethod, gotHeader, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Custom")
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	e := NewHTTPExecutor()
	e.AllowHTTP = true
	e.GuardCfg = netguard.Config{AllowedSchemes: []string{"http"}}

	out := newOut("h1")
	err := e.Execute(context.Background(), map[string]any{
		"url":     srv.URL,
		"method":  "post",
		"headers": map[string]any{"X-Custom": "value"},
		"body":    `{"k":"v"}`,
	}, out)
	require.NoError(t, err)

	status, _ := out.Get("status_code")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "value", gotHeader)
	assert.Equal(t, `{"k":"v"}`, gotBody)
}

func TestHTTPExecutorBlocksDisallowedURL(t *testing.T) {
	e := NewHTTPExecutor()
	e.AllowHTTP = true
	err := e.Execute(context.Background(), map[string]any{"url": "http://127.0.0.1:1/x"}, newOut("h1"))
	assert.Error(t, err)
}

func TestHTTPExecutorRequiresURLParam(t *testing.T) {
	e := NewHTTPExecutor()
	e.AllowHTTP = true
	err := e.Execute(context.Background(), map[string]any{}, newOut("h1"))
	assert.Error(t, err)
}
