package nodes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pflowhq/pflow/internal/netguard"
	"github.com/pflowhq/pflow/internal/store"
)

const defaultMaxResponseBytes = 5 << 20 // 5 MiB

// HTTPExecutor performs an HTTP request and exposes status_code/body/
// content_type, grounded on the teacher's HTTPExecutor with the zero-trust
// SSRF posture from pkg/security/ssrf.go preserved, and on
// smilemakc-mbflow's builtin.HTTPExecutor for method/headers/body handling
// (method defaults to GET, headers are set verbatim, body is sent as-is).
// AllowHTTP is opt-in: every call before AllowHTTP is set is refused.
type HTTPExecutor struct {
	Client     *http.Client
	AllowHTTP  bool
	GuardCfg   netguard.Config
	MaxBodyLen int64
}

func NewHTTPExecutor() *HTTPExecutor {
	return &HTTPExecutor{
		Client:     &http.Client{Timeout: 30 * time.Second},
		GuardCfg:   netguard.DefaultConfig(),
		MaxBodyLen: defaultMaxResponseBytes,
	}
}

// Execute sends a request to params["url"] (params["method"], GET by default,
// with optional headers and body), writing status_code, body, and
// content_type into out. Non-2xx responses are data, not a wrapper
// failure — the same posture the teacher's HTTPExecutor takes toward 4xx/5xx
// bodies that a downstream node may want to inspect.
func (e *HTTPExecutor) Execute(ctx context.Context, params map[string]any, out *store.Namespaced) error {
	if !e.AllowHTTP {
		return fmt.Errorf("http node: outbound requests are disabled (AllowHTTP=false)")
	}

	url, ok := params["url"].(string)
	if !ok || url == "" {
		return fmt.Errorf("http node: missing or non-string \"url\" param")
	}

	if err := netguard.ValidateURL(url, e.GuardCfg); err != nil {
		return fmt.Errorf("http node: %w", err)
	}

	method := http.MethodGet
	if m, ok := params["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	var body io.Reader
	if b, ok := params["body"].(string); ok && b != "" {
		body = strings.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("http node: %w", err)
	}

	if headers, ok := params["headers"].(map[string]any); ok {
		for key, value := range headers {
			if strVal, ok := value.(string); ok {
				req.Header.Set(key, strVal)
			}
		}
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("http node: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.MaxBodyLen))
	if err != nil {
		return fmt.Errorf("http node: failed to read response body: %w", err)
	}

	out.Set("status_code", resp.StatusCode)
	out.Set("body", string(body))
	out.Set("content_type", resp.Header.Get("Content-Type"))
	return nil
}
