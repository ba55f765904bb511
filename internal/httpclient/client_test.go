package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := New(nil)
	t.Cleanup(client.Close)
	return client
}

func closeResponseBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

func TestNew(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		cfg := DefaultConfig()
		client := New(&cfg)

		require.NotNil(t, client, "expected non-nil client")
		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
		assert.Equal(t, defaultUserAgent, client.userAgent, "expected default user agent")
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		client := New(nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
		assert.NotEmpty(t, client.userAgent, "expected non-empty user agent")
	})

	t.Run("zero values use defaults", func(t *testing.T) {
		client := New(&Config{})
		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
		assert.NotEmpty(t, client.userAgent, "expected non-empty user agent")
	})
}

func TestDo_BasicRequest(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method, "expected GET method")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})

	client := newTestClient(t)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected status 200")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read body")
	assert.Equal(t, "success", string(body), "expected body 'success'")
}

func TestDo_UserAgent(t *testing.T) {
	receivedUA := ""
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	})

	client := New(&Config{UserAgent: "CustomAgent/2.0"})
	t.Cleanup(client.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, "CustomAgent/2.0", receivedUA, "expected User-Agent 'CustomAgent/2.0'")
}

func TestDo_PresetUserAgentIsKept(t *testing.T) {
	receivedUA := ""
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")
	req.Header.Set("User-Agent", "Preset/1.0")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, "Preset/1.0", receivedUA, "expected caller's User-Agent to be preserved")
}

func TestDo_ContextCancellation(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	// Cancel immediately
	cancel()

	resp, err := client.Do(ctx, req)
	defer closeResponseBody(t, resp)

	require.Error(t, err, "expected error from cancelled context")
	assert.ErrorIs(t, err, context.Canceled, "expected context.Canceled error")
}

func TestDo_DefaultTimeoutApplied(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	})

	client := New(&Config{DefaultTimeout: 50 * time.Millisecond})
	t.Cleanup(client.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	resp, err := client.Do(context.Background(), req)
	defer closeResponseBody(t, resp)

	require.Error(t, err, "expected timeout error")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "expected context.DeadlineExceeded error")
}

func TestDo_NilRequest(t *testing.T) {
	client := newTestClient(t)
	resp, err := client.Do(context.Background(), nil)
	require.Error(t, err, "expected error for nil request")
	assert.Nil(t, resp)
}

func TestPost_JSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"), "expected JSON content type")
		var p payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "railwatch", p.Name)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	resp, err := client.Post(context.Background(), server.URL, payload{Name: "railwatch"})
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPatchAndDelete(t *testing.T) {
	var methods []string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	resp, err := client.Patch(context.Background(), server.URL, map[string]string{"status": "Resolved"})
	require.NoError(t, err)
	closeResponseBody(t, resp)

	resp, err = client.Delete(context.Background(), server.URL)
	require.NoError(t, err)
	closeResponseBody(t, resp)

	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestHooksObserveRequests(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	client := newTestClient(t)

	var sawBefore, sawAfter bool
	client.SetBeforeRequestHook(func(req *http.Request) { sawBefore = true })
	client.SetAfterResponseHook(func(_ *http.Request, resp *http.Response, err error) {
		sawAfter = true
		assert.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	})

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	closeResponseBody(t, resp)

	assert.True(t, sawBefore, "before hook not invoked")
	assert.True(t, sawAfter, "after hook not invoked")
}
