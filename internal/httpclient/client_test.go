package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		cfg := DefaultConfig()
		client := New(&cfg)

		require.NotNil(t, client, "expected non-nil client")
		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
		assert.Equal(t, defaultUserAgent, client.userAgent, "expected default user agent")
	})

	t.Run("custom config", func(t *testing.T) {
		cfg := Config{
			DefaultTimeout: 5 * time.Second,
			UserAgent:      "TestAgent/1.0",
		}
		client := New(&cfg)

		assert.Equal(t, 5*time.Second, client.defaultTimeout, "expected timeout 5s")
		assert.Equal(t, "TestAgent/1.0", client.userAgent, "expected user agent 'TestAgent/1.0'")
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		client := New(nil)

		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
		assert.NotEmpty(t, client.userAgent, "expected non-empty user agent")
	})
}

func TestDo_BasicRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method, "expected GET method")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	client := New(nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err, "request failed")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected status 200")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read body")
	assert.Equal(t, "success", string(body), "expected body 'success'")
}

func TestDo_UserAgentInjected(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err, "request failed")
	resp.Body.Close()

	assert.Equal(t, defaultUserAgent, receivedUA, "expected default User-Agent")
}

func TestDo_DefaultTimeoutApplies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(&Config{DefaultTimeout: 50 * time.Millisecond})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	_, err = client.Do(context.Background(), req) //nolint:bodyclose // error path, no body
	require.Error(t, err, "expected timeout error")
}
