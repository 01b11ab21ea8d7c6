package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makima-ai/makima-go/internal/version"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

func TestEscapePath(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{[]string{"plain"}, "/plain"},
		{[]string{"a/b"}, "/a%2Fb"},
		{[]string{"a b"}, "/a%20b"},
		{[]string{"a?b&c"}, "/a%3Fb&c"},
		{[]string{"100%"}, "/100%25"},
		{[]string{"x", "add-tool", "y/z"}, "/x/add-tool/y%2Fz"},
		{[]string{"."}, "/%2E"},
		{[]string{"..", "documents"}, "/%2E%2E/documents"},
		{[]string{"a.b", "..."}, "/a.b/..."},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, escapePath(tt.segments...))
		})
	}
}

func TestNewBaseClientTrimsTrailingSlash(t *testing.T) {
	c := NewBaseClient("http://localhost:7777/")
	assert.Equal(t, "http://localhost:7777", c.BaseURL)
	assert.Equal(t, "http://localhost:7777/agent/?x=1", c.buildURL("/agent/", map[string][]string{"x": {"1"}}))
}

func TestInvokeSendsOneJSONRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agent/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, version.UserAgent(), r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"name":"helper","prompt":"p","primaryModel":"m"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"a1","name":"helper"}`))
	}))
	defer server.Close()

	c := NewBaseClient(server.URL, WithHeader("Authorization", "Bearer token"))
	agent, err := invoke[api.Agent](context.Background(), c, request{
		resource: "agent",
		action:   "create",
		op:       "create agent",
		method:   http.MethodPost,
		path:     "/agent/create",
		body:     &api.AgentParams{Name: "helper", Prompt: "p", PrimaryModel: "m"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", agent.ID)
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvokeOmitsContentTypeWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	tools, err := invoke[[]api.Tool](context.Background(), NewBaseClient(server.URL), request{
		op: "get all tools", method: http.MethodGet, path: "/tool/",
	})
	require.NoError(t, err)
	assert.Empty(t, *tools)
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"message field", http.StatusNotFound, `{"message":"agent 'x' not found"}`, "agent 'x' not found"},
		{"error field", http.StatusConflict, `{"error":"already exists"}`, "already exists"},
		{"plain text", http.StatusBadGateway, "upstream unavailable\n", "upstream unavailable"},
		{"empty body", http.StatusInternalServerError, "", "Internal Server Error"},
		{"html body", http.StatusServiceUnavailable, "<html>down</html>", "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := invoke[api.Agent](context.Background(), NewBaseClient(server.URL), request{
				op: "get agent 'x'", method: http.MethodGet, path: "/agent/x",
			})
			var serviceErr *ServiceError
			require.ErrorAs(t, err, &serviceErr)
			assert.Equal(t, tt.status, serviceErr.StatusCode)
			assert.Equal(t, tt.wantMessage, serviceErr.Message)
			assert.Equal(t, tt.body, serviceErr.Body)
			assert.True(t, strings.HasPrefix(err.Error(), "failed to get agent 'x': HTTP "))
			assert.Equal(t, int32(1), calls.Load(), "failed requests are not retried")
		})
	}
}

func TestMalformedResponseIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	defer server.Close()

	_, err := invoke[api.Agent](context.Background(), NewBaseClient(server.URL), request{
		op: "get agent 'x'", method: http.MethodGet, path: "/agent/x",
	})
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "get agent 'x'", transportErr.Op)
	assert.ErrorContains(t, err, "failed to decode response body")
}

func TestEmptySuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	c := NewBaseClient(server.URL)

	status, err := invoke[api.StatusMessage](context.Background(), c, request{
		op: "delete tool 't'", method: http.MethodDelete, path: "/tool/t",
	})
	require.NoError(t, err)
	assert.Equal(t, "OK", status.Message)

	_, err = invoke[api.Tool](context.Background(), c, request{
		op: "get tool 't'", method: http.MethodGet, path: "/tool/t",
	})
	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestStatusMessageBodies(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"message":"agent 'a' deleted"}`, "agent 'a' deleted"},
		{`"deleted"`, "deleted"},
		{`Deleted successfully`, "Deleted successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var msg api.StatusMessage
			require.NoError(t, decodeBody([]byte(tt.body), http.StatusOK, &msg))
			assert.Equal(t, tt.want, msg.Message)
		})
	}
}

type failingTransport struct{}

func (failingTransport) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransportFailure(t *testing.T) {
	c := NewBaseClient("http://makima.invalid", WithTransport(failingTransport{}))
	_, err := invoke[api.Agent](context.Background(), c, request{
		op: "get agent 'x'", method: http.MethodGet, path: "/agent/x",
	})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.EqualError(t, err, "failed to get agent 'x': connection refused")
	assert.EqualError(t, errors.Unwrap(err), "connection refused")
}

func TestUnencodableBody(t *testing.T) {
	c := NewBaseClient("http://makima.invalid", WithTransport(failingTransport{}))
	_, err := invoke[api.Agent](context.Background(), c, request{
		op: "create agent", method: http.MethodPost, path: "/agent/create", body: map[string]any{"bad": make(chan int)},
	})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorContains(t, err, "failed to marshal request body")
}

func TestServiceErrorWithoutOp(t *testing.T) {
	err := &ServiceError{StatusCode: http.StatusNotFound, Message: "tool 't' not found"}
	assert.EqualError(t, err, "HTTP 404: tool 't' not found")
}

func TestWithHeaderOverridesUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"my-app/2.0"}, r.Header.Values("User-Agent"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewBaseClient(server.URL, WithHeader("User-Agent", "my-app/2.0"))
	_, err := invoke[[]api.Agent](context.Background(), c, request{
		resource: "agent",
		action:   "list",
		op:       "list agents",
		method:   http.MethodGet,
		path:     "/agent/",
	})
	require.NoError(t, err)
}
