package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tool/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"tool 'missing' not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"t1","name":"search"}`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	tools := New(server.URL, WithMetrics(metrics)).Tool
	_, err = tools.GetTool(context.Background(), "search")
	require.NoError(t, err)
	_, err = tools.GetTool(context.Background(), "search")
	require.NoError(t, err)
	_, err = tools.GetTool(context.Background(), "missing")
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("tool", "get", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("tool", "get", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))
}

func TestMetricsCountTransportFailures(t *testing.T) {
	metrics, err := NewMetrics(nil)
	require.NoError(t, err)

	agents := New("http://makima.invalid", WithTransport(failingTransport{}), WithMetrics(metrics)).Agent
	_, err = agents.ListAgents(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("agent", "list", "error")))
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)

	second.observe("thread", "get", http.StatusOK, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.requests.WithLabelValues("thread", "get", "200")))
}
