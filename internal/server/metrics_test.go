package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsScrape(t *testing.T) {
	m := NewMetrics()
	m.ObserveToolCall("search_contacts", "success", 120*time.Millisecond)
	m.ObserveToolCall("search_contacts", "error", 40*time.Millisecond)
	m.ObserveRefresh("success")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `contactkeeper_tool_calls_total{status="success",tool="search_contacts"} 1`)
	assert.Contains(t, out, `contactkeeper_tool_calls_total{status="error",tool="search_contacts"} 1`)
	assert.Contains(t, out, `contactkeeper_token_refreshes_total{status="success"} 1`)
	assert.Contains(t, out, "contactkeeper_tool_duration_seconds_bucket")
}

func TestMetricsServerHealthz(t *testing.T) {
	s := NewMetricsServer("", NewMetrics())
	assert.Equal(t, DefaultMetricsAddr, s.Addr())
}
