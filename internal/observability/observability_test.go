package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/flow", "200", 20*time.Millisecond)
	m.IncTransition("network_select", "own_handle", "network_chosen")
	m.IncTransition("network_select", "own_handle", "network_chosen")
	m.IncCheckout("one_time", "failed")

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	out := buf.String()
	assert.Contains(t, out, `silentview_api_requests_total{method="GET",route="/api/flow",status="200"} 1`)
	assert.Contains(t, out, `silentview_flow_transitions_total{from="network_select",to="own_handle",event="network_chosen"} 2`)
	assert.Contains(t, out, `silentview_checkouts_total{payment_type="one_time",outcome="failed"} 1`)
	assert.Contains(t, out, `silentview_api_request_duration_seconds_bucket{method="GET",route="/api/flow",le="0.05"} 1`)
	assert.Contains(t, out, `silentview_api_request_duration_seconds_bucket{method="GET",route="/api/flow",le="0.01"} 0`)
	assert.Contains(t, out, "# TYPE silentview_api_inflight_requests gauge")
	assert.EqualValues(t, 2, m.transitions.Value("network_select", "own_handle", "network_chosen"))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncTransition("a", "b", "c")
	m.InflightInc()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"api-key": "abc", "x": "y"}, ParseHeaders(" api-key=abc , x=y, broken, =z"))
	assert.Nil(t, ParseHeaders(""))
}
