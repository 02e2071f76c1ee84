package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCountersAreIndependentPerInstance(t *testing.T) {
	a, b := New(), New()

	a.CheckoutsTotal.WithLabelValues("success").Inc()
	a.CheckoutsTotal.WithLabelValues("success").Inc()

	assert.Contains(t, scrape(t, a), `agent_key_checkouts_total{outcome="success"} 2`)
	assert.NotContains(t, scrape(t, b), `agent_key_checkouts_total{outcome="success"}`)
}

func TestHandlerExposesEngineMetrics(t *testing.T) {
	m := New()
	m.ReturnsTotal.WithLabelValues("conflict").Inc()
	m.RevocationsTotal.WithLabelValues("revoked").Inc()
	m.CheckoutDurationSeconds.Observe(0.01)

	body := scrape(t, m)
	assert.Contains(t, body, `agent_key_returns_total{outcome="conflict"} 1`)
	assert.Contains(t, body, `agent_key_revocations_total{result="revoked"} 1`)
	assert.Contains(t, body, "agent_key_checkout_duration_seconds_count 1")
	assert.Contains(t, body, "go_goroutines")
}
