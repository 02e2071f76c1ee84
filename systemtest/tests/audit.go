package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditTrail(t *testing.T, router *gin.Engine, fx *Fixture) {
	t.Run("checkouts", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/v1/admin/checkouts", nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)

		statuses := map[string]int{}
		for _, c := range decode[dto.CheckoutsResponse](t, rr).Checkouts {
			statuses[c.Status]++
		}
		assert.Equal(t, map[string]int{"returned": 2, "revoked": 1}, statuses)
	})

	t.Run("events", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/v1/admin/audit?limit=200", nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)

		actions := map[string]int{}
		for _, e := range decode[dto.AuditResponse](t, rr).Events {
			actions[e.Action]++
		}
		assert.Equal(t, 1, actions[audit.ActionOrganizationBootstrapped])
		assert.Equal(t, 3, actions[audit.ActionKeyCheckedOut])
		assert.Equal(t, 2, actions[audit.ActionKeyReturned])
		assert.Equal(t, 1, actions[audit.ActionCheckoutRevoked])
		assert.Equal(t, 1, actions[audit.ActionStoredKeyRevoked])
		assert.Equal(t, 1, actions[audit.ActionAgentTokenRevoked])
	})

	t.Run("page bounds", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/v1/admin/audit?limit=500", nil, fx.AdminToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/audit?offset=-1", nil, fx.AdminToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/audit?limit=2", nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, decode[dto.AuditResponse](t, rr).Count)
	})
}

func TestMetrics(t *testing.T, router *gin.Engine, apiKey string) {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-API-Key", apiKey)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "agent_key_checkouts_total")
	assert.Contains(t, rr.Body.String(), `outcome="quota_exceeded"`)
}
