package tests

import (
	"net/http"
	"testing"

	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkout(t *testing.T, router *gin.Engine, token string, ttl int) (dto.CheckoutResponse, int, string) {
	t.Helper()
	rr := doJSONWithAuth(router, http.MethodPost, "/v1/credentials/checkout", dto.CheckoutRequest{Service: "openai", TTL: ttl}, token)
	if rr.Code != http.StatusOK {
		return dto.CheckoutResponse{}, rr.Code, decode[dto.ErrorResponse](t, rr).Kind
	}
	return decode[dto.CheckoutResponse](t, rr), rr.Code, ""
}

func returnCheckout(router *gin.Engine, token, checkoutID string) int {
	return doJSONWithAuth(router, http.MethodPost, "/v1/credentials/return", dto.ReturnRequest{CheckoutID: checkoutID}, token).Code
}

func TestCheckoutFlow(t *testing.T, router *gin.Engine, fx *Fixture) {
	require.NotEmpty(t, fx.AgentToken)

	t.Run("visible services", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/v1/services", nil, fx.AgentToken)
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[dto.ServicesResponse](t, rr)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "openai", resp.Services[0].Provider)
	})

	t.Run("agent routes require an agent token", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/v1/services", nil, fx.AdminToken)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	first, code, _ := checkout(t, router, fx.AgentToken, 300)
	require.Equal(t, http.StatusOK, code)

	t.Run("checkout returns the decrypted secret", func(t *testing.T) {
		assert.Equal(t, fx.Secret, first.Secret)
		assert.Equal(t, fx.PolicyID, first.PolicyID)
		assert.Equal(t, 300.0, first.ExpiresAt.Sub(first.CheckedOutAt).Seconds())
		assert.NotEmpty(t, first.Note)
	})

	t.Run("rejections", func(t *testing.T) {
		_, code, kind := checkout(t, router, fx.AgentToken, 300)
		assert.Equal(t, http.StatusTooManyRequests, code)
		assert.Equal(t, "active_cap_exceeded", kind)

		_, code, kind = checkout(t, router, fx.AgentToken, 3600)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "policy_denied", kind)

		_, code, _ = checkout(t, router, fx.AgentToken, 10)
		assert.Equal(t, http.StatusBadRequest, code)

		rr := doJSONWithAuth(router, http.MethodPost, "/v1/credentials/checkout", dto.CheckoutRequest{Service: "anthropic"}, fx.AgentToken)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("active listing", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/v1/credentials/active", nil, fx.AgentToken)
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[dto.CheckoutsResponse](t, rr)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, first.CheckoutID, resp.Checkouts[0].ID)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/credentials/active", nil, fx.OtherAgentToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 0, decode[dto.CheckoutsResponse](t, rr).Count)
	})

	t.Run("return", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, returnCheckout(router, fx.OtherAgentToken, first.CheckoutID))
		assert.Equal(t, http.StatusOK, returnCheckout(router, fx.AgentToken, first.CheckoutID))
		assert.Equal(t, http.StatusConflict, returnCheckout(router, fx.AgentToken, first.CheckoutID))
	})

	t.Run("admin revoke", func(t *testing.T) {
		second, code, _ := checkout(t, router, fx.AgentToken, 300)
		require.Equal(t, http.StatusOK, code)

		path := "/v1/admin/checkouts/" + second.CheckoutID + "/revoke"
		rr := doJSONWithAuth(router, http.MethodPost, path, nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		revoked := decode[dto.CheckoutInfo](t, rr)
		assert.Equal(t, "revoked", revoked.Status)

		rr = doJSONWithAuth(router, http.MethodPost, path, nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, *revoked.RevokedAt, *decode[dto.CheckoutInfo](t, rr).RevokedAt)

		assert.Equal(t, http.StatusConflict, returnCheckout(router, fx.AgentToken, second.CheckoutID))
	})

	t.Run("window quota", func(t *testing.T) {
		third, code, _ := checkout(t, router, fx.AgentToken, 300)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, http.StatusOK, returnCheckout(router, fx.AgentToken, third.CheckoutID))

		_, code, kind := checkout(t, router, fx.AgentToken, 300)
		assert.Equal(t, http.StatusTooManyRequests, code)
		assert.Equal(t, "quota_exceeded", kind)
	})

	t.Run("revoked stored key", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodDelete, "/v1/admin/keys/"+fx.KeyID, nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)

		_, code, kind := checkout(t, router, fx.OtherAgentToken, 300)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "conflict", kind)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/services", nil, fx.AgentToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 0, decode[dto.ServicesResponse](t, rr).Count)
	})

	t.Run("revoked agent token", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodDelete, "/v1/admin/agents/"+fx.OtherAgentID, nil, fx.AdminToken)
		require.Equal(t, http.StatusNoContent, rr.Code)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/credentials/active", nil, fx.OtherAgentToken)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
