package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminSetup(t *testing.T, router *gin.Engine, fx *Fixture) {
	require.NotEmpty(t, fx.AdminToken)

	t.Run("admin routes require an admin token", func(t *testing.T) {
		rr := doJSON(router, http.MethodGet, "/v1/admin/agents", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("agents", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodPost, "/v1/admin/agents", dto.CreateTokenRequest{Name: "worker"}, fx.AdminToken)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		agent := decode[dto.TokenResponse](t, rr)
		assert.True(t, strings.HasPrefix(agent.Token, "agt_"))
		fx.AgentToken = agent.Token

		rr = doJSONWithAuth(router, http.MethodPost, "/v1/admin/agents", dto.CreateTokenRequest{Name: "worker"}, fx.AdminToken)
		assert.Equal(t, http.StatusConflict, rr.Code)

		rr = doJSONWithAuth(router, http.MethodPost, "/v1/admin/agents", dto.CreateTokenRequest{Name: "other"}, fx.AdminToken)
		require.Equal(t, http.StatusCreated, rr.Code)
		other := decode[dto.TokenResponse](t, rr)
		fx.OtherAgentToken = other.Token
		fx.OtherAgentID = other.ID

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/agents", nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, decode[dto.AgentsResponse](t, rr).Count)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/agents", nil, fx.AgentToken)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("admin tokens", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodPost, "/v1/admin/tokens", dto.CreateTokenRequest{Name: "ops"}, fx.AdminToken)
		require.Equal(t, http.StatusCreated, rr.Code)
		second := decode[dto.TokenResponse](t, rr)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/agents", nil, second.Token)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("services", func(t *testing.T) {
		body := dto.CreateServiceRequest{Provider: "openai", Name: "OpenAI", BaseURL: "https://api.openai.com"}
		rr := doJSONWithAuth(router, http.MethodPost, "/v1/admin/services", body, fx.AdminToken)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		fx.ServiceID = decode[dto.ServiceInfo](t, rr).ID

		rr = doJSONWithAuth(router, http.MethodPost, "/v1/admin/services", body, fx.AdminToken)
		assert.Equal(t, http.StatusConflict, rr.Code)

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/services", nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, decode[dto.ServicesResponse](t, rr).Count)
	})

	t.Run("stored keys", func(t *testing.T) {
		fx.Secret = "sk-test-secret"
		body := dto.CreateKeyRequest{ServiceID: fx.ServiceID, Label: "primary", Secret: fx.Secret}
		rr := doJSONWithAuth(router, http.MethodPost, "/v1/admin/keys", body, fx.AdminToken)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.NotContains(t, rr.Body.String(), fx.Secret)
		fx.KeyID = decode[dto.KeyInfo](t, rr).ID

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/keys", nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), fx.Secret)
		assert.Equal(t, 1, decode[dto.KeysResponse](t, rr).Count)
	})

	t.Run("policies", func(t *testing.T) {
		body := dto.CreatePolicyRequest{
			ServiceID:             fx.ServiceID,
			MaxCheckoutsPerWindow: 3,
			CheckoutWindow:        "daily",
			MaxActiveCheckouts:    1,
			MaxTTLSeconds:         600,
		}
		rr := doJSONWithAuth(router, http.MethodPost, "/v1/admin/policies", body, fx.AdminToken)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		p := decode[dto.PolicyInfo](t, rr)
		assert.True(t, p.Enabled)
		assert.Nil(t, p.AgentTokenID)
		fx.PolicyID = p.ID

		rr = doJSONWithAuth(router, http.MethodPost, "/v1/admin/policies", body, fx.AdminToken)
		assert.Equal(t, http.StatusConflict, rr.Code)

		body.CheckoutWindow = "weekly"
		rr = doJSONWithAuth(router, http.MethodPost, "/v1/admin/policies", body, fx.AdminToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		ttl := 600
		rr = doJSONWithAuth(router, http.MethodPut, "/v1/admin/policies/"+fx.PolicyID, dto.UpdatePolicyRequest{MaxTTLSeconds: &ttl}, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = doJSONWithAuth(router, http.MethodGet, "/v1/admin/policies", nil, fx.AdminToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, decode[dto.PoliciesResponse](t, rr).Count)
	})
}
