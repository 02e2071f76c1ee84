package tests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T, router *gin.Engine) {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, rr).Status)
}

func TestBootstrap(t *testing.T, router *gin.Engine, fx *Fixture) {
	t.Run("missing fields", func(t *testing.T) {
		rr := doJSON(router, http.MethodPost, "/v1/bootstrap", dto.BootstrapRequest{OrgName: "acme"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("first call creates the organization", func(t *testing.T) {
		rr := doJSON(router, http.MethodPost, "/v1/bootstrap", dto.BootstrapRequest{OrgName: "acme", AdminTokenName: "root"})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		resp := decode[dto.BootstrapResponse](t, rr)
		assert.Equal(t, "acme", resp.OrgName)
		assert.True(t, strings.HasPrefix(resp.AdminToken, "adm_"))
		fx.AdminToken = resp.AdminToken
	})

	t.Run("second call conflicts", func(t *testing.T) {
		rr := doJSON(router, http.MethodPost, "/v1/bootstrap", dto.BootstrapRequest{OrgName: "globex", AdminTokenName: "root"})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "conflict", decode[dto.ErrorResponse](t, rr).Kind)
	})
}
