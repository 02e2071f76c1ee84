package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/EternisAI/agent-key/internal/auth"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"

	AgentKey = "agent"
	AdminKey = "admin"
)

type AgentAuthenticator interface {
	AuthenticateAgent(ctx context.Context, token string) (principal.Agent, error)
}

type AdminAuthenticator interface {
	AuthenticateAdmin(ctx context.Context, token string) (principal.Admin, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func rejectToken(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrInvalidToken) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	slog.Error("Token authentication failed", "path", c.Request.URL.Path, "error", err)
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication unavailable"})
}

func AgentAuth(authenticator AgentAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}

		agent, err := authenticator.AuthenticateAgent(c.Request.Context(), token)
		if err != nil {
			rejectToken(c, err)
			return
		}

		c.Set(AgentKey, agent)
		c.Next()
	}
}

func AdminAuth(authenticator AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}

		admin, err := authenticator.AuthenticateAdmin(c.Request.Context(), token)
		if err != nil {
			rejectToken(c, err)
			return
		}

		c.Set(AdminKey, admin)
		c.Next()
	}
}

// Agent returns the agent set by AgentAuth.
func Agent(c *gin.Context) principal.Agent {
	return c.MustGet(AgentKey).(principal.Agent)
}

// Admin returns the admin set by AdminAuth.
func Admin(c *gin.Context) principal.Admin {
	return c.MustGet(AdminKey).(principal.Admin)
}

func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader(apiKeyHeader)
		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing API key",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
			slog.Warn("Invalid API key attempt",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			return
		}

		c.Next()
	}
}
