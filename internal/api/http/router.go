package http

import (
	"github.com/EternisAI/agent-key/internal/admin"
	"github.com/EternisAI/agent-key/internal/api/http/handler"
	"github.com/EternisAI/agent-key/internal/api/http/middleware"
	"github.com/EternisAI/agent-key/internal/auth"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/metrics"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Store     *db.Store
	Auth      *auth.Service
	Admin     *admin.Service
	Checkouts *checkout.Service
	Metrics   *metrics.Metrics
}

func SetupRoute(engine *gin.Engine, config Config, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.Store)
	engine.GET("/health", healthHandler.Check)

	if srvs.Metrics != nil {
		metricsHandler := gin.WrapH(srvs.Metrics.Handler())
		if config.AdminAPIKey != "" {
			engine.GET("/metrics", middleware.APIKeyAuth(config.AdminAPIKey), metricsHandler)
		} else {
			engine.GET("/metrics", metricsHandler)
		}
	}

	authHandler := handler.NewAuthHandler(srvs.Auth)
	credentialsHandler := handler.NewCredentialsHandler(srvs.Checkouts)
	adminHandler := handler.NewAdminHandler(srvs.Admin, srvs.Checkouts)

	v1 := engine.Group("/v1")
	v1.POST("/bootstrap", authHandler.Bootstrap)

	agent := v1.Group("", middleware.AgentAuth(srvs.Auth))
	{
		agent.GET("/services", credentialsHandler.ListServices)
		agent.POST("/credentials/checkout", credentialsHandler.Checkout)
		agent.POST("/credentials/return", credentialsHandler.Return)
		agent.GET("/credentials/active", credentialsHandler.ListActive)
	}

	adminGroup := v1.Group("/admin", middleware.AdminAuth(srvs.Auth))
	{
		adminGroup.POST("/tokens", authHandler.CreateAdminToken)

		adminGroup.POST("/agents", authHandler.CreateAgent)
		adminGroup.GET("/agents", authHandler.ListAgents)
		adminGroup.DELETE("/agents/:id", authHandler.RevokeAgent)

		adminGroup.POST("/services", adminHandler.CreateService)
		adminGroup.GET("/services", adminHandler.ListServices)

		adminGroup.POST("/keys", adminHandler.CreateKey)
		adminGroup.GET("/keys", adminHandler.ListKeys)
		adminGroup.DELETE("/keys/:id", adminHandler.RevokeKey)

		adminGroup.POST("/policies", adminHandler.CreatePolicy)
		adminGroup.GET("/policies", adminHandler.ListPolicies)
		adminGroup.PUT("/policies/:id", adminHandler.UpdatePolicy)
		adminGroup.DELETE("/policies/:id", adminHandler.RevokePolicy)

		adminGroup.GET("/checkouts", adminHandler.ListCheckouts)
		adminGroup.POST("/checkouts/:id/revoke", adminHandler.RevokeCheckout)

		adminGroup.GET("/audit", adminHandler.ListAudit)
	}
}
