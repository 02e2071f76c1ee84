package handler

import (
	"net/http"

	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/EternisAI/agent-key/internal/api/http/middleware"
	"github.com/EternisAI/agent-key/internal/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

func (h *AuthHandler) Bootstrap(ctx *gin.Context) {
	var req dto.BootstrapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	result, err := h.auth.Bootstrap(ctx.Request.Context(), req.OrgName, req.AdminTokenName)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.BootstrapResponse{
		OrgID:        result.OrgID.String(),
		OrgName:      result.OrgName,
		AdminTokenID: result.AdminTokenID.String(),
		AdminToken:   result.AdminToken,
	})
}

func (h *AuthHandler) CreateAdminToken(ctx *gin.Context) {
	var req dto.CreateTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	token, err := h.auth.CreateAdminToken(ctx.Request.Context(), middleware.Admin(ctx), req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, tokenResponse(token))
}

func (h *AuthHandler) CreateAgent(ctx *gin.Context) {
	var req dto.CreateTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	token, err := h.auth.CreateAgentToken(ctx.Request.Context(), middleware.Admin(ctx), req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, tokenResponse(token))
}

func (h *AuthHandler) ListAgents(ctx *gin.Context) {
	q, ok := page(ctx)
	if !ok {
		return
	}

	tokens, err := h.auth.ListAgentTokens(ctx.Request.Context(), middleware.Admin(ctx).OrgID, q.Limit, q.Offset)
	if err != nil {
		respondError(ctx, err)
		return
	}

	agents := make([]dto.AgentInfo, len(tokens))
	for i, t := range tokens {
		agents[i] = dto.AgentInfo{
			ID:        t.ID.String(),
			Name:      t.Name,
			CreatedAt: t.CreatedAt,
			RevokedAt: t.RevokedAt,
		}
	}
	ctx.JSON(http.StatusOK, dto.AgentsResponse{Agents: agents, Count: len(agents)})
}

func (h *AuthHandler) RevokeAgent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.auth.RevokeAgentToken(ctx.Request.Context(), middleware.Admin(ctx).OrgID, id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
