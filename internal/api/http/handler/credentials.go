package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/EternisAI/agent-key/internal/api/http/middleware"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutEngine is the part of the checkout service the HTTP surface drives.
type CheckoutEngine interface {
	Checkout(ctx context.Context, agent principal.Agent, serviceSlug string, ttlSeconds int) (checkout.Result, error)
	Return(ctx context.Context, agent principal.Agent, checkoutID uuid.UUID) (time.Time, error)
	ListActive(ctx context.Context, agent principal.Agent) ([]checkout.Summary, error)
	Revoke(ctx context.Context, orgID, checkoutID uuid.UUID) (checkout.Summary, error)
	ListVisibleServices(ctx context.Context, agent principal.Agent) ([]sqlc.Service, error)
}

type CredentialsHandler struct {
	engine CheckoutEngine
	now    func() time.Time
}

func NewCredentialsHandler(engine CheckoutEngine) *CredentialsHandler {
	return &CredentialsHandler{
		engine: engine,
		now:    time.Now,
	}
}

func (h *CredentialsHandler) Checkout(ctx *gin.Context) {
	var req dto.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	result, err := h.engine.Checkout(ctx.Request.Context(), middleware.Agent(ctx), req.Service, req.TTL)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.CheckoutResponse{
		CheckoutID:   result.CheckoutID.String(),
		Secret:       result.Secret,
		Service:      result.Service,
		PolicyID:     result.PolicyID.String(),
		CheckedOutAt: result.CheckedOutAt,
		ExpiresAt:    result.ExpiresAt,
		Note:         result.Note,
	})
}

func (h *CredentialsHandler) Return(ctx *gin.Context) {
	var req dto.ReturnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	checkoutID, err := uuid.Parse(req.CheckoutID)
	if err != nil {
		badRequest(ctx, err)
		return
	}

	returnedAt, err := h.engine.Return(ctx.Request.Context(), middleware.Agent(ctx), checkoutID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ReturnResponse{
		CheckoutID: checkoutID.String(),
		ReturnedAt: returnedAt,
	})
}

func (h *CredentialsHandler) ListActive(ctx *gin.Context) {
	summaries, err := h.engine.ListActive(ctx.Request.Context(), middleware.Agent(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	infos := checkoutInfos(summaries, h.now())
	ctx.JSON(http.StatusOK, dto.CheckoutsResponse{Checkouts: infos, Count: len(infos)})
}

func (h *CredentialsHandler) ListServices(ctx *gin.Context) {
	services, err := h.engine.ListVisibleServices(ctx.Request.Context(), middleware.Agent(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	infos := serviceInfos(services)
	ctx.JSON(http.StatusOK, dto.ServicesResponse{Services: infos, Count: len(infos)})
}
