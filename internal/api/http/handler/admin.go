package handler

import (
	"net/http"
	"time"

	"github.com/EternisAI/agent-key/internal/admin"
	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/EternisAI/agent-key/internal/api/http/middleware"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	admin  *admin.Service
	engine CheckoutEngine
	now    func() time.Time
}

func NewAdminHandler(adminService *admin.Service, engine CheckoutEngine) *AdminHandler {
	return &AdminHandler{
		admin:  adminService,
		engine: engine,
		now:    time.Now,
	}
}

func (h *AdminHandler) CreateService(ctx *gin.Context) {
	var req dto.CreateServiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	service, err := h.admin.CreateService(ctx.Request.Context(), middleware.Admin(ctx), req.Provider, req.Name, req.BaseURL)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, serviceInfos([]sqlc.Service{service})[0])
}

func (h *AdminHandler) ListServices(ctx *gin.Context) {
	q, ok := page(ctx)
	if !ok {
		return
	}

	services, err := h.admin.ListServices(ctx.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		respondError(ctx, err)
		return
	}
	infos := serviceInfos(services)
	ctx.JSON(http.StatusOK, dto.ServicesResponse{Services: infos, Count: len(infos)})
}

func (h *AdminHandler) CreateKey(ctx *gin.Context) {
	var req dto.CreateKeyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		badRequest(ctx, err)
		return
	}

	key, err := h.admin.CreateStoredKey(ctx.Request.Context(), middleware.Admin(ctx), serviceID, req.Label, req.Secret)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, keyInfo(key))
}

func (h *AdminHandler) ListKeys(ctx *gin.Context) {
	q, ok := page(ctx)
	if !ok {
		return
	}

	keys, err := h.admin.ListStoredKeys(ctx.Request.Context(), middleware.Admin(ctx).OrgID, q.Limit, q.Offset)
	if err != nil {
		respondError(ctx, err)
		return
	}
	infos := make([]dto.KeyInfo, len(keys))
	for i, k := range keys {
		infos[i] = keyInfo(k)
	}
	ctx.JSON(http.StatusOK, dto.KeysResponse{Keys: infos, Count: len(infos)})
}

func (h *AdminHandler) RevokeKey(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	key, err := h.admin.RevokeStoredKey(ctx.Request.Context(), middleware.Admin(ctx).OrgID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, keyInfo(key))
}

func (h *AdminHandler) ListCheckouts(ctx *gin.Context) {
	q, ok := page(ctx)
	if !ok {
		return
	}

	summaries, err := h.admin.ListCheckouts(ctx.Request.Context(), middleware.Admin(ctx).OrgID, q.Limit, q.Offset)
	if err != nil {
		respondError(ctx, err)
		return
	}
	infos := checkoutInfos(summaries, h.now())
	ctx.JSON(http.StatusOK, dto.CheckoutsResponse{Checkouts: infos, Count: len(infos)})
}

func (h *AdminHandler) RevokeCheckout(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	summary, err := h.engine.Revoke(ctx.Request.Context(), middleware.Admin(ctx).OrgID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, checkoutInfo(summary, h.now()))
}

func (h *AdminHandler) ListAudit(ctx *gin.Context) {
	q, ok := page(ctx)
	if !ok {
		return
	}

	entries, err := h.admin.ListAudit(ctx.Request.Context(), middleware.Admin(ctx).OrgID, q.Limit, q.Offset)
	if err != nil {
		respondError(ctx, err)
		return
	}
	events := make([]dto.AuditEntry, len(entries))
	for i, e := range entries {
		events[i] = auditEntry(e)
	}
	ctx.JSON(http.StatusOK, dto.AuditResponse{Events: events, Count: len(events)})
}
