package handler

import (
	"net/http"

	"github.com/EternisAI/agent-key/internal/admin"
	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/EternisAI/agent-key/internal/api/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *AdminHandler) CreatePolicy(ctx *gin.Context) {
	var req dto.CreatePolicyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	in, err := policyInput(req)
	if err != nil {
		badRequest(ctx, err)
		return
	}

	p, err := h.admin.CreatePolicy(ctx.Request.Context(), middleware.Admin(ctx), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, policyInfo(p))
}

// policyInput converts a create request. Policies are enabled unless the
// request says otherwise.
func policyInput(req dto.CreatePolicyRequest) (admin.PolicyInput, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return admin.PolicyInput{}, err
	}
	in := admin.PolicyInput{
		ServiceID:             serviceID,
		MaxCheckoutsPerWindow: req.MaxCheckoutsPerWindow,
		CheckoutWindow:        req.CheckoutWindow,
		MaxActiveCheckouts:    req.MaxActiveCheckouts,
		MaxTTLSeconds:         req.MaxTTLSeconds,
		Enabled:               req.Enabled == nil || *req.Enabled,
	}
	if req.AgentTokenID != "" {
		agentID, err := uuid.Parse(req.AgentTokenID)
		if err != nil {
			return admin.PolicyInput{}, err
		}
		in.AgentTokenID = &agentID
	}
	return in, nil
}

func (h *AdminHandler) ListPolicies(ctx *gin.Context) {
	q, ok := page(ctx)
	if !ok {
		return
	}

	policies, err := h.admin.ListPolicies(ctx.Request.Context(), middleware.Admin(ctx).OrgID, q.Limit, q.Offset)
	if err != nil {
		respondError(ctx, err)
		return
	}
	infos := make([]dto.PolicyInfo, len(policies))
	for i, p := range policies {
		infos[i] = policyInfo(p)
	}
	ctx.JSON(http.StatusOK, dto.PoliciesResponse{Policies: infos, Count: len(infos)})
}

func (h *AdminHandler) UpdatePolicy(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdatePolicyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	p, err := h.admin.UpdatePolicy(ctx.Request.Context(), middleware.Admin(ctx).OrgID, id, admin.PolicyUpdate{
		MaxCheckoutsPerWindow: req.MaxCheckoutsPerWindow,
		CheckoutWindow:        req.CheckoutWindow,
		MaxActiveCheckouts:    req.MaxActiveCheckouts,
		MaxTTLSeconds:         req.MaxTTLSeconds,
		Enabled:               req.Enabled,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, policyInfo(p))
}

func (h *AdminHandler) RevokePolicy(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	p, err := h.admin.RevokePolicy(ctx.Request.Context(), middleware.Admin(ctx).OrgID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, policyInfo(p))
}
