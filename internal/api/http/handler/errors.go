package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EternisAI/agent-key/internal/admin"
	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/auth"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	kindInvalidRequest = string(checkout.KindInvalidRequest)
	kindForbidden      = "forbidden"
)

// statusFor maps an error to its HTTP status and the kind reported to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, audit.ErrInvalidPage),
		errors.Is(err, admin.ErrInvalidPolicyLimit),
		errors.Is(err, policy.ErrInvalidWindow):
		return http.StatusBadRequest, kindInvalidRequest
	case errors.Is(err, policy.ErrTTLExceedsPolicy):
		return http.StatusBadRequest, string(checkout.KindPolicyDenied)
	case errors.Is(err, auth.ErrBootstrapDisabled):
		return http.StatusForbidden, kindForbidden
	}

	kind := checkout.KindOf(err)
	switch kind {
	case checkout.KindInvalidRequest:
		return http.StatusBadRequest, string(kind)
	case checkout.KindNotFound:
		return http.StatusNotFound, string(kind)
	case checkout.KindConflict:
		return http.StatusConflict, string(kind)
	case checkout.KindPolicyDenied:
		return http.StatusForbidden, string(kind)
	case checkout.KindQuotaExceeded, checkout.KindActiveCapExceeded:
		return http.StatusTooManyRequests, string(kind)
	case checkout.KindTransient:
		return http.StatusServiceUnavailable, string(kind)
	default:
		return http.StatusInternalServerError, string(kind)
	}
}

func respondError(ctx *gin.Context, err error) {
	status, kind := statusFor(err)
	if status < http.StatusInternalServerError {
		ctx.JSON(status, dto.ErrorResponse{Error: err.Error(), Kind: kind})
		return
	}

	slog.Error("Request failed",
		"method", ctx.Request.Method,
		"path", ctx.FullPath(),
		"kind", kind,
		"error", err)

	message := "internal error"
	switch checkout.Kind(kind) {
	case checkout.KindVaultError:
		message = "credential vault failure"
	case checkout.KindTransient:
		message = "store temporarily unavailable"
	}
	ctx.JSON(status, dto.ErrorResponse{Error: message, Kind: kind})
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Kind: kindInvalidRequest})
}

func pathID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name, Kind: kindInvalidRequest})
		return uuid.Nil, false
	}
	return id, true
}

func page(ctx *gin.Context) (dto.PageQuery, bool) {
	var q dto.PageQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return q, false
	}
	return q, true
}
