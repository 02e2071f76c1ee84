package handler

import (
	"time"

	"github.com/EternisAI/agent-key/internal/admin"
	"github.com/EternisAI/agent-key/internal/api/http/dto"
	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/auth"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func optionalTime(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

func optionalID(id uuid.NullUUID) *string {
	if !id.Valid {
		return nil
	}
	s := id.UUID.String()
	return &s
}

func checkoutInfos(summaries []checkout.Summary, now time.Time) []dto.CheckoutInfo {
	infos := make([]dto.CheckoutInfo, len(summaries))
	for i, s := range summaries {
		infos[i] = checkoutInfo(s, now)
	}
	return infos
}

func checkoutInfo(s checkout.Summary, now time.Time) dto.CheckoutInfo {
	return dto.CheckoutInfo{
		ID:           s.ID.String(),
		AgentTokenID: s.AgentID.String(),
		StoredKeyID:  s.StoredKeyID.String(),
		PolicyID:     s.PolicyID.String(),
		Status:       string(s.Status(now)),
		CheckedOutAt: s.CheckedOutAt,
		ExpiresAt:    s.ExpiresAt,
		ReturnedAt:   s.ReturnedAt,
		RevokedAt:    s.RevokedAt,
	}
}

func serviceInfos(services []sqlc.Service) []dto.ServiceInfo {
	infos := make([]dto.ServiceInfo, len(services))
	for i, s := range services {
		infos[i] = dto.ServiceInfo{
			ID:        s.ID.String(),
			Provider:  s.Provider,
			Name:      s.Name,
			BaseURL:   s.BaseUrl,
			CreatedAt: s.CreatedAt.Time.UTC(),
		}
	}
	return infos
}

func tokenResponse(t auth.IssuedToken) dto.TokenResponse {
	return dto.TokenResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Token:     t.Token,
		CreatedAt: t.CreatedAt,
	}
}

func keyInfo(k admin.StoredKeyInfo) dto.KeyInfo {
	return dto.KeyInfo{
		ID:        k.ID.String(),
		ServiceID: k.ServiceID.String(),
		Label:     k.Label,
		CreatedAt: k.CreatedAt,
		RevokedAt: k.RevokedAt,
	}
}

func policyInfo(p sqlc.Policy) dto.PolicyInfo {
	return dto.PolicyInfo{
		ID:                    p.ID.String(),
		ServiceID:             p.ServiceID.String(),
		AgentTokenID:          optionalID(p.AgentTokenID),
		MaxCheckoutsPerWindow: p.MaxCheckoutsPerWindow,
		CheckoutWindow:        p.CheckoutWindow,
		MaxActiveCheckouts:    p.MaxActiveCheckouts,
		MaxTTLSeconds:         p.MaxTtlSeconds,
		Enabled:               p.Enabled,
		CreatedAt:             p.CreatedAt.Time.UTC(),
		RevokedAt:             optionalTime(p.RevokedAt),
	}
}

func auditEntry(e audit.Entry) dto.AuditEntry {
	entry := dto.AuditEntry{
		ID:           e.ID.String(),
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
	if e.AgentTokenID != nil {
		id := e.AgentTokenID.String()
		entry.AgentTokenID = &id
	}
	return entry
}
