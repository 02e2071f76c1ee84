// Package audit appends state-change events inside the caller's transaction
// and lists them per organization.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/google/uuid"
)

const (
	ActionKeyCheckedOut            = "key_checked_out"
	ActionKeyReturned              = "key_returned"
	ActionCheckoutRevoked          = "checkout_revoked"
	ActionOrganizationBootstrapped = "organization_bootstrapped"
	ActionAdminTokenCreated        = "admin_token_created"
	ActionAgentTokenCreated        = "agent_token_created"
	ActionAgentTokenRevoked        = "agent_token_revoked"
	ActionServiceCreated           = "service_created"
	ActionStoredKeyCreated         = "stored_key_created"
	ActionStoredKeyRevoked         = "stored_key_revoked"
	ActionPolicyCreated            = "policy_created"
	ActionPolicyUpdated            = "policy_updated"
	ActionPolicyRevoked            = "policy_revoked"
)

const (
	ResourceCheckout     = "checkout"
	ResourceOrganization = "organization"
	ResourceAdminToken   = "admin_token"
	ResourceAgentToken   = "agent_token"
	ResourceService      = "service"
	ResourceStoredKey    = "stored_key"
	ResourcePolicy       = "policy"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var ErrInvalidPage = errors.New("invalid page")

type Event struct {
	OrgID        uuid.UUID
	AgentID      uuid.UUID // zero for admin-originated events
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     map[string]any
}

type Entry struct {
	ID           uuid.UUID      `json:"id"`
	OrgID        uuid.UUID      `json:"org_id"`
	AgentTokenID *uuid.UUID     `json:"agent_token_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Appender interface {
	CreateAuditLog(ctx context.Context, arg sqlc.CreateAuditLogParams) (sqlc.AuditLog, error)
}

type Lister interface {
	ListAuditLogsByOrg(ctx context.Context, arg sqlc.ListAuditLogsByOrgParams) ([]sqlc.AuditLog, error)
}

type Sink struct{}

func NewSink() *Sink {
	return &Sink{}
}

// Append writes e with q. q must be the transaction that carries the state
// change so both commit or roll back together.
func (s *Sink) Append(ctx context.Context, q Appender, e Event) error {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}

	_, err = q.CreateAuditLog(ctx, sqlc.CreateAuditLogParams{
		OrgID:        e.OrgID,
		AgentTokenID: uuid.NullUUID{UUID: e.AgentID, Valid: e.AgentID != uuid.Nil},
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Metadata:     raw,
	})
	if err != nil {
		return fmt.Errorf("append audit event %s: %w", e.Action, err)
	}
	return nil
}

// NormalizePage applies the default limit and rejects out-of-range values.
func NormalizePage(limit, offset int) (int32, int32, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidPage, MaxLimit)
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must not be negative", ErrInvalidPage)
	}
	return int32(limit), int32(offset), nil
}

// List returns the organization's events, newest first.
func (s *Sink) List(ctx context.Context, q Lister, orgID uuid.UUID, limit, offset int) ([]Entry, error) {
	l, o, err := NormalizePage(limit, offset)
	if err != nil {
		return nil, err
	}

	rows, err := q.ListAuditLogsByOrg(ctx, sqlc.ListAuditLogsByOrgParams{
		OrgID:  orgID,
		Limit:  l,
		Offset: o,
	})
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry := Entry{
			ID:           row.ID,
			OrgID:        row.OrgID,
			Action:       row.Action,
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			Metadata:     map[string]any{},
			CreatedAt:    row.CreatedAt.Time.UTC(),
		}
		if row.AgentTokenID.Valid {
			id := row.AgentTokenID.UUID
			entry.AgentTokenID = &id
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata %s: %w", row.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
