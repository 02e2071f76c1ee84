package admin

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Default policy values for fields omitted at creation.
const (
	DefaultMaxCheckoutsPerWindow = 100
	DefaultCheckoutWindow        = policy.WindowDaily
	DefaultMaxActiveCheckouts    = 1
	DefaultMaxTTLSeconds         = 3600
)

type PolicyInput struct {
	ServiceID             uuid.UUID
	AgentTokenID          *uuid.UUID
	MaxCheckoutsPerWindow int
	CheckoutWindow        string
	MaxActiveCheckouts    int
	MaxTTLSeconds         int
	Enabled               bool
}

// PolicyUpdate changes only the fields that are set.
type PolicyUpdate struct {
	MaxCheckoutsPerWindow *int
	CheckoutWindow        *string
	MaxActiveCheckouts    *int
	MaxTTLSeconds         *int
	Enabled               *bool
}

func (in *PolicyInput) applyDefaults() {
	if in.MaxCheckoutsPerWindow == 0 {
		in.MaxCheckoutsPerWindow = DefaultMaxCheckoutsPerWindow
	}
	if in.CheckoutWindow == "" {
		in.CheckoutWindow = string(DefaultCheckoutWindow)
	}
	if in.MaxActiveCheckouts == 0 {
		in.MaxActiveCheckouts = DefaultMaxActiveCheckouts
	}
	if in.MaxTTLSeconds == 0 {
		in.MaxTTLSeconds = DefaultMaxTTLSeconds
	}
}

// validateLimits accepts only values that fit the int32 columns.
func validateLimits(perWindow, active, maxTTL int, window string) error {
	for _, v := range []int{perWindow, active, maxTTL} {
		if v < 1 || v > math.MaxInt32 {
			return ErrInvalidPolicyLimit
		}
	}
	return validWindow(window)
}

// CreatePolicy adds a policy for the admin's organization. At most one policy
// may exist per (service, agent-or-org-wide) target.
func (s *Service) CreatePolicy(ctx context.Context, admin principal.Admin, in PolicyInput) (sqlc.Policy, error) {
	in.applyDefaults()
	if err := validateLimits(in.MaxCheckoutsPerWindow, in.MaxActiveCheckouts, in.MaxTTLSeconds, in.CheckoutWindow); err != nil {
		return sqlc.Policy{}, err
	}

	var row sqlc.Policy
	err := s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		if _, err := q.GetServiceByID(ctx, in.ServiceID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("get service: %w", err)
		}

		var agentID uuid.NullUUID
		if in.AgentTokenID != nil {
			if _, err := q.GetAgentTokenForOrg(ctx, sqlc.GetAgentTokenForOrgParams{ID: *in.AgentTokenID, OrgID: admin.OrgID}); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrAgentNotFound
				}
				return fmt.Errorf("get agent token: %w", err)
			}
			agentID = uuid.NullUUID{UUID: *in.AgentTokenID, Valid: true}
		}

		var err error
		row, err = q.CreatePolicy(ctx, sqlc.CreatePolicyParams{
			OrgID:                 admin.OrgID,
			ServiceID:             in.ServiceID,
			AgentTokenID:          agentID,
			MaxCheckoutsPerWindow: int32(in.MaxCheckoutsPerWindow),
			CheckoutWindow:        in.CheckoutWindow,
			MaxActiveCheckouts:    int32(in.MaxActiveCheckouts),
			MaxTtlSeconds:         int32(in.MaxTTLSeconds),
			Enabled:               in.Enabled,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrPolicyExists
			}
			return fmt.Errorf("create policy: %w", err)
		}

		return s.audit.Append(ctx, q, audit.Event{
			OrgID:        admin.OrgID,
			Action:       audit.ActionPolicyCreated,
			ResourceType: audit.ResourcePolicy,
			ResourceID:   row.ID.String(),
			Metadata:     map[string]any{"service_id": in.ServiceID.String()},
		})
	})
	if err != nil {
		return sqlc.Policy{}, err
	}
	return row, nil
}

// UpdatePolicy applies upd to a policy of orgID. Existing checkouts keep the
// policy id they were issued under; new limits apply from the next checkout.
func (s *Service) UpdatePolicy(ctx context.Context, orgID, policyID uuid.UUID, upd PolicyUpdate) (sqlc.Policy, error) {
	var row sqlc.Policy
	err := s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		current, err := q.GetPolicyForOrg(ctx, sqlc.GetPolicyForOrgParams{ID: policyID, OrgID: orgID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPolicyNotFound
			}
			return fmt.Errorf("get policy: %w", err)
		}

		perWindow := int(current.MaxCheckoutsPerWindow)
		active := int(current.MaxActiveCheckouts)
		maxTTL := int(current.MaxTtlSeconds)
		window := current.CheckoutWindow
		enabled := current.Enabled
		if upd.MaxCheckoutsPerWindow != nil {
			perWindow = *upd.MaxCheckoutsPerWindow
		}
		if upd.CheckoutWindow != nil {
			window = *upd.CheckoutWindow
		}
		if upd.MaxActiveCheckouts != nil {
			active = *upd.MaxActiveCheckouts
		}
		if upd.MaxTTLSeconds != nil {
			maxTTL = *upd.MaxTTLSeconds
		}
		if upd.Enabled != nil {
			enabled = *upd.Enabled
		}
		if err := validateLimits(perWindow, active, maxTTL, window); err != nil {
			return err
		}

		params := sqlc.UpdatePolicyParams{
			MaxCheckoutsPerWindow: int32(perWindow),
			CheckoutWindow:        window,
			MaxActiveCheckouts:    int32(active),
			MaxTtlSeconds:         int32(maxTTL),
			Enabled:               enabled,
			ID:                    current.ID,
			OrgID:                 orgID,
		}

		row, err = q.UpdatePolicy(ctx, params)
		if err != nil {
			return fmt.Errorf("update policy: %w", err)
		}

		return s.audit.Append(ctx, q, audit.Event{
			OrgID:        orgID,
			Action:       audit.ActionPolicyUpdated,
			ResourceType: audit.ResourcePolicy,
			ResourceID:   row.ID.String(),
		})
	})
	if err != nil {
		return sqlc.Policy{}, err
	}
	return row, nil
}

// RevokePolicy is idempotent; only the first revocation is audited.
func (s *Service) RevokePolicy(ctx context.Context, orgID, policyID uuid.UUID) (sqlc.Policy, error) {
	var row sqlc.Policy
	err := s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		row, err = q.RevokePolicy(ctx, sqlc.RevokePolicyParams{RevokedAt: s.timestamp(), ID: policyID, OrgID: orgID})
		if errors.Is(err, pgx.ErrNoRows) {
			row, err = q.GetPolicyForOrg(ctx, sqlc.GetPolicyForOrgParams{ID: policyID, OrgID: orgID})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrPolicyNotFound
				}
				return fmt.Errorf("get policy: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("revoke policy: %w", err)
		}
		return s.audit.Append(ctx, q, audit.Event{
			OrgID:        orgID,
			Action:       audit.ActionPolicyRevoked,
			ResourceType: audit.ResourcePolicy,
			ResourceID:   row.ID.String(),
		})
	})
	if err != nil {
		return sqlc.Policy{}, err
	}
	return row, nil
}

func (s *Service) ListPolicies(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]sqlc.Policy, error) {
	rows, err := list(ctx, s, limit, offset, func(ctx context.Context, q *sqlc.Queries, l, o int32) ([]sqlc.Policy, error) {
		return q.ListPoliciesByOrg(ctx, sqlc.ListPoliciesByOrgParams{OrgID: orgID, Limit: l, Offset: o})
	})
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return rows, nil
}
