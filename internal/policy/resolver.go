// Package policy selects the policy, stored key and service that govern a
// checkout request.
package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/jackc/pgx/v5"
)

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrNoMatchingPolicy = errors.New("no matching policy")
	ErrTTLExceedsPolicy = errors.New("ttl exceeds policy")
	ErrNoActiveKey      = errors.New("no active stored key for service")
	ErrInvalidWindow    = errors.New("invalid checkout window")
)

// Querier is the slice of the query layer the resolver reads from.
type Querier interface {
	GetServiceByProvider(ctx context.Context, provider string) (sqlc.Service, error)
	ListApplicablePolicies(ctx context.Context, arg sqlc.ListApplicablePoliciesParams) ([]sqlc.Policy, error)
	GetCurrentStoredKey(ctx context.Context, arg sqlc.GetCurrentStoredKeyParams) (sqlc.StoredKey, error)
}

type Resolution struct {
	Policy    sqlc.Policy
	StoredKey sqlc.StoredKey
	Service   sqlc.Service
}

type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve looks up the service by slug, picks the applicable policy for the
// agent, validates the TTL against it and selects the current stored key.
// Quota is not checked here.
func (r *Resolver) Resolve(ctx context.Context, q Querier, agent principal.Agent, serviceSlug string, ttlSeconds int) (Resolution, error) {
	service, err := q.GetServiceByProvider(ctx, serviceSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resolution{}, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceSlug)
		}
		return Resolution{}, fmt.Errorf("get service: %w", err)
	}

	candidates, err := q.ListApplicablePolicies(ctx, sqlc.ListApplicablePoliciesParams{
		OrgID:        agent.OrgID,
		ServiceID:    service.ID,
		AgentTokenID: agent.ID,
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("list policies: %w", err)
	}

	policy, ok := Select(candidates, agent)
	if !ok {
		return Resolution{}, ErrNoMatchingPolicy
	}

	if err := ValidateTTL(policy, ttlSeconds); err != nil {
		return Resolution{}, err
	}

	key, err := q.GetCurrentStoredKey(ctx, sqlc.GetCurrentStoredKeyParams{
		OrgID:     agent.OrgID,
		ServiceID: service.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resolution{}, fmt.Errorf("%w: %s", ErrNoActiveKey, serviceSlug)
		}
		return Resolution{}, fmt.Errorf("get stored key: %w", err)
	}

	return Resolution{Policy: policy, StoredKey: key, Service: service}, nil
}

// Select returns the policy that governs agent among candidates. Only enabled,
// non-revoked policies of the agent's organization that are either scoped to
// this agent or org-wide qualify; an agent-scoped policy always wins.
func Select(candidates []sqlc.Policy, agent principal.Agent) (sqlc.Policy, bool) {
	var orgWide *sqlc.Policy
	for i := range candidates {
		p := &candidates[i]
		if p.OrgID != agent.OrgID || !p.Enabled || p.RevokedAt.Valid {
			continue
		}
		switch {
		case p.AgentTokenID.Valid && p.AgentTokenID.UUID == agent.ID:
			return *p, true
		case !p.AgentTokenID.Valid && orgWide == nil:
			orgWide = p
		}
	}
	if orgWide != nil {
		return *orgWide, true
	}
	return sqlc.Policy{}, false
}

func ValidateTTL(p sqlc.Policy, ttlSeconds int) error {
	if ttlSeconds > int(p.MaxTtlSeconds) {
		return fmt.Errorf("%w: requested %ds, policy allows %ds", ErrTTLExceedsPolicy, ttlSeconds, p.MaxTtlSeconds)
	}
	return nil
}
