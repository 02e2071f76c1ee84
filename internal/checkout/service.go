// Package checkout implements the checkout lifecycle: issuing a time-boxed
// secret after policy and quota checks, early return, admin revocation and
// listing of outstanding checkouts.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/metrics"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/EternisAI/agent-key/internal/quota"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const rawKeyNote = "This is a raw provider key. Scope and spend are not enforced by Agent Key in vault mode."

// Store runs units of work against the database.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error
	Read(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error
}

type Decrypter interface {
	Decrypt(ciphertext, wrappedKey []byte) ([]byte, error)
}

type Config struct {
	DefaultTTLSeconds int
	MinTTLSeconds     int
}

type Result struct {
	CheckoutID   uuid.UUID
	Secret       string
	Service      string
	PolicyID     uuid.UUID
	CheckedOutAt time.Time
	ExpiresAt    time.Time
	Note         string
}

type Service struct {
	store    Store
	resolver *policy.Resolver
	enforcer *quota.Enforcer
	vault    Decrypter
	audit    *audit.Sink
	metrics  *metrics.Metrics
	config   Config
	now      func() time.Time
}

func NewService(store Store, vault Decrypter, sink *audit.Sink, m *metrics.Metrics, config Config) *Service {
	return &Service{
		store:    store,
		resolver: policy.NewResolver(),
		enforcer: quota.NewEnforcer(),
		vault:    vault,
		audit:    sink,
		metrics:  m,
		config:   config,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Timestamps are always stored in UTC.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) clock() time.Time {
	// Postgres keeps microseconds; truncating keeps returned and stored values equal.
	return s.now().UTC().Truncate(time.Microsecond)
}

// EffectiveTTL applies the default to an omitted TTL and rejects values below
// the configured minimum.
func (s *Service) EffectiveTTL(ttlSeconds int) (int, error) {
	if ttlSeconds == 0 {
		ttlSeconds = s.config.DefaultTTLSeconds
	}
	if ttlSeconds < s.config.MinTTLSeconds {
		return 0, fmt.Errorf("%w: ttl must be at least %d seconds", ErrInvalidTTL, s.config.MinTTLSeconds)
	}
	return ttlSeconds, nil
}

// Checkout resolves the policy for agent and serviceSlug, enforces its caps,
// records the checkout and returns the decrypted secret. All of it commits as
// one transaction; a decrypt or audit failure leaves no checkout behind.
func (s *Service) Checkout(ctx context.Context, agent principal.Agent, serviceSlug string, ttlSeconds int) (result Result, err error) {
	start := time.Now()
	defer func() {
		s.metrics.CheckoutDurationSeconds.Observe(time.Since(start).Seconds())
		s.metrics.CheckoutsTotal.WithLabelValues(outcome(err)).Inc()
	}()

	ttl, err := s.EffectiveTTL(ttlSeconds)
	if err != nil {
		return Result{}, err
	}

	err = s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		res, err := s.resolver.Resolve(ctx, q, agent, serviceSlug, ttl)
		if err != nil {
			return err
		}

		now, err := s.enforcer.Enforce(ctx, q, agent.ID, res.Policy, s.clock)
		if err != nil {
			return err
		}

		row, err := q.CreateCheckout(ctx, sqlc.CreateCheckoutParams{
			AgentTokenID: agent.ID,
			StoredKeyID:  res.StoredKey.ID,
			PolicyID:     res.Policy.ID,
			CheckedOutAt: timestamptz(now),
			ExpiresAt:    timestamptz(now.Add(time.Duration(ttl) * time.Second)),
		})
		if err != nil {
			return fmt.Errorf("create checkout: %w", err)
		}

		secret, err := s.vault.Decrypt(res.StoredKey.EncryptedSecret, res.StoredKey.WrappedDataKey)
		if err != nil {
			return fmt.Errorf("decrypt stored key %s: %w", res.StoredKey.ID, err)
		}

		if err := s.audit.Append(ctx, q, audit.Event{
			OrgID:        agent.OrgID,
			AgentID:      agent.ID,
			Action:       audit.ActionKeyCheckedOut,
			ResourceType: audit.ResourceCheckout,
			ResourceID:   row.ID.String(),
			Metadata:     map[string]any{"service": res.Service.Provider, "ttl_seconds": ttl},
		}); err != nil {
			return err
		}

		summary := SummaryFromRow(row)
		result = Result{
			CheckoutID:   row.ID,
			Secret:       string(secret),
			Service:      res.Service.Provider,
			PolicyID:     res.Policy.ID,
			CheckedOutAt: summary.CheckedOutAt,
			ExpiresAt:    summary.ExpiresAt,
			Note:         rawKeyNote,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// Return ends an active checkout early. Preconditions are checked in order:
// ownership, revocation, expiry, prior return.
func (s *Service) Return(ctx context.Context, agent principal.Agent, checkoutID uuid.UUID) (returnedAt time.Time, err error) {
	defer func() {
		s.metrics.ReturnsTotal.WithLabelValues(outcome(err)).Inc()
	}()

	err = s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		now := s.clock()

		row, err := q.GetCheckoutForAgentForUpdate(ctx, sqlc.GetCheckoutForAgentForUpdateParams{
			ID:           checkoutID,
			AgentTokenID: agent.ID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCheckoutNotFound
			}
			return fmt.Errorf("get checkout: %w", err)
		}

		switch current := SummaryFromRow(row); {
		case current.RevokedAt != nil:
			return ErrAlreadyRevoked
		case !now.Before(current.ExpiresAt):
			return ErrAlreadyExpired
		case current.ReturnedAt != nil:
			return ErrAlreadyReturned
		}

		updated, err := q.MarkCheckoutReturned(ctx, sqlc.MarkCheckoutReturnedParams{
			ReturnedAt: timestamptz(now),
			ID:         row.ID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAlreadyReturned
			}
			return fmt.Errorf("mark checkout returned: %w", err)
		}

		if err := s.audit.Append(ctx, q, audit.Event{
			OrgID:        agent.OrgID,
			AgentID:      agent.ID,
			Action:       audit.ActionKeyReturned,
			ResourceType: audit.ResourceCheckout,
			ResourceID:   row.ID.String(),
		}); err != nil {
			return err
		}

		returnedAt = updated.ReturnedAt.Time.UTC()
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return returnedAt, nil
}

// ListActive returns the agent's outstanding checkouts, newest first.
func (s *Service) ListActive(ctx context.Context, agent principal.Agent) ([]Summary, error) {
	now := s.clock()
	var rows []sqlc.Checkout
	err := s.store.Read(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		rows, err = q.ListActiveCheckoutsByAgent(ctx, sqlc.ListActiveCheckoutsByAgentParams{
			AgentTokenID: agent.ID,
			Now:          timestamptz(now),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list active checkouts: %w", err)
	}

	active := make([]Summary, 0, len(rows))
	for _, row := range rows {
		if summary := SummaryFromRow(row); summary.IsActive(now) {
			active = append(active, summary)
		}
	}
	return active, nil
}

// Revoke marks a checkout of orgID revoked. Revoking twice is a no-op that
// returns the current record without a second audit event.
func (s *Service) Revoke(ctx context.Context, orgID, checkoutID uuid.UUID) (summary Summary, err error) {
	result := "revoked"
	defer func() {
		if err != nil {
			result = string(KindOf(err))
		}
		s.metrics.RevocationsTotal.WithLabelValues(result).Inc()
	}()

	err = s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		row, err := q.RevokeCheckoutForOrg(ctx, sqlc.RevokeCheckoutForOrgParams{
			RevokedAt: timestamptz(s.clock()),
			ID:        checkoutID,
			OrgID:     orgID,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := q.GetCheckoutForOrg(ctx, sqlc.GetCheckoutForOrgParams{ID: checkoutID, OrgID: orgID})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrCheckoutNotFound
				}
				return fmt.Errorf("get checkout: %w", err)
			}
			result = "already_revoked"
			summary = SummaryFromRow(existing)
			return nil
		}
		if err != nil {
			return fmt.Errorf("revoke checkout: %w", err)
		}

		if err := s.audit.Append(ctx, q, audit.Event{
			OrgID:        orgID,
			AgentID:      row.AgentTokenID,
			Action:       audit.ActionCheckoutRevoked,
			ResourceType: audit.ResourceCheckout,
			ResourceID:   row.ID.String(),
		}); err != nil {
			return err
		}
		summary = SummaryFromRow(row)
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// ListVisibleServices returns the services the agent could check out right
// now: an applicable policy and a current stored key both exist.
func (s *Service) ListVisibleServices(ctx context.Context, agent principal.Agent) ([]sqlc.Service, error) {
	var services []sqlc.Service
	err := s.store.Read(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		services, err = q.ListVisibleServices(ctx, sqlc.ListVisibleServicesParams{
			OrgID:        agent.OrgID,
			AgentTokenID: agent.ID,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list visible services: %w", err)
	}
	return services, nil
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}
