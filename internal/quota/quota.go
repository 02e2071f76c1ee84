// Package quota enforces the rolling-window and concurrent-active caps of a
// policy for a single agent.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrQuotaExceeded     = errors.New("checkout quota exceeded")
	ErrActiveCapExceeded = errors.New("active checkout cap exceeded")
)

// Querier must be bound to the transaction that will insert the checkout;
// the advisory lock is held until that transaction ends.
type Querier interface {
	AcquireCheckoutLock(ctx context.Context, lockKey string) error
	CountCheckoutsSince(ctx context.Context, arg sqlc.CountCheckoutsSinceParams) (int64, error)
	CountActiveCheckouts(ctx context.Context, arg sqlc.CountActiveCheckoutsParams) (int64, error)
}

type Enforcer struct{}

func NewEnforcer() *Enforcer {
	return &Enforcer{}
}

// LockKey identifies the (agent, policy) pair whose checkouts are serialized.
func LockKey(agentID, policyID uuid.UUID) string {
	return agentID.String() + ":" + policyID.String()
}

// Enforce serializes concurrent checkouts for (agentID, p) and verifies both
// caps. clock is read once the lock is held and that instant is returned; the
// caller must insert the checkout with it in the same transaction.
func (e *Enforcer) Enforce(ctx context.Context, q Querier, agentID uuid.UUID, p sqlc.Policy, clock func() time.Time) (time.Time, error) {
	window, err := policy.ParseWindow(p.CheckoutWindow)
	if err != nil {
		return time.Time{}, err
	}

	if err := q.AcquireCheckoutLock(ctx, LockKey(agentID, p.ID)); err != nil {
		return time.Time{}, fmt.Errorf("acquire checkout lock: %w", err)
	}
	now := clock()

	issued, err := q.CountCheckoutsSince(ctx, sqlc.CountCheckoutsSinceParams{
		AgentTokenID: agentID,
		PolicyID:     p.ID,
		Since:        pgtype.Timestamptz{Time: WindowStart(window, now), Valid: true},
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("count checkouts in window: %w", err)
	}
	if err := CheckWindow(issued, p); err != nil {
		return time.Time{}, err
	}

	active, err := q.CountActiveCheckouts(ctx, sqlc.CountActiveCheckoutsParams{
		AgentTokenID: agentID,
		PolicyID:     p.ID,
		Now:          pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("count active checkouts: %w", err)
	}
	if err := CheckActive(active, p); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// WindowStart is the inclusive lower bound of the window ending at now.
func WindowStart(w policy.Window, now time.Time) time.Time {
	return now.Add(-w.Duration())
}

func CheckWindow(issued int64, p sqlc.Policy) error {
	if issued >= int64(p.MaxCheckoutsPerWindow) {
		return fmt.Errorf("%w: %d of %d per %s", ErrQuotaExceeded, issued, p.MaxCheckoutsPerWindow, p.CheckoutWindow)
	}
	return nil
}

func CheckActive(active int64, p sqlc.Policy) error {
	if active >= int64(p.MaxActiveCheckouts) {
		return fmt.Errorf("%w: %d of %d active", ErrActiveCapExceeded, active, p.MaxActiveCheckouts)
	}
	return nil
}
