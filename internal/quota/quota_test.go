package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	calls   []string
	lockKey string
	since   time.Time
	now     time.Time
	issued  int64
	active  int64
	lockErr error
}

func (f *fakeQuerier) AcquireCheckoutLock(_ context.Context, lockKey string) error {
	f.calls = append(f.calls, "lock")
	f.lockKey = lockKey
	return f.lockErr
}

func (f *fakeQuerier) CountCheckoutsSince(_ context.Context, arg sqlc.CountCheckoutsSinceParams) (int64, error) {
	f.calls = append(f.calls, "window")
	f.since = arg.Since.Time
	return f.issued, nil
}

func (f *fakeQuerier) CountActiveCheckouts(_ context.Context, arg sqlc.CountActiveCheckoutsParams) (int64, error) {
	f.calls = append(f.calls, "active")
	f.now = arg.Now.Time
	return f.active, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testPolicy(window policy.Window, perWindow, active int32) sqlc.Policy {
	return sqlc.Policy{
		ID:                    uuid.New(),
		MaxCheckoutsPerWindow: perWindow,
		CheckoutWindow:        string(window),
		MaxActiveCheckouts:    active,
		MaxTtlSeconds:         3600,
		Enabled:               true,
	}
}

func TestEnforceLocksBeforeCounting(t *testing.T) {
	agentID := uuid.New()
	p := testPolicy(policy.WindowHourly, 10, 2)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &fakeQuerier{issued: 3, active: 1}

	clock := func() time.Time {
		q.calls = append(q.calls, "clock")
		return now
	}

	at, err := NewEnforcer().Enforce(context.Background(), q, agentID, p, clock)
	require.NoError(t, err)

	assert.Equal(t, []string{"lock", "clock", "window", "active"}, q.calls)
	assert.Equal(t, agentID.String()+":"+p.ID.String(), q.lockKey)
	assert.Equal(t, now.Add(-time.Hour), q.since)
	assert.Equal(t, now, q.now)
	assert.Equal(t, now, at)
}

func TestEnforceDailyWindow(t *testing.T) {
	p := testPolicy(policy.WindowDaily, 10, 2)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &fakeQuerier{}

	_, err := NewEnforcer().Enforce(context.Background(), q, uuid.New(), p, fixedClock(now))
	require.NoError(t, err)
	assert.Equal(t, now.Add(-24*time.Hour), q.since)
}

func TestEnforceWindowCap(t *testing.T) {
	p := testPolicy(policy.WindowDaily, 3, 5)
	q := &fakeQuerier{issued: 3}

	_, err := NewEnforcer().Enforce(context.Background(), q, uuid.New(), p, time.Now)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NotContains(t, q.calls, "active")
}

func TestEnforceActiveCap(t *testing.T) {
	p := testPolicy(policy.WindowDaily, 100, 1)
	q := &fakeQuerier{issued: 1, active: 1}

	_, err := NewEnforcer().Enforce(context.Background(), q, uuid.New(), p, time.Now)
	assert.ErrorIs(t, err, ErrActiveCapExceeded)
}

func TestEnforceLockFailure(t *testing.T) {
	boom := errors.New("connection reset")
	q := &fakeQuerier{lockErr: boom}

	_, err := NewEnforcer().Enforce(context.Background(), q, uuid.New(), testPolicy(policy.WindowDaily, 1, 1), time.Now)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"lock"}, q.calls)
}

func TestEnforceReadsClockAfterLock(t *testing.T) {
	p := testPolicy(policy.WindowHourly, 10, 2)
	before := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	after := before.Add(3 * time.Second)

	// The lock call stands in for waiting on a concurrent checkout.
	current := before
	q := &lockWaitQuerier{fakeQuerier: &fakeQuerier{}, onLock: func() { current = after }}

	at, err := NewEnforcer().Enforce(context.Background(), q, uuid.New(), p, func() time.Time { return current })
	require.NoError(t, err)
	assert.Equal(t, after, at)
	assert.Equal(t, after.Add(-time.Hour), q.since)
	assert.Equal(t, after, q.now)
}

type lockWaitQuerier struct {
	*fakeQuerier
	onLock func()
}

func (l *lockWaitQuerier) AcquireCheckoutLock(ctx context.Context, lockKey string) error {
	l.onLock()
	return l.fakeQuerier.AcquireCheckoutLock(ctx, lockKey)
}

func TestEnforceRejectsUnknownWindow(t *testing.T) {
	q := &fakeQuerier{}
	_, err := NewEnforcer().Enforce(context.Background(), q, uuid.New(), testPolicy("weekly", 1, 1), time.Now)
	assert.ErrorIs(t, err, policy.ErrInvalidWindow)
	assert.Empty(t, q.calls)
}

func TestCapBoundaries(t *testing.T) {
	p := testPolicy(policy.WindowDaily, 2, 2)

	assert.NoError(t, CheckWindow(1, p))
	assert.ErrorIs(t, CheckWindow(2, p), ErrQuotaExceeded)
	assert.NoError(t, CheckActive(1, p))
	assert.ErrorIs(t, CheckActive(2, p), ErrActiveCapExceeded)
}
