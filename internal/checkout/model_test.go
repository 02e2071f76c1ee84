package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/EternisAI/agent-key/internal/quota"
	"github.com/EternisAI/agent-key/internal/vault"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryStatus(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	expires := base.Add(time.Hour)
	at := func(d time.Duration) *time.Time {
		v := base.Add(d)
		return &v
	}

	tests := []struct {
		name    string
		summary Summary
		now     time.Time
		want    Status
	}{
		{"fresh", Summary{CheckedOutAt: base, ExpiresAt: expires}, base.Add(time.Minute), StatusActive},
		{"one microsecond before expiry", Summary{CheckedOutAt: base, ExpiresAt: expires}, expires.Add(-time.Microsecond), StatusActive},
		{"at expiry", Summary{CheckedOutAt: base, ExpiresAt: expires}, expires, StatusExpired},
		{"returned", Summary{CheckedOutAt: base, ExpiresAt: expires, ReturnedAt: at(time.Minute)}, base.Add(2 * time.Minute), StatusReturned},
		{"returned stays returned after expiry", Summary{CheckedOutAt: base, ExpiresAt: expires, ReturnedAt: at(time.Minute)}, expires.Add(time.Hour), StatusReturned},
		{"revoked", Summary{CheckedOutAt: base, ExpiresAt: expires, RevokedAt: at(time.Minute)}, base.Add(2 * time.Minute), StatusRevoked},
		{"revoked after expiry", Summary{CheckedOutAt: base, ExpiresAt: expires, RevokedAt: at(2 * time.Hour)}, base.Add(3 * time.Hour), StatusRevoked},
		{"returned then revoked", Summary{CheckedOutAt: base, ExpiresAt: expires, ReturnedAt: at(time.Minute), RevokedAt: at(2 * time.Minute)}, base.Add(3 * time.Minute), StatusReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.Status(tt.now))
			assert.Equal(t, tt.want == StatusActive, tt.summary.IsActive(tt.now))
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{fmt.Errorf("get: %w", ErrCheckoutNotFound), KindNotFound},
		{fmt.Errorf("%w: openai", policy.ErrServiceNotFound), KindNotFound},
		{fmt.Errorf("%w: agent", ErrNotFound), KindNotFound},
		{ErrAlreadyRevoked, KindConflict},
		{ErrAlreadyExpired, KindConflict},
		{ErrAlreadyReturned, KindConflict},
		{policy.ErrNoActiveKey, KindConflict},
		{fmt.Errorf("%w: duplicate", ErrConflict), KindConflict},
		{policy.ErrNoMatchingPolicy, KindPolicyDenied},
		{policy.ErrTTLExceedsPolicy, KindPolicyDenied},
		{ErrInvalidTTL, KindInvalidRequest},
		{fmt.Errorf("%w: ttl must be at least 60 seconds", ErrInvalidTTL), KindInvalidRequest},
		{fmt.Errorf("%w: 3 of 3", quota.ErrQuotaExceeded), KindQuotaExceeded},
		{quota.ErrActiveCapExceeded, KindActiveCapExceeded},
		{fmt.Errorf("decrypt: %w", &vault.Error{Op: vault.OpDecrypt, Cause: errors.New("bad tag")}), KindVaultError},
		{fmt.Errorf("%w: %w", db.ErrTransient, context.DeadlineExceeded), KindTransient},
		{&pgconn.PgError{Code: "08006"}, KindTransient},
		{errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestEffectiveTTL(t *testing.T) {
	s := &Service{config: Config{DefaultTTLSeconds: 3600, MinTTLSeconds: 60}}

	ttl, err := s.EffectiveTTL(0)
	require.NoError(t, err)
	assert.Equal(t, 3600, ttl)

	ttl, err = s.EffectiveTTL(60)
	require.NoError(t, err)
	assert.Equal(t, 60, ttl)

	_, err = s.EffectiveTTL(59)
	assert.ErrorIs(t, err, ErrInvalidTTL)

	_, err = s.EffectiveTTL(-5)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}
