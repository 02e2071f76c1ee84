package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/systemtest/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapDisabled(t *testing.T) {
	svc := NewService(nil, audit.NewSink(), NewCache(time.Minute), Config{BootstrapEnabled: false})

	_, err := svc.Bootstrap(context.Background(), "acme", "root")
	assert.ErrorIs(t, err, ErrBootstrapDisabled)
}

func TestAuthenticateRejectsWrongPrefix(t *testing.T) {
	svc := NewService(nil, audit.NewSink(), NewCache(time.Minute), Config{})

	_, err := svc.AuthenticateAgent(context.Background(), "adm_notanagent")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.AuthenticateAdmin(context.Background(), "agt_notanadmin")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.AuthenticateAdmin(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestServiceWithPostgres(t *testing.T) {
	pool := postgres.NewTestPool(t)
	store := db.NewStore(pool, 10*time.Second)
	cache := NewCache(time.Minute)
	svc := NewService(store, audit.NewSink(), cache, Config{BootstrapEnabled: true})
	ctx := context.Background()

	var boot BootstrapResult
	t.Run("bootstrap succeeds exactly once under concurrency", func(t *testing.T) {
		const attempts = 5
		var wg sync.WaitGroup
		results := make([]BootstrapResult, attempts)
		errs := make([]error, attempts)
		for i := range attempts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = svc.Bootstrap(ctx, "acme", "root")
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for i, err := range errs {
			if err == nil {
				succeeded++
				boot = results[i]
				continue
			}
			assert.ErrorIs(t, err, ErrAlreadyBootstrapped)
			assert.Equal(t, checkout.KindConflict, checkout.KindOf(err))
		}
		require.Equal(t, 1, succeeded)
		assert.Equal(t, "acme", boot.OrgName)
		assert.True(t, hasPrefix(boot.AdminToken, AdminTokenPrefix))
	})

	admin, err := svc.AuthenticateAdmin(ctx, boot.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, boot.OrgID, admin.OrgID)
	assert.Equal(t, boot.AdminTokenID, admin.ID)

	t.Run("admin token issuance", func(t *testing.T) {
		issued, err := svc.CreateAdminToken(ctx, admin, "ci")
		require.NoError(t, err)

		second, err := svc.AuthenticateAdmin(ctx, issued.Token)
		require.NoError(t, err)
		assert.Equal(t, issued.ID, second.ID)

		_, err = svc.CreateAdminToken(ctx, admin, "ci")
		assert.ErrorIs(t, err, ErrTokenNameExists)
	})

	t.Run("agent token lifecycle", func(t *testing.T) {
		issued, err := svc.CreateAgentToken(ctx, admin, "worker-1")
		require.NoError(t, err)
		assert.True(t, hasPrefix(issued.Token, AgentTokenPrefix))

		_, err = svc.CreateAgentToken(ctx, admin, "worker-1")
		assert.ErrorIs(t, err, ErrTokenNameExists)

		agent, err := svc.AuthenticateAgent(ctx, issued.Token)
		require.NoError(t, err)
		assert.Equal(t, issued.ID, agent.ID)
		assert.Equal(t, admin.OrgID, agent.OrgID)

		_, err = svc.AuthenticateAgent(ctx, issued.Token+"x")
		assert.ErrorIs(t, err, ErrInvalidToken)

		// An agent token is never accepted as an admin token.
		_, err = svc.AuthenticateAdmin(ctx, issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)

		tokens, err := svc.ListAgentTokens(ctx, admin.OrgID, 0, 0)
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Equal(t, "worker-1", tokens[0].Name)
		assert.Nil(t, tokens[0].RevokedAt)

		require.NoError(t, svc.RevokeAgentToken(ctx, admin.OrgID, issued.ID))
		require.NoError(t, svc.RevokeAgentToken(ctx, admin.OrgID, issued.ID))

		// An authentication that loaded the row before the revocation cannot
		// cache it afterwards.
		cache.Put("in-flight", RoleAgent, issued.ID, admin.OrgID, "worker-1")
		_, ok := cache.Get("in-flight", RoleAgent)
		assert.False(t, ok)

		_, err = svc.AuthenticateAgent(ctx, issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)

		tokens, err = svc.ListAgentTokens(ctx, admin.OrgID, 0, 0)
		require.NoError(t, err)
		assert.NotNil(t, tokens[0].RevokedAt)

		err = svc.RevokeAgentToken(ctx, admin.OrgID, boot.AdminTokenID)
		assert.ErrorIs(t, err, ErrAgentNotFound)
		err = svc.RevokeAgentToken(ctx, uuid.New(), issued.ID)
		assert.ErrorIs(t, err, ErrAgentNotFound)
	})

	t.Run("every change is audited once", func(t *testing.T) {
		rows, err := store.Queries().ListAuditLogsByOrg(ctx, sqlc.ListAuditLogsByOrgParams{OrgID: admin.OrgID, Limit: 100})
		require.NoError(t, err)

		counts := map[string]int{}
		for _, row := range rows {
			counts[row.Action]++
		}
		assert.Equal(t, 1, counts[audit.ActionOrganizationBootstrapped])
		assert.Equal(t, 1, counts[audit.ActionAdminTokenCreated])
		assert.Equal(t, 1, counts[audit.ActionAgentTokenCreated])
		assert.Equal(t, 1, counts[audit.ActionAgentTokenRevoked])
	})
}
