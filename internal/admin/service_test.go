package admin

import (
	"context"
	"math"
	"testing"
	"time"

	"filippo.io/age"
	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/EternisAI/agent-key/internal/vault"
	"github.com/EternisAI/agent-key/systemtest/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyInputDefaults(t *testing.T) {
	in := PolicyInput{ServiceID: uuid.New()}
	in.applyDefaults()

	assert.Equal(t, DefaultMaxCheckoutsPerWindow, in.MaxCheckoutsPerWindow)
	assert.Equal(t, string(policy.WindowDaily), in.CheckoutWindow)
	assert.Equal(t, DefaultMaxActiveCheckouts, in.MaxActiveCheckouts)
	assert.Equal(t, DefaultMaxTTLSeconds, in.MaxTTLSeconds)
}

func TestValidateLimits(t *testing.T) {
	assert.NoError(t, validateLimits(1, 1, 60, "hourly"))
	assert.ErrorIs(t, validateLimits(0, 1, 60, "daily"), ErrInvalidPolicyLimit)
	assert.ErrorIs(t, validateLimits(1, -1, 60, "daily"), ErrInvalidPolicyLimit)
	assert.ErrorIs(t, validateLimits(1, 1, 60, "weekly"), policy.ErrInvalidWindow)

	// Values that do not fit the int32 columns are rejected, not wrapped.
	assert.NoError(t, validateLimits(math.MaxInt32, math.MaxInt32, math.MaxInt32, "daily"))
	assert.ErrorIs(t, validateLimits(1, 1, 1<<32+1, "daily"), ErrInvalidPolicyLimit)
	assert.ErrorIs(t, validateLimits(math.MaxInt32+1, 1, 60, "daily"), ErrInvalidPolicyLimit)
	assert.ErrorIs(t, validateLimits(1, 1<<31+5, 60, "daily"), ErrInvalidPolicyLimit)
}

func TestServiceWithPostgres(t *testing.T) {
	pool := postgres.NewTestPool(t)
	store := db.NewStore(pool, 10*time.Second)
	q := store.Queries()
	ctx := context.Background()

	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	v := vault.New(identity)
	svc := NewService(store, v, audit.NewSink())

	org, err := q.CreateOrganization(ctx, "acme")
	require.NoError(t, err)
	otherOrg, err := q.CreateOrganization(ctx, "globex")
	require.NoError(t, err)
	admin := principal.Admin{OrgID: org.ID, ID: uuid.New(), Name: "root"}

	agentRow, err := q.CreateAgentToken(ctx, sqlc.CreateAgentTokenParams{OrgID: org.ID, Name: "worker", TokenHash: "h", TokenLookup: "l1"})
	require.NoError(t, err)
	foreignAgent, err := q.CreateAgentToken(ctx, sqlc.CreateAgentTokenParams{OrgID: otherOrg.ID, Name: "worker", TokenHash: "h", TokenLookup: "l2"})
	require.NoError(t, err)

	service, err := svc.CreateService(ctx, admin, "openai", "OpenAI", "https://api.openai.com")
	require.NoError(t, err)

	t.Run("services", func(t *testing.T) {
		_, err := svc.CreateService(ctx, admin, "openai", "OpenAI again", "https://api.openai.com")
		assert.ErrorIs(t, err, ErrServiceExists)
		assert.Equal(t, checkout.KindConflict, checkout.KindOf(err))

		services, err := svc.ListServices(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, services, 1)
		assert.Equal(t, "openai", services[0].Provider)
	})

	t.Run("stored keys are encrypted at rest", func(t *testing.T) {
		info, err := svc.CreateStoredKey(ctx, admin, service.ID, "primary", "sk-live-abc")
		require.NoError(t, err)
		assert.Equal(t, "primary", info.Label)
		assert.Nil(t, info.RevokedAt)

		row, err := q.GetCurrentStoredKey(ctx, sqlc.GetCurrentStoredKeyParams{OrgID: org.ID, ServiceID: service.ID})
		require.NoError(t, err)
		assert.NotContains(t, string(row.EncryptedSecret), "sk-live-abc")
		plaintext, err := v.Decrypt(row.EncryptedSecret, row.WrappedDataKey)
		require.NoError(t, err)
		assert.Equal(t, "sk-live-abc", string(plaintext))

		_, err = svc.CreateStoredKey(ctx, admin, service.ID, "primary", "sk-live-other")
		assert.ErrorIs(t, err, ErrKeyLabelExists)

		_, err = svc.CreateStoredKey(ctx, admin, uuid.New(), "nowhere", "sk")
		assert.ErrorIs(t, err, ErrServiceNotFound)

		_, err = svc.RevokeStoredKey(ctx, otherOrg.ID, info.ID)
		assert.ErrorIs(t, err, ErrStoredKeyNotFound)

		revoked, err := svc.RevokeStoredKey(ctx, org.ID, info.ID)
		require.NoError(t, err)
		require.NotNil(t, revoked.RevokedAt)
		again, err := svc.RevokeStoredKey(ctx, org.ID, info.ID)
		require.NoError(t, err)
		assert.Equal(t, *revoked.RevokedAt, *again.RevokedAt)

		_, err = svc.RevokeStoredKey(ctx, otherOrg.ID, info.ID)
		assert.ErrorIs(t, err, ErrStoredKeyNotFound)
		_, err = svc.RevokeStoredKey(ctx, org.ID, uuid.New())
		assert.ErrorIs(t, err, ErrStoredKeyNotFound)

		keys, err := svc.ListStoredKeys(ctx, org.ID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("policies", func(t *testing.T) {
		orgWide, err := svc.CreatePolicy(ctx, admin, PolicyInput{ServiceID: service.ID, Enabled: true})
		require.NoError(t, err)
		assert.False(t, orgWide.AgentTokenID.Valid)
		assert.Equal(t, int32(DefaultMaxTTLSeconds), orgWide.MaxTtlSeconds)

		_, err = svc.CreatePolicy(ctx, admin, PolicyInput{ServiceID: service.ID, Enabled: true})
		assert.ErrorIs(t, err, ErrPolicyExists)

		agentID := agentRow.ID
		scoped, err := svc.CreatePolicy(ctx, admin, PolicyInput{ServiceID: service.ID, AgentTokenID: &agentID, MaxCheckoutsPerWindow: 1, Enabled: true})
		require.NoError(t, err)
		assert.Equal(t, agentID, scoped.AgentTokenID.UUID)

		foreignID := foreignAgent.ID
		_, err = svc.CreatePolicy(ctx, admin, PolicyInput{ServiceID: service.ID, AgentTokenID: &foreignID, Enabled: true})
		assert.ErrorIs(t, err, ErrAgentNotFound)

		_, err = svc.CreatePolicy(ctx, admin, PolicyInput{ServiceID: service.ID, CheckoutWindow: "weekly"})
		assert.ErrorIs(t, err, policy.ErrInvalidWindow)

		otherService, err := svc.CreateService(ctx, admin, "anthropic", "Anthropic", "https://api.anthropic.com")
		require.NoError(t, err)
		_, err = svc.CreatePolicy(ctx, admin, PolicyInput{ServiceID: otherService.ID, MaxTTLSeconds: 1<<32 + 1, Enabled: true})
		assert.ErrorIs(t, err, ErrInvalidPolicyLimit)
		_, err = svc.CreatePolicy(ctx, admin, PolicyInput{ServiceID: otherService.ID, MaxCheckoutsPerWindow: math.MaxInt32 + 1, Enabled: true})
		assert.ErrorIs(t, err, ErrInvalidPolicyLimit)

		ttl, window, enabled := 900, "hourly", false
		updated, err := svc.UpdatePolicy(ctx, org.ID, orgWide.ID, PolicyUpdate{MaxTTLSeconds: &ttl, CheckoutWindow: &window, Enabled: &enabled})
		require.NoError(t, err)
		assert.Equal(t, int32(900), updated.MaxTtlSeconds)
		assert.Equal(t, "hourly", updated.CheckoutWindow)
		assert.False(t, updated.Enabled)
		assert.Equal(t, orgWide.MaxCheckoutsPerWindow, updated.MaxCheckoutsPerWindow)

		_, err = svc.UpdatePolicy(ctx, otherOrg.ID, orgWide.ID, PolicyUpdate{Enabled: &enabled})
		assert.ErrorIs(t, err, ErrPolicyNotFound)

		zero := 0
		_, err = svc.UpdatePolicy(ctx, org.ID, orgWide.ID, PolicyUpdate{MaxActiveCheckouts: &zero})
		assert.ErrorIs(t, err, ErrInvalidPolicyLimit)

		wrapsToOne := 1<<32 + 1
		_, err = svc.UpdatePolicy(ctx, org.ID, orgWide.ID, PolicyUpdate{MaxTTLSeconds: &wrapsToOne})
		assert.ErrorIs(t, err, ErrInvalidPolicyLimit)
		current, err := q.GetPolicyForOrg(ctx, sqlc.GetPolicyForOrgParams{ID: orgWide.ID, OrgID: org.ID})
		require.NoError(t, err)
		assert.Equal(t, int32(900), current.MaxTtlSeconds)

		revoked, err := svc.RevokePolicy(ctx, org.ID, scoped.ID)
		require.NoError(t, err)
		assert.True(t, revoked.RevokedAt.Valid)
		again, err := svc.RevokePolicy(ctx, org.ID, scoped.ID)
		require.NoError(t, err)
		assert.True(t, revoked.RevokedAt.Time.Equal(again.RevokedAt.Time))

		_, err = svc.RevokePolicy(ctx, otherOrg.ID, scoped.ID)
		assert.ErrorIs(t, err, ErrPolicyNotFound)
		_, err = svc.RevokePolicy(ctx, org.ID, uuid.New())
		assert.ErrorIs(t, err, ErrPolicyNotFound)

		policies, err := svc.ListPolicies(ctx, org.ID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, policies, 2)
	})

	t.Run("audit trail", func(t *testing.T) {
		entries, err := svc.ListAudit(ctx, org.ID, 0, 0)
		require.NoError(t, err)

		counts := map[string]int{}
		for _, e := range entries {
			counts[e.Action]++
			assert.Nil(t, e.AgentTokenID)
		}
		assert.Equal(t, 2, counts[audit.ActionServiceCreated])
		assert.Equal(t, 1, counts[audit.ActionStoredKeyCreated])
		assert.Equal(t, 1, counts[audit.ActionStoredKeyRevoked])
		assert.Equal(t, 2, counts[audit.ActionPolicyCreated])
		assert.Equal(t, 1, counts[audit.ActionPolicyUpdated])
		assert.Equal(t, 1, counts[audit.ActionPolicyRevoked])

		_, err = svc.ListAudit(ctx, org.ID, 500, 0)
		assert.ErrorIs(t, err, audit.ErrInvalidPage)

		other, err := svc.ListAudit(ctx, otherOrg.ID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("checkouts listing is org scoped", func(t *testing.T) {
		checkouts, err := svc.ListCheckouts(ctx, org.ID, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, checkouts)
	})
}
