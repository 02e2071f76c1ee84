package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	created []sqlc.CreateAuditLogParams
	rows    []sqlc.AuditLog
	listArg sqlc.ListAuditLogsByOrgParams
	err     error
}

func (f *fakeStore) CreateAuditLog(_ context.Context, arg sqlc.CreateAuditLogParams) (sqlc.AuditLog, error) {
	if f.err != nil {
		return sqlc.AuditLog{}, f.err
	}
	f.created = append(f.created, arg)
	return sqlc.AuditLog{ID: uuid.New(), OrgID: arg.OrgID, Action: arg.Action}, nil
}

func (f *fakeStore) ListAuditLogsByOrg(_ context.Context, arg sqlc.ListAuditLogsByOrgParams) ([]sqlc.AuditLog, error) {
	f.listArg = arg
	return f.rows, nil
}

func TestAppend(t *testing.T) {
	store := &fakeStore{}
	orgID, agentID := uuid.New(), uuid.New()

	err := NewSink().Append(context.Background(), store, Event{
		OrgID:        orgID,
		AgentID:      agentID,
		Action:       ActionKeyCheckedOut,
		ResourceType: ResourceCheckout,
		ResourceID:   "c-1",
		Metadata:     map[string]any{"service": "openai", "ttl_seconds": 600},
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	got := store.created[0]
	assert.Equal(t, orgID, got.OrgID)
	assert.Equal(t, uuid.NullUUID{UUID: agentID, Valid: true}, got.AgentTokenID)
	assert.JSONEq(t, `{"service":"openai","ttl_seconds":600}`, string(got.Metadata))
}

func TestAppendAdminEventHasNoAgent(t *testing.T) {
	store := &fakeStore{}

	err := NewSink().Append(context.Background(), store, Event{
		OrgID:        uuid.New(),
		Action:       ActionServiceCreated,
		ResourceType: ResourceService,
		ResourceID:   "s-1",
	})
	require.NoError(t, err)
	assert.False(t, store.created[0].AgentTokenID.Valid)
	assert.JSONEq(t, `{}`, string(store.created[0].Metadata))
}

func TestAppendPropagatesFailure(t *testing.T) {
	boom := errors.New("insert failed")
	err := NewSink().Append(context.Background(), &fakeStore{err: boom}, Event{Action: ActionKeyReturned})
	assert.ErrorIs(t, err, boom)
}

func TestList(t *testing.T) {
	orgID, agentID := uuid.New(), uuid.New()
	metadata, _ := json.Marshal(map[string]any{"service": "openai"})
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &fakeStore{rows: []sqlc.AuditLog{
		{ID: uuid.New(), OrgID: orgID, AgentTokenID: uuid.NullUUID{UUID: agentID, Valid: true}, Action: ActionKeyCheckedOut, Metadata: metadata, CreatedAt: pgtype.Timestamptz{Time: created, Valid: true}},
		{ID: uuid.New(), OrgID: orgID, Action: ActionPolicyCreated, Metadata: []byte(`{}`)},
	}}

	entries, err := NewSink().List(context.Background(), store, orgID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int32(DefaultLimit), store.listArg.Limit)
	assert.Equal(t, int32(0), store.listArg.Offset)
	assert.Equal(t, orgID, store.listArg.OrgID)

	require.NotNil(t, entries[0].AgentTokenID)
	assert.Equal(t, agentID, *entries[0].AgentTokenID)
	assert.Equal(t, "openai", entries[0].Metadata["service"])
	assert.Equal(t, created, entries[0].CreatedAt)
	assert.Nil(t, entries[1].AgentTokenID)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		wantLimit     int32
		wantErr       bool
	}{
		{"defaults", 0, 0, DefaultLimit, false},
		{"max", MaxLimit, 10, MaxLimit, false},
		{"too large", MaxLimit + 1, 0, 0, true},
		{"negative limit", -1, 0, 0, true},
		{"negative offset", 10, -1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, _, err := NormalizePage(tt.limit, tt.offset)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
