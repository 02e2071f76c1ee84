package checkout

import (
	"time"

	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Status is derived from the checkout timestamps and the current time. It is
// never stored.
type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
	StatusRevoked  Status = "revoked"
	StatusExpired  Status = "expired"
)

type Summary struct {
	ID           uuid.UUID  `json:"id"`
	AgentID      uuid.UUID  `json:"agent_token_id"`
	StoredKeyID  uuid.UUID  `json:"stored_key_id"`
	PolicyID     uuid.UUID  `json:"policy_id"`
	CheckedOutAt time.Time  `json:"checked_out_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	ReturnedAt   *time.Time `json:"returned_at"`
	RevokedAt    *time.Time `json:"revoked_at"`
}

// Status reports the checkout's state at now. Returned and Revoked are
// permanent; when both are set the earlier one wins. Expiry applies only while
// neither is set.
func (s Summary) Status(now time.Time) Status {
	switch {
	case s.ReturnedAt != nil && (s.RevokedAt == nil || !s.RevokedAt.Before(*s.ReturnedAt)):
		return StatusReturned
	case s.RevokedAt != nil:
		return StatusRevoked
	case !now.Before(s.ExpiresAt):
		return StatusExpired
	default:
		return StatusActive
	}
}

// IsActive is the single definition of an outstanding checkout: not
// returned, not revoked and now < expires_at.
func (s Summary) IsActive(now time.Time) bool {
	return s.Status(now) == StatusActive
}

func SummaryFromRow(row sqlc.Checkout) Summary {
	return Summary{
		ID:           row.ID,
		AgentID:      row.AgentTokenID,
		StoredKeyID:  row.StoredKeyID,
		PolicyID:     row.PolicyID,
		CheckedOutAt: row.CheckedOutAt.Time.UTC(),
		ExpiresAt:    row.ExpiresAt.Time.UTC(),
		ReturnedAt:   optionalTime(row.ReturnedAt),
		RevokedAt:    optionalTime(row.RevokedAt),
	}
}

func optionalTime(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
