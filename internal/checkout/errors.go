package checkout

import (
	"errors"

	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/EternisAI/agent-key/internal/quota"
	"github.com/EternisAI/agent-key/internal/vault"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrCheckoutNotFound = errors.New("checkout not found")
	ErrAlreadyRevoked   = errors.New("checkout has been revoked")
	ErrAlreadyExpired   = errors.New("checkout has expired")
	ErrAlreadyReturned  = errors.New("checkout already returned")
	ErrInvalidTTL       = errors.New("invalid ttl")
)

// Kind is the caller-facing class of an engine failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidRequest    Kind = "invalid_request"
	KindPolicyDenied      Kind = "policy_denied"
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindActiveCapExceeded Kind = "active_cap_exceeded"
	KindVaultError        Kind = "vault_error"
	KindTransient         Kind = "transient_store_error"
	KindInternal          Kind = "internal"
)

// KindOf classifies err. Vault and transient failures take precedence over
// whatever they wrap.
func KindOf(err error) Kind {
	var vaultErr *vault.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vaultErr):
		return KindVaultError
	case db.IsTransient(err):
		return KindTransient
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrCheckoutNotFound),
		errors.Is(err, policy.ErrServiceNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrAlreadyRevoked),
		errors.Is(err, ErrAlreadyExpired),
		errors.Is(err, ErrAlreadyReturned),
		errors.Is(err, policy.ErrNoActiveKey):
		return KindConflict
	case errors.Is(err, ErrInvalidTTL):
		return KindInvalidRequest
	case errors.Is(err, policy.ErrNoMatchingPolicy),
		errors.Is(err, policy.ErrTTLExceedsPolicy):
		return KindPolicyDenied
	case errors.Is(err, quota.ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, quota.ErrActiveCapExceeded):
		return KindActiveCapExceeded
	default:
		return KindInternal
	}
}
