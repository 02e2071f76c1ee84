// Package admin manages the records the checkout engine reads: the service
// catalog, encrypted stored keys and policies. It also exposes org-scoped
// listings of checkouts and audit events.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/policy"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrServiceExists      = fmt.Errorf("%w: service provider already exists", checkout.ErrConflict)
	ErrServiceNotFound    = fmt.Errorf("%w: service", checkout.ErrNotFound)
	ErrKeyLabelExists     = fmt.Errorf("%w: stored key label already exists for service", checkout.ErrConflict)
	ErrStoredKeyNotFound  = fmt.Errorf("%w: stored key", checkout.ErrNotFound)
	ErrAgentNotFound      = fmt.Errorf("%w: agent token", checkout.ErrNotFound)
	ErrPolicyExists       = fmt.Errorf("%w: policy already exists for this service target", checkout.ErrConflict)
	ErrPolicyNotFound     = fmt.Errorf("%w: policy", checkout.ErrNotFound)
	ErrInvalidPolicyLimit = errors.New("policy limits must be positive")
)

type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error
	Read(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error
}

type Encrypter interface {
	Encrypt(plaintext []byte) (ciphertext []byte, wrappedKey []byte, err error)
}

type Service struct {
	store Store
	vault Encrypter
	audit *audit.Sink
	now   func() time.Time
}

func NewService(store Store, vault Encrypter, sink *audit.Sink) *Service {
	return &Service{
		store: store,
		vault: vault,
		audit: sink,
		now:   time.Now,
	}
}

func (s *Service) timestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now().UTC().Truncate(time.Microsecond), Valid: true}
}

// list runs a paginated read after normalizing limit and offset.
func list[T any](ctx context.Context, s *Service, limit, offset int, fn func(ctx context.Context, q *sqlc.Queries, limit, offset int32) ([]T, error)) ([]T, error) {
	l, o, err := audit.NormalizePage(limit, offset)
	if err != nil {
		return nil, err
	}
	var rows []T
	err = s.store.Read(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		rows, err = fn(ctx, q, l, o)
		return err
	})
	return rows, err
}

func (s *Service) CreateService(ctx context.Context, admin principal.Admin, provider, name, baseURL string) (sqlc.Service, error) {
	var service sqlc.Service
	err := s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		service, err = q.CreateService(ctx, sqlc.CreateServiceParams{
			Provider: provider,
			Name:     name,
			BaseUrl:  baseURL,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrServiceExists
			}
			return fmt.Errorf("create service: %w", err)
		}
		return s.audit.Append(ctx, q, audit.Event{
			OrgID:        admin.OrgID,
			Action:       audit.ActionServiceCreated,
			ResourceType: audit.ResourceService,
			ResourceID:   service.ID.String(),
			Metadata:     map[string]any{"provider": provider},
		})
	})
	if err != nil {
		return sqlc.Service{}, err
	}
	return service, nil
}

func (s *Service) ListServices(ctx context.Context, limit, offset int) ([]sqlc.Service, error) {
	services, err := list(ctx, s, limit, offset, func(ctx context.Context, q *sqlc.Queries, l, o int32) ([]sqlc.Service, error) {
		return q.ListServices(ctx, sqlc.ListServicesParams{Limit: l, Offset: o})
	})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// StoredKeyInfo is the metadata of a stored key. Key material never leaves
// the store through this type.
type StoredKeyInfo struct {
	ID        uuid.UUID
	ServiceID uuid.UUID
	Label     string
	CreatedAt time.Time
	RevokedAt *time.Time
}

func storedKeyInfo(row sqlc.StoredKey) StoredKeyInfo {
	info := StoredKeyInfo{
		ID:        row.ID,
		ServiceID: row.ServiceID,
		Label:     row.Label,
		CreatedAt: row.CreatedAt.Time.UTC(),
	}
	if row.RevokedAt.Valid {
		revokedAt := row.RevokedAt.Time.UTC()
		info.RevokedAt = &revokedAt
	}
	return info
}

// CreateStoredKey envelope-encrypts secret and stores it for the admin's
// organization. The newest active key of a service is the one checked out.
func (s *Service) CreateStoredKey(ctx context.Context, admin principal.Admin, serviceID uuid.UUID, label, secret string) (StoredKeyInfo, error) {
	ciphertext, wrapped, err := s.vault.Encrypt([]byte(secret))
	if err != nil {
		return StoredKeyInfo{}, fmt.Errorf("encrypt stored key: %w", err)
	}

	var row sqlc.StoredKey
	err = s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		if _, err := q.GetServiceByID(ctx, serviceID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("get service: %w", err)
		}

		row, err = q.CreateStoredKey(ctx, sqlc.CreateStoredKeyParams{
			OrgID:           admin.OrgID,
			ServiceID:       serviceID,
			Label:           label,
			EncryptedSecret: ciphertext,
			WrappedDataKey:  wrapped,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrKeyLabelExists
			}
			return fmt.Errorf("create stored key: %w", err)
		}

		return s.audit.Append(ctx, q, audit.Event{
			OrgID:        admin.OrgID,
			Action:       audit.ActionStoredKeyCreated,
			ResourceType: audit.ResourceStoredKey,
			ResourceID:   row.ID.String(),
			Metadata:     map[string]any{"service_id": serviceID.String(), "label": label},
		})
	})
	if err != nil {
		return StoredKeyInfo{}, err
	}
	return storedKeyInfo(row), nil
}

func (s *Service) ListStoredKeys(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]StoredKeyInfo, error) {
	rows, err := list(ctx, s, limit, offset, func(ctx context.Context, q *sqlc.Queries, l, o int32) ([]sqlc.StoredKey, error) {
		return q.ListStoredKeysByOrg(ctx, sqlc.ListStoredKeysByOrgParams{OrgID: orgID, Limit: l, Offset: o})
	})
	if err != nil {
		return nil, fmt.Errorf("list stored keys: %w", err)
	}
	result := make([]StoredKeyInfo, len(rows))
	for i, row := range rows {
		result[i] = storedKeyInfo(row)
	}
	return result, nil
}

// RevokeStoredKey is idempotent; only the first revocation is audited.
func (s *Service) RevokeStoredKey(ctx context.Context, orgID, keyID uuid.UUID) (StoredKeyInfo, error) {
	var row sqlc.StoredKey
	err := s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		row, err = q.RevokeStoredKey(ctx, sqlc.RevokeStoredKeyParams{RevokedAt: s.timestamp(), ID: keyID, OrgID: orgID})
		if errors.Is(err, pgx.ErrNoRows) {
			row, err = q.GetStoredKeyForOrg(ctx, sqlc.GetStoredKeyForOrgParams{ID: keyID, OrgID: orgID})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrStoredKeyNotFound
				}
				return fmt.Errorf("get stored key: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("revoke stored key: %w", err)
		}
		return s.audit.Append(ctx, q, audit.Event{
			OrgID:        orgID,
			Action:       audit.ActionStoredKeyRevoked,
			ResourceType: audit.ResourceStoredKey,
			ResourceID:   row.ID.String(),
		})
	})
	if err != nil {
		return StoredKeyInfo{}, err
	}
	return storedKeyInfo(row), nil
}

func (s *Service) ListCheckouts(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]checkout.Summary, error) {
	rows, err := list(ctx, s, limit, offset, func(ctx context.Context, q *sqlc.Queries, l, o int32) ([]sqlc.Checkout, error) {
		return q.ListCheckoutsByOrg(ctx, sqlc.ListCheckoutsByOrgParams{OrgID: orgID, Limit: l, Offset: o})
	})
	if err != nil {
		return nil, fmt.Errorf("list checkouts: %w", err)
	}
	result := make([]checkout.Summary, len(rows))
	for i, row := range rows {
		result[i] = checkout.SummaryFromRow(row)
	}
	return result, nil
}

func (s *Service) ListAudit(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]audit.Entry, error) {
	var entries []audit.Entry
	err := s.store.Read(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		entries, err = s.audit.List(ctx, q, orgID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func validWindow(window string) error {
	_, err := policy.ParseWindow(window)
	return err
}
