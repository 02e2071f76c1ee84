// Package auth provisions the first organization and issues, authenticates
// and revokes the opaque admin and agent bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EternisAI/agent-key/internal/audit"
	"github.com/EternisAI/agent-key/internal/checkout"
	"github.com/EternisAI/agent-key/internal/db"
	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/EternisAI/agent-key/internal/principal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrInvalidToken        = errors.New("invalid or revoked token")
	ErrBootstrapDisabled   = errors.New("bootstrap is disabled")
	ErrAlreadyBootstrapped = fmt.Errorf("%w: organization already bootstrapped", checkout.ErrConflict)
	ErrTokenNameExists     = fmt.Errorf("%w: token name already exists", checkout.ErrConflict)
	ErrAgentNotFound       = fmt.Errorf("%w: agent token", checkout.ErrNotFound)
)

type Config struct {
	BootstrapEnabled bool
}

type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error
	Read(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error
}

type BootstrapResult struct {
	OrgID        uuid.UUID
	OrgName      string
	AdminTokenID uuid.UUID
	AdminToken   string
}

// IssuedToken carries the plaintext token. It is returned once and never
// stored.
type IssuedToken struct {
	ID        uuid.UUID
	Name      string
	Token     string
	CreatedAt time.Time
}

type AgentTokenInfo struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	RevokedAt *time.Time
}

type Service struct {
	store  Store
	audit  *audit.Sink
	cache  *Cache
	config Config
}

func NewService(store Store, sink *audit.Sink, cache *Cache, config Config) *Service {
	return &Service{
		store:  store,
		audit:  sink,
		cache:  cache,
		config: config,
	}
}

// Bootstrap creates the first organization and its initial admin token. It
// succeeds at most once per database.
func (s *Service) Bootstrap(ctx context.Context, orgName, adminTokenName string) (BootstrapResult, error) {
	if !s.config.BootstrapEnabled {
		return BootstrapResult{}, ErrBootstrapDisabled
	}

	token, err := GenerateToken(AdminTokenPrefix)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("generate token: %w", err)
	}
	hash, err := HashToken(token)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("hash token: %w", err)
	}

	var result BootstrapResult
	err = s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		if err := q.LockBootstrap(ctx); err != nil {
			return fmt.Errorf("lock bootstrap: %w", err)
		}

		count, err := q.CountOrganizations(ctx)
		if err != nil {
			return fmt.Errorf("count organizations: %w", err)
		}
		if count > 0 {
			return ErrAlreadyBootstrapped
		}

		org, err := q.CreateOrganization(ctx, orgName)
		if err != nil {
			return fmt.Errorf("create organization: %w", err)
		}

		admin, err := q.CreateAdminToken(ctx, sqlc.CreateAdminTokenParams{
			OrgID:       org.ID,
			Name:        adminTokenName,
			TokenHash:   hash,
			TokenLookup: LookupKey(token),
		})
		if err != nil {
			return fmt.Errorf("create admin token: %w", err)
		}

		if err := s.audit.Append(ctx, q, audit.Event{
			OrgID:        org.ID,
			Action:       audit.ActionOrganizationBootstrapped,
			ResourceType: audit.ResourceOrganization,
			ResourceID:   org.ID.String(),
			Metadata:     map[string]any{"admin_token_id": admin.ID.String()},
		}); err != nil {
			return err
		}

		result = BootstrapResult{
			OrgID:        org.ID,
			OrgName:      org.Name,
			AdminTokenID: admin.ID,
			AdminToken:   token,
		}
		return nil
	})
	if err != nil {
		return BootstrapResult{}, err
	}

	slog.Info("Organization bootstrapped", "org_id", result.OrgID, "admin_token_id", result.AdminTokenID)
	return result, nil
}

func (s *Service) CreateAdminToken(ctx context.Context, admin principal.Admin, name string) (IssuedToken, error) {
	return s.issue(ctx, admin.OrgID, name, AdminTokenPrefix, func(ctx context.Context, q *sqlc.Queries, hash, lookup string) (uuid.UUID, pgtype.Timestamptz, error) {
		row, err := q.CreateAdminToken(ctx, sqlc.CreateAdminTokenParams{
			OrgID:       admin.OrgID,
			Name:        name,
			TokenHash:   hash,
			TokenLookup: lookup,
		})
		return row.ID, row.CreatedAt, err
	}, audit.ActionAdminTokenCreated, audit.ResourceAdminToken)
}

func (s *Service) CreateAgentToken(ctx context.Context, admin principal.Admin, name string) (IssuedToken, error) {
	return s.issue(ctx, admin.OrgID, name, AgentTokenPrefix, func(ctx context.Context, q *sqlc.Queries, hash, lookup string) (uuid.UUID, pgtype.Timestamptz, error) {
		row, err := q.CreateAgentToken(ctx, sqlc.CreateAgentTokenParams{
			OrgID:       admin.OrgID,
			Name:        name,
			TokenHash:   hash,
			TokenLookup: lookup,
		})
		return row.ID, row.CreatedAt, err
	}, audit.ActionAgentTokenCreated, audit.ResourceAgentToken)
}

type insertToken func(ctx context.Context, q *sqlc.Queries, hash, lookup string) (uuid.UUID, pgtype.Timestamptz, error)

func (s *Service) issue(ctx context.Context, orgID uuid.UUID, name, prefix string, insert insertToken, action, resourceType string) (IssuedToken, error) {
	token, err := GenerateToken(prefix)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("generate token: %w", err)
	}
	hash, err := HashToken(token)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("hash token: %w", err)
	}

	var issued IssuedToken
	err = s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		id, createdAt, err := insert(ctx, q, hash, LookupKey(token))
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrTokenNameExists
			}
			return fmt.Errorf("create token: %w", err)
		}

		if err := s.audit.Append(ctx, q, audit.Event{
			OrgID:        orgID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   id.String(),
			Metadata:     map[string]any{"name": name},
		}); err != nil {
			return err
		}

		issued = IssuedToken{ID: id, Name: name, Token: token, CreatedAt: createdAt.Time.UTC()}
		return nil
	})
	if err != nil {
		return IssuedToken{}, err
	}
	return issued, nil
}

func (s *Service) ListAgentTokens(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]AgentTokenInfo, error) {
	l, o, err := audit.NormalizePage(limit, offset)
	if err != nil {
		return nil, err
	}

	var rows []sqlc.AgentToken
	err = s.store.Read(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		rows, err = q.ListAgentTokensByOrg(ctx, sqlc.ListAgentTokensByOrgParams{OrgID: orgID, Limit: l, Offset: o})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list agent tokens: %w", err)
	}

	result := make([]AgentTokenInfo, len(rows))
	for i, row := range rows {
		result[i] = AgentTokenInfo{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt.Time.UTC()}
		if row.RevokedAt.Valid {
			revokedAt := row.RevokedAt.Time.UTC()
			result[i].RevokedAt = &revokedAt
		}
	}
	return result, nil
}

// RevokeAgentToken is idempotent; only the first revocation is audited.
func (s *Service) RevokeAgentToken(ctx context.Context, orgID, tokenID uuid.UUID) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	err := s.store.InTx(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		row, err := q.RevokeAgentToken(ctx, sqlc.RevokeAgentTokenParams{
			RevokedAt: pgtype.Timestamptz{Time: now, Valid: true},
			ID:        tokenID,
			OrgID:     orgID,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := q.GetAgentTokenForOrg(ctx, sqlc.GetAgentTokenForOrgParams{ID: tokenID, OrgID: orgID}); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrAgentNotFound
				}
				return fmt.Errorf("get agent token: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("revoke agent token: %w", err)
		}
		return s.audit.Append(ctx, q, audit.Event{
			OrgID:        orgID,
			Action:       audit.ActionAgentTokenRevoked,
			ResourceType: audit.ResourceAgentToken,
			ResourceID:   row.ID.String(),
		})
	})
	if err != nil {
		return err
	}

	s.cache.Revoke(tokenID)
	return nil
}

func (s *Service) AuthenticateAgent(ctx context.Context, token string) (principal.Agent, error) {
	if !hasPrefix(token, AgentTokenPrefix) {
		return principal.Agent{}, ErrInvalidToken
	}
	lookup := LookupKey(token)
	if entry, ok := s.cache.Get(lookup, RoleAgent); ok {
		return principal.Agent{OrgID: entry.OrgID, ID: entry.TokenID, Name: entry.Name}, nil
	}

	var row sqlc.AgentToken
	err := s.store.Read(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		row, err = q.GetActiveAgentTokenByLookup(ctx, lookup)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return principal.Agent{}, ErrInvalidToken
		}
		return principal.Agent{}, fmt.Errorf("lookup agent token: %w", err)
	}
	if !CheckToken(token, row.TokenHash) {
		return principal.Agent{}, ErrInvalidToken
	}

	s.cache.Put(lookup, RoleAgent, row.ID, row.OrgID, row.Name)
	return principal.Agent{OrgID: row.OrgID, ID: row.ID, Name: row.Name}, nil
}

func (s *Service) AuthenticateAdmin(ctx context.Context, token string) (principal.Admin, error) {
	if !hasPrefix(token, AdminTokenPrefix) {
		return principal.Admin{}, ErrInvalidToken
	}
	lookup := LookupKey(token)
	if entry, ok := s.cache.Get(lookup, RoleAdmin); ok {
		return principal.Admin{OrgID: entry.OrgID, ID: entry.TokenID, Name: entry.Name}, nil
	}

	var row sqlc.AdminToken
	err := s.store.Read(ctx, func(ctx context.Context, q *sqlc.Queries) error {
		var err error
		row, err = q.GetActiveAdminTokenByLookup(ctx, lookup)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return principal.Admin{}, ErrInvalidToken
		}
		return principal.Admin{}, fmt.Errorf("lookup admin token: %w", err)
	}
	if !CheckToken(token, row.TokenHash) {
		return principal.Admin{}, ErrInvalidToken
	}

	s.cache.Put(lookup, RoleAdmin, row.ID, row.OrgID, row.Name)
	return principal.Admin{OrgID: row.OrgID, ID: row.ID, Name: row.Name}, nil
}
