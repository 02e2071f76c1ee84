package db

import (
	"context"
	"fmt"
	"time"

	"github.com/EternisAI/agent-key/internal/db/sqlc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store couples the pool with the generated queries and bounds every unit of
// work by a request timeout.
type Store struct {
	pool    *pgxpool.Pool
	queries *sqlc.Queries
	timeout time.Duration
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{
		pool:    pool,
		queries: sqlc.New(pool),
		timeout: timeout,
	}
}

// Queries runs outside of any transaction.
func (s *Store) Queries() *sqlc.Queries {
	return s.queries
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return classify(s.pool.Ping(ctx))
}

// Read runs fn outside a transaction under the store timeout.
func (s *Store) Read(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return classify(fn(ctx, s.queries))
}

// InTx runs fn in a single transaction. The transaction commits only when fn
// returns nil; any error rolls everything back, including audit rows.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, q *sqlc.Queries) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, s.queries.WithTx(tx)); err != nil {
		return classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
