package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the pgx connection pool backing the Postgres journal store. The
// store takes it as a constructor argument so tests can hand it a pool
// pointed at a throwaway container.
type Pool struct {
	*pgxpool.Pool
}

// NewPool opens a pool against dsn and pings it, so a bad DSN fails at
// startup rather than on the first journal write.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases all pooled connections.
func (p *Pool) Close() {
	p.Pool.Close()
}

// pgErrUniqueViolation is the SQLSTATE raised when an insert hits the
// one-entry-per-date primary key on journal_entries.
const pgErrUniqueViolation = "23505"

// isDuplicateKeyError reports whether err is a unique violation; the journal
// store maps it to storage.ErrDuplicateKey so callers never see pgconn types.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}

	return false
}

// isNotFoundError reports whether err means the queried date has no entry,
// mapped to storage.ErrNotFound by the journal store.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
