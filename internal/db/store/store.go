// Package store contains the hand-written pgx queries backing the
// repository layer. Methods are one-query-per-function with explicit
// param and row structs so repositories can depend on narrow interfaces.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

// Store executes queries against a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store bound to the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// mapErr tags connectivity failures so callers can distinguish "store
// down" from query-level errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errors.Join(httperrors.ErrStoreUnavailable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "57P01" { // admin_shutdown
		return errors.Join(httperrors.ErrStoreUnavailable, err)
	}
	return err
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return mapErr(s.pool.Ping(ctx))
}
