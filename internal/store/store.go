// Package store persists events, recipients, generation jobs and audit
// entries in PostgreSQL via pgx. All SQL lives here; callers work with
// plain Go types and never see pgtype values.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a pgx connection pool with typed queries.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on top of an existing pool. The caller owns the
// pool's lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// notFound translates pgx's sentinel into the package sentinel so callers
// can errors.Is against a single value.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
