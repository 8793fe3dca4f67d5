package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"theater/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate indicates a movie with the same name and release date already exists.
var ErrDuplicate = errors.New("repository: duplicate movie")

// ErrInvalidData indicates the store rejected the mutation, typically a
// unique-constraint race that slipped past the pre-checks.
var ErrInvalidData = errors.New("repository: invalid data")

const uniqueViolationCode = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so lookup helpers can
// run inside or outside an explicit transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies  *MoviesRepository
	Lookups *LookupsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	lookups := &LookupsRepository{pool: pool}
	return &Repository{
		Movies:  &MoviesRepository{pool: pool, lookups: lookups},
		Lookups: lookups,
	}
}

// mapIntegrityError converts unique-violation failures into ErrInvalidData.
// The constraint name is deliberately not surfaced to callers.
func mapIntegrityError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrInvalidData
	}
	return err
}
