// Package postgres backs the directory's credential and resource stores
// with PostgreSQL. Mutations that depend on ownership are phrased as
// single conditional statements so the accept/reject decision happens in
// the database, not in application code.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the pool surface the repositories need. Both *pgxpool.Pool
// and pgxmock.PgxPoolIface satisfy it, which is what lets the repo tests
// run without a database.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

// DB hands a shared pool to every repository constructor.
type DB struct{ Pool PgxPool }

// New opens a pool against the DSN.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{Pool: pool}, nil
}

// Close releases the pool.
func (db *DB) Close() { db.Pool.Close() }

// isUniqueViolation matches SQLSTATE 23505, the unique-index rejections
// that back the email and username constraints.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
