package postgres

import (
	"context"
	"errors"

	"github.com/fnb-collective/directory/internal/errs"
	"github.com/fnb-collective/directory/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// sessionCountBound keeps the counter inside int32 range; equality, not
// ordering, is what refresh-token validation compares.
const sessionCountBound = 2147483647

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a credential repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new credential row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, email, pwd_hash, session_count, permission_level)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Email, u.PwdHash, u.SessionCount, string(u.PermissionLevel))
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, email, pwd_hash, session_count, permission_level, created_at
FROM users WHERE id=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, email, pwd_hash, session_count, permission_level, created_at
FROM users WHERE email=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

// BumpSessionCount increments the session counter in a single statement so
// concurrent invalidations cannot read-modify-write past each other.
func (r *UserRepo) BumpSessionCount(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `
UPDATE users
SET session_count = (session_count + 1) % $2
WHERE id = $1
RETURNING session_count`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, id, int64(sessionCountBound)).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return n, nil
}

func (r *UserRepo) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var level string
	if err := row.Scan(&u.ID, &u.Email, &u.PwdHash, &u.SessionCount, &level, &u.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	u.PermissionLevel = model.PermissionLevel(level)
	return &u, nil
}
