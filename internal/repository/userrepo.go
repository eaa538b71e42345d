// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/fnb-collective/directory/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository is the credential store: identity records keyed by id with
// a unique email and a per-user session (revocation) counter.
type UserRepository interface {
	// Create inserts a new credential row. Duplicate email -> errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// BumpSessionCount atomically increments the session counter (with wrap)
	// and returns the new value. This is the sole revocation mechanism.
	BumpSessionCount(ctx context.Context, id uuid.UUID) (int64, error)
}
