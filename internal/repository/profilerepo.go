package repository

import (
	"context"

	"github.com/fnb-collective/directory/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepository stores public user profiles. A profile shares its id with
// the credential row; ownership checks reduce to id equality and are enforced
// in the service layer, while username uniqueness is enforced here.
type ProfileRepository interface {
	// Create inserts a new profile row. Duplicate username -> errs.ErrAlreadyExists.
	Create(ctx context.Context, p *model.UserProfile) error
	// Get returns a profile by id.
	Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	// List returns all profiles ordered by username.
	List(ctx context.Context) ([]model.UserProfile, error)
	// Update applies the non-nil patch fields. Duplicate username ->
	// errs.ErrAlreadyExists; missing row -> errs.ErrNotFound.
	Update(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error)
	// Delete removes the profile and returns the removed row.
	Delete(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	// AppendLocation appends a location id to the profile's list.
	AppendLocation(ctx context.Context, id uuid.UUID, locationID string) (*model.UserProfile, error)
}
