package repository

import (
	"context"

	"github.com/fnb-collective/directory/internal/model"
)

// LocationRepository provides ownership-scoped access to directory entries.
// Mutations are conditional writes: the store applies them only when the
// stored owner equals the requester, atomically.
type LocationRepository interface {
	// Create inserts a new location with owner already stamped.
	Create(ctx context.Context, loc *model.Location) error
	// Get returns a single location by id.
	Get(ctx context.Context, id string) (*model.Location, error)
	// List returns all locations ordered by id.
	List(ctx context.Context) ([]model.Location, error)
	// Update applies the non-nil patch fields iff owner matches requesterID.
	// Returns errs.ErrUnauthorized when the row exists under another owner,
	// errs.ErrNotFound when it does not exist.
	Update(ctx context.Context, id string, patch model.LocationPatch, requesterID string) (*model.Location, error)
	// Delete removes the row iff owner matches requesterID; returns the
	// deleted row. Error contract matches Update.
	Delete(ctx context.Context, id string, requesterID string) (*model.Location, error)
}
