package service

import (
	"context"
	"fmt"

	"github.com/fnb-collective/directory/internal/errs"
	"github.com/fnb-collective/directory/internal/ids"
	"github.com/fnb-collective/directory/internal/model"
	"github.com/fnb-collective/directory/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// LocationService defines ownership-scoped operations over directory entries.
type LocationService interface {
	// Create stamps the requester as owner and persists a new entry.
	Create(ctx context.Context, requester model.Identity, in model.Location) (*model.Location, error)
	// Get returns a single entry by id.
	Get(ctx context.Context, id string) (*model.Location, error)
	// List returns all entries.
	List(ctx context.Context) ([]model.Location, error)
	// Update applies a partial update iff the requester owns the entry.
	Update(ctx context.Context, requester model.Identity, id string, patch model.LocationPatch) (*model.Location, error)
	// Delete removes the entry iff the requester owns it.
	Delete(ctx context.Context, requester model.Identity, id string) (*model.Location, error)
}

type LocationServiceImpl struct {
	repo     repository.LocationRepository
	profiles repository.ProfileRepository
	log      *zap.Logger
}

// NewLocationService constructs LocationService.
func NewLocationService(repo repository.LocationRepository, profiles repository.ProfileRepository, log *zap.Logger) *LocationServiceImpl {
	return &LocationServiceImpl{repo: repo, profiles: profiles, log: log}
}

// Create validates input, assigns a fresh id, stamps ownership from the
// resolved identity, and records the entry on the owner's profile.
func (s *LocationServiceImpl) Create(ctx context.Context, requester model.Identity, in model.Location) (*model.Location, error) {
	if requester.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty requester", errs.ErrValidation)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: empty name", errs.ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown location type %q", errs.ErrValidation, in.Type)
	}

	in.ID = ids.New()
	in.Owner = requester.UserID.String()
	if err := s.repo.Create(ctx, &in); err != nil {
		return nil, err
	}

	// Back-reference on the owner's profile; the location row is the source
	// of truth, so a failure here leaves the entry valid but unlisted.
	if _, err := s.profiles.AppendLocation(ctx, requester.UserID, in.ID); err != nil {
		s.log.Warn("append location to profile",
			zap.String("location", in.ID),
			zap.Stringer("owner", requester.UserID),
			zap.Error(err),
		)
	}

	return &in, nil
}

// Get fetches a single entry by id.
func (s *LocationServiceImpl) Get(ctx context.Context, id string) (*model.Location, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// List returns all entries (snapshot at scan time).
func (s *LocationServiceImpl) List(ctx context.Context) ([]model.Location, error) {
	return s.repo.List(ctx)
}

// Update validates the patch and delegates the conditional write; the
// ownership decision is made atomically by the store.
func (s *LocationServiceImpl) Update(ctx context.Context, requester model.Identity, id string, patch model.LocationPatch) (*model.Location, error) {
	if requester.UserID == uuid.Nil || id == "" {
		return nil, fmt.Errorf("%w: empty requester/id", errs.ErrValidation)
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: empty patch", errs.ErrValidation)
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown location type %q", errs.ErrValidation, *patch.Type)
	}
	return s.repo.Update(ctx, id, patch, requester.UserID.String())
}

// Delete delegates the conditional delete.
func (s *LocationServiceImpl) Delete(ctx context.Context, requester model.Identity, id string) (*model.Location, error) {
	if requester.UserID == uuid.Nil || id == "" {
		return nil, fmt.Errorf("%w: empty requester/id", errs.ErrValidation)
	}
	return s.repo.Delete(ctx, id, requester.UserID.String())
}
