package service

import (
	"context"
	"fmt"

	"github.com/fnb-collective/directory/internal/errs"
	"github.com/fnb-collective/directory/internal/model"
	"github.com/fnb-collective/directory/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// ProfileService defines self-service operations over user profiles.
// Profiles have no delegated ownership: only the profile's own credential
// may mutate or delete it.
type ProfileService interface {
	// Get returns a profile by id.
	Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	// List returns all profiles.
	List(ctx context.Context) ([]model.UserProfile, error)
	// Update applies a partial update iff requester == id.
	Update(ctx context.Context, requester model.Identity, id uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error)
	// Delete removes the profile iff requester == id.
	Delete(ctx context.Context, requester model.Identity, id uuid.UUID) (*model.UserProfile, error)
	// AttachLocation appends a location id to the requester's own profile.
	AttachLocation(ctx context.Context, requester model.Identity, id uuid.UUID, locationID string) (*model.UserProfile, error)
}

type ProfileServiceImpl struct {
	repo repository.ProfileRepository
}

// NewProfileService constructs ProfileService.
func NewProfileService(repo repository.ProfileRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{repo: repo}
}

// Get fetches a profile by id.
func (s *ProfileServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// List returns all profiles.
func (s *ProfileServiceImpl) List(ctx context.Context) ([]model.UserProfile, error) {
	return s.repo.List(ctx)
}

// Update enforces the self-service rule before the store is touched, then
// delegates; username uniqueness is the store's unique index.
func (s *ProfileServiceImpl) Update(ctx context.Context, requester model.Identity, id uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	if requester.UserID != id {
		return nil, errs.ErrUnauthorized
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: empty patch", errs.ErrValidation)
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete enforces the self-service rule and removes the profile.
func (s *ProfileServiceImpl) Delete(ctx context.Context, requester model.Identity, id uuid.UUID) (*model.UserProfile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	if requester.UserID != id {
		return nil, errs.ErrUnauthorized
	}
	return s.repo.Delete(ctx, id)
}

// AttachLocation appends a location id to the requester's own profile.
func (s *ProfileServiceImpl) AttachLocation(ctx context.Context, requester model.Identity, id uuid.UUID, locationID string) (*model.UserProfile, error) {
	if id == uuid.Nil || locationID == "" {
		return nil, fmt.Errorf("%w: empty id/locationID", errs.ErrValidation)
	}
	if requester.UserID != id {
		return nil, errs.ErrUnauthorized
	}
	return s.repo.AppendLocation(ctx, id, locationID)
}
