package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fnb-collective/directory/internal/errs"
	"github.com/fnb-collective/directory/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

const profileCols = `id, username, contact, description, picture, locations`

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// Create inserts a new profile row. The unique index on username closes the
// duplicate race the application-level pre-check cannot.
func (r *ProfileRepo) Create(ctx context.Context, p *model.UserProfile) error {
	const q = `
INSERT INTO user_profiles (id, username, contact, description, picture, locations)
VALUES ($1, $2, $3, $4, $5, $6)`
	locs := p.Locations
	if locs == nil {
		locs = []string{}
	}
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.Username, p.Contact, p.Description, p.Picture, locs)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get selects a profile by id.
func (r *ProfileRepo) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	q := `SELECT ` + profileCols + ` FROM user_profiles WHERE id=$1`
	return scanProfile(r.db.Pool.QueryRow(ctx, q, id))
}

// List returns all profiles ordered by username.
func (r *ProfileRepo) List(ctx context.Context) ([]model.UserProfile, error) {
	q := `SELECT ` + profileCols + ` FROM user_profiles ORDER BY username`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserProfile
	for rows.Next() {
		var p model.UserProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.Contact, &p.Description, &p.Picture, &p.Locations); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies the supplied patch fields in one statement keyed on id.
// Ownership (requester == id) is the service layer's check; uniqueness of
// username is this layer's.
func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error) {
	set := make([]string, 0, 5)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Contact != nil {
		add("contact", *patch.Contact)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Picture != nil {
		add("picture", *patch.Picture)
	}
	if patch.Locations != nil {
		add("locations", *patch.Locations)
	}
	if len(set) == 0 {
		return nil, errs.ErrNotFound
	}

	q := `UPDATE user_profiles SET ` + strings.Join(set, ", ") +
		` WHERE id=$1 RETURNING ` + profileCols
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, q, args...))
	if isUniqueViolation(err) {
		return nil, errs.ErrAlreadyExists
	}
	return p, err
}

// Delete removes the profile and returns the removed row.
func (r *ProfileRepo) Delete(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	q := `DELETE FROM user_profiles WHERE id=$1 RETURNING ` + profileCols
	return scanProfile(r.db.Pool.QueryRow(ctx, q, id))
}

// AppendLocation appends a location id to the profile's list in one statement.
func (r *ProfileRepo) AppendLocation(ctx context.Context, id uuid.UUID, locationID string) (*model.UserProfile, error) {
	q := `
UPDATE user_profiles
SET locations = array_append(locations, $2)
WHERE id = $1
RETURNING ` + profileCols
	return scanProfile(r.db.Pool.QueryRow(ctx, q, id, locationID))
}

func scanProfile(row pgx.Row) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := row.Scan(&p.ID, &p.Username, &p.Contact, &p.Description, &p.Picture, &p.Locations); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
