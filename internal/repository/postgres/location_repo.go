package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fnb-collective/directory/internal/errs"
	"github.com/fnb-collective/directory/internal/model"
	"github.com/jackc/pgx/v5"
)

const locationCols = `id, name, friendly_location, description, latitude, longitude, picture, owner_id, type`

// LocationRepo implements LocationRepository using PostgreSQL.
type LocationRepo struct{ db *DB }

// NewLocationRepo constructs a location repository.
func NewLocationRepo(db *DB) *LocationRepo { return &LocationRepo{db: db} }

// Create inserts a new location row.
func (r *LocationRepo) Create(ctx context.Context, loc *model.Location) error {
	const q = `
INSERT INTO locations (id, name, friendly_location, description, latitude, longitude, picture, owner_id, type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Pool.Exec(ctx, q,
		loc.ID, loc.Name, loc.FriendlyLocation, loc.Description,
		loc.Latitude, loc.Longitude, loc.Picture, loc.Owner, string(loc.Type))
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get selects a single location by id.
func (r *LocationRepo) Get(ctx context.Context, id string) (*model.Location, error) {
	q := `SELECT ` + locationCols + ` FROM locations WHERE id=$1`
	return scanLocation(r.db.Pool.QueryRow(ctx, q, id))
}

// List returns all locations ordered by id (ULIDs sort by creation time).
func (r *LocationRepo) List(ctx context.Context) ([]model.Location, error) {
	q := `SELECT ` + locationCols + ` FROM locations ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var loc model.Location
		var typ string
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.FriendlyLocation, &loc.Description,
			&loc.Latitude, &loc.Longitude, &loc.Picture, &loc.Owner, &typ); err != nil {
			return nil, err
		}
		loc.Type = model.LocationType(typ)
		out = append(out, loc)
	}
	return out, rows.Err()
}

// Update applies the supplied patch fields in a single conditional statement.
// The owner equality lives in the WHERE clause, so acceptance and write are
// one atomic store-side operation; id and owner_id never enter the SET list.
func (r *LocationRepo) Update(
	ctx context.Context, id string, patch model.LocationPatch, requesterID string,
) (*model.Location, error) {
	set := make([]string, 0, 7)
	args := []any{id, requesterID}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.FriendlyLocation != nil {
		add("friendly_location", *patch.FriendlyLocation)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Latitude != nil {
		add("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		add("longitude", *patch.Longitude)
	}
	if patch.Picture != nil {
		add("picture", *patch.Picture)
	}
	if patch.Type != nil {
		add("type", string(*patch.Type))
	}
	if len(set) == 0 {
		return nil, errs.ErrNotFound
	}

	q := `UPDATE locations SET ` + strings.Join(set, ", ") +
		` WHERE id=$1 AND owner_id=$2 RETURNING ` + locationCols
	loc, err := scanLocation(r.db.Pool.QueryRow(ctx, q, args...))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, r.classifyMiss(ctx, id)
	}
	return loc, err
}

// Delete removes the row conditionally on ownership and returns it.
func (r *LocationRepo) Delete(ctx context.Context, id string, requesterID string) (*model.Location, error) {
	q := `DELETE FROM locations WHERE id=$1 AND owner_id=$2 RETURNING ` + locationCols
	loc, err := scanLocation(r.db.Pool.QueryRow(ctx, q, id, requesterID))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, r.classifyMiss(ctx, id)
	}
	return loc, err
}

// classifyMiss distinguishes a missing row from an ownership rejection after
// a conditional write matched nothing. The write decision was already made
// atomically; this read only picks the error category.
func (r *LocationRepo) classifyMiss(ctx context.Context, id string) error {
	const q = `SELECT 1 FROM locations WHERE id=$1`
	var one int
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	return errs.ErrUnauthorized
}

func scanLocation(row pgx.Row) (*model.Location, error) {
	var loc model.Location
	var typ string
	if err := row.Scan(&loc.ID, &loc.Name, &loc.FriendlyLocation, &loc.Description,
		&loc.Latitude, &loc.Longitude, &loc.Picture, &loc.Owner, &typ); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	loc.Type = model.LocationType(typ)
	return &loc, nil
}
