// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// PermissionLevel is the coarse role attached to a user account.
type PermissionLevel string

// Permission levels in ascending order of privilege.
const (
	PermissionUser       PermissionLevel = "USER"
	PermissionAdmin      PermissionLevel = "ADMIN"
	PermissionSuperAdmin PermissionLevel = "SUPER_ADMIN"
)

// Valid reports whether the value is one of the known levels.
func (p PermissionLevel) Valid() bool {
	switch p {
	case PermissionUser, PermissionAdmin, PermissionSuperAdmin:
		return true
	}
	return false
}

// User is a credential record. Owned by the credential store; the
// session count is the sole server-side session state.
type User struct {
	ID              uuid.UUID // PK
	Email           string    // unique
	PwdHash         []byte    // bcrypt(password)
	SessionCount    int64     // revocation counter; refresh tokens snapshot it
	PermissionLevel PermissionLevel
	CreatedAt       time.Time
}

// Identity is the subject resolved from a verified token pair. It is the
// "action requester" for every ownership check.
type Identity struct {
	UserID          uuid.UUID
	PermissionLevel PermissionLevel
}

// Tokens collects an issued access/refresh pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// LocationType classifies a directory entry.
type LocationType string

// Known location types.
const (
	LocationFreeFoodStand LocationType = "FREE_FOOD_STAND"
	LocationFreeStore     LocationType = "FREE_STORE"
	LocationGarden        LocationType = "GARDEN"
	LocationShelter       LocationType = "SHELTER"
	LocationOther         LocationType = "OTHER"
)

// Valid reports whether the value is one of the known types.
func (t LocationType) Valid() bool {
	switch t {
	case LocationFreeFoodStand, LocationFreeStore, LocationGarden, LocationShelter, LocationOther:
		return true
	}
	return false
}

// Location is a community-resource directory entry. Owner is immutable
// after creation; only the owner may mutate or delete the row.
type Location struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	FriendlyLocation string       `json:"friendlyLocation"`
	Description      string       `json:"description"`
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
	Picture          string       `json:"picture"`
	Owner            string       `json:"locationOwner"`
	Type             LocationType `json:"type"`
}

// LocationPatch carries a partial update; nil fields are left untouched.
// ID and owner are deliberately absent; neither is mutable.
type LocationPatch struct {
	Name             *string       `json:"name"`
	FriendlyLocation *string       `json:"friendlyLocation"`
	Description      *string       `json:"description"`
	Latitude         *float64      `json:"latitude"`
	Longitude        *float64      `json:"longitude"`
	Picture          *string       `json:"picture"`
	Type             *LocationType `json:"type"`
}

// Empty reports whether the patch changes nothing.
func (p LocationPatch) Empty() bool {
	return p.Name == nil && p.FriendlyLocation == nil && p.Description == nil &&
		p.Latitude == nil && p.Longitude == nil && p.Picture == nil && p.Type == nil
}

// UserProfile is the public-facing record paired with a credential row.
// Profiles are strictly self-owned: the profile id is the credential id.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Contact     string    `json:"contact"`
	Description string    `json:"description"`
	Picture     string    `json:"picture"`
	Locations   []string  `json:"locations"`
}

// ProfilePatch carries a partial profile update; nil fields are untouched.
type ProfilePatch struct {
	Username    *string   `json:"username"`
	Contact     *string   `json:"contact"`
	Description *string   `json:"description"`
	Picture     *string   `json:"picture"`
	Locations   *[]string `json:"locations"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.Contact == nil && p.Description == nil &&
		p.Picture == nil && p.Locations == nil
}
