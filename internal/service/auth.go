// Package service contains application services for authentication,
// directory locations, and user profiles.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgcrypto "github.com/fnb-collective/directory/internal/crypto"
	"github.com/fnb-collective/directory/internal/errs"
	"github.com/fnb-collective/directory/internal/limiter"
	"github.com/fnb-collective/directory/internal/model"
	"github.com/fnb-collective/directory/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. The refresh TTL of 8440 minutes (~5.9 days) matches the
// deployed contract; changing it only affects newly signed tokens.
const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 8440 * time.Minute
)

// AuthService issues, verifies, rotates, and revokes token pairs.
type AuthService interface {
	// SignUp provisions a credential and profile row and signs a first pair.
	SignUp(ctx context.Context, email, username, password string) (model.Tokens, error)
	// SignIn authenticates credentials (rate limited per email+ip) and signs a pair.
	SignIn(ctx context.Context, email, password, ip string) (model.Tokens, error)
	// Verify resolves an identity from a token pair. A non-nil rotated pair is
	// returned when an expired access token was silently refreshed; the caller
	// must propagate it back to the client.
	Verify(ctx context.Context, accessToken, refreshToken string) (model.Identity, *model.Tokens, error)
	// InvalidateSessions revokes every outstanding refresh token for the user.
	InvalidateSessions(ctx context.Context, id uuid.UUID) error
}

// AuthServiceImpl implements AuthService over the credential store.
type AuthServiceImpl struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	lim        limiter.Limiter
	signKey    []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	lim limiter.Limiter,
	signKey []byte,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:      users,
		profiles:   profiles,
		lim:        lim,
		signKey:    signKey,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the time source (tests).
func (s *AuthServiceImpl) WithClock(now func() time.Time) *AuthServiceImpl {
	s.now = now
	return s
}

// accessClaims is the access-token payload. Claim names are part of the wire
// contract with existing clients.
type accessClaims struct {
	Key             string `json:"key"`
	PermissionLevel string `json:"permissionLevel"`
	jwt.RegisteredClaims
}

// refreshClaims additionally snapshots the user's session counter.
type refreshClaims struct {
	Key             string `json:"key"`
	PermissionLevel string `json:"permissionLevel"`
	Count           int64  `json:"count"`
	jwt.RegisteredClaims
}

// SignUp provisions credential and profile rows and returns a signed pair.
// The credential row goes first: the profile id is a foreign key into users,
// so the reverse order cannot satisfy the schema. The two writes are not
// transactional; a failure between them can leave a credential without a
// profile, and the caller then receives an error, never tokens.
func (s *AuthServiceImpl) SignUp(ctx context.Context, email, username, password string) (model.Tokens, error) {
	if email == "" || username == "" || password == "" {
		return model.Tokens{}, fmt.Errorf("%w: empty email/username/password", errs.ErrValidation)
	}

	// Friendlier than waiting for the unique index, which still backstops
	// the concurrent case.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return model.Tokens{}, errs.ErrAlreadyExists
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, err
	}

	hash, err := pkgcrypto.HashPassword([]byte(password))
	if err != nil {
		return model.Tokens{}, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.Tokens{}, err
	}

	u := &model.User{
		ID:              uid,
		Email:           email,
		PwdHash:         hash,
		SessionCount:    0,
		PermissionLevel: model.PermissionUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.Tokens{}, err
	}

	if err := s.profiles.Create(ctx, &model.UserProfile{
		ID:        uid,
		Username:  username,
		Locations: []string{},
	}); err != nil {
		return model.Tokens{}, err
	}

	return s.signPair(uid.String(), u.PermissionLevel, 0)
}

// SignIn authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, ip string) (model.Tokens, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, errs.ErrRateLimited
		}
		// Uniform outcome: unknown email, wrong password, and lookup errors
		// are indistinguishable to the caller.
		return model.Tokens{}, errs.ErrUnauthenticated
	}

	_ = s.lim.Success(ctx, email, ipHash)

	return s.signPair(u.ID.String(), u.PermissionLevel, u.SessionCount)
}

// Verify resolves an identity from the pair. States:
//   - valid access token            -> identity, no rotation
//   - expired access, valid refresh
//     with a matching counter       -> identity plus a freshly signed pair
//   - anything else                 -> errs.ErrUnauthenticated
//
// Every unexpected error collapses into ErrUnauthenticated; verification
// never fails open.
func (s *AuthServiceImpl) Verify(ctx context.Context, accessToken, refreshToken string) (model.Identity, *model.Tokens, error) {
	var ac accessClaims
	_, err := jwt.ParseWithClaims(accessToken, &ac, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err == nil {
		ident, idErr := identityFromClaims(ac.Key, ac.PermissionLevel)
		if idErr != nil {
			return model.Identity{}, nil, errs.ErrUnauthenticated
		}
		return ident, nil, nil
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return model.Identity{}, nil, errs.ErrUnauthenticated
	}

	// Access token expired with a valid signature: try the refresh path.
	var rc refreshClaims
	if _, err := jwt.ParseWithClaims(refreshToken, &rc, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	); err != nil {
		return model.Identity{}, nil, errs.ErrUnauthenticated
	}

	ident, err := identityFromClaims(rc.Key, rc.PermissionLevel)
	if err != nil {
		return model.Identity{}, nil, errs.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, ident.UserID)
	if err != nil {
		return model.Identity{}, nil, errs.ErrUnauthenticated
	}
	if u.SessionCount != rc.Count {
		// Revoked: the counter moved since this refresh token was signed.
		return model.Identity{}, nil, errs.ErrUnauthenticated
	}

	rotated, err := s.signPair(rc.Key, ident.PermissionLevel, rc.Count)
	if err != nil {
		return model.Identity{}, nil, errs.ErrUnauthenticated
	}
	return ident, &rotated, nil
}

// InvalidateSessions bumps the user's session counter; every outstanding
// refresh token fails its counter comparison on next use.
func (s *AuthServiceImpl) InvalidateSessions(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.BumpSessionCount(ctx, id); err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	return nil
}

// SignAccessToken creates a signed HS256 access token for the subject.
func (s *AuthServiceImpl) SignAccessToken(id string, level model.PermissionLevel) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := accessClaims{
		Key:             id,
		PermissionLevel: string(level),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	return signed, exp, err
}

// SignRefreshToken creates a signed HS256 refresh token snapshotting count.
func (s *AuthServiceImpl) SignRefreshToken(id string, level model.PermissionLevel, count int64) (string, error) {
	now := s.now()
	claims := refreshClaims{
		Key:             id,
		PermissionLevel: string(level),
		Count:           count,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
}

func (s *AuthServiceImpl) signPair(id string, level model.PermissionLevel, count int64) (model.Tokens, error) {
	access, exp, err := s.SignAccessToken(id, level)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, err := s.SignRefreshToken(id, level, count)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (s *AuthServiceImpl) keyFunc(t *jwt.Token) (any, error) {
	return s.signKey, nil
}

func identityFromClaims(key, level string) (model.Identity, error) {
	uid, err := uuid.FromString(key)
	if err != nil {
		return model.Identity{}, err
	}
	pl := model.PermissionLevel(level)
	if !pl.Valid() {
		return model.Identity{}, fmt.Errorf("unknown permission level %q", level)
	}
	return model.Identity{UserID: uid, PermissionLevel: pl}, nil
}
