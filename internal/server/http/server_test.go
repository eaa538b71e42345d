package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fnb-collective/directory/internal/errs"
	"github.com/fnb-collective/directory/internal/model"
	"github.com/fnb-collective/directory/internal/service"
)

// In-memory stores so requests run through the real services, token
// verification included.

type memUsers struct {
	mu sync.Mutex
	m  map[string]*model.User
}

func (s *memUsers) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[u.Email]; ok {
		return errs.ErrAlreadyExists
	}
	c := *u
	s.m[u.Email] = &c
	return nil
}

func (s *memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.m {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.m[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *memUsers) BumpSessionCount(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.m {
		if u.ID == id {
			u.SessionCount = (u.SessionCount + 1) % 2147483647
			return u.SessionCount, nil
		}
	}
	return 0, errs.ErrNotFound
}

type memProfiles struct {
	mu sync.Mutex
	m  map[uuid.UUID]*model.UserProfile
}

func (s *memProfiles) Create(_ context.Context, p *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.m {
		if other.Username == p.Username {
			return errs.ErrAlreadyExists
		}
	}
	c := *p
	s.m[p.ID] = &c
	return nil
}

func (s *memProfiles) Get(_ context.Context, id uuid.UUID) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *memProfiles) List(context.Context) ([]model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.UserProfile{}
	for _, p := range s.m {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memProfiles) Update(_ context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	if patch.Contact != nil {
		p.Contact = *patch.Contact
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Picture != nil {
		p.Picture = *patch.Picture
	}
	if patch.Locations != nil {
		p.Locations = append([]string(nil), (*patch.Locations)...)
	}
	c := *p
	return &c, nil
}

func (s *memProfiles) Delete(_ context.Context, id uuid.UUID) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	delete(s.m, id)
	return p, nil
}

func (s *memProfiles) AppendLocation(_ context.Context, id uuid.UUID, locationID string) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	p.Locations = append(p.Locations, locationID)
	c := *p
	return &c, nil
}

type memLocations struct {
	mu sync.Mutex
	m  map[string]*model.Location
}

func (s *memLocations) Create(_ context.Context, loc *model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *loc
	s.m[loc.ID] = &c
	return nil
}

func (s *memLocations) Get(_ context.Context, id string) (*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *loc
	return &c, nil
}

func (s *memLocations) List(context.Context) ([]model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Location{}
	for _, loc := range s.m {
		out = append(out, *loc)
	}
	return out, nil
}

func (s *memLocations) Update(_ context.Context, id string, patch model.LocationPatch, requesterID string) (*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if loc.Owner != requesterID {
		return nil, errs.ErrUnauthorized
	}
	if patch.Name != nil {
		loc.Name = *patch.Name
	}
	if patch.Description != nil {
		loc.Description = *patch.Description
	}
	if patch.Type != nil {
		loc.Type = *patch.Type
	}
	c := *loc
	return &c, nil
}

func (s *memLocations) Delete(_ context.Context, id, requesterID string) (*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if loc.Owner != requesterID {
		return nil, errs.ErrUnauthorized
	}
	delete(s.m, id)
	return loc, nil
}

type noLimiter struct{}

func (noLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, 0, nil
}
func (noLimiter) Success(context.Context, string, []byte) error { return nil }
func (noLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}

type testEnv struct {
	handler http.Handler
	auth    *service.AuthServiceImpl
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{now: time.Now()}

	users := &memUsers{m: map[string]*model.User{}}
	profiles := &memProfiles{m: map[uuid.UUID]*model.UserProfile{}}
	locations := &memLocations{m: map[string]*model.Location{}}

	env.auth = service.NewAuthService(users, profiles, noLimiter{}, []byte("test-key")).
		WithClock(func() time.Time { return env.now })

	srv := New(
		env.auth,
		service.NewLocationService(locations, profiles, zap.NewNop()),
		service.NewProfileService(profiles),
		zap.NewNop(),
		":0",
		[]string{"*"},
	)
	env.handler = srv.Router()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, access, refresh string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:55555"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set(headerAccessToken, access)
	}
	if refresh != "" {
		req.Header.Set(headerRefreshToken, refresh)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signUp(t *testing.T, email, username string) (access, refresh string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/signup",
		map[string]string{"email": email, "username": username, "password": "pw123"}, "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d, body %s", email, w.Code, w.Body)
	}
	access = w.Header().Get(headerAccessToken)
	refresh = w.Header().Get(headerRefreshToken)
	if access == "" || refresh == "" {
		t.Fatalf("signup %s: empty token headers", email)
	}
	return access, refresh
}

func decodeLocations(t *testing.T, w *httptest.ResponseRecorder) []model.Location {
	t.Helper()
	var env struct {
		Message string           `json:"message"`
		Payload []model.Location `json:"payload"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body)
	}
	return env.Payload
}

func TestAPI_OwnershipScenario(t *testing.T) {
	env := newTestEnv(t)

	aliceAccess, _ := env.signUp(t, "alice@x.com", "alice")
	bobAccess, _ := env.signUp(t, "bob@x.com", "bob")

	// Alice creates an entry.
	w := env.do(t, http.MethodPost, "/api/locations", map[string]any{
		"name":      "Corner Fridge",
		"type":      "FREE_FOOD_STAND",
		"latitude":  45.52,
		"longitude": -122.68,
	}, aliceAccess, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body)
	}
	created := decodeLocations(t, w)
	if len(created) != 1 || created[0].ID == "" {
		t.Fatalf("create payload: %s", w.Body)
	}
	locID := created[0].ID

	// Bob cannot delete it; the answer is indistinguishable from a
	// nonexistent id.
	w = env.do(t, http.MethodDelete, "/api/locations/"+locID, nil, bobAccess, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: status %d, want 404", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/api/locations/ghost", nil, bobAccess, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing delete: status %d, want 404", w.Code)
	}

	// The entry survived the rejected delete and is publicly readable.
	w = env.do(t, http.MethodGet, "/api/locations/"+locID, nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get after rejected delete: status %d", w.Code)
	}

	// Bob cannot rename it either.
	w = env.do(t, http.MethodPatch, "/api/locations/"+locID,
		map[string]string{"name": "Bob's Fridge"}, bobAccess, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign update: status %d, want 404", w.Code)
	}

	// The owner can.
	w = env.do(t, http.MethodPatch, "/api/locations/"+locID,
		map[string]string{"name": "Community Fridge"}, aliceAccess, "")
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: status %d, body %s", w.Code, w.Body)
	}
	if got := decodeLocations(t, w); got[0].Name != "Community Fridge" {
		t.Fatalf("name after update: %q", got[0].Name)
	}

	// And the owner can delete it.
	w = env.do(t, http.MethodDelete, "/api/locations/"+locID, nil, aliceAccess, "")
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: status %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/locations/"+locID, nil, "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", w.Code)
	}
}

func TestAPI_AnonymousAccess(t *testing.T) {
	env := newTestEnv(t)

	// Reads are public.
	w := env.do(t, http.MethodGet, "/api/locations", nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous list: status %d", w.Code)
	}
	// An unresolvable pair clears the token headers.
	if got := w.Header().Get(headerAccessToken); got != "" {
		t.Fatalf("access header = %q, want empty", got)
	}

	// Writes need an identity.
	w = env.do(t, http.MethodPost, "/api/locations",
		map[string]string{"name": "x", "type": "GARDEN"}, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: status %d, want 401", w.Code)
	}
}

func TestAPI_ExpiredAccessRotatesPair(t *testing.T) {
	env := newTestEnv(t)
	access, refresh := env.signUp(t, "alice@x.com", "alice")

	// Past the access TTL, the middleware refreshes silently and the
	// request still succeeds.
	env.now = env.now.Add(10 * time.Minute)
	w := env.do(t, http.MethodPost, "/api/locations", map[string]string{
		"name": "Garden", "type": "GARDEN",
	}, access, refresh)
	if w.Code != http.StatusCreated {
		t.Fatalf("request with expired access: status %d, body %s", w.Code, w.Body)
	}

	newAccess := w.Header().Get(headerAccessToken)
	newRefresh := w.Header().Get(headerRefreshToken)
	if newAccess == "" || newAccess == access {
		t.Fatalf("access header not rotated")
	}
	if newRefresh == "" || newRefresh == refresh {
		t.Fatalf("refresh header not rotated")
	}

	// A fresh pair is echoed back unchanged.
	w = env.do(t, http.MethodGet, "/api/locations", nil, newAccess, newRefresh)
	if w.Code != http.StatusOK {
		t.Fatalf("request with rotated pair: status %d", w.Code)
	}
	if got := w.Header().Get(headerAccessToken); got != newAccess {
		t.Fatalf("fresh access token was not echoed")
	}
}

func TestAPI_SignOutEverywhere(t *testing.T) {
	env := newTestEnv(t)
	access, refresh := env.signUp(t, "alice@x.com", "alice")

	w := env.do(t, http.MethodPost, "/api/auth/signout-everywhere", nil, access, "")
	if w.Code != http.StatusOK {
		t.Fatalf("signout-everywhere: status %d, body %s", w.Code, w.Body)
	}
	if got := w.Header().Get(headerRefreshToken); got != "" {
		t.Fatalf("refresh header = %q after sign-out, want empty", got)
	}

	// The still-unexpired access token keeps working until it expires.
	w = env.do(t, http.MethodGet, "/api/locations", nil, access, refresh)
	if w.Code != http.StatusOK {
		t.Fatalf("list with live access token: status %d", w.Code)
	}

	// Once it expires, the revoked refresh token cannot rotate.
	env.now = env.now.Add(10 * time.Minute)
	w = env.do(t, http.MethodPost, "/api/locations", map[string]string{
		"name": "x", "type": "GARDEN",
	}, access, refresh)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("write after revocation: status %d, want 401", w.Code)
	}
	if got := w.Header().Get(headerAccessToken); got != "" {
		t.Fatalf("access header = %q after revocation, want empty", got)
	}
}

func TestAPI_SignIn(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "alice@x.com", "alice")

	w := env.do(t, http.MethodPost, "/api/auth/signin",
		map[string]string{"email": "alice@x.com", "password": "pw123"}, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("signin: status %d, body %s", w.Code, w.Body)
	}
	if w.Header().Get(headerAccessToken) == "" {
		t.Fatalf("signin: no access token header")
	}

	w = env.do(t, http.MethodPost, "/api/auth/signin",
		map[string]string{"email": "alice@x.com", "password": "wrong"}, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d, want 401", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/auth/signin",
		map[string]string{"email": "ghost@x.com", "password": "pw123"}, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: status %d, want 401", w.Code)
	}

	// Duplicate sign-up conflicts.
	w = env.do(t, http.MethodPost, "/api/auth/signup",
		map[string]string{"email": "alice@x.com", "username": "alice2", "password": "pw123"}, "", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: status %d, want 409", w.Code)
	}
}

func TestAPI_ProfileSelfService(t *testing.T) {
	env := newTestEnv(t)
	aliceAccess, _ := env.signUp(t, "alice@x.com", "alice")
	bobAccess, _ := env.signUp(t, "bob@x.com", "bob")

	// Find alice's id through the public listing.
	w := env.do(t, http.MethodGet, "/api/users", nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list users: status %d", w.Code)
	}
	var listEnv struct {
		Payload []model.UserProfile `json:"payload"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listEnv); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	var aliceID string
	for _, p := range listEnv.Payload {
		if p.Username == "alice" {
			aliceID = p.ID.String()
		}
	}
	if aliceID == "" {
		t.Fatalf("alice not listed: %s", w.Body)
	}

	// Bob cannot edit alice's profile; the answer hides existence.
	w = env.do(t, http.MethodPatch, "/api/users/"+aliceID,
		map[string]string{"contact": "@bob"}, bobAccess, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-user update: status %d, want 404", w.Code)
	}

	// Alice can.
	w = env.do(t, http.MethodPatch, "/api/users/"+aliceID,
		map[string]string{"contact": "@alice"}, aliceAccess, "")
	if w.Code != http.StatusOK {
		t.Fatalf("self update: status %d, body %s", w.Code, w.Body)
	}

	// Malformed path id is a 400, not a lookup.
	w = env.do(t, http.MethodGet, "/api/users/not-a-uuid", nil, "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid: status %d, want 400", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", nil, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", w.Code)
	}
}
