package httpserver

import (
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/fnb-collective/directory/internal/model"
)

type attachLocationRequest struct {
	LocationID string `json:"locationId"`
}

// handleListProfiles returns every public profile.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully retrieved users", profiles)
}

// handleGetProfile returns one profile by id.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		respond[model.UserProfile](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}
	p, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully retrieved user", []model.UserProfile{*p})
}

// handleUpdateProfile applies a partial self-service update.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		respond[model.UserProfile](w, http.StatusUnauthorized, "Not Authorized", nil)
		return
	}
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		respond[model.UserProfile](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}
	var patch model.ProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		respond[model.UserProfile](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}

	p, err := s.profiles.Update(r.Context(), ident, id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully updated user", []model.UserProfile{*p})
}

// handleDeleteProfile removes the caller's own profile.
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		respond[model.UserProfile](w, http.StatusUnauthorized, "Not Authorized", nil)
		return
	}
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		respond[model.UserProfile](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}
	p, err := s.profiles.Delete(r.Context(), ident, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully deleted user", []model.UserProfile{*p})
}

// handleAttachLocation appends a location id to the caller's own profile.
func (s *Server) handleAttachLocation(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		respond[model.UserProfile](w, http.StatusUnauthorized, "Not Authorized", nil)
		return
	}
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		respond[model.UserProfile](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}
	var req attachLocationRequest
	if err := decodeJSON(r, &req); err != nil || req.LocationID == "" {
		respond[model.UserProfile](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}

	p, err := s.profiles.AttachLocation(r.Context(), ident, id, req.LocationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully added location to user", []model.UserProfile{*p})
}
