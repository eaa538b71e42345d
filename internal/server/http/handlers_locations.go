package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fnb-collective/directory/internal/model"
)

type createLocationRequest struct {
	Name             string             `json:"name"`
	FriendlyLocation string             `json:"friendlyLocation"`
	Description      string             `json:"description"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	Picture          string             `json:"picture"`
	Type             model.LocationType `json:"type"`
}

// handleListLocations returns every directory entry.
func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := s.locations.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	msg := "Successfully retrieved locations"
	if len(locs) == 0 {
		msg = "Could not fetch locations"
	}
	respond(w, http.StatusOK, msg, locs)
}

// handleGetLocation returns one entry by id.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.locations.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully retrieved location", []model.Location{*loc})
}

// handleCreateLocation creates an entry owned by the calling identity.
func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		respond[model.Location](w, http.StatusUnauthorized, "Not Authorized", nil)
		return
	}
	var req createLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respond[model.Location](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}

	loc, err := s.locations.Create(r.Context(), ident, model.Location{
		Name:             req.Name,
		FriendlyLocation: req.FriendlyLocation,
		Description:      req.Description,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Picture:          req.Picture,
		Type:             req.Type,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "Successfully added location", []model.Location{*loc})
}

// handleUpdateLocation applies a partial update; the store rejects writes by
// anyone but the owner.
func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		respond[model.Location](w, http.StatusUnauthorized, "Not Authorized", nil)
		return
	}
	var patch model.LocationPatch
	if err := decodeJSON(r, &patch); err != nil {
		respond[model.Location](w, http.StatusBadRequest, "Bad Request", nil)
		return
	}

	loc, err := s.locations.Update(r.Context(), ident, mux.Vars(r)["id"], patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully updated location", []model.Location{*loc})
}

// handleDeleteLocation removes an entry owned by the calling identity.
func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		respond[model.Location](w, http.StatusUnauthorized, "Not Authorized", nil)
		return
	}
	loc, err := s.locations.Delete(r.Context(), ident, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Successfully deleted location", []model.Location{*loc})
}
