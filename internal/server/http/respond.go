package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fnb-collective/directory/internal/errs"
)

// envelope is the response shape shared by all endpoints: a human-readable
// message plus a payload list.
type envelope[T any] struct {
	Message string `json:"message"`
	Payload []T    `json:"payload"`
}

// authEnvelope reports sign-in/sign-up outcomes. Tokens also travel in the
// response headers; the body duplicates them for non-browser clients.
type authEnvelope struct {
	Message      string `json:"message"`
	AccessToken  string `json:"AccessToken,omitempty"`
	RefreshToken string `json:"RefreshToken,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond[T any](w http.ResponseWriter, status int, message string, payload []T) {
	if payload == nil {
		payload = []T{}
	}
	writeJSON(w, status, envelope[T]{Message: message, Payload: payload})
}

// respondError maps the error taxonomy onto HTTP statuses. Ownership
// rejections and missing entities share one 404 answer so a caller cannot
// probe for existence; the service layer still distinguishes them.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		respond[struct{}](w, http.StatusUnauthorized, "Not Authorized", nil)
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrNotFound):
		respond[struct{}](w, http.StatusNotFound, "Not Found", nil)
	case errors.Is(err, errs.ErrAlreadyExists):
		respond[struct{}](w, http.StatusConflict, "Already Exists", nil)
	case errors.Is(err, errs.ErrRateLimited):
		respond[struct{}](w, http.StatusTooManyRequests, "Too Many Attempts", nil)
	case errors.Is(err, errs.ErrValidation):
		respond[struct{}](w, http.StatusBadRequest, "Bad Request", nil)
	default:
		respond[struct{}](w, http.StatusInternalServerError, "Internal Error", nil)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
