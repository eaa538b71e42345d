package httpserver

import (
	"net/http"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSignUp provisions a new account and returns a first token pair.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, authEnvelope{Message: "Bad Request"})
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, authEnvelope{Message: "Bad Request"})
		return
	}

	tokens, err := s.auth.SignUp(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		emitTokens(w, "", "")
		respondError(w, err)
		return
	}

	emitTokens(w, tokens.AccessToken, tokens.RefreshToken)
	writeJSON(w, http.StatusCreated, authEnvelope{
		Message:      "Successfully signed up",
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// handleSignIn authenticates credentials and returns a token pair. All
// credential failures share one message.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, authEnvelope{Message: "Bad Request"})
		return
	}

	tokens, err := s.auth.SignIn(r.Context(), req.Email, req.Password, remoteIP(r))
	if err != nil {
		emitTokens(w, "", "")
		respondError(w, err)
		return
	}

	emitTokens(w, tokens.AccessToken, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, authEnvelope{
		Message:      "Successfully signed in",
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// handleSignOutEverywhere revokes all outstanding refresh tokens for the
// calling identity by bumping its revocation counter.
func (s *Server) handleSignOutEverywhere(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, authEnvelope{Message: "Not Authorized"})
		return
	}
	if err := s.auth.InvalidateSessions(r.Context(), ident.UserID); err != nil {
		respondError(w, err)
		return
	}
	// The pair used for this request is now on its last legs; clear it.
	emitTokens(w, "", "")
	writeJSON(w, http.StatusOK, authEnvelope{Message: "Signed out everywhere"})
}
