package server

import (
	"errors"
	"net/http"

	"github.com/wghub/wg-backend/internal/auth"
	"github.com/wghub/wg-backend/internal/service"
)

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.authService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, token)
}

// logoutHandler acknowledges the logout. Tokens are stateless, the
// client discards its copy.
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
