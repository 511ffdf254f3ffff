package server

import (
	"net/http"

	mw "github.com/wghub/wg-backend/internal/middleware"
	"github.com/wghub/wg-backend/internal/service"
)

func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	user, err := s.userService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req service.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.userService.Update(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	if err := s.userService.Delete(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) joinWGHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}
	if err := s.userService.JoinWG(r.Context(), userID, wgID); err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "joined WG"})
}

func (s *Server) leaveWGHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}
	if err := s.userService.LeaveWG(r.Context(), userID, wgID); err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "left WG"})
}
