package server

import (
	"net/http"

	mw "github.com/wghub/wg-backend/internal/middleware"
	"github.com/wghub/wg-backend/internal/service"
)

func (s *Server) createWGHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req service.CreateGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wg, err := s.groupService.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, wg)
}

func (s *Server) listWGsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgs, err := s.groupService.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, wgs)
}

func (s *Server) getWGHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}
	wg, err := s.groupService.Get(r.Context(), userID, wgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, wg)
}

func (s *Server) updateWGHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}

	var req service.UpdateGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wg, err := s.groupService.Update(r.Context(), userID, wgID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, wg)
}

func (s *Server) deleteWGHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}
	if err := s.groupService.Delete(r.Context(), userID, wgID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type usernameRequest struct {
	Username string `json:"username"`
}

func (s *Server) inviteHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}

	var req usernameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.groupService.Invite(r.Context(), userID, wgID, req.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "user invited"})
}

func (s *Server) kickHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}
	if err := s.groupService.Kick(r.Context(), userID, wgID, targetID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleAdminHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}
	isAdmin, err := s.groupService.ToggleAdmin(r.Context(), userID, wgID, targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"is_admin": isAdmin})
}

func (s *Server) transferCreatorHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}

	var req usernameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.groupService.TransferCreator(r.Context(), userID, wgID, req.Username); err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "creator status transferred"})
}
