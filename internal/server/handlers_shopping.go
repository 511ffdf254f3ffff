package server

import (
	"net/http"

	mw "github.com/wghub/wg-backend/internal/middleware"
	"github.com/wghub/wg-backend/internal/service"
)

func (s *Server) createShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}

	var req service.CreateShoppingListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.shoppingService.Create(r.Context(), userID, wgID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, list)
}

func (s *Server) getShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}
	list, err := s.shoppingService.Get(r.Context(), userID, listID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) updateShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}

	var req service.UpdateShoppingListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.shoppingService.Update(r.Context(), userID, listID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) deleteShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}
	if err := s.shoppingService.Delete(r.Context(), userID, listID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addItemHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}

	var req service.AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.shoppingService.AddItem(r.Context(), userID, listID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, list)
}

func (s *Server) updateItemHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	itemID, ok := parseIDParam(w, r, "itemID")
	if !ok {
		return
	}

	var req service.UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := s.shoppingService.UpdateItem(r.Context(), userID, itemID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	itemID, ok := parseIDParam(w, r, "itemID")
	if !ok {
		return
	}
	if err := s.shoppingService.DeleteItem(r.Context(), userID, itemID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleItemHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	itemID, ok := parseIDParam(w, r, "itemID")
	if !ok {
		return
	}
	item, err := s.shoppingService.ToggleItem(r.Context(), userID, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}
