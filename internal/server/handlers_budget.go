package server

import (
	"net/http"

	mw "github.com/wghub/wg-backend/internal/middleware"
	"github.com/wghub/wg-backend/internal/service"
)

func (s *Server) createBudgetPlanHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}

	var req service.CreateBudgetPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := s.budgetService.Create(r.Context(), userID, wgID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

func (s *Server) getBudgetPlanHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	planID, ok := parseIDParam(w, r, "planID")
	if !ok {
		return
	}
	plan, err := s.budgetService.Get(r.Context(), userID, planID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, plan)
}

func (s *Server) updateBudgetPlanHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	planID, ok := parseIDParam(w, r, "planID")
	if !ok {
		return
	}

	var req service.UpdateBudgetPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := s.budgetService.Update(r.Context(), userID, planID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, plan)
}

func (s *Server) deleteBudgetPlanHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	planID, ok := parseIDParam(w, r, "planID")
	if !ok {
		return
	}
	if err := s.budgetService.Delete(r.Context(), userID, planID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addCostHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	planID, ok := parseIDParam(w, r, "planID")
	if !ok {
		return
	}

	var req service.AddCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := s.budgetService.AddCost(r.Context(), userID, planID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

func (s *Server) updateCostHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	costID, ok := parseIDParam(w, r, "costID")
	if !ok {
		return
	}

	var req service.UpdateCostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cost, err := s.budgetService.UpdateCost(r.Context(), userID, costID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cost)
}

func (s *Server) deleteCostHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	costID, ok := parseIDParam(w, r, "costID")
	if !ok {
		return
	}
	if err := s.budgetService.DeleteCost(r.Context(), userID, costID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
