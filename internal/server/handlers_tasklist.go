package server

import (
	"net/http"

	mw "github.com/wghub/wg-backend/internal/middleware"
	"github.com/wghub/wg-backend/internal/service"
)

func (s *Server) createTaskListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	wgID, ok := parseIDParam(w, r, "wgID")
	if !ok {
		return
	}

	var req service.CreateTaskListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.taskListService.Create(r.Context(), userID, wgID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, list)
}

func (s *Server) getTaskListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}
	list, err := s.taskListService.Get(r.Context(), userID, listID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) updateTaskListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}

	var req service.UpdateTaskListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.taskListService.Update(r.Context(), userID, listID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) deleteTaskListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}
	if err := s.taskListService.Delete(r.Context(), userID, listID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}

	var req service.AddTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.taskListService.AddTask(r.Context(), userID, listID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, list)
}

func (s *Server) assignTaskListUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}

	var req service.AssignUsersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.taskListService.AssignUsers(r.Context(), userID, listID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) removeTaskListUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}

	var req service.AssignUsersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := s.taskListService.RemoveUsers(r.Context(), userID, listID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) checkTaskListHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	listID, ok := parseIDParam(w, r, "listID")
	if !ok {
		return
	}
	list, err := s.taskListService.CheckAll(r.Context(), userID, listID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	taskID, ok := parseIDParam(w, r, "taskID")
	if !ok {
		return
	}

	var req service.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := s.taskListService.UpdateTask(r.Context(), userID, taskID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	taskID, ok := parseIDParam(w, r, "taskID")
	if !ok {
		return
	}
	if err := s.taskListService.DeleteTask(r.Context(), userID, taskID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	taskID, ok := parseIDParam(w, r, "taskID")
	if !ok {
		return
	}
	task, err := s.taskListService.ToggleTask(r.Context(), userID, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}
