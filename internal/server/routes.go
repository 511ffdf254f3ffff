package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	mw "github.com/wghub/wg-backend/internal/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.helloHandler)
	r.Get("/health", s.healthHandler)

	r.Post("/auth/register", s.registerHandler)
	r.Post("/auth/login", s.loginHandler)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(s.jwt))

		r.Post("/auth/logout", s.logoutHandler)

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", s.getProfileHandler)
			r.Put("/", s.updateProfileHandler)
			r.Delete("/", s.deleteProfileHandler)
		})

		r.Route("/wgs", func(r chi.Router) {
			r.Post("/", s.createWGHandler)
			r.Get("/", s.listWGsHandler)
			r.Route("/{wgID}", func(r chi.Router) {
				r.Get("/", s.getWGHandler)
				r.Put("/", s.updateWGHandler)
				r.Delete("/", s.deleteWGHandler)
				r.Post("/join", s.joinWGHandler)
				r.Post("/leave", s.leaveWGHandler)
				r.Post("/invite", s.inviteHandler)
				r.Delete("/users/{userID}", s.kickHandler)
				r.Post("/admins/{userID}", s.toggleAdminHandler)
				r.Post("/transfer", s.transferCreatorHandler)
				r.Post("/tasklists", s.createTaskListHandler)
				r.Post("/shoppinglists", s.createShoppingListHandler)
				r.Post("/budgetplans", s.createBudgetPlanHandler)
			})
		})

		r.Route("/tasklists/{listID}", func(r chi.Router) {
			r.Get("/", s.getTaskListHandler)
			r.Put("/", s.updateTaskListHandler)
			r.Delete("/", s.deleteTaskListHandler)
			r.Post("/tasks", s.addTaskHandler)
			r.Post("/users", s.assignTaskListUsersHandler)
			r.Delete("/users", s.removeTaskListUsersHandler)
			r.Post("/check", s.checkTaskListHandler)
		})
		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Put("/", s.updateTaskHandler)
			r.Delete("/", s.deleteTaskHandler)
			r.Post("/toggle", s.toggleTaskHandler)
		})

		r.Route("/shoppinglists/{listID}", func(r chi.Router) {
			r.Get("/", s.getShoppingListHandler)
			r.Put("/", s.updateShoppingListHandler)
			r.Delete("/", s.deleteShoppingListHandler)
			r.Post("/items", s.addItemHandler)
		})
		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Put("/", s.updateItemHandler)
			r.Delete("/", s.deleteItemHandler)
			r.Post("/toggle", s.toggleItemHandler)
		})

		r.Route("/budgetplans/{planID}", func(r chi.Router) {
			r.Get("/", s.getBudgetPlanHandler)
			r.Put("/", s.updateBudgetPlanHandler)
			r.Delete("/", s.deleteBudgetPlanHandler)
			r.Post("/costs", s.addCostHandler)
		})
		r.Route("/costs/{costID}", func(r chi.Router) {
			r.Put("/", s.updateCostHandler)
			r.Delete("/", s.deleteCostHandler)
		})
	})

	return r
}

func (s *Server) helloHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "WG backend up and running"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
