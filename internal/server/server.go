package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/wghub/wg-backend/internal/auth"
	"github.com/wghub/wg-backend/internal/database"
	"github.com/wghub/wg-backend/internal/service"
)

type Server struct {
	port int

	authService     service.AuthService
	userService     service.UserService
	groupService    service.GroupService
	taskListService service.TaskListService
	shoppingService service.ShoppingService
	budgetService   service.BudgetService

	jwt *auth.JWTManager
	db  database.Service
}

// Services bundles the application services the HTTP layer exposes.
type Services struct {
	Auth     service.AuthService
	User     service.UserService
	Group    service.GroupService
	TaskList service.TaskListService
	Shopping service.ShoppingService
	Budget   service.BudgetService
}

func NewServer(svcs Services, jwtManager *auth.JWTManager, dbService database.Service) *http.Server {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		fmt.Printf("Warning: Invalid PORT environment variable '%s'. Using default 8080. Error: %v", portStr, err)
		port = 8080
	}

	appServer := &Server{
		port:            port,
		authService:     svcs.Auth,
		userService:     svcs.User,
		groupService:    svcs.Group,
		taskListService: svcs.TaskList,
		shoppingService: svcs.Shopping,
		budgetService:   svcs.Budget,
		jwt:             jwtManager,
		db:              dbService,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
