package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/wghub/wg-backend/internal/auth"
	"github.com/wghub/wg-backend/internal/database"
	"github.com/wghub/wg-backend/internal/domain"
	"github.com/wghub/wg-backend/internal/repository"
	"github.com/wghub/wg-backend/internal/server"
	"github.com/wghub/wg-backend/internal/service"
	"github.com/wghub/wg-backend/pkg/logging"
)

const defaultTokenTTL = 24 * time.Hour

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	slog.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	if dbService != nil {
		if err := dbService.Close(); err != nil {
			slog.Error("failed to close database connection pool", "error", err)
		}
	}

	slog.Info("server exiting")
	done <- true
}

func tokenTTL() time.Duration {
	raw := os.Getenv("TOKEN_TTL")
	if raw == "" {
		return defaultTokenTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		slog.Warn("invalid TOKEN_TTL, using default", "value", raw)
		return defaultTokenTTL
	}
	return ttl
}

func main() {
	logging.Setup()

	dbService, err := database.New()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	gormDB := dbService.GetDB()

	if err := gormDB.AutoMigrate(domain.Models()...); err != nil {
		slog.Error("failed to auto-migrate database", "error", err)
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	jwtManager := auth.NewJWTManager(secret, tokenTTL())

	userRepo := repository.NewGormUserRepository(gormDB)
	groupRepo := repository.NewGormGroupRepository(gormDB)
	taskListRepo := repository.NewGormTaskListRepository(gormDB)
	shoppingRepo := repository.NewGormShoppingRepository(gormDB)
	budgetRepo := repository.NewGormBudgetRepository(gormDB)

	svcs := server.Services{
		Auth:     service.NewAuthService(userRepo, jwtManager),
		User:     service.NewUserService(userRepo, groupRepo, jwtManager),
		Group:    service.NewGroupService(groupRepo, userRepo),
		TaskList: service.NewTaskListService(taskListRepo, groupRepo, userRepo),
		Shopping: service.NewShoppingService(shoppingRepo, groupRepo, userRepo),
		Budget:   service.NewBudgetService(budgetRepo, groupRepo, userRepo),
	}

	apiServer := server.NewServer(svcs, jwtManager, dbService)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, done)

	slog.Info("starting server", "addr", apiServer.Addr)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("graceful shutdown complete")
}
