package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wghub/wg-backend/internal/auth"
	"github.com/wghub/wg-backend/internal/domain"
	"github.com/wghub/wg-backend/internal/repository"
)

// testEnv wires the full service stack over a throwaway SQLite
// database so the propagation and permission logic runs against real
// SQL.
type testEnv struct {
	db *gorm.DB

	auth     AuthService
	users    UserService
	groups   GroupService
	lists    TaskListService
	shopping ShoppingService
	budget   BudgetService

	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wg_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	userRepo := repository.NewGormUserRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	taskListRepo := repository.NewGormTaskListRepository(db)
	shoppingRepo := repository.NewGormShoppingRepository(db)
	budgetRepo := repository.NewGormBudgetRepository(db)

	return &testEnv{
		db:        db,
		auth:      NewAuthService(userRepo, jwtManager),
		users:     NewUserService(userRepo, groupRepo, jwtManager),
		groups:    NewGroupService(groupRepo, userRepo),
		lists:     NewTaskListService(taskListRepo, groupRepo, userRepo),
		shopping:  NewShoppingService(shoppingRepo, groupRepo, userRepo),
		budget:    NewBudgetService(budgetRepo, groupRepo, userRepo),
		userRepo:  userRepo,
		groupRepo: groupRepo,
	}
}

// registerUser creates an account through the auth service and returns
// its id.
func (e *testEnv) registerUser(t *testing.T, username string) uint {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return user.ID
}

// createWG creates a WG owned by creatorID and returns its id.
func (e *testEnv) createWG(t *testing.T, creatorID uint, title string) uint {
	t.Helper()
	wg, err := e.groups.Create(context.Background(), creatorID, CreateGroupRequest{
		Title:   title,
		Address: fmt.Sprintf("%s street 1", title),
		Floor:   "2",
	})
	if err != nil {
		t.Fatalf("failed to create WG %s: %v", title, err)
	}
	return wg.ID
}

// addMember invites the user into the WG going through the admin path.
func (e *testEnv) addMember(t *testing.T, adminID, wgID, userID uint) {
	t.Helper()
	user, err := e.userRepo.FindByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to look up user %d: %v", userID, err)
	}
	if err := e.groups.Invite(context.Background(), adminID, wgID, user.Username); err != nil {
		t.Fatalf("failed to invite user %d into WG %d: %v", userID, wgID, err)
	}
}
