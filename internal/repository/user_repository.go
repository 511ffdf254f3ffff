// Package repository implements the persistence layer over GORM. Every
// multi-step mutation runs inside a single transaction so a mid-flight
// failure rolls back all partial writes.
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/domain"
)

// UserRepository defines the data operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	CountCreatedWGs(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, userID uint) error
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a GORM-backed user repository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs resolves a set of user ids to existing rows. Unknown ids
// are silently dropped, which is how assignment endpoints filter their
// input.
func (r *gormUserRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *gormUserRepository) Save(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormUserRepository) CountCreatedWGs(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WG{}).Where("creator_id = ?", userID).Count(&count).Error
	return count, err
}

// Delete removes the account together with every membership and
// assignment edge it holds.
func (r *gormUserRepository) Delete(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM wg_users WHERE user_id = ?",
			"DELETE FROM wg_admins WHERE user_id = ?",
			"DELETE FROM tasklist_users WHERE user_id = ?",
			"DELETE FROM task_users WHERE user_id = ?",
			"DELETE FROM shoppinglist_users WHERE user_id = ?",
			"DELETE FROM budgetplan_users WHERE user_id = ?",
			"DELETE FROM cost_users WHERE user_id = ?",
		} {
			if err := tx.Exec(stmt, userID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.User{}, userID).Error
	})
}
