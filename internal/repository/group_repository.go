package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/domain"
)

// GroupRepository defines the data operations for WGs and their
// membership sets.
type GroupRepository interface {
	Create(ctx context.Context, wg *domain.WG, creator *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.WG, error)
	ListForUser(ctx context.Context, userID uint) ([]domain.WG, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	AddressFloorExists(ctx context.Context, address, floor string) (bool, error)
	Save(ctx context.Context, wg *domain.WG) error
	Delete(ctx context.Context, wgID uint) error
	AddMember(ctx context.Context, wg *domain.WG, user *domain.User) error
	RemoveMember(ctx context.Context, wg *domain.WG, user *domain.User) error
	AddAdmin(ctx context.Context, wg *domain.WG, user *domain.User) error
	RemoveAdmin(ctx context.Context, wg *domain.WG, user *domain.User) error
	TransferCreator(ctx context.Context, wg *domain.WG, newCreator *domain.User) error
}

type gormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a GORM-backed WG repository.
func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &gormGroupRepository{db: db}
}

// Create persists the WG and makes the creator its sole member and
// admin in the same transaction.
func (r *gormGroupRepository) Create(ctx context.Context, wg *domain.WG, creator *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wg).Error; err != nil {
			return err
		}
		if err := tx.Model(wg).Association("Users").Append(creator); err != nil {
			return err
		}
		return tx.Model(wg).Association("Admins").Append(creator)
	})
}

func (r *gormGroupRepository) FindByID(ctx context.Context, id uint) (*domain.WG, error) {
	var wg domain.WG
	err := r.db.WithContext(ctx).
		Preload("Users").
		Preload("Admins").
		Preload("Creator").
		Preload("TaskLists").
		Preload("ShoppingLists").
		Preload("BudgetPlans").
		First(&wg, id).Error
	if err != nil {
		return nil, err
	}
	return &wg, nil
}

func (r *gormGroupRepository) ListForUser(ctx context.Context, userID uint) ([]domain.WG, error) {
	var wgs []domain.WG
	err := r.db.WithContext(ctx).
		Joins("JOIN wg_users ON wg_users.wg_id = wgs.id").
		Where("wg_users.user_id = ?", userID).
		Preload("Users").
		Preload("Admins").
		Preload("Creator").
		Preload("TaskLists").
		Preload("ShoppingLists").
		Preload("BudgetPlans").
		Find(&wgs).Error
	if err != nil {
		return nil, err
	}
	return wgs, nil
}

func (r *gormGroupRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WG{}).Where("title = ?", title).Count(&count).Error
	return count > 0, err
}

func (r *gormGroupRepository) AddressFloorExists(ctx context.Context, address, floor string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WG{}).
		Where("address = ? AND floor = ?", address, floor).
		Count(&count).Error
	return count > 0, err
}

func (r *gormGroupRepository) Save(ctx context.Context, wg *domain.WG) error {
	return r.db.WithContext(ctx).Omit("Users", "Admins", "Creator", "TaskLists", "ShoppingLists", "BudgetPlans").Save(wg).Error
}

// Delete removes the WG and everything it owns: task lists with their
// tasks, shopping lists with their items, budget plans with their
// costs, all assignment edges, the membership sets, and any home-WG
// preference pointing here.
func (r *gormGroupRepository) Delete(ctx context.Context, wgID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM task_users WHERE task_id IN (SELECT t.id FROM tasks t JOIN task_lists tl ON t.task_list_id = tl.id WHERE tl.wg_id = ?)",
			"DELETE FROM tasks WHERE task_list_id IN (SELECT id FROM task_lists WHERE wg_id = ?)",
			"DELETE FROM tasklist_users WHERE task_list_id IN (SELECT id FROM task_lists WHERE wg_id = ?)",
			"DELETE FROM task_lists WHERE wg_id = ?",
			"DELETE FROM items WHERE shopping_list_id IN (SELECT id FROM shopping_lists WHERE wg_id = ?)",
			"DELETE FROM shoppinglist_users WHERE shopping_list_id IN (SELECT id FROM shopping_lists WHERE wg_id = ?)",
			"DELETE FROM shopping_lists WHERE wg_id = ?",
			"DELETE FROM cost_users WHERE cost_id IN (SELECT c.id FROM costs c JOIN budget_plans bp ON c.budget_plan_id = bp.id WHERE bp.wg_id = ?)",
			"DELETE FROM costs WHERE budget_plan_id IN (SELECT id FROM budget_plans WHERE wg_id = ?)",
			"DELETE FROM budgetplan_users WHERE budget_plan_id IN (SELECT id FROM budget_plans WHERE wg_id = ?)",
			"DELETE FROM budget_plans WHERE wg_id = ?",
			"DELETE FROM wg_users WHERE wg_id = ?",
			"DELETE FROM wg_admins WHERE wg_id = ?",
			"UPDATE users SET home_wg_id = NULL WHERE home_wg_id = ?",
		} {
			if err := tx.Exec(stmt, wgID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.WG{}, wgID).Error
	})
}

func (r *gormGroupRepository) AddMember(ctx context.Context, wg *domain.WG, user *domain.User) error {
	return r.db.WithContext(ctx).Model(wg).Association("Users").Append(user)
}

// RemoveMember drops the membership row, any admin row, and clears the
// user's home-WG preference if it points at this WG.
func (r *gormGroupRepository) RemoveMember(ctx context.Context, wg *domain.WG, user *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(wg).Association("Users").Delete(user); err != nil {
			return err
		}
		if err := tx.Model(wg).Association("Admins").Delete(user); err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ? AND home_wg_id = ?", user.ID, wg.ID).
			Update("home_wg_id", nil).Error
	})
}

func (r *gormGroupRepository) AddAdmin(ctx context.Context, wg *domain.WG, user *domain.User) error {
	return r.db.WithContext(ctx).Model(wg).Association("Admins").Append(user)
}

func (r *gormGroupRepository) RemoveAdmin(ctx context.Context, wg *domain.WG, user *domain.User) error {
	return r.db.WithContext(ctx).Model(wg).Association("Admins").Delete(user)
}

// TransferCreator moves creator status to newCreator and makes sure
// both the old and the new creator hold admin rows afterwards.
func (r *gormGroupRepository) TransferCreator(ctx context.Context, wg *domain.WG, newCreator *domain.User) error {
	oldCreatorID := wg.CreatorID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, userID := range []uint{oldCreatorID, newCreator.ID} {
			var count int64
			if err := tx.Table("wg_admins").
				Where("wg_id = ? AND user_id = ?", wg.ID, userID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Exec("INSERT INTO wg_admins (wg_id, user_id) VALUES (?, ?)", wg.ID, userID).Error; err != nil {
					return err
				}
			}
		}
		return tx.Model(&domain.WG{}).Where("id = ?", wg.ID).Update("creator_id", newCreator.ID).Error
	})
}
