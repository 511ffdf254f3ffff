package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/domain"
)

// ShoppingRepository defines the data operations for shopping lists
// and their items.
type ShoppingRepository interface {
	Create(ctx context.Context, list *domain.ShoppingList) error
	FindByID(ctx context.Context, id uint) (*domain.ShoppingList, error)
	Save(ctx context.Context, list *domain.ShoppingList) error
	Delete(ctx context.Context, listID uint) error
	AddItem(ctx context.Context, item *domain.Item) error
	CheckList(ctx context.Context, listID uint) error
	UncheckList(ctx context.Context, listID uint) error

	FindItem(ctx context.Context, id uint) (*domain.Item, error)
	SaveItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, item *domain.Item) error
	ToggleItem(ctx context.Context, item *domain.Item) error
}

type gormShoppingRepository struct {
	db *gorm.DB
}

// NewGormShoppingRepository creates a GORM-backed shopping repository.
func NewGormShoppingRepository(db *gorm.DB) ShoppingRepository {
	return &gormShoppingRepository{db: db}
}

func (r *gormShoppingRepository) Create(ctx context.Context, list *domain.ShoppingList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *gormShoppingRepository) FindByID(ctx context.Context, id uint) (*domain.ShoppingList, error) {
	var list domain.ShoppingList
	err := r.db.WithContext(ctx).
		Preload("Users").
		Preload("Items").
		First(&list, id).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *gormShoppingRepository) Save(ctx context.Context, list *domain.ShoppingList) error {
	return r.db.WithContext(ctx).Omit("Users", "Items").Save(list).Error
}

func (r *gormShoppingRepository) Delete(ctx context.Context, listID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM items WHERE shopping_list_id = ?",
			"DELETE FROM shoppinglist_users WHERE shopping_list_id = ?",
		} {
			if err := tx.Exec(stmt, listID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.ShoppingList{}, listID).Error
	})
}

// AddItem creates the item and resets the list's checked flag.
func (r *gormShoppingRepository) AddItem(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Model(&domain.ShoppingList{}).
			Where("id = ?", item.ShoppingListID).
			Update("is_checked", false).Error
	})
}

// CheckList marks the list checked and force-checks every item.
func (r *gormShoppingRepository) CheckList(ctx context.Context, listID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Item{}).
			Where("shopping_list_id = ?", listID).
			Update("is_checked", true).Error; err != nil {
			return err
		}
		return tx.Model(&domain.ShoppingList{}).
			Where("id = ?", listID).
			Update("is_checked", true).Error
	})
}

// UncheckList clears only the list's flag; items keep their state.
func (r *gormShoppingRepository) UncheckList(ctx context.Context, listID uint) error {
	return r.db.WithContext(ctx).Model(&domain.ShoppingList{}).
		Where("id = ?", listID).
		Update("is_checked", false).Error
}

func (r *gormShoppingRepository) FindItem(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormShoppingRepository) SaveItem(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes the item and re-derives the list's checked flag
// from the remaining items.
func (r *gormShoppingRepository) DeleteItem(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Item{}, item.ID).Error; err != nil {
			return err
		}
		return deriveShoppingListChecked(tx, item.ShoppingListID)
	})
}

// ToggleItem flips the item's checked state and re-derives the parent
// list's flag: checked iff every item is checked.
func (r *gormShoppingRepository) ToggleItem(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item.IsChecked = !item.IsChecked
		if err := tx.Model(&domain.Item{}).
			Where("id = ?", item.ID).
			Update("is_checked", item.IsChecked).Error; err != nil {
			return err
		}
		return deriveShoppingListChecked(tx, item.ShoppingListID)
	})
}

func deriveShoppingListChecked(tx *gorm.DB, listID uint) error {
	var total, open int64
	if err := tx.Model(&domain.Item{}).Where("shopping_list_id = ?", listID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&domain.Item{}).
		Where("shopping_list_id = ? AND is_checked = ?", listID, false).
		Count(&open).Error; err != nil {
		return err
	}
	return tx.Model(&domain.ShoppingList{}).
		Where("id = ?", listID).
		Update("is_checked", total > 0 && open == 0).Error
}
