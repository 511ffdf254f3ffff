package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/domain"
	"github.com/wghub/wg-backend/internal/policy"
	"github.com/wghub/wg-backend/internal/repository"
)

// CreateShoppingListRequest holds the data for a new shopping list.
type CreateShoppingListRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	UserIDs     []uint     `json:"user_ids"`
}

// UpdateShoppingListRequest carries optional shopping list changes.
type UpdateShoppingListRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	IsChecked   *bool      `json:"is_checked"`
}

// AddItemRequest holds the data for a new item on a shopping list.
type AddItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateItemRequest carries optional item changes.
type UpdateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ItemResponse is the wire representation of a shopping list item.
type ItemResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsChecked   bool   `json:"is_checked"`
}

// ShoppingListResponse is the wire representation of a shopping list.
type ShoppingListResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        *time.Time     `json:"date,omitempty"`
	IsChecked   bool           `json:"is_checked"`
	CreatorID   uint           `json:"creator_id"`
	WGID        uint           `json:"wg_id"`
	Users       []UserRef      `json:"users"`
	Items       []ItemResponse `json:"items"`
}

// ShoppingService manages shopping lists and their items.
type ShoppingService interface {
	Create(ctx context.Context, userID, wgID uint, req CreateShoppingListRequest) (*ShoppingListResponse, error)
	Get(ctx context.Context, userID, listID uint) (*ShoppingListResponse, error)
	Update(ctx context.Context, userID, listID uint, req UpdateShoppingListRequest) (*ShoppingListResponse, error)
	Delete(ctx context.Context, userID, listID uint) error
	AddItem(ctx context.Context, userID, listID uint, req AddItemRequest) (*ShoppingListResponse, error)
	UpdateItem(ctx context.Context, userID, itemID uint, req UpdateItemRequest) (*ItemResponse, error)
	DeleteItem(ctx context.Context, userID, itemID uint) error
	ToggleItem(ctx context.Context, userID, itemID uint) (*ItemResponse, error)
}

type shoppingService struct {
	lists  repository.ShoppingRepository
	groups repository.GroupRepository
	users  repository.UserRepository
}

// NewShoppingService creates the shopping service.
func NewShoppingService(lists repository.ShoppingRepository, groups repository.GroupRepository, users repository.UserRepository) ShoppingService {
	return &shoppingService{lists: lists, groups: groups, users: users}
}

func newShoppingListResponse(list *domain.ShoppingList) *ShoppingListResponse {
	resp := &ShoppingListResponse{
		ID:          list.ID,
		Title:       list.Title,
		Description: list.Description,
		Date:        list.Date,
		IsChecked:   list.IsChecked,
		CreatorID:   list.CreatorID,
		WGID:        list.WGID,
		Users:       userRefs(list.Users),
		Items:       make([]ItemResponse, 0, len(list.Items)),
	}
	for _, item := range list.Items {
		resp.Items = append(resp.Items, *newItemResponse(&item))
	}
	return resp
}

func newItemResponse(item *domain.Item) *ItemResponse {
	return &ItemResponse{ID: item.ID, Title: item.Title, Description: item.Description, IsChecked: item.IsChecked}
}

func (s *shoppingService) loadList(ctx context.Context, listID uint) (*domain.ShoppingList, *domain.WG, error) {
	list, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: shopping list", ErrNotFound)
		}
		return nil, nil, err
	}
	wg, err := s.groups.FindByID(ctx, list.WGID)
	if err != nil {
		return nil, nil, err
	}
	return list, wg, nil
}

func (s *shoppingService) loadItem(ctx context.Context, itemID uint) (*domain.Item, *domain.WG, error) {
	item, err := s.lists.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: item", ErrNotFound)
		}
		return nil, nil, err
	}
	list, err := s.lists.FindByID(ctx, item.ShoppingListID)
	if err != nil {
		return nil, nil, err
	}
	wg, err := s.groups.FindByID(ctx, list.WGID)
	if err != nil {
		return nil, nil, err
	}
	return item, wg, nil
}

// canManage reports whether the user may alter the list itself: WG
// admins and the list's creator.
func canManageShoppingList(wg *domain.WG, list *domain.ShoppingList, userID uint) bool {
	return policy.IsAdmin(wg, userID) || list.CreatorID == userID
}

// Create opens a new shopping list. Any WG member can create one; the
// optional user ids restrict who the list is meant for and must all be
// members of the WG.
func (s *shoppingService) Create(ctx context.Context, userID, wgID uint, req CreateShoppingListRequest) (*ShoppingListResponse, error) {
	wg, err := s.groups.FindByID(ctx, wgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: wg", ErrNotFound)
		}
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	assigned, err := memberUsers(ctx, s.users, wg, req.UserIDs)
	if err != nil {
		return nil, err
	}

	list := &domain.ShoppingList{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		CreatorID:   userID,
		WGID:        wg.ID,
		Users:       assigned,
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	slog.Info("shopping list created", "list_id", list.ID, "wg_id", wg.ID, "by", userID)

	loaded, err := s.lists.FindByID(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return newShoppingListResponse(loaded), nil
}

func (s *shoppingService) Get(ctx context.Context, userID, listID uint) (*ShoppingListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	return newShoppingListResponse(list), nil
}

// Update renames the list or overrides its checked flag. Checking the
// list marks every item on it checked.
func (s *shoppingService) Update(ctx context.Context, userID, listID uint, req UpdateShoppingListRequest) (*ShoppingListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !canManageShoppingList(wg, list, userID) {
		return nil, fmt.Errorf("%w: admin or list creator required", ErrForbidden)
	}

	changed := false
	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		list.Title = *req.Title
		changed = true
	}
	if req.Description != nil {
		list.Description = *req.Description
		changed = true
	}
	if req.Date != nil {
		list.Date = req.Date
		changed = true
	}
	if changed {
		if err := s.lists.Save(ctx, list); err != nil {
			return nil, fmt.Errorf("failed to update shopping list: %w", err)
		}
	}
	if req.IsChecked != nil {
		if *req.IsChecked {
			if err := s.lists.CheckList(ctx, list.ID); err != nil {
				return nil, fmt.Errorf("failed to check shopping list: %w", err)
			}
		} else if err := s.lists.UncheckList(ctx, list.ID); err != nil {
			return nil, fmt.Errorf("failed to uncheck shopping list: %w", err)
		}
	}

	loaded, err := s.lists.FindByID(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return newShoppingListResponse(loaded), nil
}

func (s *shoppingService) Delete(ctx context.Context, userID, listID uint) error {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}
	if !canManageShoppingList(wg, list, userID) {
		return fmt.Errorf("%w: admin or list creator required", ErrForbidden)
	}
	if err := s.lists.Delete(ctx, list.ID); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	slog.Info("shopping list deleted", "list_id", listID, "by", userID)
	return nil
}

// AddItem puts a new item on the list and reopens a checked list.
func (s *shoppingService) AddItem(ctx context.Context, userID, listID uint, req AddItemRequest) (*ShoppingListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	item := &domain.Item{Title: req.Title, Description: req.Description, ShoppingListID: list.ID}
	if err := s.lists.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	loaded, err := s.lists.FindByID(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return newShoppingListResponse(loaded), nil
}

func (s *shoppingService) UpdateItem(ctx context.Context, userID, itemID uint, req UpdateItemRequest) (*ItemResponse, error) {
	item, wg, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	changed := false
	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		item.Title = *req.Title
		changed = true
	}
	if req.Description != nil {
		item.Description = *req.Description
		changed = true
	}
	if changed {
		if err := s.lists.SaveItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update item: %w", err)
		}
	}
	return newItemResponse(item), nil
}

func (s *shoppingService) DeleteItem(ctx context.Context, userID, itemID uint) error {
	item, wg, err := s.loadItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !policy.IsMember(wg, userID) {
		return fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if err := s.lists.DeleteItem(ctx, item); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// ToggleItem flips an item's checked state. The parent list's checked
// flag follows from its items.
func (s *shoppingService) ToggleItem(ctx context.Context, userID, itemID uint) (*ItemResponse, error) {
	item, wg, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if err := s.lists.ToggleItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to toggle item: %w", err)
	}
	return newItemResponse(item), nil
}
