package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/domain"
	"github.com/wghub/wg-backend/internal/policy"
	"github.com/wghub/wg-backend/internal/repository"
)

// CreateGroupRequest holds the data for a new WG.
type CreateGroupRequest struct {
	Title       string `json:"title"`
	Address     string `json:"address"`
	Floor       string `json:"floor"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

// UpdateGroupRequest carries optional WG changes. Address and Floor
// must be provided together since they form one uniqueness pair.
type UpdateGroupRequest struct {
	Title       *string `json:"title"`
	Address     *string `json:"address"`
	Floor       *string `json:"floor"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// ListSummary is the compact child-collection representation embedded
// in a group response.
type ListSummary struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	IsChecked bool   `json:"is_checked,omitempty"`
}

// PlanSummary is the compact budget plan representation.
type PlanSummary struct {
	ID       uint            `json:"id"`
	Title    string          `json:"title"`
	Goal     decimal.Decimal `json:"goal"`
	Deadline *time.Time      `json:"deadline,omitempty"`
}

// GroupResponse is the full WG representation.
type GroupResponse struct {
	ID            uint          `json:"id"`
	Title         string        `json:"title"`
	Address       string        `json:"address"`
	Floor         string        `json:"floor"`
	Description   string        `json:"description"`
	IsPublic      bool          `json:"is_public"`
	Creator       UserRef       `json:"creator"`
	Users         []UserRef     `json:"users"`
	Admins        []UserRef     `json:"admins"`
	TaskLists     []ListSummary `json:"tasklists"`
	ShoppingLists []ListSummary `json:"shoppinglists"`
	BudgetPlans   []PlanSummary `json:"budgetplannings"`
}

// GroupService manages WGs and their membership sets.
type GroupService interface {
	Create(ctx context.Context, userID uint, req CreateGroupRequest) (*GroupResponse, error)
	Get(ctx context.Context, userID, wgID uint) (*GroupResponse, error)
	ListMine(ctx context.Context, userID uint) ([]GroupResponse, error)
	Update(ctx context.Context, userID, wgID uint, req UpdateGroupRequest) (*GroupResponse, error)
	Delete(ctx context.Context, userID, wgID uint) error
	Invite(ctx context.Context, userID, wgID uint, username string) error
	Kick(ctx context.Context, userID, wgID, targetID uint) error
	ToggleAdmin(ctx context.Context, userID, wgID, targetID uint) (bool, error)
	TransferCreator(ctx context.Context, userID, wgID uint, username string) error
}

type groupService struct {
	groups repository.GroupRepository
	users  repository.UserRepository
}

// NewGroupService creates the group service.
func NewGroupService(groups repository.GroupRepository, users repository.UserRepository) GroupService {
	return &groupService{groups: groups, users: users}
}

func userRefs(users []domain.User) []UserRef {
	refs := make([]UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, UserRef{ID: u.ID, Name: u.Username})
	}
	return refs
}

// memberUsers resolves ids to users and rejects any that are not
// members of the WG. Ids matching no user are silently dropped.
func memberUsers(ctx context.Context, users repository.UserRepository, wg *domain.WG, ids []uint) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resolved, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range resolved {
		if !policy.IsMember(wg, u.ID) {
			return nil, fmt.Errorf("%w: user %d is not a member of the WG", ErrValidation, u.ID)
		}
	}
	return resolved, nil
}

func newGroupResponse(wg *domain.WG) *GroupResponse {
	resp := &GroupResponse{
		ID:            wg.ID,
		Title:         wg.Title,
		Address:       wg.Address,
		Floor:         wg.Floor,
		Description:   wg.Description,
		IsPublic:      wg.IsPublic,
		Creator:       UserRef{ID: wg.CreatorID},
		Users:         userRefs(wg.Users),
		Admins:        userRefs(wg.Admins),
		TaskLists:     make([]ListSummary, 0, len(wg.TaskLists)),
		ShoppingLists: make([]ListSummary, 0, len(wg.ShoppingLists)),
		BudgetPlans:   make([]PlanSummary, 0, len(wg.BudgetPlans)),
	}
	if wg.Creator != nil {
		resp.Creator.Name = wg.Creator.Username
	}
	for _, tl := range wg.TaskLists {
		resp.TaskLists = append(resp.TaskLists, ListSummary{ID: tl.ID, Title: tl.Title, IsChecked: tl.IsChecked})
	}
	for _, sl := range wg.ShoppingLists {
		resp.ShoppingLists = append(resp.ShoppingLists, ListSummary{ID: sl.ID, Title: sl.Title, IsChecked: sl.IsChecked})
	}
	for _, bp := range wg.BudgetPlans {
		resp.BudgetPlans = append(resp.BudgetPlans, PlanSummary{ID: bp.ID, Title: bp.Title, Goal: bp.Goal, Deadline: bp.Deadline})
	}
	return resp
}

// loadWG resolves a WG id, translating a missing row into ErrNotFound.
func (s *groupService) loadWG(ctx context.Context, wgID uint) (*domain.WG, error) {
	wg, err := s.groups.FindByID(ctx, wgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: wg", ErrNotFound)
		}
		return nil, err
	}
	return wg, nil
}

// Create validates uniqueness of title and address+floor and makes the
// caller the WG's creator, sole member, and sole admin.
func (s *groupService) Create(ctx context.Context, userID uint, req CreateGroupRequest) (*GroupResponse, error) {
	if req.Title == "" || req.Address == "" || req.Floor == "" {
		return nil, fmt.Errorf("%w: title, address and floor are required", ErrValidation)
	}

	if exists, err := s.groups.TitleExists(ctx, req.Title); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: title already exists", ErrConflict)
	}
	if exists, err := s.groups.AddressFloorExists(ctx, req.Address, req.Floor); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: WG with this address and floor already exists", ErrConflict)
	}

	creator, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	wg := &domain.WG{
		Title:       req.Title,
		Address:     req.Address,
		Floor:       req.Floor,
		Description: req.Description,
		IsPublic:    isPublic,
		CreatorID:   creator.ID,
	}
	if err := s.groups.Create(ctx, wg, creator); err != nil {
		return nil, fmt.Errorf("failed to create WG: %w", err)
	}

	slog.Info("wg created", "wg_id", wg.ID, "creator_id", creator.ID)
	loaded, err := s.loadWG(ctx, wg.ID)
	if err != nil {
		return nil, err
	}
	return newGroupResponse(loaded), nil
}

// Get returns a WG to one of its members.
func (s *groupService) Get(ctx context.Context, userID, wgID uint) (*GroupResponse, error) {
	wg, err := s.loadWG(ctx, wgID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	return newGroupResponse(wg), nil
}

func (s *groupService) ListMine(ctx context.Context, userID uint) ([]GroupResponse, error) {
	wgs, err := s.groups.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]GroupResponse, 0, len(wgs))
	for i := range wgs {
		resp = append(resp, *newGroupResponse(&wgs[i]))
	}
	return resp, nil
}

// Update changes WG fields; uniqueness is re-validated only for fields
// that actually change.
func (s *groupService) Update(ctx context.Context, userID, wgID uint, req UpdateGroupRequest) (*GroupResponse, error) {
	wg, err := s.loadWG(ctx, wgID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAdmin(wg, userID) {
		return nil, fmt.Errorf("%w: admin required", ErrForbidden)
	}

	if req.Title != nil && *req.Title != wg.Title {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		if exists, err := s.groups.TitleExists(ctx, *req.Title); err != nil {
			return nil, err
		} else if exists {
			return nil, fmt.Errorf("%w: title already exists", ErrConflict)
		}
		wg.Title = *req.Title
	}

	if (req.Address != nil) != (req.Floor != nil) {
		return nil, fmt.Errorf("%w: address and floor must be updated together", ErrValidation)
	}
	if req.Address != nil && req.Floor != nil && (*req.Address != wg.Address || *req.Floor != wg.Floor) {
		if exists, err := s.groups.AddressFloorExists(ctx, *req.Address, *req.Floor); err != nil {
			return nil, err
		} else if exists {
			return nil, fmt.Errorf("%w: WG with this address and floor already exists", ErrConflict)
		}
		wg.Address = *req.Address
		wg.Floor = *req.Floor
	}

	if req.Description != nil {
		wg.Description = *req.Description
	}
	if req.IsPublic != nil {
		wg.IsPublic = *req.IsPublic
	}

	if err := s.groups.Save(ctx, wg); err != nil {
		return nil, fmt.Errorf("failed to update WG: %w", err)
	}
	return newGroupResponse(wg), nil
}

func (s *groupService) Delete(ctx context.Context, userID, wgID uint) error {
	wg, err := s.loadWG(ctx, wgID)
	if err != nil {
		return err
	}
	if !policy.IsAdmin(wg, userID) {
		return fmt.Errorf("%w: admin required", ErrForbidden)
	}
	if err := s.groups.Delete(ctx, wgID); err != nil {
		return fmt.Errorf("failed to delete WG: %w", err)
	}
	slog.Info("wg deleted", "wg_id", wgID, "by", userID)
	return nil
}

// Invite adds a user to the WG by username.
func (s *groupService) Invite(ctx context.Context, userID, wgID uint, username string) error {
	wg, err := s.loadWG(ctx, wgID)
	if err != nil {
		return err
	}
	if !policy.IsAdmin(wg, userID) {
		return fmt.Errorf("%w: admin required", ErrForbidden)
	}
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}
	if policy.IsMember(wg, user.ID) {
		return fmt.Errorf("%w: user already in WG", ErrConflict)
	}

	if err := s.groups.AddMember(ctx, wg, user); err != nil {
		return fmt.Errorf("failed to invite user: %w", err)
	}
	slog.Info("user invited", "wg_id", wgID, "user_id", user.ID, "by", userID)
	return nil
}

// Kick removes a member. The creator can never be kicked; a kicked
// admin loses the role.
func (s *groupService) Kick(ctx context.Context, userID, wgID, targetID uint) error {
	wg, err := s.loadWG(ctx, wgID)
	if err != nil {
		return err
	}
	if !policy.IsAdmin(wg, userID) {
		return fmt.Errorf("%w: admin required", ErrForbidden)
	}
	if !policy.IsMember(wg, targetID) {
		return fmt.Errorf("%w: user not in WG", ErrNotFound)
	}
	if targetID == wg.CreatorID {
		return fmt.Errorf("%w: cannot kick creator", ErrForbidden)
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.groups.RemoveMember(ctx, wg, target); err != nil {
		return fmt.Errorf("failed to kick user: %w", err)
	}
	slog.Info("user kicked", "wg_id", wgID, "user_id", targetID, "by", userID)
	return nil
}

// ToggleAdmin flips the target's membership in the admin set and
// reports the resulting state. The creator's authority does not depend
// on an admin row and cannot be toggled away.
func (s *groupService) ToggleAdmin(ctx context.Context, userID, wgID, targetID uint) (bool, error) {
	wg, err := s.loadWG(ctx, wgID)
	if err != nil {
		return false, err
	}
	if !policy.IsAdmin(wg, userID) {
		return false, fmt.Errorf("%w: admin required", ErrForbidden)
	}
	if !policy.IsMember(wg, targetID) {
		return false, fmt.Errorf("%w: user not in WG", ErrNotFound)
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return false, err
	}

	for _, admin := range wg.Admins {
		if admin.ID == targetID {
			if err := s.groups.RemoveAdmin(ctx, wg, target); err != nil {
				return false, fmt.Errorf("failed to toggle admin: %w", err)
			}
			slog.Info("admin revoked", "wg_id", wgID, "user_id", targetID, "by", userID)
			return false, nil
		}
	}
	if err := s.groups.AddAdmin(ctx, wg, target); err != nil {
		return false, fmt.Errorf("failed to toggle admin: %w", err)
	}
	slog.Info("admin granted", "wg_id", wgID, "user_id", targetID, "by", userID)
	return true, nil
}

// TransferCreator hands creator status to another member. Both the old
// and the new creator end up in the admin set.
func (s *groupService) TransferCreator(ctx context.Context, userID, wgID uint, username string) error {
	wg, err := s.loadWG(ctx, wgID)
	if err != nil {
		return err
	}
	if wg.CreatorID != userID {
		return fmt.Errorf("%w: only the creator can transfer creator status", ErrForbidden)
	}
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}

	newCreator, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}
	if newCreator.ID == userID {
		return fmt.Errorf("%w: cannot transfer creator status to yourself", ErrValidation)
	}
	if !policy.IsMember(wg, newCreator.ID) {
		return fmt.Errorf("%w: new creator must be a member of the WG", ErrValidation)
	}

	if err := s.groups.TransferCreator(ctx, wg, newCreator); err != nil {
		return fmt.Errorf("failed to transfer creator status: %w", err)
	}
	slog.Info("creator transferred", "wg_id", wgID, "from", userID, "to", newCreator.ID)
	return nil
}
