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

// CreateBudgetPlanRequest holds the data for a new budget plan. The
// plan's goal is never written directly, it is the sum of its costs.
type CreateBudgetPlanRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	UserIDs     []uint     `json:"user_ids"`
}

// UpdateBudgetPlanRequest carries optional budget plan changes.
// UserIDs, when present, replaces the plan's assigned-user set.
type UpdateBudgetPlanRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	UserIDs     *[]uint    `json:"user_ids"`
}

// AddCostRequest holds the data for a new cost entry.
type AddCostRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Goal        decimal.Decimal `json:"goal"`
	UserIDs     []uint          `json:"user_ids"`
}

// UpdateCostRequest carries optional cost changes.
type UpdateCostRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Goal        *decimal.Decimal `json:"goal"`
	Paid        *decimal.Decimal `json:"paid"`
	UserIDs     *[]uint          `json:"user_ids"`
}

// CostResponse is the wire representation of a cost entry.
type CostResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Goal        decimal.Decimal `json:"goal"`
	Paid        decimal.Decimal `json:"paid"`
	Users       []UserRef       `json:"users"`
}

// BudgetPlanResponse is the wire representation of a budget plan.
type BudgetPlanResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Goal        decimal.Decimal `json:"goal"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	CreatorID   uint            `json:"creator_id"`
	WGID        uint            `json:"wg_id"`
	Users       []UserRef       `json:"users"`
	Costs       []CostResponse  `json:"costs"`
}

// BudgetService manages budget plans and their cost entries.
type BudgetService interface {
	Create(ctx context.Context, userID, wgID uint, req CreateBudgetPlanRequest) (*BudgetPlanResponse, error)
	Get(ctx context.Context, userID, planID uint) (*BudgetPlanResponse, error)
	Update(ctx context.Context, userID, planID uint, req UpdateBudgetPlanRequest) (*BudgetPlanResponse, error)
	Delete(ctx context.Context, userID, planID uint) error
	AddCost(ctx context.Context, userID, planID uint, req AddCostRequest) (*BudgetPlanResponse, error)
	UpdateCost(ctx context.Context, userID, costID uint, req UpdateCostRequest) (*CostResponse, error)
	DeleteCost(ctx context.Context, userID, costID uint) error
}

type budgetService struct {
	plans  repository.BudgetRepository
	groups repository.GroupRepository
	users  repository.UserRepository
}

// NewBudgetService creates the budget service.
func NewBudgetService(plans repository.BudgetRepository, groups repository.GroupRepository, users repository.UserRepository) BudgetService {
	return &budgetService{plans: plans, groups: groups, users: users}
}

func newCostResponse(cost *domain.Cost) *CostResponse {
	return &CostResponse{
		ID:          cost.ID,
		Title:       cost.Title,
		Description: cost.Description,
		Goal:        cost.Goal,
		Paid:        cost.Paid,
		Users:       userRefs(cost.Users),
	}
}

func newBudgetPlanResponse(plan *domain.BudgetPlan) *BudgetPlanResponse {
	resp := &BudgetPlanResponse{
		ID:          plan.ID,
		Title:       plan.Title,
		Description: plan.Description,
		Goal:        plan.Goal,
		Deadline:    plan.Deadline,
		CreatorID:   plan.CreatorID,
		WGID:        plan.WGID,
		Users:       userRefs(plan.Users),
		Costs:       make([]CostResponse, 0, len(plan.Costs)),
	}
	for i := range plan.Costs {
		resp.Costs = append(resp.Costs, *newCostResponse(&plan.Costs[i]))
	}
	return resp
}

func (s *budgetService) loadPlan(ctx context.Context, planID uint) (*domain.BudgetPlan, *domain.WG, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: budget plan", ErrNotFound)
		}
		return nil, nil, err
	}
	wg, err := s.groups.FindByID(ctx, plan.WGID)
	if err != nil {
		return nil, nil, err
	}
	return plan, wg, nil
}

func (s *budgetService) loadCost(ctx context.Context, costID uint) (*domain.Cost, *domain.WG, error) {
	cost, err := s.plans.FindCost(ctx, costID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: cost", ErrNotFound)
		}
		return nil, nil, err
	}
	plan, err := s.plans.FindByID(ctx, cost.BudgetPlanID)
	if err != nil {
		return nil, nil, err
	}
	wg, err := s.groups.FindByID(ctx, plan.WGID)
	if err != nil {
		return nil, nil, err
	}
	return cost, wg, nil
}

func canManageBudgetPlan(wg *domain.WG, plan *domain.BudgetPlan, userID uint) bool {
	return policy.IsAdmin(wg, userID) || plan.CreatorID == userID
}

// Create opens a new budget plan with a zero goal. Any WG member can
// create one.
func (s *budgetService) Create(ctx context.Context, userID, wgID uint, req CreateBudgetPlanRequest) (*BudgetPlanResponse, error) {
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

	plan := &domain.BudgetPlan{
		Title:       req.Title,
		Description: req.Description,
		Goal:        decimal.Zero,
		Deadline:    req.Deadline,
		CreatorID:   userID,
		WGID:        wg.ID,
		Users:       assigned,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create budget plan: %w", err)
	}
	slog.Info("budget plan created", "plan_id", plan.ID, "wg_id", wg.ID, "by", userID)
	return s.reload(ctx, plan.ID)
}

func (s *budgetService) Get(ctx context.Context, userID, planID uint) (*BudgetPlanResponse, error) {
	plan, wg, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	return newBudgetPlanResponse(plan), nil
}

// Update changes the plan's title, deadline, or assigned users. The
// goal has no direct write path.
func (s *budgetService) Update(ctx context.Context, userID, planID uint, req UpdateBudgetPlanRequest) (*BudgetPlanResponse, error) {
	plan, wg, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !canManageBudgetPlan(wg, plan, userID) {
		return nil, fmt.Errorf("%w: admin or plan creator required", ErrForbidden)
	}

	// Resolve the assignee set before writing anything so a bad id
	// cannot leave the field changes half applied.
	var assigned []domain.User
	if req.UserIDs != nil {
		assigned, err = memberUsers(ctx, s.users, wg, *req.UserIDs)
		if err != nil {
			return nil, err
		}
	}

	changed := false
	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		plan.Title = *req.Title
		changed = true
	}
	if req.Description != nil {
		plan.Description = *req.Description
		changed = true
	}
	if req.Deadline != nil {
		plan.Deadline = req.Deadline
		changed = true
	}
	if changed {
		if err := s.plans.Save(ctx, plan); err != nil {
			return nil, fmt.Errorf("failed to update budget plan: %w", err)
		}
	}
	if req.UserIDs != nil {
		if err := s.plans.ReplaceAssignees(ctx, plan, assigned); err != nil {
			return nil, fmt.Errorf("failed to update plan assignees: %w", err)
		}
	}
	return s.reload(ctx, plan.ID)
}

func (s *budgetService) Delete(ctx context.Context, userID, planID uint) error {
	plan, wg, err := s.loadPlan(ctx, planID)
	if err != nil {
		return err
	}
	if !canManageBudgetPlan(wg, plan, userID) {
		return fmt.Errorf("%w: admin or plan creator required", ErrForbidden)
	}
	if err := s.plans.Delete(ctx, plan.ID); err != nil {
		return fmt.Errorf("failed to delete budget plan: %w", err)
	}
	slog.Info("budget plan deleted", "plan_id", planID, "by", userID)
	return nil
}

// AddCost adds a cost entry and folds its goal into the plan's total.
func (s *budgetService) AddCost(ctx context.Context, userID, planID uint, req AddCostRequest) (*BudgetPlanResponse, error) {
	plan, wg, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Goal.IsNegative() {
		return nil, fmt.Errorf("%w: goal must not be negative", ErrValidation)
	}

	assignees, err := memberUsers(ctx, s.users, wg, req.UserIDs)
	if err != nil {
		return nil, err
	}

	cost := &domain.Cost{
		Title:        req.Title,
		Description:  req.Description,
		Goal:         req.Goal,
		Paid:         decimal.Zero,
		BudgetPlanID: plan.ID,
	}
	if err := s.plans.AddCost(ctx, cost, assignees); err != nil {
		return nil, fmt.Errorf("failed to add cost: %w", err)
	}
	return s.reload(ctx, plan.ID)
}

func (s *budgetService) UpdateCost(ctx context.Context, userID, costID uint, req UpdateCostRequest) (*CostResponse, error) {
	cost, wg, err := s.loadCost(ctx, costID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		cost.Title = *req.Title
	}
	if req.Description != nil {
		cost.Description = *req.Description
	}
	if req.Goal != nil {
		if req.Goal.IsNegative() {
			return nil, fmt.Errorf("%w: goal must not be negative", ErrValidation)
		}
		cost.Goal = *req.Goal
	}
	if req.Paid != nil {
		if req.Paid.IsNegative() {
			return nil, fmt.Errorf("%w: paid must not be negative", ErrValidation)
		}
		cost.Paid = *req.Paid
	}

	var assignees []domain.User
	if req.UserIDs != nil {
		assignees, err = memberUsers(ctx, s.users, wg, *req.UserIDs)
		if err != nil {
			return nil, err
		}
	}
	if err := s.plans.UpdateCost(ctx, cost, assignees, req.UserIDs != nil); err != nil {
		return nil, fmt.Errorf("failed to update cost: %w", err)
	}

	updated, err := s.plans.FindCost(ctx, cost.ID)
	if err != nil {
		return nil, err
	}
	return newCostResponse(updated), nil
}

func (s *budgetService) DeleteCost(ctx context.Context, userID, costID uint) error {
	cost, wg, err := s.loadCost(ctx, costID)
	if err != nil {
		return err
	}
	if !policy.IsMember(wg, userID) {
		return fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if err := s.plans.DeleteCost(ctx, cost); err != nil {
		return fmt.Errorf("failed to delete cost: %w", err)
	}
	return nil
}

func (s *budgetService) reload(ctx context.Context, planID uint) (*BudgetPlanResponse, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return newBudgetPlanResponse(plan), nil
}
