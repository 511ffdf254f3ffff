package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/domain"
)

// BudgetRepository defines the data operations for budget plans and
// their costs. Every cost mutation recomputes the parent plan's
// aggregate goal in the same transaction.
type BudgetRepository interface {
	Create(ctx context.Context, plan *domain.BudgetPlan) error
	FindByID(ctx context.Context, id uint) (*domain.BudgetPlan, error)
	Save(ctx context.Context, plan *domain.BudgetPlan) error
	Delete(ctx context.Context, planID uint) error
	ReplaceAssignees(ctx context.Context, plan *domain.BudgetPlan, users []domain.User) error

	AddCost(ctx context.Context, cost *domain.Cost, assignees []domain.User) error
	FindCost(ctx context.Context, id uint) (*domain.Cost, error)
	UpdateCost(ctx context.Context, cost *domain.Cost, assignees []domain.User, replaceAssignees bool) error
	DeleteCost(ctx context.Context, cost *domain.Cost) error
}

type gormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a GORM-backed budget repository.
func NewGormBudgetRepository(db *gorm.DB) BudgetRepository {
	return &gormBudgetRepository{db: db}
}

func (r *gormBudgetRepository) Create(ctx context.Context, plan *domain.BudgetPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *gormBudgetRepository) FindByID(ctx context.Context, id uint) (*domain.BudgetPlan, error) {
	var plan domain.BudgetPlan
	err := r.db.WithContext(ctx).
		Preload("Users").
		Preload("Costs").
		Preload("Costs.Users").
		First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormBudgetRepository) Save(ctx context.Context, plan *domain.BudgetPlan) error {
	return r.db.WithContext(ctx).Omit("Users", "Costs").Save(plan).Error
}

func (r *gormBudgetRepository) Delete(ctx context.Context, planID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM cost_users WHERE cost_id IN (SELECT id FROM costs WHERE budget_plan_id = ?)",
			"DELETE FROM costs WHERE budget_plan_id = ?",
			"DELETE FROM budgetplan_users WHERE budget_plan_id = ?",
		} {
			if err := tx.Exec(stmt, planID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.BudgetPlan{}, planID).Error
	})
}

func (r *gormBudgetRepository) ReplaceAssignees(ctx context.Context, plan *domain.BudgetPlan, users []domain.User) error {
	if len(users) == 0 {
		return r.db.WithContext(ctx).Model(plan).Association("Users").Clear()
	}
	return r.db.WithContext(ctx).Model(plan).Association("Users").Replace(users)
}

// AddCost creates the cost, assigns its users, and brings the parent
// plan's goal back to the sum of its costs' goals.
func (r *gormBudgetRepository) AddCost(ctx context.Context, cost *domain.Cost, assignees []domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cost).Error; err != nil {
			return err
		}
		if len(assignees) > 0 {
			if err := tx.Model(cost).Association("Users").Replace(assignees); err != nil {
				return err
			}
		}
		return recomputePlanGoal(tx, cost.BudgetPlanID)
	})
}

func (r *gormBudgetRepository) FindCost(ctx context.Context, id uint) (*domain.Cost, error) {
	var cost domain.Cost
	if err := r.db.WithContext(ctx).Preload("Users").First(&cost, id).Error; err != nil {
		return nil, err
	}
	return &cost, nil
}

// UpdateCost saves the cost, optionally replaces its assignee set, and
// recomputes the parent plan's aggregate goal.
func (r *gormBudgetRepository) UpdateCost(ctx context.Context, cost *domain.Cost, assignees []domain.User, replaceAssignees bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Users").Save(cost).Error; err != nil {
			return err
		}
		if replaceAssignees {
			if len(assignees) == 0 {
				if err := tx.Model(cost).Association("Users").Clear(); err != nil {
					return err
				}
			} else if err := tx.Model(cost).Association("Users").Replace(assignees); err != nil {
				return err
			}
		}
		return recomputePlanGoal(tx, cost.BudgetPlanID)
	})
}

func (r *gormBudgetRepository) DeleteCost(ctx context.Context, cost *domain.Cost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM cost_users WHERE cost_id = ?", cost.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Cost{}, cost.ID).Error; err != nil {
			return err
		}
		return recomputePlanGoal(tx, cost.BudgetPlanID)
	})
}

// recomputePlanGoal persists plan.goal = sum(cost.goal) for the plan.
func recomputePlanGoal(tx *gorm.DB, planID uint) error {
	var total decimal.Decimal
	err := tx.Model(&domain.Cost{}).
		Where("budget_plan_id = ?", planID).
		Select("COALESCE(SUM(goal), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}
	return tx.Model(&domain.BudgetPlan{}).
		Where("id = ?", planID).
		Update("goal", total).Error
}
