package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func (e *testEnv) createPlan(t *testing.T, userID, wgID uint, title string) *BudgetPlanResponse {
	t.Helper()
	plan, err := e.budget.Create(context.Background(), userID, wgID, CreateBudgetPlanRequest{Title: title})
	if err != nil {
		t.Fatalf("failed to create budget plan: %v", err)
	}
	return plan
}

func TestBudgetPlanStartsAtZero(t *testing.T) {
	env := newTestEnv(t)
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")

	plan := env.createPlan(t, creator, wgID, "New couch")
	if !plan.Goal.IsZero() {
		t.Errorf("fresh plan goal = %s, want 0", plan.Goal)
	}
}

func TestPlanGoalTracksCosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	plan := env.createPlan(t, creator, wgID, "New couch")

	plan, err := env.budget.AddCost(ctx, creator, plan.ID, AddCostRequest{
		Title: "Frame", Goal: decimal.NewFromFloat(199.99),
	})
	if err != nil {
		t.Fatalf("AddCost failed: %v", err)
	}
	plan, err = env.budget.AddCost(ctx, creator, plan.ID, AddCostRequest{
		Title: "Cushions", Goal: decimal.NewFromFloat(50.01),
	})
	if err != nil {
		t.Fatalf("AddCost failed: %v", err)
	}
	if want := decimal.NewFromInt(250); !plan.Goal.Equal(want) {
		t.Errorf("plan goal = %s, want %s", plan.Goal, want)
	}

	// Raising a cost raises the plan total.
	newGoal := decimal.NewFromInt(300)
	if _, err := env.budget.UpdateCost(ctx, creator, plan.Costs[0].ID, UpdateCostRequest{Goal: &newGoal}); err != nil {
		t.Fatalf("UpdateCost failed: %v", err)
	}
	current, err := env.budget.Get(ctx, creator, plan.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if want := decimal.NewFromFloat(350.01); !current.Goal.Equal(want) {
		t.Errorf("plan goal after raise = %s, want %s", current.Goal, want)
	}

	// Removing a cost shrinks it again.
	if err := env.budget.DeleteCost(ctx, creator, plan.Costs[1].ID); err != nil {
		t.Fatalf("DeleteCost failed: %v", err)
	}
	current, err = env.budget.Get(ctx, creator, plan.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if want := decimal.NewFromInt(300); !current.Goal.Equal(want) {
		t.Errorf("plan goal after delete = %s, want %s", current.Goal, want)
	}
}

func TestCostValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	plan := env.createPlan(t, creator, wgID, "New couch")

	_, err := env.budget.AddCost(ctx, creator, plan.ID, AddCostRequest{
		Title: "Frame", Goal: decimal.NewFromInt(-5),
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for negative goal, got %v", err)
	}
	_, err = env.budget.AddCost(ctx, creator, plan.ID, AddCostRequest{Goal: decimal.NewFromInt(5)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for missing title, got %v", err)
	}
}

func TestBudgetPlanCreatorCanManage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	other := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)
	env.addMember(t, creator, wgID, other)

	plan := env.createPlan(t, member, wgID, "New couch")

	title := "Renamed"
	if _, err := env.budget.Update(ctx, other, plan.ID, UpdateBudgetPlanRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for non-creator member update, got %v", err)
	}
	if _, err := env.budget.Update(ctx, member, plan.ID, UpdateBudgetPlanRequest{Title: &title}); err != nil {
		t.Errorf("plan creator update failed: %v", err)
	}
	if err := env.budget.Delete(ctx, creator, plan.ID); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
}

func TestPlanAssigneesReplaced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)

	plan := env.createPlan(t, creator, wgID, "New couch")

	ids := []uint{member}
	plan, err := env.budget.Update(ctx, creator, plan.ID, UpdateBudgetPlanRequest{UserIDs: &ids})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(plan.Users) != 1 || plan.Users[0].ID != member {
		t.Errorf("plan users = %+v, want just the assignee", plan.Users)
	}

	empty := []uint{}
	plan, err = env.budget.Update(ctx, creator, plan.ID, UpdateBudgetPlanRequest{UserIDs: &empty})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(plan.Users) != 0 {
		t.Errorf("plan users after clear = %+v, want none", plan.Users)
	}

	outsider := env.registerUser(t, "jerry")
	bad := []uint{outsider}
	if _, err := env.budget.Update(ctx, creator, plan.ID, UpdateBudgetPlanRequest{UserIDs: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for outsider assignee, got %v", err)
	}
}

func TestPlanUpdateRejectedAssigneesLeavePlanUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	outsider := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	plan := env.createPlan(t, creator, wgID, "Rent")

	// A bad assignee set must reject the whole update, field changes
	// included.
	title := "Deposit"
	bad := []uint{outsider}
	if _, err := env.budget.Update(ctx, creator, plan.ID, UpdateBudgetPlanRequest{Title: &title, UserIDs: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	current, err := env.budget.Get(ctx, creator, plan.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.Title != "Rent" {
		t.Errorf("plan title = %q after rejected update, want %q", current.Title, "Rent")
	}
	if len(current.Users) != 0 {
		t.Errorf("plan has %d assignees after rejected update, want 0", len(current.Users))
	}
}
