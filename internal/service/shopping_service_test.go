package service

import (
	"context"
	"errors"
	"testing"
)

func (e *testEnv) createShoppingList(t *testing.T, userID, wgID uint, title string) *ShoppingListResponse {
	t.Helper()
	list, err := e.shopping.Create(context.Background(), userID, wgID, CreateShoppingListRequest{Title: title})
	if err != nil {
		t.Fatalf("failed to create shopping list: %v", err)
	}
	return list
}

func TestShoppingListMemberCanCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	outsider := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)

	if _, err := env.shopping.Create(ctx, member, wgID, CreateShoppingListRequest{Title: "Groceries"}); err != nil {
		t.Errorf("member create failed: %v", err)
	}
	if _, err := env.shopping.Create(ctx, outsider, wgID, CreateShoppingListRequest{Title: "Party"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for outsider, got %v", err)
	}
}

func TestShoppingListCreatorCanManage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	other := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)
	env.addMember(t, creator, wgID, other)

	list := env.createShoppingList(t, member, wgID, "Groceries")

	// Another plain member can neither rename nor delete.
	title := "Renamed"
	if _, err := env.shopping.Update(ctx, other, list.ID, UpdateShoppingListRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for non-creator member update, got %v", err)
	}
	if err := env.shopping.Delete(ctx, other, list.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for non-creator member delete, got %v", err)
	}

	// The list's creator and WG admins can.
	if _, err := env.shopping.Update(ctx, member, list.ID, UpdateShoppingListRequest{Title: &title}); err != nil {
		t.Errorf("list creator update failed: %v", err)
	}
	if err := env.shopping.Delete(ctx, creator, list.ID); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
}

func TestShoppingListCheckedFollowsItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createShoppingList(t, creator, wgID, "Groceries")

	list, err := env.shopping.AddItem(ctx, creator, list.ID, AddItemRequest{Title: "Milk"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	list, err = env.shopping.AddItem(ctx, creator, list.ID, AddItemRequest{Title: "Bread"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if _, err := env.shopping.ToggleItem(ctx, creator, list.Items[0].ID); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	current, err := env.shopping.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.IsChecked {
		t.Error("list checked with an unchecked item remaining")
	}

	if _, err := env.shopping.ToggleItem(ctx, creator, list.Items[1].ID); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	current, err = env.shopping.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !current.IsChecked {
		t.Error("list not checked after all items checked")
	}
}

func TestCheckShoppingListChecksItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createShoppingList(t, creator, wgID, "Groceries")

	list, err := env.shopping.AddItem(ctx, creator, list.ID, AddItemRequest{Title: "Milk"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	checked := true
	current, err := env.shopping.Update(ctx, creator, list.ID, UpdateShoppingListRequest{IsChecked: &checked})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !current.IsChecked {
		t.Error("list not checked after explicit check")
	}
	for _, item := range current.Items {
		if !item.IsChecked {
			t.Errorf("item %q left unchecked after list check", item.Title)
		}
	}

	// An explicit uncheck only reopens the list, items stay checked.
	unchecked := false
	current, err = env.shopping.Update(ctx, creator, list.ID, UpdateShoppingListRequest{IsChecked: &unchecked})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if current.IsChecked {
		t.Error("list still checked after explicit uncheck")
	}
	for _, item := range current.Items {
		if !item.IsChecked {
			t.Errorf("item %q lost its checked state on list uncheck", item.Title)
		}
	}
}

func TestAddItemReopensCheckedShoppingList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createShoppingList(t, creator, wgID, "Groceries")

	list, err := env.shopping.AddItem(ctx, creator, list.ID, AddItemRequest{Title: "Milk"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := env.shopping.ToggleItem(ctx, creator, list.Items[0].ID); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	list, err = env.shopping.AddItem(ctx, creator, list.ID, AddItemRequest{Title: "Bread"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if list.IsChecked {
		t.Error("list still checked after new item arrived")
	}
}

func TestDeleteItemRederivesShoppingList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createShoppingList(t, creator, wgID, "Groceries")

	list, err := env.shopping.AddItem(ctx, creator, list.ID, AddItemRequest{Title: "Milk"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	list, err = env.shopping.AddItem(ctx, creator, list.ID, AddItemRequest{Title: "Bread"})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := env.shopping.ToggleItem(ctx, creator, list.Items[0].ID); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}

	if err := env.shopping.DeleteItem(ctx, creator, list.Items[1].ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	current, err := env.shopping.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !current.IsChecked {
		t.Error("list not checked after deleting last unchecked item")
	}
}

func TestShoppingListCreateRejectsNonMemberAssignees(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	outsider := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)

	if _, err := env.shopping.Create(ctx, creator, wgID, CreateShoppingListRequest{Title: "Party", UserIDs: []uint{outsider}}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for outsider assignee, got %v", err)
	}

	list, err := env.shopping.Create(ctx, creator, wgID, CreateShoppingListRequest{Title: "Groceries", UserIDs: []uint{member}})
	if err != nil {
		t.Fatalf("Create with member assignee failed: %v", err)
	}
	if len(list.Users) != 1 || list.Users[0].ID != member {
		t.Errorf("assigned users = %v, want [%d]", list.Users, member)
	}
}
