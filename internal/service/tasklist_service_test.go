package service

import (
	"context"
	"errors"
	"testing"
)

func (e *testEnv) createList(t *testing.T, adminID, wgID uint, title string) *TaskListResponse {
	t.Helper()
	list, err := e.lists.Create(context.Background(), adminID, wgID, CreateTaskListRequest{Title: title})
	if err != nil {
		t.Fatalf("failed to create task list: %v", err)
	}
	return list
}

func TestTaskListPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	outsider := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)

	// Any member can create a list, outsiders cannot.
	if _, err := env.lists.Create(ctx, outsider, wgID, CreateTaskListRequest{Title: "Chores"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for outsider create, got %v", err)
	}
	list, err := env.lists.Create(ctx, member, wgID, CreateTaskListRequest{Title: "Chores"})
	if err != nil {
		t.Fatalf("member create failed: %v", err)
	}

	// Members can view, outsiders cannot.
	if _, err := env.lists.Get(ctx, member, list.ID); err != nil {
		t.Errorf("member Get failed: %v", err)
	}
	if _, err := env.lists.Get(ctx, outsider, list.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for outsider, got %v", err)
	}

	// Members add and toggle tasks; task update and delete stay
	// admin-only.
	updated, err := env.lists.AddTask(ctx, member, list.ID, AddTaskRequest{Title: "Dishes"})
	if err != nil {
		t.Fatalf("member AddTask failed: %v", err)
	}
	if _, err := env.lists.ToggleTask(ctx, member, updated.Tasks[0].ID); err != nil {
		t.Errorf("member ToggleTask failed: %v", err)
	}
	if _, err := env.lists.ToggleTask(ctx, outsider, updated.Tasks[0].ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for outsider toggle, got %v", err)
	}
	name := "Scrub dishes"
	if _, err := env.lists.UpdateTask(ctx, member, updated.Tasks[0].ID, UpdateTaskRequest{Title: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for member task update, got %v", err)
	}
	if err := env.lists.DeleteTask(ctx, member, updated.Tasks[0].ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for member task delete, got %v", err)
	}
	// List update and delete are admin operations.
	if _, err := env.lists.Update(ctx, member, list.ID, UpdateTaskListRequest{Title: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for member list update, got %v", err)
	}
	if err := env.lists.Delete(ctx, member, list.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden for member list delete, got %v", err)
	}
}

func TestListCheckedFollowsTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createList(t, creator, wgID, "Chores")

	list, err := env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Dishes"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	list, err = env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Vacuum"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	// Completing one of two tasks leaves the list open.
	if _, err := env.lists.ToggleTask(ctx, creator, list.Tasks[0].ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}
	current, err := env.lists.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.IsChecked {
		t.Error("list checked with an open task remaining")
	}

	// Completing the last task checks the list.
	if _, err := env.lists.ToggleTask(ctx, creator, list.Tasks[1].ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}
	current, err = env.lists.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !current.IsChecked {
		t.Error("list not checked after all tasks done")
	}

	// Reopening any task unchecks the list again.
	if _, err := env.lists.ToggleTask(ctx, creator, list.Tasks[0].ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}
	current, err = env.lists.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.IsChecked {
		t.Error("list still checked after reopening a task")
	}
}

func TestAddTaskReopensCheckedList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createList(t, creator, wgID, "Chores")

	list, err := env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Dishes"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if _, err := env.lists.ToggleTask(ctx, creator, list.Tasks[0].ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}

	list, err = env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Vacuum"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if list.IsChecked {
		t.Error("list still checked after new task arrived")
	}
}

func TestCheckAllMarksEveryTaskDone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createList(t, creator, wgID, "Chores")

	for _, title := range []string{"Dishes", "Vacuum", "Trash"} {
		var err error
		list, err = env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: title})
		if err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}
	}

	checked, err := env.lists.CheckAll(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("CheckAll failed: %v", err)
	}
	if !checked.IsChecked {
		t.Error("list not checked after CheckAll")
	}
	for _, task := range checked.Tasks {
		if !task.IsDone {
			t.Errorf("task %q left open after CheckAll", task.Title)
		}
	}
}

func TestTaskAssigneesPropagateToList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)
	list := env.createList(t, creator, wgID, "Chores")

	// Assigning a task pulls the user into the list's user set.
	list, err := env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{
		Title:       "Dishes",
		AssigneeIDs: []uint{member},
	})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	listUsers := map[uint]bool{}
	for _, u := range list.Users {
		listUsers[u.ID] = true
	}
	if !listUsers[member] {
		t.Errorf("list users = %+v, want assignee included", list.Users)
	}

	// Dropping the only assignment removes the user from the list too.
	taskID := list.Tasks[0].ID
	empty := []uint{}
	if _, err := env.lists.UpdateTask(ctx, creator, taskID, UpdateTaskRequest{AssigneeIDs: &empty}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	list, err = env.lists.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for _, u := range list.Users {
		if u.ID == member {
			t.Error("user still assigned to list after losing last task")
		}
	}
}

func TestTaskAssigneeKeptWhileOtherTaskRemains(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	member := env.registerUser(t, "rick")
	wgID := env.createWG(t, creator, "Sunshine")
	env.addMember(t, creator, wgID, member)
	list := env.createList(t, creator, wgID, "Chores")

	list, err := env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Dishes", AssigneeIDs: []uint{member}})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	list, err = env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Vacuum", AssigneeIDs: []uint{member}})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	// Unassigning one of two tasks keeps the user on the list.
	empty := []uint{}
	if _, err := env.lists.UpdateTask(ctx, creator, list.Tasks[0].ID, UpdateTaskRequest{AssigneeIDs: &empty}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	current, err := env.lists.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	found := false
	for _, u := range current.Users {
		if u.ID == member {
			found = true
		}
	}
	if !found {
		t.Error("user dropped from list despite remaining task assignment")
	}
}

func TestAssignRejectsNonMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	outsider := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createList(t, creator, wgID, "Chores")

	_, err := env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Dishes", AssigneeIDs: []uint{outsider}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for non-member assignee, got %v", err)
	}
}

func TestDeleteTaskRederivesList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createList(t, creator, wgID, "Chores")

	list, err := env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Dishes"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	list, err = env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Vacuum"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if _, err := env.lists.ToggleTask(ctx, creator, list.Tasks[0].ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}

	// Deleting the only open task leaves the list fully done.
	if err := env.lists.DeleteTask(ctx, creator, list.Tasks[1].ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	current, err := env.lists.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !current.IsChecked {
		t.Error("list not checked after deleting last open task")
	}
}

func TestUpdateTaskRejectedAssigneesLeaveTaskUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.registerUser(t, "mona")
	outsider := env.registerUser(t, "summer")
	wgID := env.createWG(t, creator, "Sunshine")
	list := env.createList(t, creator, wgID, "Chores")

	list, err := env.lists.AddTask(ctx, creator, list.ID, AddTaskRequest{Title: "Dishes"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	taskID := list.Tasks[0].ID

	// A bad assignee set must reject the whole update, field changes
	// included.
	name := "Scrub dishes"
	bad := []uint{outsider}
	if _, err := env.lists.UpdateTask(ctx, creator, taskID, UpdateTaskRequest{Title: &name, AssigneeIDs: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	current, err := env.lists.Get(ctx, creator, list.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.Tasks[0].Title != "Dishes" {
		t.Errorf("task title = %q after rejected update, want %q", current.Tasks[0].Title, "Dishes")
	}
	if len(current.Tasks[0].Users) != 0 {
		t.Errorf("task has %d assignees after rejected update, want 0", len(current.Tasks[0].Users))
	}
}
