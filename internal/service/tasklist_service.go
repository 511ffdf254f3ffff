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

// CreateTaskListRequest holds the data for a new task list.
type CreateTaskListRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
}

// UpdateTaskListRequest carries optional task list changes.
type UpdateTaskListRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	IsChecked   *bool      `json:"is_checked"`
}

// AddTaskRequest holds the data for a new task inside a list.
type AddTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	AssigneeIDs []uint     `json:"assignee_ids"`
}

// UpdateTaskRequest carries optional task changes. AssigneeIDs, when
// present, replaces the task's assigned-user set wholesale.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsDone      *bool      `json:"is_done"`
	AssigneeIDs *[]uint    `json:"assignee_ids"`
}

// AssignUsersRequest names users to add to or remove from a list's
// assigned set.
type AssignUsersRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// TaskResponse is the wire representation of a task.
type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsDone      bool       `json:"is_done"`
	Users       []UserRef  `json:"users"`
}

// TaskListResponse is the wire representation of a task list.
type TaskListResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        *time.Time     `json:"date,omitempty"`
	IsChecked   bool           `json:"is_checked"`
	WGID        uint           `json:"wg_id"`
	Users       []UserRef      `json:"users"`
	Tasks       []TaskResponse `json:"tasks"`
}

// TaskListService manages task lists and the tasks they contain.
type TaskListService interface {
	Create(ctx context.Context, userID, wgID uint, req CreateTaskListRequest) (*TaskListResponse, error)
	Get(ctx context.Context, userID, listID uint) (*TaskListResponse, error)
	Update(ctx context.Context, userID, listID uint, req UpdateTaskListRequest) (*TaskListResponse, error)
	Delete(ctx context.Context, userID, listID uint) error
	AddTask(ctx context.Context, userID, listID uint, req AddTaskRequest) (*TaskListResponse, error)
	AssignUsers(ctx context.Context, userID, listID uint, req AssignUsersRequest) (*TaskListResponse, error)
	RemoveUsers(ctx context.Context, userID, listID uint, req AssignUsersRequest) (*TaskListResponse, error)
	CheckAll(ctx context.Context, userID, listID uint) (*TaskListResponse, error)
	UpdateTask(ctx context.Context, userID, taskID uint, req UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, userID, taskID uint) error
	ToggleTask(ctx context.Context, userID, taskID uint) (*TaskResponse, error)
}

type taskListService struct {
	lists  repository.TaskListRepository
	groups repository.GroupRepository
	users  repository.UserRepository
}

// NewTaskListService creates the task list service.
func NewTaskListService(lists repository.TaskListRepository, groups repository.GroupRepository, users repository.UserRepository) TaskListService {
	return &taskListService{lists: lists, groups: groups, users: users}
}

func newTaskResponse(task *domain.Task) *TaskResponse {
	return &TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		IsDone:      task.IsDone,
		Users:       userRefs(task.Users),
	}
}

func newTaskListResponse(list *domain.TaskList) *TaskListResponse {
	resp := &TaskListResponse{
		ID:          list.ID,
		Title:       list.Title,
		Description: list.Description,
		Date:        list.Date,
		IsChecked:   list.IsChecked,
		WGID:        list.WGID,
		Users:       userRefs(list.Users),
		Tasks:       make([]TaskResponse, 0, len(list.Tasks)),
	}
	for i := range list.Tasks {
		resp.Tasks = append(resp.Tasks, *newTaskResponse(&list.Tasks[i]))
	}
	return resp
}

// loadList resolves a task list together with its WG, which carries
// the membership sets the permission checks need.
func (s *taskListService) loadList(ctx context.Context, listID uint) (*domain.TaskList, *domain.WG, error) {
	list, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: task list", ErrNotFound)
		}
		return nil, nil, err
	}
	wg, err := s.groups.FindByID(ctx, list.WGID)
	if err != nil {
		return nil, nil, err
	}
	return list, wg, nil
}

func (s *taskListService) loadTask(ctx context.Context, taskID uint) (*domain.Task, *domain.WG, error) {
	task, err := s.lists.FindTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: task", ErrNotFound)
		}
		return nil, nil, err
	}
	list, err := s.lists.FindByID(ctx, task.TaskListID)
	if err != nil {
		return nil, nil, err
	}
	wg, err := s.groups.FindByID(ctx, list.WGID)
	if err != nil {
		return nil, nil, err
	}
	return task, wg, nil
}

// Create opens a new task list. Any WG member can create one; the
// creator is auto-assigned to it.
func (s *taskListService) Create(ctx context.Context, userID, wgID uint, req CreateTaskListRequest) (*TaskListResponse, error) {
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

	creator, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := &domain.TaskList{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		WGID:        wg.ID,
	}
	if err := s.lists.Create(ctx, list, creator); err != nil {
		return nil, fmt.Errorf("failed to create task list: %w", err)
	}
	slog.Info("task list created", "list_id", list.ID, "wg_id", wg.ID, "by", userID)
	return s.reload(ctx, list.ID)
}

func (s *taskListService) Get(ctx context.Context, userID, listID uint) (*TaskListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	return newTaskListResponse(list), nil
}

// Update renames the list or overrides its checked flag. Checking the
// list by hand marks every contained task done.
func (s *taskListService) Update(ctx context.Context, userID, listID uint, req UpdateTaskListRequest) (*TaskListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAdmin(wg, userID) {
		return nil, fmt.Errorf("%w: admin required", ErrForbidden)
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
			return nil, fmt.Errorf("failed to update task list: %w", err)
		}
	}
	if req.IsChecked != nil {
		if *req.IsChecked {
			if err := s.lists.CheckAllTasks(ctx, list.ID); err != nil {
				return nil, fmt.Errorf("failed to check task list: %w", err)
			}
		} else if err := s.lists.SetChecked(ctx, list.ID, false); err != nil {
			return nil, fmt.Errorf("failed to uncheck task list: %w", err)
		}
	}
	return s.reload(ctx, list.ID)
}

func (s *taskListService) Delete(ctx context.Context, userID, listID uint) error {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}
	if !policy.IsAdmin(wg, userID) {
		return fmt.Errorf("%w: admin required", ErrForbidden)
	}
	if err := s.lists.Delete(ctx, list.ID); err != nil {
		return fmt.Errorf("failed to delete task list: %w", err)
	}
	slog.Info("task list deleted", "list_id", listID, "by", userID)
	return nil
}

// AddTask creates a task in the list. Any WG member can add one;
// assignees must be WG members and are propagated into the list's
// assigned-user set.
func (s *taskListService) AddTask(ctx context.Context, userID, listID uint, req AddTaskRequest) (*TaskListResponse, error) {
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
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: end date must not precede start date", ErrValidation)
	}

	assignees, err := memberUsers(ctx, s.users, wg, req.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TaskListID:  list.ID,
	}
	if err := s.lists.AddTask(ctx, task, assignees); err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}
	slog.Info("task added", "task_id", task.ID, "list_id", list.ID, "by", userID)
	return s.reload(ctx, list.ID)
}

func (s *taskListService) AssignUsers(ctx context.Context, userID, listID uint, req AssignUsersRequest) (*TaskListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAdmin(wg, userID) {
		return nil, fmt.Errorf("%w: admin required", ErrForbidden)
	}
	users, err := memberUsers(ctx, s.users, wg, req.UserIDs)
	if err != nil {
		return nil, err
	}
	if err := s.lists.AssignUsers(ctx, list, users); err != nil {
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}
	return s.reload(ctx, list.ID)
}

func (s *taskListService) RemoveUsers(ctx context.Context, userID, listID uint, req AssignUsersRequest) (*TaskListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAdmin(wg, userID) {
		return nil, fmt.Errorf("%w: admin required", ErrForbidden)
	}
	if err := s.lists.RemoveUsers(ctx, list.ID, req.UserIDs); err != nil {
		return nil, fmt.Errorf("failed to remove users: %w", err)
	}
	return s.reload(ctx, list.ID)
}

// CheckAll marks the whole list done, tasks included. Allowed for WG
// admins and users assigned to the list.
func (s *taskListService) CheckAll(ctx context.Context, userID, listID uint) (*TaskListResponse, error) {
	list, wg, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	assigned := false
	for _, u := range list.Users {
		if u.ID == userID {
			assigned = true
			break
		}
	}
	if !assigned && !policy.IsAdmin(wg, userID) {
		return nil, fmt.Errorf("%w: admin or assigned user required", ErrForbidden)
	}
	if err := s.lists.CheckAllTasks(ctx, list.ID); err != nil {
		return nil, fmt.Errorf("failed to check task list: %w", err)
	}
	return s.reload(ctx, list.ID)
}

func (s *taskListService) UpdateTask(ctx context.Context, userID, taskID uint, req UpdateTaskRequest) (*TaskResponse, error) {
	task, wg, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.IsAdmin(wg, userID) {
		return nil, fmt.Errorf("%w: admin required", ErrForbidden)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.StartDate != nil {
		task.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		task.EndDate = req.EndDate
	}
	if req.IsDone != nil {
		task.IsDone = *req.IsDone
	}
	if task.StartDate != nil && task.EndDate != nil && task.EndDate.Before(*task.StartDate) {
		return nil, fmt.Errorf("%w: end date must not precede start date", ErrValidation)
	}

	// Resolve the assignee set before writing anything so a bad id
	// cannot leave the field changes half applied.
	var assignees []domain.User
	if req.AssigneeIDs != nil {
		assignees, err = memberUsers(ctx, s.users, wg, *req.AssigneeIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.lists.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if req.AssigneeIDs != nil {
		if err := s.lists.ReplaceTaskAssignees(ctx, task, assignees); err != nil {
			return nil, fmt.Errorf("failed to update task assignees: %w", err)
		}
	}

	updated, err := s.lists.FindTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return newTaskResponse(updated), nil
}

func (s *taskListService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	task, wg, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !policy.IsAdmin(wg, userID) {
		return fmt.Errorf("%w: admin required", ErrForbidden)
	}
	if err := s.lists.DeleteTask(ctx, task); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	slog.Info("task deleted", "task_id", taskID, "by", userID)
	return nil
}

// ToggleTask flips a task's done state. Any WG member may toggle;
// the parent list's checked flag follows from its tasks.
func (s *taskListService) ToggleTask(ctx context.Context, userID, taskID uint) (*TaskResponse, error) {
	task, wg, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.IsMember(wg, userID) {
		return nil, fmt.Errorf("%w: membership required", ErrForbidden)
	}
	if err := s.lists.ToggleTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	updated, err := s.lists.FindTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return newTaskResponse(updated), nil
}

func (s *taskListService) reload(ctx context.Context, listID uint) (*TaskListResponse, error) {
	list, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	return newTaskListResponse(list), nil
}
