package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/domain"
)

// TaskListRepository defines the data operations for task lists and
// their tasks, including the checked-state derivation and the
// assignee propagation between a task and its parent list.
type TaskListRepository interface {
	Create(ctx context.Context, list *domain.TaskList, creator *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.TaskList, error)
	Save(ctx context.Context, list *domain.TaskList) error
	Delete(ctx context.Context, listID uint) error
	AddTask(ctx context.Context, task *domain.Task, assignees []domain.User) error
	AssignUsers(ctx context.Context, list *domain.TaskList, users []domain.User) error
	RemoveUsers(ctx context.Context, listID uint, userIDs []uint) error
	CheckAllTasks(ctx context.Context, listID uint) error
	SetChecked(ctx context.Context, listID uint, checked bool) error

	FindTask(ctx context.Context, id uint) (*domain.Task, error)
	SaveTask(ctx context.Context, task *domain.Task) error
	DeleteTask(ctx context.Context, task *domain.Task) error
	ToggleTask(ctx context.Context, task *domain.Task) error
	ReplaceTaskAssignees(ctx context.Context, task *domain.Task, users []domain.User) error
}

type gormTaskListRepository struct {
	db *gorm.DB
}

// NewGormTaskListRepository creates a GORM-backed task list repository.
func NewGormTaskListRepository(db *gorm.DB) TaskListRepository {
	return &gormTaskListRepository{db: db}
}

// Create persists the list and assigns its creator to it.
func (r *gormTaskListRepository) Create(ctx context.Context, list *domain.TaskList, creator *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(list).Error; err != nil {
			return err
		}
		return tx.Model(list).Association("Users").Append(creator)
	})
}

func (r *gormTaskListRepository) FindByID(ctx context.Context, id uint) (*domain.TaskList, error) {
	var list domain.TaskList
	err := r.db.WithContext(ctx).
		Preload("Users").
		Preload("Tasks").
		Preload("Tasks.Users").
		First(&list, id).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *gormTaskListRepository) Save(ctx context.Context, list *domain.TaskList) error {
	return r.db.WithContext(ctx).Omit("Users", "Tasks").Save(list).Error
}

func (r *gormTaskListRepository) Delete(ctx context.Context, listID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM task_users WHERE task_id IN (SELECT id FROM tasks WHERE task_list_id = ?)",
			"DELETE FROM tasks WHERE task_list_id = ?",
			"DELETE FROM tasklist_users WHERE task_list_id = ?",
		} {
			if err := tx.Exec(stmt, listID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.TaskList{}, listID).Error
	})
}

// AddTask creates the task under its list and resets the list's
// checked flag: new work invalidates a fully-done list.
func (r *gormTaskListRepository) AddTask(ctx context.Context, task *domain.Task, assignees []domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if len(assignees) > 0 {
			if err := tx.Model(task).Association("Users").Replace(assignees); err != nil {
				return err
			}
			if err := extendListUsers(tx, task.TaskListID, assignees); err != nil {
				return err
			}
		}
		return tx.Model(&domain.TaskList{}).
			Where("id = ?", task.TaskListID).
			Update("is_checked", false).Error
	})
}

func (r *gormTaskListRepository) AssignUsers(ctx context.Context, list *domain.TaskList, users []domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return extendListUsers(tx, list.ID, users)
	})
}

// RemoveUsers drops assignment rows directly from the join table, the
// single sanctioned path for bulk unassignment.
func (r *gormTaskListRepository) RemoveUsers(ctx context.Context, listID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("DELETE FROM tasklist_users WHERE task_list_id = ? AND user_id IN ?", listID, userIDs).Error
}

// CheckAllTasks marks the list checked and every contained task done.
func (r *gormTaskListRepository) CheckAllTasks(ctx context.Context, listID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Task{}).
			Where("task_list_id = ?", listID).
			Update("is_done", true).Error; err != nil {
			return err
		}
		return tx.Model(&domain.TaskList{}).
			Where("id = ?", listID).
			Update("is_checked", true).Error
	})
}

func (r *gormTaskListRepository) SetChecked(ctx context.Context, listID uint, checked bool) error {
	return r.db.WithContext(ctx).Model(&domain.TaskList{}).
		Where("id = ?", listID).
		Update("is_checked", checked).Error
}

func (r *gormTaskListRepository) FindTask(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Preload("Users").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskListRepository) SaveTask(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Users").Save(task).Error; err != nil {
			return err
		}
		return deriveListChecked(tx, task.TaskListID)
	})
}

// DeleteTask removes the task and re-derives the parent list's checked
// flag from the remaining tasks.
func (r *gormTaskListRepository) DeleteTask(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_users WHERE task_id = ?", task.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Task{}, task.ID).Error; err != nil {
			return err
		}
		return deriveListChecked(tx, task.TaskListID)
	})
}

// ToggleTask flips the task's done state and re-derives the parent
// list's checked flag: checked iff every sibling is done.
func (r *gormTaskListRepository) ToggleTask(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task.IsDone = !task.IsDone
		if err := tx.Model(&domain.Task{}).
			Where("id = ?", task.ID).
			Update("is_done", task.IsDone).Error; err != nil {
			return err
		}
		return deriveListChecked(tx, task.TaskListID)
	})
}

// ReplaceTaskAssignees swaps the task's assigned-user set for the
// given one and propagates the diff into the parent list: newly added
// users join the list's user set, removed users leave it only when no
// other task in the list still references them.
func (r *gormTaskListRepository) ReplaceTaskAssignees(ctx context.Context, task *domain.Task, users []domain.User) error {
	current := make(map[uint]bool, len(task.Users))
	for _, u := range task.Users {
		current[u.ID] = true
	}
	desired := make(map[uint]bool, len(users))
	for _, u := range users {
		desired[u.ID] = true
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(users) == 0 {
			if err := tx.Model(task).Association("Users").Clear(); err != nil {
				return err
			}
		} else if err := tx.Model(task).Association("Users").Replace(users); err != nil {
			return err
		}

		var added []domain.User
		for _, u := range users {
			if !current[u.ID] {
				added = append(added, u)
			}
		}
		if err := extendListUsers(tx, task.TaskListID, added); err != nil {
			return err
		}

		for _, u := range task.Users {
			if desired[u.ID] {
				continue
			}
			var elsewhere int64
			err := tx.Table("task_users").
				Joins("JOIN tasks ON tasks.id = task_users.task_id").
				Where("task_users.user_id = ? AND tasks.task_list_id = ? AND tasks.id <> ?", u.ID, task.TaskListID, task.ID).
				Count(&elsewhere).Error
			if err != nil {
				return err
			}
			if elsewhere == 0 {
				if err := tx.Exec("DELETE FROM tasklist_users WHERE task_list_id = ? AND user_id = ?", task.TaskListID, u.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// extendListUsers adds the given users to the list's assigned set,
// skipping users already present.
func extendListUsers(tx *gorm.DB, listID uint, users []domain.User) error {
	for _, u := range users {
		var count int64
		if err := tx.Table("tasklist_users").
			Where("task_list_id = ? AND user_id = ?", listID, u.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Exec("INSERT INTO tasklist_users (task_list_id, user_id) VALUES (?, ?)", listID, u.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// deriveListChecked recomputes a list's checked flag from its tasks:
// true only when the list is non-empty and no task remains open.
func deriveListChecked(tx *gorm.DB, listID uint) error {
	var total, open int64
	if err := tx.Model(&domain.Task{}).Where("task_list_id = ?", listID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&domain.Task{}).
		Where("task_list_id = ? AND is_done = ?", listID, false).
		Count(&open).Error; err != nil {
		return err
	}
	return tx.Model(&domain.TaskList{}).
		Where("id = ?", listID).
		Update("is_checked", total > 0 && open == 0).Error
}
