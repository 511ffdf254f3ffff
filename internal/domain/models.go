// Package domain holds the persistent entities of the WG backend.
//
// A WG (Wohngemeinschaft) is the tenancy boundary: it owns task lists,
// shopping lists and budget plans, which in turn own their tasks, items
// and costs. Parent entities hold the lifetime of their children; user
// assignment sets are non-owning many-to-many edges kept in explicit
// join tables.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account. Username and email are globally unique. HomeWGID
// is an optional "home page" preference pointing at one of the user's
// WGs; it is cleared when the user leaves that WG.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	HomeWGID     *uint     `json:"home_wg_id"`

	WGs      []WG `gorm:"many2many:wg_users" json:"-"`
	AdminWGs []WG `gorm:"many2many:wg_admins" json:"-"`
}

// WG is a shared-living group. The creator is always a member; admins
// are a subset of members with elevated rights, and the creator counts
// as admin-equivalent whether or not an admin row exists.
type WG struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Title       string `gorm:"size:120;not null;uniqueIndex" json:"title"`
	Address     string `gorm:"size:255;not null;uniqueIndex:idx_wg_address_floor" json:"address"`
	Floor       string `gorm:"size:20;not null;uniqueIndex:idx_wg_address_floor" json:"floor"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:true" json:"is_public"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`
	Creator     *User  `gorm:"foreignKey:CreatorID" json:"-"`

	Users  []User `gorm:"many2many:wg_users" json:"-"`
	Admins []User `gorm:"many2many:wg_admins" json:"-"`

	TaskLists     []TaskList     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ShoppingLists []ShoppingList `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	BudgetPlans   []BudgetPlan   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TaskList groups tasks within a WG. IsChecked is derived: true iff
// every task is done. The assigned-user set grants visibility and is
// kept a superset of the assignee sets of all contained tasks.
type TaskList struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"size:120;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Date        *time.Time `json:"date"`
	IsChecked   bool       `gorm:"default:false" json:"is_checked"`
	WGID        uint       `gorm:"not null;index" json:"wg_id"`

	Users []User `gorm:"many2many:tasklist_users" json:"-"`
	Tasks []Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Task is a single unit of work. IsTemplate is reserved for reusable
// templates and never set through the public surface.
type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"size:120;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsDone      bool       `gorm:"default:false" json:"is_done"`
	IsTemplate  bool       `gorm:"default:false" json:"is_template"`
	TaskListID  uint       `gorm:"not null;index" json:"tasklist_id"`

	Users []User `gorm:"many2many:task_users" json:"-"`
}

// ShoppingList groups items within a WG. Unlike a TaskList its checked
// flag is not purely derived: the list-level check endpoint may force
// it while items keep their own state.
type ShoppingList struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"size:120;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Date        *time.Time `json:"date"`
	IsChecked   bool       `gorm:"default:false" json:"is_checked"`
	CreatorID   uint       `gorm:"not null" json:"creator_id"`
	WGID        uint       `gorm:"not null;index" json:"wg_id"`

	Users []User `gorm:"many2many:shoppinglist_users" json:"-"`
	Items []Item `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Item is a single shopping list entry.
type Item struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	Title          string `gorm:"size:120;not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	IsChecked      bool   `gorm:"default:false" json:"is_checked"`
	ShoppingListID uint   `gorm:"not null;index" json:"shoppinglist_id"`
}

// BudgetPlan is a savings goal within a WG. Goal is an aggregate kept
// equal to the sum of the child costs' goals; it is never written
// directly.
type BudgetPlan struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Title       string          `gorm:"size:120;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	Goal        decimal.Decimal `gorm:"type:numeric(12,2)" json:"goal"`
	Deadline    *time.Time      `json:"deadline"`
	CreatorID   uint            `gorm:"not null" json:"creator_id"`
	WGID        uint            `gorm:"not null;index" json:"wg_id"`

	Users []User `gorm:"many2many:budgetplan_users" json:"-"`
	Costs []Cost `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Cost is a single expense line under a budget plan. Paid is tracked
// per cost and never aggregated upward.
type Cost struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Title        string          `gorm:"size:120;not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Goal         decimal.Decimal `gorm:"type:numeric(12,2)" json:"goal"`
	Paid         decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"paid"`
	BudgetPlanID uint            `gorm:"not null;index" json:"budgetplan_id"`

	Users []User `gorm:"many2many:cost_users" json:"-"`
}

// Models lists every entity for schema migration, parents before
// children so foreign keys resolve.
func Models() []any {
	return []any{
		&User{}, &WG{},
		&TaskList{}, &Task{},
		&ShoppingList{}, &Item{},
		&BudgetPlan{}, &Cost{},
	}
}
