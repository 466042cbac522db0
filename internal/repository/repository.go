package repository

import (
	"time"

	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/utils"
)

// TaskVisibility is the scope restricting which tasks an actor may see. Admins
// see everything; everyone else only sees tasks they created or are assigned.
type TaskVisibility struct {
	ActorID uint64
	Admin   bool
}

// TaskFilter holds filtering, sorting, and pagination options for listing tasks.
// All filters compose with AND; the visibility scope is always applied.
type TaskFilter struct {
	Visibility  TaskVisibility
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *uint64
	Search      string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Sort        utils.SortParams
	Page        int
	PageSize    int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter along with the total match count
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error

	// StatusCounts returns per-status task counts within the visibility scope
	StatusCounts(vis TaskVisibility) (map[models.TaskStatus]int64, error)

	// PriorityCounts returns per-priority task counts within the visibility scope
	PriorityCounts(vis TaskVisibility) (map[models.TaskPriority]int64, error)

	// CountOverdue counts unfinished tasks whose due date has passed
	CountOverdue(vis TaskVisibility, now time.Time) (int64, error)

	// CountDueBetween counts unfinished tasks due in [from, to)
	CountDueBetween(vis TaskVisibility, from, to time.Time) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// ListAll lists every user
	ListAll() ([]models.User, error)

	// UpdateRole sets a user's role
	UpdateRole(id uint64, role models.Role) error
}

// ActivityLogRepository defines the interface for the append-only audit store.
// There are deliberately no update or delete operations.
type ActivityLogRepository interface {
	// Append inserts a new audit entry
	Append(entry *models.ActivityLog) error

	// List returns entries newest first along with the total entry count
	List(params utils.PaginationParams) ([]models.ActivityLog, int64, error)
}
