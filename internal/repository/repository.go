package repository

import (
	"github.com/kaustubh0601/Task-Management/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users with filtering and pagination
	List(filter UserFilter) ([]models.User, int64, error)

	// ListActive returns every active user, ordered by username
	ListActive() ([]models.User, error)

	// Update persists all fields of a user
	Update(user *models.User) error

	// Delete hard deletes a user
	Delete(id uint64) error

	// UsernameTaken reports whether another user already holds the username
	UsernameTaken(username string, excludeID uint64) (bool, error)

	// EmailTaken reports whether another user already holds the email
	EmailTaken(email string, excludeID uint64) (bool, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Search   string
	Role     *models.Role
	IsActive *bool
	Page     int
	Limit    int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering, sorting and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists all fields of a task (last writer wins)
	Update(task *models.Task) error

	// Delete removes a task together with its notes
	Delete(id uint64) error

	// AddNote appends a note to a task
	AddNote(note *models.Note) error

	// CountReferencing counts tasks that reference the user as creator or assignee
	CountReferencing(userID uint64) (int64, error)

	// CountByStatus returns per-status counts of tasks assigned to the user
	CountByStatus(userID uint64) (map[models.TaskStatus]int64, error)
}

// TaskFilter holds filtering options for listing tasks. Field filters are
// exact matches; Search is a case-insensitive substring over title and
// description. SortBy is resolved against a column whitelist, never
// interpolated from caller input.
type TaskFilter struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssignedTo *uint64
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}
