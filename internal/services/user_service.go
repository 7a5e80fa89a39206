package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaustubh0601/Task-Management/internal/auth"
	"github.com/kaustubh0601/Task-Management/internal/constants"
	"github.com/kaustubh0601/Task-Management/internal/models"
	"github.com/kaustubh0601/Task-Management/internal/repository"
)

var (
	// ErrSelfDeactivation guards the admin carve-out: an admin cannot turn off
	// or remove their own account through user management.
	ErrSelfDeactivation = errors.New("you cannot deactivate your own account")
	ErrSelfDeletion     = errors.New("you cannot delete your own account")
	// ErrUserHasTasks blocks deletion while tasks still reference the user.
	ErrUserHasTasks = errors.New("user still owns or is assigned tasks")
)

// TaskStats summarizes the tasks assigned to a user.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

// UserService handles the admin-only user management surface.
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
	}
}

// ListUsersInput represents filters for the admin user listing.
type ListUsersInput struct {
	Search   string
	Role     string
	IsActive *bool
	Page     int
	Limit    int
}

// List returns a page of user accounts.
func (s *UserService) List(input ListUsersInput) ([]models.User, Pagination, error) {
	filter := repository.UserFilter{
		Search:   strings.TrimSpace(input.Search),
		IsActive: input.IsActive,
		Page:     input.Page,
		Limit:    input.Limit,
	}
	if input.Role != "" {
		role := models.Role(input.Role)
		if !role.Valid() {
			return nil, Pagination{}, (fieldErrors{"role": "role must be user or admin"}).toError()
		}
		filter.Role = &role
	}

	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list users: %w", err)
	}

	return users, NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a user together with their task statistics.
func (s *UserService) Get(userID uint64) (*models.User, *TaskStats, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	counts, err := s.taskRepo.CountByStatus(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	stats := &TaskStats{
		Pending:    counts[models.TaskStatusPending],
		InProgress: counts[models.TaskStatusInProgress],
		Completed:  counts[models.TaskStatusCompleted],
		Cancelled:  counts[models.TaskStatusCancelled],
	}
	stats.Total = stats.Pending + stats.InProgress + stats.Completed + stats.Cancelled

	return user, stats, nil
}

// CreateUserInput represents the admin form for creating an account.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	IsActive  *bool
}

// Create lets an admin provision an account with an explicit role.
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	username := normalizeUsername(input.Username)
	email := normalizeEmail(input.Email)

	fields := fieldErrors{}
	if !validUsername(username) {
		fields.add("username", fmt.Sprintf("username must be %d-%d characters",
			constants.MinUsernameLength, constants.MaxUsernameLength))
	}
	if !validEmail(email) {
		fields.add("email", "email must be a valid address")
	}
	if len(input.Password) < constants.MinPasswordLength {
		fields.add("password", fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}
	validatePersonName(fields, "first_name", input.FirstName)
	validatePersonName(fields, "last_name", input.LastName)
	role := models.RoleUser
	if input.Role != "" {
		role = models.Role(input.Role)
		if !role.Valid() {
			fields.add("role", "role must be user or admin")
		}
	}
	if err := fields.toError(); err != nil {
		return nil, err
	}

	if err := checkUniqueness(s.userRepo, username, email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     isActive,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUserInput carries a partial admin update of an account. Unlike
// self-service profile edits, admins may change email, role, and active flag.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Role      *string
	IsActive  *bool
}

// Update applies a partial update to an account. Deactivating the acting
// admin's own account is rejected.
func (s *UserService) Update(actor *models.User, userID uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.IsActive != nil && !*input.IsActive && !CanDeactivateUser(actor, userID) {
		return nil, ErrSelfDeactivation
	}

	fields := fieldErrors{}
	if input.Username != nil {
		username := normalizeUsername(*input.Username)
		if !validUsername(username) {
			fields.add("username", fmt.Sprintf("username must be %d-%d characters",
				constants.MinUsernameLength, constants.MaxUsernameLength))
		} else {
			taken, err := s.userRepo.UsernameTaken(username, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			if taken {
				return nil, ErrUsernameTaken
			}
			user.Username = username
		}
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if !validEmail(email) {
			fields.add("email", "email must be a valid address")
		} else {
			taken, err := s.userRepo.EmailTaken(email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, ErrEmailTaken
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		// Hashing runs only when the password itself changes.
		if len(*input.Password) < constants.MinPasswordLength {
			fields.add("password", fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
		} else {
			hash, err := auth.HashPassword(*input.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = hash
		}
	}
	if input.FirstName != nil {
		validatePersonName(fields, "first_name", *input.FirstName)
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		validatePersonName(fields, "last_name", *input.LastName)
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Role != nil {
		role := models.Role(*input.Role)
		if !role.Valid() {
			fields.add("role", "role must be user or admin")
		} else {
			user.Role = role
		}
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := fields.toError(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes an account. Rejected while any task references the user as
// creator or assignee, and for the acting admin's own account.
func (s *UserService) Delete(actor *models.User, userID uint64) error {
	if !CanDeleteUser(actor, userID) {
		return ErrSelfDeletion
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	referencing, err := s.taskRepo.CountReferencing(userID)
	if err != nil {
		return fmt.Errorf("failed to count referencing tasks: %w", err)
	}
	if referencing > 0 {
		return ErrUserHasTasks
	}

	if err := s.userRepo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListAssignable returns the active users a task may be assigned to. Any
// authenticated actor may call it.
func (s *UserService) ListAssignable() ([]models.User, error) {
	users, err := s.userRepo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list assignable users: %w", err)
	}
	return users, nil
}
