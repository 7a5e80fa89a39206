package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kaustubh0601/Task-Management/internal/auth"
	"github.com/kaustubh0601/Task-Management/internal/constants"
	"github.com/kaustubh0601/Task-Management/internal/models"
	"github.com/kaustubh0601/Task-Management/internal/repository"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	// ErrInvalidCredentials covers an unknown email, a wrong password, and a
	// deactivated account alike, so login responses cannot be used to probe
	// which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles registration, login, and self-profile management.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// RegisterInput represents the required information to create a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a new active user with the default role.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
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

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries the self-editable profile fields. Role, active
// flag, and email are not self-editable.
type UpdateProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
}

// UpdateProfile applies profile changes to the actor's own account.
func (s *AuthService) UpdateProfile(actor *models.User, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(actor.ID)
	if err != nil {
		return nil, err
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
	if input.FirstName != nil {
		validatePersonName(fields, "first_name", *input.FirstName)
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		validatePersonName(fields, "last_name", *input.LastName)
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if err := fields.toError(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePersonName(fields fieldErrors, field, value string) {
	if len(strings.TrimSpace(value)) > constants.MaxPersonNameLength {
		fields.add(field, fmt.Sprintf("%s must be at most %d characters", field, constants.MaxPersonNameLength))
	}
}
