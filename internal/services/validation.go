package services

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/kaustubh0601/Task-Management/internal/constants"
	"github.com/kaustubh0601/Task-Management/internal/repository"
)

// ValidationError aggregates every field-level problem of a request into one
// failure instead of stopping at the first.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// fieldErrors collects per-field messages and converts to a ValidationError
// once validation is complete.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) toError() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validUsername(username string) bool {
	return len(username) >= constants.MinUsernameLength && len(username) <= constants.MaxUsernameLength
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// checkUniqueness rejects a username or email another record already holds,
// excluding the record being updated itself.
func checkUniqueness(userRepo repository.UserRepository, username, email string, excludeID uint64) error {
	taken, err := userRepo.UsernameTaken(username, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}

	taken, err = userRepo.EmailTaken(email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}

	return nil
}
