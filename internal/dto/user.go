package dto

import (
	"time"

	"github.com/kaustubh0601/Task-Management/internal/models"
)

// UserDTO represents a user in API responses. The password hash never leaves
// the service.
type UserDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	FullName  string      `json:"full_name"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AssignableUserDTO is the minimal shape offered to assignee pickers.
type AssignableUserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// UserListResponse represents a paginated list of users.
type UserListResponse struct {
	Users      []UserDTO     `json:"users"`
	Pagination PaginationDTO `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToAssignableUserDTO converts a User model to AssignableUserDTO
func ToAssignableUserDTO(user models.User) AssignableUserDTO {
	return AssignableUserDTO{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName(),
		Email:    user.Email,
	}
}

// ToUserListResponse converts a page of users to UserListResponse
func ToUserListResponse(users []models.User, pagination PaginationDTO) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return UserListResponse{
		Users:      items,
		Pagination: pagination,
	}
}
