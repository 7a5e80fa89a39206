package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	Username     string `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role   `gorm:"type:varchar(10);not null" json:"role"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
	FirstName    string `gorm:"type:varchar(50)" json:"first_name,omitempty"`
	LastName     string `gorm:"type:varchar(50)" json:"last_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	CreatedTasks  []Task `gorm:"foreignKey:CreatedBy" json:"-"`
	AssignedTasks []Task `gorm:"foreignKey:AssignedTo" json:"-"`
}

// FullName returns "First Last" when both parts are set, otherwise the username.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
