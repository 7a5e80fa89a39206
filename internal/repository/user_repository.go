package repository

import (
	"gorm.io/gorm"

	"github.com/kaustubh0601/Task-Management/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users with filtering and pagination
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(
			"(LOWER(username) LIKE LOWER(?) ESCAPE '!' OR LOWER(email) LIKE LOWER(?) ESCAPE '!' OR LOWER(first_name) LIKE LOWER(?) ESCAPE '!' OR LOWER(last_name) LIKE LOWER(?) ESCAPE '!')",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	listQuery := query.Order("username ASC, id ASC")
	if filter.Page > 0 && filter.Limit > 0 {
		listQuery = listQuery.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}
	if err := listQuery.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListActive returns every active user, ordered by username
func (r *GormUserRepository) ListActive() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("is_active = ?", true).Order("username ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update persists all fields of a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete hard deletes a user
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Delete(&models.User{}, id).Error
}

// UsernameTaken reports whether another user already holds the username
func (r *GormUserRepository) UsernameTaken(username string, excludeID uint64) (bool, error) {
	return r.taken("username", username, excludeID)
}

// EmailTaken reports whether another user already holds the email
func (r *GormUserRepository) EmailTaken(email string, excludeID uint64) (bool, error) {
	return r.taken("email", email, excludeID)
}

func (r *GormUserRepository) taken(column, value string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
