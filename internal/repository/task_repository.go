package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/kaustubh0601/Task-Management/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// taskSortColumns whitelists the sortable columns. Caller input that is not a
// key here falls back to the due-date default.
var taskSortColumns = map[string]string{
	"due_date":   "due_date",
	"created_at": "created_at",
	"priority":   "priority",
	"status":     "status",
	"title":      "title",
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("(LOWER(title) LIKE LOWER(?) ESCAPE '!' OR LOWER(description) LIKE LOWER(?) ESCAPE '!')", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := taskSortColumns[filter.SortBy]
	if !ok {
		column = "due_date"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}

	// Secondary id sort keeps pages stable when the sort column ties.
	listQuery := query.Order(column + " " + direction + ", id ASC")
	if filter.Page > 0 && filter.Limit > 0 {
		listQuery = listQuery.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var tasks []models.Task
	if err := listQuery.Preload("Creator").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update persists all fields of a task (last writer wins)
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task together with its notes
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

// AddNote appends a note to a task
func (r *GormTaskRepository) AddNote(note *models.Note) error {
	return r.db.Create(note).Error
}

// CountReferencing counts tasks that reference the user as creator or assignee
func (r *GormTaskRepository) CountReferencing(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("created_by = ? OR assigned_to = ?", userID, userID).
		Count(&count).Error
	return count, err
}

// CountByStatus returns per-status counts of tasks assigned to the user
func (r *GormTaskRepository) CountByStatus(userID uint64) (map[models.TaskStatus]int64, error) {
	type row struct {
		Status models.TaskStatus
		Count  int64
	}

	var rows []row
	err := r.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("assigned_to = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// escapeLike neutralizes LIKE wildcards in user-supplied search text. The
// escape character is '!' rather than backslash: SQLite's LIKE has no default
// escape character, and a literal backslash cannot be written the same way in
// MySQL and Postgres quoting, so every LIKE predicate declares ESCAPE '!'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "!", "!!")
	s = strings.ReplaceAll(s, "%", "!%")
	return strings.ReplaceAll(s, "_", "!_")
}
