package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// TagList is stored as a JSON-encoded text column so it works across drivers.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tag list type %T", value)
	}
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(100);not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;index" json:"priority"`
	DueDate     time.Time    `gorm:"not null;index" json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at"`
	CreatedBy   uint64       `gorm:"not null;index" json:"created_by"`
	AssignedTo  uint64       `gorm:"not null;index" json:"assigned_to"`
	Tags        TagList      `gorm:"type:text" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Creator  User   `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignee User   `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Notes    []Note `gorm:"foreignKey:TaskID" json:"notes,omitempty"`
}

// ApplyStatus writes a status onto the task and keeps CompletedAt in sync:
// it is non-nil exactly while the task is completed. Idempotent, so repeating
// the same status leaves an already-set completion timestamp untouched.
func ApplyStatus(task *Task, status TaskStatus, now time.Time) {
	task.Status = status
	if status == TaskStatusCompleted {
		if task.CompletedAt == nil {
			completedAt := now
			task.CompletedAt = &completedAt
		}
		return
	}
	task.CompletedAt = nil
}

// TaskView holds fields derived at read time, never persisted.
type TaskView struct {
	IsOverdue     bool   `json:"is_overdue"`
	DaysUntilDue  int    `json:"days_until_due"`
	PriorityColor string `json:"priority_color"`
}

var priorityColors = map[TaskPriority]string{
	TaskPriorityLow:    "#28a745",
	TaskPriorityMedium: "#ffc107",
	TaskPriorityHigh:   "#fd7e14",
	TaskPriorityUrgent: "#dc3545",
}

// DeriveView computes the read-time projection of a task. A completed task is
// never overdue, whatever its due date. DaysUntilDue counts calendar days and
// goes negative once the due date is in the past.
func DeriveView(task *Task, now time.Time) TaskView {
	return TaskView{
		IsOverdue:     task.Status != TaskStatusCompleted && now.After(task.DueDate),
		DaysUntilDue:  daysBetween(now, task.DueDate),
		PriorityColor: priorityColors[task.Priority],
	}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(StartOfDay(to).Sub(StartOfDay(from)).Hours() / 24)
}
