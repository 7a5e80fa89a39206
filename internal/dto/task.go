package dto

import (
	"time"

	"github.com/kaustubh0601/Task-Management/internal/models"
	"github.com/kaustubh0601/Task-Management/internal/services"
)

// NoteDTO represents a task note in API responses
type NoteDTO struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  uint64    `json:"author_id"`
	Author    *UserDTO  `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDTO represents a task in API responses together with its read-time
// derived fields.
type TaskDTO struct {
	ID            uint64              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	DueDate       time.Time           `json:"due_date"`
	CompletedAt   *time.Time          `json:"completed_at"`
	CreatedBy     uint64              `json:"created_by"`
	AssignedTo    uint64              `json:"assigned_to"`
	Tags          []string            `json:"tags"`
	IsOverdue     bool                `json:"is_overdue"`
	DaysUntilDue  int                 `json:"days_until_due"`
	PriorityColor string              `json:"priority_color"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Creator       *UserDTO            `json:"creator,omitempty"`
	Assignee      *UserDTO            `json:"assignee,omitempty"`
	Notes         []NoteDTO           `json:"notes,omitempty"`
}

// PaginationDTO represents page metadata in API responses
type PaginationDTO struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO     `json:"tasks"`
	Pagination PaginationDTO `json:"pagination"`
}

// ToNoteDTO converts a Note model to NoteDTO
func ToNoteDTO(note models.Note) NoteDTO {
	dto := NoteDTO{
		ID:        note.ID,
		Text:      note.Text,
		AuthorID:  note.AuthorID,
		CreatedAt: note.CreatedAt,
	}
	if note.Author.ID != 0 {
		author := ToUserDTO(note.Author)
		dto.Author = &author
	}
	return dto
}

// ToTaskDTO converts a Task model to TaskDTO, computing the derived fields
// against the given clock.
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	view := models.DeriveView(&task, now)

	dto := TaskDTO{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		Priority:      task.Priority,
		DueDate:       task.DueDate,
		CompletedAt:   task.CompletedAt,
		CreatedBy:     task.CreatedBy,
		AssignedTo:    task.AssignedTo,
		Tags:          task.Tags,
		IsOverdue:     view.IsOverdue,
		DaysUntilDue:  view.DaysUntilDue,
		PriorityColor: view.PriorityColor,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}

	// Include relations if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}
	if task.Assignee.ID != 0 {
		assignee := ToUserDTO(task.Assignee)
		dto.Assignee = &assignee
	}
	if len(task.Notes) > 0 {
		dto.Notes = make([]NoteDTO, len(task.Notes))
		for i, note := range task.Notes {
			dto.Notes[i] = ToNoteDTO(note)
		}
	}

	return dto
}

// ToPaginationDTO converts service pagination metadata to its response shape
func ToPaginationDTO(p services.Pagination) PaginationDTO {
	return PaginationDTO{
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Total:       p.Total,
		HasNext:     p.HasNext,
		HasPrev:     p.HasPrev,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, pagination services.Pagination, now time.Time) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, now)
	}
	return TaskListResponse{
		Tasks:      items,
		Pagination: ToPaginationDTO(pagination),
	}
}
