package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kaustubh0601/Task-Management/internal/constants"
	"github.com/kaustubh0601/Task-Management/internal/models"
	"github.com/kaustubh0601/Task-Management/internal/repository"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskForbidden    = errors.New("you do not have access to this task")
	ErrAssigneeNotFound = errors.New("assignee does not resolve to an existing user")
)

// taskPreloads are the relations loaded for single-task responses.
var taskPreloads = []string{"Creator", "Assignee", "Notes", "Notes.Author"}

// TaskService handles task business logic.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    string
	AssignedTo  *uint64
	Tags        []string
}

// Create validates the input as a whole and stores a new task. The actor
// becomes the creator, and the assignee when none is given.
func (s *TaskService) Create(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	fields := fieldErrors{}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		fields.add("title", "title is required")
	} else if len(title) > constants.MaxTitleLength {
		fields.add("title", fmt.Sprintf("title must be at most %d characters", constants.MaxTitleLength))
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		fields.add("description", "description is required")
	} else if len(description) > constants.MaxDescriptionLength {
		fields.add("description", fmt.Sprintf("description must be at most %d characters", constants.MaxDescriptionLength))
	}
	if input.DueDate.IsZero() {
		fields.add("due_date", "due date is required")
	} else if input.DueDate.Before(models.StartOfDay(time.Now())) {
		// Validated once, at write time. Later edits never re-check this.
		fields.add("due_date", "due date cannot be in the past")
	}
	priority := models.TaskPriorityMedium
	if input.Priority != "" {
		priority = models.TaskPriority(input.Priority)
		if !priority.Valid() {
			fields.add("priority", "priority must be one of low, medium, high, urgent")
		}
	}
	validateTags(fields, input.Tags)
	if err := fields.toError(); err != nil {
		return nil, err
	}

	assignedTo := actor.ID
	if input.AssignedTo != nil {
		if err := s.resolveUser(*input.AssignedTo); err != nil {
			return nil, err
		}
		assignedTo = *input.AssignedTo
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      models.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		CreatedBy:   actor.ID,
		AssignedTo:  assignedTo,
		Tags:        input.Tags,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	Status     string
	Priority   string
	AssignedTo *uint64
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// Pagination describes one page of a bounded result set.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	Total       int64
	HasNext     bool
	HasPrev     bool
}

// NewPagination derives page metadata from a total count.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// List returns the actor's visible page of tasks. Non-admin actors only ever
// see tasks assigned to them; the assignee filter is admin-only.
func (s *TaskService) List(actor *models.User, input ListTasksInput) ([]models.Task, Pagination, error) {
	fields := fieldErrors{}
	filter := repository.TaskFilter{
		Search:    strings.TrimSpace(input.Search),
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Page:      input.Page,
		Limit:     input.Limit,
	}
	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			fields.add("status", "status must be one of pending, in-progress, completed, cancelled")
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			fields.add("priority", "priority must be one of low, medium, high, urgent")
		}
		filter.Priority = &priority
	}
	if err := fields.toError(); err != nil {
		return nil, Pagination{}, err
	}

	filter.AssignedTo = ScopeTaskFilter(actor, input.AssignedTo)

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a task the actor may read.
func (s *TaskService) Get(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID, taskPreloads...)
	if err != nil {
		return nil, err
	}
	if !CanReadTask(actor, task) {
		return nil, ErrTaskForbidden
	}
	return task, nil
}

// UpdateTaskInput carries a partial update; nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	AssignedTo  *uint64
	Tags        []string
}

// Update applies a partial update. A status change bundled into the update
// keeps the completion timestamp in sync. The write is a single
// read-modify-write: concurrent updates race and the later write wins.
func (s *TaskService) Update(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !CanUpdateTask(actor, task) {
		return nil, ErrTaskForbidden
	}

	fields := fieldErrors{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			fields.add("title", "title is required")
		} else if len(title) > constants.MaxTitleLength {
			fields.add("title", fmt.Sprintf("title must be at most %d characters", constants.MaxTitleLength))
		} else {
			task.Title = title
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			fields.add("description", "description is required")
		} else if len(description) > constants.MaxDescriptionLength {
			fields.add("description", fmt.Sprintf("description must be at most %d characters", constants.MaxDescriptionLength))
		} else {
			task.Description = description
		}
	}
	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !priority.Valid() {
			fields.add("priority", "priority must be one of low, medium, high, urgent")
		} else {
			task.Priority = priority
		}
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !status.Valid() {
			fields.add("status", "status must be one of pending, in-progress, completed, cancelled")
		} else {
			models.ApplyStatus(task, status, time.Now())
		}
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.Tags != nil {
		validateTags(fields, input.Tags)
		task.Tags = input.Tags
	}
	if err := fields.toError(); err != nil {
		return nil, err
	}

	if input.AssignedTo != nil {
		if err := s.resolveUser(*input.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = *input.AssignedTo
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// SetStatus transitions a task to the given status. Every status is reachable
// from every other.
func (s *TaskService) SetStatus(actor *models.User, taskID uint64, status string) (*models.Task, error) {
	newStatus := models.TaskStatus(status)
	if !newStatus.Valid() {
		return nil, (fieldErrors{"status": "status must be one of pending, in-progress, completed, cancelled"}).toError()
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !CanUpdateTask(actor, task) {
		return nil, ErrTaskForbidden
	}

	models.ApplyStatus(task, newStatus, time.Now())

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// Delete removes a task. The assignee alone may not delete; only the creator
// or an admin.
func (s *TaskService) Delete(actor *models.User, taskID uint64) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	if !CanDeleteTask(actor, task) {
		return ErrTaskForbidden
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// AddNote appends a note authored by the actor to a task they may modify.
func (s *TaskService) AddNote(actor *models.User, taskID uint64, text string) (*models.Task, error) {
	trimmed := strings.TrimSpace(text)
	fields := fieldErrors{}
	if trimmed == "" {
		fields.add("text", "note text is required")
	} else if len(trimmed) > constants.MaxNoteLength {
		fields.add("text", fmt.Sprintf("note text must be at most %d characters", constants.MaxNoteLength))
	}
	if err := fields.toError(); err != nil {
		return nil, err
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !CanUpdateTask(actor, task) {
		return nil, ErrTaskForbidden
	}

	note := &models.Note{
		TaskID:   task.ID,
		AuthorID: actor.ID,
		Text:     trimmed,
	}
	if err := s.taskRepo.AddNote(note); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

func (s *TaskService) findTask(taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) resolveUser(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to resolve assignee: %w", err)
	}
	return nil
}

func validateTags(fields fieldErrors, tags []string) {
	for _, tag := range tags {
		if len(tag) > constants.MaxTagLength {
			fields.add("tags", fmt.Sprintf("tags must be at most %d characters each", constants.MaxTagLength))
			return
		}
	}
}
