package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kaustubh0601/Task-Management/internal/models"
	"github.com/kaustubh0601/Task-Management/internal/repository"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
	admin   *models.User
	alice   *models.User
	bob     *models.User
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Note{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	suite.service = NewTaskService(taskRepo, userRepo)

	suite.admin = suite.createTestUser("admin", models.RoleAdmin)
	suite.alice = suite.createTestUser("alice", models.RoleUser)
	suite.bob = suite.createTestUser("bob", models.RoleUser)
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTestUser(username string, role models.Role) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTestTask(title string, creatorID, assigneeID uint64) *models.Task {
	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityMedium,
		DueDate:     time.Now().AddDate(0, 0, 7),
		CreatedBy:   creatorID,
		AssignedTo:  assigneeID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskServiceTestSuite) TestCreate_Defaults() {
	task, err := suite.service.Create(suite.alice, CreateTaskInput{
		Title:       "Write report",
		Description: "Quarterly report",
		DueDate:     time.Now().AddDate(0, 0, 3),
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.TaskStatusPending, task.Status)
	assert.Equal(suite.T(), models.TaskPriorityMedium, task.Priority)
	assert.Equal(suite.T(), suite.alice.ID, task.CreatedBy)
	assert.Equal(suite.T(), suite.alice.ID, task.AssignedTo)
	assert.Nil(suite.T(), task.CompletedAt)
	assert.Equal(suite.T(), suite.alice.Username, task.Creator.Username)
}

func (suite *TaskServiceTestSuite) TestCreate_AggregatesFieldErrors() {
	_, err := suite.service.Create(suite.alice, CreateTaskInput{
		Title:       "",
		Description: "",
		DueDate:     time.Now().AddDate(0, 0, -2),
		Priority:    "extreme",
	})
	suite.Require().Error(err)

	var validationErr *ValidationError
	suite.Require().ErrorAs(err, &validationErr)
	assert.Contains(suite.T(), validationErr.Fields, "title")
	assert.Contains(suite.T(), validationErr.Fields, "description")
	assert.Contains(suite.T(), validationErr.Fields, "due_date")
	assert.Contains(suite.T(), validationErr.Fields, "priority")
}

func (suite *TaskServiceTestSuite) TestCreate_DueDateTodayAllowed() {
	// The floor is the start of today, not the current instant.
	task, err := suite.service.Create(suite.alice, CreateTaskInput{
		Title:       "Today task",
		Description: "Due later today",
		DueDate:     models.StartOfDay(time.Now()).Add(time.Minute),
	})
	suite.Require().NoError(err)
	assert.NotZero(suite.T(), task.ID)
}

func (suite *TaskServiceTestSuite) TestCreate_UnknownAssignee() {
	_, err := suite.service.Create(suite.alice, CreateTaskInput{
		Title:       "Orphan",
		Description: "No such assignee",
		DueDate:     time.Now().AddDate(0, 0, 1),
		AssignedTo:  ptr(uint64(9999)),
	})
	assert.ErrorIs(suite.T(), err, ErrAssigneeNotFound)
}

func (suite *TaskServiceTestSuite) TestGet_Permissions() {
	task := suite.createTestTask("Shared", suite.alice.ID, suite.bob.ID)

	for _, actor := range []*models.User{suite.admin, suite.alice, suite.bob} {
		got, err := suite.service.Get(actor, task.ID)
		suite.Require().NoError(err)
		assert.Equal(suite.T(), task.ID, got.ID)
	}

	outsider := suite.createTestUser("carol", models.RoleUser)
	_, err := suite.service.Get(outsider, task.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskForbidden)
}

func (suite *TaskServiceTestSuite) TestGet_NotFound() {
	_, err := suite.service.Get(suite.admin, 9999)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdate_Partial() {
	task := suite.createTestTask("Old title", suite.alice.ID, suite.alice.ID)

	updated, err := suite.service.Update(suite.alice, task.ID, UpdateTaskInput{
		Title: ptr("New title"),
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), "New title", updated.Title)
	assert.Equal(suite.T(), task.Description, updated.Description)
	assert.Equal(suite.T(), task.Priority, updated.Priority)
}

func (suite *TaskServiceTestSuite) TestUpdate_AssigneeCanUpdateButNotDelete() {
	task := suite.createTestTask("Shared", suite.alice.ID, suite.bob.ID)

	_, err := suite.service.Update(suite.bob, task.ID, UpdateTaskInput{
		Priority: ptr("high"),
	})
	assert.NoError(suite.T(), err)

	err = suite.service.Delete(suite.bob, task.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskForbidden)

	err = suite.service.Delete(suite.alice, task.ID)
	assert.NoError(suite.T(), err)
}

func (suite *TaskServiceTestSuite) TestUpdate_StatusKeepsCompletedAtInSync() {
	task := suite.createTestTask("Lifecycle", suite.alice.ID, suite.alice.ID)

	updated, err := suite.service.Update(suite.alice, task.ID, UpdateTaskInput{
		Status: ptr("completed"),
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.CompletedAt)

	updated, err = suite.service.Update(suite.alice, task.ID, UpdateTaskInput{
		Status: ptr("in-progress"),
	})
	suite.Require().NoError(err)
	assert.Nil(suite.T(), updated.CompletedAt)
}

func (suite *TaskServiceTestSuite) TestSetStatus() {
	task := suite.createTestTask("Lifecycle", suite.alice.ID, suite.alice.ID)

	updated, err := suite.service.SetStatus(suite.alice, task.ID, "completed")
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.CompletedAt)
	firstCompletion := *updated.CompletedAt

	// Repeating the transition keeps the original timestamp.
	updated, err = suite.service.SetStatus(suite.alice, task.ID, "completed")
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.CompletedAt)
	assert.WithinDuration(suite.T(), firstCompletion, *updated.CompletedAt, time.Second)

	_, err = suite.service.SetStatus(suite.alice, task.ID, "archived")
	var validationErr *ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}

func (suite *TaskServiceTestSuite) TestList_NonAdminScopedToOwnAssignments() {
	suite.createTestTask("Alice task", suite.alice.ID, suite.alice.ID)
	suite.createTestTask("Bob task", suite.bob.ID, suite.bob.ID)

	// Even an explicit filter for someone else's tasks is overridden.
	tasks, pagination, err := suite.service.List(suite.alice, ListTasksInput{
		AssignedTo: &suite.bob.ID,
		Page:       1,
		Limit:      10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Alice task", tasks[0].Title)
	assert.Equal(suite.T(), int64(1), pagination.Total)
}

func (suite *TaskServiceTestSuite) TestList_AdminSeesAllAndMayFilter() {
	suite.createTestTask("Alice task", suite.alice.ID, suite.alice.ID)
	suite.createTestTask("Bob task", suite.bob.ID, suite.bob.ID)

	tasks, _, err := suite.service.List(suite.admin, ListTasksInput{Page: 1, Limit: 10})
	suite.Require().NoError(err)
	assert.Len(suite.T(), tasks, 2)

	tasks, _, err = suite.service.List(suite.admin, ListTasksInput{
		AssignedTo: &suite.bob.ID,
		Page:       1,
		Limit:      10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Bob task", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestList_StatusAndSearchFilters() {
	done := suite.createTestTask("Ship release", suite.alice.ID, suite.alice.ID)
	suite.createTestTask("Plan sprint", suite.alice.ID, suite.alice.ID)
	_, err := suite.service.SetStatus(suite.alice, done.ID, "completed")
	suite.Require().NoError(err)

	tasks, _, err := suite.service.List(suite.alice, ListTasksInput{
		Status: "completed",
		Page:   1,
		Limit:  10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Ship release", tasks[0].Title)

	tasks, _, err = suite.service.List(suite.alice, ListTasksInput{
		Search: "SPRINT",
		Page:   1,
		Limit:  10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Plan sprint", tasks[0].Title)

	_, _, err = suite.service.List(suite.alice, ListTasksInput{
		Status: "archived",
		Page:   1,
		Limit:  10,
	})
	var validationErr *ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}

func (suite *TaskServiceTestSuite) TestList_SearchTreatsWildcardsAsLiterals() {
	suite.createTestTask("100% complete", suite.alice.ID, suite.alice.ID)
	suite.createTestTask("100 percent complete", suite.alice.ID, suite.alice.ID)
	suite.createTestTask("snake_case refactor", suite.alice.ID, suite.alice.ID)
	suite.createTestTask("snakeXcase refactor", suite.alice.ID, suite.alice.ID)

	tasks, _, err := suite.service.List(suite.alice, ListTasksInput{
		Search: "0% c",
		Page:   1,
		Limit:  10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "100% complete", tasks[0].Title)

	tasks, _, err = suite.service.List(suite.alice, ListTasksInput{
		Search: "e_c",
		Page:   1,
		Limit:  10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "snake_case refactor", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestUpdate_LastWriterWins() {
	task := suite.createTestTask("Original title", suite.alice.ID, suite.alice.ID)
	taskRepo := repository.NewTaskRepository(suite.db)

	first, err := taskRepo.FindByID(task.ID)
	suite.Require().NoError(err)
	second, err := taskRepo.FindByID(task.ID)
	suite.Require().NoError(err)

	first.Title = "First writer title"
	suite.Require().NoError(taskRepo.Update(first))

	// The second write was built from a stale read; committing it last makes
	// its snapshot the final record state.
	second.Priority = models.TaskPriorityUrgent
	suite.Require().NoError(taskRepo.Update(second))

	final, err := taskRepo.FindByID(task.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.TaskPriorityUrgent, final.Priority)
	assert.Equal(suite.T(), "Original title", final.Title)
	assert.Equal(suite.T(), "Test Description", final.Description)
}

func (suite *TaskServiceTestSuite) TestList_Pagination() {
	for i := 0; i < 5; i++ {
		suite.createTestTask("Task", suite.alice.ID, suite.alice.ID)
	}

	tasks, pagination, err := suite.service.List(suite.alice, ListTasksInput{Page: 1, Limit: 2})
	suite.Require().NoError(err)
	assert.Len(suite.T(), tasks, 2)
	assert.Equal(suite.T(), int64(5), pagination.Total)
	assert.Equal(suite.T(), 3, pagination.TotalPages)
	assert.True(suite.T(), pagination.HasNext)
	assert.False(suite.T(), pagination.HasPrev)

	tasks, pagination, err = suite.service.List(suite.alice, ListTasksInput{Page: 3, Limit: 2})
	suite.Require().NoError(err)
	assert.Len(suite.T(), tasks, 1)
	assert.False(suite.T(), pagination.HasNext)
	assert.True(suite.T(), pagination.HasPrev)
}

func (suite *TaskServiceTestSuite) TestAddNote() {
	task := suite.createTestTask("Noted", suite.alice.ID, suite.bob.ID)

	updated, err := suite.service.AddNote(suite.bob, task.ID, "  Looks good to me  ")
	suite.Require().NoError(err)
	suite.Require().Len(updated.Notes, 1)
	assert.Equal(suite.T(), "Looks good to me", updated.Notes[0].Text)
	assert.Equal(suite.T(), suite.bob.ID, updated.Notes[0].AuthorID)

	outsider := suite.createTestUser("carol", models.RoleUser)
	_, err = suite.service.AddNote(outsider, task.ID, "drive-by comment")
	assert.ErrorIs(suite.T(), err, ErrTaskForbidden)

	_, err = suite.service.AddNote(suite.alice, task.ID, "   ")
	var validationErr *ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}

func (suite *TaskServiceTestSuite) TestDelete_RemovesNotes() {
	task := suite.createTestTask("Doomed", suite.alice.ID, suite.alice.ID)
	_, err := suite.service.AddNote(suite.alice, task.ID, "first note")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Delete(suite.alice, task.ID))

	var count int64
	suite.db.Model(&models.Note{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)

	err = suite.service.Delete(suite.alice, task.ID)
	assert.ErrorIs(suite.T(), err, ErrTaskNotFound)
}

func ptr[T any](v T) *T {
	return &v
}

// TestSuite runs the test suite
func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
