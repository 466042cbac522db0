package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
	"github.com/taskforge/taskforge-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// failingActivityRepo simulates an unavailable audit store
type failingActivityRepo struct{}

func (failingActivityRepo) Append(*models.ActivityLog) error {
	return errors.New("audit store down")
}

func (failingActivityRepo) List(utils.PaginationParams) ([]models.ActivityLog, int64, error) {
	return nil, 0, errors.New("audit store down")
}

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService

	admin  *models.User
	alice  *models.User
	bob    *models.User
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.ActivityLog{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)
	suite.service = NewTaskService(taskRepo, activityRepo, nil)

	suite.admin = suite.createTestUser("Admin", "admin@example.com", models.RoleAdmin)
	suite.alice = suite.createTestUser("Alice", "alice@example.com", models.RoleMember)
	suite.bob = suite.createTestUser("Bob", "bob@example.com", models.RoleMember)
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTestUser(name, email string, role models.Role) *models.User {
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTask(actor *models.User, title string) *models.Task {
	task, err := suite.service.CreateTask(actor, CreateTaskInput{Title: title})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) auditEntries() []models.ActivityLog {
	var entries []models.ActivityLog
	suite.Require().NoError(suite.db.Order("id ASC").Find(&entries).Error)
	return entries
}

func (suite *TaskServiceTestSuite) TestCreateTask_Defaults() {
	task, err := suite.service.CreateTask(suite.alice, CreateTaskInput{Title: "Write report"})
	suite.Require().NoError(err)

	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal(suite.alice.ID, task.CreatedByID)
	suite.Equal(suite.alice.ID, task.AssigneeID, "assignee defaults to the creator")

	entries := suite.auditEntries()
	suite.Require().Len(entries, 1)
	suite.Equal(models.AuditActionCreate, entries[0].Action)
	suite.Equal(models.EntityTypeTask, entries[0].EntityType)
	suite.Equal(task.ID, entries[0].EntityID)
	suite.Equal(suite.alice.ID, entries[0].ActorID)
	suite.Require().NotNil(entries[0].Metadata)
	suite.Equal("Write report", entries[0].Metadata.Title)
}

func (suite *TaskServiceTestSuite) TestCreateTask_RoundTrip() {
	due := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	created, err := suite.service.CreateTask(suite.alice, CreateTaskInput{
		Title:       "Quarterly review",
		Description: "Collect numbers",
		Status:      models.TaskStatusInProgress,
		Priority:    models.TaskPriorityHigh,
		DueDate:     &due,
		Tags:        []string{"finance", "q3"},
		AssigneeID:  &suite.bob.ID,
	})
	suite.Require().NoError(err)

	fetched, err := suite.service.GetTask(suite.alice, created.ID)
	suite.Require().NoError(err)

	suite.Equal(created.ID, fetched.ID)
	suite.Equal("Quarterly review", fetched.Title)
	suite.Equal("Collect numbers", fetched.Description)
	suite.Equal(models.TaskStatusInProgress, fetched.Status)
	suite.Equal(models.TaskPriorityHigh, fetched.Priority)
	suite.Equal([]string{"finance", "q3"}, fetched.Tags)
	suite.Equal(suite.bob.ID, fetched.AssigneeID)
	suite.Equal(suite.alice.ID, fetched.CreatedByID)
	suite.Require().NotNil(fetched.DueDate)
	suite.True(fetched.DueDate.Equal(due))
}

func (suite *TaskServiceTestSuite) TestGetTask_AccessRules() {
	task := suite.createTask(suite.alice, "Private task")

	// A member who is neither creator nor assignee is rejected
	_, err := suite.service.GetTask(suite.bob, task.ID)
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	// Admin may read anything
	_, err = suite.service.GetTask(suite.admin, task.ID)
	suite.NoError(err)

	// The assignee may read
	_, err = suite.service.UpdateTask(suite.alice, task.ID, UpdateTaskInput{AssigneeID: &suite.bob.ID})
	suite.Require().NoError(err)
	_, err = suite.service.GetTask(suite.bob, task.ID)
	suite.NoError(err)
}

func (suite *TaskServiceTestSuite) TestGetTask_NotFound() {
	_, err := suite.service.GetTask(suite.alice, 99999)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_DescriptionOnly_NoAuditEntry() {
	task := suite.createTask(suite.alice, "Stable title")
	before := len(suite.auditEntries())

	desc := "Reworded description"
	_, err := suite.service.UpdateTask(suite.alice, task.ID, UpdateTaskInput{Description: &desc})
	suite.Require().NoError(err)

	suite.Len(suite.auditEntries(), before, "untracked changes produce no audit entry")
}

func (suite *TaskServiceTestSuite) TestUpdateTask_StatusChange_SingleAuditEntry() {
	task := suite.createTask(suite.alice, "Track me")
	before := len(suite.auditEntries())

	status := models.TaskStatusDone
	_, err := suite.service.UpdateTask(suite.alice, task.ID, UpdateTaskInput{Status: &status})
	suite.Require().NoError(err)

	entries := suite.auditEntries()
	suite.Require().Len(entries, before+1)

	entry := entries[len(entries)-1]
	suite.Equal(models.AuditActionUpdate, entry.Action)
	suite.Require().NotNil(entry.TaskChanges)
	suite.Require().NotNil(entry.TaskChanges.Status)
	suite.Equal(string(models.TaskStatusTodo), entry.TaskChanges.Status.From)
	suite.Equal(string(models.TaskStatusDone), entry.TaskChanges.Status.To)
	suite.Nil(entry.TaskChanges.Title)
	suite.Nil(entry.TaskChanges.Priority)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_AssigneeCannotUpdate() {
	task := suite.createTask(suite.alice, "Assigned out")
	_, err := suite.service.UpdateTask(suite.alice, task.ID, UpdateTaskInput{AssigneeID: &suite.bob.ID})
	suite.Require().NoError(err)

	title := "Hijacked"
	_, err = suite.service.UpdateTask(suite.bob, task.ID, UpdateTaskInput{Title: &title})
	suite.ErrorIs(err, ErrTaskPermissionDenied)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ClearDueDate() {
	due := time.Now().Add(48 * time.Hour)
	task, err := suite.service.CreateTask(suite.alice, CreateTaskInput{Title: "Due soon", DueDate: &due})
	suite.Require().NoError(err)

	updated, err := suite.service.UpdateTask(suite.alice, task.ID, UpdateTaskInput{ClearDueDate: true})
	suite.Require().NoError(err)
	suite.Nil(updated.DueDate)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_ThenGet_NotFound() {
	task := suite.createTask(suite.alice, "Short lived")

	suite.Require().NoError(suite.service.DeleteTask(suite.alice, task.ID))

	_, err := suite.service.GetTask(suite.alice, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	// The delete entry was written before removal and references the task
	entries := suite.auditEntries()
	last := entries[len(entries)-1]
	suite.Equal(models.AuditActionDelete, last.Action)
	suite.Equal(task.ID, last.EntityID)
	suite.Require().NotNil(last.Metadata)
	suite.Equal("Short lived", last.Metadata.Title)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_Forbidden() {
	task := suite.createTask(suite.alice, "Keep out")

	err := suite.service.DeleteTask(suite.bob, task.ID)
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	// Admin may delete anything
	suite.NoError(suite.service.DeleteTask(suite.admin, task.ID))
}

func (suite *TaskServiceTestSuite) TestListTasks_VisibilityForMembers() {
	suite.createTask(suite.alice, "Alice task")
	bobTask := suite.createTask(suite.bob, "Bob task")
	shared := suite.createTask(suite.bob, "Shared task")
	_, err := suite.service.UpdateTask(suite.bob, shared.ID, UpdateTaskInput{AssigneeID: &suite.alice.ID})
	suite.Require().NoError(err)

	tasks, total, err := suite.service.ListTasks(suite.alice, ListTasksInput{Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	for _, task := range tasks {
		visible := task.CreatedByID == suite.alice.ID || task.AssigneeID == suite.alice.ID
		suite.True(visible, "listing leaked task %d", task.ID)
		suite.NotEqual(bobTask.ID, task.ID)
	}

	_, total, err = suite.service.ListTasks(suite.admin, ListTasksInput{Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total, "admin sees every task")
}

func (suite *TaskServiceTestSuite) TestListTasks_SearchDoesNotWidenVisibility() {
	suite.createTask(suite.alice, "alpha report")
	suite.createTask(suite.bob, "alpha secret")

	tasks, total, err := suite.service.ListTasks(suite.alice, ListTasksInput{
		Search:   "ALPHA",
		Page:     1,
		PageSize: 10,
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total, "search must compose with the visibility scope, not replace it")
	suite.Require().Len(tasks, 1)
	suite.Equal("alpha report", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_SearchMatchesDescription() {
	_, err := suite.service.CreateTask(suite.alice, CreateTaskInput{
		Title:       "Plain title",
		Description: "contains NEEDLE here",
	})
	suite.Require().NoError(err)
	suite.createTask(suite.alice, "Unrelated")

	_, total, err := suite.service.ListTasks(suite.alice, ListTasksInput{
		Search:   "needle",
		Page:     1,
		PageSize: 10,
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
}

func (suite *TaskServiceTestSuite) TestListTasks_Pagination() {
	for i := 0; i < 25; i++ {
		suite.createTask(suite.alice, "Task")
	}

	expected := []int{10, 10, 5, 0}
	for page := 1; page <= 4; page++ {
		tasks, total, err := suite.service.ListTasks(suite.alice, ListTasksInput{Page: page, PageSize: 10})
		suite.Require().NoError(err)
		suite.Equal(int64(25), total)
		suite.Len(tasks, expected[page-1], "page %d", page)

		pagination := utils.NewPaginationResponse(page, 10, total)
		suite.Equal(3, pagination.TotalPages)
		suite.Equal(int64(25), pagination.TotalTasks)
	}
}

func (suite *TaskServiceTestSuite) TestListTasks_EmptyResult() {
	tasks, total, err := suite.service.ListTasks(suite.alice, ListTasksInput{Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Empty(tasks)
	suite.Equal(int64(0), total)

	pagination := utils.NewPaginationResponse(1, 10, total)
	suite.Equal(0, pagination.TotalPages, "an empty result set has zero pages")
}

func (suite *TaskServiceTestSuite) TestListTasks_FiltersCompose() {
	status := models.TaskStatusInProgress
	priority := models.TaskPriorityHigh

	_, err := suite.service.CreateTask(suite.alice, CreateTaskInput{
		Title:    "Match",
		Status:   status,
		Priority: priority,
	})
	suite.Require().NoError(err)
	_, err = suite.service.CreateTask(suite.alice, CreateTaskInput{
		Title:  "Wrong priority",
		Status: status,
	})
	suite.Require().NoError(err)

	tasks, total, err := suite.service.ListTasks(suite.alice, ListTasksInput{
		Status:   &status,
		Priority: &priority,
		Page:     1,
		PageSize: 10,
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(tasks, 1)
	suite.Equal("Match", tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_DueDateRangeInclusive() {
	day := func(d int) *time.Time {
		t := time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	for d := 1; d <= 5; d++ {
		_, err := suite.service.CreateTask(suite.alice, CreateTaskInput{Title: "Dated", DueDate: day(d)})
		suite.Require().NoError(err)
	}

	_, total, err := suite.service.ListTasks(suite.alice, ListTasksInput{
		DueDateFrom: day(2),
		DueDateTo:   day(4),
		Page:        1,
		PageSize:    10,
	})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total, "both range bounds are inclusive")
}

func (suite *TaskServiceTestSuite) TestListTasks_SortByDueDate() {
	day := func(d int) *time.Time {
		t := time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	for _, d := range []int{3, 1, 2} {
		_, err := suite.service.CreateTask(suite.alice, CreateTaskInput{Title: "Dated", DueDate: day(d)})
		suite.Require().NoError(err)
	}

	tasks, _, err := suite.service.ListTasks(suite.alice, ListTasksInput{
		Sort:     utils.SortParams{Column: "due_date", Desc: false},
		Page:     1,
		PageSize: 10,
	})
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 3)
	for i := 1; i < len(tasks); i++ {
		suite.False(tasks[i].DueDate.Before(*tasks[i-1].DueDate))
	}
}

func (suite *TaskServiceTestSuite) TestAuditFailure_DoesNotFailMutation() {
	taskRepo := repository.NewTaskRepository(suite.db)
	service := NewTaskService(taskRepo, failingActivityRepo{}, nil)

	task, err := service.CreateTask(suite.alice, CreateTaskInput{Title: "Still created"})
	suite.Require().NoError(err, "audit store failure must not fail the create")

	status := models.TaskStatusDone
	_, err = service.UpdateTask(suite.alice, task.ID, UpdateTaskInput{Status: &status})
	suite.NoError(err, "audit store failure must not fail the update")

	suite.NoError(service.DeleteTask(suite.alice, task.ID))
	_, err = service.GetTask(suite.alice, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound, "the delete went through despite the audit failure")
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
