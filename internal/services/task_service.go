package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskforge/taskforge-api/internal/auth"
	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
	"github.com/taskforge/taskforge-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("not authorized to access this task")
	ErrTitleEmpty           = errors.New("title cannot be empty")
)

// TaskService handles task business logic. Every mutation appends an audit
// entry; audit failures are logged and never fail the primary operation.
type TaskService struct {
	taskRepo     repository.TaskRepository
	activityRepo repository.ActivityLogRepository
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, activityRepo repository.ActivityLogRepository, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *uint64
	Search      string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Sort        utils.SortParams
	Page        int
	PageSize    int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	Tags        []string
	AssigneeID  *uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// untouched; CreatedByID is immutable and deliberately absent.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	Tags         *[]string
	AssigneeID   *uint64
}

// ListTasks returns the page of tasks visible to the actor that match the
// filters, plus the total match count. The visibility scope always composes
// with the other filters; a search never widens what the actor can see.
func (s *TaskService) ListTasks(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Visibility:  visibilityFor(actor),
		Status:      input.Status,
		Priority:    input.Priority,
		AssigneeID:  input.AssigneeID,
		Search:      input.Search,
		DueDateFrom: input.DueDateFrom,
		DueDateTo:   input.DueDateTo,
		Sort:        input.Sort,
		Page:        input.Page,
		PageSize:    input.PageSize,
	}
	if filter.Sort.Column == "" {
		filter.Sort = utils.SortParams{Column: "created_at", Desc: true}
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task if the actor may read it
func (s *TaskService) GetTask(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee", "CreatedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !auth.CanAccessTask(actor, auth.ActionRead, task) {
		return nil, ErrTaskPermissionDenied
	}

	return task, nil
}

// CreateTask creates a new task. The actor is always recorded as the creator
// regardless of the payload; the assignee defaults to the actor.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleEmpty
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	assigneeID := actor.ID
	if input.AssigneeID != nil {
		assigneeID = *input.AssigneeID
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		AssigneeID:  assigneeID,
		CreatedByID: actor.ID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.appendAudit(&models.ActivityLog{
		Action:     models.AuditActionCreate,
		EntityType: models.EntityTypeTask,
		EntityID:   task.ID,
		ActorID:    actor.ID,
		Metadata:   &models.AuditMetadata{Title: task.Title},
	})

	return s.taskRepo.FindByID(task.ID, "Assignee", "CreatedBy")
}

// UpdateTask applies a partial update to a task the actor may modify. Title,
// status, and priority changes are diffed into an audit entry; an update that
// touches none of them produces no entry.
func (s *TaskService) UpdateTask(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !auth.CanAccessTask(actor, auth.ActionUpdate, task) {
		return nil, ErrTaskPermissionDenied
	}

	original := struct {
		Title    string
		Status   models.TaskStatus
		Priority models.TaskPriority
	}{task.Title, task.Status, task.Priority}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.AssigneeID != nil {
		task.AssigneeID = *input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	changes := models.TaskChanges{}
	if original.Title != task.Title {
		changes.Title = &models.FieldChange{From: original.Title, To: task.Title}
	}
	if original.Status != task.Status {
		changes.Status = &models.FieldChange{From: string(original.Status), To: string(task.Status)}
	}
	if original.Priority != task.Priority {
		changes.Priority = &models.FieldChange{From: string(original.Priority), To: string(task.Priority)}
	}

	if !changes.Empty() {
		s.appendAudit(&models.ActivityLog{
			Action:      models.AuditActionUpdate,
			EntityType:  models.EntityTypeTask,
			EntityID:    task.ID,
			ActorID:     actor.ID,
			TaskChanges: &changes,
			Metadata:    &models.AuditMetadata{Title: task.Title},
		})
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "CreatedBy")
}

// DeleteTask removes a task the actor may delete. The audit entry is written
// first so it always references a task that existed.
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !auth.CanAccessTask(actor, auth.ActionDelete, task) {
		return ErrTaskPermissionDenied
	}

	s.appendAudit(&models.ActivityLog{
		Action:     models.AuditActionDelete,
		EntityType: models.EntityTypeTask,
		EntityID:   task.ID,
		ActorID:    actor.ID,
		Metadata:   &models.AuditMetadata{Title: task.Title},
	})

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// appendAudit records an audit entry. A failed append is logged and swallowed:
// the primary mutation has already succeeded and must stay that way.
func (s *TaskService) appendAudit(entry *models.ActivityLog) {
	if err := s.activityRepo.Append(entry); err != nil {
		s.logger.Warn("failed to record activity",
			slog.String("action", string(entry.Action)),
			slog.String("entity_type", string(entry.EntityType)),
			slog.Uint64("entity_id", entry.EntityID),
			slog.String("error", err.Error()),
		)
	}
}

// visibilityFor builds the task visibility scope for an actor
func visibilityFor(actor *models.User) repository.TaskVisibility {
	return repository.TaskVisibility{
		ActorID: actor.ID,
		Admin:   actor.IsAdmin(),
	}
}
