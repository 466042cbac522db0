package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskforge/taskforge-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
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

// scopeVisible narrows a task query to what the actor may see. The listing and
// statistics paths share this so their counts can never disagree.
func scopeVisible(query *gorm.DB, vis TaskVisibility) *gorm.DB {
	if vis.Admin {
		return query
	}
	return query.Where("tasks.created_by_id = ? OR tasks.assignee_id = ?", vis.ActorID, vis.ActorID)
}

// List retrieves tasks matching the filter along with the total match count.
// The visibility scope and every user-supplied filter are combined with AND in
// a single query; the count is taken before pagination is applied.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := scopeVisible(r.db.Model(&models.Task{}), filter.Visibility)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", pattern, pattern)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if filter.Sort.Desc {
		direction = "DESC"
	}
	listQuery := query.Order(fmt.Sprintf("tasks.%s %s", filter.Sort.Column, direction))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Assignee").Preload("CreatedBy").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// StatusCounts returns per-status task counts within the visibility scope
func (r *GormTaskRepository) StatusCounts(vis TaskVisibility) (map[models.TaskStatus]int64, error) {
	rows := []struct {
		Status models.TaskStatus
		Count  int64
	}{}

	err := scopeVisible(r.db.Model(&models.Task{}), vis).
		Select("tasks.status AS status, COUNT(*) AS count").
		Group("tasks.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// PriorityCounts returns per-priority task counts within the visibility scope
func (r *GormTaskRepository) PriorityCounts(vis TaskVisibility) (map[models.TaskPriority]int64, error) {
	rows := []struct {
		Priority models.TaskPriority
		Count    int64
	}{}

	err := scopeVisible(r.db.Model(&models.Task{}), vis).
		Select("tasks.priority AS priority, COUNT(*) AS count").
		Group("tasks.priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskPriority]int64, len(rows))
	for _, row := range rows {
		counts[row.Priority] = row.Count
	}
	return counts, nil
}

// CountOverdue counts unfinished tasks whose due date has passed
func (r *GormTaskRepository) CountOverdue(vis TaskVisibility, now time.Time) (int64, error) {
	var count int64
	err := scopeVisible(r.db.Model(&models.Task{}), vis).
		Where("tasks.due_date < ?", now).
		Where("tasks.status <> ?", models.TaskStatusDone).
		Count(&count).Error
	return count, err
}

// CountDueBetween counts unfinished tasks due in [from, to)
func (r *GormTaskRepository) CountDueBetween(vis TaskVisibility, from, to time.Time) (int64, error) {
	var count int64
	err := scopeVisible(r.db.Model(&models.Task{}), vis).
		Where("tasks.due_date >= ? AND tasks.due_date < ?", from, to).
		Where("tasks.status <> ?", models.TaskStatusDone).
		Count(&count).Error
	return count, err
}
