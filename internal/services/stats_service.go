package services

import (
	"fmt"
	"time"

	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
)

// Overview aggregates task counts for the dashboard.
type Overview struct {
	TasksByStatus   map[models.TaskStatus]int64   `json:"tasksByStatus"`
	TasksByPriority map[models.TaskPriority]int64 `json:"tasksByPriority"`
	OverdueTasks    int64                         `json:"overdueTasks"`
	DueToday        int64                         `json:"dueToday"`
	TotalTasks      int64                         `json:"totalTasks"`
}

// StatsService computes aggregate statistics over the same visibility scope
// the task listing uses, so the numbers always agree with what the actor can
// list.
type StatsService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(taskRepo repository.TaskRepository) *StatsService {
	return &StatsService{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// GetOverview returns status and priority counts, overdue and due-today
// counts, and the visible total for the actor. Every known status and
// priority is present in the maps, zero when absent.
func (s *StatsService) GetOverview(actor *models.User) (*Overview, error) {
	vis := visibilityFor(actor)

	statusCounts, err := s.taskRepo.StatusCounts(vis)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	priorityCounts, err := s.taskRepo.PriorityCounts(vis)
	if err != nil {
		return nil, fmt.Errorf("failed to count by priority: %w", err)
	}

	now := s.now()
	overdue, err := s.taskRepo.CountOverdue(vis, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	dueToday, err := s.taskRepo.CountDueBetween(vis, startOfDay, endOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks due today: %w", err)
	}

	overview := &Overview{
		TasksByStatus: map[models.TaskStatus]int64{
			models.TaskStatusTodo:       statusCounts[models.TaskStatusTodo],
			models.TaskStatusInProgress: statusCounts[models.TaskStatusInProgress],
			models.TaskStatusDone:       statusCounts[models.TaskStatusDone],
		},
		TasksByPriority: map[models.TaskPriority]int64{
			models.TaskPriorityLow:    priorityCounts[models.TaskPriorityLow],
			models.TaskPriorityMedium: priorityCounts[models.TaskPriorityMedium],
			models.TaskPriorityHigh:   priorityCounts[models.TaskPriorityHigh],
		},
		OverdueTasks: overdue,
		DueToday:     dueToday,
	}
	for _, count := range overview.TasksByStatus {
		overview.TotalTasks += count
	}

	return overview, nil
}
