package services

import (
	"fmt"

	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
	"github.com/taskforge/taskforge-api/internal/utils"
)

// ActivityService exposes read access to the audit trail.
type ActivityService struct {
	activityRepo repository.ActivityLogRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
	}
}

// ListEntries returns audit entries newest first.
func (s *ActivityService) ListEntries(params utils.PaginationParams) ([]models.ActivityLog, int64, error) {
	entries, total, err := s.activityRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}
