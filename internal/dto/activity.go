package dto

import (
	"time"

	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/utils"
)

// ActivityLogDTO represents an audit entry in API responses
type ActivityLogDTO struct {
	ID          uint64                `json:"id"`
	Action      models.AuditAction    `json:"action"`
	EntityType  models.EntityType     `json:"entity_type"`
	EntityID    uint64                `json:"entity_id"`
	ActorID     uint64                `json:"actor_id"`
	TaskChanges *models.TaskChanges   `json:"task_changes,omitempty"`
	RoleChange  *models.RoleChange    `json:"role_change,omitempty"`
	Metadata    *models.AuditMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// ActivityListResponse represents a paginated list of audit entries
type ActivityListResponse struct {
	Entries    []ActivityLogDTO         `json:"entries"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToActivityListResponse converts audit entries to ActivityListResponse
func ToActivityListResponse(entries []models.ActivityLog, page, limit int, total int64) ActivityListResponse {
	items := make([]ActivityLogDTO, len(entries))
	for i, entry := range entries {
		items[i] = ActivityLogDTO{
			ID:          entry.ID,
			Action:      entry.Action,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			ActorID:     entry.ActorID,
			TaskChanges: entry.TaskChanges,
			RoleChange:  entry.RoleChange,
			Metadata:    entry.Metadata,
			CreatedAt:   entry.CreatedAt,
		}
	}

	return ActivityListResponse{
		Entries:    items,
		Pagination: utils.NewPaginationResponse(page, limit, total),
	}
}
