package repository

import (
	"github.com/taskforge/taskforge-api/internal/database"
	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/utils"
	"gorm.io/gorm"
)

// GormActivityLogRepository is a GORM implementation of ActivityLogRepository.
// It only ever inserts rows; the audit trail is immutable.
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Append inserts a new audit entry
func (r *GormActivityLogRepository) Append(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

// List returns entries newest first along with the total entry count
func (r *GormActivityLogRepository) List(params utils.PaginationParams) ([]models.ActivityLog, int64, error) {
	var total int64
	if err := r.db.Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ActivityLog
	err := r.db.Order("created_at DESC, id DESC").
		Scopes(database.Paginate(params)).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
