package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskforge/taskforge-api/internal/auth"
	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSelfRoleChange      = errors.New("cannot change your own role")
	ErrRoleChangeForbidden = errors.New("not authorized to change user roles")
)

// UserService handles user administration.
type UserService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityLogRepository
	logger       *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, activityRepo repository.ActivityLogRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// ListUsers returns every user.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUserRole changes the target user's role. An actor may never change
// their own role, admin or not; the admin-only route gate enforces the rest,
// and the policy check here keeps the invariant even if a caller bypasses it.
func (s *UserService) UpdateUserRole(actor *models.User, targetID uint64, newRole models.Role) (*models.User, error) {
	target, err := s.userRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if target.ID == actor.ID {
		return nil, ErrSelfRoleChange
	}
	if !auth.CanChangeRole(actor, target) {
		return nil, ErrRoleChangeForbidden
	}

	oldRole := target.Role
	if err := s.userRepo.UpdateRole(target.ID, newRole); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	entry := &models.ActivityLog{
		Action:     models.AuditActionUpdate,
		EntityType: models.EntityTypeUser,
		EntityID:   target.ID,
		ActorID:    actor.ID,
		RoleChange: &models.RoleChange{Role: oldRole, NewRole: newRole},
		Metadata:   &models.AuditMetadata{UpdatedBy: actor.Name},
	}
	if err := s.activityRepo.Append(entry); err != nil {
		s.logger.Warn("failed to record activity",
			slog.String("action", string(entry.Action)),
			slog.String("entity_type", string(entry.EntityType)),
			slog.Uint64("entity_id", entry.EntityID),
			slog.String("error", err.Error()),
		)
	}

	return s.userRepo.FindByID(target.ID)
}
