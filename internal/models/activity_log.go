package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type EntityType string

const (
	EntityTypeTask EntityType = "task"
	EntityTypeUser EntityType = "user"
)

// FieldChange records one tracked field moving from one value to another.
type FieldChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TaskChanges is the change payload for task update entries. Only title,
// status, and priority are tracked; other fields are applied without being
// diffed.
type TaskChanges struct {
	Title    *FieldChange `json:"title,omitempty"`
	Status   *FieldChange `json:"status,omitempty"`
	Priority *FieldChange `json:"priority,omitempty"`
}

// Empty reports whether no tracked field changed.
func (c TaskChanges) Empty() bool {
	return c.Title == nil && c.Status == nil && c.Priority == nil
}

// RoleChange is the change payload for user role update entries.
type RoleChange struct {
	Role    Role `json:"role"`
	NewRole Role `json:"new_role"`
}

// AuditMetadata carries the small fixed set of context fields an entry may have.
type AuditMetadata struct {
	Title     string `json:"title,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`
}

// ActivityLog is an immutable audit record. Rows are only ever inserted; the
// change payload columns are discriminated by EntityType (task entries use
// TaskChanges, user entries use RoleChange).
type ActivityLog struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Action      AuditAction    `gorm:"type:varchar(20);not null;index" json:"action"`
	EntityType  EntityType     `gorm:"type:varchar(20);not null;index:idx_activity_entity" json:"entity_type"`
	EntityID    uint64         `gorm:"not null;index:idx_activity_entity" json:"entity_id"`
	ActorID     uint64         `gorm:"not null;index" json:"actor_id"`
	TaskChanges *TaskChanges   `gorm:"serializer:json" json:"task_changes,omitempty"`
	RoleChange  *RoleChange    `gorm:"serializer:json" json:"role_change,omitempty"`
	Metadata    *AuditMetadata `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}
