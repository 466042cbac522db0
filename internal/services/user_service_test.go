package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type userTestEnv struct {
	db      *gorm.DB
	service *UserService
	admin   *models.User
	admin2  *models.User
	member  *models.User
}

func setupUserTestEnv(t *testing.T) userTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.ActivityLog{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	createUser := func(name, email string, role models.Role) *models.User {
		user := &models.User{Name: name, Email: email, PasswordHash: "hashedpassword", Role: role}
		require.NoError(t, db.Create(user).Error)
		return user
	}

	return userTestEnv{
		db:      db,
		service: NewUserService(repository.NewUserRepository(db), repository.NewActivityLogRepository(db), nil),
		admin:   createUser("Root", "root@example.com", models.RoleAdmin),
		admin2:  createUser("Backup", "backup@example.com", models.RoleAdmin),
		member:  createUser("Carol", "carol@example.com", models.RoleMember),
	}
}

func TestUserService_UpdateUserRole(t *testing.T) {
	env := setupUserTestEnv(t)

	updated, err := env.service.UpdateUserRole(env.admin, env.member.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	var entries []models.ActivityLog
	require.NoError(t, env.db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionUpdate, entries[0].Action)
	assert.Equal(t, models.EntityTypeUser, entries[0].EntityType)
	assert.Equal(t, env.member.ID, entries[0].EntityID)
	require.NotNil(t, entries[0].RoleChange)
	assert.Equal(t, models.RoleMember, entries[0].RoleChange.Role)
	assert.Equal(t, models.RoleAdmin, entries[0].RoleChange.NewRole)
	require.NotNil(t, entries[0].Metadata)
	assert.Equal(t, "Root", entries[0].Metadata.UpdatedBy)
}

func TestUserService_UpdateUserRole_SelfChangeRejected(t *testing.T) {
	env := setupUserTestEnv(t)

	// Even an admin may not change their own role
	_, err := env.service.UpdateUserRole(env.admin, env.admin.ID, models.RoleMember)
	assert.ErrorIs(t, err, ErrSelfRoleChange)

	// Including when the target happens to be another admin record of themselves
	_, err = env.service.UpdateUserRole(env.admin2, env.admin2.ID, models.RoleMember)
	assert.ErrorIs(t, err, ErrSelfRoleChange)
}

func TestUserService_UpdateUserRole_NonAdminRejected(t *testing.T) {
	env := setupUserTestEnv(t)

	_, err := env.service.UpdateUserRole(env.member, env.admin.ID, models.RoleMember)
	assert.ErrorIs(t, err, ErrRoleChangeForbidden)
}

func TestUserService_UpdateUserRole_NotFound(t *testing.T) {
	env := setupUserTestEnv(t)

	_, err := env.service.UpdateUserRole(env.admin, 99999, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ListUsers(t *testing.T) {
	env := setupUserTestEnv(t)

	users, err := env.service.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
