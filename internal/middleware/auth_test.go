package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/taskforge-api/internal/models"
	"github.com/taskforge/taskforge-api/internal/repository"
	"github.com/taskforge/taskforge-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type middlewareTestEnv struct {
	db           *gorm.DB
	router       *gin.Engine
	tokenService *services.TokenService
}

func setupMiddlewareTestEnv(t *testing.T) middlewareTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.ActivityLog{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	gin.SetMode(gin.TestMode)
	tokenService := services.NewTokenService("test-secret", time.Hour)
	userRepo := repository.NewUserRepository(db)

	router := gin.New()
	protected := router.Group("/", RequireAuth(tokenService, userRepo))
	protected.GET("/whoami", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "role": user.Role})
	})
	protected.GET("/admin-only", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return middlewareTestEnv{db: db, router: router, tokenService: tokenService}
}

func (env middlewareTestEnv) createUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Name: "Test", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env middlewareTestEnv) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_ValidToken(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	user := env.createUser(t, "alice@example.com", models.RoleMember)

	token, err := env.tokenService.Issue(user)
	require.NoError(t, err)

	w := env.get("/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_MissingOrMalformedHeader(t *testing.T) {
	env := setupMiddlewareTestEnv(t)

	w := env.get("/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	user := env.createUser(t, "alice@example.com", models.RoleMember)

	expired := services.NewTokenService("test-secret", -time.Minute)
	token, err := expired.Issue(user)
	require.NoError(t, err)

	w := env.get("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_SubjectNoLongerExists(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	user := env.createUser(t, "ghost@example.com", models.RoleMember)

	token, err := env.tokenService.Issue(user)
	require.NoError(t, err)
	require.NoError(t, env.db.Unscoped().Delete(&models.User{}, user.ID).Error)

	w := env.get("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles_UsesLiveRoleNotTokenClaim(t *testing.T) {
	env := setupMiddlewareTestEnv(t)
	user := env.createUser(t, "promoted@example.com", models.RoleMember)

	// Token minted while still a member
	token, err := env.tokenService.Issue(user)
	require.NoError(t, err)

	w := env.get("/admin-only", token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Promotion takes effect on the next request with the same token
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Update("role", models.RoleAdmin).Error)

	w = env.get("/admin-only", token)
	assert.Equal(t, http.StatusOK, w.Code)
}
