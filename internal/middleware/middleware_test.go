package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travellinq/backend/internal/auth"
	"github.com/travellinq/backend/internal/config"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(domain.AllModels()...))
	return db
}

func testJWT(expiry time.Duration) *auth.JWTService {
	return auth.NewJWTService(&config.Config{JWT: config.JWTConfig{
		Secret:       "test-secret",
		Issuer:       "travellinq",
		AccessExpiry: expiry,
	}})
}

func newTestApp(m *AuthMiddleware, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := append(handlers, func(c *fiber.Ctx) error {
		id := GetUserID(c)
		if id == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(id.String() + ":" + GetUserRole(c))
	})
	app.Get("/", chain...)
	return app
}

func do(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRequired(t *testing.T) {
	jwtSvc := testJWT(time.Hour)
	m := NewAuthMiddleware(jwtSvc, nil)
	app := newTestApp(m, m.Required())
	userID := uuid.New()

	status, body := do(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "UNAUTHORIZED")

	status, body = do(t, app, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")

	expired, err := testJWT(-time.Minute).GenerateAccessToken(userID, "traveller")
	require.NoError(t, err)
	status, body = do(t, app, expired)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "TOKEN_EXPIRED")

	token, err := jwtSvc.GenerateAccessToken(userID, "traveller")
	require.NoError(t, err)
	status, body = do(t, app, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, userID.String()+":traveller", body)
}

func TestRequiredRejectsDeactivatedAccounts(t *testing.T) {
	db := setupTestDB(t)
	jwtSvc := testJWT(time.Hour)
	m := NewAuthMiddleware(jwtSvc, db)
	app := newTestApp(m, m.Required())

	user := &domain.User{Username: "banned", DisplayName: "banned", Role: domain.RoleTraveller}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	token, err := jwtSvc.GenerateAccessToken(user.ID, "traveller")
	require.NoError(t, err)
	status, body := do(t, app, token)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body, "ACCOUNT_DISABLED")

	// A subject with no profile yet is let through.
	token, err = jwtSvc.GenerateAccessToken(uuid.New(), "traveller")
	require.NoError(t, err)
	status, _ = do(t, app, token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestOptional(t *testing.T) {
	jwtSvc := testJWT(time.Hour)
	m := NewAuthMiddleware(jwtSvc, nil)
	app := newTestApp(m, m.Optional())

	_, body := do(t, app, "")
	assert.Equal(t, "anonymous", body)

	_, body = do(t, app, "garbage")
	assert.Equal(t, "anonymous", body)

	userID := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(userID, "admin")
	require.NoError(t, err)
	_, body = do(t, app, token)
	assert.Equal(t, userID.String()+":admin", body)
}

func TestAdminOnly(t *testing.T) {
	jwtSvc := testJWT(time.Hour)
	m := NewAuthMiddleware(jwtSvc, nil)
	app := newTestApp(m, m.Required(), m.AdminOnly())

	token, err := jwtSvc.GenerateAccessToken(uuid.New(), "traveller")
	require.NoError(t, err)
	status, _ := do(t, app, token)
	assert.Equal(t, fiber.StatusForbidden, status)

	token, err = jwtSvc.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)
	status, _ = do(t, app, token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestProfileEnsure(t *testing.T) {
	db := setupTestDB(t)
	jwtSvc := testJWT(time.Hour)
	m := NewAuthMiddleware(jwtSvc, db)
	profiles := NewProfileMiddleware(repository.NewUserRepository(db))
	clock := time.Now()
	profiles.now = func() time.Time { return clock }
	app := newTestApp(m, m.Required(), profiles.Ensure())

	userID := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(userID, "traveller")
	require.NoError(t, err)

	status, _ := do(t, app, token)
	require.Equal(t, fiber.StatusOK, status)

	var user domain.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	assert.Equal(t, domain.RoleTraveller, user.Role)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.LastSeenAt)
	firstSeen := *user.LastSeenAt

	// Inside the interval the row is not written again.
	clock = clock.Add(10 * time.Second)
	do(t, app, token)
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	assert.True(t, firstSeen.Equal(*user.LastSeenAt))

	clock = clock.Add(2 * time.Minute)
	do(t, app, token)
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	assert.True(t, user.LastSeenAt.After(firstSeen))

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProfileEnsureBoundsTracking(t *testing.T) {
	db := setupTestDB(t)
	jwtSvc := testJWT(time.Hour)
	m := NewAuthMiddleware(jwtSvc, db)
	profiles := NewProfileMiddleware(repository.NewUserRepository(db))
	app := newTestApp(m, m.Required(), profiles.Ensure())

	now := time.Now()
	for i := 0; i < maxTracked; i++ {
		profiles.touched.Add(uuid.NewString(), now)
	}

	for i := 0; i < 50; i++ {
		token, err := jwtSvc.GenerateAccessToken(uuid.New(), "traveller")
		require.NoError(t, err)
		status, _ := do(t, app, token)
		require.Equal(t, fiber.StatusOK, status)
	}
	assert.LessOrEqual(t, profiles.touched.Len(), maxTracked)
}
