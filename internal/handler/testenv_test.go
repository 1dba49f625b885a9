package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/travellinq/backend/internal/auth"
	"github.com/travellinq/backend/internal/config"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"github.com/travellinq/backend/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeImages is an in-memory ImageStore.
type fakeImages struct {
	mu      sync.Mutex
	objects map[string]bool
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: make(map[string]bool)}
}

func (f *fakeImages) PresignedPutURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://storage.test/bucket/" + key + "?X-Amz-Signature=test", nil
}

func (f *fakeImages) ObjectExists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key], nil
}

func (f *fakeImages) PublicURL(key string) string {
	return "http://cdn.test/" + key
}

func (f *fakeImages) put(key string) {
	f.mu.Lock()
	f.objects[key] = true
	f.mu.Unlock()
}

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	jwt    *auth.JWTService
	images *fakeImages
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.AllModels()...))

	ctx, cancel := context.WithCancel(context.Background())
	hub := realtime.NewHub()
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		sqlDB.Close()
	})

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "travellinq", AccessExpiry: time.Hour},
		Proximity: config.ProximityConfig{
			DefaultRadiusKm: 10,
			MaxRadiusKm:     100,
			Cooldown:        time.Hour,
		},
	}
	jwtService := auth.NewJWTService(cfg)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	buddyRepo := repository.NewBuddyRepository(db)

	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), hub)
	images := newFakeImages()

	handlers := &Handlers{
		Post: NewPostHandler(service.NewPostService(postRepo), images),
		Comment: NewCommentHandler(service.NewCommentService(
			commentRepo, repository.NewVoteRepository(db), postRepo, userRepo, notifications, hub)),
		Buddy: NewBuddyHandler(service.NewBuddyService(
			buddyRepo, repository.NewLocationRepository(db), userRepo, notifications, hub, cfg.Proximity)),
		Notification: NewNotificationHandler(notifications),
		Message: NewMessageHandler(service.NewMessageService(
			repository.NewMessageRepository(db), buddyRepo, userRepo, notifications, hub)),
		Upload: NewUploadHandler(images),
		Admin: NewAdminHandler(service.NewModerationService(
			repository.NewReportRepository(db), commentRepo, postRepo, userRepo, notifications, hub)),
	}

	app := fiber.New()
	RegisterRoutes(app.Group("/api/v1"), handlers,
		middleware.NewAuthMiddleware(jwtService, db), middleware.NewProfileMiddleware(userRepo))

	return &testServer{app: app, db: db, jwt: jwtService, images: images}
}

// token signs in a fresh subject with the given role.
func (s *testServer) token(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	tok, err := s.jwt.GenerateAccessToken(id, role)
	require.NoError(t, err)
	return id, tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// createPost creates a post through the API and returns its ID.
func (s *testServer) createPost(t *testing.T, token string) string {
	t.Helper()
	status, env := s.do(t, "POST", "/api/v1/posts", token, map[string]interface{}{
		"body":          "Sunset at the cliffs",
		"latitude":      -8.8291,
		"longitude":     115.0849,
		"location_name": "Uluwatu",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	return decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID
}

func uuidString() string { return uuid.NewString() }
