package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/travellinq/backend/internal/config"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakePublisher records events instead of pushing them to sockets.
type fakePublisher struct {
	mu     sync.Mutex
	posts  map[uuid.UUID][]realtime.Event
	users  map[uuid.UUID][]realtime.Event
	online map[uuid.UUID]bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		posts:  make(map[uuid.UUID][]realtime.Event),
		users:  make(map[uuid.UUID][]realtime.Event),
		online: make(map[uuid.UUID]bool),
	}
}

func (p *fakePublisher) PublishToPost(postID uuid.UUID, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts[postID] = append(p.posts[postID], event)
}

func (p *fakePublisher) SendToUsers(userIDs []uuid.UUID, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range userIDs {
		p.users[id] = append(p.users[id], event)
	}
}

func (p *fakePublisher) IsUserOnline(userID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

func (p *fakePublisher) setOnline(userID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = true
}

func (p *fakePublisher) postEvents(postID uuid.UUID, eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.posts[postID] {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func (p *fakePublisher) userEvents(userID uuid.UUID, eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.users[userID] {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type testEnv struct {
	db            *gorm.DB
	pub           *fakePublisher
	notifications *NotificationService
	comments      *CommentService
	posts         *PostService
	buddies       *BuddyService
	messages      *MessageService
	moderation    *ModerationService
}

func newTestEnv(t *testing.T) *testEnv {
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

	pub := newFakePublisher()
	commentRepo := repository.NewCommentRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	buddyRepo := repository.NewBuddyRepository(db)

	notifications := NewNotificationService(repository.NewNotificationRepository(db), pub)
	comments := NewCommentService(commentRepo, repository.NewVoteRepository(db), postRepo, userRepo, notifications, pub)
	comments.dispatch = func(f func()) { f() }

	return &testEnv{
		db:            db,
		pub:           pub,
		notifications: notifications,
		comments:      comments,
		posts:         NewPostService(postRepo),
		buddies: NewBuddyService(buddyRepo, repository.NewLocationRepository(db), userRepo, notifications, pub, config.ProximityConfig{
			DefaultRadiusKm: 10,
			MaxRadiusKm:     100,
			Cooldown:        time.Hour,
		}),
		messages:   NewMessageService(repository.NewMessageRepository(db), buddyRepo, userRepo, notifications, pub),
		moderation: NewModerationService(repository.NewReportRepository(db), commentRepo, postRepo, userRepo, notifications, pub),
	}
}

func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, DisplayName: username, Role: domain.RoleTraveller, IsActive: true}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) post(t *testing.T, owner uuid.UUID) *domain.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), owner, CreatePostInput{
		Body:      "sunset over the harbour",
		Latitude:  -8.65,
		Longitude: 115.13,
	})
	require.NoError(t, err)
	return p
}

// comment inserts a comment row directly so tests can pin its timestamp.
func (e *testEnv) comment(t *testing.T, postID, userID uuid.UUID, parentID *uuid.UUID, text string, at time.Time) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		BaseModel:       domain.BaseModel{CreatedAt: at, UpdatedAt: at},
		PostID:          postID,
		UserID:          userID,
		ParentCommentID: parentID,
		Text:            text,
	}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) notificationsOf(t *testing.T, userID uuid.UUID, typ domain.NotificationType) int {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&domain.Notification{}).
		Where("user_id = ? AND type = ?", userID, typ).
		Count(&n).Error)
	return int(n)
}

func (e *testEnv) befriend(t *testing.T, a, b uuid.UUID) *domain.BuddyConnection {
	t.Helper()
	ctx := context.Background()
	conn, err := e.buddies.Request(ctx, a, b)
	require.NoError(t, err)
	conn, err = e.buddies.Respond(ctx, b, conn.ID, true)
	require.NoError(t, err)
	return conn
}
