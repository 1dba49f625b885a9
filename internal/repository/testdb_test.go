package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(domain.AllModels()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:    username,
		DisplayName: username,
		Role:        domain.RoleTraveller,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, userID uuid.UUID, lat, lng float64) *domain.Post {
	t.Helper()
	post := &domain.Post{
		UserID:    userID,
		Body:      "somewhere nice",
		Latitude:  lat,
		Longitude: lng,
		Status:    domain.PostVisible,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createComment(t *testing.T, db *gorm.DB, postID, userID uuid.UUID, parentID *uuid.UUID, at time.Time) *domain.Comment {
	t.Helper()
	comment := &domain.Comment{
		BaseModel:       domain.BaseModel{CreatedAt: at, UpdatedAt: at},
		PostID:          postID,
		UserID:          userID,
		ParentCommentID: parentID,
		Text:            "hello",
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}
