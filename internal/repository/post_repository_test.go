package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/geo"
	"gorm.io/gorm"
)

func postIDs(posts []domain.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.Body
	}
	return ids
}

func TestPostRepository_ListWithinBox(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "dee")

	inside := createPost(t, db, user.ID, 48.85, 2.35)
	inside.Body = "paris"
	db.Save(inside)
	outside := createPost(t, db, user.ID, 51.5, -0.12)
	outside.Body = "london"
	db.Save(outside)
	hidden := createPost(t, db, user.ID, 48.86, 2.34)
	hidden.Body = "hidden"
	hidden.Status = domain.PostHidden
	db.Save(hidden)

	center := geo.Point{Lat: 48.85, Lng: 2.35}
	posts, err := repo.ListWithinBox(ctx, center, geo.BoundingBox(center, 20), 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"paris"}, postIDs(posts))
}

func TestPostRepository_ListWithinBox_Antimeridian(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "eli")

	east := createPost(t, db, user.ID, -17.7, 179.9)
	east.Body = "east"
	db.Save(east)
	west := createPost(t, db, user.ID, -17.7, -179.9)
	west.Body = "west"
	db.Save(west)
	far := createPost(t, db, user.ID, -17.7, 0)
	far.Body = "far"
	db.Save(far)

	center := geo.Point{Lat: -17.7, Lng: 179.95}
	box := geo.BoundingBox(center, 50)
	require.True(t, box.WrapsAntimeridian())

	posts, err := repo.ListWithinBox(ctx, center, box, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"east", "west"}, postIDs(posts))
}

func TestPostRepository_ListWithinBox_ClosestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "ivy")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(body string, lat, lng float64, at time.Time) {
		p := &domain.Post{
			BaseModel: domain.BaseModel{CreatedAt: at},
			UserID:    user.ID,
			Body:      body,
			Latitude:  lat,
			Longitude: lng,
			Status:    domain.PostVisible,
		}
		require.NoError(t, db.Create(p).Error)
	}
	mk("center", 0, 0, base)
	for i := 1; i <= 4; i++ {
		mk("corner", 0.085, 0.085, base.Add(time.Duration(i)*time.Hour))
	}
	mk("near", 0.01, 0, base.Add(time.Minute))

	center := geo.Point{}
	posts, err := repo.ListWithinBox(ctx, center, geo.BoundingBox(center, 10), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"center", "near"}, postIDs(posts))
}

func TestPostRepository_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "fay")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, body := range []string{"first", "second", "third"} {
		p := &domain.Post{
			BaseModel: domain.BaseModel{CreatedAt: base.Add(time.Duration(i) * time.Hour)},
			UserID:    user.ID,
			Body:      body,
			Status:    domain.PostVisible,
		}
		require.NoError(t, db.Create(p).Error)
	}

	posts, total, err := repo.ListRecent(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"third", "second"}, postIDs(posts))
}

func TestPostRepository_SetStatusAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "gus")
	post := createPost(t, db, user.ID, 0, 0)

	require.NoError(t, repo.SetStatus(ctx, post.ID, domain.PostHidden))
	require.NoError(t, repo.IncrementCommentCount(ctx, post.ID, 2))
	require.NoError(t, repo.IncrementCommentCount(ctx, post.ID, -1))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostHidden, got.Status)
	assert.Equal(t, 1, got.CommentCount)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[domain.PostHidden])
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "hal")
	post := createPost(t, db, user.ID, 0, 0)
	c := createComment(t, db, post.ID, user.ID, nil, time.Now())
	_, err := votes.Upsert(ctx, c.ID, user.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err = repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var n int64
	db.Model(&domain.Comment{}).Where("post_id = ?", post.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&domain.CommentVote{}).Count(&n)
	assert.Zero(t, n)
}
