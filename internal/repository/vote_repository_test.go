package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travellinq/backend/internal/domain"
)

func TestVoteRepository_UpsertKeepsOneRowPerVoter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVoteRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, 0, 0)
	c := createComment(t, db, post.ID, author.ID, nil, time.Now())

	alice, bob := uuid.New(), uuid.New()

	total, err := repo.Upsert(ctx, c.ID, alice, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = repo.Upsert(ctx, c.ID, bob, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// Alice changes her mind; her row is updated in place.
	total, err = repo.Upsert(ctx, c.ID, alice, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	var rows int64
	db.Model(&domain.CommentVote{}).Where("comment_id = ?", c.ID).Count(&rows)
	assert.Equal(t, int64(2), rows)

	// Repeating the same vote is a no-op.
	total, err = repo.Upsert(ctx, c.ID, bob, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	got, err := comments.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Votes)
}

func TestVoteRepository_Remove(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, 0, 0)
	c := createComment(t, db, post.ID, author.ID, nil, time.Now())
	voter := uuid.New()

	_, err := repo.Upsert(ctx, c.ID, voter, -1)
	require.NoError(t, err)

	total, err := repo.Remove(ctx, c.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	// Removing a vote that does not exist is fine.
	total, err = repo.Remove(ctx, c.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestVoteRepository_VotesByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, 0, 0)
	a := createComment(t, db, post.ID, author.ID, nil, time.Now())
	b := createComment(t, db, post.ID, author.ID, nil, time.Now())
	voter := uuid.New()

	_, err := repo.Upsert(ctx, a.ID, voter, 1)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, b.ID, voter, -1)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, b.ID, uuid.New(), 1)
	require.NoError(t, err)

	got, err := repo.VotesByUser(ctx, voter, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int{a.ID: 1, b.ID: -1}, got)

	empty, err := repo.VotesByUser(ctx, voter, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
