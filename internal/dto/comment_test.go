package dto

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travellinq/backend/internal/commenttree"
	"github.com/travellinq/backend/internal/domain"
)

func rec(id string, parent string, at time.Time) commenttree.Record {
	r := commenttree.Record{ID: id, PostID: "p", AuthorID: "u1", Text: id, CreatedAt: at}
	if parent != "" {
		r.ParentID = &parent
	}
	return r
}

func TestMapCommentTreeNestsReplies(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []commenttree.Record{
		rec("a", "", base),
		rec("b", "", base.Add(time.Minute)),
		rec("a1", "a", base.Add(2*time.Minute)),
		rec("a1x", "a1", base.Add(3*time.Minute)),
		rec("a2", "a", base.Add(4*time.Minute)),
	}
	roots := commenttree.Build(records, commenttree.WithRootOrder(commenttree.ByAge))
	tc := ThreadContext{
		Authors: map[string]*domain.User{"u1": {BaseModel: domain.BaseModel{ID: uuid.New()}, Username: "alice"}},
		MyVotes: map[string]int{"a1x": -1},
	}

	tree := MapCommentTree(roots, tc)
	require.Len(t, tree, 2)
	assert.Equal(t, "a", tree[0].ID)
	assert.Equal(t, "b", tree[1].ID)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "a1", tree[0].Children[0].ID)
	assert.Equal(t, "a2", tree[0].Children[1].ID)
	require.Len(t, tree[0].Children[0].Children, 1)

	deep := tree[0].Children[0].Children[0]
	assert.Equal(t, "a1x", deep.ID)
	assert.Equal(t, 2, deep.Depth)
	assert.Equal(t, -1, deep.MyVote)
	require.NotNil(t, deep.Author)
	assert.Equal(t, "alice", deep.Author.Username)
	assert.Empty(t, tree[1].Children)

	flat := MapCommentList(roots, tc)
	ids := make([]string, len(flat))
	for i, c := range flat {
		ids[i] = c.ID
		assert.Empty(t, c.Children)
	}
	assert.Equal(t, []string{"a", "a1", "a1x", "a2", "b"}, ids)
	assert.Equal(t, 1, flat[1].Depth)
}

func TestMapCommentTreeCapsIndent(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []commenttree.Record{rec("c0", "", base)}
	for i := 1; i <= commenttree.MaxVisualDepth+3; i++ {
		records = append(records, rec(fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", i-1), base.Add(time.Duration(i)*time.Second)))
	}

	flat := MapCommentList(commenttree.Build(records), ThreadContext{})
	last := flat[len(flat)-1]
	assert.Equal(t, commenttree.MaxVisualDepth+3, last.Depth)
	assert.Equal(t, commenttree.MaxVisualDepth, last.Indent)
}

func TestMapCommentTreeHiddenHasNoAuthor(t *testing.T) {
	r := rec("h", "", time.Now())
	r.AuthorID = ""
	r.Hidden = true

	tree := MapCommentTree(commenttree.Build([]commenttree.Record{r}), ThreadContext{})
	require.Len(t, tree, 1)
	assert.True(t, tree[0].IsHidden)
	assert.Nil(t, tree[0].Author)
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, int64(41), meta.TotalCount)
	assert.Zero(t, NewMeta(1, 20, 0).TotalPages)
}
