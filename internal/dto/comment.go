package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/commenttree"
	"github.com/travellinq/backend/internal/domain"
)

type CreateCommentRequest struct {
	Text     string     `json:"text" validate:"required,min=1"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type VoteRequest struct {
	Vote int `json:"vote" validate:"required,oneof=1 -1"`
}

type VoteResponse struct {
	CommentID uuid.UUID `json:"comment_id"`
	Votes     int       `json:"votes"`
	MyVote    int       `json:"my_vote"`
}

type CommentResponse struct {
	ID        string             `json:"id"`
	PostID    string             `json:"post_id"`
	ParentID  *string            `json:"parent_id,omitempty"`
	Text      string             `json:"text"`
	Votes     int                `json:"votes"`
	MyVote    int                `json:"my_vote"`
	IsHidden  bool               `json:"is_hidden"`
	CreatedAt time.Time          `json:"created_at"`
	Author    *UserBriefDTO      `json:"author,omitempty"`
	Depth     int                `json:"depth"`
	Indent    int                `json:"indent"`
	Children  []*CommentResponse `json:"children,omitempty"`
}

// CommentThreadResponse is a post's comments, either nested (view=tree) or
// as a render-ordered list with depths (view=flat).
type CommentThreadResponse struct {
	PostID   uuid.UUID          `json:"post_id"`
	Sort     string             `json:"sort"`
	View     string             `json:"view"`
	Total    int                `json:"total"`
	Comments []*CommentResponse `json:"comments"`
}

// ThreadContext carries the lookups a thread is rendered with.
type ThreadContext struct {
	Authors map[string]*domain.User
	MyVotes map[string]int
}

func (tc ThreadContext) comment(n *commenttree.Node, depth int) *CommentResponse {
	resp := &CommentResponse{
		ID:        n.ID,
		PostID:    n.PostID,
		ParentID:  n.ParentID,
		Text:      n.Text,
		Votes:     n.Votes,
		MyVote:    tc.MyVotes[n.ID],
		IsHidden:  n.Hidden,
		CreatedAt: n.CreatedAt,
		Depth:     depth,
		Indent:    commenttree.VisualDepth(depth),
	}
	if n.AuthorID != "" {
		resp.Author = MapUserBrief(tc.Authors[n.AuthorID])
	}
	return resp
}

// MapCommentTree mirrors the forest as nested responses.
func MapCommentTree(roots []*commenttree.Node, tc ThreadContext) []*CommentResponse {
	out := make([]*CommentResponse, 0, len(roots))
	// path[d] is the most recent response seen at depth d; render order
	// guarantees it is the parent of the next node at depth d+1.
	var path []*CommentResponse
	commenttree.Walk(roots, func(n *commenttree.Node, depth int) bool {
		resp := tc.comment(n, depth)
		path = append(path[:depth], resp)
		if depth == 0 {
			out = append(out, resp)
		} else {
			parent := path[depth-1]
			parent.Children = append(parent.Children, resp)
		}
		return true
	})
	return out
}

// MapCommentList lists the forest in render order without nesting.
func MapCommentList(roots []*commenttree.Node, tc ThreadContext) []*CommentResponse {
	entries := commenttree.Flatten(roots)
	out := make([]*CommentResponse, len(entries))
	for i, e := range entries {
		out[i] = tc.comment(e.Node, e.Depth)
	}
	return out
}

// MapComment maps a freshly stored comment.
func MapComment(c *domain.Comment) *CommentResponse {
	resp := &CommentResponse{
		ID:        c.ID.String(),
		PostID:    c.PostID.String(),
		Text:      c.Text,
		Votes:     c.Votes,
		IsHidden:  c.IsHidden,
		CreatedAt: c.CreatedAt,
		Author:    MapUserBrief(c.User),
	}
	if c.ParentCommentID != nil {
		parent := c.ParentCommentID.String()
		resp.ParentID = &parent
	}
	return resp
}
