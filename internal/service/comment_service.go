package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/commenttree"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/metrics"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MaxCommentLength = 2000

	// RemovedText replaces the body of a hidden comment for non-admin viewers.
	RemovedText = "[removed by moderator]"
)

type CommentService struct {
	commentRepo         *repository.CommentRepository
	voteRepo            *repository.VoteRepository
	postRepo            *repository.PostRepository
	userRepo            *repository.UserRepository
	notificationService *NotificationService
	publisher           Publisher

	dispatch func(func())
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	voteRepo *repository.VoteRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	notificationService *NotificationService,
	publisher Publisher,
) *CommentService {
	return &CommentService{
		commentRepo:         commentRepo,
		voteRepo:            voteRepo,
		postRepo:            postRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		publisher:           publisher,
		dispatch:            runAsync,
	}
}

// Thread is a post's rebuilt comment tree plus what a renderer needs
// alongside it.
type Thread struct {
	Roots   []*commenttree.Node
	Total   int
	Authors map[string]*domain.User
	MyVotes map[string]int
}

// Viewer identifies who is reading a thread. A nil UserID is anonymous.
type Viewer struct {
	UserID  *uuid.UUID
	IsAdmin bool
}

func (s *CommentService) Create(ctx context.Context, userID, postID uuid.UUID, text string, parentID *uuid.UUID) (*domain.Comment, error) {
	text = cleanText(text)
	if text == "" {
		return nil, invalid("comment text is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, invalid("comment is longer than %d characters", MaxCommentLength)
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}
	if post.Status != domain.PostVisible {
		return nil, ErrNotFound
	}

	var parent *domain.Comment
	if parentID != nil {
		parent, err = s.commentRepo.FindByID(ctx, *parentID)
		if err != nil {
			return nil, notFound(err, "parent comment")
		}
		if parent.PostID != postID {
			return nil, invalid("parent comment belongs to another post")
		}
	}

	comment := &domain.Comment{
		PostID:          postID,
		UserID:          userID,
		ParentCommentID: parentID,
		Text:            text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, postID, 1); err != nil {
		logger.Log.Warn("failed to bump comment count", zap.String("post_id", postID.String()), zap.Error(err))
	}

	kind := "root"
	if parent != nil {
		kind = "reply"
	}
	metrics.Get().CommentsCreatedTotal.WithLabelValues(kind).Inc()

	if s.publisher != nil {
		s.publisher.PublishToPost(postID, realtime.Event{Type: realtime.EventCommentCreated, Payload: comment})
	}

	bg := context.WithoutCancel(ctx)
	s.dispatch(func() { s.notifyComment(bg, post, parent, comment) })

	return comment, nil
}

// notifyComment tells the parent's author about a reply, or the post owner
// about a top-level comment. Nobody is notified about their own activity.
func (s *CommentService) notifyComment(ctx context.Context, post *domain.Post, parent, comment *domain.Comment) {
	if s.notificationService == nil {
		return
	}
	commenter, err := s.userRepo.FindByID(ctx, comment.UserID)
	if err != nil {
		logger.Log.Warn("comment notification skipped, no profile",
			zap.String("user_id", comment.UserID.String()), zap.Error(err))
		return
	}

	if parent != nil {
		_ = s.notificationService.NotifyReplyComment(ctx, parent, commenter, comment)
		return
	}
	_ = s.notificationService.NotifyNewComment(ctx, post, commenter, comment)
}

// Tree loads a post's comments and rebuilds the thread in the requested
// order. Hidden comments keep their place and replies; non-admins see a
// placeholder instead of their text and author.
func (s *CommentService) Tree(ctx context.Context, postID uuid.UUID, viewer Viewer, order string) (*Thread, error) {
	rootOrder, ok := commenttree.PolicyByName(order)
	if !ok {
		return nil, invalid("unknown sort %q", order)
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}
	if post.Status != domain.PostVisible && !viewer.IsAdmin && !isUser(viewer.UserID, post.UserID) {
		return nil, ErrNotFound
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	records := make([]commenttree.Record, len(comments))
	authors := make(map[string]*domain.User)
	ids := make([]uuid.UUID, len(comments))
	for i := range comments {
		c := &comments[i]
		records[i] = toRecord(c)
		ids[i] = c.ID
		if c.User != nil {
			authors[c.UserID.String()] = c.User
		}
	}

	roots := commenttree.Build(records, commenttree.WithRootOrder(rootOrder))
	if !viewer.IsAdmin {
		redactHidden(roots)
	}

	myVotes := make(map[string]int)
	if viewer.UserID != nil {
		votes, err := s.voteRepo.VotesByUser(ctx, *viewer.UserID, ids)
		if err != nil {
			return nil, err
		}
		for id, v := range votes {
			myVotes[id.String()] = v
		}
	}

	total := commenttree.Count(roots)
	metrics.Get().CommentTreeSize.Observe(float64(total))

	return &Thread{Roots: roots, Total: total, Authors: authors, MyVotes: myVotes}, nil
}

func toRecord(c *domain.Comment) commenttree.Record {
	rec := commenttree.Record{
		ID:        c.ID.String(),
		PostID:    c.PostID.String(),
		AuthorID:  c.UserID.String(),
		Text:      c.Text,
		Votes:     c.Votes,
		CreatedAt: c.CreatedAt,
		Hidden:    c.IsHidden,
	}
	if c.ParentCommentID != nil {
		parent := c.ParentCommentID.String()
		rec.ParentID = &parent
	}
	return rec
}

func redactHidden(roots []*commenttree.Node) {
	commenttree.Walk(roots, func(n *commenttree.Node, _ int) bool {
		if n.Hidden {
			n.Text = RemovedText
			n.AuthorID = ""
		}
		return true
	})
}

// Vote records the user's +1 or -1 on a comment and returns the new total.
func (s *CommentService) Vote(ctx context.Context, userID, commentID uuid.UUID, voteType int) (int, error) {
	if voteType != 1 && voteType != -1 {
		return 0, ErrInvalidVote
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return 0, notFound(err, "comment")
	}
	if comment.IsHidden {
		return 0, ErrForbidden
	}

	total, err := s.voteRepo.Upsert(ctx, commentID, userID, voteType)
	if err != nil {
		return 0, err
	}

	direction := "up"
	if voteType < 0 {
		direction = "down"
	}
	metrics.Get().CommentVotesTotal.WithLabelValues(direction).Inc()
	s.publishVotes(comment, total)

	return total, nil
}

// Unvote withdraws the user's vote and returns the new total.
func (s *CommentService) Unvote(ctx context.Context, userID, commentID uuid.UUID) (int, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return 0, notFound(err, "comment")
	}

	total, err := s.voteRepo.Remove(ctx, commentID, userID)
	if err != nil {
		return 0, err
	}
	s.publishVotes(comment, total)
	return total, nil
}

func (s *CommentService) publishVotes(comment *domain.Comment, total int) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToPost(comment.PostID, realtime.Event{
		Type: realtime.EventCommentVoted,
		Payload: map[string]interface{}{
			"comment_id": comment.ID,
			"votes":      total,
		},
	})
}

// Delete removes a comment. Its author, the post owner and admins may do so.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uuid.UUID, isAdmin bool) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return notFound(err, "comment")
	}

	if comment.UserID != userID && !isAdmin {
		post, err := s.postRepo.FindByID(ctx, comment.PostID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if post == nil || post.UserID != userID {
			return ErrForbidden
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	if err := s.postRepo.IncrementCommentCount(ctx, comment.PostID, -1); err != nil {
		logger.Log.Warn("failed to drop comment count", zap.String("post_id", comment.PostID.String()), zap.Error(err))
	}
	return nil
}

func isUser(viewer *uuid.UUID, id uuid.UUID) bool {
	return viewer != nil && *viewer == id
}
