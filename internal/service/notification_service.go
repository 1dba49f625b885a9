package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"go.uber.org/zap"
)

type NotificationService struct {
	repo      *repository.NotificationRepository
	publisher Publisher
}

func NewNotificationService(repo *repository.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// create stores the notification and pushes it to the user if connected.
func (s *NotificationService) create(ctx context.Context, n *domain.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Log.Error("failed to create notification",
			zap.String("type", string(n.Type)),
			zap.String("user_id", n.UserID.String()),
			zap.Error(err),
		)
		return err
	}
	if s.publisher != nil {
		s.publisher.SendToUsers([]uuid.UUID{n.UserID}, realtime.Event{
			Type:    realtime.EventNotificationNew,
			Payload: n,
		})
	}
	return nil
}

// NotifyNewComment tells the post owner about a top-level comment
func (s *NotificationService) NotifyNewComment(ctx context.Context, post *domain.Post, commenter *domain.User, comment *domain.Comment) error {
	if commenter.ID == post.UserID {
		return nil
	}
	return s.create(ctx, &domain.Notification{
		UserID:  post.UserID,
		Type:    domain.NotifNewComment,
		Title:   "New comment on your post",
		Message: strPtr("@" + commenter.Username + " commented on your post"),
		Data: domain.JSONB{
			"actor_id":       commenter.ID.String(),
			"actor_username": commenter.Username,
			"actor_avatar":   commenter.AvatarURL,
			"post_id":        post.ID.String(),
			"comment_id":     comment.ID.String(),
		},
	})
}

// NotifyReplyComment tells a comment's author someone replied
func (s *NotificationService) NotifyReplyComment(ctx context.Context, parent *domain.Comment, replier *domain.User, reply *domain.Comment) error {
	if replier.ID == parent.UserID {
		return nil
	}
	return s.create(ctx, &domain.Notification{
		UserID:  parent.UserID,
		Type:    domain.NotifReplyComment,
		Title:   "New reply",
		Message: strPtr("@" + replier.Username + " replied to your comment"),
		Data: domain.JSONB{
			"actor_id":          replier.ID.String(),
			"actor_username":    replier.Username,
			"actor_avatar":      replier.AvatarURL,
			"post_id":           reply.PostID.String(),
			"comment_id":        reply.ID.String(),
			"parent_comment_id": parent.ID.String(),
		},
	})
}

func (s *NotificationService) NotifyBuddyRequest(ctx context.Context, requester *domain.User, conn *domain.BuddyConnection) error {
	return s.create(ctx, &domain.Notification{
		UserID:  conn.AddresseeID,
		Type:    domain.NotifBuddyRequest,
		Title:   "Buddy request",
		Message: strPtr("@" + requester.Username + " wants to be your travel buddy"),
		Data: domain.JSONB{
			"actor_id":       requester.ID.String(),
			"actor_username": requester.Username,
			"connection_id":  conn.ID.String(),
		},
	})
}

func (s *NotificationService) NotifyBuddyAccepted(ctx context.Context, accepter *domain.User, conn *domain.BuddyConnection) error {
	return s.create(ctx, &domain.Notification{
		UserID:  conn.RequesterID,
		Type:    domain.NotifBuddyAccepted,
		Title:   "Buddy request accepted",
		Message: strPtr("@" + accepter.Username + " accepted your buddy request"),
		Data: domain.JSONB{
			"actor_id":       accepter.ID.String(),
			"actor_username": accepter.Username,
			"connection_id":  conn.ID.String(),
		},
	})
}

// NotifyBuddyNearby tells userID that buddy is within distanceKm
func (s *NotificationService) NotifyBuddyNearby(ctx context.Context, userID uuid.UUID, buddy *domain.User, distanceKm float64) error {
	return s.create(ctx, &domain.Notification{
		UserID:  userID,
		Type:    domain.NotifBuddyNearby,
		Title:   "A buddy is nearby",
		Message: strPtr(fmt.Sprintf("@%s is about %.1f km away", buddy.Username, distanceKm)),
		Data: domain.JSONB{
			"buddy_id":       buddy.ID.String(),
			"buddy_username": buddy.Username,
			"distance_km":    distanceKm,
		},
	})
}

// NotifyNewMessage is only sent when the recipient has no live connection;
// connected clients already get the message event.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, recipientID uuid.UUID, sender *domain.User, msg *domain.Message) error {
	if s.publisher != nil && s.publisher.IsUserOnline(recipientID) {
		return nil
	}
	return s.create(ctx, &domain.Notification{
		UserID:  recipientID,
		Type:    domain.NotifNewMessage,
		Title:   "New message",
		Message: strPtr("@" + sender.Username + " sent you a message"),
		Data: domain.JSONB{
			"actor_id":        sender.ID.String(),
			"actor_username":  sender.Username,
			"conversation_id": msg.ConversationID.String(),
			"message_id":      msg.ID.String(),
		},
	})
}

func (s *NotificationService) NotifyContentHidden(ctx context.Context, userID uuid.UUID, target domain.ReportTarget, targetID uuid.UUID, reason string) error {
	data := domain.JSONB{
		"target_type": string(target),
		"target_id":   targetID.String(),
	}
	if reason != "" {
		data["reason"] = reason
	}
	return s.create(ctx, &domain.Notification{
		UserID:  userID,
		Type:    domain.NotifContentHidden,
		Title:   "Content hidden",
		Message: strPtr("A moderator hid your " + string(target)),
		Data:    data,
	})
}

func (s *NotificationService) NotifyReportResolved(ctx context.Context, report *domain.Report) error {
	return s.create(ctx, &domain.Notification{
		UserID:  report.ReporterID,
		Type:    domain.NotifReportResolved,
		Title:   "Report reviewed",
		Message: strPtr("Thanks, a moderator reviewed your report"),
		Data: domain.JSONB{
			"report_id":   report.ID.String(),
			"target_type": string(report.TargetType),
			"target_id":   report.TargetID.String(),
			"status":      string(report.Status),
		},
	})
}

// ============================================================================
// INBOX
// ============================================================================

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]domain.Notification, int64, error) {
	return s.repo.FindByUserID(ctx, userID, unreadOnly, page, limit)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return notFound(s.repo.MarkAsRead(ctx, id, userID), "notification")
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id, userID), "notification")
}
