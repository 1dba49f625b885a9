package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/realtime"
	"github.com/travellinq/backend/internal/repository"
	"gorm.io/gorm"
)

const (
	MaxMessageLength = 5000
	previewLength    = 100
)

type MessageService struct {
	messageRepo         *repository.MessageRepository
	buddyRepo           *repository.BuddyRepository
	userRepo            *repository.UserRepository
	notificationService *NotificationService
	publisher           Publisher
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	buddyRepo *repository.BuddyRepository,
	userRepo *repository.UserRepository,
	notificationService *NotificationService,
	publisher Publisher,
) *MessageService {
	return &MessageService{
		messageRepo:         messageRepo,
		buddyRepo:           buddyRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		publisher:           publisher,
	}
}

// StartConversation opens, or reuses, the conversation between two accepted
// buddies and optionally sends a first message.
func (s *MessageService) StartConversation(ctx context.Context, senderID, recipientID uuid.UUID, initialMessage string) (*domain.Conversation, *domain.Message, error) {
	if senderID == recipientID {
		return nil, nil, invalid("cannot message yourself")
	}

	conn, err := s.buddyRepo.FindBetween(ctx, senderID, recipientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	if conn == nil || conn.Status != domain.BuddyAccepted {
		return nil, nil, ErrNotBuddies
	}

	conv, err := s.messageRepo.FindConversationByParticipants(ctx, senderID, recipientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conv, err = s.messageRepo.CreateConversation(ctx, senderID, recipientID)
	}
	if err != nil {
		return nil, nil, err
	}

	var msg *domain.Message
	if initialMessage != "" {
		msg, err = s.Send(ctx, conv.ID, senderID, initialMessage)
		if err != nil {
			return nil, nil, err
		}
		conv, err = s.messageRepo.FindConversationByID(ctx, conv.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	return conv, msg, nil
}

// Send posts a text message to a conversation the sender belongs to.
func (s *MessageService) Send(ctx context.Context, convID, senderID uuid.UUID, body string) (*domain.Message, error) {
	body = cleanText(body)
	if body == "" {
		return nil, invalid("message body is required")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, invalid("message is longer than %d characters", MaxMessageLength)
	}

	if err := s.requireParticipant(ctx, convID, senderID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.messageRepo.CreateMessage(ctx, msg, preview(body)); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.FindMessageByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	participants, err := s.messageRepo.ParticipantIDs(ctx, convID)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.SendToUsers(participants, realtime.Event{Type: realtime.EventMessageNew, Payload: msg})
	}
	if msg.Sender != nil {
		for _, id := range participants {
			if id != senderID {
				_ = s.notificationService.NotifyNewMessage(ctx, id, msg.Sender, msg)
			}
		}
	}

	return msg, nil
}

func (s *MessageService) ListConversations(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Conversation, int64, error) {
	return s.messageRepo.ListUserConversations(ctx, userID, page, limit)
}

func (s *MessageService) ListMessages(ctx context.Context, convID, userID uuid.UUID, page, limit int) ([]domain.Message, int64, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, 0, err
	}
	return s.messageRepo.GetMessages(ctx, convID, page, limit)
}

func (s *MessageService) MarkRead(ctx context.Context, convID, userID uuid.UUID) error {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return err
	}
	return s.messageRepo.MarkConversationAsRead(ctx, convID, userID)
}

func (s *MessageService) requireParticipant(ctx context.Context, convID, userID uuid.UUID) error {
	ok, err := s.messageRepo.IsUserInConversation(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInConversation
	}
	return nil
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	return string([]rune(body)[:previewLength]) + "..."
}
