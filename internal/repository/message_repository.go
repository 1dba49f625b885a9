package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ============================================================================
// CONVERSATION METHODS
// ============================================================================

// CreateConversation creates a conversation and its two participants.
func (r *MessageRepository) CreateConversation(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, userID := range []uuid.UUID{userA, userB} {
			p := &domain.ConversationParticipant{ConversationID: conv.ID, UserID: userID}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindConversationByID(ctx, conv.ID)
}

// FindConversationByID finds a conversation by ID with participants
func (r *MessageRepository) FindConversationByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Preload("Participants").Preload("Participants.User").
		Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindConversationByParticipants finds an existing conversation between two users
func (r *MessageRepository) FindConversationByParticipants(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error) {
	var conv domain.Conversation

	subquery := r.db.Model(&domain.ConversationParticipant{}).
		Select("conversation_id").
		Where("user_id IN ?", []uuid.UUID{userA, userB}).
		Group("conversation_id").
		Having("COUNT(DISTINCT user_id) = 2")

	err := r.db.WithContext(ctx).Preload("Participants").Preload("Participants.User").
		Where("id IN (?)", subquery).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListUserConversations lists a user's conversations, most recently active first
func (r *MessageRepository) ListUserConversations(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Conversation, int64, error) {
	var conversations []domain.Conversation
	var total int64

	subquery := r.db.Model(&domain.ConversationParticipant{}).
		Select("conversation_id").
		Where("user_id = ?", userID)

	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Conversation{}).Where("id IN (?)", subquery).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Participants").Preload("Participants.User").
		Where("id IN (?)", subquery).
		Order("COALESCE(last_message_at, created_at) DESC").
		Offset(offset).Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, 0, err
	}

	return conversations, total, nil
}

// ============================================================================
// PARTICIPANT METHODS
// ============================================================================

// IsUserInConversation checks if a user is part of a conversation
func (r *MessageRepository) IsUserInConversation(ctx context.Context, convID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error
	return count > 0, err
}

// ParticipantIDs returns the user ids in a conversation
func (r *MessageRepository) ParticipantIDs(ctx context.Context, convID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ?", convID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// MarkConversationAsRead resets the user's unread counter
func (r *MessageRepository) MarkConversationAsRead(ctx context.Context, convID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Updates(map[string]interface{}{
			"unread_count": 0,
			"last_read_at": time.Now(),
		}).Error
}

// ============================================================================
// MESSAGE METHODS
// ============================================================================

// CreateMessage stores a message, bumps the conversation preview and the other
// participants' unread counters in one transaction.
func (r *MessageRepository) CreateMessage(ctx context.Context, msg *domain.Message, preview string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		err := tx.Model(&domain.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_message_at":      msg.CreatedAt,
				"last_message_preview": preview,
				"updated_at":           time.Now(),
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&domain.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id != ?", msg.ConversationID, msg.SenderID).
			UpdateColumn("unread_count", gorm.Expr("unread_count + 1")).Error
	})
}

// FindMessageByID finds a message by ID
func (r *MessageRepository) FindMessageByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).Preload("Sender").Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetMessages gets messages for a conversation, newest first
func (r *MessageRepository) GetMessages(ctx context.Context, convID uuid.UUID, page, limit int) ([]domain.Message, int64, error) {
	var messages []domain.Message
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Message{}).Where("conversation_id = ?", convID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Sender").
		Where("conversation_id = ?", convID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}
