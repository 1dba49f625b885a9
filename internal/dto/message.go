package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
)

// ============================================================================
// REQUEST DTOs
// ============================================================================

type StartConversationRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Message     string    `json:"message,omitempty" validate:"max=5000"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// ============================================================================
// RESPONSE DTOs
// ============================================================================

type ConversationResponse struct {
	ID                 uuid.UUID             `json:"id"`
	CreatedAt          time.Time             `json:"created_at"`
	LastMessageAt      *time.Time            `json:"last_message_at,omitempty"`
	LastMessagePreview *string               `json:"last_message_preview,omitempty"`
	Participants       []ParticipantResponse `json:"participants"`
	UnreadCount        int                   `json:"unread_count"`
	OtherUser          *UserBriefDTO         `json:"other_user,omitempty"`
}

type ParticipantResponse struct {
	UserID      uuid.UUID     `json:"user_id"`
	JoinedAt    time.Time     `json:"joined_at"`
	LastReadAt  *time.Time    `json:"last_read_at,omitempty"`
	UnreadCount int           `json:"unread_count"`
	User        *UserBriefDTO `json:"user,omitempty"`
}

type MessageResponse struct {
	ID             uuid.UUID     `json:"id"`
	ConversationID uuid.UUID     `json:"conversation_id"`
	SenderID       uuid.UUID     `json:"sender_id"`
	Sender         *UserBriefDTO `json:"sender,omitempty"`
	Body           string        `json:"body"`
	CreatedAt      time.Time     `json:"created_at"`
}

type StartConversationResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Message      *MessageResponse     `json:"message,omitempty"`
}

// ============================================================================
// MAPPER FUNCTIONS
// ============================================================================

// MapConversationToResponse maps a conversation as seen by currentUserID
func MapConversationToResponse(conv *domain.Conversation, currentUserID uuid.UUID) ConversationResponse {
	resp := ConversationResponse{
		ID:                 conv.ID,
		CreatedAt:          conv.CreatedAt,
		LastMessageAt:      conv.LastMessageAt,
		LastMessagePreview: conv.LastMessagePreview,
		Participants:       make([]ParticipantResponse, 0, len(conv.Participants)),
	}

	for _, p := range conv.Participants {
		pr := ParticipantResponse{
			UserID:      p.UserID,
			JoinedAt:    p.JoinedAt,
			LastReadAt:  p.LastReadAt,
			UnreadCount: p.UnreadCount,
			User:        MapUserBrief(p.User),
		}

		if p.UserID == currentUserID {
			resp.UnreadCount = p.UnreadCount
		} else {
			resp.OtherUser = pr.User
		}

		resp.Participants = append(resp.Participants, pr)
	}

	return resp
}

func MapMessageToResponse(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Sender:         MapUserBrief(msg.Sender),
		Body:           msg.Body,
		CreatedAt:      msg.CreatedAt,
	}
}
