package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/service"
)

type MessageHandler struct {
	service *service.MessageService
}

func NewMessageHandler(service *service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// ============================================================================
// CONVERSATIONS
// ============================================================================

// ListConversations - GET /conversations
func (h *MessageHandler) ListConversations(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	page, limit := pagination(c, 20, 50)
	conversations, total, err := h.service.ListConversations(c.UserContext(), *userID, page, limit)
	if err != nil {
		return respondError(c, err)
	}

	responses := make([]dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		responses = append(responses, dto.MapConversationToResponse(&conversations[i], *userID))
	}
	return c.JSON(dto.SuccessWithMeta(responses, dto.NewMeta(page, limit, total)))
}

// StartConversation - POST /conversations
func (h *MessageHandler) StartConversation(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	var req dto.StartConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	conv, msg, err := h.service.StartConversation(c.UserContext(), *userID, req.RecipientID, req.Message)
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.StartConversationResponse{Conversation: dto.MapConversationToResponse(conv, *userID)}
	if msg != nil {
		m := dto.MapMessageToResponse(msg)
		resp.Message = &m
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(resp, ""))
}

// MarkRead - POST /conversations/:id/read
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	convID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "conversation")
	}

	if err := h.service.MarkRead(c.UserContext(), convID, *userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Conversation marked as read"))
}

// ============================================================================
// MESSAGES
// ============================================================================

// ListMessages - GET /conversations/:id/messages
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	convID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "conversation")
	}

	page, limit := pagination(c, 50, 100)
	messages, total, err := h.service.ListMessages(c.UserContext(), convID, *userID, page, limit)
	if err != nil {
		return respondError(c, err)
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, dto.MapMessageToResponse(&messages[i]))
	}
	return c.JSON(dto.SuccessWithMeta(responses, dto.NewMeta(page, limit, total)))
}

// Send - POST /conversations/:id/messages
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	convID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "conversation")
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	msg, err := h.service.Send(c.UserContext(), convID, *userID, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapMessageToResponse(msg), ""))
}
