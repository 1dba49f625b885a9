package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/service"
)

type NotificationHandler struct {
	service *service.NotificationService
}

func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List - GET /notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	page, limit := pagination(c, 20, 50)
	unreadOnly := c.QueryBool("unread_only", false)

	ctx := c.UserContext()
	notifications, total, err := h.service.List(ctx, *userID, unreadOnly, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	unreadCount, err := h.service.CountUnread(ctx, *userID)
	if err != nil {
		return respondError(c, err)
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, dto.MapNotification(&notifications[i]))
	}

	meta := dto.NewMeta(page, limit, total)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    responses,
		"meta": dto.NotificationListMeta{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  meta.TotalPages,
			UnreadCount: unreadCount,
		},
	})
}

// Count - GET /notifications/count
func (h *NotificationHandler) Count(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	count, err := h.service.CountUnread(c.UserContext(), *userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(dto.NotificationCountResponse{UnreadCount: count}, ""))
}

// MarkAsRead - PATCH /notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "notification")
	}

	if err := h.service.MarkAsRead(c.UserContext(), *userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Notification marked as read"))
}

// MarkAllAsRead - POST /notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	if err := h.service.MarkAllAsRead(c.UserContext(), *userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "All notifications marked as read"))
}

// Delete - DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "notification")
	}

	if err := h.service.Delete(c.UserContext(), *userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Notification deleted"))
}
