package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/service"
)

type BuddyHandler struct {
	service *service.BuddyService
}

func NewBuddyHandler(service *service.BuddyService) *BuddyHandler {
	return &BuddyHandler{service: service}
}

func mapBuddies(conns []domain.BuddyConnection, viewerID uuid.UUID) []dto.BuddyResponse {
	out := make([]dto.BuddyResponse, 0, len(conns))
	for i := range conns {
		out = append(out, dto.MapBuddy(&conns[i], viewerID))
	}
	return out
}

// List - GET /buddies
func (h *BuddyHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	conns, err := h.service.List(c.UserContext(), *userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(mapBuddies(conns, *userID), ""))
}

// Pending - GET /buddies/pending
func (h *BuddyHandler) Pending(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	conns, err := h.service.Pending(c.UserContext(), *userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(mapBuddies(conns, *userID), ""))
}

// Request - POST /buddies/:user_id
func (h *BuddyHandler) Request(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	addresseeID, ok := paramID(c, "user_id")
	if !ok {
		return invalidID(c, "user")
	}

	conn, err := h.service.Request(c.UserContext(), *userID, addresseeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapBuddy(conn, *userID), "Buddy request sent"))
}

// Respond - POST /buddies/:id/respond
func (h *BuddyHandler) Respond(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	connID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "buddy")
	}

	var req dto.RespondBuddyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	conn, err := h.service.Respond(c.UserContext(), *userID, connID, req.Accept)
	if err != nil {
		return respondError(c, err)
	}
	msg := "Buddy request declined"
	if req.Accept {
		msg = "Buddy request accepted"
	}
	return c.JSON(dto.SuccessResponse(dto.MapBuddy(conn, *userID), msg))
}

// SetRadius - PUT /buddies/:id/radius
func (h *BuddyHandler) SetRadius(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	connID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "buddy")
	}

	var req dto.SetRadiusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.service.SetRadius(c.UserContext(), *userID, connID, req.RadiusKm); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Notify radius updated"))
}

// Remove - DELETE /buddies/:id
func (h *BuddyHandler) Remove(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	connID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "buddy")
	}

	if err := h.service.Remove(c.UserContext(), *userID, connID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Buddy removed"))
}

// UpdateLocation - PUT /me/location
func (h *BuddyHandler) UpdateLocation(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	var req dto.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	notified, err := h.service.UpdateLocation(c.UserContext(), *userID, req.Latitude, req.Longitude)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(dto.UpdateLocationResponse{BuddiesNotified: notified}, "Location updated"))
}
