package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/service"
	"go.uber.org/zap"
)

// respondError maps service errors onto the response envelope. Anything
// unrecognised is logged and reported as a 500 without internals.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidVote):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse("INVALID_VOTE", err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_INPUT", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("NOT_FOUND", err.Error()))
	case errors.Is(err, service.ErrNotBuddies):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse("NOT_BUDDIES", err.Error()))
	case errors.Is(err, service.ErrNotInConversation):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse("NOT_PARTICIPANT", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse("FORBIDDEN", "You are not allowed to do this"))
	case errors.Is(err, service.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse("CONFLICT", err.Error()))
	}

	logger.Log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "Something went wrong"))
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "Unauthorized"))
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_BODY", "Invalid request body"))
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func invalidID(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_ID", "Invalid "+what+" ID"))
}

// pagination reads page and limit, falling back to defaultLimit when limit is
// missing or above max.
func pagination(c *fiber.Ctx, defaultLimit, max int) (int, int) {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > max {
		limit = defaultLimit
	}
	return page, limit
}

func viewerFrom(c *fiber.Ctx) service.Viewer {
	return service.Viewer{
		UserID:  middleware.GetUserID(c),
		IsAdmin: middleware.IsAdmin(c),
	}
}
