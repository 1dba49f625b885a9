package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/repository"
	"go.uber.org/zap"
)

const (
	// How often a user's last_seen_at is written at most.
	touchInterval = time.Minute
	maxTracked    = 10000
)

// ProfileMiddleware makes sure an authenticated subject has a profile row and
// keeps its last-seen time fresh. Runs after Required or Optional.
type ProfileMiddleware struct {
	userRepo *repository.UserRepository
	touched  *expirable.LRU[string, time.Time]
	now      func() time.Time
}

func NewProfileMiddleware(userRepo *repository.UserRepository) *ProfileMiddleware {
	return &ProfileMiddleware{
		userRepo: userRepo,
		touched:  expirable.NewLRU[string, time.Time](maxTracked, nil, touchInterval),
		now:      time.Now,
	}
}

func (m *ProfileMiddleware) Ensure() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == nil {
			return c.Next()
		}

		key := userID.String()
		now := m.now()

		if last, ok := m.touched.Get(key); ok && now.Sub(last) < touchInterval {
			return c.Next()
		}
		m.touched.Add(key, now)

		ctx := c.UserContext()
		if err := m.userRepo.EnsureExists(ctx, *userID); err != nil {
			m.touched.Remove(key)
			logger.Log.Error("failed to provision profile", zap.String("user_id", key), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
				"INTERNAL_ERROR",
				"Could not load profile",
			))
		}
		if err := m.userRepo.Touch(ctx, *userID, now); err != nil {
			logger.Log.Warn("failed to touch profile", zap.String("user_id", key), zap.Error(err))
		}

		return c.Next()
	}
}
