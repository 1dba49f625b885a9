package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/auth"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/dto"
	"gorm.io/gorm"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	db         *gorm.DB
}

func NewAuthMiddleware(jwtService *auth.JWTService, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		db:         db,
	}
}

// Required authentication
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"UNAUTHORIZED",
				"Missing token",
			))
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"UNAUTHORIZED",
				"Invalid token format",
			))
		}

		claims, err := m.jwtService.ValidateAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
					"TOKEN_EXPIRED",
					"Token expired",
				))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"INVALID_TOKEN",
				"Invalid token",
			))
		}

		userID, _ := claims.UserID()
		if m.IsDeactivated(userID) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
				"ACCOUNT_DISABLED",
				"Account has been deactivated",
			))
		}

		c.Locals("userID", userID)
		c.Locals("userRole", claims.Role)

		return c.Next()
	}
}

// Optional authentication
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Next()
		}

		claims, err := m.jwtService.ValidateAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return c.Next()
		}

		userID, _ := claims.UserID()
		if m.IsDeactivated(userID) {
			return c.Next()
		}

		c.Locals("userID", userID)
		c.Locals("userRole", claims.Role)

		return c.Next()
	}
}

// Admin only
func (m *AuthMiddleware) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserRole(c) != string(domain.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
				"FORBIDDEN",
				"Admins only",
			))
		}
		return c.Next()
	}
}

// IsDeactivated reports whether an admin switched the profile off. Users with
// no profile row yet are allowed through.
func (m *AuthMiddleware) IsDeactivated(userID uuid.UUID) bool {
	if m.db == nil {
		return false
	}
	var count int64
	m.db.Model(&domain.User{}).
		Where("id = ? AND is_active = ? AND deleted_at IS NULL", userID, false).
		Count(&count)
	return count > 0
}

// Get current user ID from context
func GetUserID(c *fiber.Ctx) *uuid.UUID {
	id, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// Get current user role from context
func GetUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals("userRole").(string)
	return role
}

// IsAdmin reports whether the current user holds the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserRole(c) == string(domain.RoleAdmin)
}

// GetJWTService returns the JWT service for token validation
func (m *AuthMiddleware) GetJWTService() *auth.JWTService {
	return m.jwtService
}
