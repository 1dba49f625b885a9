package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
)

// UserBriefDTO is the author/actor summary embedded in other responses.
type UserBriefDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

// Admin user list item
type UserListDTO struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	HomeCity    *string    `json:"home_city,omitempty"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func MapUserBrief(u *domain.User) *UserBriefDTO {
	if u == nil {
		return nil
	}
	return &UserBriefDTO{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

func MapUserList(u *domain.User) UserListDTO {
	return UserListDTO{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		HomeCity:    u.HomeCity,
		LastSeenAt:  u.LastSeenAt,
		CreatedAt:   u.CreatedAt,
	}
}
