package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
)

type RespondBuddyRequest struct {
	Accept bool `json:"accept"`
}

type SetRadiusRequest struct {
	RadiusKm float64 `json:"radius_km" validate:"required,gt=0"`
}

type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required"`
	Longitude float64 `json:"longitude" validate:"required"`
}

type UpdateLocationResponse struct {
	BuddiesNotified int `json:"buddies_notified"`
}

// BuddyResponse is a connection from the viewer's side: Buddy is the other user.
type BuddyResponse struct {
	ID             uuid.UUID     `json:"id"`
	Status         string        `json:"status"`
	Outgoing       bool          `json:"outgoing"`
	Buddy          *UserBriefDTO `json:"buddy,omitempty"`
	NotifyRadiusKm float64       `json:"notify_radius_km"`
	LastNotifiedAt *time.Time    `json:"last_notified_at,omitempty"`
	AcceptedAt     *time.Time    `json:"accepted_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

func MapBuddy(conn *domain.BuddyConnection, viewerID uuid.UUID) BuddyResponse {
	resp := BuddyResponse{
		ID:             conn.ID,
		Status:         string(conn.Status),
		Outgoing:       conn.RequesterID == viewerID,
		NotifyRadiusKm: conn.NotifyRadiusKm,
		LastNotifiedAt: conn.LastNotifiedAt,
		AcceptedAt:     conn.AcceptedAt,
		CreatedAt:      conn.CreatedAt,
	}
	if resp.Outgoing {
		resp.Buddy = MapUserBrief(conn.Addressee)
	} else {
		resp.Buddy = MapUserBrief(conn.Requester)
	}
	return resp
}
