package dto

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
)

type CreatePostRequest struct {
	Body         string  `json:"body" validate:"required,max=5000"`
	ImageKey     *string `json:"image_key,omitempty"`
	Latitude     float64 `json:"latitude" validate:"required"`
	Longitude    float64 `json:"longitude" validate:"required"`
	LocationName string  `json:"location_name,omitempty"`
}

type PostResponse struct {
	ID           uuid.UUID     `json:"id"`
	Body         string        `json:"body"`
	ImageURL     *string       `json:"image_url,omitempty"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	LocationName string        `json:"location_name,omitempty"`
	Status       string        `json:"status"`
	CommentCount int           `json:"comment_count"`
	DistanceKm   *float64      `json:"distance_km,omitempty"`
	Author       *UserBriefDTO `json:"author,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func MapPost(p *domain.Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		Body:         p.Body,
		ImageURL:     p.ImageURL,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		LocationName: p.LocationName,
		Status:       string(p.Status),
		CommentCount: p.CommentCount,
		Author:       MapUserBrief(p.User),
		CreatedAt:    p.CreatedAt,
	}
}

// MapNearbyPost adds the distance, rounded to 100 m.
func MapNearbyPost(p *domain.Post, distanceKm float64) PostResponse {
	resp := MapPost(p)
	d := math.Round(distanceKm*10) / 10
	resp.DistanceKm = &d
	return resp
}
