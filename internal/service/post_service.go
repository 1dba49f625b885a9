package service

import (
	"context"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
	"github.com/travellinq/backend/internal/geo"
	"github.com/travellinq/backend/internal/repository"
)

const (
	MaxPostLength       = 5000
	DefaultNearbyRadius = 25.0
	MaxNearbyRadius     = 500.0

	// The box query ranks by an estimate; over-fetch so the exact sort can
	// reorder near ties.
	nearbyCandidateFactor = 4
)

type PostService struct {
	postRepo *repository.PostRepository
}

func NewPostService(postRepo *repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

type CreatePostInput struct {
	Body         string
	ImageURL     *string
	Latitude     float64
	Longitude    float64
	LocationName string
}

// NearbyPost is a post with its distance from the query point.
type NearbyPost struct {
	domain.Post
	DistanceKm float64
}

func (s *PostService) Create(ctx context.Context, userID uuid.UUID, in CreatePostInput) (*domain.Post, error) {
	body := cleanText(in.Body)
	if body == "" {
		return nil, invalid("post body is required")
	}
	if utf8.RuneCountInString(body) > MaxPostLength {
		return nil, invalid("post is longer than %d characters", MaxPostLength)
	}
	if err := (geo.Point{Lat: in.Latitude, Lng: in.Longitude}).Validate(); err != nil {
		return nil, invalid("%v", err)
	}

	post := &domain.Post{
		UserID:       userID,
		Body:         body,
		ImageURL:     in.ImageURL,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		LocationName: cleanText(in.LocationName),
		Status:       domain.PostVisible,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get returns a post. Hidden posts are only visible to their owner and admins.
func (s *PostService) Get(ctx context.Context, id uuid.UUID, viewer Viewer) (*domain.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "post")
	}
	if post.Status != domain.PostVisible && !viewer.IsAdmin && !isUser(viewer.UserID, post.UserID) {
		return nil, ErrNotFound
	}
	return post, nil
}

// Nearby finds visible posts within radiusKm of the point, closest first.
func (s *PostService) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyPost, error) {
	center := geo.Point{Lat: lat, Lng: lng}
	if err := center.Validate(); err != nil {
		return nil, invalid("%v", err)
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadius
	}
	if radiusKm > MaxNearbyRadius {
		return nil, invalid("radius may not exceed %.0f km", MaxNearbyRadius)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	candidates, err := s.postRepo.ListWithinBox(ctx, center, geo.BoundingBox(center, radiusKm), limit*nearbyCandidateFactor)
	if err != nil {
		return nil, err
	}

	result := make([]NearbyPost, 0, len(candidates))
	for _, p := range candidates {
		d := geo.DistanceKm(center, geo.Point{Lat: p.Latitude, Lng: p.Longitude})
		if d <= radiusKm {
			result = append(result, NearbyPost{Post: p, DistanceKm: d})
		}
	}

	slices.SortStableFunc(result, func(a, b NearbyPost) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		}
		return 0
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Recent lists visible posts newest first.
func (s *PostService) Recent(ctx context.Context, page, limit int) ([]domain.Post, int64, error) {
	return s.postRepo.ListRecent(ctx, page, limit)
}

// Delete removes a post with its thread. Owner or admin only.
func (s *PostService) Delete(ctx context.Context, userID, id uuid.UUID, isAdmin bool) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "post")
	}
	if post.UserID != userID && !isAdmin {
		return ErrForbidden
	}
	return s.postRepo.Delete(ctx, id)
}
