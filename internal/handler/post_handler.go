package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/service"
	"github.com/travellinq/backend/internal/storage"
)

// ImageStore is the object storage the post image flow needs.
type ImageStore interface {
	PresignedPutURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	PublicURL(objectKey string) string
}

type PostHandler struct {
	service *service.PostService
	images  ImageStore
}

func NewPostHandler(service *service.PostService, images ImageStore) *PostHandler {
	return &PostHandler{service: service, images: images}
}

// List - GET /posts?page&limit
func (h *PostHandler) List(c *fiber.Ctx) error {
	page, limit := pagination(c, 20, 100)
	posts, total, err := h.service.Recent(c.UserContext(), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	result := make([]dto.PostResponse, len(posts))
	for i := range posts {
		result[i] = dto.MapPost(&posts[i])
	}
	return c.JSON(dto.SuccessWithMeta(result, dto.NewMeta(page, limit, total)))
}

// Nearby - GET /posts/nearby?lat&lng&radius_km&limit
func (h *PostHandler) Nearby(c *fiber.Ctx) error {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_INPUT", "lat and lng are required"))
	}
	lat := c.QueryFloat("lat")
	lng := c.QueryFloat("lng")
	radius := c.QueryFloat("radius_km", service.DefaultNearbyRadius)

	posts, err := h.service.Nearby(c.UserContext(), lat, lng, radius, c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}

	result := make([]dto.PostResponse, len(posts))
	for i := range posts {
		result[i] = dto.MapNearbyPost(&posts[i].Post, posts[i].DistanceKm)
	}
	return c.JSON(dto.SuccessResponse(result, ""))
}

// Create - POST /posts
func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}

	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	in := service.CreatePostInput{
		Body:         req.Body,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LocationName: req.LocationName,
	}

	if req.ImageKey != nil && *req.ImageKey != "" {
		url, err := h.imageURL(c.UserContext(), *userID, *req.ImageKey)
		if err != nil {
			return respondError(c, err)
		}
		in.ImageURL = &url
	}

	post, err := h.service.Create(c.UserContext(), *userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.MapPost(post), "Post created"))
}

// imageURL checks an uploaded image belongs to the user and is in the bucket.
func (h *PostHandler) imageURL(ctx context.Context, userID uuid.UUID, key string) (string, error) {
	if h.images == nil {
		return "", service.ErrInvalidInput
	}
	if !storage.OwnsKey(userID, key) {
		return "", service.ErrForbidden
	}
	exists, err := h.images.ObjectExists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", service.ErrNotFound
	}
	return h.images.PublicURL(key), nil
}

// Get - GET /posts/:id
func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "post")
	}

	post, err := h.service.Get(c.UserContext(), id, viewerFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(dto.MapPost(post), ""))
}

// Delete - DELETE /posts/:id
func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "post")
	}

	if err := h.service.Delete(c.UserContext(), *userID, id, middleware.IsAdmin(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Post deleted"))
}
