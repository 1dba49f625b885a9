package handler

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/storage"
)

const (
	maxPostImageSize = 10 * 1024 * 1024 // 10MB
	presignExpiry    = 15 * time.Minute
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type UploadHandler struct {
	images ImageStore
}

func NewUploadHandler(images ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

// Presign - POST /uploads/presign
// The client PUTs the file to the returned URL and then creates the post with
// image_key set to the object key.
func (h *UploadHandler) Presign(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return unauthorized(c)
	}
	if h.images == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse("STORAGE_UNAVAILABLE", "Image uploads are disabled"))
	}

	var req dto.PresignRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if req.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "filename is required"))
	}
	if req.FileSize <= 0 || req.FileSize > maxPostImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("FILE_TOO_LARGE", "File is too large",
			dto.ErrorDetail{Field: "file_size", Message: fmt.Sprintf("Images may be at most %dMB", maxPostImageSize/(1024*1024))},
		))
	}
	if !slices.Contains(allowedImageTypes, req.ContentType) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_CONTENT_TYPE", "File type is not allowed",
			dto.ErrorDetail{Field: "content_type", Message: "Allowed types: " + strings.Join(allowedImageTypes, ", ")},
		))
	}

	objectKey := storage.PostImageKey(*userID, req.Filename)
	presignedURL, err := h.images.PresignedPutURL(c.UserContext(), objectKey, presignExpiry)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse(dto.PresignResponse{
		PresignedURL: presignedURL,
		ObjectKey:    objectKey,
		PublicURL:    h.images.PublicURL(objectKey),
		ExpiresIn:    int(presignExpiry.Seconds()),
		Method:       "PUT",
		Headers:      map[string]string{"Content-Type": req.ContentType},
	}, ""))
}
