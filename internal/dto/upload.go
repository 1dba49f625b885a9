package dto

type PresignRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	FileSize    int64  `json:"file_size" validate:"required"`
}

type PresignResponse struct {
	PresignedURL string            `json:"presigned_url"`
	ObjectKey    string            `json:"object_key"`
	PublicURL    string            `json:"public_url"`
	ExpiresIn    int               `json:"expires_in"`
	Method       string            `json:"method"`
	Headers      map[string]string `json:"headers"`
}
