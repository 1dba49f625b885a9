package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/travellinq/backend/internal/config"
	"github.com/travellinq/backend/internal/logger"
	"go.uber.org/zap"
)

type MinIOClient struct {
	client      *minio.Client
	bucket      string
	publicURL   string
	presignHost string
}

func NewMinIOClient(ctx context.Context, cfg config.MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Log.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &MinIOClient{
		client:      client,
		bucket:      cfg.Bucket,
		publicURL:   strings.TrimSuffix(cfg.PublicURL, "/"),
		presignHost: cfg.PresignHost,
	}, nil
}

// PresignedPutURL returns a URL the browser can PUT the object to directly.
func (m *MinIOClient) PresignedPutURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedPutObject(ctx, m.bucket, objectKey, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return withHost(presignedURL, m.presignHost), nil
}

func (m *MinIOClient) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MinIOClient) PublicURL(objectKey string) string {
	return m.publicURL + "/" + objectKey
}

// withHost swaps the internal endpoint for the one browsers can reach.
func withHost(u *url.URL, host string) string {
	if host != "" && u.Host != host {
		u.Host = host
	}
	return u.String()
}

// PostImageKey builds the object key for a new post image:
// posts/<user id>/<random id><ext>.
func PostImageKey(userID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("posts/%s/%s%s", userID, uuid.NewString(), ext)
}

// OwnsKey reports whether objectKey sits under the user's post image prefix.
func OwnsKey(userID uuid.UUID, objectKey string) bool {
	return strings.HasPrefix(objectKey, "posts/"+userID.String()+"/") && !strings.Contains(objectKey, "..")
}
