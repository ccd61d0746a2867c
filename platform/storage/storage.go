// Package storage provides object storage infrastructure for file attachments.
// This is part of the platform layer and contains no business logic.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURL contains a time-limited URL for direct upload or download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service abstracts the object store so domain code never imports the MinIO SDK.
type Service interface {
	EnsureBucketExists(ctx context.Context, bucket string) error
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, bucket, fileKey string) error
	GetMaxFileSize() int64
}
