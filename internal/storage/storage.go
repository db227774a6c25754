// Package storage wraps the S3-compatible object store (Arvan Cloud in
// production) that receives uploaded recordings and poster images. The core
// only depends on the Uploader contract: a file goes in, a public URL comes
// out.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"minbar-hub/internal/config"
	"minbar-hub/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores a file and returns its public retrieval URL.
type Uploader interface {
	Upload(ctx context.Context, fileName string, contentType string, file io.Reader, size int64) (string, error)
}

type ObjectStorage struct {
	client *minio.Client
	cfg    *config.StorageConfig
}

func NewObjectStorage(cfg *config.StorageConfig) (*ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage client: %w", err)
	}
	return &ObjectStorage{client: client, cfg: cfg}, nil
}

// Upload stores the file under a date-partitioned key and returns the public
// URL. Size limits are enforced by the caller before this point.
func (s *ObjectStorage) Upload(ctx context.Context, fileName string, contentType string, file io.Reader, size int64) (string, error) {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if contentType == "" {
		contentType = mime.TypeByExtension(fileExt)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := time.Now().UTC()
	objectName := fmt.Sprintf("media/%d/%02d/%s%s",
		now.Year(),
		now.Month(),
		uuid.New().String(),
		fileExt)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.publicURL(objectName), nil
}

func (s *ObjectStorage) publicURL(objectName string) string {
	if s.cfg.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.cfg.PublicURL, "/"), objectName)
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, objectName)
}

// MediaTypeFor derives the recording kind from a MIME type. Anything that is
// not video is treated as audio, matching how submissions were always
// classified.
func MediaTypeFor(contentType string) models.MediaType {
	if strings.HasPrefix(contentType, "video") {
		return models.MediaVideo
	}
	return models.MediaAudio
}
