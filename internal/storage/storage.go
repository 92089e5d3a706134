// Package storage keeps workspace and project images in an S3 compatible
// bucket. Only the resulting URL is persisted with the owning record.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
)

// ImageStore uploads images and returns the URL they are served from.
type ImageStore interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

var imageExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// ValidateImage checks the declared type and size of an upload.
func ValidateImage(contentType string, size int64) error {
	if _, ok := imageExtensions[strings.ToLower(contentType)]; !ok {
		return apierrors.Newf(apierrors.ErrValidation, "Unsupported image type %q", contentType)
	}
	if size <= 0 || size > constants.MaxImageSize {
		return apierrors.Newf(apierrors.ErrValidation, "Image must be between 1 byte and %d bytes", constants.MaxImageSize)
	}
	return nil
}

// MinioConfig holds the connection settings of a MinioStore.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the base of returned URLs, for buckets served
	// through a CDN or reverse proxy.
	PublicURL string
	Region    string
}

// MinioStore implements ImageStore on MinIO or any S3 compatible service.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore creates a MinioStore. It does not contact the server.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	baseURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimSuffix(client.EndpointURL().String(), "/")
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores an image under a random key and returns its URL.
func (s *MinioStore) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ValidateImage(contentType, size); err != nil {
		return "", err
	}

	key := path.Join("images", uuid.NewString()+imageExtensions[strings.ToLower(contentType)])
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-name": path.Base(name)},
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return s.URL(key), nil
}

// URL returns the public URL of key.
func (s *MinioStore) URL(key string) string {
	return s.baseURL + "/" + s.bucket + "/" + key
}
