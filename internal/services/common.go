package services

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/storage"
)

// ErrImagesDisabled is returned for uploads when no image store is configured.
var ErrImagesDisabled = apierrors.New(apierrors.ErrServiceNotConfigured, "Image uploads are not configured")

// ImageUpload is an image file received with a request.
type ImageUpload struct {
	Name        string
	Reader      io.Reader
	Size        int64
	ContentType string
}

// normalizeName trims name and checks its length in characters.
func normalizeName(name, field string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apierrors.Newf(apierrors.ErrValidation, "%s is required", field)
	}
	if utf8.RuneCountInString(name) > constants.MaxNameLength {
		return "", apierrors.Newf(apierrors.ErrValidation, "%s must be at most %d characters", field, constants.MaxNameLength)
	}
	return name, nil
}

// resolveImage uploads upload when present, otherwise falls back to url.
// An empty url clears the image.
func resolveImage(ctx context.Context, images storage.ImageStore, upload *ImageUpload, url *string) (*string, error) {
	if upload != nil {
		if images == nil {
			return nil, ErrImagesDisabled
		}
		if err := storage.ValidateImage(upload.ContentType, upload.Size); err != nil {
			return nil, err
		}
		uploaded, err := images.Upload(ctx, upload.Name, upload.Reader, upload.Size, upload.ContentType)
		if err != nil {
			return nil, apierrors.StoreFailure("upload image", err)
		}
		return &uploaded, nil
	}
	if url == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*url)
	if trimmed == "" {
		return nil, nil
	}
	return &trimmed, nil
}
