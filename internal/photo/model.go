// Package photo manages field gallery images: upload with thumbnail
// generation, download, and deletion. Only venue managers may modify a
// field's gallery.
package photo

import (
	"net/http"
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "photo not found")
	ErrNotAnImage       = apperror.New(http.StatusBadRequest, "uploaded file is not an image")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Photo is one image in a field's gallery.
type Photo struct {
	ID            string
	FieldID       string
	UploaderID    string
	Filename      string
	StoragePath   string  // internal
	ThumbnailPath *string // internal
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public download path for a photo.
func URL(id string) string {
	return "/v1/photos/" + id
}

// ThumbnailURL returns the public thumbnail path for a photo.
func ThumbnailURL(id string) string {
	return "/v1/photos/" + id + "/thumbnail"
}
