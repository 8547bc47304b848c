package court

import (
	"net/http"
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "court not found")
	ErrEmptyName        = apperror.New(http.StatusBadRequest, "court name cannot be empty")
	ErrInvalidField     = apperror.New(http.StatusBadRequest, "invalid field_id")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Court is an individually bookable surface within a field (e.g. Court 2).
// Fields without courts book the whole field as one unit.
type Court struct {
	ID        string
	FieldID   string
	Name      string
	CreatedAt time.Time
}

// Filter defines parameters for listing courts.
type Filter struct {
	FieldID  string
	Page     int
	PageSize int
}
