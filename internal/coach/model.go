package coach

import (
	"net/http"
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "coach not found")
	ErrInvalidVenue     = apperror.New(http.StatusBadRequest, "invalid venue_id")
	ErrInvalidUser      = apperror.New(http.StatusBadRequest, "invalid user_id")
	ErrAlreadyCoach     = apperror.New(http.StatusConflict, "user is already a coach at this venue")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Coach is a venue-scoped coaching profile. Bookings that request a coach
// reference one of these; the linked user is the only actor allowed to
// accept or decline the paired session.
type Coach struct {
	ID        string
	VenueID   string
	UserID    string
	Specialty string
	Bio       *string
	IsActive  bool
	CreatedAt time.Time
}

// Filter defines parameters for listing coaches.
type Filter struct {
	VenueID  string
	Page     int
	PageSize int
}
