package venue

import (
	"net/http"
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "venue not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "venue name is required")
	ErrMemberNotFound   = apperror.New(http.StatusNotFound, "venue member not found")
	ErrAlreadyMember    = apperror.New(http.StatusConflict, "user is already a member of this venue")
	ErrInvalidRole      = apperror.New(http.StatusBadRequest, "invalid member role")
	ErrLastOwner        = apperror.New(http.StatusBadRequest, "cannot remove the last owner of a venue")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// Member roles. Owners and staff may manage the venue's fields and bookings.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// Venue is the owning entity for fields: a club, hall, or sports complex.
type Venue struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Filter defines filter options for listing venues.
type Filter struct {
	Page     int
	PageSize int
}

// Member is a user with a management role within a venue.
type Member struct {
	UserID      string
	Email       string
	DisplayName *string
	Role        string
}

// MemberFilter defines filter options for listing members.
type MemberFilter struct {
	Page     int
	PageSize int
}
