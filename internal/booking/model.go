// Package booking owns the reservation lifecycle: creation with a price
// snapshot and an atomic slot claim, confirmation, coach responses,
// cancellation with financial assessment, and completion of elapsed
// bookings.
package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// CoachStatus tracks the invited coach's response. Empty when no coach is
// attached to the booking.
type CoachStatus string

const (
	CoachStatusPending  CoachStatus = "pending"
	CoachStatusAccepted CoachStatus = "accepted"
	CoachStatusDeclined CoachStatus = "declined"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrFieldNotFound    = apperror.New(http.StatusBadRequest, "field not found")
	ErrCourtNotFound    = apperror.New(http.StatusBadRequest, "court not found for this field")
	ErrCoachNotFound    = apperror.New(http.StatusBadRequest, "coach not available for this venue")
	ErrStartTimePast    = apperror.New(http.StatusBadRequest, "booking start time is in the past")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrNotPending       = apperror.New(http.StatusConflict, "booking is not pending")
	ErrNoCoach          = apperror.New(http.StatusConflict, "booking has no coach attached")
	ErrCoachResponded   = apperror.New(http.StatusConflict, "coach has already responded")
	ErrBookingClosed    = apperror.New(http.StatusConflict, "booking is no longer active")
	ErrStateChanged     = apperror.New(http.StatusConflict, "booking was updated concurrently")
	ErrRangeTooWide     = apperror.New(http.StatusBadRequest, "availability range exceeds 31 days")
	ErrRangeInverted    = apperror.New(http.StatusBadRequest, "availability range end precedes start")
)

func notEligible(reason string) *apperror.AppError {
	return apperror.New(http.StatusUnprocessableEntity, fmt.Sprintf("booking cannot be cancelled: %s", reason))
}

// Booking is a confirmed-or-in-progress claim on a slot range. Pricing
// fields are a snapshot frozen at creation time; later configuration
// changes never reprice an existing booking.
type Booking struct {
	ID          string
	UserID      string
	FieldID     string
	CourtID     string // empty when the field has no courts
	CoachID     *string
	CoachStatus CoachStatus // empty when CoachID is nil

	Date     string // "2006-01-02" in the business timezone
	StartMin int
	EndMin   int
	NumSlots int

	Amenities []string // recorded verbatim, no pricing impact

	Status             Status
	BookingAmount      int64
	PlatformFee        int64
	TotalPrice         int64
	BasePriceUsed      int64
	MultiplierApplied  float64
	PriceBreakdown     string
	CancellationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID   string
	FieldID  string
	CourtID  string
	Status   string
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}

// CancellationResult reports the financial outcome of a cancellation back
// to the caller. Amounts are what was emitted to the ledger, not executed
// money movement.
type CancellationResult struct {
	Booking         *Booking
	CancelledBy     string
	HoursUntilStart float64
	RefundPercent   int
	PenaltyPercent  int
	RefundAmount    int64
	PenaltyAmount   int64
}

// DayAvailability is the advisory slot grid for one date.
type DayAvailability struct {
	Date        string `json:"date"`
	Blocked     bool   `json:"blocked"`
	BlockReason string `json:"block_reason,omitempty"`
	Slots       []Slot `json:"slots"`
}

// Slot aliases the availability grid cell for the HTTP layer.
type Slot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}
