package schedule

import (
	"net/http"
	"time"

	"github.com/opencourt/field-booking-backend/internal/availability"
	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

var (
	ErrSlotConflict = apperror.New(http.StatusConflict, "time slot already booked")
	ErrDateBlocked  = apperror.New(http.StatusConflict, "date is blocked for this field")
	ErrNotFound     = apperror.New(http.StatusNotFound, "schedule record not found")
)

// ReservedRange is one reserved half-open [StartMin, EndMin) interval,
// tagged with the booking that owns it. The schedule store references
// bookings, it never owns them.
type ReservedRange struct {
	StartMin   int    `json:"start_min"`
	EndMin     int    `json:"end_min"`
	BookingRef string `json:"booking_ref"`
}

// Record is the per-(field, court, date) reservation document. It is
// created lazily on the first reservation attempt for its key and carries
// a version counter incremented on every mutation; all mutual exclusion
// for slot reservation rides on conditional updates against that counter.
type Record struct {
	ID          string
	FieldID     string
	CourtID     string // empty when the field has no courts
	Date        string // "2006-01-02"
	Reserved    []ReservedRange
	IsBlocked   bool
	BlockReason string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimeRanges converts the reserved set for overlap checks.
func (r *Record) TimeRanges() []availability.TimeRange {
	out := make([]availability.TimeRange, len(r.Reserved))
	for i, rr := range r.Reserved {
		out[i] = availability.TimeRange{StartMin: rr.StartMin, EndMin: rr.EndMin}
	}
	return out
}
