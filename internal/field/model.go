package field

import (
	"net/http"
	"sort"
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "field not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "field name is required")
	ErrVenueRequired    = apperror.New(http.StatusBadRequest, "venue_id is required")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

// OperatingHours defines the bookable window for one weekday.
// A field has at most one window per weekday.
type OperatingHours struct {
	Weekday         time.Weekday `json:"weekday"`
	Start           string       `json:"start"` // "HH:MM"
	End             string       `json:"end"`   // "HH:MM", exclusive
	SlotUnitMinutes int          `json:"slot_unit_minutes"`
}

// PriceRange is one price segment of a weekday's operating window.
// The segments for a weekday must exactly partition that weekday's
// operating window: sorted, contiguous, no gap, no overlap.
type PriceRange struct {
	Weekday    time.Weekday `json:"weekday"`
	Start      string       `json:"start"`
	End        string       `json:"end"`
	Multiplier float64      `json:"multiplier"`
}

// PendingPriceChange is a queued configuration change that takes effect
// for booking dates on or after EffectiveDate. Nil parts inherit the
// configuration in force before the change.
type PendingPriceChange struct {
	ID                string           `json:"id"`
	NewOperatingHours []OperatingHours `json:"new_operating_hours,omitempty"`
	NewPriceRanges    []PriceRange     `json:"new_price_ranges,omitempty"`
	NewBasePrice      *int64           `json:"new_base_price,omitempty"`
	EffectiveDate     string           `json:"effective_date"` // "2006-01-02"
	Applied           bool             `json:"applied"`
}

// Field is the bookable sports field configuration aggregate.
type Field struct {
	ID                 string
	VenueID            string
	Name               string
	MinSlotsPerBooking int
	MaxSlotsPerBooking int
	BasePrice          int64 // smallest currency unit per slot unit at multiplier 1.0
	OperatingHours     []OperatingHours
	PriceRanges        []PriceRange
	PendingChanges     []PendingPriceChange
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Filter defines parameters for listing fields.
type Filter struct {
	VenueID  string
	Page     int
	PageSize int
}

// EffectiveConfig is the configuration in force for a particular booking date.
type EffectiveConfig struct {
	BasePrice      int64
	OperatingHours []OperatingHours
	PriceRanges    []PriceRange
}

// HoursFor returns the operating window for a weekday, or nil when closed.
func hoursFor(hours []OperatingHours, weekday time.Weekday) *OperatingHours {
	for i := range hours {
		if hours[i].Weekday == weekday {
			return &hours[i]
		}
	}
	return nil
}

// HoursFor returns the live operating window for a weekday, or nil when closed.
func (f *Field) HoursFor(weekday time.Weekday) *OperatingHours {
	return hoursFor(f.OperatingHours, weekday)
}

// HoursFor returns the effective operating window for a weekday, or nil when closed.
func (c EffectiveConfig) HoursFor(weekday time.Weekday) *OperatingHours {
	return hoursFor(c.OperatingHours, weekday)
}

// ConfigFor resolves the configuration applying to a booking date.
// Pending changes with effectiveDate <= date are folded over the live
// configuration in chronological order, applied or not: the folding
// scheduler only makes the live copy catch up, it never decides which
// configuration a booking date sees.
func (f *Field) ConfigFor(date string) EffectiveConfig {
	cfg := EffectiveConfig{
		BasePrice:      f.BasePrice,
		OperatingHours: f.OperatingHours,
		PriceRanges:    f.PriceRanges,
	}

	due := make([]PendingPriceChange, 0, len(f.PendingChanges))
	for _, c := range f.PendingChanges {
		if c.EffectiveDate <= date {
			due = append(due, c)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].EffectiveDate < due[j].EffectiveDate
	})

	for _, c := range due {
		if c.NewBasePrice != nil {
			cfg.BasePrice = *c.NewBasePrice
		}
		if c.NewOperatingHours != nil {
			cfg.OperatingHours = c.NewOperatingHours
		}
		if c.NewPriceRanges != nil {
			cfg.PriceRanges = c.NewPriceRanges
		}
	}

	return cfg
}
