package http

import (
	"time"

	"github.com/opencourt/field-booking-backend/internal/field"
)

// OperatingHoursDTO mirrors field.OperatingHours on the wire.
type OperatingHoursDTO struct {
	Weekday         int    `json:"weekday" binding:"min=0,max=6"`
	Start           string `json:"start" binding:"required"`
	End             string `json:"end" binding:"required"`
	SlotUnitMinutes int    `json:"slot_unit_minutes" binding:"required,min=1"`
}

type PriceRangeDTO struct {
	Weekday    int     `json:"weekday" binding:"min=0,max=6"`
	Start      string  `json:"start" binding:"required"`
	End        string  `json:"end" binding:"required"`
	Multiplier float64 `json:"multiplier" binding:"required,gt=0"`
}

type CreateFieldBody struct {
	VenueID            string              `json:"venue_id" binding:"required,uuid"`
	Name               string              `json:"name" binding:"required"`
	MinSlotsPerBooking int                 `json:"min_slots_per_booking" binding:"required,min=1"`
	MaxSlotsPerBooking int                 `json:"max_slots_per_booking" binding:"required,min=1"`
	BasePrice          int64               `json:"base_price" binding:"required,gt=0"`
	OperatingHours     []OperatingHoursDTO `json:"operating_hours" binding:"required,dive"`
	PriceRanges        []PriceRangeDTO     `json:"price_ranges" binding:"required,dive"`
}

type UpdateFieldBody struct {
	Name               *string             `json:"name"`
	MinSlotsPerBooking *int                `json:"min_slots_per_booking"`
	MaxSlotsPerBooking *int                `json:"max_slots_per_booking"`
	BasePrice          *int64              `json:"base_price"`
	OperatingHours     []OperatingHoursDTO `json:"operating_hours"`
	PriceRanges        []PriceRangeDTO     `json:"price_ranges"`
}

type ScheduleChangeBody struct {
	NewOperatingHours []OperatingHoursDTO `json:"new_operating_hours"`
	NewPriceRanges    []PriceRangeDTO     `json:"new_price_ranges"`
	NewBasePrice      *int64              `json:"new_base_price"`
	EffectiveDate     string              `json:"effective_date" binding:"required"`
}

type MarkHolidayBody struct {
	CourtID string `json:"court_id"`
	Date    string `json:"date" binding:"required"`
	Reason  string `json:"reason"`
}

type UnmarkHolidayBody struct {
	CourtID string `json:"court_id"`
	Date    string `json:"date" binding:"required"`
}

type PendingChangeResponse struct {
	ID                string              `json:"id"`
	NewOperatingHours []OperatingHoursDTO `json:"new_operating_hours,omitempty"`
	NewPriceRanges    []PriceRangeDTO     `json:"new_price_ranges,omitempty"`
	NewBasePrice      *int64              `json:"new_base_price,omitempty"`
	EffectiveDate     string              `json:"effective_date"`
	Applied           bool                `json:"applied"`
}

type FieldResponse struct {
	ID                 string                  `json:"id"`
	VenueID            string                  `json:"venue_id"`
	Name               string                  `json:"name"`
	MinSlotsPerBooking int                     `json:"min_slots_per_booking"`
	MaxSlotsPerBooking int                     `json:"max_slots_per_booking"`
	BasePrice          int64                   `json:"base_price"`
	OperatingHours     []OperatingHoursDTO     `json:"operating_hours"`
	PriceRanges        []PriceRangeDTO         `json:"price_ranges"`
	PendingChanges     []PendingChangeResponse `json:"pending_changes"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

func hoursToDomain(in []OperatingHoursDTO) []field.OperatingHours {
	if in == nil {
		return nil
	}
	out := make([]field.OperatingHours, len(in))
	for i, h := range in {
		out[i] = field.OperatingHours{
			Weekday:         time.Weekday(h.Weekday),
			Start:           h.Start,
			End:             h.End,
			SlotUnitMinutes: h.SlotUnitMinutes,
		}
	}
	return out
}

func rangesToDomain(in []PriceRangeDTO) []field.PriceRange {
	if in == nil {
		return nil
	}
	out := make([]field.PriceRange, len(in))
	for i, r := range in {
		out[i] = field.PriceRange{
			Weekday:    time.Weekday(r.Weekday),
			Start:      r.Start,
			End:        r.End,
			Multiplier: r.Multiplier,
		}
	}
	return out
}

func hoursToDTO(in []field.OperatingHours) []OperatingHoursDTO {
	out := make([]OperatingHoursDTO, len(in))
	for i, h := range in {
		out[i] = OperatingHoursDTO{
			Weekday:         int(h.Weekday),
			Start:           h.Start,
			End:             h.End,
			SlotUnitMinutes: h.SlotUnitMinutes,
		}
	}
	return out
}

func rangesToDTO(in []field.PriceRange) []PriceRangeDTO {
	out := make([]PriceRangeDTO, len(in))
	for i, r := range in {
		out[i] = PriceRangeDTO{
			Weekday:    int(r.Weekday),
			Start:      r.Start,
			End:        r.End,
			Multiplier: r.Multiplier,
		}
	}
	return out
}

func NewFieldResponse(f *field.Field) FieldResponse {
	changes := make([]PendingChangeResponse, len(f.PendingChanges))
	for i, ch := range f.PendingChanges {
		changes[i] = PendingChangeResponse{
			ID:                ch.ID,
			NewOperatingHours: hoursToDTO(ch.NewOperatingHours),
			NewPriceRanges:    rangesToDTO(ch.NewPriceRanges),
			NewBasePrice:      ch.NewBasePrice,
			EffectiveDate:     ch.EffectiveDate,
			Applied:           ch.Applied,
		}
	}

	return FieldResponse{
		ID:                 f.ID,
		VenueID:            f.VenueID,
		Name:               f.Name,
		MinSlotsPerBooking: f.MinSlotsPerBooking,
		MaxSlotsPerBooking: f.MaxSlotsPerBooking,
		BasePrice:          f.BasePrice,
		OperatingHours:     hoursToDTO(f.OperatingHours),
		PriceRanges:        rangesToDTO(f.PriceRanges),
		PendingChanges:     changes,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}
