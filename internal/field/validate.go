package field

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
	"github.com/opencourt/field-booking-backend/internal/pkg/timeofday"
)

// configError builds a 400 validation error naming the violated constraint.
func configError(format string, args ...any) *apperror.AppError {
	return apperror.New(http.StatusBadRequest, fmt.Sprintf("invalid field configuration: "+format, args...))
}

// ValidateConfig checks the Field Catalog invariants before any persist:
// operating windows are well-formed and slot-unit aligned, and the price
// ranges of every open weekday exactly partition that weekday's window.
// It must be called synchronously on every configuration write; pricing
// treats a violation observed later as a defect.
func ValidateConfig(basePrice int64, minSlots, maxSlots int, hours []OperatingHours, ranges []PriceRange) error {
	if basePrice <= 0 {
		return configError("base_price must be positive")
	}
	if minSlots < 1 {
		return configError("min_slots_per_booking must be at least 1")
	}
	if maxSlots < minSlots {
		return configError("max_slots_per_booking must be >= min_slots_per_booking")
	}
	if len(hours) == 0 {
		return configError("at least one operating hours entry is required")
	}

	type window struct {
		start, end, unit int
	}
	windows := make(map[time.Weekday]window, len(hours))

	for _, h := range hours {
		if _, dup := windows[h.Weekday]; dup {
			return configError("duplicate operating hours for %s", h.Weekday)
		}

		start, err := timeofday.ParseMinutes(h.Start)
		if err != nil {
			return configError("operating hours for %s: %v", h.Weekday, err)
		}
		end, err := timeofday.ParseMinutes(h.End)
		if err != nil {
			return configError("operating hours for %s: %v", h.Weekday, err)
		}

		if start >= end {
			return configError("operating hours for %s: start must be before end", h.Weekday)
		}
		if h.SlotUnitMinutes <= 0 {
			return configError("operating hours for %s: slot_unit_minutes must be positive", h.Weekday)
		}
		if (end-start)%h.SlotUnitMinutes != 0 {
			return configError("operating hours for %s: window is not a multiple of the slot unit", h.Weekday)
		}

		windows[h.Weekday] = window{start: start, end: end, unit: h.SlotUnitMinutes}
	}

	type segment struct {
		start, end int
	}
	segments := make(map[time.Weekday][]segment)

	for _, r := range ranges {
		w, open := windows[r.Weekday]
		if !open {
			return configError("price range on %s but no operating hours for that weekday", r.Weekday)
		}

		start, err := timeofday.ParseMinutes(r.Start)
		if err != nil {
			return configError("price range for %s: %v", r.Weekday, err)
		}
		end, err := timeofday.ParseMinutes(r.End)
		if err != nil {
			return configError("price range for %s: %v", r.Weekday, err)
		}

		if start >= end {
			return configError("price range for %s: start must be before end", r.Weekday)
		}
		if r.Multiplier <= 0 {
			return configError("price range for %s: multiplier must be positive", r.Weekday)
		}
		// Segment boundaries must land on slot-unit boundaries so every
		// slot unit has exactly one covering segment.
		if (start-w.start)%w.unit != 0 || (end-w.start)%w.unit != 0 {
			return configError("price range for %s: boundaries must align to the slot unit", r.Weekday)
		}

		segments[r.Weekday] = append(segments[r.Weekday], segment{start: start, end: end})
	}

	// Every open weekday must be exactly partitioned: no gap, no overlap.
	for weekday, w := range windows {
		segs := segments[weekday]
		if len(segs) == 0 {
			return configError("no price ranges for open weekday %s", weekday)
		}

		sort.Slice(segs, func(i, j int) bool { return segs[i].start < segs[j].start })

		if segs[0].start != w.start {
			return configError("price ranges for %s do not start at the operating window start", weekday)
		}
		for i := 1; i < len(segs); i++ {
			if segs[i].start < segs[i-1].end {
				return configError("price ranges for %s overlap", weekday)
			}
			if segs[i].start > segs[i-1].end {
				return configError("price ranges for %s leave a gap", weekday)
			}
		}
		if segs[len(segs)-1].end != w.end {
			return configError("price ranges for %s do not end at the operating window end", weekday)
		}
	}

	return nil
}

// ValidateChange checks a pending price change by folding it over the
// configuration that will be in force just before its effective date and
// validating the result. A change may replace any subset of parts.
func ValidateChange(f *Field, change PendingPriceChange) error {
	if change.EffectiveDate == "" {
		return configError("effective_date is required")
	}
	if _, err := timeofday.ParseDate(change.EffectiveDate, time.UTC); err != nil {
		return configError("%v", err)
	}
	if change.NewBasePrice == nil && change.NewOperatingHours == nil && change.NewPriceRanges == nil {
		return configError("price change must modify at least one of base price, operating hours, price ranges")
	}

	base := f.ConfigFor(change.EffectiveDate)

	price := base.BasePrice
	if change.NewBasePrice != nil {
		price = *change.NewBasePrice
	}
	hours := base.OperatingHours
	if change.NewOperatingHours != nil {
		hours = change.NewOperatingHours
	}
	ranges := base.PriceRanges
	if change.NewPriceRanges != nil {
		ranges = change.NewPriceRanges
	}

	return ValidateConfig(price, f.MinSlotsPerBooking, f.MaxSlotsPerBooking, hours, ranges)
}
