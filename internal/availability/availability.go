// Package availability validates requested time ranges against a field's
// configuration and detects overlap with already-reserved ranges. All
// functions are pure; results of read paths are advisory only, the schedule
// store re-checks at reservation time.
package availability

import (
	"fmt"
	"net/http"

	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
	"github.com/opencourt/field-booking-backend/internal/pkg/timeofday"
)

var (
	ErrStartAfterEnd = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrClosed        = apperror.New(http.StatusBadRequest, "field is closed on the requested weekday")
	ErrNotAligned    = apperror.New(http.StatusBadRequest, "requested range is not a whole number of slot units")
	ErrOutsideHours  = apperror.New(http.StatusBadRequest, "requested range is outside operating hours")
)

// TimeRange is a half-open [StartMin, EndMin) interval in minutes from midnight.
type TimeRange struct {
	StartMin int
	EndMin   int
}

// Slot is one slot-unit cell of a day grid with its availability flag.
type Slot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

func tooFewSlots(min int) *apperror.AppError {
	return apperror.New(http.StatusBadRequest, fmt.Sprintf("booking must cover at least %d slot(s)", min))
}

func tooManySlots(max int) *apperror.AppError {
	return apperror.New(http.StatusBadRequest, fmt.Sprintf("booking must cover at most %d slot(s)", max))
}

// ValidateRange checks a requested [start, end) range against the operating
// window for the booking date's weekday. hours is nil when the field is
// closed that day. On success it returns the number of slot units covered.
func ValidateRange(startMin, endMin int, hours *field.OperatingHours, minSlots, maxSlots int) (int, error) {
	if hours == nil {
		return 0, ErrClosed
	}
	if startMin >= endMin {
		return 0, ErrStartAfterEnd
	}

	openMin, err := timeofday.ParseMinutes(hours.Start)
	if err != nil {
		return 0, fmt.Errorf("corrupt operating hours: %w", err)
	}
	closeMin, err := timeofday.ParseMinutes(hours.End)
	if err != nil {
		return 0, fmt.Errorf("corrupt operating hours: %w", err)
	}

	if startMin < openMin || endMin > closeMin {
		return 0, ErrOutsideHours
	}
	if (startMin-openMin)%hours.SlotUnitMinutes != 0 || (endMin-startMin)%hours.SlotUnitMinutes != 0 {
		return 0, ErrNotAligned
	}

	numSlots := (endMin - startMin) / hours.SlotUnitMinutes
	if numSlots < minSlots {
		return 0, tooFewSlots(minSlots)
	}
	if numSlots > maxSlots {
		return 0, tooManySlots(maxSlots)
	}

	return numSlots, nil
}

// HasConflict reports whether [start, end) overlaps any reserved range.
// Half-open interval test: start < otherEnd && end > otherStart.
func HasConflict(startMin, endMin int, reserved []TimeRange) bool {
	for _, r := range reserved {
		if startMin < r.EndMin && endMin > r.StartMin {
			return true
		}
	}
	return false
}

// DayGrid expands one day's operating window into slot-unit cells and marks
// each cell unavailable when it overlaps a reserved range (or blocked, when
// the whole day is blocked). hours may be nil for a closed day.
func DayGrid(hours *field.OperatingHours, reserved []TimeRange, blocked bool) ([]Slot, error) {
	if hours == nil {
		return []Slot{}, nil
	}

	openMin, err := timeofday.ParseMinutes(hours.Start)
	if err != nil {
		return nil, fmt.Errorf("corrupt operating hours: %w", err)
	}
	closeMin, err := timeofday.ParseMinutes(hours.End)
	if err != nil {
		return nil, fmt.Errorf("corrupt operating hours: %w", err)
	}

	var slots []Slot
	for start := openMin; start < closeMin; start += hours.SlotUnitMinutes {
		end := start + hours.SlotUnitMinutes
		slots = append(slots, Slot{
			Start:     timeofday.FormatMinutes(start),
			End:       timeofday.FormatMinutes(end),
			Available: !blocked && !HasConflict(start, end, reserved),
		})
	}

	return slots, nil
}
