// Package pricing computes the charge for a booking range from a field's
// effective price configuration. The computation is pure: the caller
// resolves which configuration applies to the booking date (live or a
// pending change) via field.ConfigFor and passes it in.
package pricing

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
	"github.com/opencourt/field-booking-backend/internal/pkg/timeofday"
)

// ErrCorruptConfiguration signals a slot unit with no covering price
// segment. The partition invariant enforced on configuration writes makes
// this unreachable; seeing it means a defective write path.
var ErrCorruptConfiguration = apperror.New(http.StatusInternalServerError, "price configuration does not cover the requested range")

// Result is the price snapshot for a booking range, frozen onto the
// booking at creation time.
type Result struct {
	Total             int64
	BasePriceUsed     int64
	MultiplierApplied float64 // dominant multiplier, by slot units covered
	Breakdown         string
}

type parsedSegment struct {
	startMin, endMin int
	multiplier       float64
}

// Quote prices the half-open [startMin, endMin) range for one weekday: per
// slot unit, basePrice times the multiplier of the covering segment,
// accumulated over the range. The range must already be validated against
// the operating window.
func Quote(cfg field.EffectiveConfig, weekday time.Weekday, startMin, endMin int) (*Result, error) {
	var hours *field.OperatingHours
	for i := range cfg.OperatingHours {
		if cfg.OperatingHours[i].Weekday == weekday {
			hours = &cfg.OperatingHours[i]
			break
		}
	}
	if hours == nil {
		return nil, ErrCorruptConfiguration
	}

	var segments []parsedSegment
	for _, r := range cfg.PriceRanges {
		if r.Weekday != weekday {
			continue
		}
		s, err := timeofday.ParseMinutes(r.Start)
		if err != nil {
			return nil, ErrCorruptConfiguration
		}
		e, err := timeofday.ParseMinutes(r.End)
		if err != nil {
			return nil, ErrCorruptConfiguration
		}
		segments = append(segments, parsedSegment{startMin: s, endMin: e, multiplier: r.Multiplier})
	}

	var total int64
	unitsByMultiplier := make(map[float64]int)

	type breakdownRun struct {
		startMin, endMin int
		multiplier       float64
		amount           int64
	}
	var runs []breakdownRun

	for unitStart := startMin; unitStart < endMin; unitStart += hours.SlotUnitMinutes {
		seg := coveringSegment(segments, unitStart)
		if seg == nil {
			return nil, ErrCorruptConfiguration
		}

		unitPrice := int64(math.Round(float64(cfg.BasePrice) * seg.multiplier))
		total += unitPrice
		unitsByMultiplier[seg.multiplier]++

		unitEnd := unitStart + hours.SlotUnitMinutes
		if n := len(runs); n > 0 && runs[n-1].multiplier == seg.multiplier && runs[n-1].endMin == unitStart {
			runs[n-1].endMin = unitEnd
			runs[n-1].amount += unitPrice
		} else {
			runs = append(runs, breakdownRun{
				startMin:   unitStart,
				endMin:     unitEnd,
				multiplier: seg.multiplier,
				amount:     unitPrice,
			})
		}
	}

	dominant := 0.0
	dominantUnits := -1
	for _, run := range runs {
		units := unitsByMultiplier[run.multiplier]
		// Ties resolve to the earliest run in the range.
		if units > dominantUnits {
			dominant = run.multiplier
			dominantUnits = units
		}
	}

	var parts []string
	for _, run := range runs {
		parts = append(parts, fmt.Sprintf("%s-%s @ %d x%.2f = %d",
			timeofday.FormatMinutes(run.startMin),
			timeofday.FormatMinutes(run.endMin),
			cfg.BasePrice, run.multiplier, run.amount,
		))
	}

	return &Result{
		Total:             total,
		BasePriceUsed:     cfg.BasePrice,
		MultiplierApplied: dominant,
		Breakdown:         strings.Join(parts, "; "),
	}, nil
}

// coveringSegment finds the segment containing the given minute, or nil.
// The partition invariant guarantees at most one match.
func coveringSegment(segments []parsedSegment, minute int) *parsedSegment {
	for i := range segments {
		if minute >= segments[i].startMin && minute < segments[i].endMin {
			return &segments[i]
		}
	}
	return nil
}
