package field

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHours() []OperatingHours {
	return []OperatingHours{
		{Weekday: time.Saturday, Start: "08:00", End: "22:00", SlotUnitMinutes: 60},
		{Weekday: time.Sunday, Start: "09:00", End: "21:00", SlotUnitMinutes: 60},
	}
}

func validRanges() []PriceRange {
	return []PriceRange{
		{Weekday: time.Saturday, Start: "08:00", End: "17:00", Multiplier: 1.0},
		{Weekday: time.Saturday, Start: "17:00", End: "22:00", Multiplier: 1.5},
		{Weekday: time.Sunday, Start: "09:00", End: "21:00", Multiplier: 1.2},
	}
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, ValidateConfig(100000, 1, 14, validHours(), validRanges()))
}

func TestValidateConfigRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(hours *[]OperatingHours, ranges *[]PriceRange)
	}{
		{
			name: "duplicate weekday window",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				*hours = append(*hours, OperatingHours{Weekday: time.Saturday, Start: "06:00", End: "08:00", SlotUnitMinutes: 60})
			},
		},
		{
			name: "window not a multiple of the slot unit",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*hours)[0].End = "22:30"
			},
		},
		{
			name: "inverted window",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*hours)[0].Start = "23:00"
			},
		},
		{
			name: "zero slot unit",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*hours)[0].SlotUnitMinutes = 0
			},
		},
		{
			name: "range on a closed weekday",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				*ranges = append(*ranges, PriceRange{Weekday: time.Monday, Start: "09:00", End: "10:00", Multiplier: 1.0})
			},
		},
		{
			name: "gap between segments",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*ranges)[0].End = "16:00"
			},
		},
		{
			name: "overlapping segments",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*ranges)[0].End = "18:00"
			},
		},
		{
			name: "segments start after window opens",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*ranges)[0].Start = "09:00"
			},
		},
		{
			name: "segments stop before window closes",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*ranges)[1].End = "21:00"
			},
		},
		{
			name: "segment boundary off the slot grid",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*ranges)[0].End = "16:30"
				(*ranges)[1].Start = "16:30"
			},
		},
		{
			name: "open weekday with no segments",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				*ranges = (*ranges)[:2] // drop Sunday
			},
		},
		{
			name: "non-positive multiplier",
			mutate: func(hours *[]OperatingHours, ranges *[]PriceRange) {
				(*ranges)[0].Multiplier = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours := validHours()
			ranges := validRanges()
			tt.mutate(&hours, &ranges)
			assert.Error(t, ValidateConfig(100000, 1, 14, hours, ranges))
		})
	}

	t.Run("non-positive base price", func(t *testing.T) {
		assert.Error(t, ValidateConfig(0, 1, 14, validHours(), validRanges()))
	})
	t.Run("max below min", func(t *testing.T) {
		assert.Error(t, ValidateConfig(100000, 4, 2, validHours(), validRanges()))
	})
	t.Run("no operating hours at all", func(t *testing.T) {
		assert.Error(t, ValidateConfig(100000, 1, 14, nil, nil))
	})
}

func testField() *Field {
	return &Field{
		ID:                 "f1",
		VenueID:            "v1",
		Name:               "Center Field",
		MinSlotsPerBooking: 1,
		MaxSlotsPerBooking: 14,
		BasePrice:          100000,
		OperatingHours:     validHours(),
		PriceRanges:        validRanges(),
	}
}

func TestValidateChange(t *testing.T) {
	f := testField()

	t.Run("base price only", func(t *testing.T) {
		price := int64(120000)
		err := ValidateChange(f, PendingPriceChange{NewBasePrice: &price, EffectiveDate: "2026-04-01"})
		assert.NoError(t, err)
	})

	t.Run("missing effective date", func(t *testing.T) {
		price := int64(120000)
		err := ValidateChange(f, PendingPriceChange{NewBasePrice: &price})
		assert.Error(t, err)
	})

	t.Run("empty change", func(t *testing.T) {
		err := ValidateChange(f, PendingPriceChange{EffectiveDate: "2026-04-01"})
		assert.Error(t, err)
	})

	t.Run("new ranges must partition the inherited window", func(t *testing.T) {
		err := ValidateChange(f, PendingPriceChange{
			EffectiveDate: "2026-04-01",
			NewPriceRanges: []PriceRange{
				// Saturday covered, Sunday forgotten.
				{Weekday: time.Saturday, Start: "08:00", End: "22:00", Multiplier: 1.0},
			},
		})
		assert.Error(t, err)
	})

	t.Run("new hours and ranges replaced together", func(t *testing.T) {
		err := ValidateChange(f, PendingPriceChange{
			EffectiveDate: "2026-04-01",
			NewOperatingHours: []OperatingHours{
				{Weekday: time.Friday, Start: "10:00", End: "20:00", SlotUnitMinutes: 30},
			},
			NewPriceRanges: []PriceRange{
				{Weekday: time.Friday, Start: "10:00", End: "20:00", Multiplier: 1.0},
			},
		})
		assert.NoError(t, err)
	})
}

func TestConfigForFoldsChangesChronologically(t *testing.T) {
	price1 := int64(110000)
	price2 := int64(130000)
	f := testField()
	// Deliberately out of order; ConfigFor must sort by effective date.
	f.PendingChanges = []PendingPriceChange{
		{ID: "c2", NewBasePrice: &price2, EffectiveDate: "2026-05-01"},
		{ID: "c1", NewBasePrice: &price1, EffectiveDate: "2026-04-01"},
	}

	assert.Equal(t, int64(100000), f.ConfigFor("2026-03-31").BasePrice)
	// Effective date itself sees the new configuration.
	assert.Equal(t, int64(110000), f.ConfigFor("2026-04-01").BasePrice)
	assert.Equal(t, int64(110000), f.ConfigFor("2026-04-30").BasePrice)
	assert.Equal(t, int64(130000), f.ConfigFor("2026-05-01").BasePrice)
}

func TestConfigForInheritsUnchangedParts(t *testing.T) {
	price := int64(110000)
	f := testField()
	f.PendingChanges = []PendingPriceChange{
		{ID: "c1", NewBasePrice: &price, EffectiveDate: "2026-04-01"},
	}

	cfg := f.ConfigFor("2026-04-15")
	assert.Equal(t, price, cfg.BasePrice)
	// Hours and ranges inherited from the live configuration.
	assert.Equal(t, f.OperatingHours, cfg.OperatingHours)
	assert.Equal(t, f.PriceRanges, cfg.PriceRanges)
}

func TestConfigForAppliedFlagIrrelevant(t *testing.T) {
	price := int64(110000)
	f := testField()
	f.PendingChanges = []PendingPriceChange{
		{ID: "c1", NewBasePrice: &price, EffectiveDate: "2026-04-01", Applied: true},
	}

	// An applied change still participates in resolution; the folding
	// sweep only advances the live copy.
	assert.Equal(t, price, f.ConfigFor("2026-04-15").BasePrice)
}
