package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/field-booking-backend/internal/field"
)

func testHours() *field.OperatingHours {
	return &field.OperatingHours{
		Weekday:         time.Saturday,
		Start:           "08:00",
		End:             "22:00",
		SlotUnitMinutes: 60,
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		end       int
		wantSlots int
		wantErr   error
	}{
		{name: "valid two slots", start: 9 * 60, end: 11 * 60, wantSlots: 2},
		{name: "full day", start: 8 * 60, end: 22 * 60, wantSlots: 0, wantErr: nil},
		{name: "start equals end", start: 10 * 60, end: 10 * 60, wantErr: ErrStartAfterEnd},
		{name: "start after end", start: 11 * 60, end: 10 * 60, wantErr: ErrStartAfterEnd},
		{name: "before opening", start: 7 * 60, end: 9 * 60, wantErr: ErrOutsideHours},
		{name: "past closing", start: 21 * 60, end: 23 * 60, wantErr: ErrOutsideHours},
		{name: "unaligned start", start: 9*60 + 30, end: 11 * 60, wantErr: ErrNotAligned},
		{name: "unaligned duration", start: 9 * 60, end: 10*60 + 30, wantErr: ErrNotAligned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := ValidateRange(tt.start, tt.end, testHours(), 1, 14)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantSlots > 0 {
				assert.Equal(t, tt.wantSlots, slots)
			}
		})
	}
}

func TestValidateRangeClosedDay(t *testing.T) {
	_, err := ValidateRange(9*60, 10*60, nil, 1, 14)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestValidateRangeSlotBounds(t *testing.T) {
	t.Run("too few", func(t *testing.T) {
		_, err := ValidateRange(9*60, 10*60, testHours(), 2, 4)
		require.Error(t, err)
	})
	t.Run("too many", func(t *testing.T) {
		_, err := ValidateRange(9*60, 15*60, testHours(), 1, 4)
		require.Error(t, err)
	})
	t.Run("at bounds", func(t *testing.T) {
		slots, err := ValidateRange(9*60, 13*60, testHours(), 2, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, slots)
	})
}

func TestHasConflict(t *testing.T) {
	reserved := []TimeRange{{StartMin: 10 * 60, EndMin: 12 * 60}}

	tests := []struct {
		name  string
		start int
		end   int
		want  bool
	}{
		{name: "overlaps start", start: 9 * 60, end: 11 * 60, want: true},
		{name: "overlaps end", start: 11 * 60, end: 13 * 60, want: true},
		{name: "contained", start: 10*60 + 30, end: 11 * 60, want: true},
		{name: "contains", start: 9 * 60, end: 13 * 60, want: true},
		{name: "back-to-back before", start: 8 * 60, end: 10 * 60, want: false},
		{name: "back-to-back after", start: 12 * 60, end: 14 * 60, want: false},
		{name: "disjoint", start: 14 * 60, end: 15 * 60, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConflict(tt.start, tt.end, reserved))
		})
	}
}

func TestDayGrid(t *testing.T) {
	reserved := []TimeRange{{StartMin: 10 * 60, EndMin: 12 * 60}}

	grid, err := DayGrid(testHours(), reserved, false)
	require.NoError(t, err)
	require.Len(t, grid, 14)

	byStart := make(map[string]Slot)
	for _, s := range grid {
		byStart[s.Start] = s
	}

	assert.True(t, byStart["09:00"].Available)
	assert.False(t, byStart["10:00"].Available)
	assert.False(t, byStart["11:00"].Available)
	assert.True(t, byStart["12:00"].Available)
}

func TestDayGridBlocked(t *testing.T) {
	grid, err := DayGrid(testHours(), nil, true)
	require.NoError(t, err)
	for _, s := range grid {
		assert.False(t, s.Available)
	}
}

func TestDayGridClosed(t *testing.T) {
	grid, err := DayGrid(nil, nil, false)
	require.NoError(t, err)
	assert.Empty(t, grid)
}
