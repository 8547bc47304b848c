package timeofday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:30", want: 510},
		{in: "23:59", want: 1439},
		{in: "24:00", want: 1440}, // exclusive end of day
		{in: "24:01", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMinutes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinutes(0))
	assert.Equal(t, "08:05", FormatMinutes(485))
	assert.Equal(t, "24:00", FormatMinutes(1440))
}

func TestCombine(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	at, err := Combine("2026-03-07", 18*60, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 7, 18, 0, 0, 0, loc), at)

	_, err = Combine("07-03-2026", 18*60, loc)
	assert.Error(t, err)
}

func TestWeekday(t *testing.T) {
	wd, err := Weekday("2026-03-07", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, wd)
}
