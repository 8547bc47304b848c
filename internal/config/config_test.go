package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCancellationTiers(t *testing.T) {
	tiers, err := ParseCancellationTiers(DefaultCancellationTiers)
	require.NoError(t, err)
	require.Len(t, tiers, 3)

	// Sorted by bound descending.
	assert.Equal(t, 24.0, tiers[0].MinHours)
	assert.Equal(t, 100, tiers[0].RefundPercent)
	assert.Equal(t, 0, tiers[0].PenaltyPercent)
	assert.Equal(t, 6.0, tiers[1].MinHours)
	assert.Equal(t, 0.0, tiers[2].MinHours)
	assert.Equal(t, 100, tiers[2].PenaltyPercent)
}

func TestParseCancellationTiersSortsInput(t *testing.T) {
	tiers, err := ParseCancellationTiers("0:0:100, 48:100:0, 12:50:50")
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, 48.0, tiers[0].MinHours)
	assert.Equal(t, 12.0, tiers[1].MinHours)
	assert.Equal(t, 0.0, tiers[2].MinHours)
}

func TestParseCancellationTiersFractionalBound(t *testing.T) {
	tiers, err := ParseCancellationTiers("1.5:25:75,0:0:100")
	require.NoError(t, err)
	assert.Equal(t, 1.5, tiers[0].MinHours)
}

func TestParseCancellationTiersRejections(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "missing column", in: "24:100,0:0:100"},
		{name: "extra column", in: "24:100:0:0,0:0:100"},
		{name: "non-numeric bound", in: "day:100:0,0:0:100"},
		{name: "negative bound", in: "-1:100:0,0:0:100"},
		{name: "refund over 100", in: "24:150:0,0:0:100"},
		{name: "negative penalty", in: "24:100:-5,0:0:100"},
		{name: "no zero-bound tier", in: "24:100:0,6:50:50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCancellationTiers(tt.in)
			assert.Error(t, err)
		})
	}
}
