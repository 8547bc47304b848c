package cancelpolicy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/field-booking-backend/internal/config"
)

func defaultPolicy(t *testing.T, feeRefundable bool) *Policy {
	t.Helper()
	tiers, err := config.ParseCancellationTiers(config.DefaultCancellationTiers)
	require.NoError(t, err)
	return New(tiers, feeRefundable, time.UTC)
}

func TestHoursUntilStart(t *testing.T) {
	p := defaultPolicy(t, false)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	hours, err := p.HoursUntilStart("2026-03-02", 18*60, now)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, hours, 1e-9)

	hours, err = p.HoursUntilStart("2026-03-01", 10*60, now)
	require.NoError(t, err)
	assert.Less(t, hours, 0.0)
}

func TestEligibility(t *testing.T) {
	p := defaultPolicy(t, false)

	tests := []struct {
		name        string
		status      string
		coachStatus string
		role        Role
		hoursUntil  float64
		wantDenied  bool
	}{
		{name: "pending cancellable", status: "pending", role: RoleCustomer, hoursUntil: 5, wantDenied: false},
		{name: "confirmed cancellable", status: "confirmed", role: RoleOwner, hoursUntil: 5, wantDenied: false},
		{name: "already started", status: "confirmed", role: RoleCustomer, hoursUntil: -1, wantDenied: true},
		{name: "at start boundary", status: "confirmed", role: RoleCustomer, hoursUntil: 0, wantDenied: true},
		{name: "completed", status: "completed", role: RoleCustomer, hoursUntil: 5, wantDenied: true},
		{name: "already cancelled", status: "cancelled", role: RoleCustomer, hoursUntil: 5, wantDenied: true},
		{name: "coach not accepted", status: "confirmed", coachStatus: "pending", role: RoleCoach, hoursUntil: 5, wantDenied: true},
		{name: "coach accepted", status: "confirmed", coachStatus: "accepted", role: RoleCoach, hoursUntil: 5, wantDenied: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			denial := p.Eligibility(tt.status, tt.coachStatus, tt.role, tt.hoursUntil)
			if tt.wantDenied {
				require.NotNil(t, denial)
				assert.NotEmpty(t, denial.Reason)
			} else {
				assert.Nil(t, denial)
			}
		})
	}
}

func TestAssessForCustomer(t *testing.T) {
	p := defaultPolicy(t, false)

	t.Run("early cancel refunds in full", func(t *testing.T) {
		a := p.AssessFor(RoleCustomer, 30, 200000, 20000)
		assert.Equal(t, 100, a.RefundPercent)
		assert.Equal(t, int64(200000), a.RefundAmount)
		assert.Equal(t, 0, a.PenaltyPercent)
		assert.Equal(t, int64(0), a.PenaltyAmount)
	})

	t.Run("mid tier refunds half", func(t *testing.T) {
		a := p.AssessFor(RoleCustomer, 10, 200000, 20000)
		assert.Equal(t, 50, a.RefundPercent)
		assert.Equal(t, int64(100000), a.RefundAmount)
		assert.Equal(t, int64(0), a.PenaltyAmount)
	})

	t.Run("late cancel refunds nothing", func(t *testing.T) {
		a := p.AssessFor(RoleCustomer, 3, 200000, 20000)
		assert.Equal(t, 0, a.RefundPercent)
		assert.Equal(t, int64(0), a.RefundAmount)
		assert.Equal(t, int64(0), a.PenaltyAmount)
	})

	t.Run("tier bound is inclusive", func(t *testing.T) {
		a := p.AssessFor(RoleCustomer, 24, 200000, 20000)
		assert.Equal(t, 100, a.RefundPercent)
		a = p.AssessFor(RoleCustomer, 23.99, 200000, 20000)
		assert.Equal(t, 50, a.RefundPercent)
	})
}

func TestAssessForOwner(t *testing.T) {
	p := defaultPolicy(t, false)

	// Owner cancelling 3 hours out: customer made whole, owner pays the
	// full gross amount as penalty.
	a := p.AssessFor(RoleOwner, 3, 200000, 20000)
	assert.Equal(t, 100, a.RefundPercent)
	assert.Equal(t, int64(220000), a.RefundAmount)
	assert.Equal(t, 100, a.PenaltyPercent)
	assert.Equal(t, int64(220000), a.PenaltyAmount)

	// Early owner cancel carries no penalty.
	a = p.AssessFor(RoleOwner, 48, 200000, 20000)
	assert.Equal(t, int64(220000), a.RefundAmount)
	assert.Equal(t, int64(0), a.PenaltyAmount)
}

func TestRefundMonotonicInHours(t *testing.T) {
	p := defaultPolicy(t, false)

	prev := int64(-1)
	for _, h := range []float64{0.5, 3, 6, 10, 24, 48, 100} {
		a := p.AssessFor(RoleCustomer, h, 200000, 20000)
		assert.GreaterOrEqual(t, a.RefundAmount, prev, "refund must not decrease as hours grow (h=%v)", h)
		prev = a.RefundAmount
	}
}

func TestPlatformFeeRefundable(t *testing.T) {
	p := defaultPolicy(t, true)

	a := p.AssessFor(RoleCustomer, 30, 200000, 20000)
	assert.Equal(t, int64(220000), a.RefundAmount)

	// Zero refund never returns the fee.
	a = p.AssessFor(RoleCustomer, 1, 200000, 20000)
	assert.Equal(t, int64(0), a.RefundAmount)
}

func TestFullRefund(t *testing.T) {
	p := defaultPolicy(t, false)

	// Forced cancellations ignore the tier table entirely.
	a := p.FullRefund(0.5, 200000, 20000)
	assert.Equal(t, 100, a.RefundPercent)
	assert.Equal(t, int64(220000), a.RefundAmount)
	assert.Equal(t, int64(0), a.PenaltyAmount)
}
