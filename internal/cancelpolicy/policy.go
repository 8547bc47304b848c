// Package cancelpolicy computes cancellation eligibility and the financial
// outcome (customer refund, owner/coach penalty) from the time remaining
// until a booking starts. Everything here is a pure function of its inputs;
// the booking lifecycle executes the computed amounts via the ledger
// collaborator.
package cancelpolicy

import (
	"time"

	"github.com/opencourt/field-booking-backend/internal/config"
	"github.com/opencourt/field-booking-backend/internal/pkg/timeofday"
)

// Role identifies who is cancelling.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleCoach    Role = "coach"
)

// Denial is the structured "not allowed" outcome of an eligibility check.
type Denial struct {
	Reason string
}

// Assessment is the financial outcome of an eligible cancellation.
type Assessment struct {
	HoursUntilStart float64
	RefundPercent   int
	PenaltyPercent  int
	RefundAmount    int64
	PenaltyAmount   int64
}

// Policy evaluates the configured refund/penalty tiers.
type Policy struct {
	tiers                 []config.CancellationTier
	platformFeeRefundable bool
	loc                   *time.Location
}

func New(tiers []config.CancellationTier, platformFeeRefundable bool, loc *time.Location) *Policy {
	return &Policy{
		tiers:                 tiers,
		platformFeeRefundable: platformFeeRefundable,
		loc:                   loc,
	}
}

// HoursUntilStart combines the booking's civil date and start time into an
// instant in the business timezone and returns the remaining hours as a
// fraction. Negative means the booking has already started.
func (p *Policy) HoursUntilStart(date string, startMin int, now time.Time) (float64, error) {
	start, err := timeofday.Combine(date, startMin, p.loc)
	if err != nil {
		return 0, err
	}
	return start.Sub(now).Hours(), nil
}

// Eligibility applies the hard cancellation rules. A nil result means the
// cancellation may proceed; otherwise the denial names the violated rule.
func (p *Policy) Eligibility(status string, coachStatus string, role Role, hoursUntil float64) *Denial {
	if hoursUntil <= 0 {
		return &Denial{Reason: "booking has already started"}
	}

	switch status {
	case "completed":
		return &Denial{Reason: "booking is already completed"}
	case "pending", "confirmed":
		// cancellable states
	default:
		return &Denial{Reason: "booking is not in a cancellable state"}
	}

	if role == RoleCoach && coachStatus != "accepted" {
		return &Denial{Reason: "coach has not accepted this booking"}
	}

	return nil
}

// Assess resolves the tier for the remaining hours and computes amounts.
// Tiers are sorted by bound descending; the first tier whose lower bound is
// satisfied (inclusive) wins. Refund applies to the booking amount, penalty
// to booking amount plus platform fee. Platform fee refundability is a
// fixed policy flag, independent of the tier.
func (p *Policy) Assess(hoursUntil float64, bookingAmount, platformFee int64) Assessment {
	tier := p.tiers[len(p.tiers)-1]
	for _, t := range p.tiers {
		if hoursUntil >= t.MinHours {
			tier = t
			break
		}
	}

	a := Assessment{
		HoursUntilStart: hoursUntil,
		RefundPercent:   tier.RefundPercent,
		PenaltyPercent:  tier.PenaltyPercent,
	}

	a.RefundAmount = bookingAmount * int64(tier.RefundPercent) / 100
	if p.platformFeeRefundable && a.RefundAmount > 0 {
		a.RefundAmount += platformFee
	}
	a.PenaltyAmount = (bookingAmount + platformFee) * int64(tier.PenaltyPercent) / 100

	return a
}

// AssessFor applies the tier table from the cancelling actor's side. A
// customer cancelling late forfeits part of the booking amount per the
// refund column and nobody is penalized. An owner or coach cancelling
// makes the customer whole in full and pays the penalty column on the
// gross amount.
func (p *Policy) AssessFor(role Role, hoursUntil float64, bookingAmount, platformFee int64) Assessment {
	if role == RoleCustomer {
		a := p.Assess(hoursUntil, bookingAmount, platformFee)
		a.PenaltyPercent = 0
		a.PenaltyAmount = 0
		return a
	}

	a := p.Assess(hoursUntil, bookingAmount, platformFee)
	a.RefundPercent = 100
	a.RefundAmount = bookingAmount + platformFee
	return a
}

// FullRefund is the assessment for cancellations forced by the platform
// (e.g. a coach declining): the customer gets everything back and nobody
// is penalized, regardless of time remaining.
func (p *Policy) FullRefund(hoursUntil float64, bookingAmount, platformFee int64) Assessment {
	return Assessment{
		HoursUntilStart: hoursUntil,
		RefundPercent:   100,
		PenaltyPercent:  0,
		RefundAmount:    bookingAmount + platformFee,
		PenaltyAmount:   0,
	}
}
