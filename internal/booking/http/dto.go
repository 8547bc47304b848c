package http

import (
	"time"

	"github.com/opencourt/field-booking-backend/internal/booking"
	"github.com/opencourt/field-booking-backend/internal/pkg/timeofday"
)

type CreateBookingBody struct {
	FieldID           string   `json:"field_id" binding:"required,uuid"`
	CourtID           string   `json:"court_id" binding:"omitempty,uuid"`
	CoachID           *string  `json:"coach_id" binding:"omitempty,uuid"`
	Date              string   `json:"date" binding:"required"`
	Start             string   `json:"start" binding:"required"`
	End               string   `json:"end" binding:"required"`
	SelectedAmenities []string `json:"selected_amenities" binding:"omitempty,max=20,dive,max=100"`
}

type CancelBookingBody struct {
	Role   string  `json:"role" binding:"required,oneof=customer owner coach"`
	Reason *string `json:"reason"`
}

type CoachResponseBody struct {
	Accept bool    `json:"accept"`
	Reason *string `json:"reason"`
}

type BookingResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	FieldID     string  `json:"field_id"`
	CourtID     string  `json:"court_id,omitempty"`
	CoachID     *string `json:"coach_id,omitempty"`
	CoachStatus string  `json:"coach_status,omitempty"`

	Date      string   `json:"date"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	NumSlots  int      `json:"num_slots"`
	Amenities []string `json:"amenities,omitempty"`
	Status    string   `json:"status"`

	BookingAmount      int64     `json:"booking_amount"`
	PlatformFee        int64     `json:"platform_fee"`
	TotalPrice         int64     `json:"total_price"`
	BasePriceUsed      int64     `json:"base_price_used"`
	MultiplierApplied  float64   `json:"multiplier_applied"`
	PriceBreakdown     string    `json:"price_breakdown"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		FieldID:            b.FieldID,
		CourtID:            b.CourtID,
		CoachID:            b.CoachID,
		CoachStatus:        string(b.CoachStatus),
		Date:               b.Date,
		Start:              timeofday.FormatMinutes(b.StartMin),
		End:                timeofday.FormatMinutes(b.EndMin),
		NumSlots:           b.NumSlots,
		Amenities:          b.Amenities,
		Status:             string(b.Status),
		BookingAmount:      b.BookingAmount,
		PlatformFee:        b.PlatformFee,
		TotalPrice:         b.TotalPrice,
		BasePriceUsed:      b.BasePriceUsed,
		MultiplierApplied:  b.MultiplierApplied,
		PriceBreakdown:     b.PriceBreakdown,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// CancellationResponse reports the financial outcome alongside the
// cancelled booking.
type CancellationResponse struct {
	Booking         BookingResponse `json:"booking"`
	CancelledBy     string          `json:"cancelled_by"`
	HoursUntilStart float64         `json:"hours_until_start"`
	RefundPercent   int             `json:"refund_percent"`
	PenaltyPercent  int             `json:"penalty_percent"`
	RefundAmount    int64           `json:"refund_amount"`
	PenaltyAmount   int64           `json:"penalty_amount"`
}

func NewCancellationResponse(r *booking.CancellationResult) CancellationResponse {
	return CancellationResponse{
		Booking:         NewBookingResponse(r.Booking),
		CancelledBy:     r.CancelledBy,
		HoursUntilStart: r.HoursUntilStart,
		RefundPercent:   r.RefundPercent,
		PenaltyPercent:  r.PenaltyPercent,
		RefundAmount:    r.RefundAmount,
		PenaltyAmount:   r.PenaltyAmount,
	}
}
