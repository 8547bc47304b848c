// Package events carries the structured messages the booking core emits
// for external collaborators (notifications, payment/ledger). The core
// never waits on their delivery.
package events

// Routing keys on the booking events topic exchange.
const (
	KeyBookingCreated   = "booking.created"
	KeyBookingConfirmed = "booking.confirmed"
	KeyBookingCancelled = "booking.cancelled"
	KeyBookingCompleted = "booking.completed"
	KeyCoachResponse    = "booking.coach_response"
	KeyLedgerAdjustment = "ledger.adjustment"
)

// BookingEvent describes a booking state change.
type BookingEvent struct {
	BookingID   string  `json:"booking_id"`
	UserID      string  `json:"user_id"`
	FieldID     string  `json:"field_id"`
	CourtID     string  `json:"court_id,omitempty"`
	CoachID     string  `json:"coach_id,omitempty"`
	Date        string  `json:"date"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Status      string  `json:"status"`
	CoachStatus string  `json:"coach_status,omitempty"`
	TotalPrice  int64   `json:"total_price"`
	Reason      *string `json:"reason,omitempty"`
}

// LedgerAdjustment instructs the payment/ledger collaborator to execute a
// refund and/or penalty. The core computes amounts; it never moves money.
type LedgerAdjustment struct {
	BookingID      string  `json:"booking_id"`
	UserID         string  `json:"user_id"`
	FieldID        string  `json:"field_id"`
	CancelledBy    string  `json:"cancelled_by"` // customer | owner | coach | system
	RefundAmount   int64   `json:"refund_amount"`
	PenaltyAmount  int64   `json:"penalty_amount"`
	RefundPercent  int     `json:"refund_percent"`
	PenaltyPercent int     `json:"penalty_percent"`
	Reason         *string `json:"reason,omitempty"`
}
