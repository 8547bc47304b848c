package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/field-booking-backend/internal/availability"
	"github.com/opencourt/field-booking-backend/internal/cancelpolicy"
	"github.com/opencourt/field-booking-backend/internal/coach"
	"github.com/opencourt/field-booking-backend/internal/court"
	"github.com/opencourt/field-booking-backend/internal/events"
	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/pkg/timeofday"
	"github.com/opencourt/field-booking-backend/internal/pricing"
	"github.com/opencourt/field-booking-backend/internal/schedule"
)

// maxAvailabilityDays bounds the advisory availability query.
const maxAvailabilityDays = 31

type CreateRequest struct {
	UserID    string
	FieldID   string
	CourtID   string
	CoachID   *string
	Date      string
	Start     string // "HH:MM"
	End       string // "HH:MM"
	Amenities []string
}

type CancelRequest struct {
	ActorID string
	Role    cancelpolicy.Role
	Reason  *string
}

type Service interface {
	// Create validates the request, prices the range from the
	// configuration effective on the booking date, claims the slot range
	// atomically, and persists the booking with its price snapshot. The
	// claim is released if persistence fails.
	Create(ctx context.Context, req CreateRequest) (*Booking, error)

	GetByID(ctx context.Context, id string, actorID string, isSysAdmin bool) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Confirm moves a pending booking to confirmed. Venue managers only.
	Confirm(ctx context.Context, id string, actorID string, isSysAdmin bool) (*Booking, error)

	// Cancel runs the eligibility rules and the financial assessment for
	// the cancelling role, releases the slot range, and emits a ledger
	// adjustment for the computed refund and penalty.
	Cancel(ctx context.Context, id string, req CancelRequest, isSysAdmin bool) (*CancellationResult, error)

	// RespondCoach records the invited coach's accept or decline. A
	// decline force-cancels the booking with a full refund and no penalty.
	RespondCoach(ctx context.Context, id string, actorID string, accept bool, reason *string) (*Booking, error)

	// Availability returns the advisory slot grid for each date in
	// [fromDate, toDate]. Bounded to 31 days.
	Availability(ctx context.Context, fieldID, courtID, fromDate, toDate string) ([]DayAvailability, error)

	// CompleteElapsed marks confirmed bookings whose end has passed as
	// completed. Run periodically by the scheduler.
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo            Repository
	fieldService    field.Service
	courtService    court.Service
	coachService    coach.Service
	scheduleService schedule.Service
	policy          *cancelpolicy.Policy
	publisher       events.Publisher

	loc                *time.Location
	platformFeePercent int
	now                func() time.Time
}

func NewService(
	repo Repository,
	fieldService field.Service,
	courtService court.Service,
	coachService coach.Service,
	scheduleService schedule.Service,
	policy *cancelpolicy.Policy,
	publisher events.Publisher,
	loc *time.Location,
	platformFeePercent int,
) Service {
	return &service{
		repo:               repo,
		fieldService:       fieldService,
		courtService:       courtService,
		coachService:       coachService,
		scheduleService:    scheduleService,
		policy:             policy,
		publisher:          publisher,
		loc:                loc,
		platformFeePercent: platformFeePercent,
		now:                time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	f, err := s.fieldService.GetByID(ctx, req.FieldID)
	if err != nil {
		return nil, ErrFieldNotFound
	}

	if req.CourtID != "" {
		c, err := s.courtService.GetByID(ctx, req.CourtID)
		if err != nil || c.FieldID != req.FieldID {
			return nil, ErrCourtNotFound
		}
	}

	if req.CoachID != nil {
		co, err := s.coachService.GetByID(ctx, *req.CoachID)
		if err != nil || !co.IsActive || co.VenueID != f.VenueID {
			return nil, ErrCoachNotFound
		}
	}

	startMin, err := timeofday.ParseMinutes(req.Start)
	if err != nil {
		return nil, availability.ErrNotAligned
	}
	endMin, err := timeofday.ParseMinutes(req.End)
	if err != nil {
		return nil, availability.ErrNotAligned
	}

	startAt, err := timeofday.Combine(req.Date, startMin, s.loc)
	if err != nil {
		return nil, err
	}
	if !startAt.After(s.now()) {
		return nil, ErrStartTimePast
	}

	weekday := startAt.Weekday()
	cfg := f.ConfigFor(req.Date)
	hours := cfg.HoursFor(weekday)

	numSlots, err := availability.ValidateRange(startMin, endMin, hours, f.MinSlotsPerBooking, f.MaxSlotsPerBooking)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Quote(cfg, weekday, startMin, endMin)
	if err != nil {
		return nil, err
	}

	platformFee := quote.Total * int64(s.platformFeePercent) / 100

	b := &Booking{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		FieldID:           req.FieldID,
		CourtID:           req.CourtID,
		CoachID:           req.CoachID,
		Date:              req.Date,
		StartMin:          startMin,
		EndMin:            endMin,
		NumSlots:          numSlots,
		Amenities:         normalizeAmenities(req.Amenities),
		Status:            StatusPending,
		BookingAmount:     quote.Total,
		PlatformFee:       platformFee,
		TotalPrice:        quote.Total + platformFee,
		BasePriceUsed:     quote.BasePriceUsed,
		MultiplierApplied: quote.MultiplierApplied,
		PriceBreakdown:    quote.Breakdown,
	}
	if req.CoachID != nil {
		b.CoachStatus = CoachStatusPending
	}

	// Claim the range first; the schedule store is the arbiter under
	// concurrency. The booking id doubles as the reservation reference.
	if err := s.scheduleService.Reserve(ctx, b.FieldID, b.CourtID, b.Date, b.StartMin, b.EndMin, b.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		// Compensate: never leave a claim without a booking behind it.
		if relErr := s.scheduleService.Release(ctx, b.FieldID, b.CourtID, b.Date, b.ID); relErr != nil {
			log.Error().Err(relErr).Str("booking_id", b.ID).Msg("release after failed insert")
		}
		return nil, err
	}

	s.emit(ctx, events.KeyBookingCreated, b, nil)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string, actorID string, isSysAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, b, actorID, isSysAdmin); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Confirm(ctx context.Context, id string, actorID string, isSysAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(ctx, b.FieldID, actorID, isSysAdmin); err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrNotPending
	}

	b.Status = StatusConfirmed
	if err := s.repo.Update(ctx, b, StatusPending, b.CoachStatus); err != nil {
		return nil, err
	}

	s.emit(ctx, events.KeyBookingConfirmed, b, nil)
	return b, nil
}

func (s *service) Cancel(ctx context.Context, id string, req CancelRequest, isSysAdmin bool) (*CancellationResult, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeCancel(ctx, b, req.ActorID, req.Role, isSysAdmin); err != nil {
		return nil, err
	}

	hoursUntil, err := s.policy.HoursUntilStart(b.Date, b.StartMin, s.now())
	if err != nil {
		return nil, err
	}

	if denial := s.policy.Eligibility(string(b.Status), string(b.CoachStatus), req.Role, hoursUntil); denial != nil {
		return nil, notEligible(denial.Reason)
	}

	assessment := s.policy.AssessFor(req.Role, hoursUntil, b.BookingAmount, b.PlatformFee)

	// The write is conditional on the state just read; a concurrent
	// transition makes this one lose, and the refund is assessed at most
	// once per booking.
	prevStatus, prevCoachStatus := b.Status, b.CoachStatus
	b.Status = StatusCancelled
	b.CancellationReason = req.Reason
	if err := s.repo.Update(ctx, b, prevStatus, prevCoachStatus); err != nil {
		return nil, err
	}

	if err := s.scheduleService.Release(ctx, b.FieldID, b.CourtID, b.Date, b.ID); err != nil {
		// The booking is cancelled either way; the cleanup sweep handles
		// any stale claim.
		log.Error().Err(err).Str("booking_id", b.ID).Msg("release on cancel")
	}

	s.emit(ctx, events.KeyBookingCancelled, b, req.Reason)
	s.emitLedger(ctx, b, string(req.Role), assessment, req.Reason)

	return &CancellationResult{
		Booking:         b,
		CancelledBy:     string(req.Role),
		HoursUntilStart: assessment.HoursUntilStart,
		RefundPercent:   assessment.RefundPercent,
		PenaltyPercent:  assessment.PenaltyPercent,
		RefundAmount:    assessment.RefundAmount,
		PenaltyAmount:   assessment.PenaltyAmount,
	}, nil
}

func (s *service) RespondCoach(ctx context.Context, id string, actorID string, accept bool, reason *string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.CoachID == nil {
		return nil, ErrNoCoach
	}
	if b.CoachStatus != CoachStatusPending {
		return nil, ErrCoachResponded
	}
	// A response only makes sense on a live booking; a completed or
	// cancelled one must never be re-opened by a late decline.
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return nil, ErrBookingClosed
	}

	co, err := s.coachService.GetByID(ctx, *b.CoachID)
	if err != nil {
		return nil, err
	}
	if co.UserID != actorID {
		return nil, ErrPermissionDenied
	}

	if accept {
		b.CoachStatus = CoachStatusAccepted
		if err := s.repo.Update(ctx, b, b.Status, CoachStatusPending); err != nil {
			return nil, err
		}
		s.emit(ctx, events.KeyCoachResponse, b, reason)
		return b, nil
	}

	// A decline is a forced cancellation: the customer is made whole and
	// nobody is penalized, regardless of time remaining.
	hoursUntil, err := s.policy.HoursUntilStart(b.Date, b.StartMin, s.now())
	if err != nil {
		return nil, err
	}
	assessment := s.policy.FullRefund(hoursUntil, b.BookingAmount, b.PlatformFee)

	prevStatus := b.Status
	b.CoachStatus = CoachStatusDeclined
	b.Status = StatusCancelled
	b.CancellationReason = reason
	if err := s.repo.Update(ctx, b, prevStatus, CoachStatusPending); err != nil {
		return nil, err
	}

	if err := s.scheduleService.Release(ctx, b.FieldID, b.CourtID, b.Date, b.ID); err != nil {
		log.Error().Err(err).Str("booking_id", b.ID).Msg("release on coach decline")
	}

	s.emit(ctx, events.KeyCoachResponse, b, reason)
	s.emitLedger(ctx, b, "system", assessment, reason)
	return b, nil
}

func (s *service) Availability(ctx context.Context, fieldID, courtID, fromDate, toDate string) ([]DayAvailability, error) {
	f, err := s.fieldService.GetByID(ctx, fieldID)
	if err != nil {
		return nil, ErrFieldNotFound
	}

	from, err := timeofday.ParseDate(fromDate, s.loc)
	if err != nil {
		return nil, err
	}
	to, err := timeofday.ParseDate(toDate, s.loc)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, ErrRangeInverted
	}
	if to.Sub(from) > maxAvailabilityDays*24*time.Hour {
		return nil, ErrRangeTooWide
	}

	var days []DayAvailability
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format(timeofday.DateLayout)

		reserved, blocked, err := s.scheduleService.Reserved(ctx, fieldID, courtID, date)
		if err != nil {
			return nil, err
		}

		cfg := f.ConfigFor(date)
		hours := cfg.HoursFor(day.Weekday())

		ranges := make([]availability.TimeRange, 0, len(reserved))
		for _, r := range reserved {
			ranges = append(ranges, availability.TimeRange{StartMin: r.StartMin, EndMin: r.EndMin})
		}

		grid, err := availability.DayGrid(hours, ranges, blocked)
		if err != nil {
			return nil, err
		}

		slots := make([]Slot, 0, len(grid))
		for _, cell := range grid {
			slots = append(slots, Slot{Start: cell.Start, End: cell.End, Available: cell.Available})
		}

		days = append(days, DayAvailability{
			Date:    date,
			Blocked: blocked,
			Slots:   slots,
		})
	}

	return days, nil
}

func (s *service) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	local := now.In(s.loc)
	today := local.Format(timeofday.DateLayout)
	nowMin := local.Hour()*60 + local.Minute()

	completed, err := s.repo.CompleteElapsed(ctx, today, nowMin)
	if err != nil {
		return 0, err
	}

	for _, b := range completed {
		s.emit(ctx, events.KeyBookingCompleted, b, nil)
	}
	return len(completed), nil
}

// authorizeView allows the booking's customer, its coach, and the field's
// venue managers.
func (s *service) authorizeView(ctx context.Context, b *Booking, actorID string, isSysAdmin bool) error {
	if isSysAdmin || b.UserID == actorID {
		return nil
	}
	if b.CoachID != nil {
		if co, err := s.coachService.GetByID(ctx, *b.CoachID); err == nil && co.UserID == actorID {
			return nil
		}
	}
	ok, err := s.fieldService.CanManage(ctx, b.FieldID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) authorizeManage(ctx context.Context, fieldID, actorID string, isSysAdmin bool) error {
	if isSysAdmin {
		return nil
	}
	ok, err := s.fieldService.CanManage(ctx, fieldID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// authorizeCancel verifies the actor actually holds the role they cancel
// under: customers must own the booking, owners must manage the field's
// venue, coaches must be the attached coach.
func (s *service) authorizeCancel(ctx context.Context, b *Booking, actorID string, role cancelpolicy.Role, isSysAdmin bool) error {
	if isSysAdmin {
		return nil
	}

	switch role {
	case cancelpolicy.RoleCustomer:
		if b.UserID != actorID {
			return ErrPermissionDenied
		}
	case cancelpolicy.RoleOwner:
		ok, err := s.fieldService.CanManage(ctx, b.FieldID, actorID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPermissionDenied
		}
	case cancelpolicy.RoleCoach:
		if b.CoachID == nil {
			return ErrPermissionDenied
		}
		co, err := s.coachService.GetByID(ctx, *b.CoachID)
		if err != nil {
			return err
		}
		if co.UserID != actorID {
			return ErrPermissionDenied
		}
	default:
		return ErrPermissionDenied
	}
	return nil
}

// normalizeAmenities trims the requested amenity names and drops empties.
// Amenities are recorded on the booking as-is; they carry no pricing or
// availability semantics.
func normalizeAmenities(in []string) []string {
	var out []string
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// emit publishes a booking event without blocking the request outcome.
func (s *service) emit(ctx context.Context, key string, b *Booking, reason *string) {
	coachID := ""
	if b.CoachID != nil {
		coachID = *b.CoachID
	}
	ev := events.BookingEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		FieldID:     b.FieldID,
		CourtID:     b.CourtID,
		CoachID:     coachID,
		Date:        b.Date,
		Start:       timeofday.FormatMinutes(b.StartMin),
		End:         timeofday.FormatMinutes(b.EndMin),
		Status:      string(b.Status),
		CoachStatus: string(b.CoachStatus),
		TotalPrice:  b.TotalPrice,
		Reason:      reason,
	}
	if err := s.publisher.Publish(ctx, key, ev); err != nil {
		log.Error().Err(err).Str("key", key).Str("booking_id", b.ID).Msg("publish booking event")
	}
}

func (s *service) emitLedger(ctx context.Context, b *Booking, cancelledBy string, a cancelpolicy.Assessment, reason *string) {
	adj := events.LedgerAdjustment{
		BookingID:      b.ID,
		UserID:         b.UserID,
		FieldID:        b.FieldID,
		CancelledBy:    cancelledBy,
		RefundAmount:   a.RefundAmount,
		PenaltyAmount:  a.PenaltyAmount,
		RefundPercent:  a.RefundPercent,
		PenaltyPercent: a.PenaltyPercent,
		Reason:         reason,
	}
	if err := s.publisher.Publish(ctx, events.KeyLedgerAdjustment, adj); err != nil {
		log.Error().Err(err).Str("booking_id", b.ID).Msg("publish ledger adjustment")
	}
}
