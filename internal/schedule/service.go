package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opencourt/field-booking-backend/internal/availability"
)

type Service interface {
	// Reserve atomically claims [startMin, endMin) on the key for the
	// given booking reference. It fails with ErrSlotConflict when the
	// range overlaps an existing reservation and with ErrDateBlocked on a
	// blacked-out date. Optimistic-lock races are retried up to the
	// configured attempt budget before surfacing as a conflict.
	Reserve(ctx context.Context, fieldID, courtID, date string, startMin, endMin int, bookingRef string) error

	// Release removes the reservation owned by bookingRef. Releasing a
	// reference that is not present is a successful no-op so cancellation
	// stays idempotent.
	Release(ctx context.Context, fieldID, courtID, date, bookingRef string) error

	// Reserved returns the reserved ranges and blocked flag for a key.
	// Missing records read as empty and unblocked (lazy creation means
	// absence is just "nothing reserved yet").
	Reserved(ctx context.Context, fieldID, courtID, date string) ([]ReservedRange, bool, error)

	// MarkHoliday blocks a (field, court, date) for maintenance and clears
	// its reservations. UnmarkHoliday lifts the block.
	MarkHoliday(ctx context.Context, fieldID, courtID, date, reason string) error
	UnmarkHoliday(ctx context.Context, fieldID, courtID, date string) error

	// CleanupEmpty deletes past empty, unblocked records.
	CleanupEmpty(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo        Repository
	maxAttempts int
	loc         *time.Location
}

func NewService(repo Repository, maxAttempts int, loc *time.Location) Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &service{
		repo:        repo,
		maxAttempts: maxAttempts,
		loc:         loc,
	}
}

func (s *service) Reserve(ctx context.Context, fieldID, courtID, date string, startMin, endMin int, bookingRef string) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		rec, err := s.repo.GetOrCreate(ctx, fieldID, courtID, date)
		if err != nil {
			return err
		}

		if rec.IsBlocked {
			return ErrDateBlocked
		}
		if availability.HasConflict(startMin, endMin, rec.TimeRanges()) {
			return ErrSlotConflict
		}

		rec.Reserved = append(rec.Reserved, ReservedRange{
			StartMin:   startMin,
			EndMin:     endMin,
			BookingRef: bookingRef,
		})

		ok, err := s.repo.UpdateConditional(ctx, rec, rec.Version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		// Version moved under us: re-read and re-check from scratch.
	}

	log.Warn().
		Str("field_id", fieldID).
		Str("court_id", courtID).
		Str("date", date).
		Int("attempts", s.maxAttempts).
		Msg("reservation retries exhausted")
	return ErrSlotConflict
}

func (s *service) Release(ctx context.Context, fieldID, courtID, date, bookingRef string) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		rec, err := s.repo.Get(ctx, fieldID, courtID, date)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Nothing reserved for this key; release is idempotent.
				return nil
			}
			return err
		}

		kept := rec.Reserved[:0]
		removed := false
		for _, r := range rec.Reserved {
			if r.BookingRef == bookingRef {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		if !removed {
			return nil
		}
		rec.Reserved = kept

		ok, err := s.repo.UpdateConditional(ctx, rec, rec.Version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return ErrSlotConflict
}

func (s *service) Reserved(ctx context.Context, fieldID, courtID, date string) ([]ReservedRange, bool, error) {
	rec, err := s.repo.Get(ctx, fieldID, courtID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec.Reserved, rec.IsBlocked, nil
}

func (s *service) MarkHoliday(ctx context.Context, fieldID, courtID, date, reason string) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		rec, err := s.repo.GetOrCreate(ctx, fieldID, courtID, date)
		if err != nil {
			return err
		}

		rec.IsBlocked = true
		rec.BlockReason = reason
		rec.Reserved = []ReservedRange{}

		ok, err := s.repo.UpdateConditional(ctx, rec, rec.Version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrSlotConflict
}

func (s *service) UnmarkHoliday(ctx context.Context, fieldID, courtID, date string) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		rec, err := s.repo.Get(ctx, fieldID, courtID, date)
		if err != nil {
			return err
		}

		if !rec.IsBlocked {
			return nil
		}
		rec.IsBlocked = false
		rec.BlockReason = ""

		ok, err := s.repo.UpdateConditional(ctx, rec, rec.Version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrSlotConflict
}

func (s *service) CleanupEmpty(ctx context.Context, now time.Time) (int, error) {
	today := now.In(s.loc).Format("2006-01-02")
	return s.repo.DeleteEmptyBefore(ctx, today)
}
