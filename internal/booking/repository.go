package booking

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Update persists the mutable lifecycle fields (status, coach status,
	// cancellation reason). The write only lands while the stored
	// (status, coach_status) pair still matches the previously read one;
	// a lost race surfaces as ErrStateChanged so concurrent transitions
	// can never both succeed.
	Update(ctx context.Context, b *Booking, fromStatus Status, fromCoachStatus CoachStatus) error
	// CompleteElapsed marks confirmed bookings whose end has passed as
	// completed and returns them.
	CompleteElapsed(ctx context.Context, today string, nowMin int) ([]*Booking, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const bookingColumns = `
	id, user_id, field_id, court_id, coach_id, coach_status,
	date, start_min, end_min, num_slots, amenities, status,
	booking_amount, platform_fee, total_price,
	base_price_used, multiplier_applied, price_breakdown,
	cancellation_reason, created_at, updated_at
`

const createBookingQuery = `
	INSERT INTO bookings (
		id, user_id, field_id, court_id, coach_id, coach_status,
		date, start_min, end_min, num_slots, amenities, status,
		booking_amount, platform_fee, total_price,
		base_price_used, multiplier_applied, price_breakdown
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING created_at, updated_at
`

func (r *repository) Create(ctx context.Context, b *Booking) error {
	coachStatus := ""
	if b.CoachID != nil {
		coachStatus = string(b.CoachStatus)
	}

	err := r.pool.QueryRow(ctx, createBookingQuery,
		b.ID, b.UserID, b.FieldID, b.CourtID, b.CoachID, coachStatus,
		b.Date, b.StartMin, b.EndMin, b.NumSlots, b.Amenities, string(b.Status),
		b.BookingAmount, b.PlatformFee, b.TotalPrice,
		b.BasePriceUsed, b.MultiplierApplied, b.PriceBreakdown,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

const getBookingQuery = `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE id = $1
`

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, getBookingQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query booking: %w", err)
	}
	return b, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	builder := sq.Select(bookingColumns, "count(*) OVER() AS total_count").
		From("bookings").
		PlaceholderFormat(sq.Dollar)

	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.FieldID != "" {
		builder = builder.Where(sq.Eq{"field_id": filter.FieldID})
	}
	if filter.CourtID != "" {
		builder = builder.Where(sq.Eq{"court_id": filter.CourtID})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.DateFrom != "" {
		builder = builder.Where(sq.GtOrEq{"date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		builder = builder.Where(sq.LtOrEq{"date": filter.DateTo})
	}

	builder = builder.
		OrderBy("date DESC", "start_min DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build booking list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	total := 0
	for rows.Next() {
		b := &Booking{}
		var coachStatus string
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.FieldID, &b.CourtID, &b.CoachID, &coachStatus,
			&b.Date, &b.StartMin, &b.EndMin, &b.NumSlots, &b.Amenities, &b.Status,
			&b.BookingAmount, &b.PlatformFee, &b.TotalPrice,
			&b.BasePriceUsed, &b.MultiplierApplied, &b.PriceBreakdown,
			&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		b.CoachStatus = CoachStatus(coachStatus)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, total, nil
}

// Lifecycle transitions are compare-and-set on the state pair read by
// the caller. Concurrent handlers racing on the same booking make at
// most one of them land; the rest see zero rows.
const updateBookingQuery = `
	UPDATE bookings
	SET status = $2,
	    coach_status = $3,
	    cancellation_reason = $4,
	    updated_at = now()
	WHERE id = $1
	  AND status = $5
	  AND coach_status = $6
	RETURNING updated_at
`

func (r *repository) Update(ctx context.Context, b *Booking, fromStatus Status, fromCoachStatus CoachStatus) error {
	err := r.pool.QueryRow(ctx, updateBookingQuery,
		b.ID, string(b.Status), string(b.CoachStatus), b.CancellationReason,
		string(fromStatus), string(fromCoachStatus),
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStateChanged
		}
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

const completeElapsedQuery = `
	UPDATE bookings
	SET status = 'completed',
	    updated_at = now()
	WHERE status = 'confirmed'
	  AND (date < $1 OR (date = $1 AND end_min <= $2))
	RETURNING ` + bookingColumns

func (r *repository) CompleteElapsed(ctx context.Context, today string, nowMin int) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, completeElapsedQuery, today, nowMin)
	if err != nil {
		return nil, fmt.Errorf("complete elapsed bookings: %w", err)
	}
	defer rows.Close()

	var completed []*Booking
	for rows.Next() {
		b, err := scanBookingFromRows(rows)
		if err != nil {
			return nil, err
		}
		completed = append(completed, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed bookings: %w", err)
	}
	return completed, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	var coachStatus string
	err := row.Scan(
		&b.ID, &b.UserID, &b.FieldID, &b.CourtID, &b.CoachID, &coachStatus,
		&b.Date, &b.StartMin, &b.EndMin, &b.NumSlots, &b.Amenities, &b.Status,
		&b.BookingAmount, &b.PlatformFee, &b.TotalPrice,
		&b.BasePriceUsed, &b.MultiplierApplied, &b.PriceBreakdown,
		&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CoachStatus = CoachStatus(coachStatus)
	return b, nil
}

func scanBookingFromRows(rows pgx.Rows) (*Booking, error) {
	b, err := scanBooking(rows)
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	return b, nil
}
