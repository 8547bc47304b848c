package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// GetOrCreate fetches the record for the key, inserting an empty
	// version-0 record first if none exists. Two racing first-time
	// creations are resolved via the unique key: the loser re-reads the
	// winner's record instead of failing.
	GetOrCreate(ctx context.Context, fieldID, courtID, date string) (*Record, error)
	Get(ctx context.Context, fieldID, courtID, date string) (*Record, error)

	// UpdateConditional writes the record's reserved set and blocked state
	// only if the stored version still equals expectedVersion, bumping the
	// version by one. Returns false when another writer got there first.
	UpdateConditional(ctx context.Context, rec *Record, expectedVersion int) (bool, error)

	// DeleteEmptyBefore removes unblocked records with no reservations for
	// dates before the given date. Maintenance only.
	DeleteEmptyBefore(ctx context.Context, date string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const recordColumns = `
	id, field_id, court_id, date,
	reserved_ranges, is_blocked, block_reason, version,
	created_at, updated_at
`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var ranges []byte

	err := row.Scan(
		&rec.ID, &rec.FieldID, &rec.CourtID, &rec.Date,
		&ranges, &rec.IsBlocked, &rec.BlockReason, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ranges, &rec.Reserved); err != nil {
		return nil, fmt.Errorf("unmarshal reserved ranges failed: %w", err)
	}
	return &rec, nil
}

func (r *pgxRepository) Get(ctx context.Context, fieldID, courtID, date string) (*Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM public.schedule_records
		WHERE field_id = $1 AND court_id = $2 AND date = $3
	`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, fieldID, courtID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get schedule record failed: %w", err)
	}
	return rec, nil
}

func (r *pgxRepository) GetOrCreate(ctx context.Context, fieldID, courtID, date string) (*Record, error) {
	rec, err := r.Get(ctx, fieldID, courtID, date)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	const insert = `
		INSERT INTO public.schedule_records (field_id, court_id, date, reserved_ranges, is_blocked, block_reason, version)
		VALUES ($1, $2, $3, '[]'::jsonb, false, '', 0)
		RETURNING ` + recordColumns + `
	`
	rec, err = scanRecord(r.pool.QueryRow(ctx, insert, fieldID, courtID, date))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// Lost the first-creation race: the record exists now.
			return r.Get(ctx, fieldID, courtID, date)
		}
		return nil, fmt.Errorf("create schedule record failed: %w", err)
	}
	return rec, nil
}

func (r *pgxRepository) UpdateConditional(ctx context.Context, rec *Record, expectedVersion int) (bool, error) {
	if rec.Reserved == nil {
		rec.Reserved = []ReservedRange{}
	}
	ranges, err := json.Marshal(rec.Reserved)
	if err != nil {
		return false, fmt.Errorf("marshal reserved ranges failed: %w", err)
	}

	const query = `
		UPDATE public.schedule_records
		SET reserved_ranges = $1,
		    is_blocked = $2,
		    block_reason = $3,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $4 AND version = $5
	`
	ct, err := r.pool.Exec(ctx, query, ranges, rec.IsBlocked, rec.BlockReason, rec.ID, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("conditional update of schedule record failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return false, nil
	}
	rec.Version = expectedVersion + 1
	return true, nil
}

func (r *pgxRepository) DeleteEmptyBefore(ctx context.Context, date string) (int, error) {
	const query = `
		DELETE FROM public.schedule_records
		WHERE date < $1
		  AND is_blocked = false
		  AND jsonb_array_length(reserved_ranges) = 0
	`
	ct, err := r.pool.Exec(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("cleanup schedule records failed: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
