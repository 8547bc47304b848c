package field

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, f *Field) error
	GetByID(ctx context.Context, id string) (*Field, error)
	List(ctx context.Context, filter Filter) ([]*Field, int, error)
	Update(ctx context.Context, f *Field) error
	Delete(ctx context.Context, id string) error

	// ListWithDueChanges returns fields holding at least one unapplied
	// pending change whose effective date is on or before the given date.
	ListWithDueChanges(ctx context.Context, date string) ([]*Field, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// configColumns marshals the JSONB configuration columns.
func configColumns(f *Field) (hours, ranges, changes []byte, err error) {
	hours, err = json.Marshal(f.OperatingHours)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal operating hours failed: %w", err)
	}
	ranges, err = json.Marshal(f.PriceRanges)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal price ranges failed: %w", err)
	}
	if f.PendingChanges == nil {
		f.PendingChanges = []PendingPriceChange{}
	}
	changes, err = json.Marshal(f.PendingChanges)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal pending changes failed: %w", err)
	}
	return hours, ranges, changes, nil
}

func scanField(row pgx.Row) (*Field, error) {
	var f Field
	var hours, ranges, changes []byte

	err := row.Scan(
		&f.ID, &f.VenueID, &f.Name,
		&f.MinSlotsPerBooking, &f.MaxSlotsPerBooking, &f.BasePrice,
		&hours, &ranges, &changes,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(hours, &f.OperatingHours); err != nil {
		return nil, fmt.Errorf("unmarshal operating hours failed: %w", err)
	}
	if err := json.Unmarshal(ranges, &f.PriceRanges); err != nil {
		return nil, fmt.Errorf("unmarshal price ranges failed: %w", err)
	}
	if err := json.Unmarshal(changes, &f.PendingChanges); err != nil {
		return nil, fmt.Errorf("unmarshal pending changes failed: %w", err)
	}

	return &f, nil
}

func (r *pgxRepository) Create(ctx context.Context, f *Field) error {
	hours, ranges, changes, err := configColumns(f)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.fields").
		Columns(
			"venue_id", "name",
			"min_slots_per_booking", "max_slots_per_booking", "base_price",
			"operating_hours", "price_ranges", "pending_changes",
		).
		Values(f.VenueID, f.Name, f.MinSlotsPerBooking, f.MaxSlotsPerBooking, f.BasePrice, hours, ranges, changes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create field query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

const fieldColumns = `
	id, venue_id, name,
	min_slots_per_booking, max_slots_per_booking, base_price,
	operating_hours, price_ranges, pending_changes,
	created_at, updated_at
`

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Field, error) {
	query := `SELECT ` + fieldColumns + ` FROM public.fields WHERE id = $1`

	f, err := scanField(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get field failed: %w", err)
	}
	return f, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Field, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "venue_id", "name",
		"min_slots_per_booking", "max_slots_per_booking", "base_price",
		"operating_hours", "price_ranges", "pending_changes",
		"created_at", "updated_at",
		"count(*) OVER() as total_count",
	).From("public.fields")

	if filter.VenueID != "" {
		query = query.Where(squirrel.Eq{"venue_id": filter.VenueID})
	}

	query = query.OrderBy("created_at DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list fields query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list fields failed: %w", err)
	}
	defer rows.Close()

	var fields []*Field
	var total int

	for rows.Next() {
		var f Field
		var hours, ranges, changes []byte
		if err := rows.Scan(
			&f.ID, &f.VenueID, &f.Name,
			&f.MinSlotsPerBooking, &f.MaxSlotsPerBooking, &f.BasePrice,
			&hours, &ranges, &changes,
			&f.CreatedAt, &f.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan field failed: %w", err)
		}
		if err := json.Unmarshal(hours, &f.OperatingHours); err != nil {
			return nil, 0, fmt.Errorf("unmarshal operating hours failed: %w", err)
		}
		if err := json.Unmarshal(ranges, &f.PriceRanges); err != nil {
			return nil, 0, fmt.Errorf("unmarshal price ranges failed: %w", err)
		}
		if err := json.Unmarshal(changes, &f.PendingChanges); err != nil {
			return nil, 0, fmt.Errorf("unmarshal pending changes failed: %w", err)
		}
		fields = append(fields, &f)
	}

	return fields, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, f *Field) error {
	hours, ranges, changes, err := configColumns(f)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.fields").
		Set("name", f.Name).
		Set("min_slots_per_booking", f.MinSlotsPerBooking).
		Set("max_slots_per_booking", f.MaxSlotsPerBooking).
		Set("base_price", f.BasePrice).
		Set("operating_hours", hours).
		Set("price_ranges", ranges).
		Set("pending_changes", changes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": f.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update field query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update field failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.fields WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete field failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListWithDueChanges(ctx context.Context, date string) ([]*Field, error) {
	query := `
		SELECT ` + fieldColumns + `
		FROM public.fields
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(pending_changes) AS c
			WHERE (c->>'applied')::boolean = false
			  AND c->>'effective_date' <= $1
		)
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list fields with due changes failed: %w", err)
	}
	defer rows.Close()

	var fields []*Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field failed: %w", err)
		}
		fields = append(fields, f)
	}

	return fields, nil
}
