package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, c *Coach) error
	GetByID(ctx context.Context, id string) (*Coach, error)
	List(ctx context.Context, filter Filter) ([]*Coach, int, error)
	Update(ctx context.Context, c *Coach) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, c *Coach) error {
	const query = `
		INSERT INTO public.coaches (venue_id, user_id, specialty, bio, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, c.VenueID, c.UserID, c.Specialty, c.Bio, c.IsActive).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyCoach
		}
		return fmt.Errorf("create coach failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Coach, error) {
	const query = `
		SELECT id, venue_id, user_id, specialty, bio, is_active, created_at
		FROM public.coaches
		WHERE id = $1
	`
	var c Coach
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.VenueID, &c.UserID, &c.Specialty, &c.Bio, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coach failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Coach, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "venue_id", "user_id", "specialty", "bio", "is_active", "created_at", "count(*) OVER() as total_count").
		From("public.coaches").
		OrderBy("created_at DESC")

	if filter.VenueID != "" {
		query = query.Where(squirrel.Eq{"venue_id": filter.VenueID})
	}

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
		return nil, 0, fmt.Errorf("build list coaches query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list coaches failed: %w", err)
	}
	defer rows.Close()

	var coaches []*Coach
	var total int
	for rows.Next() {
		var c Coach
		if err := rows.Scan(&c.ID, &c.VenueID, &c.UserID, &c.Specialty, &c.Bio, &c.IsActive, &c.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan coach failed: %w", err)
		}
		coaches = append(coaches, &c)
	}

	return coaches, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, c *Coach) error {
	const query = `
		UPDATE public.coaches
		SET specialty = $1, bio = $2, is_active = $3
		WHERE id = $4
	`
	ct, err := r.pool.Exec(ctx, query, c.Specialty, c.Bio, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("update coach failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.coaches WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete coach failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
