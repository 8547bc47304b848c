package venue

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
	Create(ctx context.Context, v *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, filter Filter) ([]*Venue, int, error)
	Update(ctx context.Context, v *Venue) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, venueID, userID, role string) error
	GetMember(ctx context.Context, venueID, userID string) (*Member, error)
	UpdateMemberRole(ctx context.Context, venueID, userID, role string) error
	RemoveMember(ctx context.Context, venueID, userID string) error
	ListMembers(ctx context.Context, venueID string, filter MemberFilter) ([]*Member, int, error)
	CountOwners(ctx context.Context, venueID string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, v *Venue) error {
	const query = `
		INSERT INTO public.venues (name, is_active)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query, v.Name, v.IsActive).Scan(&v.ID, &v.CreatedAt); err != nil {
		return fmt.Errorf("create venue failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Venue, error) {
	const query = `
		SELECT id, name, is_active, created_at
		FROM public.venues
		WHERE id = $1
	`
	var v Venue
	if err := r.pool.QueryRow(ctx, query, id).Scan(&v.ID, &v.Name, &v.IsActive, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get venue failed: %w", err)
	}
	return &v, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Venue, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "name", "is_active", "created_at", "count(*) OVER() as total_count").
		From("public.venues").
		OrderBy("created_at DESC")

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
		return nil, 0, fmt.Errorf("build list venues query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues failed: %w", err)
	}
	defer rows.Close()

	var venues []*Venue
	var total int
	for rows.Next() {
		var v Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.IsActive, &v.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan venue failed: %w", err)
		}
		venues = append(venues, &v)
	}

	return venues, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, v *Venue) error {
	const query = `
		UPDATE public.venues
		SET name = $1, is_active = $2
		WHERE id = $3
	`
	ct, err := r.pool.Exec(ctx, query, v.Name, v.IsActive, v.ID)
	if err != nil {
		return fmt.Errorf("update venue failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.venues WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete venue failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) AddMember(ctx context.Context, venueID, userID, role string) error {
	const query = `
		INSERT INTO public.venue_members (venue_id, user_id, role)
		VALUES ($1, $2, $3)
	`
	if _, err := r.pool.Exec(ctx, query, venueID, userID, role); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyMember
		}
		return fmt.Errorf("add venue member failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetMember(ctx context.Context, venueID, userID string) (*Member, error) {
	const query = `
		SELECT m.user_id, u.email, u.display_name, m.role
		FROM public.venue_members m
		JOIN public.users u ON m.user_id = u.id
		WHERE m.venue_id = $1 AND m.user_id = $2
	`
	var m Member
	if err := r.pool.QueryRow(ctx, query, venueID, userID).
		Scan(&m.UserID, &m.Email, &m.DisplayName, &m.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("get venue member failed: %w", err)
	}
	return &m, nil
}

func (r *pgxRepository) UpdateMemberRole(ctx context.Context, venueID, userID, role string) error {
	const query = `
		UPDATE public.venue_members
		SET role = $1
		WHERE venue_id = $2 AND user_id = $3
	`
	ct, err := r.pool.Exec(ctx, query, role, venueID, userID)
	if err != nil {
		return fmt.Errorf("update venue member failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *pgxRepository) RemoveMember(ctx context.Context, venueID, userID string) error {
	const query = `DELETE FROM public.venue_members WHERE venue_id = $1 AND user_id = $2`
	ct, err := r.pool.Exec(ctx, query, venueID, userID)
	if err != nil {
		return fmt.Errorf("remove venue member failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *pgxRepository) ListMembers(ctx context.Context, venueID string, filter MemberFilter) ([]*Member, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("m.user_id", "u.email", "u.display_name", "m.role", "count(*) OVER() as total_count").
		From("public.venue_members m").
		Join("public.users u ON m.user_id = u.id").
		Where(squirrel.Eq{"m.venue_id": venueID}).
		OrderBy("m.role ASC", "u.email ASC")

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
		return nil, 0, fmt.Errorf("build list venue members query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list venue members failed: %w", err)
	}
	defer rows.Close()

	var members []*Member
	var total int
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.DisplayName, &m.Role, &total); err != nil {
			return nil, 0, fmt.Errorf("scan venue member failed: %w", err)
		}
		members = append(members, &m)
	}

	return members, total, nil
}

func (r *pgxRepository) CountOwners(ctx context.Context, venueID string) (int, error) {
	const query = `
		SELECT count(*)
		FROM public.venue_members
		WHERE venue_id = $1 AND role = $2
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, venueID, RoleOwner).Scan(&count); err != nil {
		return 0, fmt.Errorf("count venue owners failed: %w", err)
	}
	return count, nil
}
