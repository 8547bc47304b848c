package photo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	ListByField(ctx context.Context, fieldID string) ([]*Photo, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const photoColumns = `
	id, field_id, uploader_id, filename, storage_path, thumbnail_path,
	content_type, size, created_at
`

const createPhotoQuery = `
	INSERT INTO field_photos (
		id, field_id, uploader_id, filename, storage_path, thumbnail_path,
		content_type, size
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at
`

func (r *repository) Create(ctx context.Context, p *Photo) error {
	err := r.pool.QueryRow(ctx, createPhotoQuery,
		p.ID, p.FieldID, p.UploaderID, p.Filename, p.StoragePath, p.ThumbnailPath,
		p.ContentType, p.Size,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

const getPhotoQuery = `
	SELECT ` + photoColumns + `
	FROM field_photos
	WHERE id = $1
`

func (r *repository) GetByID(ctx context.Context, id string) (*Photo, error) {
	p := &Photo{}
	err := r.pool.QueryRow(ctx, getPhotoQuery, id).Scan(
		&p.ID, &p.FieldID, &p.UploaderID, &p.Filename, &p.StoragePath, &p.ThumbnailPath,
		&p.ContentType, &p.Size, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query photo: %w", err)
	}
	return p, nil
}

const listPhotosQuery = `
	SELECT ` + photoColumns + `
	FROM field_photos
	WHERE field_id = $1
	ORDER BY created_at
`

func (r *repository) ListByField(ctx context.Context, fieldID string) ([]*Photo, error) {
	rows, err := r.pool.Query(ctx, listPhotosQuery, fieldID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p := &Photo{}
		if err := rows.Scan(
			&p.ID, &p.FieldID, &p.UploaderID, &p.Filename, &p.StoragePath, &p.ThumbnailPath,
			&p.ContentType, &p.Size, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM field_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
