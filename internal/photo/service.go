package photo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/pkg/storage"
)

type Service interface {
	Upload(ctx context.Context, fieldID string, header *multipart.FileHeader, actorID string, isSysAdmin bool) (*Photo, error)
	ListByField(ctx context.Context, fieldID string) ([]*Photo, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	Delete(ctx context.Context, id string, actorID string, isSysAdmin bool) error
}

type service struct {
	repo         Repository
	fieldService field.Service
	storage      storage.Storage
	imgProc      *storage.ImageProcessor
}

func NewService(repo Repository, fieldService field.Service, store storage.Storage) Service {
	return &service{
		repo:         repo,
		fieldService: fieldService,
		storage:      store,
		imgProc:      storage.NewImageProcessor(),
	}
}

func (s *service) authorize(ctx context.Context, fieldID, actorID string, isSysAdmin bool) error {
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

func (s *service) Upload(ctx context.Context, fieldID string, header *multipart.FileHeader, actorID string, isSysAdmin bool) (*Photo, error) {
	if _, err := s.fieldService.GetByID(ctx, fieldID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, fieldID, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Buffer the content; gallery images are small enough for this.
	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	photoID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	shard := photoID[:2]
	storagePath := fmt.Sprintf("fields/%s/%s%s", shard, photoID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	// Thumbnail failure never fails the upload.
	var thumbnailPath *string
	if thumbReader, err := s.imgProc.GenerateThumbnail(bytes.NewReader(fileBytes), 400, 300); err == nil {
		tPath := fmt.Sprintf("fields/%s/%s_thumb.jpg", shard, photoID)
		if err := s.storage.Save(ctx, tPath, thumbReader); err == nil {
			thumbnailPath = &tPath
		}
	} else {
		log.Warn().Err(err).Str("photo_id", photoID).Msg("thumbnail generation failed")
	}

	p := &Photo{
		ID:            photoID,
		FieldID:       fieldID,
		UploaderID:    actorID,
		Filename:      header.Filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          header.Size,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		_ = s.storage.Delete(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.storage.Delete(ctx, *thumbnailPath)
		}
		return nil, err
	}

	return p, nil
}

func (s *service) ListByField(ctx context.Context, fieldID string) ([]*Photo, error) {
	return s.repo.ListByField(ctx, fieldID)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, p.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve photo: %w", err)
	}
	return stream, p, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if p.ThumbnailPath == nil {
		return nil, nil, ErrNotFound
	}

	stream, err := s.storage.Get(ctx, *p.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail: %w", err)
	}
	return stream, p, nil
}

func (s *service) Delete(ctx context.Context, id string, actorID string, isSysAdmin bool) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p.FieldID, actorID, isSysAdmin); err != nil {
		return err
	}

	// Best-effort storage cleanup; the record is authoritative.
	if err := s.storage.Delete(ctx, p.StoragePath); err != nil {
		log.Warn().Err(err).Str("photo_id", id).Msg("delete photo blob")
	}
	if p.ThumbnailPath != nil {
		_ = s.storage.Delete(ctx, *p.ThumbnailPath)
	}

	return s.repo.Delete(ctx, id)
}
