package court

import (
	"context"
	"strings"

	"github.com/opencourt/field-booking-backend/internal/field"
)

type CreateRequest struct {
	FieldID string
	Name    string
}

type UpdateRequest struct {
	Name *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest, actorID string, isSysAdmin bool) (*Court, error)
	GetByID(ctx context.Context, id string) (*Court, error)
	List(ctx context.Context, filter Filter) ([]*Court, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Court, error)
	Delete(ctx context.Context, id string, actorID string, isSysAdmin bool) error
}

type service struct {
	repo         Repository
	fieldService field.Service
}

func NewService(repo Repository, fieldService field.Service) Service {
	return &service{
		repo:         repo,
		fieldService: fieldService,
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

func (s *service) Create(ctx context.Context, req CreateRequest, actorID string, isSysAdmin bool) (*Court, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if req.FieldID == "" {
		return nil, ErrInvalidField
	}

	if _, err := s.fieldService.GetByID(ctx, req.FieldID); err != nil {
		return nil, ErrInvalidField
	}
	if err := s.authorize(ctx, req.FieldID, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	c := &Court{
		FieldID: req.FieldID,
		Name:    strings.TrimSpace(req.Name),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Court, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Court, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Court, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, c.FieldID, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		c.Name = strings.TrimSpace(*req.Name)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id string, actorID string, isSysAdmin bool) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, c.FieldID, actorID, isSysAdmin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
