package coach

import (
	"context"
	"strings"

	"github.com/opencourt/field-booking-backend/internal/user"
	"github.com/opencourt/field-booking-backend/internal/venue"
)

type CreateRequest struct {
	VenueID   string
	UserID    string
	Specialty string
	Bio       *string
}

type UpdateRequest struct {
	Specialty *string
	Bio       *string
	IsActive  *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest, actorID string, isSysAdmin bool) (*Coach, error)
	GetByID(ctx context.Context, id string) (*Coach, error)
	List(ctx context.Context, filter Filter) ([]*Coach, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Coach, error)
	Delete(ctx context.Context, id string, actorID string, isSysAdmin bool) error
}

type service struct {
	repo         Repository
	venueService venue.Service
	userService  user.Service
}

func NewService(repo Repository, venueService venue.Service, userService user.Service) Service {
	return &service{
		repo:         repo,
		venueService: venueService,
		userService:  userService,
	}
}

func (s *service) authorize(ctx context.Context, venueID, actorID string, isSysAdmin bool) error {
	if isSysAdmin {
		return nil
	}
	ok, err := s.venueService.CanManage(ctx, venueID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest, actorID string, isSysAdmin bool) (*Coach, error) {
	if req.VenueID == "" {
		return nil, ErrInvalidVenue
	}
	if req.UserID == "" {
		return nil, ErrInvalidUser
	}

	if _, err := s.venueService.GetByID(ctx, req.VenueID); err != nil {
		return nil, ErrInvalidVenue
	}
	if _, err := s.userService.GetByID(ctx, req.UserID); err != nil {
		return nil, ErrInvalidUser
	}
	if err := s.authorize(ctx, req.VenueID, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	c := &Coach{
		VenueID:   req.VenueID,
		UserID:    req.UserID,
		Specialty: strings.TrimSpace(req.Specialty),
		Bio:       req.Bio,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Coach, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Coach, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Coach, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The coach may edit their own profile; venue managers may edit any.
	if c.UserID != actorID {
		if err := s.authorize(ctx, c.VenueID, actorID, isSysAdmin); err != nil {
			return nil, err
		}
	}

	if req.Specialty != nil {
		c.Specialty = strings.TrimSpace(*req.Specialty)
	}
	if req.Bio != nil {
		c.Bio = req.Bio
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
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
	if err := s.authorize(ctx, c.VenueID, actorID, isSysAdmin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
