package venue

import (
	"context"
	"errors"
	"strings"

	"github.com/opencourt/field-booking-backend/internal/user"
)

// UpdateRequest defines the fields that can be updated.
type UpdateRequest struct {
	Name     *string
	IsActive *bool
}

type Service interface {
	// Create registers a venue and makes the creating user its owner.
	Create(ctx context.Context, name string, ownerUserID string) (*Venue, error)
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, filter Filter) ([]*Venue, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Venue, error)
	Delete(ctx context.Context, id string) error

	GetMember(ctx context.Context, venueID, userID string) (*Member, error)
	AddMember(ctx context.Context, venueID, userID, role string) error
	UpdateMemberRole(ctx context.Context, venueID, userID, role string) error
	RemoveMember(ctx context.Context, venueID, userID string) error
	ListMembers(ctx context.Context, venueID string, filter MemberFilter) ([]*Member, int, error)

	// CanManage reports whether the user is an owner or staff member.
	CanManage(ctx context.Context, venueID, userID string) (bool, error)
	// IsOwner reports whether the user is an owner.
	IsOwner(ctx context.Context, venueID, userID string) (bool, error)
}

type service struct {
	repo        Repository
	userService user.Service
}

func NewService(repo Repository, userService user.Service) Service {
	return &service{repo: repo, userService: userService}
}

func validRole(role string) bool {
	return role == RoleOwner || role == RoleStaff
}

func (s *service) Create(ctx context.Context, name string, ownerUserID string) (*Venue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	v := &Venue{
		Name:     name,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, v.ID, ownerUserID, RoleOwner); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Venue, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Venue, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Venue, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		newName := strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, ErrNameRequired
		}
		v.Name = newName
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) GetMember(ctx context.Context, venueID, userID string) (*Member, error) {
	return s.repo.GetMember(ctx, venueID, userID)
}

func (s *service) AddMember(ctx context.Context, venueID, userID, role string) error {
	if !validRole(role) {
		return ErrInvalidRole
	}
	if _, err := s.repo.GetByID(ctx, venueID); err != nil {
		return err
	}
	if _, err := s.userService.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.repo.AddMember(ctx, venueID, userID, role)
}

func (s *service) UpdateMemberRole(ctx context.Context, venueID, userID, role string) error {
	if !validRole(role) {
		return ErrInvalidRole
	}

	m, err := s.repo.GetMember(ctx, venueID, userID)
	if err != nil {
		return err
	}

	// Demoting the last owner would leave the venue unmanageable.
	if m.Role == RoleOwner && role != RoleOwner {
		owners, err := s.repo.CountOwners(ctx, venueID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	return s.repo.UpdateMemberRole(ctx, venueID, userID, role)
}

func (s *service) RemoveMember(ctx context.Context, venueID, userID string) error {
	m, err := s.repo.GetMember(ctx, venueID, userID)
	if err != nil {
		return err
	}

	if m.Role == RoleOwner {
		owners, err := s.repo.CountOwners(ctx, venueID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	return s.repo.RemoveMember(ctx, venueID, userID)
}

func (s *service) ListMembers(ctx context.Context, venueID string, filter MemberFilter) ([]*Member, int, error) {
	if _, err := s.repo.GetByID(ctx, venueID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListMembers(ctx, venueID, filter)
}

func (s *service) CanManage(ctx context.Context, venueID, userID string) (bool, error) {
	m, err := s.repo.GetMember(ctx, venueID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.Role == RoleOwner || m.Role == RoleStaff, nil
}

func (s *service) IsOwner(ctx context.Context, venueID, userID string) (bool, error) {
	m, err := s.repo.GetMember(ctx, venueID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.Role == RoleOwner, nil
}
