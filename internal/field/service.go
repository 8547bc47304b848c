package field

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/field-booking-backend/internal/venue"
)

type CreateRequest struct {
	VenueID            string
	Name               string
	MinSlotsPerBooking int
	MaxSlotsPerBooking int
	BasePrice          int64
	OperatingHours     []OperatingHours
	PriceRanges        []PriceRange
}

type UpdateRequest struct {
	Name               *string
	MinSlotsPerBooking *int
	MaxSlotsPerBooking *int
	BasePrice          *int64
	OperatingHours     []OperatingHours
	PriceRanges        []PriceRange
}

// ScheduleChangeRequest queues a future price configuration change.
type ScheduleChangeRequest struct {
	NewOperatingHours []OperatingHours
	NewPriceRanges    []PriceRange
	NewBasePrice      *int64
	EffectiveDate     string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest, actorID string, isSysAdmin bool) (*Field, error)
	GetByID(ctx context.Context, id string) (*Field, error)
	List(ctx context.Context, filter Filter) ([]*Field, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Field, error)
	Delete(ctx context.Context, id string, actorID string, isSysAdmin bool) error

	// SchedulePriceChange validates and appends a pending price change.
	SchedulePriceChange(ctx context.Context, fieldID string, req ScheduleChangeRequest, actorID string, isSysAdmin bool) (*Field, error)
	// ApplyDueChanges folds every unapplied change whose effective date has
	// passed into the live configuration. Returns the number of fields updated.
	ApplyDueChanges(ctx context.Context, now time.Time) (int, error)

	// CanManage reports whether the user manages the field's venue.
	CanManage(ctx context.Context, fieldID string, userID string) (bool, error)
}

type service struct {
	repo         Repository
	venueService venue.Service
	loc          *time.Location
}

func NewService(repo Repository, venueService venue.Service, loc *time.Location) Service {
	return &service{
		repo:         repo,
		venueService: venueService,
		loc:          loc,
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

func (s *service) Create(ctx context.Context, req CreateRequest, actorID string, isSysAdmin bool) (*Field, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.VenueID == "" {
		return nil, ErrVenueRequired
	}

	if _, err := s.venueService.GetByID(ctx, req.VenueID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, req.VenueID, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	// Configuration invariants are enforced on every write path.
	if err := ValidateConfig(req.BasePrice, req.MinSlotsPerBooking, req.MaxSlotsPerBooking, req.OperatingHours, req.PriceRanges); err != nil {
		return nil, err
	}

	f := &Field{
		VenueID:            req.VenueID,
		Name:               strings.TrimSpace(req.Name),
		MinSlotsPerBooking: req.MinSlotsPerBooking,
		MaxSlotsPerBooking: req.MaxSlotsPerBooking,
		BasePrice:          req.BasePrice,
		OperatingHours:     req.OperatingHours,
		PriceRanges:        req.PriceRanges,
		PendingChanges:     []PendingPriceChange{},
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Field, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Field, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string, isSysAdmin bool) (*Field, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, f.VenueID, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		f.Name = strings.TrimSpace(*req.Name)
	}
	if req.MinSlotsPerBooking != nil {
		f.MinSlotsPerBooking = *req.MinSlotsPerBooking
	}
	if req.MaxSlotsPerBooking != nil {
		f.MaxSlotsPerBooking = *req.MaxSlotsPerBooking
	}
	if req.BasePrice != nil {
		f.BasePrice = *req.BasePrice
	}
	if req.OperatingHours != nil {
		f.OperatingHours = req.OperatingHours
	}
	if req.PriceRanges != nil {
		f.PriceRanges = req.PriceRanges
	}

	if err := ValidateConfig(f.BasePrice, f.MinSlotsPerBooking, f.MaxSlotsPerBooking, f.OperatingHours, f.PriceRanges); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) Delete(ctx context.Context, id string, actorID string, isSysAdmin bool) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, f.VenueID, actorID, isSysAdmin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SchedulePriceChange(ctx context.Context, fieldID string, req ScheduleChangeRequest, actorID string, isSysAdmin bool) (*Field, error) {
	f, err := s.repo.GetByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, f.VenueID, actorID, isSysAdmin); err != nil {
		return nil, err
	}

	change := PendingPriceChange{
		ID:                uuid.NewString(),
		NewOperatingHours: req.NewOperatingHours,
		NewPriceRanges:    req.NewPriceRanges,
		NewBasePrice:      req.NewBasePrice,
		EffectiveDate:     req.EffectiveDate,
		Applied:           false,
	}

	if err := ValidateChange(f, change); err != nil {
		return nil, err
	}

	f.PendingChanges = append(f.PendingChanges, change)
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) ApplyDueChanges(ctx context.Context, now time.Time) (int, error) {
	today := now.In(s.loc).Format("2006-01-02")

	fields, err := s.repo.ListWithDueChanges(ctx, today)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, f := range fields {
		folded := f.ConfigFor(today)
		f.BasePrice = folded.BasePrice
		f.OperatingHours = folded.OperatingHours
		f.PriceRanges = folded.PriceRanges

		for i := range f.PendingChanges {
			if !f.PendingChanges[i].Applied && f.PendingChanges[i].EffectiveDate <= today {
				f.PendingChanges[i].Applied = true
			}
		}

		if err := s.repo.Update(ctx, f); err != nil {
			log.Error().Err(err).Str("field_id", f.ID).Msg("apply pending price change failed")
			continue
		}
		updated++
	}

	return updated, nil
}

func (s *service) CanManage(ctx context.Context, fieldID string, userID string) (bool, error) {
	f, err := s.repo.GetByID(ctx, fieldID)
	if err != nil {
		return false, err
	}
	return s.venueService.CanManage(ctx, f.VenueID, userID)
}
