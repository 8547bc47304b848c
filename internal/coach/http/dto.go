package http

import (
	"time"

	"github.com/opencourt/field-booking-backend/internal/coach"
)

type CreateCoachBody struct {
	VenueID   string  `json:"venue_id" binding:"required,uuid"`
	UserID    string  `json:"user_id" binding:"required,uuid"`
	Specialty string  `json:"specialty"`
	Bio       *string `json:"bio"`
}

type UpdateCoachBody struct {
	Specialty *string `json:"specialty"`
	Bio       *string `json:"bio"`
	IsActive  *bool   `json:"is_active"`
}

type CoachResponse struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venue_id"`
	UserID    string    `json:"user_id"`
	Specialty string    `json:"specialty"`
	Bio       *string   `json:"bio,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCoachResponse(c *coach.Coach) CoachResponse {
	return CoachResponse{
		ID:        c.ID,
		VenueID:   c.VenueID,
		UserID:    c.UserID,
		Specialty: c.Specialty,
		Bio:       c.Bio,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}
