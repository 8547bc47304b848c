package http

import (
	"time"

	"github.com/opencourt/field-booking-backend/internal/court"
)

type CreateCourtBody struct {
	FieldID string `json:"field_id" binding:"required,uuid"`
	Name    string `json:"name" binding:"required"`
}

type UpdateCourtBody struct {
	Name *string `json:"name"`
}

type CourtResponse struct {
	ID        string    `json:"id"`
	FieldID   string    `json:"field_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCourtResponse(c *court.Court) CourtResponse {
	return CourtResponse{
		ID:        c.ID,
		FieldID:   c.FieldID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}
