package http

import (
	"time"

	"github.com/opencourt/field-booking-backend/internal/pkg/request"
	"github.com/opencourt/field-booking-backend/internal/venue"
)

type CreateVenueBody struct {
	Name string `json:"name" binding:"required"`
}

type UpdateVenueBody struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type VenueResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewVenueResponse(v *venue.Venue) VenueResponse {
	return VenueResponse{
		ID:        v.ID,
		Name:      v.Name,
		IsActive:  v.IsActive,
		CreatedAt: v.CreatedAt,
	}
}

// VenueTag is the compact embedded form used by other modules' responses.
type VenueTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ListVenuesRequest struct {
	request.ListParams
}

type AddMemberBody struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=owner staff"`
}

type UpdateMemberBody struct {
	Role string `json:"role" binding:"required,oneof=owner staff"`
}

type MemberResponse struct {
	UserID      string  `json:"user_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        string  `json:"role"`
}

func NewMemberResponse(m *venue.Member) MemberResponse {
	return MemberResponse{
		UserID:      m.UserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Role:        m.Role,
	}
}
