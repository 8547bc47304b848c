package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opencourt/field-booking-backend/internal/auth"
	"github.com/opencourt/field-booking-backend/internal/coach"
	"github.com/opencourt/field-booking-backend/internal/pkg/response"
	"github.com/opencourt/field-booking-backend/internal/user"
)

type Handler struct {
	service     coach.Service
	userService user.Service
}

func NewHandler(service coach.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

func (h *Handler) isSysAdmin(c *gin.Context, userID string) bool {
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsSystemAdmin
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateCoachBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := auth.GetUserID(c)
	co, err := h.service.Create(c.Request.Context(), coach.CreateRequest{
		VenueID:   body.VenueID,
		UserID:    body.UserID,
		Specialty: body.Specialty,
		Bio:       body.Bio,
	}, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCoachResponse(co))
}

func (h *Handler) Get(c *gin.Context) {
	co, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCoachResponse(co))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	coaches, total, err := h.service.List(c.Request.Context(), coach.Filter{
		VenueID:  c.Query("venue_id"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CoachResponse, len(coaches))
	for i, co := range coaches {
		items[i] = NewCoachResponse(co)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, page, pageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	var body UpdateCoachBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := auth.GetUserID(c)
	co, err := h.service.Update(c.Request.Context(), c.Param("id"), coach.UpdateRequest{
		Specialty: body.Specialty,
		Bio:       body.Bio,
		IsActive:  body.IsActive,
	}, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCoachResponse(co))
}

func (h *Handler) Delete(c *gin.Context) {
	userID := auth.GetUserID(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID, h.isSysAdmin(c, userID)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
