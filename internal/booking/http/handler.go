package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opencourt/field-booking-backend/internal/auth"
	"github.com/opencourt/field-booking-backend/internal/booking"
	"github.com/opencourt/field-booking-backend/internal/cancelpolicy"
	"github.com/opencourt/field-booking-backend/internal/pkg/response"
	"github.com/opencourt/field-booking-backend/internal/user"
)

type Handler struct {
	service     booking.Service
	userService user.Service
}

func NewHandler(service booking.Service, userService user.Service) *Handler {
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
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:    auth.GetUserID(c),
		FieldID:   body.FieldID,
		CourtID:   body.CourtID,
		CoachID:   body.CoachID,
		Date:      body.Date,
		Start:     body.Start,
		End:       body.End,
		Amenities: body.SelectedAmenities,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	userID := auth.GetUserID(c)
	b, err := h.service.GetByID(c.Request.Context(), id, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	currentUserID := auth.GetUserID(c)
	filterUserID := currentUserID
	// Admins may see everything or filter by an arbitrary user.
	if h.isSysAdmin(c, currentUserID) {
		filterUserID = c.Query("user_id")
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		UserID:   filterUserID,
		FieldID:  c.Query("field_id"),
		CourtID:  c.Query("court_id"),
		Status:   c.Query("status"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, page, pageSize, total))
}

func (h *Handler) Confirm(c *gin.Context) {
	id := c.Param("id")
	userID := auth.GetUserID(c)

	b, err := h.service.Confirm(c.Request.Context(), id, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")
	var body CancelBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := auth.GetUserID(c)
	result, err := h.service.Cancel(c.Request.Context(), id, booking.CancelRequest{
		ActorID: userID,
		Role:    cancelpolicy.Role(body.Role),
		Reason:  body.Reason,
	}, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCancellationResponse(result))
}

func (h *Handler) CoachResponse(c *gin.Context) {
	id := c.Param("id")
	var body CoachResponseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	b, err := h.service.RespondCoach(c.Request.Context(), id, auth.GetUserID(c), body.Accept, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}
