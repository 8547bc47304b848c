package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opencourt/field-booking-backend/internal/auth"
	"github.com/opencourt/field-booking-backend/internal/booking"
	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/pkg/response"
	"github.com/opencourt/field-booking-backend/internal/schedule"
	"github.com/opencourt/field-booking-backend/internal/user"
)

type Handler struct {
	service         field.Service
	userService     user.Service
	scheduleService schedule.Service
	bookingService  booking.Service
}

func NewHandler(
	service field.Service,
	userService user.Service,
	scheduleService schedule.Service,
	bookingService booking.Service,
) *Handler {
	return &Handler{
		service:         service,
		userService:     userService,
		scheduleService: scheduleService,
		bookingService:  bookingService,
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
	var body CreateFieldBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	f, err := h.service.Create(c.Request.Context(), field.CreateRequest{
		VenueID:            body.VenueID,
		Name:               body.Name,
		MinSlotsPerBooking: body.MinSlotsPerBooking,
		MaxSlotsPerBooking: body.MaxSlotsPerBooking,
		BasePrice:          body.BasePrice,
		OperatingHours:     hoursToDomain(body.OperatingHours),
		PriceRanges:        rangesToDomain(body.PriceRanges),
	}, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewFieldResponse(f))
}

func (h *Handler) Get(c *gin.Context) {
	f, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFieldResponse(f))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	fields, total, err := h.service.List(c.Request.Context(), field.Filter{
		VenueID:  c.Query("venue_id"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]FieldResponse, len(fields))
	for i, f := range fields {
		items[i] = NewFieldResponse(f)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, page, pageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	var body UpdateFieldBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	f, err := h.service.Update(c.Request.Context(), c.Param("id"), field.UpdateRequest{
		Name:               body.Name,
		MinSlotsPerBooking: body.MinSlotsPerBooking,
		MaxSlotsPerBooking: body.MaxSlotsPerBooking,
		BasePrice:          body.BasePrice,
		OperatingHours:     hoursToDomain(body.OperatingHours),
		PriceRanges:        rangesToDomain(body.PriceRanges),
	}, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFieldResponse(f))
}

func (h *Handler) Delete(c *gin.Context) {
	userID := auth.GetUserID(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID, h.isSysAdmin(c, userID)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SchedulePriceChange queues a configuration change that takes effect for
// booking dates on or after the given date.
func (h *Handler) SchedulePriceChange(c *gin.Context) {
	var body ScheduleChangeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	f, err := h.service.SchedulePriceChange(c.Request.Context(), c.Param("id"), field.ScheduleChangeRequest{
		NewOperatingHours: hoursToDomain(body.NewOperatingHours),
		NewPriceRanges:    rangesToDomain(body.NewPriceRanges),
		NewBasePrice:      body.NewBasePrice,
		EffectiveDate:     body.EffectiveDate,
	}, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewFieldResponse(f))
}

// requireManager aborts unless the actor manages the field's venue.
func (h *Handler) requireManager(c *gin.Context, fieldID string) bool {
	userID := auth.GetUserID(c)
	if h.isSysAdmin(c, userID) {
		return true
	}
	ok, err := h.service.CanManage(c.Request.Context(), fieldID, userID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !ok {
		response.Error(c, field.ErrPermissionDenied)
		return false
	}
	return true
}

func (h *Handler) MarkHoliday(c *gin.Context) {
	id := c.Param("id")
	var body MarkHolidayBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !h.requireManager(c, id) {
		return
	}

	if err := h.scheduleService.MarkHoliday(c.Request.Context(), id, body.CourtID, body.Date, body.Reason); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UnmarkHoliday(c *gin.Context) {
	id := c.Param("id")
	var body UnmarkHolidayBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !h.requireManager(c, id) {
		return
	}

	if err := h.scheduleService.UnmarkHoliday(c.Request.Context(), id, body.CourtID, body.Date); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Availability returns the advisory slot grid for a date range. A slot
// shown as available can still be lost to a concurrent booking; the claim
// at creation time is authoritative.
func (h *Handler) Availability(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}

	days, err := h.bookingService.Availability(c.Request.Context(), c.Param("id"), c.Query("court_id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}
