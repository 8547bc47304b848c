package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opencourt/field-booking-backend/internal/auth"
	"github.com/opencourt/field-booking-backend/internal/court"
	"github.com/opencourt/field-booking-backend/internal/pkg/response"
	"github.com/opencourt/field-booking-backend/internal/user"
)

type Handler struct {
	service     court.Service
	userService user.Service
}

func NewHandler(service court.Service, userService user.Service) *Handler {
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
	var body CreateCourtBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := auth.GetUserID(c)
	ct, err := h.service.Create(c.Request.Context(), court.CreateRequest{
		FieldID: body.FieldID,
		Name:    body.Name,
	}, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCourtResponse(ct))
}

func (h *Handler) Get(c *gin.Context) {
	ct, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCourtResponse(ct))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	courts, total, err := h.service.List(c.Request.Context(), court.Filter{
		FieldID:  c.Query("field_id"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CourtResponse, len(courts))
	for i, ct := range courts {
		items[i] = NewCourtResponse(ct)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, page, pageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	var body UpdateCourtBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := auth.GetUserID(c)
	ct, err := h.service.Update(c.Request.Context(), c.Param("id"), court.UpdateRequest{
		Name: body.Name,
	}, userID, h.isSysAdmin(c, userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCourtResponse(ct))
}

func (h *Handler) Delete(c *gin.Context) {
	userID := auth.GetUserID(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID, h.isSysAdmin(c, userID)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
