package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/fields")

	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/availability", h.Availability)

	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)

		group.POST("/:id/price-changes", h.SchedulePriceChange)
		group.POST("/:id/holidays", h.MarkHoliday)
		group.DELETE("/:id/holidays", h.UnmarkHoliday)
	}
}
