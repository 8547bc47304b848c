package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	g.GET("/fields/:id/photos", h.ListByField)
	g.GET("/photos/:id", h.Download)
	g.GET("/photos/:id/thumbnail", h.DownloadThumbnail)

	g.POST("/fields/:id/photos", authMiddleware, h.Upload)
	g.DELETE("/photos/:id", authMiddleware, h.Delete)
}
