package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencourt/field-booking-backend/internal/pkg/apperror"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes err as a JSON response. AppErrors carry their own status
// code; anything else is an opaque 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
