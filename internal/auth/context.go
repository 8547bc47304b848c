package auth

import "github.com/gin-gonic/gin"

// Gin context keys set by the bearer middleware.
const (
	ctxUserID    = "auth.user_id"
	ctxUserEmail = "auth.user_email"
)

// GetUserID returns the authenticated user's id, or "" on an
// unauthenticated request.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserEmail returns the authenticated user's email, or "".
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}
