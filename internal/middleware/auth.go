package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/apierror"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/auth"
)

const (
	AuthContextKey = "user_id"
)

// Auth middleware resolves the bearer token to a user id
func Auth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierror.Abort(c, apierror.Unauthenticated("middleware.Auth", nil, "Authentication required"), false)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			apierror.Abort(c, apierror.Unauthenticated("middleware.Auth", nil, "Invalid authorization format"), false)
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			apierror.Abort(c, apierror.Unauthenticated("middleware.Auth", err, "Invalid or expired token"), false)
			return
		}

		c.Set(AuthContextKey, userID)
		c.Next()
	}
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(AuthContextKey)
	if !exists {
		return "", false
	}

	userIDStr, ok := userID.(string)
	return userIDStr, ok && userIDStr != ""
}
