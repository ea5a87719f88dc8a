package middleware

import (
	"strings"

	"ridelink/internal/services"
	"ridelink/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthRequired validates the bearer session token and stores the
// principal's ID and role on the request context.
func AuthRequired(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_role", string(claims.Role))
		c.Next()
	}
}

// RequestIDMiddleware attaches a request ID, generating one when the
// client did not send any.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// CORSMiddleware allows the mobile web build to call the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
