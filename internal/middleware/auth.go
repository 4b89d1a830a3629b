package middleware

import (
	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/auth"
	"aetherlink-be/internal/response"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.RequireAuth(c.Request, verifier)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth records the caller when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := auth.Identify(c.Request, verifier); ok {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// UserID returns the id stored by AuthMiddleware or OptionalAuth.
func UserID(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	return userID, userID != ""
}
