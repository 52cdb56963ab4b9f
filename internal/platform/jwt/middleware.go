package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID is the gin context key holding the authenticated user ID.
	ContextUserID = "userID"

	// CodeUnauthorized is the error code returned for a missing or invalid access token.
	CodeUnauthorized = "Unauthorized"
)

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

// AuthRequired rejects requests without a valid "Authorization: Bearer" access token
// and stores the token's user ID under ContextUserID.
func AuthRequired(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": CodeUnauthorized, "message": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		userID, err := verifier.VerifyAccessToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": CodeUnauthorized, "message": "invalid token"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}
