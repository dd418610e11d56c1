package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	HeaderClientID = "X-Client-ID"
	HeaderAdminID  = "X-Admin-ID"

	contextClientIDKey = "client_id"
)

// ClientRequired extracts the pre-authenticated caller identity. Callers
// arrive with identity already resolved by the edge; an absent header is
// treated as an unauthenticated request.
func ClientRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := strings.TrimSpace(c.GetHeader(HeaderClientID))
		if clientID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextClientIDKey, clientID)
		c.Next()
	}
}

func clientID(c *gin.Context) string {
	return c.GetString(contextClientIDKey)
}

func adminID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderAdminID))
}
