package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cache sets Cache-Control for the route it wraps. Mutating methods are
// always no-store; GETs advertise a private max-age. Used on stable reads
// like the VAPID public key.
func Cache(maxAge int) gin.HandlerFunc {
	value := fmt.Sprintf("private, max-age=%d", maxAge)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
		} else {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}
