package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as publicly cacheable for maxAge.
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	header := fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second))
	return func(c *gin.Context) {
		c.Header("Cache-Control", header)
		c.Next()
	}
}

// NoStore forbids caching; used for live session state.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
