package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout returns middleware that puts a deadline on the request context.
// Tree reads and writes honor it and surface an unavailable error when it
// passes. Routes ending in one of skipSuffixes, such as live streams, get
// no deadline.
func Timeout(timeout time.Duration, skipSuffixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 || skips(c.FullPath(), skipSuffixes) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func skips(route string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(route, s) {
			return true
		}
	}

	return false
}
