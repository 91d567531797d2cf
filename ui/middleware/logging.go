package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"liftcast/internal"
)

// RequestLogger logs one line per request at debug level, or at warn level
// for server errors.
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			logger.Warn("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.RequestURI(), status, time.Since(start))
			return
		}
		logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.RequestURI(), status, time.Since(start))
	}
}
