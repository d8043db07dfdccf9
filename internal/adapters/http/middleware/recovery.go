package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
)

// Recovery must run first. A panic becomes a 500 INTERNAL_ERROR envelope
// unless the handler already started writing, in which case the response
// is cut short as is.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				ctx := c.Request.Context()
				logging.FromContextOr(ctx, logger).ErrorContext(ctx, "panic recovered",
					slog.Any("error", r),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("trace_id", dto.GetTraceID(c)),
					slog.String("stack", string(debug.Stack())),
				)

				if c.Writer.Written() {
					c.Abort()
					return
				}

				dto.AbortInternal(c)
			}
		}()

		c.Next()
	}
}
