// Package middleware holds the gin chain the router installs: id
// propagation, session resolution, request logging, panic recovery and
// request deadlines.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
)

// Id headers. A request id names one HTTP exchange; a correlation id
// follows a user action across every client sharing the tree.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength caps inbound ids so a client cannot stuff log lines.
const maxIDLength = 128

// idHeader is one propagated id: read from header, minted when absent,
// stored under key, echoed back, and attached to the context logger.
type idHeader struct {
	header string
	key    string
	tag    func(context.Context, string) context.Context
}

var (
	requestID     = idHeader{HeaderRequestID, ContextKeyRequestID, logging.WithRequestID}
	correlationID = idHeader{HeaderCorrelationID, ContextKeyCorrelationID, logging.WithCorrelationID}
)

// RequestID propagates X-Request-ID.
func RequestID() gin.HandlerFunc { return requestID.handler() }

// CorrelationID propagates X-Correlation-ID.
func CorrelationID() gin.HandlerFunc { return correlationID.handler() }

// GetRequestID returns the request id, or "" outside RequestID.
func GetRequestID(c *gin.Context) string { return c.GetString(ContextKeyRequestID) }

// GetCorrelationID returns the correlation id, or "" outside CorrelationID.
func GetCorrelationID(c *gin.Context) string { return c.GetString(ContextKeyCorrelationID) }

func (h idHeader) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(h.header)
		if id == "" || len(id) > maxIDLength {
			id = uuid.NewString()
		}

		c.Set(h.key, id)
		c.Header(h.header, id)
		c.Request = c.Request.WithContext(h.tag(c.Request.Context(), id))

		c.Next()
	}
}
