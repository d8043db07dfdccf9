package handlers

import (
	"iter"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
)

// Server-sent event names.
const (
	eventQuotes   = "quotes"
	eventLikes    = "likes"
	eventActivity = "activity"
	eventError    = "error"
)

func startStream(c *gin.Context) {
	// streams outlive the server's write timeout
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
}

func sendEvent(c *gin.Context, event string, data any) {
	c.SSEvent(event, data)
	c.Writer.Flush()
}

// streamSeq writes one event per element of seq until seq ends or the
// client goes away. Read errors are sent as error events and the stream
// continues with the next delivery.
func streamSeq[T, R any](c *gin.Context, event string, seq iter.Seq2[T, error], convert func(T) R) {
	startStream(c)

	ctx := c.Request.Context()

	for v, err := range seq {
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			_, resp := dto.MapDomainError(err)
			sendEvent(c, eventError, resp)

			continue
		}

		sendEvent(c, event, convert(v))
	}
}

// streamChan is streamSeq for a channel that closes when the stream ends.
func streamChan[T, R any](c *gin.Context, event string, ch <-chan T, convert func(T) R) {
	startStream(c)

	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-ch:
			if !ok {
				return
			}

			sendEvent(c, event, convert(v))
		}
	}
}
