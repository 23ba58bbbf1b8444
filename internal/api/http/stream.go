package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// KeepAliveInterval is how often idle event streams send a comment line.
var KeepAliveInterval = 15 * time.Second

// StreamEvents writes every value received from ch as a Server-Sent Event
// named event, until ch closes or the client disconnects.
func StreamEvents[T any](c *gin.Context, event string, ch <-chan T) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}
	c.Status(http.StatusOK)
	flusher.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case v, ok := <-ch:
			if !ok {
				fmt.Fprint(c.Writer, "event: end\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(v)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
			flusher.Flush()
		}
	}
}
