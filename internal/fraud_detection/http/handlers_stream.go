package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

const keepAliveInterval = 15 * time.Second

// StreamRunEvents streams status changes of a run as Server-Sent Events until
// the run reaches a terminal status or the client goes away.
func (h *Handler) StreamRunEvents(c *gin.Context) {
	runID := c.Param("id")
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run events are not available"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()
	// the subscription is confirmed before the run is read, so a status change
	// published after the read always reaches the channel
	sub := h.events.Subscribe(ctx, runID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		writeError(c, "subscribe run events", err)
		return
	}

	run, err := h.detection.GetRun(ctx, runID)
	if err != nil {
		writeError(c, "get run", err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	initial, _ := json.Marshal(gin.H{"run": run})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()
	if domain.IsTerminal(run.Status) {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	updates := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case msg, ok := <-updates:
			if !ok {
				return
			}
			var updated domain.DetectionRun
			if err := json.Unmarshal([]byte(msg.Payload), &updated); err != nil {
				continue
			}
			data, _ := json.Marshal(gin.H{"run": updated})
			fmt.Fprintf(c.Writer, "event: update\ndata: %s\n\n", data)
			flusher.Flush()
			if domain.IsTerminal(updated.Status) {
				return
			}
		}
	}
}
