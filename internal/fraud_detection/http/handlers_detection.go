package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

const maxRunList = 200

// StartRun queues a detection run. The body holds optional threshold overrides.
func (h *Handler) StartRun(c *gin.Context) {
	var th domain.ThresholdOverrides
	if err := c.ShouldBindJSON(&th); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}

	requestedBy := c.GetHeader("X-Requested-By")
	if requestedBy == "" {
		requestedBy = c.ClientIP()
	}
	run, err := h.detection.StartRun(c.Request.Context(), &domain.CreateRunRequest{
		Trigger:     domain.TriggerAPI,
		RequestedBy: requestedBy,
		Thresholds:  th,
	})
	if err != nil {
		writeError(c, "start run", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run": run})
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 20, 1, maxRunList)
	if !ok {
		return
	}
	runs, err := h.detection.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, "list runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.detection.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "get run", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

// CancelRun cancels an active run. A finished run's record is deleted instead.
func (h *Handler) CancelRun(c *gin.Context) {
	run, err := h.detection.CancelRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "cancel run", err)
		return
	}
	if run == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

func (h *Handler) SuspiciousCommunities(c *gin.Context) {
	entities, err := h.queries.SuspiciousCommunities(c.Request.Context())
	if err != nil {
		writeError(c, "list suspicious entities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

func (h *Handler) SuspiciousNetwork(c *gin.Context) {
	sg, err := h.queries.SuspiciousNetwork(c.Request.Context())
	if err != nil {
		writeError(c, "load suspicious network", err)
		return
	}
	c.JSON(http.StatusOK, sg)
}
