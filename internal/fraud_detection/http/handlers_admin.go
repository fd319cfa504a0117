package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/datagen"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

const maxProfileBytes = 1 << 20

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.queries.Stats(c.Request.Context())
	if err != nil {
		writeError(c, "load stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Generate replaces the dataset. The body is an optional JSON or YAML profile;
// an empty body generates the default profile.
func (h *Handler) Generate(c *gin.Context) {
	var seed uint64
	if raw := c.Query("seed"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "seed must be a non-negative integer")
			return
		}
		seed = v
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxProfileBytes))
	if err != nil {
		badRequest(c, "failed to read request body")
		return
	}
	profile := datagen.DefaultProfile()
	if len(body) > 0 {
		if profile, err = datagen.ParseProfile(body); err != nil {
			writeError(c, "parse profile", &domain.ValidationError{Problems: []string{err.Error()}})
			return
		}
	}

	stats, used, err := h.admin.Generate(c.Request.Context(), profile, seed)
	if err != nil {
		writeError(c, "generate data", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"seed": used, "stats": stats})
}

// ClearData deletes the whole graph; it needs ?confirm=true.
func (h *Handler) ClearData(c *gin.Context) {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); !ok {
		badRequest(c, "pass confirm=true to delete all data")
		return
	}
	if err := h.admin.ClearData(c.Request.Context()); err != nil {
		writeError(c, "clear data", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearDetections(c *gin.Context) {
	cleared, err := h.detection.ClearDetections(c.Request.Context())
	if err != nil {
		writeError(c, "clear detections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}
