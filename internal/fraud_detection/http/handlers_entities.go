package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/query"
)

const defaultHops = 2

// intQuery reads an integer query parameter within [lo, hi]. It writes a 400
// and reports false on a bad value.
func intQuery(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		badRequest(c, fmt.Sprintf("%s must be an integer between %d and %d", name, lo, hi))
		return 0, false
	}
	return v, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EntityTypes lists the node labels present in the graph.
func (h *Handler) EntityTypes(c *gin.Context) {
	types, err := h.queries.EntityTypes(c.Request.Context())
	if err != nil {
		writeError(c, "list entity types", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}

func (h *Handler) Entities(c *gin.Context) {
	label := c.Query("type")
	if label == "" {
		badRequest(c, "type is required")
		return
	}
	entities, err := h.queries.EntitiesByType(c.Request.Context(), label)
	if err != nil {
		writeError(c, "list entities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": label, "entities": entities})
}

// Neighborhood returns the subgraph around one entity.
func (h *Handler) Neighborhood(c *gin.Context) {
	hops, ok := intQuery(c, "hops", defaultHops, 1, query.MaxHops)
	if !ok {
		return
	}
	sg, err := h.queries.Neighborhood(c.Request.Context(), c.Query("type"), c.Param("id"), hops, splitList(c.Query("labels")))
	if err != nil {
		writeError(c, "load neighborhood", err)
		return
	}
	c.JSON(http.StatusOK, sg)
}

// EntityPool lists the entities selectable for a role on the intake form.
func (h *Handler) EntityPool(c *gin.Context) {
	role := c.Param("role")
	pool, err := h.queries.EntityPool(c.Request.Context(), role)
	if err != nil {
		writeError(c, "list entity pool", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "entities": pool})
}

func (h *Handler) FraudRings(c *gin.Context) {
	fraudType := c.DefaultQuery("fraud_type", query.FraudTypeAll)
	rings, err := h.queries.FraudRings(c.Request.Context(), fraudType)
	if err != nil {
		writeError(c, "list fraud rings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fraud_type": fraudType, "rings": rings})
}

func (h *Handler) FraudRingNetwork(c *gin.Context) {
	sg, err := h.queries.FraudRingNetwork(c.Request.Context(), c.DefaultQuery("fraud_type", query.FraudTypeAll))
	if err != nil {
		writeError(c, "load fraud ring network", err)
		return
	}
	c.JSON(http.StatusOK, sg)
}

func (h *Handler) FraudRingNeighborhood(c *gin.Context) {
	hops, ok := intQuery(c, "hops", defaultHops, 1, query.MaxHops)
	if !ok {
		return
	}
	sg, err := h.queries.FraudRingNeighborhood(c.Request.Context(), c.Param("claim_id"), hops)
	if err != nil {
		writeError(c, "load fraud ring", err)
		return
	}
	c.JSON(http.StatusOK, sg)
}
