package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// SubmitClaim files a new Auto claim and returns its risk assessment.
func (h *Handler) SubmitClaim(c *gin.Context) {
	var req domain.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := h.claims.SubmitClaim(c.Request.Context(), req)
	if err != nil {
		writeError(c, "submit claim", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// PreviewClaim assesses the entities of a claim without filing it.
func (h *Handler) PreviewClaim(c *gin.Context) {
	var req domain.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	a, err := h.claims.PreviewRisk(c.Request.Context(), req)
	if err != nil {
		writeError(c, "preview risk", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessment": a})
}

func (h *Handler) Assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	a, err := h.claims.Assess(c.Request.Context(), req.Entities)
	if err != nil {
		writeError(c, "assess risk", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessment": a})
}

func (h *Handler) GetAssessment(c *gin.Context) {
	if h.assessments == nil {
		writeError(c, "get assessment", domain.ErrAssessmentMissing)
		return
	}
	a, err := h.assessments.GetByClaimID(c.Request.Context(), c.Param("claim_id"))
	if err != nil {
		writeError(c, "get assessment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessment": a})
}

func (h *Handler) ListAssessments(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 50, 1, maxRunList)
	if !ok {
		return
	}
	if h.assessments == nil {
		c.JSON(http.StatusOK, gin.H{"assessments": []*domain.Assessment{}})
		return
	}
	list, err := h.assessments.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, "list assessments", err)
		return
	}
	if list == nil {
		list = []*domain.Assessment{}
	}
	c.JSON(http.StatusOK, gin.H{"assessments": list})
}
