package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidThreshold),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrAssessmentMissing):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status code and a JSON error body. Server-side
// failures are logged and not echoed to the client.
func writeError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.NewLogger(c.Request.Context()).LogError(action, err)
	}

	body := gin.H{"error": err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body["error"] = "validation failed"
		body["details"] = verr.Problems
	}
	if status == http.StatusInternalServerError {
		body["error"] = "failed to " + action
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
