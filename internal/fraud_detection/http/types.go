package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/service"
	"github.com/redis/go-redis/v9"
)

// AssessmentReader serves stored assessments; *repository.AssessmentRepository implements it.
type AssessmentReader interface {
	GetByClaimID(ctx context.Context, claimID string) (*domain.Assessment, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Assessment, error)
}

// RunEvents delivers run updates; *repository.RunRepository implements it.
type RunEvents interface {
	Subscribe(ctx context.Context, runID string) *redis.PubSub
}

type Deps struct {
	Queries   *service.QueryService
	Detection *service.DetectionService
	Claims    *service.ClaimService
	Admin     *service.AdminService
	// optional
	Assessments AssessmentReader
	Events      RunEvents
}

// Guards are attached to route groups; nil entries are skipped.
type Guards struct {
	Admin    gin.HandlerFunc
	Mutating gin.HandlerFunc
}

// Handler serves the investigator, intake and admin API.
type Handler struct {
	queries     *service.QueryService
	detection   *service.DetectionService
	claims      *service.ClaimService
	admin       *service.AdminService
	assessments AssessmentReader
	events      RunEvents
}

func New(d Deps) *Handler {
	return &Handler{
		queries:     d.Queries,
		detection:   d.Detection,
		claims:      d.Claims,
		admin:       d.Admin,
		assessments: d.Assessments,
		events:      d.Events,
	}
}

type assessRequest struct {
	Entities map[string]string `json:"entities"`
}
