package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/api/http/middleware"
	fraudhttp "github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/http"
)

type V1Deps struct {
	Handler   *fraudhttp.Handler
	APIKey    string
	RateRPS   float64
	RateBurst int
}

// RegisterV1 mounts the fraud detection API under /api/v1.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	limiter := middleware.NewRateLimiter(dep.RateRPS, dep.RateBurst)

	dep.Handler.Register(api, fraudhttp.Guards{
		Admin:    middleware.APIKeyMiddleware(dep.APIKey),
		Mutating: limiter.Middleware(),
	})
}
