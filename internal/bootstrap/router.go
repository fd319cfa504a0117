package bootstrap

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpapi "github.com/insurance-graph/fraud-ring-backend/internal/api/http"
	"github.com/insurance-graph/fraud-ring-backend/internal/api/http/middleware"
	"github.com/insurance-graph/fraud-ring-backend/internal/api/http/routes"
	fraudhttp "github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	ServiceName string
	App         *App
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.App.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, dep.App.Store, dep.App.Redis, dep.App.DB)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	deps := fraudhttp.Deps{
		Queries:   dep.App.Queries,
		Detection: dep.App.Detection,
		Claims:    dep.App.Claims,
		Admin:     dep.App.Admin,
	}
	if dep.App.Assessments != nil {
		deps.Assessments = dep.App.Assessments
	}
	if dep.App.Runs != nil {
		deps.Events = dep.App.Runs
	}

	routes.RegisterV1(r, routes.V1Deps{
		Handler:   fraudhttp.New(deps),
		APIKey:    cfg.App.APIKey,
		RateRPS:   cfg.App.RateLimit,
		RateBurst: cfg.App.RateBurst,
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.APIKeyHeader, middleware.RequestIDHeader, "X-Requested-By"},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
