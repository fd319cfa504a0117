package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusUp       = "up"
	statusDown     = "down"
	statusDisabled = "disabled"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store"`
	Redis     string    `json:"redis,omitempty"`
	DB        string    `json:"db,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	store       graphstore.Store
	redis       *redis.Client
	db          *pgxpool.Pool
}

// NewHealthHandler accepts nil redis and db clients; they are reported as disabled.
func NewHealthHandler(serviceName, version string, store graphstore.Store, rdb *redis.Client, db *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		store:       store,
		redis:       rdb,
		db:          db,
	}
}

// HealthCheck answers 503 when the graph store is down. Redis and Postgres
// only degrade the status.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     probe(h.store != nil, func() error { return h.store.Ping(ctx) }),
		Redis:     probe(h.redis != nil, func() error { return h.redis.Ping(ctx).Err() }),
		DB:        probe(h.db != nil, func() error { return h.db.Ping(ctx) }),
	}

	code := http.StatusOK
	switch {
	case resp.Store != statusUp:
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	case resp.Redis == statusDown || resp.DB == statusDown:
		resp.Status = "degraded"
	}
	c.JSON(code, resp)
}

func probe(enabled bool, ping func() error) string {
	if !enabled {
		return statusDisabled
	}
	if err := ping(); err != nil {
		return statusDown
	}
	return statusUp
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
