package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/config"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/service"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: graphstore.BackendMemory}}
	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &graphstore.MemoryStore{}, store)

	cfg.Store.Backend = "sqlite"
	_, err = OpenStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestThresholds(t *testing.T) {
	th := Thresholds(&config.DetectionConfig{MinClaims: 7, MinAvgAmount: 9000})
	assert.Equal(t, 7, th.MinClaims)
	assert.Equal(t, 9000.0, th.MinAvgAmount)
	assert.Equal(t, domain.DefaultThresholds().MinSharedClaims, th.MinSharedClaims, "unset values use defaults")

	th = Thresholds(&config.DetectionConfig{MinAvgAmount: 0})
	assert.Zero(t, th.MinAvgAmount, "a zero amount floor is kept")
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)
	assert.True(t, corsConfig(nil).AllowAllOrigins)

	c := corsConfig([]string{"http://ui.test"})
	assert.False(t, c.AllowAllOrigins)
	assert.Equal(t, []string{"http://ui.test"}, c.AllowOrigins)
}

func TestBuildRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := graphstore.NewMemoryStore()
	detection := service.NewDetectionService(store)
	app := &App{
		Config: &config.Config{
			Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
			App:    config.AppConfig{Version: "test", APIKey: "k", RateLimit: 5, RateBurst: 10},
		},
		Store:     store,
		Detection: detection,
		Claims:    service.NewClaimService(store, nil),
		Queries:   service.NewQueryService(store),
		Admin:     service.NewAdminService(store, detection),
	}
	r := BuildRouter(RouterDeps{ServiceName: "fraud-ring-backend", App: app})

	get := func(path string, headers ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for i := 0; i+1 < len(headers); i += 2 {
			req.Header.Set(headers[i], headers[i+1])
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	assert.Equal(t, http.StatusOK, get("/api/v1/entities/types").Code)
	assert.Equal(t, http.StatusUnauthorized, get("/api/v1/admin/stats").Code)
	assert.Equal(t, http.StatusOK, get("/api/v1/admin/stats", "X-API-Key", "k").Code)
}
