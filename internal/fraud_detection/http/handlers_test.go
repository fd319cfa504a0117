package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/insurance-graph/fraud-ring-backend/internal/api/http/middleware"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/repository"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/service"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

type testEnv struct {
	router    *gin.Engine
	redis     *miniredis.Miniredis
	store     *graphstore.MemoryStore
	runs      *repository.RunRepository
	detection *service.DetectionService
}

// seedGraph holds an adjuster, a claimant and a provider treating five
// expensive claims, enough for one medical mill finding.
func seedGraph(t *testing.T) *graphstore.MemoryStore {
	t.Helper()
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "ADJ_1", Labels: []string{domain.LabelPerson, domain.LabelAdjuster}, Props: domain.Attrs{"name": "Alex Adjuster"}})
	g.AddNode(&domain.Node{ID: "P_1", Labels: []string{domain.LabelPerson, domain.LabelClaimant}, Props: domain.Attrs{"name": "Pat"}})
	g.AddNode(&domain.Node{ID: "MED_M", Labels: []string{domain.LabelMedicalProvider}, Props: domain.Attrs{"name": "Busy Clinic"}})
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("CLM_M%d", i)
		g.AddNode(&domain.Node{ID: id, Labels: []string{domain.LabelClaim}, Props: domain.Attrs{
			"name": id, domain.PropClaimAmount: 20000.0, domain.PropClaimType: domain.ClaimTypeMedical,
		}})
		g.AddEdge(&domain.Edge{From: id, To: "MED_M", Type: domain.RelTreatedAt})
	}
	g.AddEdge(&domain.Edge{From: "CLM_M1", To: "P_1", Type: domain.RelFiledBy})

	s := graphstore.NewMemoryStore()
	require.NoError(t, s.Import(context.Background(), g))
	return s
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	env := &testEnv{redis: mr, store: seedGraph(t), runs: repository.NewRunRepository(client)}
	env.detection = service.NewDetectionService(env.store, service.WithRunStore(env.runs))
	t.Cleanup(env.detection.Shutdown)

	h := New(Deps{
		Queries:   service.NewQueryService(env.store),
		Detection: env.detection,
		Claims:    service.NewClaimService(env.store, nil),
		Admin:     service.NewAdminService(env.store, env.detection),
		Events:    env.runs,
	})
	env.router = gin.New()
	h.Register(env.router.Group("/api/v1"), Guards{Admin: middleware.APIKeyMiddleware(testKey)})
	return env
}

func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Problems: []string{"x"}}, http.StatusBadRequest},
		{fmt.Errorf("resolve: %w", domain.ErrInvalidThreshold), http.StatusBadRequest},
		{fmt.Errorf("Claim X: %w", domain.ErrNodeNotFound), http.StatusNotFound},
		{domain.ErrRunNotFound, http.StatusNotFound},
		{domain.ErrAssessmentMissing, http.StatusNotFound},
		{domain.ErrRunInProgress, http.StatusConflict},
		{fmt.Errorf("snapshot: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestEntityRoutes(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/api/v1/entities/types", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["types"], domain.LabelMedicalProvider)

	w = env.do(http.MethodGet, "/api/v1/entities", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/entities?type=Claimant", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["entities"], 1)

	w = env.do(http.MethodGet, "/api/v1/entities/MED_M/neighborhood?type=MedicalProvider&hops=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["edges"], 5)

	w = env.do(http.MethodGet, "/api/v1/entities/MED_M/neighborhood?hops=9", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/entities/MED_M/neighborhood?type=Claim", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/v1/pools/medical_provider", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["entities"], 1)

	w = env.do(http.MethodGet, "/api/v1/pools/pilot", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", decode(t, w)["error"])
}

func TestDetectionRunRoutes(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/api/v1/detections/runs", `{"min_connections": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/detections/runs", "", "X-Requested-By", "analyst")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	run := decode(t, w)["run"].(map[string]any)
	runID := run["run_id"].(string)
	assert.Equal(t, "analyst", run["requested_by"])
	env.detection.Wait()

	w = env.do(http.MethodGet, "/api/v1/detections/runs/"+runID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["run"].(map[string]any)
	assert.Equal(t, domain.StatusCompleted, got["status"])

	w = env.do(http.MethodGet, "/api/v1/detections/runs?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["runs"], 1)

	w = env.do(http.MethodGet, "/api/v1/detections/suspicious", "")
	require.Equal(t, http.StatusOK, w.Code)
	entities := decode(t, w)["entities"].([]any)
	require.NotEmpty(t, entities)
	assert.Equal(t, "MED_M", entities[0].(map[string]any)["id"])

	w = env.do(http.MethodGet, "/api/v1/detections/suspicious/network", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/detections/runs/"+runID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(http.MethodGet, "/api/v1/detections/runs/"+runID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartRun_ExplicitZeroThreshold(t *testing.T) {
	env := setupRouter(t)
	w := env.do(http.MethodPost, "/api/v1/detections/runs", `{"min_avg_amount": 0, "min_claims": 4}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	env.detection.Wait()

	th := decode(t, w)["run"].(map[string]any)["thresholds"].(map[string]any)
	assert.Equal(t, 0.0, th["min_avg_amount"])
	assert.Equal(t, 4.0, th["min_claims"])
	assert.Equal(t, 3.0, th["min_shared_claims"])
}

func TestStartRun_Conflict(t *testing.T) {
	env := setupRouter(t)
	ok, err := env.runs.AcquireLock(context.Background(), "other-instance", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	w := env.do(http.MethodPost, "/api/v1/detections/runs", "{}")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStreamRunEvents_FinishedRun(t *testing.T) {
	env := setupRouter(t)
	w := env.do(http.MethodPost, "/api/v1/detections/runs", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	runID := decode(t, w)["run"].(map[string]any)["run_id"].(string)
	env.detection.Wait()

	w = env.do(http.MethodGet, "/api/v1/detections/runs/"+runID+"/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "event: initial\ndata: "))
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = env.do(http.MethodGet, "/api/v1/detections/runs/missing/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamRunEvents_ActiveRun(t *testing.T) {
	env := setupRouter(t)
	ctx := context.Background()
	run := &domain.DetectionRun{Status: domain.StatusRunning, Trigger: domain.TriggerAPI}
	require.NoError(t, env.runs.Create(ctx, run))

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- env.do(http.MethodGet, "/api/v1/detections/runs/"+run.RunID+"/events", "")
	}()

	channel := "fraud:events:" + run.RunID
	require.Eventually(t, func() bool {
		return env.redis.PubSubNumSub(channel)[channel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	run.Status = domain.StatusCompleted
	require.NoError(t, env.runs.Update(ctx, run))

	select {
	case w := <-done:
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "event: initial\ndata: "))
		assert.Contains(t, body, `"status":"completed"`)
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not end after the terminal update")
	}
}

func TestClaimRoutes(t *testing.T) {
	env := setupRouter(t)

	body := `{
		"amount": 4200,
		"incident_date": "2024-05-01",
		"incident_type": "Rear-End Collision",
		"adjuster_id": "ADJ_1",
		"claimant": {"name": "New Person"},
		"medical_provider_id": "MED_M"
	}`
	w := env.do(http.MethodPost, "/api/v1/claims/preview", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w), "assessment")

	w = env.do(http.MethodPost, "/api/v1/claims", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode(t, w)
	assert.True(t, strings.HasPrefix(res["claim_id"].(string), "CLM_"))
	assert.NotNil(t, res["assessment"])

	w = env.do(http.MethodPost, "/api/v1/claims", `{"amount": 10, "incident_type": "Meteor"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["details"])

	w = env.do(http.MethodPost, "/api/v1/claims", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/risk/assess", `{"entities": {"claimant": "P_1"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	a := decode(t, w)["assessment"].(map[string]any)
	assert.Equal(t, string(domain.RiskClean), a["level"])

	w = env.do(http.MethodGet, "/api/v1/risk/assessments/CLM_M1", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "no assessment store configured")
	w = env.do(http.MethodGet, "/api/v1/risk/assessments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["assessments"])
}

func TestAdminRoutes(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/api/v1/admin/stats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/v1/admin/stats", "", middleware.APIKeyHeader, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, decode(t, w)["total_claims"])

	profile := "adjusters: 3\nlegitimate_claims: 4\nexplicit: {medical_mill: 1, kickback: 0, staged: 0, phantom: 0, adjuster_collusion: 0}\n" +
		"implicit: {medical_mill: {tier1: 0, tier2: 0, tier3: 0}, kickback: {tier1: 0, tier2: 0, tier3: 0}, staged: {tier1: 0, tier2: 0, tier3: 0}, " +
		"phantom: {tier1: 0, tier2: 0, tier3: 0}, adjuster_collusion: {tier1: 0, tier2: 0, tier3: 0}}\ninclude_near_miss: false\n"
	w = env.do(http.MethodPost, "/api/v1/admin/generate?seed=7", profile, middleware.APIKeyHeader, testKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode(t, w)
	assert.EqualValues(t, 7, out["seed"])
	assert.EqualValues(t, 4, out["stats"].(map[string]any)["legitimate_claims"])

	w = env.do(http.MethodPost, "/api/v1/admin/generate?seed=-1", "", middleware.APIKeyHeader, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodPost, "/api/v1/admin/generate", "adjusters: 0", middleware.APIKeyHeader, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/admin/detections", "", middleware.APIKeyHeader, testKey)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/admin/data", "", middleware.APIKeyHeader, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodDelete, "/api/v1/admin/data?confirm=true", "", middleware.APIKeyHeader, testKey)
	assert.Equal(t, http.StatusNoContent, w.Code)

	g, err := env.store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
}

func TestFraudRingRoutes(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/api/v1/fraud-rings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "All", decode(t, w)["fraud_type"])

	w = env.do(http.MethodGet, "/api/v1/fraud-rings/network?fraud_type=Medical%20Mill", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/fraud-rings/CLM_M1/network?hops=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["edges"])

	w = env.do(http.MethodGet, "/api/v1/fraud-rings/NOPE/network", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
