package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/repository"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStore holds a clean adjuster, a fraud attorney and a provider treating
// five expensive claims.
func newStore(t *testing.T) *graphstore.MemoryStore {
	t.Helper()
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "ADJ_1", Labels: []string{domain.LabelPerson, domain.LabelAdjuster}, Props: domain.Attrs{"name": "Alex Adjuster"}})
	g.AddNode(&domain.Node{ID: "ATT_F", Labels: []string{domain.LabelAttorney}, Props: domain.Attrs{
		"name": "Shady Law", domain.PropIsFraud: true, domain.PropFraudType: domain.FraudTypeBodyShopKickback,
	}})
	g.AddNode(&domain.Node{ID: "MED_M", Labels: []string{domain.LabelMedicalProvider}, Props: domain.Attrs{"name": "Busy Clinic"}})
	g.AddNode(&domain.Node{ID: "P_1", Labels: []string{domain.LabelPerson, domain.LabelClaimant}, Props: domain.Attrs{"name": "Pat"}})
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

func setupRunRepo(t *testing.T) *repository.RunRepository {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return repository.NewRunRepository(client)
}

type fakeArchive struct {
	mu    sync.Mutex
	saved []string
}

func (a *fakeArchive) Save(_ context.Context, run *domain.DetectionRun) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, run.RunID)
	return nil
}

func TestDetectionService_RunAll(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := NewDetectionService(store)

	rep, err := svc.RunAll(ctx, domain.ThresholdOverrides{})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts[domain.KindMedicalMill])
	assert.Equal(t, domain.RunSummary{TotalFindings: 1, SuspiciousEntities: 1, SuspiciousClaims: 5}, rep.Summary)
	require.NotEmpty(t, rep.Communities)
	assert.Equal(t, "MED_M", rep.Communities[0].ID)
	assert.Equal(t, 60, rep.Communities[0].Score)

	med, err := store.GetNode(ctx, "MED_M")
	require.NoError(t, err)
	assert.Equal(t, "Medical Mill", med.Str(domain.PropSuspicionType))
	claim, _ := store.GetNode(ctx, "CLM_M3")
	assert.Equal(t, 48, claim.Int(domain.PropSuspicionScore))
	att, _ := store.GetNode(ctx, "ATT_F")
	assert.False(t, att.Bool(domain.PropSuspicious))

	rep, err = svc.RunAll(ctx, domain.Thresholds{MinClaims: 6}.Overrides())
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Cleared.Flagged, "a run starts from a clean slate")
	assert.Zero(t, rep.Summary.TotalFindings)
	assert.Equal(t, 6, rep.Thresholds.MinClaims)
	assert.Equal(t, 3, rep.Thresholds.MinSharedClaims)
}

func TestDetectionService_ExplicitZeroOverride(t *testing.T) {
	ctx := context.Background()
	svc := NewDetectionService(newStore(t))

	zero := 0.0
	rep, err := svc.RunAll(ctx, domain.ThresholdOverrides{MinAvgAmount: &zero})
	require.NoError(t, err)
	assert.Zero(t, rep.Thresholds.MinAvgAmount)
	assert.Equal(t, 5, rep.Thresholds.MinClaims, "fields left out keep the default")
}

func TestDetectionService_Guards(t *testing.T) {
	ctx := context.Background()
	svc := NewDetectionService(newStore(t))

	_, err := svc.RunAll(ctx, domain.Thresholds{MinConnections: -1}.Overrides())
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)

	svc.busy.Store(true)
	_, err = svc.RunAll(ctx, domain.ThresholdOverrides{})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	_, err = svc.ClearDetections(ctx)
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	svc.busy.Store(false)

	_, err = svc.StartRun(ctx, &domain.CreateRunRequest{})
	assert.Error(t, err, "async runs need a run store")
}

func TestDetectionService_StartRun(t *testing.T) {
	ctx := context.Background()
	runs := setupRunRepo(t)
	archive := &fakeArchive{}
	svc := NewDetectionService(newStore(t), WithRunStore(runs), WithArchive(archive),
		WithDefaultThresholds(domain.Thresholds{MinClaims: 4}))

	run, err := svc.StartRun(ctx, &domain.CreateRunRequest{RequestedBy: "analyst"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, run.Status)
	assert.Equal(t, domain.TriggerAPI, run.Trigger)
	assert.Equal(t, 4, run.Thresholds.MinClaims)
	svc.Wait()

	got, err := svc.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, 1, got.Report.Summary.TotalFindings)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, []string{run.RunID}, archive.saved)
	assert.False(t, svc.Running())

	list, err := svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := svc.CancelRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
	_, err = svc.GetRun(ctx, run.RunID)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestDetectionService_ClusterLock(t *testing.T) {
	ctx := context.Background()
	runs := setupRunRepo(t)
	svc := NewDetectionService(newStore(t), WithRunStore(runs))

	ok, err := runs.AcquireLock(ctx, "worker-run", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.StartRun(ctx, &domain.CreateRunRequest{Trigger: domain.TriggerSchedule})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.False(t, svc.Running())
}

func TestDetectionService_CancelRemoteRun(t *testing.T) {
	ctx := context.Background()
	runs := setupRunRepo(t)
	svc := NewDetectionService(newStore(t), WithRunStore(runs))

	remote := &domain.DetectionRun{Status: domain.StatusRunning, Trigger: domain.TriggerCLI}
	require.NoError(t, runs.Create(ctx, remote))

	run, err := svc.CancelRun(ctx, remote.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, run.Status)

	stored, err := runs.GetByRunID(ctx, remote.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	_, err = svc.CancelRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

type fakeRecorder struct {
	saved []*domain.Assessment
}

func (r *fakeRecorder) CreateOrUpdate(_ context.Context, a *domain.Assessment) error {
	r.saved = append(r.saved, a)
	return nil
}

func fixedClock() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

func validRequest() domain.ClaimRequest {
	return domain.ClaimRequest{
		Amount:       4200,
		IncidentDate: "2026-03-10",
		IncidentType: "Rear-End Collision",
		AdjusterID:   "ADJ_1",
		Claimant:     &domain.PartyRef{Name: "New Person"},
		Witness:      &domain.PartyRef{ID: "P_1"},
		AttorneyID:   "ATT_F",
	}
}

func TestClaimService_SubmitClaim(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	rec := &fakeRecorder{}
	svc := NewClaimService(store, rec)
	svc.now = fixedClock

	res, err := svc.SubmitClaim(ctx, validRequest())
	require.NoError(t, err)
	assert.Regexp(t, `^CLM_20260314093000_[0-9a-f]{6}$`, res.ClaimID)
	assert.Regexp(t, `^P_[0-9a-f]{8}$`, res.ClaimantID)
	assert.Equal(t, "P_1", res.WitnessID)

	require.NotNil(t, res.Assessment)
	assert.Equal(t, res.ClaimID, res.Assessment.ClaimID)
	assert.Equal(t, 1, res.Assessment.FraudCount)
	assert.Equal(t, domain.RiskLow, res.Assessment.Level)
	assert.Contains(t, res.Assessment.Warnings, "Attorney 'Shady Law' is CONFIRMED FRAUD (Body Shop Kickback)")
	require.Len(t, rec.saved, 1)

	claim, err := store.GetNode(ctx, res.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimTypeAuto, claim.Str(domain.PropClaimType))
	assert.Equal(t, "Rear-End Collision - 2026-03-10", claim.Name())
	assert.False(t, claim.IsFraud())

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Out[res.ClaimID], 4)
	claimant := snap.Nodes[res.ClaimantID]
	assert.True(t, claimant.HasLabel(domain.LabelClaimant))
	assert.NotEmpty(t, claimant.Str("ssn"))
}

func TestClaimService_Validation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := NewClaimService(store, nil)
	svc.now = fixedClock

	_, err := svc.SubmitClaim(ctx, domain.ClaimRequest{
		Amount:       100,
		IncidentDate: "2026-04-01",
		IncidentType: "Meteor Strike",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 5)
	assert.Contains(t, verr.Problems, "incident_date cannot be in the future")

	req := validRequest()
	req.MedicalProviderID = "MED_X"
	req.AdjusterID = "P_1"
	_, err = svc.SubmitClaim(ctx, req)
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		"adjuster P_1 is not a Adjuster",
		"medical_provider MED_X not found",
	}, verr.Problems)

	snap, _ := store.Snapshot(ctx)
	assert.Len(t, snap.NodesWithLabel(domain.LabelClaim), 5, "nothing is written on validation failure")
}

func TestClaimService_PreviewAndAssess(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	rec := &fakeRecorder{}
	svc := NewClaimService(store, rec)

	a, err := svc.PreviewRisk(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, a.FraudCount)
	assert.Empty(t, rec.saved, "previews are not recorded")

	snap, _ := store.Snapshot(ctx)
	assert.Len(t, snap.NodesWithLabel(domain.LabelClaim), 5)

	_, err = svc.Assess(ctx, map[string]string{"pilot": "X"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	a, err = svc.Assess(ctx, map[string]string{domain.RoleClaimant: "P_1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskClean, a.Level)
	assert.Len(t, rec.saved, 1)
}
