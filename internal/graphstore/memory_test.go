package graphstore

import (
	"context"
	"testing"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *MemoryStore {
	t.Helper()
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "CLM_1", Labels: []string{domain.LabelClaim}, Props: domain.Attrs{"name": "c1", domain.PropIsFraud: false}})
	g.AddNode(&domain.Node{ID: "P_1", Labels: []string{domain.LabelPerson, domain.LabelClaimant}, Props: domain.Attrs{"name": "p1"}})
	g.AddNode(&domain.Node{ID: "MED_1", Labels: []string{domain.LabelMedicalProvider}, Props: domain.Attrs{"name": "m1", domain.PropIsFraud: true}})
	g.AddEdge(&domain.Edge{From: "CLM_1", To: "P_1", Type: domain.RelFiledBy})
	g.AddEdge(&domain.Edge{From: "CLM_1", To: "MED_1", Type: domain.RelTreatedAt})

	s := NewMemoryStore()
	require.NoError(t, s.Import(context.Background(), g))
	return s
}

func TestMemoryStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 3)
	assert.Len(t, snap.Edges, 2)

	snap.Nodes["P_1"].Props[domain.PropSuspicious] = true
	n, err := s.GetNode(ctx, "P_1")
	require.NoError(t, err)
	assert.False(t, n.IsSuspicious())
}

func TestMemoryStore_ImportRejectsDanglingEdges(t *testing.T) {
	s := seed(t)
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: "CLM_2", Labels: []string{domain.LabelClaim}})
	g.AddEdge(&domain.Edge{From: "CLM_2", To: "NOPE", Type: domain.RelFiledBy})

	err := s.Import(context.Background(), g)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	ok, err := s.NodeExists(context.Background(), "CLM_2")
	require.NoError(t, err)
	assert.False(t, ok, "nothing is written when an edge is dangling")
}

func TestMemoryStore_ApplyAndClearDetections(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	err := s.ApplyDetections(ctx, domain.DetectionWrite{
		Flags: []domain.Flag{
			{NodeID: "P_1", SuspicionType: "Staged Accident", Score: 50},
			{NodeID: "MED_1", SuspicionType: "Medical Mill", Score: 90},
		},
		Links:      []domain.SuspiciousLink{{From: "P_1", To: "CLM_1", SharedClaims: 2}},
		Centrality: []domain.Centrality{{NodeID: "CLM_1", Degree: 6}},
	})
	require.NoError(t, err)

	p, _ := s.GetNode(ctx, "P_1")
	assert.Equal(t, domain.StatusSuspicious, p.Status())
	assert.Equal(t, 50, p.Int(domain.PropSuspicionScore))

	med, _ := s.GetNode(ctx, "MED_1")
	assert.Equal(t, domain.StatusFraud, med.Status())
	_, flagged := med.Props[domain.PropSuspicious]
	assert.False(t, flagged, "fraud nodes are never flagged")

	stats, err := s.ClearDetections(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ClearStats{Flagged: 1, Centrality: 1, Relationships: 1}, stats)

	snap, _ := s.Snapshot(ctx)
	assert.Len(t, snap.Edges, 2)
	assert.Equal(t, []string{domain.LabelPerson, domain.LabelClaimant}, snap.Nodes["P_1"].Labels)
}

func TestMemoryStore_CreateClaim(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	draft := domain.ClaimDraft{
		Claim:    &domain.Node{ID: "CLM_2", Labels: []string{domain.LabelClaim}},
		NewNodes: []*domain.Node{{ID: "P_2", Labels: []string{domain.LabelPerson, domain.LabelClaimant}}},
		Edges: []*domain.Edge{
			{From: "CLM_2", To: "P_2", Type: domain.RelFiledBy},
			{From: "CLM_2", To: "MED_1", Type: domain.RelTreatedAt},
		},
	}
	require.NoError(t, s.CreateClaim(ctx, draft))

	snap, _ := s.Snapshot(ctx)
	assert.Len(t, snap.Out["CLM_2"], 2)

	bad := domain.ClaimDraft{
		Claim: &domain.Node{ID: "CLM_3", Labels: []string{domain.LabelClaim}},
		Edges: []*domain.Edge{{From: "CLM_3", To: "ADJ_404", Type: domain.RelHandledBy}},
	}
	assert.ErrorIs(t, s.CreateClaim(ctx, bad), domain.ErrNodeNotFound)
}

func TestMemoryStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	require.NoError(t, s.ClearAll(ctx))
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Nodes)

	_, err = s.GetNode(ctx, "P_1")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}
