package service

import (
	"context"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/network"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/query"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/insurance-graph/fraud-ring-backend/internal/metrics"
)

// QueryService answers investigator reads from a fresh snapshot of the store.
type QueryService struct {
	store graphstore.Store
}

func NewQueryService(store graphstore.Store) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) EntityTypes(ctx context.Context) ([]string, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.EntityTypes(g), nil
}

func (s *QueryService) EntitiesByType(ctx context.Context, label string) ([]query.EntityRef, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.EntitiesByType(g, label), nil
}

func (s *QueryService) Neighborhood(ctx context.Context, label, id string, hops int, labels []string) (*query.Subgraph, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.Neighborhood(g, label, id, hops, labels)
}

func (s *QueryService) FraudRings(ctx context.Context, fraudType string) ([]query.FraudRing, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.FraudRings(g, fraudType), nil
}

func (s *QueryService) FraudRingNetwork(ctx context.Context, fraudType string) (*query.Subgraph, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.FraudRingNetwork(g, fraudType), nil
}

func (s *QueryService) FraudRingNeighborhood(ctx context.Context, claimID string, hops int) (*query.Subgraph, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.FraudRingNeighborhood(g, claimID, hops)
}

func (s *QueryService) SuspiciousCommunities(ctx context.Context) ([]domain.SuspiciousEntity, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return network.Communities(g), nil
}

func (s *QueryService) SuspiciousNetwork(ctx context.Context) (*query.Subgraph, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.SuspiciousNetwork(g), nil
}

// Stats also refreshes the graph size gauges.
func (s *QueryService) Stats(ctx context.Context) (query.DatabaseStats, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return query.DatabaseStats{}, err
	}
	st := query.Stats(g)
	metrics.GraphNodes.Reset()
	for _, c := range st.NodeCounts {
		metrics.GraphNodes.WithLabelValues(c.Label).Set(float64(c.Count))
	}
	return st, nil
}

func (s *QueryService) EntityPool(ctx context.Context, role string) ([]query.PoolEntry, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return query.EntityPool(g, role)
}
