package bootstrap

import (
	"context"
	"fmt"

	"github.com/insurance-graph/fraud-ring-backend/config"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
)

// OpenStore returns the graph store selected by STORE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config) (graphstore.Store, error) {
	switch cfg.Store.Backend {
	case graphstore.BackendMemory:
		return graphstore.NewMemoryStore(), nil
	case graphstore.BackendNeo4j:
		store, err := graphstore.NewNeo4jStore(ctx, graphstore.Neo4jOptions{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.User,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Thresholds maps the detection section of the config to detector thresholds.
// A zero MinAvgAmount is kept: any average clears it.
func Thresholds(cfg *config.DetectionConfig) domain.Thresholds {
	th := domain.Thresholds{
		MinClaims:            cfg.MinClaims,
		MinAvgAmount:         cfg.MinAvgAmount,
		MinSharedClaims:      cfg.MinSharedClaims,
		MinStagedClaims:      cfg.MinStagedClaims,
		MinConnections:       cfg.MinConnections,
		MinAdjusterCollusion: cfg.MinAdjusterCollusion,
	}.WithDefaults()
	th.MinAvgAmount = cfg.MinAvgAmount
	return th
}
