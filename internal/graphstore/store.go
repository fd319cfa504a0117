// Package graphstore persists the claims graph in Neo4j or in process memory.
package graphstore

import (
	"context"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

const (
	BackendNeo4j  = "neo4j"
	BackendMemory = "memory"
)

type Store interface {
	// Snapshot returns the full graph with adjacency built.
	Snapshot(ctx context.Context) (*domain.Graph, error)
	// Import creates every node of g, then every relationship.
	Import(ctx context.Context, g *domain.Graph) error
	CreateIndexes(ctx context.Context) error
	ClearAll(ctx context.Context) error
	ClearDetections(ctx context.Context) (domain.ClearStats, error)
	ApplyDetections(ctx context.Context, w domain.DetectionWrite) error
	GetNode(ctx context.Context, id string) (*domain.Node, error)
	NodeExists(ctx context.Context, id string) (bool, error)
	// CreateClaim writes the draft atomically; an unknown endpoint fails with domain.ErrNodeNotFound.
	CreateClaim(ctx context.Context, d domain.ClaimDraft) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
