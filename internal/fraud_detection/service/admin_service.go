package service

import (
	"context"
	"fmt"
	"time"

	"github.com/insurance-graph/fraud-ring-backend/internal/datagen"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
)

// AdminService owns destructive dataset operations. They are refused while
// this process is running detection.
type AdminService struct {
	store     graphstore.Store
	detection *DetectionService
	now       func() time.Time
}

func NewAdminService(store graphstore.Store, detection *DetectionService) *AdminService {
	return &AdminService{store: store, detection: detection, now: time.Now}
}

func (s *AdminService) busy() bool {
	return s.detection != nil && s.detection.Running()
}

// Generate replaces the whole graph with a synthetic dataset. A zero seed
// picks one from the clock; the seed used is returned.
func (s *AdminService) Generate(ctx context.Context, p datagen.Profile, seed uint64) (datagen.Stats, uint64, error) {
	log := logging.NewLogger(ctx).With("component", "admin")
	if s.busy() {
		return datagen.Stats{}, 0, domain.ErrRunInProgress
	}
	if err := p.Validate(); err != nil {
		return datagen.Stats{}, 0, &domain.ValidationError{Problems: []string{err.Error()}}
	}
	if seed == 0 {
		seed = uint64(s.now().UnixNano())
	}

	g, stats := datagen.New(seed, s.now()).Generate(p)

	if err := s.store.ClearAll(ctx); err != nil {
		return datagen.Stats{}, 0, fmt.Errorf("clear before generate: %w", err)
	}
	if err := s.store.CreateIndexes(ctx); err != nil {
		return datagen.Stats{}, 0, fmt.Errorf("create indexes: %w", err)
	}
	if err := s.store.Import(ctx, g); err != nil {
		log.LogError("generate", err)
		return datagen.Stats{}, 0, fmt.Errorf("import generated graph: %w", err)
	}

	log.With("seed", seed).LogInfof("generate", "imported %d claims, %d relationships",
		stats.Totals.Claims, stats.Totals.Relationships)
	return stats, seed, nil
}

// ClearData deletes every node and relationship.
func (s *AdminService) ClearData(ctx context.Context) error {
	if s.busy() {
		return domain.ErrRunInProgress
	}
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	logging.NewLogger(ctx).With("component", "admin").LogWarn("clear_data", "all graph data deleted")
	return nil
}
