package graphstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// MemoryStore keeps the graph in process. Reads return copies.
type MemoryStore struct {
	mu sync.RWMutex
	g  *domain.Graph
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{g: domain.NewGraph()}
}

func (m *MemoryStore) Snapshot(ctx context.Context) (*domain.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.g.Clone(), nil
}

func (m *MemoryStore) Import(ctx context.Context, g *domain.Graph) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range g.Edges {
		if !m.has(g, e.From) || !m.has(g, e.To) {
			return fmt.Errorf("import %s %s->%s: %w", e.Type, e.From, e.To, domain.ErrNodeNotFound)
		}
	}
	for _, n := range g.Nodes {
		m.g.AddNode(n.Clone())
	}
	for _, e := range g.Edges {
		m.g.AddEdge(&domain.Edge{From: e.From, To: e.To, Type: e.Type, Props: cloneProps(e.Props)})
	}
	return nil
}

func (m *MemoryStore) has(pending *domain.Graph, id string) bool {
	if _, ok := m.g.Nodes[id]; ok {
		return true
	}
	_, ok := pending.Nodes[id]
	return ok
}

func (m *MemoryStore) CreateIndexes(ctx context.Context) error { return nil }

func (m *MemoryStore) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.g = domain.NewGraph()
	return nil
}

func (m *MemoryStore) ClearDetections(ctx context.Context) (domain.ClearStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.g.ClearDetections(), nil
}

func (m *MemoryStore) ApplyDetections(ctx context.Context, w domain.DetectionWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.Apply(m.g)
	return nil
}

func (m *MemoryStore) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.g.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNodeNotFound)
	}
	return n.Clone(), nil
}

func (m *MemoryStore) NodeExists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.g.Nodes[id]
	return ok, nil
}

func (m *MemoryStore) CreateClaim(ctx context.Context, d domain.ClaimDraft) error {
	if d.Claim == nil {
		return fmt.Errorf("create claim: draft has no claim")
	}
	frag := domain.NewGraph()
	frag.AddNode(d.Claim)
	for _, n := range d.NewNodes {
		frag.AddNode(n)
	}
	for _, e := range d.Edges {
		frag.AddEdge(e)
	}
	return m.Import(ctx, frag)
}

func (m *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (m *MemoryStore) Close(ctx context.Context) error { return nil }

func cloneProps(a domain.Attrs) domain.Attrs {
	out := make(domain.Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
