package domain

import "fmt"

type Thresholds struct {
	MinClaims            int     `json:"min_claims" yaml:"min_claims"`
	MinAvgAmount         float64 `json:"min_avg_amount" yaml:"min_avg_amount"`
	MinSharedClaims      int     `json:"min_shared_claims" yaml:"min_shared_claims"`
	MinStagedClaims      int     `json:"min_staged_claims" yaml:"min_staged_claims"`
	MinConnections       int     `json:"min_connections" yaml:"min_connections"`
	MinAdjusterCollusion int     `json:"min_adjuster_collusion" yaml:"min_adjuster_collusion"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinClaims:            5,
		MinAvgAmount:         15000,
		MinSharedClaims:      3,
		MinStagedClaims:      2,
		MinConnections:       3,
		MinAdjusterCollusion: 4,
	}
}

// WithDefaults fills zero values from DefaultThresholds.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.MinClaims == 0 {
		t.MinClaims = d.MinClaims
	}
	if t.MinAvgAmount == 0 {
		t.MinAvgAmount = d.MinAvgAmount
	}
	if t.MinSharedClaims == 0 {
		t.MinSharedClaims = d.MinSharedClaims
	}
	if t.MinStagedClaims == 0 {
		t.MinStagedClaims = d.MinStagedClaims
	}
	if t.MinConnections == 0 {
		t.MinConnections = d.MinConnections
	}
	if t.MinAdjusterCollusion == 0 {
		t.MinAdjusterCollusion = d.MinAdjusterCollusion
	}
	return t
}

// ThresholdOverrides holds the thresholds a caller set explicitly. Nil fields
// keep the base value, so an explicit zero (min_avg_amount: 0) is honoured.
type ThresholdOverrides struct {
	MinClaims            *int     `json:"min_claims,omitempty"`
	MinAvgAmount         *float64 `json:"min_avg_amount,omitempty"`
	MinSharedClaims      *int     `json:"min_shared_claims,omitempty"`
	MinStagedClaims      *int     `json:"min_staged_claims,omitempty"`
	MinConnections       *int     `json:"min_connections,omitempty"`
	MinAdjusterCollusion *int     `json:"min_adjuster_collusion,omitempty"`
}

// Apply returns base with every set override replacing its field.
func (o ThresholdOverrides) Apply(base Thresholds) Thresholds {
	if o.MinClaims != nil {
		base.MinClaims = *o.MinClaims
	}
	if o.MinAvgAmount != nil {
		base.MinAvgAmount = *o.MinAvgAmount
	}
	if o.MinSharedClaims != nil {
		base.MinSharedClaims = *o.MinSharedClaims
	}
	if o.MinStagedClaims != nil {
		base.MinStagedClaims = *o.MinStagedClaims
	}
	if o.MinConnections != nil {
		base.MinConnections = *o.MinConnections
	}
	if o.MinAdjusterCollusion != nil {
		base.MinAdjusterCollusion = *o.MinAdjusterCollusion
	}
	return base
}

// Overrides turns the non-zero fields of t into overrides.
func (t Thresholds) Overrides() ThresholdOverrides {
	var o ThresholdOverrides
	if t.MinClaims != 0 {
		o.MinClaims = &t.MinClaims
	}
	if t.MinAvgAmount != 0 {
		o.MinAvgAmount = &t.MinAvgAmount
	}
	if t.MinSharedClaims != 0 {
		o.MinSharedClaims = &t.MinSharedClaims
	}
	if t.MinStagedClaims != 0 {
		o.MinStagedClaims = &t.MinStagedClaims
	}
	if t.MinConnections != 0 {
		o.MinConnections = &t.MinConnections
	}
	if t.MinAdjusterCollusion != 0 {
		o.MinAdjusterCollusion = &t.MinAdjusterCollusion
	}
	return o
}

func (t Thresholds) Validate() error {
	for name, v := range map[string]int{
		"min_claims":             t.MinClaims,
		"min_shared_claims":      t.MinSharedClaims,
		"min_staged_claims":      t.MinStagedClaims,
		"min_connections":        t.MinConnections,
		"min_adjuster_collusion": t.MinAdjusterCollusion,
	} {
		if v < 1 {
			return fmt.Errorf("%w: %s must be >= 1, got %d", ErrInvalidThreshold, name, v)
		}
	}
	if t.MinAvgAmount < 0 {
		return fmt.Errorf("%w: min_avg_amount must be >= 0, got %.2f", ErrInvalidThreshold, t.MinAvgAmount)
	}
	return nil
}

// Finding is one detected pattern instance.
type Finding struct {
	Kind          FraudKind `json:"kind"`
	SuspicionType string    `json:"suspicion_type"`
	Score         int       `json:"score"`
	Title         string    `json:"title"`
	// flagged entities; for pair patterns the first one is the link source
	Entities []string `json:"entities"`
	Claims   []string `json:"claims"`
	Evidence Attrs    `json:"evidence,omitempty"`
}

// ClaimScore is the score written on claims involved in the finding.
func (f Finding) ClaimScore() int {
	return int(float64(f.Score) * 0.8)
}

type Flag struct {
	NodeID        string `json:"node_id"`
	SuspicionType string `json:"suspicion_type"`
	Score         int    `json:"score"`
}

type SuspiciousLink struct {
	From         string `json:"from"`
	To           string `json:"to"`
	SharedClaims int    `json:"shared_claims"`
}

type Centrality struct {
	NodeID string `json:"node_id"`
	Degree int    `json:"degree"`
}

// DetectionWrite is everything one run persists.
type DetectionWrite struct {
	Flags      []Flag           `json:"flags"`
	Links      []SuspiciousLink `json:"links"`
	Centrality []Centrality     `json:"centrality"`
}

// Apply mirrors the write onto an in-memory graph. Fraud nodes are never flagged.
func (w DetectionWrite) Apply(g *Graph) {
	for _, f := range w.Flags {
		n, ok := g.Nodes[f.NodeID]
		if !ok || n.IsFraud() {
			continue
		}
		n.Props[PropSuspicious] = true
		n.Props[PropSuspicionType] = f.SuspicionType
		n.Props[PropSuspicionScore] = f.Score
	}
	for _, l := range w.Links {
		if _, ok := g.Nodes[l.From]; !ok {
			continue
		}
		if _, ok := g.Nodes[l.To]; !ok {
			continue
		}
		merged := false
		for _, e := range g.Out[l.From] {
			if e.Type == RelSuspiciousLink && e.To == l.To {
				e.Props[PropSharedClaims] = l.SharedClaims
				merged = true
				break
			}
		}
		if !merged {
			g.AddEdge(&Edge{From: l.From, To: l.To, Type: RelSuspiciousLink, Props: Attrs{PropSharedClaims: l.SharedClaims}})
		}
	}
	for _, c := range w.Centrality {
		if n, ok := g.Nodes[c.NodeID]; ok && !n.IsFraud() {
			n.Props[PropDegreeCentrality] = c.Degree
		}
	}
}

type ClearStats struct {
	Flagged       int `json:"flagged"`
	Centrality    int `json:"centrality"`
	Relationships int `json:"relationships"`
}

// ClearDetections removes detector output from an in-memory graph.
func (g *Graph) ClearDetections() ClearStats {
	var st ClearStats
	for _, n := range g.Nodes {
		if _, ok := n.Props[PropSuspicious]; ok {
			st.Flagged++
		}
		if _, ok := n.Props[PropDegreeCentrality]; ok {
			st.Centrality++
		}
		delete(n.Props, PropSuspicious)
		delete(n.Props, PropSuspicionType)
		delete(n.Props, PropSuspicionScore)
		delete(n.Props, PropDegreeCentrality)
	}
	st.Relationships = g.RemoveEdges(func(e *Edge) bool { return e.Type == RelSuspiciousLink })
	return st
}
