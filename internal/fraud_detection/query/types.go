package query

import "github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"

type SubgraphNode struct {
	ID           string        `json:"id"`
	Labels       []string      `json:"labels"`
	DisplayLabel string        `json:"display_label"`
	Name         string        `json:"name"`
	Status       domain.Status `json:"status"`
	Score        int           `json:"score,omitempty"`
	Properties   domain.Attrs  `json:"properties"`
}

type SubgraphEdge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       domain.RelType `json:"type"`
	Properties domain.Attrs   `json:"properties,omitempty"`
}

type Subgraph struct {
	Nodes     []SubgraphNode `json:"nodes"`
	Edges     []SubgraphEdge `json:"edges"`
	Truncated bool           `json:"truncated"`
}

type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FraudRing struct {
	ClaimID   string  `json:"claim_id"`
	ClaimName string  `json:"claim_name"`
	Amount    float64 `json:"amount"`
	RingSize  int     `json:"ring_size"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type DatabaseStats struct {
	NodeCounts       []LabelCount `json:"node_counts"`
	TotalNodes       int          `json:"total_nodes"`
	TotalClaims      int          `json:"total_claims"`
	FraudClaims      int          `json:"fraud_claims"`
	LegitimateClaims int          `json:"legitimate_claims"`
	Suspicious       int          `json:"suspicious_count"`
	Relationships    int          `json:"relationship_count"`
}

// PoolEntry is one selectable entity for claim intake.
type PoolEntry struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Status     domain.Status `json:"status"`
	ClaimCount int           `json:"claim_count"`
	EmployeeID string        `json:"employee_id,omitempty"`
}
