package domain

import "time"

// DetectionRun is the record of one detection pass over the graph.
type DetectionRun struct {
	RunID       string     `json:"run_id"`
	Status      string     `json:"status"`  // pending, running, completed, failed, cancelled
	Trigger     string     `json:"trigger"` // api, schedule, cli
	RequestedBy string     `json:"requested_by,omitempty"`
	Thresholds  Thresholds `json:"thresholds"`
	Report      *Report    `json:"report,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunStatus constants
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

const (
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}

// CreateRunRequest represents data needed to start a detection run
type CreateRunRequest struct {
	Trigger     string
	RequestedBy string
	Thresholds  ThresholdOverrides
}

// Report is the outcome of a completed run.
type Report struct {
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Thresholds  Thresholds         `json:"thresholds"`
	Cleared     ClearStats         `json:"cleared"`
	Findings    []Finding          `json:"findings"`
	Counts      map[FraudKind]int  `json:"counts"`
	Centrality  []LabelDegree      `json:"centrality"`
	Suspicious  []SuspiciousCount  `json:"suspicious_summary"`
	Communities []SuspiciousEntity `json:"communities"`
	Summary     RunSummary         `json:"summary"`
	Links       int                `json:"suspicious_links"`
}

type RunSummary struct {
	TotalFindings      int `json:"total_findings"`
	SuspiciousEntities int `json:"suspicious_entities"`
	SuspiciousClaims   int `json:"suspicious_claims"`
	HighCentrality     int `json:"high_centrality_nodes"`
}

// LabelDegree summarises centrality per primary label.
type LabelDegree struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	AvgDegree float64 `json:"avg_degree"`
}

type SuspiciousCount struct {
	Label         string `json:"label"`
	SuspicionType string `json:"suspicion_type"`
	Count         int    `json:"count"`
}

type SuspiciousEntity struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	FraudType string `json:"fraud_type"`
	Score     int    `json:"score"`
}
