package detection

import "github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"

type Detector interface {
	Name() string
	Kind() domain.FraudKind
	Detect(g *domain.Graph, th domain.Thresholds) ([]domain.Finding, error)
}
