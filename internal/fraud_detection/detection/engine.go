package detection

import (
	"fmt"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

func RunAll(g *domain.Graph, th domain.Thresholds) ([]domain.Finding, error) {
	if g == nil {
		return nil, fmt.Errorf("detection: graph is nil")
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}

	var out []domain.Finding
	for _, det := range All() {
		fs, err := det.Detect(g, th)
		if err != nil {
			return nil, fmt.Errorf("detector %q failed: %w", det.Name(), err)
		}
		out = append(out, fs...)
	}
	return out, nil
}
