package rules

import (
	"fmt"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

type adjusterCollusion struct{}

func (adjusterCollusion) Name() string           { return "adjuster_collusion" }
func (adjusterCollusion) Kind() domain.FraudKind { return domain.KindAdjusterCollusion }

func (a adjusterCollusion) Detect(g *domain.Graph, th domain.Thresholds) ([]domain.Finding, error) {
	groups := sharedClaims(g,
		domain.RelHandledBy, domain.LabelAdjuster,
		domain.RelTreatedAt, domain.LabelMedicalProvider,
	)

	var out []domain.Finding
	for _, p := range sortedPairs(groups) {
		claims := groups[p]
		shared := claims.Cardinality()
		if shared < th.MinAdjusterCollusion {
			continue
		}
		out = append(out, domain.Finding{
			Kind:          a.Kind(),
			SuspicionType: a.Kind().SuspicionType(),
			Score:         min(100, shared*12),
			Title:         fmt.Sprintf("Adjuster collusion: %s / %s", nameOf(g, p.a), nameOf(g, p.b)),
			Entities:      []string{p.a, p.b},
			Claims:        sorted(claims),
			Evidence: domain.Attrs{
				"adjuster_name": nameOf(g, p.a),
				"provider_name": nameOf(g, p.b),
				"shared_claims": shared,
			},
		})
	}
	return out, nil
}

func init() { detection.Register(adjusterCollusion{}) }
