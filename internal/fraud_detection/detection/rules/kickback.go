package rules

import (
	"fmt"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

type kickback struct{}

func (kickback) Name() string           { return "kickback" }
func (kickback) Kind() domain.FraudKind { return domain.KindKickback }

// Detect finds attorney and body shop pairs that keep appearing on the same claims.
func (k kickback) Detect(g *domain.Graph, th domain.Thresholds) ([]domain.Finding, error) {
	groups := sharedClaims(g,
		domain.RelRepresentedBy, domain.LabelAttorney,
		domain.RelRepairedAt, domain.LabelBodyShop,
	)

	var out []domain.Finding
	for _, p := range sortedPairs(groups) {
		claims := groups[p]
		if claims.Cardinality() < th.MinSharedClaims {
			continue
		}
		shared := claims.Cardinality()
		out = append(out, domain.Finding{
			Kind:          k.Kind(),
			SuspicionType: k.Kind().SuspicionType(),
			Score:         min(100, shared*15),
			Title:         fmt.Sprintf("Kickback scheme: %s / %s", nameOf(g, p.a), nameOf(g, p.b)),
			Entities:      []string{p.a, p.b},
			Claims:        sorted(claims),
			Evidence: domain.Attrs{
				"attorney_name": nameOf(g, p.a),
				"bodyshop_name": nameOf(g, p.b),
				"shared_claims": shared,
			},
		})
	}
	return out, nil
}

func init() { detection.Register(kickback{}) }
