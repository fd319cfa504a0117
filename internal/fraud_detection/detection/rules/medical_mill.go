package rules

import (
	"fmt"
	"math"
	"sort"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

type medicalMill struct{}

func (medicalMill) Name() string           { return "medical_mill" }
func (medicalMill) Kind() domain.FraudKind { return domain.KindMedicalMill }

func (m medicalMill) Detect(g *domain.Graph, th domain.Thresholds) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, p := range g.NodesWithLabel(domain.LabelMedicalProvider) {
		if p.IsFraud() {
			continue
		}
		claims := claimsAt(g, p.ID, domain.RelTreatedAt)
		if len(claims) < th.MinClaims {
			continue
		}
		total := 0.0
		for _, c := range claims {
			total += c.Float(domain.PropClaimAmount)
		}
		avg := total / float64(len(claims))
		if avg <= th.MinAvgAmount {
			continue
		}

		score := min(100, len(claims)*8+int(avg/1000))
		out = append(out, domain.Finding{
			Kind:          m.Kind(),
			SuspicionType: m.Kind().SuspicionType(),
			Score:         score,
			Title:         fmt.Sprintf("Medical mill: %s", p.Name()),
			Entities:      []string{p.ID},
			Claims:        ids(claims),
			Evidence: domain.Attrs{
				"provider_name": p.Name(),
				"claim_count":   len(claims),
				"avg_amount":    math.Round(avg*100) / 100,
				"total_amount":  math.Round(total*100) / 100,
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := len(out[i].Claims), len(out[j].Claims)
		if ci != cj {
			return ci > cj
		}
		return out[i].Evidence["avg_amount"].(float64) > out[j].Evidence["avg_amount"].(float64)
	})
	return out, nil
}

func init() { detection.Register(medicalMill{}) }
