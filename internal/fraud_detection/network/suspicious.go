package network

import (
	"sort"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// SuspiciousSummary counts suspicious nodes per (primary label, suspicion type).
func SuspiciousSummary(g *domain.Graph) []domain.SuspiciousCount {
	type key struct{ label, typ string }
	counts := map[key]int{}
	for _, n := range g.Nodes {
		if !n.IsSuspicious() {
			continue
		}
		counts[key{n.PrimaryLabel(), n.Str(domain.PropSuspicionType)}]++
	}

	out := make([]domain.SuspiciousCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, domain.SuspiciousCount{Label: k.label, SuspicionType: k.typ, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].SuspicionType < out[j].SuspicionType
	})
	return out
}

// Communities lists suspicious nodes by score, highest first.
func Communities(g *domain.Graph) []domain.SuspiciousEntity {
	var out []domain.SuspiciousEntity
	for _, n := range g.Nodes {
		if !n.IsSuspicious() {
			continue
		}
		out = append(out, domain.SuspiciousEntity{
			ID:        n.ID,
			Type:      n.PrimaryLabel(),
			Name:      n.Name(),
			FraudType: n.Str(domain.PropSuspicionType),
			Score:     n.Int(domain.PropSuspicionScore),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
