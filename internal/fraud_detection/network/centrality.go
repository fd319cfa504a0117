// Package network computes graph-wide measures over a snapshot.
package network

import (
	"math"
	"sort"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// MinCentralDegree is the degree a node must exceed to be recorded.
const MinCentralDegree = 5

// DegreeCentrality returns the non-fraud nodes whose degree exceeds MinCentralDegree, by id.
func DegreeCentrality(g *domain.Graph) []domain.Centrality {
	var out []domain.Centrality
	for id, n := range g.Nodes {
		if n.IsFraud() {
			continue
		}
		if d := g.Degree(id); d > MinCentralDegree {
			out = append(out, domain.Centrality{NodeID: id, Degree: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// SummarizeCentrality groups central nodes by primary label, busiest first.
func SummarizeCentrality(g *domain.Graph, cs []domain.Centrality) []domain.LabelDegree {
	type acc struct {
		count int
		total int
	}
	byLabel := map[string]*acc{}
	for _, c := range cs {
		n, ok := g.Nodes[c.NodeID]
		if !ok {
			continue
		}
		l := n.PrimaryLabel()
		if byLabel[l] == nil {
			byLabel[l] = &acc{}
		}
		byLabel[l].count++
		byLabel[l].total += c.Degree
	}

	out := make([]domain.LabelDegree, 0, len(byLabel))
	for l, a := range byLabel {
		avg := float64(a.total) / float64(a.count)
		out = append(out, domain.LabelDegree{Label: l, Count: a.count, AvgDegree: math.Round(avg*100) / 100})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
