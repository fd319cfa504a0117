package rules

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

type pair struct {
	a, b string
}

// liveClaim reports a non-fraud Claim node.
func liveClaim(g *domain.Graph, id string) (*domain.Node, bool) {
	c, ok := g.Nodes[id]
	if !ok || !c.HasLabel(domain.LabelClaim) || c.IsFraud() {
		return nil, false
	}
	return c, true
}

// claimsAt returns the distinct non-fraud claims pointing at target through rel, ordered by id.
func claimsAt(g *domain.Graph, target string, rel domain.RelType) []*domain.Node {
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []*domain.Node
	for _, e := range g.In[target] {
		if e.Type != rel || seen.Contains(e.From) {
			continue
		}
		c, ok := liveClaim(g, e.From)
		if !ok {
			continue
		}
		seen.Add(e.From)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// targets returns distinct non-fraud nodes carrying label that claim reaches through one of rels.
func targets(g *domain.Graph, claimID, label string, rels ...domain.RelType) []string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, e := range g.Out[claimID] {
		if !hasRel(e.Type, rels) {
			continue
		}
		n, ok := g.Nodes[e.To]
		if !ok || !n.HasLabel(label) || n.IsFraud() {
			continue
		}
		set.Add(e.To)
	}
	return sorted(set)
}

func hasRel(t domain.RelType, rels []domain.RelType) bool {
	for _, r := range rels {
		if t == r {
			return true
		}
	}
	return false
}

// sharedClaims groups non-fraud claims by the (a, b) entity pair they reach via relA and relB.
func sharedClaims(g *domain.Graph, relA domain.RelType, labelA string, relB domain.RelType, labelB string) map[pair]mapset.Set[string] {
	out := map[pair]mapset.Set[string]{}
	for _, c := range g.NodesWithLabel(domain.LabelClaim) {
		if c.IsFraud() {
			continue
		}
		for _, a := range targets(g, c.ID, labelA, relA) {
			for _, b := range targets(g, c.ID, labelB, relB) {
				p := pair{a, b}
				if out[p] == nil {
					out[p] = mapset.NewThreadUnsafeSet[string]()
				}
				out[p].Add(c.ID)
			}
		}
	}
	return out
}

func sorted(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}

func ids(nodes []*domain.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func nameOf(g *domain.Graph, id string) string {
	if n, ok := g.Nodes[id]; ok {
		return n.Name()
	}
	return ""
}

// sortedPairs orders pairs by shared claim count descending, then by ids.
func sortedPairs(groups map[pair]mapset.Set[string]) []pair {
	out := make([]pair, 0, len(groups))
	for p := range groups {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := groups[out[i]].Cardinality(), groups[out[j]].Cardinality()
		if ci != cj {
			return ci > cj
		}
		if out[i].a != out[j].a {
			return out[i].a < out[j].a
		}
		return out[i].b < out[j].b
	})
	return out
}
