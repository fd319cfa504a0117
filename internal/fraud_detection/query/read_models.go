// Package query builds the read models served to investigators from a graph snapshot.
package query

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

const (
	maxEntities = 1000
	maxPeople   = 100
)

// FraudTypeAll selects every labeled fraud claim.
const FraudTypeAll = "All"

func EntityTypes(g *domain.Graph) []string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, n := range g.Nodes {
		for _, l := range n.Labels {
			set.Add(l)
		}
	}
	out := set.ToSlice()
	sort.Strings(out)
	return out
}

func EntitiesByType(g *domain.Graph, label string) []EntityRef {
	var out []EntityRef
	for _, n := range g.NodesWithLabel(label) {
		name := n.Name()
		if name == "" {
			name = n.ID
		}
		out = append(out, EntityRef{ID: n.ID, Name: name})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > maxEntities {
		out = out[:maxEntities]
	}
	return out
}

// Neighborhood returns the relationships around root that lead, within hops and
// without reusing a relationship, to a node carrying one of labels (any node when
// labels is empty).
func Neighborhood(g *domain.Graph, rootLabel, rootID string, hops int, labels []string) (*Subgraph, error) {
	if hops < 1 || hops > MaxHops {
		return nil, &domain.ValidationError{Problems: []string{fmt.Sprintf("hops must be between 1 and %d", MaxHops)}}
	}
	root, ok := g.Nodes[rootID]
	if !ok || (rootLabel != "" && !root.HasLabel(rootLabel)) {
		return nil, fmt.Errorf("%s %s: %w", rootLabel, rootID, domain.ErrNodeNotFound)
	}

	var targets []string
	for id, n := range g.Nodes {
		if id == rootID {
			continue
		}
		if len(labels) == 0 || n.HasAnyLabel(labels...) {
			targets = append(targets, id)
		}
	}
	edges := trailEdges(g, rootID, targets, hops)
	return buildSubgraph(g, edges, 0, rootID), nil
}

func fraudClaims(g *domain.Graph, fraudType string) []*domain.Node {
	var out []*domain.Node
	for _, c := range g.NodesWithLabel(domain.LabelClaim) {
		if !c.IsFraud() {
			continue
		}
		if fraudType != "" && fraudType != FraudTypeAll && c.Str(domain.PropFraudType) != fraudType {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FraudRingNetwork returns relationships around labeled fraud claims: 3 hops for one
// fraud type, 2 hops for all of them.
func FraudRingNetwork(g *domain.Graph, fraudType string) *Subgraph {
	hops := 3
	if fraudType == "" || fraudType == FraudTypeAll {
		hops = 2
	}
	var sources []string
	for _, c := range fraudClaims(g, fraudType) {
		sources = append(sources, c.ID)
	}
	if len(sources) == 0 {
		return buildSubgraph(g, nil, MaxRingEdges)
	}
	return buildSubgraph(g, ringEdges(g, sources, hops), MaxRingEdges)
}

// FraudRings lists labeled fraud claims of one type with the number of fraud-labeled
// nodes within two hops of each.
func FraudRings(g *domain.Graph, fraudType string) []FraudRing {
	var out []FraudRing
	for _, c := range fraudClaims(g, fraudType) {
		size := 0
		for id, d := range distances(g, []string{c.ID}, 2) {
			if id == c.ID || d == 0 {
				continue
			}
			if g.Nodes[id].IsFraud() {
				size++
			}
		}
		out = append(out, FraudRing{
			ClaimID:   c.ID,
			ClaimName: c.Name(),
			Amount:    c.Float(domain.PropClaimAmount),
			RingSize:  size,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RingSize != out[j].RingSize {
			return out[i].RingSize > out[j].RingSize
		}
		return out[i].Amount > out[j].Amount
	})
	return out
}

func FraudRingNeighborhood(g *domain.Graph, claimID string, hops int) (*Subgraph, error) {
	return Neighborhood(g, domain.LabelClaim, claimID, hops, nil)
}

// SuspiciousNetwork returns relationships within two hops of any suspicious node.
func SuspiciousNetwork(g *domain.Graph) *Subgraph {
	var sources []string
	for id, n := range g.Nodes {
		if n.IsSuspicious() {
			sources = append(sources, id)
		}
	}
	sort.Strings(sources)
	if len(sources) == 0 {
		return buildSubgraph(g, nil, MaxRingEdges)
	}
	return buildSubgraph(g, ringEdges(g, sources, 2), MaxRingEdges)
}

func Stats(g *domain.Graph) DatabaseStats {
	st := DatabaseStats{TotalNodes: len(g.Nodes), Relationships: len(g.Edges)}
	byLabel := map[string]int{}
	for _, n := range g.Nodes {
		byLabel[n.PrimaryLabel()]++
		if n.IsSuspicious() {
			st.Suspicious++
		}
		if !n.HasLabel(domain.LabelClaim) {
			continue
		}
		st.TotalClaims++
		if n.IsFraud() {
			st.FraudClaims++
		} else {
			st.LegitimateClaims++
		}
	}
	for l, c := range byLabel {
		st.NodeCounts = append(st.NodeCounts, LabelCount{Label: l, Count: c})
	}
	sort.Slice(st.NodeCounts, func(i, j int) bool {
		if st.NodeCounts[i].Count != st.NodeCounts[j].Count {
			return st.NodeCounts[i].Count > st.NodeCounts[j].Count
		}
		return st.NodeCounts[i].Label < st.NodeCounts[j].Label
	})
	return st
}

type poolSpec struct {
	labels []string
	rel    domain.RelType
	limit  int
	order  func(a, b PoolEntry) int
}

func flagRank(s domain.Status, first domain.Status) int {
	switch s {
	case first:
		return 0
	case domain.StatusFraud, domain.StatusSuspicious:
		return 1
	default:
		return 2
	}
}

var pools = map[string]poolSpec{
	domain.RoleClaimant: {[]string{domain.LabelPerson, domain.LabelClaimant}, domain.RelFiledBy, maxPeople, byFlagThenName},
	domain.RoleWitness:  {[]string{domain.LabelPerson, domain.LabelWitness}, domain.RelWitnessedBy, maxPeople, byFlagThenName},
	domain.RoleAdjuster: {[]string{domain.LabelPerson, domain.LabelAdjuster}, domain.RelHandledBy, 0, func(a, b PoolEntry) int {
		if r := flagRank(a.Status, domain.StatusSuspicious) - flagRank(b.Status, domain.StatusSuspicious); r != 0 {
			return r
		}
		return a.ClaimCount - b.ClaimCount
	}},
	domain.RoleMedicalProvider: {[]string{domain.LabelMedicalProvider}, domain.RelTreatedAt, 0, byFlagThenVolume},
	domain.RoleBodyShop:        {[]string{domain.LabelBodyShop}, domain.RelRepairedAt, 0, byFlagThenVolume},
	domain.RoleAttorney:        {[]string{domain.LabelAttorney}, domain.RelRepresentedBy, 0, byFlagThenVolume},
}

// people: suspicious first, then fraud, then by name
func byFlagThenName(a, b PoolEntry) int {
	if r := flagRank(a.Status, domain.StatusSuspicious) - flagRank(b.Status, domain.StatusSuspicious); r != 0 {
		return r
	}
	return strings.Compare(a.Name, b.Name)
}

// businesses: fraud first, then suspicious, then busiest
func byFlagThenVolume(a, b PoolEntry) int {
	if r := flagRank(a.Status, domain.StatusFraud) - flagRank(b.Status, domain.StatusFraud); r != 0 {
		return r
	}
	return b.ClaimCount - a.ClaimCount
}

// EntityPool lists the entities selectable for role on a new claim.
func EntityPool(g *domain.Graph, role string) ([]PoolEntry, error) {
	spec, ok := pools[role]
	if !ok {
		return nil, &domain.ValidationError{Problems: []string{fmt.Sprintf("unknown role %q", role)}}
	}

	var out []PoolEntry
	for _, n := range g.NodesWithLabel(spec.labels[len(spec.labels)-1]) {
		if !n.HasLabel(spec.labels[0]) {
			continue
		}
		claims := mapset.NewThreadUnsafeSet[string]()
		for _, e := range g.In[n.ID] {
			if e.Type != spec.rel {
				continue
			}
			if c, ok := g.Nodes[e.From]; ok && c.HasLabel(domain.LabelClaim) {
				claims.Add(e.From)
			}
		}
		out = append(out, PoolEntry{
			ID:         n.ID,
			Name:       n.Name(),
			Status:     n.Status(),
			ClaimCount: claims.Cardinality(),
			EmployeeID: n.Str("employee_id"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := spec.order(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	if spec.limit > 0 && len(out) > spec.limit {
		out = out[:spec.limit]
	}
	return out, nil
}
