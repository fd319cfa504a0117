package rules

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

type phantomPassenger struct{}

func (phantomPassenger) Name() string           { return "phantom_passenger" }
func (phantomPassenger) Kind() domain.FraudKind { return domain.KindPhantomPassenger }

func isClaimant(n *domain.Node) bool {
	return n.HasLabel(domain.LabelPerson) && n.HasLabel(domain.LabelClaimant) && !n.IsFraud()
}

// Detect finds claimants at the centre of a KNOWS cluster who also file claims themselves.
func (p phantomPassenger) Detect(g *domain.Graph, th domain.Thresholds) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, hub := range g.NodesWithLabel(domain.LabelClaimant) {
		if !isClaimant(hub) {
			continue
		}
		known := mapset.NewThreadUnsafeSet[string]()
		for _, e := range g.Incident(hub.ID) {
			if e.Type != domain.RelKnows {
				continue
			}
			other := e.Other(hub.ID)
			if other == hub.ID {
				continue
			}
			if n, ok := g.Nodes[other]; ok && isClaimant(n) {
				known.Add(other)
			}
		}
		if known.Cardinality() < th.MinConnections {
			continue
		}
		claims := claimsAt(g, hub.ID, domain.RelFiledBy)
		if len(claims) == 0 || len(claims) < th.MinConnections {
			continue
		}

		connections := known.Cardinality()
		out = append(out, domain.Finding{
			Kind:          p.Kind(),
			SuspicionType: p.Kind().SuspicionType(),
			Score:         min(100, connections*20),
			Title:         fmt.Sprintf("Phantom passenger hub: %s", hub.Name()),
			Entities:      []string{hub.ID},
			Claims:        ids(claims),
			Evidence: domain.Attrs{
				"person_name":      hub.Name(),
				"connection_count": connections,
				"claim_count":      len(claims),
				"connected":        sorted(known),
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].Evidence["connection_count"].(int), out[j].Evidence["connection_count"].(int)
		if ci != cj {
			return ci > cj
		}
		return len(out[i].Claims) > len(out[j].Claims)
	})
	return out, nil
}

func init() { detection.Register(phantomPassenger{}) }
