package scoring

import (
	"fmt"
	"time"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/query"
)

const (
	neighborHops  = 2
	neighborLimit = 10
)

var roleTitles = map[string]string{
	domain.RoleClaimant:        "Claimant",
	domain.RoleWitness:         "Witness",
	domain.RoleAdjuster:        "Adjuster",
	domain.RoleMedicalProvider: "Medical Provider",
	domain.RoleBodyShop:        "Body Shop",
	domain.RoleAttorney:        "Attorney",
}

// Assess scores the entities picked for a claim (role -> node id) by what they are
// and by the fraud and suspicious nodes within two hops of each.
func Assess(g *domain.Graph, entities map[string]string) *domain.Assessment {
	a := &domain.Assessment{
		Level:         domain.RiskClean,
		Warnings:      []string{},
		FraudEntities: []domain.RiskEntity{},
		Suspicious:    []domain.RiskEntity{},
		Entities:      map[string]string{},
		CreatedAt:     time.Now().UTC(),
	}
	seen := map[string]bool{}

	record := func(n *domain.Node, role string, direct bool) {
		if seen[n.ID] {
			return
		}
		e := domain.RiskEntity{
			ID:         n.ID,
			Name:       n.Name(),
			Labels:     n.Labels,
			Status:     n.Status(),
			Connection: role,
			Direct:     direct,
		}
		switch {
		case n.IsFraud():
			e.FraudType = n.Str(domain.PropFraudType)
			a.FraudEntities = append(a.FraudEntities, e)
		case n.IsSuspicious():
			e.FraudType = n.Str(domain.PropSuspicionType)
			e.Score = n.Int(domain.PropSuspicionScore)
			a.Suspicious = append(a.Suspicious, e)
		default:
			return
		}
		seen[n.ID] = true
	}

	var picked []string
	for _, role := range domain.Roles {
		id := entities[role]
		if id == "" {
			continue
		}
		a.Entities[role] = id
		n, ok := g.Nodes[id]
		if !ok {
			continue
		}
		picked = append(picked, role)

		title := roleTitles[role]
		switch {
		case n.IsFraud():
			a.Warnings = append(a.Warnings, fmt.Sprintf("%s '%s' is CONFIRMED FRAUD (%s)", title, n.Name(), n.Str(domain.PropFraudType)))
		case n.IsSuspicious():
			a.Warnings = append(a.Warnings, fmt.Sprintf("%s '%s' is SUSPICIOUS (%s, Score: %d)",
				title, n.Name(), n.Str(domain.PropSuspicionType), n.Int(domain.PropSuspicionScore)))
		}
		record(n, role, true)
	}

	// neighbors second, so a picked entity is always reported as direct
	for _, role := range picked {
		found := 0
		for _, nid := range query.Reachable(g, entities[role], neighborHops) {
			if found == neighborLimit {
				break
			}
			other, ok := g.Nodes[nid]
			if !ok || other.Status() == domain.StatusClean {
				continue
			}
			found++
			record(other, role, false)
		}
	}

	a.FraudCount = len(a.FraudEntities)
	a.SuspiciousCount = len(a.Suspicious)
	a.Score = RiskScore(a.FraudCount, a.SuspiciousCount)
	a.Level = Level(a.Score)
	return a
}
