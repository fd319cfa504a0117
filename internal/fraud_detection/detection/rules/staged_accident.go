package rules

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// maxStagedRows caps the result rows of one run. Each pair yields a row for
// every qualifying member, so two rows for most pairs.
const maxStagedRows = 50

type stagedAccident struct{}

func (stagedAccident) Name() string           { return "staged_accident" }
func (stagedAccident) Kind() domain.FraudKind { return domain.KindStagedAccident }

// Detect finds pairs of people who keep turning up together on Auto claims,
// as claimant or witness.
//
// A person qualifies with at least MinStagedClaims Auto claims of their own.
// For k claims shared by a pair the shared count is 2*(k-1): every shared claim
// paired with a later one, counted once from each side. A single shared claim
// never forms a pair.
func (s stagedAccident) Detect(g *domain.Graph, th domain.Thresholds) ([]domain.Finding, error) {
	groups := map[pair]mapset.Set[string]{}
	perPerson := map[string]int{}
	for _, c := range g.NodesWithLabel(domain.LabelClaim) {
		if c.IsFraud() || c.Str(domain.PropClaimType) != domain.ClaimTypeAuto {
			continue
		}
		people := targets(g, c.ID, domain.LabelPerson, domain.RelFiledBy, domain.RelWitnessedBy)
		for _, p := range people {
			perPerson[p]++
		}
		for i := 0; i < len(people); i++ {
			for j := i + 1; j < len(people); j++ {
				p := pair{people[i], people[j]}
				if groups[p] == nil {
					groups[p] = mapset.NewThreadUnsafeSet[string]()
				}
				groups[p].Add(c.ID)
			}
		}
	}

	var out []domain.Finding
	budget := maxStagedRows
	for _, p := range sortedPairs(groups) {
		if budget <= 0 {
			break
		}
		claims := groups[p]
		k := claims.Cardinality()
		shared := stagedShared(k)
		if k < 2 || shared < th.MinStagedClaims {
			continue
		}
		rows := 0
		for _, id := range []string{p.a, p.b} {
			if perPerson[id] >= th.MinStagedClaims {
				rows++
			}
		}
		if rows == 0 {
			continue
		}
		budget -= rows
		out = append(out, domain.Finding{
			Kind:          s.Kind(),
			SuspicionType: s.Kind().SuspicionType(),
			Score:         min(100, shared*25),
			Title:         fmt.Sprintf("Staged accident: %s & %s", nameOf(g, p.a), nameOf(g, p.b)),
			Entities:      []string{p.a, p.b},
			Claims:        sorted(claims),
			Evidence: domain.Attrs{
				"person1_name":  nameOf(g, p.a),
				"person2_name":  nameOf(g, p.b),
				"shared_claims": shared,
			},
		})
	}
	return out, nil
}

// stagedShared is the shared count reported for k claims common to a pair.
func stagedShared(k int) int {
	if k < 2 {
		return 0
	}
	return 2 * (k - 1)
}

func init() { detection.Register(stagedAccident{}) }
