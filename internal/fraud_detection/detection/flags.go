package detection

import (
	"sort"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// linkedKinds produce a SUSPICIOUS_RELATIONSHIP between their two entities.
var linkedKinds = map[domain.FraudKind]bool{
	domain.KindKickback:          true,
	domain.KindAdjusterCollusion: true,
}

// firstClaimScore kinds keep the score of the first finding that flags a claim.
var firstClaimScore = map[domain.FraudKind]bool{
	domain.KindStagedAccident: true,
}

// BuildWrite turns findings (in run order) into node flags and suspicious links.
// Flags are written in finding order, so the last finding to touch a node sets
// its type and score. Staged accident claims are the exception within their
// own kind: the first pair to flag a claim keeps it.
func BuildWrite(g *domain.Graph, findings []domain.Finding) domain.DetectionWrite {
	flags := map[string]domain.Flag{}
	flaggedBy := map[string]domain.FraudKind{}

	set := func(id string, f domain.Finding, score int, keepFirst bool) {
		n, ok := g.Nodes[id]
		if !ok || n.IsFraud() {
			return
		}
		if _, ok := flags[id]; ok && keepFirst && flaggedBy[id] == f.Kind {
			return
		}
		flags[id] = domain.Flag{NodeID: id, SuspicionType: f.SuspicionType, Score: score}
		flaggedBy[id] = f.Kind
	}

	var links []domain.SuspiciousLink
	for _, f := range findings {
		for _, id := range f.Entities {
			set(id, f, f.Score, false)
		}
		for _, id := range f.Claims {
			set(id, f, f.ClaimScore(), firstClaimScore[f.Kind])
		}
		if linkedKinds[f.Kind] && len(f.Entities) == 2 {
			links = append(links, domain.SuspiciousLink{
				From:         f.Entities[0],
				To:           f.Entities[1],
				SharedClaims: len(f.Claims),
			})
		}
	}

	out := domain.DetectionWrite{Links: links}
	for _, fl := range flags {
		out.Flags = append(out.Flags, fl)
	}
	sort.Slice(out.Flags, func(i, j int) bool { return out.Flags[i].NodeID < out.Flags[j].NodeID })
	return out
}
