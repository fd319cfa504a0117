package scoring

import (
	"sort"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// PrioritizeFindings returns a copy ordered by score, then pattern weight, then claim count.
func PrioritizeFindings(fs []domain.Finding) []domain.Finding {
	out := append([]domain.Finding(nil), fs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		wi, wj := kindWeight(out[i].Kind), kindWeight(out[j].Kind)
		if wi != wj {
			return wi > wj
		}
		return len(out[i].Claims) > len(out[j].Claims)
	})
	return out
}
