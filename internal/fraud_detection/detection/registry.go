package detection

import (
	"slices"
	"sort"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

var registered = map[string]Detector{}

func Register(d Detector) {
	if d == nil {
		return
	}
	registered[d.Name()] = d
}

// All returns registered detectors in domain.RunOrder; unknown kinds run last by name.
func All() []Detector {
	out := make([]Detector, 0, len(registered))
	for _, d := range registered {
		out = append(out, d)
	}
	rank := func(d Detector) int {
		if i := slices.Index(domain.RunOrder, d.Kind()); i >= 0 {
			return i
		}
		return len(domain.RunOrder)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}
