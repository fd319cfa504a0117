package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/query"
)

const rule = "============================================================"

// maxListed bounds the findings printed per pattern.
const maxListed = 5

type runError struct {
	run *domain.DetectionRun
}

func (e *runError) Error() string {
	if e.run.Error != "" {
		return fmt.Sprintf("run %s %s: %s", e.run.RunID, e.run.Status, e.run.Error)
	}
	return fmt.Sprintf("run %s %s", e.run.RunID, e.run.Status)
}

func printCleared(w io.Writer, st domain.ClearStats) {
	fmt.Fprintf(w, "Cleared %d flagged entities\n", st.Flagged)
	fmt.Fprintf(w, "Removed centrality from %d nodes\n", st.Centrality)
	fmt.Fprintf(w, "Deleted %d suspicious relationships\n", st.Relationships)
}

func printReport(w io.Writer, rep *domain.Report) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "FRAUD DETECTION ANALYSIS")
	fmt.Fprintln(w, rule)
	printCleared(w, rep.Cleared)

	byKind := map[domain.FraudKind][]domain.Finding{}
	for _, f := range rep.Findings {
		byKind[f.Kind] = append(byKind[f.Kind], f)
	}
	for _, k := range domain.RunOrder {
		found := byKind[k]
		fmt.Fprintf(w, "\n%s: %d found\n", k.SuspicionType(), len(found))
		for i, f := range found {
			if i == maxListed {
				fmt.Fprintf(w, "   ... %d more\n", len(found)-maxListed)
				break
			}
			fmt.Fprintf(w, "   - %s (score %d, %d claims)\n", f.Title, f.Score, len(f.Claims))
		}
	}

	if len(rep.Centrality) > 0 {
		fmt.Fprintln(w, "\nHigh-degree nodes:")
		for _, c := range rep.Centrality {
			fmt.Fprintf(w, "   - %s: %d nodes, avg degree %.2f\n", c.Label, c.Count, c.AvgDegree)
		}
	}
	if len(rep.Suspicious) > 0 {
		fmt.Fprintln(w, "\nSuspicious nodes by type:")
		for _, s := range rep.Suspicious {
			fmt.Fprintf(w, "   - %s (%s): %d\n", s.Label, s.SuspicionType, s.Count)
		}
	}

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "DETECTION SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total findings: %d\n", rep.Summary.TotalFindings)
	fmt.Fprintf(w, "Suspicious entities: %d\n", rep.Summary.SuspiciousEntities)
	fmt.Fprintf(w, "Suspicious claims: %d\n", rep.Summary.SuspiciousClaims)
	fmt.Fprintf(w, "Suspicious links: %d\n", rep.Links)
	fmt.Fprintf(w, "Duration: %s\n", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
}

func printStats(w io.Writer, st query.DatabaseStats) {
	fmt.Fprintln(w, "Node counts:")
	width := 0
	for _, c := range st.NodeCounts {
		width = max(width, len(c.Label))
	}
	for _, c := range st.NodeCounts {
		fmt.Fprintf(w, "   %s%s %d\n", c.Label, strings.Repeat(" ", width-len(c.Label)), c.Count)
	}
	fmt.Fprintf(w, "Total nodes: %d\n", st.TotalNodes)
	fmt.Fprintf(w, "Claims: %d (fraud %d, legitimate %d)\n", st.TotalClaims, st.FraudClaims, st.LegitimateClaims)
	fmt.Fprintf(w, "Suspicious: %d\n", st.Suspicious)
	fmt.Fprintf(w, "Relationships: %d\n", st.Relationships)
}
