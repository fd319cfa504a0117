package datagen

import (
	"fmt"
	"io"
	"strings"
)

type TierStats struct {
	Tier1 PatternCounts `json:"tier1"`
	Tier2 PatternCounts `json:"tier2"`
	Tier3 PatternCounts `json:"tier3"`
}

// Totals counts what ended up in the graph.
type Totals struct {
	Claims           int `json:"claims"`
	FraudClaims      int `json:"fraud_claims"`
	UnlabeledClaims  int `json:"unlabeled_claims"`
	Persons          int `json:"persons"`
	MedicalProviders int `json:"medical_providers"`
	Attorneys        int `json:"attorneys"`
	BodyShops        int `json:"body_shops"`
	Relationships    int `json:"relationships"`
}

// Stats records how many instances of each category were generated.
type Stats struct {
	LegitimateClaims int           `json:"legitimate_claims"`
	Explicit         PatternCounts `json:"explicit_fraud"`
	Implicit         TierStats     `json:"implicit_fraud"`
	NearMiss         NearMiss      `json:"near_miss_legitimate"`
	Totals           Totals        `json:"totals"`
}

var patternTitles = []struct {
	title string
	get   func(PatternCounts) int
}{
	{"Medical Mill", func(c PatternCounts) int { return c.MedicalMill }},
	{"Kickback", func(c PatternCounts) int { return c.Kickback }},
	{"Staged", func(c PatternCounts) int { return c.Staged }},
	{"Phantom", func(c PatternCounts) int { return c.Phantom }},
	{"Adjuster Collusion", func(c PatternCounts) int { return c.AdjusterCollusion }},
}

// WriteSummary prints a console summary of the generated dataset.
func (s Stats) WriteSummary(w io.Writer) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "DATA GENERATION COMPLETE")
	fmt.Fprintln(w, line)

	fmt.Fprintf(w, "Legitimate claims: %d\n", s.LegitimateClaims)
	fmt.Fprintln(w, "Explicit fraud rings (labeled):")
	for _, p := range patternTitles {
		fmt.Fprintf(w, "   %s: %d\n", p.title, p.get(s.Explicit))
	}

	fmt.Fprintln(w, "Implicit fraud patterns (unlabeled):")
	for _, p := range patternTitles {
		t1, t2, t3 := p.get(s.Implicit.Tier1), p.get(s.Implicit.Tier2), p.get(s.Implicit.Tier3)
		if t1+t2+t3 == 0 {
			continue
		}
		fmt.Fprintf(w, "   %s: %d total (borderline %d, moderate %d, obvious %d)\n", p.title, t1+t2+t3, t1, t2, t3)
	}

	fmt.Fprintln(w, "Near-miss legitimate patterns:")
	fmt.Fprintf(w, "   High Volume Providers: %d\n", s.NearMiss.HighVolumeProviders)
	fmt.Fprintf(w, "   Repeat Referrals: %d\n", s.NearMiss.RepeatReferrals)
	fmt.Fprintf(w, "   Repeat Witnesses: %d\n", s.NearMiss.RepeatWitnesses)

	t := s.Totals
	fmt.Fprintln(w, "Data summary:")
	fmt.Fprintf(w, "   Total Claims: %d\n", t.Claims)
	fmt.Fprintf(w, "   Labeled Fraud Claims: %d\n", t.FraudClaims)
	fmt.Fprintf(w, "   Unlabeled Claims: %d\n", t.UnlabeledClaims)
	fmt.Fprintf(w, "   Total Persons: %d\n", t.Persons)
	fmt.Fprintf(w, "   Medical Providers: %d\n", t.MedicalProviders)
	fmt.Fprintf(w, "   Attorneys: %d\n", t.Attorneys)
	fmt.Fprintf(w, "   Body Shops: %d\n", t.BodyShops)
	fmt.Fprintln(w, "Default thresholds detect tier 2 and tier 3 patterns; lower them to reveal tier 1.")
}
