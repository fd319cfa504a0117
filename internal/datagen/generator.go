// Package datagen builds synthetic claims graphs with labeled fraud rings,
// unlabeled tiered patterns for detection and near-miss legitimate activity.
package datagen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

var firstNames = []string{
	"John", "Jane", "Michael", "Sarah", "David", "Emily", "Robert", "Lisa",
	"William", "Maria", "James", "Jennifer", "Richard", "Linda", "Thomas",
	"Christopher", "Patricia", "Daniel", "Barbara", "Matthew", "Nancy",
	"Charles", "Susan", "Joseph", "Jessica", "Mark", "Karen", "Donald", "Betty",
	"Steven", "Margaret", "Andrew", "Sandra", "Joshua", "Ashley", "Kevin", "Dorothy",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson",
	"Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee",
	"Thompson", "White", "Harris", "Clark", "Lewis", "Robinson", "Walker",
	"Young", "Allen", "King", "Wright", "Scott", "Green", "Baker", "Adams",
}

var highVolumeProviderNames = []string{
	"City General Hospital ER",
	"Downtown Urgent Care",
	"Interstate Highway Trauma Center",
	"University Medical Center",
	"Regional Sports Medicine Clinic",
}

var relationships = []string{"family", "coworkers", "neighbors", "carpool"}

var legitimateClaimTypes = []string{domain.ClaimTypeAuto, domain.ClaimTypeProperty, domain.ClaimTypeMedical}

const dateLayout = "2006-01-02"

// Generator is deterministic for a given seed and clock.
type Generator struct {
	seed uint64
	now  time.Time
	rng  *rand.Rand
	g    *domain.Graph

	claimSeq, personSeq, adjusterSeq, providerSeq, attorneySeq, bodyshopSeq int

	adjusters, providers, attorneys, bodyshops []string

	stats Stats
}

func New(seed uint64, now time.Time) *Generator {
	return &Generator{seed: seed, now: now}
}

func (gen *Generator) reset() {
	gen.rng = rand.New(rand.NewPCG(gen.seed, gen.seed^0x9e3779b97f4a7c15))
	gen.g = domain.NewGraph()
	gen.claimSeq, gen.personSeq, gen.adjusterSeq = 0, 0, 0
	gen.providerSeq, gen.attorneySeq, gen.bodyshopSeq = 0, 0, 0
	gen.adjusters, gen.providers, gen.attorneys, gen.bodyshops = nil, nil, nil, nil
	gen.stats = Stats{}
}

// Generate builds a fresh graph for p. Pools come first so every pattern can
// reuse shared adjusters and providers.
func (gen *Generator) Generate(p Profile) (*domain.Graph, Stats) {
	gen.reset()

	gen.adjusterPool(max(1, p.Adjusters))
	gen.providerPools()
	gen.legitimateClaims(p.LegitimateClaims)

	gen.medicalMillRings(p.Explicit.MedicalMill)
	gen.kickbackRings(p.Explicit.Kickback)
	gen.stagedRings(p.Explicit.Staged)
	gen.phantomRings(p.Explicit.Phantom)
	gen.collusionRings(p.Explicit.AdjusterCollusion)

	gen.implicitPatterns(p.Implicit)

	if p.IncludeNearMiss {
		gen.highVolumeProviders(p.NearMiss.HighVolumeProviders)
		gen.repeatReferrals(p.NearMiss.RepeatReferrals)
		gen.repeatWitnesses(p.NearMiss.RepeatWitnesses)
	}

	gen.stats.Totals = countTotals(gen.g)
	return gen.g, gen.stats
}

func (gen *Generator) between(lo, hi int) int {
	return lo + gen.rng.IntN(hi-lo+1)
}

func (gen *Generator) amount(lo, hi float64) float64 {
	return math.Round((lo+gen.rng.Float64()*(hi-lo))*100) / 100
}

func (gen *Generator) name() string {
	return firstNames[gen.rng.IntN(len(firstNames))] + " " + lastNames[gen.rng.IntN(len(lastNames))]
}

func (gen *Generator) lastName() string {
	return strings.Fields(gen.name())[1]
}

// date picks a day between startDaysAgo and endDaysAgo.
func (gen *Generator) date(startDaysAgo, endDaysAgo int) string {
	start := gen.now.AddDate(0, 0, -startDaysAgo)
	span := max(1, startDaysAgo-endDaysAgo)
	return start.AddDate(0, 0, gen.rng.IntN(span+1)).Format(dateLayout)
}

func (gen *Generator) ssn() string {
	return fmt.Sprintf("%d-%d-%d", gen.between(100, 999), gen.between(10, 99), gen.between(1000, 9999))
}

func (gen *Generator) phone() string {
	return fmt.Sprintf("555-%d-%d", gen.between(100, 999), gen.between(1000, 9999))
}

func (gen *Generator) pick(pool []string) string {
	return pool[gen.rng.IntN(len(pool))]
}

// sample returns k distinct members of ids in random order.
func (gen *Generator) sample(ids []string, k int) []string {
	out := make([]string, 0, k)
	for _, i := range gen.rng.Perm(len(ids))[:k] {
		out = append(out, ids[i])
	}
	return out
}

func (gen *Generator) nextClaimID() string {
	id := fmt.Sprintf("CLM_%05d", gen.claimSeq)
	gen.claimSeq++
	return id
}

func (gen *Generator) nextPersonID() string {
	id := fmt.Sprintf("P_%05d", gen.personSeq)
	gen.personSeq++
	return id
}

func (gen *Generator) node(id string, labels []string, props domain.Attrs) {
	gen.g.AddNode(&domain.Node{ID: id, Labels: labels, Props: props})
}

func (gen *Generator) link(from, to string, rel domain.RelType, props domain.Attrs) {
	gen.g.AddEdge(&domain.Edge{From: from, To: to, Type: rel, Props: props})
}

// claimant creates a Person:Claimant, labeled fraud when fraudType is set.
func (gen *Generator) claimant(id, fraudType string) string {
	props := domain.Attrs{domain.PropName: gen.name(), "ssn": gen.ssn(), "phone": gen.phone()}
	if fraudType != "" {
		props[domain.PropIsFraud] = true
		props[domain.PropFraudType] = fraudType
	}
	gen.node(id, []string{domain.LabelPerson, domain.LabelClaimant}, props)
	return id
}

type claimSpec struct {
	name      string
	claimType string
	amount    float64
	date      string
	fraudType string
	adjuster  string
}

func (gen *Generator) claim(s claimSpec) string {
	id := gen.nextClaimID()
	props := domain.Attrs{
		domain.PropName:        strings.ReplaceAll(s.name, "{id}", id),
		domain.PropClaimAmount: s.amount,
		domain.PropClaimDate:   s.date,
		domain.PropClaimType:   s.claimType,
		domain.PropIsFraud:     s.fraudType != "",
	}
	if s.fraudType != "" {
		props[domain.PropFraudType] = s.fraudType
	}
	gen.node(id, []string{domain.LabelClaim}, props)
	gen.link(id, s.adjuster, domain.RelHandledBy, nil)
	return id
}

func (gen *Generator) adjusterPool(n int) {
	for range n {
		id := fmt.Sprintf("ADJ_%05d", gen.adjusterSeq)
		gen.node(id, []string{domain.LabelPerson, domain.LabelAdjuster}, domain.Attrs{
			domain.PropName: gen.name(),
			"employee_id":   fmt.Sprintf("EMP-%05d", gen.adjusterSeq),
		})
		gen.adjusters = append(gen.adjusters, id)
		gen.adjusterSeq++
	}
}

func (gen *Generator) providerPools() {
	for range gen.between(15, 25) {
		id := fmt.Sprintf("MED_%05d", gen.providerSeq)
		gen.medicalProvider(id, gen.lastName()+" Medical Center", "MED-LIC", nil)
		gen.providers = append(gen.providers, id)
		gen.providerSeq++
	}
	for range gen.between(10, 15) {
		id := fmt.Sprintf("ATT_%05d", gen.attorneySeq)
		gen.attorney(id, "BAR", nil)
		gen.attorneys = append(gen.attorneys, id)
		gen.attorneySeq++
	}
	for range gen.between(8, 12) {
		id := fmt.Sprintf("BS_%05d", gen.bodyshopSeq)
		gen.bodyshop(id, gen.lastName()+" Auto Body Shop", "BS-LIC", nil)
		gen.bodyshops = append(gen.bodyshops, id)
		gen.bodyshopSeq++
	}
}

func (gen *Generator) medicalProvider(id, name, licensePrefix string, extra domain.Attrs) {
	props := domain.Attrs{domain.PropName: name, "license": fmt.Sprintf("%s-%d", licensePrefix, gen.between(10000, 99999))}
	for k, v := range extra {
		props[k] = v
	}
	gen.node(id, []string{domain.LabelMedicalProvider}, props)
}

func (gen *Generator) attorney(id, barPrefix string, extra domain.Attrs) {
	props := domain.Attrs{domain.PropName: gen.name() + ", Esq.", "bar_number": fmt.Sprintf("%s-%d", barPrefix, gen.between(100000, 999999))}
	for k, v := range extra {
		props[k] = v
	}
	gen.node(id, []string{domain.LabelAttorney}, props)
}

func (gen *Generator) bodyshop(id, name, licensePrefix string, extra domain.Attrs) {
	props := domain.Attrs{domain.PropName: name, "license": fmt.Sprintf("%s-%d", licensePrefix, gen.between(10000, 99999))}
	for k, v := range extra {
		props[k] = v
	}
	gen.node(id, []string{domain.LabelBodyShop}, props)
}

func fraudAttrs(fraudType string) domain.Attrs {
	return domain.Attrs{domain.PropIsFraud: true, domain.PropFraudType: fraudType}
}

func (gen *Generator) legitimateClaims(n int) {
	if n == 0 || len(gen.adjusters) == 0 {
		return
	}
	for i := range n {
		claimType := legitimateClaimTypes[gen.rng.IntN(len(legitimateClaimTypes))]
		claimantID := gen.nextPersonID()
		adjuster := gen.pick(gen.adjusters)

		c := gen.claim(claimSpec{
			name:      fmt.Sprintf("Legitimate %s Claim %d", claimType, i+1),
			claimType: claimType,
			amount:    gen.amount(1000, 50000),
			date:      gen.date(365, 0),
			adjuster:  adjuster,
		})
		gen.link(c, gen.claimant(claimantID, ""), domain.RelFiledBy, nil)

		if gen.rng.Float64() < 0.7 {
			w := gen.nextPersonID()
			gen.node(w, []string{domain.LabelPerson, domain.LabelWitness}, domain.Attrs{
				domain.PropName: gen.name(),
				"phone":         gen.phone(),
			})
			gen.link(c, w, domain.RelWitnessedBy, nil)
		}

		switch claimType {
		case domain.ClaimTypeMedical:
			gen.link(c, gen.pick(gen.providers), domain.RelTreatedAt, nil)
			if gen.rng.Float64() < 0.3 {
				gen.link(c, gen.pick(gen.attorneys), domain.RelRepresentedBy, nil)
			}
		case domain.ClaimTypeAuto:
			if gen.rng.Float64() < 0.8 {
				gen.link(c, gen.pick(gen.bodyshops), domain.RelRepairedAt, nil)
			}
			if gen.rng.Float64() < 0.4 {
				gen.link(c, gen.pick(gen.attorneys), domain.RelRepresentedBy, nil)
			}
		case domain.ClaimTypeProperty:
			if gen.rng.Float64() < 0.2 {
				gen.link(c, gen.pick(gen.attorneys), domain.RelRepresentedBy, nil)
			}
		}
	}
	gen.stats.LegitimateClaims = n
}

func countTotals(g *domain.Graph) Totals {
	var t Totals
	for _, n := range g.Nodes {
		switch {
		case n.HasLabel(domain.LabelClaim):
			t.Claims++
			if n.IsFraud() {
				t.FraudClaims++
			} else {
				t.UnlabeledClaims++
			}
		case n.HasLabel(domain.LabelPerson):
			t.Persons++
		case n.HasLabel(domain.LabelMedicalProvider):
			t.MedicalProviders++
		case n.HasLabel(domain.LabelAttorney):
			t.Attorneys++
		case n.HasLabel(domain.LabelBodyShop):
			t.BodyShops++
		}
	}
	t.Relationships = len(g.Edges)
	return t
}
