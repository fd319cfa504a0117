package datagen

import (
	"fmt"
	"math"
	"strings"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// Explicit rings carry is_fraud=true on the ring members and their claims.

func (gen *Generator) medicalMillRings(rings int) {
	ft := domain.FraudTypeMedicalMill
	for ring := range rings {
		provider := fmt.Sprintf("MED_FRAUD_MM_%05d_%05d", ring, gen.providerSeq)
		gen.providerSeq++
		gen.medicalProvider(provider, fmt.Sprintf("Fraudulent Medical Center %d", ring), "FRAUD-MED", fraudAttrs(ft))

		attorney := fmt.Sprintf("ATT_FRAUD_MM_%05d_%05d", ring, gen.attorneySeq)
		gen.attorneySeq++
		gen.attorney(attorney, "BAR-FRAUD", fraudAttrs(ft))

		for i := range gen.between(8, 15) {
			c := gen.claim(claimSpec{
				name:      fmt.Sprintf("Medical Mill Claim %d-%d", ring, i),
				claimType: domain.ClaimTypeMedical,
				amount:    gen.amount(15000, 45000),
				date:      gen.date(90, 0),
				fraudType: ft,
				adjuster:  gen.pick(gen.adjusters),
			})
			gen.link(c, gen.claimant(gen.nextPersonID(), ""), domain.RelFiledBy, nil)
			gen.link(c, provider, domain.RelTreatedAt, nil)
			gen.link(c, attorney, domain.RelRepresentedBy, nil)
		}
	}
	gen.stats.Explicit.MedicalMill = rings
}

func (gen *Generator) kickbackRings(rings int) {
	ft := domain.FraudTypeBodyShopKickback
	for ring := range rings {
		attorney := fmt.Sprintf("ATT_FRAUD_BK_%05d_%05d", ring, gen.attorneySeq)
		gen.attorneySeq++
		gen.attorney(attorney, "BAR-FRAUD", fraudAttrs(ft))

		shop := fmt.Sprintf("BS_FRAUD_BK_%05d_%05d", ring, gen.bodyshopSeq)
		gen.bodyshopSeq++
		gen.bodyshop(shop, fmt.Sprintf("Kickback Body Shop %d", ring), "BS-FRAUD", fraudAttrs(ft))
		gen.link(attorney, shop, domain.RelRefersTo, domain.Attrs{"kickback_amount": gen.amount(500, 2000)})

		for i := range gen.between(6, 12) {
			c := gen.claim(claimSpec{
				name:      fmt.Sprintf("Kickback Claim %d-%d", ring, i),
				claimType: domain.ClaimTypeAuto,
				amount:    gen.amount(8000, 25000),
				date:      gen.date(120, 0),
				fraudType: ft,
				adjuster:  gen.pick(gen.adjusters),
			})
			gen.link(c, gen.claimant(gen.nextPersonID(), ""), domain.RelFiledBy, nil)
			gen.link(c, attorney, domain.RelRepresentedBy, nil)
			gen.link(c, shop, domain.RelRepairedAt, nil)
		}
	}
	gen.stats.Explicit.Kickback = rings
}

func (gen *Generator) stagedRings(rings int) {
	ft := domain.FraudTypeStagedAccident
	for ring := range rings {
		conspirators := make([]string, 0, 7)
		for range gen.between(4, 7) {
			conspirators = append(conspirators, gen.claimant(gen.nextPersonID(), ft))
		}
		for acc := range gen.between(3, 6) {
			c := gen.claim(claimSpec{
				name:      fmt.Sprintf("Staged Accident %d-%d", ring, acc),
				claimType: domain.ClaimTypeAuto,
				amount:    gen.amount(10000, 40000),
				date:      gen.date(180, 30),
				fraudType: ft,
				adjuster:  gen.pick(gen.adjusters),
			})
			gen.participants(c, gen.sample(conspirators, gen.between(2, min(4, len(conspirators)))))
		}
	}
	gen.stats.Explicit.Staged = rings
}

// participants files the claim by the first person; the rest witness it.
func (gen *Generator) participants(claimID string, people []string) {
	for i, p := range people {
		rel := domain.RelWitnessedBy
		if i == 0 {
			rel = domain.RelFiledBy
		}
		gen.link(claimID, p, rel, nil)
	}
}

// phantomRings gives each hub one claim per phantom it knows, so the hub both
// files and sits at the centre of the KNOWS cluster. Phantoms file no claims
// of their own; every ring claim is FILED_BY the hub, which is the node the
// phantom passenger rule scores.
func (gen *Generator) phantomRings(rings int) {
	ft := domain.FraudTypePhantomPassenger
	for ring := range rings {
		hub := gen.claimant(gen.nextPersonID(), ft)
		for i := range gen.between(3, 6) {
			phantom := gen.claimant(gen.nextPersonID(), ft)
			c := gen.claim(claimSpec{
				name:      fmt.Sprintf("Phantom Passenger Claim %d-%d", ring, i),
				claimType: domain.ClaimTypeAuto,
				amount:    gen.amount(8000, 30000),
				date:      gen.date(150, 20),
				fraudType: ft,
				adjuster:  gen.pick(gen.adjusters),
			})
			gen.link(c, hub, domain.RelFiledBy, nil)
			gen.link(phantom, hub, domain.RelKnows, nil)
		}
	}
	gen.stats.Explicit.Phantom = rings
}

func (gen *Generator) collusionRings(rings int) {
	ft := domain.FraudTypeAdjusterCollusion
	for ring := range rings {
		adjuster := fmt.Sprintf("ADJ_FRAUD_AC_%05d_%05d", ring, gen.adjusterSeq)
		gen.adjusterSeq++
		props := fraudAttrs(ft)
		props[domain.PropName] = gen.name()
		props["employee_id"] = fmt.Sprintf("EMP-FRAUD-%d", gen.between(10000, 99999))
		gen.node(adjuster, []string{domain.LabelPerson, domain.LabelAdjuster}, props)

		provider := fmt.Sprintf("MED_FRAUD_AC_%05d_%05d", ring, gen.providerSeq)
		gen.providerSeq++
		gen.medicalProvider(provider, fmt.Sprintf("Collusion Medical Center %d", ring), "MED-FRAUD", fraudAttrs(ft))
		gen.link(adjuster, provider, domain.RelColludesWith, domain.Attrs{
			"kickback_pct": math.Round((5+gen.rng.Float64()*10)*10) / 10,
		})

		for i := range gen.between(6, 10) {
			c := gen.claim(claimSpec{
				name:      fmt.Sprintf("Adjuster Collusion Claim %d-%d", ring, i),
				claimType: domain.ClaimTypeMedical,
				amount:    gen.amount(12000, 40000),
				date:      gen.date(100, 0),
				fraudType: ft,
				adjuster:  adjuster,
			})
			gen.link(c, gen.claimant(gen.nextPersonID(), ""), domain.RelFiledBy, nil)
			gen.link(c, provider, domain.RelTreatedAt, nil)
		}
	}
	gen.stats.Explicit.AdjusterCollusion = rings
}

// Implicit patterns are unlabeled and sized against the default thresholds:
// tier 1 sits at or below them, tier 2 just above, tier 3 well above.

type tierShape struct {
	minSize, maxSize int
	label            string
}

func (gen *Generator) implicitPatterns(cfg ImplicitTiers) {
	gen.implicitMedicalMills(cfg.MedicalMill)
	gen.implicitKickbacks(cfg.Kickback)
	gen.implicitStaged(cfg.Staged)
	gen.implicitPhantoms(cfg.Phantom)
	gen.implicitCollusion(cfg.AdjusterCollusion)
}

func (gen *Generator) eachTier(t Tiers, fn func(tier, count int)) {
	for tier, count := range []int{t.Tier1, t.Tier2, t.Tier3} {
		fn(tier+1, count)
	}
}

func (gen *Generator) recordTier(tier int, set func(*PatternCounts, int), count int) {
	switch tier {
	case 1:
		set(&gen.stats.Implicit.Tier1, count)
	case 2:
		set(&gen.stats.Implicit.Tier2, count)
	case 3:
		set(&gen.stats.Implicit.Tier3, count)
	}
}

var millTiers = map[int]struct {
	shape  tierShape
	lo, hi float64
}{
	1: {tierShape{3, 4, "Community Health Clinic"}, 12000, 18000},
	2: {tierShape{5, 7, "Regional Medical Group"}, 18000, 28000},
	3: {tierShape{8, 12, "Specialty Treatment Center"}, 28000, 45000},
}

func (gen *Generator) implicitMedicalMills(t Tiers) {
	gen.eachTier(t, func(tier, count int) {
		spec := millTiers[tier]
		for i := range count {
			provider := fmt.Sprintf("MED_IMP_T%d_%05d_%05d", tier, i, gen.providerSeq)
			gen.providerSeq++
			gen.medicalProvider(provider, fmt.Sprintf("%s %d", spec.shape.label, i), "MED-LIC", nil)
			for range gen.between(spec.shape.minSize, spec.shape.maxSize) {
				gen.medicalClaim(provider, spec.lo, spec.hi)
			}
		}
		gen.recordTier(tier, func(c *PatternCounts, n int) { c.MedicalMill = n }, count)
	})
}

func (gen *Generator) medicalClaim(provider string, lo, hi float64) {
	c := gen.claim(claimSpec{
		name:      "Medical Claim {id}",
		claimType: domain.ClaimTypeMedical,
		amount:    gen.amount(lo, hi),
		date:      gen.date(90, 0),
		adjuster:  gen.pick(gen.adjusters),
	})
	gen.link(c, gen.claimant(gen.nextPersonID(), ""), domain.RelFiledBy, nil)
	gen.link(c, provider, domain.RelTreatedAt, nil)
}

var kickbackTiers = map[int]tierShape{
	1: {2, 2, "Quick Fix Auto"},
	2: {3, 4, "Premier Auto Body"},
	3: {5, 8, "Discount Collision Center"},
}

func (gen *Generator) implicitKickbacks(t Tiers) {
	gen.eachTier(t, func(tier, count int) {
		shape := kickbackTiers[tier]
		for i := range count {
			attorney := fmt.Sprintf("ATT_IMP_T%d_%05d_%05d", tier, i, gen.attorneySeq)
			gen.attorneySeq++
			gen.attorney(attorney, "BAR", nil)

			shop := fmt.Sprintf("BS_IMP_T%d_%05d_%05d", tier, i, gen.bodyshopSeq)
			gen.bodyshopSeq++
			gen.bodyshop(shop, fmt.Sprintf("%s %d", shape.label, i), "BS-LIC", nil)

			for range gen.between(shape.minSize, shape.maxSize) {
				gen.autoClaim(attorney, shop)
			}
		}
		gen.recordTier(tier, func(c *PatternCounts, n int) { c.Kickback = n }, count)
	})
}

func (gen *Generator) autoClaim(attorney, shop string) {
	c := gen.claim(claimSpec{
		name:      "Auto Claim {id}",
		claimType: domain.ClaimTypeAuto,
		amount:    gen.amount(8000, 25000),
		date:      gen.date(120, 0),
		adjuster:  gen.pick(gen.adjusters),
	})
	gen.link(c, gen.claimant(gen.nextPersonID(), ""), domain.RelFiledBy, nil)
	gen.link(c, attorney, domain.RelRepresentedBy, nil)
	gen.link(c, shop, domain.RelRepairedAt, nil)
}

// conspirators per tier, then shared claims per tier
var stagedTiers = map[int][2]tierShape{
	1: {{2, 3, ""}, {2, 2, ""}},
	2: {{3, 4, ""}, {3, 4, ""}},
	3: {{4, 5, ""}, {5, 6, ""}},
}

func (gen *Generator) implicitStaged(t Tiers) {
	gen.eachTier(t, func(tier, count int) {
		shape := stagedTiers[tier]
		for range count {
			var people []string
			for range gen.between(shape[0].minSize, shape[0].maxSize) {
				people = append(people, gen.claimant(gen.nextPersonID(), ""))
			}
			for range gen.between(shape[1].minSize, shape[1].maxSize) {
				c := gen.claim(claimSpec{
					name:      "Auto Accident Claim {id}",
					claimType: domain.ClaimTypeAuto,
					amount:    gen.amount(10000, 35000),
					date:      gen.date(180, 30),
					adjuster:  gen.pick(gen.adjusters),
				})
				gen.participants(c, gen.sample(people, gen.between(2, len(people))))
			}
		}
		gen.recordTier(tier, func(c *PatternCounts, n int) { c.Staged = n }, count)
	})
}

var phantomTiers = map[int]tierShape{
	1: {2, 2, ""},
	2: {3, 4, ""},
	3: {5, 7, ""},
}

// implicitPhantoms uses the same shape as phantomRings: the hub files one
// claim per phantom and the phantoms file none.
func (gen *Generator) implicitPhantoms(t Tiers) {
	gen.eachTier(t, func(tier, count int) {
		shape := phantomTiers[tier]
		for range count {
			hub := gen.claimant(gen.nextPersonID(), "")
			for range gen.between(shape.minSize, shape.maxSize) {
				phantom := gen.claimant(gen.nextPersonID(), "")
				c := gen.claim(claimSpec{
					name:      "Auto Claim {id}",
					claimType: domain.ClaimTypeAuto,
					amount:    gen.amount(8000, 28000),
					date:      gen.date(150, 20),
					adjuster:  gen.pick(gen.adjusters),
				})
				gen.link(c, hub, domain.RelFiledBy, nil)
				gen.link(phantom, hub, domain.RelKnows, nil)
			}
		}
		gen.recordTier(tier, func(c *PatternCounts, n int) { c.Phantom = n }, count)
	})
}

var collusionTiers = map[int]tierShape{
	1: {3, 3, "Neighborhood Clinic"},
	2: {4, 5, "Metro Health Services"},
	3: {6, 8, "Premium Care Institute"},
}

func (gen *Generator) implicitCollusion(t Tiers) {
	gen.eachTier(t, func(tier, count int) {
		shape := collusionTiers[tier]
		for i := range count {
			adjuster := fmt.Sprintf("ADJ_IMP_T%d_%05d_%05d", tier, i, gen.adjusterSeq)
			gen.adjusterSeq++
			gen.node(adjuster, []string{domain.LabelPerson, domain.LabelAdjuster}, domain.Attrs{
				domain.PropName: gen.name(),
				"employee_id":   fmt.Sprintf("EMP-%05d", gen.adjusterSeq),
			})

			provider := fmt.Sprintf("MED_IMP_AC_T%d_%05d_%05d", tier, i, gen.providerSeq)
			gen.providerSeq++
			gen.medicalProvider(provider, fmt.Sprintf("%s %d", shape.label, i), "MED-LIC", nil)

			for range gen.between(shape.minSize, shape.maxSize) {
				c := gen.claim(claimSpec{
					name:      "Medical Claim {id}",
					claimType: domain.ClaimTypeMedical,
					amount:    gen.amount(10000, 35000),
					date:      gen.date(120, 0),
					adjuster:  adjuster,
				})
				gen.link(c, gen.claimant(gen.nextPersonID(), ""), domain.RelFiledBy, nil)
				gen.link(c, provider, domain.RelTreatedAt, nil)
			}
		}
		gen.recordTier(tier, func(c *PatternCounts, n int) { c.AdjusterCollusion = n }, count)
	})
}

// Near-miss patterns look like fraud at low thresholds but are legitimate.

func (gen *Generator) highVolumeProviders(count int) {
	for i := range count {
		provider := fmt.Sprintf("MED_LEGIT_%05d_%05d", i, gen.providerSeq)
		gen.providerSeq++
		gen.medicalProvider(provider, highVolumeProviderNames[i%len(highVolumeProviderNames)], "MED-LIC",
			domain.Attrs{"legitimate_high_volume": true})
		for range gen.between(4, 5) {
			gen.medicalClaim(provider, 5000, 15000)
		}
	}
	gen.stats.NearMiss.HighVolumeProviders = count
}

func (gen *Generator) repeatReferrals(count int) {
	for i := range count {
		attorney := fmt.Sprintf("ATT_LEGIT_%05d_%05d", i, gen.attorneySeq)
		gen.attorneySeq++
		gen.attorney(attorney, "BAR", domain.Attrs{"specialty": "Auto Accidents", "legitimate_referrals": true})

		shop := fmt.Sprintf("BS_LEGIT_%05d_%05d", i, gen.bodyshopSeq)
		gen.bodyshopSeq++
		gen.bodyshop(shop, fmt.Sprintf("Certified Collision Experts %d", i), "BS-LIC", domain.Attrs{"certified": true})

		for range 2 {
			gen.autoClaim(attorney, shop)
		}
	}
	gen.stats.NearMiss.RepeatReferrals = count
}

func (gen *Generator) repeatWitnesses(count int) {
	for i := range count {
		rel := relationships[i%len(relationships)]

		first := gen.nextPersonID()
		firstName := gen.name()
		second := gen.nextPersonID()
		secondName := gen.name()
		if rel == "family" {
			secondName = strings.Fields(secondName)[0] + " " + strings.Fields(firstName)[1]
		}
		for _, p := range []struct{ id, name string }{{first, firstName}, {second, secondName}} {
			gen.node(p.id, []string{domain.LabelPerson, domain.LabelClaimant}, domain.Attrs{
				domain.PropName:           p.name,
				"ssn":                     gen.ssn(),
				"phone":                   gen.phone(),
				"legitimate_relationship": rel,
			})
		}

		for range 2 {
			c := gen.claim(claimSpec{
				name:      "Legitimate Shared Claim {id}",
				claimType: domain.ClaimTypeAuto,
				amount:    gen.amount(5000, 20000),
				date:      gen.date(200, 30),
				adjuster:  gen.pick(gen.adjusters),
			})
			gen.g.Nodes[c].Props["legitimate_shared_claim"] = true
			gen.link(c, first, domain.RelFiledBy, nil)
			gen.link(c, second, domain.RelWitnessedBy, nil)
		}
	}
	gen.stats.NearMiss.RepeatWitnesses = count
}
