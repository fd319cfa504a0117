package rules

import (
	"fmt"
	"testing"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builder struct {
	g      *domain.Graph
	claims int
}

func newBuilder() *builder {
	return &builder{g: domain.NewGraph()}
}

func (b *builder) node(id string, labels ...string) *domain.Node {
	n := &domain.Node{ID: id, Labels: labels, Props: domain.Attrs{"id": id, "name": "name-" + id}}
	b.g.AddNode(n)
	return n
}

func (b *builder) claim(amount float64, claimType string, links map[domain.RelType][]string) string {
	b.claims++
	id := fmt.Sprintf("CLM_%05d", b.claims)
	n := b.node(id, domain.LabelClaim)
	n.Props[domain.PropClaimAmount] = amount
	n.Props[domain.PropClaimType] = claimType
	n.Props[domain.PropIsFraud] = false
	for rel, targets := range links {
		for _, t := range targets {
			b.g.AddEdge(&domain.Edge{From: id, To: t, Type: rel})
		}
	}
	return id
}

func (b *builder) link(from, to string, rel domain.RelType) {
	b.g.AddEdge(&domain.Edge{From: from, To: to, Type: rel})
}

func defaults() domain.Thresholds { return domain.DefaultThresholds() }

func TestRegistry_RunOrder(t *testing.T) {
	var names []string
	for _, d := range detection.All() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{
		"medical_mill", "kickback", "staged_accident", "phantom_passenger", "adjuster_collusion",
	}, names)
}

func TestMedicalMill(t *testing.T) {
	b := newBuilder()
	b.node("MED_1", domain.LabelMedicalProvider)
	b.node("MED_2", domain.LabelMedicalProvider)
	b.node("MED_3", domain.LabelMedicalProvider)
	b.node("MED_4", domain.LabelMedicalProvider)

	for i := 0; i < 5; i++ {
		b.claim(20000, domain.ClaimTypeMedical, map[domain.RelType][]string{domain.RelTreatedAt: {"MED_1"}})
		// average exactly at the threshold is not enough
		b.claim(15000, domain.ClaimTypeMedical, map[domain.RelType][]string{domain.RelTreatedAt: {"MED_2"}})
	}
	for i := 0; i < 4; i++ {
		b.claim(40000, domain.ClaimTypeMedical, map[domain.RelType][]string{domain.RelTreatedAt: {"MED_3"}})
		b.claim(30000, domain.ClaimTypeMedical, map[domain.RelType][]string{domain.RelTreatedAt: {"MED_4"}})
	}
	fraud := b.claim(30000, domain.ClaimTypeMedical, map[domain.RelType][]string{domain.RelTreatedAt: {"MED_4"}})
	b.g.Nodes[fraud].Props[domain.PropIsFraud] = true

	findings, err := medicalMill{}.Detect(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, []string{"MED_1"}, f.Entities)
	assert.Len(t, f.Claims, 5)
	assert.Equal(t, 60, f.Score) // 5*8 + 20
	assert.Equal(t, 48, f.ClaimScore())
	assert.Equal(t, "Medical Mill", f.SuspicionType)
	assert.Equal(t, 20000.0, f.Evidence["avg_amount"])
}

func TestMedicalMill_ScoreCapped(t *testing.T) {
	b := newBuilder()
	b.node("MED_1", domain.LabelMedicalProvider)
	for i := 0; i < 12; i++ {
		b.claim(45000, domain.ClaimTypeMedical, map[domain.RelType][]string{domain.RelTreatedAt: {"MED_1"}})
	}

	findings, err := medicalMill{}.Detect(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 100, findings[0].Score)
}

func TestKickback(t *testing.T) {
	b := newBuilder()
	b.node("ATT_1", domain.LabelAttorney)
	b.node("ATT_2", domain.LabelAttorney)
	b.node("BS_1", domain.LabelBodyShop)
	for i := 0; i < 3; i++ {
		b.claim(8000, domain.ClaimTypeAuto, map[domain.RelType][]string{
			domain.RelRepresentedBy: {"ATT_1"},
			domain.RelRepairedAt:    {"BS_1"},
		})
	}
	for i := 0; i < 2; i++ {
		b.claim(8000, domain.ClaimTypeAuto, map[domain.RelType][]string{
			domain.RelRepresentedBy: {"ATT_2"},
			domain.RelRepairedAt:    {"BS_1"},
		})
	}

	findings, err := kickback{}.Detect(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"ATT_1", "BS_1"}, findings[0].Entities)
	assert.Equal(t, 45, findings[0].Score)
	assert.Equal(t, "Kickback Scheme", findings[0].SuspicionType)

	w := detection.BuildWrite(b.g, findings)
	require.Len(t, w.Links, 1)
	assert.Equal(t, domain.SuspiciousLink{From: "ATT_1", To: "BS_1", SharedClaims: 3}, w.Links[0])
}

func TestStagedAccident(t *testing.T) {
	b := newBuilder()
	for _, id := range []string{"P_1", "P_2", "P_3", "P_4"} {
		b.node(id, domain.LabelPerson, domain.LabelClaimant)
	}
	b.claim(9000, domain.ClaimTypeAuto, map[domain.RelType][]string{
		domain.RelFiledBy:     {"P_1"},
		domain.RelWitnessedBy: {"P_2"},
	})
	b.claim(9000, domain.ClaimTypeAuto, map[domain.RelType][]string{
		domain.RelFiledBy:     {"P_2"},
		domain.RelWitnessedBy: {"P_1"},
	})
	// non-auto claims never count
	b.claim(9000, domain.ClaimTypeProperty, map[domain.RelType][]string{
		domain.RelFiledBy:     {"P_3"},
		domain.RelWitnessedBy: {"P_4"},
	})
	b.claim(9000, domain.ClaimTypeProperty, map[domain.RelType][]string{
		domain.RelFiledBy:     {"P_4"},
		domain.RelWitnessedBy: {"P_3"},
	})

	findings, err := stagedAccident{}.Detect(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"P_1", "P_2"}, findings[0].Entities)
	assert.Equal(t, 50, findings[0].Score)
}

func TestStagedAccident_SingleSharedClaimNeverFlagged(t *testing.T) {
	b := newBuilder()
	b.node("P_1", domain.LabelPerson, domain.LabelClaimant)
	b.node("P_2", domain.LabelPerson, domain.LabelWitness)
	b.claim(9000, domain.ClaimTypeAuto, map[domain.RelType][]string{
		domain.RelFiledBy:     {"P_1"},
		domain.RelWitnessedBy: {"P_2"},
	})

	th := defaults()
	th.MinStagedClaims = 1
	findings, err := stagedAccident{}.Detect(b.g, th)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestStagedAccident_SharedCountAcrossThreeClaims(t *testing.T) {
	b := newBuilder()
	b.node("P_1", domain.LabelPerson, domain.LabelClaimant)
	b.node("P_2", domain.LabelPerson, domain.LabelWitness)
	for i := 0; i < 3; i++ {
		b.claim(9000, domain.ClaimTypeAuto, map[domain.RelType][]string{
			domain.RelFiledBy:     {"P_1"},
			domain.RelWitnessedBy: {"P_2"},
		})
	}

	findings, err := stagedAccident{}.Detect(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 4, findings[0].Evidence["shared_claims"]) // 2*(3-1)
	assert.Equal(t, 100, findings[0].Score)
	assert.Len(t, findings[0].Claims, 3)

	// the pair clears a threshold of 4, but each person needs 4 claims of their own
	th := defaults()
	th.MinStagedClaims = 4
	findings, err = stagedAccident{}.Detect(b.g, th)
	require.NoError(t, err)
	assert.Empty(t, findings)

	b.claim(9000, domain.ClaimTypeAuto, map[domain.RelType][]string{domain.RelFiledBy: {"P_1"}})
	b.claim(9000, domain.ClaimTypeAuto, map[domain.RelType][]string{domain.RelFiledBy: {"P_2"}})
	findings, err = stagedAccident{}.Detect(b.g, th)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"P_1", "P_2"}, findings[0].Entities)
	assert.Len(t, findings[0].Claims, 3)
}

func TestStagedAccident_RowCap(t *testing.T) {
	b := newBuilder()
	for i := 0; i < 30; i++ {
		a, w := fmt.Sprintf("P_%02d_A", i), fmt.Sprintf("P_%02d_B", i)
		b.node(a, domain.LabelPerson, domain.LabelClaimant)
		b.node(w, domain.LabelPerson, domain.LabelWitness)
		for range 2 {
			b.claim(9000, domain.ClaimTypeAuto, map[domain.RelType][]string{
				domain.RelFiledBy:     {a},
				domain.RelWitnessedBy: {w},
			})
		}
	}

	findings, err := stagedAccident{}.Detect(b.g, defaults())
	require.NoError(t, err)
	// both members qualify, so every pair takes two of the 50 rows
	require.Len(t, findings, 25)
	assert.Equal(t, []string{"P_00_A", "P_00_B"}, findings[0].Entities)
	assert.Equal(t, []string{"P_24_A", "P_24_B"}, findings[24].Entities)
}

func TestPhantomPassenger(t *testing.T) {
	b := newBuilder()
	b.node("HUB", domain.LabelPerson, domain.LabelClaimant)
	b.node("LONE", domain.LabelPerson, domain.LabelClaimant)
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("PH_%d", i)
		b.node(id, domain.LabelPerson, domain.LabelClaimant)
		if i%2 == 0 {
			b.link("HUB", id, domain.RelKnows)
		} else {
			b.link(id, "HUB", domain.RelKnows)
		}
		b.link(id, "LONE", domain.RelKnows)
		b.claim(7000, domain.ClaimTypeAuto, map[domain.RelType][]string{domain.RelFiledBy: {"HUB"}})
	}
	// LONE is known by three claimants but files only two claims
	b.claim(7000, domain.ClaimTypeAuto, map[domain.RelType][]string{domain.RelFiledBy: {"LONE"}})
	b.claim(7000, domain.ClaimTypeAuto, map[domain.RelType][]string{domain.RelFiledBy: {"LONE"}})

	findings, err := phantomPassenger{}.Detect(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"HUB"}, findings[0].Entities)
	assert.Equal(t, 60, findings[0].Score)
	assert.Len(t, findings[0].Claims, 3)
}

func TestPhantomPassenger_FraudClaimantsIgnored(t *testing.T) {
	b := newBuilder()
	b.node("HUB", domain.LabelPerson, domain.LabelClaimant)
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("PH_%d", i)
		n := b.node(id, domain.LabelPerson, domain.LabelClaimant)
		n.Props[domain.PropIsFraud] = i == 1
		b.link(id, "HUB", domain.RelKnows)
		b.claim(7000, domain.ClaimTypeAuto, map[domain.RelType][]string{domain.RelFiledBy: {"HUB"}})
	}

	findings, err := phantomPassenger{}.Detect(b.g, defaults())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAdjusterCollusion(t *testing.T) {
	b := newBuilder()
	b.node("ADJ_1", domain.LabelPerson, domain.LabelAdjuster)
	b.node("MED_1", domain.LabelMedicalProvider)
	for i := 0; i < 4; i++ {
		b.claim(6000, domain.ClaimTypeMedical, map[domain.RelType][]string{
			domain.RelHandledBy: {"ADJ_1"},
			domain.RelTreatedAt: {"MED_1"},
		})
	}

	findings, err := adjusterCollusion{}.Detect(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"ADJ_1", "MED_1"}, findings[0].Entities)
	assert.Equal(t, 48, findings[0].Score)
	assert.Equal(t, "Adjuster-Provider Collusion", findings[0].SuspicionType)
}

func TestRunAll_LaterDetectorWins(t *testing.T) {
	b := newBuilder()
	b.node("ADJ_1", domain.LabelPerson, domain.LabelAdjuster)
	b.node("MED_1", domain.LabelMedicalProvider)
	for i := 0; i < 5; i++ {
		b.claim(20000, domain.ClaimTypeMedical, map[domain.RelType][]string{
			domain.RelHandledBy: {"ADJ_1"},
			domain.RelTreatedAt: {"MED_1"},
		})
	}

	findings, err := detection.RunAll(b.g, defaults())
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, domain.KindMedicalMill, findings[0].Kind)
	assert.Equal(t, domain.KindAdjusterCollusion, findings[1].Kind)

	w := detection.BuildWrite(b.g, findings)
	flags := map[string]domain.Flag{}
	for _, f := range w.Flags {
		flags[f.NodeID] = f
	}
	assert.Equal(t, "Adjuster-Provider Collusion", flags["MED_1"].SuspicionType)
	assert.Equal(t, 60, flags["MED_1"].Score)
	assert.Equal(t, 48, flags["CLM_00001"].Score) // int(60 * 0.8)
}

func TestBuildWrite_NeverFlagsFraud(t *testing.T) {
	b := newBuilder()
	med := b.node("MED_1", domain.LabelMedicalProvider)
	med.Props[domain.PropIsFraud] = true
	findings := []domain.Finding{{
		Kind:          domain.KindMedicalMill,
		SuspicionType: "Medical Mill",
		Score:         70,
		Entities:      []string{"MED_1", "MISSING"},
	}}

	w := detection.BuildWrite(b.g, findings)
	assert.Empty(t, w.Flags)
}

func TestRunAll_InvalidThresholds(t *testing.T) {
	th := defaults()
	th.MinConnections = 0

	_, err := detection.RunAll(domain.NewGraph(), th)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
}

func TestBuildWrite_LastFindingWins(t *testing.T) {
	b := newBuilder()
	b.node("ATT_1", domain.LabelAttorney)
	b.node("ATT_2", domain.LabelAttorney)
	b.node("BS_1", domain.LabelBodyShop)
	b.node("P_1", domain.LabelPerson, domain.LabelClaimant)
	b.node("P_2", domain.LabelPerson, domain.LabelClaimant)
	b.node("P_3", domain.LabelPerson, domain.LabelWitness)
	shared := b.claim(9000, domain.ClaimTypeAuto, nil)
	other := b.claim(9000, domain.ClaimTypeAuto, nil)

	kb := domain.KindKickback
	st := domain.KindStagedAccident
	findings := []domain.Finding{
		{Kind: kb, SuspicionType: kb.SuspicionType(), Score: 60, Entities: []string{"ATT_1", "BS_1"}},
		{Kind: kb, SuspicionType: kb.SuspicionType(), Score: 45, Entities: []string{"ATT_2", "BS_1"}},
		{Kind: st, SuspicionType: st.SuspicionType(), Score: 100, Entities: []string{"P_1", "P_3"}, Claims: []string{shared}},
		{Kind: st, SuspicionType: st.SuspicionType(), Score: 50, Entities: []string{"P_2", "P_3"}, Claims: []string{shared, other}},
	}

	w := detection.BuildWrite(b.g, findings)
	flags := map[string]domain.Flag{}
	for _, f := range w.Flags {
		flags[f.NodeID] = f
	}
	assert.Equal(t, 45, flags["BS_1"].Score, "later pair overwrites the body shop")
	assert.Equal(t, 60, flags["ATT_1"].Score)
	assert.Equal(t, 50, flags["P_3"].Score, "people take the last pair's score")
	assert.Equal(t, 80, flags[shared].Score, "staged claims keep the first pair's score")
	assert.Equal(t, 40, flags[other].Score)
	assert.Len(t, w.Links, 2)
}
