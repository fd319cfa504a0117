package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/scoring"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
	"github.com/insurance-graph/fraud-ring-backend/internal/metrics"
)

const dateLayout = "2006-01-02"

// AssessmentRecorder persists assessments; *repository.AssessmentRepository implements it.
type AssessmentRecorder interface {
	CreateOrUpdate(ctx context.Context, a *domain.Assessment) error
}

// ClaimService files new claims and scores the entities around them.
type ClaimService struct {
	store    graphstore.Store
	recorder AssessmentRecorder
	now      func() time.Time
}

// NewClaimService accepts a nil recorder, in which case assessments are not kept.
func NewClaimService(store graphstore.Store, recorder AssessmentRecorder) *ClaimService {
	return &ClaimService{store: store, recorder: recorder, now: time.Now}
}

// Assess scores the given role -> entity id selection against the current graph.
func (s *ClaimService) Assess(ctx context.Context, entities map[string]string) (*domain.Assessment, error) {
	var problems []string
	for role := range entities {
		if domain.RoleLabel(role) == "" {
			problems = append(problems, fmt.Sprintf("unknown role %q", role))
		}
	}
	if len(problems) > 0 {
		slices.Sort(problems)
		return nil, &domain.ValidationError{Problems: problems}
	}

	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	a := scoring.Assess(g, entities)
	metrics.RiskAssessments.WithLabelValues(string(a.Level)).Inc()
	s.record(ctx, a)
	return a, nil
}

// PreviewRisk scores the existing entities of a claim request without filing it.
func (s *ClaimService) PreviewRisk(ctx context.Context, req domain.ClaimRequest) (*domain.Assessment, error) {
	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if problems := checkReferences(g, req); len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}
	a := scoring.Assess(g, req.ExistingEntities())
	metrics.RiskAssessments.WithLabelValues(string(a.Level)).Inc()
	return a, nil
}

// SubmitClaim validates and files an Auto claim, then assesses its entities.
func (s *ClaimService) SubmitClaim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimResult, error) {
	log := logging.NewLogger(ctx)

	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if problems := s.validate(g, req); len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}

	draft := s.draft(req)
	if err := s.store.CreateClaim(ctx, draft); err != nil {
		log.LogError("submit_claim", err)
		return nil, err
	}

	res := &domain.ClaimResult{ClaimID: draft.Claim.ID}
	for _, e := range draft.Edges {
		switch e.Type {
		case domain.RelFiledBy:
			res.ClaimantID = e.To
		case domain.RelWitnessedBy:
			res.WitnessID = e.To
		}
	}

	if g, err = s.store.Snapshot(ctx); err != nil {
		return nil, err
	}
	a := scoring.Assess(g, req.ExistingEntities())
	a.ClaimID = res.ClaimID
	s.record(ctx, a)
	res.Assessment = a

	metrics.ClaimsSubmitted.WithLabelValues(string(a.Level)).Inc()
	metrics.RiskAssessments.WithLabelValues(string(a.Level)).Inc()
	log.LogInfof("submit_claim", "filed %s with risk %s (%d)", res.ClaimID, a.Level, a.Score)
	return res, nil
}

func (s *ClaimService) record(ctx context.Context, a *domain.Assessment) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.CreateOrUpdate(ctx, a); err != nil {
		logging.NewLogger(ctx).LogError("record_assessment", err)
	}
}

func (s *ClaimService) validate(g *domain.Graph, req domain.ClaimRequest) []string {
	var problems []string

	if req.Amount < domain.MinClaimAmount || req.Amount > domain.MaxClaimAmount {
		problems = append(problems, fmt.Sprintf("amount must be between %.0f and %.0f", domain.MinClaimAmount, domain.MaxClaimAmount))
	}

	now := s.now()
	date, err := time.ParseInLocation(dateLayout, req.IncidentDate, now.Location())
	switch {
	case err != nil:
		problems = append(problems, "incident_date must be a YYYY-MM-DD date")
	case date.After(now):
		problems = append(problems, "incident_date cannot be in the future")
	}

	if !slices.Contains(domain.IncidentTypes, req.IncidentType) {
		problems = append(problems, "incident_type must be one of: "+strings.Join(domain.IncidentTypes, ", "))
	}
	if req.AdjusterID == "" {
		problems = append(problems, "adjuster_id is required")
	}
	if req.Claimant.IsEmpty() {
		problems = append(problems, "claimant id or name is required")
	}

	return append(problems, checkReferences(g, req)...)
}

// checkReferences verifies that every referenced existing entity carries the label of its role.
func checkReferences(g *domain.Graph, req domain.ClaimRequest) []string {
	var problems []string
	check := func(field, id string, labels ...string) {
		if id == "" {
			return
		}
		n, ok := g.Nodes[id]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s %s not found", field, id))
			return
		}
		for _, l := range labels {
			if !n.HasLabel(l) {
				problems = append(problems, fmt.Sprintf("%s %s is not a %s", field, id, l))
				return
			}
		}
	}

	check("adjuster", req.AdjusterID, domain.LabelPerson, domain.LabelAdjuster)
	if req.Claimant.Existing() {
		check("claimant", req.Claimant.ID, domain.LabelPerson)
	}
	if req.Witness.Existing() {
		check("witness", req.Witness.ID, domain.LabelPerson)
	}
	check("medical_provider", req.MedicalProviderID, domain.LabelMedicalProvider)
	check("bodyshop", req.BodyShopID, domain.LabelBodyShop)
	check("attorney", req.AttorneyID, domain.LabelAttorney)
	return problems
}

func (s *ClaimService) draft(req domain.ClaimRequest) domain.ClaimDraft {
	now := s.now()
	claimID := fmt.Sprintf("CLM_%s_%s", now.Format("20060102150405"), hexID(6))

	name := strings.TrimSpace(req.Description)
	if name == "" {
		name = fmt.Sprintf("%s - %s", req.IncidentType, req.IncidentDate)
	}

	d := domain.ClaimDraft{
		Claim: &domain.Node{
			ID:     claimID,
			Labels: []string{domain.LabelClaim},
			Props: domain.Attrs{
				domain.PropName:         name,
				domain.PropClaimAmount:  req.Amount,
				domain.PropClaimDate:    req.IncidentDate,
				domain.PropClaimType:    domain.ClaimTypeAuto,
				domain.PropIncidentType: req.IncidentType,
				domain.PropIsFraud:      false,
			},
		},
	}
	link := func(to string, rel domain.RelType) {
		d.Edges = append(d.Edges, &domain.Edge{From: claimID, To: to, Type: rel})
	}

	link(req.AdjusterID, domain.RelHandledBy)

	if req.Claimant.IsNew() {
		p := &domain.Node{
			ID:     "P_" + hexID(8),
			Labels: []string{domain.LabelPerson, domain.LabelClaimant},
			Props:  domain.Attrs{domain.PropName: req.Claimant.Name, "ssn": randomSSN(), "phone": randomPhone()},
		}
		d.NewNodes = append(d.NewNodes, p)
		link(p.ID, domain.RelFiledBy)
	} else {
		link(req.Claimant.ID, domain.RelFiledBy)
	}

	switch {
	case req.Witness.IsNew():
		w := &domain.Node{
			ID:     "P_" + hexID(8),
			Labels: []string{domain.LabelPerson, domain.LabelWitness},
			Props:  domain.Attrs{domain.PropName: req.Witness.Name, "phone": randomPhone()},
		}
		d.NewNodes = append(d.NewNodes, w)
		link(w.ID, domain.RelWitnessedBy)
	case req.Witness.Existing():
		link(req.Witness.ID, domain.RelWitnessedBy)
	}

	if req.MedicalProviderID != "" {
		link(req.MedicalProviderID, domain.RelTreatedAt)
	}
	if req.BodyShopID != "" {
		link(req.BodyShopID, domain.RelRepairedAt)
	}
	if req.AttorneyID != "" {
		link(req.AttorneyID, domain.RelRepresentedBy)
	}
	return d
}

func hexID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func randomSSN() string {
	return fmt.Sprintf("%d-%d-%d", 100+rand.IntN(900), 10+rand.IntN(90), 1000+rand.IntN(9000))
}

func randomPhone() string {
	return fmt.Sprintf("555-%d-%d", 100+rand.IntN(900), 1000+rand.IntN(9000))
}
