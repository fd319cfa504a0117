package domain

// IncidentTypes accepted on new claims.
var IncidentTypes = []string{
	"Rear-End Collision",
	"Side Impact",
	"Multi-Vehicle Accident",
	"Single Vehicle Accident",
	"Hit and Run",
	"Parking Lot Incident",
}

const (
	MinClaimAmount = 500.0
	MaxClaimAmount = 100000.0
)

// PartyRef selects an existing person by id or describes a new one by name.
type PartyRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (p *PartyRef) IsNew() bool    { return p != nil && p.ID == "" && p.Name != "" }
func (p *PartyRef) IsEmpty() bool  { return p == nil || (p.ID == "" && p.Name == "") }
func (p *PartyRef) Existing() bool { return p != nil && p.ID != "" }

type ClaimRequest struct {
	Description       string    `json:"description,omitempty"`
	Amount            float64   `json:"amount"`
	IncidentDate      string    `json:"incident_date"` // YYYY-MM-DD
	IncidentType      string    `json:"incident_type"`
	AdjusterID        string    `json:"adjuster_id"`
	Claimant          *PartyRef `json:"claimant"`
	Witness           *PartyRef `json:"witness,omitempty"`
	MedicalProviderID string    `json:"medical_provider_id,omitempty"`
	BodyShopID        string    `json:"bodyshop_id,omitempty"`
	AttorneyID        string    `json:"attorney_id,omitempty"`
}

// ExistingEntities maps assessor roles to the already-stored ids in the request.
func (r ClaimRequest) ExistingEntities() map[string]string {
	out := map[string]string{}
	if r.Claimant.Existing() {
		out[RoleClaimant] = r.Claimant.ID
	}
	if r.Witness.Existing() {
		out[RoleWitness] = r.Witness.ID
	}
	if r.AdjusterID != "" {
		out[RoleAdjuster] = r.AdjusterID
	}
	if r.MedicalProviderID != "" {
		out[RoleMedicalProvider] = r.MedicalProviderID
	}
	if r.BodyShopID != "" {
		out[RoleBodyShop] = r.BodyShopID
	}
	if r.AttorneyID != "" {
		out[RoleAttorney] = r.AttorneyID
	}
	return out
}

type ClaimResult struct {
	ClaimID    string      `json:"claim_id"`
	ClaimantID string      `json:"claimant_id"`
	WitnessID  string      `json:"witness_id,omitempty"`
	Assessment *Assessment `json:"assessment"`
}

// ClaimDraft is the set of writes that files one new claim.
type ClaimDraft struct {
	Claim    *Node
	NewNodes []*Node
	// relationships from the claim to new or existing nodes
	Edges []*Edge
}
