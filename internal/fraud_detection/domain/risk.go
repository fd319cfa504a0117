package domain

import "time"

// RiskEntity is a fraud or suspicious node found around an assessed entity.
type RiskEntity struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Labels     []string `json:"labels"`
	Status     Status   `json:"status"`
	FraudType  string   `json:"fraud_type,omitempty"`
	Score      int      `json:"score,omitempty"`
	Connection string   `json:"connection"` // role of the selected entity it was reached from
	Direct     bool     `json:"direct"`
}

type Assessment struct {
	ID              string            `json:"id,omitempty"`
	ClaimID         string            `json:"claim_id,omitempty"`
	Score           int               `json:"score"`
	Level           RiskLevel         `json:"level"`
	FraudCount      int               `json:"fraud_count"`
	SuspiciousCount int               `json:"suspicious_count"`
	Warnings        []string          `json:"warnings"`
	FraudEntities   []RiskEntity      `json:"fraud_entities"`
	Suspicious      []RiskEntity      `json:"suspicious_entities"`
	Entities        map[string]string `json:"entities"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Roles accepted by the assessor, in assessment order.
const (
	RoleClaimant        = "claimant"
	RoleWitness         = "witness"
	RoleAdjuster        = "adjuster"
	RoleMedicalProvider = "medical_provider"
	RoleBodyShop        = "bodyshop"
	RoleAttorney        = "attorney"
)

var Roles = []string{RoleClaimant, RoleWitness, RoleAdjuster, RoleMedicalProvider, RoleBodyShop, RoleAttorney}

// RoleLabel is the graph label an entity chosen for role must carry.
func RoleLabel(role string) string {
	switch role {
	case RoleClaimant:
		return LabelClaimant
	case RoleWitness:
		return LabelWitness
	case RoleAdjuster:
		return LabelAdjuster
	case RoleMedicalProvider:
		return LabelMedicalProvider
	case RoleBodyShop:
		return LabelBodyShop
	case RoleAttorney:
		return LabelAttorney
	default:
		return ""
	}
}
