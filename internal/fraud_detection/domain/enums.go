package domain

const (
	LabelClaim           = "Claim"
	LabelPerson          = "Person"
	LabelClaimant        = "Claimant"
	LabelWitness         = "Witness"
	LabelAdjuster        = "Adjuster"
	LabelMedicalProvider = "MedicalProvider"
	LabelAttorney        = "Attorney"
	LabelBodyShop        = "BodyShop"
)

// IndexedLabels carry an index on id.
var IndexedLabels = []string{LabelClaim, LabelPerson, LabelMedicalProvider, LabelAttorney, LabelBodyShop}

type RelType string

const (
	RelFiledBy        RelType = "FILED_BY"
	RelWitnessedBy    RelType = "WITNESSED_BY"
	RelHandledBy      RelType = "HANDLED_BY"
	RelTreatedAt      RelType = "TREATED_AT"
	RelRepresentedBy  RelType = "REPRESENTED_BY"
	RelRepairedAt     RelType = "REPAIRED_AT"
	RelKnows          RelType = "KNOWS"
	RelRefersTo       RelType = "REFERS_TO"
	RelColludesWith   RelType = "COLLUDES_WITH"
	RelSuspiciousLink RelType = "SUSPICIOUS_RELATIONSHIP"
)

const (
	PropID               = "id"
	PropName             = "name"
	PropIsFraud          = "is_fraud"
	PropFraudType        = "fraud_type"
	PropSuspicious       = "suspicious"
	PropSuspicionType    = "suspicion_type"
	PropSuspicionScore   = "suspicion_score"
	PropDegreeCentrality = "degree_centrality"
	PropClaimAmount      = "claim_amount"
	PropClaimDate        = "claim_date"
	PropClaimType        = "claim_type"
	PropIncidentType     = "incident_type"
	PropSharedClaims     = "shared_claims"
)

const (
	ClaimTypeAuto     = "Auto"
	ClaimTypeProperty = "Property"
	ClaimTypeMedical  = "Medical"
)

// Ground-truth fraud_type values written by the generator.
const (
	FraudTypeMedicalMill       = "Medical Mill"
	FraudTypeBodyShopKickback  = "Body Shop Kickback"
	FraudTypeStagedAccident    = "Staged Accident"
	FraudTypePhantomPassenger  = "Phantom Passenger"
	FraudTypeAdjusterCollusion = "Adjuster-Provider Collusion"
)

var FraudTypes = []string{
	FraudTypeMedicalMill, FraudTypeBodyShopKickback, FraudTypeStagedAccident,
	FraudTypePhantomPassenger, FraudTypeAdjusterCollusion,
}

type Status string

const (
	StatusFraud      Status = "fraud"
	StatusSuspicious Status = "suspicious"
	StatusClean      Status = "clean"
)

type FraudKind string

const (
	KindMedicalMill       FraudKind = "medical_mill"
	KindKickback          FraudKind = "kickback"
	KindStagedAccident    FraudKind = "staged_accident"
	KindPhantomPassenger  FraudKind = "phantom_passenger"
	KindAdjusterCollusion FraudKind = "adjuster_collusion"
)

// RunOrder is the order detectors execute in; later flags overwrite earlier ones.
var RunOrder = []FraudKind{
	KindMedicalMill, KindKickback, KindStagedAccident, KindPhantomPassenger, KindAdjusterCollusion,
}

// SuspicionType is the suspicion_type written on flagged nodes.
func (k FraudKind) SuspicionType() string {
	switch k {
	case KindMedicalMill:
		return "Medical Mill"
	case KindKickback:
		return "Kickback Scheme"
	case KindStagedAccident:
		return "Staged Accident"
	case KindPhantomPassenger:
		return "Phantom Passenger"
	case KindAdjusterCollusion:
		return "Adjuster-Provider Collusion"
	default:
		return string(k)
	}
}

type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
	RiskClean  RiskLevel = "CLEAN"
)
