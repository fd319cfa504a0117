package scoring

import "github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"

const (
	fraudWeight      = 30
	suspiciousWeight = 15
)

// RiskScore weighs confirmed fraud twice as heavily as detector suspicion.
func RiskScore(fraud, suspicious int) int {
	return min(100, fraud*fraudWeight+suspicious*suspiciousWeight)
}

func Level(score int) domain.RiskLevel {
	switch {
	case score >= 70:
		return domain.RiskHigh
	case score >= 40:
		return domain.RiskMedium
	case score > 0:
		return domain.RiskLow
	default:
		return domain.RiskClean
	}
}

// kindWeight breaks score ties; patterns implicating insiders rank first.
func kindWeight(k domain.FraudKind) int {
	switch k {
	case domain.KindAdjusterCollusion:
		return 25
	case domain.KindMedicalMill:
		return 20
	case domain.KindKickback:
		return 18
	case domain.KindStagedAccident:
		return 16
	case domain.KindPhantomPassenger:
		return 14
	default:
		return 10
	}
}
