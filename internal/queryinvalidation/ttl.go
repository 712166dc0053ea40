package queryinvalidation

import "time"

// RiskTier is a coarse classification of a wallet's current risk state, used
// only to scale cache lifetimes for its derived views.
type RiskTier string

const (
	RiskTierCritical RiskTier = "critical"
	RiskTierUrgent   RiskTier = "urgent"
	RiskTierRoutine  RiskTier = "routine"
	RiskTierHealthy  RiskTier = "healthy"
)

// Score thresholds separating the risk tiers. Scores are on a 0-100 scale
// where higher means riskier.
const (
	criticalScoreThreshold = 90
	urgentScoreThreshold   = 70
	routineScoreThreshold  = 40
)

// Cache lifetimes per tier. Critical and urgent states refresh within seconds
// so the UI reacts quickly; routine and healthy states hold for about a minute.
const (
	criticalCacheTTL = 5 * time.Second
	urgentCacheTTL   = 20 * time.Second
	routineCacheTTL  = time.Minute
	healthyCacheTTL  = time.Minute
)

// ClassifyRisk maps the worst (highest) per-network risk score of a wallet to
// a RiskTier. An empty score map classifies as healthy.
func ClassifyRisk(scores map[string]float64) RiskTier {
	worst := 0.0
	for _, score := range scores {
		if score > worst {
			worst = score
		}
	}

	switch {
	case worst >= criticalScoreThreshold:
		return RiskTierCritical
	case worst >= urgentScoreThreshold:
		return RiskTierUrgent
	case worst >= routineScoreThreshold:
		return RiskTierRoutine
	default:
		return RiskTierHealthy
	}
}

// CacheTTL returns how long the consuming cache layer should keep a wallet's
// derived views for the given risk tier. This is policy only: enforcement
// belongs to the cache layer, not to the invalidation mapper.
func CacheTTL(tier RiskTier) time.Duration {
	switch tier {
	case RiskTierCritical:
		return criticalCacheTTL
	case RiskTierUrgent:
		return urgentCacheTTL
	case RiskTierRoutine:
		return routineCacheTTL
	default:
		return healthyCacheTTL
	}
}
