package forecast

import "github.com/sells-group/donorpulse/internal/model"

// Rule thresholds. behindPaceEfficiency is shared with the recommendation
// rules so the two surfaces agree on what "behind" means.
const (
	behindPaceEfficiency = 0.8
	timePressureDays     = 14
	timePressureProgress = 90.0
	slowDonorGrowthRate  = 1.0
)

// AssessRisks evaluates each risk rule independently and returns the matched
// factors in rule order. The slice is nil when no rule fires.
func AssessRisks(m model.CurrentMetrics, c model.Campaign) []model.RiskFactor {
	var risks []model.RiskFactor

	if m.Efficiency < behindPaceEfficiency {
		risks = append(risks, model.RiskFactor{
			Factor:      "Below Target Pace",
			Impact:      model.RiskImpactHigh,
			Probability: 0.8,
			Description: "Campaign is significantly behind schedule",
			Mitigation:  "Increase marketing spend or extend timeline",
		})
	}

	if m.DaysRemaining < timePressureDays && m.ProgressPercentage < timePressureProgress {
		risks = append(risks, model.RiskFactor{
			Factor:      "Time Pressure",
			Impact:      model.RiskImpactHigh,
			Probability: 0.9,
			Description: "Limited time remaining to reach goal",
			Mitigation:  "Focus on major donors and urgent appeals",
		})
	}

	if m.DonorGrowthRate < slowDonorGrowthRate {
		risks = append(risks, model.RiskFactor{
			Factor:      "Donor Acquisition",
			Impact:      model.RiskImpactMedium,
			Probability: 0.7,
			Description: "Slow donor growth may limit total reach",
			Mitigation:  "Expand outreach channels and referral programs",
		})
	}

	return risks
}
