package model

import "time"

// Scenario names one of the three built-in forecast modes. Each carries fixed
// velocity/volatility/confidence constants in the engine.
type Scenario string

const (
	ScenarioConservative Scenario = "conservative"
	ScenarioRealistic    Scenario = "realistic"
	ScenarioOptimistic   Scenario = "optimistic"
)

// CurrentMetrics holds the performance metrics derived from a campaign
// snapshot at a single evaluation instant. All values are computed once and
// never mutated.
type CurrentMetrics struct {
	ProgressPercentage float64 `json:"progress_percentage"`
	DaysElapsed        int     `json:"days_elapsed"`
	DaysRemaining      int     `json:"days_remaining"`
	TotalDays          int     `json:"total_days"`
	DailyVelocity      float64 `json:"daily_velocity"`
	Efficiency         float64 `json:"efficiency"`
	DonorGrowthRate    float64 `json:"donor_growth_rate"`
}

// TimelineDataPoint is one day of a projected timeline. Projected is the
// day's increment, Cumulative the running total, both rounded to whole
// dollars. Confidence is a whole percentage in [0, 100].
type TimelineDataPoint struct {
	Date       time.Time `json:"date"`
	Day        int       `json:"day"`
	Projected  float64   `json:"projected"`
	Cumulative float64   `json:"cumulative"`
	Confidence float64   `json:"confidence"`
}

// ForecastResult is a single scenario projection. ProjectedTotal is capped at
// 1.5x the campaign goal; ConfidenceLevel is the scenario's fixed label-level
// confidence, independent of the per-point confidence curve.
type ForecastResult struct {
	ProjectedTotal          float64             `json:"projected_total"`
	ProjectedCompletionDate *time.Time          `json:"projected_completion_date,omitempty"`
	ConfidenceLevel         float64             `json:"confidence_level"`
	Scenario                string              `json:"scenario"`
	Timeline                []TimelineDataPoint `json:"timeline"`
}

// RiskImpact grades how damaging a risk factor is if it materializes.
type RiskImpact string

const (
	RiskImpactHigh   RiskImpact = "high"
	RiskImpactMedium RiskImpact = "medium"
	RiskImpactLow    RiskImpact = "low"
)

// RiskFactor is a named condition surfaced when a metric crosses a fixed
// threshold.
type RiskFactor struct {
	Factor      string     `json:"factor"`
	Impact      RiskImpact `json:"impact"`
	Probability float64    `json:"probability"`
	Description string     `json:"description"`
	Mitigation  string     `json:"mitigation"`
}

// WhatIfAdjustments are the user-tunable knobs of an ad-hoc scenario. Nil
// means "leave unchanged". DonorGrowthMultiplier and AverageGiftMultiplier
// are accepted but not consumed by any current formula; they are reserved
// for future projection terms.
type WhatIfAdjustments struct {
	DailyVelocityMultiplier *float64 `json:"daily_velocity_multiplier,omitempty"`
	DonorGrowthMultiplier   *float64 `json:"donor_growth_multiplier,omitempty"`
	AverageGiftMultiplier   *float64 `json:"average_gift_multiplier,omitempty"`
	CampaignExtensionDays   *int     `json:"campaign_extension_days,omitempty"`
}

// WhatIfScenario is a user-authored scenario evaluated independently of the
// three built-in modes.
type WhatIfScenario struct {
	Name        string            `json:"name"`
	Adjustments WhatIfAdjustments `json:"adjustments"`
}

// CostAnalysis summarizes marketing spend effectiveness. Present on a
// prediction only when the campaign reports a marketing cost. All ratios are
// zero when their denominator is zero.
type CostAnalysis struct {
	MarketingCost       float64 `json:"marketing_cost"`
	CostPerDollarRaised float64 `json:"cost_per_dollar_raised"`
	CostPerDonor        float64 `json:"cost_per_donor"`
	ProjectedROI        float64 `json:"projected_roi"`
}

// PredictionModel is the full engine output for one (campaign, instant)
// pair: derived metrics, the three named forecasts, the success score, and
// the ordered risk factors and recommendations. GeneratedAt echoes the
// evaluation instant, so identical inputs produce identical output.
type PredictionModel struct {
	Campaign           Campaign       `json:"campaign"`
	Metrics            CurrentMetrics `json:"metrics"`
	Conservative       ForecastResult `json:"conservative"`
	Realistic          ForecastResult `json:"realistic"`
	Optimistic         ForecastResult `json:"optimistic"`
	SuccessProbability float64        `json:"success_probability"`
	RiskFactors        []RiskFactor   `json:"risk_factors"`
	Recommendations    []string       `json:"recommendations"`
	CostAnalysis       *CostAnalysis  `json:"cost_analysis,omitempty"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// Forecast returns the named scenario's result, defaulting to realistic for
// unknown labels.
func (p *PredictionModel) Forecast(s Scenario) ForecastResult {
	switch s {
	case ScenarioConservative:
		return p.Conservative
	case ScenarioOptimistic:
		return p.Optimistic
	default:
		return p.Realistic
	}
}
