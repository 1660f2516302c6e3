// Package forecast implements the campaign forecasting and scenario engine:
// metric derivation, day-by-day scenario projection, success scoring, risk
// assessment, and rule-based recommendations. Every function is a pure
// computation over a campaign snapshot and an explicit evaluation instant;
// the package performs no I/O and holds no mutable state, so results are
// reproducible and safe to compute concurrently.
package forecast

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/donorpulse/internal/model"
)

// ErrInvalidCampaignWindow is returned when a campaign's end date is not
// strictly after its start date.
var ErrInvalidCampaignWindow = eris.New("campaign end date must be after start date")

// ComputePrediction runs the full pipeline for one campaign at one instant:
// metrics, the three named forecasts, success probability, risk factors,
// recommendations, and cost analysis when marketing spend is recorded.
// Calling it twice with identical arguments returns identical output.
func ComputePrediction(c model.Campaign, now time.Time) (*model.PredictionModel, error) {
	if !c.ValidWindow() {
		return nil, eris.Wrapf(ErrInvalidCampaignWindow, "campaign %s", c.ID)
	}

	metrics := CalculateMetrics(c, now)

	conservative := GenerateForecast(c, metrics, model.ScenarioConservative, now)
	realistic := GenerateForecast(c, metrics, model.ScenarioRealistic, now)
	optimistic := GenerateForecast(c, metrics, model.ScenarioOptimistic, now)

	probability := SuccessProbability(metrics, c)

	return &model.PredictionModel{
		Campaign:           c,
		Metrics:            metrics,
		Conservative:       conservative,
		Realistic:          realistic,
		Optimistic:         optimistic,
		SuccessProbability: probability,
		RiskFactors:        AssessRisks(metrics, c),
		Recommendations:    Recommend(metrics, c, probability),
		CostAnalysis:       AnalyzeCost(c, realistic),
		GeneratedAt:        now,
	}, nil
}

// WhatIfForCampaign validates the window, derives fresh metrics, and runs the
// what-if projection in one call. It is the entry point used by the API and
// CLI surfaces, which hold a campaign rather than precomputed metrics.
func WhatIfForCampaign(c model.Campaign, scenario model.WhatIfScenario, now time.Time) (model.ForecastResult, error) {
	if !c.ValidWindow() {
		return model.ForecastResult{}, eris.Wrapf(ErrInvalidCampaignWindow, "campaign %s", c.ID)
	}
	return ComputeWhatIf(CalculateMetrics(c, now), c, scenario, now), nil
}
