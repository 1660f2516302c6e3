package forecast

import "github.com/sells-group/donorpulse/internal/model"

// scenarioParams are the fixed tuning constants for one named scenario.
// Velocity and volatility both scale the projection and deliberately stack,
// so the optimistic total runs well ahead of the velocity multiplier alone.
// The confidence level is a presentation label, not a statistical interval,
// and runs inverse to optimism.
type scenarioParams struct {
	velocityMultiplier float64
	volatilityFactor   float64
	confidenceLevel    float64
}

var scenarios = map[model.Scenario]scenarioParams{
	model.ScenarioConservative: {velocityMultiplier: 0.8, volatilityFactor: 0.8, confidenceLevel: 85},
	model.ScenarioRealistic:    {velocityMultiplier: 1.0, volatilityFactor: 1.0, confidenceLevel: 75},
	model.ScenarioOptimistic:   {velocityMultiplier: 1.3, volatilityFactor: 1.2, confidenceLevel: 65},
}

// Scenarios lists the built-in scenario names in presentation order.
func Scenarios() []model.Scenario {
	return []model.Scenario{
		model.ScenarioConservative,
		model.ScenarioRealistic,
		model.ScenarioOptimistic,
	}
}
