package forecast

import (
	"math"
	"time"

	"github.com/sells-group/donorpulse/internal/model"
)

const (
	// maxHorizonDays bounds every projected timeline regardless of how much
	// campaign remains.
	maxHorizonDays = 90

	// projectionCapFactor caps every monetary projection at a multiple of
	// the campaign goal.
	projectionCapFactor = 1.5

	// Confidence decays from confidenceStart by confidenceDecay per day and
	// never drops below confidenceFloor.
	confidenceStart = 95.0
	confidenceDecay = 0.5
	confidenceFloor = 60.0
)

// GenerateForecast projects day-by-day cumulative totals for one named
// scenario at the given instant. Unknown scenario names fall back to the
// realistic parameters. The sinusoidal modulation is fixed-phase, so
// identical inputs reproduce the timeline bit for bit.
func GenerateForecast(c model.Campaign, m model.CurrentMetrics, scenario model.Scenario, now time.Time) model.ForecastResult {
	params, ok := scenarios[scenario]
	if !ok {
		scenario = model.ScenarioRealistic
		params = scenarios[scenario]
	}

	maxTotal := c.Goal * projectionCapFactor
	adjustedVelocity := m.DailyVelocity * params.velocityMultiplier
	projectedTotal := math.Min(maxTotal, c.Raised+adjustedVelocity*float64(m.DaysRemaining)*params.volatilityFactor)

	horizon := m.DaysRemaining
	if horizon > maxHorizonDays {
		horizon = maxHorizonDays
	}

	timeline := make([]model.TimelineDataPoint, 0, horizon)
	cumulative := c.Raised
	var completion *time.Time
	for i := 0; i < horizon; i++ {
		dailyGrowth := adjustedVelocity * params.volatilityFactor * (1 + math.Sin(float64(i)*0.1)*0.1)
		cumulative = math.Min(maxTotal, cumulative+dailyGrowth)

		point := model.TimelineDataPoint{
			Date:       now.AddDate(0, 0, i+1),
			Day:        m.DaysElapsed + i + 1,
			Projected:  math.Round(dailyGrowth),
			Cumulative: math.Round(cumulative),
			Confidence: math.Round(math.Max(confidenceFloor, confidenceStart-float64(i)*confidenceDecay)),
		}
		timeline = append(timeline, point)

		if completion == nil && cumulative >= c.Goal {
			d := point.Date
			completion = &d
		}
	}

	if completion == nil {
		if len(timeline) > 0 {
			d := timeline[len(timeline)-1].Date
			completion = &d
		} else {
			d := c.EndDate
			completion = &d
		}
	}

	return model.ForecastResult{
		ProjectedTotal:          projectedTotal,
		ProjectedCompletionDate: completion,
		ConfidenceLevel:         params.confidenceLevel,
		Scenario:                string(scenario),
		Timeline:                timeline,
	}
}
