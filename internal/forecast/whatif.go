package forecast

import (
	"math"
	"time"

	"github.com/sells-group/donorpulse/internal/model"
)

// whatIfConfidence is the flat confidence applied to every what-if timeline
// point and to the result as a whole.
const whatIfConfidence = 70.0

// whatIfLabel names results for scenarios submitted without a name.
const whatIfLabel = "what-if"

// ComputeWhatIf applies a user-defined adjustment set to precomputed metrics
// and projects a single alternate timeline at the given instant. Unlike the
// named scenarios there is no volatility or oscillation term: the projection
// is a straight line at the adjusted velocity. A negative extension can
// shrink the remaining window to zero, which yields an empty timeline and no
// completion date.
//
// Only the velocity multiplier and the extension feed the projection today.
// The donor growth and average gift multipliers are accepted for forward
// compatibility with the dashboard sliders and are ignored here.
func ComputeWhatIf(m model.CurrentMetrics, c model.Campaign, scenario model.WhatIfScenario, now time.Time) model.ForecastResult {
	velocityMult := 1.0
	if v := scenario.Adjustments.DailyVelocityMultiplier; v != nil {
		velocityMult = *v
	}
	extension := 0
	if d := scenario.Adjustments.CampaignExtensionDays; d != nil {
		extension = *d
	}

	adjustedVelocity := m.DailyVelocity * velocityMult
	adjustedDaysRemaining := m.DaysRemaining + extension
	if adjustedDaysRemaining < 0 {
		adjustedDaysRemaining = 0
	}

	maxTotal := c.Goal * projectionCapFactor
	projectedTotal := math.Min(maxTotal, c.Raised+adjustedVelocity*float64(adjustedDaysRemaining))

	horizon := adjustedDaysRemaining
	if horizon > maxHorizonDays {
		horizon = maxHorizonDays
	}

	timeline := make([]model.TimelineDataPoint, 0, horizon)
	cumulative := c.Raised
	var completion *time.Time
	for i := 0; i < horizon; i++ {
		cumulative = math.Min(maxTotal, cumulative+adjustedVelocity)

		point := model.TimelineDataPoint{
			Date:       now.AddDate(0, 0, i+1),
			Day:        m.DaysElapsed + i + 1,
			Projected:  math.Round(adjustedVelocity),
			Cumulative: math.Round(cumulative),
			Confidence: whatIfConfidence,
		}
		timeline = append(timeline, point)

		if completion == nil && cumulative >= c.Goal {
			d := point.Date
			completion = &d
		}
	}

	if completion == nil && len(timeline) > 0 {
		d := timeline[len(timeline)-1].Date
		completion = &d
	}

	label := scenario.Name
	if label == "" {
		label = whatIfLabel
	}

	return model.ForecastResult{
		ProjectedTotal:          projectedTotal,
		ProjectedCompletionDate: completion,
		ConfidenceLevel:         whatIfConfidence,
		Scenario:                label,
		Timeline:                timeline,
	}
}
