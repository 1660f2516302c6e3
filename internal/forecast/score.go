package forecast

import (
	"math"

	"github.com/sells-group/donorpulse/internal/model"
)

// Component weights of the success score. They sum to 1.0, but velocity and
// efficiency contributions can each run up to double weight, so the raw
// score is clamped afterwards.
const (
	progressWeight   = 0.3
	velocityWeight   = 0.25
	efficiencyWeight = 0.2
	timeWeight       = 0.15
	donorWeight      = 0.1
)

// The score never claims certainty in either direction.
const (
	minSuccessProbability = 5.0
	maxSuccessProbability = 95.0
)

// SuccessProbability combines progress, velocity, efficiency, remaining time,
// and donor count into a heuristic score in [5, 95]. Every division is
// guarded, so the result is finite for any input.
func SuccessProbability(m model.CurrentMetrics, c model.Campaign) float64 {
	progressScore := math.Min(m.ProgressPercentage/100, 1) * progressWeight

	var velocityScore float64
	if targetDaily := c.Goal / float64(m.TotalDays); targetDaily > 0 {
		velocityScore = math.Min(m.DailyVelocity/targetDaily, 2) * velocityWeight
	}

	efficiencyScore := math.Min(m.Efficiency, 2) * efficiencyWeight

	var timeScore float64
	if m.DaysRemaining > 0 {
		timeScore = math.Min(1, float64(m.DaysRemaining)/(float64(m.TotalDays)*0.3)) * timeWeight
	}

	donorScore := math.Min(float64(c.DonorCount)/100, 1) * donorWeight

	raw := (progressScore + velocityScore + efficiencyScore + timeScore + donorScore) * 100
	return clamp(raw, minSuccessProbability, maxSuccessProbability)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
