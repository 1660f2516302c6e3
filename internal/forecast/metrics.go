package forecast

import (
	"math"
	"time"

	"github.com/sells-group/donorpulse/internal/model"
)

const (
	// donorBaseline is subtracted from the donor count before the growth
	// rate is taken. Calibration constant; keep in sync with the dashboard
	// product team before changing.
	donorBaseline = 50

	// donorGrowthFloor is the flat growth rate reported during the warmup
	// window, before enough elapsed days exist for a meaningful rate.
	donorGrowthFloor = 2.0

	// growthWarmupDays is the elapsed-day threshold at or below which the
	// floor applies.
	growthWarmupDays = 7
)

// CalculateMetrics derives the campaign's performance metrics at the given
// instant. It is total over any campaign value: a degenerate window clamps
// to a single day here, and callers that want to reject such campaigns do so
// at the prediction boundary instead.
func CalculateMetrics(c model.Campaign, now time.Time) model.CurrentMetrics {
	totalDays := daysCeil(c.EndDate.Sub(c.StartDate))
	if totalDays < 1 {
		totalDays = 1
	}

	daysElapsed := daysCeil(now.Sub(c.StartDate))
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	if daysElapsed > totalDays {
		daysElapsed = totalDays
	}
	daysRemaining := totalDays - daysElapsed

	var progress float64
	if c.Goal > 0 {
		progress = c.Raised / c.Goal * 100
	}

	var velocity float64
	if daysElapsed > 0 {
		velocity = c.Raised / float64(daysElapsed)
	}

	expectedProgress := float64(daysElapsed) / float64(totalDays) * 100
	efficiency := 1.0
	if expectedProgress > 0 {
		efficiency = progress / expectedProgress
	}

	growthRate := donorGrowthFloor
	if daysElapsed > growthWarmupDays {
		growthRate = math.Max(0, float64(c.DonorCount-donorBaseline)/float64(daysElapsed))
	}

	return model.CurrentMetrics{
		ProgressPercentage: progress,
		DaysElapsed:        daysElapsed,
		DaysRemaining:      daysRemaining,
		TotalDays:          totalDays,
		DailyVelocity:      velocity,
		Efficiency:         efficiency,
		DonorGrowthRate:    growthRate,
	}
}

// daysCeil converts a duration to whole days, rounding any partial day up.
func daysCeil(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
