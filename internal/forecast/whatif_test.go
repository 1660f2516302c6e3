package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/donorpulse/internal/model"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestComputeWhatIf_VelocityBoost(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	scenario := model.WhatIfScenario{
		Name:        "50% velocity boost",
		Adjustments: model.WhatIfAdjustments{DailyVelocityMultiplier: floatPtr(1.5)},
	}
	f := ComputeWhatIf(m, c, scenario, now)

	// 32_500 + 955.88*1.5 * 26 days.
	assert.InDelta(t, 69779.41, f.ProjectedTotal, 0.01)
	assert.Equal(t, "50% velocity boost", f.Scenario)
	assert.Equal(t, whatIfConfidence, f.ConfidenceLevel)
	assert.Len(t, f.Timeline, 26)

	// At 1_433.8/day the 17_500 shortfall clears on projected day 13.
	require.NotNil(t, f.ProjectedCompletionDate)
	assert.Equal(t, date(2024, time.December, 18), *f.ProjectedCompletionDate)
}

func TestComputeWhatIf_NoAdjustments(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	f := ComputeWhatIf(m, c, model.WhatIfScenario{}, now)

	// Defaults are identity: a straight line at the current velocity.
	assert.InDelta(t, 57352.94, f.ProjectedTotal, 0.01)
	assert.Equal(t, whatIfLabel, f.Scenario)
}

func TestComputeWhatIf_FlatIncrements(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	f := ComputeWhatIf(m, c, model.WhatIfScenario{Name: "baseline"}, now)
	require.NotEmpty(t, f.Timeline)

	// No oscillation: every point projects the same daily amount at the
	// same confidence.
	for _, p := range f.Timeline {
		assert.Equal(t, f.Timeline[0].Projected, p.Projected)
		assert.Equal(t, whatIfConfidence, p.Confidence)
	}
}

func TestComputeWhatIf_Extension(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	scenario := model.WhatIfScenario{
		Name:        "two more weeks",
		Adjustments: model.WhatIfAdjustments{CampaignExtensionDays: intPtr(14)},
	}
	f := ComputeWhatIf(m, c, scenario, now)

	assert.Len(t, f.Timeline, 40)
	// 32_500 + 955.88 * 40 days.
	assert.InDelta(t, 70735.29, f.ProjectedTotal, 0.01)
}

func TestComputeWhatIf_NegativeExtensionClampsToZero(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	scenario := model.WhatIfScenario{
		Name:        "cut short",
		Adjustments: model.WhatIfAdjustments{CampaignExtensionDays: intPtr(-60)},
	}
	f := ComputeWhatIf(m, c, scenario, now)

	assert.Empty(t, f.Timeline)
	assert.Nil(t, f.ProjectedCompletionDate)
	// Nothing left to project; the total is what was already raised.
	assert.Equal(t, c.Raised, f.ProjectedTotal)
}

func TestComputeWhatIf_InertAdjustments(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	base := ComputeWhatIf(m, c, model.WhatIfScenario{Name: "x"}, now)
	adjusted := ComputeWhatIf(m, c, model.WhatIfScenario{
		Name: "x",
		Adjustments: model.WhatIfAdjustments{
			DonorGrowthMultiplier: floatPtr(3.0),
			AverageGiftMultiplier: floatPtr(2.0),
		},
	}, now)

	// Growth and gift sliders are reserved; they must not move the numbers.
	assert.Equal(t, base, adjusted)
}

func TestComputeWhatIf_CapsAtGoalMultiple(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	scenario := model.WhatIfScenario{
		Name:        "moonshot",
		Adjustments: model.WhatIfAdjustments{DailyVelocityMultiplier: floatPtr(10)},
	}
	f := ComputeWhatIf(m, c, scenario, now)

	assert.Equal(t, c.Goal*projectionCapFactor, f.ProjectedTotal)
	for _, p := range f.Timeline {
		assert.LessOrEqual(t, p.Cumulative, c.Goal*projectionCapFactor)
	}
}

func TestComputeWhatIf_ZeroMultiplier(t *testing.T) {
	c, now := yearEndCampaign()
	m := CalculateMetrics(c, now)

	scenario := model.WhatIfScenario{
		Name:        "stall",
		Adjustments: model.WhatIfAdjustments{DailyVelocityMultiplier: floatPtr(0)},
	}
	f := ComputeWhatIf(m, c, scenario, now)

	assert.Equal(t, c.Raised, f.ProjectedTotal)
	require.NotEmpty(t, f.Timeline)
	// Goal is never reached; completion falls back to the last point.
	assert.Equal(t, f.Timeline[len(f.Timeline)-1].Date, *f.ProjectedCompletionDate)
}

func TestWhatIfForCampaign_RejectsBadWindow(t *testing.T) {
	c, now := yearEndCampaign()
	c.EndDate = c.StartDate

	_, err := WhatIfForCampaign(c, model.WhatIfScenario{}, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCampaignWindow)
}

func TestWhatIfForCampaign_MatchesComposition(t *testing.T) {
	c, now := yearEndCampaign()
	scenario := model.WhatIfScenario{
		Name:        "boost",
		Adjustments: model.WhatIfAdjustments{DailyVelocityMultiplier: floatPtr(1.2)},
	}

	direct := ComputeWhatIf(CalculateMetrics(c, now), c, scenario, now)
	viaCampaign, err := WhatIfForCampaign(c, scenario, now)
	require.NoError(t, err)
	assert.Equal(t, direct, viaCampaign)
}
