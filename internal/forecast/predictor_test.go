package forecast

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/donorpulse/internal/model"
)

func assertFinite(t *testing.T, name string, v float64) {
	t.Helper()
	assert.False(t, math.IsNaN(v), "%s is NaN", name)
	assert.False(t, math.IsInf(v, 0), "%s is infinite", name)
}

func assertFiniteForecast(t *testing.T, f model.ForecastResult) {
	t.Helper()
	assertFinite(t, "projected total", f.ProjectedTotal)
	assertFinite(t, "confidence level", f.ConfidenceLevel)
	for _, p := range f.Timeline {
		assertFinite(t, "projected", p.Projected)
		assertFinite(t, "cumulative", p.Cumulative)
		assertFinite(t, "confidence", p.Confidence)
	}
}

func assertFinitePrediction(t *testing.T, p *model.PredictionModel) {
	t.Helper()
	assertFiniteMetrics(t, p.Metrics)
	assertFiniteForecast(t, p.Conservative)
	assertFiniteForecast(t, p.Realistic)
	assertFiniteForecast(t, p.Optimistic)
	assertFinite(t, "success probability", p.SuccessProbability)
}

func TestComputePrediction_ReferenceCampaign(t *testing.T) {
	c, now := yearEndCampaign()

	p, err := ComputePrediction(c, now)
	require.NoError(t, err)

	assert.Equal(t, c, p.Campaign)
	assert.Equal(t, now, p.GeneratedAt)
	assert.Equal(t, "conservative", p.Conservative.Scenario)
	assert.Equal(t, "realistic", p.Realistic.Scenario)
	assert.Equal(t, "optimistic", p.Optimistic.Scenario)

	// Ahead of pace with a month to go: comfortably above even odds.
	assert.Greater(t, p.SuccessProbability, 50.0)
	assert.Empty(t, p.RiskFactors)
	assert.Empty(t, p.Recommendations)
	assert.Nil(t, p.CostAnalysis)

	assertFinitePrediction(t, p)
}

func TestComputePrediction_InvalidWindow(t *testing.T) {
	c, now := yearEndCampaign()
	c.EndDate = c.StartDate

	_, err := ComputePrediction(c, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCampaignWindow)
	assert.Contains(t, err.Error(), "camp-001")

	c.EndDate = c.StartDate.Add(-24 * time.Hour)
	_, err = ComputePrediction(c, now)
	assert.ErrorIs(t, err, ErrInvalidCampaignWindow)
}

func TestComputePrediction_ZeroGoalIsGraceful(t *testing.T) {
	c, now := yearEndCampaign()
	c.Goal = 0

	// A missing goal is bad data, not a failure: the pass completes with
	// zeroed projections.
	p, err := ComputePrediction(c, now)
	require.NoError(t, err)
	assertFinitePrediction(t, p)
	assert.Zero(t, p.Realistic.ProjectedTotal)
}

func TestComputePrediction_Repeatable(t *testing.T) {
	c, now := yearEndCampaign()
	c.MarketingCost = 4200

	a, err := ComputePrediction(c, now)
	require.NoError(t, err)
	b, err := ComputePrediction(c, now)
	require.NoError(t, err)

	require.Equal(t, a, b)

	// Byte-for-byte identical over the wire as well.
	aj, err := json.Marshal(a)
	require.NoError(t, err)
	bj, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, aj, bj)
}

func TestComputePrediction_StrugglingCampaign(t *testing.T) {
	c, now := yearEndCampaign()
	c.Raised = 8000
	c.DonorCount = 60

	p, err := ComputePrediction(c, now)
	require.NoError(t, err)

	// 16% raised at 57% elapsed: behind pace, slow growth, long odds.
	assert.Less(t, p.Metrics.Efficiency, behindPaceEfficiency)
	require.NotEmpty(t, p.RiskFactors)
	assert.Equal(t, "Below Target Pace", p.RiskFactors[0].Factor)
	require.NotEmpty(t, p.Recommendations)
	assert.Equal(t, "Boost daily outreach efforts by 50% to get back on track", p.Recommendations[0])
	assert.Less(t, p.SuccessProbability, 60.0)
}

func TestComputePrediction_WithMarketingCost(t *testing.T) {
	c, now := yearEndCampaign()
	c.MarketingCost = 5000

	p, err := ComputePrediction(c, now)
	require.NoError(t, err)

	require.NotNil(t, p.CostAnalysis)
	assert.Equal(t, 5000.0, p.CostAnalysis.MarketingCost)
	// ROI anchors on the realistic projection.
	want := (p.Realistic.ProjectedTotal - 5000) / 5000
	assert.InDelta(t, want, p.CostAnalysis.ProjectedROI, 1e-9)
}

func TestComputePrediction_ProjectionsRespectCap(t *testing.T) {
	c, now := yearEndCampaign()
	c.Raised = 70000

	p, err := ComputePrediction(c, now)
	require.NoError(t, err)

	maxTotal := c.Goal * projectionCapFactor
	for _, f := range []model.ForecastResult{p.Conservative, p.Realistic, p.Optimistic} {
		assert.LessOrEqual(t, f.ProjectedTotal, maxTotal)
		for _, pt := range f.Timeline {
			assert.LessOrEqual(t, pt.Cumulative, maxTotal)
			assert.GreaterOrEqual(t, pt.Cumulative, 0.0)
		}
	}
}
