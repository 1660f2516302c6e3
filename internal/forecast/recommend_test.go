package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/donorpulse/internal/model"
)

func TestRecommend_OnTrack(t *testing.T) {
	recs := Recommend(onPace(), model.Campaign{}, 80)
	assert.Empty(t, recs)
}

func TestRecommend_AheadOfPace(t *testing.T) {
	m := onPace()
	m.Efficiency = 1.21

	recs := Recommend(m, model.Campaign{}, 80)
	require.Len(t, recs, 1)
	assert.Equal(t, "Consider increasing goal by 20-30% to maximize impact", recs[0])
}

func TestRecommend_BehindPace(t *testing.T) {
	m := onPace()
	m.Efficiency = 0.79

	recs := Recommend(m, model.Campaign{}, 80)
	require.Len(t, recs, 1)
	assert.Equal(t, "Boost daily outreach efforts by 50% to get back on track", recs[0])
}

func TestRecommend_PaceRulesExclusive(t *testing.T) {
	// Efficiency sits in the neutral band; neither pace rule fires.
	for _, eff := range []float64{0.8, 1.0, 1.2} {
		m := onPace()
		m.Efficiency = eff
		assert.Empty(t, Recommend(m, model.Campaign{}, 80), "efficiency=%v", eff)
	}
}

func TestRecommend_SmallGifts(t *testing.T) {
	c := model.Campaign{Goal: 50000, DonorCount: 100, AverageGift: 200}

	// Half the per-donor share is 250; a 200 average trips the rule.
	recs := Recommend(onPace(), c, 80)
	require.Len(t, recs, 1)
	assert.Equal(t, "Focus on increasing average gift size through targeted asks", recs[0])

	c.AverageGift = 250
	assert.Empty(t, Recommend(onPace(), c, 80))
}

func TestRecommend_SmallGiftsGuards(t *testing.T) {
	// Missing gift or donor data never divides by zero and never fires.
	assert.Empty(t, Recommend(onPace(), model.Campaign{Goal: 50000, DonorCount: 100}, 80))
	assert.Empty(t, Recommend(onPace(), model.Campaign{Goal: 50000, AverageGift: 10}, 80))
}

func TestRecommend_LowProbability(t *testing.T) {
	recs := Recommend(onPace(), model.Campaign{}, 59.9)
	require.Len(t, recs, 1)
	assert.Equal(t, "Consider strategic campaign adjustments or timeline extension", recs[0])

	assert.Empty(t, Recommend(onPace(), model.Campaign{}, 60))
}

func TestRecommend_Stacking(t *testing.T) {
	m := onPace()
	m.Efficiency = 0.5
	c := model.Campaign{Goal: 50000, DonorCount: 100, AverageGift: 50}

	recs := Recommend(m, c, 30)
	require.Len(t, recs, 3)
	assert.Equal(t, "Boost daily outreach efforts by 50% to get back on track", recs[0])
	assert.Equal(t, "Focus on increasing average gift size through targeted asks", recs[1])
	assert.Equal(t, "Consider strategic campaign adjustments or timeline extension", recs[2])
}
