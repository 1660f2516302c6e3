package forecast

import "github.com/sells-group/donorpulse/internal/model"

const (
	// aheadPaceEfficiency triggers the stretch-goal suggestion.
	aheadPaceEfficiency = 1.2

	// lowSuccessThreshold is the success probability below which a
	// strategic adjustment is suggested.
	lowSuccessThreshold = 60.0
)

// Recommend produces the ordered recommendation list for a campaign. The
// pace rules are mutually exclusive; the remaining rules stack. The slice is
// nil for a campaign tracking comfortably on plan.
func Recommend(m model.CurrentMetrics, c model.Campaign, successProbability float64) []string {
	var recs []string

	switch {
	case m.Efficiency > aheadPaceEfficiency:
		recs = append(recs, "Consider increasing goal by 20-30% to maximize impact")
	case m.Efficiency < behindPaceEfficiency:
		recs = append(recs, "Boost daily outreach efforts by 50% to get back on track")
	}

	if c.AverageGift > 0 && c.DonorCount > 0 && c.AverageGift < c.Goal/float64(c.DonorCount)/2 {
		recs = append(recs, "Focus on increasing average gift size through targeted asks")
	}

	if successProbability < lowSuccessThreshold {
		recs = append(recs, "Consider strategic campaign adjustments or timeline extension")
	}

	return recs
}
