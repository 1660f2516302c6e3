package forecast

import "github.com/sells-group/donorpulse/internal/model"

// AnalyzeCost derives marketing-spend effectiveness ratios for a campaign,
// anchored on the realistic projection. Returns nil when the campaign
// reports no marketing cost; ratios with a zero denominator stay zero.
func AnalyzeCost(c model.Campaign, realistic model.ForecastResult) *model.CostAnalysis {
	if c.MarketingCost <= 0 {
		return nil
	}

	analysis := &model.CostAnalysis{MarketingCost: c.MarketingCost}
	if c.Raised > 0 {
		analysis.CostPerDollarRaised = c.MarketingCost / c.Raised
	}
	if c.DonorCount > 0 {
		analysis.CostPerDonor = c.MarketingCost / float64(c.DonorCount)
	}
	analysis.ProjectedROI = (realistic.ProjectedTotal - c.MarketingCost) / c.MarketingCost
	return analysis
}
