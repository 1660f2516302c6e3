package source

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/donorpulse/internal/model"
	sfpkg "github.com/sells-group/donorpulse/pkg/salesforce"
)

// SalesforceSource reads the campaign roster from the Salesforce Campaign
// object. Goal and raised totals come from the won-opportunity rollups.
type SalesforceSource struct {
	client sfpkg.Client
}

// NewSalesforceSource creates a SalesforceSource on an existing client.
func NewSalesforceSource(client sfpkg.Client) *SalesforceSource {
	return &SalesforceSource{client: client}
}

// Name implements Source.
func (s *SalesforceSource) Name() string { return "salesforce" }

// ListCampaigns implements Source. Records with unparseable dates are
// logged and skipped rather than failing the whole roster.
func (s *SalesforceSource) ListCampaigns(ctx context.Context, clientID string) ([]model.Campaign, error) {
	records, err := sfpkg.FetchCampaigns(ctx, s.client, clientID)
	if err != nil {
		return nil, eris.Wrap(err, "source: salesforce")
	}

	campaigns := make([]model.Campaign, 0, len(records))
	for _, rec := range records {
		c, err := campaignFromSalesforce(rec)
		if err != nil {
			zap.L().Warn("skipping salesforce campaign",
				zap.String("id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

func campaignFromSalesforce(rec sfpkg.Campaign) (model.Campaign, error) {
	start, err := parseDate(rec.StartDate)
	if err != nil {
		return model.Campaign{}, eris.Wrap(err, "StartDate")
	}
	end, err := parseDate(rec.EndDate)
	if err != nil {
		return model.Campaign{}, eris.Wrap(err, "EndDate")
	}

	// ParseStatus already understands the Campaign.Status picklist values
	// (Planned, In Progress, Completed, Aborted).
	status, _ := model.ParseStatus(rec.Status)

	c := model.Campaign{
		ID:            rec.ID,
		ClientID:      rec.ClientID,
		Name:          rec.Name,
		Goal:          rec.ExpectedRevenue,
		Raised:        rec.AmountWonOpportunities,
		StartDate:     start,
		EndDate:       end,
		DonorCount:    rec.NumberOfWonOpportunities,
		MarketingCost: rec.ActualCost,
		Status:        status,
	}
	deriveAverageGift(&c)
	return c, nil
}
