package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Campaign represents a Salesforce Campaign record. Revenue rollups come
// from the won-opportunity summary fields. Dates are returned by the REST
// API as YYYY-MM-DD strings.
type Campaign struct {
	ID                       string  `json:"Id" salesforce:"Id"`
	Name                     string  `json:"Name" salesforce:"Name"`
	Status                   string  `json:"Status" salesforce:"Status"`
	StartDate                string  `json:"StartDate" salesforce:"StartDate"`
	EndDate                  string  `json:"EndDate" salesforce:"EndDate"`
	ExpectedRevenue          float64 `json:"ExpectedRevenue" salesforce:"ExpectedRevenue"`
	AmountWonOpportunities   float64 `json:"AmountWonOpportunities" salesforce:"AmountWonOpportunities"`
	NumberOfWonOpportunities int     `json:"NumberOfWonOpportunities" salesforce:"NumberOfWonOpportunities"`
	ActualCost               float64 `json:"ActualCost" salesforce:"ActualCost"`
	ClientID                 string  `json:"Client_Id__c" salesforce:"Client_Id__c"`
}

// campaignFields are the SOQL fields selected for Campaign queries.
var campaignFields = []string{
	"Id", "Name", "Status", "StartDate", "EndDate",
	"ExpectedRevenue", "AmountWonOpportunities", "NumberOfWonOpportunities",
	"ActualCost", "Client_Id__c",
}

// FetchCampaigns queries Salesforce for fundraising campaigns. When clientID
// is non-empty the query filters on the Client_Id__c custom field; records
// with no client tag are visible to every client.
func FetchCampaigns(ctx context.Context, c Client, clientID string) ([]Campaign, error) {
	var where string
	if clientID != "" {
		where = fmt.Sprintf(" WHERE (Client_Id__c = '%s' OR Client_Id__c = null)", escapeSoql(clientID))
	}
	soql := fmt.Sprintf(
		"SELECT %s FROM Campaign%s ORDER BY StartDate",
		strings.Join(campaignFields, ", "),
		where,
	)

	var campaigns []Campaign
	if err := c.Query(ctx, soql, &campaigns); err != nil {
		return nil, eris.Wrap(err, "sf: fetch campaigns")
	}
	return campaigns, nil
}

// FindCampaignByID queries Salesforce for a Campaign by its ID.
// Returns nil if no campaign is found.
func FindCampaignByID(ctx context.Context, c Client, id string) (*Campaign, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Campaign WHERE Id = '%s' LIMIT 1",
		strings.Join(campaignFields, ", "),
		escapeSoql(id),
	)

	var campaigns []Campaign
	if err := c.Query(ctx, soql, &campaigns); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find campaign by id %s", id))
	}
	if len(campaigns) == 0 {
		return nil, nil
	}
	return &campaigns[0], nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
