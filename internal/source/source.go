// Package source loads campaign rosters from wherever a dashboard tenant
// keeps them: built-in fixtures, file exports, a Postgres mirror, or a
// Salesforce org. Sources only read; campaign records are owned by the
// upstream system and this service never writes them back.
package source

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/donorpulse/internal/model"
)

// Source lists the campaigns visible to one dashboard client.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// ListCampaigns returns the client's campaigns. An empty clientID means
	// no tenant filter.
	ListCampaigns(ctx context.Context, clientID string) ([]model.Campaign, error)
}

// acceptedDateLayouts are tried in order when parsing export dates.
var acceptedDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, eris.New("empty date")
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognized date %q", raw)
}

func parseFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	// Exports frequently carry currency formatting.
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	return strconv.ParseFloat(raw, 64)
}

func parseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	return strconv.Atoi(raw)
}

// deriveAverageGift fills AverageGift from the raised total and donor count
// when the export did not carry it.
func deriveAverageGift(c *model.Campaign) {
	if c.AverageGift == 0 && c.DonorCount > 0 {
		c.AverageGift = c.Raised / float64(c.DonorCount)
	}
}

// filterByClient keeps campaigns visible to the given client. Campaigns
// without a client tag are visible to every client.
func filterByClient(campaigns []model.Campaign, clientID string) []model.Campaign {
	if clientID == "" {
		return campaigns
	}
	out := make([]model.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c.ClientID != "" && c.ClientID != clientID {
			continue
		}
		out = append(out, c)
	}
	return out
}
