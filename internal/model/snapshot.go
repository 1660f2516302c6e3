package model

import "time"

// DayBucket formats an instant as the UTC calendar day used to key
// prediction snapshots.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Snapshot is one persisted prediction: the engine output for a campaign,
// bucketed by UTC calendar day. The serving layer caches on
// (client, campaign, day) so repeat dashboard visits replay the same
// forecast instead of recomputing it.
type Snapshot struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id,omitempty"`
	CampaignID string          `json:"campaign_id"`
	AsOfDay    string          `json:"as_of_day"`
	Prediction PredictionModel `json:"prediction"`
	CreatedAt  time.Time       `json:"created_at"`
}
