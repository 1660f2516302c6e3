package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/donorpulse/internal/db"
	"github.com/sells-group/donorpulse/internal/model"
)

// PostgresSource reads the campaign roster from a Postgres table. The
// source never writes; the table is owned by the CRM ingest jobs.
type PostgresSource struct {
	pool db.Pool
}

// NewPostgresSource creates a PostgresSource on an existing pool.
func NewPostgresSource(pool db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Name implements Source.
func (s *PostgresSource) Name() string { return "postgres" }

const campaignColumns = `id, client_id, name, goal, raised, start_date, end_date, donor_count, average_gift, marketing_cost, status`

// ListCampaigns implements Source. Campaigns without a client tag are
// visible to every client, matching the other sources.
func (s *PostgresSource) ListCampaigns(ctx context.Context, clientID string) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY start_date, id`
	args := []any{}
	if clientID != "" {
		query = `SELECT ` + campaignColumns + ` FROM campaigns WHERE (client_id=$1 OR client_id='') ORDER BY start_date, id`
		args = append(args, clientID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "source: list campaigns")
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		var (
			c      model.Campaign
			status string
		)
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Name, &c.Goal, &c.Raised,
			&c.StartDate, &c.EndDate, &c.DonorCount, &c.AverageGift,
			&c.MarketingCost, &status); err != nil {
			return nil, eris.Wrap(err, "source: scan campaign")
		}
		c.Status, _ = model.ParseStatus(status)
		deriveAverageGift(&c)
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: list campaigns")
	}
	return campaigns, nil
}
