package source

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/donorpulse/internal/model"
)

// StaticSource serves a fixed roster: either the built-in demo campaigns or
// a YAML fixture file. It backs local development and the last link of the
// source chain, so the dashboard always has something to show.
type StaticSource struct {
	name      string
	campaigns []model.Campaign
}

// NewStaticSource wraps an in-memory roster.
func NewStaticSource(campaigns []model.Campaign) *StaticSource {
	return &StaticSource{name: "static", campaigns: campaigns}
}

// NewDemoSource returns the built-in demo roster.
func NewDemoSource() *StaticSource {
	return &StaticSource{name: "demo", campaigns: demoCampaigns()}
}

// fixtureFile is the YAML shape of a campaign fixture.
type fixtureFile struct {
	Campaigns []fixtureCampaign `yaml:"campaigns"`
}

type fixtureCampaign struct {
	ID            string  `yaml:"id"`
	ClientID      string  `yaml:"client_id"`
	Name          string  `yaml:"name"`
	Goal          float64 `yaml:"goal"`
	Raised        float64 `yaml:"raised"`
	StartDate     string  `yaml:"start_date"`
	EndDate       string  `yaml:"end_date"`
	DonorCount    int     `yaml:"donor_count"`
	AverageGift   float64 `yaml:"average_gift"`
	MarketingCost float64 `yaml:"marketing_cost"`
	Status        string  `yaml:"status"`
}

// NewFixtureSource loads a YAML fixture file.
func NewFixtureSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: read %s", path)
	}

	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "fixture: parse %s", path)
	}

	campaigns := make([]model.Campaign, 0, len(file.Campaigns))
	for _, fc := range file.Campaigns {
		c, err := fc.toCampaign()
		if err != nil {
			return nil, eris.Wrapf(err, "fixture: campaign %s", fc.ID)
		}
		campaigns = append(campaigns, c)
	}

	return &StaticSource{name: "fixture", campaigns: campaigns}, nil
}

func (fc fixtureCampaign) toCampaign() (model.Campaign, error) {
	start, err := parseDate(fc.StartDate)
	if err != nil {
		return model.Campaign{}, eris.Wrap(err, "start_date")
	}
	end, err := parseDate(fc.EndDate)
	if err != nil {
		return model.Campaign{}, eris.Wrap(err, "end_date")
	}

	status, _ := model.ParseStatus(fc.Status)
	c := model.Campaign{
		ID:            fc.ID,
		ClientID:      fc.ClientID,
		Name:          fc.Name,
		Goal:          fc.Goal,
		Raised:        fc.Raised,
		StartDate:     start,
		EndDate:       end,
		DonorCount:    fc.DonorCount,
		AverageGift:   fc.AverageGift,
		MarketingCost: fc.MarketingCost,
		Status:        status,
	}
	deriveAverageGift(&c)
	return c, nil
}

// Name implements Source.
func (s *StaticSource) Name() string { return s.name }

// ListCampaigns implements Source.
func (s *StaticSource) ListCampaigns(_ context.Context, clientID string) ([]model.Campaign, error) {
	return filterByClient(s.campaigns, clientID), nil
}

func demoCampaigns() []model.Campaign {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []model.Campaign{
		{
			ID:          "camp-001",
			Name:        "Year-End Giving Drive",
			Goal:        50000,
			Raised:      32500,
			StartDate:   day(2024, time.November, 1),
			EndDate:     day(2024, time.December, 31),
			DonorCount:  142,
			AverageGift: 228.87,
			Status:      model.StatusActive,
		},
		{
			ID:            "camp-002",
			Name:          "Spring Gala",
			Goal:          120000,
			Raised:        41000,
			StartDate:     day(2025, time.February, 1),
			EndDate:       day(2025, time.May, 15),
			DonorCount:    88,
			AverageGift:   465.91,
			MarketingCost: 9500,
			Status:        model.StatusActive,
		},
		{
			ID:          "camp-003",
			Name:        "Scholarship Fund Match",
			Goal:        25000,
			Raised:      26100,
			StartDate:   day(2024, time.September, 1),
			EndDate:     day(2024, time.November, 30),
			DonorCount:  310,
			AverageGift: 84.19,
			Status:      model.StatusCompleted,
		},
		{
			ID:          "camp-004",
			Name:        "Monthly Sustainer Push",
			Goal:        15000,
			Raised:      2800,
			StartDate:   day(2025, time.January, 10),
			EndDate:     day(2025, time.March, 10),
			DonorCount:  35,
			AverageGift: 80,
			Status:      model.StatusPaused,
		},
	}
}
