package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/donorpulse/internal/model"
	"github.com/sells-group/donorpulse/internal/store"
)

type fakeSource struct {
	campaigns []model.Campaign
	err       error
	gotClient string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) ListCampaigns(_ context.Context, clientID string) ([]model.Campaign, error) {
	f.gotClient = clientID
	if f.err != nil {
		return nil, f.err
	}
	return f.campaigns, nil
}

// testNow pins the evaluation instant: day 34 of the 60-day year-end drive.
var testNow = time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)

func yearEndDrive() model.Campaign {
	return model.Campaign{
		ID:         "camp-001",
		ClientID:   "acme",
		Name:       "Year-End Giving Drive",
		Goal:       50000,
		Raised:     32500,
		StartDate:  time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		DonorCount: 142,
		Status:     model.StatusActive,
	}
}

func springGala() model.Campaign {
	return model.Campaign{
		ID:         "camp-002",
		ClientID:   "acme",
		Name:       "Spring Gala",
		Goal:       120000,
		Raised:     41000,
		StartDate:  time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DonorCount: 88,
		Status:     model.StatusActive,
	}
}

func brokenWindow() model.Campaign {
	return model.Campaign{
		ID:        "camp-bad",
		Name:      "Backwards",
		Goal:      1000,
		StartDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		Status:    model.StatusDraft,
	}
}

func newTestServer(t *testing.T, src *fakeSource, opts ...Option) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemory()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(src, st, opts...), st
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})

	rec := doRequest(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListCampaigns(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive(), springGala()}}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns?client_id=acme", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", src.gotClient)

	var body struct {
		Campaigns []model.Campaign `json:"campaigns"`
		Count     int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Campaigns, 2)
	assert.Equal(t, "Year-End Giving Drive", body.Campaigns[0].Name)
}

func TestListCampaigns_SourceDown(t *testing.T) {
	src := &fakeSource{err: assert.AnError}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "campaign source unavailable", body["error"])
}

func TestPrediction_ComputesAndCaches(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive()}}
	s, st := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns/camp-001/prediction?client_id=acme", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))

	var pred model.PredictionModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	assert.Equal(t, "camp-001", pred.Campaign.ID)
	assert.InDelta(t, 65.0, pred.Metrics.ProgressPercentage, 0.001)
	assert.Equal(t, 34, pred.Metrics.DaysElapsed)
	assert.Equal(t, 26, pred.Metrics.DaysRemaining)
	assert.Equal(t, 60, pred.Metrics.TotalDays)
	assert.InDelta(t, 955.88, pred.Metrics.DailyVelocity, 0.01)
	assert.Greater(t, pred.SuccessProbability, 50.0)

	// The day's snapshot landed in the store.
	snap, err := st.GetSnapshot(context.Background(), "acme", "camp-001", "2024-12-05")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.InDelta(t, pred.SuccessProbability, snap.Prediction.SuccessProbability, 0.001)

	// A second request the same day is served from the cache.
	rec2 := doRequest(t, s, http.MethodGet, "/api/v1/campaigns/camp-001/prediction?client_id=acme", "")
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, "hit", rec2.Header().Get("X-Cache"))

	var cached model.PredictionModel
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &cached))
	assert.True(t, cached.GeneratedAt.Equal(pred.GeneratedAt))
	assert.Equal(t, pred.SuccessProbability, cached.SuccessProbability)
}

func TestPrediction_RefreshBypassesCache(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive()}}
	s, st := newTestServer(t, src)

	stale := &model.Snapshot{
		ClientID:   "acme",
		CampaignID: "camp-001",
		AsOfDay:    "2024-12-05",
		Prediction: model.PredictionModel{SuccessProbability: 1.0},
	}
	require.NoError(t, st.PutSnapshot(context.Background(), stale))

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns/camp-001/prediction?client_id=acme&refresh=true", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))

	var pred model.PredictionModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	assert.Greater(t, pred.SuccessProbability, 50.0)

	// The recomputed prediction replaced the seeded one.
	snap, err := st.GetSnapshot(context.Background(), "acme", "camp-001", "2024-12-05")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Greater(t, snap.Prediction.SuccessProbability, 50.0)
}

func TestPrediction_NotFound(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive()}}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns/nope/prediction", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "campaign not found", body["error"])
}

func TestPrediction_InvalidWindow(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{brokenWindow()}}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns/camp-bad/prediction", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "end date must be after start date")
}

func TestPrediction_StaleWhenSourceDown(t *testing.T) {
	src := &fakeSource{err: assert.AnError}
	s, st := newTestServer(t, src)

	yesterday := &model.Snapshot{
		ClientID:   "acme",
		CampaignID: "camp-001",
		AsOfDay:    "2024-12-04",
		Prediction: model.PredictionModel{SuccessProbability: 77.0},
	}
	require.NoError(t, st.PutSnapshot(context.Background(), yesterday))

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns/camp-001/prediction?client_id=acme", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stale", rec.Header().Get("X-Cache"))

	var pred model.PredictionModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	assert.InDelta(t, 77.0, pred.SuccessProbability, 0.001)
}

func TestPrediction_SourceDownNoSnapshot(t *testing.T) {
	src := &fakeSource{err: assert.AnError}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/campaigns/camp-001/prediction", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWhatIf(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive()}}
	s, st := newTestServer(t, src)

	body := `{"name":"year-end push","adjustments":{"daily_velocity_multiplier":1.5}}`
	rec := doRequest(t, s, http.MethodPost, "/api/v1/campaigns/camp-001/whatif?client_id=acme", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ForecastResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "year-end push", result.Scenario)
	// 32500 + (955.88 * 1.5) * 26 days, under the 1.5x goal cap.
	assert.InDelta(t, 69779.41, result.ProjectedTotal, 1.0)
	assert.Len(t, result.Timeline, 26)

	// Slider-driven results are never cached.
	snaps, err := st.ListSnapshots(context.Background(), "acme", "camp-001", 10)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestWhatIf_MalformedBody(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive()}}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/campaigns/camp-001/whatif", `{"adjustments":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid request body", body["error"])
}

func TestWhatIf_NotFound(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive()}}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/campaigns/nope/whatif", `{"name":"x"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWhatIf_InvalidWindow(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{brokenWindow()}}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/campaigns/camp-bad/whatif", `{"name":"x"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPortfolio(t *testing.T) {
	src := &fakeSource{campaigns: []model.Campaign{yearEndDrive(), springGala(), brokenWindow()}}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/portfolio?client_id=acme", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Portfolio []PortfolioRow `json:"portfolio"`
		Count     int            `json:"count"`
		Skipped   int            `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, 1, body.Skipped)
	require.Len(t, body.Portfolio, 2)

	// Source order survives the concurrent computation.
	assert.Equal(t, "camp-001", body.Portfolio[0].CampaignID)
	assert.Equal(t, "camp-002", body.Portfolio[1].CampaignID)

	first := body.Portfolio[0]
	assert.Equal(t, "Year-End Giving Drive", first.Name)
	assert.InDelta(t, 65.0, first.ProgressPercentage, 0.001)
	assert.Equal(t, 26, first.DaysRemaining)
	assert.GreaterOrEqual(t, first.SuccessProbability, 5.0)
	assert.LessOrEqual(t, first.SuccessProbability, 95.0)
	assert.Greater(t, first.ProjectedTotal, 0.0)
}

func TestPortfolio_SourceDown(t *testing.T) {
	src := &fakeSource{err: assert.AnError}
	s, _ := newTestServer(t, src)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/portfolio", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	src := &fakeSource{}
	s, _ := newTestServer(t, src, WithCORSOrigins([]string{"https://dash.example.com"}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
