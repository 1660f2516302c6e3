package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/donorpulse/internal/forecast"
	"github.com/sells-group/donorpulse/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")

	campaigns, err := s.source.ListCampaigns(r.Context(), clientID)
	if err != nil {
		zap.L().Error("list campaigns", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "campaign source unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaigns": campaigns,
		"count":     len(campaigns),
	})
}

// findCampaign resolves a single campaign through the source. A nil campaign
// with a nil error means the ID is unknown to this client.
func (s *Server) findCampaign(ctx context.Context, clientID, campaignID string) (*model.Campaign, error) {
	campaigns, err := s.source.ListCampaigns(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range campaigns {
		if campaigns[i].ID == campaignID {
			return &campaigns[i], nil
		}
	}
	return nil, nil
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	campaignID := chi.URLParam(r, "campaignID")
	clientID := r.URL.Query().Get("client_id")
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	now := s.now()
	day := model.DayBucket(now)

	if !refresh {
		snap, err := s.store.GetSnapshot(ctx, clientID, campaignID, day)
		if err != nil {
			zap.L().Warn("snapshot lookup failed", zap.String("campaign", campaignID), zap.Error(err))
		} else if snap != nil {
			w.Header().Set("X-Cache", "hit")
			writeJSON(w, http.StatusOK, snap.Prediction)
			return
		}
	}

	c, err := s.findCampaign(ctx, clientID, campaignID)
	if err != nil {
		s.serveStale(ctx, w, clientID, campaignID, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "campaign not found")
		return
	}

	pred, err := forecast.ComputePrediction(*c, now)
	if err != nil {
		if errors.Is(err, forecast.ErrInvalidCampaignWindow) {
			writeError(w, http.StatusUnprocessableEntity, "campaign end date must be after start date")
			return
		}
		zap.L().Error("compute prediction", zap.String("campaign", campaignID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	snap := &model.Snapshot{
		ClientID:   clientID,
		CampaignID: campaignID,
		AsOfDay:    day,
		Prediction: *pred,
	}
	if err := s.store.PutSnapshot(ctx, snap); err != nil {
		// The response still carries the fresh prediction.
		zap.L().Warn("snapshot save failed", zap.String("campaign", campaignID), zap.Error(err))
	}

	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, pred)
}

// serveStale answers a prediction request from the newest stored snapshot
// when every live source is down, so the dashboard keeps rendering
// yesterday's numbers instead of an error page.
func (s *Server) serveStale(ctx context.Context, w http.ResponseWriter, clientID, campaignID string, cause error) {
	snaps, err := s.store.ListSnapshots(ctx, clientID, campaignID, 1)
	if err == nil && len(snaps) > 0 {
		zap.L().Warn("serving stale snapshot",
			zap.String("campaign", campaignID),
			zap.String("as_of", snaps[0].AsOfDay),
			zap.Error(cause),
		)
		w.Header().Set("X-Cache", "stale")
		writeJSON(w, http.StatusOK, snaps[0].Prediction)
		return
	}

	zap.L().Error("campaign source unavailable", zap.String("campaign", campaignID), zap.Error(cause))
	writeError(w, http.StatusServiceUnavailable, "campaign source unavailable")
}

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	campaignID := chi.URLParam(r, "campaignID")
	clientID := r.URL.Query().Get("client_id")

	var scenario model.WhatIfScenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.findCampaign(ctx, clientID, campaignID)
	if err != nil {
		zap.L().Error("list campaigns", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "campaign source unavailable")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "campaign not found")
		return
	}

	// What-if results are slider-driven and never cached.
	result, err := forecast.WhatIfForCampaign(*c, scenario, s.now())
	if err != nil {
		if errors.Is(err, forecast.ErrInvalidCampaignWindow) {
			writeError(w, http.StatusUnprocessableEntity, "campaign end date must be after start date")
			return
		}
		zap.L().Error("compute what-if", zap.String("campaign", campaignID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "what-if failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// PortfolioRow summarizes one campaign for the portfolio view.
type PortfolioRow struct {
	CampaignID         string               `json:"campaign_id"`
	Name               string               `json:"name"`
	Status             model.CampaignStatus `json:"status"`
	Goal               float64              `json:"goal"`
	Raised             float64              `json:"raised"`
	ProgressPercentage float64              `json:"progress_percentage"`
	DaysRemaining      int                  `json:"days_remaining"`
	SuccessProbability float64              `json:"success_probability"`
	ProjectedTotal     float64              `json:"projected_total"`
	RiskCount          int                  `json:"risk_count"`
	TopRecommendation  string               `json:"top_recommendation,omitempty"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := r.URL.Query().Get("client_id")

	campaigns, err := s.source.ListCampaigns(ctx, clientID)
	if err != nil {
		zap.L().Error("list campaigns", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "campaign source unavailable")
		return
	}

	now := s.now()
	rows := make([]*PortfolioRow, len(campaigns))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range campaigns {
		g.Go(func() error {
			pred, err := forecast.ComputePrediction(c, now)
			if err != nil {
				// One malformed campaign never empties the dashboard.
				zap.L().Warn("skipping campaign in portfolio",
					zap.String("campaign", c.ID),
					zap.Error(err),
				)
				return nil
			}

			row := &PortfolioRow{
				CampaignID:         c.ID,
				Name:               c.Name,
				Status:             c.Status,
				Goal:               c.Goal,
				Raised:             c.Raised,
				ProgressPercentage: pred.Metrics.ProgressPercentage,
				DaysRemaining:      pred.Metrics.DaysRemaining,
				SuccessProbability: pred.SuccessProbability,
				ProjectedTotal:     pred.Realistic.ProjectedTotal,
				RiskCount:          len(pred.RiskFactors),
			}
			if len(pred.Recommendations) > 0 {
				row.TopRecommendation = pred.Recommendations[0]
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("portfolio computation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "portfolio computation failed")
		return
	}

	// Source order survives the concurrent computation.
	out := make([]PortfolioRow, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row == nil {
			skipped++
			continue
		}
		out = append(out, *row)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"portfolio": out,
		"count":     len(out),
		"skipped":   skipped,
	})
}
