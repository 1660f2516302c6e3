// Package model defines the campaign snapshot and prediction types shared
// across the forecasting engine, the data sources, and the serving layer.
package model

import (
	"strings"
	"time"
)

// CampaignStatus represents the lifecycle state of a fundraising campaign.
type CampaignStatus string

const (
	StatusActive    CampaignStatus = "active"
	StatusCompleted CampaignStatus = "completed"
	StatusPaused    CampaignStatus = "paused"
	StatusDraft     CampaignStatus = "draft"
)

// ParseStatus normalizes a raw status string from an external source.
// Unknown values map to draft so a bad export row never blocks retrieval.
func ParseStatus(raw string) (CampaignStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "in progress", "live":
		return StatusActive, true
	case "completed", "complete", "finished":
		return StatusCompleted, true
	case "paused", "aborted", "on hold":
		return StatusPaused, true
	case "draft", "planned", "pending":
		return StatusDraft, true
	default:
		return StatusDraft, false
	}
}

// Campaign is a read-only snapshot of a fundraising campaign as retrieved
// from an upstream system. The engine never mutates it; DonorCount,
// AverageGift, and MarketingCost are optional and default to zero when the
// source does not carry them.
type Campaign struct {
	ID            string         `json:"id"`
	ClientID      string         `json:"client_id,omitempty"`
	Name          string         `json:"name"`
	Goal          float64        `json:"goal"`
	Raised        float64        `json:"raised"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	DonorCount    int            `json:"donor_count"`
	AverageGift   float64        `json:"average_gift,omitempty"`
	MarketingCost float64        `json:"marketing_cost,omitempty"`
	Status        CampaignStatus `json:"status"`
}

// ValidWindow reports whether the campaign window is well-formed
// (end date strictly after start date).
func (c Campaign) ValidWindow() bool {
	return c.EndDate.After(c.StartDate)
}
