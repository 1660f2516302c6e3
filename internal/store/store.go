// Package store persists daily prediction snapshots. The forecasting
// engine never touches the store; the serving layer uses it to replay a
// day's numbers instead of recomputing them on every request.
package store

import (
	"context"

	"github.com/sells-group/donorpulse/internal/model"
)

// Store defines the persistence interface for prediction snapshots.
// Snapshots are keyed by (client_id, campaign_id, as_of_day); writing the
// same key twice replaces the earlier snapshot.
type Store interface {
	// PutSnapshot inserts or replaces the snapshot for its day bucket.
	// A missing ID or CreatedAt is filled in.
	PutSnapshot(ctx context.Context, snap *model.Snapshot) error

	// GetSnapshot returns the snapshot for one campaign day, or nil when
	// none is stored.
	GetSnapshot(ctx context.Context, clientID, campaignID, day string) (*model.Snapshot, error)

	// ListSnapshots returns a campaign's snapshots newest-first.
	// A limit <= 0 applies the default of 30.
	ListSnapshots(ctx context.Context, clientID, campaignID string, limit int) ([]model.Snapshot, error)

	// DeleteSnapshotsBefore removes snapshots whose day bucket is earlier
	// than day and reports how many were removed.
	DeleteSnapshotsBefore(ctx context.Context, day string) (int, error)

	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error

	Close() error
}

const defaultListLimit = 30
