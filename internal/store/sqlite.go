package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/donorpulse/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	client_id   TEXT NOT NULL DEFAULT '',
	campaign_id TEXT NOT NULL,
	as_of_day   TEXT NOT NULL,
	prediction  TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (client_id, campaign_id, as_of_day)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_day ON snapshots(as_of_day);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	predictionJSON, err := json.Marshal(snap.Prediction)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal prediction")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, client_id, campaign_id, as_of_day, prediction, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (client_id, campaign_id, as_of_day) DO UPDATE SET
			id = excluded.id, prediction = excluded.prediction, created_at = excluded.created_at`,
		snap.ID, snap.ClientID, snap.CampaignID, snap.AsOfDay, string(predictionJSON), snap.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: put snapshot %s/%s", snap.CampaignID, snap.AsOfDay)
	}
	return nil
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, clientID, campaignID, day string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, client_id, campaign_id, as_of_day, prediction, created_at
		 FROM snapshots WHERE client_id = ? AND campaign_id = ? AND as_of_day = ?`,
		clientID, campaignID, day,
	)

	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s/%s", campaignID, day)
	}
	return snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, clientID, campaignID string, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, campaign_id, as_of_day, prediction, created_at
		 FROM snapshots WHERE client_id = ? AND campaign_id = ?
		 ORDER BY as_of_day DESC LIMIT ?`,
		clientID, campaignID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) DeleteSnapshotsBefore(ctx context.Context, day string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE as_of_day < ?`, day,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete snapshots")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable) (*model.Snapshot, error) {
	var snap model.Snapshot
	var predictionJSON string

	err := row.Scan(&snap.ID, &snap.ClientID, &snap.CampaignID, &snap.AsOfDay, &predictionJSON, &snap.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(predictionJSON), &snap.Prediction); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal prediction")
	}
	return &snap, nil
}
