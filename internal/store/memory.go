package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/donorpulse/internal/model"
)

// MemoryStore implements Store with a mutex-guarded map. It is the default
// when no snapshot path is configured; snapshots live only as long as the
// process.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[memoryKey]model.Snapshot
}

type memoryKey struct {
	clientID   string
	campaignID string
	day        string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{snaps: make(map[memoryKey]model.Snapshot)}
}

func (s *MemoryStore) Migrate(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) PutSnapshot(_ context.Context, snap *model.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[memoryKey{snap.ClientID, snap.CampaignID, snap.AsOfDay}] = *snap
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, clientID, campaignID, day string) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[memoryKey{clientID, campaignID, day}]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context, clientID, campaignID string, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	s.mu.RLock()
	var snaps []model.Snapshot
	for key, snap := range s.snaps {
		if key.clientID == clientID && key.campaignID == campaignID {
			snaps = append(snaps, snap)
		}
	}
	s.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].AsOfDay > snaps[j].AsOfDay
	})
	if len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

func (s *MemoryStore) DeleteSnapshotsBefore(_ context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key := range s.snaps {
		if key.day < day {
			delete(s.snaps, key)
			deleted++
		}
	}
	return deleted, nil
}
