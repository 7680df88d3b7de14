// Package store holds the last published vehicle snapshot. Snapshots are
// immutable once published and replaced wholesale each tick, so concurrent
// readers never observe a torn update.
package store

import (
	"sync"
	"time"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/transit"
	"github.com/google/uuid"
)

// Snapshot is one tick's complete vehicle set.
type Snapshot struct {
	ID          uuid.UUID                 `json:"snapshotId"`
	Source      transit.Source            `json:"source"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Vehicles    []transit.VehiclePosition `json:"vehicles"`
}

// NewSnapshot assembles a snapshot with a fresh ID.
func NewSnapshot(source transit.Source, ts time.Time, vehicles []transit.VehiclePosition) *Snapshot {
	return &Snapshot{
		ID:          uuid.New(),
		Source:      source,
		GeneratedAt: ts,
		Vehicles:    vehicles,
	}
}

// Store is the copy-on-write holder for the latest snapshot.
type Store struct {
	mu     sync.RWMutex
	latest *Snapshot
}

// NewStore returns an empty store; Latest is nil until the first Replace.
func NewStore() *Store {
	return &Store{}
}

// Replace publishes a snapshot, fully superseding the previous one. The
// last-completed tick wins; partial results are never merged.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
}

// Latest returns the current snapshot, or nil before the first tick. The
// returned snapshot must be treated as read-only.
func (s *Store) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// ByLine returns the latest snapshot's vehicles for one line.
func (s *Store) ByLine(lineCode string) []transit.VehiclePosition {
	snap := s.Latest()
	if snap == nil {
		return nil
	}
	var out []transit.VehiclePosition
	for _, v := range snap.Vehicles {
		if v.LineCode == lineCode {
			out = append(out, v)
		}
	}
	return out
}

// Counts returns the latest snapshot's vehicle count per line.
func (s *Store) Counts() map[string]int {
	snap := s.Latest()
	if snap == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, v := range snap.Vehicles {
		counts[v.LineCode]++
	}
	return counts
}
