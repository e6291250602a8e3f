package services

import (
	"sync"
	"time"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

// AggregationStore holds the four source slots for the active lane. It
// is the only mutable state the gateway keeps between turns. Writers
// must obtain a generation first; a write carrying a generation older
// than the last accepted one for that key is dropped, so a slow fetch
// from a previous turn can never overwrite a newer result.
type AggregationStore struct {
	mu      sync.RWMutex
	entries map[models.SourceKey]models.SourceEntry
	nextGen map[models.SourceKey]uint64
	lastGen map[models.SourceKey]uint64
}

// NewAggregationStore creates a store with all four slots empty.
func NewAggregationStore() *AggregationStore {
	s := &AggregationStore{
		entries: make(map[models.SourceKey]models.SourceEntry),
		nextGen: make(map[models.SourceKey]uint64),
		lastGen: make(map[models.SourceKey]uint64),
	}
	for _, key := range models.AllSourceKeys {
		s.entries[key] = models.SourceEntry{}
	}
	return s
}

// NextGeneration reserves a write ticket for one key. Tickets are
// handed out at dispatch time, before the upstream call starts.
func (s *AggregationStore) NextGeneration(key models.SourceKey) (uint64, error) {
	if !key.Valid() {
		return 0, models.ErrInvalidSourceKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen[key]++
	return s.nextGen[key], nil
}

// Set writes one slot. Returns false without error when the generation
// is stale; the caller's result simply lost the race to a newer fetch.
func (s *AggregationStore) Set(key models.SourceKey, entry models.SourceEntry, generation uint64) (bool, error) {
	if !key.Valid() {
		return false, models.ErrInvalidSourceKey
	}
	if !entry.HasData {
		entry.Payload = nil
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation <= s.lastGen[key] {
		return false, nil
	}
	s.lastGen[key] = generation
	s.entries[key] = entry
	return true, nil
}

// Get returns one slot.
func (s *AggregationStore) Get(key models.SourceKey) (models.SourceEntry, error) {
	if !key.Valid() {
		return models.SourceEntry{}, models.ErrInvalidSourceKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key], nil
}

// Snapshot returns a copy of all four slots. Mutating the copy does not
// touch the store.
func (s *AggregationStore) Snapshot() map[models.SourceKey]models.SourceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[models.SourceKey]models.SourceEntry, len(s.entries))
	for key, entry := range s.entries {
		snapshot[key] = entry
	}
	return snapshot
}

// IsReady reports whether at least one slot holds data. One source is
// enough for a recommendation; the engine is told which sources were
// missing.
func (s *AggregationStore) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.HasData {
			return true
		}
	}
	return false
}

// ReadySources lists the keys that currently hold data, in canonical
// order.
func (s *AggregationStore) ReadySources() []models.SourceKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ready := make([]models.SourceKey, 0, len(models.AllSourceKeys))
	for _, key := range models.AllSourceKeys {
		if s.entries[key].HasData {
			ready = append(ready, key)
		}
	}
	return ready
}

// CountWithData returns how many slots hold data. Exposed as a gauge.
func (s *AggregationStore) CountWithData() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, entry := range s.entries {
		if entry.HasData {
			count++
		}
	}
	return count
}

// Reset empties every slot. Generation counters are preserved, so a
// fetch still in flight when the reset happens lands normally and
// re-populates its one key.
func (s *AggregationStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range models.AllSourceKeys {
		s.entries[key] = models.SourceEntry{}
	}
}
