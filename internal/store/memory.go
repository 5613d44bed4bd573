package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/agri-advisor/internal/weather"
)

// entry holds cached forecast samples for a location.
type entry struct {
	samples   []weather.Observation
	expiresAt time.Time
}

// MemoryStore is a concurrency-safe in-memory sample cache.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key
	data map[string]entry

	// maxEntries bounds the number of locations kept (0 = unlimited).
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the samples for loc if they have not expired.
func (s *MemoryStore) Get(_ context.Context, loc weather.Location) ([]weather.Observation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[loc.Key()]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	out := make([]weather.Observation, len(e.samples))
	copy(out, e.samples)
	return out, true, nil
}

// Set stores samples for loc and enforces retention.
func (s *MemoryStore) Set(_ context.Context, loc weather.Location, samples []weather.Observation, ttl time.Duration) error {
	stored := make([]weather.Observation, len(samples))
	copy(stored, samples)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.data[loc.Key()] = entry{samples: stored, expiresAt: now.Add(ttl)}

	// Enforce retention by age first, then by count (soonest to expire goes).
	for k, e := range s.data {
		if !now.Before(e.expiresAt) {
			delete(s.data, k)
		}
	}
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.data {
			if oldestKey == "" || e.expiresAt.Before(oldest) {
				oldestKey, oldest = k, e.expiresAt
			}
		}
		delete(s.data, oldestKey)
	}
	return nil
}

// Len returns the number of cached locations, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ weather.SampleCache = (*MemoryStore)(nil)
