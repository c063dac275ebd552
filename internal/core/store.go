package core

// store.go keeps loaded datasets in memory between requests.
//
// Each upload gets its own Dataset keyed by a random ID, so concurrent users
// never see each other's data. Datasets expire after a period without access,
// and when the store is at capacity the least recently used one is evicted.

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrStoreFull       = errors.New("dataset store is full")
)

const (
	DefaultStoreTTL      = time.Hour
	DefaultMaxDatasets   = 100
	DefaultSweepInterval = 5 * time.Minute

	// MinEvictIdle is how long a dataset must sit unused before it can be
	// evicted to make room for a new one.
	MinEvictIdle = time.Minute
)

// Dataset is one loaded file with its precomputed statistics.
type Dataset struct {
	ID       string
	FileName string
	Table    *Table
	Stats    []StatisticsRow
	LoadedAt time.Time
}

type storeEntry struct {
	ds         *Dataset
	lastAccess time.Time
	elem       *list.Element
}

// Store is a TTL and LRU bounded map of datasets. It is safe for concurrent use.
type Store struct {
	ttl         time.Duration
	maxDatasets int
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*storeEntry
	lru     *list.List // front is most recently used; values are IDs
}

// NewStore creates an empty store. ttl <= 0 disables expiry; maxDatasets <= 0
// uses DefaultMaxDatasets.
func NewStore(ttl time.Duration, maxDatasets int) *Store {
	if maxDatasets <= 0 {
		maxDatasets = DefaultMaxDatasets
	}
	return &Store{
		ttl:         ttl,
		maxDatasets: maxDatasets,
		now:         time.Now,
		entries:     make(map[string]*storeEntry),
		lru:         list.New(),
	}
}

// Put stores a table under a new ID and returns its dataset. At capacity the
// least recently used dataset is evicted, or ErrStoreFull is returned if even
// that one was used within MinEvictIdle.
func (s *Store) Put(fileName string, t *Table) (*Dataset, error) {
	ds := &Dataset{
		ID:       uuid.NewString(),
		FileName: fileName,
		Table:    t,
		Stats:    ComputeStatistics(t),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ds.LoadedAt = now
	s.expireLocked(now)

	if len(s.entries) >= s.maxDatasets {
		back := s.lru.Back()
		if back == nil || now.Sub(s.entries[back.Value.(string)].lastAccess) < MinEvictIdle {
			return nil, ErrStoreFull
		}
		id := back.Value.(string)
		s.removeLocked(id)
		slog.Debug("dataset evicted", "dataset_id", id, "reason", "capacity")
	}

	e := &storeEntry{ds: ds, lastAccess: now}
	e.elem = s.lru.PushFront(ds.ID)
	s.entries[ds.ID] = e
	return ds, nil
}

// Get returns a dataset and marks it as recently used.
func (s *Store) Get(id string) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	now := s.now()
	if s.expired(e, now) {
		s.removeLocked(id)
		return nil, ErrDatasetNotFound
	}
	e.lastAccess = now
	s.lru.MoveToFront(e.elem)
	return e.ds, nil
}

// Delete removes a dataset.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrDatasetNotFound
	}
	s.removeLocked(id)
	return nil
}

// Len returns the number of stored datasets, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired datasets and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expireLocked(s.now())
}

// StartJanitor sweeps the store every interval until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("dataset janitor started", "interval", interval, "ttl", s.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dataset janitor stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if n := s.Sweep(); n > 0 {
				slog.Info("expired datasets removed",
					"removed", n,
					"remaining", s.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}

func (s *Store) expired(e *storeEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastAccess) > s.ttl
}

// expireLocked walks from the least recently used end; it stops at the first
// live entry since everything in front of it was accessed later.
func (s *Store) expireLocked(now time.Time) int {
	removed := 0
	for elem := s.lru.Back(); elem != nil; {
		id := elem.Value.(string)
		if !s.expired(s.entries[id], now) {
			break
		}
		prev := elem.Prev()
		s.removeLocked(id)
		removed++
		elem = prev
	}
	return removed
}

func (s *Store) removeLocked(id string) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	s.lru.Remove(e.elem)
	delete(s.entries, id)
}
