// Package store persists uploaded series and saved forecast configurations.
// Uploads live in memory or Redis depending on configuration; saved configs
// are a small JSON file rewritten on every change.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// ErrUploadNotFound is returned when an upload id is unknown or its TTL has
// passed.
var ErrUploadNotFound = errors.New("upload was not found or expired")

// UploadStore keeps validated uploaded tables keyed by id
type UploadStore interface {
	Put(ctx context.Context, id string, tbl *timeseries.Table) error
	Get(ctx context.Context, id string) (*timeseries.Table, error)
	Close() error
}

// MemoryUploadStore is the default single-process backend
type MemoryUploadStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	table     *timeseries.Table
	expiresAt time.Time
}

// NewMemoryUploadStore creates a store where entries live for ttl;
// a non-positive ttl keeps entries forever.
func NewMemoryUploadStore(ttl time.Duration) *MemoryUploadStore {
	return &MemoryUploadStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryUploadStore) Put(_ context.Context, id string, tbl *timeseries.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{table: tbl.Clone()}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[id] = entry
	return nil
}

func (s *MemoryUploadStore) Get(_ context.Context, id string) (*timeseries.Table, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrUploadNotFound
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, ErrUploadNotFound
	}
	return entry.table.Clone(), nil
}

func (s *MemoryUploadStore) Close() error {
	return nil
}
