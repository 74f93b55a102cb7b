// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats keeps the usage counters and persists them through a
// key/value Backend. Counters only grow; storage faults degrade to
// defaults with a warning and never fail a caller's flow.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// Key is the storage key holding the serialized counters.
const Key = "scripture-links-stats"

// Backend is a durable key/value store.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store holds the in-memory counters for one session.
type Store struct {
	backend Backend

	mu       sync.Mutex
	counters types.Counters
}

// NewStore creates a store with zeroed counters. Call Load to pick up
// persisted values.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load replaces the counters with the persisted record merged over zero
// defaults. A missing or unreadable record leaves the defaults in place.
func (s *Store) Load(ctx context.Context) types.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = types.Counters{}
	data, ok, err := s.backend.Get(ctx, Key)
	if err != nil {
		logging.Warn("could not load stats, using defaults", "error", err)
		return s.counters
	}
	if !ok {
		return s.counters
	}

	c, err := decode(data)
	if err != nil {
		logging.Warn("stored stats are corrupt, using defaults", "error", err)
		return s.counters
	}
	s.counters = c
	return s.counters
}

// Save writes the full counters record.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	data, err := json.Marshal(s.counters)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	if err := s.backend.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("saving stats: %w", err)
	}
	return nil
}

// IncrementReferences adds n resolved references. Non-positive n is ignored.
func (s *Store) IncrementReferences(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.counters.ReferencesProcessed = saturatingAdd(s.counters.ReferencesProcessed, n)
	s.mu.Unlock()
}

// IncrementTextBlocks records one annotated text block.
func (s *Store) IncrementTextBlocks() {
	s.mu.Lock()
	s.counters.TextBlocksProcessed = saturatingAdd(s.counters.TextBlocksProcessed, 1)
	s.mu.Unlock()
}

// saturatingAdd adds a non-negative n to c, stopping at math.MaxInt.
func saturatingAdd(c, n int) int {
	if c > math.MaxInt-n {
		return math.MaxInt
	}
	return c + n
}

// Counters returns a snapshot.
func (s *Store) Counters() types.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// decode accepts partial records: unknown fields are ignored, missing or
// non-numeric fields stay zero, negatives clamp to zero and values past
// math.MaxInt clamp to math.MaxInt.
func decode(data []byte) (types.Counters, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Counters{}, err
	}
	return types.Counters{
		ReferencesProcessed: count(raw["referencesProcessed"]),
		TextBlocksProcessed: count(raw["textBlocksProcessed"]),
	}, nil
}

func count(v any) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(f)
}
