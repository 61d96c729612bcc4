package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/domain/types"
)

// MemoryStore implements Store with in-process maps. It is the default
// backend and the one integration tests run against.
type MemoryStore struct {
	mu        sync.RWMutex
	responses map[string]map[string]Record // assessmentID -> itemID -> record
	profiles  map[string]types.Profile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		responses: make(map[string]map[string]Record),
		profiles:  make(map[string]types.Profile),
	}
}

// UpsertResponse writes one response keyed by (assessmentID, ItemID).
func (s *MemoryStore) UpsertResponse(_ context.Context, assessmentID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(assessmentID, rec)
	return nil
}

// UpsertAll applies all records under one lock, so readers never observe a
// partially written batch.
func (s *MemoryStore) UpsertAll(_ context.Context, assessmentID string, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		s.upsertLocked(assessmentID, rec)
	}
	return nil
}

func (s *MemoryStore) upsertLocked(assessmentID string, rec Record) {
	byItem, ok := s.responses[assessmentID]
	if !ok {
		byItem = make(map[string]Record)
		s.responses[assessmentID] = byItem
	}
	byItem[rec.ItemID] = rec
}

// ResponsesFor returns stored responses ordered by canonical id for
// deterministic reads.
func (s *MemoryStore) ResponsesFor(_ context.Context, assessmentID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byItem, ok := s.responses[assessmentID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Record, 0, len(byItem))
	for _, rec := range byItem {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalID < out[j].CanonicalID })
	return out, nil
}

// SaveProfile stores the computed profile, replacing any previous one.
func (s *MemoryStore) SaveProfile(_ context.Context, profile types.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.AssessmentID] = profile
	return nil
}

// Profile returns the stored profile.
func (s *MemoryStore) Profile(_ context.Context, assessmentID string) (types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[assessmentID]
	if !ok {
		return types.Profile{}, ErrNotFound
	}
	return profile, nil
}

// Count returns the number of assessments with stored responses.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses)
}
