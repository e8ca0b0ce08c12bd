package memory

import (
	"sync"
	"time"

	"daily-quiz-service/internal/app"
)

// VisitStore is an in-memory implementation of app.VisitRepository.
// Visits idle longer than ttl are dropped lazily.
type VisitStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu     sync.RWMutex
	visits map[string]*visitEntry
}

type visitEntry struct {
	visit    *app.Visit
	lastSeen time.Time
}

func NewVisitStore(ttl time.Duration) *VisitStore {
	return NewVisitStoreWithClock(ttl, time.Now)
}

// NewVisitStoreWithClock is test-only for deterministic expiry.
func NewVisitStoreWithClock(ttl time.Duration, clock func() time.Time) *VisitStore {
	return &VisitStore{
		ttl:    ttl,
		clock:  clock,
		visits: make(map[string]*visitEntry),
	}
}

func (s *VisitStore) Save(v *app.Visit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.sweepLocked(now)
	s.visits[v.ID()] = &visitEntry{visit: v, lastSeen: now}
}

func (s *VisitStore) Get(visitID string) (*app.Visit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.visits[visitID]
	if !ok {
		return nil, false
	}
	now := s.clock()
	if s.expired(entry, now) {
		delete(s.visits, visitID)
		return nil, false
	}
	entry.lastSeen = now
	return entry.visit, true
}

func (s *VisitStore) Delete(visitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.visits, visitID)
}

func (s *VisitStore) expired(entry *visitEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.lastSeen) > s.ttl
}

func (s *VisitStore) sweepLocked(now time.Time) {
	for id, entry := range s.visits {
		if s.expired(entry, now) {
			delete(s.visits, id)
		}
	}
}
