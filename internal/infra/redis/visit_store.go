package redis

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// VisitStore is a Redis-aware implementation of app.VisitRepository.
// Notes:
//   - Visits themselves live in a local map; the OTP challenge they hold must not
//     leave the process.
//   - Redis holds a liveness marker per visit with an idle TTL. A visit whose marker
//     expired is dropped on the next lookup, and Save periodically sweeps every local
//     visit whose marker is gone.
type VisitStore struct {
	client     *redis.Client
	ttl        time.Duration
	sweepEvery time.Duration
	now        func() time.Time

	mu        sync.RWMutex
	visits    map[string]*app.Visit
	lastSweep time.Time
}

func NewVisitStore(client *redis.Client, ttl time.Duration) *VisitStore {
	return &VisitStore{
		client:     client,
		ttl:        ttl,
		sweepEvery: time.Minute,
		now:        time.Now,
		visits:     make(map[string]*app.Visit),
	}
}

func (s *VisitStore) Save(v *app.Visit) {
	s.mu.Lock()
	s.visits[v.ID()] = v
	now := s.now()
	due := now.Sub(s.lastSweep) >= s.sweepEvery
	if due {
		s.lastSweep = now
	}
	s.mu.Unlock()

	ctx := context.Background()
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(v.ID()), "1", s.ttl).Err()
	if due {
		s.sweep(ctx)
	}
}

func (s *VisitStore) Get(visitID string) (*app.Visit, bool) {
	s.mu.RLock()
	v, ok := s.visits[visitID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	ctx := context.Background()
	alive, err := s.client.Expire(ctx, s.key(visitID), s.ttl).Result()
	if err != nil {
		// Redis unreachable: keep serving the local visit.
		return v, true
	}
	if !alive {
		s.Delete(visitID)
		return nil, false
	}
	return v, true
}

func (s *VisitStore) Delete(visitID string) {
	s.mu.Lock()
	delete(s.visits, visitID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(visitID)).Err()
}

// sweep drops local visits whose marker expired. If Redis cannot answer, nothing is dropped.
func (s *VisitStore) sweep(ctx context.Context) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.visits))
	for id := range s.visits {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		if checks[i].Val() == 0 {
			delete(s.visits, id)
		}
	}
}

func (s *VisitStore) key(visitID string) string {
	return "quiz:visit:" + visitID
}
