package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// DayCache caches the quiz found for a day window with TTL to avoid repeated store hits.
// Misses are not cached so a quiz published later in the day shows up.
type DayCache struct {
	finder app.QuizFinder
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewDayCache(finder app.QuizFinder, ttl time.Duration) *DayCache {
	return &DayCache{
		finder: finder,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (c *DayCache) FindQuizInRange(ctx context.Context, start, end time.Time) (domain.Quiz, error) {
	key := windowKey(start, end)
	if quiz, ok := c.lookup(key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if quiz, ok := c.lookup(key); ok {
			return quiz, nil
		}

		quiz, err := c.finder.FindQuizInRange(ctx, start, end)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[key] = cachedQuiz{
			quiz:      quiz,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *DayCache) lookup(key string) (domain.Quiz, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		return entry.quiz, true
	}
	return domain.Quiz{}, false
}

func windowKey(start, end time.Time) string {
	return start.UTC().Format(time.RFC3339Nano) + "/" + end.UTC().Format(time.RFC3339Nano)
}

func (c *DayCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
