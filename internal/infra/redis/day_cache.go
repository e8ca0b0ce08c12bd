package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DayCache caches the quiz found for a day window in Redis and falls back to the
// document store on a miss. Quizzes are stored as JSON:
//
//	SET quiz:day:{startMillis}:{endMillis} {quiz json} EX ttl
//
// Misses are not cached.
type DayCache struct {
	client *redis.Client
	finder app.QuizFinder
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewDayCache(client *redis.Client, finder app.QuizFinder, ttl time.Duration) *DayCache {
	return &DayCache{
		client: client,
		finder: finder,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *DayCache) FindQuizInRange(ctx context.Context, start, end time.Time) (domain.Quiz, error) {
	key := c.key(start, end)
	if quiz, ok := c.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := c.finder.FindQuizInRange(ctx, start, end)
		if err != nil {
			return domain.Quiz{}, err
		}

		if data, err := json.Marshal(quiz); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *DayCache) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *DayCache) key(start, end time.Time) string {
	return "quiz:day:" + strconv.FormatInt(start.UnixMilli(), 10) + ":" + strconv.FormatInt(end.UnixMilli(), 10)
}

func (c *DayCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
