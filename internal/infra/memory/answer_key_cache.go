package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
	"golang.org/x/sync/singleflight"
)

const answerKeysFlight = "answer-keys"

// AnswerKeyCache caches answer keys with TTL to avoid re-reading the
// question bank on every submission. It is process-local: run a single
// instance or use the Redis cache when the bank is edited from elsewhere.
type AnswerKeyCache struct {
	source app.AnswerKeySource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	keys      map[int64]domain.AnswerKey
	expiresAt time.Time
	gen       uint64
}

func NewAnswerKeyCache(source app.AnswerKeySource, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) AnswerKeys(ctx context.Context) (map[int64]domain.AnswerKey, error) {
	if keys, ok := c.cached(); ok {
		return keys, nil
	}

	result, err, _ := c.sf.Do(answerKeysFlight, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if keys, ok := c.cached(); ok {
			return keys, nil
		}
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		keys, err := c.source.AnswerKeys(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// An invalidation during the load makes this result stale; serve it but don't keep it.
		if c.gen == gen && c.ttl > 0 {
			c.keys = keys
			c.expiresAt = c.clock().Add(c.ttlWithJitter())
		}
		c.mu.Unlock()
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int64]domain.AnswerKey), nil
}

// Invalidate drops the cached keys; the next read reloads from the source.
func (c *AnswerKeyCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.keys = nil
	c.gen++
	c.mu.Unlock()
	return nil
}

func (c *AnswerKeyCache) cached() (map[int64]domain.AnswerKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.keys != nil && c.expiresAt.After(c.clock()) {
		return c.keys, true
	}
	return nil, false
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
