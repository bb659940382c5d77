package redis

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyCache caches grading keys in Redis so every instance shares one
// copy, falling back to the question store on a miss. Layout:
//
//	HSET answerkeys:correct {questionID} {optionID}
//	HSET answerkeys:points  {questionID} {points}
//	HSET answerkeys:task    {questionID} {taskNumber}
//	SET  answerkeys:loaded  1
//
// answerkeys:gen is bumped on every invalidation; a fill that started
// before the bump is discarded.
type AnswerKeyCache struct {
	client *redis.Client
	source app.AnswerKeySource
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

const (
	correctKey = "answerkeys:correct"
	pointsKey  = "answerkeys:points"
	taskKey    = "answerkeys:task"
	loadedKey  = "answerkeys:loaded"
	genKey     = "answerkeys:gen"
)

func NewAnswerKeyCache(client *redis.Client, source app.AnswerKeySource, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) AnswerKeys(ctx context.Context) (map[int64]domain.AnswerKey, error) {
	if keys, ok := c.readCache(ctx); ok {
		return keys, nil
	}

	result, err, _ := c.sf.Do(loadedKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if keys, ok := c.readCache(ctx); ok {
			return keys, nil
		}
		gen, _ := c.client.Get(ctx, genKey).Result()

		keys, err := c.source.AnswerKeys(ctx)
		if err != nil {
			return nil, err
		}
		c.fill(ctx, gen, keys)
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int64]domain.AnswerKey), nil
}

// Invalidate removes the cached keys and bumps the generation.
func (c *AnswerKeyCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, correctKey, pointsKey, taskKey, loadedKey)
		pipe.Incr(ctx, genKey)
		return nil
	})
	return err
}

func (c *AnswerKeyCache) readCache(ctx context.Context) (map[int64]domain.AnswerKey, bool) {
	var (
		loaded  *redis.IntCmd
		correct *redis.MapStringStringCmd
		points  *redis.MapStringStringCmd
		tasks   *redis.MapStringStringCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		loaded = pipe.Exists(ctx, loadedKey)
		correct = pipe.HGetAll(ctx, correctKey)
		points = pipe.HGetAll(ctx, pointsKey)
		tasks = pipe.HGetAll(ctx, taskKey)
		return nil
	})
	if err != nil || loaded.Val() == 0 {
		return nil, false
	}
	return buildKeysFromCache(correct.Val(), points.Val(), tasks.Val()), true
}

func (c *AnswerKeyCache) fill(ctx context.Context, gen string, keys map[int64]domain.AnswerKey) {
	ttl := c.ttlWithJitter()
	// Best effort: a failed or lost race only costs a reload next time.
	_ = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, correctKey, pointsKey, taskKey)
			for id, key := range keys {
				field := strconv.FormatInt(id, 10)
				pipe.HSet(ctx, correctKey, field, key.CorrectOption)
				pipe.HSet(ctx, pointsKey, field, key.Points)
				pipe.HSet(ctx, taskKey, field, key.TaskNumber)
			}
			pipe.Set(ctx, loadedKey, "1", ttl)
			if ttl > 0 {
				pipe.Expire(ctx, correctKey, ttl)
				pipe.Expire(ctx, pointsKey, ttl)
				pipe.Expire(ctx, taskKey, ttl)
			}
			return nil
		})
		return err
	}, genKey)
}

func buildKeysFromCache(correct, points, tasks map[string]string) map[int64]domain.AnswerKey {
	keys := make(map[int64]domain.AnswerKey, len(correct))
	for field, option := range correct {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		key := domain.AnswerKey{QuestionID: id, CorrectOption: option, Points: domain.DefaultPoints}
		if p, err := strconv.Atoi(points[field]); err == nil && p >= 0 {
			key.Points = p
		}
		if t, err := strconv.Atoi(tasks[field]); err == nil {
			key.TaskNumber = t
		}
		keys[id] = key
	}
	return keys
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
