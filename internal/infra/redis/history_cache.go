package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

// HistoryStore is the durable repository behind the cache.
type HistoryStore interface {
	Append(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	ListAll(ctx context.Context) ([]domain.Quiz, error)
}

// HistoryCache keeps a JSON snapshot of the full history listing in Redis:
//
//	SET quiz:history <json array of quizzes> EX <ttl>
//
// Writes go to the store first and then drop the snapshot. Redis is best-effort:
// when it fails the store answers directly.
type HistoryCache struct {
	client *redis.Client
	store  HistoryStore
	ttl    time.Duration
	log    *zap.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

const historyKey = "quiz:history"

func NewHistoryCache(client *redis.Client, store HistoryStore, ttl time.Duration, log *zap.Logger) *HistoryCache {
	return &HistoryCache{
		client: client,
		store:  store,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *HistoryCache) Append(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	stored, err := c.store.Append(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := c.client.Del(ctx, historyKey).Err(); err != nil {
		c.log.Warn("history cache invalidation failed", zap.Error(err))
	}
	return stored, nil
}

func (c *HistoryCache) ListAll(ctx context.Context) ([]domain.Quiz, error) {
	if quizzes, ok := c.cached(ctx); ok {
		return quizzes, nil
	}

	result, err, _ := c.sf.Do(historyKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quizzes, ok := c.cached(ctx); ok {
			return quizzes, nil
		}

		quizzes, err := c.store.ListAll(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(quizzes)
		if err == nil {
			err = c.client.Set(ctx, historyKey, data, c.ttlWithJitter()).Err()
		}
		if err != nil {
			c.log.Warn("history cache fill failed", zap.Error(err))
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Quiz), nil
}

func (c *HistoryCache) cached(ctx context.Context) ([]domain.Quiz, bool) {
	data, err := c.client.Get(ctx, historyKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("history cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var quizzes []domain.Quiz
	if err := json.Unmarshal(data, &quizzes); err != nil {
		c.log.Warn("history cache holds invalid snapshot", zap.Error(err))
		return nil, false
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	return quizzes, true
}

func (c *HistoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
