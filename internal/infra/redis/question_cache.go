package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-backend/internal/domain"
)

// QuestionSource fetches a category's questions from the backing store.
type QuestionSource interface {
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Question, error)
}

// QuestionCache keeps a category's full question set in Redis as one JSON
// value: SET category:{id}:questions. Uploads and deletes call Invalidate so
// readers never see a stale set longer than one round trip.
type QuestionCache struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, source QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) QuestionsByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Question, error) {
	key := c.key(categoryID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		return decodeQuestions(raw)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return decodeQuestions(raw)
		}

		questions, err := c.source.FindByCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("marshal questions: %w", err)
		}
		// best-effort fill; a failed SET only costs the next reader a DB hit
		_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached set for a category.
func (c *QuestionCache) Invalidate(ctx context.Context, categoryID uuid.UUID) error {
	return c.client.Del(ctx, c.key(categoryID)).Err()
}

func (c *QuestionCache) key(categoryID uuid.UUID) string {
	return "category:" + categoryID.String() + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func decodeQuestions(raw []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return questions, nil
}
