package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"quizdesk/internal/domain"
)

// QuestionLoader fetches the active questions from the backing store.
type QuestionLoader interface {
	LoadActiveQuestions(ctx context.Context) ([]domain.Question, error)
}

// activeQuestionsKey holds the JSON-encoded active question set.
const activeQuestionsKey = "quiz:questions:active"

// QuestionBank caches the active question set in Redis and falls back to a loader on a miss.
// A broken cache never fails a read; the loader is used instead.
type QuestionBank struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := b.cached(ctx); ok {
		return qs, nil
	}

	result, err, _ := b.sf.Do(activeQuestionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := b.cached(ctx); ok {
			return qs, nil
		}

		qs, err := b.loader.LoadActiveQuestions(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(qs)
		if err != nil {
			return nil, errors.Wrap(err, "encode question cache")
		}
		if err := b.client.Set(ctx, activeQuestionsKey, data, b.ttlWithJitter()).Err(); err != nil {
			log.WithError(err).Warn("question cache not written")
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate removes the cached set.
func (b *QuestionBank) Invalidate(ctx context.Context) error {
	return errors.Wrap(b.client.Del(ctx, activeQuestionsKey).Err(), "invalidate question cache")
}

func (b *QuestionBank) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := b.client.Get(ctx, activeQuestionsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("question cache unavailable")
		}
		return nil, false
	}
	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		log.WithError(err).Warn("question cache corrupt")
		return nil, false
	}
	// Only store-backed questions are ever cached here.
	for i := range qs {
		qs[i].Stored = true
	}
	return qs, true
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
