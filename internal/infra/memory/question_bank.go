package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizdesk/internal/domain"
)

// QuestionLoader fetches the active questions from the backing store.
type QuestionLoader interface {
	LoadActiveQuestions(ctx context.Context) ([]domain.Question, error)
}

const bankKey = "active"

// QuestionBank caches the active question set with a TTL to avoid repeated DB hits.
type QuestionBank struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	rnd       *rand.Rand
	questions []domain.Question
	expiresAt time.Time
	loaded    bool
}

func NewQuestionBank(loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := b.cached(b.clock()); ok {
		return qs, nil
	}

	result, err, _ := b.sf.Do(bankKey, func() (interface{}, error) {
		now := b.clock()
		if qs, ok := b.cached(now); ok {
			return qs, nil
		}

		qs, err := b.loader.LoadActiveQuestions(ctx)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.questions = qs
		b.expiresAt = now.Add(b.ttlWithJitterLocked())
		b.loaded = true
		b.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(result.([]domain.Question)), nil
}

// Invalidate drops the cached set so the next read goes to the loader.
func (b *QuestionBank) Invalidate(_ context.Context) error {
	b.mu.Lock()
	b.loaded = false
	b.questions = nil
	b.mu.Unlock()
	return nil
}

func (b *QuestionBank) cached(now time.Time) ([]domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.loaded || !b.expiresAt.After(now) {
		return nil, false
	}
	return clone(b.questions), true
}

func (b *QuestionBank) ttlWithJitterLocked() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

func clone(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	copy(out, qs)
	return out
}
