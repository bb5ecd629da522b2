package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"quizdesk/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map; a session's queues cannot be shared
//     between processes.
//   - Redis holds a progress snapshot per session with a TTL, so other tools can
//     see who is mid-quiz and how far along they are.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(ctx context.Context, session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	s.writeSnapshot(ctx, session)
}

func (s *SessionStore) Get(_ context.Context, id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Touch(ctx context.Context, session *app.Session) {
	s.writeSnapshot(ctx, session)
}

func (s *SessionStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	// best-effort cleanup
	_ = s.client.Del(ctx, s.key(id)).Err()
}

// Snapshot reads the stored snapshot of a session.
func (s *SessionStore) Snapshot(ctx context.Context, id string) (app.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		return app.Snapshot{}, errors.Wrap(err, "read session snapshot")
	}
	var snap app.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return app.Snapshot{}, errors.Wrap(err, "decode session snapshot")
	}
	return snap, nil
}

// writeSnapshot is best effort; a failing Redis never blocks the quiz.
func (s *SessionStore) writeSnapshot(ctx context.Context, session *app.Session) {
	data, err := json.Marshal(session.Snapshot())
	if err != nil {
		log.WithError(err).Warn("session snapshot not encoded")
		return
	}
	if err := s.client.Set(ctx, s.key(session.ID()), data, s.ttl).Err(); err != nil {
		log.WithError(err).WithField("session", session.ID()).Warn("session snapshot not written")
	}
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
