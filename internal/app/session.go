package app

import (
	"math/rand"
	"sync"
	"time"

	"quizdesk/internal/domain"
)

// Session is the state of one student's run through the quiz.
type Session struct {
	id        string
	student   domain.Student
	startedAt time.Time
	now       func() time.Time

	mu       sync.Mutex
	seq      *Sequencer
	earned   int
	possible int
	missed   []domain.Question
	seen     map[questionKey]bool

	score          *domain.Score
	scorePersisted bool
	updatedAt      time.Time
}

type questionKey struct {
	id   int64
	text string
}

// Snapshot is a read-only view of a session used by stores and transports.
type Snapshot struct {
	ID        string              `json:"sessionId"`
	Student   domain.Student      `json:"student"`
	State     domain.SessionState `json:"state"`
	Progress  domain.Progress     `json:"progress"`
	Earned    int                 `json:"earned"`
	Possible  int                 `json:"possible"`
	Deferred  int                 `json:"deferred"`
	StartedAt time.Time           `json:"startedAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// NewSession is exported for infrastructure layers that need to seed sessions.
// The questions are shuffled with a fixed seed.
func NewSession(id string, student domain.Student, questions []domain.Question) *Session {
	s := newSession(id, student, NewSequencer(rand.New(rand.NewSource(1))), time.Now)
	s.load(questions)
	return s
}

func newSession(id string, student domain.Student, seq *Sequencer, now func() time.Time) *Session {
	started := now()
	return &Session{
		id:        id,
		student:   student,
		startedAt: started,
		updatedAt: started,
		now:       now,
		seq:       seq,
		seen:      make(map[questionKey]bool),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Student() domain.Student {
	return s.student
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        s.id,
		Student:   s.student,
		State:     s.seq.State(),
		Progress:  s.seq.Progress(),
		Earned:    s.earned,
		Possible:  s.possible,
		Deferred:  s.seq.Deferred(),
		StartedAt: s.startedAt,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) load(questions []domain.Question) {
	s.seq.Initialize(questions)
	s.possible = 0
	for _, q := range questions {
		s.possible += q.Weight
	}
}

func (s *Session) markMissed(q domain.Question) {
	key := questionKey{id: q.ID, text: q.Text}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.missed = append(s.missed, q)
}

func (s *Session) summaryLocked() *Summary {
	if s.score == nil {
		return nil
	}
	missed := make([]MissedQuestion, 0, len(s.missed))
	for _, q := range s.missed {
		missed = append(missed, MissedQuestion{Text: q.Text, CorrectAnswer: q.CorrectAnswer})
	}
	return &Summary{
		Score:     *s.score,
		Possible:  s.possible,
		Persisted: s.scorePersisted,
		Missed:    missed,
	}
}
