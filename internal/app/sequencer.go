package app

import (
	"math/rand"

	"quizdesk/internal/domain"
)

// Sequencer orders the questions of one session. Wrong answers are deferred and
// come back once the pending queue runs dry; correct answers leave for good.
type Sequencer struct {
	rnd      *rand.Rand
	pending  []domain.Question
	deferred []domain.Question
	total    int
	state    domain.SessionState
}

// Verdict is the outcome of one submission.
type Verdict struct {
	Question domain.Question
	Correct  bool
	Awarded  int
}

func NewSequencer(rnd *rand.Rand) *Sequencer {
	return &Sequencer{rnd: rnd, state: domain.StateNotStarted}
}

// Initialize shuffles questions into the pending queue. The input slice is not modified.
func (s *Sequencer) Initialize(questions []domain.Question) {
	s.pending = make([]domain.Question, len(questions))
	copy(s.pending, questions)
	s.shuffle(s.pending)
	s.deferred = nil
	s.total = len(s.pending)
	s.state = domain.StateInProgress
}

// Next returns the question at the front of the queue without removing it.
// It returns false once the pending queue and the deferred list are both empty.
func (s *Sequencer) Next() (domain.Question, bool) {
	if s.state != domain.StateInProgress {
		return domain.Question{}, false
	}
	if !s.refill() {
		s.state = domain.StateComplete
		return domain.Question{}, false
	}
	return s.pending[0], true
}

// Submit evaluates the answer against the front question and removes it from the
// queue. A wrong answer puts the question on the deferred list.
func (s *Sequencer) Submit(given string) (Verdict, error) {
	switch s.state {
	case domain.StateNotStarted:
		return Verdict{}, domain.ErrSessionNotStarted
	case domain.StateComplete:
		return Verdict{}, domain.ErrQuizComplete
	}
	if !s.refill() {
		s.state = domain.StateComplete
		return Verdict{}, domain.ErrQuizComplete
	}

	q := s.pending[0]
	s.pending = s.pending[1:]

	correct, awarded := Evaluate(q, given)
	if !correct {
		s.deferred = append(s.deferred, q)
	}
	return Verdict{Question: q, Correct: correct, Awarded: awarded}, nil
}

// Progress counts everything not in the pending queue as answered.
func (s *Sequencer) Progress() domain.Progress {
	answered := s.total - len(s.pending)
	p := domain.Progress{Answered: answered, Total: s.total}
	if s.total > 0 {
		p.Percent = float64(answered) * 100 / float64(s.total)
	}
	return p
}

func (s *Sequencer) State() domain.SessionState {
	return s.state
}

// Deferred returns how many questions are waiting for another attempt.
func (s *Sequencer) Deferred() int {
	return len(s.deferred)
}

// refill moves deferred questions into an empty pending queue and reports
// whether anything is left to ask.
func (s *Sequencer) refill() bool {
	if len(s.pending) > 0 {
		return true
	}
	if len(s.deferred) == 0 {
		return false
	}
	s.pending = s.deferred
	s.deferred = nil
	s.shuffle(s.pending)
	return true
}

// shuffle is a Fisher-Yates shuffle in place.
func (s *Sequencer) shuffle(qs []domain.Question) {
	for i := len(qs) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
