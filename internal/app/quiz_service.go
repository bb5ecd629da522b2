package app

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"quizdesk/internal/domain"
)

// SessionRepository abstracts how quiz sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(ctx context.Context, session *Session)
	Get(ctx context.Context, id string) (*Session, bool)
	// Touch refreshes whatever the store keeps about the session after a change.
	Touch(ctx context.Context, session *Session)
	Delete(ctx context.Context, id string)
}

// QuestionBank serves the active questions of the backing store, possibly cached.
type QuestionBank interface {
	ActiveQuestions(ctx context.Context) ([]domain.Question, error)
	Invalidate(ctx context.Context) error
}

// QuestionSource is an extra question source such as a JSON file.
type QuestionSource interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionView is a question as shown to a student, without its answer.
type QuestionView struct {
	ID      int64               `json:"id"`
	Text    string              `json:"text"`
	Kind    domain.QuestionKind `json:"kind"`
	Options []string            `json:"options,omitempty"`
	Weight  int                 `json:"weight"`
}

// MissedQuestion lists a question answered wrong at least once.
type MissedQuestion struct {
	Text          string `json:"text"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Summary is the final result of a completed session.
type Summary struct {
	Score     domain.Score     `json:"score"`
	Possible  int              `json:"possible"`
	Persisted bool             `json:"persisted"`
	Missed    []MissedQuestion `json:"missed"`
}

// StartResult is returned when a session begins.
type StartResult struct {
	SessionID string          `json:"sessionId"`
	Student   domain.Student  `json:"student"`
	Question  *QuestionView   `json:"question,omitempty"`
	Progress  domain.Progress `json:"progress"`
	Complete  bool            `json:"complete"`
	Summary   *Summary        `json:"summary,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// AnswerOutcome is the feedback for one submitted answer.
type AnswerOutcome struct {
	QuestionID    int64           `json:"questionId"`
	Correct       bool            `json:"correct"`
	Awarded       int             `json:"awarded"`
	CorrectAnswer string          `json:"correctAnswer,omitempty"`
	Earned        int             `json:"earned"`
	Progress      domain.Progress `json:"progress"`
	Next          *QuestionView   `json:"next,omitempty"`
	Complete      bool            `json:"complete"`
	Summary       *Summary        `json:"summary,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// Dependencies wires a QuizService.
type Dependencies struct {
	Sessions SessionRepository
	Bank     QuestionBank
	// File is optional; its questions are appended to the bank's.
	File     QuestionSource
	Registry *StudentRegistry
	Gateway  *ScoringGateway
}

// QuizService contains the student-facing quiz use cases.
type QuizService struct {
	sessions SessionRepository
	bank     QuestionBank
	file     QuestionSource
	registry *StudentRegistry
	gateway  *ScoringGateway
	now      func() time.Time
	seed     func() int64
}

func NewQuizService(deps Dependencies) *QuizService {
	return NewQuizServiceWithClock(deps, time.Now, func() int64 { return time.Now().UnixNano() })
}

// NewQuizServiceWithClock is for deterministic timestamps and shuffles in tests.
func NewQuizServiceWithClock(deps Dependencies, now func() time.Time, seed func() int64) *QuizService {
	return &QuizService{
		sessions: deps.Sessions,
		bank:     deps.Bank,
		file:     deps.File,
		registry: deps.Registry,
		gateway:  deps.Gateway,
		now:      now,
		seed:     seed,
	}
}

type startInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// StartQuiz resolves the student, loads the question set and begins a session.
func (s *QuizService) StartQuiz(ctx context.Context, name, email string) (StartResult, error) {
	in := startInput{Name: trim(name), Email: trim(email)}
	if err := validateInput(in); err != nil {
		return StartResult{}, err
	}

	student, err := s.registry.Resolve(ctx, in.Name, in.Email)
	if err != nil {
		return StartResult{}, err
	}

	questions, warnings := s.loadQuestions(ctx)

	seq := NewSequencer(rand.New(rand.NewSource(s.seed())))
	session := newSession(uuid.NewString(), student, seq, s.now)
	session.load(questions)
	s.sessions.Put(ctx, session)

	log.WithFields(log.Fields{
		"session":   session.id,
		"student":   student.ID,
		"questions": len(questions),
		"possible":  session.possible,
	}).Info("quiz session started")

	result := s.begin(ctx, session, warnings)
	if result.Complete {
		s.sessions.Touch(ctx, session)
	}
	return result, nil
}

func (s *QuizService) begin(ctx context.Context, session *Session, warnings []string) StartResult {
	session.mu.Lock()
	defer session.mu.Unlock()

	result := StartResult{
		SessionID: session.id,
		Student:   session.student,
		Warnings:  warnings,
	}
	if q, ok := session.seq.Next(); ok {
		result.Question = viewOf(q)
	} else {
		if warn := s.finalizeLocked(ctx, session); warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}
		result.Complete = true
		result.Summary = session.summaryLocked()
	}
	result.Progress = session.seq.Progress()
	return result
}

// CurrentQuestion returns the question waiting for an answer, or nil once complete.
func (s *QuizService) CurrentQuestion(ctx context.Context, sessionID string) (*QuestionView, Snapshot, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return nil, Snapshot{}, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	q, ok := session.seq.Next()
	if !ok {
		return nil, session.snapshotLocked(), nil
	}
	return viewOf(q), session.snapshotLocked(), nil
}

// SubmitAnswer evaluates the answer to the current question, records it and
// advances the session. Write failures are reported as warnings; the session
// carries on either way.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID, given string) (AnswerOutcome, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return AnswerOutcome{}, domain.ErrSessionNotFound
	}

	outcome, err := s.submit(ctx, session, trim(given))
	if err != nil {
		return AnswerOutcome{}, err
	}
	// Touch reads the session, so it runs after the lock is released.
	s.sessions.Touch(ctx, session)
	return outcome, nil
}

func (s *QuizService) submit(ctx context.Context, session *Session, given string) (AnswerOutcome, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	verdict, err := session.seq.Submit(given)
	if err != nil {
		return AnswerOutcome{}, err
	}

	session.earned += verdict.Awarded
	session.updatedAt = s.now()
	if !verdict.Correct {
		session.markMissed(verdict.Question)
	}

	outcome := AnswerOutcome{
		QuestionID: verdict.Question.ID,
		Correct:    verdict.Correct,
		Awarded:    verdict.Awarded,
		Earned:     session.earned,
	}
	if !verdict.Correct {
		outcome.CorrectAnswer = verdict.Question.CorrectAnswer
	}

	if _, err := s.gateway.RecordAnswer(ctx, session.student, verdict.Question, given, verdict.Correct); err != nil {
		log.WithError(err).WithField("session", session.id).Warn("answer not saved")
		outcome.Warnings = append(outcome.Warnings, err.Error())
	}

	if next, ok := session.seq.Next(); ok {
		outcome.Next = viewOf(next)
	} else {
		if warn := s.finalizeLocked(ctx, session); warn != "" {
			outcome.Warnings = append(outcome.Warnings, warn)
		}
		outcome.Complete = true
		outcome.Summary = session.summaryLocked()
	}
	outcome.Progress = session.seq.Progress()
	return outcome, nil
}

// Progress reports how far the session has come.
func (s *QuizService) Progress(ctx context.Context, sessionID string) (Snapshot, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Summary returns the final result of a completed session.
func (s *QuizService) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.score == nil {
		return nil, domain.ErrQuizNotComplete
	}
	return session.summaryLocked(), nil
}

// RetryScore writes the final score again after an earlier write failed.
// It is a no-op when the score is already stored.
func (s *QuizService) RetryScore(ctx context.Context, sessionID string) (*Summary, error) {
	session, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	summary, wrote, err := s.retry(ctx, session)
	if wrote {
		s.sessions.Touch(ctx, session)
	}
	return summary, err
}

func (s *QuizService) retry(ctx context.Context, session *Session) (*Summary, bool, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.score == nil {
		return nil, false, domain.ErrQuizNotComplete
	}
	if session.scorePersisted {
		return session.summaryLocked(), false, nil
	}
	saved, err := s.gateway.persistScore(ctx, *session.score)
	if err != nil {
		return session.summaryLocked(), false, err
	}
	session.score = &saved
	session.scorePersisted = true
	return session.summaryLocked(), true, nil
}

// EndSession drops the session.
func (s *QuizService) EndSession(ctx context.Context, sessionID string) {
	s.sessions.Delete(ctx, sessionID)
}

// loadQuestions concatenates the store's and the file's questions. A failing
// source contributes nothing and is reported as a warning.
func (s *QuizService) loadQuestions(ctx context.Context) ([]domain.Question, []string) {
	var (
		questions []domain.Question
		warnings  []string
	)
	if s.bank != nil {
		stored, err := s.bank.ActiveQuestions(ctx)
		if err != nil {
			log.WithError(err).Warn("stored questions unavailable")
			warnings = append(warnings, err.Error())
		} else {
			questions = append(questions, stored...)
		}
	}
	if s.file != nil {
		fromFile, err := s.file.LoadQuestions(ctx)
		if err != nil {
			log.WithError(err).Warn("question file skipped")
			warnings = append(warnings, err.Error())
		} else {
			questions = append(questions, activeOnly(fromFile)...)
		}
	}
	return questions, warnings
}

// finalizeLocked computes and stores the score once. It returns a warning when
// the write failed.
func (s *QuizService) finalizeLocked(ctx context.Context, session *Session) string {
	if session.score != nil {
		return ""
	}
	score, err := s.gateway.FinalizeScore(ctx, session.student, session.earned, session.possible)
	session.score = &score
	session.updatedAt = s.now()
	fields := log.Fields{
		"session":    session.id,
		"points":     score.Points,
		"percentage": score.Percentage,
	}
	if err != nil {
		log.WithError(err).WithFields(fields).Warn("score not saved")
		return err.Error()
	}
	session.scorePersisted = true
	log.WithFields(fields).Info("quiz session complete")
	return ""
}

func viewOf(q domain.Question) *QuestionView {
	v := &QuestionView{
		ID:     q.ID,
		Text:   q.Text,
		Kind:   q.Kind(),
		Weight: q.Weight,
	}
	if len(q.Options) > 0 {
		v.Options = append([]string(nil), q.Options...)
	}
	return v
}

func activeOnly(questions []domain.Question) []domain.Question {
	out := questions[:0:0]
	for _, q := range questions {
		if q.Active {
			out = append(out, q)
		}
	}
	return out
}
