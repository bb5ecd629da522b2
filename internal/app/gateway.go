package app

import (
	"context"
	"time"

	"quizdesk/internal/domain"
)

// AnswerRepository appends answer records.
type AnswerRepository interface {
	InsertAnswer(ctx context.Context, answer domain.Answer) (domain.Answer, error)
}

// ScoreRepository appends score records and lists them for the teacher view.
type ScoreRepository interface {
	InsertScore(ctx context.Context, score domain.Score) (domain.Score, error)
	// ScoreHistory lists scores newest first; limit <= 0 means no limit.
	ScoreHistory(ctx context.Context, limit int) ([]domain.ScoreEntry, error)
}

// ScoringGateway writes answer and score records for a session.
type ScoringGateway struct {
	answers AnswerRepository
	scores  ScoreRepository
	clock   func() time.Time
}

func NewScoringGateway(answers AnswerRepository, scores ScoreRepository) *ScoringGateway {
	return &ScoringGateway{answers: answers, scores: scores, clock: time.Now}
}

// RecordAnswer persists one immutable answer row.
func (g *ScoringGateway) RecordAnswer(ctx context.Context, student domain.Student, q domain.Question, given string, correct bool) (domain.Answer, error) {
	answer := domain.Answer{
		QuestionText: q.Text,
		StudentID:    student.ID,
		GivenAnswer:  given,
		IsCorrect:    correct,
		AnsweredAt:   g.clock(),
	}
	if q.Stored {
		answer.QuestionID = q.ID
	}
	saved, err := g.answers.InsertAnswer(ctx, answer)
	if err != nil {
		return answer, &domain.PersistenceError{Op: "record answer", Err: err}
	}
	return saved, nil
}

// FinalizeScore computes the percentage and persists the score. The computed
// score is returned even when the write fails.
func (g *ScoringGateway) FinalizeScore(ctx context.Context, student domain.Student, earned, possible int) (domain.Score, error) {
	score := domain.Score{
		StudentID:  student.ID,
		Points:     earned,
		Percentage: domain.Percentage(earned, possible),
		RecordedAt: g.clock(),
	}
	return g.persistScore(ctx, score)
}

func (g *ScoringGateway) persistScore(ctx context.Context, score domain.Score) (domain.Score, error) {
	saved, err := g.scores.InsertScore(ctx, score)
	if err != nil {
		return score, &domain.PersistenceError{Op: "finalize score", Err: err}
	}
	return saved, nil
}
