package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"quizdesk/internal/domain"
)

// QuestionLoader reads the active questions straight from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, text, correct_answer, weight, active, options
		FROM questions WHERE active ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "load active questions")
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.CorrectAnswer, &q.Weight, &q.Active, &q.Options); err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		q.Stored = true
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read questions")
	}
	return questions, nil
}
