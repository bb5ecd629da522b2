package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"quizdesk/internal/domain"
)

// Store persists questions, students, answers and scores through bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// AddQuestions inserts the questions in one transaction and returns them with IDs.
func (s *Store) AddQuestions(ctx context.Context, questions []domain.Question) ([]domain.Question, error) {
	if len(questions) == 0 {
		return nil, nil
	}
	models := make([]*questionModel, 0, len(questions))
	for _, q := range questions {
		models = append(models, questionFromDomain(q))
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&models).Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "insert questions")
	}
	saved := make([]domain.Question, 0, len(models))
	for _, m := range models {
		saved = append(saved, m.toDomain())
	}
	return saved, nil
}

func (s *Store) FindStudent(ctx context.Context, key domain.IdentityKey, name, email string) (domain.Student, error) {
	var m studentModel
	q := s.db.NewSelect().Model(&m).Where("st.email = ?", email)
	if key == domain.IdentityNameEmail {
		q = q.Where("st.name = ?", name)
	}
	err := q.OrderExpr("st.id ASC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, errors.Wrap(err, "find student")
	}
	return m.toDomain(), nil
}

// CreateStudent inserts the student or returns the existing row for the same
// name and email.
func (s *Store) CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error) {
	m := &studentModel{Name: student.Name, Email: student.Email, CreatedAt: student.CreatedAt}
	_, err := s.db.NewInsert().
		Model(m).
		On("CONFLICT (name, email) DO UPDATE").
		Set("name = EXCLUDED.name").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Student{}, errors.Wrap(err, "upsert student")
	}
	return m.toDomain(), nil
}

func (s *Store) InsertAnswer(ctx context.Context, answer domain.Answer) (domain.Answer, error) {
	m := &answerModel{
		QuestionID:   answer.QuestionID,
		QuestionText: answer.QuestionText,
		StudentID:    answer.StudentID,
		GivenAnswer:  answer.GivenAnswer,
		IsCorrect:    answer.IsCorrect,
		AnsweredAt:   answer.AnsweredAt,
	}
	if _, err := s.db.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return domain.Answer{}, errors.Wrap(err, "insert answer")
	}
	return m.toDomain(), nil
}

func (s *Store) InsertScore(ctx context.Context, score domain.Score) (domain.Score, error) {
	m := &scoreModel{
		StudentID:  score.StudentID,
		Points:     score.Points,
		Percentage: score.Percentage,
		RecordedAt: score.RecordedAt,
	}
	if _, err := s.db.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return domain.Score{}, errors.Wrap(err, "insert score")
	}
	return m.toDomain(), nil
}

// ScoreHistory lists scores newest first. A non-positive limit returns all rows.
func (s *Store) ScoreHistory(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	var models []scoreModel
	q := s.db.NewSelect().
		Model(&models).
		Relation("Student").
		OrderExpr("sc.recorded_at DESC, sc.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "load score history")
	}
	entries := make([]domain.ScoreEntry, 0, len(models))
	for i := range models {
		entry := domain.ScoreEntry{Score: models[i].toDomain()}
		if st := models[i].Student; st != nil {
			entry.StudentName = st.Name
			entry.StudentEmail = st.Email
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
