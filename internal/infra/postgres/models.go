package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quizdesk/internal/domain"
)

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID            int64    `bun:"id,pk,autoincrement"`
	Text          string   `bun:"text,notnull"`
	CorrectAnswer string   `bun:"correct_answer,notnull"`
	Weight        int      `bun:"weight,notnull"`
	Active        bool     `bun:"active,notnull"`
	Options       []string `bun:"options,array"`
}

type studentModel struct {
	bun.BaseModel `bun:"table:students,alias:st"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers,alias:a"`

	ID           int64     `bun:"id,pk,autoincrement"`
	QuestionID   int64     `bun:"question_id,nullzero"`
	QuestionText string    `bun:"question_text,notnull"`
	StudentID    int64     `bun:"student_id,notnull"`
	GivenAnswer  string    `bun:"given_answer,notnull"`
	IsCorrect    bool      `bun:"is_correct,notnull"`
	AnsweredAt   time.Time `bun:"answered_at,nullzero,notnull,default:current_timestamp"`
}

type scoreModel struct {
	bun.BaseModel `bun:"table:scores,alias:sc"`

	ID         int64         `bun:"id,pk,autoincrement"`
	StudentID  int64         `bun:"student_id,notnull"`
	Student    *studentModel `bun:"rel:belongs-to,join:student_id=id"`
	Points     int           `bun:"points,notnull"`
	Percentage float64       `bun:"percentage,notnull"`
	RecordedAt time.Time     `bun:"recorded_at,nullzero,notnull,default:current_timestamp"`
}

func questionFromDomain(q domain.Question) *questionModel {
	return &questionModel{
		Text:          q.Text,
		CorrectAnswer: q.CorrectAnswer,
		Weight:        q.Weight,
		Active:        q.Active,
		Options:       q.Options,
	}
}

func (m *questionModel) toDomain() domain.Question {
	return domain.Question{
		ID:            m.ID,
		Text:          m.Text,
		CorrectAnswer: m.CorrectAnswer,
		Weight:        m.Weight,
		Active:        m.Active,
		Options:       m.Options,
		Stored:        true,
	}
}

func (m *studentModel) toDomain() domain.Student {
	return domain.Student{ID: m.ID, Name: m.Name, Email: m.Email, CreatedAt: m.CreatedAt}
}

func (m *answerModel) toDomain() domain.Answer {
	return domain.Answer{
		ID:           m.ID,
		QuestionID:   m.QuestionID,
		QuestionText: m.QuestionText,
		StudentID:    m.StudentID,
		GivenAnswer:  m.GivenAnswer,
		IsCorrect:    m.IsCorrect,
		AnsweredAt:   m.AnsweredAt,
	}
}

func (m *scoreModel) toDomain() domain.Score {
	return domain.Score{
		ID:         m.ID,
		StudentID:  m.StudentID,
		Points:     m.Points,
		Percentage: m.Percentage,
		RecordedAt: m.RecordedAt,
	}
}
