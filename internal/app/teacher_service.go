package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"quizdesk/internal/domain"
)

// QuestionRepository stores new questions.
type QuestionRepository interface {
	AddQuestions(ctx context.Context, questions []domain.Question) ([]domain.Question, error)
}

// NewQuestion is the teacher's input for a question. A non-empty Options list
// makes it multiple choice.
type NewQuestion struct {
	Text          string   `json:"text" validate:"required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Weight        int      `json:"weight" validate:"gte=0"`
	Options       []string `json:"options,omitempty"`
}

// TeacherService contains the question management and reporting use cases.
type TeacherService struct {
	questions QuestionRepository
	bank      QuestionBank
	file      QuestionSource
	scores    ScoreRepository
}

func NewTeacherService(questions QuestionRepository, bank QuestionBank, file QuestionSource, scores ScoreRepository) *TeacherService {
	return &TeacherService{questions: questions, bank: bank, file: file, scores: scores}
}

// AddQuestion validates and stores one active question. Weight 0 means 1.
func (t *TeacherService) AddQuestion(ctx context.Context, in NewQuestion) (domain.Question, error) {
	q, err := buildQuestion(in)
	if err != nil {
		return domain.Question{}, err
	}
	saved, err := t.store(ctx, []domain.Question{q})
	if err != nil {
		return domain.Question{}, err
	}
	return saved[0], nil
}

// ImportQuestions stores questions read from a question file.
func (t *TeacherService) ImportQuestions(ctx context.Context, questions []domain.Question) ([]domain.Question, error) {
	prepared := make([]domain.Question, 0, len(questions))
	for i, q := range questions {
		built, err := buildQuestion(NewQuestion{
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswer,
			Weight:        q.Weight,
			Options:       q.Options,
		})
		if err != nil {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("questions[%d]", i), Message: err.Error()}
		}
		built.Active = q.Active
		prepared = append(prepared, built)
	}
	if len(prepared) == 0 {
		return nil, nil
	}
	return t.store(ctx, prepared)
}

// ImportFile reads the configured question file and stores its questions.
func (t *TeacherService) ImportFile(ctx context.Context) ([]domain.Question, error) {
	if t.file == nil {
		return nil, &domain.ValidationError{Field: "questionsFile", Message: "no question file configured"}
	}
	questions, err := t.file.LoadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return t.ImportQuestions(ctx, questions)
}

// ScoreHistory lists stored scores, newest first.
func (t *TeacherService) ScoreHistory(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	entries, err := t.scores.ScoreHistory(ctx, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "score history", Err: err}
	}
	return entries, nil
}

func (t *TeacherService) store(ctx context.Context, questions []domain.Question) ([]domain.Question, error) {
	saved, err := t.questions.AddQuestions(ctx, questions)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "add questions", Err: err}
	}
	if t.bank != nil {
		if err := t.bank.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("question cache not invalidated")
		}
	}
	log.WithField("count", len(saved)).Info("questions stored")
	return saved, nil
}

func buildQuestion(in NewQuestion) (domain.Question, error) {
	in.Text = trim(in.Text)
	in.CorrectAnswer = trim(in.CorrectAnswer)
	in.Options = cleanOptions(in.Options)
	if err := validateInput(in); err != nil {
		return domain.Question{}, err
	}
	if len(in.Options) > 0 && !containsFold(in.Options, in.CorrectAnswer) {
		return domain.Question{}, &domain.ValidationError{Field: "correctAnswer", Message: "must be one of the options"}
	}
	weight := in.Weight
	if weight == 0 {
		weight = 1
	}
	return domain.Question{
		Text:          in.Text,
		CorrectAnswer: in.CorrectAnswer,
		Weight:        weight,
		Active:        true,
		Options:       in.Options,
	}, nil
}

// SplitOptions turns a comma-separated option list into trimmed, non-empty options.
func SplitOptions(raw string) []string {
	return cleanOptions(strings.Split(raw, ","))
}

func cleanOptions(options []string) []string {
	var out []string
	for _, o := range options {
		if o = trim(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func containsFold(options []string, s string) bool {
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return true
		}
	}
	return false
}
