package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"quizdesk/internal/domain"
)

// questionFileSchema checks the shape of a question file before decoding.
// Legacy property names (questionId, isActive) are tolerated.
const questionFileSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id":            {"type": "integer"},
      "questionId":    {"type": "integer"},
      "text":          {"type": "string"},
      "correctAnswer": {"type": "string"},
      "weight":        {"type": "integer", "minimum": 0},
      "active":        {"type": "boolean"},
      "isActive":      {"type": "boolean"},
      "options":       {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var schema = mustSchema(questionFileSchema)

func mustSchema(raw string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(err)
	}
	return s
}

type questionRecord struct {
	ID            *int64   `json:"id"`
	QuestionID    *int64   `json:"questionId"`
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correctAnswer"`
	Weight        int      `json:"weight"`
	Active        *bool    `json:"active"`
	IsActive      *bool    `json:"isActive"`
	Options       []string `json:"options"`
}

func (r questionRecord) toDomain() domain.Question {
	q := domain.Question{
		Text:          strings.TrimSpace(r.Text),
		CorrectAnswer: strings.TrimSpace(r.CorrectAnswer),
		Weight:        r.Weight,
		Active:        true,
		Options:       r.Options,
	}
	switch {
	case r.ID != nil:
		q.ID = *r.ID
	case r.QuestionID != nil:
		q.ID = *r.QuestionID
	}
	switch {
	case r.Active != nil:
		q.Active = *r.Active
	case r.IsActive != nil:
		q.Active = *r.IsActive
	}
	if q.Weight == 0 {
		q.Weight = 1
	}
	return q
}

// QuestionFile loads questions from a JSON array on disk.
type QuestionFile struct {
	path string
}

func NewQuestionFile(path string) *QuestionFile {
	return &QuestionFile{path: path}
}

func (f *QuestionFile) Path() string {
	return f.path
}

// LoadQuestions returns nothing, without error, when the file does not exist.
func (f *QuestionFile) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.ParseError{Source: f.path, Err: errors.Wrap(err, "read question file")}
	}
	questions, err := Parse(data)
	if err != nil {
		return nil, &domain.ParseError{Source: f.path, Err: err}
	}
	return questions, nil
}

// Parse validates and decodes question file content. An empty document is an empty list.
func Parse(data []byte) ([]domain.Question, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errors.Wrap(err, "malformed question file")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.Errorf("invalid question file: %s", strings.Join(msgs, "; "))
	}

	var records []questionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "decode question file")
	}
	questions := make([]domain.Question, 0, len(records))
	for i, r := range records {
		q := r.toDomain()
		if q.Text == "" || q.CorrectAnswer == "" {
			return nil, errors.Errorf("question %d: text and correctAnswer are required", i)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Write stores questions as a question file, replacing the file at path.
func Write(path string, questions []domain.Question) error {
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode question file")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write question file")
}
