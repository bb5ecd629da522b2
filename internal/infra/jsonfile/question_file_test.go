package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"quizdesk/internal/domain"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	qs, err := NewQuestionFile(filepath.Join(t.TempDir(), "vragen.json")).LoadQuestions(context.Background())
	if err != nil || len(qs) != 0 {
		t.Fatalf("expected empty result without error, got %v, %v", qs, err)
	}
}

func TestLoadLegacyAndCurrentNames(t *testing.T) {
	path := writeFile(t, `[
  {"questionId": 4, "text": " Sky colour? ", "correctAnswer": "blue", "weight": 2, "isActive": false},
  {"id": 5, "text": "2 + 2?", "correctAnswer": "4", "options": ["3", "4"]}
]`)
	qs, err := NewQuestionFile(path).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].ID != 4 || qs[0].Text != "Sky colour?" || qs[0].Active || qs[0].Weight != 2 {
		t.Fatalf("unexpected legacy question: %+v", qs[0])
	}
	if qs[1].ID != 5 || !qs[1].Active || qs[1].Weight != 1 || qs[1].Kind() != domain.KindMultipleChoice {
		t.Fatalf("unexpected question: %+v", qs[1])
	}
	if qs[0].Stored || qs[1].Stored {
		t.Fatalf("file questions are not store-backed")
	}
}

func TestLoadMalformedIsParseError(t *testing.T) {
	cases := map[string]string{
		"syntax":          `[{"text": "a"`,
		"not an array":    `{"text": "a", "correctAnswer": "b"}`,
		"negative weight": `[{"text": "a", "correctAnswer": "b", "weight": -1}]`,
		"wrong type":      `[{"text": "a", "correctAnswer": "b", "active": "yes"}]`,
		"blank answer":    `[{"text": "a", "correctAnswer": "  "}]`,
	}
	for name, body := range cases {
		_, err := NewQuestionFile(writeFile(t, body)).LoadQuestions(context.Background())
		if !domain.IsParse(err) {
			t.Fatalf("%s: expected parse error, got %v", name, err)
		}
	}
}

func TestEmptyDocumentIsEmptyList(t *testing.T) {
	qs, err := Parse([]byte("  \n"))
	if err != nil || qs != nil {
		t.Fatalf("expected nil, nil; got %v, %v", qs, err)
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	in := []domain.Question{
		{ID: 1, Text: "Capital of France?", CorrectAnswer: "Paris", Weight: 3, Active: true},
		{ID: 2, Text: "2 + 2?", CorrectAnswer: "4", Weight: 1, Active: false, Options: []string{"3", "4"}},
	}
	if err := Write(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := NewQuestionFile(path).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[0].Weight != 3 || out[1].Active || len(out[1].Options) != 2 {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vragen.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}
