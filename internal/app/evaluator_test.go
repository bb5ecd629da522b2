package app

import (
	"testing"

	"quizdesk/internal/domain"
)

func TestEvaluate(t *testing.T) {
	free := domain.Question{Text: "Capital of France?", CorrectAnswer: "Paris", Weight: 3}
	choice := domain.Question{Text: "2 + 2?", CorrectAnswer: "4", Weight: 2, Options: []string{"3", "4"}}

	cases := []struct {
		name    string
		q       domain.Question
		given   string
		correct bool
		awarded int
	}{
		{"exact", free, "Paris", true, 3},
		{"case-insensitive", free, "pARIS", true, 3},
		{"surrounding space", free, "  paris\n", true, 3},
		{"wrong", free, "Lyon", false, 0},
		{"empty", free, "", false, 0},
		{"multiple choice", choice, "4", true, 2},
		{"multiple choice wrong", choice, "3", false, 0},
	}
	for _, tc := range cases {
		correct, awarded := Evaluate(tc.q, tc.given)
		if correct != tc.correct || awarded != tc.awarded {
			t.Fatalf("%s: got (%v, %d), want (%v, %d)", tc.name, correct, awarded, tc.correct, tc.awarded)
		}
	}
}
