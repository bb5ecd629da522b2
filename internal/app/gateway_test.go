package app_test

import (
	"context"
	"testing"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

func TestFinalizeScorePercentageBounds(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gateway := app.NewScoringGateway(store, store)
	student := domain.Student{ID: 1, Name: "Ann", Email: "ann@example.com"}

	cases := []struct {
		earned, possible int
		want             float64
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{1, 4, 25},
	}
	for _, tc := range cases {
		score, err := gateway.FinalizeScore(ctx, student, tc.earned, tc.possible)
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if score.Percentage != tc.want || score.Percentage < 0 || score.Percentage > 100 {
			t.Fatalf("%d/%d: expected %v%%, got %v", tc.earned, tc.possible, tc.want, score.Percentage)
		}
		if score.ID == 0 || score.Points != tc.earned {
			t.Fatalf("unexpected score: %+v", score)
		}
	}
}

func TestRecordAnswerReferencesStoredQuestionsOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gateway := app.NewScoringGateway(store, store)
	student := domain.Student{ID: 3}

	stored, _ := gateway.RecordAnswer(ctx, student, domain.Question{ID: 9, Text: "Q", Stored: true}, "x", false)
	fromFile, _ := gateway.RecordAnswer(ctx, student, domain.Question{ID: 10, Text: "F"}, "y", true)

	if stored.QuestionID != 9 || stored.QuestionText != "Q" {
		t.Fatalf("unexpected stored answer: %+v", stored)
	}
	if fromFile.QuestionID != 0 || fromFile.QuestionText != "F" || !fromFile.IsCorrect {
		t.Fatalf("unexpected file answer: %+v", fromFile)
	}
}
