package app

import (
	"strings"

	"quizdesk/internal/domain"
)

// Evaluate compares the trimmed given answer with the question's correct answer,
// ignoring case. A correct answer is worth the question's full weight.
func Evaluate(q domain.Question, given string) (bool, int) {
	if !strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(q.CorrectAnswer)) {
		return false, 0
	}
	return true, q.Weight
}
