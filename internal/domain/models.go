package domain

import "time"

// QuestionKind tags how a question is presented to the student.
type QuestionKind string

const (
	KindFreeform       QuestionKind = "freeform"
	KindMultipleChoice QuestionKind = "multiple_choice"
)

// Question is a weighted question. A non-empty Options list makes it a
// multiple-choice question; the correct answer is compared the same way for both.
type Question struct {
	ID            int64    `json:"id"`
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correctAnswer"`
	Weight        int      `json:"weight"`
	Active        bool     `json:"active"`
	Options       []string `json:"options,omitempty"`

	// Stored reports whether the question exists in the backing store.
	Stored bool `json:"-"`
}

// Kind returns the question variant.
func (q Question) Kind() QuestionKind {
	if len(q.Options) > 0 {
		return KindMultipleChoice
	}
	return KindFreeform
}

// Student is identified by the configured IdentityKey.
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Answer is one submitted response. QuestionID is zero when the question
// did not come from the backing store.
type Answer struct {
	ID           int64     `json:"id"`
	QuestionID   int64     `json:"questionId,omitempty"`
	QuestionText string    `json:"questionText"`
	StudentID    int64     `json:"studentId"`
	GivenAnswer  string    `json:"givenAnswer"`
	IsCorrect    bool      `json:"isCorrect"`
	AnsweredAt   time.Time `json:"answeredAt"`
}

// Score is the final result of one completed session.
type Score struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"studentId"`
	Points     int       `json:"points"`
	Percentage float64   `json:"percentage"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ScoreEntry is a Score joined with its student for the history view.
type ScoreEntry struct {
	Score
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// Progress reports how far a session is through its pending queue.
type Progress struct {
	Answered int     `json:"answered"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// SessionState is the lifecycle of a quiz session.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateComplete   SessionState = "complete"
)

// IdentityKey selects which student fields deduplicate a student record.
type IdentityKey string

const (
	IdentityEmail     IdentityKey = "email"
	IdentityNameEmail IdentityKey = "name_email"
)

// Valid reports whether k is a known identity key.
func (k IdentityKey) Valid() bool {
	return k == IdentityEmail || k == IdentityNameEmail
}

// Percentage returns earned/possible scaled to 0..100, or 0 when possible is 0.
func Percentage(earned, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return float64(earned) / float64(possible) * 100
}
