package memory

import (
	"context"
	"sort"
	"sync"

	"quizdesk/internal/domain"
)

// Store keeps questions, students, answers and scores in process memory.
// It backs the service when no database is configured, and tests.
type Store struct {
	mu        sync.RWMutex
	questions []domain.Question
	students  []domain.Student
	answers   []domain.Answer
	scores    []domain.Score

	nextQuestion int64
	nextStudent  int64
	nextAnswer   int64
	nextScore    int64
}

func NewStore() *Store {
	return &Store{}
}

// NewStoreWithQuestions seeds the store, assigning IDs to the questions.
func NewStoreWithQuestions(questions []domain.Question) *Store {
	s := NewStore()
	_, _ = s.AddQuestions(context.Background(), questions)
	return s
}

func (s *Store) LoadActiveQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.Active {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) AddQuestions(_ context.Context, questions []domain.Question) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		s.nextQuestion++
		q.ID = s.nextQuestion
		q.Stored = true
		q.Options = append([]string(nil), q.Options...)
		s.questions = append(s.questions, q)
		saved = append(saved, q)
	}
	return saved, nil
}

func (s *Store) FindStudent(_ context.Context, key domain.IdentityKey, name, email string) (domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.Email != email {
			continue
		}
		if key == domain.IdentityNameEmail && st.Name != name {
			continue
		}
		return st, nil
	}
	return domain.Student{}, domain.ErrStudentNotFound
}

func (s *Store) CreateStudent(_ context.Context, student domain.Student) (domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.students {
		if st.Name == student.Name && st.Email == student.Email {
			return st, nil
		}
	}
	s.nextStudent++
	student.ID = s.nextStudent
	s.students = append(s.students, student)
	return student, nil
}

// Students returns a copy of all stored students.
func (s *Store) Students() []domain.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Student(nil), s.students...)
}

func (s *Store) InsertAnswer(_ context.Context, answer domain.Answer) (domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAnswer++
	answer.ID = s.nextAnswer
	s.answers = append(s.answers, answer)
	return answer, nil
}

// Answers returns a copy of all stored answers in insertion order.
func (s *Store) Answers() []domain.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Answer(nil), s.answers...)
}

func (s *Store) InsertScore(_ context.Context, score domain.Score) (domain.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextScore++
	score.ID = s.nextScore
	s.scores = append(s.scores, score)
	return score, nil
}

func (s *Store) ScoreHistory(_ context.Context, limit int) ([]domain.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[int64]domain.Student, len(s.students))
	for _, st := range s.students {
		byID[st.ID] = st
	}
	entries := make([]domain.ScoreEntry, 0, len(s.scores))
	for _, sc := range s.scores {
		st := byID[sc.StudentID]
		entries = append(entries, domain.ScoreEntry{Score: sc, StudentName: st.Name, StudentEmail: st.Email})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].RecordedAt.Equal(entries[j].RecordedAt) {
			return entries[i].RecordedAt.After(entries[j].RecordedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
