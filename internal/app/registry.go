package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"quizdesk/internal/domain"
)

// StudentRepository persists students.
type StudentRepository interface {
	// FindStudent returns domain.ErrStudentNotFound when nothing matches.
	FindStudent(ctx context.Context, key domain.IdentityKey, name, email string) (domain.Student, error)
	CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error)
}

// StudentRegistry resolves a student by identity key, creating it on first sight.
type StudentRegistry struct {
	repo  StudentRepository
	key   domain.IdentityKey
	clock func() time.Time

	mu    sync.Mutex
	known map[string]domain.Student
}

func NewStudentRegistry(repo StudentRepository, key domain.IdentityKey) *StudentRegistry {
	if !key.Valid() {
		key = domain.IdentityEmail
	}
	return &StudentRegistry{
		repo:  repo,
		key:   key,
		clock: time.Now,
		known: make(map[string]domain.Student),
	}
}

// IdentityKey reports which fields deduplicate students.
func (r *StudentRegistry) IdentityKey() domain.IdentityKey {
	return r.key
}

// Resolve returns the existing student for the identity key or creates one.
// Fields outside the identity key are ignored for an existing student.
func (r *StudentRegistry) Resolve(ctx context.Context, name, email string) (domain.Student, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	cacheKey := r.cacheKey(name, email)
	if student, ok := r.known[cacheKey]; ok {
		return student, nil
	}

	student, err := r.repo.FindStudent(ctx, r.key, name, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStudentNotFound):
		student, err = r.repo.CreateStudent(ctx, domain.Student{
			Name:      name,
			Email:     email,
			CreatedAt: r.clock(),
		})
		if err != nil {
			return domain.Student{}, &domain.PersistenceError{Op: "create student", Err: err}
		}
	default:
		return domain.Student{}, &domain.PersistenceError{Op: "find student", Err: err}
	}

	r.known[cacheKey] = student
	return student, nil
}

func (r *StudentRegistry) cacheKey(name, email string) string {
	if r.key == domain.IdentityNameEmail {
		return name + "\x00" + email
	}
	return email
}
