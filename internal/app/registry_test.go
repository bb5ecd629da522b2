package app_test

import (
	"context"
	"errors"
	"testing"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	registry := app.NewStudentRegistry(store, domain.IdentityEmail)

	first, err := registry.Resolve(ctx, "Ann", "ann@example.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := registry.Resolve(ctx, " Ann ", "ann@example.com ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.ID != second.ID || len(store.Students()) != 1 {
		t.Fatalf("expected one student, got %+v and %+v", first, second)
	}
}

func TestResolveByEmailIgnoresName(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	registry := app.NewStudentRegistry(store, domain.IdentityEmail)

	a, _ := registry.Resolve(ctx, "Ann", "ann@example.com")
	b, _ := registry.Resolve(ctx, "Annie", "ann@example.com")
	if a.ID != b.ID || b.Name != "Ann" {
		t.Fatalf("expected the existing student by email, got %+v", b)
	}
}

func TestResolveByNameAndEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	registry := app.NewStudentRegistry(store, domain.IdentityNameEmail)

	a, _ := registry.Resolve(ctx, "Ann", "shared@example.com")
	b, _ := registry.Resolve(ctx, "Ben", "shared@example.com")
	if a.ID == b.ID || len(store.Students()) != 2 {
		t.Fatalf("expected two students sharing an email, got %+v and %+v", a, b)
	}
	if registry.IdentityKey() != domain.IdentityNameEmail {
		t.Fatalf("unexpected identity key %q", registry.IdentityKey())
	}
}

func TestResolveUnknownKeyFallsBackToEmail(t *testing.T) {
	registry := app.NewStudentRegistry(memory.NewStore(), domain.IdentityKey("phone"))
	if registry.IdentityKey() != domain.IdentityEmail {
		t.Fatalf("expected email fallback, got %q", registry.IdentityKey())
	}
}

func TestResolveWrapsStoreFailures(t *testing.T) {
	registry := app.NewStudentRegistry(brokenStudents{}, domain.IdentityEmail)
	_, err := registry.Resolve(context.Background(), "Ann", "ann@example.com")
	if !domain.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

type brokenStudents struct{}

func (brokenStudents) FindStudent(context.Context, domain.IdentityKey, string, string) (domain.Student, error) {
	return domain.Student{}, errors.New("connection refused")
}

func (brokenStudents) CreateStudent(context.Context, domain.Student) (domain.Student, error) {
	return domain.Student{}, errors.New("connection refused")
}
