package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/postgres"
	pgmigrations "quizdesk/internal/infra/postgres/migrations"
	infraredis "quizdesk/internal/infra/redis"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenDB(pgURL)
	defer db.Close()
	runMigrations(t, ctx, db)

	store := postgres.NewStore(db)
	seeded, err := store.AddQuestions(ctx, []domain.Question{
		{Text: "What is 2 + 2?", CorrectAnswer: "4", Weight: 1, Active: true, Options: []string{"3", "4", "5"}},
		{Text: "Capital of France?", CorrectAnswer: "Paris", Weight: 2, Active: true},
		{Text: "Largest ocean?", CorrectAnswer: "Pacific", Weight: 3, Active: true},
		{Text: "Retired", CorrectAnswer: "x", Weight: 5, Active: false},
	})
	if err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	answers := map[string]string{}
	for _, q := range seeded {
		answers[q.Text] = q.CorrectAnswer
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	bank := infraredis.NewQuestionBank(redisClient, postgres.NewQuestionLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(app.Dependencies{
		Sessions: sessions,
		Bank:     bank,
		Registry: app.NewStudentRegistry(store, domain.IdentityEmail),
		Gateway:  app.NewScoringGateway(store, store),
	})

	started, err := service.StartQuiz(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Progress.Total != 3 || len(started.Warnings) != 0 {
		t.Fatalf("expected 3 active questions without warnings: %+v", started)
	}

	// Miss the first question once, then answer everything right.
	missed := false
	q := started.Question
	var outcome app.AnswerOutcome
	for q != nil {
		answer := answers[q.Text]
		if !missed {
			answer = "no idea"
			missed = true
		}
		outcome, err = service.SubmitAnswer(ctx, started.SessionID, answer)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if len(outcome.Warnings) != 0 {
			t.Fatalf("unexpected warnings: %v", outcome.Warnings)
		}
		q = outcome.Next
	}
	if !outcome.Complete || outcome.Summary.Score.Points != 6 || outcome.Summary.Score.Percentage != 100 || !outcome.Summary.Persisted {
		t.Fatalf("unexpected summary: %+v", outcome.Summary)
	}

	snap, err := sessions.Snapshot(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State != domain.StateComplete || snap.Earned != 6 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	var answerRows int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM answers WHERE question_id IS NOT NULL`).Scan(&answerRows); err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answerRows != 4 {
		t.Fatalf("expected 4 answer rows, got %d", answerRows)
	}

	history, err := store.ScoreHistory(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].StudentName != "Alice" || history[0].Points != 6 {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestStudentUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := postgres.OpenDB(pgURL)
	defer db.Close()
	runMigrations(t, ctx, db)

	store := postgres.NewStore(db)
	a, err := store.CreateStudent(ctx, domain.Student{Name: "Ann", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := store.CreateStudent(ctx, domain.Student{Name: "Ann", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if a.ID != b.ID {
		t.Fatalf("expected one row, got ids %d and %d", a.ID, b.ID)
	}
	if _, err := store.CreateStudent(ctx, domain.Student{Name: "Ben", Email: "ann@example.com"}); err != nil {
		t.Fatalf("create namesake: %v", err)
	}

	byEmail, err := store.FindStudent(ctx, domain.IdentityEmail, "whoever", "ann@example.com")
	if err != nil || byEmail.ID != a.ID {
		t.Fatalf("expected oldest row by email, got %+v, %v", byEmail, err)
	}
	byBoth, err := store.FindStudent(ctx, domain.IdentityNameEmail, "Ben", "ann@example.com")
	if err != nil || byBoth.Name != "Ben" {
		t.Fatalf("expected Ben by name and email, got %+v, %v", byBoth, err)
	}
	if _, err := store.FindStudent(ctx, domain.IdentityEmail, "", "nobody@example.com"); err != domain.ErrStudentNotFound {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func runMigrations(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
