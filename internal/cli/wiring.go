package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/infra/jsonfile"
	"quizdesk/internal/infra/memory"
	"quizdesk/internal/infra/postgres"
	redisinfra "quizdesk/internal/infra/redis"
)

// recordStore is everything the use cases persist.
type recordStore interface {
	app.QuestionRepository
	app.StudentRepository
	app.AnswerRepository
	app.ScoreRepository
}

// runtime holds the services and the handles opened for one command.
type runtime struct {
	cfg     config.Config
	quiz    *app.QuizService
	teacher *app.TeacherService
	bank    app.QuestionBank
	file    *jsonfile.QuestionFile
	closers []func() error
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg config.Config) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// newRuntime opens the configured backends once. Without Postgres everything
// lives in memory; without Redis the question cache and sessions do too.
func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	var (
		store  recordStore
		loader memory.QuestionLoader
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		db := postgres.OpenDB(cfg.Postgres.URL)
		rt.closers = append(rt.closers, db.Close)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, errors.Wrap(err, "connect postgres")
		}
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })

		pgStore := postgres.NewStore(db)
		store = pgStore
		loader = postgres.NewQuestionLoader(pool)
	} else {
		log.Warn("postgres not configured; records are kept in memory")
		memStore := memory.NewStore()
		store = memStore
		loader = memStore
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var sessions app.SessionRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, client.Close)
		rt.bank = redisinfra.NewQuestionBank(client, loader, quizTTL)
		sessions = redisinfra.NewSessionStore(client, redisTTL)
	} else {
		rt.bank = memory.NewQuestionBank(loader, quizTTL)
		sessions = memory.NewSessionStore()
	}

	rt.file = jsonfile.NewQuestionFile(cfg.Quiz.QuestionsFile)
	deps := app.Dependencies{
		Sessions: sessions,
		Bank:     rt.bank,
		Registry: app.NewStudentRegistry(store, cfg.Quiz.IdentityKey),
		Gateway:  app.NewScoringGateway(store, store),
	}
	if cfg.FileQuestionsEnabled() {
		deps.File = rt.file
	}
	rt.quiz = app.NewQuizService(deps)
	rt.teacher = app.NewTeacherService(store, rt.bank, rt.file, store)
	return rt, nil
}

// Close releases handles in reverse order of opening.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			log.WithError(err).Warn("close failed")
		}
	}
	rt.closers = nil
}
