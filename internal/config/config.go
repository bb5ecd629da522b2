package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"quizdesk/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL                  string             `yaml:"ttl"`
		QuestionsFile        string             `yaml:"questionsFile"`
		IncludeFileQuestions *bool              `yaml:"includeFileQuestions"`
		IdentityKey          domain.IdentityKey `yaml:"identityKey"`
		HistoryLimit         int                `yaml:"historyLimit"`
	} `yaml:"quiz"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Quiz.QuestionsFile = "vragen.json"
	cfg.Quiz.IdentityKey = domain.IdentityEmail
	cfg.Quiz.HistoryLimit = 50
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file is
// not an error. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	if c.Quiz.IdentityKey != "" && !c.Quiz.IdentityKey.Valid() {
		return fmt.Errorf("quiz.identityKey: unknown value %q", c.Quiz.IdentityKey)
	}
	if c.Quiz.HistoryLimit < 0 {
		return fmt.Errorf("quiz.historyLimit: must not be negative")
	}
	for name, raw := range map[string]string{"redis.ttl": c.Redis.TTL, "quiz.ttl": c.Quiz.TTL} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// FileQuestionsEnabled reports whether file questions join each session.
// It defaults to true.
func (c Config) FileQuestionsEnabled() bool {
	return c.Quiz.IncludeFileQuestions == nil || *c.Quiz.IncludeFileQuestions
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("QUESTIONS_FILE"); v != "" {
		cfg.Quiz.QuestionsFile = v
	}
	if v := os.Getenv("IDENTITY_KEY"); v != "" {
		cfg.Quiz.IdentityKey = domain.IdentityKey(v)
	}
	if v := os.Getenv("INCLUDE_FILE_QUESTIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Quiz.IncludeFileQuestions = &b
		}
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
