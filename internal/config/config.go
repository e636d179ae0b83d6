// Package config gathers runtime settings from defaults, an optional .env
// file and ADAPTIQ_* environment variables. Command-line flags are applied on
// top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/store"
)

// ErrNoJudge is returned when the bank needs a judge and no language-model
// provider is configured.
var ErrNoJudge = errors.New("bank has free-form questions but no LLM provider is configured")

// Config holds all runtime settings.
type Config struct {
	BankPath    string
	ResultsPath string

	DBDriver store.Driver
	DBPath   string // empty selects store.DefaultDBPath for sqlite

	// RedisURL enables the Redis mirror of the result log when set.
	RedisURL string
	RedisKey string

	PassThreshold float64
	JudgeTimeout  time.Duration
	Subject       string

	LogFile  string
	LogLevel slog.Level

	LLM      llm.Config
	LLMError error // why LLM is unusable, nil when it is
}

// Default returns the built-in settings.
func Default() Config {
	judge := grading.DefaultJudgeConfig()
	return Config{
		BankPath:      "questions.json",
		ResultsPath:   "resultados.csv",
		DBDriver:      store.DriverSQLite,
		PassThreshold: grading.DefaultPassThreshold,
		JudgeTimeout:  judge.Timeout,
		Subject:       judge.Subject,
		LogLevel:      slog.LevelInfo,
		LLM:           llm.DefaultConfig(),
	}
}

// Load reads envFile into the environment when it exists (variables already
// set win) and builds the configuration. An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from defaults and ADAPTIQ_* variables.
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	if v := os.Getenv("ADAPTIQ_BANK"); v != "" {
		cfg.BankPath = v
	}
	if v := os.Getenv("ADAPTIQ_RESULTS"); v != "" {
		cfg.ResultsPath = v
	}
	if v := os.Getenv("ADAPTIQ_DB_DRIVER"); v != "" {
		d, err := store.ParseDriver(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ADAPTIQ_DB_DRIVER: %w", err))
		}
		cfg.DBDriver = d
	}
	if v := os.Getenv("ADAPTIQ_DB"); v != "" {
		cfg.DBPath = v
	}
	cfg.RedisURL = os.Getenv("ADAPTIQ_REDIS_URL")
	cfg.RedisKey = os.Getenv("ADAPTIQ_REDIS_KEY")

	if v := os.Getenv("ADAPTIQ_PASS_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("ADAPTIQ_PASS_THRESHOLD: %w", err))
		} else {
			cfg.PassThreshold = f
		}
	}
	if v := os.Getenv("ADAPTIQ_JUDGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ADAPTIQ_JUDGE_TIMEOUT: %w", err))
		} else {
			cfg.JudgeTimeout = d
		}
	}
	if v := os.Getenv("ADAPTIQ_SUBJECT"); v != "" {
		cfg.Subject = v
	}

	cfg.LogFile = os.Getenv("ADAPTIQ_LOG_FILE")
	if v := os.Getenv("ADAPTIQ_LOG_LEVEL"); v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.LogLevel = lvl
		}
	}

	cfg.LLM, cfg.LLMError = llm.ResolveConfig()

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that do not depend on the bank contents.
func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.BankPath) == "" {
		errs = append(errs, "bank path is required")
	}
	if strings.TrimSpace(c.ResultsPath) == "" {
		errs = append(errs, "results path is required")
	}
	if c.PassThreshold <= 0 || c.PassThreshold > 1 {
		errs = append(errs, fmt.Sprintf("pass threshold %v is outside (0, 1]", c.PassThreshold))
	}
	if c.JudgeTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("judge timeout %s must be positive", c.JudgeTimeout))
	}
	if _, err := store.ParseDriver(string(c.DBDriver)); err != nil {
		errs = append(errs, err.Error())
	}
	if c.DBDriver == store.DriverPostgres && c.DBPath == "" {
		errs = append(errs, "postgres requires a DSN (ADAPTIQ_DB or --db)")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// RequireJudge fails when needsJudge is set and no provider is usable.
func (c Config) RequireJudge(needsJudge bool) error {
	if !needsJudge || c.LLMError == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrNoJudge, c.LLMError)
}

// JudgeConfig returns the judge settings derived from this configuration.
func (c Config) JudgeConfig() grading.JudgeConfig {
	cfg := grading.DefaultJudgeConfig()
	cfg.Subject = c.Subject
	cfg.Timeout = c.JudgeTimeout
	if c.LLM.MaxTokens > 0 {
		cfg.MaxTokens = c.LLM.MaxTokens
	}
	return cfg
}
