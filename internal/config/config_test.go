package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/store"
)

var envVars = []string{
	"ADAPTIQ_BANK", "ADAPTIQ_RESULTS", "ADAPTIQ_DB_DRIVER", "ADAPTIQ_DB",
	"ADAPTIQ_REDIS_URL", "ADAPTIQ_REDIS_KEY", "ADAPTIQ_PASS_THRESHOLD",
	"ADAPTIQ_JUDGE_TIMEOUT", "ADAPTIQ_SUBJECT", "ADAPTIQ_LOG_FILE", "ADAPTIQ_LOG_LEVEL",
	"ADAPTIQ_LLM_PROVIDER", "ADAPTIQ_ANTHROPIC_API_KEY", "ADAPTIQ_OPENAI_API_KEY",
	"ADAPTIQ_GEMINI_API_KEY", "ADAPTIQ_OPENROUTER_API_KEY",
	"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "questions.json", cfg.BankPath)
	assert.Equal(t, "resultados.csv", cfg.ResultsPath)
	assert.Equal(t, store.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 0.6, cfg.PassThreshold)
	assert.Equal(t, 20*time.Second, cfg.JudgeTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Error(t, cfg.LLMError, "no provider key set")
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADAPTIQ_BANK", "bank.yaml")
	t.Setenv("ADAPTIQ_RESULTS", "/tmp/out.csv")
	t.Setenv("ADAPTIQ_DB_DRIVER", "postgres")
	t.Setenv("ADAPTIQ_DB", "postgres://localhost/adaptiq")
	t.Setenv("ADAPTIQ_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADAPTIQ_PASS_THRESHOLD", "0.75")
	t.Setenv("ADAPTIQ_JUDGE_TIMEOUT", "5s")
	t.Setenv("ADAPTIQ_SUBJECT", "Redes")
	t.Setenv("ADAPTIQ_LOG_LEVEL", "debug")
	t.Setenv("ADAPTIQ_LLM_PROVIDER", "mock")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "bank.yaml", cfg.BankPath)
	assert.Equal(t, "/tmp/out.csv", cfg.ResultsPath)
	assert.Equal(t, store.DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 0.75, cfg.PassThreshold)
	assert.Equal(t, 5*time.Second, cfg.JudgeTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.NoError(t, cfg.LLMError)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.NoError(t, cfg.Validate())

	jc := cfg.JudgeConfig()
	assert.Equal(t, "Redes", jc.Subject)
	assert.Equal(t, 5*time.Second, jc.Timeout)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADAPTIQ_PASS_THRESHOLD", "alto")
	t.Setenv("ADAPTIQ_JUDGE_TIMEOUT", "20")
	t.Setenv("ADAPTIQ_LOG_LEVEL", "chatty")

	_, err := FromEnv()
	require.Error(t, err)
	for _, name := range []string{"ADAPTIQ_PASS_THRESHOLD", "ADAPTIQ_JUDGE_TIMEOUT", "ADAPTIQ_LOG_LEVEL"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty bank", func(c *Config) { c.BankPath = "" }},
		{"empty results", func(c *Config) { c.ResultsPath = " " }},
		{"zero threshold", func(c *Config) { c.PassThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.PassThreshold = 1.2 }},
		{"zero timeout", func(c *Config) { c.JudgeTimeout = 0 }},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.DBDriver = store.DriverPostgres }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRequireJudge(t *testing.T) {
	cfg := Default()
	cfg.LLMError = assert.AnError

	assert.NoError(t, cfg.RequireJudge(false))
	assert.ErrorIs(t, cfg.RequireJudge(true), ErrNoJudge)

	cfg.LLMError = nil
	assert.NoError(t, cfg.RequireJudge(true))
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ADAPTIQ_BANK=from-dotenv.json\nADAPTIQ_SUBJECT=Redes\n"), 0o644))
	t.Setenv("ADAPTIQ_SUBJECT", "Compiladores")
	// godotenv skips variables that are present, even when empty.
	os.Unsetenv("ADAPTIQ_BANK")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.BankPath)
	assert.Equal(t, "Compiladores", cfg.Subject, "real environment wins over .env")
}

func TestLoadMissingDotEnv(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, " warn ": slog.LevelWarn, "error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupLogging(&buf, slog.LevelWarn)
	slog.Info("hidden")
	slog.Warn("shown", "question", "PRO-1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown") && strings.Contains(out, "question=PRO-1"))
}

func TestOpenLog(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	w, err := Default().OpenLog()
	require.NoError(t, err)
	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "adaptiq", "adaptiq.log"))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
