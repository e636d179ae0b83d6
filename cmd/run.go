package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/app"
	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/resultlog"
	"github.com/abhisek/adaptiq/internal/store"
)

// runApp loads the bank, builds the grader and result sinks, and launches
// the TUI.
func runApp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	idx, err := loadBank()
	if err != nil {
		return err
	}
	if err := cfg.RequireJudge(idx.NeedsJudge()); err != nil {
		return err
	}

	logFile, err := cfg.OpenLog()
	if err != nil {
		return err
	}
	defer logFile.Close()
	config.SetupLogging(logFile, cfg.LogLevel)

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	grader, err := newGrader(ctx, st.EventRepo())
	if err != nil {
		return err
	}

	sink, closeSink, err := newSink(ctx, st)
	if err != nil {
		return err
	}
	defer closeSink()

	slog.Info("starting",
		"bank", cfg.BankPath, "questions", idx.Len(), "topics", len(idx.TopicOrder()),
		"results", cfg.ResultsPath, "db", cfg.DBDriver, "judge", idx.NeedsJudge())

	return app.Run(app.Options{
		Index:       idx,
		Grader:      grader,
		Sink:        sink,
		Sessions:    st.SessionRepo(),
		Attempts:    st.AttemptRepo(),
		ResultsPath: cfg.ResultsPath,
	})
}

// loadBank reads and indexes the configured question bank.
func loadBank() (*bank.Index, error) {
	qs, err := bank.Load(cfg.BankPath)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	return bank.Build(qs), nil
}

// newGrader wires the language-model judge when a provider is configured.
// Without one, free-form answers get the fallback verdict.
func newGrader(ctx context.Context, events store.EventRepo) (*grading.Grader, error) {
	if cfg.LLMError != nil {
		slog.Warn("LLM provider not configured; free-form answers will get a partial score", "error", cfg.LLMError)
		return grading.NewGrader(nil, cfg.PassThreshold), nil
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, events)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	judge := grading.NewJudge(provider, cfg.JudgeConfig())
	return grading.NewGrader(judge, cfg.PassThreshold), nil
}

// newSink builds the result log: the CSV file first, mirrored into the
// database and, when configured, a Redis list.
func newSink(ctx context.Context, st *store.Store) (resultlog.Sink, func(), error) {
	csvSink, err := resultlog.NewCSVSink(cfg.ResultsPath)
	if err != nil {
		return nil, nil, err
	}
	mirrors := []resultlog.Sink{resultlog.NewStoreSink(st.AttemptRepo())}

	closer := func() {}
	if cfg.RedisURL != "" {
		rs, err := resultlog.NewRedisSink(ctx, cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, nil, fmt.Errorf("connect result mirror: %w", err)
		}
		mirrors = append(mirrors, rs)
		closer = func() { rs.Close() }
	}
	return resultlog.Multi(csvSink, mirrors...), closer, nil
}
