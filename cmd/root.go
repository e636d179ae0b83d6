package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/store"
)

// cfg is resolved once per invocation before any command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "adaptiq",
	Short: "Adaptive quiz engine",
	Long: "adaptiq — terminal quiz that adapts question difficulty to each answer,\n" +
		"grading free-form answers with a language model.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: runApp,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("env", ".env", "Dotenv file to load before reading ADAPTIQ_* variables")
	pf.String("bank", "", "Question bank file, .json or .yaml (overrides ADAPTIQ_BANK)")
	pf.String("results", "", "CSV result log (overrides ADAPTIQ_RESULTS)")
	pf.String("db", "", "SQLite file or Postgres DSN (overrides ADAPTIQ_DB)")
	pf.String("db-driver", "", "Database driver: sqlite or postgres (overrides ADAPTIQ_DB_DRIVER)")
	pf.String("log-level", "", "Log level: debug, info, warn or error (overrides ADAPTIQ_LOG_LEVEL)")

	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers flags over the environment and installs stderr logging.
// The TUI switches logging to a file once it takes over the terminal.
func loadConfig(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env")
	c, err := config.Load(envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("bank"); v != "" {
		c.BankPath = v
	}
	if v, _ := flags.GetString("results"); v != "" {
		c.ResultsPath = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		c.DBPath = v
	}
	if v, _ := flags.GetString("db-driver"); v != "" {
		d, err := store.ParseDriver(v)
		if err != nil {
			return fmt.Errorf("--db-driver: %w", err)
		}
		c.DBDriver = d
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		lvl, err := config.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		c.LogLevel = lvl
	}

	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	config.SetupLogging(os.Stderr, cfg.LogLevel)
	return nil
}

// openStore opens the configured database. SQLite defaults to the XDG
// data directory.
func openStore(ctx context.Context) (*store.Store, error) {
	dsn := cfg.DBPath
	if cfg.DBDriver == store.DriverSQLite {
		var err error
		if dsn == "" {
			dsn, err = store.DefaultDBPath()
		} else {
			err = store.EnsureDir(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.OpenDriver(ctx, cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
