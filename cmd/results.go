package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/resultlog"
	"github.com/abhisek/adaptiq/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Export and review recorded results",
}

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export result rows as CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		formatName, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		source, _ := cmd.Flags().GetString("source")

		format, err := resultlog.ParseFormat(formatName)
		if err != nil {
			return err
		}
		if out == "" {
			out = resultlog.ExportName(student, format)
		}

		var entries []resultlog.Entry
		switch source {
		case "csv":
			n, err := resultlog.ExportFile(cfg.ResultsPath, student, format, out)
			if err != nil {
				return err
			}
			fmt.Printf("%d rows written to %s\n", n, out)
			return nil
		case "db":
			entries, err = entriesFromStore(cmd, student)
		case "redis":
			entries, err = entriesFromRedis(cmd, student)
		default:
			return fmt.Errorf("unknown source %q (want csv, db or redis)", source)
		}
		if err != nil {
			return err
		}
		return writeExport(out, entries, format)
	},
}

var resultsSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions with their scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.SessionRepo().RecentSessions(cmd.Context(), student, limit)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-19s  %-12s  %-24s  %5s  %7s  %6s  %s\n",
			"Started", "Code", "Name", "Total", "Correct", "Pct", "Topics")
		fmt.Println(strings.Repeat("─", 100))
		for _, r := range recs {
			pct := "open"
			if !r.FinishedAt.IsZero() {
				pct = fmt.Sprintf("%.1f%%", r.Percentage)
			}
			fmt.Printf("%-19s  %-12s  %-24s  %5d  %7d  %6s  %s\n",
				r.StartedAt.Local().Format(resultlog.TimeLayout),
				truncate(r.StudentCode, 12), truncate(r.StudentName, 24),
				r.Total, r.Correct, pct, strings.Join(r.Topics, ", "))
		}
		return nil
	},
}

func entriesFromStore(cmd *cobra.Command, student string) ([]resultlog.Entry, error) {
	if student == "" {
		return nil, fmt.Errorf("--student is required with --source db")
	}
	st, err := openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer st.Close()

	attempts, err := st.AttemptRepo().AttemptsByStudent(cmd.Context(), student, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return resultlog.FromAttempts(attempts), nil
}

func entriesFromRedis(cmd *cobra.Command, student string) ([]resultlog.Entry, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("ADAPTIQ_REDIS_URL is not set")
	}
	rs, err := resultlog.NewRedisSink(cmd.Context(), cfg.RedisURL, cfg.RedisKey)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	entries, err := rs.Entries(cmd.Context())
	if err != nil {
		return nil, err
	}
	if student != "" {
		entries = resultlog.Filter(entries, student)
	}
	return entries, nil
}

func writeExport(path string, entries []resultlog.Entry, format resultlog.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := resultlog.Write(f, entries, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("%d rows written to %s\n", len(entries), path)
	return nil
}

func init() {
	resultsExportCmd.Flags().StringP("student", "s", "", "Student code to export (all students when empty)")
	resultsExportCmd.Flags().StringP("format", "f", "csv", "Output format: csv or xlsx")
	resultsExportCmd.Flags().StringP("out", "o", "", "Output file (default resultados_<code>.<format>)")
	resultsExportCmd.Flags().String("source", "csv", "Where to read results from: csv, db or redis")

	resultsSessionsCmd.Flags().StringP("student", "s", "", "Filter by student code")
	resultsSessionsCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")

	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsSessionsCmd)
}
