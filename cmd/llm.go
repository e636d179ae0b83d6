package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the judge's logged model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent judge calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(events store.EventRepo) error {
			list, err := events.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(list) == 0 {
				fmt.Println("No LLM events found.")
				return nil
			}

			t := newTable("ID", "When", "Purpose", "Model", "In", "Out", "Ms", "OK")
			for _, e := range list {
				t.Row(
					strconv.FormatInt(e.ID, 10),
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose,
					truncate(e.Model, 28),
					strconv.Itoa(e.InputTokens),
					strconv.Itoa(e.OutputTokens),
					strconv.FormatInt(e.LatencyMs, 10),
					mark(e.Success),
				)
			}
			fmt.Println(t)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one judge call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEvents(cmd, func(events store.EventRepo) error {
			e, err := events.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			fields := [][2]string{
				{"ID", strconv.FormatInt(e.ID, 10)},
				{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
				{"Provider", e.Provider},
				{"Model", e.Model},
				{"Purpose", e.Purpose},
				{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
				{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
				{"Success", strconv.FormatBool(e.Success)},
			}
			if e.ErrorMessage != "" {
				fields = append(fields, [2]string{"Error", e.ErrorMessage})
			}
			for _, f := range fields {
				fmt.Printf("%-9s %s\n", f[0]+":", f[1])
			}
			printSection("REQUEST", e.RequestBody)
			printSection("RESPONSE", e.ResponseBody)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(events store.EventRepo) error {
			byPurpose, err := events.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Println("No LLM usage recorded yet.")
				return nil
			}

			usage := newTable("Purpose", "Calls", "Failed", "Input", "Output", "Avg ms")
			var calls, in, out int
			for _, u := range byPurpose {
				usage.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.Failures),
					strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
				calls += u.Calls
				in += u.InputTokens
				out += u.OutputTokens
			}
			usage.Row("TOTAL", strconv.Itoa(calls), "", strconv.Itoa(in), strconv.Itoa(out), "")
			fmt.Println(usage)

			byModel, err := events.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(byModel) > 0 {
				fmt.Println()
				fmt.Println(costTable(byModel))
			}
			return nil
		})
	},
}

// costTable prices each model's usage. Models without a known price are
// listed with "?" and make the total partial.
func costTable(byModel []store.ModelUsage) string {
	t := newTable("Model", "Calls", "Input", "Output", "USD")
	var total float64
	var unpriced []string
	for _, m := range byModel {
		cost := "?"
		if p, ok := llm.PriceOf(m.Model); ok {
			usd := p.USD(m.InputTokens, m.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, m.Model)
		}
		t.Row(truncate(m.Model, 32), strconv.Itoa(m.Calls), strconv.Itoa(m.InputTokens), strconv.Itoa(m.OutputTokens), cost)
	}
	label := "TOTAL"
	if len(unpriced) > 0 {
		label += " (partial)"
	}
	t.Row(label, "", "", "", formatCost(total))

	s := t.String()
	if len(unpriced) > 0 {
		slices.Sort(unpriced)
		s += "\nNo price known for: " + strings.Join(unpriced, ", ")
	}
	return s
}

func withEvents(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st.EventRepo())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		Headers(headers...)
}

func printSection(title, body string) {
	rule := strings.Repeat("─", 60)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Printf("\n%s\n%s\n%s\n%s\n", rule, title, rule, body)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show this purpose (e.g. grading)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
