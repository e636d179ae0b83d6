package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/bank"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect the question bank",
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions (optionally filtered by topic or level)",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		level, _ := cmd.Flags().GetInt("level")

		idx, err := loadBank()
		if err != nil {
			return err
		}

		topics := idx.TopicOrder()
		if topic != "" {
			if !idx.HasTopic(topic) {
				return fmt.Errorf("no questions found for topic %q", topic)
			}
			topics = []string{topic}
		}

		var qs []bank.Question
		for _, t := range topics {
			for _, l := range idx.Levels(t) {
				if level != 0 && l != level {
					continue
				}
				qs = append(qs, idx.Bucket(t, l)...)
			}
		}
		if len(qs) == 0 {
			return fmt.Errorf("no questions match")
		}

		// Header.
		fmt.Printf("%-12s  %-24s  %5s  %-8s  %s\n",
			"ID", "Topic", "Level", "Kind", "Prompt")
		fmt.Println(strings.Repeat("─", 100))

		for _, q := range qs {
			fmt.Printf("%-12s  %-24s  %5d  %-8s  %s\n",
				q.ID, truncate(q.Topic, 24), q.Level, q.Kind, truncate(oneLine(q.Prompt), 44))
		}

		fmt.Printf("\n%d questions\n", len(qs))
		return nil
	},
}

var bankValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadBank()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d questions in %d topics\n", cfg.BankPath, idx.Len(), len(idx.TopicOrder()))

		var unstartable []string
		for _, t := range idx.TopicOrder() {
			if _, ok := idx.StartLevel(t); !ok {
				unstartable = append(unstartable, t)
			}
		}
		if len(unstartable) > 0 {
			fmt.Printf("warning: no startable question in: %s\n", strings.Join(unstartable, ", "))
		}
		if idx.NeedsJudge() {
			fmt.Println("free-form questions present: an LLM provider is required")
			if err := cfg.RequireJudge(true); err != nil {
				fmt.Printf("warning: %v\n", err)
			}
		}
		return nil
	},
}

var bankTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Show question counts per topic and level",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadBank()
		if err != nil {
			return err
		}

		fmt.Printf("%-28s  %7s  %7s  %7s  %6s  %s\n",
			"Topic", bank.LevelName(1), bank.LevelName(2), bank.LevelName(3), "Total", "Start")
		fmt.Println(strings.Repeat("─", 72))
		for _, t := range idx.TopicOrder() {
			start := "-"
			if l, ok := idx.StartLevel(t); ok {
				start = bank.LevelName(l)
			}
			fmt.Printf("%-28s  %7d  %7d  %7d  %6d  %s\n",
				truncate(t, 28),
				len(idx.Bucket(t, 1)), len(idx.Bucket(t, 2)), len(idx.Bucket(t, 3)),
				idx.Count(t), start)
		}
		return nil
	},
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	bankListCmd.Flags().String("topic", "", "Filter by topic")
	bankListCmd.Flags().Int("level", 0, "Filter by level (1-3)")

	bankCmd.AddCommand(bankListCmd)
	bankCmd.AddCommand(bankValidateCmd)
	bankCmd.AddCommand(bankTopicsCmd)
}
