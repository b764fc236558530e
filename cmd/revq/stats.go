package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/t-okano/revq/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly review statistics for a learner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repos := newRepositories(db, cfg)
			now := time.Now().UTC()
			events, err := repos.history.FindByLearner(cmd.Context(), learnerID)
			if err != nil {
				return err
			}
			due, err := repos.progress.FindDue(cmd.Context(), learnerID, now)
			if err != nil {
				return err
			}

			result := statistics.Calculate(events, year, month, now)
			if len(result.Periods) == 0 {
				fmt.Println("No reviews found for the specified period.")
				fmt.Printf("Due now: %d item(s)\n", len(due))
				return nil
			}

			fmt.Println("Review Statistics Report")
			fmt.Println("========================")
			fmt.Println()
			fmt.Printf("%-10s  %-8s  %-8s  %-6s  %s\n", "Period", "Reviews", "Correct", "Items", "Accuracy")
			fmt.Printf("%-10s  %-8s  %-8s  %-6s  %s\n", "------", "-------", "-------", "-----", "--------")
			for _, s := range result.Periods {
				fmt.Printf("%-10s  %-8d  %-8d  %-6d  %.0f%%\n",
					s.Period, s.Reviews, s.Correct, s.UniqueItems, s.Accuracy*100)
			}

			fmt.Println()
			fmt.Printf("%-10s  %-8d  %-8d  %-6d  %.0f%%\n",
				"Totals:",
				result.Aggregate.Reviews,
				result.Aggregate.Correct,
				result.Aggregate.UniqueItems,
				result.Aggregate.Accuracy*100,
			)
			fmt.Printf("Current streak: %d day(s)\n", result.Aggregate.StreakDays)
			fmt.Printf("Due now: %d item(s)\n", len(due))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	cmd.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")

	return cmd
}
