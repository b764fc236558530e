package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/t-okano/revq/internal/scheduler"
)

func newQueueCommand() *cobra.Command {
	var (
		limit      int
		asOfString string
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the ranked queue of items due for review",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			ranker := scheduler.NewRanker(repos.items, repos.progress, repos.sessions, scheduler.Mode(cfg.Scheduler.RankingMode))

			if limit <= 0 {
				limit = cfg.Scheduler.QueueLimit
			}
			asOf := time.Now().UTC()
			if asOfString != "" {
				asOf, err = time.Parse(time.RFC3339, asOfString)
				if err != nil {
					asOf, err = time.Parse(time.DateOnly, asOfString)
					if err != nil {
						return fmt.Errorf("invalid --as-of %q: use RFC 3339 or YYYY-MM-DD", asOfString)
					}
				}
				asOf = asOf.UTC()
			}
			queue, err := ranker.BuildQueue(cmd.Context(), learnerID, asOf, limit)
			if err != nil {
				return err
			}

			if len(queue.Items) == 0 {
				fmt.Println("Nothing is due for review.")
				return nil
			}

			fmt.Printf("Session %d: %d item(s) due\n\n", queue.SessionID, len(queue.Items))
			fmt.Printf("%-6s  %-30s  %-8s  %-6s  %-8s  %s\n", "Item", "Content", "Priority", "Ease", "Interval", "Overdue")
			for _, entry := range queue.Items {
				overdue := fmt.Sprintf("%.1fd", entry.OverdueDays)
				if entry.OverdueDays >= 1 {
					overdue = color.RedString(overdue)
				}
				fmt.Printf("%-6d  %-30s  %-8.3f  %-6.2f  %-8d  %s\n",
					entry.ItemID,
					truncate(entry.ContentRef, 30),
					entry.Priority,
					entry.EaseFactor,
					entry.IntervalDays,
					overdue,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum queue size (defaults to the configured limit)")
	cmd.Flags().StringVar(&asOfString, "as-of", "", "Build the queue as of this time instead of now")

	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
