package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/t-okano/revq/internal/history"
	"github.com/t-okano/revq/internal/sm2"
)

func newHistoryCommand() *cobra.Command {
	var sessionID int64

	cmd := &cobra.Command{
		Use:   "history [item-id]",
		Short: "Show past review events for an item or a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && sessionID == 0 {
				return fmt.Errorf("pass an item id or --session")
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

			var events []history.ReviewEvent
			if sessionID != 0 {
				events, err = repos.history.FindBySession(cmd.Context(), sessionID)
			} else {
				var itemID int64
				itemID, err = strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
				events, err = repos.history.FindByItemAndLearner(cmd.Context(), itemID, learnerID)
			}
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No reviews recorded.")
				return nil
			}

			itemIDs := make([]int64, 0, len(events))
			seen := map[int64]bool{}
			for _, e := range events {
				if !seen[e.ItemID] {
					seen[e.ItemID] = true
					itemIDs = append(itemIDs, e.ItemID)
				}
			}
			items, err := repos.items.FindByIDs(cmd.Context(), itemIDs)
			if err != nil {
				return err
			}
			contentRefs := map[int64]string{}
			for _, it := range items {
				contentRefs[it.ID] = it.ContentRef
			}

			fmt.Printf("%-20s  %-6s  %-30s  %-7s  %s\n", "Reviewed", "Item", "Content", "Quality", "Session")
			for _, e := range events {
				verdict := color.GreenString("%d", e.Quality)
				if e.Quality < sm2.CorrectThreshold {
					verdict = color.RedString("%d", e.Quality)
				}
				sessionColumn := "-"
				if e.SessionID != nil {
					sessionColumn = strconv.FormatInt(*e.SessionID, 10)
				}
				fmt.Printf("%-20s  %-6d  %-30s  %-7s  %s\n",
					e.ReviewedAt.Format("2006-01-02 15:04"),
					e.ItemID,
					truncate(contentRefs[e.ItemID], 30),
					verdict,
					sessionColumn,
				)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&sessionID, "session", 0, "Show the events of this session instead")

	return cmd
}
