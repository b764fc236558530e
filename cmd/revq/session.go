package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage review sessions",
	}
	cmd.AddCommand(newSessionCloseCommand())
	cmd.AddCommand(newSessionSweepCommand())
	return cmd
}

func newSessionCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close <session-id>",
		Short: "Close a session and show its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session ID %q: %w", args[0], err)
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
			summary, err := repos.sessions.Close(cmd.Context(), sessionID)
			if err != nil {
				return err
			}

			accuracy := 0.0
			if summary.ItemsReviewed > 0 {
				accuracy = float64(summary.ItemsCorrect) / float64(summary.ItemsReviewed)
			}
			fmt.Printf("Session %d closed.\n", summary.SessionID)
			fmt.Printf("Reviewed: %d  Correct: %d  Accuracy: %.0f%%  Duration: %ds\n",
				summary.ItemsReviewed, summary.ItemsCorrect, accuracy*100, summary.DurationSeconds)
			return nil
		},
	}
}

func newSessionSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close all sessions idle past the inactivity timeout",
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
			closed, err := repos.sessions.ExpireIdle(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Closed %d idle session(s).\n", closed)
			return nil
		},
	}
}
