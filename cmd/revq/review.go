package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/t-okano/revq/internal/review"
	"github.com/t-okano/revq/internal/sm2"
)

func newReviewCommand() *cobra.Command {
	var sessionID int64
	var seconds int

	cmd := &cobra.Command{
		Use:   "review <item-id> <quality>",
		Short: "Submit a review with a quality rating from 0 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item ID %q: %w", args[0], err)
			}
			quality, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quality %q: %w", args[1], err)
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
			processor := review.NewProcessor(repos.items, repos.progress, repos.history, repos.sessions)

			req := review.Request{
				ItemID:    itemID,
				LearnerID: learnerID,
				SessionID: sessionID,
				Quality:   quality,
			}
			if cmd.Flags().Changed("seconds") {
				req.TimeToAnswerSeconds = &seconds
			}

			result, err := processor.SubmitReview(cmd.Context(), req)
			if err != nil {
				return err
			}

			if quality >= sm2.CorrectThreshold {
				color.Green("Correct (quality %d)", quality)
			} else {
				color.Red("Incorrect (quality %d), repetitions reset", quality)
			}
			fmt.Printf("Next review: %s (in %d day(s))\n", result.NextReviewAt.Format("2006-01-02"), result.IntervalDays)
			fmt.Printf("Ease: %.2f  Streak: %d  Accuracy: %.0f%%  Status: %s\n",
				result.EaseFactor, result.Streak, result.RollingAccuracy*100, result.Status)
			if result.SessionExpired {
				fmt.Println("Note: the session had already ended, so this review was not counted toward it.")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&sessionID, "session", 0, "Session to record this review in")
	cmd.Flags().IntVar(&seconds, "seconds", 0, "Time taken to answer, in seconds")
	if err := cmd.MarkFlagRequired("session"); err != nil {
		panic(err)
	}

	return cmd
}
