package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/t-okano/revq/internal/difficulty"
	"github.com/t-okano/revq/internal/item"
)

func newItemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage review items",
	}
	cmd.AddCommand(newItemCreateCommand())
	return cmd
}

func newItemCreateCommand() *cobra.Command {
	var difficultyFlag float64

	cmd := &cobra.Command{
		Use:   "create <content-ref>",
		Short: "Register a new review item",
		Args:  cobra.ExactArgs(1),
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

			var predicted *float64
			if cmd.Flags().Changed("difficulty") {
				predicted = &difficultyFlag
			}

			var oracle difficulty.Oracle
			if cfg.Oracle.BaseURL != "" {
				client := difficulty.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.RetryAttempts)
				defer func() {
					_ = client.Close()
				}()
				oracle = client
			}

			service := item.NewService(item.NewDBRepository(db), oracle)
			created, err := service.CreateItem(cmd.Context(), args[0], predicted)
			if err != nil {
				return err
			}

			fmt.Printf("Created item %d (%s) with predicted difficulty %.2f\n",
				created.ID, created.ContentRef, created.PredictedDifficulty)
			return nil
		},
	}

	cmd.Flags().Float64Var(&difficultyFlag, "difficulty", 0, "Predicted difficulty in [0, 1]. Skips the estimation service")

	return cmd
}
