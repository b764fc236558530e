package main

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/t-okano/revq/internal/config"
	"github.com/t-okano/revq/internal/database"
	"github.com/t-okano/revq/internal/history"
	"github.com/t-okano/revq/internal/item"
	"github.com/t-okano/revq/internal/progress"
	"github.com/t-okano/revq/internal/session"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// repositories bundles the repositories created for a command run.
type repositories struct {
	items    *item.DBRepository
	progress *progress.DBRepository
	history  *history.DBRepository
	sessions *session.Manager
}

func newRepositories(db *sqlx.DB, cfg *config.Config) repositories {
	timeout := time.Duration(cfg.Session.InactivityTimeoutMinutes) * time.Minute
	return repositories{
		items:    item.NewDBRepository(db),
		progress: progress.NewDBRepository(db),
		history:  history.NewDBRepository(db),
		sessions: session.NewManager(session.NewDBRepository(db), timeout),
	}
}
