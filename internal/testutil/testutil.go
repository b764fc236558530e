// Package testutil provides shared test helpers for config files and domain fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/t-okano/revq/internal/progress"
)

// SetupTestConfig creates a minimal config file for testing.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := `database:
  host: localhost
  port: 3306
  database: revq_test
  username: revq
scheduler:
  queue_limit: 20
  ranking_mode: weighted
session:
  inactivity_timeout_minutes: 30
oracle:
  base_url: http://localhost:8089
  retry_attempts: 3
`
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithScheduler creates a config file with the given scheduler
// settings for tests that exercise queue building.
func SetupTestConfigWithScheduler(t *testing.T, tmpDir string, queueLimit int, rankingMode string) string {
	t.Helper()

	configContent := fmt.Sprintf(`database:
  host: localhost
  port: 3306
  database: revq_test
  username: revq
scheduler:
  queue_limit: %d
  ranking_mode: %s
session:
  inactivity_timeout_minutes: 30
oracle:
  retry_attempts: 3
`, queueLimit, rankingMode)
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// ProgressOption configures optional fields when creating a progress fixture.
type ProgressOption func(*progress.Progress)

// WithRepetitions sets the repetition count.
func WithRepetitions(repetitions int) ProgressOption {
	return func(p *progress.Progress) {
		p.Repetitions = repetitions
	}
}

// WithEaseFactor sets the ease factor.
func WithEaseFactor(ease float64) ProgressOption {
	return func(p *progress.Progress) {
		p.EaseFactor = ease
	}
}

// WithInterval sets the interval and the matching next review time relative
// to the last review.
func WithInterval(intervalDays int, lastReviewedAt time.Time) ProgressOption {
	return func(p *progress.Progress) {
		p.IntervalDays = intervalDays
		p.LastReviewedAt = &lastReviewedAt
		p.NextReviewAt = lastReviewedAt.AddDate(0, 0, intervalDays)
	}
}

// WithNextReviewAt sets the next review time directly.
func WithNextReviewAt(nextReviewAt time.Time) ProgressOption {
	return func(p *progress.Progress) {
		p.NextReviewAt = nextReviewAt
	}
}

// WithCounters sets the review counters.
func WithCounters(total, correct, streak int) ProgressOption {
	return func(p *progress.Progress) {
		p.TotalReviews = total
		p.CorrectReviews = correct
		p.Streak = streak
	}
}

// NewProgress creates a progress fixture for the given item and learner,
// due immediately at now unless overridden by options.
func NewProgress(itemID, learnerID int64, now time.Time, opts ...ProgressOption) *progress.Progress {
	p := progress.New(itemID, learnerID, now)
	p.ID = itemID
	for _, opt := range opts {
		opt(p)
	}
	return p
}
