// Package session groups bounded runs of reviews for aggregate reporting.
// Sessions never rewrite progress; they are a reporting boundary only.
package session

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a session id does not resolve.
	ErrNotFound = errors.New("session not found")
	// ErrClosed is returned when an operation targets a session that has
	// already been closed, explicitly or by the inactivity timeout.
	ErrClosed = errors.New("session is closed")
)

// Kind classifies what a session was opened for.
type Kind string

const (
	KindReview Kind = "review"
	KindCram   Kind = "cram"
	KindLearn  Kind = "learn"
)

// DefaultInactivityTimeout closes sessions with no review activity.
const DefaultInactivityTimeout = 30 * time.Minute

// Session aggregates a bounded run of reviews for one learner.
// The only states are open (EndedAt nil) and closed.
type Session struct {
	ID              int64      `db:"id"`
	LearnerID       int64      `db:"learner_id"`
	Kind            Kind       `db:"kind"`
	StartedAt       time.Time  `db:"started_at"`
	LastActivityAt  time.Time  `db:"last_activity_at"`
	EndedAt         *time.Time `db:"ended_at"`
	ItemsReviewed   int        `db:"items_reviewed"`
	ItemsCorrect    int        `db:"items_correct"`
	DurationSeconds *int64     `db:"duration_seconds"`
}

// IsOpen reports whether the session has not been closed yet.
func (s *Session) IsOpen() bool {
	return s.EndedAt == nil
}

// IsExpired reports whether the session has been idle longer than timeout.
func (s *Session) IsExpired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivityAt) > timeout
}

// Summary is the aggregate reported when a session closes.
type Summary struct {
	SessionID       int64
	ItemsReviewed   int
	ItemsCorrect    int
	DurationSeconds int64
}
