// Package history provides the append-only review event log.
package history

import "time"

// ReviewEvent records a single submitted review. Events are appended once and
// never mutated or deleted. SessionID stays populated for audit even after
// the referenced session has expired.
type ReviewEvent struct {
	ID                  int64     `db:"id"`
	ItemID              int64     `db:"item_id"`
	LearnerID           int64     `db:"learner_id"`
	SessionID           *int64    `db:"session_id"`
	Quality             int       `db:"quality"`
	TimeToAnswerSeconds *int      `db:"time_to_answer_seconds"`
	ReviewedAt          time.Time `db:"reviewed_at"`
	CreatedAt           time.Time `db:"created_at"`
}
