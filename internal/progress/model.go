// Package progress provides per-(item, learner) mastery records.
package progress

import (
	"errors"
	"time"

	"github.com/t-okano/revq/internal/sm2"
)

// ErrVersionConflict is returned when an optimistic write loses to a
// concurrent update of the same record.
var ErrVersionConflict = errors.New("progress record was modified concurrently")

// Status describes how well established a progress record is.
// It is always derived from the record's fields, never stored independently.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusYoung    Status = "young"
	StatusMature   Status = "mature"
)

// matureIntervalDays is the interval at which a record counts as mature.
const matureIntervalDays = 21

// Progress holds the spaced repetition state for one (item, learner) pair.
// There is exactly one record per pair; records are mutated only by the
// review processor and never deleted.
type Progress struct {
	ID             int64      `db:"id"`
	ItemID         int64      `db:"item_id"`
	LearnerID      int64      `db:"learner_id"`
	Repetitions    int        `db:"repetitions"`
	EaseFactor     float64    `db:"ease_factor"`
	IntervalDays   int        `db:"interval_days"`
	LastReviewedAt *time.Time `db:"last_reviewed_at"`
	NextReviewAt   time.Time  `db:"next_review_at"`
	TotalReviews   int        `db:"total_reviews"`
	CorrectReviews int        `db:"correct_reviews"`
	Streak         int        `db:"streak"`
	Version        int64      `db:"version"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// New creates a progress record with scheduling defaults; the item is
// immediately due.
func New(itemID, learnerID int64, now time.Time) *Progress {
	return &Progress{
		ItemID:       itemID,
		LearnerID:    learnerID,
		EaseFactor:   sm2.DefaultEaseFactor,
		NextReviewAt: now,
	}
}

// Status derives the mastery status from the record's fields.
func (p *Progress) Status() Status {
	switch {
	case p.TotalReviews == 0:
		return StatusNew
	case p.Repetitions < 2:
		return StatusLearning
	case p.IntervalDays < matureIntervalDays:
		return StatusYoung
	default:
		return StatusMature
	}
}

// IsDue reports whether the record is due for review as of the given time.
func (p *Progress) IsDue(asOf time.Time) bool {
	return !asOf.Before(p.NextReviewAt)
}

// OverdueDays returns how many days past due the record is, fractional.
// Returns 0 if not yet due.
func (p *Progress) OverdueDays(asOf time.Time) float64 {
	if asOf.Before(p.NextReviewAt) {
		return 0
	}
	return asOf.Sub(p.NextReviewAt).Hours() / 24.0
}

// RollingAccuracy returns correct reviews over total reviews, or 0 for a
// record that has never been reviewed.
func (p *Progress) RollingAccuracy() float64 {
	if p.TotalReviews == 0 {
		return 0
	}
	return float64(p.CorrectReviews) / float64(p.TotalReviews)
}

// ApplyReview mutates the record with the outcome of one review at the given
// time. The interval is computed with the pre-update ease factor; quality
// below the correct threshold resets repetitions and the interval.
func (p *Progress) ApplyReview(quality int, now time.Time) {
	p.IntervalDays = sm2.NextInterval(p.Repetitions, p.IntervalDays, p.EaseFactor, quality)
	p.Repetitions = sm2.NextRepetitions(p.Repetitions, quality)
	p.EaseFactor = sm2.UpdateEaseFactor(p.EaseFactor, quality)

	reviewedAt := now
	p.LastReviewedAt = &reviewedAt
	p.NextReviewAt = now.AddDate(0, 0, p.IntervalDays)

	p.TotalReviews++
	if quality >= sm2.CorrectThreshold {
		p.CorrectReviews++
		p.Streak++
	} else {
		p.Streak = 0
	}
}
