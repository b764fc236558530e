package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/t-okano/revq/internal/history"
	"github.com/t-okano/revq/internal/item"
	"github.com/t-okano/revq/internal/progress"
	"github.com/t-okano/revq/internal/session"
	"github.com/t-okano/revq/internal/sm2"
)

// maxSubmitAttempts bounds the optimistic read-modify-write loop for one
// submission.
const maxSubmitAttempts = 3

// Request carries one learner's quality rating for one item.
type Request struct {
	ItemID              int64
	LearnerID           int64
	SessionID           int64
	Quality             int
	TimeToAnswerSeconds *int
}

// Result reports the updated scheduling state after a review.
type Result struct {
	IntervalDays    int
	EaseFactor      float64
	Streak          int
	RollingAccuracy float64
	NextReviewAt    time.Time
	Status          progress.Status
	// SessionExpired is set when the review was recorded durably but the
	// referenced session was unknown or had already closed, so it was
	// not aggregated.
	SessionExpired bool
}

// Processor applies reviews atomically per (item, learner) pair.
type Processor struct {
	items    item.Repository
	progress progress.Repository
	history  history.Repository
	sessions *session.Manager
	clock    func() time.Time
}

// NewProcessor creates a Processor.
func NewProcessor(items item.Repository, progressRepo progress.Repository, historyRepo history.Repository, sessions *session.Manager) *Processor {
	return &Processor{
		items:    items,
		progress: progressRepo,
		history:  historyRepo,
		sessions: sessions,
		clock:    time.Now,
	}
}

// SubmitReview validates the request, applies the SM-2 update with an
// optimistic version check, appends the review event, and aggregates into the
// session. Concurrent submissions for the same (item, learner) pair are
// linearized by the progress version: a stale writer re-reads and retries up
// to maxSubmitAttempts before ErrConflict is surfaced.
func (p *Processor) SubmitReview(ctx context.Context, req Request) (*Result, error) {
	if !sm2.IsValidQuality(req.Quality) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuality, req.Quality)
	}

	exists, err := p.items.Exists(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("items.Exists > %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: item %d", ErrUnknownItem, req.ItemID)
	}

	// Resolve the session before any mutation: a review against a session
	// id that never existed is orphaned up front, so the progress update
	// and its event cannot diverge on a failed insert later.
	sessionKnown := true
	if _, err := p.sessions.Find(ctx, req.SessionID); err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("sessions.Find > %w", err)
		}
		sessionKnown = false
	}

	now := p.clock().UTC()

	var record *progress.Progress
	if err := retry.Do(
		func() error {
			loaded, err := p.progress.GetOrCreate(ctx, req.ItemID, req.LearnerID, now)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("progress.GetOrCreate > %w", err))
			}
			loaded.ApplyReview(req.Quality, now)
			if err := p.progress.UpdateVersioned(ctx, loaded); err != nil {
				if errors.Is(err, progress.ErrVersionConflict) {
					return err
				}
				return retry.Unrecoverable(fmt.Errorf("progress.UpdateVersioned > %w", err))
			}
			record = loaded
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxSubmitAttempts),
		retry.LastErrorOnly(true),
	); err != nil {
		if errors.Is(err, progress.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: item %d learner %d", ErrConflict, req.ItemID, req.LearnerID)
		}
		return nil, err
	}

	event := &history.ReviewEvent{
		ItemID:              req.ItemID,
		LearnerID:           req.LearnerID,
		Quality:             req.Quality,
		TimeToAnswerSeconds: req.TimeToAnswerSeconds,
		ReviewedAt:          now,
	}
	if sessionKnown {
		sessionID := req.SessionID
		event.SessionID = &sessionID
	}
	if err := p.history.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("history.Append > %w", err)
	}

	correct := req.Quality >= sm2.CorrectThreshold
	sessionExpired := !sessionKnown
	if sessionKnown {
		if err := p.sessions.RecordReview(ctx, req.SessionID, correct); err != nil {
			if !errors.Is(err, session.ErrClosed) && !errors.Is(err, session.ErrNotFound) {
				return nil, fmt.Errorf("sessions.RecordReview > %w", err)
			}
			// The review stands; only the session aggregate is skipped.
			sessionExpired = true
		}
	}
	if sessionExpired {
		slog.Warn("review recorded outside an open session",
			"session_id", req.SessionID,
			"item_id", req.ItemID,
			"learner_id", req.LearnerID)
	}

	return &Result{
		IntervalDays:    record.IntervalDays,
		EaseFactor:      record.EaseFactor,
		Streak:          record.Streak,
		RollingAccuracy: record.RollingAccuracy(),
		NextReviewAt:    record.NextReviewAt,
		Status:          record.Status(),
		SessionExpired:  sessionExpired,
	}, nil
}

// WithClock overrides the processor's time source. Intended for tests.
func (p *Processor) WithClock(clock func() time.Time) *Processor {
	p.clock = clock
	return p
}
