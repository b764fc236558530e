package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Manager owns the session lifecycle: open or reuse, aggregate review counts,
// close explicitly, or expire after inactivity.
type Manager struct {
	repo    Repository
	timeout time.Duration
	clock   func() time.Time
}

// NewManager creates a Manager. A non-positive timeout falls back to the
// default inactivity timeout.
func NewManager(repo Repository, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultInactivityTimeout
	}
	return &Manager{
		repo:    repo,
		timeout: timeout,
		clock:   time.Now,
	}
}

// OpenOrReuse returns the learner's open, unexpired session of the given
// kind, creating a fresh one when none qualifies. An idle-expired session
// found on the way is closed implicitly first.
func (m *Manager) OpenOrReuse(ctx context.Context, learnerID int64, kind Kind) (*Session, error) {
	now := m.clock().UTC()

	existing, err := m.repo.FindOpenByLearner(ctx, learnerID, kind)
	if err != nil {
		return nil, fmt.Errorf("repo.FindOpenByLearner > %w", err)
	}
	if existing != nil {
		if !existing.IsExpired(now, m.timeout) {
			return existing, nil
		}
		if err := m.expire(ctx, existing); err != nil {
			return nil, err
		}
	}

	s := &Session{
		LearnerID:      learnerID,
		Kind:           kind,
		StartedAt:      now,
		LastActivityAt: now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("repo.Create(session) > %w", err)
	}
	return s, nil
}

// Find returns a session by id, open or closed.
func (m *Manager) Find(ctx context.Context, sessionID int64) (*Session, error) {
	return m.repo.Find(ctx, sessionID)
}

// RecordReview adds one review to a session's aggregates. A session that is
// closed, or whose inactivity timeout has elapsed, yields ErrClosed; the
// timed-out session is closed implicitly on the spot.
func (m *Manager) RecordReview(ctx context.Context, sessionID int64, correct bool) error {
	now := m.clock().UTC()

	s, err := m.repo.Find(ctx, sessionID)
	if err != nil {
		return err
	}
	if !s.IsOpen() {
		return ErrClosed
	}
	if s.IsExpired(now, m.timeout) {
		if err := m.expire(ctx, s); err != nil {
			return err
		}
		return ErrClosed
	}

	return m.repo.AddReview(ctx, sessionID, correct, now)
}

// Close finalizes a session explicitly and reports its aggregates.
func (m *Manager) Close(ctx context.Context, sessionID int64) (*Summary, error) {
	now := m.clock().UTC()

	s, err := m.repo.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.IsOpen() {
		return nil, ErrClosed
	}

	duration := int64(now.Sub(s.StartedAt).Seconds())
	if err := m.repo.Close(ctx, sessionID, now, duration); err != nil {
		return nil, err
	}

	return &Summary{
		SessionID:       s.ID,
		ItemsReviewed:   s.ItemsReviewed,
		ItemsCorrect:    s.ItemsCorrect,
		DurationSeconds: duration,
	}, nil
}

// ExpireIdle closes every open session whose inactivity timeout has elapsed.
// Returns the number of sessions closed.
func (m *Manager) ExpireIdle(ctx context.Context) (int, error) {
	now := m.clock().UTC()
	cutoff := now.Add(-m.timeout)

	idle, err := m.repo.FindOpenIdleSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("repo.FindOpenIdleSince > %w", err)
	}

	closed := 0
	for i := range idle {
		if err := m.expire(ctx, &idle[i]); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// expire closes a session implicitly at its last activity time.
func (m *Manager) expire(ctx context.Context, s *Session) error {
	duration := int64(s.LastActivityAt.Sub(s.StartedAt).Seconds())
	if err := m.repo.Close(ctx, s.ID, s.LastActivityAt, duration); err != nil {
		// Another closer won the race; the session is closed either way.
		if errors.Is(err, ErrClosed) {
			return nil
		}
		return err
	}
	slog.Info("session expired after inactivity",
		"session_id", s.ID,
		"learner_id", s.LearnerID,
		"idle_timeout", m.timeout)
	return nil
}

// WithClock overrides the manager's time source. Intended for tests.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}
