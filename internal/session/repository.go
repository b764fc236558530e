package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines persistence operations for sessions.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Find(ctx context.Context, id int64) (*Session, error)
	FindOpenByLearner(ctx context.Context, learnerID int64, kind Kind) (*Session, error)
	FindOpenIdleSince(ctx context.Context, cutoff time.Time) ([]Session, error)
	AddReview(ctx context.Context, id int64, correct bool, now time.Time) error
	Close(ctx context.Context, id int64, endedAt time.Time, durationSeconds int64) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a new open session and sets its generated id.
func (r *DBRepository) Create(ctx context.Context, s *Session) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (learner_id, kind, started_at, last_activity_at)
		VALUES (?, ?, ?, ?)`,
		s.LearnerID, s.Kind, s.StartedAt, s.LastActivityAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert session) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	s.ID = id
	return nil
}

// Find returns the session with the given id, or ErrNotFound.
func (r *DBRepository) Find(ctx context.Context, id int64) (*Session, error) {
	var s Session
	err := r.db.GetContext(ctx, &s, "SELECT * FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(session) > %w", err)
	}
	return &s, nil
}

// FindOpenByLearner returns the learner's most recent open session of the
// given kind, or nil when none exists.
func (r *DBRepository) FindOpenByLearner(ctx context.Context, learnerID int64, kind Kind) (*Session, error) {
	var s Session
	err := r.db.GetContext(ctx, &s,
		`SELECT * FROM sessions
		WHERE learner_id = ? AND kind = ? AND ended_at IS NULL
		ORDER BY started_at DESC LIMIT 1`,
		learnerID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(open session) > %w", err)
	}
	return &s, nil
}

// FindOpenIdleSince returns open sessions whose last activity is at or before
// the cutoff, ordered by id.
func (r *DBRepository) FindOpenIdleSince(ctx context.Context, cutoff time.Time) ([]Session, error) {
	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions,
		"SELECT * FROM sessions WHERE ended_at IS NULL AND last_activity_at <= ? ORDER BY id",
		cutoff); err != nil {
		return nil, fmt.Errorf("db.SelectContext(idle sessions) > %w", err)
	}
	return sessions, nil
}

// AddReview bumps the running aggregates and the activity stamp of an open
// session. Returns ErrClosed when the session is no longer open.
func (r *DBRepository) AddReview(ctx context.Context, id int64, correct bool, now time.Time) error {
	correctDelta := 0
	if correct {
		correctDelta = 1
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		SET items_reviewed = items_reviewed + 1,
			items_correct = items_correct + ?,
			last_activity_at = ?
		WHERE id = ? AND ended_at IS NULL`,
		correctDelta, now, id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(add review to session) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrClosed
	}
	return nil
}

// Close finalizes an open session. Returns ErrClosed when it was already
// closed, leaving the first close's aggregates untouched.
func (r *DBRepository) Close(ctx context.Context, id int64, endedAt time.Time, durationSeconds int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		SET ended_at = ?, duration_seconds = ?
		WHERE id = ? AND ended_at IS NULL`,
		endedAt, durationSeconds, id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(close session) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrClosed
	}
	return nil
}
