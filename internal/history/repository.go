package history

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines operations for the review event log.
type Repository interface {
	Append(ctx context.Context, event *ReviewEvent) error
	FindByItemAndLearner(ctx context.Context, itemID, learnerID int64) ([]ReviewEvent, error)
	FindByLearner(ctx context.Context, learnerID int64) ([]ReviewEvent, error)
	FindBySession(ctx context.Context, sessionID int64) ([]ReviewEvent, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Append inserts a new review event and sets its generated id.
func (r *DBRepository) Append(ctx context.Context, event *ReviewEvent) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO review_events (item_id, learner_id, session_id, quality, time_to_answer_seconds, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ItemID, event.LearnerID, event.SessionID,
		event.Quality, event.TimeToAnswerSeconds, event.ReviewedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert review_event) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	event.ID = id
	return nil
}

// FindByItemAndLearner returns all events for an (item, learner) pair
// ordered by reviewed_at.
func (r *DBRepository) FindByItemAndLearner(ctx context.Context, itemID, learnerID int64) ([]ReviewEvent, error) {
	var events []ReviewEvent
	if err := r.db.SelectContext(ctx, &events,
		"SELECT * FROM review_events WHERE item_id = ? AND learner_id = ? ORDER BY reviewed_at, id",
		itemID, learnerID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_events by item) > %w", err)
	}
	return events, nil
}

// FindByLearner returns all events for a learner ordered by reviewed_at.
func (r *DBRepository) FindByLearner(ctx context.Context, learnerID int64) ([]ReviewEvent, error) {
	var events []ReviewEvent
	if err := r.db.SelectContext(ctx, &events,
		"SELECT * FROM review_events WHERE learner_id = ? ORDER BY reviewed_at, id",
		learnerID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_events by learner) > %w", err)
	}
	return events, nil
}

// FindBySession returns all events recorded against a session ordered by
// reviewed_at.
func (r *DBRepository) FindBySession(ctx context.Context, sessionID int64) ([]ReviewEvent, error) {
	var events []ReviewEvent
	if err := r.db.SelectContext(ctx, &events,
		"SELECT * FROM review_events WHERE session_id = ? ORDER BY reviewed_at, id",
		sessionID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_events by session) > %w", err)
	}
	return events, nil
}
