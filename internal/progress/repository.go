package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Repository defines persistence operations for progress records.
// UpdateVersioned is the only mutation path after creation.
type Repository interface {
	GetOrCreate(ctx context.Context, itemID, learnerID int64, now time.Time) (*Progress, error)
	Find(ctx context.Context, itemID, learnerID int64) (*Progress, error)
	FindByLearner(ctx context.Context, learnerID int64) ([]Progress, error)
	FindDue(ctx context.Context, learnerID int64, asOf time.Time) ([]Progress, error)
	UpdateVersioned(ctx context.Context, p *Progress) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Find returns the record for an (item, learner) pair, or nil when none exists.
func (r *DBRepository) Find(ctx context.Context, itemID, learnerID int64) (*Progress, error) {
	var p Progress
	err := r.db.GetContext(ctx, &p,
		"SELECT * FROM progress WHERE item_id = ? AND learner_id = ?",
		itemID, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(progress) > %w", err)
	}
	return &p, nil
}

// GetOrCreate returns the record for an (item, learner) pair, lazily creating
// it with defaults when absent. A duplicate-key race with a concurrent
// creator resolves by re-reading the winner's row.
func (r *DBRepository) GetOrCreate(ctx context.Context, itemID, learnerID int64, now time.Time) (*Progress, error) {
	existing, err := r.Find(ctx, itemID, learnerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	p := New(itemID, learnerID, now)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO progress (item_id, learner_id, repetitions, ease_factor, interval_days, next_review_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ItemID, p.LearnerID, p.Repetitions, p.EaseFactor, p.IntervalDays, p.NextReviewAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			// Lost the creation race; the unique (item_id, learner_id) key
			// guarantees the other writer's row is the one to use.
			return r.Find(ctx, itemID, learnerID)
		}
		return nil, fmt.Errorf("db.ExecContext(insert progress) > %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId() > %w", err)
	}
	p.ID = id
	return p, nil
}

// FindByLearner returns all progress records for a learner ordered by item id.
func (r *DBRepository) FindByLearner(ctx context.Context, learnerID int64) ([]Progress, error) {
	var records []Progress
	if err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM progress WHERE learner_id = ? ORDER BY item_id",
		learnerID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(progress by learner) > %w", err)
	}
	return records, nil
}

// FindDue returns the learner's records with next_review_at at or before asOf,
// ordered by item id.
func (r *DBRepository) FindDue(ctx context.Context, learnerID int64, asOf time.Time) ([]Progress, error) {
	var records []Progress
	if err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM progress WHERE learner_id = ? AND next_review_at <= ? ORDER BY item_id",
		learnerID, asOf); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due progress) > %w", err)
	}
	return records, nil
}

// UpdateVersioned writes the record back with an optimistic version check.
// It returns ErrVersionConflict when the stored version no longer matches,
// i.e. a concurrent writer got there first. On success the in-memory version
// is advanced to match the stored row.
func (r *DBRepository) UpdateVersioned(ctx context.Context, p *Progress) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE progress
		SET repetitions = ?, ease_factor = ?, interval_days = ?,
			last_reviewed_at = ?, next_review_at = ?,
			total_reviews = ?, correct_reviews = ?, streak = ?,
			version = version + 1
		WHERE id = ? AND version = ?`,
		p.Repetitions, p.EaseFactor, p.IntervalDays,
		p.LastReviewedAt, p.NextReviewAt,
		p.TotalReviews, p.CorrectReviews, p.Streak,
		p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update progress) > %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	p.Version++
	return nil
}
