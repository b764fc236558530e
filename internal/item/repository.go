package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines persistence operations for items.
// No mutation logic beyond creation belongs here.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Find(ctx context.Context, id int64) (*Item, error)
	Exists(ctx context.Context, id int64) (bool, error)
	FindAll(ctx context.Context) ([]Item, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Item, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a new item and sets its generated id.
func (r *DBRepository) Create(ctx context.Context, it *Item) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO items (content_ref, predicted_difficulty) VALUES (?, ?)",
		it.ContentRef, it.PredictedDifficulty)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert item) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	it.ID = id
	return nil
}

// Find returns the item with the given id, or ErrNotFound.
func (r *DBRepository) Find(ctx context.Context, id int64) (*Item, error) {
	var it Item
	err := r.db.GetContext(ctx, &it, "SELECT * FROM items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(item) > %w", err)
	}
	return &it, nil
}

// Exists reports whether an item with the given id exists.
func (r *DBRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM items WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("db.GetContext(item exists) > %w", err)
	}
	return count > 0, nil
}

// FindAll returns all items ordered by id.
func (r *DBRepository) FindAll(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := r.db.SelectContext(ctx, &items, "SELECT * FROM items ORDER BY id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(items) > %w", err)
	}
	return items, nil
}

// FindByIDs returns the items matching the given ids, ordered by id.
func (r *DBRepository) FindByIDs(ctx context.Context, ids []int64) ([]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT * FROM items WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In(items) > %w", err)
	}

	var items []Item
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(items by ids) > %w", err)
	}
	return items, nil
}
