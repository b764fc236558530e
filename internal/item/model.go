// Package item provides the learnable item domain model and repository.
package item

import (
	"errors"
	"time"
)

// DefaultDifficulty is used when no predicted difficulty is supplied
// and the difficulty oracle is unavailable.
const DefaultDifficulty = 0.5

// ErrNotFound is returned when an item id does not resolve.
var ErrNotFound = errors.New("item not found")

// Item represents a learnable item supplied by the content pipeline.
// Content is referenced, never stored here; only the predicted difficulty
// may be refreshed out-of-band.
type Item struct {
	ID                  int64     `db:"id"`
	ContentRef          string    `db:"content_ref"`
	PredictedDifficulty float64   `db:"predicted_difficulty"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// ClampDifficulty restricts a difficulty estimate to the [0, 1] range.
func ClampDifficulty(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
