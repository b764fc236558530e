// Package difficulty defines the external difficulty oracle boundary.
package difficulty

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/difficulty/mock_oracle.go -package=mock_difficulty

// Oracle estimates the difficulty of a learnable item's content.
// Estimates are scalars in [0, 1]; how they are produced is out of scope.
type Oracle interface {
	Estimate(ctx context.Context, contentRef string) (float64, error)
}

const (
	// DefaultMaxRetryAttempts bounds retries against the oracle endpoint.
	DefaultMaxRetryAttempts = 3
)
